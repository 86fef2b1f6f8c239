package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/skytail/aeroreserva/config"
	"github.com/skytail/aeroreserva/internal/email"
	"github.com/skytail/aeroreserva/internal/kafka"
	"github.com/skytail/aeroreserva/internal/repository"
	"github.com/skytail/aeroreserva/internal/service/notification"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	var sender email.Sender = email.NewLogSender(log)
	if cfg.SMTP.Configured() {
		sender = email.NewSMTPSender(cfg.SMTP, log)
	}

	notificationSvc := notification.NewService(repository.NewNotificationRepository(pool), sender, log)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
	defer consumer.Close()

	log.WithField("topic", cfg.Kafka.NotificationsTopic).Info("worker started")

	err = consumer.ConsumeTicketEvents(ctx, notificationSvc.HandleTicketEvent)
	if err != nil && ctx.Err() == nil {
		log.Fatalf("consumer stopped: %v", err)
	}
	log.Info("worker stopped")
}
