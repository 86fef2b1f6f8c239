package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/skytail/aeroreserva/api"
	"github.com/skytail/aeroreserva/config"
	"github.com/skytail/aeroreserva/internal/auth"
	"github.com/skytail/aeroreserva/internal/bootstrap"
	"github.com/skytail/aeroreserva/internal/cache"
	"github.com/skytail/aeroreserva/internal/email"
	"github.com/skytail/aeroreserva/internal/kafka"
	"github.com/skytail/aeroreserva/internal/repository"
	"github.com/skytail/aeroreserva/internal/service/checkin"
	"github.com/skytail/aeroreserva/internal/service/notification"
	"github.com/skytail/aeroreserva/internal/service/payment"
	"github.com/skytail/aeroreserva/internal/service/reservation"
	"github.com/skytail/aeroreserva/internal/service/search"
	"github.com/skytail/aeroreserva/internal/service/seatmap"
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

	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		log.Fatalf("load timezone %s: %v", cfg.Booking.Timezone, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.CatalogCacheSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	catalogRepo := repository.NewCatalogRepository(pool)
	instanceRepo := repository.NewInstanceRepository(pool)
	seatRepo := repository.NewSeatRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	checkinRepo := repository.NewCheckinRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	searchSvc := search.NewService(catalogRepo, instanceRepo, redisCache, cfg.Booking, loc, log)
	seatmapSvc := seatmap.NewService(instanceRepo, seatRepo, log)
	reservationSvc := reservation.NewService(
		instanceRepo,
		catalogRepo,
		reservationRepo,
		ticketRepo,
		redisCache,
		producer,
		cfg.Kafka.ReservationsTopic,
		time.Duration(cfg.Booking.SeatHoldTTLSeconds)*time.Second,
		log,
	)
	paymentSvc := payment.NewService(paymentRepo, reservationRepo, producer, cfg.Kafka.NotificationsTopic, log)
	checkinSvc := checkin.NewService(ticketRepo, checkinRepo, cfg.Booking, loc, log)
	notificationSvc := notification.NewService(notificationRepo, email.NewLogSender(log), log)

	handlers := bootstrap.Handlers{
		Flights:       api.NewFlightHandler(searchSvc, seatmapSvc),
		Reservations:  api.NewReservationHandler(reservationSvc, checkinSvc),
		Payments:      api.NewPaymentHandler(paymentSvc, ticketRepo),
		Notifications: api.NewNotificationHandler(notificationSvc),
	}
	verifier := auth.NewHMACVerifier(cfg.Auth.Secret)

	if err := bootstrap.Run(ctx, cfg, verifier, handlers, log); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
