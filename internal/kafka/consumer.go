package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/skytail/aeroreserva/internal/metrics"
)

// TicketEventHandler processes one decoded ticket-issued event.
type TicketEventHandler func(ctx context.Context, event TicketEvent) error

type Consumer struct {
	reader *kafka.Reader
	log    *logrus.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *logrus.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// ConsumeTicketEvents reads the notifications topic until the context is
// canceled. Malformed payloads and event types other than ticket-issued are
// dropped, and handler failures are counted and logged without stopping the
// loop: a poison message must not wedge the consumer group.
func (c *Consumer) ConsumeTicketEvents(ctx context.Context, handler TicketEventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}
		c.dispatch(ctx, msg.Value, handler)
	}
}

func (c *Consumer) dispatch(ctx context.Context, payload []byte, handler TicketEventHandler) {
	var event TicketEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		metrics.KafkaError("consumer", "decode")
		c.log.WithError(err).Warn("decode ticket event")
		return
	}
	if event.Type != EventTicketIssued {
		return
	}
	if err := handler(ctx, event); err != nil {
		metrics.KafkaError("consumer", "handle")
		c.log.WithError(err).WithField("codigo_billete", event.CodigoBillete).Error("handle ticket event")
	}
}
