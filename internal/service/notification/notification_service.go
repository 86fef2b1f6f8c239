package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/skytail/aeroreserva/internal/domain"
	"github.com/skytail/aeroreserva/internal/email"
	"github.com/skytail/aeroreserva/internal/kafka"
	"github.com/skytail/aeroreserva/internal/repository"
)

type Service struct {
	notifications repository.NotificationRepository
	mailer        email.Sender
	log           *logrus.Logger
}

func NewService(notifications repository.NotificationRepository, mailer email.Sender, log *logrus.Logger) *Service {
	return &Service{notifications: notifications, mailer: mailer, log: log}
}

// List returns the caller's notifications, optionally only unread ones.
func (s *Service) List(ctx context.Context, usuarioID int64, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notifications.ListByUser(ctx, usuarioID, unreadOnly, limit)
}

func (s *Service) CountUnread(ctx context.Context, usuarioID int64) (int, error) {
	return s.notifications.CountUnread(ctx, usuarioID)
}

// MarkRead flags one notification as read. Repeating the call is a no-op.
func (s *Service) MarkRead(ctx context.Context, id, usuarioID int64) error {
	return s.notifications.MarkRead(ctx, id, usuarioID)
}

// Create records an arbitrary notification for a user. Used by operational
// tooling (flight changes, reminders) outside the ticket flow.
func (s *Service) Create(ctx context.Context, n *domain.Notification) error {
	return s.notifications.Create(ctx, n)
}

// HandleTicketEvent is the worker entry point for ticket_issued events: it
// records the in-app confirmation and, for EMAIL delivery, sends the ticket
// mail. The notification write is the one that matters; a mail failure is
// logged and swallowed so the event is not redelivered forever.
func (s *Service) HandleTicketEvent(ctx context.Context, event kafka.TicketEvent) error {
	metadata, err := json.Marshal(map[string]string{
		"codigo_billete": event.CodigoBillete,
		"codigo_reserva": event.CodigoReserva,
	})
	if err != nil {
		return fmt.Errorf("encode notification metadata: %w", err)
	}

	n := &domain.Notification{
		UsuarioID: event.UsuarioID,
		Tipo:      domain.NotificationConfirmation,
		Titulo:    "Billete emitido",
		Mensaje:   fmt.Sprintf("Tu billete %s de la reserva %s ha sido emitido.", event.CodigoBillete, event.CodigoReserva),
		Metadata:  metadata,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create ticket notification: %w", err)
	}

	if event.MetodoEntrega == string(domain.DeliveryEmail) && event.Email != "" {
		mail := email.TicketMail{
			To:            event.Email,
			Nombre:        event.Nombre,
			CodigoBillete: event.CodigoBillete,
			CodigoReserva: event.CodigoReserva,
		}
		if err := s.mailer.SendTicket(mail); err != nil {
			s.log.WithError(err).WithField("codigo_billete", event.CodigoBillete).Warn("send ticket email")
		}
	}
	return nil
}
