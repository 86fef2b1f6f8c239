package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skytail/aeroreserva/internal/codes"
	"github.com/skytail/aeroreserva/internal/domain"
	"github.com/skytail/aeroreserva/internal/kafka"
	"github.com/skytail/aeroreserva/internal/metrics"
	"github.com/skytail/aeroreserva/internal/repository"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Service struct {
	payments     repository.PaymentRepository
	reservations repository.ReservationRepository
	producer     Producer
	topic        string
	log          *logrus.Logger
}

func NewService(payments repository.PaymentRepository, reservations repository.ReservationRepository, producer Producer, topic string, log *logrus.Logger) *Service {
	return &Service{
		payments:     payments,
		reservations: reservations,
		producer:     producer,
		topic:        topic,
		log:          log,
	}
}

// Result is what a successful payment returns: the recorded payment and the
// tickets minted for every passenger of the reservation.
type Result struct {
	Payment domain.Payment
	Tickets []domain.Ticket
}

// Process charges the stored card for the reservation total, confirms the
// reservation and mints one ticket per line item. Only PENDIENTE reservations
// are payable; anything else reports the current state.
func (s *Service) Process(ctx context.Context, user *domain.User, reservaID, tarjetaID int64, metodoEntrega domain.DeliveryMethod) (*Result, error) {
	res, err := s.reservations.GetByID(ctx, reservaID, user.ID)
	if err != nil {
		return nil, err
	}
	if res.Estado != domain.ReservationPending {
		return nil, fmt.Errorf("%w: reservation is %s", domain.ErrWrongState, res.Estado)
	}

	card, err := s.payments.CardByID(ctx, tarjetaID, user.ID)
	if err != nil {
		return nil, err
	}

	authorization, err := codes.AuthorizationNumber()
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		ReservaID:          res.ID,
		TarjetaID:          card.ID,
		Monto:              res.Total,
		Estado:             domain.PaymentApproved,
		NumeroAutorizacion: authorization,
	}

	tickets := make([]*domain.Ticket, 0, len(res.Detalles))
	for _, item := range res.Detalles {
		code, err := codes.TicketCode()
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, &domain.Ticket{
			CodigoBillete:    code,
			DetalleReservaID: item.ID,
			MetodoEntrega:    metodoEntrega,
			Estado:           domain.TicketIssued,
		})
	}

	if err := s.payments.Process(ctx, payment, tickets); err != nil {
		return nil, err
	}
	metrics.TicketsIssued(len(tickets))

	result := &Result{Payment: *payment, Tickets: make([]domain.Ticket, 0, len(tickets))}
	for _, t := range tickets {
		result.Tickets = append(result.Tickets, *t)
	}

	s.announce(res, result.Tickets, user, metodoEntrega)

	s.log.WithFields(logrus.Fields{
		"codigo_reserva": res.CodigoReserva,
		"monto":          payment.Monto.StringFixed(2),
		"billetes":       len(tickets),
	}).Info("payment processed")
	return result, nil
}

// announce publishes one ticket_issued event per minted ticket so the worker
// can build the notification and the email. Fire and forget: the payment is
// already committed, a broker hiccup must not fail the request.
func (s *Service) announce(res *domain.Reservation, tickets []domain.Ticket, user *domain.User, metodoEntrega domain.DeliveryMethod) {
	if s.producer == nil || s.topic == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		for _, t := range tickets {
			event := kafka.TicketEvent{
				Type:          kafka.EventTicketIssued,
				CodigoBillete: t.CodigoBillete,
				CodigoReserva: res.CodigoReserva,
				UsuarioID:     user.ID,
				Email:         user.Email,
				Nombre:        user.Nombre,
				MetodoEntrega: string(metodoEntrega),
				OccurredAt:    time.Now(),
			}
			if err := s.producer.Publish(ctx, s.topic, t.CodigoBillete, event); err != nil {
				metrics.KafkaError("payment", "publish")
				s.log.WithError(err).WithField("codigo_billete", t.CodigoBillete).Warn("publish ticket event")
			}
		}
	}()
}

// AddCard stores a new payment instrument for the caller.
func (s *Service) AddCard(ctx context.Context, card *domain.CreditCard) error {
	return s.payments.CreateCard(ctx, card)
}

// ListCards returns the caller's stored cards.
func (s *Service) ListCards(ctx context.Context, usuarioID int64) ([]domain.CreditCard, error) {
	return s.payments.ListCards(ctx, usuarioID)
}

// DeleteCard removes a stored card owned by the caller.
func (s *Service) DeleteCard(ctx context.Context, id, usuarioID int64) error {
	return s.payments.DeleteCard(ctx, id, usuarioID)
}

// History returns the caller's payments, newest first.
func (s *Service) History(ctx context.Context, usuarioID int64) ([]domain.Payment, error) {
	return s.payments.HistoryByUser(ctx, usuarioID)
}
