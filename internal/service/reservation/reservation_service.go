package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/skytail/aeroreserva/internal/codes"
	"github.com/skytail/aeroreserva/internal/domain"
	"github.com/skytail/aeroreserva/internal/kafka"
	"github.com/skytail/aeroreserva/internal/metrics"
	"github.com/skytail/aeroreserva/internal/repository"
)

type PassengerInput struct {
	Nombre        string `json:"nombre"`
	Apellido      string `json:"apellido"`
	AsientoNumero string `json:"asiento_numero"`
}

// GroupInput books one or more passengers on one flight instance in one
// class.
type GroupInput struct {
	InstanciaVueloID int64            `json:"instancia_vuelo_id"`
	Clase            string           `json:"clase"`
	Pasajeros        []PassengerInput `json:"pasajeros"`
}

// SeatHolder is the short-lived distributed lock taken on a requested seat
// before the transactional claim.
type SeatHolder interface {
	AcquireSeatHold(ctx context.Context, vueloID int64, numeroAsiento string, ttl time.Duration) (bool, error)
	ReleaseSeatHold(ctx context.Context, vueloID int64, numeroAsiento string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Service struct {
	instances    repository.InstanceRepository
	catalog      repository.CatalogRepository
	reservations repository.ReservationRepository
	tickets      repository.TicketRepository
	holder       SeatHolder
	producer     Producer
	topic        string
	holdTTL      time.Duration
	log          *logrus.Logger
}

func NewService(
	instances repository.InstanceRepository,
	catalog repository.CatalogRepository,
	reservations repository.ReservationRepository,
	tickets repository.TicketRepository,
	holder SeatHolder,
	producer Producer,
	topic string,
	holdTTL time.Duration,
	log *logrus.Logger,
) *Service {
	return &Service{
		instances:    instances,
		catalog:      catalog,
		reservations: reservations,
		tickets:      tickets,
		holder:       holder,
		producer:     producer,
		topic:        topic,
		holdTTL:      holdTTL,
		log:          log,
	}
}

type seatHold struct {
	vueloID int64
	numero  string
}

// Create builds one reservation from all groups or nothing: every lookup and
// capacity/seat conflict aborts the whole call before anything is committed.
func (s *Service) Create(ctx context.Context, usuarioID int64, groups []GroupInput) (*domain.Reservation, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no line items", domain.ErrWrongState)
	}

	var (
		items      []repository.CreateItem
		decrements []repository.ClassDecrement
		holds      []seatHold
		total      = decimal.Zero
	)
	defer func() {
		// Holds are only kept while the transaction is in flight; release
		// them regardless of outcome, the row state is authoritative.
		for _, h := range holds {
			if err := s.holder.ReleaseSeatHold(ctx, h.vueloID, h.numero); err != nil {
				s.log.WithError(err).Warn("release seat hold")
			}
		}
	}()

	for _, group := range groups {
		instance, err := s.instances.GetByID(ctx, group.InstanciaVueloID)
		if err != nil {
			return nil, fmt.Errorf("flight instance %d: %w", group.InstanciaVueloID, err)
		}

		clase, err := domain.NormalizeClass(group.Clase)
		if err != nil {
			return nil, err
		}

		fare, err := s.catalog.EffectiveFare(ctx, instance.VueloID, clase, instance.Fecha)
		if err != nil {
			return nil, fmt.Errorf("fare for class %s: %w", clase, err)
		}

		// Fast availability check; the conditional decrement inside the
		// transaction is the authoritative guard against oversell.
		if instance.Available(clase) < len(group.Pasajeros) {
			return nil, fmt.Errorf("%w: clase %s", domain.ErrInsufficientSeats, clase)
		}

		for _, p := range group.Pasajeros {
			if p.AsientoNumero != "" {
				ok, err := s.holder.AcquireSeatHold(ctx, instance.VueloID, p.AsientoNumero, s.holdTTL)
				if err != nil {
					return nil, err
				}
				if !ok {
					return nil, fmt.Errorf("%w: %s", domain.ErrSeatUnavailable, p.AsientoNumero)
				}
				holds = append(holds, seatHold{vueloID: instance.VueloID, numero: p.AsientoNumero})
			}

			items = append(items, repository.CreateItem{
				VueloID: instance.VueloID,
				Item: domain.ReservationItem{
					InstanciaVueloID: instance.ID,
					PasajeroNombre:   p.Nombre,
					PasajeroApellido: p.Apellido,
					NumeroAsiento:    p.AsientoNumero,
					Clase:            clase,
					Precio:           fare.Precio,
				},
			})
			total = total.Add(fare.Precio)
		}

		decrements = append(decrements, repository.ClassDecrement{
			InstanciaID: instance.ID,
			Clase:       clase,
			Count:       len(group.Pasajeros),
		})
	}

	codigo, err := codes.ReservationCode()
	if err != nil {
		return nil, err
	}

	res := &domain.Reservation{
		CodigoReserva: codigo,
		UsuarioID:     usuarioID,
		Estado:        domain.ReservationPending,
		Total:         total,
	}
	if err := s.reservations.Create(ctx, res, items, decrements); err != nil {
		return nil, err
	}

	metrics.ReservationCreated()
	s.publish(ctx, kafka.EventReservationCreated, res)
	return res, nil
}

// Cancel reverses capacity and seat state. Tickets attached to the items are
// cancelled best-effort: a failure there is logged and never blocks the
// cancellation.
func (s *Service) Cancel(ctx context.Context, usuarioID int64, codigoReserva string) (*domain.Reservation, error) {
	res, err := s.reservations.GetByCode(ctx, codigoReserva, usuarioID)
	if err != nil {
		return nil, err
	}
	if res.Estado == domain.ReservationCancelled {
		return nil, domain.ErrAlreadyCancelled
	}

	if err := s.reservations.Cancel(ctx, res); err != nil {
		return nil, err
	}
	res.Estado = domain.ReservationCancelled

	if err := s.tickets.CancelByReservation(ctx, res.ID); err != nil {
		s.log.WithError(err).WithField("codigo_reserva", res.CodigoReserva).Warn("cancel tickets for reservation")
	}

	metrics.ReservationCancelled()
	s.publish(ctx, kafka.EventReservationCancelled, res)
	return res, nil
}

// GetByCode returns one reservation of the caller.
func (s *Service) GetByCode(ctx context.Context, usuarioID int64, codigoReserva string) (*domain.Reservation, error) {
	return s.reservations.GetByCode(ctx, codigoReserva, usuarioID)
}

// ListByUser returns the caller's reservations, newest first.
func (s *Service) ListByUser(ctx context.Context, usuarioID int64) ([]domain.Reservation, error) {
	return s.reservations.ListByUser(ctx, usuarioID)
}

func (s *Service) publish(ctx context.Context, eventType string, res *domain.Reservation) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.ReservationEvent{
		Type:          eventType,
		CodigoReserva: res.CodigoReserva,
		UsuarioID:     res.UsuarioID,
		Estado:        string(res.Estado),
		Total:         res.Total.StringFixed(2),
		Pasajeros:     len(res.Detalles),
		OccurredAt:    time.Now(),
	}
	if err := s.producer.Publish(ctx, s.topic, res.CodigoReserva, event); err != nil {
		metrics.KafkaError("reservation", "publish")
		s.log.WithError(err).WithField("codigo_reserva", res.CodigoReserva).Warnf("publish %s event", eventType)
	}
}
