package checkin

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skytail/aeroreserva/config"
	"github.com/skytail/aeroreserva/internal/domain"
	"github.com/skytail/aeroreserva/internal/metrics"
	"github.com/skytail/aeroreserva/internal/repository"
)

// Result is the boarding pass projection returned after a successful check-in.
type Result struct {
	CheckIn          domain.CheckIn
	CodigoBillete    string
	PasajeroNombre   string
	PasajeroApellido string
	NumeroVuelo      string
	Fecha            time.Time
	HoraSalida       string
	Origen           string
	Destino          string
}

type Service struct {
	tickets  repository.TicketRepository
	checkins repository.CheckinRepository
	cfg      config.BookingConfig
	loc      *time.Location
	now      func() time.Time
	log      *logrus.Logger
}

func NewService(tickets repository.TicketRepository, checkins repository.CheckinRepository, cfg config.BookingConfig, loc *time.Location, log *logrus.Logger) *Service {
	return &Service{
		tickets:  tickets,
		checkins: checkins,
		cfg:      cfg,
		loc:      loc,
		now:      time.Now,
		log:      log,
	}
}

// WithClock overrides the wall clock, used by tests of the check-in window.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Do performs online check-in for one ticket. The window opens
// CheckinOpensHours before departure and closes CheckinClosesHours before it;
// each ticket checks in at most once.
func (s *Service) Do(ctx context.Context, usuarioID int64, codigoBillete string) (*Result, error) {
	detail, err := s.tickets.DetailByCode(ctx, codigoBillete, usuarioID)
	if err != nil {
		return nil, err
	}
	if detail.Ticket.Estado != domain.TicketIssued {
		return nil, fmt.Errorf("%w: ticket is %s", domain.ErrWrongState, detail.Ticket.Estado)
	}

	done, err := s.checkins.Exists(ctx, detail.Ticket.ID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, domain.ErrCheckinAlreadyDone
	}

	departure := time.Date(
		detail.Fecha.Year(), detail.Fecha.Month(), detail.Fecha.Day(),
		0, 0, 0, 0, s.loc,
	).Add(detail.HoraSalida)

	now := s.now().In(s.loc)
	opens := departure.Add(-time.Duration(s.cfg.CheckinOpensHours) * time.Hour)
	closes := departure.Add(-time.Duration(s.cfg.CheckinClosesHours) * time.Hour)

	if now.Before(opens) {
		remaining := opens.Sub(now)
		return nil, fmt.Errorf("%w: opens in %.0f hours", domain.ErrCheckinTooEarly, remaining.Hours())
	}
	if now.After(closes) {
		return nil, domain.ErrCheckinClosed
	}

	checkIn := &domain.CheckIn{
		BilleteID:       detail.Ticket.ID,
		AsientoAsignado: detail.NumeroAsiento,
		PuertaEmbarque:  detail.Puerta,
	}
	if err := s.checkins.Create(ctx, checkIn); err != nil {
		return nil, err
	}
	metrics.CheckinDone()

	s.log.WithFields(logrus.Fields{
		"codigo_billete": codigoBillete,
		"numero_vuelo":   detail.NumeroVuelo,
	}).Info("check-in completed")

	return &Result{
		CheckIn:          *checkIn,
		CodigoBillete:    detail.Ticket.CodigoBillete,
		PasajeroNombre:   detail.PasajeroNombre,
		PasajeroApellido: detail.PasajeroApellido,
		NumeroVuelo:      detail.NumeroVuelo,
		Fecha:            detail.Fecha,
		HoraSalida:       domain.FormatTimeOfDay(detail.HoraSalida),
		Origen:           detail.Origen,
		Destino:          detail.Destino,
	}, nil
}
