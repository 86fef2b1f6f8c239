package checkin

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skytail/aeroreserva/config"
	"github.com/skytail/aeroreserva/internal/domain"
	"github.com/skytail/aeroreserva/internal/repository"
)

type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) DetailByCode(ctx context.Context, codigoBillete string, usuarioID int64) (*domain.TicketDetail, error) {
	args := m.Called(ctx, codigoBillete, usuarioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketDetail), args.Error(1)
}

func (m *MockTicketRepository) ListByUser(ctx context.Context, usuarioID int64) ([]domain.TicketSummary, error) {
	args := m.Called(ctx, usuarioID)
	return args.Get(0).([]domain.TicketSummary), args.Error(1)
}

func (m *MockTicketRepository) CancelByReservation(ctx context.Context, reservaID int64) error {
	args := m.Called(ctx, reservaID)
	return args.Error(0)
}

type MockCheckinRepository struct {
	mock.Mock
}

func (m *MockCheckinRepository) Exists(ctx context.Context, billeteID int64) (bool, error) {
	args := m.Called(ctx, billeteID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCheckinRepository) Create(ctx context.Context, checkIn *domain.CheckIn) error {
	args := m.Called(ctx, checkIn)
	return args.Error(0)
}

// Flight departs 2026-09-07 at 10:00 UTC; window is [09-06 10:00, 09-07 07:00].
var departureDate = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func ticketDetail() *domain.TicketDetail {
	return &domain.TicketDetail{
		Ticket: domain.Ticket{
			ID:            9,
			CodigoBillete: "TKT123456789ABC",
			Estado:        domain.TicketIssued,
		},
		PasajeroNombre:   "Ana",
		PasajeroApellido: "García",
		NumeroAsiento:    "12A",
		Puerta:           "B22",
		NumeroVuelo:      "IB3100",
		Fecha:            departureDate,
		HoraSalida:       10 * time.Hour,
		HoraLlegada:      11*time.Hour + 25*time.Minute,
		Origen:           "MAD",
		Destino:          "BCN",
	}
}

func newTestService(tickets *MockTicketRepository, checkins *MockCheckinRepository, now time.Time) *Service {
	cfg := config.BookingConfig{CheckinOpensHours: 24, CheckinClosesHours: 3}
	return NewService(tickets, checkins, cfg, time.UTC, logrus.New()).
		WithClock(func() time.Time { return now })
}

func TestDo_Success(t *testing.T) {
	tickets := &MockTicketRepository{}
	checkins := &MockCheckinRepository{}
	// 5 hours before departure, inside the window
	svc := newTestService(tickets, checkins, time.Date(2026, 9, 7, 5, 0, 0, 0, time.UTC))

	ctx := context.Background()
	tickets.On("DetailByCode", ctx, "TKT123456789ABC", int64(42)).Return(ticketDetail(), nil).Once()
	checkins.On("Exists", ctx, int64(9)).Return(false, nil).Once()
	checkins.On("Create", ctx, mock.AnythingOfType("*domain.CheckIn")).
		Run(func(args mock.Arguments) {
			ci := args.Get(1).(*domain.CheckIn)
			assert.EqualValues(t, 9, ci.BilleteID)
			assert.Equal(t, "12A", ci.AsientoAsignado)
			assert.Equal(t, "B22", ci.PuertaEmbarque)
		}).Return(nil).Once()

	result, err := svc.Do(ctx, 42, "TKT123456789ABC")
	require.NoError(t, err)
	assert.Equal(t, "IB3100", result.NumeroVuelo)
	assert.Equal(t, "10:00", result.HoraSalida)
	checkins.AssertExpectations(t)
}

func TestDo_TooEarly(t *testing.T) {
	tickets := &MockTicketRepository{}
	checkins := &MockCheckinRepository{}
	// 25 hours before departure
	svc := newTestService(tickets, checkins, time.Date(2026, 9, 6, 9, 0, 0, 0, time.UTC))

	ctx := context.Background()
	tickets.On("DetailByCode", ctx, "TKT123456789ABC", int64(42)).Return(ticketDetail(), nil).Once()
	checkins.On("Exists", ctx, int64(9)).Return(false, nil).Once()

	_, err := svc.Do(ctx, 42, "TKT123456789ABC")
	assert.ErrorIs(t, err, domain.ErrCheckinTooEarly)
	checkins.AssertNotCalled(t, "Create")
}

func TestDo_WindowJustOpened(t *testing.T) {
	tickets := &MockTicketRepository{}
	checkins := &MockCheckinRepository{}
	// exactly 23 hours before departure
	svc := newTestService(tickets, checkins, time.Date(2026, 9, 6, 11, 0, 0, 0, time.UTC))

	ctx := context.Background()
	tickets.On("DetailByCode", ctx, "TKT123456789ABC", int64(42)).Return(ticketDetail(), nil).Once()
	checkins.On("Exists", ctx, int64(9)).Return(false, nil).Once()
	checkins.On("Create", ctx, mock.Anything).Return(nil).Once()

	_, err := svc.Do(ctx, 42, "TKT123456789ABC")
	assert.NoError(t, err)
}

func TestDo_Closed(t *testing.T) {
	tickets := &MockTicketRepository{}
	checkins := &MockCheckinRepository{}
	// 2 hours before departure
	svc := newTestService(tickets, checkins, time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC))

	ctx := context.Background()
	tickets.On("DetailByCode", ctx, "TKT123456789ABC", int64(42)).Return(ticketDetail(), nil).Once()
	checkins.On("Exists", ctx, int64(9)).Return(false, nil).Once()

	_, err := svc.Do(ctx, 42, "TKT123456789ABC")
	assert.ErrorIs(t, err, domain.ErrCheckinClosed)
}

func TestDo_AlreadyDone(t *testing.T) {
	tickets := &MockTicketRepository{}
	checkins := &MockCheckinRepository{}
	svc := newTestService(tickets, checkins, time.Date(2026, 9, 7, 5, 0, 0, 0, time.UTC))

	ctx := context.Background()
	tickets.On("DetailByCode", ctx, "TKT123456789ABC", int64(42)).Return(ticketDetail(), nil).Once()
	checkins.On("Exists", ctx, int64(9)).Return(true, nil).Once()

	_, err := svc.Do(ctx, 42, "TKT123456789ABC")
	assert.ErrorIs(t, err, domain.ErrCheckinAlreadyDone)
}

func TestDo_CancelledTicket(t *testing.T) {
	tickets := &MockTicketRepository{}
	checkins := &MockCheckinRepository{}
	svc := newTestService(tickets, checkins, time.Date(2026, 9, 7, 5, 0, 0, 0, time.UTC))

	detail := ticketDetail()
	detail.Ticket.Estado = domain.TicketCancelled

	ctx := context.Background()
	tickets.On("DetailByCode", ctx, "TKT123456789ABC", int64(42)).Return(detail, nil).Once()

	_, err := svc.Do(ctx, 42, "TKT123456789ABC")
	assert.ErrorIs(t, err, domain.ErrWrongState)
	checkins.AssertNotCalled(t, "Exists")
}

func TestDo_TicketNotFound(t *testing.T) {
	tickets := &MockTicketRepository{}
	checkins := &MockCheckinRepository{}
	svc := newTestService(tickets, checkins, time.Date(2026, 9, 7, 5, 0, 0, 0, time.UTC))

	ctx := context.Background()
	tickets.On("DetailByCode", ctx, "NOPE", int64(42)).Return(nil, repository.ErrNotFound).Once()

	_, err := svc.Do(ctx, 42, "NOPE")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
