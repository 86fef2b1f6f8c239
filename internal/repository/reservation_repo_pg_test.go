package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skytail/aeroreserva/internal/domain"
)

func newReservationRepoMock(t *testing.T) (pgxmock.PgxPoolIface, ReservationRepository) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewReservationRepository(mock)
}

const decrementEconomySQL = `UPDATE instancias_vuelo SET asientos_disponibles_economica = asientos_disponibles_economica - $1 WHERE id = $2 AND asientos_disponibles_economica >= $1`

func TestReservationRepositoryCreatePersistsItemsAndClaimsSeat(t *testing.T) {
	mock, repo := newReservationRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(decrementEconomySQL)).
		WithArgs(2, int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reservas`)).
		WithArgs("AB12CD34EF", int64(7), domain.ReservationPending, "250.00").
		WillReturnRows(pgxmock.NewRows([]string{"id", "fecha_reserva"}).AddRow(int64(31), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE asientos SET disponible = false`)).
		WithArgs(int64(4), "12A", domain.ClassEconomy).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(77)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO detalles_reserva`)).
		WithArgs(int64(31), int64(9), "Ana", "García", pgxmock.AnyArg(), domain.ClassEconomy, "125.00").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(301)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO detalles_reserva`)).
		WithArgs(int64(31), int64(9), "Luis", "García", pgxmock.AnyArg(), domain.ClassEconomy, "125.00").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(302)))
	mock.ExpectCommit()

	precio := decimal.RequireFromString("125.00")
	res := &domain.Reservation{
		CodigoReserva: "AB12CD34EF",
		UsuarioID:     7,
		Estado:        domain.ReservationPending,
		Total:         decimal.RequireFromString("250.00"),
	}
	items := []CreateItem{
		{VueloID: 4, Item: domain.ReservationItem{InstanciaVueloID: 9, PasajeroNombre: "Ana", PasajeroApellido: "García", NumeroAsiento: "12A", Clase: domain.ClassEconomy, Precio: precio}},
		{VueloID: 4, Item: domain.ReservationItem{InstanciaVueloID: 9, PasajeroNombre: "Luis", PasajeroApellido: "García", Clase: domain.ClassEconomy, Precio: precio}},
	}
	decrements := []ClassDecrement{{InstanciaID: 9, Clase: domain.ClassEconomy, Count: 2}}

	err := repo.Create(context.Background(), res, items, decrements)
	require.NoError(t, err)
	assert.EqualValues(t, 31, res.ID)
	require.Len(t, res.Detalles, 2)
	require.NotNil(t, res.Detalles[0].AsientoID)
	assert.EqualValues(t, 77, *res.Detalles[0].AsientoID)
	assert.Nil(t, res.Detalles[1].AsientoID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryCreateRejectsWhenCounterExhausted(t *testing.T) {
	mock, repo := newReservationRepoMock(t)

	// Zero rows means the conditional guard refused to go below zero.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(decrementEconomySQL)).
		WithArgs(3, int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	res := &domain.Reservation{CodigoReserva: "AB12CD34EF", UsuarioID: 7, Estado: domain.ReservationPending}
	err := repo.Create(context.Background(), res, nil, []ClassDecrement{{InstanciaID: 9, Clase: domain.ClassEconomy, Count: 3}})
	assert.ErrorIs(t, err, domain.ErrInsufficientSeats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryCreateSeatConflictAbortsEverything(t *testing.T) {
	mock, repo := newReservationRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(decrementEconomySQL)).
		WithArgs(1, int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reservas`)).
		WithArgs("AB12CD34EF", int64(7), domain.ReservationPending, "125.00").
		WillReturnRows(pgxmock.NewRows([]string{"id", "fecha_reserva"}).AddRow(int64(31), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE asientos SET disponible = false`)).
		WithArgs(int64(4), "12A", domain.ClassEconomy).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	res := &domain.Reservation{
		CodigoReserva: "AB12CD34EF",
		UsuarioID:     7,
		Estado:        domain.ReservationPending,
		Total:         decimal.RequireFromString("125.00"),
	}
	items := []CreateItem{
		{VueloID: 4, Item: domain.ReservationItem{InstanciaVueloID: 9, PasajeroNombre: "Ana", PasajeroApellido: "García", NumeroAsiento: "12A", Clase: domain.ClassEconomy, Precio: decimal.RequireFromString("125.00")}},
	}
	err := repo.Create(context.Background(), res, items, []ClassDecrement{{InstanciaID: 9, Clase: domain.ClassEconomy, Count: 1}})
	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryCancelRestoresSeatsAndCounters(t *testing.T) {
	mock, repo := newReservationRepoMock(t)

	seatID := int64(77)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE asientos SET disponible = true WHERE id = $1`)).
		WithArgs(seatID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE instancias_vuelo SET asientos_disponibles_economica = asientos_disponibles_economica + 1 WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE instancias_vuelo SET asientos_disponibles_ejecutiva = asientos_disponibles_ejecutiva + 1 WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reservas SET estado = $1 WHERE id = $2 AND estado <> $1`)).
		WithArgs(domain.ReservationCancelled, int64(31)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	res := &domain.Reservation{
		ID:     31,
		Estado: domain.ReservationPending,
		Detalles: []domain.ReservationItem{
			{InstanciaVueloID: 9, AsientoID: &seatID, Clase: domain.ClassEconomy},
			{InstanciaVueloID: 9, Clase: domain.ClassBusiness},
		},
	}
	require.NoError(t, repo.Cancel(context.Background(), res))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryCancelRejectsAlreadyCancelled(t *testing.T) {
	mock, repo := newReservationRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reservas SET estado = $1 WHERE id = $2 AND estado <> $1`)).
		WithArgs(domain.ReservationCancelled, int64(31)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	res := &domain.Reservation{ID: 31, Estado: domain.ReservationCancelled}
	err := repo.Cancel(context.Background(), res)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}
