package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/skytail/aeroreserva/internal/domain"
)

type SeatRepository interface {
	ListByFlight(ctx context.Context, vueloID int64) ([]domain.Seat, error)
	// Reconcile repairs the physical inventory of a flight to match the
	// configured per-class capacities and returns the resulting seat list.
	Reconcile(ctx context.Context, vueloID int64, capacities map[domain.CabinClass]int) ([]domain.Seat, error)
	OccupiedSeatNumbers(ctx context.Context, vueloID, instanciaID int64) (map[string]struct{}, error)
}

type PGSeatRepository struct {
	db DB
}

func NewSeatRepository(db DB) SeatRepository {
	return &PGSeatRepository{db: db}
}

func (r *PGSeatRepository) ListByFlight(ctx context.Context, vueloID int64) ([]domain.Seat, error) {
	return listSeats(ctx, r.db, vueloID)
}

// Reconcile runs in a single transaction so a concurrent reservation can
// never observe a half-rebuilt inventory: stale bindings of cancelled
// reservations are released, unassigned seats are dropped, and the per-class
// shortfall is regenerated. Seats held by active reservations are untouched.
func (r *PGSeatRepository) Reconcile(ctx context.Context, vueloID int64, capacities map[domain.CabinClass]int) ([]domain.Seat, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Release seat bindings held by line items of cancelled reservations.
	if _, err := tx.Exec(ctx, `
		UPDATE detalles_reserva dr
		SET asiento_id = NULL
		FROM reservas r
		WHERE r.id = dr.reserva_id AND r.estado = $1 AND dr.asiento_id IS NOT NULL
		  AND dr.asiento_id IN (SELECT id FROM asientos WHERE vuelo_id = $2)`,
		domain.ReservationCancelled, vueloID); err != nil {
		return nil, fmt.Errorf("release cancelled seat bindings: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE asientos SET disponible = true
		WHERE vuelo_id = $1 AND id NOT IN (
			SELECT dr.asiento_id FROM detalles_reserva dr
			JOIN reservas r ON r.id = dr.reserva_id
			WHERE dr.asiento_id IS NOT NULL AND r.estado <> $2)`,
		vueloID, domain.ReservationCancelled); err != nil {
		return nil, fmt.Errorf("unlock orphaned seats: %w", err)
	}

	// Drop unassigned seats, then regenerate the shortfall per class.
	if _, err := tx.Exec(ctx, `DELETE FROM asientos WHERE vuelo_id = $1 AND disponible`, vueloID); err != nil {
		return nil, fmt.Errorf("delete available seats: %w", err)
	}

	remaining, err := listSeats(ctx, tx, vueloID)
	if err != nil {
		return nil, err
	}

	counts := domain.CountSeatsByClass(remaining)
	missing := make(map[domain.CabinClass]int, len(capacities))
	for class, capacity := range capacities {
		if short := capacity - counts[class]; short > 0 {
			missing[class] = short
		}
	}

	created := domain.GenerateSeats(vueloID, remaining, missing)
	for _, s := range created {
		if _, err := tx.Exec(ctx, `INSERT INTO asientos (vuelo_id, numero_asiento, clase, disponible) VALUES ($1, $2, $3, true)`,
			s.VueloID, s.NumeroAsiento, s.Clase); err != nil {
			return nil, fmt.Errorf("insert seat %s: %w", s.NumeroAsiento, err)
		}
	}

	seats, err := listSeats(ctx, tx, vueloID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return seats, nil
}

// OccupiedSeatNumbers returns seats joined through line items of paid
// reservations on the given instance.
func (r *PGSeatRepository) OccupiedSeatNumbers(ctx context.Context, vueloID, instanciaID int64) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.numero_asiento
		FROM asientos a
		JOIN detalles_reserva dr ON dr.asiento_id = a.id
		JOIN reservas r ON r.id = dr.reserva_id
		WHERE a.vuelo_id = $1 AND dr.instancia_vuelo_id = $2 AND r.estado = $3`,
		vueloID, instanciaID, domain.ReservationConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	occupied := make(map[string]struct{})
	for rows.Next() {
		var num string
		if err := rows.Scan(&num); err != nil {
			return nil, err
		}
		occupied[num] = struct{}{}
	}
	return occupied, rows.Err()
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listSeats(ctx context.Context, q querier, vueloID int64) ([]domain.Seat, error) {
	rows, err := q.Query(ctx, `SELECT id, vuelo_id, numero_asiento, clase, disponible FROM asientos WHERE vuelo_id = $1`, vueloID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.ID, &s.VueloID, &s.NumeroAsiento, &s.Clase, &s.Disponible); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	domain.SortSeats(seats)
	return seats, nil
}

var _ SeatRepository = (*PGSeatRepository)(nil)
