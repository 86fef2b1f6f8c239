package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/skytail/aeroreserva/internal/domain"
)

// CreateItem is one line item to persist together with the flight it claims
// a seat on. Item.NumeroAsiento, when set, is a requested physical seat.
type CreateItem struct {
	Item    domain.ReservationItem
	VueloID int64
}

// ClassDecrement is one conditional counter decrement applied inside the
// reservation transaction.
type ClassDecrement struct {
	InstanciaID int64
	Clase       domain.CabinClass
	Count       int
}

type ReservationRepository interface {
	// Create persists the reservation, its items, the seat claims and the
	// per-class counter decrements in one transaction. Any capacity or seat
	// conflict aborts the whole reservation.
	Create(ctx context.Context, res *domain.Reservation, items []CreateItem, decrements []ClassDecrement) error
	GetByCode(ctx context.Context, codigo string, usuarioID int64) (*domain.Reservation, error)
	ListByUser(ctx context.Context, usuarioID int64) ([]domain.Reservation, error)
	GetByID(ctx context.Context, id, usuarioID int64) (*domain.Reservation, error)
	// Cancel releases bound seats, restores the counters and marks the
	// reservation CANCELADA, all in one transaction.
	Cancel(ctx context.Context, res *domain.Reservation) error
}

type PGReservationRepository struct {
	db DB
}

func NewReservationRepository(db DB) ReservationRepository {
	return &PGReservationRepository{db: db}
}

func counterColumn(c domain.CabinClass) string {
	switch c {
	case domain.ClassBusiness:
		return "asientos_disponibles_ejecutiva"
	case domain.ClassFirst:
		return "asientos_disponibles_primera"
	default:
		return "asientos_disponibles_economica"
	}
}

func (r *PGReservationRepository) Create(ctx context.Context, res *domain.Reservation, items []CreateItem, decrements []ClassDecrement) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Conditional decrements guard against oversell: zero rows means another
	// request won the remaining seats since the availability read.
	for _, d := range decrements {
		col := counterColumn(d.Clase)
		cmd, err := tx.Exec(ctx, fmt.Sprintf(
			`UPDATE instancias_vuelo SET %s = %s - $1 WHERE id = $2 AND %s >= $1`, col, col, col),
			d.Count, d.InstanciaID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return fmt.Errorf("%w: clase %s", domain.ErrInsufficientSeats, d.Clase)
		}
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO reservas (codigo_reserva, usuario_id, estado, total) VALUES ($1, $2, $3, $4) RETURNING id, fecha_reserva`,
		res.CodigoReserva, res.UsuarioID, res.Estado, res.Total.StringFixed(2)).
		Scan(&res.ID, &res.FechaReserva); err != nil {
		return err
	}

	for idx := range items {
		item := &items[idx].Item
		item.ReservaID = res.ID

		if item.NumeroAsiento != "" {
			// Claim the requested seat; disponible doubles as the lock.
			var seatID int64
			err := tx.QueryRow(ctx, `
				UPDATE asientos SET disponible = false
				WHERE vuelo_id = $1 AND numero_asiento = $2 AND clase = $3 AND disponible
				RETURNING id`,
				items[idx].VueloID, item.NumeroAsiento, item.Clase).Scan(&seatID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return fmt.Errorf("%w: %s (%s)", domain.ErrSeatUnavailable, item.NumeroAsiento, item.Clase)
				}
				return err
			}
			item.AsientoID = &seatID
		}

		if err := tx.QueryRow(ctx, `
			INSERT INTO detalles_reserva (reserva_id, instancia_vuelo_id, pasajero_nombre, pasajero_apellido, asiento_id, clase, precio)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			res.ID, item.InstanciaVueloID, item.PasajeroNombre, item.PasajeroApellido,
			item.AsientoID, item.Clase, item.Precio.StringFixed(2)).Scan(&item.ID); err != nil {
			return err
		}
		res.Detalles = append(res.Detalles, *item)
	}

	return tx.Commit(ctx)
}

func (r *PGReservationRepository) GetByCode(ctx context.Context, codigo string, usuarioID int64) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, codigo_reserva, usuario_id, fecha_reserva, estado, total::text FROM reservas WHERE codigo_reserva = $1 AND usuario_id = $2`,
		codigo, usuarioID)
	return r.scanWithItems(ctx, row)
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id, usuarioID int64) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, codigo_reserva, usuario_id, fecha_reserva, estado, total::text FROM reservas WHERE id = $1 AND usuario_id = $2`,
		id, usuarioID)
	return r.scanWithItems(ctx, row)
}

func (r *PGReservationRepository) ListByUser(ctx context.Context, usuarioID int64) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, codigo_reserva, usuario_id, fecha_reserva, estado, total::text FROM reservas WHERE usuario_id = $1 ORDER BY fecha_reserva DESC`,
		usuarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range reservations {
		items, err := r.itemsOf(ctx, reservations[i].ID)
		if err != nil {
			return nil, err
		}
		reservations[i].Detalles = items
	}
	return reservations, nil
}

func (r *PGReservationRepository) Cancel(ctx context.Context, res *domain.Reservation) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, item := range res.Detalles {
		if item.AsientoID != nil {
			if _, err := tx.Exec(ctx, `UPDATE asientos SET disponible = true WHERE id = $1`, *item.AsientoID); err != nil {
				return err
			}
		}
		col := counterColumn(item.Clase)
		if _, err := tx.Exec(ctx, fmt.Sprintf(
			`UPDATE instancias_vuelo SET %s = %s + 1 WHERE id = $1`, col, col), item.InstanciaVueloID); err != nil {
			return err
		}
	}

	cmd, err := tx.Exec(ctx, `UPDATE reservas SET estado = $1 WHERE id = $2 AND estado <> $1`,
		domain.ReservationCancelled, res.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyCancelled
	}
	return tx.Commit(ctx)
}

func (r *PGReservationRepository) scanWithItems(ctx context.Context, row pgx.Row) (*domain.Reservation, error) {
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if res.Detalles, err = r.itemsOf(ctx, res.ID); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *PGReservationRepository) itemsOf(ctx context.Context, reservaID int64) ([]domain.ReservationItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT dr.id, dr.reserva_id, dr.instancia_vuelo_id, dr.pasajero_nombre, dr.pasajero_apellido,
		       dr.asiento_id, COALESCE(a.numero_asiento, ''), dr.clase, dr.precio::text
		FROM detalles_reserva dr
		LEFT JOIN asientos a ON a.id = dr.asiento_id
		WHERE dr.reserva_id = $1
		ORDER BY dr.id`, reservaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ReservationItem, 0)
	for rows.Next() {
		var (
			item   domain.ReservationItem
			precio string
		)
		if err := rows.Scan(&item.ID, &item.ReservaID, &item.InstanciaVueloID, &item.PasajeroNombre,
			&item.PasajeroApellido, &item.AsientoID, &item.NumeroAsiento, &item.Clase, &precio); err != nil {
			return nil, err
		}
		if item.Precio, err = decimal.NewFromString(precio); err != nil {
			return nil, fmt.Errorf("parse item price: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var (
		res   domain.Reservation
		total string
	)
	if err := row.Scan(&res.ID, &res.CodigoReserva, &res.UsuarioID, &res.FechaReserva, &res.Estado, &total); err != nil {
		return nil, err
	}
	var err error
	if res.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse reservation total: %w", err)
	}
	return &res, nil
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
