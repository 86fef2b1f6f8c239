package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/skytail/aeroreserva/internal/domain"
)

type TicketRepository interface {
	// DetailByCode resolves a ticket by code joined through line item ->
	// reservation -> owner, with the full flight/seat/price context.
	DetailByCode(ctx context.Context, codigoBillete string, usuarioID int64) (*domain.TicketDetail, error)
	ListByUser(ctx context.Context, usuarioID int64) ([]domain.TicketSummary, error)
	// CancelByReservation marks all tickets of a reservation CANCELADO.
	CancelByReservation(ctx context.Context, reservaID int64) error
}

type PGTicketRepository struct {
	db DB
}

func NewTicketRepository(db DB) TicketRepository {
	return &PGTicketRepository{db: db}
}

func (r *PGTicketRepository) DetailByCode(ctx context.Context, codigoBillete string, usuarioID int64) (*domain.TicketDetail, error) {
	row := r.db.QueryRow(ctx, `
		SELECT b.id, b.codigo_billete, b.detalle_reserva_id, b.fecha_emision, b.metodo_entrega, b.estado,
		       dr.pasajero_nombre, dr.pasajero_apellido, dr.clase, dr.precio::text, COALESCE(a.numero_asiento, ''),
		       r.id, r.codigo_reserva, r.usuario_id,
		       iv.id, iv.fecha, COALESCE(iv.puerta, ''),
		       v.numero_vuelo, al.nombre, co.codigo_iata, cd.codigo_iata, v.hora_salida, v.hora_llegada
		FROM billetes b
		JOIN detalles_reserva dr ON dr.id = b.detalle_reserva_id
		JOIN reservas r ON r.id = dr.reserva_id
		JOIN instancias_vuelo iv ON iv.id = dr.instancia_vuelo_id
		JOIN vuelos v ON v.id = iv.vuelo_id
		JOIN aerolineas al ON al.id = v.aerolinea_id
		JOIN ciudades co ON co.id = v.ciudad_origen_id
		JOIN ciudades cd ON cd.id = v.ciudad_destino_id
		LEFT JOIN asientos a ON a.id = dr.asiento_id
		WHERE b.codigo_billete = $1 AND r.usuario_id = $2`, codigoBillete, usuarioID)

	var (
		d       domain.TicketDetail
		precio  string
		salida  pgtype.Time
		llegada pgtype.Time
	)
	if err := row.Scan(
		&d.Ticket.ID, &d.Ticket.CodigoBillete, &d.Ticket.DetalleReservaID, &d.Ticket.FechaEmision,
		&d.Ticket.MetodoEntrega, &d.Ticket.Estado,
		&d.PasajeroNombre, &d.PasajeroApellido, &d.Clase, &precio, &d.NumeroAsiento,
		&d.ReservaID, &d.CodigoReserva, &d.UsuarioID,
		&d.InstanciaVueloID, &d.Fecha, &d.Puerta,
		&d.NumeroVuelo, &d.Aerolinea, &d.Origen, &d.Destino, &salida, &llegada,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var err error
	if d.Precio, err = decimal.NewFromString(precio); err != nil {
		return nil, fmt.Errorf("parse ticket price: %w", err)
	}
	d.HoraSalida = timeOfDay(salida)
	d.HoraLlegada = timeOfDay(llegada)
	return &d, nil
}

func (r *PGTicketRepository) ListByUser(ctx context.Context, usuarioID int64) ([]domain.TicketSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT b.codigo_billete, b.fecha_emision, b.metodo_entrega, b.estado,
		       dr.pasajero_nombre, dr.pasajero_apellido,
		       EXISTS (SELECT 1 FROM check_ins ci WHERE ci.billete_id = b.id),
		       v.numero_vuelo, iv.fecha, co.codigo_iata, cd.codigo_iata
		FROM billetes b
		JOIN detalles_reserva dr ON dr.id = b.detalle_reserva_id
		JOIN reservas r ON r.id = dr.reserva_id
		JOIN instancias_vuelo iv ON iv.id = dr.instancia_vuelo_id
		JOIN vuelos v ON v.id = iv.vuelo_id
		JOIN ciudades co ON co.id = v.ciudad_origen_id
		JOIN ciudades cd ON cd.id = v.ciudad_destino_id
		WHERE r.usuario_id = $1
		ORDER BY b.fecha_emision DESC`, usuarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.TicketSummary, 0)
	for rows.Next() {
		var t domain.TicketSummary
		if err := rows.Scan(&t.CodigoBillete, &t.FechaEmision, &t.MetodoEntrega, &t.Estado,
			&t.PasajeroNombre, &t.PasajeroApellido, &t.CheckInRealizado,
			&t.NumeroVuelo, &t.Fecha, &t.Origen, &t.Destino); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *PGTicketRepository) CancelByReservation(ctx context.Context, reservaID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE billetes SET estado = $1
		WHERE detalle_reserva_id IN (SELECT id FROM detalles_reserva WHERE reserva_id = $2)`,
		domain.TicketCancelled, reservaID)
	return err
}

var _ TicketRepository = (*PGTicketRepository)(nil)
