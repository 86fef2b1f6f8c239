package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/skytail/aeroreserva/internal/domain"
)

type PaymentRepository interface {
	CreateCard(ctx context.Context, card *domain.CreditCard) error
	ListCards(ctx context.Context, usuarioID int64) ([]domain.CreditCard, error)
	CardByID(ctx context.Context, id, usuarioID int64) (*domain.CreditCard, error)
	DeleteCard(ctx context.Context, id, usuarioID int64) error
	// Process records the payment, confirms the reservation and mints the
	// tickets in one transaction.
	Process(ctx context.Context, payment *domain.Payment, tickets []*domain.Ticket) error
	HistoryByUser(ctx context.Context, usuarioID int64) ([]domain.Payment, error)
}

type PGPaymentRepository struct {
	db DB
}

func NewPaymentRepository(db DB) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

func (r *PGPaymentRepository) CreateCard(ctx context.Context, card *domain.CreditCard) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO tarjetas_credito (usuario_id, numero_tarjeta, nombre_titular, fecha_expiracion, cvv, tipo)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		card.UsuarioID, card.NumeroTarjeta, card.NombreTitular, card.FechaExpiracion, card.CVV, card.Tipo).
		Scan(&card.ID)
}

func (r *PGPaymentRepository) ListCards(ctx context.Context, usuarioID int64) ([]domain.CreditCard, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, usuario_id, numero_tarjeta, nombre_titular, fecha_expiracion, cvv, tipo FROM tarjetas_credito WHERE usuario_id = $1`,
		usuarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := make([]domain.CreditCard, 0)
	for rows.Next() {
		var c domain.CreditCard
		if err := rows.Scan(&c.ID, &c.UsuarioID, &c.NumeroTarjeta, &c.NombreTitular, &c.FechaExpiracion, &c.CVV, &c.Tipo); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *PGPaymentRepository) CardByID(ctx context.Context, id, usuarioID int64) (*domain.CreditCard, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, usuario_id, numero_tarjeta, nombre_titular, fecha_expiracion, cvv, tipo FROM tarjetas_credito WHERE id = $1 AND usuario_id = $2`,
		id, usuarioID)
	var c domain.CreditCard
	if err := row.Scan(&c.ID, &c.UsuarioID, &c.NumeroTarjeta, &c.NombreTitular, &c.FechaExpiracion, &c.CVV, &c.Tipo); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGPaymentRepository) DeleteCard(ctx context.Context, id, usuarioID int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM tarjetas_credito WHERE id = $1 AND usuario_id = $2`, id, usuarioID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGPaymentRepository) Process(ctx context.Context, payment *domain.Payment, tickets []*domain.Ticket) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `
		INSERT INTO pagos (reserva_id, tarjeta_id, monto, estado, numero_autorizacion)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, fecha_pago`,
		payment.ReservaID, payment.TarjetaID, payment.Monto.StringFixed(2), payment.Estado, payment.NumeroAutorizacion).
		Scan(&payment.ID, &payment.FechaPago); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, `UPDATE reservas SET estado = $1 WHERE id = $2 AND estado = $3`,
		domain.ReservationConfirmed, payment.ReservaID, domain.ReservationPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: reservation no longer pending", domain.ErrWrongState)
	}

	for _, t := range tickets {
		if err := tx.QueryRow(ctx, `
			INSERT INTO billetes (codigo_billete, detalle_reserva_id, metodo_entrega, estado)
			VALUES ($1, $2, $3, $4) RETURNING id, fecha_emision`,
			t.CodigoBillete, t.DetalleReservaID, t.MetodoEntrega, t.Estado).
			Scan(&t.ID, &t.FechaEmision); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGPaymentRepository) HistoryByUser(ctx context.Context, usuarioID int64) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.reserva_id, p.tarjeta_id, p.monto::text, p.fecha_pago, p.estado, COALESCE(p.numero_autorizacion, '')
		FROM pagos p
		JOIN reservas r ON r.id = p.reserva_id
		WHERE r.usuario_id = $1
		ORDER BY p.fecha_pago DESC`, usuarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		var (
			p     domain.Payment
			monto string
		)
		if err := rows.Scan(&p.ID, &p.ReservaID, &p.TarjetaID, &monto, &p.FechaPago, &p.Estado, &p.NumeroAutorizacion); err != nil {
			return nil, err
		}
		if p.Monto, err = decimal.NewFromString(monto); err != nil {
			return nil, fmt.Errorf("parse payment amount: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
