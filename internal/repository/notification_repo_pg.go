package repository

import (
	"context"

	"github.com/skytail/aeroreserva/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, usuarioID int64, unreadOnly bool, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, usuarioID int64) (int, error)
	MarkRead(ctx context.Context, id, usuarioID int64) error
}

type PGNotificationRepository struct {
	db DB
}

func NewNotificationRepository(db DB) NotificationRepository {
	return &PGNotificationRepository{db: db}
}

func (r *PGNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	// metadata is stored untouched; the core enforces no schema on it
	return r.db.QueryRow(ctx, `
		INSERT INTO notificaciones (usuario_id, tipo, titulo, mensaje, metadata)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, fecha_creacion`,
		n.UsuarioID, n.Tipo, n.Titulo, n.Mensaje, n.Metadata).
		Scan(&n.ID, &n.FechaCreacion)
}

func (r *PGNotificationRepository) ListByUser(ctx context.Context, usuarioID int64, unreadOnly bool, limit int) ([]domain.Notification, error) {
	query := `SELECT id, usuario_id, tipo, titulo, mensaje, leido, fecha_creacion, fecha_leido, metadata
		FROM notificaciones WHERE usuario_id = $1`
	if unreadOnly {
		query += ` AND NOT leido`
	}
	query += ` ORDER BY fecha_creacion DESC LIMIT $2`

	rows, err := r.db.Query(ctx, query, usuarioID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UsuarioID, &n.Tipo, &n.Titulo, &n.Mensaje, &n.Leido,
			&n.FechaCreacion, &n.FechaLeido, &n.Metadata); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *PGNotificationRepository) CountUnread(ctx context.Context, usuarioID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notificaciones WHERE usuario_id = $1 AND NOT leido`, usuarioID).Scan(&count)
	return count, err
}

func (r *PGNotificationRepository) MarkRead(ctx context.Context, id, usuarioID int64) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE notificaciones SET leido = true, fecha_leido = now()
		WHERE id = $1 AND usuario_id = $2 AND NOT leido`, id, usuarioID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// distinguish missing from already-read: marking twice is a no-op
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM notificaciones WHERE id = $1 AND usuario_id = $2)`, id, usuarioID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

var _ NotificationRepository = (*PGNotificationRepository)(nil)
