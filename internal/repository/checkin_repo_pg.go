package repository

import (
	"context"

	"github.com/skytail/aeroreserva/internal/domain"
)

type CheckinRepository interface {
	Exists(ctx context.Context, billeteID int64) (bool, error)
	Create(ctx context.Context, checkIn *domain.CheckIn) error
}

type PGCheckinRepository struct {
	db DB
}

func NewCheckinRepository(db DB) CheckinRepository {
	return &PGCheckinRepository{db: db}
}

func (r *PGCheckinRepository) Exists(ctx context.Context, billeteID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM check_ins WHERE billete_id = $1)`, billeteID).Scan(&exists)
	return exists, err
}

func (r *PGCheckinRepository) Create(ctx context.Context, checkIn *domain.CheckIn) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO check_ins (billete_id, asiento_asignado, puerta_embarque)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, '')) RETURNING id, fecha_check_in`,
		checkIn.BilleteID, checkIn.AsientoAsignado, checkIn.PuertaEmbarque).
		Scan(&checkIn.ID, &checkIn.FechaCheckIn)
}

var _ CheckinRepository = (*PGCheckinRepository)(nil)
