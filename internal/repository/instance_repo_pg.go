package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/skytail/aeroreserva/internal/domain"
)

type InstanceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.FlightInstance, error)
	GetByFlightAndDate(ctx context.Context, vueloID int64, fecha time.Time) (*domain.FlightInstance, error)
	FlightByID(ctx context.Context, vueloID int64) (*domain.Flight, error)
}

type PGInstanceRepository struct {
	db DB
}

func NewInstanceRepository(db DB) InstanceRepository {
	return &PGInstanceRepository{db: db}
}

const instanceColumns = `id, vuelo_id, fecha, estado, COALESCE(puerta, ''),
	capacidad_economica, capacidad_ejecutiva, capacidad_primera,
	asientos_disponibles_economica, asientos_disponibles_ejecutiva, asientos_disponibles_primera`

func (r *PGInstanceRepository) GetByID(ctx context.Context, id int64) (*domain.FlightInstance, error) {
	row := r.db.QueryRow(ctx, `SELECT `+instanceColumns+` FROM instancias_vuelo WHERE id = $1`, id)
	return scanInstance(row)
}

func (r *PGInstanceRepository) GetByFlightAndDate(ctx context.Context, vueloID int64, fecha time.Time) (*domain.FlightInstance, error) {
	row := r.db.QueryRow(ctx, `SELECT `+instanceColumns+` FROM instancias_vuelo WHERE vuelo_id = $1 AND fecha = $2`, vueloID, fecha)
	return scanInstance(row)
}

func (r *PGInstanceRepository) FlightByID(ctx context.Context, vueloID int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `
		SELECT v.id, v.numero_vuelo, v.aerolinea_id, a.nombre, v.ciudad_origen_id, v.ciudad_destino_id,
		       v.hora_salida, v.hora_llegada, v.duracion_minutos, v.dias_operacion, v.activo
		FROM vuelos v
		JOIN aerolineas a ON a.id = v.aerolinea_id
		WHERE v.id = $1`, vueloID)
	return scanFlight(row)
}

func scanInstance(row pgx.Row) (*domain.FlightInstance, error) {
	var i domain.FlightInstance
	if err := row.Scan(&i.ID, &i.VueloID, &i.Fecha, &i.Estado, &i.Puerta,
		&i.CapacidadEconomica, &i.CapacidadEjecutiva, &i.CapacidadPrimera,
		&i.AsientosEconomica, &i.AsientosEjecutiva, &i.AsientosPrimera); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

var _ InstanceRepository = (*PGInstanceRepository)(nil)
