package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/skytail/aeroreserva/internal/domain"
)

// SearchQuery is the resolved search input: city ids instead of IATA codes,
// a canonical class and an optional airline restriction.
type SearchQuery struct {
	OriginCityID int64
	DestCityID   int64
	Fecha        time.Time
	Clase        domain.CabinClass
	AirlineCode  string
}

// SearchRow is one (flight, fare, optional instance) candidate produced by
// the search join before the business filters run.
type SearchRow struct {
	Flight   domain.Flight
	Fare     domain.Fare
	Instance *domain.FlightInstance
}

type CatalogRepository interface {
	ListCities(ctx context.Context) ([]domain.City, error)
	ListAirlines(ctx context.Context) ([]domain.Airline, error)
	CityByIATA(ctx context.Context, code string) (*domain.City, error)
	FlightByNumber(ctx context.Context, numeroVuelo string) (*domain.Flight, error)
	FaresByFlight(ctx context.Context, vueloID int64) ([]domain.Fare, error)
	EffectiveFare(ctx context.Context, vueloID int64, clase domain.CabinClass, fecha time.Time) (*domain.Fare, error)
	Search(ctx context.Context, q SearchQuery) ([]SearchRow, error)
}

type PGCatalogRepository struct {
	db DB
	sb sq.StatementBuilderType
}

func NewCatalogRepository(db DB) CatalogRepository {
	return &PGCatalogRepository{db: db, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (r *PGCatalogRepository) ListCities(ctx context.Context) ([]domain.City, error) {
	rows, err := r.db.Query(ctx, `SELECT id, nombre, codigo_iata, pais, COALESCE(zona_horaria, '') FROM ciudades ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := make([]domain.City, 0)
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.ID, &c.Nombre, &c.IATACode, &c.Pais, &c.Timezone); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

func (r *PGCatalogRepository) ListAirlines(ctx context.Context) ([]domain.Airline, error) {
	rows, err := r.db.Query(ctx, `SELECT id, nombre, codigo_iata, COALESCE(pais, ''), activa FROM aerolineas WHERE activa ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	airlines := make([]domain.Airline, 0)
	for rows.Next() {
		var a domain.Airline
		if err := rows.Scan(&a.ID, &a.Nombre, &a.IATACode, &a.Pais, &a.Activa); err != nil {
			return nil, err
		}
		airlines = append(airlines, a)
	}
	return airlines, rows.Err()
}

func (r *PGCatalogRepository) CityByIATA(ctx context.Context, code string) (*domain.City, error) {
	row := r.db.QueryRow(ctx, `SELECT id, nombre, codigo_iata, pais, COALESCE(zona_horaria, '') FROM ciudades WHERE codigo_iata = $1`, code)
	var c domain.City
	if err := row.Scan(&c.ID, &c.Nombre, &c.IATACode, &c.Pais, &c.Timezone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGCatalogRepository) FlightByNumber(ctx context.Context, numeroVuelo string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `
		SELECT v.id, v.numero_vuelo, v.aerolinea_id, a.nombre, v.ciudad_origen_id, v.ciudad_destino_id,
		       v.hora_salida, v.hora_llegada, v.duracion_minutos, v.dias_operacion, v.activo
		FROM vuelos v
		JOIN aerolineas a ON a.id = v.aerolinea_id
		WHERE v.numero_vuelo = $1`, numeroVuelo)
	return scanFlight(row)
}

func (r *PGCatalogRepository) FaresByFlight(ctx context.Context, vueloID int64) ([]domain.Fare, error) {
	rows, err := r.db.Query(ctx, `SELECT id, vuelo_id, clase, precio::text, moneda, fecha_inicio, fecha_fin FROM tarifas WHERE vuelo_id = $1 ORDER BY clase, fecha_inicio`, vueloID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fares := make([]domain.Fare, 0)
	for rows.Next() {
		f, err := scanFare(rows)
		if err != nil {
			return nil, err
		}
		fares = append(fares, *f)
	}
	return fares, rows.Err()
}

// EffectiveFare resolves the single fare whose validity window contains the
// date for (flight, class). Open-ended fares have no end bound.
func (r *PGCatalogRepository) EffectiveFare(ctx context.Context, vueloID int64, clase domain.CabinClass, fecha time.Time) (*domain.Fare, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, vuelo_id, clase, precio::text, moneda, fecha_inicio, fecha_fin
		FROM tarifas
		WHERE vuelo_id = $1 AND clase = $2 AND fecha_inicio <= $3 AND (fecha_fin IS NULL OR fecha_fin >= $3)
		LIMIT 1`, vueloID, clase, fecha)
	f, err := scanFare(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *PGCatalogRepository) Search(ctx context.Context, q SearchQuery) ([]SearchRow, error) {
	query := r.sb.
		Select(
			"v.id", "v.numero_vuelo", "v.aerolinea_id", "a.nombre", "v.ciudad_origen_id", "v.ciudad_destino_id",
			"v.hora_salida", "v.hora_llegada", "v.duracion_minutos", "v.dias_operacion", "v.activo",
			"t.id", "t.precio::text", "t.moneda", "t.fecha_inicio", "t.fecha_fin",
			"iv.id", "iv.estado", "iv.puerta",
			"iv.capacidad_economica", "iv.capacidad_ejecutiva", "iv.capacidad_primera",
			"iv.asientos_disponibles_economica", "iv.asientos_disponibles_ejecutiva", "iv.asientos_disponibles_primera",
		).
		From("vuelos v").
		Join("tarifas t ON t.vuelo_id = v.id").
		Join("aerolineas a ON a.id = v.aerolinea_id").
		LeftJoin("instancias_vuelo iv ON iv.vuelo_id = v.id AND iv.fecha = ?", q.Fecha).
		Where(sq.Eq{
			"v.ciudad_origen_id":  q.OriginCityID,
			"v.ciudad_destino_id": q.DestCityID,
			"v.activo":            true,
			"t.clase":             q.Clase,
		}).
		Where(sq.LtOrEq{"t.fecha_inicio": q.Fecha}).
		Where(sq.Or{sq.GtOrEq{"t.fecha_fin": q.Fecha}, sq.Eq{"t.fecha_fin": nil}})

	if q.AirlineCode != "" {
		query = query.Where(sq.Eq{"a.codigo_iata": q.AirlineCode})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]SearchRow, 0)
	for rows.Next() {
		var (
			sr        SearchRow
			salida    pgtype.Time
			llegada   pgtype.Time
			precio    string
			instID    *int64
			instState *string
			puerta    *string
			capEco    *int
			capEje    *int
			capPri    *int
			dispEco   *int
			dispEje   *int
			dispPri   *int
		)
		if err := rows.Scan(
			&sr.Flight.ID, &sr.Flight.NumeroVuelo, &sr.Flight.AirlineID, &sr.Flight.AirlineName,
			&sr.Flight.OriginCityID, &sr.Flight.DestCityID,
			&salida, &llegada, &sr.Flight.DuracionMin, &sr.Flight.DiasOperacion, &sr.Flight.Activo,
			&sr.Fare.ID, &precio, &sr.Fare.Moneda, &sr.Fare.FechaInicio, &sr.Fare.FechaFin,
			&instID, &instState, &puerta,
			&capEco, &capEje, &capPri,
			&dispEco, &dispEje, &dispPri,
		); err != nil {
			return nil, err
		}
		sr.Flight.HoraSalida = timeOfDay(salida)
		sr.Flight.HoraLlegada = timeOfDay(llegada)
		sr.Fare.VueloID = sr.Flight.ID
		sr.Fare.Clase = q.Clase
		if sr.Fare.Precio, err = decimal.NewFromString(precio); err != nil {
			return nil, fmt.Errorf("parse fare price: %w", err)
		}
		if instID != nil {
			sr.Instance = &domain.FlightInstance{
				ID:                 *instID,
				VueloID:            sr.Flight.ID,
				Fecha:              q.Fecha,
				Estado:             domain.InstanceState(*instState),
				Puerta:             deref(puerta),
				CapacidadEconomica: derefInt(capEco),
				CapacidadEjecutiva: derefInt(capEje),
				CapacidadPrimera:   derefInt(capPri),
				AsientosEconomica:  derefInt(dispEco),
				AsientosEjecutiva:  derefInt(dispEje),
				AsientosPrimera:    derefInt(dispPri),
			}
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var (
		f       domain.Flight
		salida  pgtype.Time
		llegada pgtype.Time
	)
	if err := row.Scan(&f.ID, &f.NumeroVuelo, &f.AirlineID, &f.AirlineName, &f.OriginCityID, &f.DestCityID,
		&salida, &llegada, &f.DuracionMin, &f.DiasOperacion, &f.Activo); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	f.HoraSalida = timeOfDay(salida)
	f.HoraLlegada = timeOfDay(llegada)
	return &f, nil
}

func scanFare(row pgx.Row) (*domain.Fare, error) {
	var (
		f      domain.Fare
		precio string
	)
	if err := row.Scan(&f.ID, &f.VueloID, &f.Clase, &precio, &f.Moneda, &f.FechaInicio, &f.FechaFin); err != nil {
		return nil, err
	}
	var err error
	if f.Precio, err = decimal.NewFromString(precio); err != nil {
		return nil, fmt.Errorf("parse fare price: %w", err)
	}
	return &f, nil
}

func timeOfDay(t pgtype.Time) time.Duration {
	return time.Duration(t.Microseconds) * time.Microsecond
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

var _ CatalogRepository = (*PGCatalogRepository)(nil)
