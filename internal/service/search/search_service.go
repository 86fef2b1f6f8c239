package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/skytail/aeroreserva/config"
	"github.com/skytail/aeroreserva/internal/domain"
	"github.com/skytail/aeroreserva/internal/repository"
)

// Input is a flight search request. Fecha is a calendar date; Clase may be
// empty (defaults to ECONOMICA) or any recognized synonym.
type Input struct {
	Origen          string
	Destino         string
	Fecha           time.Time
	Clase           string
	AerolineaCodigo string
	HorarioSalida   string // morning | afternoon | evening | all
	PrecioMaximo    *decimal.Decimal
}

// Offer is one purchasable (flight, fare, availability) projection.
type Offer struct {
	VueloID             int64             `json:"vuelo_id"`
	InstanciaVueloID    *int64            `json:"instancia_vuelo_id"`
	NumeroVuelo         string            `json:"numero_vuelo"`
	Aerolinea           string            `json:"aerolinea"`
	Origen              string            `json:"origen"`
	Destino             string            `json:"destino"`
	Fecha               string            `json:"fecha"`
	HoraSalida          string            `json:"hora_salida"`
	HoraLlegada         string            `json:"hora_llegada"`
	DuracionMinutos     int               `json:"duracion_minutos"`
	Clase               domain.CabinClass `json:"clase"`
	Precio              decimal.Decimal   `json:"precio"`
	AsientosDisponibles int               `json:"asientos_disponibles"`

	departure time.Duration
}

// CatalogCache keeps the hot reference data out of the search path.
type CatalogCache interface {
	GetCities(ctx context.Context) ([]domain.City, error)
	SetCities(ctx context.Context, cities []domain.City) error
	GetAirlines(ctx context.Context) ([]domain.Airline, error)
	SetAirlines(ctx context.Context, airlines []domain.Airline) error
}

type Service struct {
	catalog   repository.CatalogRepository
	instances repository.InstanceRepository
	cache     CatalogCache
	cfg       config.BookingConfig
	loc       *time.Location
	now       func() time.Time
	log       *logrus.Logger
}

func NewService(catalog repository.CatalogRepository, instances repository.InstanceRepository, cache CatalogCache, cfg config.BookingConfig, loc *time.Location, log *logrus.Logger) *Service {
	return &Service{
		catalog:   catalog,
		instances: instances,
		cache:     cache,
		cfg:       cfg,
		loc:       loc,
		now:       time.Now,
		log:       log,
	}
}

// WithClock overrides the wall clock, used by tests of the same-day cutoff.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SearchBySchedule returns purchasable offers ordered by departure time.
func (s *Service) SearchBySchedule(ctx context.Context, in Input) ([]Offer, error) {
	offers, err := s.search(ctx, in)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(offers, func(i, j int) bool { return offers[i].departure < offers[j].departure })
	return applyPostFilters(offers, in), nil
}

// SearchByFare runs the same pipeline re-sorted by ascending price.
func (s *Service) SearchByFare(ctx context.Context, in Input) ([]Offer, error) {
	offers, err := s.search(ctx, in)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(offers, func(i, j int) bool { return offers[i].Precio.LessThan(offers[j].Precio) })
	return applyPostFilters(offers, in), nil
}

func (s *Service) search(ctx context.Context, in Input) ([]Offer, error) {
	origin, err := s.catalog.CityByIATA(ctx, in.Origen)
	if err != nil {
		return nil, fmt.Errorf("origin city %s: %w", in.Origen, err)
	}
	dest, err := s.catalog.CityByIATA(ctx, in.Destino)
	if err != nil {
		return nil, fmt.Errorf("destination city %s: %w", in.Destino, err)
	}

	clase, err := domain.NormalizeClassDefault(in.Clase)
	if err != nil {
		return nil, err
	}

	rows, err := s.catalog.Search(ctx, repository.SearchQuery{
		OriginCityID: origin.ID,
		DestCityID:   dest.ID,
		Fecha:        in.Fecha,
		Clase:        clase,
		AirlineCode:  in.AerolineaCodigo,
	})
	if err != nil {
		return nil, err
	}

	weekday := domain.WeekdayIndex(in.Fecha)
	now := s.now().In(s.loc)
	isToday := sameDate(in.Fecha, now)
	lead := time.Duration(s.cfg.BookingLeadMinutes) * time.Minute
	sinceMidnight := now.Sub(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc))

	offers := make([]Offer, 0, len(rows))
	for _, row := range rows {
		if !row.Flight.OperatesOn(weekday) {
			continue
		}
		// Same-day searches hide flights inside the booking lead margin or
		// already departed.
		if isToday && sinceMidnight > row.Flight.HoraSalida-lead {
			continue
		}

		offers = append(offers, Offer{
			VueloID:             row.Flight.ID,
			InstanciaVueloID:    instanceID(row.Instance),
			NumeroVuelo:         row.Flight.NumeroVuelo,
			Aerolinea:           row.Flight.AirlineName,
			Origen:              fmt.Sprintf("%s (%s)", origin.Nombre, origin.IATACode),
			Destino:             fmt.Sprintf("%s (%s)", dest.Nombre, dest.IATACode),
			Fecha:               in.Fecha.Format("2006-01-02"),
			HoraSalida:          domain.FormatTimeOfDay(row.Flight.HoraSalida),
			HoraLlegada:         domain.FormatTimeOfDay(row.Flight.HoraLlegada),
			DuracionMinutos:     row.Flight.DuracionMin,
			Clase:               clase,
			Precio:              row.Fare.Precio,
			AsientosDisponibles: s.availability(row.Instance, clase),
			departure:           row.Flight.HoraSalida,
		})
	}
	return offers, nil
}

func (s *Service) availability(instance *domain.FlightInstance, clase domain.CabinClass) int {
	if instance != nil {
		return instance.Available(clase)
	}
	// No instance yet for that date: report the configured default capacity.
	switch clase {
	case domain.ClassBusiness:
		return s.cfg.DefaultBusinessSeats
	case domain.ClassFirst:
		return s.cfg.DefaultFirstSeats
	default:
		return s.cfg.DefaultEconomySeats
	}
}

func applyPostFilters(offers []Offer, in Input) []Offer {
	out := offers
	if in.HorarioSalida != "" && in.HorarioSalida != "all" {
		filtered := out[:0:0]
		for _, o := range out {
			if inTimeBucket(o.departure, in.HorarioSalida) {
				filtered = append(filtered, o)
			}
		}
		out = filtered
	}
	if in.PrecioMaximo != nil {
		filtered := out[:0:0]
		for _, o := range out {
			if o.Precio.LessThanOrEqual(*in.PrecioMaximo) {
				filtered = append(filtered, o)
			}
		}
		out = filtered
	}
	return out
}

// inTimeBucket classifies a departure into morning 06-12, afternoon 12-18 or
// evening 18-06 (wrapping past midnight).
func inTimeBucket(departure time.Duration, bucket string) bool {
	hour := int(departure.Hours())
	switch bucket {
	case "morning":
		return hour >= 6 && hour < 12
	case "afternoon":
		return hour >= 12 && hour < 18
	case "evening":
		return hour >= 18 || hour < 6
	default:
		return true
	}
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func instanceID(i *domain.FlightInstance) *int64 {
	if i == nil {
		return nil
	}
	return &i.ID
}

// ListCities serves the reference list through the catalog cache.
func (s *Service) ListCities(ctx context.Context) ([]domain.City, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCities(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}
	cities, err := s.catalog.ListCities(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetCities(ctx, cities); err != nil {
			s.log.WithError(err).Warn("cache cities")
		}
	}
	return cities, nil
}

// ListAirlines serves the active airlines through the catalog cache.
func (s *Service) ListAirlines(ctx context.Context) ([]domain.Airline, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetAirlines(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}
	airlines, err := s.catalog.ListAirlines(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetAirlines(ctx, airlines); err != nil {
			s.log.WithError(err).Warn("cache airlines")
		}
	}
	return airlines, nil
}

// FlightInfo returns the route definition with its fares and, when a date is
// given, the operational state of that date's instance.
type FlightInfo struct {
	Flight domain.Flight
	Fares  []domain.Fare
	Estado *domain.FlightInstance
}

func (s *Service) FlightInfo(ctx context.Context, numeroVuelo string, fecha *time.Time) (*FlightInfo, error) {
	flight, err := s.catalog.FlightByNumber(ctx, numeroVuelo)
	if err != nil {
		return nil, err
	}
	fares, err := s.catalog.FaresByFlight(ctx, flight.ID)
	if err != nil {
		return nil, err
	}

	info := &FlightInfo{Flight: *flight, Fares: fares}
	if fecha != nil {
		instance, err := s.instances.GetByFlightAndDate(ctx, flight.ID, *fecha)
		if err == nil {
			info.Estado = instance
		} else if err != repository.ErrNotFound {
			return nil, err
		}
	}
	return info, nil
}
