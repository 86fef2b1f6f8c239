package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type City struct {
	ID       int64  `json:"id"`
	Nombre   string `json:"nombre"`
	IATACode string `json:"codigo_iata"`
	Pais     string `json:"pais"`
	Timezone string `json:"zona_horaria,omitempty"`
}

type Airline struct {
	ID       int64  `json:"id"`
	Nombre   string `json:"nombre"`
	IATACode string `json:"codigo_iata"`
	Pais     string `json:"pais,omitempty"`
	Activa   bool   `json:"activa"`
}

// Flight is the immutable route definition. DiasOperacion is a 7-character
// bitmask, index 0 = Monday.
type Flight struct {
	ID            int64
	NumeroVuelo   string
	AirlineID     int64
	AirlineName   string
	OriginCityID  int64
	DestCityID    int64
	HoraSalida    time.Duration // offset from midnight
	HoraLlegada   time.Duration
	DuracionMin   int
	DiasOperacion string
	Activo        bool
}

// OperatesOn reports whether the flight runs on the given weekday index
// (0 = Monday). Malformed masks are treated as closed.
func (f Flight) OperatesOn(weekday int) bool {
	if weekday < 0 || weekday >= len(f.DiasOperacion) {
		return false
	}
	return f.DiasOperacion[weekday] == '1'
}

// WeekdayIndex converts a calendar date to the Monday-based index used by
// DiasOperacion.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// FormatTimeOfDay renders a midnight offset as HH:MM.
func FormatTimeOfDay(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return pad2(h) + ":" + pad2(m)
}

func pad2(n int) string {
	if n < 10 {
		return string([]byte{'0', byte('0' + n)})
	}
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

// Fare prices one (class, validity window) tuple of a flight. FechaFin nil
// means open-ended.
type Fare struct {
	ID          int64
	VueloID     int64
	Clase       CabinClass
	Precio      decimal.Decimal
	Moneda      string
	FechaInicio time.Time
	FechaFin    *time.Time
}

// EffectiveOn reports whether the fare's validity window contains the date.
func (f Fare) EffectiveOn(date time.Time) bool {
	if date.Before(f.FechaInicio) {
		return false
	}
	return f.FechaFin == nil || !date.After(*f.FechaFin)
}
