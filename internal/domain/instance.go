package domain

import "time"

type InstanceState string

const (
	InstanceScheduled InstanceState = "PROGRAMADO"
	InstanceOnTime    InstanceState = "EN_HORA"
)

// FlightInstance is one calendar-date occurrence of a flight. The per-class
// capacity is fixed when the instance is created; the availability counters
// hold seats still unsold and must stay within [0, capacity].
type FlightInstance struct {
	ID      int64
	VueloID int64
	Fecha   time.Time // date only
	Estado  InstanceState
	Puerta  string

	CapacidadEconomica int
	CapacidadEjecutiva int
	CapacidadPrimera   int

	AsientosEconomica int
	AsientosEjecutiva int
	AsientosPrimera   int
}

// Available returns the free-seat counter for the class.
func (i FlightInstance) Available(c CabinClass) int {
	switch c {
	case ClassBusiness:
		return i.AsientosEjecutiva
	case ClassFirst:
		return i.AsientosPrimera
	default:
		return i.AsientosEconomica
	}
}

// Capacity returns the class capacity fixed at instance creation.
func (i FlightInstance) Capacity(c CabinClass) int {
	switch c {
	case ClassBusiness:
		return i.CapacidadEjecutiva
	case ClassFirst:
		return i.CapacidadPrimera
	default:
		return i.CapacidadEconomica
	}
}

// Capacities maps each class to its configured capacity. The physical seat
// inventory is reconciled against these numbers.
func (i FlightInstance) Capacities() map[CabinClass]int {
	return map[CabinClass]int{
		ClassEconomy:  i.CapacidadEconomica,
		ClassBusiness: i.CapacidadEjecutiva,
		ClassFirst:    i.CapacidadPrimera,
	}
}
