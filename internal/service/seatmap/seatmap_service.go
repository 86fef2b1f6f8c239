package seatmap

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skytail/aeroreserva/internal/domain"
	"github.com/skytail/aeroreserva/internal/repository"
)

// SeatEntry is one seat in the map. Disponible reflects the occupied-set
// projection (seats of paid passengers on this instance), not the allocation
// lock.
type SeatEntry struct {
	NumeroAsiento string            `json:"numero_asiento"`
	Clase         domain.CabinClass `json:"clase"`
	Disponible    bool              `json:"disponible"`
}

type Summary struct {
	Total       int `json:"total"`
	Disponibles int `json:"disponibles"`
	Ocupados    int `json:"ocupados"`
}

type SeatMap struct {
	Flight   domain.Flight
	Fecha    time.Time
	Asientos []SeatEntry
	Resumen  Summary
}

type Service struct {
	instances repository.InstanceRepository
	seats     repository.SeatRepository
	log       *logrus.Logger
}

func NewService(instances repository.InstanceRepository, seats repository.SeatRepository, log *logrus.Logger) *Service {
	return &Service{instances: instances, seats: seats, log: log}
}

// SeatMap returns the seat inventory of a flight date, reconciling it first
// when the physical rows have drifted from the instance's configured
// capacities. claseFilter, when set, restricts the map to one class.
func (s *Service) SeatMap(ctx context.Context, vueloID int64, fecha time.Time, claseFilter string) (*SeatMap, error) {
	flight, err := s.instances.FlightByID(ctx, vueloID)
	if err != nil {
		return nil, err
	}
	instance, err := s.instances.GetByFlightAndDate(ctx, vueloID, fecha)
	if err != nil {
		return nil, err
	}

	var filter domain.CabinClass
	if claseFilter != "" {
		if filter, err = domain.NormalizeClass(claseFilter); err != nil {
			return nil, err
		}
	}

	seats, err := s.seats.ListByFlight(ctx, vueloID)
	if err != nil {
		return nil, err
	}

	capacities := instance.Capacities()
	if drifted(domain.CountSeatsByClass(seats), capacities) {
		s.log.WithFields(logrus.Fields{"vuelo_id": vueloID, "fecha": fecha.Format("2006-01-02")}).
			Info("seat inventory drifted from configured capacity, reconciling")
		if seats, err = s.seats.Reconcile(ctx, vueloID, capacities); err != nil {
			return nil, err
		}
	}

	occupied, err := s.seats.OccupiedSeatNumbers(ctx, vueloID, instance.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]SeatEntry, 0, len(seats))
	for _, seat := range seats {
		if filter != "" && seat.Clase != filter {
			continue
		}
		_, taken := occupied[seat.NumeroAsiento]
		entries = append(entries, SeatEntry{
			NumeroAsiento: seat.NumeroAsiento,
			Clase:         seat.Clase,
			Disponible:    !taken,
		})
	}

	available := 0
	for _, e := range entries {
		if e.Disponible {
			available++
		}
	}

	return &SeatMap{
		Flight:   *flight,
		Fecha:    fecha,
		Asientos: entries,
		Resumen: Summary{
			Total:       len(seats),
			Disponibles: available,
			Ocupados:    len(occupied),
		},
	}, nil
}

func drifted(counts, capacities map[domain.CabinClass]int) bool {
	for class, capacity := range capacities {
		if counts[class] != capacity {
			return true
		}
	}
	return false
}
