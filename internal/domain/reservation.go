package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDIENTE"
	ReservationConfirmed ReservationStatus = "CONFIRMADA"
	ReservationCancelled ReservationStatus = "CANCELADA"
)

// Reservation aggregates one or more passenger line items under a single
// booking code. Total is the sum of the item prices locked at booking time.
type Reservation struct {
	ID            int64
	CodigoReserva string
	UsuarioID     int64
	FechaReserva  time.Time
	Estado        ReservationStatus
	Total         decimal.Decimal

	Detalles []ReservationItem
}

// ReservationItem is one passenger on one flight instance in one class,
// optionally bound to a physical seat. Exactly one ticket may later attach
// to it.
type ReservationItem struct {
	ID               int64
	ReservaID        int64
	InstanciaVueloID int64
	PasajeroNombre   string
	PasajeroApellido string
	AsientoID        *int64
	NumeroAsiento    string // denormalized for responses; empty if unassigned
	Clase            CabinClass
	Precio           decimal.Decimal
}
