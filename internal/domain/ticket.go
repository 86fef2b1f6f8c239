package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TicketStatus string

const (
	TicketIssued    TicketStatus = "EMITIDO"
	TicketCancelled TicketStatus = "CANCELADO"
)

type DeliveryMethod string

const (
	DeliveryEmail   DeliveryMethod = "EMAIL"
	DeliveryAirport DeliveryMethod = "AEROPUERTO"
)

// Ticket is the per-passenger proof of purchase, minted 1:1 from a
// reservation line item when the reservation is confirmed.
type Ticket struct {
	ID               int64
	CodigoBillete    string
	DetalleReservaID int64
	FechaEmision     time.Time
	MetodoEntrega    DeliveryMethod
	Estado           TicketStatus
}

// CheckIn binds a boarding seat and gate to a ticket exactly once.
type CheckIn struct {
	ID              int64
	BilleteID       int64
	FechaCheckIn    time.Time
	AsientoAsignado string
	PuertaEmbarque  string
}

// TicketSummary is the list projection of a ticket with its flight context.
type TicketSummary struct {
	CodigoBillete    string
	FechaEmision     time.Time
	MetodoEntrega    DeliveryMethod
	Estado           TicketStatus
	PasajeroNombre   string
	PasajeroApellido string
	CheckInRealizado bool

	NumeroVuelo string
	Fecha       time.Time
	Origen      string
	Destino     string
}

// TicketDetail is the full projection used by the ticket lookup and by
// check-in: ticket, passenger, flight, seat and price in one read.
type TicketDetail struct {
	Ticket Ticket

	PasajeroNombre   string
	PasajeroApellido string
	Clase            CabinClass
	Precio           decimal.Decimal
	NumeroAsiento    string // empty if no seat bound

	ReservaID     int64
	CodigoReserva string
	UsuarioID     int64

	InstanciaVueloID int64
	Fecha            time.Time
	Puerta           string
	NumeroVuelo      string
	Aerolinea        string
	Origen           string
	Destino          string
	HoraSalida       time.Duration
	HoraLlegada      time.Duration
}
