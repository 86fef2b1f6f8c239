package kafka

import "time"

// Event types published on the reservations and notifications topics.
const (
	EventReservationCreated   = "reservation_created"
	EventReservationCancelled = "reservation_cancelled"
	EventTicketIssued         = "ticket_issued"
)

// ReservationEvent announces a reservation lifecycle transition.
type ReservationEvent struct {
	Type          string    `json:"type"`
	CodigoReserva string    `json:"codigo_reserva"`
	UsuarioID     int64     `json:"usuario_id"`
	Estado        string    `json:"estado"`
	Total         string    `json:"total"`
	Pasajeros     int       `json:"pasajeros"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// TicketEvent carries everything the notification worker needs to build the
// email and the in-app notification without hitting the database again.
type TicketEvent struct {
	Type          string    `json:"type"`
	CodigoBillete string    `json:"codigo_billete"`
	CodigoReserva string    `json:"codigo_reserva"`
	UsuarioID     int64     `json:"usuario_id"`
	Email         string    `json:"email"`
	Nombre        string    `json:"nombre"`
	MetodoEntrega string    `json:"metodo_entrega"`
	OccurredAt    time.Time `json:"occurred_at"`
}
