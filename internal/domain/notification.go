package domain

import (
	"encoding/json"
	"time"
)

type NotificationType string

const (
	NotificationFlightChange NotificationType = "CAMBIO_VUELO"
	NotificationReminder     NotificationType = "RECORDATORIO"
	NotificationOffer        NotificationType = "OFERTA"
	NotificationConfirmation NotificationType = "CONFIRMACION"
	NotificationAlert        NotificationType = "ALERTA"
)

// Notification is a per-user event record. Metadata is an opaque blob the
// core passes through unchanged.
type Notification struct {
	ID            int64
	UsuarioID     int64
	Tipo          NotificationType
	Titulo        string
	Mensaje       string
	Leido         bool
	FechaCreacion time.Time
	FechaLeido    *time.Time
	Metadata      json.RawMessage
}
