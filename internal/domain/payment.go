package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentApproved PaymentStatus = "APROBADO"
	PaymentRejected PaymentStatus = "RECHAZADO"
)

// Payment records a simulated authorization against a stored card for the
// reservation's total.
type Payment struct {
	ID                 int64
	ReservaID          int64
	TarjetaID          int64
	Monto              decimal.Decimal
	FechaPago          time.Time
	Estado             PaymentStatus
	NumeroAutorizacion string
}

// CreditCard is a stored payment instrument. Authorization against a real
// processor is out of scope; the card is only resolved by id + owner.
type CreditCard struct {
	ID              int64
	UsuarioID       int64
	NumeroTarjeta   string
	NombreTitular   string
	FechaExpiracion string
	CVV             string
	Tipo            string
}

// Masked returns the card number with all but the last four digits hidden.
func (c CreditCard) Masked() string {
	if len(c.NumeroTarjeta) <= 4 {
		return c.NumeroTarjeta
	}
	return "************" + c.NumeroTarjeta[len(c.NumeroTarjeta)-4:]
}
