// Package codes generates the public identifiers handed to travellers:
// booking codes, ticket codes and simulated payment authorization numbers.
package codes

import (
	"crypto/rand"
)

const (
	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digits       = "0123456789"
)

// ReservationCode returns a 10-character uppercase alphanumeric booking code.
func ReservationCode() (string, error) {
	return random(alphanumeric, 10)
}

// TicketCode returns a 15-character uppercase alphanumeric ticket code.
func TicketCode() (string, error) {
	return random(alphanumeric, 15)
}

// AuthorizationNumber returns a simulated 12-digit payment authorization.
func AuthorizationNumber() (string, error) {
	return random(digits, 12)
}

func random(charset string, length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = charset[int(buf[i])%len(charset)]
	}
	return string(buf), nil
}
