package domain

import "errors"

// Business-rule violations surfaced to the caller as 400s. Entity lookups
// that miss map to repository.ErrNotFound instead.
var (
	ErrInsufficientSeats  = errors.New("insufficient seats available")
	ErrSeatUnavailable    = errors.New("seat not available")
	ErrAlreadyCancelled   = errors.New("reservation already cancelled")
	ErrWrongState         = errors.New("wrong state for requested transition")
	ErrCheckinTooEarly    = errors.New("check-in not yet open")
	ErrCheckinClosed      = errors.New("check-in closed")
	ErrCheckinAlreadyDone = errors.New("check-in already done for this ticket")
)
