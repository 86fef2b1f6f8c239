package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skytail/aeroreserva/internal/domain"
	"github.com/skytail/aeroreserva/internal/repository"
)

var businessErrors = []error{
	domain.ErrInsufficientSeats,
	domain.ErrSeatUnavailable,
	domain.ErrAlreadyCancelled,
	domain.ErrWrongState,
	domain.ErrCheckinTooEarly,
	domain.ErrCheckinClosed,
	domain.ErrCheckinAlreadyDone,
	domain.ErrUnknownClass,
}

// respondError maps the error taxonomy onto status codes: missing entities
// are 404, business-rule violations are 400, the rest is a 500 with the
// detail kept out of the response body.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		// Keep the wrapped entity context ("origin city MAD: not found"),
		// services only wrap identifiers the caller already sent.
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	for _, business := range businessErrors {
		if errors.Is(err, business) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	c.Error(err) //nolint:errcheck
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
