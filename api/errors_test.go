package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/skytail/aeroreserva/internal/domain"
	"github.com/skytail/aeroreserva/internal/repository"
)

func TestRespondError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		code int
	}{
		{repository.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("flight instance 5: %w", repository.ErrNotFound), http.StatusNotFound},
		{domain.ErrInsufficientSeats, http.StatusBadRequest},
		{fmt.Errorf("%w: 12A", domain.ErrSeatUnavailable), http.StatusBadRequest},
		{domain.ErrAlreadyCancelled, http.StatusBadRequest},
		{domain.ErrWrongState, http.StatusBadRequest},
		{domain.ErrCheckinTooEarly, http.StatusBadRequest},
		{domain.ErrCheckinClosed, http.StatusBadRequest},
		{domain.ErrCheckinAlreadyDone, http.StatusBadRequest},
		{domain.ErrUnknownClass, http.StatusBadRequest},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, tc.err)
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
	}
}

func TestRespondError_NotFoundKeepsEntityContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, fmt.Errorf("origin city MAD: %w", repository.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "origin city MAD")
}

func TestRespondError_HidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}
