package api

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindCreateReservation(t *testing.T, body string) (createReservationRequest, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/reservas/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req createReservationRequest
	err := c.ShouldBindJSON(&req)
	return req, err
}

func TestCreateReservationRequestBindsDetalles(t *testing.T) {
	req, err := bindCreateReservation(t, `{
		"detalles": [{
			"instancia_vuelo_id": 9,
			"clase": "ECONOMICA",
			"pasajeros": [{"nombre": "Ana", "apellido": "García", "asiento_numero": "12A"}]
		}]
	}`)
	require.NoError(t, err)
	require.Len(t, req.Detalles, 1)
	assert.EqualValues(t, 9, req.Detalles[0].InstanciaVueloID)
	assert.Equal(t, "ECONOMICA", req.Detalles[0].Clase)
	require.Len(t, req.Detalles[0].Pasajeros, 1)
	assert.Equal(t, "12A", req.Detalles[0].Pasajeros[0].AsientoNumero)
}

func TestCreateReservationRequestRequiresDetalles(t *testing.T) {
	_, err := bindCreateReservation(t, `{"vuelos": [{"instancia_vuelo_id": 9, "clase": "ECONOMICA", "pasajeros": []}]}`)
	assert.Error(t, err)

	_, err = bindCreateReservation(t, `{}`)
	assert.Error(t, err)
}
