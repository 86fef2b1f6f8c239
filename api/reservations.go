package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skytail/aeroreserva/internal/auth"
	"github.com/skytail/aeroreserva/internal/domain"
	"github.com/skytail/aeroreserva/internal/service/checkin"
	"github.com/skytail/aeroreserva/internal/service/reservation"
)

type ReservationHandler struct {
	reservations *reservation.Service
	checkin      *checkin.Service
}

func NewReservationHandler(reservations *reservation.Service, checkinSvc *checkin.Service) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, checkin: checkinSvc}
}

func (h *ReservationHandler) RegisterRoutes(r gin.IRouter) {
	reservas := r.Group("/reservas")
	reservas.POST("/", h.create)
	reservas.GET("/", h.list)
	reservas.GET("/:codigo_reserva", h.get)
	reservas.DELETE("/:codigo_reserva", h.cancel)
	reservas.POST("/check-in/:codigo_billete", h.checkIn)
}

type createReservationRequest struct {
	Detalles []reservation.GroupInput `json:"detalles" binding:"required"`
}

func (h *ReservationHandler) create(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid reservation request: "+err.Error())
		return
	}
	for _, g := range req.Detalles {
		if len(g.Pasajeros) == 0 {
			respondBadRequest(c, "each flight needs at least one passenger")
			return
		}
	}

	res, err := h.reservations.Create(c.Request.Context(), user.ID, req.Detalles)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reservationBody(res))
}

func (h *ReservationHandler) list(c *gin.Context) {
	user := auth.CurrentUser(c)

	reservations, err := h.reservations.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(reservations))
	for i := range reservations {
		out = append(out, reservationBody(&reservations[i]))
	}
	c.JSON(http.StatusOK, gin.H{"reservas": out, "total": len(out)})
}

func (h *ReservationHandler) get(c *gin.Context) {
	user := auth.CurrentUser(c)

	res, err := h.reservations.GetByCode(c.Request.Context(), user.ID, c.Param("codigo_reserva"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservationBody(res))
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	user := auth.CurrentUser(c)

	res, err := h.reservations.Cancel(c.Request.Context(), user.ID, c.Param("codigo_reserva"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"codigo_reserva": res.CodigoReserva,
		"estado":         res.Estado,
		"mensaje":        "reserva cancelada",
	})
}

func (h *ReservationHandler) checkIn(c *gin.Context) {
	user := auth.CurrentUser(c)

	result, err := h.checkin.Do(c.Request.Context(), user.ID, c.Param("codigo_billete"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"codigo_billete":   result.CodigoBillete,
		"pasajero":         result.PasajeroNombre + " " + result.PasajeroApellido,
		"numero_vuelo":     result.NumeroVuelo,
		"fecha":            result.Fecha.Format(dateLayout),
		"hora_salida":      result.HoraSalida,
		"origen":           result.Origen,
		"destino":          result.Destino,
		"asiento_asignado": result.CheckIn.AsientoAsignado,
		"puerta_embarque":  result.CheckIn.PuertaEmbarque,
		"fecha_check_in":   result.CheckIn.FechaCheckIn,
	})
}

func reservationBody(res *domain.Reservation) gin.H {
	items := make([]gin.H, 0, len(res.Detalles))
	for _, item := range res.Detalles {
		items = append(items, gin.H{
			"instancia_vuelo_id": item.InstanciaVueloID,
			"pasajero_nombre":    item.PasajeroNombre,
			"pasajero_apellido":  item.PasajeroApellido,
			"numero_asiento":     item.NumeroAsiento,
			"clase":              item.Clase,
			"precio":             item.Precio,
		})
	}
	return gin.H{
		"codigo_reserva": res.CodigoReserva,
		"fecha_reserva":  res.FechaReserva,
		"estado":         res.Estado,
		"total":          res.Total,
		"detalles":       items,
	}
}
