package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skytail/aeroreserva/internal/auth"
	"github.com/skytail/aeroreserva/internal/domain"
	"github.com/skytail/aeroreserva/internal/service/payment"
)

type PaymentHandler struct {
	payments *payment.Service
	tickets  TicketReader
}

// TicketReader is the read side of issued tickets consumed by this handler.
type TicketReader interface {
	ListByUser(ctx context.Context, usuarioID int64) ([]domain.TicketSummary, error)
	DetailByCode(ctx context.Context, codigoBillete string, usuarioID int64) (*domain.TicketDetail, error)
}

func NewPaymentHandler(payments *payment.Service, tickets TicketReader) *PaymentHandler {
	return &PaymentHandler{payments: payments, tickets: tickets}
}

func (h *PaymentHandler) RegisterRoutes(r gin.IRouter) {
	pagos := r.Group("/pagos")
	pagos.POST("/procesar", h.process)
	pagos.GET("/historial", h.history)
	pagos.GET("/billetes", h.listTickets)
	pagos.GET("/billetes/:codigo_billete", h.ticketDetail)
	pagos.POST("/tarjetas", h.addCard)
	pagos.GET("/tarjetas", h.listCards)
	pagos.DELETE("/tarjetas/:id", h.deleteCard)
}

type processPaymentRequest struct {
	ReservaID     int64  `json:"reserva_id" binding:"required"`
	TarjetaID     int64  `json:"tarjeta_id" binding:"required"`
	MetodoEntrega string `json:"metodo_entrega"`
}

func (h *PaymentHandler) process(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req processPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid payment request: "+err.Error())
		return
	}

	metodo := domain.DeliveryEmail
	switch req.MetodoEntrega {
	case "", string(domain.DeliveryEmail):
	case string(domain.DeliveryAirport):
		metodo = domain.DeliveryAirport
	default:
		respondBadRequest(c, "metodo_entrega must be EMAIL or AEROPUERTO")
		return
	}

	result, err := h.payments.Process(c.Request.Context(), user, req.ReservaID, req.TarjetaID, metodo)
	if err != nil {
		respondError(c, err)
		return
	}

	tickets := make([]gin.H, 0, len(result.Tickets))
	for _, t := range result.Tickets {
		tickets = append(tickets, gin.H{
			"codigo_billete": t.CodigoBillete,
			"metodo_entrega": t.MetodoEntrega,
			"estado":         t.Estado,
			"fecha_emision":  t.FechaEmision,
		})
	}
	c.JSON(http.StatusCreated, gin.H{
		"pago": gin.H{
			"monto":               result.Payment.Monto,
			"estado":              result.Payment.Estado,
			"numero_autorizacion": result.Payment.NumeroAutorizacion,
			"fecha_pago":          result.Payment.FechaPago,
		},
		"billetes": tickets,
	})
}

func (h *PaymentHandler) history(c *gin.Context) {
	user := auth.CurrentUser(c)

	payments, err := h.payments.History(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(payments))
	for _, p := range payments {
		out = append(out, gin.H{
			"reserva_id":          p.ReservaID,
			"monto":               p.Monto,
			"estado":              p.Estado,
			"numero_autorizacion": p.NumeroAutorizacion,
			"fecha_pago":          p.FechaPago,
		})
	}
	c.JSON(http.StatusOK, gin.H{"pagos": out, "total": len(out)})
}

func (h *PaymentHandler) listTickets(c *gin.Context) {
	user := auth.CurrentUser(c)

	tickets, err := h.tickets.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, gin.H{
			"codigo_billete":     t.CodigoBillete,
			"pasajero":           t.PasajeroNombre + " " + t.PasajeroApellido,
			"numero_vuelo":       t.NumeroVuelo,
			"fecha":              t.Fecha.Format(dateLayout),
			"origen":             t.Origen,
			"destino":            t.Destino,
			"estado":             t.Estado,
			"metodo_entrega":     t.MetodoEntrega,
			"fecha_emision":      t.FechaEmision,
			"check_in_realizado": t.CheckInRealizado,
		})
	}
	c.JSON(http.StatusOK, gin.H{"billetes": out, "total": len(out)})
}

func (h *PaymentHandler) ticketDetail(c *gin.Context) {
	user := auth.CurrentUser(c)

	d, err := h.tickets.DetailByCode(c.Request.Context(), c.Param("codigo_billete"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"codigo_billete": d.Ticket.CodigoBillete,
		"estado":         d.Ticket.Estado,
		"metodo_entrega": d.Ticket.MetodoEntrega,
		"fecha_emision":  d.Ticket.FechaEmision,
		"pasajero": gin.H{
			"nombre":   d.PasajeroNombre,
			"apellido": d.PasajeroApellido,
		},
		"vuelo": gin.H{
			"numero_vuelo": d.NumeroVuelo,
			"aerolinea":    d.Aerolinea,
			"origen":       d.Origen,
			"destino":      d.Destino,
			"fecha":        d.Fecha.Format(dateLayout),
			"hora_salida":  domain.FormatTimeOfDay(d.HoraSalida),
			"hora_llegada": domain.FormatTimeOfDay(d.HoraLlegada),
			"puerta":       d.Puerta,
		},
		"asiento":        d.NumeroAsiento,
		"clase":          d.Clase,
		"precio":         d.Precio,
		"codigo_reserva": d.CodigoReserva,
	})
}

type addCardRequest struct {
	NumeroTarjeta   string `json:"numero_tarjeta" binding:"required"`
	NombreTitular   string `json:"nombre_titular" binding:"required"`
	FechaExpiracion string `json:"fecha_expiracion" binding:"required"`
	CVV             string `json:"cvv" binding:"required"`
	Tipo            string `json:"tipo"`
}

func (h *PaymentHandler) addCard(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req addCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid card request: "+err.Error())
		return
	}

	card := &domain.CreditCard{
		UsuarioID:       user.ID,
		NumeroTarjeta:   req.NumeroTarjeta,
		NombreTitular:   req.NombreTitular,
		FechaExpiracion: req.FechaExpiracion,
		CVV:             req.CVV,
		Tipo:            req.Tipo,
	}
	if err := h.payments.AddCard(c.Request.Context(), card); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cardBody(*card))
}

func (h *PaymentHandler) listCards(c *gin.Context) {
	user := auth.CurrentUser(c)

	cards, err := h.payments.ListCards(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(cards))
	for _, card := range cards {
		out = append(out, cardBody(card))
	}
	c.JSON(http.StatusOK, gin.H{"tarjetas": out})
}

func (h *PaymentHandler) deleteCard(c *gin.Context) {
	user := auth.CurrentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid card id")
		return
	}
	if err := h.payments.DeleteCard(c.Request.Context(), id, user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "tarjeta eliminada"})
}

func cardBody(card domain.CreditCard) gin.H {
	return gin.H{
		"id":               card.ID,
		"numero_tarjeta":   card.Masked(),
		"nombre_titular":   card.NombreTitular,
		"fecha_expiracion": card.FechaExpiracion,
		"tipo":             card.Tipo,
	}
}
