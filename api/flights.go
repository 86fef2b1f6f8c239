package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/skytail/aeroreserva/internal/domain"
	"github.com/skytail/aeroreserva/internal/service/search"
	"github.com/skytail/aeroreserva/internal/service/seatmap"
)

const dateLayout = "2006-01-02"

type FlightHandler struct {
	search  *search.Service
	seatmap *seatmap.Service
}

func NewFlightHandler(searchSvc *search.Service, seatmapSvc *seatmap.Service) *FlightHandler {
	return &FlightHandler{search: searchSvc, seatmap: seatmapSvc}
}

func (h *FlightHandler) RegisterRoutes(r gin.IRouter) {
	flights := r.Group("/vuelos")
	flights.POST("/buscar/horarios", h.searchBySchedule)
	flights.POST("/buscar/tarifas", h.searchByFare)
	flights.GET("/ciudades", h.listCities)
	flights.GET("/aerolineas", h.listAirlines)
	flights.GET("/informacion/:numero_vuelo", h.flightInfo)
	flights.GET("/asientos/:vuelo_id/:fecha", h.seatMap)
}

type searchRequest struct {
	Origen        string `json:"origen" binding:"required"`
	Destino       string `json:"destino" binding:"required"`
	Fecha         string `json:"fecha" binding:"required"`
	Clase         string `json:"clase"`
	Aerolinea     string `json:"aerolinea"`
	HorarioSalida string `json:"horario_salida"`
	PrecioMaximo  string `json:"precio_maximo"`
}

func (r searchRequest) toInput() (search.Input, error) {
	fecha, err := time.Parse(dateLayout, r.Fecha)
	if err != nil {
		return search.Input{}, err
	}
	in := search.Input{
		Origen:          r.Origen,
		Destino:         r.Destino,
		Fecha:           fecha,
		Clase:           r.Clase,
		AerolineaCodigo: r.Aerolinea,
		HorarioSalida:   r.HorarioSalida,
	}
	if r.PrecioMaximo != "" {
		max, err := decimal.NewFromString(r.PrecioMaximo)
		if err != nil {
			return search.Input{}, err
		}
		in.PrecioMaximo = &max
	}
	return in, nil
}

func (h *FlightHandler) searchBySchedule(c *gin.Context) {
	h.runSearch(c, h.search.SearchBySchedule)
}

func (h *FlightHandler) searchByFare(c *gin.Context) {
	h.runSearch(c, h.search.SearchByFare)
}

func (h *FlightHandler) runSearch(c *gin.Context, fn func(ctx context.Context, in search.Input) ([]search.Offer, error)) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid search request: "+err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondBadRequest(c, "invalid search request: "+err.Error())
		return
	}

	offers, err := fn(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vuelos": offers, "total": len(offers)})
}

func (h *FlightHandler) listCities(c *gin.Context) {
	cities, err := h.search.ListCities(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ciudades": cities})
}

func (h *FlightHandler) listAirlines(c *gin.Context) {
	airlines, err := h.search.ListAirlines(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"aerolineas": airlines})
}

func (h *FlightHandler) flightInfo(c *gin.Context) {
	numeroVuelo := c.Param("numero_vuelo")

	var fecha *time.Time
	if raw := c.Query("fecha"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondBadRequest(c, "invalid fecha, expected YYYY-MM-DD")
			return
		}
		fecha = &parsed
	}

	info, err := h.search.FlightInfo(c.Request.Context(), numeroVuelo, fecha)
	if err != nil {
		respondError(c, err)
		return
	}

	fares := make([]gin.H, 0, len(info.Fares))
	for _, f := range info.Fares {
		fare := gin.H{
			"clase":        f.Clase,
			"precio":       f.Precio,
			"fecha_inicio": f.FechaInicio.Format(dateLayout),
		}
		if f.FechaFin != nil {
			fare["fecha_fin"] = f.FechaFin.Format(dateLayout)
		}
		fares = append(fares, fare)
	}

	body := gin.H{
		"numero_vuelo":     info.Flight.NumeroVuelo,
		"aerolinea":        info.Flight.AirlineName,
		"hora_salida":      domain.FormatTimeOfDay(info.Flight.HoraSalida),
		"hora_llegada":     domain.FormatTimeOfDay(info.Flight.HoraLlegada),
		"duracion_minutos": info.Flight.DuracionMin,
		"dias_operacion":   info.Flight.DiasOperacion,
		"tarifas":          fares,
	}
	if info.Estado != nil {
		body["estado"] = gin.H{
			"fecha":  info.Estado.Fecha.Format(dateLayout),
			"estado": info.Estado.Estado,
			"puerta": info.Estado.Puerta,
		}
	}
	c.JSON(http.StatusOK, body)
}

func (h *FlightHandler) seatMap(c *gin.Context) {
	vueloID, err := strconv.ParseInt(c.Param("vuelo_id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid vuelo_id")
		return
	}
	fecha, err := time.Parse(dateLayout, c.Param("fecha"))
	if err != nil {
		respondBadRequest(c, "invalid fecha, expected YYYY-MM-DD")
		return
	}

	sm, err := h.seatmap.SeatMap(c.Request.Context(), vueloID, fecha, c.Query("clase"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"numero_vuelo": sm.Flight.NumeroVuelo,
		"fecha":        sm.Fecha.Format(dateLayout),
		"asientos":     sm.Asientos,
		"resumen":      sm.Resumen,
	})
}
