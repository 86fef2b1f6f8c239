package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skytail/aeroreserva/internal/auth"
	"github.com/skytail/aeroreserva/internal/service/notification"
)

type NotificationHandler struct {
	notifications *notification.Service
}

func NewNotificationHandler(notifications *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) RegisterRoutes(r gin.IRouter) {
	notificaciones := r.Group("/notificaciones")
	notificaciones.GET("/", h.list)
	notificaciones.GET("/no-leidas", h.countUnread)
	notificaciones.PUT("/:id/leida", h.markRead)
}

func (h *NotificationHandler) list(c *gin.Context) {
	user := auth.CurrentUser(c)

	unreadOnly := c.Query("no_leidas") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limite", "50"))

	notifications, err := h.notifications.List(c.Request.Context(), user.ID, unreadOnly, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(notifications))
	for _, n := range notifications {
		item := gin.H{
			"id":             n.ID,
			"tipo":           n.Tipo,
			"titulo":         n.Titulo,
			"mensaje":        n.Mensaje,
			"leido":          n.Leido,
			"fecha_creacion": n.FechaCreacion,
		}
		if len(n.Metadata) > 0 {
			item["metadata"] = n.Metadata
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, gin.H{"notificaciones": out, "total": len(out)})
}

func (h *NotificationHandler) countUnread(c *gin.Context) {
	user := auth.CurrentUser(c)

	count, err := h.notifications.CountUnread(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"no_leidas": count})
}

func (h *NotificationHandler) markRead(c *gin.Context) {
	user := auth.CurrentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid notification id")
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), id, user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "notificación marcada como leída"})
}
