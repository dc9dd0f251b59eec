package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuspool/carpool/internal/api/middleware"
)

// ListNotifications handles GET /api/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	out, err := h.Notifications.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out})
}
