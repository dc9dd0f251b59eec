package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuspool/carpool/internal/api/dto"
	"github.com/campuspool/carpool/internal/api/middleware"
)

// SendMessage handles POST /api/rides/:id/messages
func (h *Handlers) SendMessage(c *gin.Context) {
	rideID, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	msg, err := h.Chat.SendMessage(c.Request.Context(), middleware.UserID(c), rideID, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Monitor.RecordMessageSent(rideID)

	c.JSON(http.StatusCreated, msg)
}

// ListMessages handles GET /api/rides/:id/messages
func (h *Handlers) ListMessages(c *gin.Context) {
	rideID, ok := pathID(c)
	if !ok {
		return
	}

	out, err := h.Chat.ListMessages(c.Request.Context(), middleware.UserID(c), rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}
