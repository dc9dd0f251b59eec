package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuspool/carpool/internal/api/middleware"
)

// AvailableRides handles GET /api/passenger/rides
func (h *Handlers) AvailableRides(c *gin.Context) {
	out, err := h.Rides.AvailableRides(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": out})
}

// SearchRides handles GET /api/passenger/rides/search?q=
func (h *Handlers) SearchRides(c *gin.Context) {
	out, err := h.Rides.SearchRides(c.Request.Context(), middleware.UserID(c), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": out})
}

// AcceptedRides handles GET /api/passenger/rides/accepted
func (h *Handlers) AcceptedRides(c *gin.Context) {
	out, err := h.Rides.AcceptedRides(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": out})
}
