package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuspool/carpool/internal/api/dto"
	"github.com/campuspool/carpool/internal/api/middleware"
)

// AddVehicle handles POST /api/driver/vehicles
func (h *Handlers) AddVehicle(c *gin.Context) {
	var req dto.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	vehicleID, err := h.Vehicles.AddVehicle(c.Request.Context(), middleware.UserID(c),
		req.Make, req.Model, req.NumberPlate)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SuccessResponse{
		Message: "Vehicle registered",
		Data:    gin.H{"vehicle_id": vehicleID},
	})
}

// ListVehicles handles GET /api/driver/vehicles
func (h *Handlers) ListVehicles(c *gin.Context) {
	out, err := h.Vehicles.Vehicles(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": out})
}
