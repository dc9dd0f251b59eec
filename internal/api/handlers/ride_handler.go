package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuspool/carpool/internal/api/dto"
	"github.com/campuspool/carpool/internal/api/middleware"
	"github.com/campuspool/carpool/internal/service/rides"
)

// CreateRide handles POST /api/driver/rides
func (h *Handlers) CreateRide(c *gin.Context) {
	var req dto.CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	rideID, err := h.Rides.CreateRide(c.Request.Context(), middleware.UserID(c), rides.CreateRideInput{
		VehicleID:      req.VehicleID,
		Origin:         req.Origin,
		Destination:    req.Destination,
		Stops:          req.Stops,
		DepartureTime:  req.DepartureTime,
		AvailableSeats: req.AvailableSeats,
		PricePerSeat:   req.PricePerSeat,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.Monitor.RecordRideCreated(rideID, req.AvailableSeats)

	c.JSON(http.StatusCreated, dto.SuccessResponse{
		Message: "Ride created",
		Data:    gin.H{"ride_id": rideID},
	})
}

// DriverRides handles GET /api/driver/rides
func (h *Handlers) DriverRides(c *gin.Context) {
	out, err := h.Rides.DriverRides(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": out})
}

// AcceptedPassengers handles GET /api/driver/rides/:id/passengers
func (h *Handlers) AcceptedPassengers(c *gin.Context) {
	rideID, ok := pathID(c)
	if !ok {
		return
	}

	out, err := h.Rides.AcceptedPassengers(c.Request.Context(), middleware.UserID(c), rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"passengers": out})
}

// RideLocations handles GET /api/rides/:id/locations
func (h *Handlers) RideLocations(c *gin.Context) {
	rideID, ok := pathID(c)
	if !ok {
		return
	}

	out, err := h.Rides.RideLocations(c.Request.Context(), rideID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": out})
}

// pathID parses the :id path parameter, writing a 400 on failure.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id in path"})
		return 0, false
	}
	return id, true
}
