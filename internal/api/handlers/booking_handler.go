package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuspool/carpool/internal/api/dto"
	"github.com/campuspool/carpool/internal/api/middleware"
)

// RequestRide handles POST /api/passenger/requests
func (h *Handlers) RequestRide(c *gin.Context) {
	var req dto.RequestRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	created, err := h.Booking.SubmitRequest(c.Request.Context(), middleware.UserID(c),
		req.RideID, req.PickupLocation, req.DropoffLocation)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SuccessResponse{
		Message: "Ride requested",
		Data:    gin.H{"request_id": created.ID, "status": created.Status},
	})
}

// AcceptRequest handles POST /api/driver/requests/:id/accept
func (h *Handlers) AcceptRequest(c *gin.Context) {
	requestID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Booking.AcceptRequest(c.Request.Context(), middleware.UserID(c), requestID); err != nil {
		h.respondError(c, err)
		return
	}

	h.Monitor.RecordRequestDecision(requestID, "accepted")

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Request accepted"})
}

// RejectRequest handles POST /api/driver/requests/:id/reject
func (h *Handlers) RejectRequest(c *gin.Context) {
	requestID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.Booking.RejectRequest(c.Request.Context(), middleware.UserID(c), requestID); err != nil {
		h.respondError(c, err)
		return
	}

	h.Monitor.RecordRequestDecision(requestID, "denied")

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Request rejected"})
}
