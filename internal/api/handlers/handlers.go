package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/campuspool/carpool/internal/api/dto"
	"github.com/campuspool/carpool/internal/service/auth"
	"github.com/campuspool/carpool/internal/service/booking"
	"github.com/campuspool/carpool/internal/service/chat"
	"github.com/campuspool/carpool/internal/service/notifications"
	"github.com/campuspool/carpool/internal/service/rides"
	"github.com/campuspool/carpool/internal/service/vehicles"
	apperrors "github.com/campuspool/carpool/pkg/errors"
	"github.com/campuspool/carpool/pkg/logger"
	"github.com/campuspool/carpool/pkg/monitoring"
	"github.com/campuspool/carpool/pkg/websocket"
)

// Handlers holds all handler dependencies
type Handlers struct {
	Auth          *auth.Service
	Vehicles      *vehicles.Service
	Rides         *rides.Service
	Booking       *booking.Service
	Chat          *chat.Service
	Notifications *notifications.Service
	Hub           *websocket.Hub
	Monitor       *monitoring.NewRelicApp
	Logger        *logger.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	authSvc *auth.Service,
	vehicleSvc *vehicles.Service,
	rideSvc *rides.Service,
	bookingSvc *booking.Service,
	chatSvc *chat.Service,
	notificationSvc *notifications.Service,
	hub *websocket.Hub,
	monitor *monitoring.NewRelicApp,
	logger *logger.Logger,
) *Handlers {
	return &Handlers{
		Auth:          authSvc,
		Vehicles:      vehicleSvc,
		Rides:         rideSvc,
		Booking:       bookingSvc,
		Chat:          chatSvc,
		Notifications: notificationSvc,
		Hub:           hub,
		Monitor:       monitor,
		Logger:        logger,
	}
}

// respondError maps a service error to its HTTP status and body. Internal
// errors are logged with their cause and returned without it.
func (h *Handlers) respondError(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr.Status >= 500 {
		h.Logger.Error("Request failed",
			logger.Err(err),
			logger.String("path", c.FullPath()),
		)
	}
	c.JSON(appErr.Status, dto.ErrorResponse{Code: appErr.Code, Message: appErr.Message})
}
