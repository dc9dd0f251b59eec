package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"

	"github.com/campuspool/carpool/internal/api/middleware"
	"github.com/campuspool/carpool/pkg/logger"
	"github.com/campuspool/carpool/pkg/websocket"
)

// HandleWebSocket handles GET /api/ws. The caller authenticates through the
// usual middleware; topic joins are authorized per ride against conversation
// membership.
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	upgrader := gorilla.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins in development
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("Failed to upgrade to WebSocket", logger.Err(err))
		return
	}

	userID := middleware.UserID(c)

	canJoin := func(userID, rideID int64) bool {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		member, err := h.Chat.IsMember(ctx, userID, rideID)
		if err != nil {
			h.Logger.Error("Membership check failed",
				logger.Err(err),
				logger.Int64("user_id", userID),
				logger.Int64("ride_id", rideID),
			)
			return false
		}
		return member
	}

	client := websocket.NewClient(h.Hub, conn, userID, canJoin, h.Logger)
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
