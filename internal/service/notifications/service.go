package notifications

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/campuspool/carpool/pkg/errors"
	"github.com/campuspool/carpool/pkg/logger"
)

// Notification types mirror the request lifecycle events that raise them.
const (
	TypeRideRequest  = "ride_request"
	TypeRideAccepted = "ride_accepted"
	TypeRideRejected = "ride_rejected"
)

// Notification is a short per-user event record
type Notification struct {
	ID      int64     `json:"notification_id"`
	Message string    `json:"message"`
	Type    string    `json:"type"`
	SentAt  time.Time `json:"sent_at"`
	UserID  int64     `json:"user_id"`
}

// Execer is the slice of *sql.DB / *sql.Tx needed to insert a notification
// inside a caller-owned transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// InsertTx writes a notification row using the caller's transaction.
func InsertTx(ctx context.Context, q Execer, userID int64, message, typ string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO notifications (message, type, user_id)
		VALUES ($1, $2, $3)
	`, message, typ, userID)
	return err
}

// Service reads a user's notifications
type Service struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewService creates a notification service
func NewService(db *sql.DB, logger *logger.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// List returns the caller's notifications, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT notification_id, message, type, sent_at, user_id
		FROM notifications
		WHERE user_id = $1
		ORDER BY sent_at DESC, notification_id DESC
	`, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list notifications", err)
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Message, &n.Type, &n.SentAt, &n.UserID); err != nil {
			return nil, apperrors.Internal("Failed to scan notification", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("Failed to list notifications", err)
	}
	return out, nil
}
