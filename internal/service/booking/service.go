package booking

import (
	"context"
	"database/sql"

	"github.com/campuspool/carpool/internal/domain/request"
	"github.com/campuspool/carpool/internal/service/chat"
	"github.com/campuspool/carpool/internal/service/notifications"
	apperrors "github.com/campuspool/carpool/pkg/errors"
	"github.com/campuspool/carpool/pkg/logger"
)

// Service owns the request lifecycle: submit, accept, reject. Acceptance is
// the sole trigger for conversation membership.
type Service struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewService creates a booking service
func NewService(db *sql.DB, logger *logger.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// SubmitRequest creates a pending request for (passenger, ride). An active
// request for the pair is a conflict; a denied one is deleted and replaced.
func (s *Service) SubmitRequest(ctx context.Context, userID, rideID int64, pickup, dropoff string) (*request.Request, error) {
	req := request.Request{
		PickupLocation:  pickup,
		DropoffLocation: dropoff,
		Status:          request.StatusPending,
		RideID:          rideID,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Internal("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`SELECT passenger_id FROM passengers WHERE user_id = $1`, userID,
	).Scan(&req.PassengerID)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrPassengerNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load passenger profile", err)
	}

	var driverUserID int64
	err = tx.QueryRowContext(ctx, `
		SELECT u.user_id
		FROM rides r
		JOIN drivers d ON d.driver_id = r.driver_id
		JOIN users u ON u.user_id = d.user_id
		WHERE r.ride_id = $1
	`, rideID).Scan(&driverUserID)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrRideNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load ride", err)
	}

	var (
		existingID     int64
		existingStatus string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT request_id, status
		FROM ride_requests
		WHERE passenger_id = $1 AND ride_id = $2
		ORDER BY requested_at DESC, request_id DESC
		LIMIT 1
	`, req.PassengerID, rideID).Scan(&existingID, &existingStatus)
	switch {
	case err == nil:
		if request.Status(existingStatus).IsActive() {
			return nil, apperrors.ErrDuplicateRequest
		}
		// Denied: the passenger retries. Drop the old row and start fresh.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM ride_requests WHERE request_id = $1`, existingID,
		); err != nil {
			return nil, apperrors.Internal("Failed to replace denied request", err)
		}
	case err == sql.ErrNoRows:
		// First request for this pair.
	default:
		return nil, apperrors.Internal("Failed to check existing request", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO ride_requests (pickup_location, dropoff_location, status, passenger_id, ride_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING request_id, requested_at
	`, req.PickupLocation, req.DropoffLocation, string(req.Status), req.PassengerID, rideID,
	).Scan(&req.ID, &req.RequestedAt)
	if err != nil {
		return nil, apperrors.Internal("Failed to create request", err)
	}

	if err := notifications.InsertTx(ctx, tx, driverUserID,
		"New ride request received", notifications.TypeRideRequest); err != nil {
		return nil, apperrors.Internal("Failed to record notification", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("Failed to commit request", err)
	}

	s.logger.Info("Ride request submitted",
		logger.Int64("request_id", req.ID),
		logger.Int64("ride_id", rideID),
		logger.Int64("passenger_id", req.PassengerID),
	)
	return &req, nil
}

// AcceptRequest marks a request accepted and makes the passenger a member of
// the ride's conversation, all in one transaction. Accepting an already
// accepted request is a no-op success.
func (s *Service) AcceptRequest(ctx context.Context, userID, requestID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Internal("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	rideID, passengerUserID, err := s.ownedRequest(ctx, tx, userID, requestID)
	if err != nil {
		return err
	}

	// Re-applying the transition is harmless; the member insert below is
	// idempotent as well.
	if _, err := tx.ExecContext(ctx,
		`UPDATE ride_requests SET status = 'accepted' WHERE request_id = $1`, requestID,
	); err != nil {
		return apperrors.Internal("Failed to accept request", err)
	}

	conversationID, err := chat.EnsureConversationTx(ctx, tx, rideID)
	if err != nil {
		return apperrors.Internal("Failed to ensure conversation", err)
	}
	if err := chat.AddMemberTx(ctx, tx, conversationID, passengerUserID); err != nil {
		return apperrors.Internal("Failed to add passenger to conversation", err)
	}

	if err := notifications.InsertTx(ctx, tx, passengerUserID,
		"Your ride request was accepted", notifications.TypeRideAccepted); err != nil {
		return apperrors.Internal("Failed to record notification", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Internal("Failed to commit accept", err)
	}

	s.logger.Info("Ride request accepted",
		logger.Int64("request_id", requestID),
		logger.Int64("ride_id", rideID),
	)
	return nil
}

// RejectRequest marks a request denied. No membership side effect.
func (s *Service) RejectRequest(ctx context.Context, userID, requestID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Internal("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	rideID, passengerUserID, err := s.ownedRequest(ctx, tx, userID, requestID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE ride_requests SET status = 'denied' WHERE request_id = $1`, requestID,
	); err != nil {
		return apperrors.Internal("Failed to reject request", err)
	}

	if err := notifications.InsertTx(ctx, tx, passengerUserID,
		"Your ride request was rejected", notifications.TypeRideRejected); err != nil {
		return apperrors.Internal("Failed to record notification", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Internal("Failed to commit reject", err)
	}

	s.logger.Info("Ride request rejected",
		logger.Int64("request_id", requestID),
		logger.Int64("ride_id", rideID),
	)
	return nil
}

// ownedRequest loads the request and checks the caller owns its ride.
// Returns the ride and the passenger's user id for the membership and
// notification side effects.
func (s *Service) ownedRequest(ctx context.Context, tx *sql.Tx, userID, requestID int64) (int64, int64, error) {
	var driverID int64
	err := tx.QueryRowContext(ctx,
		`SELECT driver_id FROM drivers WHERE user_id = $1`, userID,
	).Scan(&driverID)
	if err == sql.ErrNoRows {
		return 0, 0, apperrors.ErrDriverNotFound
	}
	if err != nil {
		return 0, 0, apperrors.Internal("Failed to load driver profile", err)
	}

	var (
		rideID          int64
		passengerUserID int64
	)
	err = tx.QueryRowContext(ctx, `
		SELECT rr.ride_id, p.user_id
		FROM ride_requests rr
		JOIN rides r ON r.ride_id = rr.ride_id
		JOIN passengers p ON p.passenger_id = rr.passenger_id
		WHERE rr.request_id = $1 AND r.driver_id = $2
	`, requestID, driverID).Scan(&rideID, &passengerUserID)
	if err == sql.ErrNoRows {
		return 0, 0, apperrors.ErrRequestNotFound
	}
	if err != nil {
		return 0, 0, apperrors.Internal("Failed to load request", err)
	}
	return rideID, passengerUserID, nil
}
