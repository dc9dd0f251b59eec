package request

import (
	"time"

	apperrors "github.com/campuspool/carpool/pkg/errors"
)

// Status represents the request lifecycle state.
// Pending -> Accepted | Denied. A denied request may be deleted and
// replaced by a fresh pending one for the same (passenger, ride) pair.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDenied   Status = "denied"
)

// IsActive reports whether the request blocks a duplicate submission.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusAccepted
}

// StatusNotRequested annotates rides the passenger has no request against.
const StatusNotRequested = "not_requested"

// Request represents a passenger's ask to join a ride
type Request struct {
	ID              int64     `json:"request_id"`
	PickupLocation  string    `json:"pickup_location"`
	DropoffLocation string    `json:"dropoff_location"`
	Status          Status    `json:"status"`
	PassengerID     int64     `json:"passenger_id"`
	RideID          int64     `json:"ride_id"`
	RequestedAt     time.Time `json:"requested_at"`
}

const maxLocationLen = 100

// Validate checks the pickup and dropoff labels.
func (r *Request) Validate() error {
	if r.PickupLocation == "" || len(r.PickupLocation) > maxLocationLen {
		return apperrors.Validation("Pickup location is required and cannot exceed 100 characters", nil)
	}
	if r.DropoffLocation == "" || len(r.DropoffLocation) > maxLocationLen {
		return apperrors.Validation("Dropoff location is required and cannot exceed 100 characters", nil)
	}
	return nil
}
