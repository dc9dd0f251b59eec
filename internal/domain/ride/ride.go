package ride

import (
	"encoding/json"
	"time"

	apperrors "github.com/campuspool/carpool/pkg/errors"
)

// Status represents ride status
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCanceled   Status = "canceled"
)

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// Seat and price bounds for a ride offer.
const (
	MinSeats = 1
	MaxSeats = 10
	MinPrice = 150
	MaxPrice = 500

	maxLabelLen = 100
)

// Ride represents a driver-offered trip
type Ride struct {
	ID             int64     `json:"ride_id"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	Stops          []string  `json:"route_stops"`
	DepartureTime  time.Time `json:"departure_time"`
	AvailableSeats int       `json:"available_seats"`
	PricePerSeat   int       `json:"price_per_seat"`
	Status         Status    `json:"status"`
	DriverID       int64     `json:"driver_id"`
	VehicleID      int64     `json:"vehicle_id"`
}

// Validate checks a ride offer before it is stored.
func (r *Ride) Validate() error {
	if r.Origin == "" || len(r.Origin) > maxLabelLen {
		return apperrors.Validation("Origin is required and cannot exceed 100 characters", nil)
	}
	if r.Destination == "" || len(r.Destination) > maxLabelLen {
		return apperrors.Validation("Destination is required and cannot exceed 100 characters", nil)
	}
	for _, stop := range r.Stops {
		if stop == "" || len(stop) > maxLabelLen {
			return apperrors.Validation("Each route stop must be non-empty and at most 100 characters", nil)
		}
	}
	if r.AvailableSeats < MinSeats || r.AvailableSeats > MaxSeats {
		return apperrors.Validation("Available seats must be between 1 and 10", nil)
	}
	if r.PricePerSeat < MinPrice || r.PricePerSeat > MaxPrice {
		return apperrors.Validation("Price per seat must be between 150 and 500", nil)
	}
	if r.DepartureTime.IsZero() {
		return apperrors.Validation("Departure time is required", nil)
	}
	return nil
}

// EncodeStops serializes the ordered stop labels for storage.
func EncodeStops(stops []string) (string, error) {
	if stops == nil {
		stops = []string{}
	}
	data, err := json.Marshal(stops)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeStops parses the stored stop labels. A blank value decodes to an
// empty list rather than an error, matching rows created before stops existed.
func DecodeStops(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var stops []string
	if err := json.Unmarshal([]byte(raw), &stops); err != nil {
		return []string{}
	}
	return stops
}

// Locations returns the full ordered route: origin, stops, destination.
func (r *Ride) Locations() []string {
	out := make([]string, 0, len(r.Stops)+2)
	out = append(out, r.Origin)
	out = append(out, r.Stops...)
	out = append(out, r.Destination)
	return out
}
