package rides

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/campuspool/carpool/internal/domain/request"
	"github.com/campuspool/carpool/internal/domain/ride"
	apperrors "github.com/campuspool/carpool/pkg/errors"
	"github.com/campuspool/carpool/pkg/logger"
)

// Service owns the ride catalog: offers, availability listings and the
// driver/passenger dashboard reads.
type Service struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewService creates a ride service
func NewService(db *sql.DB, logger *logger.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// CreateRideInput carries a new ride offer
type CreateRideInput struct {
	VehicleID      int64
	Origin         string
	Destination    string
	Stops          []string
	DepartureTime  time.Time
	AvailableSeats int
	PricePerSeat   int
}

// CreateRide stores a new ride and its conversation, with the driver as the
// sole member, in one transaction. Either all three rows land or none do.
func (s *Service) CreateRide(ctx context.Context, userID int64, in CreateRideInput) (int64, error) {
	r := ride.Ride{
		Origin:         in.Origin,
		Destination:    in.Destination,
		Stops:          in.Stops,
		DepartureTime:  in.DepartureTime.UTC(),
		AvailableSeats: in.AvailableSeats,
		PricePerSeat:   in.PricePerSeat,
		Status:         ride.StatusScheduled,
		VehicleID:      in.VehicleID,
	}
	if err := r.Validate(); err != nil {
		return 0, err
	}

	stops, err := ride.EncodeStops(r.Stops)
	if err != nil {
		return 0, apperrors.Internal("Failed to encode route stops", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.Internal("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	var driverID int64
	err = tx.QueryRowContext(ctx,
		`SELECT driver_id FROM drivers WHERE user_id = $1`, userID,
	).Scan(&driverID)
	if err == sql.ErrNoRows {
		return 0, apperrors.ErrDriverNotFound
	}
	if err != nil {
		return 0, apperrors.Internal("Failed to load driver profile", err)
	}

	var owned bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM vehicles WHERE vehicle_id = $1 AND driver_id = $2)`,
		in.VehicleID, driverID,
	).Scan(&owned)
	if err != nil {
		return 0, apperrors.Internal("Failed to check vehicle", err)
	}
	if !owned {
		return 0, apperrors.ErrInvalidVehicle
	}

	var rideID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO rides (origin, destination, route_stops, departure_time,
		                   available_seats, price_per_seat, status, driver_id, vehicle_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ride_id
	`, r.Origin, r.Destination, stops, r.DepartureTime,
		r.AvailableSeats, r.PricePerSeat, string(r.Status), driverID, r.VehicleID,
	).Scan(&rideID)
	if err != nil {
		return 0, apperrors.Internal("Failed to create ride", err)
	}

	var conversationID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO conversations (ride_id) VALUES ($1) RETURNING conversation_id`, rideID,
	).Scan(&conversationID)
	if err != nil {
		return 0, apperrors.Internal("Failed to create conversation", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO conversation_members (conversation_id, user_id) VALUES ($1, $2)`,
		conversationID, userID,
	)
	if err != nil {
		return 0, apperrors.Internal("Failed to add driver to conversation", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.Internal("Failed to commit ride creation", err)
	}

	s.logger.Info("Ride created",
		logger.Int64("ride_id", rideID),
		logger.Int64("driver_id", driverID),
		logger.Int64("conversation_id", conversationID),
	)
	return rideID, nil
}

// AvailableRide is a browsable ride annotated with the caller's own request
// status. AvailableSeats is the effective remaining count: capacity minus
// accepted requests.
type AvailableRide struct {
	RideID         int64     `json:"ride_id"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	Stops          []string  `json:"route_stops"`
	DepartureTime  time.Time `json:"departure_time"`
	AvailableSeats int       `json:"available_seats"`
	PricePerSeat   int       `json:"price_per_seat"`
	DriverName     string    `json:"driver_name"`
	VehicleModel   string    `json:"vehicle_model"`
	RequestStatus  string    `json:"request_status"`
}

const availableRidesQuery = `
	SELECT r.ride_id, r.origin, r.destination, r.route_stops::text, r.departure_time,
	       r.available_seats - COALESCE(acc.cnt, 0) AS seats_left,
	       r.price_per_seat, u.full_name, v.model,
	       COALESCE(rr.status, '') AS my_status
	FROM rides r
	JOIN drivers d ON d.driver_id = r.driver_id
	JOIN users u ON u.user_id = d.user_id
	JOIN vehicles v ON v.vehicle_id = r.vehicle_id
	LEFT JOIN (
		SELECT ride_id, COUNT(*) AS cnt
		FROM ride_requests
		WHERE status = 'accepted'
		GROUP BY ride_id
	) acc ON acc.ride_id = r.ride_id
	LEFT JOIN ride_requests rr ON rr.ride_id = r.ride_id AND rr.passenger_id = $1
	WHERE r.status = 'scheduled'
	  AND r.departure_time > now()
	  AND r.available_seats - COALESCE(acc.cnt, 0) > 0`

// AvailableRides lists rides a passenger can still book: scheduled, departing
// in the future and with effective seats remaining. One joined read per call,
// with the caller's request status as a left lookup.
func (s *Service) AvailableRides(ctx context.Context, userID int64) ([]AvailableRide, error) {
	passengerID, err := s.passengerID(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, availableRidesQuery+`
	ORDER BY r.departure_time`, passengerID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list available rides", err)
	}
	defer rows.Close()

	return scanAvailableRides(rows)
}

// SearchRides filters the browsable listing by a case-insensitive match on
// origin, destination or any stop label.
func (s *Service) SearchRides(ctx context.Context, userID int64, query string) ([]AvailableRide, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Validation("Search term is required", nil)
	}

	passengerID, err := s.passengerID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.QueryContext(ctx, availableRidesQuery+`
	  AND (lower(r.origin) LIKE $2
	       OR lower(r.destination) LIKE $2
	       OR EXISTS (
	              SELECT 1 FROM jsonb_array_elements_text(r.route_stops) AS stop
	              WHERE lower(stop) LIKE $2
	          ))
	ORDER BY r.departure_time`, passengerID, pattern)
	if err != nil {
		return nil, apperrors.Internal("Failed to search rides", err)
	}
	defer rows.Close()

	return scanAvailableRides(rows)
}

func scanAvailableRides(rows *sql.Rows) ([]AvailableRide, error) {
	out := []AvailableRide{}
	for rows.Next() {
		var (
			r        AvailableRide
			rawStops string
			myStatus string
		)
		err := rows.Scan(&r.RideID, &r.Origin, &r.Destination, &rawStops, &r.DepartureTime,
			&r.AvailableSeats, &r.PricePerSeat, &r.DriverName, &r.VehicleModel, &myStatus)
		if err != nil {
			return nil, apperrors.Internal("Failed to scan ride", err)
		}
		r.Stops = ride.DecodeStops(rawStops)
		if myStatus == "" {
			r.RequestStatus = request.StatusNotRequested
		} else {
			r.RequestStatus = myStatus
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("Failed to list rides", err)
	}
	return out, nil
}

// PendingRequest is a request awaiting the driver's decision
type PendingRequest struct {
	RequestID       int64  `json:"request_id"`
	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`
	PassengerName   string `json:"passenger_name"`
}

// DriverRide is a ride on the driver dashboard with its pending requests
type DriverRide struct {
	RideID         int64            `json:"ride_id"`
	Origin         string           `json:"origin"`
	Destination    string           `json:"destination"`
	Stops          []string         `json:"route_stops"`
	DepartureTime  time.Time        `json:"departure_time"`
	AvailableSeats int              `json:"available_seats"`
	PricePerSeat   int              `json:"price_per_seat"`
	Vehicle        string           `json:"vehicle"`
	Requests       []PendingRequest `json:"requests"`
}

// DriverRides lists the caller's rides with their pending requests. Two
// fixed queries regardless of ride count.
func (s *Service) DriverRides(ctx context.Context, userID int64) ([]DriverRide, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.ride_id, r.origin, r.destination, r.route_stops::text, r.departure_time,
		       r.available_seats, r.price_per_seat, v.make || ' ' || v.model
		FROM rides r
		JOIN drivers d ON d.driver_id = r.driver_id
		JOIN vehicles v ON v.vehicle_id = r.vehicle_id
		WHERE d.user_id = $1
		ORDER BY r.departure_time DESC
	`, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list rides", err)
	}
	defer rows.Close()

	byRide := map[int64]int{}
	out := []DriverRide{}
	for rows.Next() {
		var (
			r        DriverRide
			rawStops string
		)
		err := rows.Scan(&r.RideID, &r.Origin, &r.Destination, &rawStops, &r.DepartureTime,
			&r.AvailableSeats, &r.PricePerSeat, &r.Vehicle)
		if err != nil {
			return nil, apperrors.Internal("Failed to scan ride", err)
		}
		r.Stops = ride.DecodeStops(rawStops)
		r.Requests = []PendingRequest{}
		byRide[r.RideID] = len(out)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("Failed to list rides", err)
	}

	reqRows, err := s.db.QueryContext(ctx, `
		SELECT rr.ride_id, rr.request_id, rr.pickup_location, rr.dropoff_location, u.full_name
		FROM ride_requests rr
		JOIN rides r ON r.ride_id = rr.ride_id
		JOIN drivers d ON d.driver_id = r.driver_id
		JOIN passengers p ON p.passenger_id = rr.passenger_id
		JOIN users u ON u.user_id = p.user_id
		WHERE d.user_id = $1 AND rr.status = 'pending'
		ORDER BY rr.requested_at
	`, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list pending requests", err)
	}
	defer reqRows.Close()

	for reqRows.Next() {
		var (
			rideID int64
			pr     PendingRequest
		)
		err := reqRows.Scan(&rideID, &pr.RequestID, &pr.PickupLocation, &pr.DropoffLocation, &pr.PassengerName)
		if err != nil {
			return nil, apperrors.Internal("Failed to scan pending request", err)
		}
		if idx, ok := byRide[rideID]; ok {
			out[idx].Requests = append(out[idx].Requests, pr)
		}
	}
	if err := reqRows.Err(); err != nil {
		return nil, apperrors.Internal("Failed to list pending requests", err)
	}

	return out, nil
}

// AcceptedPassenger is a confirmed rider on one of the driver's rides
type AcceptedPassenger struct {
	RequestID       int64  `json:"request_id"`
	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`
	PassengerName   string `json:"passenger_name"`
	PassengerPhone  string `json:"passenger_phone"`
}

// AcceptedPassengers lists confirmed riders for a ride the caller owns.
func (s *Service) AcceptedPassengers(ctx context.Context, userID, rideID int64) ([]AcceptedPassenger, error) {
	var owned bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM rides r
			JOIN drivers d ON d.driver_id = r.driver_id
			WHERE r.ride_id = $1 AND d.user_id = $2
		)
	`, rideID, userID).Scan(&owned)
	if err != nil {
		return nil, apperrors.Internal("Failed to check ride ownership", err)
	}
	if !owned {
		return nil, apperrors.NotFound("Ride not found or not associated with this driver", nil)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rr.request_id, rr.pickup_location, rr.dropoff_location, u.full_name, u.phone_number
		FROM ride_requests rr
		JOIN passengers p ON p.passenger_id = rr.passenger_id
		JOIN users u ON u.user_id = p.user_id
		WHERE rr.ride_id = $1 AND rr.status = 'accepted'
		ORDER BY rr.requested_at
	`, rideID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list accepted passengers", err)
	}
	defer rows.Close()

	out := []AcceptedPassenger{}
	for rows.Next() {
		var ap AcceptedPassenger
		err := rows.Scan(&ap.RequestID, &ap.PickupLocation, &ap.DropoffLocation, &ap.PassengerName, &ap.PassengerPhone)
		if err != nil {
			return nil, apperrors.Internal("Failed to scan passenger", err)
		}
		out = append(out, ap)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("Failed to list accepted passengers", err)
	}
	return out, nil
}

// RideLocations returns the ordered route labels of a ride: origin, each
// stop, destination.
func (s *Service) RideLocations(ctx context.Context, rideID int64) ([]string, error) {
	var (
		r        ride.Ride
		rawStops string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT origin, destination, route_stops::text
		FROM rides
		WHERE ride_id = $1
	`, rideID).Scan(&r.Origin, &r.Destination, &rawStops)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrRideNotFound
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load ride", err)
	}
	r.Stops = ride.DecodeStops(rawStops)
	return r.Locations(), nil
}

// AcceptedRide is a booking the passenger had confirmed
type AcceptedRide struct {
	RideID          int64     `json:"ride_id"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	DepartureTime   time.Time `json:"departure_time"`
	Vehicle         string    `json:"vehicle"`
	DriverName      string    `json:"driver_name"`
	PickupLocation  string    `json:"pickup_location"`
	DropoffLocation string    `json:"dropoff_location"`
}

// AcceptedRides lists the caller's confirmed bookings.
func (s *Service) AcceptedRides(ctx context.Context, userID int64) ([]AcceptedRide, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.ride_id, r.origin, r.destination, r.departure_time,
		       v.make || ' ' || v.model || ' - ' || v.number_plate,
		       du.full_name, rr.pickup_location, rr.dropoff_location
		FROM ride_requests rr
		JOIN passengers p ON p.passenger_id = rr.passenger_id
		JOIN rides r ON r.ride_id = rr.ride_id
		JOIN vehicles v ON v.vehicle_id = r.vehicle_id
		JOIN drivers d ON d.driver_id = r.driver_id
		JOIN users du ON du.user_id = d.user_id
		WHERE p.user_id = $1 AND rr.status = 'accepted'
		ORDER BY r.departure_time
	`, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list accepted rides", err)
	}
	defer rows.Close()

	out := []AcceptedRide{}
	for rows.Next() {
		var ar AcceptedRide
		err := rows.Scan(&ar.RideID, &ar.Origin, &ar.Destination, &ar.DepartureTime,
			&ar.Vehicle, &ar.DriverName, &ar.PickupLocation, &ar.DropoffLocation)
		if err != nil {
			return nil, apperrors.Internal("Failed to scan accepted ride", err)
		}
		out = append(out, ar)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("Failed to list accepted rides", err)
	}
	return out, nil
}

func (s *Service) passengerID(ctx context.Context, userID int64) (int64, error) {
	var passengerID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT passenger_id FROM passengers WHERE user_id = $1`, userID,
	).Scan(&passengerID)
	if err == sql.ErrNoRows {
		return 0, apperrors.ErrPassengerNotFound
	}
	if err != nil {
		return 0, apperrors.Internal("Failed to load passenger profile", err)
	}
	return passengerID, nil
}
