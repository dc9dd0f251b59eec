package vehicles

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/campuspool/carpool/internal/domain/vehicle"
	apperrors "github.com/campuspool/carpool/pkg/errors"
	"github.com/campuspool/carpool/pkg/logger"
)

// Service manages a driver's registered vehicles
type Service struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewService creates a vehicle service
func NewService(db *sql.DB, logger *logger.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// AddVehicle registers a vehicle under the caller's driver profile.
func (s *Service) AddVehicle(ctx context.Context, userID int64, makeName, model, plate string) (int64, error) {
	v := vehicle.Vehicle{Make: makeName, Model: model, NumberPlate: plate}
	if err := v.Validate(); err != nil {
		return 0, err
	}

	var driverID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT driver_id FROM drivers WHERE user_id = $1`, userID,
	).Scan(&driverID)
	if err == sql.ErrNoRows {
		return 0, apperrors.ErrDriverNotFound
	}
	if err != nil {
		return 0, apperrors.Internal("Failed to load driver profile", err)
	}

	var vehicleID int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO vehicles (make, model, number_plate, driver_id)
		VALUES ($1, $2, $3, $4)
		RETURNING vehicle_id
	`, v.Make, v.Model, v.NumberPlate, driverID).Scan(&vehicleID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return 0, apperrors.ErrPlateTaken
		}
		return 0, apperrors.Internal("Failed to create vehicle", err)
	}

	s.logger.Info("Vehicle registered",
		logger.Int64("vehicle_id", vehicleID),
		logger.Int64("driver_id", driverID),
	)
	return vehicleID, nil
}

// Vehicles lists the caller's registered vehicles.
func (s *Service) Vehicles(ctx context.Context, userID int64) ([]vehicle.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.vehicle_id, v.make, v.model, v.number_plate, v.driver_id
		FROM vehicles v
		JOIN drivers d ON d.driver_id = v.driver_id
		WHERE d.user_id = $1
		ORDER BY v.vehicle_id
	`, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list vehicles", err)
	}
	defer rows.Close()

	out := []vehicle.Vehicle{}
	for rows.Next() {
		var v vehicle.Vehicle
		if err := rows.Scan(&v.ID, &v.Make, &v.Model, &v.NumberPlate, &v.DriverID); err != nil {
			return nil, apperrors.Internal("Failed to scan vehicle", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("Failed to list vehicles", err)
	}
	return out, nil
}
