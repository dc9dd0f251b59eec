package vehicle

import (
	"regexp"

	apperrors "github.com/campuspool/carpool/pkg/errors"
)

// Vehicle represents a car registered by a driver
type Vehicle struct {
	ID          int64  `json:"vehicle_id"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	NumberPlate string `json:"number_plate"`
	DriverID    int64  `json:"driver_id"`
}

const (
	maxMakeLen  = 10
	maxModelLen = 10
	maxPlateLen = 7
)

var (
	makePattern  = regexp.MustCompile(`^[A-Za-z]+$`)
	platePattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// Validate checks make, model and plate against registration rules.
func (v *Vehicle) Validate() error {
	if v.Make == "" || len(v.Make) > maxMakeLen || !makePattern.MatchString(v.Make) {
		return apperrors.Validation("Make is required, letters only, at most 10 characters", nil)
	}
	if v.Model == "" || len(v.Model) > maxModelLen {
		return apperrors.Validation("Model is required and cannot exceed 10 characters", nil)
	}
	if v.NumberPlate == "" || len(v.NumberPlate) > maxPlateLen || !platePattern.MatchString(v.NumberPlate) {
		return apperrors.Validation("Number plate is required, letters, digits and hyphens only, at most 7 characters", nil)
	}
	return nil
}
