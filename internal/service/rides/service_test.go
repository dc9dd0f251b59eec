package rides

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspool/carpool/internal/domain/request"
	apperrors "github.com/campuspool/carpool/pkg/errors"
	"github.com/campuspool/carpool/pkg/logger"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db, logger.NewNop()), mock
}

func validInput() CreateRideInput {
	return CreateRideInput{
		VehicleID:      1,
		Origin:         "Main Campus",
		Destination:    "Airport",
		Stops:          []string{"Central Station"},
		DepartureTime:  time.Now().Add(24 * time.Hour),
		AvailableSeats: 3,
		PricePerSeat:   200,
	}
}

// TestCreateRide_Atomic tests that the ride, its conversation and the driver
// membership are created in one transaction
func TestCreateRide_Atomic(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT driver_id FROM drivers").WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"driver_id"}).AddRow(2))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("INSERT INTO rides").
		WillReturnRows(sqlmock.NewRows([]string{"ride_id"}).AddRow(9))
	mock.ExpectQuery("INSERT INTO conversations").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"conversation_id"}).AddRow(4))
	mock.ExpectExec("INSERT INTO conversation_members").WithArgs(int64(4), int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rideID, err := svc.CreateRide(context.Background(), 12, validInput())
	require.NoError(t, err)
	assert.Equal(t, int64(9), rideID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCreateRide_VehicleNotOwned tests rejection when the vehicle does not
// belong to the caller, with nothing committed
func TestCreateRide_VehicleNotOwned(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT driver_id FROM drivers").WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"driver_id"}).AddRow(2))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, err := svc.CreateRide(context.Background(), 12, validInput())
	assert.ErrorIs(t, err, apperrors.ErrInvalidVehicle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCreateRide_ConversationFailureRollsBack tests that a failed conversation
// insert aborts the whole creation
func TestCreateRide_ConversationFailureRollsBack(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT driver_id FROM drivers").WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"driver_id"}).AddRow(2))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("INSERT INTO rides").
		WillReturnRows(sqlmock.NewRows([]string{"ride_id"}).AddRow(9))
	mock.ExpectQuery("INSERT INTO conversations").WithArgs(int64(9)).
		WillReturnError(errConversation)
	mock.ExpectRollback()

	_, err := svc.CreateRide(context.Background(), 12, validInput())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var errConversation = errors.New("insert failed")

// TestCreateRide_InvalidOffer tests that validation happens before any query
func TestCreateRide_InvalidOffer(t *testing.T) {
	svc, mock := newTestService(t)

	in := validInput()
	in.AvailableSeats = 0

	_, err := svc.CreateRide(context.Background(), 12, in)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAvailableRides_RequestStatusAnnotation tests that listings carry
// effective seats and the caller's own request status
func TestAvailableRides_RequestStatusAnnotation(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT passenger_id FROM passengers").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"passenger_id"}).AddRow(3))

	cols := []string{"ride_id", "origin", "destination", "route_stops", "departure_time",
		"seats_left", "price_per_seat", "full_name", "model", "my_status"}
	departure := time.Now().Add(24 * time.Hour)
	mock.ExpectQuery("FROM rides r").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(9, "Main Campus", "Airport", `["Central Station"]`, departure, 2, 200, "Aigerim", "Camry", "").
			AddRow(10, "Dorms", "Mall", `[]`, departure, 1, 150, "Daniyar", "Civic", "pending"))

	out, err := svc.AvailableRides(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, request.StatusNotRequested, out[0].RequestStatus)
	assert.Equal(t, []string{"Central Station"}, out[0].Stops)
	assert.Equal(t, 2, out[0].AvailableSeats)

	assert.Equal(t, "pending", out[1].RequestStatus)
	assert.Equal(t, []string{}, out[1].Stops)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSearchRides_EmptyTerm tests that a blank search term is a validation
// error before any query
func TestSearchRides_EmptyTerm(t *testing.T) {
	svc, mock := newTestService(t)

	_, err := svc.SearchRides(context.Background(), 7, "   ")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRideLocations tests the ordered route for a ride
func TestRideLocations(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT origin, destination, route_stops").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"origin", "destination", "route_stops"}).
			AddRow("Main Campus", "Airport", `["Central Station"]`))

	out, err := svc.RideLocations(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, []string{"Main Campus", "Central Station", "Airport"}, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRideLocations_NotFound tests the missing-ride path
func TestRideLocations_NotFound(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT origin, destination, route_stops").WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"origin", "destination", "route_stops"}))

	_, err := svc.RideLocations(context.Background(), 404)
	assert.ErrorIs(t, err, apperrors.ErrRideNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
