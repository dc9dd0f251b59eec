package booking

import (
	"context"
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

// TestSubmitRequest_FirstRequest tests the happy path for a new pair
func TestSubmitRequest_FirstRequest(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT passenger_id FROM passengers").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"passenger_id"}).AddRow(3))
	mock.ExpectQuery("FROM rides r").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(12))
	mock.ExpectQuery("SELECT request_id, status").WithArgs(int64(3), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"request_id", "status"}))
	mock.ExpectQuery("INSERT INTO ride_requests").
		WillReturnRows(sqlmock.NewRows([]string{"request_id", "requested_at"}).AddRow(5, time.Now()))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	req, err := svc.SubmitRequest(context.Background(), 7, 9, "Dorm 5", "Library")
	require.NoError(t, err)
	assert.Equal(t, int64(5), req.ID)
	assert.Equal(t, request.StatusPending, req.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSubmitRequest_ActiveDuplicate tests that a pending or accepted request
// for the same pair is rejected with a conflict
func TestSubmitRequest_ActiveDuplicate(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT passenger_id FROM passengers").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"passenger_id"}).AddRow(3))
	mock.ExpectQuery("FROM rides r").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(12))
	mock.ExpectQuery("SELECT request_id, status").WithArgs(int64(3), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"request_id", "status"}).AddRow(5, "accepted"))
	mock.ExpectRollback()

	_, err := svc.SubmitRequest(context.Background(), 7, 9, "Dorm 5", "Library")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSubmitRequest_DeniedReplaced tests that a denied request is deleted and
// a fresh pending one created
func TestSubmitRequest_DeniedReplaced(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT passenger_id FROM passengers").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"passenger_id"}).AddRow(3))
	mock.ExpectQuery("FROM rides r").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(12))
	mock.ExpectQuery("SELECT request_id, status").WithArgs(int64(3), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"request_id", "status"}).AddRow(5, "denied"))
	mock.ExpectExec("DELETE FROM ride_requests").WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO ride_requests").
		WillReturnRows(sqlmock.NewRows([]string{"request_id", "requested_at"}).AddRow(6, time.Now()))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	req, err := svc.SubmitRequest(context.Background(), 7, 9, "Dorm 5", "Library")
	require.NoError(t, err)
	assert.Equal(t, int64(6), req.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSubmitRequest_RideMissing tests the not-found path
func TestSubmitRequest_RideMissing(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT passenger_id FROM passengers").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"passenger_id"}).AddRow(3))
	mock.ExpectQuery("FROM rides r").WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
	mock.ExpectRollback()

	_, err := svc.SubmitRequest(context.Background(), 7, 404, "Dorm 5", "Library")
	assert.ErrorIs(t, err, apperrors.ErrRideNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAcceptRequest_GrantsMembership tests that accepting transitions the
// request and adds the passenger to the ride's conversation atomically
func TestAcceptRequest_GrantsMembership(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT driver_id FROM drivers").WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"driver_id"}).AddRow(2))
	mock.ExpectQuery("SELECT rr.ride_id, p.user_id").WithArgs(int64(5), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"ride_id", "user_id"}).AddRow(9, 21))
	mock.ExpectExec("UPDATE ride_requests").WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO conversations").WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT conversation_id FROM conversations").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"conversation_id"}).AddRow(4))
	mock.ExpectExec("INSERT INTO conversation_members").WithArgs(int64(4), int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	err := svc.AcceptRequest(context.Background(), 12, 5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAcceptRequest_NotOwned tests that a driver cannot decide requests on
// rides they do not own
func TestAcceptRequest_NotOwned(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT driver_id FROM drivers").WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"driver_id"}).AddRow(2))
	mock.ExpectQuery("SELECT rr.ride_id, p.user_id").WithArgs(int64(5), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"ride_id", "user_id"}))
	mock.ExpectRollback()

	err := svc.AcceptRequest(context.Background(), 12, 5)
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRejectRequest tests the denial path: status change and notification,
// no membership side effect
func TestRejectRequest(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT driver_id FROM drivers").WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"driver_id"}).AddRow(2))
	mock.ExpectQuery("SELECT rr.ride_id, p.user_id").WithArgs(int64(5), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"ride_id", "user_id"}).AddRow(9, 21))
	mock.ExpectExec("UPDATE ride_requests").WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	err := svc.RejectRequest(context.Background(), 12, 5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
