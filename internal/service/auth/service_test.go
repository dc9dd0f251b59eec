package auth

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuspool/carpool/internal/domain/user"
	apperrors "github.com/campuspool/carpool/pkg/errors"
	"github.com/campuspool/carpool/pkg/logger"
)

// fakeCodeStore is an in-memory CodeStore for tests
type fakeCodeStore struct {
	codes    map[string]string
	verified map[string]bool
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{codes: map[string]string{}, verified: map[string]bool{}}
}

func (f *fakeCodeStore) SetCode(_ context.Context, email, code string) error {
	f.codes[email] = code
	return nil
}

func (f *fakeCodeStore) Verify(_ context.Context, email, code string) (bool, error) {
	if f.codes[email] != code || code == "" {
		return false, nil
	}
	f.verified[email] = true
	return true, nil
}

func (f *fakeCodeStore) IsVerified(_ context.Context, email string) (bool, error) {
	return f.verified[email], nil
}

func (f *fakeCodeStore) Clear(_ context.Context, email string) error {
	delete(f.codes, email)
	delete(f.verified, email)
	return nil
}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *fakeCodeStore) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	codes := newFakeCodeStore()
	svc := NewService(db, codes, &LogEmailSender{Logger: logger.NewNop()}, logger.NewNop(), Config{
		JWTSecret: []byte("test-secret"),
		JWTExpiry: time.Hour,
	})
	return svc, mock, codes
}

// TestSendOTP_ExistingEmail tests that a registered email cannot restart
// verification
func TestSendOTP_ExistingEmail(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery("SELECT EXISTS").WithArgs("taken@kbtu.kz").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := svc.SendOTP(context.Background(), "taken@kbtu.kz")
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestVerifyOTP_WrongCode tests rejection of a mismatched code
func TestVerifyOTP_WrongCode(t *testing.T) {
	svc, _, codes := newTestService(t)
	codes.codes["a@kbtu.kz"] = "123456"

	err := svc.VerifyOTP(context.Background(), "a@kbtu.kz", "000000")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

// TestRegister_RequiresVerifiedEmail tests that registration is gated on a
// completed verification
func TestRegister_RequiresVerifiedEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), "Aigerim S", "a@kbtu.kz", "+77001234567", "secret")
	assert.ErrorIs(t, err, apperrors.ErrOTPNotVerified)
}

// TestRegister_VerifiedEmail tests account creation and verification cleanup
func TestRegister_VerifiedEmail(t *testing.T) {
	svc, mock, codes := newTestService(t)
	codes.verified["a@kbtu.kz"] = true

	mock.ExpectQuery("SELECT EXISTS").WithArgs("a@kbtu.kz").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))

	userID, err := svc.Register(context.Background(), "Aigerim S", "a@kbtu.kz", "+77001234567", "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
	assert.False(t, codes.verified["a@kbtu.kz"], "verification state should be cleared")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestLogin_WrongPassword tests credential rejection without leaking which
// part was wrong
func TestLogin_WrongPassword(t *testing.T) {
	svc, mock, _ := newTestService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT user_id, full_name, password_hash").WithArgs("a@kbtu.kz").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "full_name", "password_hash"}).
			AddRow(7, "Aigerim S", string(hash)))

	_, err = svc.Login(context.Background(), "a@kbtu.kz", "wrong", user.RolePassenger)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestLogin_LazyProfileAndToken tests that first login under a role creates
// the profile and issues a parseable token
func TestLogin_LazyProfileAndToken(t *testing.T) {
	svc, mock, _ := newTestService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT user_id, full_name, password_hash").WithArgs("a@kbtu.kz").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "full_name", "password_hash"}).
			AddRow(7, "Aigerim S", string(hash)))
	mock.ExpectExec("INSERT INTO passengers").WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := svc.Login(context.Background(), "a@kbtu.kz", "secret", user.RolePassenger)
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.UserID)
	assert.Equal(t, "passenger", result.Role)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(result.Token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "passenger", claims.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestLogin_InvalidRole tests the role guard
func TestLogin_InvalidRole(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "a@kbtu.kz", "secret", user.Role("admin"))
	assert.Error(t, err)
}
