package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuspool/carpool/internal/domain/user"
	apperrors "github.com/campuspool/carpool/pkg/errors"
	"github.com/campuspool/carpool/pkg/logger"
)

// CodeStore abstracts the expiring email-verification store.
type CodeStore interface {
	SetCode(ctx context.Context, email, code string) error
	Verify(ctx context.Context, email, code string) (bool, error)
	IsVerified(ctx context.Context, email string) (bool, error)
	Clear(ctx context.Context, email string) error
}

// EmailSender delivers verification codes. Mail transport is an external
// collaborator; the default implementation only logs.
type EmailSender interface {
	SendOTP(ctx context.Context, email, code string) error
}

// Claims is the JWT payload issued at login and trusted by the middleware.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Config holds token settings
type Config struct {
	JWTSecret []byte
	JWTExpiry time.Duration
}

// Service implements registration and login
type Service struct {
	db     *sql.DB
	codes  CodeStore
	mailer EmailSender
	logger *logger.Logger
	cfg    Config
}

// NewService creates an auth service
func NewService(db *sql.DB, codes CodeStore, mailer EmailSender, logger *logger.Logger, cfg Config) *Service {
	return &Service{db: db, codes: codes, mailer: mailer, logger: logger, cfg: cfg}
}

// SendOTP generates a verification code for a new email and hands it to the
// mail sender.
func (s *Service) SendOTP(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.Validation("Email is required", nil)
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE university_email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return apperrors.Internal("Failed to check email", err)
	}
	if exists {
		return apperrors.ErrEmailTaken
	}

	code, err := generateCode()
	if err != nil {
		return apperrors.Internal("Failed to generate verification code", err)
	}
	if err := s.codes.SetCode(ctx, email, code); err != nil {
		return apperrors.Internal("Failed to store verification code", err)
	}
	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		return apperrors.Internal("Failed to send verification code", err)
	}

	s.logger.Info("Verification code issued", logger.String("email", email))
	return nil
}

// VerifyOTP checks a submitted code and marks the email verified.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	ok, err := s.codes.Verify(ctx, email, code)
	if err != nil {
		return apperrors.Internal("Failed to verify code", err)
	}
	if !ok {
		return apperrors.ErrInvalidOTP
	}
	return nil
}

// Register creates a user row for a verified email.
func (s *Service) Register(ctx context.Context, fullName, email, phone, password string) (int64, error) {
	if err := user.ValidateRegistration(fullName, email, phone); err != nil {
		return 0, err
	}
	if password == "" {
		return 0, apperrors.Validation("Password is required", nil)
	}

	verified, err := s.codes.IsVerified(ctx, email)
	if err != nil {
		return 0, apperrors.Internal("Failed to check verification state", err)
	}
	if !verified {
		return 0, apperrors.ErrOTPNotVerified
	}

	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE university_email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return 0, apperrors.Internal("Failed to check email", err)
	}
	if exists {
		return 0, apperrors.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, apperrors.Internal("Failed to hash password", err)
	}

	var userID int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (full_name, university_email, password_hash, phone_number)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id
	`, fullName, email, string(hash), phone).Scan(&userID)
	if err != nil {
		return 0, apperrors.Internal("Failed to create user", err)
	}

	if err := s.codes.Clear(ctx, email); err != nil {
		s.logger.Warn("Failed to clear verification state", logger.Err(err), logger.String("email", email))
	}

	s.logger.Info("User registered",
		logger.Int64("user_id", userID),
		logger.String("email", email),
	)
	return userID, nil
}

// LoginResult is what a successful login returns
type LoginResult struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Login verifies the password, lazily creates the role profile on first
// login under that role, and issues a JWT.
func (s *Service) Login(ctx context.Context, email, password string, role user.Role) (*LoginResult, error) {
	if !role.IsValid() {
		return nil, apperrors.Validation("Role must be driver or passenger", nil)
	}

	var (
		userID   int64
		fullName string
		hash     string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, full_name, password_hash
		FROM users
		WHERE university_email = $1
	`, email).Scan(&userID, &fullName, &hash)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	// First login under a role creates that profile.
	var profileTable string
	switch role {
	case user.RoleDriver:
		profileTable = "drivers"
	case user.RolePassenger:
		profileTable = "passengers"
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, profileTable,
	), userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to create role profile", err)
	}

	token, err := s.issueToken(userID, email, string(role))
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	s.logger.Info("User logged in",
		logger.Int64("user_id", userID),
		logger.String("role", string(role)),
	)

	return &LoginResult{
		Token:    token,
		UserID:   userID,
		FullName: fullName,
		Role:     string(role),
	}, nil
}

func (s *Service) issueToken(userID int64, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.cfg.JWTSecret)
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// LogEmailSender stands in for the real mail transport and writes the code
// to the log instead of sending it.
type LogEmailSender struct {
	Logger *logger.Logger
}

// SendOTP implements EmailSender
func (l *LogEmailSender) SendOTP(ctx context.Context, email, code string) error {
	l.Logger.Info("OTP email (transport disabled)",
		logger.String("email", email),
		logger.String("code", code),
	)
	return nil
}
