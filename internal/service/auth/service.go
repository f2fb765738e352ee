// Package auth handles sign-up against the persisted allow-list, password
// sign-in and session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/service/fields"
)

const (
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 8
	// DefaultTokenTTL applies when no TTL is configured.
	DefaultTokenTTL = 7 * 24 * time.Hour

	issuer = "herdbook"
)

// Options configures token issuing.
type Options struct {
	Secret   []byte
	TokenTTL time.Duration
}

// Service implements the account operations.
type Service struct {
	store    repository.AccountStore
	secret   []byte
	ttl      time.Duration
	recorder metrics.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the auth service. The secret must not be empty.
func NewService(store repository.AccountStore, opts Options, recorder metrics.Recorder, logger *zap.Logger) (*Service, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("auth: token secret must not be empty")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		secret:   opts.Secret,
		ttl:      opts.TokenTTL,
		recorder: metrics.OrNop(recorder),
		logger:   logger,
		now:      time.Now,
	}, nil
}

// WithClock overrides the clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUpInput is the registration form.
type SignUpInput struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	FullName      string `json:"full_name"`
	FarmName      string `json:"farm_name"`
	WhatsAppPhone string `json:"whatsapp_phone"`
}

// Session is returned on successful sign-in.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// CheckAllowed reports whether email may register.
func (s *Service) CheckAllowed(ctx context.Context, email string) (bool, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return false, models.MissingField("email")
	}
	allowed, err := s.store.IsEmailAllowed(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check allow-list: %w", err)
	}
	return allowed, nil
}

// SignUp creates an account for an allow-listed email.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	email, err := fields.Required("email", NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if !strings.Contains(email, "@") {
		return nil, models.Invalid("email", "not an email address")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, models.Invalid("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}

	allowed, err := s.CheckAllowed(ctx, email)
	if err != nil {
		return nil, err
	}
	if !allowed {
		s.logger.Info("sign-up rejected by allow-list", zap.String("email", email))
		return nil, models.ErrSignupNotAllowed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Email:         email,
		PasswordHash:  string(hash),
		FullName:      strings.TrimSpace(in.FullName),
		FarmName:      strings.TrimSpace(in.FarmName),
		WhatsAppPhone: models.NormalizePhone(in.WhatsAppPhone),
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, &models.ValidationError{Field: "email", Value: email, Reason: "already registered"}
		}
		return nil, err
	}

	s.recorder.RecordEvent(metrics.EventSignUp)
	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return user, nil
}

// SignIn verifies the credentials and issues a session token. The
// allow-list is checked again so removing an email locks the account out.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, models.ErrUnauthenticated
	}

	allowed, err := s.CheckAllowed(ctx, email)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, models.ErrSignupNotAllowed
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthenticated
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrUnauthenticated
	}

	token, expires, err := s.issue(user.ID)
	if err != nil {
		return nil, err
	}
	s.recorder.RecordEvent(metrics.EventSignIn)
	return &Session{Token: token, ExpiresAt: expires, User: *user}, nil
}

func (s *Service) issue(userID string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expires, nil
}

// Authenticate resolves a session token to its owner key.
func (s *Service) Authenticate(token string) (string, error) {
	if token == "" {
		return "", models.ErrUnauthenticated
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	var claims jwt.RegisteredClaims
	if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); err != nil {
		s.logger.Debug("rejected session token", zap.Error(err))
		return "", models.ErrUnauthenticated
	}
	if !claims.VerifyExpiresAt(s.now(), true) || !claims.VerifyIssuer(issuer, true) || claims.Subject == "" {
		return "", models.ErrUnauthenticated
	}
	return claims.Subject, nil
}

// TokenTTL is the lifetime of issued tokens.
func (s *Service) TokenTTL() time.Duration { return s.ttl }
