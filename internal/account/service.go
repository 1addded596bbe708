package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abelbrown/lens/internal/logging"
	"github.com/abelbrown/lens/internal/otel"
)

var (
	// ErrWeakPassword is returned by Signup before any network call.
	ErrWeakPassword = errors.New("password does not meet requirements")
	// ErrMissingField is returned when a required form field is blank.
	ErrMissingField = errors.New("missing required field")
)

const comp = "account"

// Backend is the remote side of the account flows.
type Backend interface {
	Login(ctx context.Context, username, password string) (string, error)
	Signup(ctx context.Context, username, email, password string) error
}

// Credentials persists the token Login obtains.
type Credentials interface {
	Save(ctx context.Context, username, token string) error
	Revoke(ctx context.Context) error
	Token(ctx context.Context) (string, error)
}

// Service runs the account flows.
type Service struct {
	backend Backend
	creds   Credentials
	events  *otel.Logger
}

// NewService creates a Service. events may be nil.
func NewService(backend Backend, creds Credentials, events *otel.Logger) *Service {
	return &Service{backend: backend, creds: creds, events: events}
}

// SignedIn reports whether a token is stored.
func (s *Service) SignedIn(ctx context.Context) (bool, error) {
	tok, err := s.creds.Token(ctx)
	if err != nil {
		return false, err
	}
	return tok != "", nil
}

// Login authenticates and stores the token.
func (s *Service) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password", ErrMissingField)
	}

	tok, err := s.backend.Login(ctx, username, password)
	if err != nil {
		logging.Warn("login failed", "user", username, "err", err)
		s.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindLogin, Msg: username, Err: err.Error()})
		return fmt.Errorf("login: %w", err)
	}
	if err := s.creds.Save(ctx, username, tok); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	s.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindLogin, Msg: username})
	return nil
}

// Signup validates the password locally, then creates the account. It does
// not sign in.
func (s *Service) Signup(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return fmt.Errorf("%w: username and email", ErrMissingField)
	}
	if report := CheckPassword(password); !report.Valid {
		return fmt.Errorf("%w: %s", ErrWeakPassword, strings.Join(report.Problems, ", "))
	}

	if err := s.backend.Signup(ctx, username, email, password); err != nil {
		logging.Warn("signup failed", "user", username, "err", err)
		s.emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindSignup, Msg: username, Err: err.Error()})
		return fmt.Errorf("signup: %w", err)
	}
	s.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSignup, Msg: username})
	return nil
}

// Logout forgets the stored token.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.creds.Revoke(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindLogout})
	return nil
}

func (s *Service) emit(e otel.Event) {
	if s.events == nil {
		return
	}
	e.Comp = comp
	s.events.Emit(e)
}
