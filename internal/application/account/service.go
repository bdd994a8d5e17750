// Package account provides the application layer for login, registration
// and email confirmation
package account

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/session"
	"github.com/lastcallsoftware/trackeats/internal/ports/inbound"
	"github.com/lastcallsoftware/trackeats/internal/ports/outbound"
	"github.com/lastcallsoftware/trackeats/pkg/errors"
	"go.uber.org/zap"
)

// Metrics receives login outcomes
type Metrics interface {
	RecordLogin(err error)
}

type nopMetrics struct{}

func (nopMetrics) RecordLogin(error) {}

// Service implements the account use cases
type Service struct {
	api      outbound.AccountAPI
	sessions session.Store
	validate *validator.Validate
	metrics  Metrics
	logger   *zap.Logger
}

var _ inbound.AccountService = (*Service)(nil)

// NewService creates a new account service. metrics may be nil.
func NewService(api outbound.AccountAPI, sessions session.Store, metrics Metrics, logger *zap.Logger) *Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Service{
		api:      api,
		sessions: sessions,
		validate: validator.New(),
		metrics:  metrics,
		logger:   logger.Named("account-service"),
	}
}

// Login exchanges credentials for a token and stores it in the session
func (s *Service) Login(ctx context.Context, sessionID, username, password string) (err error) {
	defer func() { s.metrics.RecordLogin(err) }()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return errors.NewAppError(errors.CodeValidationFailed, "Username and password are required", "")
	}

	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.logger.Info("Login failed", zap.String("username", username), zap.Error(err))
		return err
	}

	if _, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		sess.LogIn(username, token)
		sess.PendingUsername = ""
		return nil
	}); err != nil {
		return err
	}

	s.logger.Info("User logged in", zap.String("username", username))
	return nil
}

// Register creates an account and remembers it as pending confirmation
func (s *Service) Register(ctx context.Context, sessionID string, req outbound.RegisterRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return errors.NewAppError(errors.CodeValidationFailed, "Validation failed", describe(err)).WithCause(err)
	}

	if err := s.api.Register(ctx, req); err != nil {
		return err
	}

	if _, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		sess.PendingUsername = req.Username
		return nil
	}); err != nil {
		return err
	}

	s.logger.Info("User registered, awaiting confirmation", zap.String("username", req.Username))
	return nil
}

// ConfirmationStatus checks once whether the session's pending account has
// been confirmed
func (s *Service) ConfirmationStatus(ctx context.Context, sessionID string) (inbound.ConfirmationStatus, error) {
	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return inbound.ConfirmationStatus{}, err
	}
	if sess.PendingUsername == "" {
		return inbound.ConfirmationStatus{}, errors.NewNotFoundError("Pending registration")
	}

	confirmed, err := s.api.IsConfirmed(ctx, sess.PendingUsername)
	if err != nil {
		return inbound.ConfirmationStatus{}, err
	}
	return inbound.ConfirmationStatus{Username: sess.PendingUsername, Confirmed: confirmed}, nil
}

// AwaitConfirmation polls until the account is confirmed, ctx ends or the
// backend gives an answer that will not change by asking again. Transient
// backend failures are logged and polling continues.
func (s *Service) AwaitConfirmation(ctx context.Context, username string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		confirmed, err := s.api.IsConfirmed(ctx, username)
		switch {
		case err == nil && confirmed:
			s.logger.Info("Account confirmed", zap.String("username", username))
			return nil
		case err != nil && !retryable(err):
			return err
		case err != nil:
			s.logger.Warn("Confirmation check failed, retrying",
				zap.String("username", username),
				zap.Error(err),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Logout forgets the token and every open draft
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	_, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		sess.LogOut()
		return nil
	})
	if err != nil && !stderrors.Is(err, session.ErrNotFound) {
		return err
	}
	return nil
}

func retryable(err error) bool {
	switch errors.GetCode(err) {
	case errors.CodeExternalServiceError, errors.CodeTooManyRequests:
		return true
	default:
		return false
	}
}

// describe turns validator output into "Email must be a valid email"
func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email")
		case "min":
			msgs = append(msgs, fe.Field()+" must be at least "+fe.Param()+" characters")
		case "max":
			msgs = append(msgs, fe.Field()+" must be at most "+fe.Param()+" characters")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
