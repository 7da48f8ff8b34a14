// Package auth implements the signup, login, and password-reset flows:
// client-side validation, the auth round trips, and session token
// persistence.
//
// Failures are two-tier. Validation rejections and server-provided
// messages (BadResponseError) are user-visible and delivered through the
// error channel; anything unexpected (network failure, malformed
// response) is logged and silently converted to a false result.
package auth

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/agritech/agriclient/internal/gateway"
	"github.com/agritech/agriclient/internal/models"
	"github.com/agritech/agriclient/internal/observability"
	"github.com/agritech/agriclient/internal/session"
)

// Store coordinates auth form state and the account operations. Safe for
// concurrent use, though in practice a single UI drives it.
type Store struct {
	gw     gateway.Gateway
	tokens session.Store
	logger *zap.Logger

	mu   sync.RWMutex
	form Form

	errs chan error
}

// NewStore returns an auth Store using gw for network calls and tokens
// for credential persistence.
func NewStore(gw gateway.Gateway, tokens session.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		gw:     gw,
		tokens: tokens,
		logger: logger,
		errs:   make(chan error, 16),
	}
}

// Errors delivers user-visible failures: *ValidationError and
// *gateway.BadResponseError values. Unexpected errors never appear here.
func (s *Store) Errors() <-chan error {
	return s.errs
}

// Form returns a copy of the current form input.
func (s *Store) Form() Form {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.form
}

func (s *Store) SetUsername(v string)        { s.setField(func(f *Form) { f.Username = v }) }
func (s *Store) SetEmail(v string)           { s.setField(func(f *Form) { f.Email = v }) }
func (s *Store) SetPassword(v string)        { s.setField(func(f *Form) { f.Password = v }) }
func (s *Store) SetConfirmPassword(v string) { s.setField(func(f *Form) { f.ConfirmPassword = v }) }
func (s *Store) SetOTP(v string)             { s.setField(func(f *Form) { f.OTP = v }) }

func (s *Store) setField(mutate func(*Form)) {
	s.mu.Lock()
	mutate(&s.form)
	s.mu.Unlock()
}

// CreateAccount validates the signup form and registers the account.
// Returns whether the operation succeeded; failures are reported through
// the error channel or, for unexpected errors, the log.
func (s *Store) CreateAccount(ctx context.Context) bool {
	form := s.Form()
	if verr := validateSignUp(form); verr != nil {
		s.reportValidation("signup", verr)
		return false
	}

	_, err := s.gw.SignUp(ctx, models.SignUpRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		s.reportFailure("signup", err)
		return false
	}

	observability.AuthOperationsTotal.WithLabelValues("signup", "success").Inc()
	return true
}

// Login validates the credentials, performs the login round trip, and on
// success persists the issued bearer token alongside the username and
// email.
func (s *Store) Login(ctx context.Context) bool {
	form := s.Form()
	if verr := validateLogin(form); verr != nil {
		s.reportValidation("login", verr)
		return false
	}

	resp, err := s.gw.Login(ctx, models.LoginRequest{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		s.reportFailure("login", err)
		return false
	}

	rec := session.Record{
		Username:    form.Username,
		Email:       form.Email,
		AccessToken: resp.AccessToken,
	}
	if err := s.tokens.Save(rec); err != nil {
		s.logger.Error("persist session token", zap.Error(err))
		observability.AuthOperationsTotal.WithLabelValues("login", "unexpected").Inc()
		return false
	}

	observability.AuthOperationsTotal.WithLabelValues("login", "success").Inc()
	return true
}

// ForgotPassword validates the email and requests a reset OTP.
func (s *Store) ForgotPassword(ctx context.Context) bool {
	form := s.Form()
	if verr := validateForgotPassword(form); verr != nil {
		s.reportValidation("forgot_password", verr)
		return false
	}

	_, err := s.gw.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: form.Email})
	if err != nil {
		s.reportFailure("forgot_password", err)
		return false
	}

	observability.AuthOperationsTotal.WithLabelValues("forgot_password", "success").Inc()
	return true
}

// ResetPassword validates the reset form (email, new password, confirm,
// OTP) and completes the reset.
func (s *Store) ResetPassword(ctx context.Context) bool {
	form := s.Form()
	if verr := validateResetPassword(form); verr != nil {
		s.reportValidation("reset_password", verr)
		return false
	}

	_, err := s.gw.ResetPassword(ctx, models.ResetPasswordRequest{
		Email:              form.Email,
		OTP:                form.OTP,
		NewPassword:        form.Password,
		ConfirmNewPassword: form.ConfirmPassword,
	})
	if err != nil {
		s.reportFailure("reset_password", err)
		return false
	}

	observability.AuthOperationsTotal.WithLabelValues("reset_password", "success").Inc()
	return true
}

// Logout clears the persisted session record synchronously. Returns
// whether the clear was committed.
func (s *Store) Logout() bool {
	if err := s.tokens.Clear(); err != nil {
		s.logger.Error("clear session token", zap.Error(err))
		observability.AuthOperationsTotal.WithLabelValues("logout", "unexpected").Inc()
		return false
	}
	observability.AuthOperationsTotal.WithLabelValues("logout", "success").Inc()
	return true
}

func (s *Store) reportValidation(op string, verr *ValidationError) {
	observability.AuthOperationsTotal.WithLabelValues(op, "validation_error").Inc()
	s.emit(verr)
}

// reportFailure routes a network-call error: a BadResponseError carries a
// server message for the user, anything else is logged only.
func (s *Store) reportFailure(op string, err error) {
	if bre, ok := gateway.AsBadResponse(err); ok {
		observability.AuthOperationsTotal.WithLabelValues(op, "bad_response").Inc()
		s.emit(bre)
		return
	}
	observability.AuthOperationsTotal.WithLabelValues(op, "unexpected").Inc()
	s.logger.Error("auth operation failed", zap.String("operation", op), zap.Error(err))
}

func (s *Store) emit(err error) {
	select {
	case s.errs <- err:
	default:
	}
}
