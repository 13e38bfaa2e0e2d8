package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
)

// MinPasswordLength is the shortest password accepted on rotation.
const MinPasswordLength = 6

// Auth notices.
const (
	NoticeLoginSuccess      = "login successful"
	NoticeLoginMustRotate   = "login successful, please change your default password"
	NoticeLoginFailed       = "login failed"
	NoticePasswordChanged   = "password changed"
	NoticeChangeFailed      = "failed to change password"
	NoticeLoggedOut         = "logged out"
	NoticeCredentialsNeeded = "username and password are required"
)

// Authenticator is the remote authentication surface.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*domain.Identity, string, error)
	ChangePassword(ctx context.Context, current, next string) error
}

// AuthConfig configures an AuthService.
type AuthConfig struct {
	API      Authenticator
	Session  *SessionStore
	Notifier domain.Notifier
	Logger   logger.Logger
}

// AuthService logs operators in and rotates their password.
type AuthService struct {
	api      Authenticator
	session  *SessionStore
	notifier domain.Notifier
	log      logger.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(cfg AuthConfig) *AuthService {
	s := &AuthService{
		api:      cfg.API,
		session:  cfg.Session,
		notifier: cfg.Notifier,
		log:      cfg.Logger,
	}
	if s.notifier == nil {
		s.notifier = domain.NopNotifier
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	s.log = s.log.With("component", "auth")
	return s
}

// Login authenticates and starts a session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		notifyWarning(s.notifier, NoticeCredentialsNeeded)
		return nil, domain.ErrValidation.WithDetails(NoticeCredentialsNeeded)
	}

	identity, credential, err := s.api.Login(ctx, username, password)
	if err != nil {
		notifyError(s.notifier, domain.RemoteReason(err, NoticeLoginFailed))
		s.log.Info("login rejected", "username", username, "error", err)
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.session.Login(identity, credential); err != nil {
		notifyError(s.notifier, NoticeLoginFailed)
		return nil, fmt.Errorf("login: %w", err)
	}

	if identity.MustChangePassword {
		notifyWarning(s.notifier, NoticeLoginMustRotate)
	} else {
		notifySuccess(s.notifier, NoticeLoginSuccess)
	}
	return identity.Clone(), nil
}

// ChangePassword rotates the logged-in user's password. next must match
// confirm and be at least MinPasswordLength characters.
func (s *AuthService) ChangePassword(ctx context.Context, current, next, confirm string) error {
	// 1. Validate locally
	var reason string
	switch {
	case !s.session.Authenticated():
		reason = "log in first"
	case current == "":
		reason = "current password is required"
	case next != confirm:
		reason = "new password and confirmation differ"
	case len(next) < MinPasswordLength:
		reason = fmt.Sprintf("new password must be at least %d characters", MinPasswordLength)
	}
	if reason != "" {
		notifyWarning(s.notifier, reason)
		return domain.ErrValidation.WithDetails(reason)
	}

	// 2. Call the remote
	if err := s.api.ChangePassword(ctx, current, next); err != nil {
		if !errors.Is(err, domain.ErrAuthentication) {
			notifyError(s.notifier, domain.RemoteReason(err, NoticeChangeFailed))
		}
		return fmt.Errorf("change password: %w", err)
	}

	s.session.MarkCredentialRotated()
	notifySuccess(s.notifier, NoticePasswordChanged)
	s.log.Info("password rotated")
	return nil
}

// Logout ends the local session. The remote keeps no session state to
// revoke.
func (s *AuthService) Logout() {
	s.session.Logout()
	s.notifier.Notify(domain.Notice{Level: domain.NoticeInfo, Message: NoticeLoggedOut})
}
