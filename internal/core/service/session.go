package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
	"github.com/NDP4/CompanyLock-Manager/internal/storage"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
)

// persistTimeout bounds a single save or clear of the session blob.
const persistTimeout = 5 * time.Second

// SessionStore holds the authenticated identity and its bearer credential.
//
// One instance exists per process; it is created by the caller and handed
// to the request pipeline. Mutations are serialised; header reads take a
// read lock and never block on persistence.
type SessionStore struct {
	mu        sync.RWMutex
	state     domain.SessionState
	persistMu sync.Mutex // taken before mu is released so writes land in mutation order
	persister storage.Persister
	log       logger.Logger
	now       func() time.Time
}

// NewSessionStore creates a logged-out store. A nil persister keeps the
// session in memory only.
func NewSessionStore(persister storage.Persister, log logger.Logger) *SessionStore {
	if log == nil {
		log = logger.NewNop()
	}
	return &SessionStore{
		persister: persister,
		log:       log.With("component", "session"),
		now:       time.Now,
	}
}

// ============================================================================
// Mutations
// ============================================================================

// Login sets identity, credential and the authenticated flag together.
// MustRotate follows identity.MustChangePassword. Invalid input leaves
// the store untouched.
func (s *SessionStore) Login(identity *domain.Identity, credential string) error {
	if !identity.Valid() {
		return domain.ErrValidation.WithDetails("identity is required")
	}
	if strings.TrimSpace(credential) == "" {
		return domain.ErrValidation.WithDetails("credential is required")
	}

	s.mu.Lock()
	s.state = domain.SessionState{
		Identity:         identity.Clone(),
		BearerCredential: credential,
		Authenticated:    true,
		MustRotate:       identity.MustChangePassword,
	}
	snapshot := s.state.Clone()
	s.persistMu.Lock()
	s.mu.Unlock()
	defer s.persistMu.Unlock()

	s.log.Info("session started",
		"user_id", identity.ID,
		"must_rotate", identity.MustChangePassword)
	s.save(snapshot)
	return nil
}

// Logout clears every field. It is idempotent and never fails.
func (s *SessionStore) Logout() {
	s.mu.Lock()
	was := s.state.Authenticated
	s.state = domain.SessionState{}
	s.persistMu.Lock()
	s.mu.Unlock()
	defer s.persistMu.Unlock()

	if was {
		s.log.Info("session cleared")
	}
	s.clear()
}

// MarkCredentialRotated clears the rotation requirement after a
// successful password change. No-op without an identity.
func (s *SessionStore) MarkCredentialRotated() {
	s.mu.Lock()
	if s.state.Identity == nil {
		s.mu.Unlock()
		return
	}
	s.state.MustRotate = false
	s.state.Identity.MustChangePassword = false
	snapshot := s.state.Clone()
	s.persistMu.Lock()
	s.mu.Unlock()
	defer s.persistMu.Unlock()

	s.save(snapshot)
}

// ============================================================================
// Reads
// ============================================================================

// AuthorizationHeader returns "Authorization: Bearer <credential>" or an
// empty header when logged out.
func (s *SessionStore) AuthorizationHeader() http.Header {
	s.mu.RLock()
	cred := s.state.BearerCredential
	s.mu.RUnlock()

	h := make(http.Header, 1)
	if cred != "" {
		h.Set("Authorization", "Bearer "+cred)
	}
	return h
}

// Snapshot returns a copy of the current state.
func (s *SessionStore) Snapshot() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Authenticated reports whether a session is active.
func (s *SessionStore) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Authenticated
}

// Identity returns a copy of the logged-in identity, or nil.
func (s *SessionStore) Identity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Identity.Clone()
}

// ============================================================================
// Durability
// ============================================================================

// Restore hydrates the store from the persister. Missing, partial or
// unreadable state fails safe to logged-out and clears what was stored;
// that is logged, not returned.
func (s *SessionStore) Restore(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	data, err := s.persister.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.reset()
		return nil
	case errors.Is(err, storage.ErrCorrupt):
		s.discard(ctx, "unreadable", err)
		return nil
	case err != nil:
		return err
	}

	var env domain.PersistedSession
	if err := json.Unmarshal(data, &env); err != nil {
		s.discard(ctx, "malformed", err)
		return nil
	}
	if env.Version != domain.SessionStateVersion {
		s.discard(ctx, "unsupported version", nil)
		return nil
	}
	if !env.State.Authenticated || !env.State.Consistent() {
		s.discard(ctx, "incomplete", nil)
		return nil
	}

	s.mu.Lock()
	s.state = env.State.Clone()
	s.state.MustRotate = s.state.MustRotate || s.state.Identity.MustChangePassword
	s.mu.Unlock()

	s.log.Debug("session restored", "user_id", env.State.Identity.ID)
	return nil
}

// Reload re-reads durable state after an external change.
func (s *SessionStore) Reload(ctx context.Context) error {
	before := s.Snapshot()
	if err := s.Restore(ctx); err != nil {
		return err
	}
	after := s.Snapshot()
	if before.Authenticated != after.Authenticated || before.BearerCredential != after.BearerCredential {
		s.log.Info("session reloaded", "authenticated", after.Authenticated)
	}
	return nil
}

// Close drops in-memory state and releases the persister. Saved state
// is kept for the next run.
func (s *SessionStore) Close() error {
	s.reset()
	if s.persister == nil {
		return nil
	}
	return s.persister.Close()
}

func (s *SessionStore) reset() {
	s.mu.Lock()
	s.state = domain.SessionState{}
	s.mu.Unlock()
}

func (s *SessionStore) discard(ctx context.Context, reason string, cause error) {
	s.reset()
	attrs := []any{"reason", reason}
	if cause != nil {
		attrs = append(attrs, "error", cause)
	}
	s.log.Warn("discarding saved session", attrs...)
	if err := s.persister.Clear(ctx); err != nil {
		s.log.Warn("failed to clear saved session", "error", err)
	}
}

func (s *SessionStore) save(state domain.SessionState) {
	if s.persister == nil {
		return
	}
	data, err := json.Marshal(domain.PersistedSession{
		Version: domain.SessionStateVersion,
		State:   state,
		SavedAt: s.now().UnixMilli(),
	})
	if err != nil {
		s.log.Warn("failed to encode session", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.persister.Save(ctx, data); err != nil {
		s.log.Warn("failed to save session, it will not survive a restart", "error", err)
	}
}

func (s *SessionStore) clear() {
	if s.persister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.persister.Clear(ctx); err != nil {
		s.log.Warn("failed to clear saved session", "error", err)
	}
}
