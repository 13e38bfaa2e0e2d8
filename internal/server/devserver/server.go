package devserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
	"github.com/NDP4/CompanyLock-Manager/internal/server/config"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/metric"
	"github.com/NDP4/CompanyLock-Manager/pkg/cmap"
	"github.com/NDP4/CompanyLock-Manager/pkg/token"
)

// sweepInterval is how often used and expired tokens and sessions are dropped.
const sweepInterval = time.Minute

// Options configures a Server.
type Options struct {
	Config  *config.ServerConfig
	Logger  logger.Logger
	Metrics *metric.Registry

	// Now replaces time.Now for token and session expiry.
	Now func() time.Time
}

type bearer struct {
	userID    int64
	expiresAt time.Time
}

// Server is the in-memory CompanyLock service.
type Server struct {
	cfg     *config.ServerConfig
	log     logger.Logger
	metrics *metric.Registry
	now     func() time.Time

	users    *directory
	tokens   *tokenBook
	sessions *cmap.Map[string, bearer]
	audit    *auditLog
	handler  http.Handler

	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New seeds the directory and builds the HTTP handler.
func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		cfg:      cfg,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
		users:    newDirectory(),
		sessions: cmap.New[string, bearer](),
		audit:    &auditLog{},
		stop:     make(chan struct{}),
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metric.NewRegistry()
	}
	if s.now == nil {
		s.now = time.Now
	}

	key, err := signingKey(cfg.Security.SigningKey)
	if err != nil {
		return nil, err
	}
	if s.tokens, err = newTokenBook(key); err != nil {
		return nil, err
	}
	if err := s.seed(); err != nil {
		return nil, err
	}

	s.handler = s.routes()

	s.wg.Add(1)
	go s.sweepLoop()
	return s, nil
}

func signingKey(encoded string) ([]byte, error) {
	if encoded == "" {
		return token.GenerateBytes(32)
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode signing key: %w", err)
	}
	return key, nil
}

func (s *Server) seed() error {
	now := s.now()
	sec := s.cfg.Security
	if _, err := s.users.add(domain.Identity{
		Username:           sec.AdminUsername,
		FullName:           "System Administrator",
		Department:         "IT",
		Role:               domain.RoleAdmin,
		IsActive:           true,
		MustChangePassword: true,
	}, sec.AdminPassword, now); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	for _, e := range s.cfg.Seed.Employees {
		if _, err := s.users.add(domain.Identity{
			Username:   e.Username,
			FullName:   e.FullName,
			Department: e.Department,
			Role:       domain.RoleUser,
			IsActive:   !e.Inactive,
		}, e.Password, now); err != nil {
			return fmt.Errorf("seed %s: %w", e.Username, err)
		}
	}
	s.log.Info("directory seeded", "employees", len(s.cfg.Seed.Employees))
	return nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close stops the background sweeper.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
	})
	s.wg.Wait()
}

func (s *Server) sweepLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Server) sweep() {
	now := s.now()
	tokens := s.tokens.sweep(now)
	sessions := s.sessions.DeleteFunc(func(_ string, b bearer) bool {
		return !now.Before(b.expiresAt)
	})
	if tokens > 0 || sessions > 0 {
		s.log.Debug("swept expired state", "token_count", tokens, "session_count", sessions)
	}
}

// openSession issues a bearer credential for userID.
func (s *Server) openSession(userID int64) (string, error) {
	credential, err := token.Generate()
	if err != nil {
		return "", err
	}
	s.sessions.Set(credential, bearer{
		userID:    userID,
		expiresAt: s.now().Add(s.cfg.Security.SessionTTL),
	})
	return credential, nil
}

// validate resolves a bearer credential to an active admin.
func (s *Server) validate(_ context.Context, credential string) (any, bool) {
	b, ok := s.sessions.Get(credential)
	if !ok {
		return nil, false
	}
	if !s.now().Before(b.expiresAt) {
		s.sessions.Delete(credential)
		return nil, false
	}
	u, ok := s.users.get(b.userID)
	if !ok || !u.IsAdmin() || !u.IsActive {
		return nil, false
	}
	return u.Identity, true
}
