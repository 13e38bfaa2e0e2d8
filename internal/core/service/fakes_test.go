package service

import (
	"context"
	"sync"
	"time"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
)

var testEpoch = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

// fakeRemote implements every remote interface with overridable hooks
// and records the calls it receives.
type fakeRemote struct {
	mu sync.Mutex

	login          func(username, password string) (*domain.Identity, string, error)
	changePassword func(current, next string) error
	generate       func(userID int64, minutes int) (*domain.AccessToken, error)
	useToken       func(ctx context.Context, token, username string) (*domain.RedemptionResult, error)
	users          []domain.UserRecord
	audit          []domain.AuditEntry
	health         *domain.HealthStatus
	err            error

	generateCalls int
	useCalls      int
	lastUsername  string
	lastLimit     int
}

func (f *fakeRemote) Login(ctx context.Context, username, password string) (*domain.Identity, string, error) {
	return f.login(username, password)
}

func (f *fakeRemote) ChangePassword(ctx context.Context, current, next string) error {
	if f.changePassword == nil {
		return nil
	}
	return f.changePassword(current, next)
}

func (f *fakeRemote) GenerateToken(ctx context.Context, userID int64, minutes int) (*domain.AccessToken, error) {
	f.mu.Lock()
	f.generateCalls++
	f.mu.Unlock()
	return f.generate(userID, minutes)
}

func (f *fakeRemote) UseToken(ctx context.Context, token, username string) (*domain.RedemptionResult, error) {
	f.mu.Lock()
	f.useCalls++
	f.lastUsername = username
	f.mu.Unlock()
	return f.useToken(ctx, token, username)
}

func (f *fakeRemote) ListUsers(ctx context.Context) ([]domain.UserRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.UserRecord(nil), f.users...), nil
}

func (f *fakeRemote) GetUser(ctx context.Context, id int64) (*domain.UserRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.ID == id {
			c := u
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound.WithStatus(404)
}

func (f *fakeRemote) AuditLogs(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	f.lastLimit = limit
	return f.audit, f.err
}

func (f *fakeRemote) Health(ctx context.Context) (*domain.HealthStatus, error) {
	return f.health, f.err
}

func (f *fakeRemote) calls() (generate, use int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generateCalls, f.useCalls
}

// recorder collects notices.
type recorder struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (r *recorder) Notify(n domain.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Message
	}
	return out
}

func (r *recorder) last() domain.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return domain.Notice{}
	}
	return r.notices[len(r.notices)-1]
}

func alice() domain.Identity {
	return domain.Identity{ID: 7, Username: "alice", FullName: "Alice", Role: domain.RoleUser, IsActive: true}
}

func bob() domain.Identity {
	return domain.Identity{ID: 8, Username: "bob", FullName: "Bob", Role: domain.RoleUser, IsActive: true}
}
