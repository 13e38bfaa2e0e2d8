package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
)

// Audit log limits.
const (
	DefaultAuditLimit = 100
	MaxAuditLimit     = 1000
)

// DirectoryAPI is the remote read surface.
type DirectoryAPI interface {
	ListUsers(ctx context.Context) ([]domain.UserRecord, error)
	GetUser(ctx context.Context, id int64) (*domain.UserRecord, error)
	AuditLogs(ctx context.Context, limit int) ([]domain.AuditEntry, error)
	Health(ctx context.Context) (*domain.HealthStatus, error)
}

// Directory serves the user, audit and health views.
type Directory struct {
	api DirectoryAPI
	log logger.Logger
}

// NewDirectory creates a Directory.
func NewDirectory(api DirectoryAPI, log logger.Logger) *Directory {
	if log == nil {
		log = logger.NewNop()
	}
	return &Directory{api: api, log: log.With("component", "directory")}
}

// Users lists users; unless all is set only active employees are kept.
func (d *Directory) Users(ctx context.Context, all bool) ([]domain.UserRecord, error) {
	users, err := d.api.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if all {
		return users, nil
	}
	out := users[:0:0]
	for _, u := range users {
		if u.IsEmployee() {
			out = append(out, u)
		}
	}
	return out, nil
}

// Employees returns the identities that can receive or redeem tokens.
func (d *Directory) Employees(ctx context.Context) ([]domain.Identity, error) {
	users, err := d.Users(ctx, false)
	if err != nil {
		return nil, err
	}
	ids := make([]domain.Identity, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.Identity)
	}
	return ids, nil
}

// Resolve finds an active employee by numeric ID or by username.
func (d *Directory) Resolve(ctx context.Context, ref string) (*domain.Identity, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.ErrValidation.WithDetails(NoticeSelectName)
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		u, err := d.api.GetUser(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrValidation.WithDetails(fmt.Sprintf("no employee with id %d", id))
		}
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}
		if !u.IsEmployee() {
			return nil, domain.ErrValidation.WithDetails(fmt.Sprintf("user %d is not an active employee", id))
		}
		return u.Identity.Clone(), nil
	}

	employees, err := d.Employees(ctx)
	if err != nil {
		return nil, err
	}
	for i := range employees {
		if employees[i].Username == ref {
			return employees[i].Clone(), nil
		}
	}
	return nil, domain.ErrValidation.WithDetails(fmt.Sprintf("no employee named %q", ref))
}

// AuditLogs returns the newest entries. limit is clamped to
// [1, MaxAuditLimit]; zero or less means DefaultAuditLimit.
func (d *Directory) AuditLogs(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	switch {
	case limit <= 0:
		limit = DefaultAuditLimit
	case limit > MaxAuditLimit:
		limit = MaxAuditLimit
	}
	logs, err := d.api.AuditLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("audit logs: %w", err)
	}
	return logs, nil
}

// Health reports remote health.
func (d *Directory) Health(ctx context.Context) (*domain.HealthStatus, error) {
	h, err := d.api.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	return h, nil
}
