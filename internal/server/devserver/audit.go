package devserver

import (
	"sync"
	"time"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
)

// auditLog is an append-only, in-memory record of security events.
type auditLog struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
	nextID  int64
}

func (l *auditLog) record(at time.Time, action string, adminID, targetID int64, host string, details map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.entries = append(l.entries, domain.AuditEntry{
		ID:           l.nextID,
		Action:       action,
		AdminID:      optional(adminID),
		TargetUserID: optional(targetID),
		Details:      details,
		ClientHost:   host,
		CreatedAt:    at,
	})
}

// recent returns up to limit entries, newest first.
func (l *auditLog) recent(limit int) []domain.AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := len(l.entries)
	if limit > n {
		limit = n
	}
	out := make([]domain.AuditEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

func optional(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
