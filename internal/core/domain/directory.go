package domain

import "time"

// UserRecord is a directory entry.
type UserRecord struct {
	Identity  `yaml:",inline"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// AuditEntry is one line of the remote audit log.
type AuditEntry struct {
	ID           int64          `json:"id" yaml:"id"`
	Action       string         `json:"action" yaml:"action"`
	AdminID      *int64         `json:"admin_id" yaml:"admin_id"`
	TargetUserID *int64         `json:"target_user_id" yaml:"target_user_id"`
	Details      map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	ClientHost   string         `json:"client_host" yaml:"client_host"`
	CreatedAt    time.Time      `json:"created_at" yaml:"created_at"`
}

// Audit actions recorded by the remote service.
const (
	AuditLogin           = "LOGIN"
	AuditPasswordChanged = "PASSWORD_CHANGED"
	AuditTokenGenerated  = "TOKEN_GENERATED"
	AuditTokenUsed       = "TOKEN_USED"
	AuditPasswordViewed  = "PASSWORD_VIEWED"
)

// HealthStatus is the remote service health report.
type HealthStatus struct {
	Status           string    `json:"status" yaml:"status"`
	Timestamp        time.Time `json:"timestamp" yaml:"timestamp"`
	EncryptionStatus string    `json:"encryption_status" yaml:"encryption_status"`
}

// Healthy reports whether the remote considers itself healthy.
func (h *HealthStatus) Healthy() bool {
	return h != nil && h.Status == "healthy"
}
