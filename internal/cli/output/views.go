package output

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
)

// UserList renders directory records.
type UserList []domain.UserRecord

// Table implements Tabular.
func (l UserList) Table(wide bool) *Table {
	t := &Table{Headers: []string{"ID", "USERNAME", "FULL_NAME", "DEPARTMENT", "ROLE", "ACTIVE"}}
	if wide {
		t.Headers = append(t.Headers, "MUST_CHANGE", "CREATED")
	}
	for _, u := range l {
		row := []string{
			strconv.FormatInt(u.ID, 10),
			u.Username,
			dash(u.FullName),
			dash(u.Department),
			dash(u.Role),
			strconv.FormatBool(u.IsActive),
		}
		if wide {
			row = append(row, strconv.FormatBool(u.MustChangePassword), formatTime(u.CreatedAt))
		}
		t.AddRow(row...)
	}
	return t
}

// AuditList renders audit log entries, newest first as received.
type AuditList []domain.AuditEntry

// Table implements Tabular.
func (l AuditList) Table(wide bool) *Table {
	t := &Table{Headers: []string{"ID", "TIME", "ACTION", "ADMIN", "TARGET", "HOST"}}
	if wide {
		t.Headers = append(t.Headers, "DETAILS")
	}
	for _, e := range l {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			formatTime(e.CreatedAt),
			e.Action,
			optionalID(e.AdminID),
			optionalID(e.TargetUserID),
			dash(e.ClientHost),
		}
		if wide {
			row = append(row, details(e.Details))
		}
		t.AddRow(row...)
	}
	return t
}

// TokenView is the operator's view of a freshly issued token.
type TokenView struct {
	Token           string    `json:"token" yaml:"token"`
	UserID          int64     `json:"user_id" yaml:"user_id"`
	Username        string    `json:"username,omitempty" yaml:"username,omitempty"`
	DurationMinutes int       `json:"duration_minutes" yaml:"duration_minutes"`
	ExpiresAt       time.Time `json:"expires_at" yaml:"expires_at"`
}

// NewTokenView combines an issued token with its target.
func NewTokenView(tok *domain.AccessToken, target *domain.Identity) TokenView {
	v := TokenView{
		Token:           tok.Token,
		UserID:          tok.TargetID,
		DurationMinutes: tok.DurationMinutes,
		ExpiresAt:       tok.ExpiresAt,
	}
	if target != nil {
		v.Username = target.Username
	}
	return v
}

// Table implements Tabular.
func (v TokenView) Table(bool) *Table {
	t := &Table{Headers: []string{"FIELD", "VALUE"}}
	t.AddRow("token", v.Token)
	t.AddRow("user_id", strconv.FormatInt(v.UserID, 10))
	t.AddRow("username", dash(v.Username))
	t.AddRow("duration", fmt.Sprintf("%d minutes", v.DurationMinutes))
	t.AddRow("expires_at", formatTime(v.ExpiresAt))
	return t
}

// SessionView describes the local session without its credential.
type SessionView struct {
	Authenticated bool             `json:"authenticated" yaml:"authenticated"`
	MustRotate    bool             `json:"must_rotate" yaml:"must_rotate"`
	Identity      *domain.Identity `json:"identity,omitempty" yaml:"identity,omitempty"`
	Server        string           `json:"server" yaml:"server"`
}

// NewSessionView strips the bearer credential from state.
func NewSessionView(state domain.SessionState, server string) SessionView {
	return SessionView{
		Authenticated: state.Authenticated,
		MustRotate:    state.MustRotate,
		Identity:      state.Identity,
		Server:        server,
	}
}

// Table implements Tabular.
func (v SessionView) Table(bool) *Table {
	t := &Table{Headers: []string{"FIELD", "VALUE"}}
	t.AddRow("server", v.Server)
	t.AddRow("authenticated", strconv.FormatBool(v.Authenticated))
	if v.Identity != nil {
		t.AddRow("id", strconv.FormatInt(v.Identity.ID, 10))
		t.AddRow("username", v.Identity.Username)
		t.AddRow("full_name", dash(v.Identity.FullName))
		t.AddRow("role", dash(v.Identity.Role))
	}
	t.AddRow("must_change_password", strconv.FormatBool(v.MustRotate))
	return t
}

// HealthView wraps the remote health report.
type HealthView struct {
	domain.HealthStatus `yaml:",inline"`
	Target              string `json:"target" yaml:"target"`
}

// Table implements Tabular.
func (v HealthView) Table(bool) *Table {
	t := &Table{Headers: []string{"FIELD", "VALUE"}}
	t.AddRow("target", v.Target)
	t.AddRow("status", dash(v.Status))
	t.AddRow("encryption", dash(v.EncryptionStatus))
	t.AddRow("timestamp", formatTime(v.Timestamp))
	return t
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func optionalID(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

func details(m map[string]any) string {
	if len(m) == 0 {
		return "-"
	}
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprintf("%v", m)
	}
	return string(b)
}
