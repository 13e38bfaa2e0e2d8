package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
)

// Wire shapes of the remote endpoints. Callers only see domain types.
type loginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	User        domain.Identity `json:"user"`
}

type generateTokenResponse struct {
	Token           string    `json:"token"`
	ExpiresAt       Timestamp `json:"expires_at"`
	DurationMinutes int       `json:"duration_minutes"`
	UserID          int64     `json:"user_id"`
}

type useTokenResponse struct {
	User     domain.Identity `json:"user"`
	Password string          `json:"password"`
}

type userRecord struct {
	domain.Identity
	CreatedAt Timestamp `json:"created_at"`
}

func (u userRecord) toDomain() domain.UserRecord {
	return domain.UserRecord{Identity: u.Identity, CreatedAt: u.CreatedAt.Time}
}

type auditLog struct {
	ID           int64          `json:"id"`
	Action       string         `json:"action"`
	AdminID      *int64         `json:"admin_id"`
	TargetUserID *int64         `json:"target_user_id"`
	Details      map[string]any `json:"details"`
	ClientHost   string         `json:"client_host"`
	CreatedAt    Timestamp      `json:"created_at"`
}

type health struct {
	Status           string    `json:"status"`
	Timestamp        Timestamp `json:"timestamp"`
	EncryptionStatus string    `json:"encryption_status"`
}

// API exposes the remote endpoints as typed methods.
type API struct {
	http *HTTPClient
}

// NewAPI creates an API over client.
func NewAPI(client *HTTPClient) *API {
	return &API{http: client}
}

// BaseURL returns the API base URL.
func (a *API) BaseURL() string {
	return a.http.BaseURL()
}

// Login exchanges credentials for the user and a bearer credential.
func (a *API) Login(ctx context.Context, username, password string) (*domain.Identity, string, error) {
	resp, err := a.http.Post(ctx, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, "", err
	}
	var out loginResponse
	if err := ParseResponse(resp, &out); err != nil {
		return nil, "", err
	}
	if out.AccessToken == "" {
		return nil, "", fmt.Errorf("login: response carries no access token")
	}
	return &out.User, out.AccessToken, nil
}

// ChangePassword rotates the logged-in user's password.
func (a *API) ChangePassword(ctx context.Context, current, next string) error {
	resp, err := a.http.Post(ctx, "/auth/change-password", map[string]string{
		"current_password": current,
		"new_password":     next,
	})
	if err != nil {
		return err
	}
	return ParseResponse(resp, nil)
}

// GenerateToken mints a token bound to userID. IssuedAt is left for the
// caller; ExpiresAt is zero when the remote omits it.
func (a *API) GenerateToken(ctx context.Context, userID int64, durationMinutes int) (*domain.AccessToken, error) {
	resp, err := a.http.Post(ctx, "/tokens/generate", map[string]any{
		"user_id":          userID,
		"duration_minutes": durationMinutes,
	})
	if err != nil {
		return nil, err
	}
	var out generateTokenResponse
	if err := ParseResponse(resp, &out); err != nil {
		return nil, err
	}
	tok := &domain.AccessToken{
		Token:           out.Token,
		TargetID:        out.UserID,
		DurationMinutes: out.DurationMinutes,
		ExpiresAt:       out.ExpiresAt.Time,
	}
	if tok.TargetID == 0 {
		tok.TargetID = userID
	}
	if tok.DurationMinutes == 0 {
		tok.DurationMinutes = durationMinutes
	}
	return tok, nil
}

// UseToken redeems a token. username, when set, lets the remote enforce
// the identity binding as well.
func (a *API) UseToken(ctx context.Context, token, username string) (*domain.RedemptionResult, error) {
	body := map[string]string{"token": token}
	if username != "" {
		body["username"] = username
	}
	resp, err := a.http.Post(ctx, "/tokens/use", body)
	if err != nil {
		return nil, err
	}
	var out useTokenResponse
	if err := ParseResponse(resp, &out); err != nil {
		return nil, err
	}
	return &domain.RedemptionResult{Identity: out.User, Secret: out.Password}, nil
}

// ListUsers returns every user.
func (a *API) ListUsers(ctx context.Context) ([]domain.UserRecord, error) {
	resp, err := a.http.Get(ctx, "/users")
	if err != nil {
		return nil, err
	}
	var out struct {
		Users []userRecord `json:"users"`
	}
	if err := ParseResponse(resp, &out); err != nil {
		return nil, err
	}
	users := make([]domain.UserRecord, 0, len(out.Users))
	for _, u := range out.Users {
		users = append(users, u.toDomain())
	}
	return users, nil
}

// GetUser returns one user.
func (a *API) GetUser(ctx context.Context, id int64) (*domain.UserRecord, error) {
	resp, err := a.http.Get(ctx, fmt.Sprintf("/users/%d", id))
	if err != nil {
		return nil, err
	}
	var out userRecord
	if err := ParseResponse(resp, &out); err != nil {
		return nil, err
	}
	u := out.toDomain()
	return &u, nil
}

// AuditLogs returns the newest limit entries.
func (a *API) AuditLogs(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	resp, err := a.http.Get(ctx, fmt.Sprintf("/audit-logs?limit=%d", limit))
	if err != nil {
		return nil, err
	}
	var out struct {
		Logs []auditLog `json:"logs"`
	}
	if err := ParseResponse(resp, &out); err != nil {
		return nil, err
	}
	entries := make([]domain.AuditEntry, 0, len(out.Logs))
	for _, l := range out.Logs {
		entries = append(entries, domain.AuditEntry{
			ID:           l.ID,
			Action:       l.Action,
			AdminID:      l.AdminID,
			TargetUserID: l.TargetUserID,
			Details:      l.Details,
			ClientHost:   l.ClientHost,
			CreatedAt:    l.CreatedAt.Time,
		})
	}
	return entries, nil
}

// Health reports remote service health.
func (a *API) Health(ctx context.Context) (*domain.HealthStatus, error) {
	resp, err := a.http.Get(ctx, "/health")
	if err != nil {
		return nil, err
	}
	var out health
	if err := ParseResponse(resp, &out); err != nil {
		return nil, err
	}
	return &domain.HealthStatus{
		Status:           out.Status,
		Timestamp:        out.Timestamp.Time,
		EncryptionStatus: out.EncryptionStatus,
	}, nil
}

// Timestamp accepts RFC 3339 and the zone-less ISO form the remote emits
// (interpreted as UTC). null and "" decode to the zero time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if v, err := time.ParseInLocation(layout, *s, time.UTC); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", *s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// String renders the time as RFC 3339, or "-" when unset.
func (t Timestamp) String() string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
