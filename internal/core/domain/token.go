package domain

import (
	"fmt"
	"strings"
	"time"
)

// Token duration bounds in minutes.
const (
	MinTokenDurationMinutes     = 5
	MaxTokenDurationMinutes     = 60
	DefaultTokenDurationMinutes = 30
)

// AccessToken is a single-use, identity-bound credential minted by the
// remote service. Token is opaque to the client.
type AccessToken struct {
	Token           string    `json:"token"`
	TargetID        int64     `json:"user_id"`
	DurationMinutes int       `json:"duration_minutes"`
	IssuedAt        time.Time `json:"issued_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// Duration returns the validity as a time.Duration.
func (t *AccessToken) Duration() time.Duration {
	return time.Duration(t.DurationMinutes) * time.Minute
}

// Remaining returns the validity left at now, never negative.
func (t *AccessToken) Remaining(now time.Time) time.Duration {
	d := t.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// String masks the token so that it never leaks through %v.
func (t AccessToken) String() string {
	return fmt.Sprintf("AccessToken{target=%d, duration=%dm, expires=%s}",
		t.TargetID, t.DurationMinutes, t.ExpiresAt.Format(time.RFC3339))
}

// ValidateTokenDuration checks the duration bounds.
func ValidateTokenDuration(minutes int) error {
	if minutes < MinTokenDurationMinutes || minutes > MaxTokenDurationMinutes {
		return ErrValidation.WithDetails(fmt.Sprintf("duration must be between %d and %d minutes",
			MinTokenDurationMinutes, MaxTokenDurationMinutes))
	}
	return nil
}

// ResolveExpiry returns expiresAt when set, otherwise issuedAt + duration.
func ResolveExpiry(issuedAt, expiresAt time.Time, minutes int) time.Time {
	if !expiresAt.IsZero() {
		return expiresAt
	}
	return issuedAt.Add(time.Duration(minutes) * time.Minute)
}

// NormalizeToken trims surrounding whitespace from a pasted token.
func NormalizeToken(s string) string {
	return strings.TrimSpace(s)
}
