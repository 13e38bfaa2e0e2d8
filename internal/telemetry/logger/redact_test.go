package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func newJSONLogger(t *testing.T, buf *bytes.Buffer) Logger {
	t.Helper()
	l, err := New(Config{Level: "debug", Format: "json", Output: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	return entry
}

func TestRedactSensitive_BearerValue(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(t, &buf)

	l.Info("outbound", "hdr", "Bearer abcdefghijklmnopqrstuvwxyz")

	entry := decodeEntry(t, &buf)
	if got := entry["hdr"]; got != "Bearer abc...xyz" {
		t.Errorf("bearer mask = %v", got)
	}
}

func TestRedactSensitive_SensitiveKeyName(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"password", "hunter2"},
		{"new_password", "rahasia123"},
		{"token", "eyJ1c2VyX2lkIjoyfQ.abc"},
		{"bearer_credential", "opaque"},
		{"Authorization", "Basic Zm9vOmJhcg=="},
		{"client_secret", "shh"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			var buf bytes.Buffer
			l := newJSONLogger(t, &buf)
			l.Info("event", tt.key, tt.value)

			entry := decodeEntry(t, &buf)
			if entry[tt.key] != redactedValue {
				t.Errorf("%s = %v, want redacted", tt.key, entry[tt.key])
			}
		})
	}
}

func TestRedactSensitive_SafeKeys(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(t, &buf)

	l.Info("token generated",
		"token_fingerprint", "a1b2c3d4e5f6",
		"user_id", "7",
		"component", "issuance",
	)

	entry := decodeEntry(t, &buf)
	if entry["token_fingerprint"] != "a1b2c3d4e5f6" {
		t.Errorf("fingerprint redacted: %v", entry["token_fingerprint"])
	}
	if entry["component"] != "issuance" {
		t.Errorf("component = %v", entry["component"])
	}
}

func TestRedactSensitive_EmptyValueKept(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(t, &buf)
	l.Info("logout", "bearer_credential", "")

	entry := decodeEntry(t, &buf)
	if entry["bearer_credential"] != "" {
		t.Errorf("empty value rewritten: %v", entry["bearer_credential"])
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(t, &buf)
	l.Info("login", slog.Group("req", "username", "budi", "password", "hunter2"))

	entry := decodeEntry(t, &buf)
	req, ok := entry["req"].(map[string]any)
	if !ok {
		t.Fatalf("req group missing: %v", entry)
	}
	if req["username"] != "budi" {
		t.Errorf("username = %v", req["username"])
	}
	if req["password"] != redactedValue {
		t.Errorf("password = %v", req["password"])
	}
}

func TestRedactString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Bearer abcdefghijklmnopqrstuvwxyz", "Bearer abc...xyz"},
		{"Bearer abc", "Bearer ***"},
		{"plain-value", "plain-value"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := RedactString(tt.input); got != tt.expected {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key      string
		expected bool
	}{
		{"password", true},
		{"PASSWORD", true},
		{"current_password", true},
		{"access_token", true},
		{"authorization", true},
		{"token_fingerprint", false},
		{"token_id", false},
		{"username", false},
		{"duration_minutes", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsSensitiveKey(tt.key); got != tt.expected {
				t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestIsSensitiveValue(t *testing.T) {
	if !IsSensitiveValue("Bearer x") {
		t.Error("bearer value not detected")
	}
	if !IsSensitiveValue(signedToken) {
		t.Error("access token not detected")
	}
	if IsSensitiveValue("hello") {
		t.Error("plain value flagged")
	}
}

const signedToken = "eyJ1c2VyX2lkIjoyfQ.0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestIsAccessToken(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{signedToken, true},
		{"eyJ1c2VyX2lkIjoyfQ", false},
		{".0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", false},
		{"eyJ1c2VyX2lkIjoyfQ.0123456789ABCDEF0123456789abcdef0123456789abcdef0123456789abcdef", false},
		{"eyJ1c2VyX2lkIjoyfQ.abc", false},
		{"john.doe", false},
	}

	for _, tt := range tests {
		if got := IsAccessToken(tt.value); got != tt.want {
			t.Errorf("IsAccessToken(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestRedactSensitive_AccessTokenUnderAnyKey(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(t, &buf)

	l.Info("redeem", "arg", signedToken, "user", "john.doe")

	entry := decodeEntry(t, &buf)
	if entry["arg"] != redactedValue {
		t.Errorf("arg = %v, want redacted", entry["arg"])
	}
	if entry["user"] != "john.doe" {
		t.Errorf("user = %v, want kept", entry["user"])
	}
}

func TestMaskValue(t *testing.T) {
	tests := []struct {
		value    string
		prefix   string
		expected string
	}{
		{"Bearer ABCDEFGHIJ", "Bearer ", "Bearer ABC...HIJ"},
		{"Bearer ABCDEF", "Bearer ", "Bearer ***"},
		{"Bearer ", "Bearer ", "Bearer ***"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := maskValue(tt.value, tt.prefix); got != tt.expected {
				t.Errorf("maskValue() = %q, want %q", got, tt.expected)
			}
		})
	}
}
