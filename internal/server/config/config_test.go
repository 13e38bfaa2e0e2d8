package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.HTTP.Addr, DefaultHTTPAddr)
	}
	if cfg.HTTP.APIBase != DefaultAPIBase {
		t.Errorf("HTTP.APIBase = %q, want %q", cfg.HTTP.APIBase, DefaultAPIBase)
	}
	if cfg.Security.AdminPassword != DefaultAdminPassword {
		t.Errorf("AdminPassword = %q, want %q", cfg.Security.AdminPassword, DefaultAdminPassword)
	}
	if cfg.Security.SessionTTL != DefaultSessionTTL {
		t.Errorf("SessionTTL = %v, want %v", cfg.Security.SessionTTL, DefaultSessionTTL)
	}
	if cfg.Token.MaxDurationMinutes != 60 {
		t.Errorf("MaxDurationMinutes = %d, want 60", cfg.Token.MaxDurationMinutes)
	}
	if len(cfg.Seed.Employees) == 0 {
		t.Error("default seed should not be empty")
	}
	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) = %v", err)
	}
}

func TestVerify(t *testing.T) {
	validKey := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))

	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{"valid signing key", func(c *ServerConfig) { c.Security.SigningKey = validKey }, ""},
		{"bad addr", func(c *ServerConfig) { c.HTTP.Addr = "8000" }, "http.addr"},
		{"bad api base", func(c *ServerConfig) { c.HTTP.APIBase = "api" }, "http.api_base"},
		{"half tls", func(c *ServerConfig) { c.HTTP.TLSCertFile = "cert.pem" }, "tls_key_file"},
		{"short key", func(c *ServerConfig) {
			c.Security.SigningKey = base64.StdEncoding.EncodeToString([]byte("short"))
		}, "at least 32 bytes"},
		{"undecodable key", func(c *ServerConfig) { c.Security.SigningKey = "!!" }, "security.signing_key"},
		{"no admin password", func(c *ServerConfig) { c.Security.AdminPassword = "" }, "admin_password"},
		{"zero ttl", func(c *ServerConfig) { c.Security.SessionTTL = 0 }, "session_ttl"},
		{"zero max duration", func(c *ServerConfig) { c.Token.MaxDurationMinutes = 0 }, "max_duration_minutes"},
		{"burst missing", func(c *ServerConfig) { c.RateLimit.Burst = 0 }, "rate_limit.burst"},
		{"limiter off", func(c *ServerConfig) { c.RateLimit = RateLimitConfig{} }, ""},
		{"bad log level", func(c *ServerConfig) { c.Log.Level = "chatty" }, "log.level"},
		{"bad log format", func(c *ServerConfig) { c.Log.Format = "logfmt" }, "log.format"},
		{"duplicate employee", func(c *ServerConfig) {
			c.Seed.Employees = append(c.Seed.Employees, c.Seed.Employees[0])
		}, "duplicate username"},
		{"employee named admin", func(c *ServerConfig) {
			c.Seed.Employees[0].Username = DefaultAdminUsername
		}, "duplicate username"},
		{"employee without password", func(c *ServerConfig) { c.Seed.Employees[1].Password = "" }, "password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Verify() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Security.SigningKey = "super-secret-key-1234567890"

	sanitized := Sanitize(cfg)

	if cfg.Security.SigningKey != "super-secret-key-1234567890" {
		t.Error("original config was modified")
	}
	if cfg.Seed.Employees[0].Password != DefaultEmployees()[0].Password {
		t.Error("original seed was modified")
	}
	if sanitized.Security.SigningKey != "su***********************90" {
		t.Errorf("SigningKey = %q", sanitized.Security.SigningKey)
	}
	if sanitized.Security.AdminPassword == DefaultAdminPassword {
		t.Error("AdminPassword not masked")
	}
	for _, e := range sanitized.Seed.Employees {
		if strings.Count(e.Password, "*") == 0 {
			t.Errorf("employee %s password not masked: %q", e.Username, e.Password)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "****"},
		{"abcd", "****"},
		{"abcde", "ab*de"},
		{"admin123", "ad****23"},
	}
	for _, tt := range tests {
		if got := maskSecret(tt.input); got != tt.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if len(cfg.Seed.Employees) != len(DefaultEmployees()) {
		t.Errorf("employees = %d, want %d", len(cfg.Seed.Employees), len(DefaultEmployees()))
	}
}

func TestLoad_FileEnvFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devserver.yaml")
	content := `
http:
  addr: "127.0.0.1:9100"
security:
  session_ttl: 5m
token:
  max_duration_minutes: 45
seed:
  employees:
    - username: only.one
      full_name: Only One
      password: secret-1
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COMPANYLOCK_DEVSERVER_TOKEN__MAX_DURATION_MINUTES", "30")

	cfg, err := Load(path, map[string]any{"log.level": "debug"})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.HTTP.Addr != "127.0.0.1:9100" {
		t.Errorf("HTTP.Addr = %q, want file value", cfg.HTTP.Addr)
	}
	if cfg.Security.SessionTTL != 5*time.Minute {
		t.Errorf("SessionTTL = %v, want 5m", cfg.Security.SessionTTL)
	}
	if cfg.Token.MaxDurationMinutes != 30 {
		t.Errorf("MaxDurationMinutes = %d, want env value 30", cfg.Token.MaxDurationMinutes)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want flag value", cfg.Log.Level)
	}
	if len(cfg.Seed.Employees) != 1 || cfg.Seed.Employees[0].Username != "only.one" {
		t.Errorf("employees = %+v, want file list only", cfg.Seed.Employees)
	}
	if cfg.Security.AdminPassword != DefaultAdminPassword {
		t.Errorf("AdminPassword = %q, want default", cfg.Security.AdminPassword)
	}
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load("", map[string]any{"http.addr": "nope"})
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("Load() error = %v, want invalid configuration", err)
	}
}
