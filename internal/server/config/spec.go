package config

import "time"

// ServerConfig is the root configuration for companylock-devserver.
type ServerConfig struct {
	HTTP      HTTPConfig      `koanf:"http" yaml:"http"`
	Security  SecuritySection `koanf:"security" yaml:"security"`
	Token     TokenSection    `koanf:"token" yaml:"token"`
	RateLimit RateLimitConfig `koanf:"rate_limit" yaml:"rate_limit"`
	Seed      SeedSection     `koanf:"seed" yaml:"seed"`
	Log       LogSection      `koanf:"log" yaml:"log"`
}

// HTTPConfig configures the HTTP listener.
type HTTPConfig struct {
	Addr        string `koanf:"addr" yaml:"addr"`
	APIBase     string `koanf:"api_base" yaml:"api_base"`
	TLSCertFile string `koanf:"tls_cert_file" yaml:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file" yaml:"tls_key_file"`
}

// SecuritySection configures credentials and signing.
type SecuritySection struct {
	// SigningKey is the base64 HMAC key for access tokens. Empty means a
	// random key per process, so tokens do not survive a restart.
	SigningKey string `koanf:"signing_key" yaml:"signing_key"`

	// AdminUsername and AdminPassword seed the administrator account,
	// which must change its password after the first login.
	AdminUsername string `koanf:"admin_username" yaml:"admin_username"`
	AdminPassword string `koanf:"admin_password" yaml:"admin_password"`

	// SessionTTL bounds the lifetime of a bearer credential.
	SessionTTL time.Duration `koanf:"session_ttl" yaml:"session_ttl"`
}

// TokenSection configures access token issuance.
type TokenSection struct {
	MaxDurationMinutes int `koanf:"max_duration_minutes" yaml:"max_duration_minutes"`
}

// RateLimitConfig configures the per-client request limit.
// RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps" yaml:"rps"`
	Burst int     `koanf:"burst" yaml:"burst"`
}

// SeedSection lists the employees created at startup.
type SeedSection struct {
	Employees []EmployeeSeed `koanf:"employees" yaml:"employees"`
}

// EmployeeSeed is one seeded employee and the secret revealed on redemption.
type EmployeeSeed struct {
	Username   string `koanf:"username" yaml:"username"`
	FullName   string `koanf:"full_name" yaml:"full_name"`
	Department string `koanf:"department" yaml:"department"`
	Password   string `koanf:"password" yaml:"password"`
	Inactive   bool   `koanf:"inactive" yaml:"inactive"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}
