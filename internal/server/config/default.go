package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr = "127.0.0.1:8000"
	DefaultAPIBase  = "/api"

	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultSessionTTL    = 30 * time.Minute

	DefaultMaxDurationMinutes = 60

	DefaultRateLimitRPS   = 50
	DefaultRateLimitBurst = 100

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		HTTP: HTTPConfig{
			Addr:    DefaultHTTPAddr,
			APIBase: DefaultAPIBase,
		},
		Security: SecuritySection{
			AdminUsername: DefaultAdminUsername,
			AdminPassword: DefaultAdminPassword,
			SessionTTL:    DefaultSessionTTL,
		},
		Token: TokenSection{
			MaxDurationMinutes: DefaultMaxDurationMinutes,
		},
		RateLimit: RateLimitConfig{
			RPS:   DefaultRateLimitRPS,
			Burst: DefaultRateLimitBurst,
		},
		Seed: SeedSection{
			Employees: DefaultEmployees(),
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// DefaultEmployees returns the demo directory.
func DefaultEmployees() []EmployeeSeed {
	return []EmployeeSeed{
		{Username: "john.doe", FullName: "John Doe", Department: "Finance", Password: "Jd!finance2024"},
		{Username: "jane.smith", FullName: "Jane Smith", Department: "HR", Password: "Js#people77"},
		{Username: "budi.santoso", FullName: "Budi Santoso", Department: "IT", Password: "Bs$infra905"},
		{Username: "siti.rahma", FullName: "Siti Rahma", Department: "Marketing", Password: "Sr%brand331", Inactive: true},
	}
}
