package config

import "strings"

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if sanitized.Security.SigningKey != "" {
		sanitized.Security.SigningKey = maskSecret(sanitized.Security.SigningKey)
	}
	if sanitized.Security.AdminPassword != "" {
		sanitized.Security.AdminPassword = maskSecret(sanitized.Security.AdminPassword)
	}

	employees := make([]EmployeeSeed, len(cfg.Seed.Employees))
	for i, e := range cfg.Seed.Employees {
		e.Password = maskSecret(e.Password)
		employees[i] = e
	}
	sanitized.Seed.Employees = employees

	return &sanitized
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
