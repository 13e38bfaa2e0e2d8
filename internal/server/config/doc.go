// Package config provides the development server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values and seed directory
//   - verify.go: Business validation (addresses, keys, seeds)
//   - sanitize.go: Log sanitization (hide passwords and keys)
//
// Configuration is loaded via internal/infra/confloader and supports
// files, COMPANYLOCK_DEVSERVER_ environment variables and flags.
package config
