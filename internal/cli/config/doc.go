// Package config defines the companylock-cli configuration.
//
//   - spec.go: CLIConfig (~/.companylock/cli.yaml)
//   - loader.go: loading through confloader and saving as YAML
//   - verify.go: validation
//
// Values resolve flag > COMPANYLOCK_* environment > file > default.
package config
