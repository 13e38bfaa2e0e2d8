package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/NDP4/CompanyLock-Manager/internal/cli/connection"
	"github.com/NDP4/CompanyLock-Manager/internal/storage"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
)

// Verify validates the configuration and reports every problem found.
func Verify(cfg *CLIConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Server) == "" {
		errs = append(errs, errors.New("server is required"))
	} else if err := connection.ValidateServer(cfg.Server); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}
	if !strings.HasPrefix(cfg.APIBase, "/") {
		errs = append(errs, errors.New("api_base must start with /"))
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}

	switch cfg.Output {
	case "table", "json", "yaml":
	default:
		errs = append(errs, fmt.Errorf("output %q: must be table, json or yaml", cfg.Output))
	}

	if cfg.CAFile != "" {
		if _, err := os.Stat(cfg.CAFile); err != nil {
			errs = append(errs, fmt.Errorf("ca_file: %w", err))
		}
	}

	errs = append(errs, verifySession(&cfg.Session)...)

	if cfg.RateLimit.RPS < 0 {
		errs = append(errs, errors.New("rate_limit.rps must not be negative"))
	}
	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("rate_limit.burst must be at least 1 when rps is set"))
	}

	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := logger.ParseFormat(cfg.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}

	return errors.Join(errs...)
}

func verifySession(s *SessionSection) []error {
	switch s.Backend {
	case storage.BackendMemory:
		return nil
	case storage.BackendFile, storage.BackendBadger:
		if s.Path == "" {
			return []error{fmt.Errorf("session.path is required for backend %q", s.Backend)}
		}
		return nil
	default:
		return []error{fmt.Errorf("session.backend %q: must be file, badger or memory", s.Backend)}
	}
}
