package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
)

// Verify validates the configuration and reports every problem found.
func Verify(cfg *ServerConfig) error {
	var errs []error
	errs = append(errs, verifyHTTP(&cfg.HTTP)...)
	errs = append(errs, verifySecurity(&cfg.Security)...)
	if cfg.Token.MaxDurationMinutes < 1 {
		errs = append(errs, errors.New("token.max_duration_minutes must be at least 1"))
	}
	if cfg.RateLimit.RPS < 0 {
		errs = append(errs, errors.New("rate_limit.rps must not be negative"))
	}
	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("rate_limit.burst must be at least 1 when rate limiting is enabled"))
	}
	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := logger.ParseFormat(cfg.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}
	errs = append(errs, verifySeed(&cfg.Seed, cfg.Security.AdminUsername)...)
	return errors.Join(errs...)
}

func verifyHTTP(cfg *HTTPConfig) []error {
	var errs []error
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		errs = append(errs, fmt.Errorf("http.addr %q: %w", cfg.Addr, err))
	}
	if !strings.HasPrefix(cfg.APIBase, "/") {
		errs = append(errs, errors.New("http.api_base must start with /"))
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		errs = append(errs, errors.New("http.tls_cert_file and http.tls_key_file must be set together"))
	}
	return errs
}

func verifySecurity(cfg *SecuritySection) []error {
	var errs []error
	if cfg.SigningKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.SigningKey)
		if err != nil {
			errs = append(errs, fmt.Errorf("security.signing_key: %w", err))
		} else if len(key) < 32 {
			errs = append(errs, errors.New("security.signing_key must decode to at least 32 bytes"))
		}
	}
	if strings.TrimSpace(cfg.AdminUsername) == "" {
		errs = append(errs, errors.New("security.admin_username is required"))
	}
	if cfg.AdminPassword == "" {
		errs = append(errs, errors.New("security.admin_password is required"))
	}
	if cfg.SessionTTL <= 0 {
		errs = append(errs, errors.New("security.session_ttl must be positive"))
	}
	return errs
}

func verifySeed(cfg *SeedSection, admin string) []error {
	var errs []error
	seen := map[string]bool{admin: true}
	for i, e := range cfg.Employees {
		switch {
		case strings.TrimSpace(e.Username) == "":
			errs = append(errs, fmt.Errorf("seed.employees[%d]: username is required", i))
		case seen[e.Username]:
			errs = append(errs, fmt.Errorf("seed.employees[%d]: duplicate username %q", i, e.Username))
		case e.Password == "":
			errs = append(errs, fmt.Errorf("seed.employees[%d]: password is required", i))
		}
		seen[e.Username] = true
	}
	return errs
}
