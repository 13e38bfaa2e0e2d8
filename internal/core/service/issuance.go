package service

import (
	"context"
	"fmt"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/metric"
	"github.com/NDP4/CompanyLock-Manager/pkg/token"
)

// Issuance notices.
const (
	NoticeSelectEmployee = "select an employee first"
	NoticeTokenGenerated = "token generated"
	NoticeGenerateFailed = "failed to generate token"
)

// TokenIssuer mints tokens on the remote service.
type TokenIssuer interface {
	GenerateToken(ctx context.Context, userID int64, durationMinutes int) (*domain.AccessToken, error)
}

// IssuanceConfig configures an IssuanceFlow.
type IssuanceConfig struct {
	API      TokenIssuer
	Notifier domain.Notifier
	Clock    Clock
	Metrics  *metric.Registry
	Logger   logger.Logger
}

// IssuanceFlow lets an operator mint a token for one employee.
type IssuanceFlow struct {
	api      TokenIssuer
	notifier domain.Notifier
	clock    Clock
	metrics  *metric.Registry
	log      logger.Logger
}

// NewIssuanceFlow creates an IssuanceFlow.
func NewIssuanceFlow(cfg IssuanceConfig) *IssuanceFlow {
	f := &IssuanceFlow{
		api:      cfg.API,
		notifier: cfg.Notifier,
		clock:    cfg.Clock,
		metrics:  cfg.Metrics,
		log:      cfg.Logger,
	}
	if f.notifier == nil {
		f.notifier = domain.NopNotifier
	}
	if f.clock == nil {
		f.clock = SystemClock()
	}
	if f.log == nil {
		f.log = logger.NewNop()
	}
	f.log = f.log.With("component", "issuance")
	return f
}

// Generate validates the request and asks the remote for a token bound
// to targetID. Invalid input never reaches the network. Failures are not
// retried; the remote reason is surfaced verbatim when present.
func (f *IssuanceFlow) Generate(ctx context.Context, targetID int64, durationMinutes int) (*domain.AccessToken, error) {
	tok, err := f.generate(ctx, targetID, durationMinutes)
	if f.metrics != nil {
		f.metrics.Issuance.WithLabelValues(outcomeLabel(err)).Inc()
	}
	return tok, err
}

func (f *IssuanceFlow) generate(ctx context.Context, targetID int64, durationMinutes int) (*domain.AccessToken, error) {
	// 1. Validate locally
	if targetID <= 0 {
		notifyWarning(f.notifier, NoticeSelectEmployee)
		return nil, domain.ErrValidation.WithDetails(NoticeSelectEmployee)
	}
	if err := domain.ValidateTokenDuration(durationMinutes); err != nil {
		notifyWarning(f.notifier, domain.RemoteReason(err, err.Error()))
		return nil, err
	}

	// 2. Call the remote
	issuedAt := f.clock.Now()
	tok, err := f.api.GenerateToken(ctx, targetID, durationMinutes)
	if err != nil {
		notifyError(f.notifier, domain.RemoteReason(err, NoticeGenerateFailed))
		f.log.Info("token generation failed", "target_id", targetID, "error", err)
		return nil, fmt.Errorf("generate token: %w", err)
	}
	if tok == nil || domain.NormalizeToken(tok.Token) == "" {
		notifyError(f.notifier, NoticeGenerateFailed)
		return nil, domain.ErrServer.WithDetails("response carries no token")
	}

	// 3. Fill what the remote left out
	tok.Token = domain.NormalizeToken(tok.Token)
	tok.IssuedAt = issuedAt
	tok.ExpiresAt = domain.ResolveExpiry(issuedAt, tok.ExpiresAt, tok.DurationMinutes)

	notifySuccess(f.notifier, NoticeTokenGenerated)
	f.log.Info("token generated",
		"target_id", tok.TargetID,
		"duration_minutes", tok.DurationMinutes,
		"token_fingerprint", token.Fingerprint(tok.Token))
	return tok, nil
}
