package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/metric"
	"github.com/NDP4/CompanyLock-Manager/pkg/token"
)

// Redemption notices.
const (
	NoticeSelectName       = "select your name first"
	NoticeEnterToken       = "enter the token from your administrator"
	NoticeIdentityMismatch = "identity does not match token"
	NoticeTokenInvalid     = "token invalid or expired"
	NoticeVerifyFailed     = "failed to verify token"
	NoticeBindingMismatch  = "token does not match the selected name"
	NoticePasswordRevealed = "password revealed"
	NoticeDisplayOver      = "display time is over"
)

// tickInterval is the reveal countdown resolution.
const tickInterval = time.Second

// subscriberBuffer is the per-observer view backlog; older views are
// dropped when an observer falls behind.
const subscriberBuffer = 8

// TokenRedeemer redeems tokens on the remote service.
type TokenRedeemer interface {
	UseToken(ctx context.Context, token, username string) (*domain.RedemptionResult, error)
}

// RedeemerConfig configures a Redeemer.
type RedeemerConfig struct {
	API      TokenRedeemer
	Notifier domain.Notifier
	Clock    Clock
	Metrics  *metric.Registry
	Logger   logger.Logger

	// RevealSeconds defaults to domain.RevealSeconds.
	RevealSeconds int
}

// Redeemer is the redemption state machine.
//
//	Idle -> Submitting -> Revealed -> Closed
//	         |                |
//	         +-> Idle (fail)  +-> Closed (dismiss or countdown end)
//
// One attempt may be in flight at a time. Each attempt takes a new
// generation; Reset bumps it so that late responses and ticks from an
// abandoned attempt are ignored. The countdown timer belongs to the
// reveal window and is stopped on timeout, Dismiss, Reset and Close.
type Redeemer struct {
	api      TokenRedeemer
	notifier domain.Notifier
	clock    Clock
	metrics  *metric.Registry
	log      logger.Logger
	reveal   int

	mu      sync.Mutex
	state   domain.RedemptionState
	gen     uint64
	claimed *domain.Identity
	token   string
	result  *domain.RedemptionResult
	window  domain.RevealWindow
	timer   Timer
	closed  bool

	subs    map[int]chan domain.RedemptionView
	nextSub int
}

// NewRedeemer creates a Redeemer in the Idle state.
func NewRedeemer(cfg RedeemerConfig) *Redeemer {
	r := &Redeemer{
		api:      cfg.API,
		notifier: cfg.Notifier,
		clock:    cfg.Clock,
		metrics:  cfg.Metrics,
		log:      cfg.Logger,
		reveal:   cfg.RevealSeconds,
		subs:     make(map[int]chan domain.RedemptionView),
	}
	if r.notifier == nil {
		r.notifier = domain.NopNotifier
	}
	if r.clock == nil {
		r.clock = SystemClock()
	}
	if r.log == nil {
		r.log = logger.NewNop()
	}
	if r.reveal <= 0 {
		r.reveal = domain.RevealSeconds
	}
	r.log = r.log.With("component", "redemption")
	return r
}

// ============================================================================
// Redeem
// ============================================================================

// Redeem submits token on behalf of the claimed identity.
//
// The claim must carry an ID or a username and the token must be
// non-blank; otherwise nothing is sent. A second call while an attempt
// is in flight or a secret is revealed returns ErrBusy. On success the
// returned identity must match the claim, by ID when the claim has one
// and by exact username otherwise; a mismatch discards the secret.
func (r *Redeemer) Redeem(ctx context.Context, claimed domain.Identity, tok string) error {
	err := r.redeem(ctx, claimed, tok)
	if r.metrics != nil && !errors.Is(err, domain.ErrClosed) {
		outcome := outcomeLabel(err)
		if err == nil {
			outcome = "revealed"
		}
		r.metrics.Redemptions.WithLabelValues(outcome).Inc()
	}
	return err
}

func (r *Redeemer) redeem(ctx context.Context, claimed domain.Identity, tok string) error {
	var notices []domain.Notice
	defer func() { r.emit(notices) }()

	// 1. Validate and enter Submitting
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return domain.ErrClosed
	}
	if !claimed.Claimable() {
		notices = append(notices, warning(NoticeSelectName))
		r.mu.Unlock()
		return domain.ErrValidation.WithDetails(NoticeSelectName)
	}
	tok = domain.NormalizeToken(tok)
	if tok == "" {
		notices = append(notices, warning(NoticeEnterToken))
		r.mu.Unlock()
		return domain.ErrValidation.WithDetails(NoticeEnterToken)
	}
	if r.state != domain.RedemptionIdle && r.state != domain.RedemptionClosed {
		r.mu.Unlock()
		return domain.ErrBusy.WithDetails("current state is " + r.state.String())
	}

	r.gen++
	gen := r.gen
	r.state = domain.RedemptionSubmitting
	r.claimed = claimed.Clone()
	r.token = tok
	r.result = nil
	r.window = domain.RevealWindow{}
	r.publishLocked(nil)
	r.mu.Unlock()

	r.log.Debug("redeeming token",
		"claimed_id", claimed.ID,
		"token_fingerprint", token.Fingerprint(tok))

	// 2. Call the remote without holding the lock
	res, err := r.api.UseToken(ctx, tok, claimed.Username)

	// 3. Apply the response unless the attempt was abandoned
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.gen || r.state != domain.RedemptionSubmitting {
		r.log.Debug("dropping response of an abandoned attempt", "generation", gen)
		return domain.ErrClosed.WithDetails("attempt was reset")
	}

	if err != nil {
		r.failLocked()
		if n, ok := failureNotice(err); ok {
			notices = append(notices, n)
			r.publishLocked(&n)
		} else {
			r.publishLocked(nil)
		}
		r.log.Info("redemption failed", "claimed_id", claimed.ID, "error", err)
		return err
	}

	if res == nil || !claimed.SameAs(&res.Identity) {
		var got int64
		if res != nil {
			got = res.Identity.ID
			res.Secret = ""
		}
		r.failLocked()
		n := domain.Notice{Level: domain.NoticeError, Message: NoticeBindingMismatch}
		notices = append(notices, n)
		r.publishLocked(&n)
		r.log.Warn("redeemed identity differs from claim",
			"claimed_id", claimed.ID,
			"returned_id", got)
		return domain.ErrBindingMismatch
	}

	// 4. Reveal and start the countdown
	r.state = domain.RedemptionRevealed
	r.result = &domain.RedemptionResult{Identity: res.Identity, Secret: res.Secret}
	r.token = ""
	r.window = domain.RevealWindow{Active: true, RemainingSeconds: r.reveal}
	r.timer = r.clock.AfterFunc(tickInterval, func() { r.tick(gen) })

	n := domain.Notice{Level: domain.NoticeSuccess, Message: NoticePasswordRevealed}
	notices = append(notices, n)
	r.publishLocked(&n)
	r.log.Info("secret revealed", "user_id", res.Identity.ID, "reveal_seconds", r.reveal)
	return nil
}

// failureNotice maps a remote failure to its notice. The request pipeline
// announces every 401 itself, so the flow adds nothing for it.
func failureNotice(err error) (domain.Notice, bool) {
	switch {
	case errors.Is(err, domain.ErrAuthentication):
		return domain.Notice{}, false
	case errors.Is(err, domain.ErrAuthorization):
		return domain.Notice{Level: domain.NoticeError, Message: NoticeIdentityMismatch}, true
	case errors.Is(err, domain.ErrNotFound):
		return domain.Notice{Level: domain.NoticeError, Message: NoticeTokenInvalid}, true
	default:
		return domain.Notice{Level: domain.NoticeError, Message: domain.RemoteReason(err, NoticeVerifyFailed)}, true
	}
}

// failLocked returns to Idle, keeping the claim so the user can retry.
func (r *Redeemer) failLocked() {
	r.state = domain.RedemptionIdle
	r.token = ""
	r.result = nil
	r.window = domain.RevealWindow{}
}

// ============================================================================
// Countdown
// ============================================================================

func (r *Redeemer) tick(gen uint64) {
	var notices []domain.Notice
	defer func() { r.emit(notices) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.gen || r.state != domain.RedemptionRevealed {
		return
	}

	r.window.RemainingSeconds--
	if r.window.RemainingSeconds > 0 {
		r.timer = r.clock.AfterFunc(tickInterval, func() { r.tick(gen) })
		r.publishLocked(nil)
		return
	}

	r.closeWindowLocked()
	n := domain.Notice{Level: domain.NoticeInfo, Message: NoticeDisplayOver}
	notices = append(notices, n)
	r.publishLocked(&n)
	r.log.Debug("reveal window expired")
}

// closeWindowLocked stops the countdown and forgets the secret.
func (r *Redeemer) closeWindowLocked() {
	r.stopTimerLocked()
	r.result = nil
	r.window = domain.RevealWindow{}
	r.state = domain.RedemptionClosed
}

func (r *Redeemer) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// ============================================================================
// Dismiss, Reset, Close
// ============================================================================

// Dismiss hides a revealed secret early. No-op in any other state.
func (r *Redeemer) Dismiss() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != domain.RedemptionRevealed {
		return
	}
	r.closeWindowLocked()
	r.publishLocked(nil)
	r.log.Debug("reveal dismissed")
}

// Reset returns to Idle from any state, clearing the claim, the token,
// the result and the window. An in-flight response is ignored.
func (r *Redeemer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
	r.publishLocked(nil)
}

func (r *Redeemer) resetLocked() {
	r.stopTimerLocked()
	r.gen++
	r.state = domain.RedemptionIdle
	r.claimed = nil
	r.token = ""
	r.result = nil
	r.window = domain.RevealWindow{}
}

// Close resets the machine and rejects further attempts. Observer
// channels are closed.
func (r *Redeemer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.resetLocked()
	r.publishLocked(nil)
	r.closed = true
	for id, ch := range r.subs {
		close(ch)
		delete(r.subs, id)
	}
}

// ============================================================================
// Accessors and observers
// ============================================================================

// State returns the current state.
func (r *Redeemer) State() domain.RedemptionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// RevealSeconds returns the configured length of a reveal window.
func (r *Redeemer) RevealSeconds() int {
	return r.reveal
}

// Window returns the reveal window.
func (r *Redeemer) Window() domain.RevealWindow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.window
}

// Result returns a copy of the revealed result, or nil unless Revealed.
func (r *Redeemer) Result() *domain.RedemptionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resultLocked()
}

// Claimed returns the identity of the current attempt, or nil.
func (r *Redeemer) Claimed() *domain.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claimed.Clone()
}

// View returns the current snapshot.
func (r *Redeemer) View() domain.RedemptionView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked(nil)
}

// Stats reports the reveal window for the metrics collector.
func (r *Redeemer) Stats() (active bool, remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.window.Active, r.window.RemainingSeconds
}

// Subscribe delivers a view after every transition and tick. The
// returned function unsubscribes; the channel is closed then or on Close.
func (r *Redeemer) Subscribe() (<-chan domain.RedemptionView, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan domain.RedemptionView, subscriberBuffer)
	if r.closed {
		close(ch)
		return ch, func() {}
	}
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if c, ok := r.subs[id]; ok {
				close(c)
				delete(r.subs, id)
			}
		})
	}
}

func (r *Redeemer) resultLocked() *domain.RedemptionResult {
	if r.state != domain.RedemptionRevealed || r.result == nil {
		return nil
	}
	c := *r.result
	return &c
}

func (r *Redeemer) viewLocked(n *domain.Notice) domain.RedemptionView {
	return domain.RedemptionView{
		State:  r.state,
		Window: r.window,
		Result: r.resultLocked(),
		Notice: n,
	}
}

// publishLocked hands the current view to every observer without blocking.
func (r *Redeemer) publishLocked(n *domain.Notice) {
	if len(r.subs) == 0 {
		return
	}
	v := r.viewLocked(n)
	for _, ch := range r.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

func (r *Redeemer) emit(notices []domain.Notice) {
	for _, n := range notices {
		r.notifier.Notify(n)
	}
}

func warning(msg string) domain.Notice {
	return domain.Notice{Level: domain.NoticeWarning, Message: msg}
}
