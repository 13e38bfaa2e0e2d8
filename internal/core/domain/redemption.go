package domain

import "fmt"

// RevealSeconds is how long a redeemed secret stays visible.
const RevealSeconds = 30

// RedemptionState is a state of the redemption flow.
type RedemptionState int

const (
	RedemptionIdle RedemptionState = iota
	RedemptionSubmitting
	RedemptionRevealed
	RedemptionClosed
)

func (s RedemptionState) String() string {
	switch s {
	case RedemptionIdle:
		return "idle"
	case RedemptionSubmitting:
		return "submitting"
	case RedemptionRevealed:
		return "revealed"
	case RedemptionClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// RedemptionResult is the secret released by a successful redemption.
// It lives in memory for the reveal window only and is never persisted.
type RedemptionResult struct {
	Identity Identity `json:"-"`
	Secret   string   `json:"-"`
}

// String masks the secret.
func (r RedemptionResult) String() string {
	return fmt.Sprintf("RedemptionResult{user=%s, secret=***}", r.Identity.Username)
}

// RevealWindow tracks the visible countdown of a revealed secret.
type RevealWindow struct {
	Active           bool
	RemainingSeconds int
}

// RedemptionView is a snapshot of the redemption flow handed to observers.
type RedemptionView struct {
	State  RedemptionState
	Window RevealWindow
	Result *RedemptionResult
	Notice *Notice
}
