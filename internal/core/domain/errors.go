// Package domain defines the core domain models for the CompanyLock client.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business error with a structured error code.
//
// Remote failures carry the HTTP status and the reason the collaborator
// supplied (Details), so flows can surface it verbatim.
type DomainError struct {
	Code    string // Error code (e.g., "CL-TOKN-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Status  int    // HTTP status for remote failures, 0 for local ones
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithStatus returns a copy of the error carrying an HTTP status.
func (e *DomainError) WithStatus(status int) *DomainError {
	c := *e
	c.Status = status
	return &c
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// Reason returns the remote-supplied reason when present, otherwise fallback.
func (e *DomainError) Reason(fallback string) string {
	if e.Details != "" {
		return e.Details
	}
	return fallback
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// RemoteReason returns the collaborator's reason carried by err, or fallback.
func RemoteReason(err error, fallback string) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Reason(fallback)
	}
	return fallback
}

// ============================================================================
// Local errors (never reach the network)
// ============================================================================

var (
	// ErrValidation indicates invalid local input; no request was sent.
	ErrValidation = NewDomainError("CL-ARG-1001", "validation failed")

	// ErrBusy indicates a redemption attempt is already in flight or revealed.
	ErrBusy = NewDomainError("CL-FLOW-4090", "another attempt is in progress")

	// ErrClosed indicates the flow was torn down.
	ErrClosed = NewDomainError("CL-FLOW-4100", "flow closed")

	// ErrBindingMismatch indicates the redeemed identity differs from the claimed one.
	ErrBindingMismatch = NewDomainError("CL-AUTH-4031", "token does not match the selected identity")
)

// ============================================================================
// Remote errors (mapped from collaborator responses)
// ============================================================================

var (
	// ErrAuthentication indicates the bearer credential was rejected (401).
	ErrAuthentication = NewDomainError("CL-AUTH-4010", "authentication required")

	// ErrAuthorization indicates the identity does not match the token (403).
	ErrAuthorization = NewDomainError("CL-AUTH-4030", "identity does not match token")

	// ErrNotFound indicates the token is invalid, expired or already used (404).
	ErrNotFound = NewDomainError("CL-TOKN-4040", "token invalid or expired")

	// ErrRejected indicates any other client-side rejection (4xx).
	ErrRejected = NewDomainError("CL-SYS-4000", "request rejected")

	// ErrServer indicates a server-side failure (5xx).
	ErrServer = NewDomainError("CL-SYS-5000", "server error")
)
