// Package service implements the client-side flows of the credential
// exchange.
//
// This package contains:
//
//   - SessionStore: the single source of truth for the logged-in identity
//     and its bearer credential, optionally persisted between runs
//   - IssuanceFlow: validated token generation for an employee
//   - Redeemer: the redemption state machine and its reveal countdown
//   - AuthService: login and password rotation
//   - Directory: employee lookup, audit log and health views
//
// Flows depend on narrow interfaces over the remote API and report every
// outcome through a domain.Notifier, so tests drive them without a
// network or a terminal.
package service
