// Package domain defines the core domain models for the CompanyLock client.
//
// Domain models are plain value objects without IO dependencies or
// framework coupling. This package contains:
//
//   - Identity: an employee or administrator known to the remote service
//   - SessionState: the persisted part of the operator session
//   - AccessToken: a single-use, time-bounded, identity-bound credential
//   - RedemptionResult and RevealWindow: the transient reveal of a secret
//   - Notice: a user-visible message emitted by flows and the pipeline
//   - Errors: the error taxonomy shared by every flow
package domain
