// Package devserver is an in-memory CompanyLock service for local use
// and end-to-end tests.
//
// It serves the same HTTP API as the production backend: admin login
// with bearer credentials, the employee directory, single-use signed
// access tokens bound to an employee, and the audit log. State lives in
// memory and is lost when the process exits.
package devserver
