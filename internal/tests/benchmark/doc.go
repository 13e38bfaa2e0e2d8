// Package benchmark measures the hot paths of the credential exchange:
// token signing and verification, admin password hashing, session
// sealing and the per-request session header lookup.
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
package benchmark
