// Package storage persists the session snapshot across process restarts.
//
// A Persister stores one opaque blob: the JSON-encoded session envelope.
// Backends:
//
//   - file: a single file sealed with pkg/crypto/adaptive, written
//     atomically with 0600 permissions
//   - badger: an embedded Badger v3 database, value sealed the same way
//   - memory: process-local, for tests and --session-backend=memory
//
// Only the session envelope is ever stored here. Revealed secrets and
// reveal windows are never handed to a Persister.
package storage
