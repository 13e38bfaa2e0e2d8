// Package token provides helpers for opaque credentials.
//
// It covers three concerns:
//
//   - Generate: random Base64 RawURL strings for bearer credentials
//   - Fingerprint: a short, non-reversible tag safe to write to logs
//   - Signer: the signed token format "base64url(payload).hex(hmac-sha256)"
//
// Plaintext tokens must never be logged; log Fingerprint(token) instead.
package token
