// Package adaptive provides authenticated encryption with automatic
// algorithm selection.
//
// AES-256-GCM is preferred where the platform has hardware AES support;
// ChaCha20-Poly1305 is used otherwise. Sealed blobs carry a one-byte
// algorithm tag followed by the nonce, so a blob written on one machine
// can be opened on another.
//
// Usage:
//
//	key, err := adaptive.LoadOrCreateKey(path)
//	c, err := adaptive.New(key)
//	sealed, err := c.Encrypt(plaintext, aad)
//	plaintext, err := adaptive.Open(key, sealed, aad)
package adaptive
