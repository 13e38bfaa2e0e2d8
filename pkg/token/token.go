package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

// DefaultLength is the default token length in bytes.
const DefaultLength = 32

// fingerprintLen is the number of hex characters kept by Fingerprint.
const fingerprintLen = 12

var (
	ErrMalformed = errors.New("token: malformed")
	ErrSignature = errors.New("token: bad signature")
)

// Generate generates a cryptographically secure random token.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength generates a token with the specified byte length.
func GenerateWithLength(length int) (string, error) {
	b, err := GenerateBytes(length)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateBytes generates random bytes.
func GenerateBytes(length int) ([]byte, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Hash computes the hex SHA-256 of a token.
func Hash(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// Fingerprint returns a short prefix of Hash, for logs and audit entries.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	return Hash(token)[:fingerprintLen]
}

// Signer produces and verifies HMAC-SHA256 signed tokens.
type Signer struct {
	key []byte
}

// NewSigner creates a Signer; key must be non-empty.
func NewSigner(key []byte) (*Signer, error) {
	if len(key) == 0 {
		return nil, errors.New("token: empty signing key")
	}
	return &Signer{key: append([]byte(nil), key...)}, nil
}

// Sign returns base64url(payload) + "." + hex(hmac(base64url(payload))).
func (s *Signer) Sign(payload []byte) string {
	body := base64.RawURLEncoding.EncodeToString(payload)
	return body + "." + s.mac(body)
}

// Verify checks the signature and returns the payload.
func (s *Signer) Verify(token string) ([]byte, error) {
	body, sig, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || body == "" || sig == "" {
		return nil, ErrMalformed
	}
	if !hmac.Equal([]byte(sig), []byte(s.mac(body))) {
		return nil, ErrSignature
	}
	payload, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, ErrMalformed
	}
	return payload, nil
}

func (s *Signer) mac(body string) string {
	m := hmac.New(sha256.New, s.key)
	m.Write([]byte(body))
	return hex.EncodeToString(m.Sum(nil))
}
