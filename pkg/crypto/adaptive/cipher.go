package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the required key length in bytes.
const KeySize = 32

// CipherType identifies the cipher algorithm.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// Algorithm tags prefixed to sealed blobs.
const (
	tagAESGCM   byte = 0x01
	tagChaCha20 byte = 0x02
)

var (
	ErrInvalidKey      = errors.New("adaptive: key must be 32 bytes")
	ErrShortCiphertext = errors.New("adaptive: ciphertext too short")
	ErrUnknownCipher   = errors.New("adaptive: unknown cipher tag")
)

// Cipher provides authenticated encryption.
type Cipher interface {
	// Type returns the cipher type.
	Type() CipherType

	// Encrypt seals plaintext; the output is tag || nonce || ciphertext.
	Encrypt(plaintext, additionalData []byte) ([]byte, error)

	// Decrypt opens a blob produced by Encrypt of the same type.
	Decrypt(sealed, additionalData []byte) ([]byte, error)
}

// New creates a cipher, selecting the algorithm from the platform.
func New(key []byte) (Cipher, error) {
	if hasAESNI() {
		return NewWithType(key, CipherAESGCM)
	}
	return NewWithType(key, CipherChaCha20)
}

// NewWithType creates a cipher of the specified type.
func NewWithType(key []byte, cipherType CipherType) (Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	switch cipherType {
	case CipherAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		return &aeadCipher{aead: aead, typ: cipherType, tag: tagAESGCM}, nil
	case CipherChaCha20:
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, err
		}
		return &aeadCipher{aead: aead, typ: cipherType, tag: tagChaCha20}, nil
	default:
		return nil, fmt.Errorf("adaptive: unknown cipher type %q", cipherType)
	}
}

// Open decrypts a sealed blob with whichever algorithm its tag names.
func Open(key, sealed, additionalData []byte) ([]byte, error) {
	if len(sealed) < 1 {
		return nil, ErrShortCiphertext
	}
	var typ CipherType
	switch sealed[0] {
	case tagAESGCM:
		typ = CipherAESGCM
	case tagChaCha20:
		typ = CipherChaCha20
	default:
		return nil, ErrUnknownCipher
	}
	c, err := NewWithType(key, typ)
	if err != nil {
		return nil, err
	}
	return c.Decrypt(sealed, additionalData)
}

// hasAESNI reports whether Go's crypto/aes is hardware accelerated here.
func hasAESNI() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return true
	default:
		return false
	}
}

type aeadCipher struct {
	aead cipher.AEAD
	typ  CipherType
	tag  byte
}

func (c *aeadCipher) Type() CipherType {
	return c.typ
}

func (c *aeadCipher) Encrypt(plaintext, additionalData []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	out := make([]byte, 1+ns, 1+ns+len(plaintext)+c.aead.Overhead())
	out[0] = c.tag
	nonce := out[1 : 1+ns]
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(out, nonce, plaintext, additionalData), nil
}

func (c *aeadCipher) Decrypt(sealed, additionalData []byte) ([]byte, error) {
	ns := c.aead.NonceSize()
	if len(sealed) < 1+ns+c.aead.Overhead() {
		return nil, ErrShortCiphertext
	}
	if sealed[0] != c.tag {
		return nil, ErrUnknownCipher
	}
	nonce := sealed[1 : 1+ns]
	return c.aead.Open(nil, nonce, sealed[1+ns:], additionalData)
}
