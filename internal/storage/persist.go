package storage

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"golang.org/x/crypto/hkdf"

	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
	"github.com/NDP4/CompanyLock-Manager/pkg/crypto/adaptive"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

var (
	// ErrNotFound is returned by Load when nothing has been saved.
	ErrNotFound = errors.New("storage: no saved session")

	// ErrCorrupt is returned by Load when the blob cannot be opened.
	ErrCorrupt = errors.New("storage: saved session is corrupt")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("storage: persister closed")
)

// Persister stores a single session blob.
type Persister interface {
	// Load returns the saved blob, ErrNotFound or ErrCorrupt.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the saved blob.
	Save(ctx context.Context, data []byte) error

	// Clear removes the saved blob; clearing nothing is not an error.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Backend is one of file, badger, memory.
	Backend string

	// Path is the session file (file) or database directory (badger).
	Path string

	// KeyFile holds the hex-encoded encryption key; created when absent.
	// Defaults to <dir of Path>/session.key.
	KeyFile string
}

// Open creates the configured Persister.
func Open(cfg Config, log logger.Logger) (Persister, error) {
	if log == nil {
		log = logger.NewNop()
	}

	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryPersister(), nil
	case BackendFile, "":
		s, err := newSealer(cfg)
		if err != nil {
			return nil, err
		}
		return NewFilePersister(cfg.Path, s, log)
	case BackendBadger:
		s, err := newSealer(cfg)
		if err != nil {
			return nil, err
		}
		return NewBadgerPersister(DefaultBadgerConfig(cfg.Path), s, log)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}

// sessionAAD binds sealed blobs to their purpose.
var sessionAAD = []byte("companylock/session/v1")

// Sealer encrypts blobs at rest. A nil *Sealer stores plaintext.
type Sealer struct {
	key    []byte
	cipher adaptive.Cipher
}

// NewSealer derives the session key from master with HKDF-SHA256.
func NewSealer(master []byte) (*Sealer, error) {
	key := make([]byte, adaptive.KeySize)
	r := hkdf.New(sha256.New, master, nil, []byte("companylock-session"))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("storage: derive key: %w", err)
	}
	c, err := adaptive.New(key)
	if err != nil {
		return nil, err
	}
	return &Sealer{key: key, cipher: c}, nil
}

func newSealer(cfg Config) (*Sealer, error) {
	if cfg.Path == "" {
		return nil, errors.New("storage: path is required")
	}
	keyFile := cfg.KeyFile
	if keyFile == "" {
		keyFile = filepath.Join(filepath.Dir(cfg.Path), "session.key")
	}
	master, err := adaptive.LoadOrCreateKey(keyFile)
	if err != nil {
		return nil, err
	}
	return NewSealer(master)
}

func (s *Sealer) seal(data []byte) ([]byte, error) {
	if s == nil {
		return data, nil
	}
	return s.cipher.Encrypt(data, sessionAAD)
}

// open accepts blobs sealed by either algorithm.
func (s *Sealer) open(data []byte) ([]byte, error) {
	if s == nil {
		return data, nil
	}
	out, err := adaptive.Open(s.key, data, sessionAAD)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return out, nil
}
