package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
)

// FilePersister keeps the session in a single sealed file.
type FilePersister struct {
	mu     sync.Mutex
	path   string
	sealer *Sealer
	log    logger.Logger
	closed bool
}

// NewFilePersister creates the parent directory (0700) if needed.
func NewFilePersister(path string, sealer *Sealer, log logger.Logger) (*FilePersister, error) {
	if path == "" {
		return nil, errors.New("storage: file path is required")
	}
	if log == nil {
		log = logger.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("storage: create session dir: %w", err)
	}
	return &FilePersister{path: path, sealer: sealer, log: log.With("component", "storage.file")}, nil
}

// Path returns the session file path.
func (p *FilePersister) Path() string {
	return p.path
}

// Load reads and opens the session file.
func (p *FilePersister) Load(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}

	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read session: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrCorrupt
	}
	return p.sealer.open(data)
}

// Save seals data and replaces the file atomically.
func (p *FilePersister) Save(ctx context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	sealed, err := p.sealer.seal(data)
	if err != nil {
		return fmt.Errorf("storage: seal session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if err := tmp.Chmod(0o600); err != nil {
		cleanup()
		return fmt.Errorf("storage: chmod: %w", err)
	}
	if _, err := tmp.Write(sealed); err != nil {
		cleanup()
		return fmt.Errorf("storage: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("storage: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("storage: close: %w", err)
	}
	if err := os.Rename(tmpPath, p.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("storage: rename: %w", err)
	}

	p.log.Debug("session saved", "path", p.path, "bytes", len(sealed))
	return nil
}

// Clear removes the session file.
func (p *FilePersister) Clear(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	if err := os.Remove(p.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove session: %w", err)
	}
	p.log.Debug("session cleared", "path", p.path)
	return nil
}

// Close marks the persister closed. The file is left in place.
func (p *FilePersister) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
