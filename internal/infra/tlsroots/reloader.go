package tlsroots

import (
	"crypto/tls"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
)

// CertReloader serves a certificate/key pair and reloads it when either
// file is rewritten, so certificates can be rotated without a restart.
type CertReloader struct {
	certFile string
	keyFile  string
	log      logger.Logger

	mu   sync.RWMutex
	cert *tls.Certificate

	// Rapid successive events trigger a single reload.
	debounce   time.Duration
	settle     time.Duration
	lastReload time.Time
	reloadMu   sync.Mutex

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// ReloaderOption configures a CertReloader.
type ReloaderOption func(*CertReloader)

// WithLogger sets the logger.
func WithLogger(log logger.Logger) ReloaderOption {
	return func(r *CertReloader) {
		r.log = log
	}
}

// WithDebounce sets the minimum time between reloads.
func WithDebounce(d time.Duration) ReloaderOption {
	return func(r *CertReloader) {
		r.debounce = d
	}
}

// NewCertReloader loads the pair once; an unreadable pair is an error.
func NewCertReloader(certFile, keyFile string, opts ...ReloaderOption) (*CertReloader, error) {
	r := &CertReloader{
		certFile: certFile,
		keyFile:  keyFile,
		log:      logger.NewNop(),
		debounce: 500 * time.Millisecond,
		settle:   100 * time.Millisecond,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.reload(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial load: %w", err)
	}
	return r, nil
}

// Start watches the directories holding the pair until Stop is called.
// Directories are watched rather than files so editors that replace the
// file by rename are noticed.
func (r *CertReloader) Start() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}
	r.watcher = w

	certDir := filepath.Dir(r.certFile)
	keyDir := filepath.Dir(r.keyFile)
	if err := w.Add(certDir); err != nil {
		w.Close()
		return fmt.Errorf("tlsroots: watch %s: %w", certDir, err)
	}
	if keyDir != certDir {
		if err := w.Add(keyDir); err != nil {
			w.Close()
			return fmt.Errorf("tlsroots: watch %s: %w", keyDir, err)
		}
	}
	r.log.Info("certificate watcher started", "cert_file", r.certFile, "key_file", r.keyFile)

	certBase := filepath.Base(r.certFile)
	keyBase := filepath.Base(r.keyFile)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if base := filepath.Base(event.Name); base != certBase && base != keyBase {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			r.log.Debug("certificate file changed", "file", event.Name, "op", event.Op.String())
			if err := r.debouncedReload(); err != nil {
				r.log.Error("certificate reload failed", "error", err, "cert_file", r.certFile)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Error("certificate watcher error", "error", err)

		case <-r.done:
			return w.Close()
		}
	}
}

// StartAsync runs Start in a goroutine.
func (r *CertReloader) StartAsync() {
	go func() {
		if err := r.Start(); err != nil {
			r.log.Error("certificate watcher stopped", "error", err)
		}
	}()
}

// Stop ends watching. It is safe to call more than once.
func (r *CertReloader) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}

// ServerConfig returns a server TLS config backed by the reloader.
func (r *CertReloader) ServerConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: r.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}

func (r *CertReloader) debouncedReload() error {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	now := time.Now()
	if now.Sub(r.lastReload) < r.debounce {
		return nil
	}
	r.lastReload = now

	// Writers often truncate then write; give them a moment.
	time.Sleep(r.settle)
	return r.reload()
}

func (r *CertReloader) reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}

	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()

	r.log.Info("certificate loaded", "cert_file", r.certFile)
	return nil
}
