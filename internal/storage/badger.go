package storage

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
)

// sessionKey is the Badger key holding the session blob.
var sessionKey = []byte("session/current")

// BadgerConfig contains Badger tuning for the session database.
type BadgerConfig struct {
	// Dir is the database directory.
	Dir string

	// InMemory runs Badger without touching disk (tests).
	InMemory bool

	// GCInterval is the interval between value log GC runs.
	// Default: 10m
	GCInterval time.Duration

	// GCThreshold is the value log discard ratio.
	// Default: 0.5
	GCThreshold float64

	// SyncWrites fsyncs every write.
	// Default: true
	SyncWrites bool
}

// DefaultBadgerConfig returns defaults sized for a single small record.
func DefaultBadgerConfig(dir string) BadgerConfig {
	return BadgerConfig{
		Dir:         dir,
		GCInterval:  10 * time.Minute,
		GCThreshold: 0.5,
		SyncWrites:  true,
	}
}

// BadgerPersister stores the session in an embedded Badger database.
type BadgerPersister struct {
	db     *badger.DB
	cfg    BadgerConfig
	sealer *Sealer
	log    logger.Logger

	closed     atomic.Bool
	lastGCTime atomic.Int64

	metricsSize   prometheus.Gauge
	metricsWrites prometheus.Counter

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBadgerPersister opens the database and starts the GC loop.
func NewBadgerPersister(cfg BadgerConfig, sealer *Sealer, log logger.Logger) (*BadgerPersister, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, errors.New("badger: dir is required")
	}
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With("component", "storage.badger")

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = &badgerLogger{log: log}
	opts.SyncWrites = cfg.SyncWrites
	opts.NumVersionsToKeep = 1
	opts.ValueLogFileSize = 16 << 20
	opts.MemTableSize = 8 << 20
	opts.BlockCacheSize = 1 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	p := &BadgerPersister{
		db:     db,
		cfg:    cfg,
		sealer: sealer,
		log:    log,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go p.gcLoop()

	log.Debug("badger persister opened", "dir", cfg.Dir, "in_memory", cfg.InMemory)
	return p, nil
}

// Load reads the session blob.
func (p *BadgerPersister) Load(ctx context.Context) ([]byte, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}

	var value []byte
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p.sealer.open(value)
}

// Save replaces the session blob.
func (p *BadgerPersister) Save(ctx context.Context, data []byte) error {
	if p.closed.Load() {
		return ErrClosed
	}

	sealed, err := p.sealer.seal(data)
	if err != nil {
		return fmt.Errorf("badger: seal session: %w", err)
	}
	if err := p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey, sealed)
	}); err != nil {
		return fmt.Errorf("badger: save session: %w", err)
	}
	if p.metricsWrites != nil {
		p.metricsWrites.Inc()
	}
	return nil
}

// Clear deletes the session blob.
func (p *BadgerPersister) Clear(ctx context.Context) error {
	if p.closed.Load() {
		return ErrClosed
	}
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey)
	})
}

// GC runs value log GC until nothing more can be rewritten.
func (p *BadgerPersister) GC(ctx context.Context) error {
	if p.cfg.InMemory {
		return nil
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := p.db.RunValueLogGC(p.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
				break
			}
			return fmt.Errorf("badger: gc: %w", err)
		}
	}
	p.lastGCTime.Store(time.Now().UnixMilli())
	return nil
}

// Close stops the GC loop and closes the database.
func (p *BadgerPersister) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(p.stopCh)
	<-p.doneCh

	if err := p.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}
	p.log.Debug("badger persister closed")
	return nil
}

// RegisterMetrics registers size and write metrics with registry.
func (p *BadgerPersister) RegisterMetrics(registry prometheus.Registerer) *BadgerPersister {
	p.metricsSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "companylock",
		Subsystem: "session_badger",
		Name:      "size_bytes",
		Help:      "Badger LSM plus value log size in bytes",
	})
	p.metricsWrites = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "companylock",
		Subsystem: "session_badger",
		Name:      "writes_total",
		Help:      "Session snapshots written to Badger",
	})
	registry.MustRegister(p.metricsSize, p.metricsWrites)
	p.updateSize()
	return p
}

func (p *BadgerPersister) updateSize() {
	if p.metricsSize == nil {
		return
	}
	lsm, vlog := p.db.Size()
	p.metricsSize.Set(float64(lsm + vlog))
}

func (p *BadgerPersister) gcLoop() {
	defer close(p.doneCh)

	interval := p.cfg.GCInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if err := p.GC(ctx); err != nil {
				p.log.Warn("badger gc failed", "error", err)
			}
			cancel()
			p.updateSize()
		case <-p.stopCh:
			return
		}
	}
}

// badgerLogger adapts logger.Logger to Badger's Logger interface.
type badgerLogger struct {
	log logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}
