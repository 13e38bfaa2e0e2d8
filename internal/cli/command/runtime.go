package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/NDP4/CompanyLock-Manager/internal/cli/config"
	"github.com/NDP4/CompanyLock-Manager/internal/cli/connection"
	"github.com/NDP4/CompanyLock-Manager/internal/cli/output"
	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
	"github.com/NDP4/CompanyLock-Manager/internal/core/service"
	"github.com/NDP4/CompanyLock-Manager/internal/infra/tlsroots"
	"github.com/NDP4/CompanyLock-Manager/internal/storage"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/metric"
)

// Runtime is the per-process state shared by every command.
//
// Config is loaded in the Before hook; the session store, pipeline and
// flows are built on first use so that config commands work with a
// broken configuration.
type Runtime struct {
	Config     *config.CLIConfig
	ConfigPath string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Log     logger.Logger
	Metrics *metric.Registry
	Notices domain.Notifier

	opts     *options
	clock    service.Clock
	reader   *bufio.Reader
	inREPL   bool
	initOnce sync.Once
	initErr  error

	Manager   *connection.Manager
	API       *connection.API
	Session   *service.SessionStore
	Auth      *service.AuthService
	Issuance  *service.IssuanceFlow
	Redeemer  *service.Redeemer
	Directory *service.Directory
}

func newRuntime(cfg *config.CLIConfig, path string, o *options) (*Runtime, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: o.stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	reg := metric.NewRegistry()
	rt := &Runtime{
		Config:     cfg,
		ConfigPath: path,
		Stdin:      o.stdin,
		Stdout:     o.stdout,
		Stderr:     o.stderr,
		Log:        log,
		Metrics:    reg,
		Notices:    connection.MeteredNotifier(output.NewNoticePrinter(o.stderr), reg),
		opts:       o,
		clock:      o.clock,
		reader:     bufio.NewReader(o.stdin),
	}
	reg.Registerer().MustRegister(metric.NewCollector(rt.stats))
	return rt, nil
}

// Services builds the session store, pipeline and flows once.
func (rt *Runtime) Services(ctx context.Context) error {
	rt.initOnce.Do(func() {
		rt.initErr = rt.initServices(ctx)
	})
	return rt.initErr
}

func (rt *Runtime) initServices(ctx context.Context) error {
	cfg := rt.Config
	if err := config.Verify(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	persister, err := storage.Open(cfg.StorageConfig(), rt.Log)
	if err != nil {
		return fmt.Errorf("open session storage: %w", err)
	}
	rt.Session = service.NewSessionStore(persister, rt.Log)
	if err := rt.Session.Restore(ctx); err != nil {
		rt.Log.Warn("session restore failed", "error", err)
	}

	var limiter *rate.Limiter
	if cfg.RateLimit.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	}

	rt.Manager = connection.NewManager(connection.PipelineConfig{
		Session:  rt.Session,
		Notifier: rt.Notices,
		Limiter:  limiter,
		Metrics:  rt.Metrics,
		Logger:   rt.Log,
	})
	conn := &connection.Connection{
		Server:  cfg.Server,
		APIBase: cfg.APIBase,
		Timeout: cfg.Timeout,
	}
	if cfg.CAFile != "" {
		pool := tlsroots.NewPool()
		if err := pool.Add(cfg.CAFile); err != nil {
			return fmt.Errorf("load ca_file: %w", err)
		}
		conn.TLS = pool.ClientConfig()
		rt.Log.Debug("trusting custom CAs", "ca_file", cfg.CAFile, "count", pool.Added())
	}
	if err := rt.Manager.Connect(conn); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if rt.API, err = rt.Manager.API(); err != nil {
		return err
	}

	rt.Auth = service.NewAuthService(service.AuthConfig{
		API:      rt.API,
		Session:  rt.Session,
		Notifier: rt.Notices,
		Logger:   rt.Log,
	})
	rt.Issuance = service.NewIssuanceFlow(service.IssuanceConfig{
		API:      rt.API,
		Notifier: rt.Notices,
		Clock:    rt.clock,
		Metrics:  rt.Metrics,
		Logger:   rt.Log,
	})
	rt.Redeemer = service.NewRedeemer(service.RedeemerConfig{
		API:      rt.API,
		Notifier: rt.Notices,
		Clock:    rt.clock,
		Metrics:  rt.Metrics,
		Logger:   rt.Log,
	})
	rt.Directory = service.NewDirectory(rt.API, rt.Log)
	return nil
}

// stats feeds the metrics collector.
func (rt *Runtime) stats() metric.Stats {
	var s metric.Stats
	if rt.Session != nil {
		snap := rt.Session.Snapshot()
		s.Authenticated = snap.Authenticated
		s.MustRotate = snap.MustRotate
	}
	if rt.Redeemer != nil {
		s.RevealActive, s.RevealRemaining = rt.Redeemer.Stats()
	}
	return s
}

// Close tears down the flows and releases session storage.
func (rt *Runtime) Close() error {
	if rt.Redeemer != nil {
		rt.Redeemer.Close()
	}
	if rt.Session != nil {
		return rt.Session.Close()
	}
	return nil
}

// Interactive reports whether stdout is a terminal.
func (rt *Runtime) Interactive() bool {
	return isTerminal(rt.Stdout)
}

// Print renders data in the configured output format.
func (rt *Runtime) Print(data any, wide bool) error {
	format, err := output.ParseFormat(rt.Config.Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, wide).Format(rt.Stdout, data)
}

// PromptLine reads one line from stdin after printing label on stderr.
func (rt *Runtime) PromptLine(label string) (string, error) {
	fmt.Fprint(rt.Stderr, label)
	line, err := rt.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptSecret reads a value without echo when stdin is a terminal.
func (rt *Runtime) PromptSecret(label string) (string, error) {
	f, ok := rt.Stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return rt.PromptLine(label)
	}
	fmt.Fprint(rt.Stderr, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(rt.Stderr)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(b), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// startSpinner animates msg on a terminal stderr and returns its stop.
func (rt *Runtime) startSpinner(msg string) func() {
	if !isTerminal(rt.Stderr) {
		return func() {}
	}
	s := output.NewSpinner(rt.Stderr, msg)
	s.Start()
	return s.Stop
}
