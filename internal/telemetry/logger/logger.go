package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is shared by the CLI runtime and the devserver handlers. Values
// passed to it are redacted before writing.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Config mirrors the log section of both the CLI and devserver configs.
type Config struct {
	Level  string    // one of Levels
	Format string    // one of Formats
	Output io.Writer // nil means stderr, so stdout stays free for command output
}

// DefaultConfig keeps the CLI quiet unless something goes wrong.
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: "text",
		Output: os.Stderr,
	}
}

type slogLogger struct {
	logger *slog.Logger
	ctx    context.Context
}

// Level names accepted by ParseLevel, in increasing severity.
var Levels = []string{"debug", "info", "warn", "error"}

// Formats accepted by ParseFormat.
var Formats = []string{"text", "json"}

// globalLevel is shared by every logger from New, so a devserver config
// reload changes all of them at once.
var globalLevel = new(slog.LevelVar)

// ParseLevel maps a level name to its slog level. "warning" is an alias
// of "warn". Empty input is info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want one of %s)", level, strings.Join(Levels, ", "))
	}
}

// ParseFormat normalizes a format name. Empty input is text.
func ParseFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "":
		return "text", nil
	case "text", "json":
		return f, nil
	default:
		return "", fmt.Errorf("unknown log format %q (want text or json)", format)
	}
}

// New builds a logger for cfg and resets the shared level to cfg.Level.
// Unknown levels and formats are rejected.
func New(cfg Config) (Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	globalLevel.Set(level)

	opts := &slog.HandlerOptions{
		Level: globalLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return &slogLogger{
		logger: slog.New(handler),
		ctx:    context.Background(),
	}, nil
}

// NewNop discards everything. Tests and optional collaborators use it.
func NewNop() Logger {
	return &slogLogger{
		logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1})),
		ctx:    context.Background(),
	}
}

// SetLevel changes the level of every logger built by New. The devserver
// calls it when log.level changes on disk. An unknown level leaves the
// current one in place.
func SetLevel(level string) error {
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}
	globalLevel.Set(l)
	return nil
}

// GetLevel returns the shared level as one of Levels.
func GetLevel() string {
	switch globalLevel.Level() {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	default:
		return "info"
	}
}

func (l *slogLogger) Debug(msg string, args ...any) {
	l.logger.DebugContext(l.ctx, msg, args...)
}

func (l *slogLogger) Info(msg string, args ...any) {
	l.logger.InfoContext(l.ctx, msg, args...)
}

func (l *slogLogger) Warn(msg string, args ...any) {
	l.logger.WarnContext(l.ctx, msg, args...)
}

func (l *slogLogger) Error(msg string, args ...any) {
	l.logger.ErrorContext(l.ctx, msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{
		logger: l.logger.With(args...),
		ctx:    l.ctx,
	}
}

func (l *slogLogger) WithContext(ctx context.Context) Logger {
	return &slogLogger{
		logger: l.logger,
		ctx:    ctx,
	}
}

var defaultLogger atomic.Pointer[slogLogger]

func init() {
	l, err := New(DefaultConfig())
	if err != nil {
		panic(err)
	}
	defaultLogger.Store(l.(*slogLogger))
}

// SetDefault replaces the logger FromContext falls back to.
func SetDefault(l Logger) {
	if sl, ok := l.(*slogLogger); ok {
		defaultLogger.Store(sl)
	}
}

// Default returns the fallback logger, text on stderr at warn until
// SetDefault is called.
func Default() Logger {
	return defaultLogger.Load()
}
