package common

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

var (
	logger         *slog.Logger = nopLogger()
	loggerInitOnce sync.Once
)

// LogLevel represents different log levels
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level      LogLevel  `json:"level" yaml:"level" mapstructure:"level"`
	TimeFormat string    `json:"timeFormat" yaml:"timeFormat" mapstructure:"time_format"`
	AddSource  bool      `json:"addSource" yaml:"addSource" mapstructure:"add_source"`
	Writer     io.Writer `json:"-" yaml:"-" mapstructure:"-"`
	NoColor    bool      `json:"noColor" yaml:"noColor" mapstructure:"no_color"`
}

func nopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// SetLogger installs l as the package and process-wide default logger.
// Passing nil restores a no-op logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = nopLogger()
	}
	logger = l
	slog.SetDefault(l)
}

// DefaultLogConfig returns the default logging configuration
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      LevelInfo,
		TimeFormat: time.RFC3339,
		Writer:     os.Stderr,
	}
}

// InitializeLogging sets up the global logger once; later calls return it unchanged.
func InitializeLogging(config LogConfig) *slog.Logger {
	loggerInitOnce.Do(func() {
		SetLogger(CreateLogger(config))
	})
	return logger
}

// GetLogger returns the process logger. It is a no-op logger until
// InitializeLogging or SetLogger runs.
func GetLogger() *slog.Logger {
	return logger
}

// CreateLogger creates a new tinted logger with the specified configuration
func CreateLogger(config LogConfig) *slog.Logger {
	if config.Writer == nil {
		config.Writer = os.Stderr
	}
	if config.TimeFormat == "" {
		config.TimeFormat = time.RFC3339
	}

	handler := tint.NewHandler(config.Writer, &tint.Options{
		Level:      ParseLogLevel(config.Level),
		TimeFormat: config.TimeFormat,
		AddSource:  config.AddSource,
		NoColor:    config.NoColor || isNoColorEnv(),
	})
	return slog.New(handler)
}

// ParseLogLevel converts a level name to slog.Level, defaulting to info.
func ParseLogLevel(level LogLevel) slog.Level {
	switch LogLevel(strings.ToLower(string(level))) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// isNoColorEnv checks environment variables that disable color output
func isNoColorEnv() bool {
	return os.Getenv("NO_COLOR") != "" ||
		os.Getenv("TERM") == "dumb" ||
		!isTerminal()
}

func isTerminal() bool {
	stat, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// LoggerWithComponent returns a logger with a component field
func LoggerWithComponent(l *slog.Logger, component string) *slog.Logger {
	if l == nil {
		l = GetLogger()
	}
	return l.With("component", component)
}

// LoggerWithRequestID returns a logger with a request ID field
func LoggerWithRequestID(l *slog.Logger, requestID string) *slog.Logger {
	if l == nil {
		l = GetLogger()
	}
	return l.With("req_id", requestID)
}

type loggerKey struct{}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// LoggerFromContext retrieves a logger from context, falling back to default
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return GetLogger()
}

// TestLogger creates an uncolored debug logger writing to w.
func TestLogger(w io.Writer) *slog.Logger {
	return CreateLogger(LogConfig{
		Level:      LevelDebug,
		TimeFormat: time.Kitchen,
		Writer:     w,
		NoColor:    true,
	})
}
