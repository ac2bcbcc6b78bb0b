package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config represents logger configuration
type Config struct {
	Level       string // debug, info, warn, error, fatal
	Environment string // development, production, test
	LogFile     string // optional file path for logs
	Out         io.Writer
}

// Init configures the global logger. The returned closer releases the log file, if any.
func Init(cfg Config) (io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	var closer io.Closer = nopCloser{}
	writers := []io.Writer{out}
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		writers = append(writers, file)
		closer = file
	}

	if cfg.Environment == "development" || cfg.Environment == "dev" {
		console := zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
		writers[0] = console
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger()

	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type contextKey string

// ContextKey is the key used to store logger in context
const ContextKey contextKey = "logger"

// FromContext returns the logger from context or the global logger
func FromContext(ctx context.Context) *zerolog.Logger {
	if l, ok := ctx.Value(ContextKey).(*zerolog.Logger); ok && l != nil {
		return l
	}
	return &log.Logger
}

// WithContext returns a context with the logger attached
func WithContext(ctx context.Context, l *zerolog.Logger) context.Context {
	return context.WithValue(ctx, ContextKey, l)
}

// WithRun attaches a fresh run id and the command name to the context logger,
// so every line written by one CLI invocation can be correlated.
func WithRun(ctx context.Context, command string) (context.Context, string) {
	runID := uuid.NewString()
	l := FromContext(ctx).With().
		Str("run_id", runID).
		Str("command", command).
		Logger()
	return WithContext(ctx, &l), runID
}
