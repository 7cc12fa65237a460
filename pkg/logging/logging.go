// Package logging provides the structured logger used across meshsplit.
// Loggers take a message plus alternating key/value pairs, the shape of
// zap's SugaredLogger and slog.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger defines methods for structured logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// SlogLogger implements Logger on top of log/slog.
type SlogLogger struct {
	logger *slog.Logger
}

var _ Logger = (*SlogLogger)(nil)

// NewSlog wraps an existing slog.Logger.
func NewSlog(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger}
}

// NewSlogDefault wraps slog.Default().
func NewSlogDefault() *SlogLogger {
	return &SlogLogger{logger: slog.Default()}
}

func (l *SlogLogger) Debug(msg string, keysAndValues ...any) { l.logger.Debug(msg, keysAndValues...) }
func (l *SlogLogger) Info(msg string, keysAndValues ...any)  { l.logger.Info(msg, keysAndValues...) }
func (l *SlogLogger) Warn(msg string, keysAndValues ...any)  { l.logger.Warn(msg, keysAndValues...) }
func (l *SlogLogger) Error(msg string, keysAndValues ...any) { l.logger.Error(msg, keysAndValues...) }

// Slog returns the wrapped slog.Logger.
func (l *SlogLogger) Slog() *slog.Logger {
	return l.logger
}

// NopLogger discards all messages.
type NopLogger struct{}

var _ Logger = (*NopLogger)(nil)

// NewNop returns a logger that discards everything.
func NewNop() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Debug(_ string, _ ...any) {}
func (n *NopLogger) Info(_ string, _ ...any)  {}
func (n *NopLogger) Warn(_ string, _ ...any)  {}
func (n *NopLogger) Error(_ string, _ ...any) {}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
}

// Setup builds a JSON slog logger writing to stderr and, when logFile is
// non-empty, appending to that file as well. The returned cleanup closes
// the file handle.
func Setup(logFile string, level slog.Level) (*slog.Logger, func(), error) {
	return setup(os.Stderr, logFile, level)
}

func setup(stderr io.Writer, logFile string, level slog.Level) (*slog.Logger, func(), error) {
	if logFile == "" {
		handler := slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level})
		return slog.New(handler), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}

	w := io.MultiWriter(stderr, f)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	cleanup := func() {
		_ = f.Close()
	}
	return slog.New(handler), cleanup, nil
}
