// Package observability wires structured logging and tracing for twsdash.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/musher-dev/twsdash/internal/paths"
)

const (
	redactedValue = "[REDACTED]"

	// Default log file rotation: rotate past 5 MiB, keep 3 backups.
	maxLogBytes   = 5 << 20
	maxLogBackups = 3
)

type contextKey struct{}

// Config selects the logger's level, format and sinks.
type Config struct {
	Level      string // error, warn, info, debug
	Format     string // json, text
	LogFile    string
	StderrMode string // auto, on, off

	// InteractiveTTY is true when the status panel owns the terminal. In
	// auto mode that turns stderr logging off, and logs go to the default
	// log file instead.
	InteractiveTTY bool

	SessionID   string
	CommandPath string
	Version     string
	Commit      string
}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the context's logger, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}

	return slog.Default()
}

// NewLogger builds a logger from cfg. The returned cleanup closes any log file.
func NewLogger(cfg *Config) (*slog.Logger, func() error, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	toStderr, err := stderrEnabled(cfg.StderrMode, cfg.InteractiveTTY)
	if err != nil {
		return nil, nil, err
	}

	logFile := strings.TrimSpace(cfg.LogFile)
	if logFile == "" && !toStderr && cfg.InteractiveTTY {
		if def, defErr := paths.DefaultLogFile(); defErr == nil {
			logFile = def
		}
	}

	if !toStderr && logFile == "" {
		return nil, nil, fmt.Errorf("no log sinks configured: set --log-file or enable --log-stderr")
	}

	var (
		writers []io.Writer
		file    *os.File
	)

	if toStderr {
		writers = append(writers, os.Stderr)
	}

	if logFile != "" {
		file, err = openLogFile(logFile)
		if err != nil {
			return nil, nil, err
		}

		writers = append(writers, file)
	}

	cleanup := func() error {
		if file == nil {
			return nil
		}

		return file.Close()
	}

	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: redactAttr}
	sink := io.MultiWriter(writers...)

	var handler slog.Handler

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		handler = slog.NewJSONHandler(sink, opts)
	case "text":
		handler = slog.NewTextHandler(sink, opts)
	default:
		_ = cleanup()
		return nil, nil, fmt.Errorf("invalid log format: %q (allowed: json, text)", cfg.Format)
	}

	logger := slog.New(handler).With(
		slog.String("session.id", cfg.SessionID),
		slog.String("command.path", cfg.CommandPath),
		slog.String("cli.version", cfg.Version),
		slog.String("cli.commit", cfg.Commit),
	)

	return logger, cleanup, nil
}

func openLogFile(path string) (*os.File, error) {
	path = filepath.Clean(strings.TrimSpace(path))

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log file directory: %w", err)
	}

	if err := rotateLogFile(path, maxLogBytes, maxLogBackups); err != nil {
		return nil, fmt.Errorf("rotate log file: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return file, nil
}

// rotateLogFile shifts path to path.1 (path.1 to path.2, ...) when it is
// larger than maxBytes, dropping anything beyond keep backups.
func rotateLogFile(path string, maxBytes int64, keep int) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return err
	}

	if info.Size() <= maxBytes {
		return nil
	}

	backup := func(n int) string { return path + "." + strconv.Itoa(n) }

	if err := os.Remove(backup(keep)); err != nil && !os.IsNotExist(err) {
		return err
	}

	for n := keep - 1; n >= 1; n-- {
		if err := os.Rename(backup(n), backup(n+1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return os.Rename(path, backup(1))
}

func stderrEnabled(mode string, interactiveTTY bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return !interactiveTTY, nil
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --log-stderr value %q (allowed: auto, on, off)", mode)
	}
}

func parseLevel(level string) (slog.Leveler, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return nil, fmt.Errorf("invalid log level: %q (allowed: error, warn, info, debug)", level)
	}
}

func redactAttr(_ []string, attr slog.Attr) slog.Attr {
	key := strings.ToLower(attr.Key)
	if key == "authorization" {
		return slog.String(attr.Key, redactedValue)
	}

	for _, s := range []string{"token", "api_key", "apikey", "secret", "credential", "password"} {
		if strings.Contains(key, s) {
			return slog.String(attr.Key, redactedValue)
		}
	}

	return attr
}
