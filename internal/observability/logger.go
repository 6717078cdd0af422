package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"mirror-scraper/internal/config"
)

// Logger writes key/value records to stderr and, when a log path is configured, to a rotated file.
type Logger struct {
	logger *slog.Logger
	closer io.Closer
}

func NewLogger(cfg config.ObservabilityConfig) *Logger {
	var out io.Writer = os.Stderr
	var closer io.Closer

	if cfg.LogPath != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
		}
		out = io.MultiWriter(os.Stderr, rotator)
		closer = rotator
	}

	l := NewLoggerWithWriter(out, cfg.LogLevel)
	l.closer = closer
	return l
}

// NewLoggerWithWriter is used by tests to capture output.
func NewLoggerWithWriter(w io.Writer, logLevel string) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(logLevel)})
	return &Logger{logger: slog.New(handler)}
}

func NewNopLogger() *Logger {
	return NewLoggerWithWriter(io.Discard, "error")
}

func (l *Logger) With(fields ...interface{}) *Logger {
	return &Logger{logger: l.logger.With(fields...), closer: l.closer}
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.logger.Log(context.Background(), slog.LevelDebug, msg, fields...)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.logger.Log(context.Background(), slog.LevelInfo, msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.logger.Log(context.Background(), slog.LevelWarn, msg, fields...)
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	l.logger.Log(context.Background(), slog.LevelError, msg, fields...)
}

// Printf lets the logger back cron.PrintfLogger.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Close flushes the log file, if any.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
