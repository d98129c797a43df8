// Package logger provides the structured logging facade used across the
// entity layer. It wraps logrus so call sites stay decoupled from the
// backend.
package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	// UserIDKey carries the authenticated user ID through request contexts.
	UserIDKey contextKey = "user_id"
	// TraceIDKey carries a request trace ID through request contexts.
	TraceIDKey contextKey = "trace_id"
)

// LoggingConfig controls logger construction.
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
	Output string // "stdout", "stderr" or a file path
	Name   string
}

// Logger is a structured logger bound to a component name.
type Logger struct {
	entry *logrus.Entry
}

// New builds a logger from configuration.
func New(cfg LoggingConfig) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	l.SetOutput(resolveOutput(cfg.Output))

	entry := logrus.NewEntry(l)
	if cfg.Name != "" {
		entry = entry.WithField("component", cfg.Name)
	}
	return &Logger{entry: entry}
}

// NewDefault returns an info-level JSON logger for the given component.
func NewDefault(name string) *Logger {
	return New(LoggingConfig{Level: "info", Format: "json", Output: "stderr", Name: name})
}

func resolveOutput(output string) io.Writer {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return os.Stderr
		}
		return f
	}
}

// WithField returns a logger with an extra field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithFields returns a logger with extra fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithError returns a logger with the error attached.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

// WithContext attaches user and trace identifiers from the context, when
// present.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	entry := l.entry
	if userID := GetUserID(ctx); userID != "" {
		entry = entry.WithField("user_id", userID)
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		entry = entry.WithField("trace_id", traceID)
	}
	return &Logger{entry: entry}
}

func (l *Logger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *Logger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *Logger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *Logger) Error(args ...interface{}) { l.entry.Error(args...) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// WithUserID returns a context carrying the user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts the user ID from the context, or "".
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(UserIDKey).(string); ok {
		return v
	}
	return ""
}

// WithTraceID returns a context carrying the trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID extracts the trace ID from the context, or "".
func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(TraceIDKey).(string); ok {
		return v
	}
	return ""
}
