// Package logging provides structured logging using Go's slog package.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// DocumentIDKey is the context key for the active document id.
	DocumentIDKey ContextKey = "document_id"
)

var (
	mu            sync.RWMutex
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// Format represents a log output format.
type Format int

const (
	// FormatText outputs logs in human-readable text format.
	FormatText Format = iota
	// FormatJSON outputs logs in JSON format.
	FormatJSON
)

// ParseLevel maps a config string to a slog level. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// ParseFormat maps a config string to a Format. Unknown values mean text.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return FormatJSON
	}
	return FormatText
}

// Init replaces the global logger. A nil writer means stderr.
func Init(level slog.Level, format Format, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	mu.Lock()
	defaultLogger = slog.New(handler)
	mu.Unlock()
}

// Logger returns the global logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// WithDocumentID attaches the active document id to ctx.
func WithDocumentID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, DocumentIDKey, id)
}

// FromContext returns the global logger with context values attached.
func FromContext(ctx context.Context) *slog.Logger {
	logger := Logger()
	if id, ok := ctx.Value(DocumentIDKey).(int64); ok {
		logger = logger.With("document_id", id)
	}
	return logger
}

// GatewayCall logs one round-trip to the correction gateway.
func GatewayCall(ctx context.Context, op, method, path string, status int, requestID string, duration time.Duration, err error) {
	args := []any{
		"op", op,
		"method", method,
		"path", path,
		"status_code", status,
		"request_id", requestID,
		"duration_ms", duration.Milliseconds(),
	}
	if err != nil {
		FromContext(ctx).Warn("gateway_call_failed", append(args, "error", err)...)
		return
	}
	FromContext(ctx).Debug("gateway_call", args...)
}

// IntegrityWarning logs a non-fatal inconsistency in fetched corrections.
func IntegrityWarning(ctx context.Context, first, last int, reason string) {
	FromContext(ctx).Warn("correction_integrity",
		"first_index", first,
		"last_index", last,
		"reason", reason,
	)
}

// StaleDiscarded logs a refetch dropped because the user switched documents.
func StaleDiscarded(ctx context.Context) {
	FromContext(ctx).Info("stale_refetch_discarded")
}
