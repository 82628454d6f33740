// Package logging builds the process logger and carries request-scoped
// fields through context.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Field keys shared by the middleware and services
const (
	FieldRequestID = "request_id"
	FieldPlayerID  = "player_id"
	FieldTeam      = "team"
	FieldEvent     = "event"
	FieldAttempt   = "attempt"
)

// New creates a logger writing to w. Format is "json" or "text", level one
// of debug, info, warn or error.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

type requestIDKey struct{}

// WithRequestID stores the request id on the context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored on the context, or ""
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns base annotated with the request id, if any
func FromContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		return nil
	}
	if id := RequestID(ctx); id != "" {
		return base.With(slog.String(FieldRequestID, id))
	}
	return base
}
