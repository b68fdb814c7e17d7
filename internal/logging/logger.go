// Package logging defines a minimal structured-logging interface used across
// the project. Implementations wrap slog or zerolog.
package logging

import (
	"context"
	"io"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "item captured", "item_id", id, "user_id", userID)
type Logger interface {
	// Debug logs diagnostic details.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Output formats accepted by New.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New builds a Logger writing to w. "console" produces a human-friendly
// zerolog console writer; "json" and "text" use slog handlers. Unknown
// formats fall back to text.
func New(format, level string, w io.Writer) Logger {
	switch strings.ToLower(format) {
	case FormatConsole:
		return NewZerologConsole(w, level)
	case FormatJSON:
		return NewSlogJSON(w, level)
	default:
		return NewSlogText(w, level)
	}
}
