// Package diag provides the shared diagnostic surfaces used across the
// engine: a structured slog.Logger for operational events, and a plain
// io.Writer for the free-form "diagnostic stream" that a few components
// (the data-driven state machine's cout action, its misconfiguration
// dump) write human-readable text to.
package diag

import (
	"io"
	"log/slog"
	"os"
)

// defaultLogger is shared by components that don't have one injected.
var defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Logger returns l if non-nil, otherwise the package default.
func Logger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return defaultLogger
}

// Writer returns w if non-nil, otherwise os.Stderr.
func Writer(w io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return os.Stderr
}
