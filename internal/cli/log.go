// Package cli implements the reflow command-line interface.
//
// This package provides commands for measuring, placing and rendering
// layout documents, checking layout consistency, previewing the flow in a
// terminal, keeping saved documents, and serving the HTTP API. The CLI is
// built using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - measure: Print the size a document's boxes need
//   - place: Lay out a document and print the placements (JSON or ASCII)
//   - render: Generate SVG, PNG, DOT, JSON or text output
//   - inspect: Show placements as a table
//   - check: Verify layout consistency for a document or random fixtures
//   - preview: Reflow fixture tags interactively at terminal width
//   - layouts: Manage saved documents
//   - serve: Run the HTTP API
//   - cache: Manage the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, with "15:04:05.00"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one step. It is not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time, rounded to the
// millisecond, followed by keyvals.
func (p *progress) done(msg string, keyvals ...any) {
	fields := append([]any{"elapsed", time.Since(p.start).Round(time.Millisecond)}, keyvals...)
	p.logger.Info(msg, fields...)
}

type ctxKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok && l != nil {
		return l
	}
	return log.Default()
}
