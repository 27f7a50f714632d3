// Package cli implements the dungeonbuilder command-line interface.
//
// Commands operate on layouts held in the configured store (a directory of
// JSON documents, a SQLite database or a MongoDB collection). Edits made
// from the command line go through the same edit-script machinery as
// "dungeonbuilder apply", so every edit is checked, validated and saved in
// one step.
//
// # Commands
//
//   - new, show, tree, validate: create and inspect layouts
//   - cell, area, corridor: single edits
//   - apply: run a TOML edit script
//   - edit: interactive terminal editor with undo and redo
//   - store, cache, config: housekeeping
//   - serve: HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// carried through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Saved crypt (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
