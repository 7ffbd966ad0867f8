// Package logging holds the process-wide logger shared by every engine
// package. Nothing is logged until SetLogger installs a handler.
package logging

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger replaces the engine logger. nil restores the silent default.
//
// Levels:
//   - Debug: frame timings, texture (re)creation
//   - Info: device opened, backend selected, scene switched
//   - Warn: console mode, vsync and hotplug failures that do not stop the engine
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

func Logger() *slog.Logger { return loggerPtr.Load() }

// For returns the engine logger tagged with a component name.
func For(component string) *slog.Logger {
	return loggerPtr.Load().With("component", component)
}

// Text installs a text handler on stderr at the given level and returns it.
func Text(level slog.Level) *slog.Logger {
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	SetLogger(l)
	return l
}
