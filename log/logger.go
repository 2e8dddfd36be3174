// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	ethlog "github.com/ethereum/go-ethereum/log"
)

const timeFormat = "2006-01-02T15:04:05-0700"

const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Logger writes key/value pairs to a handler.
type Logger interface {
	// With returns a new Logger that has this logger's attributes plus the given attributes
	With(ctx ...any) Logger

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)

	// Enabled reports whether l emits log records at the given context and level.
	Enabled(ctx context.Context, level slog.Level) bool
}

var root atomic.Pointer[ethlog.Logger]

func init() {
	l := ethlog.NewLogger(DiscardHandler())
	root.Store(&l)
}

// SetDefault sets the handler used by every logger, including the ones
// created by WithContext before the call.
func SetDefault(h slog.Handler) {
	l := ethlog.NewLogger(h)
	root.Store(&l)
}

// Root returns the root logger.
func Root() Logger {
	return &ctxLogger{}
}

// New returns a new logger with the given context.
func New(ctx ...any) Logger {
	return WithContext(ctx...)
}

// WithContext returns a logger that resolves the root handler at every call,
// so package level loggers follow SetDefault.
func WithContext(ctx ...any) Logger {
	return &ctxLogger{ctx: ctx}
}

type ctxLogger struct {
	ctx []any
}

func (l *ctxLogger) inner() ethlog.Logger {
	r := *root.Load()
	if len(l.ctx) == 0 {
		return r
	}
	return r.With(l.ctx...)
}

func (l *ctxLogger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	return &ctxLogger{ctx: append(merged, ctx...)}
}

func (l *ctxLogger) Trace(msg string, ctx ...any) { l.inner().Trace(msg, ctx...) }
func (l *ctxLogger) Debug(msg string, ctx ...any) { l.inner().Debug(msg, ctx...) }
func (l *ctxLogger) Info(msg string, ctx ...any)  { l.inner().Info(msg, ctx...) }
func (l *ctxLogger) Warn(msg string, ctx ...any)  { l.inner().Warn(msg, ctx...) }
func (l *ctxLogger) Error(msg string, ctx ...any) { l.inner().Error(msg, ctx...) }
func (l *ctxLogger) Crit(msg string, ctx ...any)  { l.inner().Crit(msg, ctx...) }

func (l *ctxLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.inner().Enabled(ctx, level)
}

// Trace is a convenient alias for Root().Trace
func Trace(msg string, ctx ...any) { Root().Trace(msg, ctx...) }

// Debug is a convenient alias for Root().Debug
func Debug(msg string, ctx ...any) { Root().Debug(msg, ctx...) }

// Info is a convenient alias for Root().Info
func Info(msg string, ctx ...any) { Root().Info(msg, ctx...) }

// Warn is a convenient alias for Root().Warn
func Warn(msg string, ctx ...any) { Root().Warn(msg, ctx...) }

// Error is a convenient alias for Root().Error
func Error(msg string, ctx ...any) { Root().Error(msg, ctx...) }

// LevelString returns a string containing the name of a Lvl.
func LevelString(l slog.Level) string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelCrit:
		return "crit"
	default:
		return "unknown"
	}
}

// ParseLevel maps a verbosity name or number (0=crit .. 5=trace) to a level.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "crit":
		return LevelCrit, true
	case "1", "error":
		return LevelError, true
	case "2", "warn":
		return LevelWarn, true
	case "3", "info":
		return LevelInfo, true
	case "4", "debug":
		return LevelDebug, true
	case "5", "trace":
		return LevelTrace, true
	}
	return LevelInfo, false
}
