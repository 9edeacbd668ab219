//go:build !notrace

package declari

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

type traceLoggerKey struct{}

// TracingEnabled is false when built with -tags notrace
const TracingEnabled = true

// the null logger is a logger that does nothing
var nullLogger = slog.New(slog.DiscardHandler)

// WithTraceLogger attaches a trace logger to the context. A logger that
// is already present is kept.
func WithTraceLogger(ctx context.Context, tlog *slog.Logger) context.Context {
	if _, ok := ctx.Value(traceLoggerKey{}).(*slog.Logger); ok {
		return ctx
	}
	return context.WithValue(ctx, traceLoggerKey{}, tlog)
}

func getTraceLogFromContext(ctx context.Context) *slog.Logger {
	if tlog, ok := ctx.Value(traceLoggerKey{}).(*slog.Logger); ok {
		pc, _, _, ok := runtime.Caller(2)
		if ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				tlog = tlog.With(slog.String("fn", fn.Name()))
			}
		}
		return tlog
	}
	return nullLogger
}

// Span marks the end of a traced operation.
type Span interface {
	End()
}

type span struct {
	log   *slog.Logger
	name  string
	start time.Time
}

func (s *span) End() {
	s.log.Debug("end", slog.String("span", s.name), slog.Duration("elapsed", time.Since(s.start)))
}

// StartSpan logs the beginning of an operation. Calling End on the
// returned span logs its duration.
func StartSpan(ctx context.Context, name string) (context.Context, Span) {
	tlog := getTraceLogFromContext(ctx)
	tlog.Debug("start", slog.String("span", name))
	return ctx, &span{log: tlog, name: name, start: time.Now()}
}

// TraceError logs err at error level together with msg.
func TraceError(ctx context.Context, err error, msg string, attrs ...slog.Attr) {
	attrs = append(attrs, slog.String("error", err.Error()))
	getTraceLogFromContext(ctx).LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

// TraceDebug logs msg at debug level.
func TraceDebug(ctx context.Context, msg string, attrs ...slog.Attr) {
	getTraceLogFromContext(ctx).LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}
