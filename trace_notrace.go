//go:build notrace

package declari

import (
	"context"
	"log/slog"
)

// No-op implementations when built with -tags notrace

const TracingEnabled = false

var nullLogger = slog.New(slog.DiscardHandler)

func WithTraceLogger(ctx context.Context, _ *slog.Logger) context.Context {
	return ctx
}

func getTraceLogFromContext(context.Context) *slog.Logger {
	return nullLogger
}

type Span interface {
	End()
}

type noOpSpan struct{}

func (noOpSpan) End() {}

func StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, noOpSpan{}
}

func TraceError(context.Context, error, string, ...slog.Attr) {}

func TraceDebug(context.Context, string, ...slog.Attr) {}
