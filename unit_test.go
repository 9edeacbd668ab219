package declari_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/lestrrat-go/declari"
	"github.com/lestrrat-go/declari/props"
	"github.com/stretchr/testify/require"
)

func TestUnit(t *testing.T) {
	u := declari.NewUnit()
	u.AddDependency("a")
	u.AddDependency("b")
	u.AddDependency("a")
	deps := u.Dependencies()
	require.Equal(t, []string{"a", "b"}, deps)
	deps[0] = "changed"
	require.Equal(t, []string{"a", "b"}, u.Dependencies(), "callers get a copy")

	el := mustElement(t, "", "p")
	u.Properties().Get(el).Set(props.Dynamic, true)
	u.CodeBuffers().Get(el).Append(props.TagBefore, "x")
	require.Equal(t, 1, u.Properties().Len())

	u.Dispose()
	require.Zero(t, u.Properties().Len())
	require.Zero(t, u.CodeBuffers().Len())
	require.Empty(t, u.Dependencies())
}

func TestErrors(t *testing.T) {
	base := errors.New("bad value")
	nerr := &declari.NodeError{Name: "opt:if", Line: 3, Err: base}
	require.Equal(t, "'opt:if' (line 3): bad value", nerr.Error())
	require.ErrorIs(t, nerr, base)

	cerr := &declari.CompileError{Template: "index.tpl", Node: "opt:if", Line: 3, Err: nerr}
	require.Equal(t, "failed to compile 'index.tpl' at 'opt:if' (line 3): 'opt:if' (line 3): bad value", cerr.Error())
	require.ErrorIs(t, cerr, base)

	wrapped := fmt.Errorf("outer: %w", cerr)
	var got *declari.CompileError
	require.ErrorAs(t, wrapped, &got)
	require.Same(t, cerr, got)
}

func TestTraceLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := declari.WithTraceLogger(context.Background(), logger)
	require.Same(t, ctx, declari.WithTraceLogger(ctx, slog.Default()), "an existing logger is kept")

	_, span := declari.StartSpan(ctx, "work")
	span.End()
	declari.TraceError(ctx, errors.New("boom"), "failed")

	if !declari.TracingEnabled {
		require.Empty(t, buf.String())
		return
	}
	out := buf.String()
	require.Contains(t, out, "span=work")
	require.Contains(t, out, "elapsed=")
	require.Contains(t, out, "error=boom")
}
