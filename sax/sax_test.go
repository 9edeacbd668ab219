package sax_test

import (
	"context"
	"testing"

	"github.com/lestrrat-go/declari/sax"
	"github.com/stretchr/testify/require"
)

func TestSAX2(t *testing.T) {
	var h sax.Handler = sax.New()
	ctx := context.Background()
	require.NoError(t, h.StartDocument(ctx), "unset callbacks are accepted")
	require.NoError(t, h.Characters(ctx, []byte("x")))

	var got []string
	s := sax.New()
	s.CharactersHandler = func(_ context.Context, data []byte) error {
		got = append(got, "chars:"+string(data))
		return nil
	}
	s.ProcessingInstructionHandler = func(_ context.Context, target, data string) error {
		got = append(got, "pi:"+target+":"+data)
		return nil
	}
	s.CommentHandler = func(context.Context, []byte) error {
		return sax.ErrHandlerUnspecified
	}

	require.NoError(t, s.Characters(ctx, []byte("hello")))
	require.NoError(t, s.ProcessingInstruction(ctx, "php", "echo 1;"))
	require.ErrorIs(t, s.Comment(ctx, nil), sax.ErrHandlerUnspecified)
	require.Equal(t, []string{"chars:hello", "pi:php:echo 1;"}, got)
}
