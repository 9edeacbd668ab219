package stack_test

import (
	"testing"

	"github.com/lestrrat-go/declari/internal/stack"
	"github.com/stretchr/testify/require"
)

type named string

func (n named) Key() string { return string(n) }

func TestSimple(t *testing.T) {
	var s stack.Simple[int]
	s.Push(1)
	s.Push(2)
	s.Push(3)

	top, ok := s.Top()
	require.True(t, ok)
	require.Equal(t, 3, top)
	require.Equal(t, []int{2, 3}, []int(s.Peek(2)))

	v, ok := s.PopTop()
	require.True(t, ok)
	require.Equal(t, 3, v)

	s.Pop(5)
	require.Equal(t, 0, s.Len())
	_, ok = s.PopTop()
	require.False(t, ok)
}

func TestUnique(t *testing.T) {
	var s stack.Unique[named]
	require.NoError(t, s.Push("a"))
	require.NoError(t, s.Push("b"))
	require.ErrorIs(t, s.Push("a"), stack.ErrDuplicateItem)
	require.Equal(t, []string{"a", "b"}, s.Keys())

	_, ok := s.Lookup("b")
	require.True(t, ok)

	item, ok := s.PopTop()
	require.True(t, ok)
	require.Equal(t, named("b"), item)
	_, ok = s.Lookup("b")
	require.False(t, ok)
}
