package orderedmap_test

import (
	"testing"

	"github.com/lestrrat-go/declari/internal/orderedmap"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	t.Run("insertion order", func(t *testing.T) {
		m := orderedmap.New[string, int]()
		require.NoError(t, m.Set("c", 3))
		require.NoError(t, m.Set("a", 1))
		require.NoError(t, m.Set("b", 2))

		var keys []string
		for k := range m.Range() {
			keys = append(keys, k)
		}
		require.Equal(t, []string{"c", "a", "b"}, keys)
		require.Equal(t, 3, m.Len())
	})
	t.Run("duplicate", func(t *testing.T) {
		m := orderedmap.New[string, int]()
		require.NoError(t, m.Set("a", 1))
		require.ErrorIs(t, m.Set("a", 2), orderedmap.ErrDuplicateEntry)
		v, ok := m.Get("a")
		require.True(t, ok)
		require.Equal(t, 1, v)
	})
	t.Run("delete", func(t *testing.T) {
		m := orderedmap.New[string, int]()
		require.NoError(t, m.Set("a", 1))
		require.NoError(t, m.Set("b", 2))
		require.NoError(t, m.Delete("a"))
		require.ErrorIs(t, m.Delete("a"), orderedmap.ErrEntryNotFound)
		require.False(t, m.Has("a"))
		require.Equal(t, 1, m.Len())

		m.Clear()
		require.Equal(t, 0, m.Len())
	})
}
