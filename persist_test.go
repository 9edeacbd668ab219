package declari_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lestrrat-go/declari"
	"github.com/stretchr/testify/require"
)

func TestArtifactContent(t *testing.T) {
	art := &declari.Artifact{Output: "<p>hi</p>"}
	require.Equal(t, "<p>hi</p>", art.Content(), "no header without dependencies")
	deps, err := declari.ReadDependencies([]byte(art.Content()))
	require.NoError(t, err)
	require.Nil(t, deps)

	art.Dependencies = []string{"layout.tpl", "layouts:base.tpl"}
	content := art.Content()
	require.True(t, strings.HasSuffix(content, "<p>hi</p>"))
	deps, err = declari.ReadDependencies([]byte(content))
	require.NoError(t, err)
	require.Equal(t, art.Dependencies, deps)

	_, err = declari.ReadDependencies([]byte("<?php /* declari:dependencies [\"a\""))
	require.Error(t, err)
}

func TestDynamicBlocks(t *testing.T) {
	blocks := []string{"<?php echo $a; ?>", strings.Repeat("<?php echo $b; ?>", 64)}
	for _, compress := range []bool{false, true} {
		data, err := declari.EncodeDynamicBlocks(blocks, compress)
		require.NoError(t, err)
		if compress {
			require.True(t, strings.HasPrefix(string(data), "DLZ4"))
		} else {
			require.True(t, strings.HasPrefix(string(data), "["))
		}
		decoded, err := declari.DecodeDynamicBlocks(data)
		require.NoError(t, err)
		require.Equal(t, blocks, decoded)
	}
	_, err := declari.DecodeDynamicBlocks([]byte("DLZ4"))
	require.ErrorIs(t, err, declari.ErrCorruptArtifact)

	t.Run("Oversized length", func(t *testing.T) {
		data := append([]byte("DLZ4"), 0xFF, 0xFF, 0xFF, 0xFF)
		data = append(data, 0x10, 'x')
		_, err := declari.DecodeDynamicBlocks(data)
		require.ErrorIs(t, err, declari.ErrCorruptArtifact)
	})
}

func TestWriteArtifact(t *testing.T) {
	dir := t.TempDir()
	art := &declari.Artifact{
		Path:          filepath.Join(dir, "nested", "index.php"),
		Output:        "out",
		DynamicBlocks: []string{"x"},
	}
	require.NoError(t, declari.WriteArtifact(art, false))
	content, err := os.ReadFile(art.Path)
	require.NoError(t, err)
	require.Equal(t, "out", string(content))
	_, err = os.Stat(art.Path + declari.DynamicSuffix)
	require.NoError(t, err)

	// a later build without dynamic blocks removes the stale file
	art.DynamicBlocks = nil
	require.NoError(t, declari.WriteArtifact(art, false))
	_, err = os.Stat(art.Path + declari.DynamicSuffix)
	require.ErrorIs(t, err, os.ErrNotExist)

	entries, err := os.ReadDir(filepath.Dir(art.Path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary files are left behind")
}

func TestSourceLimit(t *testing.T) {
	cfg := writeSources(t, "main")
	cfg.MaxSourceSize = "4B"
	require.NoError(t, cfg.Validate())
	c, _, _ := newTestCompiler(t, cfg)

	_, err := c.Build(t.Context(), "main")
	require.ErrorIs(t, err, declari.ErrSourceTooLarge)
}
