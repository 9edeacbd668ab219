package props_test

import (
	"testing"

	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/props"
	"github.com/stretchr/testify/require"
)

func TestManager(t *testing.T) {
	m := props.NewManager(props.NewProperties)
	a, err := node.NewElement("", "a")
	require.NoError(t, err)
	b := node.NewText("b")

	pa := m.Get(a)
	require.Same(t, pa, m.Get(a))
	require.NotSame(t, pa, m.Get(b))
	require.Equal(t, 2, m.Len())

	pa.Set("x", 1)
	_, ok := m.Lookup(node.NewCdata("c"))
	require.False(t, ok)
	require.Equal(t, 2, m.Len())

	m.Forget(b)
	require.Equal(t, 1, m.Len())

	m.Dispose()
	require.Equal(t, 0, m.Len())
	require.Equal(t, 0, pa.Len())
	require.Equal(t, 0, m.Get(a).Len())
}

func TestProperties(t *testing.T) {
	p := props.NewProperties()
	_, ok := p.Get(props.PostProcess)
	require.False(t, ok)
	require.False(t, p.Bool(props.PostProcess))

	p.Set(props.PostProcess, true)
	p.Set(props.LinkName, "div")
	p.Set("depth", 3)
	require.True(t, p.Bool(props.PostProcess))
	require.Equal(t, "div", p.String(props.LinkName))
	require.Equal(t, 3, p.Int("depth"))
	require.Empty(t, p.String("depth"))

	require.Equal(t, []string{"depth", props.LinkName, props.PostProcess}, p.Names())

	p.Delete(props.PostProcess)
	require.False(t, p.Bool(props.PostProcess))
}

func TestTags(t *testing.T) {
	tags := props.Tags()
	require.Equal(t, props.TagBefore, tags[0])
	require.Equal(t, "before", props.TagBefore.String())
	seen := make(map[string]struct{})
	for _, tag := range tags {
		name := tag.String()
		require.NotEmpty(t, name)
		seen[name] = struct{}{}
	}
	require.Len(t, seen, len(tags), "tag names are unique")
}

func TestCodeBuffers(t *testing.T) {
	t.Run("EmptyBuffer", func(t *testing.T) {
		c := props.NewCodeBuffers()
		require.Equal(t, "", c.Buffer(props.TagBefore))
		require.False(t, c.HasContent(props.TagBefore))
	})

	t.Run("Append", func(t *testing.T) {
		c := props.NewCodeBuffers()
		c.Append(props.TagBefore, "foo")
		require.Equal(t, " foo", c.Buffer(props.TagBefore))
		c.Append(props.TagBefore, "bar")
		require.Equal(t, " foo bar", c.Buffer(props.TagBefore))
		require.True(t, c.HasContent(props.TagBefore))
	})

	t.Run("Prepend", func(t *testing.T) {
		c := props.NewCodeBuffers()
		c.Prepend(props.TagBefore, "foo")
		require.Equal(t, "foo ", c.Buffer(props.TagBefore))
		c.Prepend(props.TagBefore, "bar")
		require.Equal(t, "bar foo ", c.Buffer(props.TagBefore))
	})

	t.Run("Copy", func(t *testing.T) {
		src := props.NewCodeBuffers()
		src.Append(props.TagBefore, "foo")

		dst := props.NewCodeBuffers()
		dst.Copy(src, props.TagBefore, props.TagBefore)
		require.Equal(t, " foo", dst.Buffer(props.TagBefore))

		merged := props.NewCodeBuffers()
		merged.Append(props.TagBefore, "bar")
		merged.Copy(src, props.TagBefore, props.TagBefore)
		require.Equal(t, " bar foo", merged.Buffer(props.TagBefore), "copied code is concatenated as it is")
	})

	t.Run("Link", func(t *testing.T) {
		c := props.NewCodeBuffers()
		require.Equal(t, "", c.Link(nil, false))
		require.Equal(t, "", c.Link([]props.LinkPart{props.Slot(props.TagBefore)}, false))

		c.Append(props.TagBefore, "if($a){")
		require.Equal(t, "<?php  if($a){ ?>", c.Link([]props.LinkPart{props.Slot(props.TagBefore), props.Slot(props.TagAfter)}, false))

		parts := []props.LinkPart{
			props.Slot(props.TagBefore),
			props.Literal("<p>"),
			props.Slot(props.TagAfter),
			props.Literal("</p>"),
		}
		require.Equal(t, "if($a){<p>", c.Link(parts, true))
		require.Equal(t, "<?php  if($a){ echo '<p>' ?>", c.Link(parts, false))
	})

	t.Run("Clear", func(t *testing.T) {
		c := props.NewCodeBuffers()
		c.Append(props.TagContent, "x")
		c.SetCodeType(props.CodeStatic)
		require.Equal(t, props.CodeStatic, c.CodeType())
		c.Clear()
		require.False(t, c.HasContent(props.TagContent))
		c.Dispose()
		require.Equal(t, props.CodeDynamic, c.CodeType())
	})
}
