package node_test

import (
	"testing"

	"github.com/lestrrat-go/declari/node"
	"github.com/stretchr/testify/require"
)

func mustElement(t *testing.T, ns, name string) *node.Element {
	t.Helper()
	e, err := node.NewElement(ns, name)
	require.NoError(t, err)
	return e
}

func childNames(c node.Container) []string {
	var names []string
	for e := range c.Children() {
		names = append(names, node.Name(e))
	}
	return names
}

func TestElement(t *testing.T) {
	t.Run("EmptyName", func(t *testing.T) {
		_, err := node.NewElement("opt", "")
		require.ErrorIs(t, err, node.ErrEmptyName)
	})

	t.Run("Names", func(t *testing.T) {
		e := mustElement(t, "opt", "if")
		require.Equal(t, "if", e.Name())
		require.Equal(t, "opt", e.Namespace())
		require.Equal(t, "opt:if", e.FullyQualifiedName())

		plain := mustElement(t, "", "div")
		require.Equal(t, "div", plain.FullyQualifiedName())
		_, ok := plain.URIIdentifier()
		require.False(t, ok)

		plain.SetURIIdentifier(0)
		id, ok := plain.URIIdentifier()
		require.True(t, ok)
		require.Equal(t, 0, id)
	})

	t.Run("Attributes", func(t *testing.T) {
		e := mustElement(t, "", "a")
		_, err := e.SetAttribute("", "href", "/index")
		require.NoError(t, err)
		_, err = e.SetAttribute("opt", "if", "x")
		require.NoError(t, err)
		_, err = e.SetAttribute("", "href", "/other")
		require.ErrorIs(t, err, node.ErrDuplicateAttribute)

		attrs := e.Attributes(nil)
		require.Len(t, attrs, 2)
		require.Equal(t, "href", attrs[0].FullyQualifiedName())
		require.Equal(t, "opt:if", attrs[1].FullyQualifiedName())
		require.Equal(t, e, attrs[0].Element())

		attr, err := e.Attribute("href")
		require.NoError(t, err)
		require.Equal(t, "/index", attr.String())

		_, err = e.Attribute("missing")
		require.ErrorIs(t, err, node.ErrAttributeNotFound)

		require.NoError(t, e.RemoveAttribute("href"))
		require.False(t, e.HasAttribute("href"))
		require.Nil(t, attr.Element())
		require.ErrorIs(t, e.RemoveAttribute("href"), node.ErrAttributeNotFound)

		e.RemoveAttributes()
		require.False(t, e.HasAttributes())
	})

	t.Run("ExpressionAttribute", func(t *testing.T) {
		e := mustElement(t, "", "a")
		attr, err := node.NewAttribute("", "title")
		require.NoError(t, err)
		attr.SetExpression(node.NewExpression("$title", "parse"))
		require.NoError(t, e.AddAttribute(attr))

		s, ex := attr.Value()
		require.Empty(t, s)
		require.NotNil(t, ex)
		require.True(t, attr.IsDynamic())

		attr.Clear()
		s, ex = attr.Value()
		require.Empty(t, s)
		require.Nil(t, ex)
	})

	t.Run("ElementsByTagNameNS", func(t *testing.T) {
		root := mustElement(t, "", "root")
		a := mustElement(t, "opt", "section")
		a.SetURIIdentifier(1)
		b := mustElement(t, "", "div")
		c := mustElement(t, "opt", "section")
		c.SetURIIdentifier(1)
		d := mustElement(t, "other", "section")
		d.SetURIIdentifier(2)

		require.NoError(t, root.AppendChild(b))
		require.NoError(t, root.AppendChild(a))
		require.NoError(t, b.AppendChild(c))
		require.NoError(t, b.AppendChild(d))

		found := root.ElementsByTagNameNS(1, "section")
		require.Equal(t, []*node.Element{a, c}, found)
	})
}
