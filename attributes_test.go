package declari_test

import (
	"testing"

	"github.com/lestrrat-go/declari"
	"github.com/lestrrat-go/declari/node"
	"github.com/stretchr/testify/require"
)

func TestSplitEnginePrefix(t *testing.T) {
	testcases := []struct {
		value  string
		engine string
		expr   string
		ok     bool
	}{
		{value: "parse:$a", engine: "parse", expr: "$a", ok: true},
		{value: "str:hello world", engine: "str", expr: "hello world", ok: true},
		{value: "null:literal", engine: "null", expr: "literal", ok: true},
		{value: "a:b", expr: "a:b"},
		{value: "foo::bar", expr: "foo::bar"},
		{value: "$a + 1", expr: "$a + 1"},
		{value: "http://example.com", engine: "http", expr: "//example.com", ok: true},
	}
	for _, tc := range testcases {
		t.Run(tc.value, func(t *testing.T) {
			engine, expr, ok := declari.SplitEnginePrefix(tc.value)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.engine, engine)
			require.Equal(t, tc.expr, expr)
		})
	}
}

func TestDetectExpression(t *testing.T) {
	c, err := declari.New(nil)
	require.NoError(t, err)
	c.SetDefaultExpressionEngine("parse")

	engine, src := c.DetectExpression("str:x", "")
	require.Equal(t, "str", engine)
	require.Equal(t, "x", src)

	engine, _ = c.DetectExpression("x", "str")
	require.Equal(t, "str", engine, "the suggestion beats the default")

	engine, _ = c.DetectExpression("x", "")
	require.Equal(t, "parse", engine)

	cfg := declari.DefaultConfig()
	cfg.ExpressionEngine = "str"
	c, err = declari.New(cfg)
	require.NoError(t, err)
	c.SetDefaultExpressionEngine("parse")
	engine, _ = c.DetectExpression("x", "")
	require.Equal(t, "str", engine, "the configuration beats the language default")
}

func TestExtractAttributes(t *testing.T) {
	c, err := declari.New(nil)
	require.NoError(t, err)
	c.AddExpressionEngine("up", upperEngine{})
	c.SetDefaultExpressionEngine("up")
	id := c.AddNamespaceURI(testNS)

	build := func(t *testing.T, attrs map[string]string) *node.Element {
		el := mustElement(t, "t", "instr")
		for _, name := range []string{"name", "count", "flag", "test", "extra", "other"} {
			if v, ok := attrs[name]; ok {
				_, err := el.SetAttribute("", name, v)
				require.NoError(t, err)
			}
		}
		special, err := node.NewAttribute("t", "skipme")
		require.NoError(t, err)
		special.SetURIIdentifier(id)
		require.NoError(t, el.AddAttribute(special))
		return el
	}
	specs := []declari.AttrSpec{
		{Name: "name", Required: true, Kind: declari.AttrID},
		{Name: "count", Kind: declari.AttrNumber, Default: "1"},
		{Name: "flag", Kind: declari.AttrBoolean, Default: false},
		{Name: "test", Kind: declari.AttrExpression},
	}

	t.Run("Values", func(t *testing.T) {
		el := build(t, map[string]string{"name": "my.macro_1", "count": "-2.5", "flag": "yes", "test": "abc"})
		got, err := c.ExtractAttributes(el, specs, nil)
		require.NoError(t, err)
		require.Equal(t, "my.macro_1", got.String("name"))
		require.Equal(t, "-2.5", got.String("count"))
		require.True(t, got.Bool("flag"))
		expr, ok := got.Expression("test")
		require.True(t, ok)
		require.Equal(t, "ABC", expr.Bare)
		require.Empty(t, got.Unknown)
	})
	t.Run("Defaults", func(t *testing.T) {
		el := build(t, map[string]string{"name": "x"})
		got, err := c.ExtractAttributes(el, specs, nil)
		require.NoError(t, err)
		require.Equal(t, "1", got.String("count"))
		require.False(t, got.Bool("flag"))
		require.False(t, got.Has("test"))
	})
	t.Run("Required", func(t *testing.T) {
		el := build(t, nil)
		_, err := c.ExtractAttributes(el, specs, nil)
		require.ErrorIs(t, err, declari.ErrRequiredAttribute)
	})
	t.Run("Unknown", func(t *testing.T) {
		el := build(t, map[string]string{"name": "x", "extra": "1", "other": "2"})
		got, err := c.ExtractAttributes(el, specs, &declari.AttrSpec{Kind: declari.AttrString})
		require.NoError(t, err)
		require.Equal(t, []declari.ExtractedAttribute{
			{Name: "extra", Value: "1"},
			{Name: "other", Value: "2"},
		}, got.Unknown, "special attributes are never reported")
	})
	t.Run("Invalid", func(t *testing.T) {
		for _, attrs := range []map[string]string{
			{"name": "not an id"},
			{"name": "x", "count": "many"},
			{"name": "x", "flag": "maybe"},
			{"name": "x", "test": "   "},
		} {
			_, err := c.ExtractAttributes(build(t, attrs), specs, nil)
			require.ErrorIs(t, err, declari.ErrInvalidAttributeValue, "%v", attrs)
		}
		_, err := c.ExtractAttributes(build(t, map[string]string{"name": "x"}), []declari.AttrSpec{{Name: "name", Kind: declari.AttrKind(99)}}, nil)
		require.ErrorIs(t, err, declari.ErrInvalidAttributeSpec)
	})
	t.Run("EmptyID", func(t *testing.T) {
		el := build(t, map[string]string{"name": ""})
		got, err := c.ExtractAttributes(el, []declari.AttrSpec{{Name: "name", Kind: declari.AttrEmptyID}}, nil)
		require.NoError(t, err)
		require.Equal(t, "", got.String("name"))
	})
}
