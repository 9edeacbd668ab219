package parser_test

import (
	"context"
	"testing"

	"github.com/lestrrat-go/declari"
	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/parser"
	"github.com/lestrrat-go/declari/sax"
	"github.com/stretchr/testify/require"
)

const testNS = "urn:declari:test"

type fakeResolver struct {
	engines map[string]bool
}

func (r fakeResolver) URIIdentifier(uri string) (int, error) {
	if uri == testNS {
		return 7, nil
	}
	return 0, declari.ErrUnknownNamespace
}

func (r fakeResolver) ExpressionEngine(name string) (declari.ExpressionEngine, error) {
	if r.engines[name] {
		return nil, nil
	}
	return nil, declari.ErrUnknownExpressionEngine
}

func (fakeResolver) DefaultExpressionEngine() string {
	return "parse"
}

func build(t *testing.T, src string) *node.Document {
	t.Helper()
	b := parser.NewTreeBuilder(fakeResolver{engines: map[string]bool{"parse": true, "str": true}})
	require.NoError(t, parser.Parse(context.Background(), []byte(src), b))
	doc := b.Document()
	require.NotNil(t, doc)
	return doc
}

func children(t *testing.T, c node.Container) []node.Node {
	t.Helper()
	return c.ChildNodes()
}

func TestTreeBuilder(t *testing.T) {
	t.Run("Elements and expressions", func(t *testing.T) {
		doc := build(t, `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns:d="urn:declari:test" xmlns:x="urn:other">
<d:if test="$a">Hello {$name}, {str:bye}!</d:if><a href="http://example.com" title="parse:$t" alt="null:parse:x" x:id="1"/></html>`)

		root := doc.RootElement()
		require.NotNil(t, root)
		require.Equal(t, "html", root.Name())
		_, ok := root.URIIdentifier()
		require.False(t, ok)
		require.False(t, root.HasAttribute("xmlns:d"), "declarations of compiler namespaces are removed")
		decl, err := root.Attribute("xmlns:x")
		require.NoError(t, err)
		require.Equal(t, "urn:other", decl.String())

		kids := children(t, root)
		require.Len(t, kids, 3)

		ifEl, ok := kids[1].(*node.Element)
		require.True(t, ok)
		require.Equal(t, "d:if", ifEl.FullyQualifiedName())
		id, ok := ifEl.URIIdentifier()
		require.True(t, ok)
		require.Equal(t, 7, id)
		require.Equal(t, 3, ifEl.Line())

		test, err := ifEl.Attribute("test")
		require.NoError(t, err)
		require.False(t, test.IsDynamic(), "instruction attributes are left to the instruction")
		require.Equal(t, "$a", test.String())

		text, ok := ifEl.FirstChild().(*node.Text)
		require.True(t, ok)
		parts := text.ChildNodes()
		require.Len(t, parts, 5)
		require.Equal(t, "Hello ", parts[0].(*node.Cdata).String())
		e := parts[1].(*node.Expression)
		require.Equal(t, "$name", e.Source())
		require.Equal(t, "parse", e.Engine())
		require.Equal(t, ", ", parts[2].(*node.Cdata).String())
		e = parts[3].(*node.Expression)
		require.Equal(t, "bye", e.Source())
		require.Equal(t, "str", e.Engine())
		require.Equal(t, "!", parts[4].(*node.Cdata).String())

		a, ok := kids[2].(*node.Element)
		require.True(t, ok)
		require.True(t, a.IsEmpty())
		href, err := a.Attribute("href")
		require.NoError(t, err)
		require.Equal(t, "http://example.com", href.String(), "unknown engine prefixes stay literal")
		title, err := a.Attribute("title")
		require.NoError(t, err)
		_, expr := title.Value()
		require.NotNil(t, expr)
		require.Equal(t, "$t", expr.Source())
		require.Equal(t, "parse", expr.Engine())
		alt, err := a.Attribute("alt")
		require.NoError(t, err)
		require.Equal(t, "parse:x", alt.String())
		xid, err := a.Attribute("x:id")
		require.NoError(t, err)
		_, ok = xid.URIIdentifier()
		require.False(t, ok)
	})
	t.Run("Default namespace", func(t *testing.T) {
		doc := build(t, `<root xmlns="urn:declari:test"><child a="1"/></root>`)
		root := doc.RootElement()
		_, ok := root.URIIdentifier()
		require.True(t, ok)
		require.False(t, root.HasAttributes())
		child := root.FirstChild().(*node.Element)
		_, ok = child.URIIdentifier()
		require.True(t, ok)
		attr, err := child.Attribute("a")
		require.NoError(t, err)
		_, ok = attr.URIIdentifier()
		require.False(t, ok, "unprefixed attributes have no namespace")
	})
	t.Run("Character data", func(t *testing.T) {
		doc := build(t, `<p>a &lt; b &amp;&#x41;&#66;<![CDATA[<b>{$x}</b>]]>{ }</p>`)
		text := doc.RootElement().FirstChild().(*node.Text)
		parts := text.ChildNodes()
		require.Len(t, parts, 2)
		require.Equal(t, "a &lt; b &amp;AB", parts[0].(*node.Cdata).String())
		require.Equal(t, "<b>{$x}</b>{ }", parts[1].(*node.Cdata).String(), "CDATA is kept verbatim, blank braces are not expressions")
	})
	t.Run("Code and comments", func(t *testing.T) {
		doc := build(t, `<!DOCTYPE html>
<!-- dropped -->
<p>a<!-- x -->b<?php echo 1; ?><?other?></p>`)
		kids := doc.ChildNodes()
		require.Len(t, kids, 2)
		dt := kids[0].(*node.Code)
		require.Equal(t, node.CodePlain, dt.Kind())
		require.Equal(t, "<!DOCTYPE html>", dt.Content())

		p := doc.RootElement()
		pk := p.ChildNodes()
		require.Len(t, pk, 3)
		require.Equal(t, "ab", pk[0].(*node.Text).FirstChild().(*node.Cdata).String(), "comments do not split text")
		php := pk[1].(*node.Code)
		require.Equal(t, node.CodeProgram, php.Kind())
		require.Equal(t, "echo 1; ", php.Content())
		require.Equal(t, "<?other?>", pk[2].(*node.Code).Content())
	})
	t.Run("Expression lines", func(t *testing.T) {
		doc := build(t, "<p>\n\n{$a}\n{$b}</p>")
		text := doc.RootElement().FirstChild().(*node.Text)
		var lines []int
		for n := range text.Children() {
			if e, ok := n.(*node.Expression); ok {
				lines = append(lines, e.Line())
			}
		}
		require.Equal(t, []int{3, 4}, lines)
	})
	t.Run("Encoding", func(t *testing.T) {
		src := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><p>caf`), 0xE9, '<', '/', 'p', '>')
		doc := build(t, string(src))
		text := doc.RootElement().FirstChild().(*node.Text)
		require.Equal(t, "café", text.FirstChild().(*node.Cdata).String())
	})
	t.Run("Multi-byte text", func(t *testing.T) {
		doc := build(t, "<p title=\"日本\">héllo {$ü} wörld</p>")
		root := doc.RootElement()
		title, err := root.Attribute("title")
		require.NoError(t, err)
		require.Equal(t, "日本", title.String())
		parts := root.FirstChild().(*node.Text).ChildNodes()
		require.Len(t, parts, 3)
		require.Equal(t, "héllo ", parts[0].(*node.Cdata).String())
		require.Equal(t, "$ü", parts[1].(*node.Expression).Source())
		require.Equal(t, " wörld", parts[2].(*node.Cdata).String())
	})
	t.Run("URL attribute", func(t *testing.T) {
		doc := build(t, `<a href="http://x"/>`)
		href, err := doc.RootElement().Attribute("href")
		require.NoError(t, err)
		require.False(t, href.IsDynamic())
		require.Equal(t, "http://x", href.String())
	})
	t.Run("Without resolver", func(t *testing.T) {
		b := parser.NewTreeBuilder(nil)
		require.NoError(t, parser.Parse(context.Background(), []byte(`<p a="http://x">{$v}</p>`), b))
		root := b.Document().RootElement()
		a, err := root.Attribute("a")
		require.NoError(t, err)
		require.True(t, a.IsDynamic())
		e := root.FirstChild().(*node.Text).FirstChild().(*node.Expression)
		require.Empty(t, e.Engine(), "the engine is left to the compiler default")
	})
}

func TestParseErrors(t *testing.T) {
	testcases := []struct {
		name string
		src  string
		err  error
		line int
	}{
		{name: "Empty", src: "   ", err: parser.ErrEmptyDocument},
		{name: "Mismatch", src: "<a>\n<b></a>", err: parser.ErrTagNameMismatch, line: 2},
		{name: "Unclosed", src: "<a><b>", err: parser.ErrPrematureEOF},
		{name: "Trailing", src: "<a/><b/>", err: parser.ErrDocumentEnd},
		{name: "Entity", src: "<a>&nbsp;</a>", err: parser.ErrUndeclaredEntity},
		{name: "Semicolon", src: "<a>&amp</a>", err: parser.ErrSemicolonRequired},
		{name: "Equal sign", src: `<a b"c"/>`, err: parser.ErrEqualSignRequired},
		{name: "Attribute quote", src: `<a b=c/>`, err: parser.ErrAttrValueRequired},
		{name: "Lt in attribute", src: `<a b="<"/>`, err: parser.ErrLtInAttribute},
		{name: "Unbound prefix", src: "<a>\n\n<x:b/></a>", err: parser.ErrUnboundPrefix, line: 3},
		{name: "Duplicate attribute", src: `<a b="1" b="2"/>`, err: node.ErrDuplicateAttribute},
		{name: "CDATA end", src: "<a>]]></a>", err: parser.ErrMisplacedCDATAEnd},
		{name: "Comment", src: "<a><!-- a -- b --></a>", err: parser.ErrHyphenInComment},
		{name: "XML declaration", src: `<a><?xml version="1.0"?></a>`, err: parser.ErrMisplacedXMLDecl},
		{name: "Version", src: `<?xml version="2.0"?><a/>`, err: parser.ErrInvalidVersionNum},
		{name: "Encoding", src: `<?xml version="1.0" encoding="klingon"?><a/>`, err: parser.ErrParseError{}},
		{name: "Char ref", src: "<a>&#0;</a>", err: parser.ErrInvalidCharRef},
		{name: "Invalid UTF-8", src: "<a>\xff</a>", err: parser.ErrInvalidChar},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			b := parser.NewTreeBuilder(fakeResolver{})
			err := parser.Parse(context.Background(), []byte(tc.src), b)
			require.Error(t, err)

			var perr parser.ErrParseError
			require.ErrorAs(t, err, &perr)
			if _, ok := tc.err.(parser.ErrParseError); !ok {
				require.ErrorIs(t, err, tc.err)
			}
			if tc.line > 0 {
				require.Equal(t, tc.line, perr.LineNumber)
			}
		})
	}
}

func TestEvents(t *testing.T) {
	var events []string
	s := sax.New()
	s.StartElementHandler = func(_ context.Context, e sax.ParsedElement) error {
		events = append(events, "start:"+e.Name())
		for _, a := range e.Attributes() {
			events = append(events, "attr:"+a.Name()+"="+a.Value())
		}
		return nil
	}
	s.EndElementHandler = func(_ context.Context, e sax.ParsedElement) error {
		events = append(events, "end:"+e.Name())
		return nil
	}
	s.CharactersHandler = func(_ context.Context, data []byte) error {
		events = append(events, "chars:"+string(data))
		return nil
	}
	s.XMLDeclHandler = func(_ context.Context, version, enc string, standalone bool) error {
		require.Equal(t, "1.0", version)
		require.Empty(t, enc)
		require.True(t, standalone)
		events = append(events, "decl")
		return nil
	}

	src := "<?xml version='1.0' standalone='yes'?><a x='1\t2'>t&gt;<b/></a>"
	require.NoError(t, parser.Parse(context.Background(), []byte(src), s))
	require.Equal(t, []string{
		"decl",
		"start:a", "attr:x=1 2",
		"chars:t", "chars:>",
		"start:b", "end:b",
		"end:a",
	}, events)
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := parser.Parse(ctx, []byte("<a><b/></a>"), parser.NewTreeBuilder(nil))
	require.ErrorIs(t, err, context.Canceled)
}

type nopEngine struct{}

func (nopEngine) SetCompiler(*declari.Compiler) {}
func (nopEngine) Parse(expr string) (declari.CompiledExpression, error) {
	return declari.CompiledExpression{Bare: expr, Escaped: expr}, nil
}
func (nopEngine) Dispose() {}

func TestXML(t *testing.T) {
	c, err := declari.New(nil)
	require.NoError(t, err)
	nsid := c.AddNamespaceURI(testNS)
	c.AddExpressionEngine("parse", nopEngine{})
	c.SetDefaultExpressionEngine("parse")

	p := parser.New()
	p.SetCompiler(c)
	defer p.Dispose()

	doc, err := p.Parse(context.Background(), "page", []byte(`<d:root xmlns:d="urn:declari:test">{$x}</d:root>`))
	require.NoError(t, err)
	defer node.Dispose(doc)

	id, ok := doc.RootElement().URIIdentifier()
	require.True(t, ok)
	require.Equal(t, nsid, id)
	e := doc.RootElement().FirstChild().(*node.Text).FirstChild().(*node.Expression)
	require.Equal(t, "parse", e.Engine())

	_, err = p.Parse(context.Background(), "broken", []byte(`<a>`))
	require.Error(t, err)
}
