package parser

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/lestrrat-go/declari"
	"github.com/lestrrat-go/declari/internal/stack"
	"github.com/lestrrat-go/declari/internal/stack/nsstack"
	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/sax"
)

const (
	XMLNamespace   = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
)

// nullEngine marks attribute values that only look like expressions.
const nullEngine = "null"

var expressionTag = regexp.MustCompile(`\{([^}]*)\}`)

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Resolver supplies what the tree builder needs from the compiler.
// *declari.Compiler implements it.
type Resolver interface {
	URIIdentifier(uri string) (int, error)
	ExpressionEngine(name string) (declari.ExpressionEngine, error)
	DefaultExpressionEngine() string
}

// TreeBuilder is a sax.Handler that assembles a template tree.
//
// Character data is stored ready for output: markup characters that
// were written as references are escaped again, while CDATA sections
// are kept verbatim. Expressions written as {...} in character data
// become Expression nodes inside the enclosing Text node. Attribute
// values of the form engine:source become expressions as well, unless
// the engine is "null", which marks a literal.
//
// Elements and attributes bound to a namespace URI known to the
// resolver are tagged with its identifier, and the declarations of such
// namespaces are removed from the tree.
type TreeBuilder struct {
	resolver Resolver
	locator  sax.DocumentLocator
	doc      *node.Document
	parents  stack.Simple[node.Container]
	ns       nsstack.Stack
	declared stack.Simple[int]
	text     strings.Builder
	textLine int
}

var _ sax.Handler = (*TreeBuilder)(nil)

// NewTreeBuilder creates a builder. r may be nil, in which case no
// namespace is special and every engine prefix is taken at face value.
func NewTreeBuilder(r Resolver) *TreeBuilder {
	return &TreeBuilder{
		resolver: r,
		ns:       nsstack.New(),
	}
}

// Document returns the tree built so far.
func (b *TreeBuilder) Document() *node.Document {
	return b.doc
}

func (b *TreeBuilder) line() int {
	if b.locator == nil {
		return 0
	}
	return b.locator.LineNumber()
}

func (b *TreeBuilder) current() node.Container {
	c, _ := b.parents.Top()
	return c
}

func (b *TreeBuilder) SetDocumentLocator(_ context.Context, loc sax.DocumentLocator) error {
	b.locator = loc
	return nil
}

func (b *TreeBuilder) StartDocument(context.Context) error {
	b.doc = node.NewXMLDocument()
	b.doc.SetLine(b.line())
	b.parents.Push(b.doc)
	b.ns.Push("xml", XMLNamespace)
	b.declared.Push(1)
	return nil
}

func (b *TreeBuilder) EndDocument(context.Context) error {
	if err := b.flushText(); err != nil {
		return err
	}
	b.parents.Pop()
	if n, ok := b.declared.PopTop(); ok {
		b.ns.Pop(n)
	}
	return nil
}

func (b *TreeBuilder) XMLDecl(context.Context, string, string, bool) error {
	return nil
}

func (b *TreeBuilder) DocType(_ context.Context, raw string) error {
	if err := b.flushText(); err != nil {
		return err
	}
	c := node.NewCode(node.CodePlain, raw)
	c.SetLine(b.line())
	return b.current().AppendChild(c)
}

// ProcessingInstruction keeps "php" instructions as program code and
// every other instruction as plain output.
func (b *TreeBuilder) ProcessingInstruction(_ context.Context, target, data string) error {
	if err := b.flushText(); err != nil {
		return err
	}
	var c *node.Code
	switch {
	case target == "php":
		c = node.NewCode(node.CodeProgram, data)
	case data == "":
		c = node.NewCode(node.CodePlain, "<?"+target+"?>")
	default:
		c = node.NewCode(node.CodePlain, "<?"+target+" "+data+"?>")
	}
	c.SetLine(b.line())
	return b.current().AppendChild(c)
}

// Comment drops template comments.
func (b *TreeBuilder) Comment(context.Context, []byte) error {
	return b.flushText()
}

func (b *TreeBuilder) Characters(_ context.Context, data []byte) error {
	if b.text.Len() == 0 {
		b.textLine = b.line()
	}
	b.text.Write(data)
	return nil
}

func (b *TreeBuilder) CDATABlock(_ context.Context, data []byte) error {
	if err := b.flushText(); err != nil {
		return err
	}
	cd := node.NewCdata(string(data))
	cd.SetLine(b.line())
	return b.appendToText(b.current(), cd, b.line())
}

func (b *TreeBuilder) StartElement(_ context.Context, pe sax.ParsedElement) error {
	if err := b.flushText(); err != nil {
		return err
	}

	attrs := pe.Attributes()
	n, err := b.declareNamespaces(attrs)
	if err != nil {
		return err
	}
	b.declared.Push(n)

	el, err := node.NewElement(pe.Prefix(), pe.LocalName())
	if err != nil {
		return err
	}
	el.SetLine(b.line())
	el.SetEmpty(pe.IsEmpty())

	uri, bound := b.ns.Lookup(pe.Prefix())
	if pe.Prefix() != "" && !bound {
		return fmt.Errorf("element '%s': %w", pe.Name(), ErrUnboundPrefix)
	}
	if id, ok := b.uriIdentifier(uri); ok {
		el.SetURIIdentifier(id)
	}

	for _, pa := range attrs {
		attr, err := b.buildAttribute(pa)
		if err != nil {
			return fmt.Errorf("element '%s': %w", pe.Name(), err)
		}
		if attr == nil {
			continue
		}
		if err := el.AddAttribute(attr); err != nil {
			return err
		}
	}

	if err := b.current().AppendChild(el); err != nil {
		return err
	}
	b.parents.Push(el)
	return nil
}

func (b *TreeBuilder) EndElement(context.Context, sax.ParsedElement) error {
	if err := b.flushText(); err != nil {
		return err
	}
	b.parents.Pop()
	if n, ok := b.declared.PopTop(); ok {
		b.ns.Pop(n)
	}
	return nil
}

// declareNamespaces pushes the namespace declarations found among
// attrs and returns how many there were.
func (b *TreeBuilder) declareNamespaces(attrs []sax.ParsedAttribute) (int, error) {
	n := 0
	for _, a := range attrs {
		switch {
		case a.Prefix() == "" && a.LocalName() == "xmlns":
			b.ns.Push("", a.Value())
		case a.Prefix() == "xmlns":
			if a.Value() == "" || a.LocalName() == "xmlns" {
				return n, fmt.Errorf("'%s': %w", a.Name(), ErrInvalidNamespaceDecl)
			}
			b.ns.Push(a.LocalName(), a.Value())
		default:
			continue
		}
		n++
	}
	return n, nil
}

func (b *TreeBuilder) uriIdentifier(uri string) (int, bool) {
	if b.resolver == nil || uri == "" {
		return 0, false
	}
	id, err := b.resolver.URIIdentifier(uri)
	if err != nil {
		return 0, false
	}
	return id, true
}

// buildAttribute converts a parsed attribute. It returns nil for
// declarations of namespaces the compiler handles.
func (b *TreeBuilder) buildAttribute(pa sax.ParsedAttribute) (*node.Attribute, error) {
	prefix, local := pa.Prefix(), pa.LocalName()

	isDecl := prefix == "xmlns" || (prefix == "" && local == "xmlns")
	if isDecl {
		if _, ok := b.uriIdentifier(pa.Value()); ok {
			return nil, nil
		}
		attr, err := node.NewAttribute(prefix, local)
		if err != nil {
			return nil, err
		}
		attr.SetString(pa.Value())
		attr.SetLine(b.line())
		return attr, nil
	}

	attr, err := node.NewAttribute(prefix, local)
	if err != nil {
		return nil, err
	}
	attr.SetLine(b.line())

	// unprefixed attributes never belong to the default namespace
	if prefix != "" {
		uri, ok := b.ns.Lookup(prefix)
		if !ok {
			return nil, fmt.Errorf("attribute '%s': %w", pa.Name(), ErrUnboundPrefix)
		}
		if id, ok := b.uriIdentifier(uri); ok {
			attr.SetURIIdentifier(id)
		}
	}

	engine, source, ok := b.splitExpression(pa.Value())
	switch {
	case !ok:
		attr.SetString(pa.Value())
	case engine == nullEngine:
		attr.SetString(source)
	default:
		e := node.NewExpression(source, engine)
		e.SetLine(b.line())
		attr.SetExpression(e)
	}
	return attr, nil
}

// splitExpression recognizes the engine prefix of a value. With a
// resolver attached, prefixes that do not name a registered engine
// (say, the scheme of a URL) leave the value alone.
func (b *TreeBuilder) splitExpression(v string) (engine, source string, ok bool) {
	engine, source, ok = declari.SplitEnginePrefix(v)
	if !ok || engine == nullEngine || b.resolver == nil {
		return engine, source, ok
	}
	if _, err := b.resolver.ExpressionEngine(engine); err != nil {
		return "", v, false
	}
	return engine, source, true
}

func (b *TreeBuilder) defaultEngine() string {
	if b.resolver == nil {
		return ""
	}
	return b.resolver.DefaultExpressionEngine()
}

// flushText turns the buffered character data into Text content,
// extracting the {...} expressions.
func (b *TreeBuilder) flushText() error {
	if b.text.Len() == 0 {
		return nil
	}
	s := b.text.String()
	b.text.Reset()

	parent := b.current()
	line := b.textLine
	offset := 0
	for _, m := range expressionTag.FindAllStringSubmatchIndex(s, -1) {
		inner := s[m[2]:m[3]]
		if strings.TrimSpace(inner) == "" {
			continue
		}
		if m[0] > offset {
			if err := b.appendText(parent, s[offset:m[0]], line); err != nil {
				return err
			}
		}
		exprLine := line + strings.Count(s[:m[0]], "\n")
		offset = m[1]

		engine, source, ok := b.splitExpression(inner)
		if !ok {
			engine, source = b.defaultEngine(), inner
		}
		if engine == nullEngine {
			if err := b.appendText(parent, source, exprLine); err != nil {
				return err
			}
			continue
		}
		e := node.NewExpression(source, engine)
		e.SetLine(exprLine)
		if err := b.appendToText(parent, e, exprLine); err != nil {
			return err
		}
	}
	if offset < len(s) {
		return b.appendText(parent, s[offset:], line+strings.Count(s[:offset], "\n"))
	}
	return nil
}

// appendText adds character data to the trailing Text node of parent,
// creating one if needed.
func (b *TreeBuilder) appendText(parent node.Container, data string, line int) error {
	data = textEscaper.Replace(data)
	if t, ok := parent.LastChild().(*node.Text); ok {
		t.AppendData(data)
		return nil
	}
	t := node.NewText(data)
	t.SetLine(line)
	if cd, ok := t.FirstChild().(*node.Cdata); ok {
		cd.SetLine(line)
	}
	return parent.AppendChild(t)
}

func (b *TreeBuilder) appendToText(parent node.Container, n node.Node, line int) error {
	if t, ok := parent.LastChild().(*node.Text); ok {
		return t.AppendChild(n)
	}
	t := node.NewText("")
	t.SetLine(line)
	if err := t.AppendChild(n); err != nil {
		return err
	}
	return parent.AppendChild(t)
}
