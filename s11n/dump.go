// Package s11n renders template trees as text for debugging.
package s11n

import (
	"fmt"
	"io"
	"strconv"

	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/props"
	"github.com/lestrrat-go/declari/walker"
)

// Dumper writes an XML rendition of a template tree: one entry per
// node, with its visibility and, optionally, the code buffers and
// properties the compiler stages attached to it.
type Dumper struct {
	// Buffers adds the code buffers of every node, if set
	Buffers *props.Manager[*props.CodeBuffers]
	// Properties adds the properties of every node, if set
	Properties *props.Manager[*props.Properties]
	// Indent is written once per nesting level. Defaults to two spaces.
	Indent string
}

func (d *Dumper) DumpDoc(out io.Writer, doc *node.Document) error {
	return d.DumpNode(out, doc)
}

// DumpNode dumps n and everything below it. Attributes are dumped as
// part of their element and cannot be dumped on their own.
func (d *Dumper) DumpNode(out io.Writer, n node.Node) error {
	indent := d.Indent
	if indent == "" {
		indent = "  "
	}
	v := &dumpVisitor{
		cfg:    d,
		w:      &errWriter{w: out},
		indent: indent,
	}
	if err := walker.Walk(n, v); err != nil {
		return err
	}
	return v.w.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	var n int
	n, w.err = w.w.Write(p)
	return n, w.err
}

func (w *errWriter) WriteString(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

type field struct {
	name  string
	value string
}

type dumpVisitor struct {
	cfg    *Dumper
	w      *errWriter
	indent string
	depth  int
	// one entry per open dump entry, true if it was not self closed
	opened []bool
	attrs  []*node.Attribute
}

var _ walker.Visitor = (*dumpVisitor)(nil)

func visibility(n node.Node) field {
	return field{name: "visible", value: strconv.FormatBool(n.IsVisible())}
}

func (v *dumpVisitor) writeIndent() {
	for range v.depth {
		v.w.WriteString(v.indent)
	}
}

func (v *dumpVisitor) startTag(tag string, fields []field) {
	v.writeIndent()
	v.w.WriteString("<")
	v.w.WriteString(tag)
	for _, f := range fields {
		v.w.WriteString(" ")
		v.w.WriteString(f.name)
		v.w.WriteString(`="`)
		if v.w.err == nil {
			v.w.err = EscapeAttrValue(v.w, f.value)
		}
		v.w.WriteString(`"`)
	}
}

// open writes the start of an entry. Entries without inner lines are
// self closed.
func (v *dumpVisitor) open(tag string, fields []field, inner bool) {
	v.startTag(tag, fields)
	if !inner {
		v.w.WriteString("/>\n")
		v.opened = append(v.opened, false)
		return
	}
	v.w.WriteString(">\n")
	v.opened = append(v.opened, true)
	v.depth++
}

func (v *dumpVisitor) close(tag string) error {
	l := len(v.opened)
	if l == 0 {
		return v.w.err
	}
	opened := v.opened[l-1]
	v.opened = v.opened[:l-1]
	if opened {
		v.depth--
		v.writeIndent()
		v.w.WriteString("</")
		v.w.WriteString(tag)
		v.w.WriteString(">\n")
	}
	return v.w.err
}

// line writes a single entry with text content.
func (v *dumpVisitor) line(tag string, fields []field, content string) {
	v.startTag(tag, fields)
	v.w.WriteString(">")
	if v.w.err == nil {
		v.w.err = EscapeText(v.w, content, true)
	}
	v.w.WriteString("</")
	v.w.WriteString(tag)
	v.w.WriteString(">\n")
}

func (v *dumpVisitor) hasExtras(n node.Node) bool {
	if v.cfg.Buffers != nil {
		if buf, ok := v.cfg.Buffers.Lookup(n); ok {
			for _, tag := range props.Tags() {
				if buf.HasContent(tag) {
					return true
				}
			}
		}
	}
	if v.cfg.Properties != nil {
		if p, ok := v.cfg.Properties.Lookup(n); ok && p.Len() > 0 {
			return true
		}
	}
	return false
}

func (v *dumpVisitor) extras(n node.Node) {
	if v.cfg.Buffers != nil {
		if buf, ok := v.cfg.Buffers.Lookup(n); ok {
			for _, tag := range props.Tags() {
				if buf.HasContent(tag) {
					v.line("buffer", []field{{name: "tag", value: tag.String()}}, buf.Buffer(tag))
				}
			}
		}
	}
	if v.cfg.Properties != nil {
		if p, ok := v.cfg.Properties.Lookup(n); ok {
			for _, name := range p.Names() {
				value, _ := p.Get(name)
				v.line("property", []field{{name: "name", value: name}}, fmt.Sprint(value))
			}
		}
	}
}

// leaf writes an entry for a node without children.
func (v *dumpVisitor) leaf(tag string, n node.Node, fields []field) error {
	inner := v.hasExtras(n)
	v.open(tag, fields, inner)
	if inner {
		v.extras(n)
	}
	return v.close(tag)
}

func (v *dumpVisitor) EnterDocument(doc *node.Document) (*walker.Queue, error) {
	fields := []field{{name: "type", value: doc.DocumentType()}, visibility(doc)}
	inner := doc.HasChildren() || v.hasExtras(doc)
	v.open("document", fields, inner)
	if inner {
		v.extras(doc)
	}
	return walker.ChildrenOf(doc), v.w.err
}

func (v *dumpVisitor) LeaveDocument(*node.Document) error {
	return v.close("document")
}

func (v *dumpVisitor) EnterElement(el *node.Element) (*walker.Queue, error) {
	fields := []field{{name: "name", value: el.FullyQualifiedName()}}
	if id, ok := el.URIIdentifier(); ok {
		fields = append(fields, field{name: "uri", value: strconv.Itoa(id)})
	}
	if el.IsEmpty() {
		fields = append(fields, field{name: "empty", value: "true"})
	}
	fields = append(fields, visibility(el))

	v.attrs = el.Attributes(v.attrs)
	inner := el.HasChildren() || len(v.attrs) > 0 || v.hasExtras(el)
	v.open("element", fields, inner)
	if inner {
		for _, attr := range v.attrs {
			if err := v.dumpAttribute(attr); err != nil {
				return nil, err
			}
		}
		v.extras(el)
	}
	return walker.ChildrenOf(el), v.w.err
}

func (v *dumpVisitor) dumpAttribute(attr *node.Attribute) error {
	fields := []field{{name: "name", value: attr.FullyQualifiedName()}}
	if id, ok := attr.URIIdentifier(); ok {
		fields = append(fields, field{name: "uri", value: strconv.Itoa(id)})
	}
	value, expr := attr.Value()
	if expr != nil {
		fields = append(fields,
			field{name: "engine", value: expr.Engine()},
			field{name: "expression", value: expr.Source()},
		)
	} else {
		fields = append(fields, field{name: "value", value: value})
	}
	return v.leaf("attribute", attr, fields)
}

func (v *dumpVisitor) LeaveElement(*node.Element) error {
	return v.close("element")
}

func (v *dumpVisitor) EnterText(t *node.Text) (*walker.Queue, error) {
	inner := t.HasChildren() || v.hasExtras(t)
	v.open("text", []field{visibility(t)}, inner)
	if inner {
		v.extras(t)
	}
	return walker.ChildrenOf(t), v.w.err
}

func (v *dumpVisitor) LeaveText(*node.Text) error {
	return v.close("text")
}

func (v *dumpVisitor) EnterCdata(c *node.Cdata) (*walker.Queue, error) {
	return nil, v.leaf("cdata", c, []field{{name: "data", value: c.String()}, visibility(c)})
}

func (v *dumpVisitor) LeaveCdata(*node.Cdata) error {
	return nil
}

func (v *dumpVisitor) EnterExpression(e *node.Expression) (*walker.Queue, error) {
	return nil, v.leaf("expression", e, []field{
		{name: "engine", value: e.Engine()},
		{name: "source", value: e.Source()},
		visibility(e),
	})
}

func (v *dumpVisitor) LeaveExpression(*node.Expression) error {
	return nil
}

func (v *dumpVisitor) EnterCode(c *node.Code) (*walker.Queue, error) {
	kind := "program"
	if c.Kind() == node.CodePlain {
		kind = "plain"
	}
	return nil, v.leaf("code", c, []field{
		{name: "kind", value: kind},
		{name: "content", value: c.Content()},
		visibility(c),
	})
}

func (v *dumpVisitor) LeaveCode(*node.Code) error {
	return nil
}
