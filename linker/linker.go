// Package linker turns a processed template tree into the compiled
// template: the XML markup with the generated code spliced in.
package linker

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lestrrat-go/declari"
	"github.com/lestrrat-go/declari/internal/pool"
	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/props"
	"github.com/lestrrat-go/declari/walker"
	"github.com/lestrrat-go/pdebug/v3"
)

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

var (
	singleParts  = []props.LinkPart{props.Slot(props.TagBefore), props.Slot(props.TagSingleBefore), props.Slot(props.TagSingleAfter), props.Slot(props.TagAfter)}
	openingParts = []props.LinkPart{props.Slot(props.TagBefore), props.Slot(props.TagOpeningBefore), props.Slot(props.TagOpeningAfter), props.Slot(props.TagContentBefore)}
	closingParts = []props.LinkPart{props.Slot(props.TagContentAfter), props.Slot(props.TagClosingBefore), props.Slot(props.TagClosingAfter), props.Slot(props.TagAfter)}
)

// XML links trees parsed from XML templates. Only visible nodes are
// written. Elements of a registered namespace print nothing but their
// code buffers; every other element is written back as markup.
//
// Expressions with dynamic code found below an element flagged with
// props.Dynamic are also collected as dynamic blocks.
type XML struct {
	compiler *declari.Compiler
	dynamic  []string
}

var _ declari.Linker = (*XML)(nil)

func New() *XML {
	return &XML{}
}

func (l *XML) SetCompiler(c *declari.Compiler) {
	l.compiler = c
}

func (l *XML) Link(ctx context.Context, doc *node.Document) (string, error) {
	if pdebug.Enabled {
		g := pdebug.FuncMarker()
		defer g.End()
	}
	ctx, span := declari.StartSpan(ctx, "link")
	defer span.End()

	l.dynamic = l.dynamic[:0]
	v := &linkVisitor{
		linker: l,
		unit:   l.compiler.Unit(),
		out:    pool.ByteSlice().GetCapacity(4096),
	}
	defer func() { pool.ByteSlice().Put(v.out) }()

	if err := walker.Walk(doc, v, walker.WithSkipInvisible(true)); err != nil {
		declari.TraceError(ctx, err, "link failed")
		return "", err
	}
	declari.TraceDebug(ctx, "linked", slog.Int("bytes", len(v.out)), slog.Int("dynamic", len(l.dynamic)))
	return string(v.out), nil
}

func (l *XML) HasDynamicBlocks() bool {
	return len(l.dynamic) > 0
}

// DynamicBlocks returns the blocks collected by the last Link call.
func (l *XML) DynamicBlocks() []string {
	return l.dynamic
}

func (l *XML) Dispose() {
	l.compiler = nil
	l.dynamic = nil
}

type linkVisitor struct {
	linker *XML
	unit   *declari.Unit
	out    []byte
	attrs  []*node.Attribute
	// number of open elements flagged as dynamic
	dynamic int
}

var _ walker.Visitor = (*linkVisitor)(nil)

func (v *linkVisitor) buffers(n node.Node) *props.CodeBuffers {
	return v.unit.CodeBuffers().Get(n)
}

func (v *linkVisitor) link(n node.Node, tags ...props.Tag) {
	parts := make([]props.LinkPart, len(tags))
	for i, tag := range tags {
		parts[i] = props.Slot(tag)
	}
	v.out = append(v.out, v.buffers(n).Link(parts, false)...)
}

func (v *linkVisitor) isDynamic(n node.Node) bool {
	p, ok := v.unit.Properties().Lookup(n)
	return ok && p.Bool(props.Dynamic)
}

func (v *linkVisitor) EnterDocument(doc *node.Document) (*walker.Queue, error) {
	v.link(doc, props.TagBefore)
	return walker.ChildrenOf(doc), nil
}

func (v *linkVisitor) LeaveDocument(doc *node.Document) error {
	v.link(doc, props.TagAfter)
	return nil
}

func single(el *node.Element) bool {
	return !el.HasChildren() && el.IsEmpty()
}

func (v *linkVisitor) EnterElement(el *node.Element) (*walker.Queue, error) {
	buf := v.buffers(el)
	if v.isDynamic(el) {
		v.dynamic++
	}

	if _, special := el.URIIdentifier(); special {
		if single(el) {
			v.out = append(v.out, buf.Link(singleParts, false)...)
			return nil, nil
		}
		v.out = append(v.out, buf.Link(openingParts, false)...)
		return walker.ChildrenOf(el), nil
	}

	name := el.FullyQualifiedName()
	if buf.HasContent(props.TagName) {
		name = buf.Link([]props.LinkPart{props.Slot(props.TagName)}, false)
	}

	if single(el) {
		v.link(el, props.TagBefore, props.TagSingleBefore)
		v.out = append(v.out, '<')
		v.out = append(v.out, name...)
		v.linkAttributes(el, buf)
		v.out = append(v.out, " />"...)
		v.link(el, props.TagSingleAfter, props.TagAfter)
		return nil, nil
	}

	v.link(el, props.TagBefore, props.TagOpeningBefore)
	v.out = append(v.out, '<')
	v.out = append(v.out, name...)
	v.linkAttributes(el, buf)
	v.out = append(v.out, '>')
	v.link(el, props.TagOpeningAfter, props.TagContentBefore)
	v.unit.Properties().Get(el).Set(props.LinkName, name)
	return walker.ChildrenOf(el), nil
}

func (v *linkVisitor) LeaveElement(el *node.Element) error {
	if v.isDynamic(el) {
		v.dynamic--
	}
	if single(el) {
		return nil
	}
	if _, special := el.URIIdentifier(); special {
		v.out = append(v.out, v.buffers(el).Link(closingParts, false)...)
		return nil
	}

	v.link(el, props.TagContentAfter, props.TagClosingBefore)
	v.out = append(v.out, "</"...)
	v.out = append(v.out, v.unit.Properties().Get(el).String(props.LinkName)...)
	v.out = append(v.out, '>')
	v.link(el, props.TagClosingAfter, props.TagAfter)
	return nil
}

// linkAttributes writes the attributes of an ordinary element.
// Attributes of a registered namespace are instructions and are left
// out.
func (v *linkVisitor) linkAttributes(el *node.Element, buf *props.CodeBuffers) {
	v.link(el, props.TagAttributesBefore, props.TagBeginningAttributes)
	v.attrs = el.Attributes(v.attrs)
	for _, attr := range v.attrs {
		if _, special := attr.URIIdentifier(); special {
			continue
		}
		ab, ok := v.unit.CodeBuffers().Lookup(attr)
		if !ok {
			v.out = append(v.out, ' ')
			v.out = append(v.out, attr.FullyQualifiedName()...)
			v.out = append(v.out, `="`...)
			v.out = append(v.out, attrEscaper.Replace(attr.String())...)
			v.out = append(v.out, '"')
			continue
		}

		v.out = append(v.out, ab.Link([]props.LinkPart{props.Slot(props.AttributeBegin)}, false)...)
		v.out = append(v.out, ' ')
		if ab.HasContent(props.AttributeName) {
			v.out = append(v.out, ab.Link([]props.LinkPart{props.Slot(props.AttributeName)}, false)...)
		} else {
			v.out = append(v.out, attr.FullyQualifiedName()...)
		}
		v.out = append(v.out, `="`...)
		if ab.HasContent(props.AttributeValue) {
			v.out = append(v.out, ab.Link([]props.LinkPart{props.Slot(props.AttributeValue)}, false)...)
		} else {
			v.out = append(v.out, attrEscaper.Replace(attr.String())...)
		}
		v.out = append(v.out, '"')
		v.out = append(v.out, ab.Link([]props.LinkPart{props.Slot(props.AttributeEnd)}, false)...)
	}
	v.link(el, props.TagEndingAttributes, props.TagAttributesAfter)
}

func (v *linkVisitor) EnterText(t *node.Text) (*walker.Queue, error) {
	v.link(t, props.TagBefore)
	return walker.ChildrenOf(t), nil
}

func (v *linkVisitor) LeaveText(t *node.Text) error {
	v.link(t, props.TagAfter)
	return nil
}

func (v *linkVisitor) EnterCdata(c *node.Cdata) (*walker.Queue, error) {
	v.link(c, props.TagBefore)
	v.out = append(v.out, c.String()...)
	return nil, nil
}

func (v *linkVisitor) LeaveCdata(c *node.Cdata) error {
	v.link(c, props.TagAfter)
	return nil
}

func (v *linkVisitor) EnterExpression(e *node.Expression) (*walker.Queue, error) {
	buf := v.buffers(e)
	code := buf.Link([]props.LinkPart{props.Slot(props.TagContent)}, false)
	v.out = append(v.out, code...)
	if v.dynamic > 0 && code != "" && buf.CodeType() == props.CodeDynamic {
		v.linker.dynamic = append(v.linker.dynamic, code)
	}
	return nil, nil
}

func (v *linkVisitor) LeaveExpression(*node.Expression) error {
	return nil
}

func (v *linkVisitor) EnterCode(c *node.Code) (*walker.Queue, error) {
	if c.Kind() == node.CodeProgram {
		v.out = append(v.out, "<?php "...)
		v.out = append(v.out, strings.TrimSpace(c.Content())...)
		v.out = append(v.out, " ?>"...)
		return nil, nil
	}
	v.out = append(v.out, c.Content()...)
	return nil, nil
}

func (v *linkVisitor) LeaveCode(*node.Code) error {
	return nil
}
