package declari

import (
	"context"

	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/props"
	"github.com/lestrrat-go/declari/walker"
)

const ProcessingStageName = "process"

// ProcessingStage generates the executable code. It decides which
// nodes are visible to the linker and fills their code buffers.
type ProcessingStage struct {
	registry[RuntimeElementProcessor, RuntimeAttributeProcessor]
}

var _ Stage = (*ProcessingStage)(nil)

func NewProcessingStage() *ProcessingStage {
	return &ProcessingStage{
		registry: newRegistry[RuntimeElementProcessor, RuntimeAttributeProcessor](),
	}
}

func (*ProcessingStage) Name() string {
	return ProcessingStageName
}

func (s *ProcessingStage) SetCompiler(c *Compiler) {
	s.compiler = c
}

// RegisterElements binds p to the given element names of a registered
// namespace. p must implement RuntimeElementProcessor.
func (s *ProcessingStage) RegisterElements(p Instruction, uri string, names ...string) error {
	return s.registerElements(p, uri, names...)
}

// RegisterAttributes binds p to the given attribute names of a
// registered namespace. p must implement RuntimeAttributeProcessor.
func (s *ProcessingStage) RegisterAttributes(p Instruction, uri string, names ...string) error {
	return s.registerAttributes(p, uri, names...)
}

func (s *ProcessingStage) Process(ctx context.Context, doc *node.Document) (*node.Document, error) {
	_, span := StartSpan(ctx, s.Name())
	defer span.End()

	v := &processingVisitor{stage: s, compiler: s.compiler, unit: s.compiler.Unit()}
	if err := walker.Walk(doc, v); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *ProcessingStage) Dispose() {
	s.clear()
}

type processingVisitor struct {
	stage    *ProcessingStage
	compiler *Compiler
	unit     *Unit
	attrs    []*node.Attribute
}

var _ walker.Visitor = (*processingVisitor)(nil)

func (v *processingVisitor) EnterDocument(doc *node.Document) (*walker.Queue, error) {
	doc.SetVisible(true)
	return walker.ChildrenOf(doc), nil
}

func (v *processingVisitor) LeaveDocument(*node.Document) error {
	return nil
}

func (v *processingVisitor) EnterElement(el *node.Element) (*walker.Queue, error) {
	if _, special := el.URIIdentifier(); special {
		p, ok := v.stage.element(el)
		if !ok {
			return nil, nil
		}
		if err := p.ProcessRuntimeElement(el); err != nil {
			return nil, nodeError(el, err)
		}
		return p.TakeEnqueued(), nil
	}

	el.SetVisible(true)
	v.attrs = el.Attributes(v.attrs)
	for _, attr := range v.attrs {
		if p, ok := v.stage.attribute(attr); ok {
			if err := p.ProcessRuntimeAttribute(el, attr); err != nil {
				return nil, nodeError(attr, err)
			}
			continue
		}
		_, expr := attr.Value()
		if expr == nil {
			continue
		}
		compiled, err := v.compiler.CompileExpression(expr.Source(), expr.Engine())
		if err != nil {
			return nil, nodeError(attr, err)
		}
		v.unit.CodeBuffers().Get(attr).Append(props.AttributeValue, "echo "+compiled.Escaped+";")
		attr.Clear()
	}
	return walker.ChildrenOf(el), nil
}

func (v *processingVisitor) LeaveElement(el *node.Element) error {
	if postProcess(v.unit, el) {
		if p, ok := v.stage.element(el); ok {
			if err := p.PostProcessRuntimeElement(el); err != nil {
				return nodeError(el, err)
			}
		}
	}
	v.attrs = el.Attributes(v.attrs)
	for _, attr := range v.attrs {
		if !postProcess(v.unit, attr) {
			continue
		}
		if p, ok := v.stage.attribute(attr); ok {
			if err := p.PostProcessRuntimeAttribute(el, attr); err != nil {
				return nodeError(attr, err)
			}
		}
	}
	return nil
}

func (v *processingVisitor) EnterText(t *node.Text) (*walker.Queue, error) {
	t.SetVisible(true)
	return walker.ChildrenOf(t), nil
}

func (v *processingVisitor) LeaveText(*node.Text) error {
	return nil
}

func (v *processingVisitor) EnterCdata(c *node.Cdata) (*walker.Queue, error) {
	c.SetVisible(true)
	return nil, nil
}

func (v *processingVisitor) LeaveCdata(*node.Cdata) error {
	return nil
}

func (v *processingVisitor) EnterExpression(e *node.Expression) (*walker.Queue, error) {
	e.SetVisible(true)
	compiled, err := v.compiler.CompileExpression(e.Source(), e.Engine())
	if err != nil {
		return nil, nodeError(e, err)
	}
	buf := v.unit.CodeBuffers().Get(e)
	switch compiled.Kind {
	case ExprAssignment:
		buf.Append(props.TagContent, compiled.Bare+";")
	case ExprScalar:
		buf.Append(props.TagContent, "echo "+compiled.Escaped+";")
		buf.SetCodeType(props.CodeStatic)
	default:
		buf.Append(props.TagContent, "echo "+compiled.Escaped+";")
		buf.SetCodeType(props.CodeDynamic)
	}
	return nil, nil
}

func (v *processingVisitor) LeaveExpression(*node.Expression) error {
	return nil
}

func (v *processingVisitor) EnterCode(c *node.Code) (*walker.Queue, error) {
	c.SetVisible(true)
	return nil, nil
}

func (v *processingVisitor) LeaveCode(*node.Code) error {
	return nil
}
