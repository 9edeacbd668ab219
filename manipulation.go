package declari

import (
	"context"

	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/walker"
)

const ManipulationStageName = "manipulate"

// ManipulationStage lets instruction processors restructure the tree
// before any code is generated: macro expansion and template loading
// happen here.
type ManipulationStage struct {
	registry[ManipulationElementProcessor, ManipulationAttributeProcessor]
}

var _ Stage = (*ManipulationStage)(nil)

func NewManipulationStage() *ManipulationStage {
	return &ManipulationStage{
		registry: newRegistry[ManipulationElementProcessor, ManipulationAttributeProcessor](),
	}
}

func (*ManipulationStage) Name() string {
	return ManipulationStageName
}

func (s *ManipulationStage) SetCompiler(c *Compiler) {
	s.compiler = c
}

// RegisterElements binds p to the given element names of a registered
// namespace. p must implement ManipulationElementProcessor.
func (s *ManipulationStage) RegisterElements(p Instruction, uri string, names ...string) error {
	return s.registerElements(p, uri, names...)
}

// RegisterAttributes binds p to the given attribute names of a
// registered namespace. p must implement ManipulationAttributeProcessor.
func (s *ManipulationStage) RegisterAttributes(p Instruction, uri string, names ...string) error {
	return s.registerAttributes(p, uri, names...)
}

func (s *ManipulationStage) Process(ctx context.Context, doc *node.Document) (*node.Document, error) {
	_, span := StartSpan(ctx, s.Name())
	defer span.End()

	if err := walker.Walk(doc, &manipulationVisitor{stage: s, unit: s.compiler.Unit()}); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *ManipulationStage) Dispose() {
	s.clear()
}

type manipulationVisitor struct {
	walker.Nop
	stage *ManipulationStage
	unit  *Unit
	attrs []*node.Attribute
}

func (v *manipulationVisitor) EnterDocument(doc *node.Document) (*walker.Queue, error) {
	return walker.ChildrenOf(doc), nil
}

func (v *manipulationVisitor) EnterElement(el *node.Element) (*walker.Queue, error) {
	if _, special := el.URIIdentifier(); special {
		p, ok := v.stage.element(el)
		if !ok {
			return nil, nil
		}
		if err := p.ProcessManipulationElement(el); err != nil {
			return nil, nodeError(el, err)
		}
		return p.TakeEnqueued(), nil
	}

	v.attrs = el.Attributes(v.attrs)
	for _, attr := range v.attrs {
		p, ok := v.stage.attribute(attr)
		if !ok {
			continue
		}
		if err := p.ProcessManipulationAttribute(el, attr); err != nil {
			return nil, nodeError(attr, err)
		}
	}
	return walker.ChildrenOf(el), nil
}

func (v *manipulationVisitor) LeaveElement(el *node.Element) error {
	if postProcess(v.unit, el) {
		if p, ok := v.stage.element(el); ok {
			if err := p.PostProcessManipulationElement(el); err != nil {
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
			if err := p.PostProcessManipulationAttribute(el, attr); err != nil {
				return nodeError(attr, err)
			}
		}
	}
	return nil
}
