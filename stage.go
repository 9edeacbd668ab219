package declari

import (
	"context"
	"errors"
	"fmt"

	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/props"
)

// Stage is one pass of the compiler pipeline. Process may mutate the
// document in place or return a different one.
type Stage interface {
	Name() string
	SetCompiler(*Compiler)
	Process(ctx context.Context, doc *node.Document) (*node.Document, error)
	Dispose()
}

// ManipulationElementProcessor handles instruction elements during the
// manipulation stage.
type ManipulationElementProcessor interface {
	Instruction
	ProcessManipulationElement(*node.Element) error
	PostProcessManipulationElement(*node.Element) error
}

// ManipulationAttributeProcessor handles instruction attributes during
// the manipulation stage.
type ManipulationAttributeProcessor interface {
	Instruction
	ProcessManipulationAttribute(*node.Element, *node.Attribute) error
	PostProcessManipulationAttribute(*node.Element, *node.Attribute) error
}

// RuntimeElementProcessor handles instruction elements during the
// processing stage, where the executable code is generated.
type RuntimeElementProcessor interface {
	Instruction
	ProcessRuntimeElement(*node.Element) error
	PostProcessRuntimeElement(*node.Element) error
}

// RuntimeAttributeProcessor handles instruction attributes during the
// processing stage.
type RuntimeAttributeProcessor interface {
	Instruction
	ProcessRuntimeAttribute(*node.Element, *node.Attribute) error
	PostProcessRuntimeAttribute(*node.Element, *node.Attribute) error
}

type registryKey struct {
	uri  int
	name string
}

// registry maps (namespace URI id, local name) pairs to processors.
type registry[E, A Instruction] struct {
	compiler   *Compiler
	elements   map[registryKey]E
	attributes map[registryKey]A
}

func newRegistry[E, A Instruction]() registry[E, A] {
	return registry[E, A]{
		elements:   make(map[registryKey]E),
		attributes: make(map[registryKey]A),
	}
}

func (r *registry[E, A]) registerElements(p Instruction, uri string, names ...string) error {
	typed, ok := p.(E)
	if !ok {
		return fmt.Errorf("cannot register %T for elements: %w", p, ErrProcessorMismatch)
	}
	id, err := r.compiler.URIIdentifier(uri)
	if err != nil {
		return err
	}
	for _, name := range names {
		r.elements[registryKey{uri: id, name: name}] = typed
	}
	return nil
}

func (r *registry[E, A]) registerAttributes(p Instruction, uri string, names ...string) error {
	typed, ok := p.(A)
	if !ok {
		return fmt.Errorf("cannot register %T for attributes: %w", p, ErrProcessorMismatch)
	}
	id, err := r.compiler.URIIdentifier(uri)
	if err != nil {
		return err
	}
	for _, name := range names {
		r.attributes[registryKey{uri: id, name: name}] = typed
	}
	return nil
}

func (r *registry[E, A]) element(el *node.Element) (E, bool) {
	var zero E
	id, ok := el.URIIdentifier()
	if !ok {
		return zero, false
	}
	p, ok := r.elements[registryKey{uri: id, name: el.Name()}]
	return p, ok
}

func (r *registry[E, A]) attribute(attr *node.Attribute) (A, bool) {
	var zero A
	id, ok := attr.URIIdentifier()
	if !ok {
		return zero, false
	}
	p, ok := r.attributes[registryKey{uri: id, name: attr.Name()}]
	return p, ok
}

func (r *registry[E, A]) clear() {
	clear(r.elements)
	clear(r.attributes)
	r.compiler = nil
}

// postProcess reads and clears the postprocess flag of n.
func postProcess(u *Unit, n node.Node) bool {
	p, ok := u.Properties().Lookup(n)
	if !ok || !p.Bool(props.PostProcess) {
		return false
	}
	p.Delete(props.PostProcess)
	return true
}

func nodeError(n node.Node, err error) error {
	if err == nil {
		return nil
	}
	var ne *NodeError
	if errors.As(err, &ne) {
		return err
	}
	return &NodeError{Name: node.Name(n), Line: n.Line(), Err: err}
}
