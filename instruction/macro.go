package instruction

import (
	"fmt"
	"slices"

	"github.com/lestrrat-go/declari"
	"github.com/lestrrat-go/declari/internal/stack"
	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/props"
	"github.com/lestrrat-go/pdebug/v3"
)

// UsedMacro is set on every element that was replaced by the content
// of a macro. The value is the macro name.
const UsedMacro = "macro:used"

// macroFrame is an expansion in progress.
type macroFrame struct {
	name string
	// idx is the definition the expanded content was cloned from
	idx int
	// defaults holds the default content of the use site, if any. It
	// is the last definition of the macro while the frame is active.
	defaults *node.Element
	parent bool
}

// macroUse is an entry of the recursion guard: one per d:use
// expansion in progress.
type macroUse string

func (u macroUse) Key() string {
	return string(u)
}

// Macro implements d:macro definitions, their expansion with d:use
// (element or attribute) and d:parent, which pulls in the next
// definition of the macro being expanded.
//
// Definitions of the same name are kept in the order they were seen.
// Templates that extend another one are processed first, so their
// definitions take precedence and d:parent reaches the overridden one.
// The content of a d:use element becomes the last definition for the
// time of the expansion unless ignore-default is set.
type Macro struct {
	declari.InstructionBase
	definitions map[string][]*node.Element
	arguments   map[string][]declari.ExtractedAttribute
	active      stack.Simple[macroFrame]
	// d:parent expansions are not recorded here
	uses        stack.Unique[macroUse]
}

var (
	_ declari.ManipulationElementProcessor   = (*Macro)(nil)
	_ declari.ManipulationAttributeProcessor = (*Macro)(nil)
	_ declari.RuntimeElementProcessor        = (*Macro)(nil)
)

func NewMacro() *Macro {
	return &Macro{}
}

func (m *Macro) Configure() error {
	m.reset()

	mst, err := manipulationStage(m.Compiler())
	if err != nil {
		return err
	}
	if err := mst.RegisterElements(m, NamespaceURI, "macro", "use", "parent"); err != nil {
		return err
	}
	if err := mst.RegisterAttributes(m, NamespaceURI, "use"); err != nil {
		return err
	}

	pst, err := processingStage(m.Compiler())
	if err != nil {
		return err
	}
	return pst.RegisterElements(m, NamespaceURI, "use", "parent")
}

func (m *Macro) reset() {
	for _, f := range m.active {
		if f.defaults != nil {
			node.Dispose(f.defaults)
		}
	}
	m.active = nil
	m.uses = nil
	m.definitions = make(map[string][]*node.Element)
	m.arguments = make(map[string][]declari.ExtractedAttribute)
}

func (m *Macro) Dispose() {
	m.reset()
	m.InstructionBase.Dispose()
}

// Definitions returns the definitions registered for name, the one
// used by d:use first.
func (m *Macro) Definitions(name string) []*node.Element {
	return m.definitions[name]
}

func (m *Macro) ProcessManipulationElement(el *node.Element) error {
	switch el.Name() {
	case "macro":
		return m.define(el)
	case "use":
		attrs, err := m.Compiler().ExtractAttributes(el, []declari.AttrSpec{
			{Name: "macro", Required: true, Kind: declari.AttrID},
			{Name: "ignore-default", Kind: declari.AttrBoolean, Default: false},
		}, &declari.AttrSpec{Kind: declari.AttrString})
		if err != nil {
			return err
		}
		name := attrs.String("macro")
		expanded, err := m.expand(el, name, attrs.Bool("ignore-default"))
		if err != nil {
			return err
		}
		if expanded {
			m.Properties(el).Set(props.PostProcess, true)
			m.Properties(el).Set(UsedMacro, name)
		}
		m.EnqueueChildren(el)
		return nil
	case "parent":
		return m.parent(el)
	}
	return nil
}

func (m *Macro) PostProcessManipulationElement(el *node.Element) error {
	m.Properties(el).Delete(props.PostProcess)
	m.leave()
	return nil
}

// ProcessManipulationAttribute replaces the content of an ordinary
// element with the macro named by d:use.
func (m *Macro) ProcessManipulationAttribute(el *node.Element, attr *node.Attribute) error {
	value, e := attr.Value()
	if e != nil || !isIdentifier(value) {
		return fmt.Errorf("the attribute '%s' in '%s' must be a valid identifier: %w", attr.FullyQualifiedName(), el.FullyQualifiedName(), declari.ErrInvalidAttributeValue)
	}
	expanded, err := m.expand(el, value, false)
	if err != nil {
		return err
	}
	if expanded {
		m.Properties(attr).Set(props.PostProcess, true)
		m.Properties(el).Set(UsedMacro, value)
	}
	return nil
}

func (m *Macro) PostProcessManipulationAttribute(_ *node.Element, attr *node.Attribute) error {
	m.Properties(attr).Delete(props.PostProcess)
	m.leave()
	return nil
}

// ProcessRuntimeElement lets the content of d:use and d:parent through
// to the output.
func (m *Macro) ProcessRuntimeElement(el *node.Element) error {
	el.SetVisible(true)
	m.EnqueueChildren(el)
	return nil
}

func (m *Macro) PostProcessRuntimeElement(*node.Element) error {
	return nil
}

func (m *Macro) define(el *node.Element) error {
	attrs, err := m.Compiler().ExtractAttributes(el, []declari.AttrSpec{
		{Name: "name", Required: true, Kind: declari.AttrID},
	}, &declari.AttrSpec{Kind: declari.AttrString})
	if err != nil {
		return err
	}
	name := attrs.String("name")
	if prev, ok := m.arguments[name]; ok {
		if !sameArguments(prev, attrs.Unknown) {
			return fmt.Errorf("macro '%s': %w", name, ErrIncompatibleMacro)
		}
	} else {
		m.arguments[name] = attrs.Unknown
	}

	if pdebug.Enabled {
		pdebug.Printf("macro '%s': definition #%d", name, len(m.definitions[name]))
	}
	m.definitions[name] = append(m.definitions[name], el)

	if doc := ownerDocument(el); doc != nil {
		names, _ := node.ExtraAs[[]string](doc, node.ExtraMacros)
		if !slices.Contains(names, name) {
			doc.SetExtra(node.ExtraMacros, append(names, name))
		}
	}
	return nil
}

// expand replaces the children of el with a copy of the first
// definition of name. It reports false, leaving el untouched, if no
// such macro exists.
func (m *Macro) expand(el *node.Element, name string, ignoreDefault bool) (bool, error) {
	if _, ok := m.uses.Lookup(name); ok {
		return false, &declari.RecursionError{Kind: "macro", Chain: append(m.uses.Keys(), name)}
	}
	defs := m.definitions[name]
	if len(defs) == 0 {
		return false, nil
	}

	frame := macroFrame{name: name}
	if el.HasChildren() && !ignoreDefault {
		tmp, err := node.NewElement("", "default")
		if err != nil {
			return false, err
		}
		if err := el.MoveChildren(tmp); err != nil {
			return false, err
		}
		m.definitions[name] = append(m.definitions[name], tmp)
		frame.defaults = tmp
	}
	for _, child := range el.RemoveChildren() {
		node.Dispose(child)
	}
	if err := appendClones(el, defs[0]); err != nil {
		return false, err
	}
	el.SetEmpty(false)
	if err := m.uses.Push(macroUse(name)); err != nil {
		return false, err
	}
	m.active.Push(frame)
	return true, nil
}

func (m *Macro) parent(el *node.Element) error {
	top, ok := m.active.Top()
	if !ok {
		return nil
	}
	next := top.idx + 1
	defs := m.definitions[top.name]
	if next >= len(defs) {
		return nil
	}
	if err := appendClones(el, defs[next]); err != nil {
		return err
	}
	el.SetEmpty(false)
	m.active.Push(macroFrame{name: top.name, idx: next, parent: true})
	m.Properties(el).Set(props.PostProcess, true)
	m.EnqueueChildren(el)
	return nil
}

func (m *Macro) leave() {
	f, ok := m.active.PopTop()
	if !ok {
		return
	}
	if !f.parent {
		m.uses.PopLast()
	}
	if f.defaults == nil {
		return
	}
	m.definitions[f.name] = slices.DeleteFunc(m.definitions[f.name], func(el *node.Element) bool {
		return el == f.defaults
	})
	node.Dispose(f.defaults)
}

func sameArguments(a, b []declari.ExtractedAttribute) bool {
	return slices.EqualFunc(a, b, func(x, y declari.ExtractedAttribute) bool {
		return x.Name == y.Name && x.Value == y.Value
	})
}

func appendClones(dst, src *node.Element) error {
	for child := range src.Children() {
		if err := dst.AppendChild(node.Clone(child)); err != nil {
			return err
		}
	}
	return nil
}

func ownerDocument(n node.Node) *node.Document {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if doc, ok := p.(*node.Document); ok {
			return doc
		}
	}
	return nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
