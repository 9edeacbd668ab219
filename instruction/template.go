package instruction

import (
	"fmt"

	"github.com/lestrrat-go/declari"
	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/props"
)

// Inheritance is stored on every template whose root is d:template or
// d:extend.
type Inheritance struct {
	// Extend names the template this one extends
	Extend   string
	Includes []string
	Dynamic  bool
	Escaping bool
}

// Template is the inheritance hook of the language. A template whose
// root element is d:extend is processed first and then hands control
// to the template named by its file attribute. d:load elements are
// replaced by the content of the named template.
type Template struct {
	declari.InstructionBase
	ns        int
	documents map[string]*node.Document
}

var (
	_ declari.InheritanceHook              = (*Template)(nil)
	_ declari.ManipulationElementProcessor = (*Template)(nil)
	_ declari.RuntimeElementProcessor      = (*Template)(nil)
)

func NewTemplate() *Template {
	return &Template{documents: make(map[string]*node.Document)}
}

func (t *Template) Configure() error {
	c := t.Compiler()
	ns, err := c.URIIdentifier(NamespaceURI)
	if err != nil {
		return err
	}
	t.ns = ns
	c.SetInheritanceHook(t)

	mst, err := manipulationStage(c)
	if err != nil {
		return err
	}
	if err := mst.RegisterElements(t, NamespaceURI, "template", "extend", "load"); err != nil {
		return err
	}
	pst, err := processingStage(c)
	if err != nil {
		return err
	}
	return pst.RegisterElements(t, NamespaceURI, "template", "extend")
}

func (t *Template) Dispose() {
	for name, doc := range t.documents {
		node.Dispose(doc)
		delete(t.documents, name)
	}
	t.InstructionBase.Dispose()
}

func (t *Template) isRoot(el *node.Element) bool {
	if el == nil {
		return false
	}
	id, ok := el.URIIdentifier()
	return ok && id == t.ns && (el.Name() == "template" || el.Name() == "extend")
}

func (t *Template) CheckInheritance(doc *node.Document) (string, []string, error) {
	root := doc.RootElement()
	if !t.isRoot(root) {
		return "", nil, nil
	}
	c := t.Compiler()

	var includes []string
	for _, load := range root.ElementsByTagNameNS(t.ns, "load") {
		attrs, err := c.ExtractAttributes(load, []declari.AttrSpec{
			{Name: "template", Required: true, Kind: declari.AttrString},
		}, nil)
		if err != nil {
			return "", nil, err
		}
		includes = append(includes, attrs.String("template"))
	}

	specs := []declari.AttrSpec{
		{Name: "dynamic", Kind: declari.AttrBoolean, Default: false},
		{Name: "escaping", Kind: declari.AttrBoolean, Default: true},
	}
	if root.Name() == "extend" {
		specs = append(specs, declari.AttrSpec{Name: "file", Required: true, Kind: declari.AttrString})
	}
	attrs, err := c.ExtractAttributes(root, specs, &declari.AttrSpec{Kind: declari.AttrString})
	if err != nil {
		return "", nil, err
	}

	info := &Inheritance{
		Extend:   attrs.String("file"),
		Includes: includes,
		Dynamic:  attrs.Bool("dynamic"),
		Escaping: attrs.Bool("escaping"),
	}
	doc.SetExtra(node.ExtraInheritance, info)
	if info.Dynamic {
		t.Properties(root).Set(props.Dynamic, true)
	}
	root.SetVisible(true)
	return info.Extend, includes, nil
}

// HandleInheritance keeps the processed tree for d:load.
func (t *Template) HandleInheritance(name string, doc *node.Document) error {
	if prev, ok := t.documents[name]; ok && prev != doc {
		node.Dispose(prev)
	}
	t.documents[name] = doc
	return nil
}

// Document returns a tree handed over by the compiler.
func (t *Template) Document(name string) (*node.Document, bool) {
	doc, ok := t.documents[name]
	return doc, ok
}

func (t *Template) ProcessManipulationElement(el *node.Element) error {
	if el.Name() != "load" {
		t.EnqueueChildren(el)
		return nil
	}

	attrs, err := t.Compiler().ExtractAttributes(el, []declari.AttrSpec{
		{Name: "template", Required: true, Kind: declari.AttrString},
	}, nil)
	if err != nil {
		return err
	}
	name := attrs.String("template")
	doc, ok := t.documents[name]
	if !ok {
		return fmt.Errorf("template '%s': %w", name, ErrTemplateNotLoaded)
	}
	parent := el.Parent()
	if parent == nil {
		return nil
	}

	root := doc.RootElement()
	var content []node.Node
	switch {
	case t.isRoot(root):
		content = root.ChildNodes()
	case root != nil:
		content = []node.Node{root}
	}
	for _, child := range content {
		if t.isMacro(child) {
			continue
		}
		clone := node.Clone(child)
		if err := t.stripDefinitions(clone); err != nil {
			return err
		}
		if err := parent.InsertBefore(clone, el); err != nil {
			return err
		}
		t.EnqueueChild(clone)
	}
	if err := parent.RemoveChild(el); err != nil {
		return err
	}
	node.Dispose(el)
	return nil
}

func (t *Template) PostProcessManipulationElement(*node.Element) error {
	return nil
}

func (t *Template) isMacro(n node.Node) bool {
	el, ok := n.(*node.Element)
	if !ok {
		return false
	}
	id, ok := el.URIIdentifier()
	return ok && id == t.ns && el.Name() == "macro"
}

// stripDefinitions removes the macro definitions from a copy of loaded
// content. They were registered when the loaded template was processed.
func (t *Template) stripDefinitions(n node.Node) error {
	el, ok := n.(*node.Element)
	if !ok {
		return nil
	}
	for _, def := range el.ElementsByTagNameNS(t.ns, "macro") {
		p := def.Parent()
		if p == nil {
			continue
		}
		if err := p.RemoveChild(def); err != nil {
			return err
		}
		node.Dispose(def)
	}
	return nil
}

func (t *Template) ProcessRuntimeElement(el *node.Element) error {
	el.SetVisible(true)
	t.EnqueueChildren(el)
	return nil
}

func (t *Template) PostProcessRuntimeElement(*node.Element) error {
	return nil
}
