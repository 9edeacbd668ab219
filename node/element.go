package node

import (
	"errors"
	"fmt"

	"github.com/lestrrat-go/declari/internal/orderedmap"
)

// Element is a named, optionally namespaced node with attributes.
// Elements whose namespace URI is known to the compiler carry a small
// integer alias of that URI, so that stages can dispatch on it without
// comparing strings.
type Element struct {
	treeNode
	container
	name      string
	namespace string
	uriID     int
	hasURIID  bool
	attrs     *orderedmap.Map[string, *Attribute]
	empty     bool
}

var _ Container = (*Element)(nil)

// NewElement creates a new, detached element. The name must not be empty.
func NewElement(namespace, name string) (*Element, error) {
	if name == "" {
		return nil, fmt.Errorf("element name: %w", ErrEmptyName)
	}
	return &Element{
		name:      name,
		namespace: namespace,
		attrs:     orderedmap.New[string, *Attribute](),
	}, nil
}

func (*Element) Type() NodeType {
	return ElementNodeType
}

func (e *Element) checkChild(Node, Node) error {
	return nil
}

func (e *Element) Name() string {
	return e.name
}

func (e *Element) SetName(name string) error {
	if name == "" {
		return fmt.Errorf("element name: %w", ErrEmptyName)
	}
	e.name = name
	return nil
}

func (e *Element) Namespace() string {
	return e.namespace
}

func (e *Element) SetNamespace(ns string) {
	e.namespace = ns
}

func (e *Element) FullyQualifiedName() string {
	if e.namespace == "" {
		return e.name
	}
	return e.namespace + ":" + e.name
}

// URIIdentifier returns the namespace URI alias assigned by the
// compiler. The second value is false for elements outside any
// registered namespace.
func (e *Element) URIIdentifier() (int, bool) {
	return e.uriID, e.hasURIID
}

func (e *Element) SetURIIdentifier(id int) {
	e.uriID = id
	e.hasURIID = true
}

func (e *Element) ClearURIIdentifier() {
	e.uriID = 0
	e.hasURIID = false
}

func (e *Element) SetEmpty(v bool) {
	e.empty = v
}

// IsEmpty reports whether the element was written in the self closing
// form.
func (e *Element) IsEmpty() bool {
	return e.empty
}

// AddAttribute adds attr under its qualified name. Adding two
// attributes with the same qualified name is an error.
func (e *Element) AddAttribute(attr *Attribute) error {
	if attr == nil {
		return ErrNilNode
	}
	name := attr.FullyQualifiedName()
	if err := e.attrs.Set(name, attr); err != nil {
		if errors.Is(err, orderedmap.ErrDuplicateEntry) {
			return fmt.Errorf("cannot add an attribute: the element '%s' has already got an attribute called '%s': %w", e.FullyQualifiedName(), name, ErrDuplicateAttribute)
		}
		return err
	}
	attr.elem = e
	return nil
}

// SetAttribute is a shortcut that creates a literal attribute and adds it.
func (e *Element) SetAttribute(namespace, name, value string) (*Attribute, error) {
	attr, err := NewAttribute(namespace, name)
	if err != nil {
		return nil, err
	}
	attr.SetString(value)
	if err := e.AddAttribute(attr); err != nil {
		return nil, err
	}
	return attr, nil
}

func (e *Element) Attribute(name string) (*Attribute, error) {
	attr, ok := e.attrs.Get(name)
	if !ok {
		return nil, fmt.Errorf("attribute '%s' in '%s': %w", name, e.FullyQualifiedName(), ErrAttributeNotFound)
	}
	return attr, nil
}

func (e *Element) HasAttribute(name string) bool {
	return e.attrs.Has(name)
}

func (e *Element) HasAttributes() bool {
	return e.attrs.Len() > 0
}

func (e *Element) RemoveAttribute(name string) error {
	attr, ok := e.attrs.Get(name)
	if !ok {
		return fmt.Errorf("attribute '%s' in '%s': %w", name, e.FullyQualifiedName(), ErrAttributeNotFound)
	}
	_ = e.attrs.Delete(name)
	attr.elem = nil
	return nil
}

func (e *Element) RemoveAttributes() {
	for _, attr := range e.attrs.Range() {
		attr.elem = nil
	}
	e.attrs.Clear()
}

// Attributes populates the given slice with the attributes
// of the element, in document order. If the slice is nil, it will
// create a new slice and return it.
func (e *Element) Attributes(dst []*Attribute) []*Attribute {
	if dst == nil {
		dst = make([]*Attribute, 0, e.attrs.Len())
	} else {
		dst = dst[:0]
	}
	for _, attr := range e.attrs.Range() {
		dst = append(dst, attr)
	}
	return dst
}

func (e *Element) disposeAttributes() {
	for _, attr := range e.attrs.Range() {
		attr.elem = nil
		attr.Clear()
	}
	e.attrs.Clear()
}

// ElementsByTagNameNS returns every descendant element in the given
// namespace with the given local name, breadth-first.
func (e *Element) ElementsByTagNameNS(uriID int, name string) []*Element {
	var found []*Element
	var queue []Node
	for c := e.firstChild; c != nil; c = c.NextSibling() {
		queue = append(queue, c)
	}
	for head := 0; head < len(queue); head++ {
		el, ok := queue[head].(*Element)
		if !ok {
			continue
		}
		if id, has := el.URIIdentifier(); has && id == uriID && el.name == name {
			found = append(found, el)
		}
		for c := el.firstChild; c != nil; c = c.NextSibling() {
			queue = append(queue, c)
		}
	}
	return found
}

func (e *Element) cloneShallow() Node {
	c := &Element{
		name:      e.name,
		namespace: e.namespace,
		uriID:     e.uriID,
		hasURIID:  e.hasURIID,
		empty:     e.empty,
		attrs:     orderedmap.New[string, *Attribute](),
	}
	e.copyState(&c.treeNode)
	for _, attr := range e.attrs.Range() {
		_ = c.AddAttribute(attr.cloneShallow().(*Attribute))
	}
	return c
}

func (e *Element) AppendChild(child Node) error {
	return appendChild(e, child)
}

func (e *Element) InsertBefore(child, ref Node) error {
	return insertBefore(e, child, ref)
}

func (e *Element) InsertBeforeIndex(child Node, idx int) error {
	return insertBeforeIndex(e, child, idx)
}

func (e *Element) RemoveChild(n Node) error {
	return removeChild(e, n)
}

func (e *Element) RemoveChildAt(idx int) error {
	return removeChildAt(e, idx)
}

func (e *Element) RemoveChildren() []Node {
	return removeChildren(e)
}

func (e *Element) ReplaceChild(newNode, ref Node) error {
	return replaceChild(e, newNode, ref)
}

func (e *Element) ReplaceChildAt(newNode Node, idx int) error {
	return replaceChildAt(e, newNode, idx)
}

func (e *Element) MoveChildren(dst Container) error {
	return moveChildren(e, dst)
}
