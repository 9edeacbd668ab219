package node

import (
	"fmt"
)

// ExtraKind names the auxiliary objects pipeline stages may stash on a
// document. The set is closed.
type ExtraKind int

const (
	// ExtraMacros holds the macro table collected by the macro instruction
	ExtraMacros ExtraKind = iota + 1
	// ExtraInheritance holds the inheritance metadata (extended template,
	// loaded snippets) found by the inheritance hook
	ExtraInheritance
	// ExtraSnippet holds the Container whose content becomes the output
	// tree in place of the whole document
	ExtraSnippet
)

func (k ExtraKind) String() string {
	switch k {
	case ExtraMacros:
		return "macros"
	case ExtraInheritance:
		return "inheritance"
	case ExtraSnippet:
		return "snippet"
	}
	return fmt.Sprintf("extra(%d)", int(k))
}

// Document represents a whole parsed unit
type Document struct {
	treeNode
	container
	documentType string
	extras       map[ExtraKind]any

	// xml documents accept at most one top level element
	xml bool
}

var _ Container = (*Document)(nil)

func NewDocument(documentType string) *Document {
	return &Document{
		documentType: documentType,
	}
}

// NewXMLDocument creates a document that tracks a single root element.
func NewXMLDocument() *Document {
	doc := NewDocument("xml")
	doc.xml = true
	return doc
}

func (*Document) Type() NodeType {
	return DocumentNodeType
}

func (d *Document) DocumentType() string {
	return d.documentType
}

// RootElement returns the top level element, or nil.
func (d *Document) RootElement() *Element {
	for e := d.firstChild; e != nil; e = e.NextSibling() {
		if el, ok := e.(*Element); ok {
			return el
		}
	}
	return nil
}

func (d *Document) checkChild(child, replaced Node) error {
	if !d.xml {
		return nil
	}
	el, ok := child.(*Element)
	if !ok {
		return nil
	}
	if root := d.RootElement(); root != nil && root != el && Node(root) != replaced {
		return fmt.Errorf("cannot add another root node to the document, the problematic node is '%s': %w", el.FullyQualifiedName(), ErrDuplicateRoot)
	}
	return nil
}

func (d *Document) SetExtra(kind ExtraKind, v any) {
	if d.extras == nil {
		d.extras = make(map[ExtraKind]any)
	}
	d.extras[kind] = v
}

func (d *Document) Extra(kind ExtraKind) (any, error) {
	v, ok := d.extras[kind]
	if !ok {
		return nil, fmt.Errorf("extra node '%s': %w", kind, ErrUnknownExtra)
	}
	return v, nil
}

func (d *Document) HasExtra(kind ExtraKind) bool {
	_, ok := d.extras[kind]
	return ok
}

func (d *Document) DeleteExtra(kind ExtraKind) {
	delete(d.extras, kind)
}

// ExtraAs fetches an extra node and asserts its type.
func ExtraAs[T any](d *Document, kind ExtraKind) (T, error) {
	var zero T
	v, err := d.Extra(kind)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("extra node '%s' is %T: %w", kind, v, ErrExtraType)
	}
	return typed, nil
}

func (d *Document) cloneShallow() Node {
	c := &Document{
		documentType: d.documentType,
		xml:          d.xml,
	}
	if len(d.extras) > 0 {
		c.extras = make(map[ExtraKind]any, len(d.extras))
		for k, v := range d.extras {
			c.extras[k] = v
		}
	}
	d.copyState(&c.treeNode)
	return c
}

func (d *Document) AppendChild(child Node) error {
	return appendChild(d, child)
}

func (d *Document) InsertBefore(child, ref Node) error {
	return insertBefore(d, child, ref)
}

func (d *Document) InsertBeforeIndex(child Node, idx int) error {
	return insertBeforeIndex(d, child, idx)
}

func (d *Document) RemoveChild(n Node) error {
	return removeChild(d, n)
}

func (d *Document) RemoveChildAt(idx int) error {
	return removeChildAt(d, idx)
}

func (d *Document) RemoveChildren() []Node {
	return removeChildren(d)
}

func (d *Document) ReplaceChild(newNode, ref Node) error {
	return replaceChild(d, newNode, ref)
}

func (d *Document) ReplaceChildAt(newNode Node, idx int) error {
	return replaceChildAt(d, newNode, idx)
}

func (d *Document) MoveChildren(dst Container) error {
	return moveChildren(d, dst)
}
