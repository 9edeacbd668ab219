package node

import "fmt"

// Attribute belongs to an Element but is not one of its children. Its
// value is either a literal string or an embedded Expression.
type Attribute struct {
	treeNode
	name      string
	namespace string
	uriID     int
	hasURIID  bool
	value     string
	expr      *Expression
	elem      *Element
}

var _ Node = (*Attribute)(nil)

func NewAttribute(namespace, name string) (*Attribute, error) {
	if name == "" {
		return nil, fmt.Errorf("attribute name: %w", ErrEmptyName)
	}
	return &Attribute{
		name:      name,
		namespace: namespace,
	}, nil
}

func (*Attribute) Type() NodeType {
	return AttributeNodeType
}

func (a *Attribute) Name() string {
	return a.name
}

func (a *Attribute) Namespace() string {
	return a.namespace
}

func (a *Attribute) FullyQualifiedName() string {
	if a.namespace == "" {
		return a.name
	}
	return a.namespace + ":" + a.name
}

func (a *Attribute) URIIdentifier() (int, bool) {
	return a.uriID, a.hasURIID
}

func (a *Attribute) SetURIIdentifier(id int) {
	a.uriID = id
	a.hasURIID = true
}

// Element returns the element the attribute was added to.
func (a *Attribute) Element() *Element {
	return a.elem
}

// Value returns the literal value, or the expression if the value is
// dynamic. Exactly one of the two is meaningful: when the expression is
// non-nil the string is empty.
func (a *Attribute) Value() (string, *Expression) {
	return a.value, a.expr
}

// String returns the literal value. Dynamic attributes yield "".
func (a *Attribute) String() string {
	return a.value
}

func (a *Attribute) IsDynamic() bool {
	return a.expr != nil
}

func (a *Attribute) SetString(v string) {
	a.value = v
	a.expr = nil
}

func (a *Attribute) SetExpression(e *Expression) {
	a.value = ""
	a.expr = e
}

// Clear drops the value altogether. Stages do this after moving a
// dynamic value into a code buffer.
func (a *Attribute) Clear() {
	a.value = ""
	a.expr = nil
}

func (a *Attribute) cloneShallow() Node {
	c := &Attribute{
		name:      a.name,
		namespace: a.namespace,
		uriID:     a.uriID,
		hasURIID:  a.hasURIID,
		value:     a.value,
	}
	if a.expr != nil {
		c.expr = a.expr.cloneShallow().(*Expression)
	}
	a.copyState(&c.treeNode)
	return c
}
