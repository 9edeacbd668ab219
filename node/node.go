package node

import (
	"errors"
)

// NodeType represents the type of a node in the template tree
type NodeType int

const (
	DocumentNodeType NodeType = iota + 1
	ElementNodeType
	AttributeNodeType
	TextNodeType
	CdataNodeType
	ExpressionNodeType
	CodeNodeType
)

func (t NodeType) String() string {
	switch t {
	case DocumentNodeType:
		return "Document"
	case ElementNodeType:
		return "Element"
	case AttributeNodeType:
		return "Attribute"
	case TextNodeType:
		return "Text"
	case CdataNodeType:
		return "Cdata"
	case ExpressionNodeType:
		return "Expression"
	case CodeNodeType:
		return "Code"
	}
	return "Unknown"
}

// Structural errors. They are always fatal: the tree is never corrected
// on the caller's behalf.
var (
	ErrNilNode             = errors.New("nil node")
	ErrInvalidChild        = errors.New("node type not allowed here")
	ErrDuplicateRoot       = errors.New("document already has a root element")
	ErrNotAChild           = errors.New("node is not a child of this node")
	ErrNoSuchChild         = errors.New("no child at the given position")
	ErrDestinationNotEmpty = errors.New("destination node is not empty")
	ErrCycle               = errors.New("node cannot become a descendant of itself")
	ErrDuplicateAttribute  = errors.New("duplicate attribute")
	ErrAttributeNotFound   = errors.New("attribute not found")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrOutOfRange          = errors.New("offset out of range")
	ErrUnknownExtra        = errors.New("document extra node is not defined")
	ErrExtraType           = errors.New("document extra node has unexpected type")
)

// Node is implemented by every node variant in this package. The set of
// variants is closed: the unexported methods keep implementations inside
// the package, so consumers can switch over the concrete types
// exhaustively.
type Node interface {
	// returns the treeNode (the part of the Node that handles the tree structure)
	getTreeNode() *treeNode
	// returns a copy of the node without links and without children
	cloneShallow() Node

	Type() NodeType
	Parent() Container
	NextSibling() Node
	PrevSibling() Node

	IsVisible() bool
	SetVisible(bool)

	// Line is the source line the node was parsed from, 0 if unknown.
	Line() int
	SetLine(int)
}

// treeNode is the part of a Node that handles the tree structure.
type treeNode struct {
	parent  Container
	next    Node
	prev    Node
	visible bool
	line    int
}

func (n *treeNode) getTreeNode() *treeNode {
	return n
}

func (n *treeNode) Parent() Container {
	return n.parent
}

func (n *treeNode) NextSibling() Node {
	return n.next
}

func (n *treeNode) PrevSibling() Node {
	return n.prev
}

func (n *treeNode) IsVisible() bool {
	return n.visible
}

func (n *treeNode) SetVisible(v bool) {
	n.visible = v
}

func (n *treeNode) Line() int {
	return n.line
}

func (n *treeNode) SetLine(l int) {
	n.line = l
}

func (n *treeNode) unlink() {
	n.parent = nil
	n.next = nil
	n.prev = nil
}

// copyState copies the non-structural state of n into dst.
func (n *treeNode) copyState(dst *treeNode) {
	dst.visible = n.visible
	dst.line = n.line
}

// Unmount detaches n from its parent, if it has one.
func Unmount(n Node) error {
	if n == nil {
		return ErrNilNode
	}
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	return removeChild(parent, n)
}

// IsDetached reports whether n has no parent and no siblings.
func IsDetached(n Node) bool {
	t := n.getTreeNode()
	return t.parent == nil && t.next == nil && t.prev == nil
}

// Name returns a human readable name for n, used in error messages.
func Name(n Node) string {
	switch v := n.(type) {
	case *Element:
		return v.FullyQualifiedName()
	case *Attribute:
		return v.FullyQualifiedName()
	case *Document:
		return "#document"
	case *Text:
		return "#text"
	case *Cdata:
		return "#cdata"
	case *Expression:
		return "#expression"
	case *Code:
		return "#code"
	}
	return "#unknown"
}
