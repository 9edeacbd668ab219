package node

import (
	"fmt"
	"iter"
)

// Container is a node that owns a list of children. The children are
// kept as an intrusive doubly linked list: there is no separate slice,
// only the first/last pointers and the siblings' prev/next links.
type Container interface {
	Node

	getContainer() *container
	// checkChild is the type check hook run before a child is linked.
	// replaced is the node about to leave the list (ReplaceChild), or nil.
	checkChild(child, replaced Node) error

	AppendChild(Node) error
	InsertBefore(child, ref Node) error
	InsertBeforeIndex(child Node, idx int) error
	RemoveChild(Node) error
	RemoveChildAt(idx int) error
	RemoveChildren() []Node
	ReplaceChild(newNode, ref Node) error
	ReplaceChildAt(newNode Node, idx int) error
	MoveChildren(dst Container) error

	FirstChild() Node
	LastChild() Node
	Count() int
	HasChildren() bool
	ChildNodes() []Node
	Children() iter.Seq[Node]
}

// container is embedded by every node type that may own children
type container struct {
	firstChild Node
	lastChild  Node
	size       int
}

func (c *container) getContainer() *container {
	return c
}

func (c *container) FirstChild() Node {
	return c.firstChild
}

func (c *container) LastChild() Node {
	return c.lastChild
}

func (c *container) Count() int {
	return c.size
}

func (c *container) HasChildren() bool {
	return c.size > 0
}

// ChildNodes returns a snapshot of the children.
func (c *container) ChildNodes() []Node {
	children := make([]Node, 0, c.size)
	for e := c.firstChild; e != nil; e = e.NextSibling() {
		children = append(children, e)
	}
	return children
}

// Children iterates over the immediate children following the next
// chain. The sequence is invalidated if the container is mutated while
// it is being consumed.
func (c *container) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for e := c.firstChild; e != nil; e = e.NextSibling() {
			if !yield(e) {
				return
			}
		}
	}
}

func (c *container) reset() {
	c.firstChild = nil
	c.lastChild = nil
	c.size = 0
}

// checkCommon applies the rules shared by every container: no nil
// children, no documents or attributes inside the tree, no cycles.
func checkCommon(parent Container, child Node) error {
	if child == nil {
		return ErrNilNode
	}
	switch child.(type) {
	case *Document, *Attribute:
		return fmt.Errorf("cannot add '%s' to '%s': %w", Name(child), Name(parent), ErrInvalidChild)
	}
	if cc, ok := child.(Container); ok {
		for p := Container(parent); p != nil; p = p.Parent() {
			if p == cc {
				return fmt.Errorf("cannot add '%s' to '%s': %w", Name(child), Name(parent), ErrCycle)
			}
		}
	}
	return nil
}

func check(parent Container, child, replaced Node) error {
	if err := checkCommon(parent, child); err != nil {
		return err
	}
	return parent.checkChild(child, replaced)
}

func appendChild(parent Container, child Node) error {
	if err := check(parent, child, nil); err != nil {
		return err
	}
	if err := Unmount(child); err != nil {
		return err
	}
	linkLast(parent, child)
	return nil
}

// linkLast links an already detached node as the last child.
func linkLast(parent Container, child Node) {
	pc := parent.getContainer()
	ct := child.getTreeNode()

	if pc.lastChild == nil {
		pc.firstChild = child
	} else {
		ct.prev = pc.lastChild
		pc.lastChild.getTreeNode().next = child
	}
	pc.lastChild = child
	ct.parent = parent
	pc.size++
}

func childAt(parent Container, idx int, op string) (Node, error) {
	i := 0
	for e := parent.FirstChild(); e != nil; e = e.NextSibling() {
		if i == idx {
			return e, nil
		}
		i++
	}
	return nil, fmt.Errorf("cannot perform %s(): position %d: %w", op, idx, ErrNoSuchChild)
}

func insertBefore(parent Container, child, ref Node) error {
	if ref == nil {
		return appendChild(parent, child)
	}
	if ref.Parent() != parent {
		return fmt.Errorf("cannot perform insertBefore(): reference node '%s': %w", Name(ref), ErrNotAChild)
	}
	if child == ref {
		return nil
	}
	if err := check(parent, child, nil); err != nil {
		return err
	}
	if err := Unmount(child); err != nil {
		return err
	}

	pc := parent.getContainer()
	ct := child.getTreeNode()
	rt := ref.getTreeNode()
	if prev := rt.prev; prev != nil {
		prev.getTreeNode().next = child
		ct.prev = prev
	} else {
		pc.firstChild = child
	}
	ct.next = ref
	ct.parent = parent
	rt.prev = child
	pc.size++
	return nil
}

func insertBeforeIndex(parent Container, child Node, idx int) error {
	ref, err := childAt(parent, idx, "insertBefore")
	if err != nil {
		return err
	}
	return insertBefore(parent, child, ref)
}

func removeChild(parent Container, n Node) error {
	if n == nil {
		return ErrNilNode
	}
	if n.Parent() != parent {
		return fmt.Errorf("cannot perform removeChild(): node '%s': %w", Name(n), ErrNotAChild)
	}

	pc := parent.getContainer()
	nt := n.getTreeNode()
	next := nt.next
	prev := nt.prev
	if pc.firstChild == n {
		pc.firstChild = next
	}
	if pc.lastChild == n {
		pc.lastChild = prev
	}
	if prev != nil {
		prev.getTreeNode().next = next
	}
	if next != nil {
		next.getTreeNode().prev = prev
	}
	nt.unlink()
	pc.size--
	return nil
}

func removeChildAt(parent Container, idx int) error {
	n, err := childAt(parent, idx, "removeChild")
	if err != nil {
		return err
	}
	return removeChild(parent, n)
}

func removeChildren(parent Container) []Node {
	pc := parent.getContainer()
	removed := make([]Node, 0, pc.size)
	for scan := pc.firstChild; scan != nil; {
		next := scan.NextSibling()
		scan.getTreeNode().unlink()
		removed = append(removed, scan)
		scan = next
	}
	pc.reset()
	return removed
}

func replaceChild(parent Container, newNode, ref Node) error {
	if ref == nil || newNode == nil {
		return ErrNilNode
	}
	if ref.Parent() != parent {
		return fmt.Errorf("cannot perform replaceChild(): node '%s': %w", Name(ref), ErrNotAChild)
	}
	if newNode == ref {
		return nil
	}
	if err := check(parent, newNode, ref); err != nil {
		return err
	}
	if err := Unmount(newNode); err != nil {
		return err
	}

	pc := parent.getContainer()
	nt := newNode.getTreeNode()
	rt := ref.getTreeNode()
	nt.prev = rt.prev
	nt.next = rt.next
	nt.parent = parent
	if rt.prev == nil {
		pc.firstChild = newNode
	} else {
		rt.prev.getTreeNode().next = newNode
	}
	if rt.next == nil {
		pc.lastChild = newNode
	} else {
		rt.next.getTreeNode().prev = newNode
	}
	rt.unlink()
	return nil
}

func replaceChildAt(parent Container, newNode Node, idx int) error {
	ref, err := childAt(parent, idx, "replaceChild")
	if err != nil {
		return err
	}
	return replaceChild(parent, newNode, ref)
}

// moveChildren moves every child of src, in order, to the empty
// container dst. Every child is checked against dst before anything
// moves, so a rejected move leaves both containers untouched.
func moveChildren(src, dst Container) error {
	if dst == nil {
		return ErrNilNode
	}
	if dst.HasChildren() {
		return fmt.Errorf("cannot move children of '%s' to '%s': %w", Name(src), Name(dst), ErrDestinationNotEmpty)
	}
	if src == dst {
		return nil
	}
	elements := 0
	for e := src.FirstChild(); e != nil; e = e.NextSibling() {
		if err := check(dst, e, nil); err != nil {
			return err
		}
		if _, ok := e.(*Element); ok {
			elements++
		}
	}
	if doc, ok := dst.(*Document); ok && doc.xml && elements > 1 {
		return fmt.Errorf("cannot move children of '%s' to the document: %w", Name(src), ErrDuplicateRoot)
	}
	for _, child := range removeChildren(src) {
		linkLast(dst, child)
	}
	return nil
}
