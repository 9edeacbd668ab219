package node

import (
	"fmt"
	"strings"
)

// Text groups a run of character data. It may only contain Cdata and
// Expression nodes.
type Text struct {
	treeNode
	container
}

var _ Container = (*Text)(nil)

// NewText creates a text node, optionally seeded with a Cdata child.
func NewText(data string) *Text {
	t := &Text{}
	if data != "" {
		linkLast(t, NewCdata(data))
	}
	return t
}

func (*Text) Type() NodeType {
	return TextNodeType
}

func (t *Text) checkChild(child, _ Node) error {
	switch child.(type) {
	case *Cdata, *Expression:
		return nil
	}
	return fmt.Errorf("text nodes accept only character data and expressions, got '%s': %w", Name(child), ErrInvalidChild)
}

// AppendData appends character data, merging with the last child when
// that is already a Cdata node.
func (t *Text) AppendData(data string) {
	if last, ok := t.lastChild.(*Cdata); ok {
		last.AppendData(data)
		return
	}
	linkLast(t, NewCdata(data))
}

// IsWhitespace reports whether the node holds nothing but whitespace
// character data.
func (t *Text) IsWhitespace() bool {
	for c := t.firstChild; c != nil; c = c.NextSibling() {
		cd, ok := c.(*Cdata)
		if !ok {
			return false
		}
		if strings.TrimSpace(cd.data) != "" {
			return false
		}
	}
	return true
}

func (t *Text) cloneShallow() Node {
	c := &Text{}
	t.copyState(&c.treeNode)
	return c
}

func (t *Text) AppendChild(child Node) error {
	return appendChild(t, child)
}

func (t *Text) InsertBefore(child, ref Node) error {
	return insertBefore(t, child, ref)
}

func (t *Text) InsertBeforeIndex(child Node, idx int) error {
	return insertBeforeIndex(t, child, idx)
}

func (t *Text) RemoveChild(n Node) error {
	return removeChild(t, n)
}

func (t *Text) RemoveChildAt(idx int) error {
	return removeChildAt(t, idx)
}

func (t *Text) RemoveChildren() []Node {
	return removeChildren(t)
}

func (t *Text) ReplaceChild(newNode, ref Node) error {
	return replaceChild(t, newNode, ref)
}

func (t *Text) ReplaceChildAt(newNode Node, idx int) error {
	return replaceChildAt(t, newNode, idx)
}

func (t *Text) MoveChildren(dst Container) error {
	return moveChildren(t, dst)
}
