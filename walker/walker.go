// Package walker implements the two-pass traversal shared by the
// compiler stages and the linker.
//
// Every node is entered exactly once and left exactly once. The
// handler entering a node decides what happens below it by returning a
// queue: nil means the node is left right away, a non nil queue is
// visited in full before the node is left. The queue does not have to
// hold the node's children: handlers may skip, reorder or add nodes.
package walker

import (
	"fmt"

	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/pdebug/v3"
)

// Visitor receives the enter/leave events of a walk.
type Visitor interface {
	EnterDocument(*node.Document) (*Queue, error)
	LeaveDocument(*node.Document) error
	EnterElement(*node.Element) (*Queue, error)
	LeaveElement(*node.Element) error
	EnterText(*node.Text) (*Queue, error)
	LeaveText(*node.Text) error
	EnterCdata(*node.Cdata) (*Queue, error)
	LeaveCdata(*node.Cdata) error
	EnterExpression(*node.Expression) (*Queue, error)
	LeaveExpression(*node.Expression) error
	EnterCode(*node.Code) (*Queue, error)
	LeaveCode(*node.Code) error
}

// Nop does nothing and never descends. Embed it to handle only the
// node types you care about.
type Nop struct{}

var _ Visitor = Nop{}

func (Nop) EnterDocument(*node.Document) (*Queue, error)     { return nil, nil }
func (Nop) LeaveDocument(*node.Document) error               { return nil }
func (Nop) EnterElement(*node.Element) (*Queue, error)       { return nil, nil }
func (Nop) LeaveElement(*node.Element) error                 { return nil }
func (Nop) EnterText(*node.Text) (*Queue, error)             { return nil, nil }
func (Nop) LeaveText(*node.Text) error                       { return nil }
func (Nop) EnterCdata(*node.Cdata) (*Queue, error)           { return nil, nil }
func (Nop) LeaveCdata(*node.Cdata) error                     { return nil }
func (Nop) EnterExpression(*node.Expression) (*Queue, error) { return nil, nil }
func (Nop) LeaveExpression(*node.Expression) error           { return nil }
func (Nop) EnterCode(*node.Code) (*Queue, error)             { return nil, nil }
func (Nop) LeaveCode(*node.Code) error                       { return nil }

type config struct {
	skipInvisible bool
}

type Option func(*config)

// WithSkipInvisible makes the walk ignore invisible nodes together with
// their subtrees. Neither enter nor leave is called for them.
func WithSkipInvisible(v bool) Option {
	return func(c *config) {
		c.skipInvisible = v
	}
}

type frame struct {
	node  node.Node
	queue *Queue
}

// Walk visits root and whatever the visitor enqueues below it. The
// first error returned by a handler stops the walk.
func Walk(root node.Node, v Visitor, options ...Option) error {
	if pdebug.Enabled {
		g := pdebug.FuncMarker()
		defer g.End()
	}

	if root == nil {
		return node.ErrNilNode
	}

	var cfg config
	for _, option := range options {
		option(&cfg)
	}

	var stack []frame
	queue := NewQueue(root)
	for {
		item, ok := queue.Pop()
		if ok && !(cfg.skipInvisible && !item.IsVisible()) {
			sub, err := enter(v, item)
			if err != nil {
				return err
			}
			if sub != nil {
				if pdebug.Enabled {
					pdebug.Printf("descending into '%s' (%d nodes)", node.Name(item), sub.Len())
				}
				stack = append(stack, frame{node: item, queue: queue})
				queue = sub
			} else if err := leave(v, item); err != nil {
				return err
			}
		}

		for queue.Len() == 0 {
			if len(stack) == 0 {
				return nil
			}
			top := stack[len(stack)-1]
			stack[len(stack)-1] = frame{}
			stack = stack[:len(stack)-1]
			queue = top.queue
			if err := leave(v, top.node); err != nil {
				return err
			}
		}
	}
}

func enter(v Visitor, n node.Node) (*Queue, error) {
	switch n := n.(type) {
	case *node.Document:
		return v.EnterDocument(n)
	case *node.Element:
		return v.EnterElement(n)
	case *node.Text:
		return v.EnterText(n)
	case *node.Cdata:
		return v.EnterCdata(n)
	case *node.Expression:
		return v.EnterExpression(n)
	case *node.Code:
		return v.EnterCode(n)
	}
	return nil, fmt.Errorf("cannot walk over '%s': %w", node.Name(n), node.ErrInvalidChild)
}

func leave(v Visitor, n node.Node) error {
	switch n := n.(type) {
	case *node.Document:
		return v.LeaveDocument(n)
	case *node.Element:
		return v.LeaveElement(n)
	case *node.Text:
		return v.LeaveText(n)
	case *node.Cdata:
		return v.LeaveCdata(n)
	case *node.Expression:
		return v.LeaveExpression(n)
	case *node.Code:
		return v.LeaveCode(n)
	}
	return fmt.Errorf("cannot walk over '%s': %w", node.Name(n), node.ErrInvalidChild)
}
