package walker

import "github.com/lestrrat-go/declari/node"

// Queue is a FIFO of nodes waiting to be visited.
type Queue struct {
	items []node.Node
	head  int
}

func NewQueue(items ...node.Node) *Queue {
	q := &Queue{}
	for _, item := range items {
		q.Push(item)
	}
	return q
}

// ChildrenOf returns a queue with the children of c, or nil when c has
// no children.
func ChildrenOf(c node.Container) *Queue {
	if c == nil || !c.HasChildren() {
		return nil
	}
	q := &Queue{items: make([]node.Node, 0, c.Count())}
	for child := range c.Children() {
		q.items = append(q.items, child)
	}
	return q
}

func (q *Queue) Push(n node.Node) {
	q.items = append(q.items, n)
}

// Pop removes and returns the first node. The second value is false
// if the queue is empty.
func (q *Queue) Pop() (node.Node, bool) {
	if q.head >= len(q.items) {
		return nil, false
	}
	n := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return n, true
}

func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items) - q.head
}
