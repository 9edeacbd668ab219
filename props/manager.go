// Package props keeps per-node side tables for the compiler pipeline.
// Nodes do not carry compiler state themselves: stages attach it here,
// keyed by node identity, and throw the whole table away once the
// compilation unit is done.
package props

import "github.com/lestrrat-go/declari/node"

// Disposer is implemented by every collection a Manager can hold.
type Disposer interface {
	Dispose()
}

// Manager lazily associates one collection of type T with each node.
type Manager[T Disposer] struct {
	create func() T
	nodes  map[node.Node]T
}

func NewManager[T Disposer](create func() T) *Manager[T] {
	return &Manager[T]{
		create: create,
		nodes:  make(map[node.Node]T),
	}
}

// Get returns the collection of n, creating it on first access.
func (m *Manager[T]) Get(n node.Node) T {
	if v, ok := m.nodes[n]; ok {
		return v
	}
	v := m.create()
	m.nodes[n] = v
	return v
}

// Lookup returns the collection of n without creating one.
func (m *Manager[T]) Lookup(n node.Node) (T, bool) {
	v, ok := m.nodes[n]
	return v, ok
}

// Forget disposes the collection of n, if any.
func (m *Manager[T]) Forget(n node.Node) {
	if v, ok := m.nodes[n]; ok {
		v.Dispose()
		delete(m.nodes, n)
	}
}

func (m *Manager[T]) Len() int {
	return len(m.nodes)
}

// Dispose disposes every collection and drops all associations.
func (m *Manager[T]) Dispose() {
	for _, v := range m.nodes {
		v.Dispose()
	}
	m.nodes = make(map[node.Node]T)
}
