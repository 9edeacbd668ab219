package declari

import (
	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/props"
	"github.com/lestrrat-go/declari/walker"
)

// InstructionBase carries the state every instruction processor needs.
// Embed it and implement Configure plus the processor interfaces of
// the stages the instruction takes part in.
type InstructionBase struct {
	compiler *Compiler
	queue    *walker.Queue
}

func (b *InstructionBase) SetCompiler(c *Compiler) {
	b.compiler = c
}

func (b *InstructionBase) Compiler() *Compiler {
	return b.compiler
}

// EnqueueChildren asks the running stage to visit every child of c
// once the current processor call returns.
func (b *InstructionBase) EnqueueChildren(c node.Container) {
	for child := range c.Children() {
		b.EnqueueChild(child)
	}
}

func (b *InstructionBase) EnqueueChild(n node.Node) {
	if b.queue == nil {
		b.queue = walker.NewQueue()
	}
	b.queue.Push(n)
}

// TakeEnqueued hands the enqueued nodes over to the stage. It returns
// nil if nothing was enqueued.
func (b *InstructionBase) TakeEnqueued() *walker.Queue {
	q := b.queue
	b.queue = nil
	return q
}

func (b *InstructionBase) Dispose() {
	b.compiler = nil
	b.queue = nil
}

// Properties is a shortcut to the property table of the current unit.
func (b *InstructionBase) Properties(n node.Node) *props.Properties {
	return b.compiler.Unit().Properties().Get(n)
}

// CodeBuffers is a shortcut to the code buffers of the current unit.
func (b *InstructionBase) CodeBuffers(n node.Node) *props.CodeBuffers {
	return b.compiler.Unit().CodeBuffers().Get(n)
}
