// Package declari compiles XML templates into executable program text.
//
// A Compiler runs one compilation unit at a time: the source is parsed
// into a node tree, the tree goes through an ordered list of stages,
// inheritance requests are resolved and the final tree is handed to a
// linker which produces the compiled artifact.
package declari

import (
	"context"

	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/walker"
)

const Version = "v0.1.0"

// Parser turns template source into a document tree.
type Parser interface {
	SetCompiler(*Compiler)
	Parse(ctx context.Context, name string, src []byte) (*node.Document, error)
	Dispose()
}

// Linker serializes the final tree.
type Linker interface {
	SetCompiler(*Compiler)
	Link(ctx context.Context, doc *node.Document) (string, error)
	// HasDynamicBlocks reports whether the last Link call collected
	// fragments that must not be cached.
	HasDynamicBlocks() bool
	DynamicBlocks() []string
	Dispose()
}

// ExpressionKind tells a stage how the compiled expression is used.
type ExpressionKind int

const (
	// ExprDefault values are printed
	ExprDefault ExpressionKind = iota
	// ExprAssignment expressions are executed for their side effect
	ExprAssignment
	// ExprScalar values are known at compile time
	ExprScalar
)

func (k ExpressionKind) String() string {
	switch k {
	case ExprAssignment:
		return "assignment"
	case ExprScalar:
		return "scalar"
	}
	return "default"
}

// CompiledExpression is the output of an expression engine.
type CompiledExpression struct {
	// Bare evaluates to the value of the expression
	Bare string
	// Escaped evaluates to the value made safe for markup output
	Escaped string
	Kind    ExpressionKind
}

// ExpressionEngine compiles expressions written in one expression
// language.
type ExpressionEngine interface {
	SetCompiler(*Compiler)
	Parse(expr string) (CompiledExpression, error)
	Dispose()
}

// Instruction is an instruction processor. Configure is called once per
// compilation, after SetCompiler, and is where the processor registers
// itself with the stages it takes part in.
type Instruction interface {
	SetCompiler(*Compiler)
	Configure() error
	Dispose()
	// TakeEnqueued returns the nodes the processor asked to be visited
	// next and resets the internal queue.
	TakeEnqueued() *walker.Queue
}

// InheritanceHook resolves template inheritance for the compiler.
type InheritanceHook interface {
	// CheckInheritance inspects a freshly parsed document. extend is
	// the template the document extends, or "". includes lists the
	// templates that must be compiled before the document itself.
	CheckInheritance(doc *node.Document) (extend string, includes []string, err error)
	// HandleInheritance receives a processed document that is not the
	// final tree. The hook takes ownership of it.
	HandleInheritance(name string, doc *node.Document) error
}

// Language installs a template language into a compiler.
type Language interface {
	Initialize(*Compiler) error
}
