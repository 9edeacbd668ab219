package node

// Expression is a leaf holding an expression in the source language,
// tagged with the name of the engine that compiles it.
type Expression struct {
	treeNode
	source string
	engine string
}

var _ Node = (*Expression)(nil)

func NewExpression(source, engine string) *Expression {
	return &Expression{
		source: source,
		engine: engine,
	}
}

func (*Expression) Type() NodeType {
	return ExpressionNodeType
}

func (e *Expression) Source() string {
	return e.source
}

// Engine is the name of the expression engine registered with the
// compiler.
func (e *Expression) Engine() string {
	return e.engine
}

func (e *Expression) cloneShallow() Node {
	c := &Expression{
		source: e.source,
		engine: e.engine,
	}
	e.copyState(&c.treeNode)
	return c
}
