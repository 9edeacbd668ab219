package node

// CodeKind tells the linker how to emit a Code node.
type CodeKind int

const (
	// CodeProgram fragments are emitted inside code delimiters
	CodeProgram CodeKind = iota
	// CodePlain fragments are emitted verbatim
	CodePlain
)

// Code is a raw fragment of output language code.
type Code struct {
	treeNode
	kind    CodeKind
	content string
}

var _ Node = (*Code)(nil)

func NewCode(kind CodeKind, content string) *Code {
	return &Code{
		kind:    kind,
		content: content,
	}
}

func (*Code) Type() NodeType {
	return CodeNodeType
}

func (c *Code) Kind() CodeKind {
	return c.kind
}

func (c *Code) Content() string {
	return c.content
}

func (c *Code) cloneShallow() Node {
	n := &Code{
		kind:    c.kind,
		content: c.content,
	}
	c.copyState(&n.treeNode)
	return n
}
