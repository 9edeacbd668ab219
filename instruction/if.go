package instruction

import (
	"fmt"
	"strings"

	"github.com/lestrrat-go/declari"
	"github.com/lestrrat-go/declari/expr"
	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/props"
)

// If renders its content only when a condition holds. It is available
// as the d:if element, whose condition is the test attribute, and as
// the d:if attribute of an ordinary element.
type If struct {
	declari.InstructionBase
}

var (
	_ declari.ManipulationElementProcessor = (*If)(nil)
	_ declari.RuntimeElementProcessor      = (*If)(nil)
	_ declari.RuntimeAttributeProcessor    = (*If)(nil)
)

func NewIf() *If {
	return &If{}
}

func (i *If) Configure() error {
	mst, err := manipulationStage(i.Compiler())
	if err != nil {
		return err
	}
	if err := mst.RegisterElements(i, NamespaceURI, "if"); err != nil {
		return err
	}

	st, err := processingStage(i.Compiler())
	if err != nil {
		return err
	}
	if err := st.RegisterElements(i, NamespaceURI, "if"); err != nil {
		return err
	}
	return st.RegisterAttributes(i, NamespaceURI, "if")
}

func (i *If) ProcessManipulationElement(el *node.Element) error {
	i.EnqueueChildren(el)
	return nil
}

func (i *If) PostProcessManipulationElement(*node.Element) error {
	return nil
}

func (i *If) ProcessRuntimeElement(el *node.Element) error {
	attrs, err := i.Compiler().ExtractAttributes(el, []declari.AttrSpec{
		{Name: "test", Required: true, Kind: declari.AttrExpression, Engine: expr.ParseEngineName},
	}, nil)
	if err != nil {
		return err
	}
	test, _ := attrs.Expression("test")
	i.wrap(el, test)
	el.SetVisible(true)
	i.EnqueueChildren(el)
	return nil
}

func (i *If) PostProcessRuntimeElement(*node.Element) error {
	return nil
}

func (i *If) ProcessRuntimeAttribute(el *node.Element, attr *node.Attribute) error {
	var engine, source string
	value, e := attr.Value()
	if e != nil {
		engine, source = e.Engine(), e.Source()
	} else {
		engine, source = i.Compiler().DetectExpression(value, expr.ParseEngineName)
	}
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("the condition of '%s' cannot be empty: %w", el.FullyQualifiedName(), declari.ErrInvalidAttributeValue)
	}
	test, err := i.Compiler().CompileExpression(source, engine)
	if err != nil {
		return err
	}
	i.wrap(el, test)
	return nil
}

func (i *If) PostProcessRuntimeAttribute(*node.Element, *node.Attribute) error {
	return nil
}

func (i *If) wrap(el *node.Element, test declari.CompiledExpression) {
	buf := i.CodeBuffers(el)
	buf.Prepend(props.TagBefore, "if("+test.Bare+"){")
	buf.Append(props.TagAfter, "}")
}
