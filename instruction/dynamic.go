package instruction

import (
	"github.com/lestrrat-go/declari"
	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/props"
)

// Dynamic marks the expressions inside a d:dynamic element as dynamic
// blocks, which the linker collects for the .dyn artifact.
type Dynamic struct {
	declari.InstructionBase
}

var (
	_ declari.ManipulationElementProcessor = (*Dynamic)(nil)
	_ declari.RuntimeElementProcessor      = (*Dynamic)(nil)
)

func NewDynamic() *Dynamic {
	return &Dynamic{}
}

func (d *Dynamic) Configure() error {
	mst, err := manipulationStage(d.Compiler())
	if err != nil {
		return err
	}
	if err := mst.RegisterElements(d, NamespaceURI, "dynamic"); err != nil {
		return err
	}
	st, err := processingStage(d.Compiler())
	if err != nil {
		return err
	}
	return st.RegisterElements(d, NamespaceURI, "dynamic")
}

func (d *Dynamic) ProcessManipulationElement(el *node.Element) error {
	d.EnqueueChildren(el)
	return nil
}

func (d *Dynamic) PostProcessManipulationElement(*node.Element) error {
	return nil
}

func (d *Dynamic) ProcessRuntimeElement(el *node.Element) error {
	d.Properties(el).Set(props.Dynamic, true)
	el.SetVisible(true)
	d.EnqueueChildren(el)
	return nil
}

func (d *Dynamic) PostProcessRuntimeElement(*node.Element) error {
	return nil
}
