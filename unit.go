package declari

import (
	"slices"

	"github.com/lestrrat-go/declari/props"
)

// Unit holds the state of a single compilation: the node side tables
// shared by the stages and the linker, and the list of templates the
// result depends on.
type Unit struct {
	properties   *props.Manager[*props.Properties]
	codeBuffers  *props.Manager[*props.CodeBuffers]
	dependencies []string
}

func NewUnit() *Unit {
	return &Unit{
		properties:  props.NewManager(props.NewProperties),
		codeBuffers: props.NewManager(props.NewCodeBuffers),
	}
}

func (u *Unit) Properties() *props.Manager[*props.Properties] {
	return u.properties
}

func (u *Unit) CodeBuffers() *props.Manager[*props.CodeBuffers] {
	return u.codeBuffers
}

// AddDependency records a template the compiled output was built
// from. Duplicates are ignored.
func (u *Unit) AddDependency(name string) {
	if slices.Contains(u.dependencies, name) {
		return
	}
	u.dependencies = append(u.dependencies, name)
}

func (u *Unit) Dependencies() []string {
	return slices.Clone(u.dependencies)
}

func (u *Unit) Dispose() {
	u.properties.Dispose()
	u.codeBuffers.Dispose()
	u.dependencies = nil
}
