package props

import (
	"maps"
	"slices"
)

// Well known property names shared between stages and the linker.
const (
	// PostProcess asks the stage to call the post-process hook of the
	// processor once the node's subtree has been handled
	PostProcess = "postprocess"
	// Dynamic marks an element whose expressions are collected as
	// dynamic blocks by the linker
	Dynamic = "dynamic"
	// LinkName is the tag name the linker printed when it opened an
	// element, reused for the closing tag
	LinkName = "link:name"
)

// Properties is a bag of named values attached to a node.
type Properties struct {
	values map[string]any
}

func NewProperties() *Properties {
	return &Properties{}
}

func (p *Properties) Get(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

// String returns the property as a string, or "" if it is missing or
// has a different type.
func (p *Properties) String(name string) string {
	s, _ := p.values[name].(string)
	return s
}

func (p *Properties) Bool(name string) bool {
	b, _ := p.values[name].(bool)
	return b
}

func (p *Properties) Int(name string) int {
	i, _ := p.values[name].(int)
	return i
}

func (p *Properties) Set(name string, value any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	p.values[name] = value
}

func (p *Properties) Delete(name string) {
	delete(p.values, name)
}

// Names returns the names of the properties in sorted order.
func (p *Properties) Names() []string {
	return slices.Sorted(maps.Keys(p.values))
}

func (p *Properties) Len() int {
	return len(p.values)
}

func (p *Properties) Dispose() {
	p.values = nil
}
