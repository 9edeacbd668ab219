package parser

import "github.com/lestrrat-go/declari/sax"

type parsedElement struct {
	prefix string
	local  string
	attrs  []*parsedAttribute
	empty  bool
}

var _ sax.ParsedElement = (*parsedElement)(nil)

func (e *parsedElement) Prefix() string {
	return e.prefix
}

func (e *parsedElement) LocalName() string {
	return e.local
}

func (e *parsedElement) Name() string {
	if e.prefix == "" {
		return e.local
	}
	return e.prefix + ":" + e.local
}

func (e *parsedElement) IsEmpty() bool {
	return e.empty
}

func (e *parsedElement) Attributes() []sax.ParsedAttribute {
	list := make([]sax.ParsedAttribute, len(e.attrs))
	for i, a := range e.attrs {
		list[i] = a
	}
	return list
}

type parsedAttribute struct {
	prefix string
	local  string
	value  string
}

var _ sax.ParsedAttribute = (*parsedAttribute)(nil)

func (a *parsedAttribute) Prefix() string {
	return a.prefix
}

func (a *parsedAttribute) LocalName() string {
	return a.local
}

func (a *parsedAttribute) Name() string {
	if a.prefix == "" {
		return a.local
	}
	return a.prefix + ":" + a.local
}

func (a *parsedAttribute) Value() string {
	return a.value
}
