package declari

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lestrrat-go/declari/node"
)

// AttrKind tells ExtractAttributes how to interpret an attribute value.
type AttrKind int

const (
	// AttrID accepts identifiers made of letters, digits, '_' and '.'
	AttrID AttrKind = iota
	// AttrEmptyID is AttrID that also accepts an empty value
	AttrEmptyID
	AttrString
	AttrNumber
	// AttrBoolean accepts yes, no, true and false
	AttrBoolean
	// AttrExpression compiles the value with an expression engine
	AttrExpression
)

func (k AttrKind) String() string {
	switch k {
	case AttrID:
		return "id"
	case AttrEmptyID:
		return "empty id"
	case AttrString:
		return "string"
	case AttrNumber:
		return "number"
	case AttrBoolean:
		return "boolean"
	case AttrExpression:
		return "expression"
	}
	return fmt.Sprintf("attrkind(%d)", int(k))
}

// AttrSpec describes one attribute an instruction accepts.
type AttrSpec struct {
	Name     string
	Required bool
	Kind     AttrKind
	// Default is returned for a missing optional attribute
	Default any
	// Engine is used for AttrExpression values that do not name an
	// engine themselves. Empty means the compiler default.
	Engine string
}

var (
	enginePrefix = regexp.MustCompile(`^([a-zA-Z0-9_]{2,}):([^:].*)$`)
	identifier   = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)
	number       = regexp.MustCompile(`^(-?[0-9]+\.?[0-9]*|0[xX][0-9a-fA-F]+)$`)
)

// SplitEnginePrefix splits "engine:expression". ok is false when the
// value does not start with an engine name.
func SplitEnginePrefix(value string) (engine, expr string, ok bool) {
	m := enginePrefix.FindStringSubmatch(value)
	if m == nil {
		return "", value, false
	}
	return m[1], m[2], true
}

// DetectExpression returns the engine that must compile expr and the
// expression without its engine prefix. Without a prefix the suggested
// engine is used, or the default one if suggested is empty.
func (c *Compiler) DetectExpression(expr, suggested string) (engine, source string) {
	if engine, source, ok := SplitEnginePrefix(expr); ok {
		return engine, source
	}
	if suggested != "" {
		return suggested, expr
	}
	return c.DefaultExpressionEngine(), expr
}

// ExtractedAttribute is an attribute matched by the catch-all spec.
type ExtractedAttribute struct {
	Name  string
	Value any
}

// ExtractedAttributes holds the values read by ExtractAttributes.
type ExtractedAttributes struct {
	values map[string]any
	// Unknown lists the remaining attributes in document order, if a
	// catch-all spec was given.
	Unknown []ExtractedAttribute
}

func (a *ExtractedAttributes) Get(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

func (a *ExtractedAttributes) Has(name string) bool {
	v, ok := a.values[name]
	return ok && v != nil
}

func (a *ExtractedAttributes) String(name string) string {
	s, _ := a.values[name].(string)
	return s
}

func (a *ExtractedAttributes) Bool(name string) bool {
	b, _ := a.values[name].(bool)
	return b
}

func (a *ExtractedAttributes) Expression(name string) (CompiledExpression, bool) {
	e, ok := a.values[name].(CompiledExpression)
	return e, ok
}

// ExtractAttributes reads the ordinary attributes of el according to
// specs. Attributes in a registered namespace are ignored. If unknown
// is not nil, attributes not listed in specs are read with it and
// returned in Unknown; otherwise they are ignored.
func (c *Compiler) ExtractAttributes(el *node.Element, specs []AttrSpec, unknown *AttrSpec) (*ExtractedAttributes, error) {
	out := &ExtractedAttributes{values: make(map[string]any, len(specs))}
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		seen[spec.Name] = struct{}{}
		attr, err := el.Attribute(spec.Name)
		if err != nil {
			if spec.Required {
				return nil, fmt.Errorf("cannot find the attribute '%s' in '%s': %w", spec.Name, el.FullyQualifiedName(), ErrRequiredAttribute)
			}
			out.values[spec.Name] = spec.Default
			continue
		}
		if _, special := attr.URIIdentifier(); special {
			continue
		}
		v, err := c.attributeValue(el, attr, spec)
		if err != nil {
			return nil, err
		}
		out.values[spec.Name] = v
	}

	if unknown == nil {
		return out, nil
	}
	for _, attr := range el.Attributes(nil) {
		if _, special := attr.URIIdentifier(); special {
			continue
		}
		name := attr.FullyQualifiedName()
		if _, ok := seen[name]; ok {
			continue
		}
		v, err := c.attributeValue(el, attr, *unknown)
		if err != nil {
			return nil, err
		}
		out.Unknown = append(out.Unknown, ExtractedAttribute{Name: name, Value: v})
	}
	return out, nil
}

func (c *Compiler) attributeValue(el *node.Element, attr *node.Attribute, spec AttrSpec) (any, error) {
	value, expr := attr.Value()
	if spec.Kind == AttrExpression {
		var engine, source string
		if expr != nil {
			engine, source = expr.Engine(), expr.Source()
		} else {
			engine, source = c.DetectExpression(value, spec.Engine)
		}
		if strings.TrimSpace(source) == "" {
			return nil, fmt.Errorf("the attribute '%s' in '%s' cannot be empty: %w", attr.FullyQualifiedName(), el.FullyQualifiedName(), ErrInvalidAttributeValue)
		}
		return c.CompileExpression(source, engine)
	}

	if expr != nil {
		return nil, fmt.Errorf("the attribute '%s' in '%s' must not be an expression: %w", attr.FullyQualifiedName(), el.FullyQualifiedName(), ErrInvalidAttributeValue)
	}

	switch spec.Kind {
	case AttrEmptyID:
		if value == "" {
			return "", nil
		}
		fallthrough
	case AttrID:
		if !identifier.MatchString(value) {
			return nil, fmt.Errorf("the attribute '%s' in '%s' must be a valid identifier: %w", attr.FullyQualifiedName(), el.FullyQualifiedName(), ErrInvalidAttributeValue)
		}
		return value, nil
	case AttrString:
		return value, nil
	case AttrNumber:
		if !number.MatchString(value) {
			return nil, fmt.Errorf("the attribute '%s' in '%s' must be a valid number: %w", attr.FullyQualifiedName(), el.FullyQualifiedName(), ErrInvalidAttributeValue)
		}
		return value, nil
	case AttrBoolean:
		switch value {
		case "yes", "true":
			return true, nil
		case "no", "false":
			return false, nil
		}
		return nil, fmt.Errorf("the attribute '%s' in '%s' must be 'yes', 'no', 'true' or 'false': %w", attr.FullyQualifiedName(), el.FullyQualifiedName(), ErrInvalidAttributeValue)
	}
	return nil, fmt.Errorf("attribute '%s' in '%s' has kind %s: %w", attr.FullyQualifiedName(), el.FullyQualifiedName(), spec.Kind, ErrInvalidAttributeSpec)
}
