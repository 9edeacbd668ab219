// Package expr contains the expression engines of the Declari language.
package expr

import "errors"

const (
	// ParseEngineName is the engine for variable expressions
	ParseEngineName = "parse"
	// StringEngineName is the engine for string literals
	StringEngineName = "str"
)

var (
	ErrEmptyExpression     = errors.New("empty expression")
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrInvalidVariable     = errors.New("invalid variable name")
	ErrInvalidAssignment   = errors.New("only a variable can be assigned to")
	ErrUnexpectedCharacter = errors.New("unexpected character")
)
