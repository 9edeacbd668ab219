package expr

import (
	"strings"

	"github.com/lestrrat-go/declari"
)

var slashes = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `"`, `\"`, "\x00", `\0`)

// String treats the whole expression as a string literal, so
// str:Hello prints "Hello".
type String struct{}

var _ declari.ExpressionEngine = String{}

func NewString() String {
	return String{}
}

func (String) SetCompiler(*declari.Compiler) {}

func (String) Dispose() {}

func (String) Parse(expr string) (declari.CompiledExpression, error) {
	quoted := "'" + slashes.Replace(expr) + "'"
	return declari.CompiledExpression{
		Bare:    quoted,
		Escaped: "htmlspecialchars(" + quoted + ")",
		Kind:    declari.ExprScalar,
	}, nil
}
