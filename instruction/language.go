// Package instruction implements the Declari template language: the
// template/extend/load inheritance instructions, macros, conditions and
// dynamic blocks, together with the initializer that assembles a
// compiler for it.
package instruction

import (
	"errors"

	"github.com/lestrrat-go/declari"
	"github.com/lestrrat-go/declari/expr"
	"github.com/lestrrat-go/declari/linker"
	"github.com/lestrrat-go/declari/parser"
)

// NamespaceURI is the namespace of the Declari instructions.
const NamespaceURI = "http://xml.invenzzia.org/declari"

var (
	ErrIncompatibleMacro = errors.New("macro redefined with different arguments")
	ErrTemplateNotLoaded = errors.New("template was not loaded")
)

// Declari is the template language. Install it with
// (*declari.Compiler).SetLanguage.
type Declari struct{}

var _ declari.Language = Declari{}

func (Declari) Initialize(c *declari.Compiler) error {
	if c.Parser() != nil || c.Linker() != nil {
		return declari.ErrLanguageSelected
	}
	c.SetParser(parser.New())
	c.SetLinker(linker.New())

	c.AddStage(declari.NewManipulationStage())
	c.AddStage(declari.NewProcessingStage())

	c.AddNamespaceURI(NamespaceURI)

	c.AddExpressionEngine(expr.ParseEngineName, expr.NewParse())
	c.AddExpressionEngine(expr.StringEngineName, expr.NewString())
	c.SetDefaultExpressionEngine(expr.ParseEngineName)

	c.AddInstruction(NewTemplate())
	c.AddInstruction(NewMacro())
	c.AddInstruction(NewIf())
	c.AddInstruction(NewDynamic())
	return nil
}

// New creates a compiler with the Declari language installed.
func New(cfg *declari.Config) (*declari.Compiler, error) {
	c, err := declari.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.SetLanguage(Declari{}); err != nil {
		return nil, err
	}
	return c, nil
}

func manipulationStage(c *declari.Compiler) (*declari.ManipulationStage, error) {
	return declari.StageAs[*declari.ManipulationStage](c, declari.ManipulationStageName)
}

func processingStage(c *declari.Compiler) (*declari.ProcessingStage, error) {
	return declari.StageAs[*declari.ProcessingStage](c, declari.ProcessingStageName)
}
