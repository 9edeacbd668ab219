// Package parser reads XML templates. The tokenizer reports what it
// finds to a sax.Handler; TreeBuilder is the handler that turns those
// events into a template tree.
package parser

import (
	"context"

	"github.com/lestrrat-go/declari"
	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/sax"
)

// Parse tokenizes src and delivers the events to h.
func Parse(ctx context.Context, src []byte, h sax.Handler) error {
	pctx := newParserCtx(h)
	if err := pctx.init(src); err != nil {
		return err
	}
	return pctx.parseDocument(ctx)
}

// XML is the template parser plugged into the compiler.
type XML struct {
	compiler *declari.Compiler
}

var _ declari.Parser = (*XML)(nil)

func New() *XML {
	return &XML{}
}

func (p *XML) SetCompiler(c *declari.Compiler) {
	p.compiler = c
}

func (p *XML) Parse(ctx context.Context, name string, src []byte) (*node.Document, error) {
	ctx, span := declari.StartSpan(ctx, "parse "+name)
	defer span.End()

	var r Resolver
	if p.compiler != nil {
		r = p.compiler
	}
	b := NewTreeBuilder(r)
	if err := Parse(ctx, src, b); err != nil {
		if doc := b.Document(); doc != nil {
			node.Dispose(doc)
		}
		declari.TraceError(ctx, err, "parse failed")
		return nil, err
	}
	return b.Document(), nil
}

func (p *XML) Dispose() {
	p.compiler = nil
}
