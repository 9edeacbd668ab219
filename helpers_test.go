package declari_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lestrrat-go/declari"
	"github.com/lestrrat-go/declari/node"
	"github.com/stretchr/testify/require"
)

// fakeParser ignores the source and builds a document with a single
// root element named after the template.
type fakeParser struct {
	compiler *declari.Compiler
	build    map[string]func() *node.Document
	parsed   []string
	disposed int
}

func (p *fakeParser) SetCompiler(c *declari.Compiler) { p.compiler = c }

func (p *fakeParser) Parse(_ context.Context, name string, _ []byte) (*node.Document, error) {
	p.parsed = append(p.parsed, name)
	if f, ok := p.build[name]; ok {
		return f(), nil
	}
	doc := node.NewXMLDocument()
	el, err := node.NewElement("", strings.ReplaceAll(name, "/", "_"))
	if err != nil {
		return nil, err
	}
	if err := doc.AppendChild(el); err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *fakeParser) Dispose() { p.disposed++ }

// fakeLinker prints the qualified names of the top level elements.
type fakeLinker struct {
	compiler *declari.Compiler
	inspect  func(*declari.Compiler, *node.Document)
	dynamic  []string
	disposed int
}

func (l *fakeLinker) SetCompiler(c *declari.Compiler) { l.compiler = c }

func (l *fakeLinker) Link(_ context.Context, doc *node.Document) (string, error) {
	if l.inspect != nil {
		l.inspect(l.compiler, doc)
	}
	var names []string
	for child := range doc.Children() {
		names = append(names, node.Name(child))
	}
	return strings.Join(names, ","), nil
}

func (l *fakeLinker) HasDynamicBlocks() bool  { return len(l.dynamic) > 0 }
func (l *fakeLinker) DynamicBlocks() []string { return l.dynamic }
func (l *fakeLinker) Dispose()                { l.disposed++ }

type inheritance struct {
	extend   string
	includes []string
}

// fakeHook answers CheckInheritance from a table keyed by the root
// element name.
type fakeHook struct {
	table   map[string]inheritance
	handled []string
}

func (h *fakeHook) CheckInheritance(doc *node.Document) (string, []string, error) {
	root := doc.RootElement()
	if root == nil {
		return "", nil, nil
	}
	inh := h.table[root.Name()]
	return inh.extend, inh.includes, nil
}

func (h *fakeHook) HandleInheritance(name string, doc *node.Document) error {
	h.handled = append(h.handled, name)
	node.Dispose(doc)
	return nil
}

// recordingStage remembers which trees went through it.
type recordingStage struct {
	name     string
	seen     []string
	disposed int
	fail     error
}

func (s *recordingStage) Name() string                   { return s.name }
func (s *recordingStage) SetCompiler(*declari.Compiler) {}
func (s *recordingStage) Dispose()                       { s.disposed++ }

func (s *recordingStage) Process(_ context.Context, doc *node.Document) (*node.Document, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	if root := doc.RootElement(); root != nil {
		s.seen = append(s.seen, root.Name())
	}
	return doc, nil
}

// upperEngine compiles "x" into "X" and is enough to observe where the
// compiled code ends up.
type upperEngine struct {
	kind declari.ExpressionKind
}

func (upperEngine) SetCompiler(*declari.Compiler) {}
func (upperEngine) Dispose()                      {}

func (e upperEngine) Parse(expr string) (declari.CompiledExpression, error) {
	up := strings.ToUpper(expr)
	return declari.CompiledExpression{Bare: up, Escaped: "esc(" + up + ")", Kind: e.kind}, nil
}

// writeSources creates one file per template name under a temporary
// source directory and returns a configuration pointing at it.
func writeSources(t *testing.T, names ...string) *declari.Config {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		path := filepath.Join(dir, "src", filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("<"+name+"/>"), 0o644))
	}
	cfg := declari.DefaultConfig()
	cfg.SourceDir = filepath.Join(dir, "src")
	cfg.CompileDir = filepath.Join(dir, "out")
	require.NoError(t, cfg.Validate())
	return cfg
}

func newTestCompiler(t *testing.T, cfg *declari.Config) (*declari.Compiler, *fakeParser, *fakeLinker) {
	t.Helper()
	c, err := declari.New(cfg)
	require.NoError(t, err)
	p := &fakeParser{build: map[string]func() *node.Document{}}
	l := &fakeLinker{}
	c.SetParser(p)
	c.SetLinker(l)
	return c, p, l
}
