package declari

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/pdebug/v3"
)

// Compiler drives the compilation of one template at a time. The
// components (parser, stages, linker, expression engines, instructions)
// are bound to the compiler for its whole life, while the per template
// state lives in the Unit and is thrown away at the end of every
// Compile call.
//
// A Compiler is not safe for concurrent use. Compile templates in
// parallel by creating one Compiler per goroutine.
type Compiler struct {
	cfg           *Config
	inflector     Inflector
	parser        Parser
	linker        Linker
	stages        []Stage
	engines       map[string]ExpressionEngine
	defaultEngine string
	namespaces    []string
	namespaceIDs  map[string]int
	instructions  []Instruction
	hook          InheritanceHook
	language      Language
	unit          *Unit
}

// New creates a compiler. A nil cfg means DefaultConfig. The compiler
// works on its own copy of cfg, so one configuration can be shared by
// compilers running in parallel.
func New(cfg *Config) (*Compiler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	inf, err := NewInflectorFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Compiler{
		cfg:          cfg,
		inflector:    inf,
		engines:      make(map[string]ExpressionEngine),
		namespaceIDs: make(map[string]int),
	}, nil
}

func (c *Compiler) Config() *Config {
	return c.cfg
}

func (c *Compiler) SetInflector(inf Inflector) {
	c.inflector = inf
}

func (c *Compiler) Inflector() Inflector {
	return c.inflector
}

// SetLanguage installs a template language. Only one language may be
// installed.
func (c *Compiler) SetLanguage(l Language) error {
	if c.language != nil {
		return ErrLanguageSelected
	}
	if err := l.Initialize(c); err != nil {
		return fmt.Errorf("failed to initialize the template language: %w", err)
	}
	c.language = l
	return nil
}

func (c *Compiler) SetParser(p Parser) {
	c.parser = p
}

func (c *Compiler) Parser() Parser {
	return c.parser
}

func (c *Compiler) SetLinker(l Linker) {
	c.linker = l
}

func (c *Compiler) Linker() Linker {
	return c.linker
}

// AddStage appends a stage to the pipeline. Stages run in the order
// they were added. A stage with the same name replaces the old one in
// place.
func (c *Compiler) AddStage(s Stage) {
	for i, cur := range c.stages {
		if cur.Name() == s.Name() {
			c.stages[i] = s
			return
		}
	}
	c.stages = append(c.stages, s)
}

func (c *Compiler) Stage(name string) (Stage, error) {
	for _, s := range c.stages {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("stage '%s': %w", name, ErrUnknownStage)
}

// StageAs looks a stage up and asserts its type.
func StageAs[T Stage](c *Compiler, name string) (T, error) {
	var zero T
	s, err := c.Stage(name)
	if err != nil {
		return zero, err
	}
	typed, ok := s.(T)
	if !ok {
		return zero, fmt.Errorf("stage '%s' is %T: %w", name, s, ErrUnknownStage)
	}
	return typed, nil
}

func (c *Compiler) AddExpressionEngine(name string, e ExpressionEngine) {
	c.engines[name] = e
}

func (c *Compiler) ExpressionEngine(name string) (ExpressionEngine, error) {
	e, ok := c.engines[name]
	if !ok {
		return nil, fmt.Errorf("expression engine '%s': %w", name, ErrUnknownExpressionEngine)
	}
	return e, nil
}

func (c *Compiler) SetDefaultExpressionEngine(name string) {
	c.defaultEngine = name
}

// DefaultExpressionEngine returns the engine used for expressions
// without an engine prefix. The configuration takes precedence over
// the language default.
func (c *Compiler) DefaultExpressionEngine() string {
	if c.cfg.ExpressionEngine != "" {
		return c.cfg.ExpressionEngine
	}
	return c.defaultEngine
}

// CompileExpression compiles source with the named engine, or with the
// default engine if name is empty.
func (c *Compiler) CompileExpression(source, name string) (CompiledExpression, error) {
	if name == "" {
		name = c.DefaultExpressionEngine()
	}
	e, err := c.ExpressionEngine(name)
	if err != nil {
		return CompiledExpression{}, err
	}
	compiled, err := e.Parse(source)
	if err != nil {
		return CompiledExpression{}, fmt.Errorf("failed to compile expression '%s' with engine '%s': %w", source, name, err)
	}
	return compiled, nil
}

// AddNamespaceURI registers a namespace URI handled by the compiler
// and returns its identifier. Registering the same URI twice returns
// the same identifier.
func (c *Compiler) AddNamespaceURI(uri string) int {
	if id, ok := c.namespaceIDs[uri]; ok {
		return id
	}
	id := len(c.namespaces)
	c.namespaces = append(c.namespaces, uri)
	c.namespaceIDs[uri] = id
	return id
}

func (c *Compiler) HasNamespaceURI(uri string) bool {
	_, ok := c.namespaceIDs[uri]
	return ok
}

func (c *Compiler) NamespaceURI(id int) (string, error) {
	if id < 0 || id >= len(c.namespaces) {
		return "", fmt.Errorf("namespace identifier %d: %w", id, ErrUnknownNamespace)
	}
	return c.namespaces[id], nil
}

func (c *Compiler) URIIdentifier(uri string) (int, error) {
	id, ok := c.namespaceIDs[uri]
	if !ok {
		return 0, fmt.Errorf("namespace '%s': %w", uri, ErrUnknownNamespace)
	}
	return id, nil
}

func (c *Compiler) AddInstruction(i Instruction) {
	c.instructions = append(c.instructions, i)
}

func (c *Compiler) SetInheritanceHook(h InheritanceHook) {
	c.hook = h
}

// Unit returns the state of the compilation in progress, or nil.
func (c *Compiler) Unit() *Unit {
	return c.unit
}

// Compile compiles the named template and writes the artifact. If
// compiledName is empty the path is computed by the inflector.
func (c *Compiler) Compile(ctx context.Context, sourceName, compiledName string) (*Artifact, error) {
	art, err := c.Build(ctx, sourceName)
	if err != nil {
		return nil, err
	}
	if compiledName == "" {
		compiledName, err = c.inflector.CompiledPath(sourceName, art.Dependencies)
		if err != nil {
			return nil, wrapCompileError(sourceName, err)
		}
	}
	art.Path = compiledName
	if err := WriteArtifact(art, c.cfg.CompressDynamic); err != nil {
		return nil, wrapCompileError(sourceName, err)
	}
	getTraceLogFromContext(ctx).Debug("artifact written",
		slog.String("template", sourceName),
		slog.String("path", compiledName),
		slog.Int("dynamic_blocks", len(art.DynamicBlocks)))
	return art, nil
}

// Build runs the whole pipeline except writing the artifact.
func (c *Compiler) Build(ctx context.Context, sourceName string) (*Artifact, error) {
	if pdebug.Enabled {
		g := pdebug.FuncMarker()
		defer g.End()
	}

	ctx, span := StartSpan(ctx, "build")
	defer span.End()

	if c.parser == nil {
		return nil, wrapCompileError(sourceName, ErrNoParser)
	}
	if c.linker == nil {
		return nil, wrapCompileError(sourceName, ErrNoLinker)
	}

	c.unit = NewUnit()
	defer c.dispose()

	if err := c.setup(); err != nil {
		return nil, wrapCompileError(sourceName, err)
	}

	b := newUnitBuilder(c, sourceName)
	defer b.dispose()

	final, err := b.run(ctx)
	if err != nil {
		TraceError(ctx, err, "compilation failed", slog.String("template", b.current))
		return nil, wrapCompileError(b.current, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, wrapCompileError(sourceName, err)
	}
	out, err := c.linker.Link(ctx, final)
	if err != nil {
		return nil, wrapCompileError(sourceName, err)
	}

	art := &Artifact{
		Template:     sourceName,
		Output:       out,
		Dependencies: c.unit.Dependencies(),
	}
	if c.linker.HasDynamicBlocks() {
		art.DynamicBlocks = slices.Clone(c.linker.DynamicBlocks())
	}
	return art, nil
}

func (c *Compiler) setup() error {
	c.parser.SetCompiler(c)
	c.linker.SetCompiler(c)
	for _, s := range c.stages {
		s.SetCompiler(c)
	}
	for _, e := range c.engines {
		e.SetCompiler(c)
	}
	for _, i := range c.instructions {
		i.SetCompiler(c)
		if err := i.Configure(); err != nil {
			return fmt.Errorf("failed to configure %T: %w", i, err)
		}
	}
	return nil
}

func (c *Compiler) dispose() {
	for _, i := range c.instructions {
		i.Dispose()
	}
	for _, s := range c.stages {
		s.Dispose()
	}
	for _, e := range c.engines {
		e.Dispose()
	}
	c.parser.Dispose()
	c.linker.Dispose()
	if c.unit != nil {
		c.unit.Dispose()
		c.unit = nil
	}
}

// Parse loads and parses the named template without running any
// stage. The caller owns the returned tree.
func (c *Compiler) Parse(ctx context.Context, name string) (*node.Document, error) {
	if c.parser == nil {
		return nil, wrapCompileError(name, ErrNoParser)
	}
	c.parser.SetCompiler(c)
	defer c.parser.Dispose()

	doc, err := c.loadTemplate(ctx, name)
	if err != nil {
		return nil, wrapCompileError(name, err)
	}
	return doc, nil
}

// loadTemplate reads and parses a template source.
func (c *Compiler) loadTemplate(ctx context.Context, name string) (*node.Document, error) {
	path, err := c.inflector.SourcePath(name)
	if err != nil {
		return nil, err
	}
	src, err := readSource(name, path, c.cfg.SourceSizeLimit())
	if err != nil {
		return nil, err
	}
	return c.parser.Parse(ctx, name, src)
}
