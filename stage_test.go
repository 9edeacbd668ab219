package declari_test

import (
	"context"
	"testing"

	"github.com/lestrrat-go/declari"
	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/props"
	"github.com/stretchr/testify/require"
)

const testNS = "urn:test"

// wrapInstruction takes part in both stages. It keeps the children of
// <t:wrap> and surrounds them with code.
type wrapInstruction struct {
	declari.InstructionBase
	events []string
}

func (w *wrapInstruction) Configure() error {
	ms, err := declari.StageAs[*declari.ManipulationStage](w.Compiler(), declari.ManipulationStageName)
	if err != nil {
		return err
	}
	if err := ms.RegisterElements(w, testNS, "wrap"); err != nil {
		return err
	}
	ps, err := declari.StageAs[*declari.ProcessingStage](w.Compiler(), declari.ProcessingStageName)
	if err != nil {
		return err
	}
	if err := ps.RegisterElements(w, testNS, "wrap"); err != nil {
		return err
	}
	return ps.RegisterAttributes(w, testNS, "mark")
}

func (w *wrapInstruction) ProcessManipulationElement(el *node.Element) error {
	w.events = append(w.events, "manipulate:"+el.Name())
	w.Properties(el).Set(props.PostProcess, true)
	w.EnqueueChildren(el)
	return nil
}

func (w *wrapInstruction) PostProcessManipulationElement(el *node.Element) error {
	w.events = append(w.events, "post-manipulate:"+el.Name())
	return nil
}

func (w *wrapInstruction) ProcessRuntimeElement(el *node.Element) error {
	w.events = append(w.events, "process:"+el.Name())
	el.SetVisible(true)
	w.CodeBuffers(el).Append(props.TagBefore, "begin();")
	w.Properties(el).Set(props.PostProcess, true)
	w.EnqueueChildren(el)
	return nil
}

func (w *wrapInstruction) PostProcessRuntimeElement(el *node.Element) error {
	w.events = append(w.events, "post-process:"+el.Name())
	w.CodeBuffers(el).Append(props.TagAfter, "end();")
	return nil
}

func (w *wrapInstruction) ProcessRuntimeAttribute(el *node.Element, attr *node.Attribute) error {
	w.events = append(w.events, "attribute:"+attr.Name()+"@"+el.Name())
	w.Properties(attr).Set(props.PostProcess, true)
	return nil
}

func (w *wrapInstruction) PostProcessRuntimeAttribute(el *node.Element, attr *node.Attribute) error {
	w.events = append(w.events, "post-attribute:"+attr.Name()+"@"+el.Name())
	return nil
}

func TestStageRegistration(t *testing.T) {
	c, err := declari.New(nil)
	require.NoError(t, err)
	ms := declari.NewManipulationStage()
	ms.SetCompiler(c)

	w := &wrapInstruction{}
	require.ErrorIs(t, ms.RegisterElements(w, "urn:unknown", "wrap"), declari.ErrUnknownNamespace)

	c.AddNamespaceURI(testNS)
	require.NoError(t, ms.RegisterElements(w, testNS, "wrap"))
	require.ErrorIs(t, ms.RegisterAttributes(w, testNS, "mark"), declari.ErrProcessorMismatch, "wrap has no manipulation attribute hooks")
}

func TestStages(t *testing.T) {
	cfg := writeSources(t, "main")
	c, p, l := newTestCompiler(t, cfg)
	id := c.AddNamespaceURI(testNS)
	c.AddStage(declari.NewManipulationStage())
	c.AddStage(declari.NewProcessingStage())
	c.AddExpressionEngine("up", upperEngine{})
	c.AddExpressionEngine("assign", upperEngine{kind: declari.ExprAssignment})
	c.AddExpressionEngine("scalar", upperEngine{kind: declari.ExprScalar})
	c.SetDefaultExpressionEngine("up")
	w := &wrapInstruction{}
	c.AddInstruction(w)

	var (
		html, wrap, skip, hidden *node.Element
		cls, mark                *node.Attribute
		text                     *node.Text
		exprDefault, exprAssign  *node.Expression
		exprScalar               *node.Expression
	)
	special := func(name string) *node.Element {
		el, err := node.NewElement("t", name)
		require.NoError(t, err)
		el.SetURIIdentifier(id)
		return el
	}
	p.build["main"] = func() *node.Document {
		doc := node.NewXMLDocument()
		html = mustElement(t, "", "html")
		require.NoError(t, doc.AppendChild(html))

		cls, _ = node.NewAttribute("", "class")
		cls.SetExpression(node.NewExpression("x", ""))
		require.NoError(t, html.AddAttribute(cls))
		mark, _ = node.NewAttribute("t", "mark")
		mark.SetURIIdentifier(id)
		require.NoError(t, html.AddAttribute(mark))

		wrap = special("wrap")
		require.NoError(t, html.AppendChild(wrap))
		text = node.NewText("Hello ")
		exprDefault = node.NewExpression("name", "")
		exprAssign = node.NewExpression("a", "assign")
		exprScalar = node.NewExpression("s", "scalar")
		require.NoError(t, text.AppendChild(exprDefault))
		require.NoError(t, text.AppendChild(exprAssign))
		require.NoError(t, text.AppendChild(exprScalar))
		require.NoError(t, wrap.AppendChild(text))

		skip = special("unknown")
		hidden = mustElement(t, "", "p")
		require.NoError(t, skip.AppendChild(hidden))
		require.NoError(t, html.AppendChild(skip))
		return doc
	}

	l.inspect = func(c *declari.Compiler, doc *node.Document) {
		u := c.Unit()
		require.NotNil(t, u)
		require.True(t, doc.IsVisible())
		require.True(t, html.IsVisible())
		require.True(t, wrap.IsVisible())
		require.True(t, text.IsVisible())
		require.True(t, text.FirstChild().IsVisible(), "literal text is visible")
		require.False(t, skip.IsVisible(), "special elements without a processor are left alone")
		require.False(t, hidden.IsVisible())

		require.Equal(t, " echo esc(X);", u.CodeBuffers().Get(cls).Buffer(props.AttributeValue))
		require.False(t, cls.IsDynamic(), "the compiled value replaces the expression")

		require.Equal(t, " begin();", u.CodeBuffers().Get(wrap).Buffer(props.TagBefore))
		require.Equal(t, " end();", u.CodeBuffers().Get(wrap).Buffer(props.TagAfter))

		def := u.CodeBuffers().Get(exprDefault)
		require.Equal(t, " echo esc(NAME);", def.Buffer(props.TagContent))
		require.Equal(t, props.CodeDynamic, def.CodeType())
		require.Equal(t, " A;", u.CodeBuffers().Get(exprAssign).Buffer(props.TagContent))
		sc := u.CodeBuffers().Get(exprScalar)
		require.Equal(t, " echo esc(S);", sc.Buffer(props.TagContent))
		require.Equal(t, props.CodeStatic, sc.CodeType())

		require.False(t, u.Properties().Get(wrap).Bool(props.PostProcess), "the post-process flag is consumed")
	}

	_, err := c.Build(context.Background(), "main")
	require.NoError(t, err)
	require.Equal(t, []string{
		"manipulate:wrap",
		"post-manipulate:wrap",
		"attribute:mark@html",
		"process:wrap",
		"post-process:wrap",
		"post-attribute:mark@html",
	}, w.events)
}

func TestUnknownExpressionEngine(t *testing.T) {
	cfg := writeSources(t, "main")
	c, p, _ := newTestCompiler(t, cfg)
	c.AddStage(declari.NewProcessingStage())
	p.build["main"] = func() *node.Document {
		doc := node.NewXMLDocument()
		el := mustElement(t, "", "div")
		el.SetLine(7)
		attr, _ := node.NewAttribute("", "title")
		attr.SetExpression(node.NewExpression("x", "nope"))
		require.NoError(t, el.AddAttribute(attr))
		require.NoError(t, doc.AppendChild(el))
		return doc
	}

	_, err := c.Build(context.Background(), "main")
	require.ErrorIs(t, err, declari.ErrUnknownExpressionEngine)
	var cerr *declari.CompileError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "main", cerr.Template)
	require.Equal(t, "title", cerr.Node)
}

func mustElement(t *testing.T, ns, name string) *node.Element {
	t.Helper()
	el, err := node.NewElement(ns, name)
	require.NoError(t, err)
	return el
}
