package s11n_test

import (
	"bytes"
	"testing"

	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/declari/props"
	"github.com/lestrrat-go/declari/s11n"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T) (*node.Document, *node.Element) {
	t.Helper()
	doc := node.NewXMLDocument()
	el, err := node.NewElement("", "p")
	require.NoError(t, err)
	_, err = el.SetAttribute("", "class", "x")
	require.NoError(t, err)
	require.NoError(t, doc.AppendChild(el))
	require.NoError(t, el.AppendChild(node.NewText("Hi & bye")))
	return doc, el
}

func TestDumper(t *testing.T) {
	t.Run("Tree", func(t *testing.T) {
		doc, _ := buildTree(t)

		var buf bytes.Buffer
		d := s11n.Dumper{}
		require.NoError(t, d.DumpDoc(&buf, doc))
		require.Equal(t, `<document type="xml" visible="false">
  <element name="p" visible="false">
    <attribute name="class" value="x"/>
    <text visible="false">
      <cdata data="Hi &amp; bye" visible="false"/>
    </text>
  </element>
</document>
`, buf.String())
	})

	t.Run("Buffers and properties", func(t *testing.T) {
		_, el := buildTree(t)
		el.SetVisible(true)
		el.SetURIIdentifier(0)

		buffers := props.NewManager(props.NewCodeBuffers)
		buffers.Get(el).Append(props.TagBefore, "if($x){")
		properties := props.NewManager(props.NewProperties)
		properties.Get(el).Set(props.PostProcess, true)

		var buf bytes.Buffer
		d := s11n.Dumper{Buffers: buffers, Properties: properties, Indent: "\t"}
		require.NoError(t, d.DumpNode(&buf, el))
		require.Equal(t, "<element name=\"p\" uri=\"0\" visible=\"true\">\n"+
			"\t<attribute name=\"class\" value=\"x\"/>\n"+
			"\t<buffer tag=\"before\"> if($x){</buffer>\n"+
			"\t<property name=\"postprocess\">true</property>\n"+
			"\t<text visible=\"false\">\n"+
			"\t\t<cdata data=\"Hi &amp; bye\" visible=\"false\"/>\n"+
			"\t</text>\n"+
			"</element>\n", buf.String())
	})

	t.Run("Empty element", func(t *testing.T) {
		el, err := node.NewElement("d", "parent")
		require.NoError(t, err)
		el.SetEmpty(true)

		var buf bytes.Buffer
		d := s11n.Dumper{}
		require.NoError(t, d.DumpNode(&buf, el))
		require.Equal(t, `<element name="d:parent" empty="true" visible="false"/>`+"\n", buf.String())
	})
}

func TestEscape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, s11n.EscapeAttrValue(&buf, "a\"b<c>\td"))
	require.Equal(t, "a&#34;b&lt;c&gt;&#9;d", buf.String())

	buf.Reset()
	require.NoError(t, s11n.EscapeText(&buf, "x & y\nz", false))
	require.Equal(t, "x &amp; y\nz", buf.String())

	buf.Reset()
	require.NoError(t, s11n.EscapeText(&buf, "x\nz", true))
	require.Equal(t, "x&#10;z", buf.String())
}
