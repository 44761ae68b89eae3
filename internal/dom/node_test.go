package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringBuildsTree(t *testing.T) {
	root, err := ParseString(`<div class="outer box"><p id="p1">hello <b>world</b></p></div>`)
	require.NoError(t, err)

	div := root.FindClass("outer")
	require.NotNil(t, div)
	assert.True(t, div.HasClass("box"))
	assert.False(t, div.HasClass("inner"))

	p := div.FindTag("p")
	require.NotNil(t, p)
	assert.Equal(t, "p1", p.Attr("id"))
	assert.Equal(t, "hello world", p.TextContent())
}

func TestAttrMissing(t *testing.T) {
	root, err := ParseString(`<span>x</span>`)
	require.NoError(t, err)
	span := root.FindTag("span")
	require.NotNil(t, span)
	assert.Equal(t, "", span.Attr("href"))
}

func TestDescendantsOrder(t *testing.T) {
	root, err := ParseString(`<ul><li>a</li><li>b</li><li>c</li></ul>`)
	require.NoError(t, err)

	items := root.Descendants(func(n *Node) bool { return n.IsElement("li") })
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].TextContent())
	assert.Equal(t, "c", items[2].TextContent())
}

func TestElementChildrenSkipsTextAndFiltersByTag(t *testing.T) {
	root, err := ParseString(`<ul>text<li>a</li><span>s</span><li>b</li></ul>`)
	require.NoError(t, err)
	ul := root.FindTag("ul")
	require.NotNil(t, ul)

	assert.Len(t, ul.ElementChildren(""), 3)
	assert.Len(t, ul.ElementChildren("li"), 2)
}

func TestSVGAttributesLowercased(t *testing.T) {
	root, err := ParseString(`<svg id="mermaid-1" aria-roledescription="flowchart-v2"><g class="node default" id="flowchart-A-1"></g></svg>`)
	require.NoError(t, err)

	svg := root.FindTag("svg")
	require.NotNil(t, svg)
	assert.Equal(t, "flowchart-v2", svg.Attr("aria-roledescription"))

	g := svg.FindClass("node")
	require.NotNil(t, g)
	assert.Equal(t, "flowchart-A-1", g.Attr("id"))
}
