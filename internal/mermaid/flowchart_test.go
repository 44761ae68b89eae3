package mermaid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepwiki-tools/wikidoc/internal/dom"
)

func parseSVG(t *testing.T, svg string) *dom.Node {
	t.Helper()
	root, err := dom.ParseString(svg)
	require.NoError(t, err)
	node := root.FindTag("svg")
	require.NotNil(t, node, "fixture must contain an svg element")
	return node
}

func TestFlowchartNodesAndEdge(t *testing.T) {
	svg := parseSVG(t, `<svg id="mermaid-1" aria-roledescription="flowchart-v2">
		<g class="node default" id="flowchart-A-1">
			<g class="label"><foreignObject><div>Alpha</div></foreignObject></g>
		</g>
		<g class="node default" id="flowchart-B-2">
			<g class="label">Beta</g>
		</g>
		<path class="flowchart-link" id="L_A_B_0" d="M0,0 L10,10"></path>
	</svg>`)

	out, err := Flowchart(svg)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "flowchart TD"))
	assert.Contains(t, out, `A["Alpha"]`)
	assert.Contains(t, out, `B["Beta"]`)
	assert.Contains(t, out, "A --> B")
}

func TestFlowchartClusterAssignment(t *testing.T) {
	svg := parseSVG(t, `<svg id="mermaid-2" aria-roledescription="flowchart-v2">
		<g class="cluster" id="G1">
			<rect x="0" y="0" width="100" height="100"></rect>
			<g class="cluster-label"><foreignObject><div>Group</div></foreignObject></g>
		</g>
		<g class="node default" id="flowchart-A-1" transform="translate(10,10)">
			<g class="label">Inside</g>
		</g>
		<g class="node default" id="flowchart-B-2" transform="translate(200,200)">
			<g class="label">Outside</g>
		</g>
	</svg>`)

	out, err := Flowchart(svg)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, `subgraph G1["Group"]`, lines[1])
	assert.Equal(t, `    A["Inside"]`, lines[2])
	assert.Equal(t, "end", lines[3])
	assert.Equal(t, `B["Outside"]`, lines[4])
}

func TestFlowchartNestedClusters(t *testing.T) {
	svg := parseSVG(t, `<svg id="mermaid-3" aria-roledescription="flowchart-v2">
		<g class="cluster" id="outer">
			<rect x="0" y="0" width="200" height="200"></rect>
			<g class="cluster-label">Outer</g>
		</g>
		<g class="cluster" id="inner">
			<rect x="10" y="10" width="50" height="50"></rect>
			<g class="cluster-label">Inner</g>
		</g>
		<g class="node default" id="flowchart-N-1" transform="translate(20,20)">
			<g class="label">Nested</g>
		</g>
	</svg>`)

	out, err := Flowchart(svg)
	require.NoError(t, err)

	// The node belongs to the innermost cluster only, and the inner cluster
	// is nested inside the outer one.
	assert.Equal(t, 1, strings.Count(out, `N["Nested"]`), "node claimed exactly once")
	outerIdx := strings.Index(out, `subgraph outer["Outer"]`)
	innerIdx := strings.Index(out, `subgraph inner["Inner"]`)
	nodeIdx := strings.Index(out, `N["Nested"]`)
	require.True(t, outerIdx >= 0 && innerIdx >= 0 && nodeIdx >= 0)
	assert.Less(t, outerIdx, innerIdx)
	assert.Less(t, innerIdx, nodeIdx)
	assert.Contains(t, out, `        N["Nested"]`, "node indented under the nested subgraph")
}

func TestFlowchartEdgesDedupedAndSorted(t *testing.T) {
	svg := parseSVG(t, `<svg id="mermaid-4" aria-roledescription="flowchart-v2">
		<g class="node default" id="flowchart-A-1"><g class="label">A</g></g>
		<g class="node default" id="flowchart-B-2"><g class="label">B</g></g>
		<g class="node default" id="flowchart-C-3"><g class="label">C</g></g>
		<path class="flowchart-link" id="L_B_C_0"></path>
		<path class="flowchart-link" id="L_A_B_0"></path>
		<path class="flowchart-link" id="L_A_B_1"></path>
	</svg>`)

	out, err := Flowchart(svg)
	require.NoError(t, err)

	idx := strings.Index(out, "A --> B")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, 1, strings.Count(out, "A --> B"), "duplicate edges collapse")
	assert.Less(t, idx, strings.Index(out, "B --> C"), "edges sorted lexicographically")
}

func TestFlowchartUnresolvableEdgeDropped(t *testing.T) {
	svg := parseSVG(t, `<svg id="mermaid-5" aria-roledescription="flowchart-v2">
		<g class="node default" id="flowchart-A-1"><g class="label">A</g></g>
		<path class="flowchart-link" id="L_A_Ghost_0"></path>
	</svg>`)

	out, err := Flowchart(svg)
	require.NoError(t, err)
	assert.NotContains(t, out, "-->")
	assert.NotContains(t, out, "Ghost")
}

func TestFlowchartEmptyIsUnsupported(t *testing.T) {
	svg := parseSVG(t, `<svg id="mermaid-6" aria-roledescription="flowchart-v2"><g></g></svg>`)
	_, err := Flowchart(svg)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestFlowchartQuotesNormalized(t *testing.T) {
	svg := parseSVG(t, `<svg id="mermaid-7" aria-roledescription="flowchart-v2">
		<g class="node default" id="flowchart-A-1"><g class="label">say "hi"</g></g>
	</svg>`)

	out, err := Flowchart(svg)
	require.NoError(t, err)
	assert.Contains(t, out, `A["say 'hi'"]`)
}

func TestFlowchartClusterTitleFallsBackToID(t *testing.T) {
	svg := parseSVG(t, `<svg id="mermaid-8" aria-roledescription="flowchart-v2">
		<g class="cluster" id="G7"><rect x="0" y="0" width="10" height="10"></rect></g>
	</svg>`)

	out, err := Flowchart(svg)
	require.NoError(t, err)
	assert.Contains(t, out, `subgraph G7["G7"]`)
}
