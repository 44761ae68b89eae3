package mermaid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTransitions(t *testing.T) {
	svg := parseSVG(t, `<svg aria-roledescription="stateDiagram">
		<g class="node" id="state-root_start-0" transform="translate(10,10)"></g>
		<g class="node" id="state-Idle-1" transform="translate(10,50)"><g class="nodeLabel">Idle</g></g>
		<g class="node" id="state-Busy-2" transform="translate(10,100)"><g class="nodeLabel">Busy</g></g>
		<g class="node" id="state-root_end-3" transform="translate(10,150)"></g>
		<path class="transition" d="M10,10 L10,50"></path>
		<path class="transition" d="M10,50 L10,100"></path>
		<path class="transition" d="M10,100 L10,150"></path>
		<g class="edgeLabel" transform="translate(12,75)">go</g>
	</svg>`)

	out, err := State(svg)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "stateDiagram-v2", lines[0])
	assert.Contains(t, out, "[*] --> Idle")
	assert.Contains(t, out, "Idle --> Busy : go")
	assert.Contains(t, out, "Busy --> [*]")
}

func TestStateLabelBeyondThresholdIgnored(t *testing.T) {
	svg := parseSVG(t, `<svg aria-roledescription="stateDiagram">
		<g class="node" id="state-A-0" transform="translate(0,0)"><g class="nodeLabel">A</g></g>
		<g class="node" id="state-B-1" transform="translate(0,40)"><g class="nodeLabel">B</g></g>
		<path class="transition" d="M0,0 L0,40"></path>
		<g class="edgeLabel" transform="translate(500,500)">far away</g>
	</svg>`)

	out, err := State(svg)
	require.NoError(t, err)
	assert.Contains(t, out, "A --> B")
	assert.NotContains(t, out, "far away")
}

func TestStateDescriptionLine(t *testing.T) {
	svg := parseSVG(t, `<svg aria-roledescription="stateDiagram">
		<g class="node" id="state-wait-0" transform="translate(0,0)"><g class="nodeLabel">Waiting for input</g></g>
		<g class="node" id="state-done-1" transform="translate(0,40)"><g class="nodeLabel">done</g></g>
		<path class="transition" d="M0,0 L0,40"></path>
	</svg>`)

	out, err := State(svg)
	require.NoError(t, err)
	assert.Contains(t, out, "wait : Waiting for input")
	assert.NotContains(t, out, "done : done")
	assert.Contains(t, out, "wait --> done")
}

func TestStateEmptyIsUnsupported(t *testing.T) {
	svg := parseSVG(t, `<svg aria-roledescription="stateDiagram"></svg>`)
	_, err := State(svg)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestClassAlwaysUnsupported(t *testing.T) {
	svg := parseSVG(t, `<svg aria-roledescription="classDiagram"><g class="node"></g></svg>`)
	_, err := Class(svg)
	assert.ErrorIs(t, err, ErrUnsupported)
}
