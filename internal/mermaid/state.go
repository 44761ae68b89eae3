package mermaid

import (
	"strings"

	"github.com/deepwiki-tools/wikidoc/internal/dom"
	"github.com/deepwiki-tools/wikidoc/internal/geometry"
)

// Floating transition labels attach to the geometrically closest edge, but
// only within this distance of the edge midpoint (source coordinate units).
const stateLabelThreshold = 75.0

type stateNode struct {
	id      string
	text    string
	pos     geometry.Point
	isStart bool
	isEnd   bool
}

type stateTransition struct {
	from, to *stateNode
	mid      geometry.Point
	label    string
}

// State reconstructs mermaid stateDiagram-v2 notation from a rendered
// diagram subtree. Start and end pseudo-states carry no reliable visual
// marker, so they are recognized by the "root_start"/"root_end" substrings
// the renderer puts in their ids. Transition endpoints map to the nearest
// state center by Euclidean distance.
func State(root *dom.Node) (string, error) {
	states := collectStates(root)
	if len(states) == 0 {
		return "", ErrUnsupported
	}

	transitions := collectTransitions(root, states)
	attachTransitionLabels(root, transitions)

	lines := []string{"stateDiagram-v2"}
	for _, s := range states {
		if s.isStart || s.isEnd || s.text == "" || s.text == s.id {
			continue
		}
		lines = append(lines, "    "+s.id+" : "+s.text)
	}
	for _, t := range transitions {
		src, tgt := t.from.id, t.to.id
		if t.from.isStart {
			src = "[*]"
		}
		if t.to.isEnd {
			tgt = "[*]"
		}
		line := "    " + src + " --> " + tgt
		if t.label != "" {
			line += " : " + t.label
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func collectStates(root *dom.Node) []*stateNode {
	var states []*stateNode
	seen := make(map[string]bool)

	shapes := root.Descendants(func(n *dom.Node) bool {
		return n.IsElement("g") && n.HasClass("node")
	})
	for _, shape := range shapes {
		raw := shape.Attr("id")
		if raw == "" {
			continue
		}
		box, ok := geometry.BoxFromAttrs(shape.Attrs)
		if !ok {
			continue
		}
		id := hyphenCounterRe.ReplaceAllString(strings.TrimPrefix(raw, "state-"), "")
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		text := labelText(shape.FindClass("nodeLabel"))
		if text == "" {
			text = labelText(shape.FindClass("label"))
		}
		states = append(states, &stateNode{
			id:      id,
			text:    text,
			pos:     geometry.Point{X: box.Left, Y: box.Top},
			isStart: strings.Contains(raw, "root_start"),
			isEnd:   strings.Contains(raw, "root_end"),
		})
	}
	return states
}

func collectTransitions(root *dom.Node, states []*stateNode) []*stateTransition {
	var transitions []*stateTransition
	paths := root.Descendants(func(n *dom.Node) bool {
		return n.IsElement("path") && strings.Contains(strings.ToLower(n.Attr("class")), "transition")
	})
	for _, path := range paths {
		start, end, ok := messageEndpoints(path)
		if !ok {
			continue
		}
		from := nearestState(states, start)
		to := nearestState(states, end)
		transitions = append(transitions, &stateTransition{
			from: from,
			to:   to,
			mid:  geometry.Point{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2},
		})
	}
	return transitions
}

// attachTransitionLabels pairs each floating edge-label group with the
// closest transition midpoint, when one lies within the proximity
// threshold. A transition keeps only its first label.
func attachTransitionLabels(root *dom.Node, transitions []*stateTransition) {
	groups := root.Descendants(func(n *dom.Node) bool {
		return n.IsElement("g") && n.HasClass("edgeLabel")
	})
	for _, g := range groups {
		text := g.TextContent()
		if text == "" {
			continue
		}
		box, ok := geometry.BoxFromAttrs(g.Attrs)
		if !ok {
			continue
		}
		pos := geometry.Point{X: box.Left, Y: box.Top}
		idx := geometry.Nearest(transitions, func(t *stateTransition) float64 {
			return geometry.Euclidean(t.mid, pos)
		})
		if idx < 0 {
			continue
		}
		t := transitions[idx]
		if geometry.Euclidean(t.mid, pos) <= stateLabelThreshold && t.label == "" {
			t.label = text
		}
	}
}

func nearestState(states []*stateNode, p geometry.Point) *stateNode {
	idx := geometry.Nearest(states, func(s *stateNode) float64 {
		return geometry.Euclidean(s.pos, p)
	})
	return states[idx]
}
