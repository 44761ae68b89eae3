package mermaid

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/deepwiki-tools/wikidoc/internal/dom"
	"github.com/deepwiki-tools/wikidoc/internal/geometry"
)

type seqParticipant struct {
	name string
	x    float64
}

// seqElement is a message or note line pending emission, ordered by its
// vertical position. Ties keep discovery order.
type seqElement struct {
	y    float64
	line string
}

type seqLabel struct {
	pos  geometry.Point
	text string
	used bool
}

var pathCoordRe = regexp.MustCompile(`([A-Za-z])\s*([\d.]+)[,\s]*([\d.]+)`)

// Sequence reconstructs mermaid sequence diagram notation from a rendered
// diagram subtree. Participants come from actor shapes, messages from
// line/path shapes whose endpoints map to the nearest participants, and
// message text from the spatially nearest unconsumed label. Labels left
// over become notes anchored to their nearest participant.
func Sequence(root *dom.Node) (string, error) {
	participants, labelNodes := collectParticipants(root)
	if len(participants) == 0 {
		return "", ErrUnsupported
	}

	labels := collectLabels(root, labelNodes)
	elements := collectMessages(root, participants, labels)

	// Remaining labels are annotations, not message text.
	for _, l := range labels {
		if l.used {
			continue
		}
		anchor := nearestParticipant(participants, l.pos.X)
		elements = append(elements, seqElement{
			y:    l.pos.Y,
			line: fmt.Sprintf("note over %s: %s", anchor, l.text),
		})
	}

	sorted := make([]seqParticipant, len(participants))
	copy(sorted, participants)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].x < sorted[b].x })

	sort.SliceStable(elements, func(a, b int) bool { return elements[a].y < elements[b].y })

	lines := []string{"sequenceDiagram"}
	for _, p := range sorted {
		lines = append(lines, "    participant "+p.name)
	}
	for _, e := range elements {
		lines = append(lines, "    "+e.line)
	}
	return strings.Join(lines, "\n"), nil
}

// collectParticipants extracts actor names and their horizontal positions.
// A participant is an actor rect paired with a label text inside the same
// group; duplicates keep the first occurrence. The returned set records
// which text nodes were consumed as actor labels so they are not mistaken
// for message text later.
func collectParticipants(root *dom.Node) ([]seqParticipant, map[*dom.Node]bool) {
	var participants []seqParticipant
	seen := make(map[string]bool)
	labelNodes := make(map[*dom.Node]bool)

	groups := root.Descendants(func(n *dom.Node) bool { return n.IsElement("g") })
	for _, g := range groups {
		rect := findActorRect(g)
		if rect == nil {
			continue
		}
		text := findActorLabel(g)
		if text == nil {
			continue
		}
		name := text.TextContent()
		if name == "" {
			continue
		}

		x, errX := strconv.ParseFloat(attrOr(rect, "x", "0"), 64)
		w, errW := strconv.ParseFloat(attrOr(rect, "width", "0"), 64)
		if errX != nil || errW != nil {
			continue
		}

		labelNodes[text] = true
		if seen[name] {
			continue
		}
		seen[name] = true
		participants = append(participants, seqParticipant{name: name, x: x + w/2})
	}
	return participants, labelNodes
}

func collectLabels(root *dom.Node, actorLabels map[*dom.Node]bool) []*seqLabel {
	var labels []*seqLabel
	texts := root.Descendants(func(n *dom.Node) bool { return n.IsElement("text") })
	for _, t := range texts {
		if actorLabels[t] {
			continue
		}
		x, errX := strconv.ParseFloat(attrOr(t, "x", "0"), 64)
		y, errY := strconv.ParseFloat(attrOr(t, "y", "0"), 64)
		if errX != nil || errY != nil {
			continue
		}
		labels = append(labels, &seqLabel{pos: geometry.Point{X: x, Y: y}, text: t.TextContent()})
	}
	return labels
}

// collectMessages turns message lines/paths into sender->>receiver elements.
// Each message consumes the nearest unused label via a vertically weighted
// distance; messages that find no label are dropped.
func collectMessages(root *dom.Node, participants []seqParticipant, labels []*seqLabel) []seqElement {
	var elements []seqElement
	shapes := root.Descendants(func(n *dom.Node) bool {
		if !n.IsElement("line") && !n.IsElement("path") {
			return false
		}
		return strings.Contains(strings.ToLower(n.Attr("class")), "message")
	})

	for _, shape := range shapes {
		start, end, ok := messageEndpoints(shape)
		if !ok {
			continue
		}
		sender := nearestParticipant(participants, start.X)
		receiver := nearestParticipant(participants, end.X)

		midY := (start.Y + end.Y) / 2
		midX := (start.X + end.X) / 2

		unused := make([]*seqLabel, 0, len(labels))
		for _, l := range labels {
			if !l.used {
				unused = append(unused, l)
			}
		}
		idx := geometry.Nearest(unused, func(l *seqLabel) float64 {
			return math.Abs(l.pos.Y-midY) + 0.3*math.Abs(l.pos.X-midX)
		})
		if idx < 0 {
			continue
		}
		label := unused[idx]
		label.used = true
		elements = append(elements, seqElement{
			y:    midY,
			line: fmt.Sprintf("%s->>%s: %s", sender, receiver, label.text),
		})
	}
	return elements
}

func messageEndpoints(shape *dom.Node) (start, end geometry.Point, ok bool) {
	if shape.Tag == "line" {
		coords := [4]float64{}
		for i, name := range []string{"x1", "y1", "x2", "y2"} {
			v, err := strconv.ParseFloat(attrOr(shape, name, "0"), 64)
			if err != nil {
				return start, end, false
			}
			coords[i] = v
		}
		return geometry.Point{X: coords[0], Y: coords[1]}, geometry.Point{X: coords[2], Y: coords[3]}, true
	}

	// Curved paths: take the first and last coordinate pair of the path data.
	matches := pathCoordRe.FindAllStringSubmatch(shape.Attr("d"), -1)
	if len(matches) == 0 {
		return start, end, false
	}
	first, last := matches[0], matches[len(matches)-1]
	fx, err1 := strconv.ParseFloat(first[2], 64)
	fy, err2 := strconv.ParseFloat(first[3], 64)
	lx, err3 := strconv.ParseFloat(last[2], 64)
	ly, err4 := strconv.ParseFloat(last[3], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return start, end, false
	}
	return geometry.Point{X: fx, Y: fy}, geometry.Point{X: lx, Y: ly}, true
}

func nearestParticipant(participants []seqParticipant, x float64) string {
	idx := geometry.Nearest(participants, func(p seqParticipant) float64 {
		return math.Abs(p.x - x)
	})
	return participants[idx].name
}

// findActorRect returns the first rect in the group whose class names it as
// an actor shape.
func findActorRect(g *dom.Node) *dom.Node {
	rects := g.Descendants(func(n *dom.Node) bool {
		return n.IsElement("rect") && strings.Contains(strings.ToLower(n.Attr("class")), "actor")
	})
	if len(rects) == 0 {
		return nil
	}
	return rects[0]
}

// findActorLabel prefers a text element classed "label", falling back to
// the first text element in the group.
func findActorLabel(g *dom.Node) *dom.Node {
	texts := g.Descendants(func(n *dom.Node) bool { return n.IsElement("text") })
	for _, t := range texts {
		if t.HasClass("label") {
			return t
		}
	}
	if len(texts) == 0 {
		return nil
	}
	return texts[0]
}

func attrOr(n *dom.Node, name, def string) string {
	if v := n.Attr(name); v != "" {
		return v
	}
	return def
}
