package mermaid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/deepwiki-tools/wikidoc/internal/dom"
	"github.com/deepwiki-tools/wikidoc/internal/geometry"
)

// flowchartPass holds all working state for one flowchart reconstruction.
// It is built fresh per diagram and discarded after emission.
type flowchartPass struct {
	texts  map[string]string // canonical id -> display text
	order  []string          // node ids in discovery order
	points map[string]geometry.Point

	clusters []*flowCluster
	children [][]int // direct child cluster indices per cluster
	claimed  map[string]bool

	edges []string
}

type flowCluster struct {
	id    string
	title string
	box   geometry.Box
	nodes []string // canonical node ids, discovery order
}

// Flowchart reconstructs mermaid flowchart notation from a rendered diagram
// subtree. Nodes, clusters, and edges are recovered independently; shapes
// with unparsable geometry and edges with unresolvable endpoints are
// excluded rather than emitted as garbage. Returns ErrUnsupported when
// nothing at all could be resolved.
func Flowchart(root *dom.Node) (string, error) {
	p := &flowchartPass{
		texts:   make(map[string]string),
		points:  make(map[string]geometry.Point),
		claimed: make(map[string]bool),
	}

	p.collectNodes(root)
	p.collectClusters(root)
	if len(p.texts) == 0 && len(p.clusters) == 0 {
		return "", ErrUnsupported
	}

	p.linkClusters()
	p.assignNodes()
	p.collectEdges(root)

	return p.emit(), nil
}

func (p *flowchartPass) collectNodes(root *dom.Node) {
	shapes := root.Descendants(func(n *dom.Node) bool {
		return n.IsElement("g") && n.HasClass("node") && n.HasClass("default")
	})
	for _, shape := range shapes {
		id, ok := canonicalNodeID(shape.Attr("id"))
		if !ok {
			continue
		}
		text := labelText(shape.FindClass("label"))
		if _, seen := p.texts[id]; !seen {
			p.order = append(p.order, id)
			if box, ok := geometry.BoxFromAttrs(shape.Attrs); ok {
				p.points[id] = geometry.Point{X: box.Left, Y: box.Top}
			}
		}
		// Duplicate raw ids collapse to one canonical node.
		p.texts[id] = text
	}
}

func (p *flowchartPass) collectClusters(root *dom.Node) {
	shapes := root.Descendants(func(n *dom.Node) bool {
		return n.IsElement("g") && n.HasClass("cluster")
	})
	for _, shape := range shapes {
		rect := shape.FindTag("rect")
		if rect == nil {
			continue
		}
		box, ok := geometry.BoxFromAttrs(rect.Attrs)
		if !ok {
			continue
		}
		id := shape.Attr("id")
		if id == "" {
			id = fmt.Sprintf("cluster_%d", len(p.clusters)+1)
		}
		p.clusters = append(p.clusters, &flowCluster{
			id:    id,
			title: labelText(shape.FindClass("cluster-label")),
			box:   box,
		})
	}
}

// linkClusters records cluster A as the direct parent of cluster B when A's
// box contains B's and no third cluster sits between them. Only direct
// parent edges are kept, so a multi-level ancestor never claims a
// grandchild. Equal boxes contain each other; the earlier-discovered
// cluster wins parenthood then, which keeps the relation acyclic.
func (p *flowchartPass) linkClusters() {
	n := len(p.clusters)
	p.children = make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j || !p.clusters[i].box.Contains(p.clusters[j].box) {
				continue
			}
			if p.clusters[j].box.Contains(p.clusters[i].box) && j < i {
				continue
			}
			direct := true
			for k := 0; k < n; k++ {
				if k == i || k == j {
					continue
				}
				between := p.clusters[i].box.Contains(p.clusters[k].box) &&
					p.clusters[k].box.Contains(p.clusters[j].box)
				if between {
					direct = false
					break
				}
			}
			if direct {
				p.children[i] = append(p.children[i], j)
			}
		}
	}
}

// assignNodes gives each node to the smallest-area cluster containing its
// anchor point. Clusters are visited by ascending area, so the innermost
// wins; a node claimed once is never claimed again.
func (p *flowchartPass) assignNodes() {
	byArea := make([]int, len(p.clusters))
	for i := range byArea {
		byArea[i] = i
	}
	sort.SliceStable(byArea, func(a, b int) bool {
		return p.clusters[byArea[a]].box.Area() < p.clusters[byArea[b]].box.Area()
	})

	for _, ci := range byArea {
		c := p.clusters[ci]
		for _, id := range p.order {
			if p.claimed[id] {
				continue
			}
			pt, ok := p.points[id]
			if ok && c.box.ContainsPoint(pt) {
				c.nodes = append(c.nodes, id)
				p.claimed[id] = true
			}
		}
	}
}

func (p *flowchartPass) collectEdges(root *dom.Node) {
	known := make(map[string]bool, len(p.texts))
	for id := range p.texts {
		known[id] = true
	}
	paths := root.Descendants(func(n *dom.Node) bool {
		return n.IsElement("path") && n.HasClass("flowchart-link")
	})
	for _, path := range paths {
		src, tgt, ok := resolveEdgeID(path.Attr("id"), known)
		if ok {
			p.edges = append(p.edges, src+" --> "+tgt)
		}
	}
}

func (p *flowchartPass) emit() string {
	lines := []string{"flowchart TD"}

	childSet := make(map[int]bool)
	for _, kids := range p.children {
		for _, j := range kids {
			childSet[j] = true
		}
	}

	var addCluster func(ci, indent int)
	addCluster = func(ci, indent int) {
		c := p.clusters[ci]
		prefix := strings.Repeat("    ", indent)
		title := c.title
		if title == "" {
			title = c.id
		}
		lines = append(lines, fmt.Sprintf("%ssubgraph %s[\"%s\"]", prefix, c.id, title))
		for _, id := range c.nodes {
			lines = append(lines, fmt.Sprintf("%s    %s[\"%s\"]", prefix, id, p.texts[id]))
		}
		for _, child := range p.children[ci] {
			addCluster(child, indent+1)
		}
		lines = append(lines, prefix+"end")
	}

	for ci := range p.clusters {
		if !childSet[ci] {
			addCluster(ci, 0)
		}
	}

	for _, id := range p.order {
		if !p.claimed[id] {
			lines = append(lines, fmt.Sprintf("%s[\"%s\"]", id, p.texts[id]))
		}
	}

	if len(p.edges) > 0 {
		lines = append(lines, "")
		seen := make(map[string]bool)
		var unique []string
		for _, e := range p.edges {
			if !seen[e] {
				seen[e] = true
				unique = append(unique, e)
			}
		}
		sort.Strings(unique)
		lines = append(lines, unique...)
	}

	return strings.Join(lines, "\n")
}
