// Package mermaid reverse-engineers Mermaid diagram notation from rendered
// SVG markup. The renderer keeps no graph description in its output, only
// positioned shapes and id strings that encode the original graph ids with
// lossy suffixes, so reconstruction works from geometric containment and
// id segmentation. Output preserves topology and text, not layout.
package mermaid

import (
	"errors"
	"strings"

	"github.com/deepwiki-tools/wikidoc/internal/dom"
)

// ErrUnsupported is returned when a diagram cannot be reconstructed: the
// kind has no reconstructor (class diagrams) or the pass resolved zero
// entities. Callers fall back to treating the block as plain code.
var ErrUnsupported = errors.New("mermaid: unsupported diagram")

// labelText extracts the display text of a mermaid label group. The
// renderer nests label text either in a foreignObject div or directly in
// the label element. Double quotes are normalized to single quotes so the
// text can be embedded in quoted mermaid node syntax.
func labelText(label *dom.Node) string {
	if label == nil {
		return ""
	}
	target := label
	if fo := label.FindTag("foreignobject"); fo != nil {
		if div := fo.FindTag("div"); div != nil {
			target = div
		}
	}
	return strings.ReplaceAll(target.TextContent(), `"`, `'`)
}
