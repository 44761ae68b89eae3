package mermaid

import (
	"regexp"
	"strings"
)

// Mermaid stamps generated SVG ids with lossy conventions: node ids carry a
// "flowchart-" prefix and often a "-<n>" disambiguating counter; edge ids
// carry an "L_" prefix followed by the source and target ids joined with
// underscores, plus an optional "_<n>" counter. Recovering the original ids
// means undoing those suffixes, and for edges, guessing where the source id
// ends and the target id begins.

const (
	nodeIDPrefix = "flowchart-"
	edgeIDPrefix = "L_"
)

var (
	hyphenCounterRe     = regexp.MustCompile(`-\d+$`)
	underscoreCounterRe = regexp.MustCompile(`_\d+$`)
)

// canonicalNodeID strips the mermaid node prefix and trailing counter from a
// raw SVG id. Returns false when the id does not look like a mermaid node id.
func canonicalNodeID(raw string) (string, bool) {
	if !strings.HasPrefix(raw, nodeIDPrefix) {
		return "", false
	}
	id := hyphenCounterRe.ReplaceAllString(strings.TrimPrefix(raw, nodeIDPrefix), "")
	if id == "" {
		return "", false
	}
	return id, true
}

// resolveEdgeID recovers the source and target node ids from a mermaid edge
// id. The remainder after the "L_" prefix is split at every underscore,
// scanning left to right; the first split point where both halves (after
// stripping a trailing "_<n>" counter) are known node ids wins. Multi-segment
// node names make this genuinely ambiguous; the first-working-split tie-break
// is deterministic and must not be "improved", since changing it changes
// reproducible output. Edges that never resolve are dropped by the caller.
func resolveEdgeID(raw string, known map[string]bool) (source, target string, ok bool) {
	if !strings.HasPrefix(raw, edgeIDPrefix) {
		return "", "", false
	}
	segments := strings.Split(strings.TrimPrefix(raw, edgeIDPrefix), "_")
	if len(segments) < 2 {
		return "", "", false
	}
	for i := 1; i < len(segments); i++ {
		src := underscoreCounterRe.ReplaceAllString(strings.Join(segments[:i], "_"), "")
		tgt := underscoreCounterRe.ReplaceAllString(strings.Join(segments[i:], "_"), "")
		if known[src] && known[tgt] {
			return src, tgt, true
		}
	}
	return "", "", false
}
