package mermaid

import "github.com/deepwiki-tools/wikidoc/internal/dom"

// Class is a deliberate stub: member, method, and relationship geometry is
// materially harder to recover than node/edge topology, so class diagrams
// always report ErrUnsupported and the caller falls back to a plain fenced
// block.
func Class(_ *dom.Node) (string, error) {
	return "", ErrUnsupported
}
