package markdown

import (
	"regexp"
	"strings"
)

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// Collapse trims the document and squeezes every run of three or more
// newlines down to a single blank line. Applying it twice is a no-op.
func Collapse(s string) string {
	return blankRunRe.ReplaceAllString(strings.TrimSpace(s), "\n\n")
}

// Assemble joins independently converted fragments into one normalized
// document.
func Assemble(fragments ...string) string {
	return Collapse(strings.Join(fragments, "\n\n"))
}
