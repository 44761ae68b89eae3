// Package translate turns English Markdown documents into another language
// through a chat-completion API, while leaving code blocks and diagrams
// untouched.
package translate

import (
	"regexp"
	"strings"
)

// SegmentKind classifies a piece of a Markdown document for translation.
type SegmentKind int

const (
	// SegmentText is prose that should be translated.
	SegmentText SegmentKind = iota
	// SegmentCode is a fenced or inline code span, passed through verbatim.
	SegmentCode
	// SegmentMermaid is a fenced mermaid block, passed through verbatim.
	SegmentMermaid
	// SegmentHeader is a heading line, translated on its own.
	SegmentHeader
	// SegmentNewline is separator whitespace inserted around blocks.
	SegmentNewline
)

// Segment is one contiguous piece of a document.
type Segment struct {
	Kind SegmentKind
	Text string
}

var protectedRe = regexp.MustCompile("(?m)(```[\\s\\S]*?```|~~~[\\s\\S]*?~~~|`[^`]+`|^#{1,6} .+$)")

// SegmentMarkdown splits content into translatable prose and protected
// regions. Fenced blocks keep a newline on both sides so reassembly never
// glues a fence onto prose; headings keep one after (and one before unless
// they open the document or follow another separator).
func SegmentMarkdown(content string) []Segment {
	var parts []Segment
	lastEnd := 0

	for _, span := range protectedRe.FindAllStringIndex(content, -1) {
		start, end := span[0], span[1]
		if lastEnd < start {
			if text := content[lastEnd:start]; strings.TrimSpace(text) != "" {
				parts = append(parts, Segment{SegmentText, text})
			}
		}

		matched := content[start:end]
		switch {
		case strings.HasPrefix(matched, "```") || strings.HasPrefix(matched, "~~~"):
			parts = append(parts, Segment{SegmentNewline, "\n"})
			firstLine, _, _ := strings.Cut(matched, "\n")
			if strings.Contains(strings.ToLower(firstLine), "mermaid") {
				parts = append(parts, Segment{SegmentMermaid, matched})
			} else {
				parts = append(parts, Segment{SegmentCode, matched})
			}
			parts = append(parts, Segment{SegmentNewline, "\n"})
		case strings.HasPrefix(matched, "`"):
			parts = append(parts, Segment{SegmentCode, matched})
		default:
			if len(parts) > 0 {
				last := parts[len(parts)-1].Kind
				if last != SegmentNewline && last != SegmentHeader {
					parts = append(parts, Segment{SegmentNewline, "\n"})
				}
			}
			parts = append(parts, Segment{SegmentHeader, matched})
			parts = append(parts, Segment{SegmentNewline, "\n"})
		}

		lastEnd = end
	}

	if lastEnd < len(content) {
		if text := content[lastEnd:]; strings.TrimSpace(text) != "" {
			parts = append(parts, Segment{SegmentText, text})
		}
	}
	return parts
}
