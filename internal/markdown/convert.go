// Package markdown converts a rendered page tree into portable Markdown
// text, reconstructing embedded diagrams into fenced mermaid blocks along
// the way. A fault while converting one node degrades to an inline error
// marker; the rest of the page is unaffected.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/deepwiki-tools/wikidoc/internal/dom"
	"github.com/deepwiki-tools/wikidoc/internal/mermaid"
)

// skippedTags are structural chrome that never contributes page content.
var skippedTags = map[string]bool{
	"button":   true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"header":   true,
	"footer":   true,
	"nav":      true,
}

var lineRangeRe = regexp.MustCompile(`#L(\d+)(?:-L(\d+))?$`)

type handler func(*Converter, *dom.Node) string

// Converter maps rendered nodes to Markdown via a per-tag dispatch table.
// It keeps no state across pages; one Converter may be shared freely.
type Converter struct {
	handlers map[string]handler
}

// NewConverter builds a Converter with the full emission rule set.
func NewConverter() *Converter {
	c := &Converter{}
	c.handlers = map[string]handler{
		"p":          (*Converter).paragraph,
		"h1":         (*Converter).heading,
		"h2":         (*Converter).heading,
		"h3":         (*Converter).heading,
		"h4":         (*Converter).heading,
		"h5":         (*Converter).heading,
		"h6":         (*Converter).heading,
		"ul":         (*Converter).unorderedList,
		"ol":         (*Converter).orderedList,
		"pre":        (*Converter).preformatted,
		"a":          (*Converter).link,
		"img":        (*Converter).image,
		"blockquote": (*Converter).blockquote,
		"hr":         (*Converter).rule,
		"strong":     (*Converter).bold,
		"b":          (*Converter).bold,
		"em":         (*Converter).italic,
		"i":          (*Converter).italic,
		"code":       (*Converter).inlineCode,
		"br":         (*Converter).lineBreak,
		"table":      (*Converter).table,
		"details":    (*Converter).details,
	}
	return c
}

// ConvertPage converts a whole page tree rooted at the content container
// and returns normalized Markdown. This is the per-page entry point.
func (c *Converter) ConvertPage(root *dom.Node) string {
	var b strings.Builder
	for _, child := range root.Children {
		b.WriteString(c.convert(child))
	}
	return Collapse(b.String())
}

// convert emits Markdown for a single node. Hidden elements and chrome
// emit nothing; unknown elements fall back to their children's output.
// A panic while handling one node is confined to that node.
func (c *Converter) convert(n *dom.Node) (out string) {
	if n.Kind == dom.KindText {
		return n.Text
	}
	if hiddenStyle(n.Attr("style")) || skippedTags[n.Tag] {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("[ERROR_PROCESSING:%s]", n.Tag)
		}
	}()

	if h, ok := c.handlers[n.Tag]; ok {
		return h(c, n)
	}
	return c.wrapper(n)
}

// childText concatenates the converted output of all children.
func (c *Converter) childText(n *dom.Node) string {
	var b strings.Builder
	for _, child := range n.Children {
		b.WriteString(c.convert(child))
	}
	return b.String()
}

func (c *Converter) paragraph(n *dom.Node) string {
	content := strings.TrimSpace(c.childText(n))
	if content == "" {
		return ""
	}
	return content + "\n\n"
}

func (c *Converter) heading(n *dom.Node) string {
	level := int(n.Tag[1] - '0')
	text := n.TextContent()
	if text == "" {
		return ""
	}
	return strings.Repeat("#", level) + " " + text + "\n\n"
}

func (c *Converter) unorderedList(n *dom.Node) string {
	var items []string
	for _, li := range n.ElementChildren("li") {
		if content := strings.TrimSpace(c.childText(li)); content != "" {
			items = append(items, "* "+content)
		}
	}
	if len(items) == 0 {
		return ""
	}
	return strings.Join(items, "\n") + "\n\n"
}

func (c *Converter) orderedList(n *dom.Node) string {
	var items []string
	for _, li := range n.ElementChildren("li") {
		if content := strings.TrimSpace(c.childText(li)); content != "" {
			items = append(items, fmt.Sprintf("%d. %s", len(items)+1, content))
		}
	}
	if len(items) == 0 {
		return ""
	}
	return strings.Join(items, "\n") + "\n\n"
}

// preformatted emits either a reconstructed mermaid diagram or a fenced
// code block. A rendered diagram is recognized by an embedded svg whose id
// carries the renderer's prefix; its kind comes from the role description
// attribute. Reconstruction failure falls back to plain code.
func (c *Converter) preformatted(n *dom.Node) string {
	if notation, ok := reconstructDiagram(n); ok {
		return "\n```mermaid\n" + notation + "\n```\n\n"
	}

	lang := ""
	var codeText string
	if code := n.FindTag("code"); code != nil {
		codeText = rawText(code)
		lang = DetectLanguage(codeText)
	} else {
		codeText = rawText(n)
	}
	return "```" + lang + "\n" + strings.TrimSpace(codeText) + "\n```\n\n"
}

func reconstructDiagram(n *dom.Node) (string, bool) {
	svg := findMermaidSVG(n)
	if svg == nil {
		return "", false
	}
	role := svg.Attr("aria-roledescription")

	var notation string
	var err error
	switch {
	case strings.Contains(role, "flowchart"):
		notation, err = mermaid.Flowchart(svg)
	case strings.Contains(role, "class"):
		notation, err = mermaid.Class(svg)
	case strings.Contains(role, "sequence"):
		notation, err = mermaid.Sequence(svg)
	case strings.Contains(role, "stateDiagram"):
		notation, err = mermaid.State(svg)
	default:
		return "", false
	}
	if err != nil {
		return "", false
	}
	return notation, true
}

// findMermaidSVG returns the first descendant svg carrying the renderer's
// id prefix, or nil.
func findMermaidSVG(n *dom.Node) *dom.Node {
	svgs := n.Descendants(func(d *dom.Node) bool {
		return d.IsElement("svg") && strings.HasPrefix(d.Attr("id"), "mermaid-")
	})
	if len(svgs) == 0 {
		return nil
	}
	return svgs[0]
}

func (c *Converter) link(n *dom.Node) string {
	href := n.Attr("href")
	text := strings.TrimSpace(c.childText(n))

	// Source citations rendered as "filename line-range" get a compact
	// file(L<start> - L<end>) form.
	if lineRangeRe.MatchString(href) {
		if fields := strings.Fields(text); len(fields) > 0 {
			lineRange := strings.ReplaceAll(fields[len(fields)-1], "-", " - L")
			text = fields[0] + "(L" + lineRange + ")&emsp;"
		}
	}

	if href == "" {
		return text
	}
	return "[" + text + "](" + href + ")"
}

func (c *Converter) image(n *dom.Node) string {
	src := n.Attr("src")
	if src == "" {
		return ""
	}
	return "![" + n.Attr("alt") + "](" + src + ")\n\n"
}

func (c *Converter) blockquote(n *dom.Node) string {
	content := strings.TrimSpace(c.childText(n))
	if content == "" {
		return ""
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n") + "\n\n"
}

func (c *Converter) rule(*dom.Node) string {
	return "\n---\n\n"
}

func (c *Converter) bold(n *dom.Node) string {
	return "**" + strings.TrimSpace(c.childText(n)) + "**"
}

func (c *Converter) italic(n *dom.Node) string {
	return "*" + strings.TrimSpace(c.childText(n)) + "*"
}

func (c *Converter) inlineCode(n *dom.Node) string {
	return "`" + n.TextContent() + "`"
}

func (c *Converter) lineBreak(*dom.Node) string {
	return "  \n"
}

func (c *Converter) table(n *dom.Node) string {
	rows := n.Descendants(func(d *dom.Node) bool { return d.IsElement("tr") })
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	header := tableCells(rows[0])
	b.WriteString("|" + strings.Join(escapeCells(header, false), "|") + "|\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows[1:] {
		cells := escapeCells(tableCells(row), true)
		b.WriteString("|" + strings.Join(cells, "|") + "|\n")
	}
	return b.String() + "\n"
}

func tableCells(row *dom.Node) []string {
	cells := row.Descendants(func(d *dom.Node) bool {
		return d.IsElement("th") || d.IsElement("td")
	})
	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = cell.TextContent()
	}
	return out
}

func escapeCells(cells []string, body bool) []string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		cell = strings.ReplaceAll(cell, "|", `\|`)
		if body {
			cell = strings.ReplaceAll(cell, "\n", " <br> ")
		}
		out[i] = cell
	}
	return out
}

func (c *Converter) details(n *dom.Node) string {
	summaryText := "Details"
	if summary := n.FindTag("summary"); summary != nil {
		summaryText = strings.TrimSpace(c.convert(summary))
	}

	var b strings.Builder
	for _, child := range n.Children {
		if child.IsElement("summary") {
			continue
		}
		b.WriteString(c.convert(child))
	}

	out := "> **" + summaryText + "**\n"
	for i, line := range strings.Split(strings.TrimSpace(b.String()), "\n") {
		if i > 0 {
			out += "\n"
		}
		out += "> " + line
	}
	return out + "\n\n"
}

// wrapper handles any element without a specific rule: keep the children's
// output, discard the wrapper when the result is empty.
func (c *Converter) wrapper(n *dom.Node) string {
	content := c.childText(n)
	if strings.TrimSpace(content) == "" {
		return ""
	}
	return content + "\n\n"
}

func hiddenStyle(style string) bool {
	compact := strings.ReplaceAll(style, " ", "")
	return strings.Contains(compact, "display:none") ||
		strings.Contains(compact, "visibility:hidden")
}

// rawText concatenates descendant text without trimming, preserving code
// indentation.
func rawText(n *dom.Node) string {
	var b strings.Builder
	var walk func(*dom.Node)
	walk = func(cur *dom.Node) {
		if cur.Kind == dom.KindText {
			b.WriteString(cur.Text)
			return
		}
		for _, child := range cur.Children {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}
