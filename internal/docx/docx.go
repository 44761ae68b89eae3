// Package docx renders Markdown documents into Word (OOXML) packages. The
// package is assembled fully in memory; no external converter is involved.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Exporter converts Markdown to a binary .docx package.
type Exporter struct {
	md goldmark.Markdown
}

// NewExporter builds an Exporter with GFM extensions enabled, so tables
// survive the round trip.
func NewExporter() *Exporter {
	return &Exporter{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Export parses source as Markdown and returns the bytes of a Word
// package.
func (e *Exporter) Export(source []byte) ([]byte, error) {
	root := e.md.Parser().Parse(text.NewReader(source))

	var body strings.Builder
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		renderBlock(&body, child, source)
	}

	return writePackage(body.String())
}

func writePackage(body string) ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/numbering.xml", numberingXML},
		{"word/document.xml", documentHeader + body + documentFooter},
	}
	for _, part := range parts {
		entry, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", part.name, err)
		}
		if _, err := entry.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("writing %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing package: %w", err)
	}
	return buf.Bytes(), nil
}

func renderBlock(b *strings.Builder, n ast.Node, source []byte) {
	switch node := n.(type) {
	case *ast.Heading:
		style := fmt.Sprintf("Heading%d", node.Level)
		if node.Level > 3 {
			style = "Heading3"
		}
		styledParagraph(b, style, runsOf(node, source))
	case *ast.Paragraph, *ast.TextBlock:
		plainParagraph(b, runsOf(n, source))
	case *ast.FencedCodeBlock:
		codeParagraph(b, blockLines(node, source))
	case *ast.CodeBlock:
		codeParagraph(b, blockLines(node, source))
	case *ast.Blockquote:
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			styledParagraph(b, "Quote", runsOf(child, source))
		}
	case *ast.List:
		renderList(b, node, source)
	case *ast.ThematicBreak:
		b.WriteString(`    <w:p><w:pPr><w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="auto"/></w:pBdr></w:pPr></w:p>` + "\n")
	case *east.Table:
		renderTable(b, node, source)
	default:
		// Unhandled blocks degrade to their plain text.
		if runs := runsOf(n, source); runs != "" {
			plainParagraph(b, runs)
		}
	}
}

func plainParagraph(b *strings.Builder, runs string) {
	b.WriteString("    <w:p>" + runs + "</w:p>\n")
}

func styledParagraph(b *strings.Builder, style, runs string) {
	fmt.Fprintf(b, `    <w:p><w:pPr><w:pStyle w:val="%s"/></w:pPr>%s</w:p>`+"\n", style, runs)
}

// codeParagraph emits one paragraph per source line so Word keeps the
// original line structure.
func codeParagraph(b *strings.Builder, lines []string) {
	for _, line := range lines {
		fmt.Fprintf(b, `    <w:p><w:pPr><w:pStyle w:val="CodeBlock"/></w:pPr><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`+"\n", escapeXML(line))
	}
}

func renderList(b *strings.Builder, list *ast.List, source []byte) {
	numID := 1
	if list.IsOrdered() {
		numID = 2
	}
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			if nested, ok := child.(*ast.List); ok {
				renderList(b, nested, source)
				continue
			}
			fmt.Fprintf(b, `    <w:p><w:pPr><w:pStyle w:val="ListParagraph"/><w:numPr><w:ilvl w:val="0"/><w:numId w:val="%d"/></w:numPr></w:pPr>%s</w:p>`+"\n",
				numID, runsOf(child, source))
		}
	}
}

func renderTable(b *strings.Builder, table *east.Table, source []byte) {
	b.WriteString("    <w:tbl><w:tblPr><w:tblStyle w:val=\"TableGrid\"/><w:tblW w:w=\"5000\" w:type=\"pct\"/></w:tblPr>\n")
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		header := false
		var first ast.Node = row
		if hdr, ok := row.(*east.TableHeader); ok {
			header = true
			first = hdr
		}
		b.WriteString("    <w:tr>\n")
		for cell := first.FirstChild(); cell != nil; cell = cell.NextSibling() {
			runs := runsOf(cell, source)
			if header {
				b.WriteString(`      <w:tc><w:tcPr><w:shd w:val="clear" w:color="auto" w:fill="E7E6E6"/></w:tcPr><w:p><w:r><w:rPr><w:b/></w:rPr>` +
					stripRunWrappers(runs) + "</w:r></w:p></w:tc>\n")
			} else {
				b.WriteString("      <w:tc><w:p>" + runs + "</w:p></w:tc>\n")
			}
		}
		b.WriteString("    </w:tr>\n")
	}
	b.WriteString("    </w:tbl>\n")
}

// stripRunWrappers flattens a runs string to its text elements so header
// cells can re-wrap them with bold run properties.
func stripRunWrappers(runs string) string {
	runs = strings.ReplaceAll(runs, "<w:r>", "")
	runs = strings.ReplaceAll(runs, "</w:r>", "")
	runs = strings.ReplaceAll(runs, "<w:rPr><w:b/></w:rPr>", "")
	runs = strings.ReplaceAll(runs, "<w:rPr><w:i/></w:rPr>", "")
	return runs
}

// runProps tracks inline formatting inherited from enclosing emphasis.
type runProps struct {
	bold   bool
	italic bool
	code   bool
}

func (p runProps) xml() string {
	if !p.bold && !p.italic && !p.code {
		return ""
	}
	var b strings.Builder
	b.WriteString("<w:rPr>")
	if p.bold {
		b.WriteString("<w:b/>")
	}
	if p.italic {
		b.WriteString("<w:i/>")
	}
	if p.code {
		b.WriteString(`<w:rFonts w:ascii="Consolas" w:hAnsi="Consolas"/>`)
	}
	b.WriteString("</w:rPr>")
	return b.String()
}

// runsOf flattens a block's inline content into a sequence of w:r runs.
func runsOf(n ast.Node, source []byte) string {
	var b strings.Builder
	writeRuns(&b, n, source, runProps{})
	return b.String()
}

func writeRuns(b *strings.Builder, n ast.Node, source []byte, props runProps) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *ast.Text:
			writeRun(b, string(node.Segment.Value(source)), props)
			if node.HardLineBreak() || node.SoftLineBreak() {
				b.WriteString("<w:r><w:br/></w:r>")
			}
		case *ast.String:
			writeRun(b, string(node.Value), props)
		case *ast.CodeSpan:
			codeProps := props
			codeProps.code = true
			writeRuns(b, node, source, codeProps)
		case *ast.Emphasis:
			next := props
			if node.Level >= 2 {
				next.bold = true
			} else {
				next.italic = true
			}
			writeRuns(b, node, source, next)
		case *ast.Link:
			writeRuns(b, node, source, props)
		case *ast.AutoLink:
			writeRun(b, string(node.URL(source)), props)
		case *ast.Image:
			// Images carry no binary payload here; keep the alt text.
			writeRuns(b, node, source, props)
		default:
			writeRuns(b, child, source, props)
		}
	}
}

func writeRun(b *strings.Builder, textValue string, props runProps) {
	if textValue == "" {
		return
	}
	fmt.Fprintf(b, `<w:r>%s<w:t xml:space="preserve">%s</w:t></w:r>`, props.xml(), escapeXML(textValue))
}

func blockLines(n ast.Node, source []byte) []string {
	var lines []string
	segs := n.Lines()
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		lines = append(lines, strings.TrimRight(string(seg.Value(source)), "\n"))
	}
	return lines
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
