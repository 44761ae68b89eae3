// Package dom models a rendered page as an immutable tree of text and
// element nodes, built from parsed HTML.
package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Kind distinguishes text nodes from element nodes.
type Kind int

const (
	// KindText is a literal text node.
	KindText Kind = iota
	// KindElement is an element node with a tag, attributes, and children.
	KindElement
)

// Node is a single node in a rendered page tree. Tags and attribute keys
// are lowercase, matching what the HTML parser produces. The tree is never
// mutated after construction.
type Node struct {
	Kind     Kind
	Tag      string
	Text     string
	Attrs    map[string]string
	Children []*Node
}

// Parse reads HTML from r and returns the root of the converted tree.
func Parse(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return FromHTML(doc), nil
}

// ParseString parses an HTML string. Convenience wrapper around Parse.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// FromHTML converts a golang.org/x/net/html node into a Node tree.
// Comment, doctype, and other non-content nodes become empty element
// wrappers so their children still appear in order.
func FromHTML(n *html.Node) *Node {
	switch n.Type {
	case html.TextNode:
		return &Node{Kind: KindText, Text: n.Data}
	case html.ElementNode, html.DocumentNode:
		node := &Node{Kind: KindElement}
		if n.Type == html.ElementNode {
			node.Tag = strings.ToLower(n.Data)
		}
		if len(n.Attr) > 0 {
			node.Attrs = make(map[string]string, len(n.Attr))
			for _, a := range n.Attr {
				node.Attrs[strings.ToLower(a.Key)] = a.Val
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := FromHTML(c); child != nil {
				node.Children = append(node.Children, child)
			}
		}
		return node
	default:
		return nil
	}
}

// Attr returns the value of the named attribute, or "" when absent.
func (n *Node) Attr(name string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// HasClass reports whether the node's class attribute contains the given
// class token.
func (n *Node) HasClass(class string) bool {
	for _, c := range strings.Fields(n.Attr("class")) {
		if c == class {
			return true
		}
	}
	return false
}

// IsElement reports whether the node is an element with the given tag.
func (n *Node) IsElement(tag string) bool {
	return n != nil && n.Kind == KindElement && n.Tag == tag
}

// TextContent returns the trimmed concatenation of all descendant text.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.writeText(&b)
	return strings.TrimSpace(b.String())
}

func (n *Node) writeText(b *strings.Builder) {
	if n.Kind == KindText {
		b.WriteString(n.Text)
		return
	}
	for _, c := range n.Children {
		c.writeText(b)
	}
}

// Descendants returns every node in the subtree (excluding n itself, in
// document order) for which pred returns true.
func (n *Node) Descendants(pred func(*Node) bool) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range cur.Children {
			if pred(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// FindClass returns the first descendant element carrying the given class,
// or nil when none exists.
func (n *Node) FindClass(class string) *Node {
	return n.findFirst(func(c *Node) bool {
		return c.Kind == KindElement && c.HasClass(class)
	})
}

// FindTag returns the first descendant element with the given tag, or nil.
func (n *Node) FindTag(tag string) *Node {
	return n.findFirst(func(c *Node) bool { return c.IsElement(tag) })
}

func (n *Node) findFirst(pred func(*Node) bool) *Node {
	for _, c := range n.Children {
		if pred(c) {
			return c
		}
		if found := c.findFirst(pred); found != nil {
			return found
		}
	}
	return nil
}

// ElementChildren returns only the direct element children, optionally
// filtered by tag. An empty tag matches every element.
func (n *Node) ElementChildren(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind != KindElement {
			continue
		}
		if tag == "" || c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}
