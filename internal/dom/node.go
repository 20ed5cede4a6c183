package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// TextContent concatenates every descendant text node, like Node.textContent.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}

	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// ParentElement returns the parent when it is an element, like Node.parentElement.
func ParentElement(n *html.Node) *html.Node {
	if n == nil || n.Parent == nil || n.Parent.Type != html.ElementNode {
		return nil
	}
	return n.Parent
}

// ElementChildren returns the element children of n, like Element.children.
func ElementChildren(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}

	var children []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			children = append(children, c)
		}
	}
	return children
}

// Attr returns the value of the named attribute and whether it is present.
func Attr(n *html.Node, name string) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func HasAttr(n *html.Node, name string) bool {
	_, ok := Attr(n, name)
	return ok
}

// Describe returns a short tag#id.class label for n.
func Describe(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type != html.ElementNode {
		return "#" + nodeTypeName(n.Type)
	}

	var b strings.Builder
	b.WriteString(n.Data)
	if id, ok := Attr(n, "id"); ok && id != "" {
		b.WriteString("#" + id)
	}
	if class, ok := Attr(n, "class"); ok {
		for _, c := range strings.Fields(class) {
			b.WriteString("." + c)
		}
	}
	return b.String()
}

func nodeTypeName(t html.NodeType) string {
	switch t {
	case html.DocumentNode:
		return "document"
	case html.TextNode:
		return "text"
	case html.CommentNode:
		return "comment"
	case html.DoctypeNode:
		return "doctype"
	default:
		return "node"
	}
}
