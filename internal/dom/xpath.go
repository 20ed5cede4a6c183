package dom

import (
	"fmt"
	"slices"

	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// QueryXPath evaluates expr with scope as the context node. Absolute paths still
// start at the document node, as document.evaluate does. The result is a
// snapshot in document order without duplicates; attribute nodes are dropped.
func (d *Document) QueryXPath(scope *html.Node, expr string) (nodes []*html.Node, err error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidXPath, expr, err)
	}

	// the evaluator panics on expressions that do not yield a node-set
	defer func() {
		if r := recover(); r != nil {
			nodes = nil
			err = fmt.Errorf("%w %q: %v", ErrInvalidXPath, expr, r)
		}
	}()

	seen := make(map[*html.Node]struct{})
	it := compiled.Select(newNavigator(d.root, d.scope(scope)))
	for it.MoveNext() {
		nav, ok := it.Current().(*navigator)
		if !ok || nav.attr >= 0 {
			continue
		}
		if _, dup := seen[nav.cur]; dup {
			continue
		}
		seen[nav.cur] = struct{}{}
		nodes = append(nodes, nav.cur)
	}

	slices.SortStableFunc(nodes, func(a, b *html.Node) int {
		return d.order[a] - d.order[b]
	})
	return nodes, nil
}

// navigator implements xpath.NodeNavigator over *html.Node.
type navigator struct {
	root, cur *html.Node
	attr      int
}

func newNavigator(root, cur *html.Node) *navigator {
	return &navigator{root: root, cur: cur, attr: -1}
}

func (n *navigator) NodeType() xpath.NodeType {
	if n.attr >= 0 {
		return xpath.AttributeNode
	}
	switch n.cur.Type {
	case html.DocumentNode:
		return xpath.RootNode
	case html.ElementNode:
		return xpath.ElementNode
	case html.TextNode:
		return xpath.TextNode
	default:
		return xpath.CommentNode
	}
}

func (n *navigator) LocalName() string {
	if n.attr >= 0 {
		return n.cur.Attr[n.attr].Key
	}
	return n.cur.Data
}

func (n *navigator) Prefix() string {
	if n.attr >= 0 {
		return n.cur.Attr[n.attr].Namespace
	}
	return n.cur.Namespace
}

// Value returns the XPath string-value of the current node.
func (n *navigator) Value() string {
	if n.attr >= 0 {
		return n.cur.Attr[n.attr].Val
	}
	switch n.cur.Type {
	case html.ElementNode, html.DocumentNode:
		return TextContent(n.cur)
	default:
		return n.cur.Data
	}
}

func (n *navigator) Copy() xpath.NodeNavigator {
	cp := *n
	return &cp
}

func (n *navigator) MoveToRoot() {
	n.cur = n.root
	n.attr = -1
}

func (n *navigator) MoveToParent() bool {
	if n.attr >= 0 {
		n.attr = -1
		return true
	}
	if n.cur.Parent == nil || n.cur == n.root {
		return false
	}
	n.cur = n.cur.Parent
	return true
}

func (n *navigator) MoveToNextAttribute() bool {
	if n.cur.Type != html.ElementNode || n.attr >= len(n.cur.Attr)-1 {
		return false
	}
	n.attr++
	return true
}

func (n *navigator) MoveToChild() bool {
	if n.attr >= 0 || n.cur.FirstChild == nil {
		return false
	}
	n.cur = n.cur.FirstChild
	return true
}

func (n *navigator) MoveToFirst() bool {
	if n.attr >= 0 || n.cur.PrevSibling == nil {
		return false
	}
	for n.cur.PrevSibling != nil {
		n.cur = n.cur.PrevSibling
	}
	return true
}

func (n *navigator) MoveToNext() bool {
	if n.attr >= 0 || n.cur.NextSibling == nil {
		return false
	}
	n.cur = n.cur.NextSibling
	return true
}

func (n *navigator) MoveToPrevious() bool {
	if n.attr >= 0 || n.cur.PrevSibling == nil {
		return false
	}
	n.cur = n.cur.PrevSibling
	return true
}

func (n *navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*navigator)
	if !ok || o.root != n.root {
		return false
	}
	n.cur = o.cur
	n.attr = o.attr
	return true
}

func (n *navigator) String() string {
	return n.Value()
}
