// Package dom adapts a parsed HTML tree to the queries the locator engines need:
// native CSS selection, XPath snapshots, computed style and focus state.
// It is the only package that touches the host tree, and it never mutates it.
package dom

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Querier is the host surface consumed by the locator engines.
type Querier interface {
	// Root returns the document node.
	Root() *html.Node
	// QueryAll returns the descendants of scope matching a native selector, in document order.
	QueryAll(scope *html.Node, selector string) ([]*html.Node, error)
	// Query returns the first descendant of scope matching a native selector, or nil.
	Query(scope *html.Node, selector string) (*html.Node, error)
	// Matches reports whether n itself matches a native selector.
	Matches(n *html.Node, selector string) (bool, error)
	// QueryXPath evaluates expr with scope as context node and returns an ordered snapshot.
	QueryXPath(scope *html.Node, expr string) ([]*html.Node, error)
	ComputedStyle(n *html.Node) Style
	// ActiveElement mirrors document.activeElement.
	ActiveElement() *html.Node
	// Pressed reports whether n is in the native :active state.
	Pressed(n *html.Node) bool
}

// Document is a Querier over a golang.org/x/net/html tree.
// The tree is treated as read-only; focus and pressed state live beside it.
type Document struct {
	root  *html.Node
	order map[*html.Node]int
	sheet []styleRule

	mu        sync.Mutex
	selectors map[string]compiledSelector
	focused   *html.Node
	pressed   *html.Node
}

type compiledSelector struct {
	group cascadia.SelectorGroup
	err   error
}

var _ Querier = (*Document)(nil)

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return New(root), nil
}

// ParseString is Parse for an in-memory document.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// New wraps an already parsed tree. root should be the document node.
func New(root *html.Node) *Document {
	d := &Document{
		root:      root,
		order:     make(map[*html.Node]int),
		selectors: make(map[string]compiledSelector),
	}

	i := 0
	walk(root, func(n *html.Node) bool {
		d.order[n] = i
		i++
		return true
	})

	d.sheet = d.loadStyleSheets()
	return d
}

func (d *Document) Root() *html.Node {
	return d.root
}

// Focus sets the element reported by ActiveElement. A nil node restores the default.
func (d *Document) Focus(n *html.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.focused = n
}

// Press puts n in the native :active state. A nil node clears it.
func (d *Document) Press(n *html.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pressed = n
}

func (d *Document) ActiveElement() *html.Node {
	d.mu.Lock()
	focused := d.focused
	d.mu.Unlock()

	if focused != nil {
		return focused
	}

	var autofocus, body *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if autofocus == nil && HasAttr(n, "autofocus") {
			autofocus = n
		}
		if body == nil && n.Data == "body" {
			body = n
		}
		return autofocus == nil
	})

	if autofocus != nil {
		return autofocus
	}
	return body
}

func (d *Document) Pressed(n *html.Node) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return n != nil && d.pressed == n
}

func (d *Document) QueryAll(scope *html.Node, selector string) ([]*html.Node, error) {
	group, err := d.compile(selector)
	if err != nil {
		return nil, err
	}
	return cascadia.QueryAll(d.scope(scope), group), nil
}

func (d *Document) Query(scope *html.Node, selector string) (*html.Node, error) {
	group, err := d.compile(selector)
	if err != nil {
		return nil, err
	}
	return cascadia.Query(d.scope(scope), group), nil
}

func (d *Document) Matches(n *html.Node, selector string) (bool, error) {
	group, err := d.compile(selector)
	if err != nil {
		return false, err
	}
	return n != nil && group.Match(n), nil
}

func (d *Document) scope(n *html.Node) *html.Node {
	if n == nil {
		return d.root
	}
	return n
}

func (d *Document) compile(selector string) (cascadia.SelectorGroup, error) {
	selector = strings.TrimSpace(selector)

	d.mu.Lock()
	defer d.mu.Unlock()

	if c, ok := d.selectors[selector]; ok {
		return c.group, c.err
	}

	group, err := cascadia.ParseGroup(selector)
	if err != nil {
		err = fmt.Errorf("%w %q: %v", ErrInvalidSelector, selector, err)
	}
	d.selectors[selector] = compiledSelector{group: group, err: err}
	return group, err
}

// walk visits n and its descendants in document order.
// Returning false from fn stops the traversal.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}
