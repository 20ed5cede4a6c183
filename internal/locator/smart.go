package locator

import (
	"fmt"
	"strings"

	"github.com/jacoelho/lq/internal/dom"
	"golang.org/x/net/html"
)

// Smart resolves the extended CSS syntax. Native selectors go straight to the
// Querier; custom pseudo-classes are parsed into an expression tree and
// evaluated recursively, each subexpression against its own scope.
type Smart struct {
	q        dom.Querier
	dispatch Dispatcher
}

var _ Resolver = (*Smart)(nil)

// NewSmart returns a smart resolver. d resolves each side of ">>"; when nil,
// both sides are resolved as smart locators.
func NewSmart(q dom.Querier, d Dispatcher) *Smart {
	return &Smart{q: q, dispatch: d}
}

func (m *Smart) Resolve(locator string, scope *html.Node) (res Result) {
	if scope == nil {
		scope = m.q.Root()
	}

	defer func() {
		if p := recover(); p != nil {
			res = Fail(fmt.Errorf("%w: %v", ErrEvaluation, p))
		}
	}()

	nodes, err := m.find(locator, scope)
	if err != nil {
		return Fail(err)
	}
	return Ok(nodes)
}

func (m *Smart) find(locator string, scope *html.Node) ([]*html.Node, error) {
	e, err := parse(locator)
	if err != nil {
		return nil, err
	}
	return e.eval(m, scope)
}

func (m *Smart) match(locator string, scope *html.Node) Result {
	if m.dispatch == nil {
		return m.Resolve(locator, scope)
	}
	return m.dispatch.Match(locator, scope)
}

func (emptyExpr) eval(*Smart, *html.Node) ([]*html.Node, error) {
	return []*html.Node{}, nil
}

func (h hopExpr) eval(m *Smart, scope *html.Node) ([]*html.Node, error) {
	before := m.match(h.before, scope)
	if before.Err != nil {
		return nil, before.Err
	}

	var ns nodeSet
	for _, n := range before.Nodes {
		r := m.match(h.after, n)
		if r.Err != nil {
			continue
		}
		ns.add(r.Nodes...)
	}
	return ns.list(), nil
}

func (e nativeExpr) eval(m *Smart, scope *html.Node) ([]*html.Node, error) {
	nodes, err := m.q.QueryAll(scope, e.selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSelector, err)
	}
	return nodes, nil
}

func (f filterExpr) eval(m *Smart, scope *html.Node) ([]*html.Node, error) {
	base, err := f.base.eval(m, scope)
	if err != nil {
		return nil, fmt.Errorf("invalid base selector %q: %w", f.baseSrc, err)
	}

	kept := make([]*html.Node, 0, len(base))
	for _, el := range base {
		ok, err := f.test.test(m, el, scope)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, el)
		}
	}
	return m.applyAfter(kept, f.after)
}

func (e nthMatchExpr) eval(m *Smart, scope *html.Node) ([]*html.Node, error) {
	nodes, err := e.query.eval(m, scope)
	if err != nil {
		return nil, err
	}

	var parents []*html.Node
	groups := make(map[*html.Node][]*html.Node)
	for _, n := range nodes {
		p := dom.ParentElement(n)
		if p == nil {
			continue
		}
		if _, ok := groups[p]; !ok {
			parents = append(parents, p)
		}
		groups[p] = append(groups[p], n)
	}

	out := []*html.Node{}
	for _, p := range parents {
		if g := groups[p]; len(g) >= e.n {
			out = append(out, g[e.n-1])
		}
	}
	return out, nil
}

func (e nativeFirstExpr) eval(m *Smart, scope *html.Node) ([]*html.Node, error) {
	if !needsSmart(e.whole) {
		if nodes, err := m.q.QueryAll(scope, e.whole); err == nil {
			return nodes, nil
		}
	}
	return e.fallback.eval(m, scope)
}

func (u unionExpr) eval(m *Smart, scope *html.Node) ([]*html.Node, error) {
	var ns nodeSet
	for _, alt := range u.alts {
		nodes, err := alt.eval(m, scope)
		if err != nil {
			continue
		}
		ns.add(nodes...)
	}
	return ns.list(), nil
}

func (h hasFilter) test(m *Smart, el, _ *html.Node) (bool, error) {
	err := h.innerErr
	if err == nil {
		var nodes []*html.Node
		if nodes, err = h.inner.eval(m, el); err == nil {
			return len(nodes) > 0, nil
		}
	}

	if needsSmart(h.src) {
		return false, nil
	}
	// an inner locator neither engine accepts excludes the element
	found, err := m.q.Query(el, h.src)
	if err != nil {
		return false, nil
	}
	return found != nil, nil
}

func (t textFilter) test(_ *Smart, el, _ *html.Node) (bool, error) {
	text := strings.TrimSpace(dom.TextContent(el))
	if t.exact {
		return text == t.text, nil
	}
	return strings.Contains(text, t.text), nil
}

func (visibleFilter) test(m *Smart, el, _ *html.Node) (bool, error) {
	st := m.q.ComputedStyle(el)
	return st.Display != "none" &&
		st.Visibility != "hidden" &&
		st.Opacity != "0" &&
		st.Width > 0 &&
		st.Height > 0, nil
}

func (c childPosFilter) test(_ *Smart, el, _ *html.Node) (bool, error) {
	siblings := dom.ElementChildren(el.Parent)
	idx := indexOf(siblings, el)
	switch c.kind {
	case pseudoFirstChild:
		return idx == 0, nil
	case pseudoLastChild:
		return idx >= 0 && idx == len(siblings)-1, nil
	default:
		return idx >= 0 && len(siblings) == 1, nil
	}
}

func (c nthChildFilter) test(_ *Smart, el, _ *html.Node) (bool, error) {
	siblings := dom.ElementChildren(el.Parent)
	idx := indexOf(siblings, el)
	if idx < 0 {
		return false, nil
	}
	pos := idx + 1
	if c.fromEnd {
		pos = len(siblings) - idx
	}
	return c.nth.matches(pos), nil
}

func (s stateFilter) test(m *Smart, el, _ *html.Node) (bool, error) {
	switch s.kind {
	case pseudoActive:
		return el == m.q.ActiveElement() && m.q.Pressed(el), nil
	case pseudoFocus:
		return el == m.q.ActiveElement(), nil
	case pseudoChecked:
		// a parsed tree carries checkbox and radio state in the attribute
		return dom.HasAttr(el, "checked"), nil
	case pseudoDisabled:
		return dom.HasAttr(el, "disabled"), nil
	default:
		return !dom.HasAttr(el, "disabled"), nil
	}
}

func (n notFilter) test(m *Smart, el, scope *html.Node) (bool, error) {
	if n.innerErr != nil {
		return true, nil
	}

	parent := dom.ParentElement(el)
	if parent == nil {
		parent = scope
	}
	excluded, err := n.inner.eval(m, parent)
	if err != nil {
		return true, nil
	}
	return !contains(excluded, el), nil
}

// applyAfter applies the selector text following a resolved pseudo-class:
// its leading compound filters nodes, a combinator continues the match
// relative to them.
func (m *Smart) applyAfter(nodes []*html.Node, after string) ([]*html.Node, error) {
	if strings.TrimSpace(after) == "" {
		return nodes, nil
	}

	head, comb, rest := splitCompound(after)
	if head != "" {
		kept := make([]*html.Node, 0, len(nodes))
		for _, el := range nodes {
			ok, err := m.matchesCompound(el, head)
			if err != nil {
				return nil, err
			}
			if ok {
				kept = append(kept, el)
			}
		}
		nodes = kept
	}

	if comb == 0 {
		return nodes, nil
	}
	return m.descend(nodes, comb, rest)
}

// matchesCompound tests el natively, falling back to evaluating the compound
// against the parent of el when it holds custom pseudo-classes.
func (m *Smart) matchesCompound(el *html.Node, compound string) (bool, error) {
	if !needsSmart(compound) {
		if ok, err := m.q.Matches(el, compound); err == nil {
			return ok, nil
		}
	}
	if el.Parent == nil {
		return false, nil
	}

	nodes, err := m.find(compound, el.Parent)
	if err != nil {
		return false, err
	}
	return contains(nodes, el), nil
}

func (m *Smart) descend(nodes []*html.Node, comb byte, rest string) ([]*html.Node, error) {
	var ns nodeSet

	if comb == ' ' {
		e, err := parse(rest)
		if err != nil {
			return nil, err
		}
		for _, el := range nodes {
			found, err := e.eval(m, el)
			if err != nil {
				return nil, err
			}
			ns.add(found...)
		}
		return ns.list(), nil
	}

	head, next, tail := splitCompound(rest)
	if head == "" {
		return nil, fmt.Errorf("%w: expected a selector after %q in %q", ErrInvalidSelector, string(comb), rest)
	}

	for _, el := range nodes {
		for _, c := range related(el, comb) {
			ok, err := m.matchesCompound(c, head)
			if err != nil {
				return nil, err
			}
			if ok {
				ns.add(c)
			}
		}
	}

	if next == 0 {
		return ns.list(), nil
	}
	return m.descend(ns.list(), next, tail)
}

// related returns the elements reached from el through a child or sibling combinator.
func related(el *html.Node, comb byte) []*html.Node {
	switch comb {
	case '>':
		return dom.ElementChildren(el)
	case '+':
		for s := el.NextSibling; s != nil; s = s.NextSibling {
			if s.Type == html.ElementNode {
				return []*html.Node{s}
			}
		}
		return nil
	default:
		var siblings []*html.Node
		for s := el.NextSibling; s != nil; s = s.NextSibling {
			if s.Type == html.ElementNode {
				siblings = append(siblings, s)
			}
		}
		return siblings
	}
}

func indexOf(nodes []*html.Node, n *html.Node) int {
	for i, c := range nodes {
		if c == n {
			return i
		}
	}
	return -1
}
