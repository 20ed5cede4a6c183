// Package locator resolves locator expressions against an HTML document.
//
// Supported syntaxes:
//   - Smart CSS: native selectors extended with :has(), :has-text(), :text-is(),
//     :contains(), :visible, :nth-match(), positional and state pseudo-classes,
//     :not(), :is(), :where() and the context hop operator ">>"
//   - XPath 1.0 expressions, evaluated with the scope as context node
//   - Playwright style getByRole("..."), getByText("...") and getByTestId("...")
//   - Plain CSS and text regular expressions, when requested explicitly
//
// Every entry point returns a Result and never panics.
package locator

import (
	"fmt"
	"strings"

	"github.com/jacoelho/lq/internal/dom"
	"golang.org/x/net/html"
)

// Resolver evaluates one kind of locator within scope.
type Resolver interface {
	Resolve(locator string, scope *html.Node) Result
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(locator string, scope *html.Node) Result

func (f ResolverFunc) Resolve(locator string, scope *html.Node) Result {
	return f(locator, scope)
}

// Dispatcher classifies a locator and routes it to the matching resolver.
type Dispatcher interface {
	Match(locator string, scope *html.Node) Result
}

// Option configures an Engine.
type Option func(*Engine)

// WithResolver replaces the resolver used for kind.
func WithResolver(kind Kind, r Resolver) Option {
	return func(e *Engine) {
		e.resolvers[kind] = r
	}
}

// Engine is the locator dispatcher. It is safe for concurrent use when the
// underlying Querier is.
type Engine struct {
	q         dom.Querier
	resolvers map[Kind]Resolver
}

var _ Dispatcher = (*Engine)(nil)

// New wires the default resolvers over q.
func New(q dom.Querier, opts ...Option) *Engine {
	e := &Engine{
		q:         q,
		resolvers: make(map[Kind]Resolver),
	}

	e.resolvers[KindCSS] = NewCSS(q)
	e.resolvers[KindXPath] = NewXPath(q)
	e.resolvers[KindPlaywright] = NewPlaywright(q)
	e.resolvers[KindRegex] = NewRegex(q)
	e.resolvers[KindSmart] = NewSmart(q, e)

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Match classifies locator and resolves it within scope.
// A nil scope is the document.
func (e *Engine) Match(locator string, scope *html.Node) Result {
	return e.Find(KindAuto, locator, scope)
}

// Find resolves locator with the resolver registered for kind.
// KindAuto classifies the locator first.
func (e *Engine) Find(kind Kind, locator string, scope *html.Node) (res Result) {
	if scope == nil {
		scope = e.q.Root()
	}
	if kind == KindAuto {
		kind = Classify(locator)
	}

	r, ok := e.resolvers[kind]
	if !ok {
		return Fail(fmt.Errorf("%w: no resolver registered for %s", ErrUnsupported, kind))
	}

	defer func() {
		if p := recover(); p != nil {
			res = Fail(fmt.Errorf("%w: %v", ErrEvaluation, p))
		}
	}()

	res = r.Resolve(locator, scope)
	if res.Err != nil {
		return Fail(res.Err)
	}
	return Ok(res.Nodes)
}

// First resolves locator against the document and returns its first match.
// An empty locator returns a nil node, which Find reads as the document.
func (e *Engine) First(locator string) (*html.Node, error) {
	if strings.TrimSpace(locator) == "" {
		return nil, nil
	}
	res := e.Match(locator, nil)
	if res.Err != nil {
		return nil, res.Err
	}
	if len(res.Nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, locator)
	}
	return res.Nodes[0], nil
}
