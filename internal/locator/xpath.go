package locator

import (
	"fmt"
	"strings"

	"github.com/jacoelho/lq/internal/dom"
	"golang.org/x/net/html"
)

// XPath resolves XPath 1.0 expressions with the scope as context node.
type XPath struct {
	q dom.Querier
}

var _ Resolver = (*XPath)(nil)

func NewXPath(q dom.Querier) *XPath {
	return &XPath{q: q}
}

func (x *XPath) Resolve(locator string, scope *html.Node) Result {
	if strings.TrimSpace(locator) == "" {
		return Ok(nil)
	}
	if scope == nil {
		scope = x.q.Root()
	}

	nodes, err := x.q.QueryXPath(scope, strings.TrimSpace(locator))
	if err != nil {
		return Fail(fmt.Errorf("%w: %w", ErrInvalidXPath, err))
	}
	return Ok(nodes)
}
