package locator

import (
	"fmt"
	"strings"

	"github.com/jacoelho/lq/internal/dom"
	"golang.org/x/net/html"
)

// CSS resolves plain native selectors, without the smart extensions.
type CSS struct {
	q dom.Querier
}

var _ Resolver = (*CSS)(nil)

func NewCSS(q dom.Querier) *CSS {
	return &CSS{q: q}
}

func (c *CSS) Resolve(locator string, scope *html.Node) Result {
	if strings.TrimSpace(locator) == "" {
		return Ok(nil)
	}
	if scope == nil {
		scope = c.q.Root()
	}

	nodes, err := c.q.QueryAll(scope, locator)
	if err != nil {
		return Fail(fmt.Errorf("%w: %w", ErrInvalidSelector, err))
	}
	return Ok(nodes)
}
