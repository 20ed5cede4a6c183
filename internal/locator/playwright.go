package locator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jacoelho/lq/internal/dom"
	"golang.org/x/net/html"
)

// Playwright resolves getByRole, getByText and getByTestId locators.
type Playwright struct {
	q dom.Querier
}

var _ Resolver = (*Playwright)(nil)

func NewPlaywright(q dom.Querier) *Playwright {
	return &Playwright{q: q}
}

type playwrightMethod struct {
	name    string
	pattern *regexp.Regexp
	resolve func(p *Playwright, arg string, scope *html.Node) ([]*html.Node, error)
}

var playwrightForms = []playwrightMethod{
	{"getByRole", argumentPattern("getByRole"), (*Playwright).byRole},
	{"getByText", argumentPattern("getByText"), (*Playwright).byText},
	{"getByTestId", argumentPattern("getByTestId"), (*Playwright).byTestID},
}

const supportedPlaywright = `getByRole("role"), getByText("text"), getByTestId("id")`

// implicitRoles lists native elements carrying a role without the attribute.
var implicitRoles = map[string]string{
	"button":  "button, input[type=button], input[type=submit]",
	"textbox": "input[type=text], input[type=email], input[type=password], textarea",
}

func argumentPattern(method string) *regexp.Regexp {
	return regexp.MustCompile(method + `\(\s*(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)')`)
}

func (p *Playwright) Resolve(locator string, scope *html.Node) Result {
	if scope == nil {
		scope = p.q.Root()
	}

	for _, form := range playwrightForms {
		if !strings.Contains(locator, form.name+"(") {
			continue
		}

		m := form.pattern.FindStringSubmatch(locator)
		if m == nil {
			return Fail(fmt.Errorf("%w: %s expects a quoted argument in %q", ErrParse, form.name, locator))
		}
		arg, _ := unquote(m[0][strings.IndexByte(m[0], '(')+1:])
		if arg == "" {
			return Fail(fmt.Errorf("%w: %s expects a non-empty argument in %q", ErrParse, form.name, locator))
		}

		nodes, err := form.resolve(p, arg, scope)
		if err != nil {
			return Fail(err)
		}
		return Ok(nodes)
	}

	return Fail(fmt.Errorf("%w: unsupported Playwright locator format %q (supported: %s)", ErrUnsupported, locator, supportedPlaywright))
}

func (p *Playwright) byRole(role string, scope *html.Node) ([]*html.Node, error) {
	var ns nodeSet

	explicit, err := p.query(scope, "[role="+cssString(role)+"]")
	if err != nil {
		return nil, err
	}
	ns.add(explicit...)

	if sel, ok := implicitRoles[strings.ToLower(role)]; ok {
		implicit, err := p.query(scope, sel)
		if err != nil {
			return nil, err
		}
		ns.add(implicit...)
	}
	return ns.list(), nil
}

// byText keeps the innermost elements containing text: an element is dropped
// when one of its element children also contains it.
func (p *Playwright) byText(text string, scope *html.Node) ([]*html.Node, error) {
	all, err := p.query(scope, "*")
	if err != nil {
		return nil, err
	}

	var out []*html.Node
	for _, el := range all {
		if !strings.Contains(strings.TrimSpace(dom.TextContent(el)), text) {
			continue
		}
		owner := true
		for _, c := range dom.ElementChildren(el) {
			if strings.Contains(strings.TrimSpace(dom.TextContent(c)), text) {
				owner = false
				break
			}
		}
		if owner {
			out = append(out, el)
		}
	}
	return out, nil
}

func (p *Playwright) byTestID(id string, scope *html.Node) ([]*html.Node, error) {
	v := cssString(id)
	return p.query(scope, "[data-testid="+v+"], [data-test-id="+v+"], [data-cy="+v+"]")
}

func (p *Playwright) query(scope *html.Node, selector string) ([]*html.Node, error) {
	nodes, err := p.q.QueryAll(scope, selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSelector, err)
	}
	return nodes, nil
}
