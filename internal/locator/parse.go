package locator

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// expr is a node of a parsed smart locator.
type expr interface {
	eval(m *Smart, scope *html.Node) ([]*html.Node, error)
}

// predicate is the per-element test of a filterExpr.
type predicate interface {
	test(m *Smart, el, scope *html.Node) (bool, error)
}

type (
	// emptyExpr matches nothing: a blank or syntactically incomplete locator.
	emptyExpr struct{}

	// hopExpr is "before >> after"; both sides go through the dispatcher.
	hopExpr struct {
		before, after string
	}

	// nativeExpr is a selector handed to the native engine unchanged.
	nativeExpr struct {
		selector string
	}

	// filterExpr keeps the base elements passing test, then applies the
	// selector text that followed the pseudo-class.
	filterExpr struct {
		baseSrc string
		base    expr
		test    predicate
		after   string
	}

	// nthMatchExpr picks the n-th match of query within each parent.
	nthMatchExpr struct {
		query expr
		n     int
	}

	// nativeFirstExpr tries whole natively and evaluates fallback when the
	// native engine rejects it.
	nativeFirstExpr struct {
		whole    string
		fallback expr
	}

	// unionExpr merges the matches of every alternative; failing alternatives are skipped.
	unionExpr struct {
		alts []expr
	}
)

type (
	hasFilter struct {
		src      string
		inner    expr
		innerErr error
	}

	textFilter struct {
		text  string
		exact bool
	}

	visibleFilter struct{}

	childPosFilter struct {
		kind pseudoKind
	}

	nthChildFilter struct {
		nth     nth
		fromEnd bool
	}

	stateFilter struct {
		kind pseudoKind
	}

	notFilter struct {
		inner    expr
		innerErr error
	}
)

// parse builds the expression tree of a smart locator.
func parse(s string) (expr, error) {
	if strings.TrimSpace(s) == "" {
		return emptyExpr{}, nil
	}
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if endsWithCombinator(s) {
		return emptyExpr{}, nil
	}

	if i := lastHop(s); i >= 0 {
		before := strings.TrimSpace(s[:i])
		after := strings.TrimSpace(s[i+2:])
		if before == "" || after == "" {
			return emptyExpr{}, nil
		}
		return hopExpr{before: before, after: after}, nil
	}

	p, found, err := findPseudo(s)
	if err != nil {
		return nil, err
	}
	if !found {
		return nativeExpr{selector: s}, nil
	}
	return parsePseudo(s, p)
}

func parsePseudo(s string, p parsedPseudo) (expr, error) {
	switch p.kind {
	case pseudoHas:
		inner, innerErr := parse(p.argument)
		return newFilter(p, hasFilter{src: strings.TrimSpace(p.argument), inner: inner, innerErr: innerErr})

	case pseudoTextIs, pseudoHasText, pseudoContains:
		text, ok := unquote(p.argument)
		if !ok || text == "" {
			return nil, fmt.Errorf("%w: %s expects a quoted non-empty string, got %q", ErrParse, p.kind, p.argument)
		}
		return newFilter(p, textFilter{text: text, exact: p.kind == pseudoTextIs})

	case pseudoVisible:
		return newFilter(p, visibleFilter{})

	case pseudoNthMatch:
		return parseNthMatch(p)

	case pseudoFirstChild, pseudoLastChild, pseudoOnlyChild:
		return newFilter(p, childPosFilter{kind: p.kind})

	case pseudoNthChild, pseudoNthLastChild:
		n, err := parseNth(p.argument)
		if err != nil {
			return nil, err
		}
		return newFilter(p, nthChildFilter{nth: n, fromEnd: p.kind == pseudoNthLastChild})

	case pseudoActive, pseudoFocus, pseudoChecked, pseudoDisabled, pseudoEnabled:
		return newFilter(p, stateFilter{kind: p.kind})

	case pseudoNot:
		inner, innerErr := parse(p.argument)
		fallback, err := newFilter(p, notFilter{inner: inner, innerErr: innerErr})
		if err != nil {
			return nil, err
		}
		return nativeFirstExpr{whole: s, fallback: fallback}, nil

	case pseudoIs, pseudoWhere:
		var u unionExpr
		for _, alt := range splitTopLevel(p.argument) {
			alt = strings.TrimSpace(alt)
			if alt == "" {
				continue
			}
			e, err := parse(p.before + alt + p.after)
			if err != nil {
				continue
			}
			u.alts = append(u.alts, e)
		}
		return nativeFirstExpr{whole: s, fallback: u}, nil
	}
	return nil, fmt.Errorf("%w: unhandled pseudo-class %s", ErrUnsupported, p.kind)
}

func parseNthMatch(p parsedPseudo) (expr, error) {
	parts := splitTopLevel(p.argument)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: :nth-match expects a selector and an index, got %q", ErrParse, p.argument)
	}

	selector := strings.TrimSpace(strings.Join(parts[:len(parts)-1], ","))
	n, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	if selector == "" || err != nil || n < 1 {
		return nil, fmt.Errorf("%w: :nth-match expects a selector and a positive index, got %q", ErrParse, p.argument)
	}

	query, err := parse(p.before + selector + p.after)
	if err != nil {
		return nil, err
	}
	return nthMatchExpr{query: query, n: n}, nil
}

// newFilter parses the base selector in front of the pseudo-class.
// An empty base, or one ending in a combinator, is completed with "*".
func newFilter(p parsedPseudo, test predicate) (expr, error) {
	src := p.before
	if strings.TrimSpace(src) == "" {
		src = "*"
	} else if endsWithCombinator(src) {
		src += "*"
	}

	base, err := parse(src)
	if err != nil {
		return nil, fmt.Errorf("invalid base selector %q: %w", src, err)
	}
	return filterExpr{baseSrc: src, base: base, test: test, after: p.after}, nil
}
