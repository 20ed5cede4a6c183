package dom

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/net/html"
)

// Style is the subset of computed style the visibility check reads.
// Width and Height approximate the rendered box, in CSS pixels.
type Style struct {
	Display    string
	Visibility string
	Opacity    string
	Width      float64
	Height     float64
}

// userAgentSheet lists the elements a browser never renders.
const userAgentSheet = `
head, script, style, template, title, meta, link, base, noscript, datalist, param, area, map,
[hidden], input[type=hidden] { display: none }
`

type origin uint8

const (
	originUserAgent origin = iota
	originAuthor
	originInline
)

type styleRule struct {
	origin      origin
	selector    cascadia.Sel
	specificity cascadia.Specificity
	position    int
	decls       declarations
}

// declarations keeps !important values apart so they outrank every normal
// declaration regardless of origin or specificity.
type declarations struct {
	normal    map[string]string
	important map[string]string
}

func newDeclarations() declarations {
	return declarations{normal: make(map[string]string), important: make(map[string]string)}
}

func (ds declarations) set(name string, tokens []css.Token) {
	v, important := declValue(tokens)
	if important {
		ds.important[name] = v
		return
	}
	ds.normal[name] = v
}

// replaced elements have an intrinsic size even without text content.
var replaced = map[string]bool{
	"img": true, "input": true, "button": true, "select": true, "textarea": true,
	"iframe": true, "video": true, "audio": true, "canvas": true, "svg": true,
	"hr": true, "object": true, "embed": true, "progress": true, "meter": true,
}

var inline = map[string]bool{
	"a": true, "abbr": true, "b": true, "code": true, "em": true, "i": true,
	"label": true, "small": true, "span": true, "strong": true, "sub": true, "sup": true,
}

func (d *Document) loadStyleSheets() []styleRule {
	rules := parseStyleSheet(userAgentSheet, originUserAgent, 0)

	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "style" {
			rules = append(rules, parseStyleSheet(TextContent(n), originAuthor, len(rules))...)
		}
		return true
	})
	return rules
}

// ComputedStyle resolves display, visibility, opacity and the rendered box of n.
// Important declarations are applied after normal ones, keeping origin,
// specificity and source order among themselves.
func (d *Document) ComputedStyle(n *html.Node) Style {
	if n == nil || n.Type != html.ElementNode {
		return Style{Display: "none", Visibility: "visible", Opacity: "1"}
	}

	decls := d.cascade(n)
	st := Style{
		Display:    decls["display"],
		Visibility: d.visibility(n, decls),
		Opacity:    normalizeOpacity(decls["opacity"]),
	}
	if st.Display == "" {
		st.Display = defaultDisplay(n)
	}

	if !d.rendered(n) {
		return st
	}

	st.Width, st.Height = 0, 0
	if d.hasContent(n) {
		st.Width, st.Height = 1, 1
	}
	if w, ok := pixels(decls["width"]); ok {
		st.Width = w
	}
	if h, ok := pixels(decls["height"]); ok {
		st.Height = h
	}
	return st
}

// cascade orders matching declarations by origin, specificity and source order.
func (d *Document) cascade(n *html.Node) map[string]string {
	var matched []styleRule
	for _, r := range d.sheet {
		if r.selector.Match(n) {
			matched = append(matched, r)
		}
	}
	if v, ok := Attr(n, "style"); ok {
		matched = append(matched, styleRule{
			origin:   originInline,
			position: len(d.sheet),
			decls:    parseDeclarations(v),
		})
	}

	slices.SortStableFunc(matched, func(a, b styleRule) int {
		if a.origin != b.origin {
			return int(a.origin) - int(b.origin)
		}
		if a.specificity.Less(b.specificity) {
			return -1
		}
		if b.specificity.Less(a.specificity) {
			return 1
		}
		return a.position - b.position
	})

	decls := make(map[string]string)
	for _, r := range matched {
		maps.Copy(decls, r.decls.normal)
	}
	for _, r := range matched {
		maps.Copy(decls, r.decls.important)
	}
	return decls
}

func (d *Document) visibility(n *html.Node, decls map[string]string) string {
	if v := decls["visibility"]; v != "" && v != "inherit" {
		return v
	}
	if p := ParentElement(n); p != nil {
		return d.visibility(p, d.cascade(p))
	}
	return "visible"
}

// rendered reports whether neither n nor an ancestor is display:none.
func (d *Document) rendered(n *html.Node) bool {
	for e := n; e != nil; e = ParentElement(e) {
		if d.cascade(e)["display"] == "none" {
			return false
		}
	}
	return true
}

// hasContent reports whether n renders text or a replaced element. Subtrees
// with display:none are skipped.
func (d *Document) hasContent(n *html.Node) bool {
	if replaced[n.Data] {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return true
			}
		case html.ElementNode:
			if d.cascade(c)["display"] == "none" {
				continue
			}
			if d.hasContent(c) {
				return true
			}
		}
	}
	return false
}

func defaultDisplay(n *html.Node) string {
	if inline[n.Data] {
		return "inline"
	}
	return "block"
}

func normalizeOpacity(v string) string {
	if v == "" {
		return "1"
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func pixels(v string) (float64, bool) {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseStyleSheet keeps top-level rulesets; rules nested in at-rules are skipped.
func parseStyleSheet(src string, o origin, position int) []styleRule {
	var (
		rules   []styleRule
		pending []string
		current []styleRule
		atDepth int
	)

	p := css.NewParser(parse.NewInputString(src), false)
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			return rules
		case css.BeginAtRuleGrammar:
			atDepth++
		case css.EndAtRuleGrammar:
			atDepth--
		case css.QualifiedRuleGrammar:
			pending = append(pending, tokensString(p.Values()))
		case css.BeginRulesetGrammar:
			pending = append(pending, tokensString(p.Values()))
			if atDepth == 0 {
				current = compileRules(pending, o, position+len(rules))
			}
			pending = pending[:0]
		case css.DeclarationGrammar:
			name := strings.ToLower(string(data))
			for i := range current {
				current[i].decls.set(name, p.Values())
			}
		case css.EndRulesetGrammar:
			rules = append(rules, current...)
			current = nil
		}
	}
}

func compileRules(selectors []string, o origin, position int) []styleRule {
	var rules []styleRule
	for _, s := range selectors {
		group, err := cascadia.ParseGroup(s)
		if err != nil {
			continue
		}
		decls := newDeclarations()
		for _, sel := range group {
			rules = append(rules, styleRule{
				origin:      o,
				selector:    sel,
				specificity: sel.Specificity(),
				position:    position + len(rules),
				decls:       decls,
			})
		}
	}
	return rules
}

func parseDeclarations(src string) declarations {
	decls := newDeclarations()

	p := css.NewParser(parse.NewInputString(src), true)
	for {
		gt, _, data := p.Next()
		if gt == css.ErrorGrammar {
			return decls
		}
		if gt == css.DeclarationGrammar {
			decls.set(strings.ToLower(string(data)), p.Values())
		}
	}
}

func declValue(tokens []css.Token) (string, bool) {
	v := strings.ToLower(tokensString(tokens))
	if rest, ok := strings.CutSuffix(v, "!important"); ok {
		return strings.TrimSpace(rest), true
	}
	return v, false
}

func tokensString(tokens []css.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.Write(t.Data)
	}
	return strings.TrimSpace(b.String())
}
