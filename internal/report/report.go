// Package report describes match results for display: element tag, id,
// leading classes, a few identifying attributes, truncated text and location.
package report

import (
	"strconv"
	"strings"

	"github.com/jacoelho/lq/internal/dom"
	"github.com/jacoelho/lq/internal/locator"
	"golang.org/x/net/html"
)

const (
	// DefaultLimit is the number of elements described when Options.Limit is unset.
	DefaultLimit = 5

	maxClasses    = 2
	maxAttributes = 2
	maxAttrLen    = 30
	maxTextLen    = 40
)

// describedAttributes are reported, in this order, when present.
var describedAttributes = []string{"type", "name", "value", "href", "src"}

// Options configures Build.
type Options struct {
	RunID     string
	RequestID uint64
	Locator   string
	Kind      locator.Kind
	// Limit caps the described elements. Zero means DefaultLimit, negative means all.
	Limit int
}

// Report is the envelope handed to formatters.
type Report struct {
	RunID     string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	RequestID uint64    `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Locator   string    `json:"locator" yaml:"locator"`
	Kind      string    `json:"kind" yaml:"kind"`
	Count     int       `json:"count" yaml:"count"`
	Elements  []Element `json:"elements" yaml:"elements"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Element describes one matched node.
type Element struct {
	Index      int         `json:"index" yaml:"index"`
	Tag        string      `json:"tag" yaml:"tag"`
	ID         string      `json:"id,omitempty" yaml:"id,omitempty"`
	Classes    []string    `json:"classes,omitempty" yaml:"classes,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Text       string      `json:"text,omitempty" yaml:"text,omitempty"`
	Path       string      `json:"path" yaml:"path"`
}

type Attribute struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Remaining is the number of matched elements not described.
func (r *Report) Remaining() int {
	return r.Count - len(r.Elements)
}

// OK reports whether the locator resolved without error.
func (r *Report) OK() bool {
	return r.Error == ""
}

// Build describes res.
func Build(res locator.Result, opts Options) *Report {
	kind := opts.Kind
	if kind == locator.KindAuto {
		kind = locator.Classify(opts.Locator)
	}

	r := &Report{
		RunID:     opts.RunID,
		RequestID: opts.RequestID,
		Locator:   opts.Locator,
		Kind:      kind.String(),
		Elements:  []Element{},
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
		return r
	}

	r.Count = len(res.Nodes)

	limit := opts.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 || limit > len(res.Nodes) {
		limit = len(res.Nodes)
	}
	for i, n := range res.Nodes[:limit] {
		r.Elements = append(r.Elements, Describe(i+1, n))
	}
	return r
}

// Describe builds the element description of n; index is 1-based.
func Describe(index int, n *html.Node) Element {
	el := Element{
		Index: index,
		Tag:   strings.ToLower(n.Data),
		Path:  Path(n),
	}
	el.ID, _ = dom.Attr(n, "id")

	if class, ok := dom.Attr(n, "class"); ok {
		classes := strings.Fields(class)
		if len(classes) > maxClasses {
			classes = classes[:maxClasses]
		}
		el.Classes = classes
	}

	for _, name := range describedAttributes {
		if len(el.Attributes) == maxAttributes {
			break
		}
		if v, ok := dom.Attr(n, name); ok {
			el.Attributes = append(el.Attributes, Attribute{Name: name, Value: truncate(v, maxAttrLen)})
		}
	}

	// text is only worth showing when it differs from the markup
	text := truncate(strings.TrimSpace(dom.TextContent(n)), maxTextLen)
	if text != "" && text != strings.TrimSpace(innerHTML(n)) {
		el.Text = text
		if len([]rune(text)) >= maxTextLen {
			el.Text += "..."
		}
	}
	return el
}

// Path returns an absolute XPath-like location such as /html/body/ul/li[3].
// The position is only included when the parent has several children with that tag.
func Path(n *html.Node) string {
	var steps []string
	for e := n; e != nil && e.Type == html.ElementNode; e = e.Parent {
		step := e.Data
		pos, total := 0, 0
		if e.Parent != nil {
			for c := e.Parent.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.ElementNode || c.Data != e.Data {
					continue
				}
				total++
				if c == e {
					pos = total
				}
			}
		}
		if total > 1 {
			step += "[" + strconv.Itoa(pos) + "]"
		}
		steps = append(steps, step)
	}

	var b strings.Builder
	for i := len(steps) - 1; i >= 0; i-- {
		b.WriteString("/")
		b.WriteString(steps[i])
	}
	return b.String()
}

func innerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return ""
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
