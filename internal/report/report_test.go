package report

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jacoelho/lq/internal/dom"
	"github.com/jacoelho/lq/internal/locator"
	"golang.org/x/net/html"
)

const pageHTML = `<html><body>
<ul><li>one</li><li>two</li><li id="third" class="a b c">three <b>bold</b></li></ul>
<a id="home" class="nav" href="https://example.com/a/very/long/path/that/keeps/going" type="text/html" name="home">Home</a>
<p id="long">` + "Lorem ipsum dolor sit amet, consectetur adipiscing elit" + `</p>
</body></html>`

func parse(t *testing.T) *dom.Document {
	t.Helper()

	doc, err := dom.ParseString(pageHTML)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func query(t *testing.T, doc *dom.Document, sel string) []*html.Node {
	t.Helper()

	nodes, err := doc.QueryAll(nil, sel)
	if err != nil {
		t.Fatalf("QueryAll(%q) error = %v", sel, err)
	}
	return nodes
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	doc := parse(t)

	tests := []struct {
		name string
		sel  string
		want Element
	}{
		{
			name: "classes_and_markup_text",
			sel:  "#third",
			want: Element{Index: 1, Tag: "li", ID: "third", Classes: []string{"a", "b"}, Text: "three bold", Path: "/html/body/ul/li[3]"},
		},
		{
			name: "attributes_in_fixed_order",
			sel:  "#home",
			want: Element{
				Index:   1,
				Tag:     "a",
				ID:      "home",
				Classes: []string{"nav"},
				Attributes: []Attribute{
					{Name: "type", Value: "text/html"},
					{Name: "name", Value: "home"},
				},
				Path: "/html/body/a",
			},
		},
		{
			name: "long_text_truncated",
			sel:  "#long",
			want: Element{Index: 1, Tag: "p", ID: "long", Text: "Lorem ipsum dolor sit amet, consectetur ...", Path: "/html/body/p"},
		},
		{
			name: "plain_text_equal_to_markup_is_omitted",
			sel:  "li",
			want: Element{Index: 1, Tag: "li", Path: "/html/body/ul/li[1]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Describe(1, query(t, doc, tt.sel)[0])
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Describe(%s) = %+v, want %+v", tt.sel, got, tt.want)
			}
		})
	}
}

func TestDescribeTruncatesAttributes(t *testing.T) {
	t.Parallel()

	doc, err := dom.ParseString(`<a href="https://example.com/a/very/long/path/that/keeps/going">x</a>`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	nodes, _ := doc.QueryAll(nil, "a")

	got := Describe(1, nodes[0]).Attributes
	want := []Attribute{{Name: "href", Value: "https://example.com/a/very/lon"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Attributes = %+v, want %+v", got, want)
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	doc := parse(t)
	nodes := query(t, doc, "*")

	r := Build(locator.Ok(nodes), Options{RunID: "run", RequestID: 7, Locator: "*"})
	if r.Count != len(nodes) {
		t.Errorf("Count = %d, want %d", r.Count, len(nodes))
	}
	if len(r.Elements) != DefaultLimit {
		t.Errorf("len(Elements) = %d, want %d", len(r.Elements), DefaultLimit)
	}
	if r.Remaining() != len(nodes)-DefaultLimit {
		t.Errorf("Remaining() = %d, want %d", r.Remaining(), len(nodes)-DefaultLimit)
	}
	if r.Kind != "smart" || r.RunID != "run" || r.RequestID != 7 || !r.OK() {
		t.Errorf("Build() envelope = %+v", r)
	}
	for i, el := range r.Elements {
		if el.Index != i+1 {
			t.Errorf("Elements[%d].Index = %d", i, el.Index)
		}
	}

	all := Build(locator.Ok(nodes), Options{Locator: "*", Kind: locator.KindCSS, Limit: -1})
	if len(all.Elements) != len(nodes) || all.Kind != "css" {
		t.Errorf("Build(Limit: -1) described %d of %d, kind %s", len(all.Elements), len(nodes), all.Kind)
	}
}

func TestBuildError(t *testing.T) {
	t.Parallel()

	err := errors.New("locator: parse error: missing closing parenthesis")
	r := Build(locator.Fail(err), Options{Locator: "div:has(", Kind: locator.KindAuto})

	if r.OK() || r.Count != 0 || len(r.Elements) != 0 {
		t.Errorf("Build() = %+v, want an error report", r)
	}
	if !strings.Contains(r.Error, "missing closing parenthesis") {
		t.Errorf("Error = %q", r.Error)
	}
}

func TestPath(t *testing.T) {
	t.Parallel()

	doc := parse(t)
	if got := Path(query(t, doc, "b")[0]); got != "/html/body/ul/li[3]/b" {
		t.Errorf("Path() = %q", got)
	}
	if got := Path(doc.Root()); got != "" {
		t.Errorf("Path(document) = %q, want empty", got)
	}
}
