package locator

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		locator string
		want    Kind
	}{
		{"//div", KindXPath},
		{"  /html/body", KindXPath},
		{"(//li)[2]", KindXPath},
		{`getByRole("button")`, KindPlaywright},
		{`page.getByText('Go')`, KindPlaywright},
		{`getByTestId("save")`, KindPlaywright},
		{"div > span", KindSmart},
		{`li:has-text("x")`, KindSmart},
		{"getByLabel('x')", KindSmart},
		{"", KindSmart},
	}

	for _, tt := range tests {
		if got := Classify(tt.locator); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.locator, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindAuto, false},
		{"auto", KindAuto, false},
		{"Smart", KindSmart, false},
		{" xpath ", KindXPath, false},
		{"css", KindCSS, false},
		{"playwright", KindPlaywright, false},
		{"regex", KindRegex, false},
		{"sql", KindAuto, true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnsupported) {
			t.Errorf("ParseKind(%q) error = %v, want ErrUnsupported", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestKindText(t *testing.T) {
	t.Parallel()

	text, err := KindPlaywright.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}

	var k Kind
	if err := k.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if k != KindPlaywright {
		t.Errorf("UnmarshalText(%s) = %s", text, k)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    Kind
		locator string
		want    []string
	}{
		{name: "role_attribute_and_implicit", kind: KindAuto, locator: `getByRole("button")`, want: []string{"fake", "go", "stop"}},
		{name: "role_textbox", kind: KindAuto, locator: `getByRole('textbox')`, want: []string{"name", "notes"}},
		{name: "role_unknown", kind: KindAuto, locator: `getByRole("dialog")`, want: []string{}},
		{name: "text_leaf_owner", kind: KindAuto, locator: `getByText("link")`, want: []string{"a1"}},
		{name: "text_partial", kind: KindAuto, locator: `getByText("Banan")`, want: []string{"banana"}},
		{name: "test_id", kind: KindAuto, locator: `getByTestId("save")`, want: []string{"save"}},
		{name: "test_id_cypress", kind: KindAuto, locator: `getByTestId("cancel")`, want: []string{"cancel"}},
		{name: "test_id_quote_escaped", kind: KindAuto, locator: `getByTestId("sa\"ve")`, want: []string{}},
		{name: "xpath", kind: KindAuto, locator: `//li[@class="sel"]`, want: []string{"cherry"}},
		{name: "xpath_union_document_order", kind: KindAuto, locator: `//li[@id="n1"] | //li[@id="apple"]`, want: []string{"apple", "n1"}},
		{name: "xpath_text", kind: KindXPath, locator: `//a[text()="more"]`, want: []string{"a2"}},
		{name: "css_plain", kind: KindCSS, locator: "section > span", want: []string{"save", "cancel"}},
		{name: "css_empty", kind: KindCSS, locator: " ", want: []string{}},
		{name: "regex_literal_flags", kind: KindRegex, locator: "/^apple$/i", want: []string{"apple"}},
		{name: "regex_bare", kind: KindRegex, locator: "^Cherry$", want: []string{"cherry"}},
		{name: "regex_skips_script", kind: KindRegex, locator: `^var fruit`, want: []string{}},
		{name: "smart_explicit", kind: KindSmart, locator: `li:text-is("Apple")`, want: []string{"apple"}},
	}

	e, _ := newEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := e.Find(tt.kind, tt.locator, nil)
			if r.Err != nil {
				t.Fatalf("Find(%s, %q) error = %v", tt.kind, tt.locator, r.Err)
			}
			if got := ids(r.Nodes); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Find(%s, %q) = %v, want %v", tt.kind, tt.locator, got, tt.want)
			}
		})
	}
}

func TestFindErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    Kind
		locator string
		want    error
		message string
	}{
		{name: "unsupported_playwright", kind: KindPlaywright, locator: `getByLabel("Name")`, want: ErrUnsupported, message: "getByRole"},
		{name: "unquoted_playwright", kind: KindAuto, locator: "getByRole(button)", want: ErrParse},
		{name: "empty_playwright", kind: KindAuto, locator: `getByText("")`, want: ErrParse},
		{name: "bad_xpath", kind: KindAuto, locator: "//li[", want: ErrInvalidXPath},
		{name: "css_rejects_smart", kind: KindCSS, locator: `li:has-text("x")`, want: ErrInvalidSelector},
		{name: "bad_regex", kind: KindRegex, locator: "/Cherr(/", want: ErrParse},
	}

	e, _ := newEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := e.Find(tt.kind, tt.locator, nil)
			if r.OK() {
				t.Fatalf("Find(%s, %q) = %v, want error", tt.kind, tt.locator, ids(r.Nodes))
			}
			if !errors.Is(r.Err, tt.want) {
				t.Errorf("Find(%s, %q) error = %v, want %v", tt.kind, tt.locator, r.Err, tt.want)
			}
			if !strings.Contains(r.Err.Error(), tt.message) {
				t.Errorf("Find(%s, %q) error = %q, want it to contain %q", tt.kind, tt.locator, r.Err, tt.message)
			}
		})
	}
}

func TestGetByRoleUnion(t *testing.T) {
	t.Parallel()

	doc := newDocument(t, `<button>Go</button><div role="button">Click</div>`)
	r := New(doc).Match(`getByRole("button")`, nil)
	if r.Err != nil {
		t.Fatalf("Match() error = %v", r.Err)
	}
	if got, want := ids(r.Nodes), []string{"div", "button"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Match() = %v, want %v", got, want)
	}
}

func TestWithResolver(t *testing.T) {
	t.Parallel()

	doc := newDocument(t, shopHTML)
	body := byID(t, doc, "fruits").Parent

	fixed := ResolverFunc(func(locator string, scope *html.Node) Result {
		return Ok([]*html.Node{body, body})
	})
	e := New(doc, WithResolver(KindSmart, fixed))

	r := e.Match("anything", nil)
	if r.Err != nil {
		t.Fatalf("Match() error = %v", r.Err)
	}
	if got := ids(r.Nodes); !reflect.DeepEqual(got, []string{"body"}) {
		t.Errorf("Match() = %v, want [body]", got)
	}
}

func TestFindRecoversPanics(t *testing.T) {
	t.Parallel()

	doc := newDocument(t, shopHTML)
	boom := ResolverFunc(func(string, *html.Node) Result {
		panic("boom")
	})
	e := New(doc, WithResolver(KindCSS, boom))

	r := e.Find(KindCSS, "li", nil)
	if !errors.Is(r.Err, ErrEvaluation) {
		t.Fatalf("Find() error = %v, want ErrEvaluation", r.Err)
	}
	if !strings.Contains(r.Err.Error(), "boom") {
		t.Errorf("Find() error = %q, want it to mention the panic", r.Err)
	}
}

func TestFindUnknownKind(t *testing.T) {
	t.Parallel()

	doc := newDocument(t, shopHTML)
	r := New(doc).Find(Kind(42), "li", nil)
	if !errors.Is(r.Err, ErrUnsupported) {
		t.Fatalf("Find() error = %v, want ErrUnsupported", r.Err)
	}
}

func TestFirst(t *testing.T) {
	t.Parallel()

	e, _ := newEngine(t)

	n, err := e.First("#fruits li")
	if err != nil || n == nil || byIDOf(n) != "apple" {
		t.Errorf("First() = %v, %v; want apple", n, err)
	}

	if n, err := e.First("  "); n != nil || err != nil {
		t.Errorf("First(blank) = %v, %v; want nil, nil", n, err)
	}
	if _, err := e.First("table"); !errors.Is(err, ErrNoMatch) {
		t.Errorf("First(table) error = %v, want ErrNoMatch", err)
	}
	if _, err := e.First("//li["); !errors.Is(err, ErrInvalidXPath) {
		t.Errorf("First(//li[) error = %v, want ErrInvalidXPath", err)
	}
}

func byIDOf(n *html.Node) string {
	return ids([]*html.Node{n})[0]
}
