package locator

import (
	"testing"

	"github.com/jacoelho/lq/internal/dom"
	"golang.org/x/net/html"
)

const shopHTML = `<!DOCTYPE html>
<html>
<head>
<title>Shop</title>
<style>.ghost { display: none } .faded { opacity: 0 }</style>
</head>
<body>
<ul id="fruits">
  <li id="apple">Apple</li>
  <li id="banana">Banana</li>
  <li id="cherry" class="sel">Cherry</li>
</ul>
<div id="d1" class="card"><span id="s1">One <a id="a1" href="/1">link</a></span></div>
<div id="d2" class="card"><span id="s2">Two</span><p id="p2"><a id="a2" href="/2">more</a></p></div>
<form id="f">
  <input id="name" type="text" name="name">
  <input id="agree" type="checkbox" checked>
  <button id="go">Go</button>
  <button id="stop" disabled>Stop</button>
  <div id="fake" role="button">Click</div>
  <textarea id="notes"></textarea>
</form>
<div id="hidden" class="ghost">Hidden</div>
<div id="faded" class="faded">Faded</div>
<div id="empty"></div>
<section id="t"><span id="save" data-testid="save">Save</span><span id="cancel" data-cy="cancel">Cancel</span></section>
<ol id="nums"><li id="n1">1</li><li id="n2">2</li><li id="n3">3</li><li id="n4">4</li><li id="n5">5</li></ol>
<script id="js">var fruit = "Apple";</script>
</body>
</html>`

func newDocument(t *testing.T, src string) *dom.Document {
	t.Helper()

	doc, err := dom.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func newEngine(t *testing.T) (*Engine, *dom.Document) {
	t.Helper()

	doc := newDocument(t, shopHTML)
	return New(doc), doc
}

// ids labels nodes by id, falling back to the tag name.
func ids(nodes []*html.Node) []string {
	out := []string{}
	for _, n := range nodes {
		if id, ok := dom.Attr(n, "id"); ok {
			out = append(out, id)
			continue
		}
		out = append(out, n.Data)
	}
	return out
}

func mustMatch(t *testing.T, e *Engine, locator string) []string {
	t.Helper()

	r := e.Match(locator, nil)
	if r.Err != nil {
		t.Fatalf("Match(%q) error = %v", locator, r.Err)
	}
	return ids(r.Nodes)
}

func byID(t *testing.T, doc *dom.Document, id string) *html.Node {
	t.Helper()

	n, err := doc.Query(nil, "#"+id)
	if err != nil || n == nil {
		t.Fatalf("element #%s not found (err = %v)", id, err)
	}
	return n
}
