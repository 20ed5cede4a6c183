package locator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jacoelho/lq/internal/dom"
	"golang.org/x/net/html"
)

// Regex matches elements whose trimmed text content matches a regular
// expression, given as a bare pattern or as /pattern/flags.
type Regex struct {
	q dom.Querier
}

var _ Resolver = (*Regex)(nil)

var regexLiteral = regexp.MustCompile(`^/(.*)/([gimsuy]*)$`)

// textless elements never take part in a text match.
var textless = map[string]bool{"script": true, "style": true, "noscript": true}

func NewRegex(q dom.Querier) *Regex {
	return &Regex{q: q}
}

func (r *Regex) Resolve(locator string, scope *html.Node) Result {
	if locator == "" {
		return Ok(nil)
	}
	if scope == nil {
		scope = r.q.Root()
	}

	re, err := compileRegex(locator)
	if err != nil {
		return Fail(err)
	}

	all, err := r.q.QueryAll(scope, "*")
	if err != nil {
		return Fail(fmt.Errorf("%w: %w", ErrInvalidSelector, err))
	}

	var out []*html.Node
	for _, el := range all {
		if textless[el.Data] {
			continue
		}
		text := strings.TrimSpace(dom.TextContent(el))
		if text != "" && re.MatchString(text) {
			out = append(out, el)
		}
	}
	return Ok(out)
}

// compileRegex maps the i, m and s flags to Go flags; g, u and y have no
// meaning for a single match test and are ignored.
func compileRegex(locator string) (*regexp.Regexp, error) {
	pattern := locator
	var flags strings.Builder

	if m := regexLiteral.FindStringSubmatch(locator); m != nil {
		pattern = m[1]
		for _, f := range m[2] {
			if strings.ContainsRune("ims", f) && !strings.ContainsRune(flags.String(), f) {
				flags.WriteRune(f)
			}
		}
	}
	if flags.Len() > 0 {
		pattern = "(?" + flags.String() + ")" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid regex: %w", ErrParse, err)
	}
	return re, nil
}
