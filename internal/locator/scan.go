package locator

import (
	"fmt"
	"strings"
)

type pseudoKind uint8

const (
	pseudoNone pseudoKind = iota
	pseudoHas
	pseudoTextIs
	pseudoHasText
	pseudoVisible
	pseudoContains
	pseudoNthMatch
	pseudoFirstChild
	pseudoLastChild
	pseudoOnlyChild
	pseudoNthChild
	pseudoNthLastChild
	pseudoActive
	pseudoFocus
	pseudoChecked
	pseudoDisabled
	pseudoEnabled
	pseudoNot
	pseudoIs
	pseudoWhere
)

// pseudoTokens is ordered by resolution priority: when a locator holds several
// custom pseudo-classes the first entry present is resolved, the others stay in
// the base or after selector.
var pseudoTokens = []struct {
	kind  pseudoKind
	token string
}{
	{pseudoHas, ":has("},
	{pseudoTextIs, ":text-is("},
	{pseudoHasText, ":has-text("},
	{pseudoVisible, ":visible"},
	{pseudoContains, ":contains("},
	{pseudoNthMatch, ":nth-match("},
	{pseudoFirstChild, ":first-child"},
	{pseudoLastChild, ":last-child"},
	{pseudoOnlyChild, ":only-child"},
	{pseudoNthChild, ":nth-child("},
	{pseudoNthLastChild, ":nth-last-child("},
	{pseudoActive, ":active"},
	{pseudoFocus, ":focus"},
	{pseudoChecked, ":checked"},
	{pseudoDisabled, ":disabled"},
	{pseudoEnabled, ":enabled"},
	{pseudoNot, ":not("},
	{pseudoIs, ":is("},
	{pseudoWhere, ":where("},
}

func (k pseudoKind) String() string {
	for _, t := range pseudoTokens {
		if t.kind == k {
			return strings.TrimSuffix(t.token, "(")
		}
	}
	return "none"
}

// parsedPseudo is a locator split around its highest priority custom pseudo-class.
type parsedPseudo struct {
	before   string
	kind     pseudoKind
	argument string
	after    string
}

// scanner walks a locator keeping track of quoted strings and nesting.
type scanner struct {
	s       string
	quote   byte
	depth   int
	bracket int
}

// step consumes s[i] and reports whether it is outside quotes, parentheses and
// attribute brackets. Escaped characters are never top level.
func (sc *scanner) step(i int) (top bool) {
	c := sc.s[i]
	escaped := i > 0 && sc.s[i-1] == '\\'

	if sc.quote != 0 {
		if c == sc.quote && !escaped {
			sc.quote = 0
		}
		return false
	}
	if escaped {
		return false
	}

	switch c {
	case '"', '\'':
		sc.quote = c
		return false
	case '(':
		sc.depth++
		return false
	case ')':
		sc.depth--
		return false
	case '[':
		sc.bracket++
		return false
	case ']':
		sc.bracket--
		return false
	}
	return sc.depth == 0 && sc.bracket == 0
}

// findPseudo locates the custom pseudo-class to resolve first. Only occurrences
// outside quotes and at nesting depth zero count.
func findPseudo(s string) (parsedPseudo, bool, error) {
	first := make(map[pseudoKind]int)

	sc := scanner{s: s}
	for i := 0; i < len(s); i++ {
		if !sc.step(i) || s[i] != ':' {
			continue
		}
		for _, t := range pseudoTokens {
			if _, seen := first[t.kind]; seen {
				continue
			}
			if hasToken(s[i:], t.token) {
				first[t.kind] = i
			}
		}
	}

	for _, t := range pseudoTokens {
		start, ok := first[t.kind]
		if !ok {
			continue
		}

		p := parsedPseudo{before: s[:start], kind: t.kind}
		end := start + len(t.token)
		if !strings.HasSuffix(t.token, "(") {
			p.after = s[end:]
			return p, true, nil
		}

		open := end - 1
		closing := closingParen(s, open, t.kind != pseudoHas)
		if closing < 0 {
			return parsedPseudo{}, true, fmt.Errorf("%w: missing closing parenthesis for %s in %q", ErrParse, t.kind, s)
		}
		p.argument = s[open+1 : closing]
		p.after = s[closing+1:]
		return p, true, nil
	}
	return parsedPseudo{}, false, nil
}

// smartOnlyTokens are pseudo-classes the native engine must not evaluate: it
// either rejects them or, for :contains, matches case-insensitively.
var smartOnlyTokens = []string{":contains(", ":has-text(", ":text-is(", ":visible", ":nth-match("}

// needsSmart reports whether s uses a smart-only pseudo-class outside quotes,
// at any nesting depth.
func needsSmart(s string) bool {
	sc := scanner{s: s}
	for i := 0; i < len(s); i++ {
		sc.step(i)
		if sc.quote != 0 || s[i] != ':' || i > 0 && s[i-1] == '\\' {
			continue
		}
		for _, token := range smartOnlyTokens {
			if hasToken(s[i:], token) {
				return true
			}
		}
	}
	return false
}

// hasToken reports whether s starts with token. Tokens without an argument
// must end at an identifier boundary, so ":focus-visible" is not ":focus".
func hasToken(s, token string) bool {
	if !strings.HasPrefix(s, token) {
		return false
	}
	if strings.HasSuffix(token, "(") || len(s) == len(token) {
		return true
	}
	return !isIdent(s[len(token)])
}

func isIdent(c byte) bool {
	return c == '-' || c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

// closingParen returns the index of the parenthesis closing the one at open,
// or -1. When quoteAware is false parentheses inside quotes are counted too.
func closingParen(s string, open int, quoteAware bool) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		if quoteAware {
			escaped := i > 0 && s[i-1] == '\\'
			if quote != 0 {
				if c == quote && !escaped {
					quote = 0
				}
				continue
			}
			if (c == '"' || c == '\'') && !escaped {
				quote = c
				continue
			}
		}
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// lastHop returns the index of the last ">>" outside quotes and parentheses, or -1.
func lastHop(s string) int {
	last := -1
	depth := 0
	var quote byte
	for i := 0; i < len(s)-1; i++ {
		c := s[i]
		escaped := i > 0 && s[i-1] == '\\'

		if (c == '"' || c == '\'') && !escaped {
			switch quote {
			case 0:
				quote = c
			case c:
				quote = 0
			}
		}
		if quote != 0 {
			continue
		}

		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case '>':
			if depth == 0 && s[i+1] == '>' {
				last = i
			}
		}
	}
	return last
}

// splitTopLevel splits s at commas outside quotes and nesting.
func splitTopLevel(s string) []string {
	var parts []string
	sc := scanner{s: s}
	start := 0
	for i := 0; i < len(s); i++ {
		if sc.step(i) && s[i] == ',' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// endsWithCombinator reports a selector missing its right-hand operand.
func endsWithCombinator(s string) bool {
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case ' ', '\t', '\n', '\r', '\f', '>', '+', '~':
		return true
	}
	return false
}

func isCombinator(c byte) bool {
	return c == '>' || c == '+' || c == '~'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// splitCompound splits s into its leading compound selector, the combinator
// that follows it and the remainder. comb is 0 when s is a single compound,
// ' ' for the descendant combinator.
func splitCompound(s string) (head string, comb byte, rest string) {
	sc := scanner{s: s}
	i := 0
	for ; i < len(s); i++ {
		top := sc.step(i)
		if top && (isSpace(s[i]) || isCombinator(s[i])) {
			break
		}
	}
	head = s[:i]

	for i < len(s) && isSpace(s[i]) {
		comb = ' '
		i++
	}
	if i < len(s) && isCombinator(s[i]) {
		comb = s[i]
		i++
	}
	rest = strings.TrimSpace(s[i:])
	if rest == "" {
		comb = 0
	}
	return head, comb, rest
}

// unquote returns the content of a single or double quoted string with
// backslash escapes removed.
func unquote(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if q != '"' && q != '\'' || s[len(s)-1] != q {
		return "", false
	}

	body := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			i++
			b.WriteByte(body[i])
			continue
		}
		if c == q {
			return "", false
		}
		b.WriteByte(c)
	}
	return b.String(), true
}

// cssString quotes v for use inside an attribute selector.
func cssString(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(v) + `"`
}
