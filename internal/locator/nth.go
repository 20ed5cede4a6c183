package locator

import (
	"fmt"
	"strconv"
	"strings"
)

// nth is a parsed An+B expression.
type nth struct {
	a, b int
}

// parseNth parses the CSS An+B micro-syntax: odd, even, an integer, or
// an optional coefficient followed by n and an optional signed offset.
func parseNth(s string) (nth, error) {
	expr := strings.ToLower(strings.Join(strings.Fields(s), ""))
	switch expr {
	case "":
		return nth{}, fmt.Errorf("%w: empty An+B expression", ErrParse)
	case "odd":
		return nth{a: 2, b: 1}, nil
	case "even":
		return nth{a: 2, b: 0}, nil
	}

	idx := strings.IndexByte(expr, 'n')
	if idx < 0 {
		b, err := strconv.Atoi(expr)
		if err != nil {
			return nth{}, fmt.Errorf("%w: invalid An+B expression %q", ErrParse, s)
		}
		return nth{b: b}, nil
	}

	var n nth
	switch coef := expr[:idx]; coef {
	case "", "+":
		n.a = 1
	case "-":
		n.a = -1
	default:
		a, err := strconv.Atoi(coef)
		if err != nil {
			return nth{}, fmt.Errorf("%w: invalid An+B coefficient in %q", ErrParse, s)
		}
		n.a = a
	}

	offset := expr[idx+1:]
	if offset == "" {
		return n, nil
	}
	if offset[0] != '+' && offset[0] != '-' {
		return nth{}, fmt.Errorf("%w: invalid An+B offset in %q", ErrParse, s)
	}
	b, err := strconv.Atoi(offset)
	if err != nil || len(offset) < 2 || offset[1] == '+' || offset[1] == '-' {
		return nth{}, fmt.Errorf("%w: invalid An+B offset in %q", ErrParse, s)
	}
	n.b = b
	return n, nil
}

// matches reports whether the 1-based position pos is an+b for some n >= 0.
func (n nth) matches(pos int) bool {
	if n.a == 0 {
		return pos == n.b
	}
	diff := pos - n.b
	if diff%n.a != 0 {
		return false
	}
	return diff/n.a >= 0
}

func (n nth) String() string {
	return fmt.Sprintf("%dn%+d", n.a, n.b)
}
