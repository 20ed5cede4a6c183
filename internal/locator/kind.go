package locator

import (
	"fmt"
	"strings"
)

// Kind selects the engine a locator is resolved with.
type Kind uint8

const (
	// KindAuto classifies the locator before resolving it.
	KindAuto Kind = iota
	KindSmart
	KindCSS
	KindXPath
	KindPlaywright
	KindRegex
)

var kindNames = map[Kind]string{
	KindAuto:       "auto",
	KindSmart:      "smart",
	KindCSS:        "css",
	KindXPath:      "xpath",
	KindPlaywright: "playwright",
	KindRegex:      "regex",
}

// Kinds lists every kind name accepted by ParseKind.
func Kinds() []string {
	return []string{"auto", "smart", "css", "xpath", "playwright", "regex"}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind converts a kind name to a Kind. The empty string is KindAuto.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KindAuto, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindAuto, fmt.Errorf("%w: unknown kind %q (expected one of %s)", ErrUnsupported, s, strings.Join(Kinds(), ", "))
}

var playwrightMethods = []string{"getByRole(", "getByText(", "getByTestId("}

// Classify infers the kind of a locator:
// a leading "/" or "(" is XPath, a getBy call is Playwright, anything else is smart CSS.
func Classify(locator string) Kind {
	trimmed := strings.TrimSpace(locator)
	if strings.HasPrefix(trimmed, "/") || strings.HasPrefix(trimmed, "(") {
		return KindXPath
	}
	for _, m := range playwrightMethods {
		if strings.Contains(trimmed, m) {
			return KindPlaywright
		}
	}
	return KindSmart
}
