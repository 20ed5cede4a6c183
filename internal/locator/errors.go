package locator

import "errors"

var (
	// ErrParse indicates a malformed locator, such as an unbalanced pseudo-class
	// argument or an argument of the wrong shape.
	ErrParse = errors.New("locator: parse error")

	// ErrInvalidSelector indicates the native selector engine rejected a selector fragment.
	ErrInvalidSelector = errors.New("locator: invalid selector")

	// ErrUnsupported indicates a locator form no engine understands.
	ErrUnsupported = errors.New("locator: unsupported locator")

	// ErrInvalidXPath indicates an XPath expression failed to compile or evaluate.
	ErrInvalidXPath = errors.New("locator: invalid XPath")

	// ErrEvaluation indicates a failure raised by the host tree during evaluation.
	ErrEvaluation = errors.New("locator: evaluation failed")

	// ErrNoMatch is returned by First when a locator matches nothing.
	ErrNoMatch = errors.New("locator: no matching element")
)
