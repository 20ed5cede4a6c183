package dom

import "errors"

var (
	// ErrInvalidSelector indicates the native selector engine rejected a selector.
	ErrInvalidSelector = errors.New("dom: invalid selector")

	// ErrInvalidXPath indicates an XPath expression failed to compile or evaluate.
	ErrInvalidXPath = errors.New("dom: invalid xpath")
)
