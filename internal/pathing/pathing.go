// Package pathing resolves file references written inside suite files.
package pathing

import (
	"path/filepath"
	"strings"
)

// Stdin is the reference that names standard input instead of a file.
const Stdin = "-"

// Normalize trims path-like input from flags and suite fields.
func Normalize(path string) string {
	return strings.TrimSpace(path)
}

// IsAbsoluteLike reports whether the path should be treated as absolute
// regardless of host OS path semantics.
func IsAbsoluteLike(path string) bool {
	path = Normalize(path)
	switch {
	case path == "":
		return false
	case filepath.IsAbs(path):
		return true
	case strings.HasPrefix(path, `\\`), strings.HasPrefix(path, "/"):
		return true
	}
	return len(path) >= 3 && isASCIIAlpha(path[0]) && path[1] == ':' && (path[2] == '\\' || path[2] == '/')
}

// Resolve rebases ref onto the directory of the file that mentions it.
// Empty, stdin and absolute-like references are returned normalized but otherwise unchanged.
func Resolve(ref string, referencingFile string) string {
	ref = Normalize(ref)
	if ref == "" || ref == Stdin || IsAbsoluteLike(ref) {
		return ref
	}

	dir := filepath.Dir(Normalize(referencingFile))
	if dir == "." {
		return filepath.Clean(ref)
	}
	return filepath.Join(dir, ref)
}

func isASCIIAlpha(char byte) bool {
	return (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
}
