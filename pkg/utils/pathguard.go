package utils

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrPathTraversal = errors.New("path traversal not allowed")
	ErrInvalidName   = errors.New("invalid name")
)

// SafeJoin joins elems onto base and returns the cleaned result. It fails
// with ErrPathTraversal when the result escapes base.
func SafeJoin(base string, elems ...string) (string, error) {
	base = filepath.Clean(base)
	resolved := filepath.Join(append([]string{base}, elems...)...)
	if resolved != base && !strings.HasPrefix(resolved, base+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return resolved, nil
}

// PlainName rejects names that could address anything outside a single
// directory entry.
func PlainName(name string) error {
	if name == "" || name == "." || strings.Contains(name, "/") || strings.Contains(name, `\`) || strings.Contains(name, "..") {
		return ErrInvalidName
	}
	return nil
}

// CountLines counts lines the way an editor does: a trailing newline starts
// an extra (empty) line.
func CountLines(content string) int {
	return strings.Count(content, "\n") + 1
}
