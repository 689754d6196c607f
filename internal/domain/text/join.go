// Package text holds small string utilities shared by the HTTP layer.
package text

import "errors"

// ErrTypeMismatch is returned by Join when either argument is not a string.
var ErrTypeMismatch = errors.New("type of parameters do not match required type: both arguments must be strings")

// Join concatenates a and b with a single space between them.
//
// Arguments arrive as arbitrary values (decoded JSON, form data) so the
// string check happens at runtime. Only values whose dynamic type is exactly
// string are accepted; named string types are rejected.
func Join(a, b any) (string, error) {
	s1, ok1 := a.(string)
	s2, ok2 := b.(string)
	if !ok1 || !ok2 {
		return "", ErrTypeMismatch
	}
	return s1 + " " + s2, nil
}
