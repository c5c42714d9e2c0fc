// Package msvc demangles symbol names produced by the Microsoft Visual
// C++ compiler. It parses a mangled name into a typed AST and renders it
// back to the undecorated form the undname tool would print.
package msvc

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrInvalidMangledName indicates the input does not follow the
	// Microsoft mangling grammar.
	ErrInvalidMangledName = errors.New("msvc: invalid mangled name")

	// ErrUnexpectedEnd indicates the input ended in the middle of a
	// production.
	ErrUnexpectedEnd = errors.New("msvc: unexpected end of mangled name")

	// ErrBackrefOutOfRange indicates a backreference digit that points
	// past the entries memorized so far.
	ErrBackrefOutOfRange = errors.New("msvc: backreference out of range")

	// ErrUnsupported indicates a construct the grammar reserves but no
	// shipping compiler emits, such as `typeof`.
	ErrUnsupported = errors.New("msvc: unsupported mangled construct")
)

// ParseError provides detailed information about demangling failures.
type ParseError struct {
	Offset int   // Byte offset within the mangled name
	Err    error // Underlying error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("msvc: parse error at offset %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
