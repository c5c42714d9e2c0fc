// Package sview provides a bounds-checked cursor over mangled symbol text.
package sview

import "strings"

// View is a read cursor over an immutable string. The zero value is an
// empty view. View is a plain value; copying one yields an independent
// cursor over the same text, which is how callers perform lookahead
// without consuming input.
type View struct {
	s   string
	off int
}

// New creates a View positioned at the start of s.
func New(s string) View {
	return View{s: s}
}

// Empty reports whether the cursor has reached the end of the text.
func (v *View) Empty() bool {
	return v.off >= len(v.s)
}

// Len returns the number of unread bytes.
func (v *View) Len() int {
	if v.off >= len(v.s) {
		return 0
	}
	return len(v.s) - v.off
}

// Offset returns the current read position within the full text.
func (v *View) Offset() int {
	return v.off
}

// Full returns the entire text the view was created with.
func (v *View) Full() string {
	return v.s
}

// Rest returns the unread remainder of the text.
func (v *View) Rest() string {
	if v.off >= len(v.s) {
		return ""
	}
	return v.s[v.off:]
}

// Front returns the next byte without advancing, or 0 at end of text.
func (v *View) Front() byte {
	if v.off >= len(v.s) {
		return 0
	}
	return v.s[v.off]
}

// PopFront consumes and returns the next byte, or 0 at end of text.
func (v *View) PopFront() byte {
	if v.off >= len(v.s) {
		return 0
	}
	c := v.s[v.off]
	v.off++
	return c
}

// ConsumeByte consumes c if it is the next byte and reports whether it did.
func (v *View) ConsumeByte(c byte) bool {
	if v.off >= len(v.s) || v.s[v.off] != c {
		return false
	}
	v.off++
	return true
}

// ConsumePrefix consumes p if the unread text starts with it and reports
// whether it did.
func (v *View) ConsumePrefix(p string) bool {
	if !strings.HasPrefix(v.Rest(), p) {
		return false
	}
	v.off += len(p)
	return true
}

// StartsWith reports whether the unread text starts with p.
func (v *View) StartsWith(p string) bool {
	return strings.HasPrefix(v.Rest(), p)
}

// StartsWithByte reports whether the next byte is c.
func (v *View) StartsWithByte(c byte) bool {
	return v.off < len(v.s) && v.s[v.off] == c
}

// StartsWithDigit reports whether the next byte is an ASCII decimal digit.
func (v *View) StartsWithDigit() bool {
	if v.off >= len(v.s) {
		return false
	}
	c := v.s[v.off]
	return c >= '0' && c <= '9'
}

// Advance moves the cursor forward by n bytes, clamping at end of text.
func (v *View) Advance(n int) {
	if n < 0 {
		return
	}
	v.off += n
	if v.off > len(v.s) {
		v.off = len(v.s)
	}
}

// IndexByte returns the index of c within the unread text, or -1.
func (v *View) IndexByte(c byte) int {
	return strings.IndexByte(v.Rest(), c)
}

// Prefix returns up to n bytes of the unread text without advancing.
func (v *View) Prefix(n int) string {
	rest := v.Rest()
	if n > len(rest) {
		n = len(rest)
	}
	return rest[:n]
}
