package msvc

import (
	"fmt"
	"io"
)

// backrefMax is the table capacity fixed by the format: a backreference
// is a single digit 0-9.
const backrefMax = 10

// backrefContext holds the two memoization tables threaded through a
// demangling session. Name pieces and function parameter types are
// memorized in encounter order and referenced later by digit.
//
// Function parameters are shared across nested function types: in
// "void f(int, void (*)(int))" the inner int can be (and is) encoded as
// a backreference to the outer one. Template instantiations instead get
// a private context for the span of their argument list.
type backrefContext struct {
	params     [backrefMax]TypeNode
	paramCount int

	names     [backrefMax]*NamedIdentifierNode
	nameCount int
}

// memorizeParam records a function parameter type. Beyond capacity the
// candidate is silently dropped; the format simply stops compressing.
func (b *backrefContext) memorizeParam(t TypeNode) {
	if b.paramCount >= backrefMax {
		return
	}
	b.params[b.paramCount] = t
	b.paramCount++
}

func (b *backrefContext) lookupParam(i int) (TypeNode, bool) {
	if i >= b.paramCount {
		return nil, false
	}
	return b.params[i], true
}

func (b *backrefContext) lookupName(i int) (*NamedIdentifierNode, bool) {
	if i >= b.nameCount {
		return nil, false
	}
	return b.names[i], true
}

// memorizeString records a name piece for later backreference. Exact
// duplicates collapse to the existing entry and over-capacity candidates
// are silently dropped, mirroring how the compiler assigns indexes.
func (d *Demangler) memorizeString(s string) {
	if d.backrefs.nameCount >= backrefMax {
		return
	}
	for i := 0; i < d.backrefs.nameCount; i++ {
		if d.backrefs.names[i].Name == s {
			return
		}
	}
	d.backrefs.names[d.backrefs.nameCount] = d.arena.NamedIdentifier(d.arena.Intern(s))
	d.backrefs.nameCount++
}

// memorizeIdentifier renders an identifier (typically a template
// instantiation) and memorizes the text form.
func (d *Demangler) memorizeIdentifier(id IdentifierNode) {
	d.memorizeString(render(id))
}

// DumpBackReferences writes both memoization tables left over from the
// last parse.
func (d *Demangler) DumpBackReferences(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%d function parameter backreferences\n", d.backrefs.paramCount); err != nil {
		return err
	}
	for i := 0; i < d.backrefs.paramCount; i++ {
		if _, err := fmt.Fprintf(w, "  [%d] - %s\n", i, render(d.backrefs.params[i])); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%d name backreferences\n", d.backrefs.nameCount); err != nil {
		return err
	}
	for i := 0; i < d.backrefs.nameCount; i++ {
		if _, err := fmt.Fprintf(w, "  [%d] - %s\n", i, d.backrefs.names[i].Name); err != nil {
			return err
		}
	}
	return nil
}
