// Package demangle turns compiler-mangled symbol names back into
// readable ones. Each name is routed by its prefix: Itanium C++ and
// Rust names go to the external demanglers, Microsoft names to the
// msvc package, and anything unrecognized passes through unchanged.
package demangle

import (
	"strings"

	gnu "github.com/ianlancetaylor/demangle"
	"github.com/skdltmxn/demangle-go/msvc"
)

// Scheme identifies the mangling scheme a symbol name belongs to.
type Scheme int

const (
	// SchemeMicrosoft is the MSVC scheme. It is also the fallback when
	// no other prefix matches, since Microsoft names have no single
	// marker ('?', "??@", ".?A" all occur).
	SchemeMicrosoft Scheme = iota
	// SchemeItanium is the Itanium C++ ABI scheme ("_Z" and friends).
	SchemeItanium
	// SchemeRust covers legacy and v0 Rust mangling ("_R").
	SchemeRust
	// SchemeDLang is the D language scheme ("_D").
	SchemeDLang
)

func (s Scheme) String() string {
	switch s {
	case SchemeItanium:
		return "itanium"
	case SchemeRust:
		return "rust"
	case SchemeDLang:
		return "dlang"
	default:
		return "microsoft"
	}
}

// DLangDemangle, when set, demangles D language symbols. No Go D
// demangler exists to wire in, so names classified as SchemeDLang pass
// through unchanged unless the application provides one.
var DLangDemangle func(name string) (string, bool)

// Classify reports the scheme suggested by the name's prefix. Itanium
// names carry one to four leading underscores followed by 'Z'; Rust
// and D names a single underscore and their scheme letter. Everything
// else is Microsoft territory and is validated by the parser itself.
func Classify(name string) Scheme {
	trimmed := strings.TrimLeft(name, "_")
	underscores := len(name) - len(trimmed)
	if underscores >= 1 && underscores <= 4 && strings.HasPrefix(trimmed, "Z") {
		return SchemeItanium
	}
	if strings.HasPrefix(name, "_R") {
		return SchemeRust
	}
	if strings.HasPrefix(name, "_D") {
		return SchemeDLang
	}
	return SchemeMicrosoft
}

// NonMicrosoftDemangle demangles Itanium, Rust, and D names, reporting
// false when the name belongs to none of those schemes or does not
// parse. canHaveLeadingDot strips one leading '.' before sniffing and
// re-prepends it to the result. With parseParams false, Itanium output
// omits function parameters and return types.
func NonMicrosoftDemangle(mangled string, canHaveLeadingDot, parseParams bool) (string, bool) {
	var prefix string
	if canHaveLeadingDot && strings.HasPrefix(mangled, ".") {
		prefix = "."
		mangled = mangled[1:]
	}

	var out string
	switch Classify(mangled) {
	case SchemeItanium:
		var opts []gnu.Option
		if !parseParams {
			opts = append(opts, gnu.NoParams)
		}
		s, err := gnu.ToString(mangled, opts...)
		if err != nil {
			return "", false
		}
		out = s
	case SchemeRust:
		s, err := gnu.ToString(mangled)
		if err != nil {
			return "", false
		}
		out = s
	case SchemeDLang:
		if DLangDemangle == nil {
			return "", false
		}
		s, ok := DLangDemangle(mangled)
		if !ok {
			return "", false
		}
		out = s
	default:
		return "", false
	}
	return prefix + out, true
}

// MicrosoftDemangle parses a Microsoft-mangled name and renders it with
// the given flags.
func MicrosoftDemangle(name string, flags msvc.OutputFlags) (string, error) {
	sym, err := msvc.NewDemangler().Parse(name)
	if err != nil {
		return "", err
	}
	return msvc.Render(sym, flags), nil
}

// Demangle returns the demangled form of mangled, or the input itself
// when no demangler accepts it. It never fails.
func Demangle(mangled string) string {
	if out, ok := NonMicrosoftDemangle(mangled, true, true); ok {
		return out
	}
	// Mach-O prefixes an extra underscore; retry without it.
	if strings.HasPrefix(mangled, "_") {
		if out, ok := NonMicrosoftDemangle(mangled[1:], false, true); ok {
			return out
		}
	}
	if out, err := MicrosoftDemangle(mangled, msvc.OutputDefault); err == nil {
		return out
	}
	return mangled
}
