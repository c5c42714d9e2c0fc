package msvc

import (
	"math"
	"strings"

	"github.com/skdltmxn/demangle-go/internal/sview"
)

// Demangler is one demangling session: a cursor over the mangled text,
// the arena owning the produced nodes, and the backreference tables.
// Each call to Parse or ParseTagUniqueName starts a fresh session. A
// Demangler must not be used from multiple goroutines at once; separate
// instances are fully independent.
type Demangler struct {
	arena    Arena
	backrefs backrefContext
	view     sview.View
}

// NewDemangler returns a ready session.
func NewDemangler() *Demangler {
	return &Demangler{}
}

func (d *Demangler) reset(mangled string) {
	d.arena.Reset()
	d.backrefs = backrefContext{}
	d.view = sview.New(mangled)
}

// fail wraps a sentinel with the current cursor position.
func (d *Demangler) fail(sentinel error) error {
	return &ParseError{Offset: d.view.Offset(), Err: sentinel}
}

// Parse demangles one symbol into its AST. Trailing characters after a
// complete symbol are not an error; Remaining reports them.
func (d *Demangler) Parse(mangled string) (SymbolNode, error) {
	d.reset(mangled)
	return d.parse()
}

// ParseTagUniqueName parses the ".?A..." tag unique names stored in RTTI
// data, e.g. ".?AVFoo@@" for class Foo.
func (d *Demangler) ParseTagUniqueName(mangled string) (*TagTypeNode, error) {
	d.reset(mangled)
	if !d.view.ConsumePrefix(".?A") {
		return nil, d.fail(ErrInvalidMangledName)
	}
	return d.demangleClassType()
}

// Remaining returns the unconsumed tail of the input.
func (d *Demangler) Remaining() string { return d.view.Rest() }

// parse dispatches on the symbol's leading characters. It is also the
// entry point for nested symbols (locally scoped names, template
// parameters that reference symbols), which are full mangled names
// embedded in the outer one.
func (d *Demangler) parse() (SymbolNode, error) {
	if d.view.StartsWith("??@") {
		return d.demangleMD5Name()
	}

	// Typeinfo names are strings stored in RTTI data, mangled as a
	// bare type with a ".?A" prefix.
	if d.view.StartsWithByte('.') {
		return d.demangleTypeinfoName()
	}

	if !d.view.ConsumeByte('?') {
		return nil, d.fail(ErrInvalidMangledName)
	}
	return d.demangleDeclarator()
}

// demangleMD5Name handles "??@<md5>@": names too long to mangle are
// replaced by a hash that cannot be demangled, so the node keeps the
// text as is.
func (d *Demangler) demangleMD5Name() (SymbolNode, error) {
	start := d.view.Offset()

	d.view.Advance(len("??@"))
	end := d.view.IndexByte('@')
	if end < 0 {
		return nil, d.fail(ErrInvalidMangledName)
	}
	d.view.Advance(end + 1)

	// A complete object locator for an MD5-named object carries its
	// usual "??_R4" marker as a "??_R4@" suffix instead; older
	// catchable type records append "8". Both belong to the name.
	if !d.view.ConsumePrefix("??_R4@") {
		d.view.ConsumeByte('8')
	}

	text := d.view.Full()[start:d.view.Offset()]
	name := d.synthesizeQualifiedName(d.arena.Intern(text))
	return d.arena.MD5Symbol(name), nil
}

func (d *Demangler) demangleTypeinfoName() (SymbolNode, error) {
	d.view.Advance(1) // '.'
	ty, err := d.demangleType(qmmResult)
	if err != nil {
		return nil, err
	}
	if !d.view.Empty() {
		return nil, d.fail(ErrInvalidMangledName)
	}
	return d.synthesizeVariable(ty, "`RTTI Type Descriptor Name'"), nil
}

// demangleDeclarator parses everything after the leading '?': either a
// special intrinsic or a qualified name followed by its encoding.
func (d *Demangler) demangleDeclarator() (SymbolNode, error) {
	sym, err := d.demangleSpecialIntrinsic()
	if err != nil {
		return nil, err
	}
	if sym != nil {
		return sym, nil
	}

	qn, err := d.demangleFullyQualifiedSymbolName()
	if err != nil {
		return nil, err
	}
	sym, err = d.demangleEncodedSymbol(qn)
	if err != nil {
		return nil, err
	}
	sym.setSymName(qn)

	// "operator T" must have recovered its target type from the
	// function signature by now.
	if conv, ok := qn.UnqualifiedIdentifier().(*ConversionOperatorIdentifierNode); ok && conv.TargetType == nil {
		return nil, d.fail(ErrInvalidMangledName)
	}
	return sym, nil
}

func (d *Demangler) demangleEncodedSymbol(qn *QualifiedNameNode) (SymbolNode, error) {
	if d.view.Empty() {
		return nil, d.fail(ErrUnexpectedEnd)
	}

	// Variables announce a storage class digit first.
	switch d.view.Front() {
	case '0', '1', '2', '3', '4':
		return d.demangleVariableEncoding(d.demangleVariableStorageClass())
	case '8':
		// A name-only symbol that carries no type encoding.
		d.view.Advance(1)
		return d.arena.VariableSymbol(StorageNone, nil), nil
	}

	fsn, err := d.demangleFunctionEncoding()
	if err != nil {
		return nil, err
	}

	// "operator T" spells its target type in the return type slot. Move it
	// into the identifier so the rendered signature does not repeat it.
	if conv, ok := qn.UnqualifiedIdentifier().(*ConversionOperatorIdentifierNode); ok {
		sig := fsn.Signature.base()
		conv.TargetType = sig.ReturnType
		sig.ReturnType = nil
	}
	return fsn, nil
}

func (d *Demangler) demangleVariableStorageClass() StorageClass {
	switch d.view.PopFront() {
	case '0':
		return StoragePrivateStatic
	case '1':
		return StorageProtectedStatic
	case '2':
		return StoragePublicStatic
	case '3':
		return StorageGlobal
	default: // '4', guaranteed by the caller
		return StorageFunctionLocalStatic
	}
}

// demangleVariableEncoding parses a variable's type and the trailing
// qualifier grammar, which differs for pointers.
func (d *Demangler) demangleVariableEncoding(sc StorageClass) (*VariableSymbolNode, error) {
	ty, err := d.demangleType(qmmDrop)
	if err != nil {
		return nil, err
	}
	vsn := d.arena.VariableSymbol(sc, ty)

	switch ty := ty.(type) {
	case *PointerTypeNode:
		ty.Quals |= d.demanglePointerExtQualifiers()

		extraChildQuals, _, err := d.demangleQualifiers()
		if err != nil {
			return nil, err
		}

		if ty.ClassParent != nil {
			// Pointers to data members repeat the class name;
			// nothing in the output uses the second copy.
			if _, err := d.demangleFullyQualifiedTypeName(); err != nil {
				return nil, err
			}
		}
		ty.Pointee.addQuals(extraChildQuals)

	default:
		quals, _, err := d.demangleQualifiers()
		if err != nil {
			return nil, err
		}
		ty.addQuals(quals)
	}

	return vsn, nil
}

func (d *Demangler) demangleFunctionEncoding() (*FunctionSymbolNode, error) {
	var extraFlags FuncClass
	if d.view.ConsumePrefix("$$J0") {
		extraFlags = FCExternC
	}
	if d.view.Empty() {
		return nil, d.fail(ErrUnexpectedEnd)
	}

	fc, err := d.demangleFunctionClass()
	if err != nil {
		return nil, err
	}
	fc |= extraFlags

	// Thunk displacements are 32-bit fields in the object layout, and
	// negative ones mangle as two's complement hex ("PPPPPPPM@" is -4),
	// so each value is narrowed before it is kept. The static offset is
	// unsigned, the others signed.
	var thunk *ThunkSignatureNode
	if fc&FCStaticThisAdjust != 0 {
		thunk = d.arena.ThunkSignature()
		if thunk.ThisAdjust.StaticOffset, err = d.demangleOffset32(false); err != nil {
			return nil, err
		}
	} else if fc&FCVirtualThisAdjust != 0 {
		thunk = d.arena.ThunkSignature()
		if fc&FCVirtualThisAdjustEx != 0 {
			if thunk.ThisAdjust.VBPtrOffset, err = d.demangleOffset32(true); err != nil {
				return nil, err
			}
			if thunk.ThisAdjust.VBOffsetOffset, err = d.demangleOffset32(true); err != nil {
				return nil, err
			}
		}
		if thunk.ThisAdjust.VtordispOffset, err = d.demangleOffset32(true); err != nil {
			return nil, err
		}
		if thunk.ThisAdjust.StaticOffset, err = d.demangleOffset32(false); err != nil {
			return nil, err
		}
	}

	var sig FunctionSignature
	if fc&FCNoParameterList != 0 {
		// An extern "C" function whose signature was never mangled;
		// this shows up when a local symbol inside one needs a
		// scope name.
		sig = d.arena.FunctionSignature()
	} else {
		hasThisQuals := fc&(FCGlobal|FCStatic) == 0
		fsn, err := d.demangleFunctionType(hasThisQuals)
		if err != nil {
			return nil, err
		}
		sig = fsn
	}

	if thunk != nil {
		thunk.FunctionSignatureNode = *sig.base()
		sig = thunk
	}
	sig.base().FunctionClass = fc

	return d.arena.FunctionSymbol(sig), nil
}

// demangleFunctionClass decodes the access/dispatch letter. The '$'
// forms are vtordisp thunks, with 'R' marking the extended variant.
func (d *Demangler) demangleFunctionClass() (FuncClass, error) {
	switch d.view.PopFront() {
	case '9':
		return FCExternC | FCNoParameterList, nil
	case 'A':
		return FCPrivate, nil
	case 'B':
		return FCPrivate | FCFar, nil
	case 'C':
		return FCPrivate | FCStatic, nil
	case 'D':
		return FCPrivate | FCStatic | FCFar, nil
	case 'E':
		return FCPrivate | FCVirtual, nil
	case 'F':
		return FCPrivate | FCVirtual | FCFar, nil
	case 'G':
		return FCPrivate | FCStaticThisAdjust, nil
	case 'H':
		return FCPrivate | FCStaticThisAdjust | FCFar, nil
	case 'I':
		return FCProtected, nil
	case 'J':
		return FCProtected | FCFar, nil
	case 'K':
		return FCProtected | FCStatic, nil
	case 'L':
		return FCProtected | FCStatic | FCFar, nil
	case 'M':
		return FCProtected | FCVirtual, nil
	case 'N':
		return FCProtected | FCVirtual | FCFar, nil
	case 'O':
		return FCProtected | FCVirtual | FCStaticThisAdjust, nil
	case 'P':
		return FCProtected | FCVirtual | FCStaticThisAdjust | FCFar, nil
	case 'Q':
		return FCPublic, nil
	case 'R':
		return FCPublic | FCFar, nil
	case 'S':
		return FCPublic | FCStatic, nil
	case 'T':
		return FCPublic | FCStatic | FCFar, nil
	case 'U':
		return FCPublic | FCVirtual, nil
	case 'V':
		return FCPublic | FCVirtual | FCFar, nil
	case 'W':
		return FCPublic | FCVirtual | FCStaticThisAdjust, nil
	case 'X':
		return FCPublic | FCVirtual | FCStaticThisAdjust | FCFar, nil
	case 'Y':
		return FCGlobal, nil
	case 'Z':
		return FCGlobal | FCFar, nil
	case '$':
		vflag := FCVirtualThisAdjust
		if d.view.ConsumeByte('R') {
			vflag |= FCVirtualThisAdjustEx
		}
		if d.view.Empty() {
			return 0, d.fail(ErrUnexpectedEnd)
		}
		switch d.view.PopFront() {
		case '0':
			return FCPrivate | FCVirtual | vflag, nil
		case '1':
			return FCPrivate | FCVirtual | vflag | FCFar, nil
		case '2':
			return FCProtected | FCVirtual | vflag, nil
		case '3':
			return FCProtected | FCVirtual | vflag | FCFar, nil
		case '4':
			return FCPublic | FCVirtual | vflag, nil
		case '5':
			return FCPublic | FCVirtual | vflag | FCFar, nil
		}
	}
	return 0, d.fail(ErrInvalidMangledName)
}

// demangleNumber decodes the number scheme: an optional '?' negates; a
// single digit d stands for d+1; anything else is hex rebased onto
// 'A'-'P' and terminated by '@', which covers zero and values past ten.
func (d *Demangler) demangleNumber() (uint64, bool, error) {
	isNegative := d.view.ConsumeByte('?')

	if d.view.StartsWithDigit() {
		return uint64(d.view.PopFront()-'0') + 1, isNegative, nil
	}

	var value uint64
	for !d.view.Empty() {
		c := d.view.Front()
		if c == '@' {
			d.view.Advance(1)
			return value, isNegative, nil
		}
		if c < 'A' || c > 'P' {
			break
		}
		value = value<<4 + uint64(c-'A')
		d.view.Advance(1)
	}
	return 0, false, d.fail(ErrInvalidMangledName)
}

func (d *Demangler) demangleUnsigned() (uint64, error) {
	value, isNegative, err := d.demangleNumber()
	if err != nil {
		return 0, err
	}
	if isNegative {
		return 0, d.fail(ErrInvalidMangledName)
	}
	return value, nil
}

func (d *Demangler) demangleSigned() (int64, error) {
	value, isNegative, err := d.demangleNumber()
	if err != nil {
		return 0, err
	}
	if value > math.MaxInt64 {
		return 0, d.fail(ErrInvalidMangledName)
	}
	if isNegative {
		return -int64(value), nil
	}
	return int64(value), nil
}

// demangleOffset32 reads a signed number and narrows it to the 32-bit
// field it came from.
func (d *Demangler) demangleOffset32(signed bool) (int64, error) {
	value, err := d.demangleSigned()
	if err != nil {
		return 0, err
	}
	if signed {
		return int64(int32(value)), nil
	}
	return int64(uint32(value)), nil
}

func (d *Demangler) synthesizeQualifiedName(name string) *QualifiedNameNode {
	return d.arena.SynthesizedQualifiedName(d.arena.NamedIdentifier(name))
}

func (d *Demangler) synthesizeVariable(ty TypeNode, name string) *VariableSymbolNode {
	vsn := d.arena.VariableSymbol(StorageNone, ty)
	vsn.Name = d.synthesizeQualifiedName(name)
	return vsn
}

// IsMangled reports whether name looks like a Microsoft-mangled symbol
// or tag unique name. It is a cheap prefix test, not a validation.
func IsMangled(name string) bool {
	return strings.HasPrefix(name, "?") || strings.HasPrefix(name, ".?A")
}

// Demangle parses name and renders it the way undname would.
func Demangle(name string) (string, error) {
	sym, err := NewDemangler().Parse(name)
	if err != nil {
		return "", err
	}
	return render(sym), nil
}

// Filter demangles name, returning the input unchanged when it does not
// parse. Use it for best-effort display of symbol listings.
func Filter(name string) string {
	out, err := Demangle(name)
	if err != nil {
		return name
	}
	return out
}
