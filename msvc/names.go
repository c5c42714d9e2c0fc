package msvc

import "github.com/skdltmxn/demangle-go/internal/sview"

// nameBackrefBehavior selects which name pieces get memorized while a
// qualified name parses.
type nameBackrefBehavior int

const (
	nbbNone     nameBackrefBehavior = 0
	nbbTemplate nameBackrefBehavior = 1 << 0
	nbbSimple   nameBackrefBehavior = 1 << 1
)

// funcIDCodeGroup picks the operator table: "?x", "?_x" or "?__x".
type funcIDCodeGroup int

const (
	funcIDBasic funcIDCodeGroup = iota
	funcIDUnder
	funcIDDoubleUnder
)

func (d *Demangler) demangleFullyQualifiedTypeName() (*QualifiedNameNode, error) {
	ident, err := d.demangleUnqualifiedTypeName(true)
	if err != nil {
		return nil, err
	}
	return d.demangleNameScopeChain(ident)
}

// demangleFullyQualifiedSymbolName parses the name part of a symbol.
// Structors need their enclosing class patched in afterwards, since
// "?0" carries no name of its own.
func (d *Demangler) demangleFullyQualifiedSymbolName() (*QualifiedNameNode, error) {
	ident, err := d.demangleUnqualifiedSymbolName(nbbSimple)
	if err != nil {
		return nil, err
	}
	qn, err := d.demangleNameScopeChain(ident)
	if err != nil {
		return nil, err
	}

	if structor, ok := ident.(*StructorIdentifierNode); ok {
		components := qn.Components.Nodes
		if len(components) < 2 {
			return nil, d.fail(ErrInvalidMangledName)
		}
		class, ok := components[len(components)-2].(IdentifierNode)
		if !ok {
			return nil, d.fail(ErrInvalidMangledName)
		}
		structor.Class = class
	}
	return qn, nil
}

// demangleUnqualifiedTypeName parses the innermost piece of a type name.
// Even here a backreference is possible: qualified names nest inside
// template arguments.
func (d *Demangler) demangleUnqualifiedTypeName(memorize bool) (IdentifierNode, error) {
	if d.view.StartsWithDigit() {
		return d.demangleBackRefName()
	}
	if d.view.StartsWith("?$") {
		return d.demangleTemplateInstantiationName(nbbTemplate)
	}
	return d.demangleSimpleName(memorize)
}

func (d *Demangler) demangleUnqualifiedSymbolName(nbb nameBackrefBehavior) (IdentifierNode, error) {
	if d.view.StartsWithDigit() {
		return d.demangleBackRefName()
	}
	if d.view.StartsWith("?$") {
		return d.demangleTemplateInstantiationName(nbb)
	}
	if d.view.StartsWithByte('?') {
		return d.demangleFunctionIdentifierCode()
	}
	return d.demangleSimpleName(nbb&nbbSimple != 0)
}

// demangleNameScopeChain parses the enclosing scopes of an already
// parsed unqualified name, up to the terminating '@'.
func (d *Demangler) demangleNameScopeChain(unqualified IdentifierNode) (*QualifiedNameNode, error) {
	components := []Node{unqualified}
	for !d.view.ConsumeByte('@') {
		if d.view.Empty() {
			return nil, d.fail(ErrUnexpectedEnd)
		}
		piece, err := d.demangleNameScopePiece()
		if err != nil {
			return nil, err
		}
		components = append(components, piece)
	}

	// Scopes parse innermost first but print outermost first.
	for i, j := 0, len(components)-1; i < j; i, j = i+1, j-1 {
		components[i], components[j] = components[j], components[i]
	}
	return d.arena.QualifiedName(d.arena.NodeArray(components)), nil
}

func (d *Demangler) demangleNameScopePiece() (IdentifierNode, error) {
	if d.view.StartsWithDigit() {
		return d.demangleBackRefName()
	}
	if d.view.StartsWith("?$") {
		return d.demangleTemplateInstantiationName(nbbTemplate)
	}
	if d.view.StartsWith("?A") {
		return d.demangleAnonymousNamespaceName()
	}
	if startsWithLocalScopePattern(d.view) {
		return d.demangleLocallyScopedNamePiece()
	}
	return d.demangleSimpleName(true)
}

func (d *Demangler) demangleBackRefName() (*NamedIdentifierNode, error) {
	name, ok := d.backrefs.lookupName(int(d.view.Front() - '0'))
	if !ok {
		return nil, d.fail(ErrBackrefOutOfRange)
	}
	d.view.Advance(1)
	return name, nil
}

// demangleTemplateInstantiationName parses "?$name@args@". Template
// arguments mangle in a scope of their own, so the outer backreference
// tables are stashed for the duration.
func (d *Demangler) demangleTemplateInstantiationName(nbb nameBackrefBehavior) (IdentifierNode, error) {
	d.view.Advance(len("?$"))

	outer := d.backrefs
	d.backrefs = backrefContext{}

	ident, err := d.demangleUnqualifiedSymbolName(nbbSimple)
	if err == nil {
		var params *NodeArrayNode
		if params, err = d.demangleTemplateParameterList(); err == nil {
			ident.setTemplateParams(params)
		}
	}

	d.backrefs = outer
	if err != nil {
		return nil, err
	}

	if nbb&nbbTemplate != 0 {
		// In a non-leaf position structors and conversion operators
		// make no sense, and the whole instantiation is memorized.
		switch ident.(type) {
		case *StructorIdentifierNode, *ConversionOperatorIdentifierNode:
			return nil, d.fail(ErrInvalidMangledName)
		}
		d.memorizeIdentifier(ident)
	}
	return ident, nil
}

func (d *Demangler) demangleSimpleName(memorize bool) (*NamedIdentifierNode, error) {
	name, err := d.demangleSimpleString(memorize)
	if err != nil {
		return nil, err
	}
	return d.arena.NamedIdentifier(name), nil
}

// demangleSimpleString reads a plain name up to its '@' terminator.
func (d *Demangler) demangleSimpleString(memorize bool) (string, error) {
	end := d.view.IndexByte('@')
	if end < 0 {
		return "", d.fail(ErrUnexpectedEnd)
	}
	if end == 0 {
		return "", d.fail(ErrInvalidMangledName)
	}
	s := d.view.Prefix(end)
	d.view.Advance(end + 1)
	if memorize {
		d.memorizeString(s)
	}
	return d.arena.Intern(s), nil
}

func (d *Demangler) demangleAnonymousNamespaceName() (*NamedIdentifierNode, error) {
	d.view.Advance(len("?A"))
	end := d.view.IndexByte('@')
	if end < 0 {
		return nil, d.fail(ErrUnexpectedEnd)
	}
	// The text between "?A" and '@' is a translation unit key. It does
	// not print, but later backreferences may point at it.
	d.memorizeString(d.view.Prefix(end))
	d.view.Advance(end + 1)
	return d.arena.NamedIdentifier("`anonymous namespace'"), nil
}

// startsWithLocalScopePattern reports, without consuming anything,
// whether the input begins with a "?<discriminator>?" marker for a name
// scoped to a function. "?@?" encodes discriminator zero.
func startsWithLocalScopePattern(probe sview.View) bool {
	if !probe.ConsumeByte('?') {
		return false
	}
	end := probe.IndexByte('?')
	if end < 0 {
		return false
	}
	candidate := probe.Prefix(end)
	if len(candidate) == 0 {
		return false
	}

	if len(candidate) == 1 {
		return candidate[0] == '@' || candidate[0] >= '0' && candidate[0] <= '9'
	}

	// Multiple characters must be an encoded number ending in '@'. Its
	// first digit cannot be 'A': that would collide with the "?A"
	// anonymous namespace marker, and multi digit numbers do not start
	// with zero anyway.
	if candidate[len(candidate)-1] != '@' {
		return false
	}
	candidate = candidate[:len(candidate)-1]
	if candidate[0] < 'B' || candidate[0] > 'P' {
		return false
	}
	for i := 1; i < len(candidate); i++ {
		if candidate[i] < 'A' || candidate[i] > 'P' {
			return false
		}
	}
	return true
}

// demangleLocallyScopedNamePiece parses "?<n>?<symbol>" and renders the
// owning symbol into the scope's display name, e.g. "`f'::`2'".
func (d *Demangler) demangleLocallyScopedNamePiece() (*NamedIdentifierNode, error) {
	d.view.Advance(1) // '?'
	number, _, err := d.demangleNumber()
	if err != nil {
		return nil, err
	}
	if !d.view.ConsumeByte('?') {
		return nil, d.fail(ErrInvalidMangledName)
	}

	scope, err := d.parse()
	if err != nil {
		return nil, err
	}

	var ob outputBuffer
	ob.writeByte('`')
	scope.output(&ob, OutputDefault)
	ob.writeString("'::`")
	ob.writeUint(number)
	ob.writeByte('\'')
	return d.arena.NamedIdentifier(d.arena.Intern(ob.String())), nil
}

func (d *Demangler) demangleFunctionIdentifierCode() (IdentifierNode, error) {
	d.view.Advance(1) // '?'
	if d.view.Empty() {
		return nil, d.fail(ErrUnexpectedEnd)
	}

	group := funcIDBasic
	if d.view.ConsumePrefix("__") {
		group = funcIDDoubleUnder
	} else if d.view.ConsumeByte('_') {
		group = funcIDUnder
	}
	if d.view.Empty() {
		return nil, d.fail(ErrUnexpectedEnd)
	}

	c := d.view.PopFront()
	switch group {
	case funcIDBasic:
		switch c {
		case '0':
			return d.arena.StructorIdentifier(false), nil
		case '1':
			return d.arena.StructorIdentifier(true), nil
		case 'B':
			// The target type fills in once the signature parses.
			return d.arena.ConversionOperatorIdentifier(), nil
		}
	case funcIDDoubleUnder:
		if c == 'K' {
			name, err := d.demangleSimpleString(false)
			if err != nil {
				return nil, err
			}
			return d.arena.LiteralOperatorIdentifier(name), nil
		}
	}

	op, ok := translateIntrinsicFunctionCode(c, group)
	if !ok {
		return nil, d.fail(ErrInvalidMangledName)
	}
	return d.arena.IntrinsicFunctionIdentifier(op), nil
}

// The operator code tables map the character after "?", "?_" or "?__"
// to an operator. OpUnknown entries are valid codes that either parse
// elsewhere (structors, conversion operators, special intrinsics) or
// have no spelling; they print as nothing. A missing key is an error.
var basicOperatorCodes = map[byte]OperatorKind{
	// '0' and '1' are structors, 'B' the conversion operator; all
	// three are intercepted before the table lookup.
	'0': OpUnknown,
	'1': OpUnknown,
	'2': OpNew,
	'3': OpDelete,
	'4': OpAssign,
	'5': OpRightShift,
	'6': OpLeftShift,
	'7': OpLogicalNot,
	'8': OpEqual,
	'9': OpNotEqual,
	'A': OpSubscript,
	'B': OpUnknown,
	'C': OpArrow,
	'D': OpDereference,
	'E': OpIncrement,
	'F': OpDecrement,
	'G': OpMinus,
	'H': OpPlus,
	'I': OpAddressOf,
	'J': OpArrowDeref,
	'K': OpDivide,
	'L': OpModulo,
	'M': OpLess,
	'N': OpLessEqual,
	'O': OpGreater,
	'P': OpGreaterEqual,
	'Q': OpComma,
	'R': OpCall,
	'S': OpComplement,
	'T': OpXor,
	'U': OpBitwiseOr,
	'V': OpLogicalAnd,
	'W': OpLogicalOr,
	'X': OpMultiplyAssign,
	'Y': OpPlusAssign,
	'Z': OpMinusAssign,
}

var underOperatorCodes = map[byte]OperatorKind{
	'0': OpDivideAssign,
	'1': OpModuloAssign,
	'2': OpRightShiftAssign,
	'3': OpLeftShiftAssign,
	'4': OpAndAssign,
	'5': OpOrAssign,
	'6': OpXorAssign,
	// '7' through 'C' encode vftables, vbtables, vcalls, typeof,
	// guards and string literals, all parsed as special intrinsics.
	'7': OpUnknown,
	'8': OpUnknown,
	'9': OpUnknown,
	'A': OpUnknown,
	'B': OpUnknown,
	'C': OpUnknown,
	'D': OpVBaseDtor,
	'E': OpVectorDeletingDtor,
	'F': OpDefaultCtorClosure,
	'G': OpScalarDeletingDtor,
	'H': OpVectorCtorIterator,
	'I': OpVectorDtorIterator,
	'J': OpVectorVbaseCtorIterator,
	'K': OpVirtualDisplacementMap,
	'L': OpEHVectorCtorIterator,
	'M': OpEHVectorDtorIterator,
	'N': OpEHVectorVbaseCtorIterator,
	'O': OpCopyCtorClosure,
	// 'P' is a UDT-returning thunk, 'R' the RTTI family, 'S' the
	// local vftable; 'W' through 'Z' are unassigned but accepted.
	'P': OpUnknown,
	'Q': OpUnknown,
	'R': OpUnknown,
	'S': OpUnknown,
	'T': OpLocalVFTableCtorClosure,
	'U': OpNewArray,
	'V': OpDeleteArray,
	'W': OpUnknown,
	'X': OpUnknown,
	'Y': OpUnknown,
	'Z': OpUnknown,
}

var doubleUnderOperatorCodes = map[byte]OperatorKind{
	'0': OpUnknown,
	'1': OpUnknown,
	'2': OpUnknown,
	'3': OpUnknown,
	'4': OpUnknown,
	'5': OpUnknown,
	'6': OpUnknown,
	'7': OpUnknown,
	'8': OpUnknown,
	'9': OpUnknown,
	'A': OpManagedVectorCtorIterator,
	'B': OpManagedVectorDtorIterator,
	'C': OpEHVectorCopyCtorIterator,
	'D': OpEHVectorVbaseCopyCtorIterator,
	// 'E' and 'F' are dynamic initializers, 'J' the thread guard,
	// 'K' the literal operator; all handled before the lookup.
	'E': OpUnknown,
	'F': OpUnknown,
	'G': OpVectorCopyCtorIterator,
	'H': OpVectorVbaseCopyCtorIterator,
	'I': OpManagedVectorVbaseCopyCtorIterator,
	'J': OpUnknown,
	'K': OpUnknown,
	'L': OpCoAwait,
	'M': OpSpaceship,
	'N': OpUnknown,
	'O': OpUnknown,
	'P': OpUnknown,
	'Q': OpUnknown,
	'R': OpUnknown,
	'S': OpUnknown,
	'T': OpUnknown,
	'U': OpUnknown,
	'V': OpUnknown,
	'W': OpUnknown,
	'X': OpUnknown,
	'Y': OpUnknown,
	'Z': OpUnknown,
}

func translateIntrinsicFunctionCode(c byte, group funcIDCodeGroup) (OperatorKind, bool) {
	var table map[byte]OperatorKind
	switch group {
	case funcIDBasic:
		table = basicOperatorCodes
	case funcIDUnder:
		table = underOperatorCodes
	default:
		table = doubleUnderOperatorCodes
	}
	op, ok := table[c]
	return op, ok
}
