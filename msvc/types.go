package msvc

import "github.com/skdltmxn/demangle-go/internal/sview"

// qualifierMangleMode says where a type's CV qualifiers come from.
// Function parameters carry none (qmmDrop), pointees carry them inline
// (qmmMangle), and return types mark them with a '?' prefix (qmmResult).
type qualifierMangleMode int

const (
	qmmDrop qualifierMangleMode = iota
	qmmMangle
	qmmResult
)

func isTagType(c byte) bool {
	switch c {
	case 'T', 'U', 'V', 'W':
		return true
	}
	return false
}

func isPointerType(v *sview.View) bool {
	if v.StartsWith("$$Q") { // rvalue reference
		return true
	}
	switch v.Front() {
	case 'A', 'P', 'Q', 'R', 'S':
		return true
	}
	return false
}

func isFunctionType(v *sview.View) bool {
	return v.StartsWith("$$A8@@") || v.StartsWith("$$A6")
}

func (d *Demangler) demangleType(qmm qualifierMangleMode) (TypeNode, error) {
	var quals Qualifiers
	switch qmm {
	case qmmMangle:
		q, _, err := d.demangleQualifiers()
		if err != nil {
			return nil, err
		}
		quals = q
	case qmmResult:
		if d.view.ConsumeByte('?') {
			q, _, err := d.demangleQualifiers()
			if err != nil {
				return nil, err
			}
			quals = q
		}
	}

	if d.view.Empty() {
		return nil, d.fail(ErrUnexpectedEnd)
	}

	var ty TypeNode
	var err error
	switch {
	case isTagType(d.view.Front()):
		ty, err = d.demangleClassType()
	case isPointerType(&d.view):
		member, merr := d.isMemberPointer()
		if merr != nil {
			return nil, merr
		}
		if member {
			ty, err = d.demangleMemberPointerType()
		} else {
			ty, err = d.demanglePointerType()
		}
	case d.view.StartsWithByte('Y'):
		ty, err = d.demangleArrayType()
	case isFunctionType(&d.view):
		if d.view.ConsumePrefix("$$A8@@") {
			ty, err = d.demangleFunctionType(true)
		} else {
			d.view.Advance(len("$$A6"))
			ty, err = d.demangleFunctionType(false)
		}
	case d.view.StartsWithByte('?'):
		ty, err = d.demangleCustomType()
	default:
		ty, err = d.demanglePrimitiveType()
	}
	if err != nil {
		return nil, err
	}

	ty.addQuals(quals)
	return ty, nil
}

// demangleQualifiers reads one CV letter and reports whether it was the
// member variant ('Q'-'T') or the free variant ('A'-'D').
func (d *Demangler) demangleQualifiers() (Qualifiers, bool, error) {
	if d.view.Empty() {
		return QualNone, false, d.fail(ErrUnexpectedEnd)
	}
	switch d.view.PopFront() {
	case 'Q':
		return QualNone, true, nil
	case 'R':
		return QualConst, true, nil
	case 'S':
		return QualVolatile, true, nil
	case 'T':
		return QualConst | QualVolatile, true, nil
	case 'A':
		return QualNone, false, nil
	case 'B':
		return QualConst, false, nil
	case 'C':
		return QualVolatile, false, nil
	case 'D':
		return QualConst | QualVolatile, false, nil
	}
	return QualNone, false, d.fail(ErrInvalidMangledName)
}

// demanglePointerExtQualifiers reads the optional 64-bit, __restrict and
// __unaligned markers, in that fixed order.
func (d *Demangler) demanglePointerExtQualifiers() Qualifiers {
	var quals Qualifiers
	if d.view.ConsumeByte('E') {
		quals |= QualPointer64
	}
	if d.view.ConsumeByte('I') {
		quals |= QualRestrict
	}
	if d.view.ConsumeByte('F') {
		quals |= QualUnaligned
	}
	return quals
}

// isMemberPointer inspects a pointer encoding without consuming it. The
// leading letter alone cannot separate "pointer" from "pointer to
// member"; the discriminator sits after the extension qualifiers.
func (d *Demangler) isMemberPointer() (bool, error) {
	probe := d.view
	switch probe.PopFront() {
	case '$':
		// Rvalue reference; there is no rvalue reference to member.
		return false, nil
	case 'A':
		// Reference; no reference to member either.
		return false, nil
	case 'P', 'Q', 'R', 'S':
		// Some kind of pointer.
	default:
		return false, d.fail(ErrInvalidMangledName)
	}

	// '6' introduces a function pointer, '8' a member function pointer.
	if probe.StartsWithDigit() {
		switch probe.Front() {
		case '6':
			return false, nil
		case '8':
			return true, nil
		}
		return false, d.fail(ErrInvalidMangledName)
	}

	// Extension qualifiers appear on both forms and decide nothing.
	probe.ConsumeByte('E')
	probe.ConsumeByte('I')
	probe.ConsumeByte('F')

	if probe.Empty() {
		return false, d.fail(ErrUnexpectedEnd)
	}

	// Member pointees carry member CV letters.
	switch probe.Front() {
	case 'A', 'B', 'C', 'D':
		return false, nil
	case 'Q', 'R', 'S', 'T':
		return true, nil
	}
	return false, d.fail(ErrInvalidMangledName)
}

func (d *Demangler) demanglePointerCVQualifiers() (Qualifiers, PointerAffinity, error) {
	if d.view.ConsumePrefix("$$Q") {
		return QualNone, AffinityRValueReference, nil
	}
	switch d.view.PopFront() {
	case 'A':
		return QualNone, AffinityReference, nil
	case 'P':
		return QualNone, AffinityPointer, nil
	case 'Q':
		return QualConst, AffinityPointer, nil
	case 'R':
		return QualVolatile, AffinityPointer, nil
	case 'S':
		return QualConst | QualVolatile, AffinityPointer, nil
	}
	return QualNone, AffinityPointer, d.fail(ErrInvalidMangledName)
}

func (d *Demangler) demanglePointerType() (*PointerTypeNode, error) {
	quals, affinity, err := d.demanglePointerCVQualifiers()
	if err != nil {
		return nil, err
	}
	ptr := d.arena.PointerType(affinity)
	ptr.Quals = quals

	if d.view.ConsumeByte('6') {
		ptr.Pointee, err = d.demangleFunctionType(false)
		if err != nil {
			return nil, err
		}
		return ptr, nil
	}

	ptr.Quals |= d.demanglePointerExtQualifiers()
	ptr.Pointee, err = d.demangleType(qmmMangle)
	if err != nil {
		return nil, err
	}
	return ptr, nil
}

func (d *Demangler) demangleMemberPointerType() (*PointerTypeNode, error) {
	quals, affinity, err := d.demanglePointerCVQualifiers()
	if err != nil {
		return nil, err
	}
	if affinity != AffinityPointer {
		return nil, d.fail(ErrInvalidMangledName)
	}
	ptr := d.arena.PointerType(affinity)
	ptr.Quals = quals | d.demanglePointerExtQualifiers()

	if d.view.ConsumeByte('8') {
		// Pointer to member function: class name, then signature.
		if ptr.ClassParent, err = d.demangleFullyQualifiedTypeName(); err != nil {
			return nil, err
		}
		fsn, err := d.demangleFunctionType(true)
		if err != nil {
			return nil, err
		}
		ptr.Pointee = fsn
		return ptr, nil
	}

	pointeeQuals, _, err := d.demangleQualifiers()
	if err != nil {
		return nil, err
	}
	if ptr.ClassParent, err = d.demangleFullyQualifiedTypeName(); err != nil {
		return nil, err
	}
	pointee, err := d.demangleType(qmmDrop)
	if err != nil {
		return nil, err
	}
	pointee.addQuals(pointeeQuals)
	ptr.Pointee = pointee
	return ptr, nil
}

func (d *Demangler) demanglePrimitiveType() (TypeNode, error) {
	if d.view.ConsumePrefix("$$T") {
		return d.arena.PrimitiveType(PrimNullptr), nil
	}

	switch d.view.PopFront() {
	case 'X':
		return d.arena.PrimitiveType(PrimVoid), nil
	case 'D':
		return d.arena.PrimitiveType(PrimChar), nil
	case 'C':
		return d.arena.PrimitiveType(PrimSchar), nil
	case 'E':
		return d.arena.PrimitiveType(PrimUchar), nil
	case 'F':
		return d.arena.PrimitiveType(PrimShort), nil
	case 'G':
		return d.arena.PrimitiveType(PrimUshort), nil
	case 'H':
		return d.arena.PrimitiveType(PrimInt), nil
	case 'I':
		return d.arena.PrimitiveType(PrimUint), nil
	case 'J':
		return d.arena.PrimitiveType(PrimLong), nil
	case 'K':
		return d.arena.PrimitiveType(PrimUlong), nil
	case 'M':
		return d.arena.PrimitiveType(PrimFloat), nil
	case 'N':
		return d.arena.PrimitiveType(PrimDouble), nil
	case 'O':
		return d.arena.PrimitiveType(PrimLdouble), nil
	case '_':
		if d.view.Empty() {
			return nil, d.fail(ErrUnexpectedEnd)
		}
		switch d.view.PopFront() {
		case 'N':
			return d.arena.PrimitiveType(PrimBool), nil
		case 'J':
			return d.arena.PrimitiveType(PrimInt64), nil
		case 'K':
			return d.arena.PrimitiveType(PrimUint64), nil
		case 'W':
			return d.arena.PrimitiveType(PrimWchar), nil
		case 'Q':
			return d.arena.PrimitiveType(PrimChar8), nil
		case 'S':
			return d.arena.PrimitiveType(PrimChar16), nil
		case 'U':
			return d.arena.PrimitiveType(PrimChar32), nil
		}
	}
	return nil, d.fail(ErrInvalidMangledName)
}

func (d *Demangler) demangleClassType() (*TagTypeNode, error) {
	var tt *TagTypeNode

	switch d.view.PopFront() {
	case 'T':
		tt = d.arena.TagType(TagUnion)
	case 'U':
		tt = d.arena.TagType(TagStruct)
	case 'V':
		tt = d.arena.TagType(TagClass)
	case 'W':
		if !d.view.ConsumeByte('4') {
			return nil, d.fail(ErrInvalidMangledName)
		}
		tt = d.arena.TagType(TagEnum)
	default:
		return nil, d.fail(ErrInvalidMangledName)
	}

	qn, err := d.demangleFullyQualifiedTypeName()
	if err != nil {
		return nil, err
	}
	tt.QualifiedName = qn
	return tt, nil
}

func (d *Demangler) demangleArrayType() (*ArrayTypeNode, error) {
	d.view.Advance(1) // 'Y'

	rank, isNegative, err := d.demangleNumber()
	if err != nil {
		return nil, err
	}
	if isNegative || rank == 0 {
		return nil, d.fail(ErrInvalidMangledName)
	}

	// rank is attacker controlled; grow dims as dimensions actually
	// parse rather than sizing it up front.
	aty := d.arena.ArrayType()
	var dims []Node
	for i := uint64(0); i < rank; i++ {
		dim, isNegative, err := d.demangleNumber()
		if err != nil {
			return nil, err
		}
		if isNegative {
			return nil, d.fail(ErrInvalidMangledName)
		}
		dims = append(dims, d.arena.IntegerLiteral(dim, false))
	}
	aty.Dimensions = d.arena.NodeArray(dims)

	if d.view.ConsumePrefix("$$C") {
		quals, isMember, err := d.demangleQualifiers()
		if err != nil {
			return nil, err
		}
		if isMember {
			return nil, d.fail(ErrInvalidMangledName)
		}
		aty.Quals = quals
	}

	if aty.ElementType, err = d.demangleType(qmmDrop); err != nil {
		return nil, err
	}
	return aty, nil
}

func (d *Demangler) demangleCustomType() (*CustomTypeNode, error) {
	d.view.Advance(1) // '?'

	ident, err := d.demangleUnqualifiedTypeName(true)
	if err != nil {
		return nil, err
	}
	if !d.view.ConsumeByte('@') {
		return nil, d.fail(ErrInvalidMangledName)
	}
	return d.arena.CustomType(ident), nil
}

func (d *Demangler) demangleCallingConvention() (CallingConv, error) {
	if d.view.Empty() {
		return CallNone, d.fail(ErrUnexpectedEnd)
	}
	switch d.view.PopFront() {
	case 'A', 'B':
		return CallCdecl, nil
	case 'C', 'D':
		return CallPascal, nil
	case 'E', 'F':
		return CallThiscall, nil
	case 'G', 'H':
		return CallStdcall, nil
	case 'I', 'J':
		return CallFastcall, nil
	case 'M', 'N':
		return CallClrcall, nil
	case 'O', 'P':
		return CallEabi, nil
	case 'Q':
		return CallVectorcall, nil
	case 'S':
		return CallSwift, nil
	case 'W':
		return CallSwiftAsync, nil
	}
	return CallNone, d.fail(ErrInvalidMangledName)
}

func (d *Demangler) demangleFunctionRefQualifier() FuncRefQualifier {
	if d.view.ConsumeByte('G') {
		return RefQualReference
	}
	if d.view.ConsumeByte('H') {
		return RefQualRValueReference
	}
	return RefQualNone
}

func (d *Demangler) demangleThrowSpecification() (bool, error) {
	if d.view.ConsumePrefix("_E") {
		return true, nil
	}
	if d.view.ConsumeByte('Z') {
		return false, nil
	}
	return false, d.fail(ErrInvalidMangledName)
}

// demangleFunctionType parses a signature. hasThisQuals is set for
// member functions, which mangle the implicit object parameter's
// qualifiers before the calling convention.
func (d *Demangler) demangleFunctionType(hasThisQuals bool) (*FunctionSignatureNode, error) {
	fty := d.arena.FunctionSignature()

	if hasThisQuals {
		fty.Quals = d.demanglePointerExtQualifiers()
		fty.RefQual = d.demangleFunctionRefQualifier()
		quals, _, err := d.demangleQualifiers()
		if err != nil {
			return nil, err
		}
		fty.Quals |= quals
	}

	cc, err := d.demangleCallingConvention()
	if err != nil {
		return nil, err
	}
	fty.CallConvention = cc

	// '@' in return position marks a structor, which has none.
	if !d.view.ConsumeByte('@') {
		if fty.ReturnType, err = d.demangleType(qmmResult); err != nil {
			return nil, err
		}
	}

	if fty.Params, fty.IsVariadic, err = d.demangleFunctionParameterList(); err != nil {
		return nil, err
	}

	if fty.IsNoexcept, err = d.demangleThrowSpecification(); err != nil {
		return nil, err
	}

	return fty, nil
}

// demangleFunctionParameterList parses parameters until the '@' or 'Z'
// terminator. 'X' alone means (void) and yields a nil array; an empty
// array before 'Z' means (...), so nil and empty stay distinct.
func (d *Demangler) demangleFunctionParameterList() (*NodeArrayNode, bool, error) {
	if d.view.ConsumeByte('X') {
		return nil, false, nil
	}

	var params []Node
	for !d.view.StartsWithByte('@') && !d.view.StartsWithByte('Z') {
		if d.view.Empty() {
			return nil, false, d.fail(ErrUnexpectedEnd)
		}

		if d.view.StartsWithDigit() {
			i := int(d.view.Front() - '0')
			param, ok := d.backrefs.lookupParam(i)
			if !ok {
				return nil, false, d.fail(ErrBackrefOutOfRange)
			}
			d.view.Advance(1)
			params = append(params, param)
			continue
		}

		before := d.view.Len()
		ty, err := d.demangleType(qmmDrop)
		if err != nil {
			return nil, false, err
		}
		params = append(params, ty)

		// Single-letter types are as short as a backreference and
		// never memorized.
		if before-d.view.Len() > 1 {
			d.backrefs.memorizeParam(ty)
		}
	}

	arr := d.arena.NodeArray(params)
	if d.view.ConsumeByte('@') {
		return arr, false, nil
	}
	d.view.Advance(1) // 'Z'
	return arr, true, nil
}

// demangleTemplateParameterList parses template arguments up to the '@'
// terminator. Unlike function parameters the list cannot be variadic and
// does not participate in backreferencing.
func (d *Demangler) demangleTemplateParameterList() (*NodeArrayNode, error) {
	var nodes []Node

	for !d.view.StartsWithByte('@') {
		if d.view.ConsumePrefix("$S") || d.view.ConsumePrefix("$$V") ||
			d.view.ConsumePrefix("$$$V") || d.view.ConsumePrefix("$$Z") {
			// Empty parameter pack markers produce no node.
			continue
		}
		if d.view.Empty() {
			return nil, d.fail(ErrUnexpectedEnd)
		}

		node, err := d.demangleTemplateParameter()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	d.view.Advance(1) // '@'
	return d.arena.NodeArray(nodes), nil
}

func (d *Demangler) demangleTemplateParameter() (Node, error) {
	switch {
	case d.view.ConsumePrefix("$$Y"):
		// Template alias by name.
		return d.demangleFullyQualifiedTypeName()
	case d.view.ConsumePrefix("$$B"):
		// Array value.
		return d.demangleType(qmmDrop)
	case d.view.ConsumePrefix("$$C"):
		// Type with explicit qualifiers.
		return d.demangleType(qmmMangle)
	case d.view.StartsWith("$1"), d.view.StartsWith("$H"),
		d.view.StartsWith("$I"), d.view.StartsWith("$J"):
		return d.demangleTemplateMemberFunctionPointer()
	case d.view.StartsWith("$E?"):
		d.view.Advance(len("$E"))
		tprn := d.arena.TemplateParameterReference()
		tprn.Affinity = AffinityReference
		sym, err := d.parse()
		if err != nil {
			return nil, err
		}
		tprn.Symbol = sym
		return tprn, nil
	case d.view.StartsWith("$F"), d.view.StartsWith("$G"):
		return d.demangleTemplateDataMemberPointer()
	case d.view.ConsumePrefix("$0"):
		value, isNegative, err := d.demangleNumber()
		if err != nil {
			return nil, err
		}
		return d.arena.IntegerLiteral(value, isNegative), nil
	}
	return d.demangleType(qmmDrop)
}

// demangleTemplateMemberFunctionPointer parses a &T::f argument. The
// inheritance model decides how many displacement values follow the
// symbol: none for single ('1'), up to three for unspecified ('J').
func (d *Demangler) demangleTemplateMemberFunctionPointer() (*TemplateParameterReferenceNode, error) {
	d.view.Advance(1) // '$'
	inheritance := d.view.PopFront()

	tprn := d.arena.TemplateParameterReference()
	tprn.IsMemberPointer = true
	tprn.Affinity = AffinityPointer

	if d.view.StartsWithByte('?') {
		sym, err := d.parse()
		if err != nil {
			return nil, err
		}
		if sym.symName() == nil {
			return nil, d.fail(ErrInvalidMangledName)
		}
		d.memorizeIdentifier(sym.symName().UnqualifiedIdentifier())
		tprn.Symbol = sym
	}

	offsets := 0
	switch inheritance {
	case '1':
	case 'H':
		offsets = 1
	case 'I':
		offsets = 2
	case 'J':
		offsets = 3
	default:
		return nil, d.fail(ErrInvalidMangledName)
	}
	for i := 0; i < offsets; i++ {
		off, err := d.demangleSigned()
		if err != nil {
			return nil, err
		}
		tprn.ThunkOffsets[tprn.ThunkOffsetCount] = off
		tprn.ThunkOffsetCount++
	}

	return tprn, nil
}

// demangleTemplateDataMemberPointer parses a &T::member argument, which
// is displacements only: two for 'F', three for 'G'.
func (d *Demangler) demangleTemplateDataMemberPointer() (*TemplateParameterReferenceNode, error) {
	d.view.Advance(1) // '$'
	inheritance := d.view.PopFront()

	tprn := d.arena.TemplateParameterReference()
	tprn.IsMemberPointer = true

	offsets := 2
	if inheritance == 'G' {
		offsets = 3
	}
	for i := 0; i < offsets; i++ {
		off, err := d.demangleSigned()
		if err != nil {
			return nil, err
		}
		tprn.ThunkOffsets[tprn.ThunkOffsetCount] = off
		tprn.ThunkOffsetCount++
	}

	return tprn, nil
}
