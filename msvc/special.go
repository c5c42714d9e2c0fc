package msvc

// specialIntrinsicKind identifies compiler-generated symbols that do
// not follow the name-then-encoding shape.
type specialIntrinsicKind int

const (
	sikNone specialIntrinsicKind = iota
	sikVftable
	sikVbtable
	sikTypeof
	sikVcallThunk
	sikLocalStaticGuard
	sikStringLiteralSymbol
	sikUdtReturning
	sikDynamicInitializer
	sikDynamicAtexitDestructor
	sikRttiTypeDescriptor
	sikRttiBaseClassDescriptor
	sikRttiBaseClassArray
	sikRttiClassHierarchyDescriptor
	sikRttiCompleteObjLocator
	sikLocalVftable
	sikLocalStaticThreadGuard
)

// consumeSpecialIntrinsicKind matches the "?_" and "?__" special codes,
// longest prefix first so "?_R0" wins over a hypothetical "?_R".
func (d *Demangler) consumeSpecialIntrinsicKind() specialIntrinsicKind {
	switch {
	case d.view.ConsumePrefix("?_7"):
		return sikVftable
	case d.view.ConsumePrefix("?_8"):
		return sikVbtable
	case d.view.ConsumePrefix("?_9"):
		return sikVcallThunk
	case d.view.ConsumePrefix("?_A"):
		return sikTypeof
	case d.view.ConsumePrefix("?_B"):
		return sikLocalStaticGuard
	case d.view.ConsumePrefix("?_C"):
		return sikStringLiteralSymbol
	case d.view.ConsumePrefix("?_P"):
		return sikUdtReturning
	case d.view.ConsumePrefix("?_R0"):
		return sikRttiTypeDescriptor
	case d.view.ConsumePrefix("?_R1"):
		return sikRttiBaseClassDescriptor
	case d.view.ConsumePrefix("?_R2"):
		return sikRttiBaseClassArray
	case d.view.ConsumePrefix("?_R3"):
		return sikRttiClassHierarchyDescriptor
	case d.view.ConsumePrefix("?_R4"):
		return sikRttiCompleteObjLocator
	case d.view.ConsumePrefix("?_S"):
		return sikLocalVftable
	case d.view.ConsumePrefix("?__E"):
		return sikDynamicInitializer
	case d.view.ConsumePrefix("?__F"):
		return sikDynamicAtexitDestructor
	case d.view.ConsumePrefix("?__J"):
		return sikLocalStaticThreadGuard
	}
	return sikNone
}

// demangleSpecialIntrinsic returns (nil, nil) when the input is not a
// special intrinsic, leaving the cursor untouched for the declarator
// path.
func (d *Demangler) demangleSpecialIntrinsic() (SymbolNode, error) {
	switch sik := d.consumeSpecialIntrinsicKind(); sik {
	case sikNone:
		return nil, nil
	case sikStringLiteralSymbol:
		return d.demangleStringLiteral()
	case sikVftable, sikVbtable, sikLocalVftable, sikRttiCompleteObjLocator:
		return d.demangleSpecialTableSymbol(sik)
	case sikVcallThunk:
		return d.demangleVcallThunk()
	case sikLocalStaticGuard:
		return d.demangleLocalStaticGuard(false)
	case sikLocalStaticThreadGuard:
		return d.demangleLocalStaticGuard(true)
	case sikRttiTypeDescriptor:
		ty, err := d.demangleType(qmmResult)
		if err != nil {
			return nil, err
		}
		if !d.view.ConsumePrefix("@8") || !d.view.Empty() {
			return nil, d.fail(ErrInvalidMangledName)
		}
		return d.synthesizeVariable(ty, "`RTTI Type Descriptor'"), nil
	case sikRttiBaseClassArray:
		return d.demangleUntypedVariable("`RTTI Base Class Array'")
	case sikRttiClassHierarchyDescriptor:
		return d.demangleUntypedVariable("`RTTI Class Hierarchy Descriptor'")
	case sikRttiBaseClassDescriptor:
		return d.demangleRttiBaseClassDescriptor()
	case sikDynamicInitializer:
		return d.demangleInitFiniStub(false)
	case sikDynamicAtexitDestructor:
		return d.demangleInitFiniStub(true)
	default:
		// Typeof and UDT-returning thunks; no known producer, so no
		// demangling either.
		return nil, d.fail(ErrUnsupported)
	}
}

func (d *Demangler) demangleSpecialTableSymbol(sik specialIntrinsicKind) (*SpecialTableSymbolNode, error) {
	var name string
	switch sik {
	case sikVftable:
		name = "`vftable'"
	case sikVbtable:
		name = "`vbtable'"
	case sikLocalVftable:
		name = "`local vftable'"
	default:
		name = "`RTTI Complete Object Locator'"
	}

	qn, err := d.demangleNameScopeChain(d.arena.NamedIdentifier(name))
	if err != nil {
		return nil, err
	}
	stsn := d.arena.SpecialTableSymbol()
	stsn.Name = qn

	if d.view.Empty() {
		return nil, d.fail(ErrUnexpectedEnd)
	}
	switch d.view.PopFront() {
	case '6', '7':
	default:
		return nil, d.fail(ErrInvalidMangledName)
	}

	if stsn.Quals, _, err = d.demangleQualifiers(); err != nil {
		return nil, err
	}
	if !d.view.ConsumeByte('@') {
		target, err := d.demangleFullyQualifiedTypeName()
		if err != nil {
			return nil, err
		}
		stsn.TargetName = target
	}
	return stsn, nil
}

func (d *Demangler) demangleLocalStaticGuard(isThread bool) (*LocalStaticGuardVariableNode, error) {
	lsgi := d.arena.LocalStaticGuardIdentifier(isThread)
	qn, err := d.demangleNameScopeChain(lsgi)
	if err != nil {
		return nil, err
	}
	lsgvn := d.arena.LocalStaticGuardVariable(true)
	lsgvn.Name = qn

	if d.view.ConsumePrefix("4IA") {
		lsgvn.IsVisible = false
	} else if d.view.ConsumeByte('5') {
		lsgvn.IsVisible = true
	} else {
		return nil, d.fail(ErrInvalidMangledName)
	}

	if !d.view.Empty() {
		if lsgi.ScopeIndex, err = d.demangleUnsigned(); err != nil {
			return nil, err
		}
	}
	return lsgvn, nil
}

func (d *Demangler) demangleUntypedVariable(name string) (*VariableSymbolNode, error) {
	qn, err := d.demangleNameScopeChain(d.arena.NamedIdentifier(name))
	if err != nil {
		return nil, err
	}
	vsn := d.arena.VariableSymbol(StorageNone, nil)
	vsn.Name = qn
	if !d.view.ConsumeByte('8') {
		return nil, d.fail(ErrInvalidMangledName)
	}
	return vsn, nil
}

func (d *Demangler) demangleRttiBaseClassDescriptor() (*VariableSymbolNode, error) {
	rbcd := d.arena.RttiBaseClassDescriptor()
	var err error
	if rbcd.NVOffset, err = d.demangleUnsigned(); err != nil {
		return nil, err
	}
	if rbcd.VBPtrOffset, err = d.demangleSigned(); err != nil {
		return nil, err
	}
	if rbcd.VBTableOffset, err = d.demangleUnsigned(); err != nil {
		return nil, err
	}
	if rbcd.Flags, err = d.demangleUnsigned(); err != nil {
		return nil, err
	}

	qn, err := d.demangleNameScopeChain(rbcd)
	if err != nil {
		return nil, err
	}
	vsn := d.arena.VariableSymbol(StorageNone, nil)
	vsn.Name = qn
	d.view.ConsumeByte('8')
	return vsn, nil
}

// demangleInitFiniStub parses "??__E" and "??__F" stubs. The stub wraps
// either a static data member (a leading '?' plus a variable declarator)
// or a plain symbol, and demangles as a function symbol named
// "`dynamic initializer for ...'".
func (d *Demangler) demangleInitFiniStub(isDestructor bool) (*FunctionSymbolNode, error) {
	dsin := d.arena.DynamicStructorIdentifier(isDestructor)

	isKnownStaticDataMember := d.view.ConsumeByte('?')

	sym, err := d.demangleDeclarator()
	if err != nil {
		return nil, err
	}

	if vsn, ok := sym.(*VariableSymbolNode); ok {
		dsin.Variable = vsn

		// The correct form wraps a static data member in '?' and two
		// closing '@'s, but some compilers emitted neither the '?'
		// nor the second '@'. Accept both.
		atCount := 1
		if isKnownStaticDataMember {
			atCount = 2
		}
		for i := 0; i < atCount; i++ {
			if !d.view.ConsumeByte('@') {
				return nil, d.fail(ErrInvalidMangledName)
			}
		}

		fsn, err := d.demangleFunctionEncoding()
		if err != nil {
			return nil, err
		}
		fsn.Name = d.arena.SynthesizedQualifiedName(dsin)
		return fsn, nil
	}

	if isKnownStaticDataMember {
		// The '?' promised a variable.
		return nil, d.fail(ErrInvalidMangledName)
	}

	fsn, ok := sym.(*FunctionSymbolNode)
	if !ok {
		return nil, d.fail(ErrInvalidMangledName)
	}
	dsin.Name = fsn.symName()
	fsn.Name = d.arena.SynthesizedQualifiedName(dsin)
	return fsn, nil
}

func (d *Demangler) demangleVcallThunk() (*FunctionSymbolNode, error) {
	vtin := d.arena.VcallThunkIdentifier()
	sig := d.arena.ThunkSignature()
	sig.FunctionClass = FCNoParameterList
	fsn := d.arena.FunctionSymbol(sig)

	qn, err := d.demangleNameScopeChain(vtin)
	if err != nil {
		return nil, err
	}
	fsn.Name = qn

	if !d.view.ConsumePrefix("$B") {
		return nil, d.fail(ErrInvalidMangledName)
	}
	if vtin.OffsetInVTable, err = d.demangleUnsigned(); err != nil {
		return nil, err
	}
	if !d.view.ConsumeByte('A') {
		return nil, d.fail(ErrInvalidMangledName)
	}
	if sig.CallConvention, err = d.demangleCallingConvention(); err != nil {
		return nil, err
	}
	return fsn, nil
}

// The payload of a string literal is capped at 32 bytes, but some
// compilers emitted more.
const maxStringByteLength = 32 * 4

// demangleStringLiteral parses "??_C@_<width><length><crc>@<chars>@".
// The literal stores at most 32 payload bytes of the original string, so
// long strings decode truncated, and the character width of a narrow
// string has to be guessed back from its bytes.
func (d *Demangler) demangleStringLiteral() (*EncodedStringLiteralNode, error) {
	result := d.arena.EncodedStringLiteral()
	var ob outputBuffer

	if !d.view.ConsumePrefix("@_") {
		return nil, d.fail(ErrInvalidMangledName)
	}
	if d.view.Empty() {
		return nil, d.fail(ErrUnexpectedEnd)
	}

	isWchar := false
	switch d.view.PopFront() {
	case '1':
		isWchar = true
	case '0':
	default:
		return nil, d.fail(ErrInvalidMangledName)
	}

	byteSize, isNegative, err := d.demangleNumber()
	if err != nil {
		return nil, err
	}
	minSize := uint64(1)
	if isWchar {
		minSize = 2
	}
	if isNegative || byteSize < minSize {
		return nil, d.fail(ErrInvalidMangledName)
	}

	// The CRC of the full string precedes the payload and does not
	// contribute to the output.
	crcEnd := d.view.IndexByte('@')
	if crcEnd < 0 {
		return nil, d.fail(ErrUnexpectedEnd)
	}
	d.view.Advance(crcEnd + 1)
	if d.view.Empty() {
		return nil, d.fail(ErrUnexpectedEnd)
	}

	if isWchar {
		result.Char = CharWchar
		result.IsTruncated = byteSize > 64

		for !d.view.ConsumeByte('@') {
			if d.view.Len() < 2 {
				return nil, d.fail(ErrUnexpectedEnd)
			}
			w, err := d.demangleWcharLiteral()
			if err != nil {
				return nil, err
			}
			// The terminating null is not part of the text.
			if byteSize != 2 || result.IsTruncated {
				outputEscapedChar(&ob, uint32(w))
			}
			byteSize -= 2
		}
	} else {
		var stringBytes [maxStringByteLength]byte

		decoded := 0
		for !d.view.ConsumeByte('@') {
			if d.view.Empty() || decoded >= maxStringByteLength {
				return nil, d.fail(ErrInvalidMangledName)
			}
			b, err := d.demangleCharLiteral()
			if err != nil {
				return nil, err
			}
			stringBytes[decoded] = b
			decoded++
		}

		result.IsTruncated = byteSize > uint64(decoded)

		charBytes := guessCharByteSize(stringBytes[:decoded], byteSize)
		switch charBytes {
		case 1:
			result.Char = CharChar
		case 2:
			result.Char = CharChar16
		case 4:
			result.Char = CharChar32
		}

		numChars := decoded / charBytes
		for i := 0; i < numChars; i++ {
			c := decodeMultiByteChar(stringBytes[:decoded], i, charBytes)
			if i+1 < numChars || result.IsTruncated {
				outputEscapedChar(&ob, c)
			}
		}
	}

	result.DecodedString = d.arena.Intern(ob.String())
	return result, nil
}

// guessCharByteSize recovers the character width of a narrow string
// literal. Short strings still contain their null terminator; truncated
// ones are judged by the share of embedded null bytes, which favors
// ASCII-heavy text but is the best the lossy encoding allows.
func guessCharByteSize(bytes []byte, declaredBytes uint64) int {
	if declaredBytes%2 == 1 {
		return 1
	}

	if declaredBytes < 32 {
		trailing := countTrailingNullBytes(bytes)
		if trailing >= 4 && declaredBytes%4 == 0 {
			return 4
		}
		if trailing >= 2 {
			return 2
		}
		return 1
	}

	nulls := countEmbeddedNulls(bytes)
	if nulls >= 2*len(bytes)/3 && declaredBytes%4 == 0 {
		return 4
	}
	if nulls >= len(bytes)/3 {
		return 2
	}
	return 1
}

func countTrailingNullBytes(bytes []byte) int {
	count := 0
	for i := len(bytes) - 1; i >= 0 && bytes[i] == 0; i-- {
		count++
	}
	return count
}

func countEmbeddedNulls(bytes []byte) int {
	count := 0
	for _, b := range bytes {
		if b == 0 {
			count++
		}
	}
	return count
}

// decodeMultiByteChar assembles one little-endian character out of the
// decoded byte buffer.
func decodeMultiByteChar(bytes []byte, charIndex, charBytes int) uint32 {
	var c uint32
	for i := 0; i < charBytes; i++ {
		c |= uint32(bytes[charIndex*charBytes+i]) << (8 * i)
	}
	return c
}

func isRebasedHexDigit(c byte) bool { return c >= 'A' && c <= 'P' }

// demangleCharLiteral decodes one byte of string payload: a literal
// character, "?$" plus two rebased hex digits, or a '?' shorthand for
// punctuation and bytes in the 0xC1-0xDA and 0xE1-0xFA ranges.
func (d *Demangler) demangleCharLiteral() (byte, error) {
	if d.view.Empty() {
		return 0, d.fail(ErrUnexpectedEnd)
	}
	c := d.view.PopFront()
	if c != '?' {
		return c, nil
	}
	if d.view.Empty() {
		return 0, d.fail(ErrUnexpectedEnd)
	}

	if d.view.ConsumeByte('$') {
		if d.view.Len() < 2 {
			return 0, d.fail(ErrUnexpectedEnd)
		}
		hi := d.view.PopFront()
		lo := d.view.PopFront()
		if !isRebasedHexDigit(hi) || !isRebasedHexDigit(lo) {
			return 0, d.fail(ErrInvalidMangledName)
		}
		return (hi-'A')<<4 | (lo - 'A'), nil
	}

	next := d.view.Front()
	switch {
	case next >= '0' && next <= '9':
		d.view.Advance(1)
		return ",/\\:. \n\t'-"[next-'0'], nil
	case next >= 'a' && next <= 'z':
		d.view.Advance(1)
		return 0xE1 + (next - 'a'), nil
	case next >= 'A' && next <= 'Z':
		d.view.Advance(1)
		return 0xC1 + (next - 'A'), nil
	}
	return 0, d.fail(ErrInvalidMangledName)
}

// demangleWcharLiteral reads a big-endian pair of char literals.
func (d *Demangler) demangleWcharLiteral() (uint16, error) {
	hi, err := d.demangleCharLiteral()
	if err != nil {
		return 0, err
	}
	if d.view.Empty() {
		return 0, d.fail(ErrUnexpectedEnd)
	}
	lo, err := d.demangleCharLiteral()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func outputEscapedChar(ob *outputBuffer, c uint32) {
	switch c {
	case 0:
		ob.writeString(`\0`)
		return
	case '\'':
		ob.writeString(`\'`)
		return
	case '"':
		ob.writeString(`\"`)
		return
	case '\\':
		ob.writeString(`\\`)
		return
	case '\a':
		ob.writeString(`\a`)
		return
	case '\b':
		ob.writeString(`\b`)
		return
	case '\f':
		ob.writeString(`\f`)
		return
	case '\n':
		ob.writeString(`\n`)
		return
	case '\r':
		ob.writeString(`\r`)
		return
	case '\t':
		ob.writeString(`\t`)
		return
	case '\v':
		ob.writeString(`\v`)
		return
	}

	if c > 0x1F && c < 0x7F {
		ob.writeByte(byte(c))
		return
	}

	outputHex(ob, c)
}

func hexDigit(v byte) byte {
	if v < 10 {
		return '0' + v
	}
	return 'A' + v - 10
}

// outputHex writes "\x" plus two uppercase digits per byte, starting at
// the most significant nonzero byte.
func outputHex(ob *outputBuffer, c uint32) {
	var tmp [8]byte
	pos := len(tmp)
	for {
		pos--
		tmp[pos] = hexDigit(byte(c % 16))
		c /= 16
		pos--
		tmp[pos] = hexDigit(byte(c % 16))
		c /= 16
		if c == 0 {
			break
		}
	}
	ob.writeString(`\x`)
	ob.buf = append(ob.buf, tmp[pos:]...)
}
