package msvc

import "strconv"

// OutputFlags select which parts of a symbol Render includes. The
// default output matches the undname tool.
type OutputFlags uint

const (
	OutputDefault             OutputFlags = 0
	OutputNoCallingConvention OutputFlags = 1 << 0
	OutputNoTagSpecifier      OutputFlags = 1 << 1
	OutputNoAccessSpecifier   OutputFlags = 1 << 2
	OutputNoMemberType        OutputFlags = 1 << 3
	OutputNoReturnType        OutputFlags = 1 << 4
	OutputNoVariableType      OutputFlags = 1 << 5
)

// outputBuffer accumulates rendered text. Spacing decisions look at the
// last byte written, which strings.Builder does not expose.
type outputBuffer struct {
	buf []byte
}

func (ob *outputBuffer) writeString(s string) { ob.buf = append(ob.buf, s...) }
func (ob *outputBuffer) writeByte(c byte)     { ob.buf = append(ob.buf, c) }

func (ob *outputBuffer) writeInt(v int64)   { ob.buf = strconv.AppendInt(ob.buf, v, 10) }
func (ob *outputBuffer) writeUint(v uint64) { ob.buf = strconv.AppendUint(ob.buf, v, 10) }

// last returns the most recent byte, or 0 for an empty buffer.
func (ob *outputBuffer) last() byte {
	if len(ob.buf) == 0 {
		return 0
	}
	return ob.buf[len(ob.buf)-1]
}

func (ob *outputBuffer) String() string { return string(ob.buf) }

// Render formats a node with the given flags. A nil node renders as "".
func Render(n Node, flags OutputFlags) string {
	if n == nil {
		return ""
	}
	var ob outputBuffer
	n.output(&ob, flags)
	return ob.String()
}

func render(n Node) string { return Render(n, OutputDefault) }

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// outputSpaceIfNecessary separates a declarator from the text before it:
// "int x" needs the space, "int *x" does not.
func outputSpaceIfNecessary(ob *outputBuffer) {
	if c := ob.last(); isAlnum(c) || c == '>' {
		ob.writeByte(' ')
	}
}

func outputQualifierIfPresent(ob *outputBuffer, q, mask Qualifiers, name string, needSpace bool) bool {
	if q&mask == 0 {
		return needSpace
	}
	if needSpace {
		ob.writeByte(' ')
	}
	ob.writeString(name)
	return true
}

// outputQualifiers emits the printable cv-qualifiers. spaceBefore
// separates from preceding text ("int const"), spaceAfter trails the
// last one ("const Foo::`vftable'").
func outputQualifiers(ob *outputBuffer, q Qualifiers, spaceBefore, spaceAfter bool) {
	needSpace := spaceBefore
	needSpace = outputQualifierIfPresent(ob, q, QualConst, "const", needSpace)
	needSpace = outputQualifierIfPresent(ob, q, QualVolatile, "volatile", needSpace)
	_ = outputQualifierIfPresent(ob, q, QualRestrict, "__restrict", needSpace)
	if spaceAfter && q&(QualConst|QualVolatile|QualRestrict) != 0 {
		ob.writeByte(' ')
	}
}

func outputCallingConvention(ob *outputBuffer, cc CallingConv) {
	outputSpaceIfNecessary(ob)
	if s, ok := callingConvNames[cc]; ok {
		ob.writeString(s)
	}
}

// outputType renders a full type: prefix half, then suffix half.
func outputType(t TypeNode, ob *outputBuffer, flags OutputFlags) {
	t.outputPre(ob, flags)
	t.outputPost(ob, flags)
}

func (id *identifierBase) outputTemplateParams(ob *outputBuffer, flags OutputFlags) {
	if id.TemplateParams == nil {
		return
	}
	ob.writeByte('<')
	id.TemplateParams.output(ob, flags)
	ob.writeByte('>')
}

// ---------------------------------------------------------------------------
// Container nodes
// ---------------------------------------------------------------------------

func (n *NodeArrayNode) output(ob *outputBuffer, flags OutputFlags) {
	n.outputJoined(ob, flags, ", ")
}

func (n *NodeArrayNode) outputJoined(ob *outputBuffer, flags OutputFlags, sep string) {
	for i, node := range n.Nodes {
		if i > 0 {
			ob.writeString(sep)
		}
		if node != nil {
			node.output(ob, flags)
		}
	}
}

func (n *QualifiedNameNode) output(ob *outputBuffer, flags OutputFlags) {
	n.Components.outputJoined(ob, flags, "::")
}

func (n *IntegerLiteralNode) output(ob *outputBuffer, flags OutputFlags) {
	if n.IsNegative {
		ob.writeByte('-')
	}
	ob.writeUint(n.Value)
}

func (n *TemplateParameterReferenceNode) output(ob *outputBuffer, flags OutputFlags) {
	if n.ThunkOffsetCount > 0 {
		ob.writeByte('{')
	} else if n.Affinity == AffinityPointer {
		ob.writeByte('&')
	}
	if n.Symbol != nil {
		n.Symbol.output(ob, flags)
		if n.ThunkOffsetCount > 0 {
			ob.writeString(", ")
		}
	}
	for i := 0; i < n.ThunkOffsetCount; i++ {
		if i > 0 {
			ob.writeString(", ")
		}
		ob.writeInt(n.ThunkOffsets[i])
	}
	if n.ThunkOffsetCount > 0 {
		ob.writeByte('}')
	}
}

// ---------------------------------------------------------------------------
// Identifier nodes
// ---------------------------------------------------------------------------

func (n *NamedIdentifierNode) output(ob *outputBuffer, flags OutputFlags) {
	ob.writeString(n.Name)
	n.outputTemplateParams(ob, flags)
}

func (n *IntrinsicFunctionIdentifierNode) output(ob *outputBuffer, flags OutputFlags) {
	if n.Operator != OpUnknown {
		ob.writeString(operatorNames[n.Operator])
	}
	n.outputTemplateParams(ob, flags)
}

func (n *StructorIdentifierNode) output(ob *outputBuffer, flags OutputFlags) {
	if n.IsDestructor {
		ob.writeByte('~')
	}
	n.Class.output(ob, flags)
	n.outputTemplateParams(ob, flags)
}

func (n *ConversionOperatorIdentifierNode) output(ob *outputBuffer, flags OutputFlags) {
	ob.writeString("operator")
	n.outputTemplateParams(ob, flags)
	ob.writeByte(' ')
	if n.TargetType != nil {
		outputType(n.TargetType, ob, flags)
	}
}

func (n *LiteralOperatorIdentifierNode) output(ob *outputBuffer, flags OutputFlags) {
	ob.writeString(`operator ""`)
	ob.writeString(n.Name)
	n.outputTemplateParams(ob, flags)
}

func (n *LocalStaticGuardIdentifierNode) output(ob *outputBuffer, flags OutputFlags) {
	if n.IsThread {
		ob.writeString("`local static thread guard'")
	} else {
		ob.writeString("`local static guard'")
	}
	if n.ScopeIndex > 0 {
		ob.writeByte('{')
		ob.writeUint(n.ScopeIndex)
		ob.writeByte('}')
	}
}

func (n *VcallThunkIdentifierNode) output(ob *outputBuffer, flags OutputFlags) {
	ob.writeString("`vcall'{")
	ob.writeUint(n.OffsetInVTable)
	ob.writeString(", {flat}}")
}

func (n *DynamicStructorIdentifierNode) output(ob *outputBuffer, flags OutputFlags) {
	if n.IsDestructor {
		ob.writeString("`dynamic atexit destructor for ")
	} else {
		ob.writeString("`dynamic initializer for ")
	}
	if n.Variable != nil {
		ob.writeByte('`')
		n.Variable.output(ob, flags)
		ob.writeString("''")
	} else {
		ob.writeByte('\'')
		n.Name.output(ob, flags)
		ob.writeString("''")
	}
}

func (n *RttiBaseClassDescriptorNode) output(ob *outputBuffer, flags OutputFlags) {
	ob.writeString("`RTTI Base Class Descriptor at (")
	ob.writeUint(n.NVOffset)
	ob.writeString(", ")
	ob.writeInt(n.VBPtrOffset)
	ob.writeString(", ")
	ob.writeUint(n.VBTableOffset)
	ob.writeString(", ")
	ob.writeUint(n.Flags)
	ob.writeString(")'")
}

// ---------------------------------------------------------------------------
// Type nodes
// ---------------------------------------------------------------------------

func (n *PrimitiveTypeNode) output(ob *outputBuffer, flags OutputFlags) { outputType(n, ob, flags) }

func (n *PrimitiveTypeNode) outputPre(ob *outputBuffer, flags OutputFlags) {
	ob.writeString(primitiveNames[n.Prim])
	outputQualifiers(ob, n.Quals, true, false)
}

func (n *PrimitiveTypeNode) outputPost(ob *outputBuffer, flags OutputFlags) {}

func (n *PointerTypeNode) output(ob *outputBuffer, flags OutputFlags) { outputType(n, ob, flags) }

func (n *PointerTypeNode) outputPre(ob *outputBuffer, flags OutputFlags) {
	// A pointed-to function's calling convention moves inside the
	// parentheses: "int (__cdecl *)(int)".
	if sig, ok := n.Pointee.(FunctionSignature); ok {
		sig.outputPre(ob, flags|OutputNoCallingConvention)
	} else {
		n.Pointee.outputPre(ob, flags)
	}

	outputSpaceIfNecessary(ob)

	if n.Quals&QualUnaligned != 0 {
		ob.writeString("__unaligned ")
	}

	switch p := n.Pointee.(type) {
	case *ArrayTypeNode:
		ob.writeByte('(')
	case FunctionSignature:
		ob.writeByte('(')
		outputCallingConvention(ob, p.base().CallConvention)
		ob.writeByte(' ')
	}

	if n.ClassParent != nil {
		n.ClassParent.output(ob, flags)
		ob.writeString("::")
	}

	switch n.Affinity {
	case AffinityPointer:
		ob.writeByte('*')
	case AffinityReference:
		ob.writeByte('&')
	case AffinityRValueReference:
		ob.writeString("&&")
	}
	outputQualifiers(ob, n.Quals, false, false)
}

func (n *PointerTypeNode) outputPost(ob *outputBuffer, flags OutputFlags) {
	switch n.Pointee.(type) {
	case *ArrayTypeNode, FunctionSignature:
		ob.writeByte(')')
	}
	n.Pointee.outputPost(ob, flags)
}

func (n *TagTypeNode) output(ob *outputBuffer, flags OutputFlags) { outputType(n, ob, flags) }

func (n *TagTypeNode) outputPre(ob *outputBuffer, flags OutputFlags) {
	if flags&OutputNoTagSpecifier == 0 {
		ob.writeString(tagNames[n.Tag])
		ob.writeByte(' ')
	}
	n.QualifiedName.output(ob, flags)
	outputQualifiers(ob, n.Quals, true, false)
}

func (n *TagTypeNode) outputPost(ob *outputBuffer, flags OutputFlags) {}

func (n *ArrayTypeNode) output(ob *outputBuffer, flags OutputFlags) { outputType(n, ob, flags) }

func (n *ArrayTypeNode) outputPre(ob *outputBuffer, flags OutputFlags) {
	n.ElementType.outputPre(ob, flags)
	outputQualifiers(ob, n.Quals, true, false)
}

func (n *ArrayTypeNode) outputPost(ob *outputBuffer, flags OutputFlags) {
	ob.writeByte('[')
	for i, dim := range n.Dimensions.Nodes {
		if i > 0 {
			ob.writeString("][")
		}
		// A zero dimension stands for an unknown bound and prints
		// as an empty pair of brackets.
		if lit, ok := dim.(*IntegerLiteralNode); ok && lit.Value == 0 && !lit.IsNegative {
			continue
		}
		dim.output(ob, flags)
	}
	ob.writeByte(']')
	n.ElementType.outputPost(ob, flags)
}

func (n *CustomTypeNode) output(ob *outputBuffer, flags OutputFlags) { outputType(n, ob, flags) }

func (n *CustomTypeNode) outputPre(ob *outputBuffer, flags OutputFlags) {
	n.Identifier.output(ob, flags)
}

func (n *CustomTypeNode) outputPost(ob *outputBuffer, flags OutputFlags) {}

func (n *FunctionSignatureNode) output(ob *outputBuffer, flags OutputFlags) {
	outputType(n, ob, flags)
}

func (n *FunctionSignatureNode) outputPre(ob *outputBuffer, flags OutputFlags) {
	if n.FunctionClass&FCGlobal == 0 && flags&OutputNoAccessSpecifier == 0 {
		if n.FunctionClass&FCPublic != 0 {
			ob.writeString("public: ")
		}
		if n.FunctionClass&FCProtected != 0 {
			ob.writeString("protected: ")
		}
		if n.FunctionClass&FCPrivate != 0 {
			ob.writeString("private: ")
		}
	}

	if flags&OutputNoMemberType == 0 {
		if n.FunctionClass&FCGlobal == 0 && n.FunctionClass&FCStatic != 0 {
			ob.writeString("static ")
		}
		if n.FunctionClass&FCVirtual != 0 {
			ob.writeString("virtual ")
		}
		if n.FunctionClass&FCExternC != 0 {
			ob.writeString("extern \"C\" ")
		}
	}

	if flags&OutputNoReturnType == 0 && n.ReturnType != nil {
		n.ReturnType.outputPre(ob, flags)
		ob.writeByte(' ')
	}

	if flags&OutputNoCallingConvention == 0 {
		outputCallingConvention(ob, n.CallConvention)
	}
}

func (n *FunctionSignatureNode) outputPost(ob *outputBuffer, flags OutputFlags) {
	if n.FunctionClass&FCNoParameterList == 0 {
		ob.writeByte('(')
		if n.Params != nil {
			n.Params.output(ob, flags)
		} else {
			ob.writeString("void")
		}
		if n.IsVariadic {
			if ob.last() != '(' {
				ob.writeString(", ")
			}
			ob.writeString("...")
		}
		ob.writeByte(')')
	}

	if n.Quals&QualConst != 0 {
		ob.writeString(" const")
	}
	if n.Quals&QualVolatile != 0 {
		ob.writeString(" volatile")
	}
	if n.Quals&QualRestrict != 0 {
		ob.writeString(" __restrict")
	}
	if n.Quals&QualUnaligned != 0 {
		ob.writeString(" __unaligned")
	}

	if n.IsNoexcept {
		ob.writeString(" noexcept")
	}

	switch n.RefQual {
	case RefQualReference:
		ob.writeString(" &")
	case RefQualRValueReference:
		ob.writeString(" &&")
	}

	if flags&OutputNoReturnType == 0 && n.ReturnType != nil {
		n.ReturnType.outputPost(ob, flags)
	}
}

func (n *ThunkSignatureNode) output(ob *outputBuffer, flags OutputFlags) {
	outputType(n, ob, flags)
}

func (n *ThunkSignatureNode) outputPre(ob *outputBuffer, flags OutputFlags) {
	ob.writeString("[thunk]: ")
	n.FunctionSignatureNode.outputPre(ob, flags)
}

func (n *ThunkSignatureNode) outputPost(ob *outputBuffer, flags OutputFlags) {
	if n.FunctionClass&FCStaticThisAdjust != 0 {
		ob.writeString("`adjustor{")
		ob.writeInt(n.ThisAdjust.StaticOffset)
		ob.writeString("}'")
	} else if n.FunctionClass&FCVirtualThisAdjust != 0 {
		if n.FunctionClass&FCVirtualThisAdjustEx != 0 {
			ob.writeString("`vtordispex{")
			ob.writeInt(n.ThisAdjust.VBPtrOffset)
			ob.writeString(", ")
			ob.writeInt(n.ThisAdjust.VBOffsetOffset)
			ob.writeString(", ")
			ob.writeInt(n.ThisAdjust.VtordispOffset)
			ob.writeString(", ")
			ob.writeInt(n.ThisAdjust.StaticOffset)
			ob.writeString("}'")
		} else {
			ob.writeString("`vtordisp{")
			ob.writeInt(n.ThisAdjust.VtordispOffset)
			ob.writeString(", ")
			ob.writeInt(n.ThisAdjust.StaticOffset)
			ob.writeString("}'")
		}
	}
	n.FunctionSignatureNode.outputPost(ob, flags)
}

// ---------------------------------------------------------------------------
// Symbol nodes
// ---------------------------------------------------------------------------

func (n *FunctionSymbolNode) output(ob *outputBuffer, flags OutputFlags) {
	n.Signature.outputPre(ob, flags)
	outputSpaceIfNecessary(ob)
	n.Name.output(ob, flags)
	n.Signature.outputPost(ob, flags)
}

func (n *VariableSymbolNode) output(ob *outputBuffer, flags OutputFlags) {
	access := ""
	isStatic := true
	switch n.SC {
	case StoragePrivateStatic:
		access = "private"
	case StorageProtectedStatic:
		access = "protected"
	case StoragePublicStatic:
		access = "public"
	default:
		isStatic = false
	}

	if flags&OutputNoAccessSpecifier == 0 && access != "" {
		ob.writeString(access)
		ob.writeString(": ")
	}
	if flags&OutputNoMemberType == 0 && isStatic {
		ob.writeString("static ")
	}

	if flags&OutputNoVariableType == 0 && n.Type != nil {
		n.Type.outputPre(ob, flags)
		outputSpaceIfNecessary(ob)
	}
	n.Name.output(ob, flags)
	if flags&OutputNoVariableType == 0 && n.Type != nil {
		n.Type.outputPost(ob, flags)
	}
}

func (n *SpecialTableSymbolNode) output(ob *outputBuffer, flags OutputFlags) {
	outputQualifiers(ob, n.Quals, false, true)
	n.Name.output(ob, flags)
	if n.TargetName != nil {
		ob.writeString("{for `")
		n.TargetName.output(ob, flags)
		ob.writeString("'}")
	}
}

func (n *LocalStaticGuardVariableNode) output(ob *outputBuffer, flags OutputFlags) {
	n.Name.output(ob, flags)
}

func (n *EncodedStringLiteralNode) output(ob *outputBuffer, flags OutputFlags) {
	switch n.Char {
	case CharWchar:
		ob.writeString(`L"`)
	case CharChar:
		ob.writeByte('"')
	case CharChar16:
		ob.writeString(`u"`)
	case CharChar32:
		ob.writeString(`U"`)
	}
	ob.writeString(n.DecodedString)
	ob.writeByte('"')
	if n.IsTruncated {
		ob.writeString("...")
	}
}

func (n *MD5SymbolNode) output(ob *outputBuffer, flags OutputFlags) {
	n.Name.output(ob, flags)
}
