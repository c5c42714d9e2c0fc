package msvc

import "fmt"

// NodeKind identifies the type of AST node.
type NodeKind int

const (
	NodeKindUnknown NodeKind = iota
	// Identifier nodes
	NodeKindNamedIdentifier
	NodeKindIntrinsicFunctionIdentifier
	NodeKindConversionOperatorIdentifier
	NodeKindStructorIdentifier
	NodeKindLiteralOperatorIdentifier
	NodeKindLocalStaticGuardIdentifier
	NodeKindVcallThunkIdentifier
	NodeKindDynamicStructorIdentifier
	NodeKindRttiBaseClassDescriptor
	// Type nodes
	NodeKindPrimitiveType
	NodeKindPointerType
	NodeKindArrayType
	NodeKindTagType
	NodeKindCustomType
	NodeKindFunctionSignature
	NodeKindThunkSignature
	// Symbol nodes
	NodeKindFunctionSymbol
	NodeKindVariableSymbol
	NodeKindSpecialTableSymbol
	NodeKindLocalStaticGuardVariable
	NodeKindEncodedStringLiteral
	NodeKindMD5Symbol
	// Container nodes
	NodeKindQualifiedName
	NodeKindNodeArray
	NodeKindIntegerLiteral
	NodeKindTemplateParameterReference
)

var nodeKindNames = map[NodeKind]string{
	NodeKindUnknown:                      "Unknown",
	NodeKindNamedIdentifier:              "NamedIdentifier",
	NodeKindIntrinsicFunctionIdentifier:  "IntrinsicFunctionIdentifier",
	NodeKindConversionOperatorIdentifier: "ConversionOperatorIdentifier",
	NodeKindStructorIdentifier:           "StructorIdentifier",
	NodeKindLiteralOperatorIdentifier:    "LiteralOperatorIdentifier",
	NodeKindLocalStaticGuardIdentifier:   "LocalStaticGuardIdentifier",
	NodeKindVcallThunkIdentifier:         "VcallThunkIdentifier",
	NodeKindDynamicStructorIdentifier:    "DynamicStructorIdentifier",
	NodeKindRttiBaseClassDescriptor:      "RttiBaseClassDescriptor",
	NodeKindPrimitiveType:                "PrimitiveType",
	NodeKindPointerType:                  "PointerType",
	NodeKindArrayType:                    "ArrayType",
	NodeKindTagType:                      "TagType",
	NodeKindCustomType:                   "CustomType",
	NodeKindFunctionSignature:            "FunctionSignature",
	NodeKindThunkSignature:               "ThunkSignature",
	NodeKindFunctionSymbol:               "FunctionSymbol",
	NodeKindVariableSymbol:               "VariableSymbol",
	NodeKindSpecialTableSymbol:           "SpecialTableSymbol",
	NodeKindLocalStaticGuardVariable:     "LocalStaticGuardVariable",
	NodeKindEncodedStringLiteral:         "EncodedStringLiteral",
	NodeKindMD5Symbol:                    "MD5Symbol",
	NodeKindQualifiedName:                "QualifiedName",
	NodeKindNodeArray:                    "NodeArray",
	NodeKindIntegerLiteral:               "IntegerLiteral",
	NodeKindTemplateParameterReference:   "TemplateParameterReference",
}

func (k NodeKind) String() string {
	if s, ok := nodeKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// Node is the interface implemented by all AST nodes. The node set is
// closed: only types in this package satisfy it.
type Node interface {
	Kind() NodeKind
	fmt.Stringer

	output(ob *outputBuffer, flags OutputFlags)
}

// TypeNode is the interface implemented by nodes that denote a C++ type.
// Type rendering is split into a prefix and a suffix half so that
// declarator nesting ("int (*x)[10]") composes correctly.
type TypeNode interface {
	Node
	quals() Qualifiers
	addQuals(q Qualifiers)
	outputPre(ob *outputBuffer, flags OutputFlags)
	outputPost(ob *outputBuffer, flags OutputFlags)
}

// typeBase carries the cv-qualifiers shared by every type node.
type typeBase struct {
	Quals Qualifiers
}

func (t *typeBase) quals() Qualifiers     { return t.Quals }
func (t *typeBase) addQuals(q Qualifiers) { t.Quals |= q }

// IdentifierNode is the interface implemented by unqualified name forms.
type IdentifierNode interface {
	Node
	templateParams() *NodeArrayNode
	setTemplateParams(params *NodeArrayNode)
}

// identifierBase carries the template argument list shared by every
// identifier node.
type identifierBase struct {
	TemplateParams *NodeArrayNode
}

func (id *identifierBase) templateParams() *NodeArrayNode { return id.TemplateParams }
func (id *identifierBase) setTemplateParams(params *NodeArrayNode) {
	id.TemplateParams = params
}

// SymbolNode is the interface implemented by top-level symbol nodes, the
// results of a successful parse.
type SymbolNode interface {
	Node
	symName() *QualifiedNameNode
	setSymName(qn *QualifiedNameNode)
}

// symbolBase carries the fully qualified name shared by every symbol node.
type symbolBase struct {
	Name *QualifiedNameNode
}

func (s *symbolBase) symName() *QualifiedNameNode { return s.Name }

func (s *symbolBase) setSymName(qn *QualifiedNameNode) { s.Name = qn }

// Qualifiers is a bitset of cv- and Microsoft extension qualifiers.
type Qualifiers uint8

const (
	QualNone      Qualifiers = 0
	QualConst     Qualifiers = 1 << 0
	QualVolatile  Qualifiers = 1 << 1
	QualFar       Qualifiers = 1 << 2
	QualHuge      Qualifiers = 1 << 3
	QualUnaligned Qualifiers = 1 << 4
	QualRestrict  Qualifiers = 1 << 5
	QualPointer64 Qualifiers = 1 << 6
)

func (q Qualifiers) String() string {
	var ob outputBuffer
	outputQualifiers(&ob, q, false, false)
	return ob.String()
}

// StorageClass describes how a variable symbol is stored.
type StorageClass int

const (
	StorageNone StorageClass = iota
	StoragePrivateStatic
	StorageProtectedStatic
	StoragePublicStatic
	StorageGlobal
	StorageFunctionLocalStatic
)

// CallingConv identifies a calling convention.
type CallingConv int

const (
	CallNone CallingConv = iota
	CallCdecl
	CallPascal
	CallThiscall
	CallStdcall
	CallFastcall
	CallClrcall
	CallEabi
	CallVectorcall
	CallRegcall
	CallSwift
	CallSwiftAsync
)

var callingConvNames = map[CallingConv]string{
	CallCdecl:      "__cdecl",
	CallPascal:     "__pascal",
	CallThiscall:   "__thiscall",
	CallStdcall:    "__stdcall",
	CallFastcall:   "__fastcall",
	CallClrcall:    "__clrcall",
	CallEabi:       "__eabi",
	CallVectorcall: "__vectorcall",
	CallRegcall:    "__regcall",
	CallSwift:      "__attribute__((__swiftcall__)) ",
	CallSwiftAsync: "__attribute__((__swiftasynccall__)) ",
}

func (c CallingConv) String() string { return callingConvNames[c] }

// FuncClass is a bitset describing a function symbol's access, dispatch
// and thunk properties.
type FuncClass uint16

const (
	FCNone                FuncClass = 0
	FCPublic              FuncClass = 1 << 0
	FCProtected           FuncClass = 1 << 1
	FCPrivate             FuncClass = 1 << 2
	FCGlobal              FuncClass = 1 << 3
	FCStatic              FuncClass = 1 << 4
	FCVirtual             FuncClass = 1 << 5
	FCFar                 FuncClass = 1 << 6
	FCExternC             FuncClass = 1 << 7
	FCNoParameterList     FuncClass = 1 << 8
	FCVirtualThisAdjust   FuncClass = 1 << 9
	FCVirtualThisAdjustEx FuncClass = 1 << 10
	FCStaticThisAdjust    FuncClass = 1 << 11
)

// TagKind identifies the flavor of a user-defined type.
type TagKind int

const (
	TagClass TagKind = iota
	TagStruct
	TagUnion
	TagEnum
)

var tagNames = map[TagKind]string{
	TagClass:  "class",
	TagStruct: "struct",
	TagUnion:  "union",
	TagEnum:   "enum",
}

func (t TagKind) String() string { return tagNames[t] }

// PointerAffinity distinguishes pointers from the two reference forms.
type PointerAffinity int

const (
	AffinityNone PointerAffinity = iota
	AffinityPointer
	AffinityReference
	AffinityRValueReference
)

// FuncRefQualifier is a member function's ref-qualifier.
type FuncRefQualifier int

const (
	RefQualNone FuncRefQualifier = iota
	RefQualReference
	RefQualRValueReference
)

// CharKind identifies the character type of an encoded string literal.
type CharKind int

const (
	CharChar CharKind = iota
	CharChar16
	CharChar32
	CharWchar
)

// PrimitiveKind identifies a built-in type.
type PrimitiveKind int

const (
	PrimVoid PrimitiveKind = iota
	PrimBool
	PrimChar
	PrimSchar
	PrimUchar
	PrimChar8
	PrimChar16
	PrimChar32
	PrimShort
	PrimUshort
	PrimInt
	PrimUint
	PrimLong
	PrimUlong
	PrimInt64
	PrimUint64
	PrimWchar
	PrimFloat
	PrimDouble
	PrimLdouble
	PrimNullptr
)

var primitiveNames = map[PrimitiveKind]string{
	PrimVoid:    "void",
	PrimBool:    "bool",
	PrimChar:    "char",
	PrimSchar:   "signed char",
	PrimUchar:   "unsigned char",
	PrimChar8:   "char8_t",
	PrimChar16:  "char16_t",
	PrimChar32:  "char32_t",
	PrimShort:   "short",
	PrimUshort:  "unsigned short",
	PrimInt:     "int",
	PrimUint:    "unsigned int",
	PrimLong:    "long",
	PrimUlong:   "unsigned long",
	PrimInt64:   "__int64",
	PrimUint64:  "unsigned __int64",
	PrimWchar:   "wchar_t",
	PrimFloat:   "float",
	PrimDouble:  "double",
	PrimLdouble: "long double",
	PrimNullptr: "std::nullptr_t",
}

func (p PrimitiveKind) String() string { return primitiveNames[p] }

// OperatorKind identifies operators and compiler-generated helper
// functions spelled as `?` codes in mangled names.
type OperatorKind int

const (
	OpUnknown OperatorKind = iota
	OpNew
	OpDelete
	OpAssign
	OpRightShift
	OpLeftShift
	OpLogicalNot
	OpEqual
	OpNotEqual
	OpSubscript
	OpArrow
	OpDereference
	OpIncrement
	OpDecrement
	OpMinus
	OpPlus
	OpAddressOf
	OpArrowDeref
	OpDivide
	OpModulo
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpComma
	OpCall
	OpComplement
	OpXor
	OpBitwiseOr
	OpLogicalAnd
	OpLogicalOr
	OpMultiplyAssign
	OpPlusAssign
	OpMinusAssign
	OpDivideAssign
	OpModuloAssign
	OpRightShiftAssign
	OpLeftShiftAssign
	OpAndAssign
	OpOrAssign
	OpXorAssign
	OpVBaseDtor
	OpVectorDeletingDtor
	OpDefaultCtorClosure
	OpScalarDeletingDtor
	OpVectorCtorIterator
	OpVectorDtorIterator
	OpVectorVbaseCtorIterator
	OpVirtualDisplacementMap
	OpEHVectorCtorIterator
	OpEHVectorDtorIterator
	OpEHVectorVbaseCtorIterator
	OpCopyCtorClosure
	OpLocalVFTableCtorClosure
	OpNewArray
	OpDeleteArray
	OpManagedVectorCtorIterator
	OpManagedVectorDtorIterator
	OpEHVectorCopyCtorIterator
	OpEHVectorVbaseCopyCtorIterator
	OpVectorCopyCtorIterator
	OpVectorVbaseCopyCtorIterator
	OpManagedVectorVbaseCopyCtorIterator
	OpCoAwait
	OpSpaceship
)

var operatorNames = map[OperatorKind]string{
	OpNew:                                "operator new",
	OpDelete:                             "operator delete",
	OpAssign:                             "operator=",
	OpRightShift:                         "operator>>",
	OpLeftShift:                          "operator<<",
	OpLogicalNot:                         "operator!",
	OpEqual:                              "operator==",
	OpNotEqual:                           "operator!=",
	OpSubscript:                          "operator[]",
	OpArrow:                              "operator->",
	OpDereference:                        "operator*",
	OpIncrement:                          "operator++",
	OpDecrement:                          "operator--",
	OpMinus:                              "operator-",
	OpPlus:                               "operator+",
	OpAddressOf:                          "operator&",
	OpArrowDeref:                         "operator->*",
	OpDivide:                             "operator/",
	OpModulo:                             "operator%",
	OpLess:                               "operator<",
	OpLessEqual:                          "operator<=",
	OpGreater:                            "operator>",
	OpGreaterEqual:                       "operator>=",
	OpComma:                              "operator,",
	OpCall:                               "operator()",
	OpComplement:                         "operator~",
	OpXor:                                "operator^",
	OpBitwiseOr:                          "operator|",
	OpLogicalAnd:                         "operator&&",
	OpLogicalOr:                          "operator||",
	OpMultiplyAssign:                     "operator*=",
	OpPlusAssign:                         "operator+=",
	OpMinusAssign:                        "operator-=",
	OpDivideAssign:                       "operator/=",
	OpModuloAssign:                       "operator%=",
	OpRightShiftAssign:                   "operator>>=",
	OpLeftShiftAssign:                    "operator<<=",
	OpAndAssign:                          "operator&=",
	OpOrAssign:                           "operator|=",
	OpXorAssign:                          "operator^=",
	OpVBaseDtor:                          "`vbase destructor'",
	OpVectorDeletingDtor:                 "`vector deleting destructor'",
	OpDefaultCtorClosure:                 "`default constructor closure'",
	OpScalarDeletingDtor:                 "`scalar deleting destructor'",
	OpVectorCtorIterator:                 "`vector constructor iterator'",
	OpVectorDtorIterator:                 "`vector destructor iterator'",
	OpVectorVbaseCtorIterator:            "`vector vbase constructor iterator'",
	OpVirtualDisplacementMap:             "`virtual displacement map'",
	OpEHVectorCtorIterator:               "`eh vector constructor iterator'",
	OpEHVectorDtorIterator:               "`eh vector destructor iterator'",
	OpEHVectorVbaseCtorIterator:          "`eh vector vbase constructor iterator'",
	OpCopyCtorClosure:                    "`copy constructor closure'",
	OpLocalVFTableCtorClosure:            "`local vftable constructor closure'",
	OpNewArray:                           "operator new[]",
	OpDeleteArray:                        "operator delete[]",
	OpManagedVectorCtorIterator:          "`managed vector constructor iterator'",
	OpManagedVectorDtorIterator:          "`managed vector destructor iterator'",
	OpEHVectorCopyCtorIterator:           "`eh vector copy constructor iterator'",
	OpEHVectorVbaseCopyCtorIterator:      "`eh vector vbase copy constructor iterator'",
	OpVectorCopyCtorIterator:             "`vector copy constructor iterator'",
	OpVectorVbaseCopyCtorIterator:        "`vector vbase copy constructor iterator'",
	OpManagedVectorVbaseCopyCtorIterator: "`managed vector vbase copy constructor iterator'",
	OpCoAwait:                            "operator co_await",
	OpSpaceship:                          "operator<=>",
}

func (o OperatorKind) String() string { return operatorNames[o] }

// NodeArrayNode is an ordered list of nodes (scope components, parameter
// lists, template arguments, array dimensions).
type NodeArrayNode struct {
	Nodes []Node
}

func (n *NodeArrayNode) Kind() NodeKind { return NodeKindNodeArray }
func (n *NodeArrayNode) String() string { return render(n) }

// QualifiedNameNode is a name with its enclosing scopes, outermost first.
type QualifiedNameNode struct {
	Components *NodeArrayNode
}

func (n *QualifiedNameNode) Kind() NodeKind { return NodeKindQualifiedName }
func (n *QualifiedNameNode) String() string { return render(n) }

// UnqualifiedIdentifier returns the innermost name component.
func (n *QualifiedNameNode) UnqualifiedIdentifier() IdentifierNode {
	last := n.Components.Nodes[len(n.Components.Nodes)-1]
	return last.(IdentifierNode)
}

// IntegerLiteralNode is a numeric literal, e.g. a template argument or an
// array dimension.
type IntegerLiteralNode struct {
	Value      uint64
	IsNegative bool
}

func (n *IntegerLiteralNode) Kind() NodeKind { return NodeKindIntegerLiteral }
func (n *IntegerLiteralNode) String() string { return render(n) }

// TemplateParameterReferenceNode is a non-type template argument that
// refers to a symbol, such as a pointer to member.
type TemplateParameterReferenceNode struct {
	Symbol           SymbolNode
	ThunkOffsets     [3]int64
	ThunkOffsetCount int
	Affinity         PointerAffinity
	IsMemberPointer  bool
}

func (n *TemplateParameterReferenceNode) Kind() NodeKind {
	return NodeKindTemplateParameterReference
}
func (n *TemplateParameterReferenceNode) String() string { return render(n) }

// NamedIdentifierNode is a plain identifier.
type NamedIdentifierNode struct {
	identifierBase
	Name string
}

func (n *NamedIdentifierNode) Kind() NodeKind { return NodeKindNamedIdentifier }
func (n *NamedIdentifierNode) String() string { return render(n) }

// IntrinsicFunctionIdentifierNode is an operator or compiler-generated
// helper name.
type IntrinsicFunctionIdentifierNode struct {
	identifierBase
	Operator OperatorKind
}

func (n *IntrinsicFunctionIdentifierNode) Kind() NodeKind {
	return NodeKindIntrinsicFunctionIdentifier
}
func (n *IntrinsicFunctionIdentifierNode) String() string { return render(n) }

// StructorIdentifierNode is a constructor or destructor name. Class is
// filled in from the enclosing scope once the full name is known.
type StructorIdentifierNode struct {
	identifierBase
	Class        IdentifierNode
	IsDestructor bool
}

func (n *StructorIdentifierNode) Kind() NodeKind { return NodeKindStructorIdentifier }
func (n *StructorIdentifierNode) String() string { return render(n) }

// ConversionOperatorIdentifierNode is an "operator T" name. TargetType is
// filled in from the function signature's return slot.
type ConversionOperatorIdentifierNode struct {
	identifierBase
	TargetType TypeNode
}

func (n *ConversionOperatorIdentifierNode) Kind() NodeKind {
	return NodeKindConversionOperatorIdentifier
}
func (n *ConversionOperatorIdentifierNode) String() string { return render(n) }

// LiteralOperatorIdentifierNode is an `operator ""suffix` name.
type LiteralOperatorIdentifierNode struct {
	identifierBase
	Name string
}

func (n *LiteralOperatorIdentifierNode) Kind() NodeKind {
	return NodeKindLiteralOperatorIdentifier
}
func (n *LiteralOperatorIdentifierNode) String() string { return render(n) }

// LocalStaticGuardIdentifierNode names the guard variable of a
// function-local static.
type LocalStaticGuardIdentifierNode struct {
	identifierBase
	IsThread   bool
	ScopeIndex uint64
}

func (n *LocalStaticGuardIdentifierNode) Kind() NodeKind {
	return NodeKindLocalStaticGuardIdentifier
}
func (n *LocalStaticGuardIdentifierNode) String() string { return render(n) }

// VcallThunkIdentifierNode names a virtual call thunk.
type VcallThunkIdentifierNode struct {
	identifierBase
	OffsetInVTable uint64
}

func (n *VcallThunkIdentifierNode) Kind() NodeKind { return NodeKindVcallThunkIdentifier }
func (n *VcallThunkIdentifierNode) String() string { return render(n) }

// DynamicStructorIdentifierNode names a dynamic initializer or atexit
// destructor stub.
type DynamicStructorIdentifierNode struct {
	identifierBase
	Variable     *VariableSymbolNode
	Name         *QualifiedNameNode
	IsDestructor bool
}

func (n *DynamicStructorIdentifierNode) Kind() NodeKind {
	return NodeKindDynamicStructorIdentifier
}
func (n *DynamicStructorIdentifierNode) String() string { return render(n) }

// RttiBaseClassDescriptorNode names an RTTI base class descriptor with its
// layout offsets.
type RttiBaseClassDescriptorNode struct {
	identifierBase
	NVOffset      uint64
	VBPtrOffset   int64
	VBTableOffset uint64
	Flags         uint64
}

func (n *RttiBaseClassDescriptorNode) Kind() NodeKind {
	return NodeKindRttiBaseClassDescriptor
}
func (n *RttiBaseClassDescriptorNode) String() string { return render(n) }

// PrimitiveTypeNode is a built-in type.
type PrimitiveTypeNode struct {
	typeBase
	Prim PrimitiveKind
}

func (n *PrimitiveTypeNode) Kind() NodeKind { return NodeKindPrimitiveType }
func (n *PrimitiveTypeNode) String() string { return render(n) }

// PointerTypeNode is a pointer, reference or rvalue reference, including
// pointers to members when ClassParent is set.
type PointerTypeNode struct {
	typeBase
	Affinity    PointerAffinity
	ClassParent *QualifiedNameNode
	Pointee     TypeNode
}

func (n *PointerTypeNode) Kind() NodeKind { return NodeKindPointerType }
func (n *PointerTypeNode) String() string { return render(n) }

// TagTypeNode is a class, struct, union or enum type.
type TagTypeNode struct {
	typeBase
	QualifiedName *QualifiedNameNode
	Tag           TagKind
}

func (n *TagTypeNode) Kind() NodeKind { return NodeKindTagType }
func (n *TagTypeNode) String() string { return render(n) }

// ArrayTypeNode is a (possibly multi-dimensional) array type.
type ArrayTypeNode struct {
	typeBase
	Dimensions  *NodeArrayNode
	ElementType TypeNode
}

func (n *ArrayTypeNode) Kind() NodeKind { return NodeKindArrayType }
func (n *ArrayTypeNode) String() string { return render(n) }

// CustomTypeNode is a vendor-extended type spelled `?name@`.
type CustomTypeNode struct {
	typeBase
	Identifier IdentifierNode
}

func (n *CustomTypeNode) Kind() NodeKind { return NodeKindCustomType }
func (n *CustomTypeNode) String() string { return render(n) }

// FunctionSignatureNode is the type half of a function: convention,
// class, return type and parameters.
type FunctionSignatureNode struct {
	typeBase
	CallConvention CallingConv
	FunctionClass  FuncClass
	RefQual        FuncRefQualifier
	ReturnType     TypeNode
	IsVariadic     bool
	Params         *NodeArrayNode
	IsNoexcept     bool
}

func (n *FunctionSignatureNode) Kind() NodeKind { return NodeKindFunctionSignature }
func (n *FunctionSignatureNode) String() string { return render(n) }

// FunctionSignature is implemented by plain and thunk signatures.
type FunctionSignature interface {
	TypeNode
	base() *FunctionSignatureNode
}

func (n *FunctionSignatureNode) base() *FunctionSignatureNode { return n }

// ThisAdjustor carries the displacement applied to `this` by an adjustor
// or vtordisp thunk.
type ThisAdjustor struct {
	StaticOffset   int64
	VBPtrOffset    int64
	VBOffsetOffset int64
	VtordispOffset int64
}

// ThunkSignatureNode is a function signature carrying thunk adjustment
// metadata.
type ThunkSignatureNode struct {
	FunctionSignatureNode
	ThisAdjust ThisAdjustor
}

func (n *ThunkSignatureNode) Kind() NodeKind { return NodeKindThunkSignature }
func (n *ThunkSignatureNode) String() string { return render(n) }

// FunctionSymbolNode is a demangled function.
type FunctionSymbolNode struct {
	symbolBase
	Signature FunctionSignature
}

func (n *FunctionSymbolNode) Kind() NodeKind { return NodeKindFunctionSymbol }
func (n *FunctionSymbolNode) String() string { return render(n) }

// VariableSymbolNode is a demangled variable.
type VariableSymbolNode struct {
	symbolBase
	SC   StorageClass
	Type TypeNode
}

func (n *VariableSymbolNode) Kind() NodeKind { return NodeKindVariableSymbol }
func (n *VariableSymbolNode) String() string { return render(n) }

// SpecialTableSymbolNode is a compiler-generated table such as a vftable
// or an RTTI complete object locator.
type SpecialTableSymbolNode struct {
	symbolBase
	TargetName *QualifiedNameNode
	Quals      Qualifiers
}

func (n *SpecialTableSymbolNode) Kind() NodeKind { return NodeKindSpecialTableSymbol }
func (n *SpecialTableSymbolNode) String() string { return render(n) }

// LocalStaticGuardVariableNode is the guard variable for a function-local
// static initialization.
type LocalStaticGuardVariableNode struct {
	symbolBase
	IsVisible bool
}

func (n *LocalStaticGuardVariableNode) Kind() NodeKind {
	return NodeKindLocalStaticGuardVariable
}
func (n *LocalStaticGuardVariableNode) String() string { return render(n) }

// EncodedStringLiteralNode is a string literal constant with its decoded,
// printable form.
type EncodedStringLiteralNode struct {
	symbolBase
	DecodedString string
	IsTruncated   bool
	Char          CharKind
}

func (n *EncodedStringLiteralNode) Kind() NodeKind { return NodeKindEncodedStringLiteral }
func (n *EncodedStringLiteralNode) String() string { return render(n) }

// MD5SymbolNode is a name whose content was replaced by an MD5 hash; it
// cannot be demangled further and renders as-is.
type MD5SymbolNode struct {
	symbolBase
}

func (n *MD5SymbolNode) Kind() NodeKind { return NodeKindMD5Symbol }
func (n *MD5SymbolNode) String() string { return render(n) }
