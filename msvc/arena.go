package msvc

import "strings"

// slabSize is the number of values handed out per allocation batch.
const slabSize = 64

// slab batch-allocates values of one node type. When the current batch is
// exhausted a fresh one is made; earlier batches stay reachable through
// the pointers already handed out, so the garbage collector frees them
// together with the parse result and never before.
type slab[T any] struct {
	items []T
	idx   int
}

func (s *slab[T]) alloc() *T {
	if s.idx == len(s.items) {
		s.items = make([]T, slabSize)
		s.idx = 0
	}
	p := &s.items[s.idx]
	s.idx++
	return p
}

func (s *slab[T]) reset() {
	s.items = nil
	s.idx = 0
}

// Arena owns every AST node produced by one Demangler session. Parsing a
// symbol allocates many small nodes; grouping them into typed slabs keeps
// the per-node cost to a pointer bump in the common case. The zero value
// is ready to use.
type Arena struct {
	nodeArrays        slab[NodeArrayNode]
	qualifiedNames    slab[QualifiedNameNode]
	integerLiterals   slab[IntegerLiteralNode]
	templateParamRefs slab[TemplateParameterReferenceNode]

	namedIdentifiers       slab[NamedIdentifierNode]
	intrinsicIdentifiers   slab[IntrinsicFunctionIdentifierNode]
	structorIdentifiers    slab[StructorIdentifierNode]
	conversionIdentifiers  slab[ConversionOperatorIdentifierNode]
	literalOpIdentifiers   slab[LiteralOperatorIdentifierNode]
	localGuardIdentifiers  slab[LocalStaticGuardIdentifierNode]
	vcallThunkIdentifiers  slab[VcallThunkIdentifierNode]
	dynStructorIdentifiers slab[DynamicStructorIdentifierNode]
	rttiBaseClassDescs     slab[RttiBaseClassDescriptorNode]

	primitiveTypes slab[PrimitiveTypeNode]
	pointerTypes   slab[PointerTypeNode]
	tagTypes       slab[TagTypeNode]
	arrayTypes     slab[ArrayTypeNode]
	customTypes    slab[CustomTypeNode]
	funcSignatures slab[FunctionSignatureNode]
	thunkSigs      slab[ThunkSignatureNode]

	funcSymbols     slab[FunctionSymbolNode]
	variableSymbols slab[VariableSymbolNode]
	specialTables   slab[SpecialTableSymbolNode]
	localGuardVars  slab[LocalStaticGuardVariableNode]
	stringLiterals  slab[EncodedStringLiteralNode]
	md5Symbols      slab[MD5SymbolNode]

	// nodeBuf backs the []Node slices carved by carveNodes.
	nodeBuf []Node
	nodeIdx int

	interned map[string]string
}

// Reset drops every allocation so the arena can back a new session.
// Nodes handed out earlier remain valid; they simply no longer belong to
// this arena.
func (a *Arena) Reset() {
	a.nodeArrays.reset()
	a.qualifiedNames.reset()
	a.integerLiterals.reset()
	a.templateParamRefs.reset()
	a.namedIdentifiers.reset()
	a.intrinsicIdentifiers.reset()
	a.structorIdentifiers.reset()
	a.conversionIdentifiers.reset()
	a.literalOpIdentifiers.reset()
	a.localGuardIdentifiers.reset()
	a.vcallThunkIdentifiers.reset()
	a.dynStructorIdentifiers.reset()
	a.rttiBaseClassDescs.reset()
	a.primitiveTypes.reset()
	a.pointerTypes.reset()
	a.tagTypes.reset()
	a.arrayTypes.reset()
	a.customTypes.reset()
	a.funcSignatures.reset()
	a.thunkSigs.reset()
	a.funcSymbols.reset()
	a.variableSymbols.reset()
	a.specialTables.reset()
	a.localGuardVars.reset()
	a.stringLiterals.reset()
	a.md5Symbols.reset()
	a.nodeBuf = nil
	a.nodeIdx = 0
	a.interned = nil
}

// carveNodes returns a zeroed []Node of length n backed by the arena. The
// capacity is clipped to n so appends by a caller cannot bleed into a
// neighboring carve.
func (a *Arena) carveNodes(n int) []Node {
	if n == 0 {
		return nil
	}
	if len(a.nodeBuf)-a.nodeIdx < n {
		size := slabSize
		if n > size {
			size = n
		}
		a.nodeBuf = make([]Node, size)
		a.nodeIdx = 0
	}
	s := a.nodeBuf[a.nodeIdx : a.nodeIdx+n : a.nodeIdx+n]
	a.nodeIdx += n
	return s
}

// Intern returns a stable copy of s owned by the arena. Node text must
// not alias transient input buffers, and repeated scope names collapse to
// one backing string.
func (a *Arena) Intern(s string) string {
	if v, ok := a.interned[s]; ok {
		return v
	}
	v := strings.Clone(s)
	if a.interned == nil {
		a.interned = make(map[string]string)
	}
	a.interned[v] = v
	return v
}

// NodeArray copies nodes into arena-owned storage. A non-nil empty array
// is distinct from nil: an empty parameter list renders as "", a nil one
// as "void".
func (a *Arena) NodeArray(nodes []Node) *NodeArrayNode {
	arr := a.nodeArrays.alloc()
	if len(nodes) > 0 {
		owned := a.carveNodes(len(nodes))
		copy(owned, nodes)
		arr.Nodes = owned
	}
	return arr
}

func (a *Arena) QualifiedName(components *NodeArrayNode) *QualifiedNameNode {
	qn := a.qualifiedNames.alloc()
	qn.Components = components
	return qn
}

// SynthesizedQualifiedName wraps a single synthesized identifier, e.g.
// "`vftable'", as a qualified name with one component.
func (a *Arena) SynthesizedQualifiedName(ident IdentifierNode) *QualifiedNameNode {
	return a.QualifiedName(a.NodeArray([]Node{ident}))
}

func (a *Arena) IntegerLiteral(value uint64, isNegative bool) *IntegerLiteralNode {
	n := a.integerLiterals.alloc()
	n.Value = value
	n.IsNegative = isNegative
	return n
}

func (a *Arena) TemplateParameterReference() *TemplateParameterReferenceNode {
	return a.templateParamRefs.alloc()
}

func (a *Arena) NamedIdentifier(name string) *NamedIdentifierNode {
	n := a.namedIdentifiers.alloc()
	n.Name = name
	return n
}

func (a *Arena) IntrinsicFunctionIdentifier(op OperatorKind) *IntrinsicFunctionIdentifierNode {
	n := a.intrinsicIdentifiers.alloc()
	n.Operator = op
	return n
}

func (a *Arena) StructorIdentifier(isDestructor bool) *StructorIdentifierNode {
	n := a.structorIdentifiers.alloc()
	n.IsDestructor = isDestructor
	return n
}

func (a *Arena) ConversionOperatorIdentifier() *ConversionOperatorIdentifierNode {
	return a.conversionIdentifiers.alloc()
}

func (a *Arena) LiteralOperatorIdentifier(name string) *LiteralOperatorIdentifierNode {
	n := a.literalOpIdentifiers.alloc()
	n.Name = name
	return n
}

func (a *Arena) LocalStaticGuardIdentifier(isThread bool) *LocalStaticGuardIdentifierNode {
	n := a.localGuardIdentifiers.alloc()
	n.IsThread = isThread
	return n
}

func (a *Arena) VcallThunkIdentifier() *VcallThunkIdentifierNode {
	return a.vcallThunkIdentifiers.alloc()
}

func (a *Arena) DynamicStructorIdentifier(isDestructor bool) *DynamicStructorIdentifierNode {
	n := a.dynStructorIdentifiers.alloc()
	n.IsDestructor = isDestructor
	return n
}

func (a *Arena) RttiBaseClassDescriptor() *RttiBaseClassDescriptorNode {
	return a.rttiBaseClassDescs.alloc()
}

func (a *Arena) PrimitiveType(prim PrimitiveKind) *PrimitiveTypeNode {
	n := a.primitiveTypes.alloc()
	n.Prim = prim
	return n
}

func (a *Arena) PointerType(affinity PointerAffinity) *PointerTypeNode {
	n := a.pointerTypes.alloc()
	n.Affinity = affinity
	return n
}

func (a *Arena) TagType(tag TagKind) *TagTypeNode {
	n := a.tagTypes.alloc()
	n.Tag = tag
	return n
}

func (a *Arena) ArrayType() *ArrayTypeNode {
	return a.arrayTypes.alloc()
}

func (a *Arena) CustomType(ident IdentifierNode) *CustomTypeNode {
	n := a.customTypes.alloc()
	n.Identifier = ident
	return n
}

func (a *Arena) FunctionSignature() *FunctionSignatureNode {
	return a.funcSignatures.alloc()
}

func (a *Arena) ThunkSignature() *ThunkSignatureNode {
	return a.thunkSigs.alloc()
}

func (a *Arena) FunctionSymbol(sig FunctionSignature) *FunctionSymbolNode {
	n := a.funcSymbols.alloc()
	n.Signature = sig
	return n
}

func (a *Arena) VariableSymbol(sc StorageClass, ty TypeNode) *VariableSymbolNode {
	n := a.variableSymbols.alloc()
	n.SC = sc
	n.Type = ty
	return n
}

func (a *Arena) SpecialTableSymbol() *SpecialTableSymbolNode {
	return a.specialTables.alloc()
}

func (a *Arena) LocalStaticGuardVariable(isVisible bool) *LocalStaticGuardVariableNode {
	n := a.localGuardVars.alloc()
	n.IsVisible = isVisible
	return n
}

func (a *Arena) EncodedStringLiteral() *EncodedStringLiteralNode {
	return a.stringLiterals.alloc()
}

func (a *Arena) MD5Symbol(name *QualifiedNameNode) *MD5SymbolNode {
	n := a.md5Symbols.alloc()
	n.Name = name
	return n
}
