package msvc

import (
	"fmt"
	"io"
	"strings"
)

// WriteTree prints the shape of a parsed AST, one node per line with
// children indented, for inspecting names that do not render the way
// the producer intended.
func WriteTree(w io.Writer, n Node) error {
	tw := treeWriter{w: w}
	tw.node("", n, 0)
	return tw.err
}

type treeWriter struct {
	w   io.Writer
	err error
}

func (t *treeWriter) line(depth int, format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (t *treeWriter) node(label string, n Node, depth int) {
	if t.err != nil {
		return
	}
	if label != "" {
		label += ": "
	}
	if n == nil {
		t.line(depth, "%s<nil>", label)
		return
	}

	head := label + n.Kind().String()
	if detail := nodeDetail(n); detail != "" {
		head += " " + detail
	}
	t.line(depth, "%s", head)

	switch n := n.(type) {
	case *NodeArrayNode:
		for _, child := range n.Nodes {
			t.node("", child, depth+1)
		}
	case *QualifiedNameNode:
		for _, child := range n.Components.Nodes {
			t.node("", child, depth+1)
		}
	case *TemplateParameterReferenceNode:
		if n.Symbol != nil {
			t.node("Symbol", n.Symbol, depth+1)
		}
	case *NamedIdentifierNode:
		t.templateParams(n.TemplateParams, depth)
	case *IntrinsicFunctionIdentifierNode:
		t.templateParams(n.TemplateParams, depth)
	case *StructorIdentifierNode:
		t.node("Class", n.Class, depth+1)
		t.templateParams(n.TemplateParams, depth)
	case *ConversionOperatorIdentifierNode:
		t.node("TargetType", n.TargetType, depth+1)
		t.templateParams(n.TemplateParams, depth)
	case *LiteralOperatorIdentifierNode:
		t.templateParams(n.TemplateParams, depth)
	case *DynamicStructorIdentifierNode:
		if n.Variable != nil {
			t.node("Variable", n.Variable, depth+1)
		} else {
			t.node("Name", n.Name, depth+1)
		}
	case *PointerTypeNode:
		if n.ClassParent != nil {
			t.node("ClassParent", n.ClassParent, depth+1)
		}
		t.node("Pointee", n.Pointee, depth+1)
	case *TagTypeNode:
		t.node("Name", n.QualifiedName, depth+1)
	case *ArrayTypeNode:
		t.node("Dimensions", n.Dimensions, depth+1)
		t.node("ElementType", n.ElementType, depth+1)
	case *CustomTypeNode:
		t.node("Identifier", n.Identifier, depth+1)
	case *FunctionSignatureNode:
		t.signature(n, depth)
	case *ThunkSignatureNode:
		t.signature(&n.FunctionSignatureNode, depth)
	case *FunctionSymbolNode:
		t.node("Name", n.Name, depth+1)
		t.node("Signature", n.Signature, depth+1)
	case *VariableSymbolNode:
		t.node("Name", n.Name, depth+1)
		if n.Type != nil {
			t.node("Type", n.Type, depth+1)
		}
	case *SpecialTableSymbolNode:
		t.node("Name", n.Name, depth+1)
		if n.TargetName != nil {
			t.node("TargetName", n.TargetName, depth+1)
		}
	case *LocalStaticGuardVariableNode:
		t.node("Name", n.Name, depth+1)
	case *MD5SymbolNode:
		t.node("Name", n.Name, depth+1)
	}
}

func (t *treeWriter) templateParams(params *NodeArrayNode, depth int) {
	if params != nil {
		t.node("TemplateParams", params, depth+1)
	}
}

func (t *treeWriter) signature(sig *FunctionSignatureNode, depth int) {
	if sig.ReturnType != nil {
		t.node("ReturnType", sig.ReturnType, depth+1)
	}
	if sig.Params != nil {
		t.node("Params", sig.Params, depth+1)
	}
}

var affinityNames = map[PointerAffinity]string{
	AffinityNone:            "none",
	AffinityPointer:         "*",
	AffinityReference:       "&",
	AffinityRValueReference: "&&",
}

var storageClassNames = map[StorageClass]string{
	StorageNone:                "none",
	StoragePrivateStatic:       "private static",
	StorageProtectedStatic:     "protected static",
	StoragePublicStatic:        "public static",
	StorageGlobal:              "global",
	StorageFunctionLocalStatic: "function local static",
}

var charKindNames = map[CharKind]string{
	CharChar:   "char",
	CharChar16: "char16_t",
	CharChar32: "char32_t",
	CharWchar:  "wchar_t",
}

// nodeDetail summarizes a node's scalar fields for one line of dump.
func nodeDetail(n Node) string {
	switch n := n.(type) {
	case *IntegerLiteralNode:
		if n.IsNegative {
			return fmt.Sprintf("-%d", n.Value)
		}
		return fmt.Sprintf("%d", n.Value)
	case *TemplateParameterReferenceNode:
		detail := fmt.Sprintf("affinity=%s member=%t", affinityNames[n.Affinity], n.IsMemberPointer)
		if n.ThunkOffsetCount > 0 {
			detail += fmt.Sprintf(" offsets=%v", n.ThunkOffsets[:n.ThunkOffsetCount])
		}
		return detail
	case *NamedIdentifierNode:
		return fmt.Sprintf("%q", n.Name)
	case *IntrinsicFunctionIdentifierNode:
		return fmt.Sprintf("%q", n.Operator.String())
	case *StructorIdentifierNode:
		if n.IsDestructor {
			return "destructor"
		}
		return "constructor"
	case *LiteralOperatorIdentifierNode:
		return fmt.Sprintf("%q", n.Name)
	case *LocalStaticGuardIdentifierNode:
		return fmt.Sprintf("thread=%t scope=%d", n.IsThread, n.ScopeIndex)
	case *VcallThunkIdentifierNode:
		return fmt.Sprintf("vtable offset=%d", n.OffsetInVTable)
	case *DynamicStructorIdentifierNode:
		if n.IsDestructor {
			return "atexit destructor"
		}
		return "initializer"
	case *RttiBaseClassDescriptorNode:
		return fmt.Sprintf("nv=%d vbptr=%d vbtable=%d flags=%d",
			n.NVOffset, n.VBPtrOffset, n.VBTableOffset, n.Flags)
	case *PrimitiveTypeNode:
		return withQuals(n.Prim.String(), n.Quals)
	case *PointerTypeNode:
		return withQuals(affinityNames[n.Affinity], n.Quals)
	case *TagTypeNode:
		return withQuals(n.Tag.String(), n.Quals)
	case *ArrayTypeNode:
		return withQuals("", n.Quals)
	case *FunctionSignatureNode:
		return signatureDetail(n)
	case *ThunkSignatureNode:
		detail := signatureDetail(&n.FunctionSignatureNode)
		return detail + fmt.Sprintf(" adjust={static %d, vbptr %d, vboffset %d, vtordisp %d}",
			n.ThisAdjust.StaticOffset, n.ThisAdjust.VBPtrOffset,
			n.ThisAdjust.VBOffsetOffset, n.ThisAdjust.VtordispOffset)
	case *VariableSymbolNode:
		return storageClassNames[n.SC]
	case *SpecialTableSymbolNode:
		return withQuals("", n.Quals)
	case *LocalStaticGuardVariableNode:
		return fmt.Sprintf("visible=%t", n.IsVisible)
	case *EncodedStringLiteralNode:
		return fmt.Sprintf("%s %q truncated=%t", charKindNames[n.Char], n.DecodedString, n.IsTruncated)
	}
	return ""
}

func signatureDetail(sig *FunctionSignatureNode) string {
	var parts []string
	if cc := strings.TrimSpace(sig.CallConvention.String()); cc != "" {
		parts = append(parts, cc)
	}
	if sig.Quals != QualNone {
		parts = append(parts, sig.Quals.String())
	}
	if sig.IsVariadic {
		parts = append(parts, "variadic")
	}
	if sig.IsNoexcept {
		parts = append(parts, "noexcept")
	}
	return strings.Join(parts, " ")
}

func withQuals(detail string, quals Qualifiers) string {
	if quals == QualNone {
		return detail
	}
	if detail == "" {
		return quals.String()
	}
	return detail + " " + quals.String()
}
