package msvc_test

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/skdltmxn/demangle-go/msvc"
)

// ---------------------------------------------------------------------------
// IsMangled / Filter
// ---------------------------------------------------------------------------

func TestIsMangled(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "?x@@3HA", want: true},
		{input: "??0Foo@@QAE@XZ", want: true},
		{input: ".?AVFoo@@", want: true},
		{input: "_ZN3foo3barEv", want: false},
		{input: "foo", want: false},
		{input: "", want: false},
	}

	for _, tc := range tests {
		if got := msvc.IsMangled(tc.input); got != tc.want {
			t.Errorf("IsMangled(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "demangles valid name",
			input: "?method@Foo@@QAEXXZ",
			want:  "public: void __thiscall Foo::method(void)",
		},
		{
			name:  "keeps itanium name",
			input: "_ZN3foo3barEv",
			want:  "_ZN3foo3barEv",
		},
		{
			name:  "keeps garbage",
			input: "?not a symbol",
			want:  "?not a symbol",
		},
		{
			name:  "keeps empty string",
			input: "",
			want:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := msvc.Filter(tc.input); got != tc.want {
				t.Errorf("Filter(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Render flags
// ---------------------------------------------------------------------------

func TestRenderFlags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		flags msvc.OutputFlags
		want  string
	}{
		{
			name:  "no calling convention",
			input: "?f@@YAHH@Z",
			flags: msvc.OutputNoCallingConvention,
			want:  "int f(int)",
		},
		{
			name:  "no return type",
			input: "?f@@YAHH@Z",
			flags: msvc.OutputNoReturnType,
			want:  "__cdecl f(int)",
		},
		{
			name:  "no access specifier",
			input: "?method@Foo@@QAEXXZ",
			flags: msvc.OutputNoAccessSpecifier,
			want:  "void __thiscall Foo::method(void)",
		},
		{
			name:  "no member type",
			input: "?create@Foo@@SAPAVFoo@@XZ",
			flags: msvc.OutputNoMemberType,
			want:  "public: class Foo * __cdecl Foo::create(void)",
		},
		{
			name:  "no variable type",
			input: "?x@@3HA",
			flags: msvc.OutputNoVariableType,
			want:  "x",
		},
		{
			name:  "no tag specifier",
			input: "?s@@3UPoint@@A",
			flags: msvc.OutputNoTagSpecifier,
			want:  "Point s",
		},
		{
			name:  "combined",
			input: "?method@Foo@@QAEXXZ",
			flags: msvc.OutputNoAccessSpecifier | msvc.OutputNoCallingConvention,
			want:  "void Foo::method(void)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sym, err := msvc.NewDemangler().Parse(tc.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.input, err)
			}
			if got := msvc.Render(sym, tc.flags); got != tc.want {
				t.Errorf("Render(%q, %#x) = %q, want %q", tc.input, tc.flags, got, tc.want)
			}
		})
	}
}

func TestRenderNil(t *testing.T) {
	if got := msvc.Render(nil, msvc.OutputDefault); got != "" {
		t.Errorf("Render(nil) = %q, want empty string", got)
	}
}

// ---------------------------------------------------------------------------
// Parsed tree shape
// ---------------------------------------------------------------------------

func TestParseStructorIdentifier(t *testing.T) {
	d := msvc.NewDemangler()

	sym, err := d.Parse("??0Foo@@QAE@XZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fsym, ok := sym.(*msvc.FunctionSymbolNode)
	if !ok {
		t.Fatalf("got %T, want *FunctionSymbolNode", sym)
	}
	ctor, ok := fsym.Name.UnqualifiedIdentifier().(*msvc.StructorIdentifierNode)
	if !ok {
		t.Fatalf("got identifier %T, want *StructorIdentifierNode", fsym.Name.UnqualifiedIdentifier())
	}
	if ctor.IsDestructor {
		t.Error("constructor parsed with IsDestructor set")
	}

	sym, err = d.Parse("??1Foo@@QAE@XZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	dtor, ok := sym.(*msvc.FunctionSymbolNode).Name.UnqualifiedIdentifier().(*msvc.StructorIdentifierNode)
	if !ok {
		t.Fatal("destructor did not parse to a *StructorIdentifierNode")
	}
	if !dtor.IsDestructor {
		t.Error("destructor parsed without IsDestructor set")
	}
}

func TestParseConversionOperator(t *testing.T) {
	sym, err := msvc.NewDemangler().Parse("??BFoo@@QAEHXZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fsym := sym.(*msvc.FunctionSymbolNode)
	conv, ok := fsym.Name.UnqualifiedIdentifier().(*msvc.ConversionOperatorIdentifierNode)
	if !ok {
		t.Fatalf("got identifier %T, want *ConversionOperatorIdentifierNode", fsym.Name.UnqualifiedIdentifier())
	}
	if conv.TargetType == nil {
		t.Fatal("conversion operator has no target type")
	}
	if got := msvc.Render(conv.TargetType, msvc.OutputDefault); got != "int" {
		t.Errorf("target type = %q, want %q", got, "int")
	}
	// The target lives in the identifier, not in the signature, so the
	// rendered form does not repeat it.
	if sig := fsym.Signature.(*msvc.FunctionSignatureNode); sig.ReturnType != nil {
		t.Errorf("signature still carries return type %q", msvc.Render(sig.ReturnType, msvc.OutputDefault))
	}
}

func TestParseParameterBackrefSharing(t *testing.T) {
	sym, err := msvc.NewDemangler().Parse("?f@@YAXPAH0@Z")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sig := sym.(*msvc.FunctionSymbolNode).Signature.(*msvc.FunctionSignatureNode)
	if sig.Params == nil || len(sig.Params.Nodes) != 2 {
		t.Fatalf("got %d parameters, want 2", len(sig.Params.Nodes))
	}
	// A parameter backreference resolves to the memorized node itself.
	if sig.Params.Nodes[0] != sig.Params.Nodes[1] {
		t.Error("backreferenced parameter is not the same node")
	}
}

func TestParseParameterList(t *testing.T) {
	d := msvc.NewDemangler()

	sym, err := d.Parse("?nothing@@YAXXZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sig := sym.(*msvc.FunctionSymbolNode).Signature.(*msvc.FunctionSignatureNode)
	if sig.Params != nil {
		t.Errorf("void parameter list parsed to %d nodes, want none", len(sig.Params.Nodes))
	}
	if sig.IsVariadic {
		t.Error("void parameter list parsed as variadic")
	}

	sym, err = d.Parse("?g@@YAXZZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sig = sym.(*msvc.FunctionSymbolNode).Signature.(*msvc.FunctionSignatureNode)
	if sig.Params == nil || len(sig.Params.Nodes) != 0 {
		t.Error("ellipsis-only parameter list should parse to an empty list")
	}
	if !sig.IsVariadic {
		t.Error("ellipsis-only parameter list not marked variadic")
	}
}

func TestParseFunctionClass(t *testing.T) {
	sym, err := msvc.NewDemangler().Parse("?create@Foo@@SAPAVFoo@@XZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sig := sym.(*msvc.FunctionSymbolNode).Signature.(*msvc.FunctionSignatureNode)
	if sig.FunctionClass&msvc.FCPublic == 0 {
		t.Error("static factory method not marked public")
	}
	if sig.FunctionClass&msvc.FCStatic == 0 {
		t.Error("static factory method not marked static")
	}
	if sig.FunctionClass&msvc.FCVirtual != 0 {
		t.Error("static factory method marked virtual")
	}
}

func TestParseThunkAdjustment(t *testing.T) {
	d := msvc.NewDemangler()

	sym, err := d.Parse("?f@C@@WBA@EAAHXZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	thunk, ok := sym.(*msvc.FunctionSymbolNode).Signature.(*msvc.ThunkSignatureNode)
	if !ok {
		t.Fatal("adjustor thunk did not parse to a *ThunkSignatureNode")
	}
	if thunk.ThisAdjust.StaticOffset != 16 {
		t.Errorf("static offset = %d, want 16", thunk.ThisAdjust.StaticOffset)
	}

	sym, err = d.Parse("?f@Foo@@$4PPPPPPPM@A@AEXXZ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	thunk = sym.(*msvc.FunctionSymbolNode).Signature.(*msvc.ThunkSignatureNode)
	if thunk.ThisAdjust.VtordispOffset != -4 {
		t.Errorf("vtordisp offset = %d, want -4", thunk.ThisAdjust.VtordispOffset)
	}
	if thunk.ThisAdjust.StaticOffset != 0 {
		t.Errorf("static offset = %d, want 0", thunk.ThisAdjust.StaticOffset)
	}
}

// ---------------------------------------------------------------------------
// Remaining
// ---------------------------------------------------------------------------

func TestRemaining(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "clean parse",
			input: "?x@@3HA",
			want:  "",
		},
		{
			name:  "trailing characters",
			input: "?x@@3HAtrailing",
			want:  "trailing",
		},
		{
			name:  "unparsed table terminator",
			input: "??_7Derived@@6BBase@@@",
			want:  "@",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := msvc.NewDemangler()
			if _, err := d.Parse(tc.input); err != nil {
				t.Fatalf("Parse(%q): %v", tc.input, err)
			}
			if got := d.Remaining(); got != tc.want {
				t.Errorf("Remaining() = %q, want %q", got, tc.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// ParseTagUniqueName
// ---------------------------------------------------------------------------

func TestParseTagUniqueName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "class",
			input: ".?AVFoo@@",
			want:  "class Foo",
		},
		{
			name:  "struct",
			input: ".?AUBar@@",
			want:  "struct Bar",
		},
		{
			name:  "union",
			input: ".?ATData@@",
			want:  "union Data",
		},
		{
			name:  "enum",
			input: ".?AW4Color@@",
			want:  "enum Color",
		},
		{
			name:  "class template",
			input: ".?AV?$List@H@@",
			want:  "class List<int>",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tag, err := msvc.NewDemangler().ParseTagUniqueName(tc.input)
			if err != nil {
				t.Fatalf("ParseTagUniqueName(%q): %v", tc.input, err)
			}
			if got := tag.String(); got != tc.want {
				t.Errorf("ParseTagUniqueName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseTagUniqueNameRejectsOtherPrefixes(t *testing.T) {
	inputs := []string{
		"?AVFoo@@",
		".?BVFoo@@",
		"Foo",
		"",
	}
	for _, input := range inputs {
		if _, err := msvc.NewDemangler().ParseTagUniqueName(input); !errors.Is(err, msvc.ErrInvalidMangledName) {
			t.Errorf("ParseTagUniqueName(%q) error = %v, want %v", input, err, msvc.ErrInvalidMangledName)
		}
	}
}

func TestParseTagUniqueNameKeepsTrailer(t *testing.T) {
	d := msvc.NewDemangler()
	tag, err := d.ParseTagUniqueName(".?AVFoo@@rest")
	if err != nil {
		t.Fatalf("ParseTagUniqueName: %v", err)
	}
	if got := tag.String(); got != "class Foo" {
		t.Errorf("tag = %q, want %q", got, "class Foo")
	}
	if got := d.Remaining(); got != "rest" {
		t.Errorf("Remaining() = %q, want %q", got, "rest")
	}
}

// ---------------------------------------------------------------------------
// DumpBackReferences
// ---------------------------------------------------------------------------

func TestDumpBackReferences(t *testing.T) {
	d := msvc.NewDemangler()
	if _, err := d.Parse("?f@@YAXPAHPAD@Z"); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var sb strings.Builder
	if err := d.DumpBackReferences(&sb); err != nil {
		t.Fatalf("DumpBackReferences: %v", err)
	}
	want := "2 function parameter backreferences\n" +
		"  [0] - int *\n" +
		"  [1] - char *\n" +
		"1 name backreferences\n" +
		"  [0] - f\n"
	if sb.String() != want {
		t.Errorf("DumpBackReferences() = %q, want %q", sb.String(), want)
	}
}

func TestDumpBackReferencesCapacity(t *testing.T) {
	// Eleven distinct multi-character parameters; the table stops
	// memorizing after ten and the eleventh is silently dropped.
	d := msvc.NewDemangler()
	if _, err := d.Parse("?f@@YAXPADPAEPAFPAGPAHPAIPAJPAKPAMPANPAO@Z"); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var sb strings.Builder
	if err := d.DumpBackReferences(&sb); err != nil {
		t.Fatalf("DumpBackReferences: %v", err)
	}
	want := "10 function parameter backreferences\n" +
		"  [0] - char *\n" +
		"  [1] - unsigned char *\n" +
		"  [2] - short *\n" +
		"  [3] - unsigned short *\n" +
		"  [4] - int *\n" +
		"  [5] - unsigned int *\n" +
		"  [6] - long *\n" +
		"  [7] - unsigned long *\n" +
		"  [8] - float *\n" +
		"  [9] - double *\n" +
		"1 name backreferences\n" +
		"  [0] - f\n"
	if sb.String() != want {
		t.Errorf("DumpBackReferences() = %q, want %q", sb.String(), want)
	}
}

func TestDumpBackReferencesEmpty(t *testing.T) {
	var sb strings.Builder
	if err := msvc.NewDemangler().DumpBackReferences(&sb); err != nil {
		t.Fatalf("DumpBackReferences: %v", err)
	}
	want := "0 function parameter backreferences\n0 name backreferences\n"
	if sb.String() != want {
		t.Errorf("DumpBackReferences() = %q, want %q", sb.String(), want)
	}
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

func TestDemanglerReuse(t *testing.T) {
	d := msvc.NewDemangler()
	if _, err := d.Parse("??0Foo@@QAE@XZ"); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	// The backreference tables do not leak into the next parse: "Foo"
	// was memorized above, yet the fresh session has nothing at index 0.
	if _, err := d.Parse("?f@@YAX0@Z"); !errors.Is(err, msvc.ErrBackrefOutOfRange) {
		t.Errorf("Parse after reuse error = %v, want %v", err, msvc.ErrBackrefOutOfRange)
	}

	sym, err := d.Parse("?x@@3HA")
	if err != nil {
		t.Fatalf("Parse after failed parse: %v", err)
	}
	if got := msvc.Render(sym, msvc.OutputDefault); got != "int x" {
		t.Errorf("Render = %q, want %q", got, "int x")
	}
}

func TestDemangleConcurrent(t *testing.T) {
	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, err := msvc.Demangle("?method@Foo@@QAEXXZ")
				if err != nil {
					t.Errorf("Demangle: %v", err)
					return
				}
				if want := "public: void __thiscall Foo::method(void)"; got != want {
					t.Errorf("Demangle = %q, want %q", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

// ---------------------------------------------------------------------------
// WriteTree
// ---------------------------------------------------------------------------

func TestWriteTree(t *testing.T) {
	sym, err := msvc.NewDemangler().Parse("?f@@YAHH@Z")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var sb strings.Builder
	if err := msvc.WriteTree(&sb, sym); err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	out := sb.String()
	for _, label := range []string{"FunctionSymbol", "FunctionSignature", "PrimitiveType"} {
		if !strings.Contains(out, label) {
			t.Errorf("WriteTree output missing %q:\n%s", label, out)
		}
	}
}

// ---------------------------------------------------------------------------
// Fuzz and benchmarks
// ---------------------------------------------------------------------------

func FuzzDemangle(f *testing.F) {
	seeds := []string{
		"?x@@3HA",
		"??0Foo@@QAE@XZ",
		"??$max@HH@@YAHHH@Z",
		"??_7Derived@@6BBase@@@",
		"??_C@_02PCEFGMJL@hi?$AA@",
		"?f@Foo@@$4PPPPPPPM@A@AEXXZ",
		"??@abcdef0123456789abcdef0123456789@",
		".?AVFoo@@",
		"?f@@YAX0@Z",
		"???????",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		d := msvc.NewDemangler()
		sym, err := d.Parse(input)
		if err != nil {
			var perr *msvc.ParseError
			if !errors.As(err, &perr) {
				t.Errorf("Parse(%q) error %v is not a *ParseError", input, err)
			}
			if got := msvc.Filter(input); got != input {
				t.Errorf("Filter(%q) = %q, want the input unchanged", input, got)
			}
			return
		}
		_ = msvc.Render(sym, msvc.OutputDefault)
		_ = msvc.WriteTree(io.Discard, sym)
	})
}

func BenchmarkDemangle(b *testing.B) {
	b.ReportAllocs()
	d := msvc.NewDemangler()
	for i := 0; i < b.N; i++ {
		if _, err := d.Parse("??$max@HH@@YAHHH@Z"); err != nil {
			b.Fatal(err)
		}
	}
}
