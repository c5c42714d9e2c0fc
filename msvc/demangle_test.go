package msvc_test

import (
	"errors"
	"testing"

	"github.com/skdltmxn/demangle-go/msvc"
)

// ---------------------------------------------------------------------------
// Variables
// ---------------------------------------------------------------------------

func TestDemangleVariable(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "global int",
			input: "?x@@3HA",
			want:  "int x",
		},
		{
			name:  "global unsigned long",
			input: "?count@@3KA",
			want:  "unsigned long count",
		},
		{
			name:  "global bool",
			input: "?flag@@3_NA",
			want:  "bool flag",
		},
		{
			name:  "global __int64",
			input: "?big@@3_JA",
			want:  "__int64 big",
		},
		{
			name:  "volatile",
			input: "?ticks@@3HC",
			want:  "int volatile ticks",
		},
		{
			name:  "pointer",
			input: "?p@@3PAHA",
			want:  "int *p",
		},
		{
			name:  "pointer to const",
			input: "?p@@3PBHB",
			want:  "int const *p",
		},
		{
			name:  "const pointer",
			input: "?cp@@3QAHA",
			want:  "int *const cp",
		},
		{
			name:  "const pointer to const",
			input: "?cpc@@3QBHB",
			want:  "int const *const cpc",
		},
		{
			name:  "reference",
			input: "?ref@@3AAHA",
			want:  "int &ref",
		},
		{
			name:  "namespaced",
			input: "?x@ns@@3HA",
			want:  "int ns::x",
		},
		{
			name:  "nested namespaces",
			input: "?x@inner@outer@@3HA",
			want:  "int outer::inner::x",
		},
		{
			name:  "public static member",
			input: "?x@Foo@@2HA",
			want:  "public: static int Foo::x",
		},
		{
			name:  "protected static member",
			input: "?x@Foo@@1HA",
			want:  "protected: static int Foo::x",
		},
		{
			name:  "private static const member",
			input: "?x@Foo@@0HB",
			want:  "private: static int const Foo::x",
		},
		{
			name:  "anonymous namespace",
			input: "?x@?A0x12345678@@3HA",
			want:  "int `anonymous namespace'::x",
		},
		{
			name:  "function local static",
			input: "?x@?1??f@@YAHXZ@4HA",
			want:  "int `int __cdecl f(void)'::`2'::x",
		},
		{
			name:  "class type",
			input: "?obj@@3VFoo@@A",
			want:  "class Foo obj",
		},
		{
			name:  "struct type",
			input: "?s@@3UPoint@@A",
			want:  "struct Point s",
		},
		{
			name:  "union type",
			input: "?u@@3TData@@A",
			want:  "union Data u",
		},
		{
			name:  "enum type",
			input: "?e@@3W4Color@@A",
			want:  "enum Color e",
		},
		{
			name:  "untyped",
			input: "?Bar@Foo@@8",
			want:  "Foo::Bar",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := msvc.Demangle(tc.input)
			if err != nil {
				t.Fatalf("Demangle(%q): %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("Demangle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

func TestDemangleFunction(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no parameters",
			input: "?nothing@@YAXXZ",
			want:  "void __cdecl nothing(void)",
		},
		{
			name:  "int to int",
			input: "?f@@YAHH@Z",
			want:  "int __cdecl f(int)",
		},
		{
			name:  "two parameters",
			input: "?add@@YAHHH@Z",
			want:  "int __cdecl add(int, int)",
		},
		{
			name:  "all primitive parameters",
			input: "?all@@YAX_NDCEFGHIJKMNO@Z",
			want: "void __cdecl all(bool, char, signed char, unsigned char, short, " +
				"unsigned short, int, unsigned int, long, unsigned long, float, double, long double)",
		},
		{
			name:  "wchar_t parameter",
			input: "?w@@YAX_W@Z",
			want:  "void __cdecl w(wchar_t)",
		},
		{
			name:  "char8_t parameter",
			input: "?u8@@YAX_Q@Z",
			want:  "void __cdecl u8(char8_t)",
		},
		{
			name:  "variadic",
			input: "?g@@YAXZZ",
			want:  "void __cdecl g(...)",
		},
		{
			name:  "int then variadic",
			input: "?h@@YAXHZZ",
			want:  "void __cdecl h(int, ...)",
		},
		{
			name:  "namespaced",
			input: "?g@inner@outer@@YAXXZ",
			want:  "void __cdecl outer::inner::g(void)",
		},
		{
			name:  "name backreference in scope",
			input: "?f@Foo@1@YAXXZ",
			want:  "void __cdecl Foo::Foo::f(void)",
		},
		{
			name:  "stdcall",
			input: "?f@@YGXXZ",
			want:  "void __stdcall f(void)",
		},
		{
			name:  "fastcall",
			input: "?f@@YIXXZ",
			want:  "void __fastcall f(void)",
		},
		{
			name:  "vectorcall",
			input: "?f@@YQXXZ",
			want:  "void __vectorcall f(void)",
		},
		{
			name:  "extern C",
			input: "?f@@$$J0YAHH@Z",
			want:  "extern \"C\" int __cdecl f(int)",
		},
		{
			name:  "noexcept",
			input: "?f@@YAXX_E",
			want:  "void __cdecl f(void) noexcept",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := msvc.Demangle(tc.input)
			if err != nil {
				t.Fatalf("Demangle(%q): %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("Demangle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestDemangleMemberFunction(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "public method",
			input: "?method@Foo@@QAEXXZ",
			want:  "public: void __thiscall Foo::method(void)",
		},
		{
			name:  "const method",
			input: "?get@Foo@@QBEHXZ",
			want:  "public: int __thiscall Foo::get(void) const",
		},
		{
			name:  "const volatile method",
			input: "?m@Foo@@QDEXXZ",
			want:  "public: void __thiscall Foo::m(void) const volatile",
		},
		{
			name:  "static method",
			input: "?create@Foo@@SAPAVFoo@@XZ",
			want:  "public: static class Foo * __cdecl Foo::create(void)",
		},
		{
			name:  "virtual method",
			input: "?vmethod@Foo@@UAEXXZ",
			want:  "public: virtual void __thiscall Foo::vmethod(void)",
		},
		{
			name:  "protected method",
			input: "?pm@Foo@@IAEXXZ",
			want:  "protected: void __thiscall Foo::pm(void)",
		},
		{
			name:  "protected virtual method",
			input: "?pv@Foo@@MAEXXZ",
			want:  "protected: virtual void __thiscall Foo::pv(void)",
		},
		{
			name:  "private method",
			input: "?h@Foo@@AAEXXZ",
			want:  "private: void __thiscall Foo::h(void)",
		},
		{
			name:  "private static method",
			input: "?ps@Foo@@CAXXZ",
			want:  "private: static void __cdecl Foo::ps(void)",
		},
		{
			name:  "ref-qualified method",
			input: "?m@Foo@@QGAEXXZ",
			want:  "public: void __thiscall Foo::m(void) &",
		},
		{
			name:  "rvalue ref-qualified method",
			input: "?m@Foo@@QHAEXXZ",
			want:  "public: void __thiscall Foo::m(void) &&",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := msvc.Demangle(tc.input)
			if err != nil {
				t.Fatalf("Demangle(%q): %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("Demangle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Constructors, destructors, operators
// ---------------------------------------------------------------------------

func TestDemangleStructor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "constructor",
			input: "??0Foo@@QAE@XZ",
			want:  "public: __thiscall Foo::Foo(void)",
		},
		{
			name:  "destructor",
			input: "??1Foo@@QAE@XZ",
			want:  "public: __thiscall Foo::~Foo(void)",
		},
		{
			name:  "virtual destructor",
			input: "??1Foo@@UAE@XZ",
			want:  "public: virtual __thiscall Foo::~Foo(void)",
		},
		{
			name:  "copy constructor",
			input: "??0Base@@QAE@ABV0@@Z",
			want:  "public: __thiscall Base::Base(class Base const &)",
		},
		{
			name:  "nested class constructor",
			input: "??0Inner@Outer@@QAE@XZ",
			want:  "public: __thiscall Outer::Inner::Inner(void)",
		},
		{
			name:  "class template constructor",
			input: "??0?$List@H@@QAE@XZ",
			want:  "public: __thiscall List<int>::List<int>(void)",
		},
		{
			name:  "class template destructor",
			input: "??1?$List@H@@QAE@XZ",
			want:  "public: __thiscall List<int>::~List<int>(void)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := msvc.Demangle(tc.input)
			if err != nil {
				t.Fatalf("Demangle(%q): %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("Demangle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestDemangleOperator(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "assignment",
			input: "??4Foo@@QAEAAV0@ABV0@@Z",
			want:  "public: class Foo & __thiscall Foo::operator=(class Foo const &)",
		},
		{
			name:  "plus",
			input: "??HFoo@@QAE?AV0@H@Z",
			want:  "public: class Foo __thiscall Foo::operator+(int)",
		},
		{
			name:  "equality",
			input: "??8Foo@@QAE_NABV0@@Z",
			want:  "public: bool __thiscall Foo::operator==(class Foo const &)",
		},
		{
			name:  "increment",
			input: "??EFoo@@QAEAAV0@XZ",
			want:  "public: class Foo & __thiscall Foo::operator++(void)",
		},
		{
			name:  "call",
			input: "??RFoo@@QAEHH@Z",
			want:  "public: int __thiscall Foo::operator()(int)",
		},
		{
			name:  "subscript",
			input: "??AFoo@@QAEAAHH@Z",
			want:  "public: int & __thiscall Foo::operator[](int)",
		},
		{
			name:  "arrow",
			input: "??CFoo@@QAEPAVBar@@XZ",
			want:  "public: class Bar * __thiscall Foo::operator->(void)",
		},
		{
			name:  "global new",
			input: "??2@YAPAXI@Z",
			want:  "void * __cdecl operator new(unsigned int)",
		},
		{
			name:  "global delete",
			input: "??3@YAXPAX@Z",
			want:  "void __cdecl operator delete(void *)",
		},
		{
			name:  "array new",
			input: "??_U@YAPAXI@Z",
			want:  "void * __cdecl operator new[](unsigned int)",
		},
		{
			name:  "array delete",
			input: "??_V@YAXPAX@Z",
			want:  "void __cdecl operator delete[](void *)",
		},
		{
			name:  "member new",
			input: "??2Foo@@SAPAXI@Z",
			want:  "public: static void * __cdecl Foo::operator new(unsigned int)",
		},
		{
			name:  "spaceship",
			input: "??__MFoo@@QAEHABV0@@Z",
			want:  "public: int __thiscall Foo::operator<=>(class Foo const &)",
		},
		{
			name:  "co_await",
			input: "??__LFoo@@QAEHXZ",
			want:  "public: int __thiscall Foo::operator co_await(void)",
		},
		{
			name:  "literal operator",
			input: "??__K_deg@@YAHN@Z",
			want:  "int __cdecl operator \"\"_deg(double)",
		},
		{
			name:  "conversion to int",
			input: "??BFoo@@QAEHXZ",
			want:  "public: __thiscall Foo::operator int(void)",
		},
		{
			name:  "conversion to pointer",
			input: "??BFoo@@QAEPAVBar@@XZ",
			want:  "public: __thiscall Foo::operator class Bar *(void)",
		},
		{
			name:  "scalar deleting dtor",
			input: "??_GFoo@@QAEPAXI@Z",
			want:  "public: void * __thiscall Foo::`scalar deleting destructor'(unsigned int)",
		},
		{
			name:  "vbase dtor",
			input: "??_DFoo@@QAEXXZ",
			want:  "public: void __thiscall Foo::`vbase destructor'(void)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := msvc.Demangle(tc.input)
			if err != nil {
				t.Fatalf("Demangle(%q): %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("Demangle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

func TestDemangleTemplate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "function with type argument",
			input: "??$f@H@@YAXH@Z",
			want:  "void __cdecl f<int>(int)",
		},
		{
			name:  "two type arguments",
			input: "??$max@HH@@YAHHH@Z",
			want:  "int __cdecl max<int, int>(int, int)",
		},
		{
			name:  "class type argument",
			input: "??$f@VBar@@@@YAXXZ",
			want:  "void __cdecl f<class Bar>(void)",
		},
		{
			name:  "pointer type argument",
			input: "??$f@PAH@@YAXXZ",
			want:  "void __cdecl f<int *>(void)",
		},
		{
			name:  "integer argument",
			input: "??$f@$0GE@@@YAXXZ",
			want:  "void __cdecl f<100>(void)",
		},
		{
			name:  "single digit integer argument",
			input: "??$f@$00@@YAXXZ",
			want:  "void __cdecl f<1>(void)",
		},
		{
			name:  "negative integer argument",
			input: "??$f@$0?0@@YAXXZ",
			want:  "void __cdecl f<-1>(void)",
		},
		{
			name:  "mixed type and integer arguments",
			input: "??$g@VBar@@$01@@YAXXZ",
			want:  "void __cdecl g<class Bar, 2>(void)",
		},
		{
			name:  "empty parameter pack",
			input: "??$f@$$V@@YAXXZ",
			want:  "void __cdecl f<>(void)",
		},
		{
			name:  "function address argument",
			input: "??$f@$1?g@@YAXXZ@@YAXXZ",
			want:  "void __cdecl f<&void __cdecl g(void)>(void)",
		},
		{
			name:  "variable reference argument",
			input: "??$f@$E?x@@3HA@@YAXXZ",
			want:  "void __cdecl f<int x>(void)",
		},
		{
			name:  "data member pointer argument",
			input: "??$f@$FBA@A@@@YAXXZ",
			want:  "void __cdecl f<{16, 0}>(void)",
		},
		{
			name:  "namespaced function template",
			input: "??$fn@H@ns@@YAHH@Z",
			want:  "int __cdecl ns::fn<int>(int)",
		},
		{
			name:  "static member of class template",
			input: "?v@?$C@H@@2HA",
			want:  "public: static int C<int>::v",
		},
		{
			name:  "nested template types",
			input: "?s@@3V?$A@V?$B@H@@@@A",
			want:  "class A<class B<int>> s",
		},
		{
			name:  "argument reused in signature",
			input: "??$cast@VDerived@@@@YAPAVDerived@@PAVBase@@@Z",
			want:  "class Derived * __cdecl cast<class Derived>(class Base *)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := msvc.Demangle(tc.input)
			if err != nil {
				t.Fatalf("Demangle(%q): %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("Demangle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Pointers, references, arrays
// ---------------------------------------------------------------------------

func TestDemanglePointer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "function pointer",
			input: "?fp@@3P6AHH@ZA",
			want:  "int (__cdecl *fp)(int)",
		},
		{
			name:  "function pointer with two parameters",
			input: "?cb@@3P6AXHD@ZA",
			want:  "void (__cdecl *cb)(int, char)",
		},
		{
			name:  "pointer to pointer",
			input: "?pp@@3PAPAHA",
			want:  "int **pp",
		},
		{
			name:  "reference to pointer",
			input: "?rp@@3AAPAHA",
			want:  "int *&rp",
		},
		{
			name:  "data member pointer",
			input: "?pmd@@3PQFoo@@HQFoo@@",
			want:  "int Foo::*pmd",
		},
		{
			name:  "const data member pointer",
			input: "?m@@3PRfoo@@DR1@",
			want:  "char const foo::*m",
		},
		{
			name:  "member function pointer",
			input: "?pmf@@3P8Foo@@AEXXZQ1@",
			want:  "void (__thiscall Foo::*pmf)(void)",
		},
		{
			name:  "function pointer parameter",
			input: "?f@@YAXP6AHH@Z@Z",
			want:  "void __cdecl f(int (__cdecl *)(int))",
		},
		{
			name:  "rvalue reference parameter",
			input: "?take@@YAX$$QAH@Z",
			want:  "void __cdecl take(int &&)",
		},
		{
			name:  "nullptr_t parameter",
			input: "?null@@YAX$$T@Z",
			want:  "void __cdecl null(std::nullptr_t)",
		},
		{
			name:  "restrict pointer",
			input: "?rp@@3PIAHA",
			want:  "int *__restrict rp",
		},
		{
			name:  "unaligned pointer",
			input: "?up@@3PFAHA",
			want:  "int __unaligned *up",
		},
		{
			name:  "ptr64 pointer",
			input: "?p64@@3PEAHEA",
			want:  "int *p64",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := msvc.Demangle(tc.input)
			if err != nil {
				t.Fatalf("Demangle(%q): %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("Demangle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestDemangleArray(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "array variable",
			input: "?buf@@3Y0GE@DA",
			want:  "char buf[100]",
		},
		{
			name:  "pointer to array",
			input: "?arr@@3PAY01HA",
			want:  "int (*arr)[2]",
		},
		{
			name:  "pointer to two-dimensional array",
			input: "?grid@@3PAY146HA",
			want:  "int (*grid)[5][7]",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := msvc.Demangle(tc.input)
			if err != nil {
				t.Fatalf("Demangle(%q): %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("Demangle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Return types
// ---------------------------------------------------------------------------

func TestDemangleReturnType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "reference return",
			input: "?get@@YAAAHXZ",
			want:  "int & __cdecl get(void)",
		},
		{
			name:  "const pointer return",
			input: "?f@@YAQAHXZ",
			want:  "int *const __cdecl f(void)",
		},
		{
			name:  "const value return",
			input: "?f@@YA?BHXZ",
			want:  "int const __cdecl f(void)",
		},
		{
			name:  "class value return",
			input: "?mk@@YA?AVFoo@@XZ",
			want:  "class Foo __cdecl mk(void)",
		},
		{
			name:  "function pointer return",
			input: "?get@@YAP6AHH@ZXZ",
			want:  "int (__cdecl * __cdecl get(void))(int)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := msvc.Demangle(tc.input)
			if err != nil {
				t.Fatalf("Demangle(%q): %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("Demangle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestDemangleError(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantErr    error
		wantOffset int
	}{
		{
			name:       "empty input",
			input:      "",
			wantErr:    msvc.ErrInvalidMangledName,
			wantOffset: 0,
		},
		{
			name:       "not mangled",
			input:      "foo",
			wantErr:    msvc.ErrInvalidMangledName,
			wantOffset: 0,
		},
		{
			name:       "bare question mark",
			input:      "?",
			wantErr:    msvc.ErrUnexpectedEnd,
			wantOffset: -1,
		},
		{
			name:       "missing encoding",
			input:      "?foo@@",
			wantErr:    msvc.ErrUnexpectedEnd,
			wantOffset: 6,
		},
		{
			name:       "parameter backreference into empty table",
			input:      "?f@@YAX0@Z",
			wantErr:    msvc.ErrBackrefOutOfRange,
			wantOffset: 7,
		},
		{
			name:       "parameter backreference beyond table",
			input:      "?f@@YAXPAH1@Z",
			wantErr:    msvc.ErrBackrefOutOfRange,
			wantOffset: 10,
		},
		{
			name:       "name backreference beyond table",
			input:      "?x@1@3HA",
			wantErr:    msvc.ErrBackrefOutOfRange,
			wantOffset: -1,
		},
		{
			name:       "typeof intrinsic",
			input:      "??_Afoo@@",
			wantErr:    msvc.ErrUnsupported,
			wantOffset: -1,
		},
		{
			name:       "udt returning thunk",
			input:      "??_Pfoo@@",
			wantErr:    msvc.ErrUnsupported,
			wantOffset: -1,
		},
		{
			name:       "unterminated hash name",
			input:      "??@abc",
			wantErr:    msvc.ErrInvalidMangledName,
			wantOffset: -1,
		},
		{
			name:       "tag name with trailing garbage",
			input:      ".?AVFoo@@x",
			wantErr:    msvc.ErrInvalidMangledName,
			wantOffset: -1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := msvc.Demangle(tc.input)
			if err == nil {
				t.Fatalf("Demangle(%q) succeeded, want error", tc.input)
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Demangle(%q) error = %v, want %v", tc.input, err, tc.wantErr)
			}
			if tc.wantOffset < 0 {
				return
			}
			var perr *msvc.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Demangle(%q) error %v is not a *ParseError", tc.input, err)
			}
			if perr.Offset != tc.wantOffset {
				t.Errorf("Demangle(%q) failed at offset %d, want offset %d", tc.input, perr.Offset, tc.wantOffset)
			}
		})
	}
}
