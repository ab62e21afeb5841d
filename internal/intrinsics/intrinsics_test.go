package intrinsics

import (
	"errors"
	"strings"
	"testing"

	"rsfront/internal/diag"
	"rsfront/internal/hir"
	"rsfront/internal/layout"
	"rsfront/internal/source"
	"rsfront/internal/types"
)

func newLowerer() (*Lowerer, types.Builtins) {
	in := types.NewInterner()
	return NewLowerer(in, layout.New(layout.X86_64LinuxGNU(), in)), in.Builtins()
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"size_of", "transmute", "offset"} {
		k, ok := Lookup(name)
		if !ok || k.String() != name {
			t.Fatalf("%s: got %s %v", name, k, ok)
		}
	}
	if _, ok := Lookup("abort"); ok {
		t.Fatal("abort is not supported")
	}
	if got := strings.Join(Names(), ","); got != "offset,size_of,transmute" {
		t.Fatalf("names = %s", got)
	}
}

func TestCheckDecl(t *testing.T) {
	if err := CheckDecl("transmute", 2, 1, source.Span{}); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name   string
		tp, vp int
		msg    string
	}{
		{"abort", 0, 0, "unrecognized intrinsic `abort`"},
		{"size_of", 1, 1, "intrinsic `size_of` must have 1 type parameter(s) and 0 parameter(s)"},
	}
	for _, tt := range tests {
		err := CheckDecl(tt.name, tt.tp, tt.vp, source.Span{})
		var ie *Error
		if !errors.As(err, &ie) || ie.Code != diag.IntrinsicUnknown || ie.Msg != tt.msg {
			t.Fatalf("%s: got %v", tt.name, err)
		}
	}
}

func TestSizeOf(t *testing.T) {
	l, b := newLowerer()
	tests := []struct {
		ty   types.TypeID
		want uint64
	}{
		{b.I32, 4},
		{b.Usize, 8},
		{l.Types.Array(b.U16, 3), 6},
		{l.Types.Reference(l.Types.Slice(b.U8), false), 16},
		{l.Types.Pointer(b.I64, true), 8},
	}
	for _, tt := range tests {
		e, err := l.SizeOf(tt.ty, source.Span{})
		if err != nil {
			t.Fatal(err)
		}
		lit := e.Data.(hir.LiteralData)
		if e.Type != b.Usize || lit.Bits != tt.want || lit.SizeOf != tt.ty {
			t.Fatalf("size_of::<%s>() = %d", types.Label(l.Types, tt.ty), lit.Bits)
		}
	}
	if _, err := l.SizeOf(l.Types.Slice(b.U8), source.Span{}); err == nil {
		t.Fatal("size_of::<[u8]>() must fail")
	}
}

func TestTransmute(t *testing.T) {
	l, b := newLowerer()
	x := &hir.Expr{Kind: hir.ExprLiteral, Type: b.F32, Data: hir.LiteralData{Kind: hir.LiteralFloat, Float: 1}}
	e, err := l.Transmute(b.F32, b.U32, x, source.Span{})
	if err != nil {
		t.Fatal(err)
	}
	if e.Kind != hir.ExprTransmute || e.Type != b.U32 || e.Data.(hir.TransmuteData).X != x {
		t.Fatalf("unexpected node %+v", e)
	}

	_, err = l.Transmute(b.I32, b.U64, x, source.Span{})
	var ie *Error
	if !errors.As(err, &ie) || ie.Code != diag.IntrinsicSizeMismatch {
		t.Fatalf("expected size mismatch, got %v", err)
	}
	if want := "cannot transmute between types of different sizes: `i32` (32 bits) to `u64` (64 bits)"; ie.Msg != want {
		t.Fatalf("message = %q", ie.Msg)
	}
}

func TestOffset(t *testing.T) {
	l, b := newLowerer()
	ptrTy := l.Types.Pointer(b.U16, false)
	ptr := &hir.Expr{Kind: hir.ExprLocal, Type: ptrTy, Data: hir.LocalData{Local: 1, Name: "p"}}
	cnt := &hir.Expr{Kind: hir.ExprLiteral, Type: b.Isize, Data: hir.LiteralData{Kind: hir.LiteralInt, Bits: 3}}
	e, err := l.Lower(Offset, []types.TypeID{b.U16}, []*hir.Expr{ptr, cnt}, ptrTy, source.Span{})
	if err != nil {
		t.Fatal(err)
	}
	d := e.Data.(hir.OffsetData)
	if e.Kind != hir.ExprOffset || d.Stride != 2 || d.Ptr != ptr || d.Count != cnt || e.Type != ptrTy {
		t.Fatalf("unexpected node %+v", e)
	}
}
