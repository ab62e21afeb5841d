package hir_test

import (
	"strings"
	"testing"

	"rsfront/internal/hir"
	"rsfront/internal/types"
)

func lit(t types.TypeID, v uint64) *hir.Expr {
	return &hir.Expr{Kind: hir.ExprLiteral, Type: t, Data: hir.LiteralData{Kind: hir.LiteralInt, Bits: v}}
}

func sampleModule() *hir.Module {
	in := types.NewInterner()
	b := in.Builtins()
	m := &hir.Module{Name: "sample", Types: in}
	printf := m.AddExtern(&hir.Extern{Name: "printf", ABI: "C", Params: []types.TypeID{in.Pointer(b.I8, false)}, Result: b.Unit, Variadic: true})

	foo := in.Adt(types.AdtStruct, 1, "Foo", []types.TypeID{b.U32})
	in.SetAdtBody(foo, []types.Field{{Name: "a", Type: b.U32}, {Name: "b", Type: b.Bool}}, nil)

	test := &hir.Func{Name: "test::<u32>", Result: foo}
	a := test.NewLocal(hir.Local{Name: "a", Type: b.U32})
	test.Params = []hir.LocalID{a}
	test.Body = &hir.Expr{Kind: hir.ExprBlock, Type: foo, Data: hir.BlockData{
		Tail: &hir.Expr{Kind: hir.ExprStruct, Type: foo, Data: hir.StructData{Fields: []*hir.Expr{
			{Kind: hir.ExprLocal, Type: b.U32, Data: hir.LocalData{Local: a, Name: "a"}},
			{Kind: hir.ExprLiteral, Type: b.Bool, Data: hir.LiteralData{Kind: hir.LiteralBool, Bool: true}},
		}}},
	}}
	testID := m.AddFunc(test)

	main := &hir.Func{Name: "main", Result: b.I32, Flags: hir.FuncEntrypoint}
	x := main.NewLocal(hir.Local{Name: "x", Type: foo})
	call := &hir.Expr{Kind: hir.ExprCall, Type: foo, Data: hir.CallData{Func: testID, Args: []*hir.Expr{lit(b.U32, 456)}}}
	field := &hir.Expr{Kind: hir.ExprField, Type: b.U32, Data: hir.FieldData{
		X: &hir.Expr{Kind: hir.ExprLocal, Type: foo, Data: hir.LocalData{Local: x, Name: "x"}}, Index: 0, Name: "a"}}
	str := &hir.Expr{Kind: hir.ExprLiteral, Type: in.Reference(b.Str, false), Data: hir.LiteralData{Kind: hir.LiteralStr, Str: "%u\n"}}
	cast := &hir.Expr{Kind: hir.ExprCast, Type: in.Pointer(b.I8, false), Data: hir.CastData{Kind: hir.CastFatToThin, X: str}}
	main.Body = &hir.Expr{Kind: hir.ExprBlock, Type: b.I32, Data: hir.BlockData{
		Stmts: []hir.Stmt{
			{Kind: hir.StmtLet, Data: hir.LetData{Local: x, Init: call}},
			{Kind: hir.StmtExpr, Data: hir.ExprStmtData{X: &hir.Expr{Kind: hir.ExprCallExtern, Type: b.Unit,
				Data: hir.ExternCallData{Extern: printf, Args: []*hir.Expr{cast, field}}}}},
		},
		Tail: &hir.Expr{Kind: hir.ExprLiteral, Type: b.I32, Data: hir.LiteralData{Kind: hir.LiteralInt, Bits: ^uint64(0)}},
	}}
	m.Entry = m.AddFunc(main)
	return m
}

func TestDump(t *testing.T) {
	m := sampleModule()
	var sb strings.Builder
	if err := hir.Dump(&sb, m); err != nil {
		t.Fatal(err)
	}
	want := `extern "C" fn printf(*const i8, ...) -> ()

fn test::<u32>(a: u32) -> Foo<u32> {
    Foo<u32> { a: a, b: true }
}

@entrypoint fn main() -> i32 {
    let x: Foo<u32> = test::<u32>(456u32);
    printf(("%u\n" as *const i8), x.a);
    -1i32
}
`
	if sb.String() != want {
		t.Fatalf("dump mismatch:\n%s\nwant:\n%s", sb.String(), want)
	}
}

func TestValidate(t *testing.T) {
	m := sampleModule()
	if err := hir.Validate(m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := m.Types
	param := in.Param(1, 0, "T", true)
	bad := &hir.Func{Name: "leak", Result: param}
	bad.Body = &hir.Expr{Kind: hir.ExprBlock, Type: param, Data: hir.BlockData{
		Tail: &hir.Expr{Kind: hir.ExprCall, Type: param, Data: hir.CallData{Func: 42}},
	}}
	m.AddFunc(bad)
	err := hir.Validate(m)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"leak result: type `T` is not concrete", "call of unknown function 42"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %v", want, err)
		}
	}
}

func TestWalkOrder(t *testing.T) {
	m := sampleModule()
	var kinds []string
	hir.Walk(m.FindFunc("main").Body, func(e *hir.Expr) bool {
		kinds = append(kinds, e.Kind.String())
		return e.Kind != hir.ExprCallExtern
	})
	got := strings.Join(kinds, ",")
	if got != "Block,Call,Literal,CallExtern,Literal" {
		t.Fatalf("walk order = %s", got)
	}
	if !hir.ExprField.IsPlace() || hir.ExprCall.IsPlace() {
		t.Fatal("IsPlace classification")
	}
}
