package consteval_test

import (
	"errors"
	"testing"

	"rsfront/internal/ast"
	"rsfront/internal/consteval"
	"rsfront/internal/diag"
	"rsfront/internal/lexer"
	"rsfront/internal/parser"
	"rsfront/internal/source"
)

type fakeResolver struct {
	consts map[string]consteval.Value
	sizes  map[string]uint64
	b      *ast.Builder
}

func (r *fakeResolver) Const(path *ast.Path, _ consteval.Hint) (consteval.Value, bool, error) {
	v, ok := r.consts[path.String()]
	return v, ok, nil
}

func (r *fakeResolver) Call(callee *ast.Path, args []ast.ExprID, _ consteval.Hint) (consteval.Value, bool, error) {
	last := callee.Last()
	if last.Name != "size_of" || len(last.Args) != 1 || len(args) != 0 {
		return consteval.Value{}, false, nil
	}
	te := r.b.Type(last.Args[0])
	size, ok := r.sizes[te.Path.String()]
	return consteval.Usize(size), ok, nil
}

func parseExpr(t *testing.T, src string) (*ast.Builder, ast.ExprID) {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("const.rs", []byte(src)))
	toks := lexer.Tokenize(f, lexer.Options{})
	b := ast.NewBuilder(ast.Hints{})
	id, n, ok := parser.ParseExpr(b, toks[:len(toks)-1], parser.Options{})
	if !ok || n != len(toks)-1 {
		t.Fatalf("cannot parse %q", src)
	}
	return b, id
}

func newEval(b *ast.Builder) *consteval.Evaluator {
	r := &fakeResolver{
		b:      b,
		consts: map[string]consteval.Value{"N": consteval.Usize(3), "crate::K": consteval.Usize(2)},
		sizes:  map[string]uint64{"i32": 4, "u64": 8},
	}
	return consteval.New(b, r, 8)
}

func TestLengths(t *testing.T) {
	cases := []struct {
		src  string
		want uint64
	}{
		{"4", 4},
		{"4usize", 4},
		{"(1 + 2) * 3", 9},
		{"N * 2", 6},
		{"crate::K + N", 5},
		{"mem::size_of::<i32>()", 4},
		{"size_of::<u64>() / 2 - 1", 3},
		{"{ 7 }", 7},
		{"1 << 4", 16},
		{"10 % 4", 2},
		{"(-3i32 + 5) as usize", 2},
		{"255u8 as usize", 255},
		{"!0u8 as usize", 255},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			b, id := parseExpr(t, tc.src)
			got, err := newEval(b).Length(id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		src  string
		code diag.Code
	}{
		{"x", diag.ConstNotConstant},
		{"foo()", diag.ConstNotConstant},
		{"0 - 1", diag.ConstOverflow},
		{"1 / 0", diag.ConstOverflow},
		{"4i32", diag.SemaTypeMismatch},
		{"300u8 as usize", diag.ConstOverflow},
		{"-1", diag.SemaTypeMismatch},
		{"1 << 64", diag.ConstOverflow},
		{"[1, 2]", diag.ConstNotConstant},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			b, id := parseExpr(t, tc.src)
			_, err := newEval(b).Length(id)
			var ce *consteval.Error
			if !errors.As(err, &ce) {
				t.Fatalf("expected *consteval.Error, got %v", err)
			}
			if ce.Code != tc.code {
				t.Fatalf("code = %s, want %s (%s)", ce.Code.ID(), tc.code.ID(), ce.Msg)
			}
		})
	}
}

func TestSignedArithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"-5 + 2", -3},
		{"-7 / 2", -3},
		{"-7 % 2", -1},
		{"-8 >> 1", -4},
		{"3 * -4", -12},
	}
	for _, tc := range cases {
		b, id := parseExpr(t, tc.src)
		v, err := newEval(b).Eval(id, consteval.NoHint)
		if err != nil {
			t.Fatalf("%s: %v", tc.src, err)
		}
		if v.Int64() != tc.want {
			t.Fatalf("%s = %d, want %d", tc.src, v.Int64(), tc.want)
		}
	}

	b, id := parseExpr(t, "127i8 + 1")
	if _, err := newEval(b).Eval(id, consteval.NoHint); err == nil {
		t.Fatal("expected i8 overflow")
	}
}

func TestComparisonsAndLogic(t *testing.T) {
	cases := map[string]bool{
		"1 < 2":            true,
		"N == 3":           true,
		"-1 < 0":           true,
		"2 > 3 || 1 == 1":  true,
		"true && !true":    false,
		"(4 >= 4) ^ false": true,
	}
	for src, want := range cases {
		b, id := parseExpr(t, src)
		v, err := newEval(b).Eval(id, consteval.NoHint)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		if !v.IsBool() || (v.Bits != 0) != want {
			t.Fatalf("%s = %s, want %v", src, v, want)
		}
	}
}
