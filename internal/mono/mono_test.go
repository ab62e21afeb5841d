package mono_test

import (
	"errors"
	"strings"
	"testing"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/mono"
	"rsfront/internal/source"
	"rsfront/internal/symbols"
	"rsfront/internal/types"
)

type fixture struct {
	table  *symbols.Table
	in     *types.Interner
	params map[symbols.ItemID][]types.TypeID
	inst   *mono.Instantiator
}

// newFixture registers fake items with the given arities.
func newFixture(t *testing.T, arities ...int) *fixture {
	t.Helper()
	b := ast.NewBuilder(ast.Hints{})
	f := &fixture{table: symbols.NewTable(b), in: types.NewInterner(), params: map[symbols.ItemID][]types.TypeID{}}
	var items []ast.ItemID
	for i, n := range arities {
		g := ast.Generics{}
		for j := 0; j < n; j++ {
			g.Params = append(g.Params, ast.GenericParam{Name: string(rune('T' + j))})
		}
		items = append(items, b.NewItem(ast.Item{Kind: ast.ItemFn, Name: "f" + string(rune('0'+i)), Data: &ast.FnItem{Generics: g}}))
	}
	file := b.NewFile(source.FileID(1), source.Span{}, items)
	f.table.CollectFile(file, symbols.CollectOptions{})
	f.table.Items(func(id symbols.ItemID, it *symbols.Item) {
		if it.Generics == nil {
			return
		}
		for j, p := range it.Generics.Params {
			f.params[id] = append(f.params[id], f.in.Param(uint32(id), uint32(j), p.Name, true))
		}
	})
	f.inst = mono.New(f.table, f.in, func(id symbols.ItemID) []types.TypeID { return f.params[id] }, mono.Options{MaxDepth: 3})
	return f
}

func TestInstantiateCacheIdentity(t *testing.T) {
	f := newFixture(t, 1)
	b := f.in.Builtins()
	a, err := f.inst.Instantiate(1, []types.TypeID{b.U32}, mono.UseSite{Span: source.Span{Start: 1}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	again, err := f.inst.Instantiate(1, []types.TypeID{b.U32}, mono.UseSite{Span: source.Span{Start: 9}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a != again {
		t.Fatal("same key must return the same instance")
	}
	if len(a.UseSites) != 2 {
		t.Fatalf("use sites = %d", len(a.UseSites))
	}
	other, _ := f.inst.Instantiate(1, []types.TypeID{b.I32}, mono.UseSite{}, nil)
	if other == a || f.inst.Len() != 2 {
		t.Fatal("different arguments must produce a new instance")
	}
	if a.Subst[f.params[1][0]] != b.U32 {
		t.Fatal("substitution does not bind T")
	}

	first, _ := f.inst.Next()
	second, _ := f.inst.Next()
	if first != a || second != other {
		t.Fatal("queue must be FIFO")
	}
	if _, ok := f.inst.Next(); ok {
		t.Fatal("queue must be empty")
	}
	f.inst.Finish(first)
	if !first.Done() || second.Done() {
		t.Fatal("Finish marks only the given instance")
	}
}

func TestInstantiateErrors(t *testing.T) {
	f := newFixture(t, 1, 0)
	b := f.in.Builtins()
	cases := []struct {
		name string
		item symbols.ItemID
		args []types.TypeID
		code diag.Code
		msg  string
	}{
		{"arity", 1, nil, diag.MonoArityMismatch, "`f0` takes 1 generic argument but 0 were supplied"},
		{"arity non-generic", 2, []types.TypeID{b.U8}, diag.MonoArityMismatch, "`f1` takes 0 generic arguments but 1 was supplied"},
		{"unsized", 1, []types.TypeID{f.in.Slice(b.U8)}, diag.MonoUnsizedArgument, "the size of `[u8]` cannot be known"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.inst.Instantiate(tc.item, tc.args, mono.UseSite{}, nil)
			var me *mono.Error
			if !errors.As(err, &me) {
				t.Fatalf("expected *mono.Error, got %v", err)
			}
			if me.Code() != tc.code || !strings.Contains(me.Error(), tc.msg) {
				t.Fatalf("got %s %q", me.Code().ID(), me.Error())
			}
		})
	}
}

func TestDepthLimit(t *testing.T) {
	f := newFixture(t, 1)
	b := f.in.Builtins()
	arg := b.U8
	var parent *mono.Instance
	var err error
	for i := 0; i < 10 && err == nil; i++ {
		arg = f.in.Pointer(arg, false)
		parent, err = f.inst.Instantiate(1, []types.TypeID{arg}, mono.UseSite{}, parent)
	}
	var me *mono.Error
	if !errors.As(err, &me) || me.Code() != diag.MonoDepthExceeded {
		t.Fatalf("expected depth error, got %v", err)
	}
	if f.inst.Len() != 4 {
		t.Fatalf("instances before the limit = %d", f.inst.Len())
	}
}

func TestInference(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	T := in.Param(1, 0, "T", true)
	U := in.Param(1, 1, "U", true)
	foo := in.Adt(types.AdtStruct, 5, "Foo", []types.TypeID{T})

	inf := mono.NewInference(in, "test", []types.TypeID{T, U})
	if err := inf.Explicit([]types.TypeID{U}, []types.TypeID{b.Bool}); err != nil {
		t.Fatal(err)
	}
	// возвращаемый тип Foo<T> против ожидаемого Foo<u32>
	if !inf.Unify(foo, in.Adt(types.AdtStruct, 5, "Foo", []types.TypeID{b.U32})) {
		t.Fatal("result type must unify")
	}
	if inf.Unify(T, b.I64) {
		t.Fatal("conflicting binding must fail")
	}
	args, err := inf.Complete()
	if err != nil {
		t.Fatal(err)
	}
	if args[0] != b.U32 || args[1] != b.Bool {
		t.Fatalf("args = %v", args)
	}

	inf = mono.NewInference(in, "test", []types.TypeID{T, U})
	if err := inf.Explicit([]types.TypeID{T, U}, []types.TypeID{b.U8}); err == nil {
		t.Fatal("expected arity error")
	}
	_, err = inf.Complete()
	var me *mono.Error
	if !errors.As(err, &me) || me.Code() != diag.MonoUnresolvedInference || !strings.Contains(me.Error(), "`T`") {
		t.Fatalf("expected unresolved T, got %v", err)
	}
}

func TestInferenceCoercions(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	T := in.Param(1, 0, "T", true)
	cases := []struct {
		name    string
		pattern types.TypeID
		actual  types.TypeID
		want    types.TypeID
	}{
		{"ref to ptr", in.Pointer(T, false), in.Reference(b.U8, false), b.U8},
		{"mut ptr to const", in.Pointer(T, false), in.Pointer(b.I32, true), b.I32},
		{"array ref to slice", in.Reference(in.Slice(T), false), in.Reference(in.Array(b.U16, 3), false), b.U16},
		{"exact", in.Reference(T, true), in.Reference(b.Bool, true), b.Bool},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inf := mono.NewInference(in, "f", []types.TypeID{T})
			if !inf.Unify(tc.pattern, tc.actual) {
				t.Fatal("unify failed")
			}
			if got := inf.Apply(T); got != tc.want {
				t.Fatalf("T = %s", types.Label(in, got))
			}
		})
	}

	inf := mono.NewInference(in, "f", []types.TypeID{T})
	if inf.Unify(in.Pointer(T, true), in.Reference(b.U8, false)) {
		t.Fatal("shared reference must not coerce to *mut")
	}
	if inf.Unify(in.Reference(T, false), in.Pointer(b.U8, false)) {
		t.Fatal("raw pointer must not coerce to a reference")
	}
}

func TestDump(t *testing.T) {
	f := newFixture(t, 1)
	b := f.in.Builtins()
	if _, err := f.inst.Instantiate(1, []types.TypeID{b.U32}, mono.UseSite{}, nil); err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if err := f.inst.Dump(&sb); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(sb.String(), "f0::<u32>") || !strings.Contains(sb.String(), "depth=0 uses=0") {
		t.Fatalf("dump = %q", sb.String())
	}
}
