package symbols_test

import (
	"testing"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/parser"
	"rsfront/internal/source"
	"rsfront/internal/symbols"
)

const preludeSrc = `
#[lang = "Range"]
pub struct Range<Idx> { pub start: Idx, pub end: Idx }
`

const userSrc = `
mod mem {
    extern "rust-intrinsic" {
        fn size_of<T>() -> usize;
        fn transmute<U, V>(_: U) -> V;
    }
}
extern "C" { fn printf(fmt: *const i8, ...); }
pub enum Option<T> { None, Some(T) }
struct Foo<T> { a: T, b: bool }
fn Foo() {}
#[lang = "index"]
trait Index<Idx> { type Output; fn index(&self, index: Idx) -> &Self::Output; }
impl<T> Foo<T> { fn get(&self) -> &T { &self.a } }
fn main() {}
`

func build(t *testing.T, user string) (*symbols.Table, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	b := ast.NewBuilder(ast.Hints{})
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	pre := parser.ParseFile(fs, fs.AddVirtual("prelude.rs", []byte(preludeSrc)), b, parser.Options{Reporter: rep})
	usr := parser.ParseFile(fs, fs.AddVirtual("main.rs", []byte(user)), b, parser.Options{Reporter: rep})
	if bag.HasErrors() {
		t.Fatalf("parse errors: %+v", bag.Items())
	}
	table := symbols.NewTable(b)
	table.CollectFile(pre.File, symbols.CollectOptions{Reporter: rep, Prelude: true})
	table.CollectFile(usr.File, symbols.CollectOptions{Reporter: rep})
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return table, bag
}

func TestResolvePath(t *testing.T) {
	table, bag := build(t, userSrc)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	tests := []struct {
		path     []string
		ns       symbols.Namespace
		kind     symbols.ItemKind
		consumed int
	}{
		{[]string{"mem", "size_of"}, symbols.NSValue, symbols.ItemIntrinsic, 2},
		{[]string{"crate", "mem", "transmute"}, symbols.NSValue, symbols.ItemIntrinsic, 3},
		{[]string{"printf"}, symbols.NSValue, symbols.ItemExternFn, 1},
		{[]string{"Option", "None"}, symbols.NSValue, symbols.ItemVariant, 2},
		{[]string{"Foo"}, symbols.NSType, symbols.ItemStruct, 1},
		{[]string{"Foo"}, symbols.NSValue, symbols.ItemFn, 1},
		{[]string{"Foo", "get"}, symbols.NSValue, symbols.ItemStruct, 1},
		{[]string{"Range"}, symbols.NSType, symbols.ItemStruct, 1},
	}
	for _, tt := range tests {
		res, ok := table.ResolvePath(table.Root, tt.path, tt.ns)
		if !ok {
			t.Errorf("%v: not resolved", tt.path)
			continue
		}
		it := table.Item(res.Item)
		if it.Kind != tt.kind || res.Consumed != tt.consumed {
			t.Errorf("%v: got %v consumed %d, want %v consumed %d", tt.path, it.Kind, res.Consumed, tt.kind, tt.consumed)
		}
	}
	if _, ok := table.ResolvePath(table.Root, []string{"mem", "missing"}, symbols.NSValue); ok {
		t.Errorf("mem::missing must not resolve")
	}
}

func TestLangItemsAndMembers(t *testing.T) {
	table, _ := build(t, userSrc)
	rng, ok := table.Lang("Range")
	if !ok || !table.Item(rng).Has(symbols.FlagPrelude) {
		t.Fatalf("prelude Range lang item missing")
	}
	idx, ok := table.Lang("index")
	if !ok {
		t.Fatalf("index lang item missing")
	}
	if _, ok := table.Member(idx, "Output"); !ok {
		t.Fatalf("trait associated type missing")
	}
	if len(table.Impls) != 1 || len(table.Traits) != 1 {
		t.Fatalf("got %d impls and %d traits", len(table.Impls), len(table.Traits))
	}
	if got := table.Path(table.Item(table.Impls[0]).Members[0]); got != "<impl>::get" {
		t.Fatalf("unexpected method path %q", got)
	}
	if it := table.Item(mustResolve(t, table, "Option")); it.Arity() != 1 || len(it.Members) != 2 {
		t.Fatalf("Option: arity %d, %d variants", it.Arity(), len(it.Members))
	}
}

func TestUserLangItemOverridesPrelude(t *testing.T) {
	table, bag := build(t, `#[lang = "Range"] pub struct Range<Idx> { pub start: Idx, pub end: Idx }`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	rng, _ := table.Lang("Range")
	if table.Item(rng).Has(symbols.FlagPrelude) {
		t.Fatalf("user Range must replace the prelude one")
	}
	if id := mustResolve(t, table, "Range"); id != rng {
		t.Fatalf("bare Range must resolve to the user item")
	}
}

func TestDuplicateSymbols(t *testing.T) {
	_, bag := build(t, `
struct A;
struct A { x: u8 }
impl A { fn f(&self) {} fn f(&self) {} }
`)
	if got := len(bag.Items()); got != 2 || !bag.HasCode(diag.SemaDuplicateSymbol) {
		t.Fatalf("expected two duplicate diagnostics, got %+v", bag.Items())
	}
}

func mustResolve(t *testing.T, table *symbols.Table, name string) symbols.ItemID {
	t.Helper()
	res, ok := table.ResolvePath(table.Root, []string{name}, symbols.NSType)
	if !ok {
		t.Fatalf("%s not resolved", name)
	}
	return res.Item
}
