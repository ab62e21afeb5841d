package parser_test

import (
	"testing"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/parser"
	"rsfront/internal/source"
)

func parseSource(t *testing.T, src string) (*ast.Builder, *ast.File, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rs", []byte(src))
	b := ast.NewBuilder(ast.Hints{})
	bag := diag.NewBag(0)
	res := parser.ParseFile(fs, id, b, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	return b, b.File(res.File), bag
}

func mustParse(t *testing.T, src string) (*ast.Builder, *ast.File) {
	t.Helper()
	b, f, bag := parseSource(t, src)
	if bag.Len() != 0 {
		for _, d := range bag.Items() {
			t.Errorf("%s %s at %s", d.Code.ID(), d.Message, d.Primary)
		}
		t.FailNow()
	}
	return b, f
}

func TestParseItems(t *testing.T) {
	b, f := mustParse(t, `
struct Foo<T> { a: T, b: bool, }
pub union Repr<T> { rust: *const [T], raw: FatPtr<T>, }
pub enum Option<T> { None, Some(T), }
extern "C" { fn printf(fmt: *const i8, ...); }
mod mem {
    extern "rust-intrinsic" {
        fn size_of<T>() -> usize;
        fn transmute<U, V>(_: U) -> V;
    }
}
#[lang = "index"]
trait Index<Idx> {
    type Output;
    fn index(&self, index: Idx) -> &Self::Output;
}
impl<T, I> Index<I> for [T] where I: SliceIndex<[T]>, {
    type Output = I::Output;
    fn index(&self, index: I) -> &I::Output { index.index(self) }
}
macro_rules! concat { () => {{}}; }
`)
	wantKinds := []ast.ItemKind{
		ast.ItemStruct, ast.ItemUnion, ast.ItemEnum, ast.ItemExternBlock, ast.ItemMod,
		ast.ItemTrait, ast.ItemImpl, ast.ItemMacroRules,
	}
	if len(f.Items) != len(wantKinds) {
		t.Fatalf("got %d items, want %d", len(f.Items), len(wantKinds))
	}
	for i, id := range f.Items {
		if got := b.Item(id).Kind; got != wantKinds[i] {
			t.Fatalf("item %d: got %v, want %v", i, got, wantKinds[i])
		}
	}

	ext := b.Item(f.Items[3]).Data.(*ast.ExternBlockItem)
	printf := b.Item(ext.Items[0]).Data.(*ast.FnItem)
	if ext.ABI != "C" || !printf.Variadic || len(printf.Params) != 1 {
		t.Fatalf("extern printf parsed wrong: abi=%q variadic=%v params=%d", ext.ABI, printf.Variadic, len(printf.Params))
	}

	trait := b.Item(f.Items[5])
	if lang, ok := ast.LangItem(trait.Attrs); !ok || lang != "index" {
		t.Fatalf("expected lang attribute, got %+v", trait.Attrs)
	}

	impl := b.Item(f.Items[6]).Data.(*ast.ImplItem)
	if impl.Trait == nil || impl.Trait.String() != "Index" || len(impl.Generics.Where) != 1 {
		t.Fatalf("impl header parsed wrong: %+v", impl)
	}
	if self := b.Type(impl.Self); self.Kind != ast.TypeSlice {
		t.Fatalf("impl self type: got %v", self.Kind)
	}

	mac := b.Item(f.Items[7]).Data.(*ast.MacroRulesItem)
	if len(mac.Rules) != 1 || len(mac.Rules[0].Pattern) != 0 || len(mac.Rules[0].Body) != 2 {
		t.Fatalf("macro rule parsed wrong: %+v", mac.Rules)
	}
}

func fnBody(t *testing.T, b *ast.Builder, f *ast.File, idx int) *ast.BlockData {
	t.Helper()
	fn := b.Item(f.Items[idx]).Data.(*ast.FnItem)
	return b.Expr(fn.Body).Data.(*ast.BlockData)
}

func TestParseExpressionShapes(t *testing.T) {
	b, f := mustParse(t, `
fn main() -> i32 {
    let b = &a[1..3];
    let x = "%u\n\0" as *const str as *const i8;
    let r = concat!("test2") == "test3";
    let s = Foo::<T> { a: a, b: true };
    if self.start > self.end { 1 } else { 2 }
    unsafe { Repr { raw: FatPtr { data, len } }.rust }
}
`)
	body := fnBody(t, b, f, 0)
	if len(body.Stmts) != 5 || !body.Tail.IsValid() {
		t.Fatalf("got %d stmts, tail=%v", len(body.Stmts), body.Tail)
	}
	letInit := func(i int) *ast.Expr {
		return b.Expr(b.Stmt(body.Stmts[i]).Data.(*ast.LetData).Init)
	}

	addr := letInit(0).Data.(*ast.AddrOfData)
	idx := b.Expr(addr.X).Data.(*ast.IndexData)
	if rng := b.Expr(idx.Index); rng.Kind != ast.ExprRange {
		t.Fatalf("expected range index, got %v", rng.Kind)
	}

	cast := letInit(1).Data.(*ast.CastData)
	if inner := b.Expr(cast.X); inner.Kind != ast.ExprCast {
		t.Fatalf("expected chained cast, got %v", inner.Kind)
	}

	cmp := letInit(2).Data.(*ast.BinaryData)
	if cmp.Op != ast.BinEq || b.Expr(cmp.X).Kind != ast.ExprMacroCall {
		t.Fatalf("expected macro call compared with ==, got %+v", cmp)
	}

	lit := letInit(3).Data.(*ast.StructLitData)
	if len(lit.Path.Segments[0].Args) != 1 || len(lit.Fields) != 2 {
		t.Fatalf("turbofish struct literal parsed wrong: %+v", lit)
	}

	ifStmt := b.Expr(b.Stmt(body.Stmts[4]).Data.(*ast.ExprStmtData).X)
	if ifStmt.Kind != ast.ExprIf {
		t.Fatalf("expected if statement, got %v", ifStmt.Kind)
	}
	cond := b.Expr(ifStmt.Data.(*ast.IfData).Cond)
	if cond.Kind != ast.ExprBinary {
		t.Fatalf("struct literal must not be parsed in if condition, got %v", cond.Kind)
	}

	tail := b.Expr(body.Tail)
	if tail.Kind != ast.ExprBlock || !tail.Data.(*ast.BlockData).Unsafe {
		t.Fatalf("expected unsafe block tail, got %v", tail.Kind)
	}
	inner := b.Expr(tail.Data.(*ast.BlockData).Tail)
	if inner.Kind != ast.ExprField {
		t.Fatalf("expected field access on union literal, got %v", inner.Kind)
	}
}

func TestParseNestedGenericsSplitShr(t *testing.T) {
	b, f := mustParse(t, `fn f(x: Option<Option<u8>>) {}`)
	fn := b.Item(f.Items[0]).Data.(*ast.FnItem)
	ty := b.Type(fn.Params[0].Type)
	if ty.Kind != ast.TypePath || len(ty.Path.Segments[0].Args) != 1 {
		t.Fatalf("nested generic type parsed wrong: %+v", ty)
	}
}

func TestPrecedence(t *testing.T) {
	b, f := mustParse(t, `fn f() { 1 + 2 * 3 - 4 as u8 }`)
	body := fnBody(t, b, f, 0)
	sub := b.Expr(body.Tail).Data.(*ast.BinaryData)
	if sub.Op != ast.BinSub {
		t.Fatalf("top operator: got %v", sub.Op)
	}
	if b.Expr(sub.Y).Kind != ast.ExprCast {
		t.Fatalf("cast must bind tighter than '-'")
	}
	add := b.Expr(sub.X).Data.(*ast.BinaryData)
	if add.Op != ast.BinAdd || b.Expr(add.Y).Data.(*ast.BinaryData).Op != ast.BinMul {
		t.Fatalf("'*' must bind tighter than '+'")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"variadic not last", "extern \"C\" { fn f(..., x: i32); }", diag.SynVariadicNotLast},
		{"missing semicolon", "fn f() { let x = 1 let y = 2; }", diag.SynUnexpectedToken},
		{"bad macro rules", "macro_rules! m { () {} }", diag.SynBadMacroRules},
		{"unclosed", "fn f() { g(1, 2 }", diag.SynUnclosedDelimiter},
		{"not an item", "let x = 1;", diag.SynUnexpectedItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := parseSource(t, tt.src)
			if !bag.HasCode(tt.code) {
				t.Fatalf("expected %s, got %+v", tt.code.ID(), bag.Items())
			}
		})
	}
}

func TestParseExprTokensConsumed(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("frag.rs", []byte("a + 1, b"))
	b := ast.NewBuilder(ast.Hints{})
	toks := tokenize(fs.Get(id))
	_, n, ok := parser.ParseExpr(b, toks, parser.Options{})
	if !ok || n != 3 {
		t.Fatalf("expected 3 consumed tokens, got %d ok=%v", n, ok)
	}
}
