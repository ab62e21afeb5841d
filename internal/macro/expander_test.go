package macro_test

import (
	"testing"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/macro"
	"rsfront/internal/parser"
	"rsfront/internal/source"
)

type unit struct {
	b    *ast.Builder
	file *ast.File
	bag  *diag.Bag
	exps []macro.Expansion
}

func expand(t *testing.T, src string) *unit {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("macros.rs", []byte(src))
	b := ast.NewBuilder(ast.Hints{})
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	res := parser.ParseFile(fs, id, b, parser.Options{Reporter: rep})
	if bag.HasErrors() {
		t.Fatalf("parse errors: %+v", bag.Items())
	}
	_, exps := macro.ExpandFile(b, res.File, macro.Options{Reporter: rep, Files: fs})
	return &unit{b: b, file: b.File(res.File), bag: bag, exps: exps}
}

// mainTail returns the tail expression of the last function in the file.
func (u *unit) mainTail(t *testing.T) *ast.Expr {
	t.Helper()
	fn := u.b.Item(u.file.Items[len(u.file.Items)-1]).Data.(*ast.FnItem)
	body := u.b.Expr(fn.Body).Data.(*ast.BlockData)
	if !body.Tail.IsValid() {
		t.Fatalf("main has no tail expression")
	}
	return u.b.Expr(body.Tail)
}

func TestFirstMatchingRuleWins(t *testing.T) {
	u := expand(t, `
macro_rules! pick {
    ($a:expr) => { 1 };
    ($a:expr, $b:expr) => { 2 };
    ($($x:expr),*) => { 3 };
}
fn main() -> i32 { pick!(7, 8) }
`)
	if u.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", u.bag.Items())
	}
	if len(u.exps) != 1 || u.exps[0].Rule != 1 {
		t.Fatalf("expected rule 1 to fire, got %+v", u.exps)
	}
	tail := u.mainTail(t)
	if lit, ok := tail.Data.(*ast.LitData); !ok || lit.Int != 2 {
		t.Fatalf("expected literal 2, got %+v", tail.Data)
	}
}

func TestNoMatchingRule(t *testing.T) {
	u := expand(t, `
macro_rules! one { (x) => { 1 }; }
fn main() -> i32 { one!(y) }
`)
	if !u.bag.HasCode(diag.MacroNoMatchingRule) {
		t.Fatalf("expected %s, got %+v", diag.MacroNoMatchingRule.ID(), u.bag.Items())
	}
}

func TestUnknownMacro(t *testing.T) {
	u := expand(t, `fn main() { nothing!() }`)
	if !u.bag.HasCode(diag.MacroUnknown) {
		t.Fatalf("expected %s, got %+v", diag.MacroUnknown.ID(), u.bag.Items())
	}
}

func TestExprFragmentKeepsPrecedence(t *testing.T) {
	u := expand(t, `
macro_rules! double { ($e:expr) => { $e * 2 }; }
fn main() -> i32 { double!(1 + 2) }
`)
	tail := u.mainTail(t)
	mul, ok := tail.Data.(*ast.BinaryData)
	if !ok || mul.Op != ast.BinMul {
		t.Fatalf("expected multiplication at the top, got %+v", tail.Data)
	}
	if u.b.Expr(mul.X).Kind != ast.ExprParen {
		t.Fatalf("expression fragment must stay parenthesised")
	}
}

func TestRepetitionTranscription(t *testing.T) {
	u := expand(t, `
macro_rules! sum {
    ($($x:expr),+) => { 0 $(+ $x)* };
}
fn main() -> i32 { sum!(1, 2, 3) }
`)
	if u.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", u.bag.Items())
	}
	// ((0 + 1) + 2) + 3
	depth := 0
	x := u.mainTail(t)
	for x.Kind == ast.ExprBinary {
		depth++
		x = u.b.Expr(x.Data.(*ast.BinaryData).X)
	}
	if depth != 3 {
		t.Fatalf("expected 3 additions, got %d", depth)
	}
}

func TestBuiltinNameIgnoresUserMacro(t *testing.T) {
	u := expand(t, `
macro_rules! concat { () => {{}}; }
fn main() -> bool { concat!("test2") == "test3" }
`)
	if u.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", u.bag.Items())
	}
	cmp := u.mainTail(t).Data.(*ast.BinaryData)
	lit, ok := u.b.Expr(cmp.X).Data.(*ast.LitData)
	if !ok || lit.Str != "test2" {
		t.Fatalf("expected builtin concat result, got %+v", u.b.Expr(cmp.X).Data)
	}
}

func TestBuiltinNameWinsOverMatchingUserRule(t *testing.T) {
	u := expand(t, `
macro_rules! file { () => {{}}; }
fn main() { let a = file!(); }
`)
	if u.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", u.bag.Items())
	}
	lit, ok := letInits(t, u)[0].Data.(*ast.LitData)
	if !ok || lit.Kind != ast.LitStr || lit.Str != "macros.rs" {
		t.Fatalf("expected the file name, got %+v", letInits(t, u)[0].Data)
	}
	if len(u.exps) != 1 || !u.exps[0].Builtin {
		t.Fatalf("expected builtin expansion, got %+v", u.exps)
	}
}

func TestUserMacroEmptyRuleIsUnitBlock(t *testing.T) {
	u := expand(t, `
macro_rules! m { () => {{}}; }
fn main() { m!() }
`)
	tail := u.mainTail(t)
	if tail.Kind != ast.ExprBlock {
		t.Fatalf("expected empty block, got %v", tail.Kind)
	}
	if len(u.exps) != 1 || u.exps[0].Builtin {
		t.Fatalf("expected user rule expansion, got %+v", u.exps)
	}
}

func letInits(t *testing.T, u *unit) []*ast.Expr {
	t.Helper()
	fn := u.b.Item(u.file.Items[len(u.file.Items)-1]).Data.(*ast.FnItem)
	body := u.b.Expr(fn.Body).Data.(*ast.BlockData)
	var out []*ast.Expr
	for _, s := range body.Stmts {
		if let, ok := u.b.Stmt(s).Data.(*ast.LetData); ok {
			out = append(out, u.b.Expr(let.Init))
		}
	}
	return out
}

func TestBuiltins(t *testing.T) {
	u := expand(t, `
#[rustc_builtin_macro]
macro_rules! file { () => { "user" }; }
fn main() {
    let a = file!();
    let b = concat!("a", 1, -2, true, 1.5);
    let c = line!();
    let d = stringify!(x + foo(1, 2));
    let e = column!();
}
`)
	if u.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", u.bag.Items())
	}
	inits := letInits(t, u)
	wantStr := map[int]string{0: "macros.rs", 1: "a1-2true1.5", 3: "x + foo(1, 2)"}
	for i, want := range wantStr {
		lit, ok := inits[i].Data.(*ast.LitData)
		if !ok || lit.Kind != ast.LitStr || lit.Str != want {
			t.Errorf("let #%d: got %+v, want %q", i, inits[i].Data, want)
		}
	}
	if lit := inits[2].Data.(*ast.LitData); lit.Int != 7 || lit.Suffix != "u32" {
		t.Errorf("line!(): got %d%s, want 7u32", lit.Int, lit.Suffix)
	}
	if lit := inits[4].Data.(*ast.LitData); lit.Int != 13 {
		t.Errorf("column!(): got %d, want 13", lit.Int)
	}
	for _, e := range u.exps {
		if !e.Builtin {
			t.Errorf("%s! expanded by a user rule", e.Name)
		}
	}
}

func TestRecursionLimit(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("rec.rs", []byte(`
macro_rules! forever { () => { 1 + forever!() }; }
fn main() -> i32 { forever!() }
`))
	b := ast.NewBuilder(ast.Hints{})
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	res := parser.ParseFile(fs, id, b, parser.Options{Reporter: rep})
	_, exps := macro.ExpandFile(b, res.File, macro.Options{Reporter: rep, Files: fs, MaxDepth: 8})
	if !bag.HasCode(diag.MacroRecursion) {
		t.Fatalf("expected %s, got %+v", diag.MacroRecursion.ID(), bag.Items())
	}
	if len(exps) != 8 {
		t.Fatalf("expected 8 expansions before the limit, got %d", len(exps))
	}
}

func TestTokenLimitStopsDoublingMacro(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("grow.rs", []byte(`
macro_rules! a { ($($t:tt)*) => { a!($($t)* $($t)*) }; }
fn main() { a!(x) }
`))
	b := ast.NewBuilder(ast.Hints{})
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	res := parser.ParseFile(fs, id, b, parser.Options{Reporter: rep})
	_, exps := macro.ExpandFile(b, res.File, macro.Options{Reporter: rep, Files: fs, MaxTokens: 4096})
	if !bag.HasCode(diag.MacroRecursion) {
		t.Fatalf("expected %s, got %+v", diag.MacroRecursion.ID(), bag.Items())
	}
	// каждый шаг удваивает вход, лимит срабатывает задолго до MaxDepth
	if len(exps) >= macro.DefaultMaxDepth || len(exps) < 8 {
		t.Fatalf("unexpected number of expansions: %d", len(exps))
	}
}
