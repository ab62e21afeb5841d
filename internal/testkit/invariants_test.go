package testkit

import (
	"testing"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/lexer"
	"rsfront/internal/parser"
	"rsfront/internal/source"
	"rsfront/internal/token"
)

func TestInvariantsHoldForParsedFile(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("ok.rs", []byte("struct P { x: i32 }\n\nfn main() -> i32 {\n    let p = P { x: 1 };\n    p.x\n}\n"))
	b := ast.NewBuilder(ast.Hints{})
	bag := diag.NewBag(0)
	res := parser.ParseFile(fs, id, b, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if err := CheckSpanInvariants(b, res.File, fs.Get(id)); err != nil {
		t.Fatal(err)
	}
	toks := lexer.Tokenize(fs.Get(id), lexer.Options{})
	if err := CheckTokenInvariants(toks, fs.Get(id)); err != nil {
		t.Fatal(err)
	}
}

func TestTokenInvariantViolations(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.rs", []byte("a b"))
	sf := fs.Get(id)
	sp := func(s, e uint32) source.Span { return source.Span{File: id, Start: s, End: e} }

	tests := []struct {
		name string
		toks []token.Token
	}{
		{"empty", nil},
		{"no eof", []token.Token{{Kind: token.Ident, Span: sp(0, 1)}}},
		{"backwards", []token.Token{{Kind: token.Ident, Span: sp(2, 3)}, {Kind: token.Ident, Span: sp(0, 1)}, {Kind: token.EOF, Span: sp(3, 3)}}},
		{"past end", []token.Token{{Kind: token.Ident, Span: sp(0, 9)}, {Kind: token.EOF, Span: sp(9, 9)}}},
	}
	for _, tt := range tests {
		if err := CheckTokenInvariants(tt.toks, sf); err == nil {
			t.Errorf("%s: expected violation", tt.name)
		}
	}
}
