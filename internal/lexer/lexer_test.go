package lexer_test

import (
	"strings"
	"testing"

	"rsfront/internal/diag"
	"rsfront/internal/lexer"
	"rsfront/internal/source"
	"rsfront/internal/token"
)

func lexString(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rs", []byte(src))
	bag := diag.NewBag(0)
	toks := lexer.Tokenize(fs.Get(id), lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return toks, bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}
	return out
}

func TestTokenizeKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{
			name: "range index",
			src:  "&a[1..3]",
			want: []token.Kind{token.Amp, token.Ident, token.LBracket, token.IntLit, token.DotDot, token.IntLit, token.RBracket, token.EOF},
		},
		{
			name: "turbofish",
			src:  "mem::size_of::<i32>()",
			want: []token.Kind{token.Ident, token.ColonColon, token.Ident, token.ColonColon, token.Lt, token.Ident, token.Gt, token.LParen, token.RParen, token.EOF},
		},
		{
			name: "macro rules",
			src:  "macro_rules! m { ($x:expr) => {{}}; }",
			want: []token.Kind{
				token.Ident, token.Bang, token.Ident, token.LBrace,
				token.LParen, token.Dollar, token.Ident, token.Colon, token.Ident, token.RParen,
				token.FatArrow, token.LBrace, token.LBrace, token.RBrace, token.RBrace, token.Semicolon,
				token.RBrace, token.EOF,
			},
		},
		{
			name: "variadic extern",
			src:  "fn printf(fmt: *const i8, ...);",
			want: []token.Kind{
				token.KwFn, token.Ident, token.LParen, token.Ident, token.Colon, token.Star, token.KwConst,
				token.Ident, token.Comma, token.DotDotDot, token.RParen, token.Semicolon, token.EOF,
			},
		},
		{
			name: "comments skipped",
			src:  "a /* x /* nested */ y */ // tail\nb",
			want: []token.Kind{token.Ident, token.Ident, token.EOF},
		},
		{
			name: "underscore and ident",
			src:  "_ _b",
			want: []token.Kind{token.Underscore, token.Ident, token.EOF},
		},
		{
			name: "shift compound",
			src:  "x >>= 1 << 2",
			want: []token.Kind{token.Ident, token.ShrAssign, token.IntLit, token.Shl, token.IntLit, token.EOF},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, bag := lexString(t, tt.src)
			if bag.Len() != 0 {
				t.Fatalf("unexpected diagnostics: %+v", bag.Items())
			}
			got := kinds(toks)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("token %d: got %v, want %v (all: %v)", i, got[i], tt.want[i], got)
				}
			}
		})
	}
}

func TestNumberSuffixes(t *testing.T) {
	toks, bag := lexString(t, "456u32 1.5 2f64 0xffu8 1_000usize x.0")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []struct {
		kind token.Kind
		text string
	}{
		{token.IntLit, "456u32"},
		{token.FloatLit, "1.5"},
		{token.FloatLit, "2f64"},
		{token.IntLit, "0xffu8"},
		{token.IntLit, "1_000usize"},
		{token.Ident, "x"},
		{token.Dot, "."},
		{token.IntLit, "0"},
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Text != w.text {
			t.Fatalf("token %d: got %v %q, want %v %q", i, toks[i].Kind, toks[i].Text, w.kind, w.text)
		}
	}
}

func TestStringKeepsQuotesAndEscapes(t *testing.T) {
	toks, _ := lexString(t, `"%u\n\0"`)
	if toks[0].Kind != token.StringLit || toks[0].Text != `"%u\n\0"` {
		t.Fatalf("unexpected token %+v", toks[0])
	}
}

func TestUnicodeIdentNormalized(t *testing.T) {
	// e + combining acute
	toks, bag := lexString(t, "cafe\u0301")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if toks[0].Kind != token.Ident || toks[0].Text != "caf\u00e9" {
		t.Fatalf("expected NFC identifier, got %q", toks[0].Text)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		src  string
		code diag.Code
	}{
		{`"open`, diag.LexUnterminatedString},
		{"/* open", diag.LexUnterminatedBlock},
		{"a ` b", diag.LexUnknownChar},
		{"0x", diag.LexBadNumber},
	}
	for _, tt := range tests {
		_, bag := lexString(t, tt.src)
		if !bag.HasCode(tt.code) {
			var msgs []string
			for _, d := range bag.Items() {
				msgs = append(msgs, d.Code.ID()+" "+d.Message)
			}
			t.Fatalf("%q: expected %s, got [%s]", tt.src, tt.code.ID(), strings.Join(msgs, "; "))
		}
	}
}
