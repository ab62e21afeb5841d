package token

import "testing"

func TestKeywordLookup(t *testing.T) {
	for word, kind := range keywords {
		got, ok := LookupKeyword(word)
		if !ok || got != kind {
			t.Fatalf("keyword %q -> %v, %v", word, got, ok)
		}
		if !kind.IsKeyword() {
			t.Fatalf("%v should report IsKeyword", kind)
		}
		if kind.String() != word {
			t.Fatalf("%v prints as %q, want %q", kind, kind.String(), word)
		}
	}
	if _, ok := LookupKeyword("union"); ok {
		t.Fatalf("union is contextual and must lex as an identifier")
	}
}

func TestDelimiters(t *testing.T) {
	pairs := map[Kind]Kind{LParen: RParen, LBracket: RBracket, LBrace: RBrace}
	for open, closing := range pairs {
		if !open.IsOpenDelim() || !closing.IsCloseDelim() {
			t.Fatalf("%v/%v not classified as delimiters", open, closing)
		}
		if open.MatchingClose() != closing {
			t.Fatalf("%v closes with %v", open, open.MatchingClose())
		}
	}
}
