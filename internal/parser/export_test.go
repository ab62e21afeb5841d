package parser_test

import (
	"rsfront/internal/lexer"
	"rsfront/internal/source"
	"rsfront/internal/token"
)

func tokenize(f *source.File) []token.Token {
	toks := lexer.Tokenize(f, lexer.Options{})
	return toks[:len(toks)-1]
}
