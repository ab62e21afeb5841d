package driver

import (
	"rsfront/internal/diag"
	"rsfront/internal/lexer"
	"rsfront/internal/source"
	"rsfront/internal/token"
)

type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// Tokenize lexes path without parsing it.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	// Создаём FileSet и загружаем файл
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	tokens := tokenizeFile(file, bag)
	bag.Sort()

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}, nil
}

func tokenizeFile(file *source.File, bag *diag.Bag) []token.Token {
	return lexer.Tokenize(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
}
