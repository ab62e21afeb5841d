package parser

import (
	"slices"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/lexer"
	"rsfront/internal/source"
	"rsfront/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File   ast.FileID
	Tokens int
	Errors uint
}

// Parser: состояние парсера на один поток токенов.
type Parser struct {
	toks     []token.Token
	pos      int
	arenas   *ast.Builder
	opts     Options
	lastSpan source.Span
	noStruct bool // запрещены struct-литералы (условия if/while/match)
	depth    int
	splits   int // сколько составных токенов было расщеплено
}

const maxNesting = 256

func newParser(toks []token.Token, arenas *ast.Builder, opts Options) *Parser {
	toks = slices.Clone(toks)
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		var sp source.Span
		if len(toks) > 0 {
			sp = toks[len(toks)-1].Span
			sp.Start = sp.End
		}
		toks = append(toks, token.Token{Kind: token.EOF, Span: sp})
	}
	return &Parser{toks: toks, arenas: arenas, opts: opts, lastSpan: toks[0].Span.StartPoint()}
}

// ParseFile: входная точка для разбора одного файла.
func ParseFile(fs *source.FileSet, fileID source.FileID, arenas *ast.Builder, opts Options) Result {
	file := fs.Get(fileID)
	if file == nil {
		return Result{}
	}
	toks := lexer.Tokenize(file, lexer.Options{Reporter: opts.Reporter})
	p := newParser(toks, arenas, opts)
	start := p.peek().Span
	items := p.parseItems(token.EOF)
	span := start.Cover(p.lastSpan)
	id := arenas.NewFile(fileID, span, items)
	return Result{File: id, Tokens: len(toks), Errors: p.opts.CurrentErrors}
}

// ParseExpr parses one expression from the start of toks and returns how many
// tokens it consumed. Used for macro transcription and fragment matching.
func ParseExpr(arenas *ast.Builder, toks []token.Token, opts Options) (ast.ExprID, int, bool) {
	p := newParser(toks, arenas, opts)
	id, ok := p.parseExpr()
	return id, p.consumed(), ok && p.opts.CurrentErrors == 0
}

// ParseType parses one type from the start of toks.
func ParseType(arenas *ast.Builder, toks []token.Token, opts Options) (ast.TypeID, int, bool) {
	p := newParser(toks, arenas, opts)
	id, ok := p.parseType()
	return id, p.consumed(), ok && p.opts.CurrentErrors == 0
}

// consumed counts input tokens, not the halves produced by splitAt.
func (p *Parser) consumed() int {
	return p.pos - p.splits
}

// ParseBlockBody parses statements up to the end of toks as the body of a block.
func ParseBlockBody(arenas *ast.Builder, toks []token.Token, opts Options) (ast.ExprID, bool) {
	p := newParser(toks, arenas, opts)
	start := p.peek().Span
	stmts, tail := p.parseBlockContents(token.EOF)
	span := start.Cover(p.lastSpan)
	id := p.arenas.NewExpr(ast.ExprBlock, span, &ast.BlockData{Stmts: stmts, Tail: tail})
	return id, p.opts.CurrentErrors == 0
}

// parseItems: основной цикл: пока не end: parseItem.
func (p *Parser) parseItems(end token.Kind) []ast.ItemID {
	var items []ast.ItemID
	for !p.at(end) && !p.at(token.EOF) {
		if p.opts.Enough() {
			break
		}
		if p.at(token.Hash) && p.peekN(1).Kind == token.Bang {
			// #![...] на уровне файла игнорируем
			p.parseAttr()
			continue
		}
		id, ok := p.parseItem()
		if !ok {
			p.resyncTop()
			continue
		}
		items = append(items, id)
	}
	return items
}
