package parser

import (
	"slices"

	"rsfront/internal/diag"
	"rsfront/internal/source"
	"rsfront/internal/token"
)

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekN(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

// atIdent проверяет контекстное слово вроде `union` или `macro_rules`.
func (p *Parser) atIdent(text string) bool {
	t := p.peek()
	return t.Kind == token.Ident && t.Text == text
}

// advance: съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.toks[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
		p.lastSpan = tok.Span
	}
	return tok
}

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// expect: ожидаем конкретный токен. Если нет, репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	if p.splitAt(k) {
		return p.advance(), true
	}
	p.err(code, msg+", got "+describe(p.peek()))
	return token.Token{Kind: token.Invalid, Span: p.diagSpan()}, false
}

// splitAt отщепляет первый символ составного токена (`>>` → `>` `>`, `&&` → `&` `&`),
// если он совпадает с want. Токены уже скопированы в newParser.
func (p *Parser) splitAt(want token.Kind) bool {
	cur := p.peek()
	var first, rest token.Kind
	switch {
	case want == token.Gt && cur.Kind == token.Shr:
		first, rest = token.Gt, token.Gt
	case want == token.Gt && cur.Kind == token.GtEq:
		first, rest = token.Gt, token.Assign
	case want == token.Gt && cur.Kind == token.ShrAssign:
		first, rest = token.Gt, token.GtEq
	case want == token.Amp && cur.Kind == token.AndAnd:
		first, rest = token.Amp, token.Amp
	case want == token.Lt && cur.Kind == token.Shl:
		first, rest = token.Lt, token.Lt
	default:
		return false
	}
	head := token.Token{Kind: first, Span: cur.Span, Text: first.String()}
	head.Span.End = head.Span.Start + 1
	tail := token.Token{Kind: rest, Span: cur.Span, Text: rest.String()}
	tail.Span.Start = head.Span.End
	p.toks = slices.Insert(p.toks, p.pos, head)
	p.splits++
	p.toks[p.pos+1] = tail
	return true
}

func describe(t token.Token) string {
	switch t.Kind {
	case token.EOF:
		return "end of input"
	case token.Ident, token.IntLit, token.FloatLit, token.StringLit:
		return "\"" + t.Text + "\""
	default:
		return "'" + t.Kind.String() + "'"
	}
}

// diagSpan: лучший span для диагностики: на EOF указываем за последний токен.
func (p *Parser) diagSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) {
	p.errAt(code, p.diagSpan(), msg)
}

func (p *Parser) errAt(code diag.Code, sp source.Span, msg string) {
	p.opts.CurrentErrors++
	if p.opts.Reporter == nil || (p.opts.MaxErrors > 0 && p.opts.CurrentErrors > p.opts.MaxErrors) {
		return
	}
	diag.ReportError(p.opts.Reporter, code, sp, msg).Emit()
}

// skipTree пропускает сбалансированную группу, начиная с открывающей скобки.
func (p *Parser) skipTree() {
	if !p.peek().Kind.IsOpenDelim() {
		p.advance()
		return
	}
	depth := 0
	for !p.at(token.EOF) {
		t := p.advance()
		if t.Kind.IsOpenDelim() {
			depth++
		} else if t.Kind.IsCloseDelim() {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

// resyncTop: восстановление после ошибки на верхнем уровне:
// прокручиваем до стартового токена следующего item или EOF.
func (p *Parser) resyncTop() {
	start := p.pos
	for !p.at(token.EOF) {
		if p.pos > start && isItemStarter(p.peek()) {
			return
		}
		if p.at(token.RBrace) && p.pos > start {
			return
		}
		if p.peek().Kind.IsOpenDelim() {
			p.skipTree()
			continue
		}
		if p.eat(token.Semicolon) {
			return
		}
		p.advance()
	}
}

// resyncStmt прокручивает до ';' или закрывающей '}' текущего блока.
func (p *Parser) resyncStmt(end token.Kind) {
	for !p.at(token.EOF) && !p.at(end) {
		if p.eat(token.Semicolon) {
			return
		}
		if p.peek().Kind.IsOpenDelim() {
			p.skipTree()
			continue
		}
		if p.peek().Kind.IsCloseDelim() {
			return
		}
		p.advance()
	}
}

func isItemStarter(t token.Token) bool {
	switch t.Kind {
	case token.KwFn, token.KwStruct, token.KwEnum, token.KwTrait, token.KwImpl, token.KwMod,
		token.KwExtern, token.KwConst, token.KwStatic, token.KwPub, token.KwUnsafe, token.KwType, token.Hash:
		return true
	case token.Ident:
		return t.Text == "union" || t.Text == "macro_rules"
	default:
		return false
	}
}

// nested ограничивает глубину рекурсии на патологическом вводе.
func (p *Parser) nested() bool {
	if p.depth >= maxNesting {
		p.err(diag.SynUnexpectedToken, "nesting is too deep")
		return false
	}
	p.depth++
	return true
}

func (p *Parser) unnest() { p.depth-- }
