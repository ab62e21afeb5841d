package parser

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/token"
)

func (p *Parser) parsePrimary() (ast.ExprID, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLit, token.FloatLit, token.StringLit, token.KwTrue, token.KwFalse:
		return p.parseLiteral()
	case token.Ident, token.KwSelfValue, token.KwSelfType, token.KwCrate, token.KwSuper:
		return p.parsePathExpr()
	case token.LParen:
		return p.parseParenOrTuple()
	case token.LBracket:
		return p.parseArrayExpr()
	case token.LBrace:
		return p.parseBlock(false)
	case token.KwUnsafe:
		p.advance()
		if !p.at(token.LBrace) {
			p.err(diag.SynUnexpectedToken, "expected '{' after 'unsafe'")
			return ast.NoExprID, false
		}
		return p.parseBlock(true)
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwLoop:
		return p.parseLoop()
	case token.KwMatch:
		return p.parseMatch()
	case token.KwBreak, token.KwReturn:
		p.advance()
		value := ast.NoExprID
		if p.canStartExpr() {
			var ok bool
			if value, ok = p.parseExpr(); !ok {
				return ast.NoExprID, false
			}
		}
		span := tok.Span.Cover(p.lastSpan)
		if tok.Kind == token.KwBreak {
			return p.arenas.NewExpr(ast.ExprBreak, span, &ast.BreakData{Value: value}), true
		}
		return p.arenas.NewExpr(ast.ExprReturn, span, &ast.ReturnData{Value: value}), true
	case token.KwContinue:
		p.advance()
		return p.arenas.NewExpr(ast.ExprContinue, tok.Span, &ast.ContinueData{}), true
	default:
		p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
		return ast.NoExprID, false
	}
}

func (p *Parser) parseLiteral() (ast.ExprID, bool) {
	tok := p.advance()
	lit, err := decodeLiteral(tok)
	if err != nil {
		p.errAt(diag.LexBadNumber, tok.Span, err.Error())
		return ast.NoExprID, false
	}
	return p.arenas.NewExpr(ast.ExprLit, tok.Span, lit), true
}

// parsePathExpr: путь, вызов макроса `name!(...)` или struct-литерал `Path { ... }`.
func (p *Parser) parsePathExpr() (ast.ExprID, bool) {
	path, ok := p.parsePath(true)
	if !ok {
		return ast.NoExprID, false
	}
	if p.at(token.Bang) && p.peekN(1).Kind.IsOpenDelim() && len(path.Segments) == 1 {
		p.advance() // '!'
		delim := p.peek().Kind
		tree := p.collectTree()
		if tree == nil {
			return ast.NoExprID, false
		}
		data := &ast.MacroCallData{Path: path, Delim: delim, Tokens: tree[1 : len(tree)-1]}
		return p.arenas.NewExpr(ast.ExprMacroCall, path.Span.Cover(p.lastSpan), data), true
	}
	if p.at(token.LBrace) && !p.noStruct && p.looksLikeStructLit() {
		return p.parseStructLit(path)
	}
	return p.arenas.NewExpr(ast.ExprPath, path.Span, &ast.PathData{Path: path}), true
}

// looksLikeStructLit: `{}` , `{ ident :`, `{ ident ,`, `{ ident }`.
func (p *Parser) looksLikeStructLit() bool {
	t1, t2 := p.peekN(1), p.peekN(2)
	if t1.Kind == token.RBrace {
		return true
	}
	if t1.Kind != token.Ident {
		return false
	}
	return t2.Kind == token.Colon || t2.Kind == token.Comma || t2.Kind == token.RBrace
}

func (p *Parser) parseStructLit(path ast.Path) (ast.ExprID, bool) {
	p.advance() // '{'
	data := &ast.StructLitData{Path: path}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		name, nameSpan, ok := p.parseIdent()
		if !ok {
			return ast.NoExprID, false
		}
		init := ast.FieldInit{Name: name, Span: nameSpan}
		if p.eat(token.Colon) {
			if init.Value, ok = p.parseExprCtx(false); !ok {
				return ast.NoExprID, false
			}
		} else {
			// сокращённая запись `Foo { data, len }`
			short := ast.Path{Segments: []ast.PathSegment{{Name: name, Span: nameSpan}}, Span: nameSpan}
			init.Value = p.arenas.NewExpr(ast.ExprPath, nameSpan, &ast.PathData{Path: short})
		}
		init.Span = nameSpan.Cover(p.lastSpan)
		data.Fields = append(data.Fields, init)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' after struct fields"); !ok {
		return ast.NoExprID, false
	}
	return p.arenas.NewExpr(ast.ExprStruct, path.Span.Cover(p.lastSpan), data), true
}

func (p *Parser) parseParenOrTuple() (ast.ExprID, bool) {
	start := p.advance().Span // '('
	if p.eat(token.RParen) {
		return p.arenas.NewExpr(ast.ExprTuple, start.Cover(p.lastSpan), &ast.TupleData{}), true
	}
	first, ok := p.parseExprCtx(false)
	if !ok {
		return ast.NoExprID, false
	}
	if p.eat(token.RParen) {
		return p.arenas.NewExpr(ast.ExprParen, start.Cover(p.lastSpan), &ast.ParenData{X: first}), true
	}
	elems := []ast.ExprID{first}
	for p.eat(token.Comma) && !p.at(token.RParen) {
		e, ok := p.parseExprCtx(false)
		if !ok {
			return ast.NoExprID, false
		}
		elems = append(elems, e)
	}
	if _, ok = p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'"); !ok {
		return ast.NoExprID, false
	}
	return p.arenas.NewExpr(ast.ExprTuple, start.Cover(p.lastSpan), &ast.TupleData{Elems: elems}), true
}

// parseArrayExpr: `[a, b, c]` или `[value; count]`.
func (p *Parser) parseArrayExpr() (ast.ExprID, bool) {
	start := p.advance().Span // '['
	if p.eat(token.RBracket) {
		return p.arenas.NewExpr(ast.ExprArray, start.Cover(p.lastSpan), &ast.ArrayData{}), true
	}
	first, ok := p.parseExprCtx(false)
	if !ok {
		return ast.NoExprID, false
	}
	if p.eat(token.Semicolon) {
		count, ok := p.parseExprCtx(false)
		if !ok {
			return ast.NoExprID, false
		}
		if _, ok = p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']'"); !ok {
			return ast.NoExprID, false
		}
		return p.arenas.NewExpr(ast.ExprRepeat, start.Cover(p.lastSpan), &ast.RepeatData{Value: first, Count: count}), true
	}
	elems := []ast.ExprID{first}
	for p.eat(token.Comma) && !p.at(token.RBracket) {
		e, ok := p.parseExprCtx(false)
		if !ok {
			return ast.NoExprID, false
		}
		elems = append(elems, e)
	}
	if _, ok = p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' after array elements"); !ok {
		return ast.NoExprID, false
	}
	return p.arenas.NewExpr(ast.ExprArray, start.Cover(p.lastSpan), &ast.ArrayData{Elems: elems}), true
}

func (p *Parser) parseIf() (ast.ExprID, bool) {
	start := p.advance().Span // if
	cond, ok := p.parseExprCtx(true)
	if !ok {
		return ast.NoExprID, false
	}
	then, ok := p.parseBlock(false)
	if !ok {
		return ast.NoExprID, false
	}
	data := &ast.IfData{Cond: cond, Then: then}
	if p.eat(token.KwElse) {
		switch {
		case p.at(token.KwIf):
			data.Else, ok = p.parseIf()
		case p.at(token.LBrace):
			data.Else, ok = p.parseBlock(false)
		default:
			p.err(diag.SynUnexpectedToken, "expected '{' or 'if' after 'else'")
			ok = false
		}
		if !ok {
			return ast.NoExprID, false
		}
	}
	return p.arenas.NewExpr(ast.ExprIf, start.Cover(p.lastSpan), data), true
}

func (p *Parser) parseWhile() (ast.ExprID, bool) {
	start := p.advance().Span // while
	cond, ok := p.parseExprCtx(true)
	if !ok {
		return ast.NoExprID, false
	}
	body, ok := p.parseBlock(false)
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.NewExpr(ast.ExprWhile, start.Cover(p.lastSpan), &ast.WhileData{Cond: cond, Body: body}), true
}

func (p *Parser) parseLoop() (ast.ExprID, bool) {
	start := p.advance().Span // loop
	body, ok := p.parseBlock(false)
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.NewExpr(ast.ExprLoop, start.Cover(p.lastSpan), &ast.LoopData{Body: body}), true
}

func (p *Parser) parseMatch() (ast.ExprID, bool) {
	start := p.advance().Span // match
	scrut, ok := p.parseExprCtx(true)
	if !ok {
		return ast.NoExprID, false
	}
	if _, ok = p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after match scrutinee"); !ok {
		return ast.NoExprID, false
	}
	data := &ast.MatchData{Scrutinee: scrut}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		armStart := p.peek().Span
		pat, ok := p.parsePattern()
		if !ok {
			return ast.NoExprID, false
		}
		arm := ast.MatchArm{Pat: pat}
		if p.eat(token.KwIf) {
			if arm.Guard, ok = p.parseExprCtx(false); !ok {
				return ast.NoExprID, false
			}
		}
		if _, ok = p.expect(token.FatArrow, diag.SynUnexpectedToken, "expected '=>' in match arm"); !ok {
			return ast.NoExprID, false
		}
		if arm.Body, ok = p.parseExprCtx(false); !ok {
			return ast.NoExprID, false
		}
		arm.Span = armStart.Cover(p.lastSpan)
		data.Arms = append(data.Arms, arm)
		if p.eat(token.Comma) {
			continue
		}
		if !p.arenas.Expr(arm.Body).Kind.IsBlockLike() {
			break
		}
	}
	if _, ok = p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' after match arms"); !ok {
		return ast.NoExprID, false
	}
	return p.arenas.NewExpr(ast.ExprMatch, start.Cover(p.lastSpan), data), true
}
