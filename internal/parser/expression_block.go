package parser

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/token"
)

// parseBlock разбирает `{ stmts; tail }` начиная с '{'.
func (p *Parser) parseBlock(unsafe bool) (ast.ExprID, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'")
	if !ok {
		return ast.NoExprID, false
	}
	saved := p.noStruct
	p.noStruct = false
	stmts, tail := p.parseBlockContents(token.RBrace)
	p.noStruct = saved
	if _, ok = p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close block"); !ok {
		return ast.NoExprID, false
	}
	data := &ast.BlockData{Stmts: stmts, Tail: tail, Unsafe: unsafe}
	return p.arenas.NewExpr(ast.ExprBlock, open.Span.Cover(p.lastSpan), data), true
}

// parseBlockContents собирает операторы до end; последнее выражение без ';' становится хвостом.
func (p *Parser) parseBlockContents(end token.Kind) ([]ast.StmtID, ast.ExprID) {
	var stmts []ast.StmtID
	for !p.at(end) && !p.at(token.EOF) {
		if p.opts.Enough() {
			break
		}
		if p.eat(token.Semicolon) {
			continue
		}
		if p.at(token.KwLet) {
			id, ok := p.parseLet()
			if !ok {
				p.resyncStmt(end)
				continue
			}
			stmts = append(stmts, id)
			continue
		}
		if isItemStarter(p.peek()) && !p.at(token.KwUnsafe) {
			p.err(diag.SynUnexpectedItem, "items inside function bodies are not supported")
			p.resyncTop()
			continue
		}

		start := p.peek().Span
		blockLike := p.atOr(token.LBrace, token.KwUnsafe, token.KwIf, token.KwWhile, token.KwLoop, token.KwMatch)
		var (
			x  ast.ExprID
			ok bool
		)
		if blockLike {
			x, ok = p.parsePrimary()
			// `unsafe { ... }.field` и подобное продолжают выражение
			if ok && p.atOr(token.Dot, token.LBracket) {
				x, ok = p.parsePostfix(x)
				blockLike = false
			}
		} else {
			x, ok = p.parseExpr()
		}
		if !ok {
			p.resyncStmt(end)
			continue
		}
		if m, isMacro := p.arenas.Expr(x).Data.(*ast.MacroCallData); isMacro && m.Delim == token.LBrace {
			blockLike = true
		}
		switch {
		case p.eat(token.Semicolon):
			stmts = append(stmts, p.arenas.NewStmt(ast.StmtExpr, start.Cover(p.lastSpan), &ast.ExprStmtData{X: x, Semi: true}))
		case p.at(end):
			return stmts, x
		case blockLike:
			stmts = append(stmts, p.arenas.NewStmt(ast.StmtExpr, start.Cover(p.lastSpan), &ast.ExprStmtData{X: x}))
		default:
			p.err(diag.SynUnexpectedToken, "expected ';' after expression, got "+describe(p.peek()))
			p.resyncStmt(end)
		}
	}
	return stmts, ast.NoExprID
}

// parseLet: let pat (: Type)? (= expr)? ;
func (p *Parser) parseLet() (ast.StmtID, bool) {
	start := p.advance().Span // let
	pat, ok := p.parsePattern()
	if !ok {
		return ast.NoStmtID, false
	}
	data := &ast.LetData{Pat: pat}
	if p.eat(token.Colon) {
		if data.Type, ok = p.parseType(); !ok {
			return ast.NoStmtID, false
		}
	}
	if p.eat(token.Assign) {
		if data.Init, ok = p.parseExprCtx(false); !ok {
			return ast.NoStmtID, false
		}
	}
	if _, ok = p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected ';' after let statement"); !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.NewStmt(ast.StmtLet, start.Cover(p.lastSpan), data), true
}
