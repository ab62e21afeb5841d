package parser

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/token"
)

// parsePattern: `_`, `x`, `mut x`, `ref x`, литерал, `Path`, `Path(p, ...)`.
func (p *Parser) parsePattern() (ast.PatID, bool) {
	start := p.peek().Span
	switch {
	case p.eat(token.Underscore):
		return p.arenas.NewPat(ast.PatWild, start, &ast.WildPat{}), true
	case p.atOr(token.KwMut, token.Ident) && (p.at(token.KwMut) || p.atIdent("ref")) && p.peekN(1).Kind == token.Ident:
		bind := &ast.BindPat{}
		if p.advance().Kind == token.KwMut {
			bind.Mut = true
		} else {
			bind.Ref = true
		}
		bind.Name = p.advance().Text
		return p.arenas.NewPat(ast.PatBind, start.Cover(p.lastSpan), bind), true
	case p.atOr(token.IntLit, token.FloatLit, token.StringLit, token.KwTrue, token.KwFalse), p.at(token.Minus):
		var neg bool
		if p.eat(token.Minus) {
			neg = true
		}
		lit, ok := p.parseLiteral()
		if !ok {
			return ast.NoPatID, false
		}
		if neg {
			lit = p.arenas.NewExpr(ast.ExprUnary, start.Cover(p.lastSpan), &ast.UnaryData{Op: ast.UnNeg, X: lit})
		}
		return p.arenas.NewPat(ast.PatLit, start.Cover(p.lastSpan), &ast.LitPat{Lit: lit}), true
	case p.peek().IsIdentLike():
		path, ok := p.parsePath(true)
		if !ok {
			return ast.NoPatID, false
		}
		if p.at(token.LParen) {
			p.advance()
			data := &ast.TupleStructPat{Path: path}
			for !p.at(token.RParen) && !p.at(token.EOF) {
				sub, ok := p.parsePattern()
				if !ok {
					return ast.NoPatID, false
				}
				data.Elems = append(data.Elems, sub)
				if !p.eat(token.Comma) {
					break
				}
			}
			if _, ok = p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' in pattern"); !ok {
				return ast.NoPatID, false
			}
			return p.arenas.NewPat(ast.PatTupleStruct, start.Cover(p.lastSpan), data), true
		}
		if path.Single() && path.Segments[0].Name != "Self" {
			return p.arenas.NewPat(ast.PatBind, path.Span, &ast.BindPat{Name: path.Segments[0].Name}), true
		}
		return p.arenas.NewPat(ast.PatPath, path.Span, &ast.PathPat{Path: path}), true
	default:
		p.err(diag.SynExpectPattern, "expected pattern, got "+describe(p.peek()))
		return ast.NoPatID, false
	}
}
