package parser

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/token"
)

func (p *Parser) parseType() (ast.TypeID, bool) {
	if !p.nested() {
		return ast.NoTypeID, false
	}
	defer p.unnest()

	start := p.peek().Span
	switch {
	case p.at(token.AndAnd):
		p.splitAt(token.Amp)
		return p.parseType()
	case p.at(token.Amp):
		p.advance()
		mut := p.eat(token.KwMut)
		elem, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		return p.arenas.NewType(ast.TypeExpr{Kind: ast.TypeRef, Span: start.Cover(p.lastSpan), Elem: elem, Mutable: mut}), true
	case p.at(token.Star):
		p.advance()
		var mut bool
		switch {
		case p.eat(token.KwMut):
			mut = true
		case p.eat(token.KwConst):
		default:
			p.err(diag.SynExpectType, "expected 'const' or 'mut' after '*' in pointer type")
			return ast.NoTypeID, false
		}
		elem, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		return p.arenas.NewType(ast.TypeExpr{Kind: ast.TypePtr, Span: start.Cover(p.lastSpan), Elem: elem, Mutable: mut}), true
	case p.at(token.LBracket):
		p.advance()
		elem, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		te := ast.TypeExpr{Kind: ast.TypeSlice, Elem: elem}
		if p.eat(token.Semicolon) {
			te.Kind = ast.TypeArray
			if te.Len, ok = p.parseExprCtx(false); !ok {
				return ast.NoTypeID, false
			}
		}
		if _, ok = p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' in array type"); !ok {
			return ast.NoTypeID, false
		}
		te.Span = start.Cover(p.lastSpan)
		return p.arenas.NewType(te), true
	case p.at(token.LParen):
		p.advance()
		if p.eat(token.RParen) {
			return p.arenas.NewType(ast.TypeExpr{Kind: ast.TypeUnit, Span: start.Cover(p.lastSpan)}), true
		}
		inner, ok := p.parseType()
		if !ok {
			return ast.NoTypeID, false
		}
		if p.at(token.Comma) {
			p.err(diag.SynExpectType, "tuple types are not supported")
			return ast.NoTypeID, false
		}
		_, ok = p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'")
		return inner, ok
	case p.at(token.Bang):
		p.advance()
		return p.arenas.NewType(ast.TypeExpr{Kind: ast.TypeNever, Span: start}), true
	case p.at(token.Underscore):
		p.advance()
		return p.arenas.NewType(ast.TypeExpr{Kind: ast.TypeInfer, Span: start}), true
	case p.peek().IsIdentLike():
		path, ok := p.parsePath(false)
		if !ok {
			return ast.NoTypeID, false
		}
		return p.arenas.NewType(ast.TypeExpr{Kind: ast.TypePath, Span: path.Span, Path: &path}), true
	default:
		p.err(diag.SynExpectType, "expected type, got "+describe(p.peek()))
		return ast.NoTypeID, false
	}
}
