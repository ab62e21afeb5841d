package parser

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/token"
)

// parseGenericParams: `<T, U: Bound + ?Sized>`; отсутствие '<': пустой список.
func (p *Parser) parseGenericParams() (ast.Generics, bool) {
	var g ast.Generics
	if !p.at(token.Lt) {
		return g, true
	}
	start := p.advance().Span
	for !p.at(token.Gt) && !p.at(token.EOF) {
		name, span, ok := p.parseIdent()
		if !ok {
			return g, false
		}
		param := ast.GenericParam{Name: name, Span: span}
		if p.eat(token.Colon) {
			param.Bounds = p.parseBounds()
		}
		g.Params = append(g.Params, param)
		if !p.eat(token.Comma) {
			break
		}
	}
	end, ok := p.expect(token.Gt, diag.SynUnclosedDelimiter, "expected '>' after generic parameters")
	g.Span = start.Cover(end.Span)
	return g, ok
}

// parseBounds: `A + B<T> + ?Sized`.
func (p *Parser) parseBounds() []ast.Bound {
	var out []ast.Bound
	for {
		start := p.peek().Span
		maybe := p.eat(token.Question)
		if !p.peek().IsIdentLike() {
			p.err(diag.SynExpectType, "expected trait bound, got "+describe(p.peek()))
			return out
		}
		path, ok := p.parsePath(false)
		if !ok {
			return out
		}
		out = append(out, ast.Bound{Path: path, Maybe: maybe, Span: start.Cover(p.lastSpan)})
		if !p.eat(token.Plus) {
			return out
		}
	}
}

// parseWhere: `where T: A, [T]: B`.
func (p *Parser) parseWhere(g *ast.Generics) {
	if !p.eat(token.KwWhere) {
		return
	}
	for !p.atOr(token.LBrace, token.Semicolon, token.EOF) {
		start := p.peek().Span
		ty, ok := p.parseType()
		if !ok {
			return
		}
		if _, ok = p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' in where clause"); !ok {
			return
		}
		bounds := p.parseBounds()
		g.Where = append(g.Where, ast.WherePredicate{Type: ty, Bounds: bounds, Span: start.Cover(p.lastSpan)})
		if !p.eat(token.Comma) {
			return
		}
	}
}

// parseGenericArgs разбирает `<A, B>` после того, как '<' уже на позиции.
func (p *Parser) parseGenericArgs() ([]ast.TypeID, bool) {
	p.advance() // '<'
	var args []ast.TypeID
	for !p.at(token.Gt) && !p.at(token.EOF) {
		if p.at(token.Shr) || p.at(token.GtEq) || p.at(token.ShrAssign) {
			break
		}
		ty, ok := p.parseType()
		if !ok {
			return nil, false
		}
		args = append(args, ty)
		if !p.eat(token.Comma) {
			break
		}
	}
	_, ok := p.expect(token.Gt, diag.SynUnclosedDelimiter, "expected '>' after generic arguments")
	return args, ok
}

// parsePath разбирает путь. В выражениях аргументы пишутся только через `::<`,
// в типах: сразу `<`.
func (p *Parser) parsePath(expr bool) (ast.Path, bool) {
	var path ast.Path
	start := p.peek().Span
	for {
		name, span, ok := p.parseIdentLike()
		if !ok {
			return path, false
		}
		seg := ast.PathSegment{Name: name, Span: span}
		switch {
		case !expr && p.at(token.Lt):
			if seg.Args, ok = p.parseGenericArgs(); !ok {
				return path, false
			}
		case !expr && p.at(token.Shl):
			p.splitAt(token.Lt)
			if seg.Args, ok = p.parseGenericArgs(); !ok {
				return path, false
			}
		case p.at(token.ColonColon) && (p.peekN(1).Kind == token.Lt || p.peekN(1).Kind == token.Shl):
			p.advance()
			if p.at(token.Shl) {
				p.splitAt(token.Lt)
			}
			if seg.Args, ok = p.parseGenericArgs(); !ok {
				return path, false
			}
		}
		seg.Span = span.Cover(p.lastSpan)
		path.Segments = append(path.Segments, seg)
		if p.at(token.ColonColon) && p.peekN(1).IsIdentLike() {
			p.advance()
			continue
		}
		break
	}
	path.Span = start.Cover(p.lastSpan)
	return path, true
}
