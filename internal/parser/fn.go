package parser

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/token"
)

// parseFnItem: fn name<generics>(params) -> Ret where ... { body } | ;
func (p *Parser) parseFnItem(mods itemMods) (ast.ItemID, bool) {
	p.advance() // fn
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	fn := &ast.FnItem{Unsafe: mods.unsafe, Const: mods.konst, ABI: mods.abi}
	if fn.Generics, ok = p.parseGenericParams(); !ok {
		return ast.NoItemID, false
	}
	if !p.parseFnParams(fn) {
		return ast.NoItemID, false
	}
	if p.eat(token.Arrow) {
		if fn.Ret, ok = p.parseType(); !ok {
			return ast.NoItemID, false
		}
	}
	p.parseWhere(&fn.Generics)
	switch {
	case p.eat(token.Semicolon):
	case p.at(token.LBrace):
		if fn.Body, ok = p.parseBlock(false); !ok {
			return ast.NoItemID, false
		}
	default:
		p.err(diag.SynUnexpectedToken, "expected function body or ';', got "+describe(p.peek()))
		return ast.NoItemID, false
	}
	return p.newItem(ast.ItemFn, mods, name, nameSpan, fn), true
}

func (p *Parser) parseFnParams(fn *ast.FnItem) bool {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name"); !ok {
		return false
	}
	if p.parseSelfParam(fn) && !p.at(token.RParen) {
		if _, ok := p.expect(token.Comma, diag.SynUnexpectedToken, "expected ',' after self parameter"); !ok {
			return false
		}
	}
	for !p.at(token.RParen) && !p.at(token.EOF) {
		if p.at(token.DotDotDot) {
			p.advance()
			fn.Variadic = true
			if !p.at(token.RParen) {
				p.err(diag.SynVariadicNotLast, "'...' must be the last parameter")
				return false
			}
			break
		}
		start := p.peek().Span
		pat, ok := p.parsePattern()
		if !ok {
			return false
		}
		if _, ok = p.expect(token.Colon, diag.SynExpectType, "expected ':' and a parameter type"); !ok {
			return false
		}
		ty, ok := p.parseType()
		if !ok {
			return false
		}
		fn.Params = append(fn.Params, ast.FnParam{Pat: pat, Type: ty, Span: start.Cover(p.lastSpan)})
		if !p.eat(token.Comma) {
			break
		}
	}
	_, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after parameters")
	return ok
}

// parseSelfParam распознаёт self, mut self, &self, &mut self.
func (p *Parser) parseSelfParam(fn *ast.FnItem) bool {
	start := p.peek().Span
	switch {
	case p.at(token.KwSelfValue):
		fn.Self = ast.SelfValue
		p.advance()
	case p.at(token.KwMut) && p.peekN(1).Kind == token.KwSelfValue:
		fn.Self, fn.SelfMut = ast.SelfValue, true
		p.advance()
		p.advance()
	case p.at(token.Amp) && p.peekN(1).Kind == token.KwSelfValue:
		fn.Self = ast.SelfRef
		p.advance()
		p.advance()
	case p.at(token.Amp) && p.peekN(1).Kind == token.KwMut && p.peekN(2).Kind == token.KwSelfValue:
		fn.Self = ast.SelfRefMut
		p.advance()
		p.advance()
		p.advance()
	default:
		return false
	}
	fn.SelfSpan = start.Cover(p.lastSpan)
	if p.at(token.Colon) {
		p.err(diag.SynUnexpectedToken, "typed self parameters are not supported")
	}
	return true
}
