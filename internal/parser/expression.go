package parser

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/source"
	"rsfront/internal/token"
)

func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.parseExprCtx(p.noStruct)
}

// parseExprCtx разбирает выражение с заданным режимом struct-литералов
// и восстанавливает прежний режим по выходу.
func (p *Parser) parseExprCtx(noStruct bool) (ast.ExprID, bool) {
	saved := p.noStruct
	p.noStruct = noStruct
	defer func() { p.noStruct = saved }()
	if !p.nested() {
		return ast.NoExprID, false
	}
	defer p.unnest()
	return p.parseAssign()
}

// parseAssign: присваивание правоассоциативно и имеет самый низкий приоритет.
func (p *Parser) parseAssign() (ast.ExprID, bool) {
	lhs, ok := p.parseRange()
	if !ok {
		return ast.NoExprID, false
	}
	op, isAssign := assignOps[p.peek().Kind]
	if !isAssign {
		return lhs, true
	}
	p.advance()
	rhs, ok := p.parseAssign()
	if !ok {
		return ast.NoExprID, false
	}
	span := p.arenas.Expr(lhs).Span.Cover(p.arenas.Expr(rhs).Span)
	return p.arenas.NewExpr(ast.ExprAssign, span, &ast.AssignData{Op: op, Target: lhs, Value: rhs}), true
}

func (p *Parser) parseRange() (ast.ExprID, bool) {
	start := p.peek().Span
	lhs := ast.NoExprID
	if !p.atOr(token.DotDot, token.DotDotEq) {
		var ok bool
		if lhs, ok = p.parseBinary(precLogicalOr); !ok {
			return ast.NoExprID, false
		}
		if !p.atOr(token.DotDot, token.DotDotEq) {
			return lhs, true
		}
	}
	inclusive := p.advance().Kind == token.DotDotEq
	rhs := ast.NoExprID
	if p.canStartExpr() {
		var ok bool
		if rhs, ok = p.parseBinary(precLogicalOr); !ok {
			return ast.NoExprID, false
		}
	}
	return p.arenas.NewExpr(ast.ExprRange, start.Cover(p.lastSpan), &ast.RangeData{Start: lhs, End: rhs, Inclusive: inclusive}), true
}

// canStartExpr: может ли текущий токен начинать выражение (для открытых диапазонов `a..`).
func (p *Parser) canStartExpr() bool {
	t := p.peek()
	switch t.Kind {
	case token.Ident, token.IntLit, token.FloatLit, token.StringLit, token.KwTrue, token.KwFalse,
		token.KwSelfValue, token.KwSelfType, token.KwCrate, token.KwSuper,
		token.LParen, token.LBracket, token.Minus, token.Bang, token.Star, token.Amp, token.AndAnd,
		token.KwIf, token.KwMatch, token.KwLoop, token.KwWhile, token.KwUnsafe:
		return true
	case token.LBrace:
		return !p.noStruct
	default:
		return false
	}
}

// parseBinary: precedence climbing по таблице binaryOps.
func (p *Parser) parseBinary(minPrec int) (ast.ExprID, bool) {
	lhs, ok := p.parseCast()
	if !ok {
		return ast.NoExprID, false
	}
	for {
		info, isBin := binaryOps[p.peek().Kind]
		if !isBin || info.prec < minPrec {
			return lhs, true
		}
		p.advance()
		rhs, ok := p.parseBinary(info.prec + 1)
		if !ok {
			return ast.NoExprID, false
		}
		span := p.arenas.Expr(lhs).Span.Cover(p.arenas.Expr(rhs).Span)
		lhs = p.arenas.NewExpr(ast.ExprBinary, span, &ast.BinaryData{Op: info.op, X: lhs, Y: rhs})
	}
}

// parseCast: `as` связывает сильнее бинарных операторов и слабее унарных.
func (p *Parser) parseCast() (ast.ExprID, bool) {
	x, ok := p.parseUnary()
	if !ok {
		return ast.NoExprID, false
	}
	for p.at(token.KwAs) {
		p.advance()
		ty, ok := p.parseType()
		if !ok {
			return ast.NoExprID, false
		}
		span := p.arenas.Expr(x).Span.Cover(p.lastSpan)
		x = p.arenas.NewExpr(ast.ExprCast, span, &ast.CastData{X: x, Type: ty})
	}
	return x, true
}

func (p *Parser) parseUnary() (ast.ExprID, bool) {
	start := p.peek().Span
	var op ast.UnaryOp
	switch p.peek().Kind {
	case token.Minus:
		op = ast.UnNeg
	case token.Bang:
		op = ast.UnNot
	case token.Star:
		op = ast.UnDeref
	case token.AndAnd:
		p.splitAt(token.Amp)
		return p.parseAddrOf(start)
	case token.Amp:
		return p.parseAddrOf(start)
	default:
		prim, ok := p.parsePrimary()
		if !ok {
			return ast.NoExprID, false
		}
		return p.parsePostfix(prim)
	}
	p.advance()
	if !p.nested() {
		return ast.NoExprID, false
	}
	defer p.unnest()
	x, ok := p.parseUnary()
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.NewExpr(ast.ExprUnary, start.Cover(p.lastSpan), &ast.UnaryData{Op: op, X: x}), true
}

func (p *Parser) parseAddrOf(start source.Span) (ast.ExprID, bool) {
	p.advance() // '&'
	mut := p.eat(token.KwMut)
	if !p.nested() {
		return ast.NoExprID, false
	}
	defer p.unnest()
	x, ok := p.parseUnary()
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.NewExpr(ast.ExprAddrOf, start.Cover(p.lastSpan), &ast.AddrOfData{Mut: mut, X: x}), true
}

// parsePostfix: вызовы, поля, методы, индексация.
func (p *Parser) parsePostfix(x ast.ExprID) (ast.ExprID, bool) {
	for {
		start := p.arenas.Expr(x).Span
		switch {
		case p.at(token.LParen):
			args, ok := p.parseCallArgs(token.RParen)
			if !ok {
				return ast.NoExprID, false
			}
			x = p.arenas.NewExpr(ast.ExprCall, start.Cover(p.lastSpan), &ast.CallData{Callee: x, Args: args})
		case p.at(token.LBracket):
			p.advance()
			idx, ok := p.parseExprCtx(false)
			if !ok {
				return ast.NoExprID, false
			}
			if _, ok = p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' after index"); !ok {
				return ast.NoExprID, false
			}
			x = p.arenas.NewExpr(ast.ExprIndex, start.Cover(p.lastSpan), &ast.IndexData{X: x, Index: idx})
		case p.at(token.Dot):
			p.advance()
			nameTok := p.peek()
			if nameTok.Kind != token.IntLit && !nameTok.IsIdentLike() {
				p.err(diag.SynExpectIdentifier, "expected field or method name after '.', got "+describe(nameTok))
				return ast.NoExprID, false
			}
			p.advance()
			var generics []ast.TypeID
			if p.at(token.ColonColon) && p.peekN(1).Kind == token.Lt {
				p.advance()
				var ok bool
				if generics, ok = p.parseGenericArgs(); !ok {
					return ast.NoExprID, false
				}
			}
			if p.at(token.LParen) {
				args, ok := p.parseCallArgs(token.RParen)
				if !ok {
					return ast.NoExprID, false
				}
				x = p.arenas.NewExpr(ast.ExprMethodCall, start.Cover(p.lastSpan), &ast.MethodCallData{
					Receiver: x, Name: nameTok.Text, NameSpan: nameTok.Span, Generics: generics, Args: args,
				})
				continue
			}
			if generics != nil {
				p.err(diag.SynUnexpectedToken, "expected '(' after method generic arguments")
				return ast.NoExprID, false
			}
			x = p.arenas.NewExpr(ast.ExprField, start.Cover(p.lastSpan), &ast.FieldData{X: x, Name: nameTok.Text, NameSpan: nameTok.Span})
		default:
			return x, true
		}
	}
}

func (p *Parser) parseCallArgs(closer token.Kind) ([]ast.ExprID, bool) {
	p.advance() // открывающая скобка
	var args []ast.ExprID
	for !p.at(closer) && !p.at(token.EOF) {
		arg, ok := p.parseExprCtx(false)
		if !ok {
			return nil, false
		}
		args = append(args, arg)
		if !p.eat(token.Comma) {
			break
		}
	}
	_, ok := p.expect(closer, diag.SynUnclosedDelimiter, "expected '"+closer.String()+"' after arguments")
	return args, ok
}
