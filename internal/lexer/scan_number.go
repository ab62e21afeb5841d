package lexer

import (
	"rsfront/internal/diag"
	"rsfront/internal/token"
)

// Поддержка: 123, 1_000, 0b..., 0o..., 0x..., 1.5, 1e3, и суффиксы вида u8/i32/usize/f64.
// Суффикс остаётся в Token.Text; разбором значения занимается парсер.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '0' {
		var digit func(byte) bool
		switch lx.cursor.PeekAt(1) {
		case 'b':
			digit = func(b byte) bool { return b == '0' || b == '1' }
		case 'o':
			digit = func(b byte) bool { return b >= '0' && b <= '7' }
		case 'x':
			digit = isHex
		}
		if digit != nil {
			lx.cursor.Bump()
			lx.cursor.Bump()
			n := 0
			for digit(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
				lx.cursor.Bump()
				n++
			}
			if n == 0 {
				sp := lx.cursor.SpanFrom(start)
				lx.errLex(diag.LexBadNumber, sp, "missing digits after integer base prefix")
				return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
			}
			lx.scanSuffix()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
		}
	}

	lx.scanDigits()

	// `1..3` и `x.0.1` не являются дробями
	if lx.cursor.Peek() == '.' && lx.cursor.PeekAt(1) != '.' && !isIdentStartByte(lx.cursor.PeekAt(1)) {
		lx.cursor.Bump()
		kind = token.FloatLit
		lx.scanDigits()
	}
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		next := lx.cursor.PeekAt(1)
		if isDec(next) || ((next == '+' || next == '-') && isDec(lx.cursor.PeekAt(2))) {
			kind = token.FloatLit
			lx.cursor.Bump()
			if next == '+' || next == '-' {
				lx.cursor.Bump()
			}
			lx.scanDigits()
		}
	}
	if lx.scanSuffix() == 'f' {
		kind = token.FloatLit
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) scanDigits() {
	for isDec(lx.cursor.Peek()) || lx.cursor.Peek() == '_' {
		lx.cursor.Bump()
	}
}

// scanSuffix съедает суффикс типа и возвращает его первый байт (0 если нет).
func (lx *Lexer) scanSuffix() byte {
	first := lx.cursor.Peek()
	if !isIdentStartByte(first) || first == '_' {
		return 0
	}
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	return first
}
