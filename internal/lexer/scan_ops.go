package lexer

import (
	"rsfront/internal/diag"
	"rsfront/internal/token"
)

type opEntry struct {
	text string
	kind token.Kind
}

// Жадность: сначала 3-символьные, затем 2-символьные, затем 1-символьные.
var multiOps = []opEntry{
	{"<<=", token.ShlAssign},
	{">>=", token.ShrAssign},
	{"..=", token.DotDotEq},
	{"...", token.DotDotDot},
	{"..", token.DotDot},
	{"::", token.ColonColon},
	{"->", token.Arrow},
	{"=>", token.FatArrow},
	{"&&", token.AndAnd},
	{"||", token.OrOr},
	{"==", token.EqEq},
	{"!=", token.BangEq},
	{"<=", token.LtEq},
	{">=", token.GtEq},
	{"<<", token.Shl},
	{">>", token.Shr},
	{"+=", token.PlusAssign},
	{"-=", token.MinusAssign},
	{"*=", token.StarAssign},
	{"/=", token.SlashAssign},
	{"%=", token.PercentAssign},
	{"^=", token.CaretAssign},
	{"&=", token.AmpAssign},
	{"|=", token.PipeAssign},
}

var singleOps = map[byte]token.Kind{
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'%': token.Percent,
	'^': token.Caret,
	'!': token.Bang,
	'&': token.Amp,
	'|': token.Pipe,
	'=': token.Assign,
	'<': token.Lt,
	'>': token.Gt,
	'@': token.At,
	'_': token.Underscore,
	'.': token.Dot,
	',': token.Comma,
	';': token.Semicolon,
	':': token.Colon,
	'#': token.Hash,
	'$': token.Dollar,
	'?': token.Question,
	'~': token.Tilde,
	'(': token.LParen,
	')': token.RParen,
	'[': token.LBracket,
	']': token.RBracket,
	'{': token.LBrace,
	'}': token.RBrace,
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	for _, op := range multiOps {
		if lx.tryText(op.text) {
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: op.kind, Span: sp, Text: op.text}
		}
	}
	ch := lx.cursor.Bump()
	sp := lx.cursor.SpanFrom(start)
	if k, ok := singleOps[ch]; ok {
		return token.Token{Kind: k, Span: sp, Text: lx.text(sp)}
	}
	if ch >= utf8RuneSelf {
		lx.cursor.Reset(start)
		lx.bumpRune()
		sp = lx.cursor.SpanFrom(start)
	}
	lx.errLex(diag.LexUnknownChar, sp, "unknown character "+quoteText(lx.text(sp)))
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) tryText(s string) bool {
	for i := 0; i < len(s); i++ {
		if lx.cursor.PeekAt(uint32(i)) != s[i] {
			return false
		}
	}
	for range len(s) {
		lx.cursor.Bump()
	}
	return true
}
