package token

import "fmt"

// Kind represents the category of a source token.
type Kind uint8

const (
	Invalid Kind = iota
	EOF

	Ident
	IntLit
	FloatLit
	StringLit

	KwAs
	KwBreak
	KwConst
	KwContinue
	KwCrate
	KwElse
	KwEnum
	KwExtern
	KwFalse
	KwFn
	KwFor
	KwIf
	KwImpl
	KwIn
	KwLet
	KwLoop
	KwMatch
	KwMod
	KwMut
	KwPub
	KwReturn
	KwSelfValue // self
	KwSelfType  // Self
	KwStatic
	KwStruct
	KwSuper
	KwTrait
	KwTrue
	KwType
	KwUnsafe
	KwUse
	KwWhere
	KwWhile

	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	Caret         // ^
	Bang          // !
	Amp           // &
	Pipe          // |
	AndAnd        // &&
	OrOr          // ||
	Shl           // <<
	Shr           // >>
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	CaretAssign   // ^=
	AmpAssign     // &=
	PipeAssign    // |=
	ShlAssign     // <<=
	ShrAssign     // >>=
	Assign        // =
	EqEq          // ==
	BangEq        // !=
	Gt            // >
	Lt            // <
	GtEq          // >=
	LtEq          // <=
	At            // @
	Underscore    // _
	Dot           // .
	DotDot        // ..
	DotDotDot     // ...
	DotDotEq      // ..=
	Comma         // ,
	Semicolon     // ;
	Colon         // :
	ColonColon    // ::
	Arrow         // ->
	FatArrow      // =>
	Hash          // #
	Dollar        // $
	Question      // ?
	Tilde         // ~
	LParen        // (
	RParen        // )
	LBracket      // [
	RBracket      // ]
	LBrace        // {
	RBrace        // }
)

var kindNames = [...]string{
	Invalid:       "invalid",
	EOF:           "end of file",
	Ident:         "identifier",
	IntLit:        "integer literal",
	FloatLit:      "float literal",
	StringLit:     "string literal",
	KwAs:          "as",
	KwBreak:       "break",
	KwConst:       "const",
	KwContinue:    "continue",
	KwCrate:       "crate",
	KwElse:        "else",
	KwEnum:        "enum",
	KwExtern:      "extern",
	KwFalse:       "false",
	KwFn:          "fn",
	KwFor:         "for",
	KwIf:          "if",
	KwImpl:        "impl",
	KwIn:          "in",
	KwLet:         "let",
	KwLoop:        "loop",
	KwMatch:       "match",
	KwMod:         "mod",
	KwMut:         "mut",
	KwPub:         "pub",
	KwReturn:      "return",
	KwSelfValue:   "self",
	KwSelfType:    "Self",
	KwStatic:      "static",
	KwStruct:      "struct",
	KwSuper:       "super",
	KwTrait:       "trait",
	KwTrue:        "true",
	KwType:        "type",
	KwUnsafe:      "unsafe",
	KwUse:         "use",
	KwWhere:       "where",
	KwWhile:       "while",
	Plus:          "+",
	Minus:         "-",
	Star:          "*",
	Slash:         "/",
	Percent:       "%",
	Caret:         "^",
	Bang:          "!",
	Amp:           "&",
	Pipe:          "|",
	AndAnd:        "&&",
	OrOr:          "||",
	Shl:           "<<",
	Shr:           ">>",
	PlusAssign:    "+=",
	MinusAssign:   "-=",
	StarAssign:    "*=",
	SlashAssign:   "/=",
	PercentAssign: "%=",
	CaretAssign:   "^=",
	AmpAssign:     "&=",
	PipeAssign:    "|=",
	ShlAssign:     "<<=",
	ShrAssign:     ">>=",
	Assign:        "=",
	EqEq:          "==",
	BangEq:        "!=",
	Gt:            ">",
	Lt:            "<",
	GtEq:          ">=",
	LtEq:          "<=",
	At:            "@",
	Underscore:    "_",
	Dot:           ".",
	DotDot:        "..",
	DotDotDot:     "...",
	DotDotEq:      "..=",
	Comma:         ",",
	Semicolon:     ";",
	Colon:         ":",
	ColonColon:    "::",
	Arrow:         "->",
	FatArrow:      "=>",
	Hash:          "#",
	Dollar:        "$",
	Question:      "?",
	Tilde:         "~",
	LParen:        "(",
	RParen:        ")",
	LBracket:      "[",
	RBracket:      "]",
	LBrace:        "{",
	RBrace:        "}",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= KwAs && k <= KwWhile
}

// IsOpenDelim reports whether k opens a token tree group.
func (k Kind) IsOpenDelim() bool {
	return k == LParen || k == LBracket || k == LBrace
}

// IsCloseDelim reports whether k closes a token tree group.
func (k Kind) IsCloseDelim() bool {
	return k == RParen || k == RBracket || k == RBrace
}

// MatchingClose returns the closing delimiter for an opening one.
func (k Kind) MatchingClose() Kind {
	switch k {
	case LParen:
		return RParen
	case LBracket:
		return RBracket
	case LBrace:
		return RBrace
	default:
		return Invalid
	}
}
