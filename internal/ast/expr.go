package ast

import (
	"rsfront/internal/source"
	"rsfront/internal/token"
)

type ExprKind uint8

const (
	ExprLit ExprKind = iota
	ExprPath
	ExprUnary
	ExprAddrOf
	ExprBinary
	ExprAssign
	ExprCast
	ExprCall
	ExprMethodCall
	ExprField
	ExprIndex
	ExprRange
	ExprStruct
	ExprArray
	ExprRepeat
	ExprTuple
	ExprParen
	ExprBlock
	ExprIf
	ExprWhile
	ExprLoop
	ExprBreak
	ExprContinue
	ExprReturn
	ExprMatch
	ExprMacroCall
)

type Expr struct {
	Kind ExprKind
	Span source.Span
	Data ExprData
}

type ExprData interface {
	exprData()
}

type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitBool
	LitStr
)

// LitData keeps the raw token text and the decoded value.
type LitData struct {
	Kind   LitKind
	Text   string
	Int    uint64
	Float  float64
	Bool   bool
	Str    string // decoded, without quotes
	Suffix string // u32, usize, f64...
}

func (*LitData) exprData() {}

type PathData struct {
	Path Path
}

func (*PathData) exprData() {}

type UnaryOp uint8

const (
	UnNeg UnaryOp = iota
	UnNot
	UnDeref
)

func (op UnaryOp) String() string {
	switch op {
	case UnNeg:
		return "-"
	case UnNot:
		return "!"
	default:
		return "*"
	}
}

type UnaryData struct {
	Op UnaryOp
	X  ExprID
}

func (*UnaryData) exprData() {}

type AddrOfData struct {
	Mut bool
	X   ExprID
}

func (*AddrOfData) exprData() {}

type BinaryOp uint8

const (
	BinNone BinaryOp = iota
	BinAdd
	BinSub
	BinMul
	BinDiv
	BinRem
	BinAnd // &
	BinOr  // |
	BinXor
	BinShl
	BinShr
	BinLogAnd
	BinLogOr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

var binaryOpText = [...]string{
	BinNone:   "",
	BinAdd:    "+",
	BinSub:    "-",
	BinMul:    "*",
	BinDiv:    "/",
	BinRem:    "%",
	BinAnd:    "&",
	BinOr:     "|",
	BinXor:    "^",
	BinShl:    "<<",
	BinShr:    ">>",
	BinLogAnd: "&&",
	BinLogOr:  "||",
	BinEq:     "==",
	BinNe:     "!=",
	BinLt:     "<",
	BinLe:     "<=",
	BinGt:     ">",
	BinGe:     ">=",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// IsComparison reports ==, !=, <, <=, >, >=.
func (op BinaryOp) IsComparison() bool {
	return op >= BinEq && op <= BinGe
}

type BinaryData struct {
	Op BinaryOp
	X  ExprID
	Y  ExprID
}

func (*BinaryData) exprData() {}

// AssignData is `x = v` (Op == BinNone) or a compound assignment.
type AssignData struct {
	Op     BinaryOp
	Target ExprID
	Value  ExprID
}

func (*AssignData) exprData() {}

type CastData struct {
	X    ExprID
	Type TypeID
}

func (*CastData) exprData() {}

type CallData struct {
	Callee ExprID
	Args   []ExprID
}

func (*CallData) exprData() {}

type MethodCallData struct {
	Receiver ExprID
	Name     string
	NameSpan source.Span
	Generics []TypeID
	Args     []ExprID
}

func (*MethodCallData) exprData() {}

type FieldData struct {
	X        ExprID
	Name     string
	NameSpan source.Span
}

func (*FieldData) exprData() {}

type IndexData struct {
	X     ExprID
	Index ExprID
}

func (*IndexData) exprData() {}

// RangeData is `a..b`; either bound may be missing.
type RangeData struct {
	Start     ExprID
	End       ExprID
	Inclusive bool
}

func (*RangeData) exprData() {}

type FieldInit struct {
	Name  string
	Value ExprID
	Span  source.Span
}

type StructLitData struct {
	Path   Path
	Fields []FieldInit
}

func (*StructLitData) exprData() {}

type ArrayData struct {
	Elems []ExprID
}

func (*ArrayData) exprData() {}

// RepeatData is `[value; count]`.
type RepeatData struct {
	Value ExprID
	Count ExprID
}

func (*RepeatData) exprData() {}

type TupleData struct {
	Elems []ExprID
}

func (*TupleData) exprData() {}

type ParenData struct {
	X ExprID
}

func (*ParenData) exprData() {}

type BlockData struct {
	Stmts  []StmtID
	Tail   ExprID
	Unsafe bool
}

func (*BlockData) exprData() {}

type IfData struct {
	Cond ExprID
	Then ExprID
	Else ExprID
}

func (*IfData) exprData() {}

type WhileData struct {
	Cond ExprID
	Body ExprID
}

func (*WhileData) exprData() {}

type LoopData struct {
	Body ExprID
}

func (*LoopData) exprData() {}

type BreakData struct {
	Value ExprID
}

func (*BreakData) exprData() {}

type ContinueData struct{}

func (*ContinueData) exprData() {}

type ReturnData struct {
	Value ExprID
}

func (*ReturnData) exprData() {}

type MatchArm struct {
	Pat   PatID
	Guard ExprID
	Body  ExprID
	Span  source.Span
}

type MatchData struct {
	Scrutinee ExprID
	Arms      []MatchArm
}

func (*MatchData) exprData() {}

// MacroCallData is `name!(tokens)`. Tokens exclude the outer delimiters.
type MacroCallData struct {
	Path   Path
	Delim  token.Kind
	Tokens []token.Token
}

func (*MacroCallData) exprData() {}

// IsBlockLike reports whether the expression ends with a block and may stand
// as a statement without a trailing semicolon.
func (k ExprKind) IsBlockLike() bool {
	switch k {
	case ExprBlock, ExprIf, ExprWhile, ExprLoop, ExprMatch:
		return true
	default:
		return false
	}
}
