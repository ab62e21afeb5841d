package hir

import (
	"rsfront/internal/ast"
	"rsfront/internal/source"
	"rsfront/internal/types"
)

// ExprKind enumerates HIR expression kinds.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprLocal
	ExprGlobal
	ExprUnary
	ExprBinary
	ExprCast
	// ExprAddrOf takes the address of a place; the result is a reference or raw pointer.
	ExprAddrOf
	// ExprDeref reads through a reference or raw pointer.
	ExprDeref
	// ExprField projects a struct or union field.
	ExprField
	// ExprIndex is bounds-checked element access into an array or slice place.
	ExprIndex
	// ExprSlice is the sub-slice place `x[start..end]` of an array or slice.
	ExprSlice
	// ExprUnsize turns a pointer to `[T; N]` into a fat pointer to `[T]`.
	ExprUnsize
	ExprCall
	ExprCallExtern
	ExprStruct
	ExprVariant
	ExprUnion
	ExprArray
	ExprRepeat
	ExprBlock
	ExprIf
	ExprLoop
	ExprBreak
	ExprContinue
	ExprReturn
	ExprAssign
	ExprMatch
	// ExprTransmute reinterprets the bytes of its operand as the result type.
	ExprTransmute
	// ExprOffset advances a raw pointer by Count elements of Stride bytes, unchecked.
	ExprOffset
)

var exprKindNames = [...]string{
	ExprLiteral:    "Literal",
	ExprLocal:      "Local",
	ExprGlobal:     "Global",
	ExprUnary:      "Unary",
	ExprBinary:     "Binary",
	ExprCast:       "Cast",
	ExprAddrOf:     "AddrOf",
	ExprDeref:      "Deref",
	ExprField:      "Field",
	ExprIndex:      "Index",
	ExprSlice:      "Slice",
	ExprUnsize:     "Unsize",
	ExprCall:       "Call",
	ExprCallExtern: "CallExtern",
	ExprStruct:     "Struct",
	ExprVariant:    "Variant",
	ExprUnion:      "Union",
	ExprArray:      "Array",
	ExprRepeat:     "Repeat",
	ExprBlock:      "Block",
	ExprIf:         "If",
	ExprLoop:       "Loop",
	ExprBreak:      "Break",
	ExprContinue:   "Continue",
	ExprReturn:     "Return",
	ExprAssign:     "Assign",
	ExprMatch:      "Match",
	ExprTransmute:  "Transmute",
	ExprOffset:     "Offset",
}

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "Unknown"
}

// IsPlace reports kinds that denote memory locations.
func (k ExprKind) IsPlace() bool {
	switch k {
	case ExprLocal, ExprGlobal, ExprDeref, ExprField, ExprIndex, ExprSlice:
		return true
	}
	return false
}

// Expr represents an HIR expression with a concrete type.
type Expr struct {
	Kind ExprKind
	Type types.TypeID
	Span source.Span
	Data ExprData
}

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// LiteralKind enumerates literal value kinds.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralBool
	LiteralStr
	LiteralUnit
)

// LiteralData holds data for ExprLiteral. Integers keep their two's
// complement bit pattern.
type LiteralData struct {
	Kind   LiteralKind
	Bits   uint64
	Float  float64
	Bool   bool
	Str    string
	SizeOf types.TypeID // set when the literal is a folded size_of::<T>()
}

func (LiteralData) exprData() {}

type LocalData struct {
	Local LocalID
	Name  string
}

func (LocalData) exprData() {}

type GlobalData struct {
	Global GlobalID
	Name   string
}

func (GlobalData) exprData() {}

type UnaryData struct {
	Op ast.UnaryOp // UnNeg or UnNot
	X  *Expr
}

func (UnaryData) exprData() {}

// BinaryData holds data for ExprBinary. Operands have the same type except
// for shifts; `&str` operands of == and != compare contents.
type BinaryData struct {
	Op ast.BinaryOp
	X  *Expr
	Y  *Expr
}

func (BinaryData) exprData() {}

// CastKind classifies `as` conversions.
type CastKind uint8

const (
	CastNumeric CastKind = iota
	CastPtrToPtr
	CastFatToThin
	CastFatToFat
	CastPtrToInt
	CastIntToPtr
)

var castKindNames = [...]string{
	CastNumeric:   "numeric",
	CastPtrToPtr:  "ptr",
	CastFatToThin: "fat->thin",
	CastFatToFat:  "fat",
	CastPtrToInt:  "ptr->int",
	CastIntToPtr:  "int->ptr",
}

func (k CastKind) String() string { return castKindNames[k] }

type CastData struct {
	Kind CastKind
	X    *Expr
}

func (CastData) exprData() {}

type AddrOfData struct {
	Mutable bool
	X       *Expr
}

func (AddrOfData) exprData() {}

type DerefData struct {
	X *Expr
}

func (DerefData) exprData() {}

type FieldData struct {
	X     *Expr
	Index int
	Name  string
}

func (FieldData) exprData() {}

type IndexData struct {
	X     *Expr
	Index *Expr
}

func (IndexData) exprData() {}

// SliceData bounds are usize; a missing bound is nil.
type SliceData struct {
	X     *Expr
	Start *Expr
	End   *Expr
	// Range is a computed `Range<usize>` evaluated once; its fields
	// StartField and EndField give the bounds and Start/End are nil.
	Range      *Expr
	StartField int
	EndField   int
}

func (SliceData) exprData() {}

type UnsizeData struct {
	X *Expr
}

func (UnsizeData) exprData() {}

type CallData struct {
	Func FuncID
	Args []*Expr
}

func (CallData) exprData() {}

type ExternCallData struct {
	Extern ExternID
	Args   []*Expr
}

func (ExternCallData) exprData() {}

// StructData lists field values in declaration order.
type StructData struct {
	Fields []*Expr
}

func (StructData) exprData() {}

type VariantData struct {
	Variant int
	Name    string
	Fields  []*Expr
}

func (VariantData) exprData() {}

type UnionData struct {
	Field int
	Name  string
	Value *Expr
}

func (UnionData) exprData() {}

type ArrayData struct {
	Elems []*Expr
}

func (ArrayData) exprData() {}

type RepeatData struct {
	Value *Expr
	Count uint64
}

func (RepeatData) exprData() {}

type BlockData struct {
	Stmts  []Stmt
	Tail   *Expr // nil yields ()
	Unsafe bool
}

func (BlockData) exprData() {}

type IfData struct {
	Cond *Expr
	Then *Expr
	Else *Expr // nil when absent
}

func (IfData) exprData() {}

// LoopData is an infinite loop; `while` is lowered to a loop with a
// conditional break.
type LoopData struct {
	Body *Expr
}

func (LoopData) exprData() {}

type BreakData struct {
	Value *Expr
}

func (BreakData) exprData() {}

type ContinueData struct{}

func (ContinueData) exprData() {}

type ReturnData struct {
	Value *Expr
}

func (ReturnData) exprData() {}

// AssignData is plain (Op == ast.BinNone) or compound assignment.
type AssignData struct {
	Op     ast.BinaryOp
	Target *Expr
	Value  *Expr
}

func (AssignData) exprData() {}

type MatchArm struct {
	Pat   *Pat
	Guard *Expr
	Body  *Expr
	Span  source.Span
}

type MatchData struct {
	Scrutinee *Expr
	Arms      []MatchArm
}

func (MatchData) exprData() {}

type TransmuteData struct {
	X *Expr
}

func (TransmuteData) exprData() {}

type OffsetData struct {
	Ptr    *Expr
	Count  *Expr // isize
	Stride uint64
}

func (OffsetData) exprData() {}
