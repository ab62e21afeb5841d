package types

import "rsfront/internal/ast"

// FamilyMask describes broad categories of types an operator accepts.
type FamilyMask uint32

const (
	FamilyNone FamilyMask = 0
	FamilyAny  FamilyMask = 1 << iota
	FamilyBool
	FamilySignedInt
	FamilyUnsignedInt
	FamilyFloat
	FamilyPointer
	FamilyReference
	FamilyUnit
)

const (
	FamilyIntegral = FamilySignedInt | FamilyUnsignedInt
	FamilyNumeric  = FamilyIntegral | FamilyFloat
	FamilyScalar   = FamilyNumeric | FamilyBool | FamilyPointer
)

// BinaryResult describes how to derive the result type for an operator.
type BinaryResult uint8

const (
	BinaryResultUnknown BinaryResult = iota
	BinaryResultLeft
	BinaryResultBool
)

// BinaryFlags annotate special handling for binary operators.
type BinaryFlags uint16

const (
	BinaryFlagNone         BinaryFlags = 0
	BinaryFlagShortCircuit BinaryFlags = 1 << iota
	BinaryFlagSameType
)

// BinarySpec lists operand families and expected result for an operation.
type BinarySpec struct {
	Left   FamilyMask
	Right  FamilyMask
	Result BinaryResult
	Flags  BinaryFlags
}

// UnarySpec describes operand expectations for unary operators.
type UnarySpec struct {
	Operand FamilyMask
	Result  BinaryResult
}

var arith = []BinarySpec{{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultLeft, Flags: BinaryFlagSameType}}
var bitwise = []BinarySpec{
	{Left: FamilyIntegral, Right: FamilyIntegral, Result: BinaryResultLeft, Flags: BinaryFlagSameType},
	{Left: FamilyBool, Right: FamilyBool, Result: BinaryResultBool, Flags: BinaryFlagSameType},
}
var ordering = []BinarySpec{{Left: FamilyScalar, Right: FamilyScalar, Result: BinaryResultBool, Flags: BinaryFlagSameType}}

var binarySpecTable = map[ast.BinaryOp][]BinarySpec{
	ast.BinAdd: arith,
	ast.BinSub: arith,
	ast.BinMul: arith,
	ast.BinDiv: arith,
	ast.BinRem: {{Left: FamilyIntegral, Right: FamilyIntegral, Result: BinaryResultLeft, Flags: BinaryFlagSameType}},
	ast.BinAnd: bitwise,
	ast.BinOr:  bitwise,
	ast.BinXor: bitwise,
	// сдвиг допускает разные целые типы операндов
	ast.BinShl:    {{Left: FamilyIntegral, Right: FamilyIntegral, Result: BinaryResultLeft}},
	ast.BinShr:    {{Left: FamilyIntegral, Right: FamilyIntegral, Result: BinaryResultLeft}},
	ast.BinLogAnd: {{Left: FamilyBool, Right: FamilyBool, Result: BinaryResultBool, Flags: BinaryFlagShortCircuit}},
	ast.BinLogOr:  {{Left: FamilyBool, Right: FamilyBool, Result: BinaryResultBool, Flags: BinaryFlagShortCircuit}},
	ast.BinEq:     {{Left: FamilyAny, Right: FamilyAny, Result: BinaryResultBool, Flags: BinaryFlagSameType}},
	ast.BinNe:     {{Left: FamilyAny, Right: FamilyAny, Result: BinaryResultBool, Flags: BinaryFlagSameType}},
	ast.BinLt:     ordering,
	ast.BinLe:     ordering,
	ast.BinGt:     ordering,
	ast.BinGe:     ordering,
}

var unarySpecTable = map[ast.UnaryOp]UnarySpec{
	ast.UnNeg:   {Operand: FamilySignedInt | FamilyFloat, Result: BinaryResultLeft},
	ast.UnNot:   {Operand: FamilyIntegral | FamilyBool, Result: BinaryResultLeft},
	ast.UnDeref: {Operand: FamilyPointer | FamilyReference, Result: BinaryResultUnknown},
}

// BinarySpecs returns operand rules for the given operator.
func BinarySpecs(op ast.BinaryOp) []BinarySpec {
	return binarySpecTable[op]
}

// UnarySpecFor returns operand/result hints for unary operators.
func UnarySpecFor(op ast.UnaryOp) (UnarySpec, bool) {
	spec, ok := unarySpecTable[op]
	return spec, ok
}

// Family classifies id for operator checks.
func (in *Interner) Family(id TypeID) FamilyMask {
	switch in.KindOf(id) {
	case KindBool:
		return FamilyAny | FamilyBool
	case KindInt:
		return FamilyAny | FamilySignedInt
	case KindUint:
		return FamilyAny | FamilyUnsignedInt
	case KindFloat:
		return FamilyAny | FamilyFloat
	case KindPointer:
		return FamilyAny | FamilyPointer
	case KindReference:
		return FamilyAny | FamilyReference
	case KindUnit:
		return FamilyAny | FamilyUnit
	case KindInvalid:
		return FamilyNone
	}
	return FamilyAny
}

// FindBinarySpec returns the first spec accepting the operand types.
func (in *Interner) FindBinarySpec(op ast.BinaryOp, left, right TypeID) (BinarySpec, bool) {
	lf, rf := in.Family(left), in.Family(right)
	for _, spec := range binarySpecTable[op] {
		if lf&spec.Left == 0 || rf&spec.Right == 0 {
			continue
		}
		if spec.Flags&BinaryFlagSameType != 0 && left != right {
			continue
		}
		return spec, true
	}
	return BinarySpec{}, false
}
