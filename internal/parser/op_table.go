package parser

import (
	"rsfront/internal/ast"
	"rsfront/internal/token"
)

// Таблица приоритетов для бинарных операторов.
// Чем больше число, тем выше приоритет.
const (
	precLogicalOr      = 1 // ||
	precLogicalAnd     = 2 // &&
	precComparison     = 3 // == != < <= > >=
	precBitwiseOr      = 4 // |
	precBitwiseXor     = 5 // ^
	precBitwiseAnd     = 6 // &
	precShift          = 7 // << >>
	precAdditive       = 8 // + -
	precMultiplicative = 9 // * / %
)

var binaryOps = map[token.Kind]struct {
	prec int
	op   ast.BinaryOp
}{
	token.OrOr:    {precLogicalOr, ast.BinLogOr},
	token.AndAnd:  {precLogicalAnd, ast.BinLogAnd},
	token.EqEq:    {precComparison, ast.BinEq},
	token.BangEq:  {precComparison, ast.BinNe},
	token.Lt:      {precComparison, ast.BinLt},
	token.LtEq:    {precComparison, ast.BinLe},
	token.Gt:      {precComparison, ast.BinGt},
	token.GtEq:    {precComparison, ast.BinGe},
	token.Pipe:    {precBitwiseOr, ast.BinOr},
	token.Caret:   {precBitwiseXor, ast.BinXor},
	token.Amp:     {precBitwiseAnd, ast.BinAnd},
	token.Shl:     {precShift, ast.BinShl},
	token.Shr:     {precShift, ast.BinShr},
	token.Plus:    {precAdditive, ast.BinAdd},
	token.Minus:   {precAdditive, ast.BinSub},
	token.Star:    {precMultiplicative, ast.BinMul},
	token.Slash:   {precMultiplicative, ast.BinDiv},
	token.Percent: {precMultiplicative, ast.BinRem},
}

var assignOps = map[token.Kind]ast.BinaryOp{
	token.Assign:        ast.BinNone,
	token.PlusAssign:    ast.BinAdd,
	token.MinusAssign:   ast.BinSub,
	token.StarAssign:    ast.BinMul,
	token.SlashAssign:   ast.BinDiv,
	token.PercentAssign: ast.BinRem,
	token.CaretAssign:   ast.BinXor,
	token.AmpAssign:     ast.BinAnd,
	token.PipeAssign:    ast.BinOr,
	token.ShlAssign:     ast.BinShl,
	token.ShrAssign:     ast.BinShr,
}
