package consteval

import (
	"math"
	"math/bits"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
)

func isUnsuffixedLit(b *ast.Builder, id ast.ExprID) bool {
	x := b.Expr(id)
	for x != nil {
		switch d := x.Data.(type) {
		case *ast.LitData:
			return d.Kind == ast.LitInt && d.Suffix == ""
		case *ast.ParenData:
			x = b.Expr(d.X)
		case *ast.UnaryData:
			x = b.Expr(d.X)
		default:
			return false
		}
	}
	return false
}

func (e *Evaluator) binary(x *ast.Expr, bin *ast.BinaryData, hint Hint) (Value, error) {
	switch bin.Op {
	case ast.BinLogAnd, ast.BinLogOr:
		l, err := e.Eval(bin.X, boolHint)
		if err != nil {
			return Value{}, err
		}
		if (bin.Op == ast.BinLogAnd) == (l.Bits == 0) {
			return l, nil
		}
		return e.Eval(bin.Y, boolHint)
	}

	operandHint := hint
	if bin.Op.IsComparison() {
		operandHint = NoHint
	}
	// литерал без суффикса берёт тип другого операнда
	var l, r Value
	var err error
	if isUnsuffixedLit(e.AST, bin.X) && !isUnsuffixedLit(e.AST, bin.Y) && operandHint == NoHint {
		if r, err = e.eval(bin.Y, NoHint); err != nil {
			return Value{}, err
		}
		if l, err = e.Eval(bin.X, r.hint()); err != nil {
			return Value{}, err
		}
	} else {
		if l, err = e.eval(bin.X, operandHint); err != nil {
			return Value{}, err
		}
		rh := l.hint()
		if bin.Op == ast.BinShl || bin.Op == ast.BinShr {
			rh = NoHint
		}
		if r, err = e.Eval(bin.Y, rh); err != nil {
			return Value{}, err
		}
	}

	if bin.Op.IsComparison() {
		return compare(bin.Op, l, r), nil
	}
	if l.IsBool() {
		switch bin.Op {
		case ast.BinAnd:
			return Bool(l.Bits&r.Bits != 0), nil
		case ast.BinOr:
			return Bool(l.Bits|r.Bits != 0), nil
		case ast.BinXor:
			return Bool(l.Bits != r.Bits), nil
		}
		return Value{}, &Error{Code: diag.SemaBadOperands, Span: x.Span, Msg: "cannot apply `" + bin.Op.String() + "` to `bool`"}
	}
	return e.arith(x, bin.Op, l, r)
}

func compare(op ast.BinaryOp, l, r Value) Value {
	var c int
	switch {
	case l.Signed():
		a, b := l.Int64(), r.Int64()
		c = cmp3(a < b, a > b)
	default:
		c = cmp3(l.Bits < r.Bits, l.Bits > r.Bits)
	}
	switch op {
	case ast.BinEq:
		return Bool(c == 0)
	case ast.BinNe:
		return Bool(c != 0)
	case ast.BinLt:
		return Bool(c < 0)
	case ast.BinLe:
		return Bool(c <= 0)
	case ast.BinGt:
		return Bool(c > 0)
	}
	return Bool(c >= 0)
}

func cmp3(less, greater bool) int {
	if less {
		return -1
	}
	if greater {
		return 1
	}
	return 0
}

func (e *Evaluator) arith(x *ast.Expr, op ast.BinaryOp, l, r Value) (Value, error) {
	t := l.hint()
	text := l.String() + " " + op.String() + " " + r.String()
	res := Value{Kind: l.Kind, Width: l.Width}
	if l.Signed() {
		a, b := l.Int64(), r.Int64()
		var v int64
		switch op {
		case ast.BinAdd:
			v = a + b
			if (b > 0 && v < a) || (b < 0 && v > a) {
				return Value{}, overflow(x.Span, text, t)
			}
		case ast.BinSub:
			v = a - b
			if (b < 0 && v < a) || (b > 0 && v > a) {
				return Value{}, overflow(x.Span, text, t)
			}
		case ast.BinMul:
			v = a * b
			if a != 0 && ((a == -1 && b == math.MinInt64) || v/a != b) {
				return Value{}, overflow(x.Span, text, t)
			}
		case ast.BinDiv, ast.BinRem:
			if b == 0 {
				return Value{}, &Error{Code: diag.ConstOverflow, Span: x.Span, Msg: "attempt to divide `" + l.String() + "` by zero"}
			}
			if op == ast.BinDiv {
				v = a / b
			} else {
				v = a % b
			}
		case ast.BinShl, ast.BinShr:
			return e.shift(x, op, l, r, text)
		case ast.BinAnd:
			v = a & b
		case ast.BinOr:
			v = a | b
		case ast.BinXor:
			v = a ^ b
		}
		if !fitsSigned(v, l.Width, e.PtrBytes) {
			return Value{}, overflow(x.Span, text, t)
		}
		res.Bits = uint64(v)
		return e.wrap(res), nil
	}

	a, b := l.Bits, r.Bits
	var v uint64
	switch op {
	case ast.BinAdd:
		var carry uint64
		v, carry = bits.Add64(a, b, 0)
		if carry != 0 {
			return Value{}, overflow(x.Span, text, t)
		}
	case ast.BinSub:
		if b > a {
			return Value{}, overflow(x.Span, text, t)
		}
		v = a - b
	case ast.BinMul:
		if mulOverflows(a, b) {
			return Value{}, overflow(x.Span, text, t)
		}
		v = a * b
	case ast.BinDiv, ast.BinRem:
		if b == 0 {
			return Value{}, &Error{Code: diag.ConstOverflow, Span: x.Span, Msg: "attempt to divide `" + l.String() + "` by zero"}
		}
		if op == ast.BinDiv {
			v = a / b
		} else {
			v = a % b
		}
	case ast.BinShl, ast.BinShr:
		return e.shift(x, op, l, r, text)
	case ast.BinAnd:
		v = a & b
	case ast.BinOr:
		v = a | b
	case ast.BinXor:
		v = a ^ b
	}
	if !fitsUnsigned(v, l.Width, e.PtrBytes) {
		return Value{}, overflow(x.Span, text, t)
	}
	res.Bits = v
	return res, nil
}

func (e *Evaluator) shift(x *ast.Expr, op ast.BinaryOp, l, r Value, text string) (Value, error) {
	n := r.Bits
	if r.Signed() && r.Int64() < 0 || n >= uint64(bitWidth(l.Width, e.PtrBytes)) {
		return Value{}, overflow(x.Span, text, l.hint())
	}
	res := Value{Kind: l.Kind, Width: l.Width}
	if op == ast.BinShl {
		res.Bits = l.Bits << n
	} else if l.Signed() {
		res.Bits = uint64(l.Int64() >> n)
	} else {
		res.Bits = l.Bits >> n
	}
	return e.wrap(res), nil
}
