package vm

import (
	"bytes"
	"math"

	"rsfront/internal/ast"
	"rsfront/internal/hir"
	"rsfront/internal/types"
)

func (vm *VM) unary(op ast.UnaryOp, t types.TypeID, v []byte) []byte {
	out := make([]byte, len(v))
	switch {
	case vm.Types.IsFloat(t):
		putFloat(out, -getFloat(v))
	case op == ast.UnNeg:
		putUint(out, -getUint(v))
	case vm.Types.KindOf(t) == types.KindBool:
		out[0] = v[0] ^ 1
	default:
		putUint(out, ^getUint(v))
	}
	return out
}

func (vm *VM) binary(x *hir.Expr, d hir.BinaryData) ([]byte, flow) {
	l, f := vm.eval(d.X)
	if f != flowNone {
		return nil, f
	}
	switch d.Op {
	case ast.BinLogAnd, ast.BinLogOr:
		if (l[0] != 0) == (d.Op == ast.BinLogOr) {
			return l, flowNone
		}
		return vm.eval(d.Y)
	}
	r, f := vm.eval(d.Y)
	if f != flowNone {
		return nil, f
	}
	if d.Op.IsComparison() {
		c := vm.compare(d.X.Type, l, r)
		return boolBytes(holds(d.Op, c)), flowNone
	}
	return vm.arith(d.Op, d.X.Type, l, r), flowNone
}

func boolBytes(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

// holds interprets a three-way comparison result for op; c == 2 marks
// unordered floats.
func holds(op ast.BinaryOp, c int) bool {
	if c == 2 {
		return op == ast.BinNe
	}
	switch op {
	case ast.BinEq:
		return c == 0
	case ast.BinNe:
		return c != 0
	case ast.BinLt:
		return c < 0
	case ast.BinLe:
		return c <= 0
	case ast.BinGt:
		return c > 0
	case ast.BinGe:
		return c >= 0
	}
	return false
}

// compare orders two values of type t. References compare their targets,
// `&str` by content.
func (vm *VM) compare(t types.TypeID, l, r []byte) int {
	in := vm.Types
	tt, _ := in.Lookup(t)
	switch tt.Kind {
	case types.KindFloat:
		a, b := getFloat(l), getFloat(r)
		switch {
		case math.IsNaN(a) || math.IsNaN(b):
			return 2
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	case types.KindInt:
		a, b := signExtend(getUint(l), len(l)), signExtend(getUint(r), len(r))
		return cmpInt(a, b)
	case types.KindReference:
		if in.IsFatPointer(t) {
			return bytes.Compare(vm.fatBytes(tt.Elem, l), vm.fatBytes(tt.Elem, r))
		}
		n := vm.size(tt.Elem)
		return vm.compare(tt.Elem, vm.load(getUint(l), n), vm.load(getUint(r), n))
	case types.KindUnit:
		return 0
	}
	// целые без знака, bool и сырые указатели сравниваются побайтно
	if len(l) <= 8 {
		a, b := getUint(l), getUint(r)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	return bytes.Compare(l, r)
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// fatBytes loads the bytes a fat pointer to str or [u8]-like data covers.
func (vm *VM) fatBytes(elem types.TypeID, p []byte) []byte {
	addr, n := getUint(p[:vm.ptrSize]), getUint(p[vm.ptrSize:])
	stride := 1
	if e, ok := vm.Types.ElemOf(elem); ok && vm.Types.KindOf(elem) != types.KindStr {
		stride = vm.size(e)
	}
	return vm.load(addr, int(n)*stride)
}

// arith evaluates arithmetic, bitwise and shift operators with wrapping
// semantics.
func (vm *VM) arith(op ast.BinaryOp, t types.TypeID, l, r []byte) []byte {
	in := vm.Types
	out := make([]byte, len(l))
	if in.IsFloat(t) {
		a, b := getFloat(l), getFloat(r)
		var v float64
		switch op {
		case ast.BinAdd:
			v = a + b
		case ast.BinSub:
			v = a - b
		case ast.BinMul:
			v = a * b
		case ast.BinDiv:
			v = a / b
		case ast.BinRem:
			v = math.Mod(a, b)
		}
		putFloat(out, v)
		return out
	}

	n := len(l)
	signed := in.KindOf(t) == types.KindInt
	a, b := getUint(l), getUint(r)
	var v uint64
	switch op {
	case ast.BinAdd:
		v = a + b
	case ast.BinSub:
		v = a - b
	case ast.BinMul:
		v = a * b
	case ast.BinDiv, ast.BinRem:
		if truncate(b, len(r)) == 0 {
			if op == ast.BinDiv {
				vm.panic(PanicDivideByZero, "attempt to divide by zero")
			}
			vm.panic(PanicDivideByZero, "attempt to calculate the remainder with a divisor of zero")
		}
		switch {
		case signed && op == ast.BinDiv:
			v = uint64(signExtend(a, n) / signExtend(b, n))
		case signed:
			v = uint64(signExtend(a, n) % signExtend(b, n))
		case op == ast.BinDiv:
			v = a / b
		default:
			v = a % b
		}
	case ast.BinAnd:
		v = a & b
	case ast.BinOr:
		v = a | b
	case ast.BinXor:
		v = a ^ b
	case ast.BinShl, ast.BinShr:
		shift := uint(getUint(r)) & uint(n*8-1)
		switch {
		case op == ast.BinShl:
			v = a << shift
		case signed:
			v = uint64(signExtend(a, n) >> shift)
		default:
			v = truncate(a, n) >> shift
		}
	}
	putUint(out, truncate(v, n))
	return out
}

// cast converts v between the representations of from and to.
func (vm *VM) cast(kind hir.CastKind, from, to types.TypeID, v []byte) []byte {
	in := vm.Types
	switch kind {
	case hir.CastPtrToPtr, hir.CastFatToFat:
		return v
	case hir.CastFatToThin:
		return v[:vm.ptrSize]
	case hir.CastPtrToInt:
		out := make([]byte, vm.size(to))
		putUint(out, getUint(v[:vm.ptrSize]))
		return out
	case hir.CastIntToPtr:
		val := getUint(v)
		if in.KindOf(from) == types.KindInt {
			val = uint64(signExtend(val, len(v)))
		}
		return vm.word(val)
	}

	out := make([]byte, vm.size(to))
	fromKind := in.KindOf(from)
	switch {
	case in.IsFloat(to):
		var f float64
		switch fromKind {
		case types.KindFloat:
			f = getFloat(v)
		case types.KindInt:
			f = float64(signExtend(getUint(v), len(v)))
		default:
			f = float64(getUint(v))
		}
		putFloat(out, f)
	case fromKind == types.KindFloat:
		putUint(out, saturate(getFloat(v), len(out), in.KindOf(to) == types.KindInt))
	case fromKind == types.KindInt:
		putUint(out, uint64(signExtend(getUint(v), len(v))))
	default:
		putUint(out, getUint(v))
	}
	return out
}

// saturate converts f to an n-byte integer the way `as` does: NaN is zero,
// out of range values clamp.
func saturate(f float64, n int, signed bool) uint64 {
	if math.IsNaN(f) {
		return 0
	}
	bits := uint(n * 8)
	if signed {
		lo := -math.Ldexp(1, int(bits-1))
		hi := math.Ldexp(1, int(bits-1)) - 1
		switch {
		case f <= lo:
			return uint64(int64(lo))
		case f >= hi:
			if bits == 64 {
				return math.MaxInt64
			}
			return uint64(int64(hi))
		}
		return uint64(int64(f))
	}
	hi := math.Ldexp(1, int(bits)) - 1
	switch {
	case f <= 0:
		return 0
	case f >= hi:
		if bits == 64 {
			return math.MaxUint64
		}
		return uint64(hi)
	}
	return uint64(f)
}
