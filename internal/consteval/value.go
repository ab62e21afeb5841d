package consteval

import (
	"fmt"
	"math"
	"math/bits"

	"rsfront/internal/types"
)

// Value is a folded constant. Integers keep their bit pattern in Bits,
// truncated to Width.
type Value struct {
	Kind  types.Kind // KindInt, KindUint or KindBool
	Width types.Width
	Bits  uint64
}

func Bool(v bool) Value {
	if v {
		return Value{Kind: types.KindBool, Bits: 1}
	}
	return Value{Kind: types.KindBool}
}

func Uint(v uint64, w types.Width) Value { return Value{Kind: types.KindUint, Width: w, Bits: v} }

func Int(v int64, w types.Width) Value {
	return Value{Kind: types.KindInt, Width: w, Bits: uint64(v) & mask(w, 8)}
}

// Usize is the value kind of array lengths.
func Usize(v uint64) Value { return Uint(v, types.WidthSize) }

func (v Value) IsBool() bool { return v.Kind == types.KindBool }

func (v Value) Signed() bool { return v.Kind == types.KindInt }

// Int64 sign-extends a signed value.
func (v Value) Int64() int64 {
	if !v.Signed() {
		return int64(v.Bits)
	}
	n := bitWidth(v.Width, 8)
	shift := 64 - n
	return int64(v.Bits<<shift) >> shift
}

func (v Value) String() string {
	switch v.Kind {
	case types.KindBool:
		return fmt.Sprint(v.Bits != 0)
	case types.KindInt:
		return fmt.Sprint(v.Int64())
	}
	return fmt.Sprint(v.Bits)
}

// bitWidth returns the number of bits of w; pointer-sized widths use ptrBytes.
func bitWidth(w types.Width, ptrBytes int) uint {
	switch w {
	case types.WidthSize:
		return uint(ptrBytes) * 8
	case types.WidthAny:
		return 64
	}
	return uint(w)
}

func mask(w types.Width, ptrBytes int) uint64 {
	n := bitWidth(w, ptrBytes)
	if n >= 64 {
		return math.MaxUint64
	}
	return 1<<n - 1
}

func fitsUnsigned(r uint64, w types.Width, ptrBytes int) bool {
	return r&^mask(w, ptrBytes) == 0
}

func fitsSigned(r int64, w types.Width, ptrBytes int) bool {
	n := bitWidth(w, ptrBytes)
	if n >= 64 {
		return true
	}
	lo := -(int64(1) << (n - 1))
	hi := int64(1)<<(n-1) - 1
	return r >= lo && r <= hi
}

// mulOverflows reports unsigned 64-bit multiplication overflow.
func mulOverflows(a, b uint64) bool {
	hi, _ := bits.Mul64(a, b)
	return hi != 0
}
