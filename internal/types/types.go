package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindNever
	KindBool
	KindInt
	KindUint
	KindFloat
	KindStr
	KindArray
	KindSlice
	KindPointer
	KindReference
	KindAdt
	KindParam
	KindProjection
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindNever:
		return "never"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindArray:
		return "array"
	case KindSlice:
		return "slice"
	case KindPointer:
		return "pointer"
	case KindReference:
		return "reference"
	case KindAdt:
		return "adt"
	case KindParam:
		return "param"
	case KindProjection:
		return "projection"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny  Width = 0
	Width8    Width = 8
	Width16   Width = 16
	Width32   Width = 32
	Width64   Width = 64
	WidthSize Width = 255 // isize/usize: ширина указателя целевой платформы
)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Count   uint64 // for arrays
	Width   Width  // for numeric primitives
	Mutable bool   // for pointers and references
	Payload uint32 // side-table slot for adt/param/projection; pending length handle for arrays
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeArray describes [elem; count].
func MakeArray(elem TypeID, count uint64) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakePendingArray describes an array whose length depends on generic
// parameters. The handle is resolved by Hooks.ArrayLen during substitution.
func MakePendingArray(elem TypeID, handle uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Payload: handle}
}

// MakeSlice describes [elem].
func MakeSlice(elem TypeID) Type {
	return Type{Kind: KindSlice, Elem: elem}
}

// MakePointer describes *const T or *mut T.
func MakePointer(elem TypeID, mutable bool) Type {
	return Type{Kind: KindPointer, Elem: elem, Mutable: mutable}
}

// MakeReference describes &T or &mut T depending on the mutable flag.
func MakeReference(elem TypeID, mutable bool) Type {
	return Type{Kind: KindReference, Elem: elem, Mutable: mutable}
}

// Pending reports whether an array type still waits for its length.
func (t Type) Pending() bool {
	return t.Kind == KindArray && t.Payload != 0
}
