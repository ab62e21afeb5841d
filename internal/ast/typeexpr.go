package ast

import "rsfront/internal/source"

type TypeKind uint8

const (
	TypePath TypeKind = iota
	TypeRef
	TypePtr
	TypeArray
	TypeSlice
	TypeUnit
	TypeNever
	TypeInfer
)

type TypeExpr struct {
	Kind    TypeKind
	Span    source.Span
	Path    *Path  // TypePath
	Elem    TypeID // Ref/Ptr/Array/Slice
	Mutable bool   // &mut, *mut
	Len     ExprID // TypeArray
}
