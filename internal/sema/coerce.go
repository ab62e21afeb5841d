package sema

import (
	"rsfront/internal/hir"
	"rsfront/internal/types"
)

// coerce converts x to type to, reporting a mismatch when no implicit
// coercion applies.
func (fc *fnCtx) coerce(x *hir.Expr, to types.TypeID) *hir.Expr {
	out, ok := fc.tryCoerce(x, to)
	if !ok {
		fc.mismatch(x.Span, to, x.Type)
	}
	return out
}

// tryCoerce applies the implicit coercions: `!` to any type, `&mut T` to
// `&T`, references to raw pointers, `*mut T` to `*const T` and unsizing of
// pointers to arrays into pointers to slices.
func (fc *fnCtx) tryCoerce(x *hir.Expr, to types.TypeID) (*hir.Expr, bool) {
	in := fc.tc.types
	from := x.Type
	if to == types.NoTypeID || from == to || fc.isBad(from) || fc.isBad(to) {
		return x, true
	}
	if in.KindOf(from) == types.KindNever {
		return x, true
	}
	ft, ok1 := in.Lookup(from)
	tt, ok2 := in.Lookup(to)
	if !ok1 || !ok2 || !in.IsPointerLike(from) || !in.IsPointerLike(to) {
		return x, false
	}
	if ft.Kind == types.KindPointer && tt.Kind == types.KindReference {
		return x, false
	}
	if tt.Mutable && !ft.Mutable {
		return x, false
	}
	if ft.Elem == tt.Elem {
		kind := hir.CastPtrToPtr
		if in.IsFatPointer(from) {
			kind = hir.CastFatToFat
		}
		return fc.mk(hir.ExprCast, to, x.Span, hir.CastData{Kind: kind, X: x}), true
	}
	fe, _ := in.Lookup(ft.Elem)
	te, _ := in.Lookup(tt.Elem)
	if fe.Kind == types.KindArray && te.Kind == types.KindSlice && fe.Elem == te.Elem {
		return fc.mk(hir.ExprUnsize, to, x.Span, hir.UnsizeData{X: x}), true
	}
	return x, false
}

// unify picks the common type of two branches; Never yields to the other.
func (fc *fnCtx) unify(a, b *hir.Expr) (types.TypeID, *hir.Expr, *hir.Expr) {
	in := fc.tc.types
	switch {
	case fc.isBad(a.Type) || fc.isBad(b.Type):
		return fc.b.Invalid, a, b
	case in.KindOf(a.Type) == types.KindNever:
		return b.Type, a, b
	case in.KindOf(b.Type) == types.KindNever:
		return a.Type, a, b
	}
	if c, ok := fc.tryCoerce(b, a.Type); ok {
		return a.Type, a, c
	}
	if c, ok := fc.tryCoerce(a, b.Type); ok {
		return b.Type, c, b
	}
	fc.mismatch(b.Span, a.Type, b.Type)
	return fc.b.Invalid, a, b
}
