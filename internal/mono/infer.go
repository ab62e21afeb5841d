package mono

import (
	"rsfront/internal/types"
)

// Inference determines the type arguments of one generic call site. Sources
// are consulted in order: explicit turbofish arguments, the expected result
// type, then the types of the supplied arguments.
type Inference struct {
	Types  *types.Interner
	Params []types.TypeID
	Subst  types.Subst
	Item   string
}

func NewInference(typesIn *types.Interner, item string, params []types.TypeID) *Inference {
	return &Inference{Types: typesIn, Params: params, Subst: make(types.Subst, len(params)), Item: item}
}

// Explicit binds params (a subset of Params) to written arguments.
func (inf *Inference) Explicit(params, args []types.TypeID) error {
	if len(params) != len(args) {
		return &Error{Kind: ErrArityMismatch, Item: inf.Item, Want: len(params), Got: len(args)}
	}
	for i, p := range params {
		inf.Subst[p] = args[i]
	}
	return nil
}

// Unify binds parameters of pattern against actual. A failed attempt leaves
// the substitution untouched. Coercions applied at call sites are taken into
// account: `&T` to `*const T`, `&mut T` to `&T`/`*mut T`, `*mut T` to
// `*const T` and `&[T; N]` to `&[T]`.
func (inf *Inference) Unify(pattern, actual types.TypeID) bool {
	in := inf.Types
	if actual == types.NoTypeID || in.KindOf(actual) == types.KindNever {
		return true
	}
	if inf.try(pattern, actual) {
		return true
	}
	pt, ok1 := in.Lookup(pattern)
	at, ok2 := in.Lookup(actual)
	if !ok1 || !ok2 || !in.IsPointerLike(pattern) || !in.IsPointerLike(actual) {
		return false
	}
	if pt.Mutable && !at.Mutable {
		return false
	}
	// ссылка в сырой указатель, &mut в &, *mut в *const
	if pt.Kind == types.KindReference && at.Kind == types.KindPointer {
		return false
	}
	if inf.try(pt.Elem, at.Elem) {
		return true
	}
	// &[T; N] -> &[T]
	if in.KindOf(pt.Elem) == types.KindSlice && in.KindOf(at.Elem) == types.KindArray {
		pe, _ := in.ElemOf(pt.Elem)
		ae, _ := in.ElemOf(at.Elem)
		return inf.try(pe, ae)
	}
	return false
}

func (inf *Inference) try(pattern, actual types.TypeID) bool {
	s := inf.Subst.Clone()
	if !inf.Types.Match(pattern, actual, s) {
		return false
	}
	inf.Subst = s
	return true
}

// Resolved reports whether p is already bound.
func (inf *Inference) Resolved(p types.TypeID) bool {
	_, ok := inf.Subst[p]
	return ok
}

// Apply substitutes what is known so far into t.
func (inf *Inference) Apply(t types.TypeID) types.TypeID {
	return inf.Types.Subst(t, inf.Subst)
}

// Complete returns the arguments in Params order or the first parameter
// that no source determined.
func (inf *Inference) Complete() ([]types.TypeID, error) {
	out := make([]types.TypeID, len(inf.Params))
	for i, p := range inf.Params {
		t, ok := inf.Subst[p]
		if ok && inf.Types.HasParams(t) {
			t = inf.Types.Subst(t, inf.Subst)
		}
		if !ok || inf.Types.HasParams(t) {
			info, _ := inf.Types.ParamInfo(p)
			return nil, &Error{Kind: ErrUnresolvedInference, Item: inf.Item, Param: info.Name}
		}
		out[i] = t
	}
	return out, nil
}
