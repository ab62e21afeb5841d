package traits

import (
	"rsfront/internal/symbols"
	"rsfront/internal/types"
)

type IndexKind uint8

const (
	// IndexNative reads one element of an array or slice.
	IndexNative IndexKind = iota + 1
	// IndexNativeRange builds a sub-slice from a `Range<usize>`.
	IndexNativeRange
	// IndexImpl calls the `index` method of an impl of the index lang trait.
	IndexImpl
)

func (k IndexKind) String() string {
	switch k {
	case IndexNative:
		return "native"
	case IndexNativeRange:
		return "native-range"
	case IndexImpl:
		return "impl"
	}
	return "invalid"
}

// IndexResolution tells the checker how to lower `recv[index]`.
// Output is the type of the indexed place.
type IndexResolution struct {
	Kind   IndexKind
	Derefs int
	Unsize bool
	Base   types.TypeID // receiver after derefs and unsizing
	Output types.TypeID
	Match  Match
	Method symbols.ItemID
}

const opIndex = "index"

// ResolveIndex dispatches `recv[index]`. A usize index into an array or
// slice is always native. A range index goes through an impl of the index
// lang trait when one covers the receiver, and natively otherwise. Any other
// receiver needs an impl.
func (r *Resolver) ResolveIndex(recv, index types.TypeID) (IndexResolution, error) {
	key := capKey{op: opIndex, recv: recv, index: index}
	if res, ok := r.caps[key]; ok {
		return res, nil
	}
	res, err := r.resolveIndex(recv, index)
	if err != nil {
		return IndexResolution{}, err
	}
	r.caps[key] = res
	return res, nil
}

func (r *Resolver) resolveIndex(recv, index types.TypeID) (IndexResolution, error) {
	usize := r.Types.Builtins().Usize
	steps := r.Autoderef(recv)
	last := steps[len(steps)-1]
	base := last.Type
	if last.Unsize {
		// массив индексируется без приведения к срезу
		base = steps[len(steps)-2].Type
	}
	seq := r.isSequence(base)

	if seq && index == usize {
		elem, _ := r.Types.ElemOf(base)
		derefs := last.Derefs
		return IndexResolution{Kind: IndexNative, Derefs: derefs, Base: base, Output: elem}, nil
	}

	if r.IndexTrait.IsValid() {
		for _, step := range steps {
			m, err := r.FindImpl(r.IndexTrait, step.Type, []types.TypeID{index})
			if err != nil {
				continue
			}
			out, ok := m.Impl.Assoc["Output"]
			if !ok {
				return IndexResolution{}, &Error{Kind: ErrUnknownAssoc, Trait: r.name(r.IndexTrait), Self: r.label(step.Type), Name: "Output"}
			}
			return IndexResolution{
				Kind:   IndexImpl,
				Derefs: step.Derefs,
				Unsize: step.Unsize,
				Base:   step.Type,
				Output: r.Types.Subst(out, m.Subst),
				Match:  m,
				Method: m.Impl.Methods[opIndex],
			}, nil
		}
	}

	if seq && r.isUsizeRange(index) {
		elem, _ := r.Types.ElemOf(base)
		return IndexResolution{
			Kind:   IndexNativeRange,
			Derefs: last.Derefs,
			Unsize: r.Types.KindOf(base) == types.KindArray,
			Base:   base,
			Output: r.Types.Slice(elem),
		}, nil
	}

	e := &Error{Kind: ErrNotIndexable, Self: r.label(recv), Name: r.label(index)}
	if r.IndexTrait.IsValid() {
		e.Cause = r.traitError(ErrNoMatchingImpl, r.IndexTrait, base, []types.TypeID{index})
	}
	return IndexResolution{}, e
}

func (r *Resolver) isSequence(t types.TypeID) bool {
	k := r.Types.KindOf(t)
	return k == types.KindArray || k == types.KindSlice
}

func (r *Resolver) isUsizeRange(t types.TypeID) bool {
	if !r.RangeStruct.IsValid() || r.Types.KindOf(t) != types.KindAdt {
		return false
	}
	info, ok := r.Types.AdtHeader(t)
	return ok && symbols.ItemID(info.Item) == r.RangeStruct &&
		len(info.Args) == 1 && info.Args[0] == r.Types.Builtins().Usize
}
