package ast

import "rsfront/internal/source"

// Bound is a trait reference such as `SliceIndex<[T]>`, or `?Sized`.
type Bound struct {
	Path  Path
	Maybe bool // ?Trait
	Span  source.Span
}

type GenericParam struct {
	Name   string
	Bounds []Bound
	Span   source.Span
}

type WherePredicate struct {
	Type   TypeID
	Bounds []Bound
	Span   source.Span
}

type Generics struct {
	Params []GenericParam
	Where  []WherePredicate
	Span   source.Span
}

func (g *Generics) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Params)
}
