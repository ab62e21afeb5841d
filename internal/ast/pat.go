package ast

import "rsfront/internal/source"

type PatKind uint8

const (
	PatWild PatKind = iota
	PatBind
	PatLit
	PatPath
	PatTupleStruct
)

type Pat struct {
	Kind PatKind
	Span source.Span
	Data PatData
}

type PatData interface {
	patData()
}

type WildPat struct{}

func (*WildPat) patData() {}

type BindPat struct {
	Name string
	Mut  bool
	Ref  bool
}

func (*BindPat) patData() {}

// LitPat wraps a literal expression, optionally negated.
type LitPat struct {
	Lit ExprID
}

func (*LitPat) patData() {}

type PathPat struct {
	Path Path
}

func (*PathPat) patData() {}

type TupleStructPat struct {
	Path  Path
	Elems []PatID
}

func (*TupleStructPat) patData() {}
