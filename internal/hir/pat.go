package hir

import (
	"rsfront/internal/source"
	"rsfront/internal/types"
)

type PatKind uint8

const (
	PatWild PatKind = iota
	PatBind
	PatLiteral
	PatVariant
)

// Pat is a match pattern over a concrete type.
type Pat struct {
	Kind PatKind
	Type types.TypeID
	Span source.Span

	Local   LocalID     // PatBind
	Value   LiteralData // PatLiteral
	Variant int         // PatVariant
	Name    string      // PatVariant
	Fields  []*Pat      // PatVariant
}
