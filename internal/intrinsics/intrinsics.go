// Package intrinsics lowers calls of functions declared in
// `extern "rust-intrinsic"` blocks into dedicated HIR nodes.
package intrinsics

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"rsfront/internal/diag"
	"rsfront/internal/hir"
	"rsfront/internal/layout"
	"rsfront/internal/source"
	"rsfront/internal/types"
)

// ABI is the extern block ABI string that declares intrinsics.
const ABI = "rust-intrinsic"

type Kind uint8

const (
	KindInvalid Kind = iota
	// SizeOf folds `size_of::<T>()` into a usize constant.
	SizeOf
	// Transmute reinterprets the bits of a value as another type of equal size.
	Transmute
	// Offset advances a raw pointer by a signed element count, unchecked.
	Offset
)

// Signature is the expected shape of an intrinsic declaration.
type Signature struct {
	Name       string
	TypeParams int
	Params     int
}

var table = map[string]struct {
	kind Kind
	sig  Signature
}{
	"size_of":   {SizeOf, Signature{Name: "size_of", TypeParams: 1}},
	"transmute": {Transmute, Signature{Name: "transmute", TypeParams: 2, Params: 1}},
	"offset":    {Offset, Signature{Name: "offset", TypeParams: 1, Params: 2}},
}

// Lookup maps an intrinsic name to its kind.
func Lookup(name string) (Kind, bool) {
	e, ok := table[name]
	return e.kind, ok
}

// Names lists the supported intrinsics, sorted.
func Names() []string {
	out := make([]string, 0, len(table))
	for name := range table {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (k Kind) String() string {
	switch k {
	case SizeOf:
		return "size_of"
	case Transmute:
		return "transmute"
	case Offset:
		return "offset"
	}
	return "invalid"
}

// Error is a failed intrinsic lowering or declaration check.
type Error struct {
	Code diag.Code
	Span source.Span
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// CheckDecl validates an intrinsic declaration against the known set.
func CheckDecl(name string, typeParams, params int, span source.Span) error {
	e, ok := table[name]
	if !ok {
		return &Error{Code: diag.IntrinsicUnknown, Span: span, Msg: fmt.Sprintf("unrecognized intrinsic `%s`", name)}
	}
	if e.sig.TypeParams != typeParams || e.sig.Params != params {
		return &Error{Code: diag.IntrinsicUnknown, Span: span, Msg: fmt.Sprintf(
			"intrinsic `%s` must have %d type parameter(s) and %d parameter(s)", name, e.sig.TypeParams, e.sig.Params)}
	}
	return nil
}

// Lowerer turns intrinsic calls into HIR using the target layout.
type Lowerer struct {
	Types  *types.Interner
	Layout *layout.LayoutEngine
}

func NewLowerer(in *types.Interner, engine *layout.LayoutEngine) *Lowerer {
	return &Lowerer{Types: in, Layout: engine}
}

// Lower builds the node for a call of kind. typeArgs are the concrete
// instantiation arguments, args the already lowered value arguments and
// result the call's result type after substitution.
func (l *Lowerer) Lower(kind Kind, typeArgs []types.TypeID, args []*hir.Expr, result types.TypeID, span source.Span) (*hir.Expr, error) {
	switch kind {
	case SizeOf:
		return l.SizeOf(typeArgs[0], span)
	case Transmute:
		return l.Transmute(typeArgs[0], typeArgs[1], args[0], span)
	case Offset:
		return l.Offset(args[0], args[1], typeArgs[0], result, span)
	}
	return nil, &Error{Code: diag.IntrinsicUnknown, Span: span, Msg: "unrecognized intrinsic"}
}

// SizeOfValue returns the byte size of t as a compile-time constant.
func (l *Lowerer) SizeOfValue(t types.TypeID) (uint64, error) {
	n, err := l.Layout.SizeOf(t)
	if err != nil {
		return 0, err
	}
	return safecast.Conv[uint64](n)
}

func (l *Lowerer) SizeOf(t types.TypeID, span source.Span) (*hir.Expr, error) {
	n, err := l.SizeOfValue(t)
	if err != nil {
		return nil, &Error{Code: diag.LayoutRecursive, Span: span, Msg: err.Error()}
	}
	return &hir.Expr{
		Kind: hir.ExprLiteral,
		Type: l.Types.Builtins().Usize,
		Span: span,
		Data: hir.LiteralData{Kind: hir.LiteralInt, Bits: n, SizeOf: t},
	}, nil
}

// Transmute checks that both types have the same size and reinterprets x.
func (l *Lowerer) Transmute(from, to types.TypeID, x *hir.Expr, span source.Span) (*hir.Expr, error) {
	fromSize, err := l.SizeOfValue(from)
	if err != nil {
		return nil, &Error{Code: diag.LayoutRecursive, Span: span, Msg: err.Error()}
	}
	toSize, err := l.SizeOfValue(to)
	if err != nil {
		return nil, &Error{Code: diag.LayoutRecursive, Span: span, Msg: err.Error()}
	}
	if fromSize != toSize {
		return nil, &Error{Code: diag.IntrinsicSizeMismatch, Span: span, Msg: fmt.Sprintf(
			"cannot transmute between types of different sizes: `%s` (%d bits) to `%s` (%d bits)",
			types.Label(l.Types, from), fromSize*8, types.Label(l.Types, to), toSize*8)}
	}
	return &hir.Expr{Kind: hir.ExprTransmute, Type: to, Span: span, Data: hir.TransmuteData{X: x}}, nil
}

// Offset advances ptr by count elements of elem.
func (l *Lowerer) Offset(ptr, count *hir.Expr, elem, result types.TypeID, span source.Span) (*hir.Expr, error) {
	stride, err := l.SizeOfValue(elem)
	if err != nil {
		return nil, &Error{Code: diag.LayoutRecursive, Span: span, Msg: err.Error()}
	}
	if result == types.NoTypeID {
		result = ptr.Type
	}
	return &hir.Expr{
		Kind: hir.ExprOffset,
		Type: result,
		Span: span,
		Data: hir.OffsetData{Ptr: ptr, Count: count, Stride: stride},
	}, nil
}
