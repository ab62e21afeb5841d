package sema

import (
	"rsfront/internal/ast"
	"rsfront/internal/hir"
	"rsfront/internal/types"
)

// intVar is the integer type of unsuffixed literals and of the locals bound
// to them while no use has constrained it. Until fixed it is i32; fixing it
// retypes every node that carries it.
type intVar struct {
	t      types.TypeID
	fixed  bool
	lits   []flexLit
	reads  []*hir.Expr
	locals []hir.LocalID
}

// flexLit is a lowered literal together with its source, so it can be
// lowered again at the final type.
type flexLit struct {
	node *hir.Expr
	src  ast.ExprID
}

// bindIntVar gives a fresh local initialized by an unsuffixed literal its
// own variable.
func (fc *fnCtx) bindIntVar(l hir.LocalID, init *hir.Expr, src ast.ExprID) {
	v := &intVar{t: init.Type, lits: []flexLit{{node: init, src: src}}, locals: []hir.LocalID{l}}
	fc.localVar[l] = v
	fc.nodeVar[init] = v
}

// openVar returns the unfixed variable of a local, if any.
func (fc *fnCtx) openVar(l hir.LocalID) (*intVar, bool) {
	v, ok := fc.localVar[l]
	if !ok || v.fixed {
		return nil, false
	}
	return v, true
}

// fixVar settles v at t.
func (fc *fnCtx) fixVar(v *intVar, t types.TypeID) {
	if v == nil || v.fixed {
		return
	}
	v.fixed = true
	if t == v.t {
		return
	}
	v.t = t
	for _, lit := range v.lits {
		*lit.node = *fc.expr(lit.src, t)
	}
	for _, n := range v.reads {
		n.Type = t
	}
	for _, l := range v.locals {
		fc.fn.Local(l).Type = t
	}
}

// mergeVars makes a and b one variable; a fixed side decides the type of
// the other.
func (fc *fnCtx) mergeVars(a, b *intVar) *intVar {
	switch {
	case a == nil:
		return b
	case b == nil || a == b:
		return a
	case a.fixed && b.fixed:
		return a
	case a.fixed:
		fc.fixVar(b, a.t)
		return a
	case b.fixed:
		fc.fixVar(a, b.t)
		return b
	}
	a.lits = append(a.lits, b.lits...)
	a.reads = append(a.reads, b.reads...)
	a.locals = append(a.locals, b.locals...)
	for _, lit := range b.lits {
		fc.nodeVar[lit.node] = a
	}
	for _, n := range b.reads {
		fc.nodeVar[n] = a
	}
	for _, l := range b.locals {
		fc.localVar[l] = a
	}
	return a
}

// varOf returns the variable carried by a node lowered from a flexible
// expression; unsuffixed literals get a fresh one.
func (fc *fnCtx) varOf(src ast.ExprID, n *hir.Expr) *intVar {
	if v, ok := fc.nodeVar[n]; ok {
		return v
	}
	if !isUnsuffixedIntLit(fc.tc.builder, src) || !fc.tc.types.IsInteger(n.Type) {
		return nil
	}
	v := &intVar{t: n.Type, lits: []flexLit{{node: n, src: src}}}
	fc.nodeVar[n] = v
	return v
}

// flexLocal reports a path naming a local whose integer type is still open.
func (fc *fnCtx) flexLocal(id ast.ExprID) (hir.LocalID, bool) {
	x := fc.tc.builder.Expr(id)
	for x != nil {
		p, ok := x.Data.(*ast.ParenData)
		if !ok {
			break
		}
		x = fc.tc.builder.Expr(p.X)
	}
	if x == nil {
		return hir.NoLocalID, false
	}
	pd, ok := x.Data.(*ast.PathData)
	if !ok || !pd.Path.Single() || len(pd.Path.Segments[0].Args) != 0 {
		return hir.NoLocalID, false
	}
	l, ok := fc.lookupLocal(pd.Path.Segments[0].Name)
	if !ok {
		return hir.NoLocalID, false
	}
	if _, open := fc.openVar(l); !open {
		return hir.NoLocalID, false
	}
	return l, true
}

// flexible reports expressions whose integer type is not decided yet:
// unsuffixed literals, open locals and arithmetic over them.
func (fc *fnCtx) flexible(id ast.ExprID) bool {
	b := fc.tc.builder
	if isUnsuffixedIntLit(b, id) {
		return true
	}
	if _, ok := fc.flexLocal(id); ok {
		return true
	}
	x := b.Expr(id)
	if x == nil {
		return false
	}
	switch d := x.Data.(type) {
	case *ast.ParenData:
		return fc.flexible(d.X)
	case *ast.BinaryData:
		return isFlexArith(d.Op) && fc.flexible(d.X) && fc.flexible(d.Y)
	}
	return false
}

func isFlexArith(op ast.BinaryOp) bool {
	switch op {
	case ast.BinAdd, ast.BinSub, ast.BinMul, ast.BinDiv, ast.BinRem, ast.BinAnd, ast.BinOr, ast.BinXor:
		return true
	}
	return false
}

// readOpenLocal types a read of a local with an open variable: an integer
// expectation fixes it, a read inside a soft context joins it, anything
// else settles it at its current type.
func (fc *fnCtx) readOpenLocal(v *intVar, n *hir.Expr, expected types.TypeID) *hir.Expr {
	switch {
	case fc.tc.types.IsInteger(expected):
		fc.fixVar(v, expected)
		n.Type = v.t
	case fc.soft > 0:
		v.reads = append(v.reads, n)
		fc.nodeVar[n] = v
	default:
		fc.fixVar(v, v.t)
	}
	return n
}
