package sema

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/hir"
	"rsfront/internal/types"
)

func (fc *fnCtx) binary(x *ast.Expr, d *ast.BinaryData, expected types.TypeID) *hir.Expr {
	in := fc.tc.types
	hint := types.NoTypeID
	switch d.Op {
	case ast.BinLogAnd, ast.BinLogOr:
		hint = fc.b.Bool
	case ast.BinAdd, ast.BinSub, ast.BinMul, ast.BinDiv, ast.BinRem, ast.BinAnd, ast.BinOr, ast.BinXor, ast.BinShl, ast.BinShr:
		hint = expected
	}

	var l, r *hir.Expr
	shift := d.Op == ast.BinShl || d.Op == ast.BinShr
	// обе стороны ещё без типа: сравнение не выдаёт их тип наружу, арифметика
	// внутри мягкого контекста тоже
	soft := !fc.tc.types.IsInteger(hint) && fc.flexible(d.X) && fc.flexible(d.Y) &&
		(d.Op.IsComparison() || (fc.soft > 0 && isFlexArith(d.Op)))
	var v *intVar
	switch {
	case soft:
		fc.soft++
		l = fc.expr(d.X, types.NoTypeID)
		r = fc.expr(d.Y, types.NoTypeID)
		fc.soft--
		if !fc.isBad(l.Type) && !fc.isBad(r.Type) {
			v = fc.mergeVars(fc.varOf(d.X, l), fc.varOf(d.Y, r))
		}
	case !shift && fc.flexible(d.X) && !fc.flexible(d.Y):
		r = fc.expr(d.Y, hint)
		l = fc.expr(d.X, r.Type)
	default:
		l = fc.expr(d.X, hint)
		rhint := l.Type
		if shift {
			rhint = types.NoTypeID
		}
		r = fc.expr(d.Y, rhint)
	}
	if fc.isBad(l.Type) || fc.isBad(r.Type) {
		return fc.bad(x.Span)
	}

	// `()` сравнивается с чем угодно: обе стороны вычисляются, результат известен заранее
	if (d.Op == ast.BinEq || d.Op == ast.BinNe) && (in.IsUnit(l.Type) || in.IsUnit(r.Type)) {
		same := in.IsUnit(l.Type) && in.IsUnit(r.Type)
		result := same == (d.Op == ast.BinEq)
		if same {
			fc.tc.warn(diag.SemaUnitComparison, x.Span, "comparison of `()` values is always `%v`", result)
		} else {
			fc.tc.warn(diag.SemaUnitComparison, x.Span, "comparison of `()` with `%s` is always `%v`",
				fc.tc.label(other(in, l.Type, r.Type)), result)
		}
		return fc.mk(hir.ExprBlock, fc.b.Bool, x.Span, hir.BlockData{
			Stmts: []hir.Stmt{
				{Kind: hir.StmtExpr, Span: l.Span, Data: hir.ExprStmtData{X: l}},
				{Kind: hir.StmtExpr, Span: r.Span, Data: hir.ExprStmtData{X: r}},
			},
			Tail: fc.boolLit(result, x.Span),
		})
	}

	if !shift && l.Type != r.Type {
		if c, ok := fc.tryCoerce(r, l.Type); ok {
			r = c
		} else if c, ok := fc.tryCoerce(l, r.Type); ok {
			l = c
		}
	}
	spec, ok := in.FindBinarySpec(d.Op, l.Type, r.Type)
	if ok && d.Op.IsComparison() && !fc.comparable(l.Type) {
		ok = false
	}
	if !ok {
		if l.Type == r.Type {
			fc.report(diag.SemaBadOperands, x.Span, "binary operation `%s` cannot be applied to type `%s`", d.Op, fc.tc.label(l.Type))
		} else {
			fc.report(diag.SemaBadOperands, x.Span, "cannot apply binary operator `%s` to `%s` and `%s`",
				d.Op, fc.tc.label(l.Type), fc.tc.label(r.Type))
		}
		return fc.bad(x.Span)
	}
	t := l.Type
	if spec.Result == types.BinaryResultBool {
		t = fc.b.Bool
	}
	out := fc.mk(hir.ExprBinary, t, x.Span, hir.BinaryData{Op: d.Op, X: l, Y: r})
	if v != nil && !v.fixed && spec.Result != types.BinaryResultBool {
		v.reads = append(v.reads, out)
		fc.nodeVar[out] = v
	}
	return out
}

// other returns the operand type that is not unit.
func other(in *types.Interner, l, r types.TypeID) types.TypeID {
	if in.IsUnit(l) {
		return r
	}
	return l
}

// comparable reports types with built-in equality: scalars, unit, pointers
// and references to comparable types or str.
func (fc *fnCtx) comparable(t types.TypeID) bool {
	in := fc.tc.types
	switch in.KindOf(t) {
	case types.KindBool, types.KindInt, types.KindUint, types.KindFloat, types.KindUnit, types.KindPointer:
		return true
	case types.KindReference:
		elem, _ := in.Pointee(t)
		return in.KindOf(elem) == types.KindStr || fc.comparable(elem)
	}
	return false
}

func (fc *fnCtx) assign(x *ast.Expr, d *ast.AssignData) *hir.Expr {
	tc := fc.tc
	if d.Op == ast.BinNone {
		if l, ok := fc.deferredTarget(d.Target); ok {
			loc := fc.fn.Local(l)
			v := fc.expr(d.Value, loc.Type)
			if fc.isBad(v.Type) {
				return fc.bad(x.Span)
			}
			if loc.Type == types.NoTypeID {
				loc.Type = v.Type
			} else {
				v = fc.coerce(v, loc.Type)
			}
			fc.initialized[l] = true
			return fc.mk(hir.ExprAssign, fc.b.Unit, x.Span, hir.AssignData{Target: fc.local(l, tc.builder.Expr(d.Target).Span), Value: v})
		}
	}

	if l, ok := fc.flexLocal(d.Target); ok && fc.flexible(d.Value) && (d.Op == ast.BinNone || isFlexArith(d.Op)) {
		return fc.flexAssign(x, d, l)
	}

	target := fc.expr(d.Target, types.NoTypeID)
	if fc.isBad(target.Type) {
		return fc.bad(x.Span)
	}
	if !target.Kind.IsPlace() {
		fc.report(diag.SemaNotAssignable, target.Span, "invalid left-hand side of assignment")
		return fc.bad(x.Span)
	}
	fc.checkMutablePlace(target, "assign to")
	v := fc.expr(d.Value, target.Type)
	if fc.isBad(v.Type) {
		return fc.bad(x.Span)
	}
	if d.Op != ast.BinNone {
		if d.Op != ast.BinShl && d.Op != ast.BinShr {
			v = fc.coerce(v, target.Type)
		}
		if _, ok := tc.types.FindBinarySpec(d.Op, target.Type, v.Type); !ok {
			fc.report(diag.SemaBadOperands, x.Span, "binary assignment operation `%s=` cannot be applied to type `%s`",
				d.Op, tc.label(target.Type))
			return fc.bad(x.Span)
		}
	} else {
		v = fc.coerce(v, target.Type)
	}
	return fc.mk(hir.ExprAssign, fc.b.Unit, x.Span, hir.AssignData{Op: d.Op, Target: target, Value: v})
}

// flexAssign lowers `i = <int>` and `i op= <int>` for a local whose integer
// type is still open; the value joins the variable of the local.
func (fc *fnCtx) flexAssign(x *ast.Expr, d *ast.AssignData, l hir.LocalID) *hir.Expr {
	fc.soft++
	target := fc.expr(d.Target, types.NoTypeID)
	v := fc.expr(d.Value, types.NoTypeID)
	fc.soft--
	if fc.isBad(target.Type) || fc.isBad(v.Type) {
		return fc.bad(x.Span)
	}
	fc.checkMutablePlace(target, "assign to")
	fc.mergeVars(fc.localVar[l], fc.varOf(d.Value, v))
	return fc.mk(hir.ExprAssign, fc.b.Unit, x.Span, hir.AssignData{Op: d.Op, Target: target, Value: v})
}

// deferredTarget reports a local declared by `let x;` that is assigned for
// the first time.
func (fc *fnCtx) deferredTarget(id ast.ExprID) (hir.LocalID, bool) {
	x := fc.tc.builder.Expr(id)
	for {
		p, ok := x.Data.(*ast.ParenData)
		if !ok {
			break
		}
		x = fc.tc.builder.Expr(p.X)
	}
	pd, ok := x.Data.(*ast.PathData)
	if !ok || !pd.Path.Single() {
		return hir.NoLocalID, false
	}
	l, ok := fc.lookupLocal(pd.Path.Segments[0].Name)
	if !ok {
		return hir.NoLocalID, false
	}
	if inited, tracked := fc.initialized[l]; tracked && !inited {
		return l, true
	}
	return hir.NoLocalID, false
}

// checkMutablePlace reports writes through immutable bindings, shared
// references and const pointers.
func (fc *fnCtx) checkMutablePlace(p *hir.Expr, what string) {
	tc := fc.tc
	switch d := p.Data.(type) {
	case hir.LocalData:
		if !fc.fn.Local(d.Local).Mutable {
			fc.report(diag.SemaNotAssignable, p.Span, "cannot %s immutable variable `%s`", what, d.Name)
		}
	case hir.GlobalData:
		g := tc.module.Global(d.Global)
		if !g.Mutable {
			fc.report(diag.SemaNotAssignable, p.Span, "cannot %s immutable static item `%s`", what, d.Name)
		}
	case hir.DerefData:
		tt, _ := tc.types.Lookup(d.X.Type)
		if !tt.Mutable {
			kind := "`&` reference"
			if tt.Kind == types.KindPointer {
				kind = "`*const` pointer"
			}
			fc.report(diag.SemaNotAssignable, p.Span, "cannot %s data in a %s", what, kind)
		}
	case hir.FieldData:
		fc.checkMutablePlace(d.X, what)
	case hir.IndexData:
		fc.checkMutablePlace(d.X, what)
	case hir.SliceData:
		fc.checkMutablePlace(d.X, what)
	}
}

func (fc *fnCtx) cast(x *ast.Expr, d *ast.CastData) *hir.Expr {
	in := fc.tc.types
	to := fc.typeOf(d.Type)
	if to == types.NoTypeID {
		return fc.bad(x.Span)
	}
	v := fc.expr(d.X, types.NoTypeID)
	from := v.Type
	if fc.isBad(from) {
		return fc.bad(x.Span)
	}
	if from == to {
		return v
	}
	mk := func(kind hir.CastKind) *hir.Expr {
		return fc.mk(hir.ExprCast, to, x.Span, hir.CastData{Kind: kind, X: v})
	}
	ft, _ := in.Lookup(from)
	tt, _ := in.Lookup(to)
	switch {
	case (in.IsNumeric(from) || ft.Kind == types.KindBool) && in.IsNumeric(to):
		if ft.Kind == types.KindBool && in.IsFloat(to) {
			break
		}
		return mk(hir.CastNumeric)
	case in.IsPointerLike(from) && tt.Kind == types.KindPointer:
		if ft.Kind == types.KindReference {
			if !ft.Mutable && tt.Mutable {
				break
			}
			if ft.Elem != tt.Elem && !fc.arrayToElem(ft.Elem, tt.Elem) {
				break
			}
		}
		fromFat, toFat := in.IsFatPointer(from), in.IsFatPointer(to)
		switch {
		case fromFat && toFat:
			return mk(hir.CastFatToFat)
		case fromFat:
			return mk(hir.CastFatToThin)
		case toFat:
			fc.report(diag.SemaBadCast, x.Span, "cannot cast thin pointer `%s` to fat pointer `%s`", fc.tc.label(from), fc.tc.label(to))
			return fc.bad(x.Span)
		}
		return mk(hir.CastPtrToPtr)
	case ft.Kind == types.KindPointer && in.IsInteger(to):
		if in.IsFatPointer(from) {
			fc.report(diag.SemaBadCast, x.Span, "cannot cast fat pointer `%s` to `%s`", fc.tc.label(from), fc.tc.label(to))
			return fc.bad(x.Span)
		}
		return mk(hir.CastPtrToInt)
	case in.IsInteger(from) && tt.Kind == types.KindPointer && !in.IsFatPointer(to):
		return mk(hir.CastIntToPtr)
	}
	fc.report(diag.SemaBadCast, x.Span, "non-primitive cast: `%s` as `%s`", fc.tc.label(from), fc.tc.label(to))
	return fc.bad(x.Span)
}

// arrayToElem reports `[T; N]` and T, allowing `&[T; N] as *const T`.
func (fc *fnCtx) arrayToElem(arr, elem types.TypeID) bool {
	tt, ok := fc.tc.types.Lookup(arr)
	return ok && tt.Kind == types.KindArray && tt.Elem == elem
}
