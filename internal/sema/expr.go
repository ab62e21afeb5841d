package sema

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/hir"
	"rsfront/internal/symbols"
	"rsfront/internal/types"
)

// expr checks an expression against an optional expected type and lowers
// it. The result is never nil; after an error its type is Invalid.
func (fc *fnCtx) expr(id ast.ExprID, expected types.TypeID) *hir.Expr {
	x := fc.tc.builder.Expr(id)
	if x == nil {
		return fc.bad(fc.fn.Span)
	}
	switch d := x.Data.(type) {
	case *ast.LitData:
		return fc.literal(x, d, expected)
	case *ast.PathData:
		return fc.pathExpr(x, &d.Path, expected)
	case *ast.UnaryData:
		return fc.unary(x, d, expected)
	case *ast.AddrOfData:
		return fc.addrOfExpr(x, d, expected)
	case *ast.BinaryData:
		return fc.binary(x, d, expected)
	case *ast.AssignData:
		return fc.assign(x, d)
	case *ast.CastData:
		return fc.cast(x, d)
	case *ast.CallData:
		return fc.call(x, d, expected)
	case *ast.MethodCallData:
		return fc.methodCall(x, d, expected)
	case *ast.FieldData:
		return fc.field(x, d)
	case *ast.IndexData:
		return fc.index(x, d)
	case *ast.RangeData:
		return fc.rangeLit(x, d, expected)
	case *ast.StructLitData:
		return fc.structLit(x, d, expected)
	case *ast.ArrayData:
		return fc.array(x, d, expected)
	case *ast.RepeatData:
		return fc.repeat(x, d, expected)
	case *ast.TupleData:
		if len(d.Elems) == 0 {
			return fc.unit(x.Span)
		}
		fc.report(diag.SemaError, x.Span, "tuple expressions are not supported")
	case *ast.ParenData:
		return fc.expr(d.X, expected)
	case *ast.BlockData:
		return fc.block(x, d, expected)
	case *ast.IfData:
		return fc.ifExpr(x, d, expected)
	case *ast.WhileData:
		return fc.while(x, d)
	case *ast.LoopData:
		return fc.loop(x, d, expected)
	case *ast.BreakData:
		return fc.breakExpr(x, d)
	case *ast.ContinueData:
		return fc.continueExpr(x)
	case *ast.ReturnData:
		return fc.returnExpr(x, d)
	case *ast.MatchData:
		return fc.match(x, d, expected)
	case *ast.MacroCallData:
		fc.report(diag.MacroUnknown, x.Span, "cannot find macro `%s` in this scope", d.Path.String())
	default:
		fc.report(diag.SemaError, x.Span, "unsupported expression")
	}
	return fc.bad(x.Span)
}

func (fc *fnCtx) literal(x *ast.Expr, d *ast.LitData, expected types.TypeID) *hir.Expr {
	in := fc.tc.types
	switch d.Kind {
	case ast.LitInt:
		t := fc.intLitType(d.Suffix, expected, x)
		if fc.isBad(t) {
			return fc.bad(x.Span)
		}
		if in.IsFloat(t) {
			return fc.mk(hir.ExprLiteral, t, x.Span, hir.LiteralData{Kind: hir.LiteralFloat, Float: float64(d.Int)})
		}
		if !fc.fitsLiteral(d.Int, t) {
			fc.report(diag.ConstOverflow, x.Span, "literal out of range for `%s`", fc.tc.label(t))
		}
		return fc.mk(hir.ExprLiteral, t, x.Span, hir.LiteralData{Kind: hir.LiteralInt, Bits: d.Int})
	case ast.LitFloat:
		t := fc.b.F64
		switch {
		case d.Suffix == "f32":
			t = fc.b.F32
		case d.Suffix == "" && in.IsFloat(expected):
			t = expected
		}
		return fc.mk(hir.ExprLiteral, t, x.Span, hir.LiteralData{Kind: hir.LiteralFloat, Float: d.Float})
	case ast.LitBool:
		return fc.boolLit(d.Bool, x.Span)
	case ast.LitStr:
		t := in.Reference(fc.b.Str, false)
		return fc.mk(hir.ExprLiteral, t, x.Span, hir.LiteralData{Kind: hir.LiteralStr, Str: d.Str})
	}
	return fc.bad(x.Span)
}

// intLitType picks the type of an integer literal: its suffix, else the
// expected integer type, else i32.
func (fc *fnCtx) intLitType(suffix string, expected types.TypeID, x *ast.Expr) types.TypeID {
	in := fc.tc.types
	if suffix != "" {
		t, ok := in.Primitive(suffix)
		if !ok || !in.IsNumeric(t) {
			fc.report(diag.SemaNotAType, x.Span, "invalid suffix `%s` for number literal", suffix)
			return fc.b.Invalid
		}
		return t
	}
	if in.IsInteger(expected) {
		return expected
	}
	return fc.b.I32
}

// fitsLiteral allows the magnitude of the most negative value for signed
// types, because negation is applied to the literal afterwards.
func (fc *fnCtx) fitsLiteral(v uint64, t types.TypeID) bool {
	tt, ok := fc.tc.types.Lookup(t)
	if !ok {
		return true
	}
	bits := uint(tt.Width)
	if tt.Width == types.WidthSize {
		bits = uint(fc.tc.opts.Target.PtrSize * 8)
	}
	if bits >= 64 {
		return tt.Kind == types.KindUint || v <= 1<<63
	}
	if tt.Kind == types.KindInt {
		return v <= 1<<(bits-1)
	}
	return v < 1<<bits
}

func isUnsuffixedIntLit(b *ast.Builder, id ast.ExprID) bool {
	x := b.Expr(id)
	if x == nil {
		return false
	}
	switch d := x.Data.(type) {
	case *ast.LitData:
		return d.Kind == ast.LitInt && d.Suffix == ""
	case *ast.ParenData:
		return isUnsuffixedIntLit(b, d.X)
	case *ast.UnaryData:
		return d.Op == ast.UnNeg && isUnsuffixedIntLit(b, d.X)
	}
	return false
}

// pathExpr lowers a path in value position: a local, const, static, unit
// variant or unit struct.
func (fc *fnCtx) pathExpr(x *ast.Expr, p *ast.Path, expected types.TypeID) *hir.Expr {
	tc := fc.tc
	if p.Single() && len(p.Segments[0].Args) == 0 {
		if l, ok := fc.lookupLocal(p.Segments[0].Name); ok {
			return fc.readLocal(l, x, expected)
		}
	}
	res, ok := tc.symbols.ResolvePath(fc.env.scope, pathNames(p), symbols.NSValue)
	if !ok || res.Consumed != len(p.Segments) {
		if len(p.Segments) > 1 {
			fc.report(diag.SemaNotAValue, x.Span, "expected value, found associated function `%s`; calls need arguments", p.String())
		} else {
			fc.report(diag.SemaUnresolvedSymbol, x.Span, "cannot find value `%s` in this scope", p.String())
		}
		return fc.bad(x.Span)
	}
	it := tc.item(res.Item)
	switch it.Kind {
	case symbols.ItemConst:
		return fc.constExpr(res.Item, p, x)
	case symbols.ItemStatic:
		g, ok := tc.globalFor(res.Item)
		if !ok {
			return fc.bad(x.Span)
		}
		glob := tc.module.Global(g)
		if glob.Mutable {
			fc.requireUnsafe(x.Span, "use of mutable static")
		}
		return fc.mk(hir.ExprGlobal, glob.Type, x.Span, hir.GlobalData{Global: g, Name: glob.Name})
	case symbols.ItemVariant:
		if it.Has(symbols.FlagTupleVariant) && len(tc.adtShape(it.Parent).variants[it.Index].Fields) > 0 {
			fc.report(diag.SemaNotAValue, x.Span, "`%s` is a tuple variant and needs arguments", p.String())
			return fc.bad(x.Span)
		}
		return fc.variantLit(res.Item, p, nil, x, expected)
	case symbols.ItemStruct:
		if len(tc.adtShape(res.Item).fields) == 0 {
			return fc.structLit(x, &ast.StructLitData{Path: *p}, expected)
		}
	}
	fc.report(diag.SemaNotAValue, x.Span, "expected value, found %s `%s`", it.Kind, p.String())
	return fc.bad(x.Span)
}

func (fc *fnCtx) readLocal(l hir.LocalID, x *ast.Expr, expected types.TypeID) *hir.Expr {
	loc := fc.fn.Local(l)
	if inited, tracked := fc.initialized[l]; tracked && !inited {
		fc.report(diag.SemaUninitialized, x.Span, "used binding `%s` isn't initialized", loc.Name)
		return fc.bad(x.Span)
	}
	if v, open := fc.openVar(l); open {
		return fc.readOpenLocal(v, fc.local(l, x.Span), expected)
	}
	return fc.local(l, x.Span)
}

// constExpr inlines a const item: integers and bools are folded, other
// constants are lowered from their initializer.
func (fc *fnCtx) constExpr(id symbols.ItemID, p *ast.Path, x *ast.Expr) *hir.Expr {
	tc := fc.tc
	t := tc.constType(id)
	if t == types.NoTypeID {
		return fc.bad(x.Span)
	}
	if tc.types.IsInteger(t) || tc.types.KindOf(t) == types.KindBool {
		v, err := tc.constValue(id, p)
		if err != nil {
			tc.reportErr(err, x.Span)
			return fc.bad(x.Span)
		}
		if v.IsBool() {
			return fc.boolLit(v.Bits != 0, x.Span)
		}
		return fc.mk(hir.ExprLiteral, t, x.Span, hir.LiteralData{Kind: hir.LiteralInt, Bits: v.Bits})
	}
	if tc.constBusy[id] {
		fc.report(diag.ConstNotConstant, x.Span, "cycle detected when evaluating constant `%s`", p.String())
		return fc.bad(x.Span)
	}
	d := tc.decl(id).Data.(*ast.ConstItem)
	tc.constBusy[id] = true
	defer delete(tc.constBusy, id)
	sc := tc.staticContext(id)
	return sc.coerce(sc.expr(d.Value, t), t)
}

func (fc *fnCtx) unary(x *ast.Expr, d *ast.UnaryData, expected types.TypeID) *hir.Expr {
	in := fc.tc.types
	if d.Op == ast.UnDeref {
		v := fc.expr(d.X, types.NoTypeID)
		if fc.isBad(v.Type) {
			return v
		}
		tt, _ := in.Lookup(v.Type)
		switch tt.Kind {
		case types.KindPointer:
			fc.requireUnsafe(x.Span, "dereference of raw pointer")
		case types.KindReference:
		default:
			fc.report(diag.SemaBadOperands, x.Span, "type `%s` cannot be dereferenced", fc.tc.label(v.Type))
			return fc.bad(x.Span)
		}
		out := fc.deref(v)
		out.Span = x.Span
		return out
	}
	v := fc.expr(d.X, expected)
	if fc.isBad(v.Type) {
		return v
	}
	spec, _ := types.UnarySpecFor(d.Op)
	if in.Family(v.Type)&spec.Operand == 0 {
		fc.report(diag.SemaBadOperands, x.Span, "cannot apply unary operator `%s` to type `%s`", d.Op, fc.tc.label(v.Type))
		return fc.bad(x.Span)
	}
	return fc.mk(hir.ExprUnary, v.Type, x.Span, hir.UnaryData{Op: d.Op, X: v})
}

func (fc *fnCtx) addrOfExpr(x *ast.Expr, d *ast.AddrOfData, expected types.TypeID) *hir.Expr {
	in := fc.tc.types
	hint := types.NoTypeID
	if tt, ok := in.Lookup(expected); ok && tt.Kind == types.KindReference {
		hint = tt.Elem
		// &[1, 2] под ожидаемым &[T]: литерал проверяется как массив
		if in.KindOf(hint) == types.KindSlice {
			hint = types.NoTypeID
		}
	}
	v := fc.expr(d.X, hint)
	if fc.isBad(v.Type) {
		return v
	}
	if d.Mut && v.Kind.IsPlace() {
		fc.checkMutablePlace(v, "borrow as mutable")
	}
	out := fc.addrOf(v, d.Mut)
	out.Span = x.Span
	return out
}

func (fc *fnCtx) field(x *ast.Expr, d *ast.FieldData) *hir.Expr {
	tc := fc.tc
	base := fc.expr(d.X, types.NoTypeID)
	if fc.isBad(base.Type) {
		return base
	}
	for tc.types.KindOf(base.Type) == types.KindReference {
		base = fc.deref(base)
	}
	info, ok := tc.types.AdtInfo(base.Type)
	if !ok || info.Kind == types.AdtEnum {
		fc.report(diag.SemaUnknownField, d.NameSpan, "no field `%s` on type `%s`", d.Name, tc.label(base.Type))
		return fc.bad(x.Span)
	}
	idx, ok := info.FieldIndex(d.Name)
	if !ok {
		fc.report(diag.SemaUnknownField, d.NameSpan, "no field `%s` on type `%s`", d.Name, tc.label(base.Type))
		return fc.bad(x.Span)
	}
	if info.Kind == types.AdtUnion {
		fc.requireUnsafe(x.Span, "access to union field")
	}
	return fc.mk(hir.ExprField, info.Fields[idx].Type, x.Span, hir.FieldData{X: base, Index: idx, Name: d.Name})
}

func (fc *fnCtx) array(x *ast.Expr, d *ast.ArrayData, expected types.TypeID) *hir.Expr {
	in := fc.tc.types
	elem, _ := in.ElemOf(expected)
	if in.KindOf(expected) == types.KindStr {
		elem = types.NoTypeID
	}
	if len(d.Elems) == 0 {
		if elem == types.NoTypeID {
			fc.report(diag.MonoUnresolvedInference, x.Span, "type annotations needed for empty array")
			return fc.bad(x.Span)
		}
		return fc.mk(hir.ExprArray, in.Array(elem, 0), x.Span, hir.ArrayData{})
	}
	elems := make([]*hir.Expr, len(d.Elems))
	for i, e := range d.Elems {
		elems[i] = fc.expr(e, elem)
		if elem == types.NoTypeID && !fc.isBad(elems[i].Type) {
			elem = elems[i].Type
		}
	}
	if fc.isBad(elem) {
		return fc.bad(x.Span)
	}
	for i := range elems {
		elems[i] = fc.coerce(elems[i], elem)
	}
	return fc.mk(hir.ExprArray, in.Array(elem, uint64(len(elems))), x.Span, hir.ArrayData{Elems: elems})
}

func (fc *fnCtx) repeat(x *ast.Expr, d *ast.RepeatData, expected types.TypeID) *hir.Expr {
	in := fc.tc.types
	elem, _ := in.ElemOf(expected)
	n, err := fc.tc.evalLength(d.Count, fc.env, fc.subst)
	if err != nil {
		fc.tc.reportErr(err, fc.tc.builder.Expr(d.Count).Span)
		return fc.bad(x.Span)
	}
	v := fc.expr(d.Value, elem)
	if fc.isBad(v.Type) {
		return v
	}
	if elem != types.NoTypeID {
		v = fc.coerce(v, elem)
	}
	return fc.mk(hir.ExprRepeat, in.Array(v.Type, n), x.Span, hir.RepeatData{Value: v, Count: n})
}
