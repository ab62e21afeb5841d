package sema

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/hir"
	"rsfront/internal/traits"
	"rsfront/internal/types"
)

// index lowers `x[i]`. Native indexing of arrays and slices stays a place;
// dispatch through the index lang trait becomes `*Index::index(&x, i)`.
func (fc *fnCtx) index(x *ast.Expr, d *ast.IndexData) *hir.Expr {
	tc := fc.tc
	base := fc.expr(d.X, types.NoTypeID)
	if fc.isBad(base.Type) {
		return base
	}
	hint := fc.b.Usize
	if ix := tc.builder.Expr(d.Index); ix != nil {
		if _, ok := ix.Data.(*ast.RangeData); ok {
			hint = types.NoTypeID
			if tc.traits.RangeStruct.IsValid() {
				hint = tc.adtType(tc.traits.RangeStruct, []types.TypeID{fc.b.Usize})
			}
		}
	}
	idx := fc.expr(d.Index, hint)
	if fc.isBad(idx.Type) {
		return fc.bad(x.Span)
	}
	res, err := tc.traits.ResolveIndex(base.Type, idx.Type)
	if err != nil {
		tc.reportErr(err, x.Span)
		return fc.bad(x.Span)
	}
	for range res.Derefs {
		base = fc.deref(base)
	}
	switch res.Kind {
	case traits.IndexNative:
		return fc.mk(hir.ExprIndex, res.Output, x.Span, hir.IndexData{X: base, Index: idx})
	case traits.IndexNativeRange:
		return fc.nativeSlice(x, base, idx, res.Output)
	}

	if !res.Method.IsValid() {
		fc.report(diag.TraitNoMatchingImpl, x.Span, "impl of the index trait for `%s` has no `index` method", tc.label(res.Base))
		return fc.bad(x.Span)
	}
	recv := fc.addrOf(base, false)
	if res.Unsize {
		recv = fc.mk(hir.ExprUnsize, tc.types.Reference(res.Base, false), base.Span, hir.UnsizeData{X: recv})
	}
	targs := tc.types.SubstAll(tc.paramsOf(res.Method), res.Match.Subst)
	for _, a := range targs {
		if tc.types.HasParams(a) {
			fc.report(diag.MonoUnresolvedInference, x.Span, "cannot infer the impl parameters of `%s` indexing", tc.label(res.Base))
			return fc.bad(x.Span)
		}
	}
	inst, ok := tc.instantiate(res.Method, targs, x.Span, fc.inst)
	if !ok {
		return fc.bad(x.Span)
	}
	fn := tc.module.Func(inst.Func)
	call := fc.mk(hir.ExprCall, fn.Result, x.Span, hir.CallData{Func: inst.Func, Args: []*hir.Expr{recv, idx}})
	if _, isRef := tc.types.Pointee(fn.Result); !isRef {
		fc.report(diag.SemaTypeMismatch, x.Span, "`index` must return a reference, found `%s`", tc.label(fn.Result))
		return fc.bad(x.Span)
	}
	return fc.deref(call)
}

// nativeSlice lowers `base[range]` to a slice place. A computed range is
// evaluated once and its bounds are read from the value.
func (fc *fnCtx) nativeSlice(x *ast.Expr, base, idx *hir.Expr, out types.TypeID) *hir.Expr {
	if _, literal := idx.Data.(hir.StructData); literal || idx.Kind == hir.ExprLocal {
		start, end := fc.rangeBounds(idx)
		return fc.mk(hir.ExprSlice, out, x.Span, hir.SliceData{X: base, Start: start, End: end})
	}
	data := hir.SliceData{X: base, Range: idx, StartField: -1, EndField: -1}
	info, _ := fc.tc.types.AdtInfo(idx.Type)
	for i, f := range info.Fields {
		switch f.Name {
		case "start":
			data.StartField = i
		case "end":
			data.EndField = i
		}
	}
	if data.StartField < 0 || data.EndField < 0 {
		fc.report(diag.SemaMissingField, idx.Span, "`Range` lang item must have exactly the fields `start` and `end`")
		return fc.bad(x.Span)
	}
	return fc.mk(hir.ExprSlice, out, x.Span, data)
}

// rangeBounds extracts start and end of a `Range<usize>` operand.
func (fc *fnCtx) rangeBounds(idx *hir.Expr) (*hir.Expr, *hir.Expr) {
	info, _ := fc.tc.types.AdtInfo(idx.Type)
	var start, end *hir.Expr
	for i, f := range info.Fields {
		var v *hir.Expr
		if lit, ok := idx.Data.(hir.StructData); ok {
			v = lit.Fields[i]
		} else {
			v = fc.mk(hir.ExprField, f.Type, idx.Span, hir.FieldData{X: idx, Index: i, Name: f.Name})
		}
		switch f.Name {
		case "start":
			start = v
		case "end":
			end = v
		}
	}
	return start, end
}
