package sema

import (
	"strings"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/hir"
	"rsfront/internal/mono"
	"rsfront/internal/source"
	"rsfront/internal/symbols"
	"rsfront/internal/types"
)

// adtInference starts inference of an ADT's arguments from explicit
// arguments and the expected type.
func (fc *fnCtx) adtInference(item symbols.ItemID, explicit []ast.TypeID, expected types.TypeID, span source.Span) (*mono.Inference, bool) {
	tc := fc.tc
	params := tc.paramsOf(item)
	inf := mono.NewInference(tc.types, tc.symbols.Path(item), params)
	if len(explicit) > 0 {
		args := make([]types.TypeID, len(explicit))
		for i, a := range explicit {
			if args[i] = fc.typeOf(a); args[i] == types.NoTypeID {
				return nil, false
			}
		}
		if err := inf.Explicit(params, args); err != nil {
			tc.reportErr(err, span)
			return nil, false
		}
	}
	if info, ok := tc.types.AdtHeader(expected); ok && symbols.ItemID(info.Item) == item {
		inf.Unify(tc.genericAdt(item), expected)
	}
	return inf, true
}

func (fc *fnCtx) structLit(x *ast.Expr, d *ast.StructLitData, expected types.TypeID) *hir.Expr {
	tc := fc.tc
	p := &d.Path
	var item symbols.ItemID
	if p.Single() && p.Segments[0].Name == "Self" && fc.env.self != types.NoTypeID {
		info, ok := tc.types.AdtHeader(fc.sub(fc.env.self))
		if ok {
			item = symbols.ItemID(info.Item)
			expected = fc.sub(fc.env.self)
		}
	} else if res, ok := tc.symbols.ResolvePath(fc.env.scope, pathNames(p), symbols.NSType); ok && res.Consumed == len(p.Segments) {
		item = res.Item
	}
	if !item.IsValid() {
		fc.report(diag.SemaUnresolvedSymbol, p.Span, "cannot find struct `%s` in this scope", p.String())
		return fc.bad(x.Span)
	}
	it := tc.item(item)
	if it.Kind != symbols.ItemStruct && it.Kind != symbols.ItemUnion {
		fc.report(diag.SemaNotAType, p.Span, "expected struct or union, found %s `%s`", it.Kind, p.String())
		return fc.bad(x.Span)
	}
	inf, ok := fc.adtInference(item, p.Last().Args, expected, x.Span)
	if !ok {
		return fc.bad(x.Span)
	}
	sh := tc.adtShape(item)
	if it.Kind == symbols.ItemUnion && len(d.Fields) != 1 {
		fc.report(diag.SemaUnionLiteral, x.Span, "union expressions should have exactly one field")
		return fc.bad(x.Span)
	}

	values := make([]*hir.Expr, len(sh.fields))
	failed := false
	for _, init := range d.Fields {
		idx := -1
		for i, f := range sh.fields {
			if f.Name == init.Name {
				idx = i
			}
		}
		if idx < 0 {
			fc.report(diag.SemaUnknownField, init.Span, "%s `%s` has no field named `%s`", it.Kind, it.Name, init.Name)
			failed = true
			continue
		}
		if values[idx] != nil {
			fc.report(diag.SemaDuplicateSymbol, init.Span, "field `%s` specified more than once", init.Name)
			failed = true
			continue
		}
		want := inf.Apply(sh.fields[idx].Type)
		if tc.types.HasParams(want) {
			want = types.NoTypeID
		}
		v := fc.expr(init.Value, want)
		if fc.isBad(v.Type) {
			failed = true
		} else if !inf.Unify(sh.fields[idx].Type, v.Type) {
			fc.mismatch(v.Span, inf.Apply(sh.fields[idx].Type), v.Type)
			failed = true
		}
		values[idx] = v
	}
	if failed {
		return fc.bad(x.Span)
	}
	targs, err := inf.Complete()
	if err != nil {
		tc.reportErr(err, x.Span)
		return fc.bad(x.Span)
	}
	t := tc.adtType(item, targs)
	info, _ := tc.types.AdtInfo(t)

	if it.Kind == symbols.ItemUnion {
		for i, v := range values {
			if v != nil {
				v = fc.coerce(v, info.Fields[i].Type)
				return fc.mk(hir.ExprUnion, t, x.Span, hir.UnionData{Field: i, Name: info.Fields[i].Name, Value: v})
			}
		}
	}
	var missing []string
	for i, v := range values {
		if v == nil {
			missing = append(missing, "`"+info.Fields[i].Name+"`")
			continue
		}
		values[i] = fc.coerce(v, info.Fields[i].Type)
	}
	if len(missing) > 0 {
		fc.report(diag.SemaMissingField, x.Span, "missing field(s) %s in initializer of `%s`", strings.Join(missing, ", "), tc.label(t))
		return fc.bad(x.Span)
	}
	return fc.mk(hir.ExprStruct, t, x.Span, hir.StructData{Fields: values})
}

// variantLit builds `Enum::Variant` or `Enum::Variant(args)`.
func (fc *fnCtx) variantLit(item symbols.ItemID, p *ast.Path, args []ast.ExprID, x *ast.Expr, expected types.TypeID) *hir.Expr {
	tc := fc.tc
	v := tc.item(item)
	enum := v.Parent
	var explicit []ast.TypeID
	if n := len(p.Segments); n >= 2 {
		explicit = p.Segments[n-2].Args
	}
	inf, ok := fc.adtInference(enum, explicit, expected, x.Span)
	if !ok {
		return fc.bad(x.Span)
	}
	fields := tc.adtShape(enum).variants[v.Index].Fields
	if len(args) != len(fields) {
		fc.report(diag.SemaArgCount, x.Span, "this enum variant takes %d field(s) but %d were supplied", len(fields), len(args))
		return fc.bad(x.Span)
	}
	values := make([]*hir.Expr, len(args))
	for i, a := range args {
		want := inf.Apply(fields[i])
		if tc.types.HasParams(want) {
			want = types.NoTypeID
		}
		values[i] = fc.expr(a, want)
		if fc.isBad(values[i].Type) {
			return fc.bad(x.Span)
		}
		if !inf.Unify(fields[i], values[i].Type) {
			fc.mismatch(values[i].Span, inf.Apply(fields[i]), values[i].Type)
			return fc.bad(x.Span)
		}
	}
	targs, err := inf.Complete()
	if err != nil {
		tc.reportErr(err, x.Span)
		return fc.bad(x.Span)
	}
	t := tc.adtType(enum, targs)
	info, _ := tc.types.AdtInfo(t)
	for i := range values {
		values[i] = fc.coerce(values[i], info.Variants[v.Index].Fields[i])
	}
	return fc.mk(hir.ExprVariant, t, x.Span, hir.VariantData{Variant: v.Index, Name: v.Name, Fields: values})
}

// rangeLit builds the lang `Range` struct for `start..end`.
func (fc *fnCtx) rangeLit(x *ast.Expr, d *ast.RangeData, expected types.TypeID) *hir.Expr {
	tc := fc.tc
	rng := tc.traits.RangeStruct
	if !rng.IsValid() {
		fc.report(diag.SemaUnresolvedSymbol, x.Span, "range expressions need the `Range` lang item")
		return fc.bad(x.Span)
	}
	if d.Inclusive || !d.Start.IsValid() || !d.End.IsValid() {
		fc.report(diag.SemaError, x.Span, "only `start..end` ranges are supported")
		return fc.bad(x.Span)
	}
	hint := types.NoTypeID
	if info, ok := tc.types.AdtHeader(expected); ok && symbols.ItemID(info.Item) == rng && len(info.Args) == 1 {
		hint = info.Args[0]
	}
	var start, end *hir.Expr
	if fc.flexible(d.Start) && !fc.flexible(d.End) && hint == types.NoTypeID {
		end = fc.expr(d.End, hint)
		start = fc.expr(d.Start, end.Type)
	} else {
		start = fc.expr(d.Start, hint)
		end = fc.expr(d.End, start.Type)
	}
	if fc.isBad(start.Type) || fc.isBad(end.Type) {
		return fc.bad(x.Span)
	}
	end = fc.coerce(end, start.Type)
	t := tc.adtType(rng, []types.TypeID{start.Type})
	info, _ := tc.types.AdtInfo(t)
	fields := make([]*hir.Expr, len(info.Fields))
	for i, f := range info.Fields {
		switch f.Name {
		case "start":
			fields[i] = start
		case "end":
			fields[i] = end
		}
	}
	for i := range fields {
		if fields[i] == nil {
			fc.report(diag.SemaMissingField, x.Span, "`Range` lang item must have exactly the fields `start` and `end`")
			return fc.bad(x.Span)
		}
	}
	return fc.mk(hir.ExprStruct, t, x.Span, hir.StructData{Fields: fields})
}
