package sema

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/symbols"
	"rsfront/internal/types"
)

// resolveType maps a type expression to a TypeID. Generic parameters of env
// stay parameters; NoTypeID is returned for `_` and after errors.
func (tc *typeChecker) resolveType(id ast.TypeID, env *typeEnv) types.TypeID {
	te := tc.builder.Type(id)
	if te == nil {
		return types.NoTypeID
	}
	b := tc.types.Builtins()
	switch te.Kind {
	case ast.TypeUnit:
		return b.Unit
	case ast.TypeNever:
		return b.Never
	case ast.TypeInfer:
		return types.NoTypeID
	case ast.TypeRef, ast.TypePtr:
		elem := tc.resolveType(te.Elem, env)
		if elem == types.NoTypeID {
			return types.NoTypeID
		}
		if te.Kind == ast.TypeRef {
			return tc.types.Reference(elem, te.Mutable)
		}
		return tc.types.Pointer(elem, te.Mutable)
	case ast.TypeSlice:
		elem := tc.resolveType(te.Elem, env)
		if elem == types.NoTypeID {
			return types.NoTypeID
		}
		return tc.types.Slice(elem)
	case ast.TypeArray:
		elem := tc.resolveType(te.Elem, env)
		if elem == types.NoTypeID {
			return types.NoTypeID
		}
		return tc.arrayType(elem, te.Len, env)
	case ast.TypePath:
		return tc.resolveTypePath(te.Path, env)
	}
	tc.report(diag.SemaNotAType, te.Span, "unsupported type expression")
	return types.NoTypeID
}

func (tc *typeChecker) arrayType(elem types.TypeID, lenExpr ast.ExprID, env *typeEnv) types.TypeID {
	n, err := tc.evalLength(lenExpr, env, nil)
	if err == errPendingLength {
		return tc.types.Intern(types.MakePendingArray(elem, tc.addPending(lenExpr, env)))
	}
	if err != nil {
		tc.reportErr(err, tc.builder.Expr(lenExpr).Span)
		return types.NoTypeID
	}
	return tc.types.Array(elem, n)
}

func (tc *typeChecker) resolveTypePath(p *ast.Path, env *typeEnv) types.TypeID {
	if p == nil || len(p.Segments) == 0 {
		return types.NoTypeID
	}
	first := p.Segments[0]
	if len(p.Segments) <= 2 && len(first.Args) == 0 {
		base := types.NoTypeID
		switch {
		case first.Name == "Self":
			if env.self == types.NoTypeID {
				tc.report(diag.SemaUnresolvedSymbol, first.Span, "`Self` is only available in impls")
				return types.NoTypeID
			}
			base = env.self
		case env.params[first.Name] != types.NoTypeID:
			base = env.params[first.Name]
		}
		if base != types.NoTypeID {
			if len(p.Segments) == 1 {
				return base
			}
			return tc.assocType(base, first.Name == "Self", p.Segments[1], env)
		}
		if len(p.Segments) == 1 {
			if prim, ok := tc.types.Primitive(first.Name); ok {
				return prim
			}
		}
	}

	res, ok := tc.symbols.ResolvePath(env.scope, pathNames(p), symbols.NSType)
	if !ok || res.Consumed != len(p.Segments) {
		tc.report(diag.SemaUnresolvedSymbol, p.Span, "cannot find type `%s` in this scope", p.String())
		return types.NoTypeID
	}
	it := tc.item(res.Item)
	last := p.Last()
	args := make([]types.TypeID, len(last.Args))
	for i, a := range last.Args {
		if args[i] = tc.resolveType(a, env); args[i] == types.NoTypeID {
			return types.NoTypeID
		}
	}
	switch it.Kind {
	case symbols.ItemStruct, symbols.ItemEnum, symbols.ItemUnion:
		if len(args) != it.Arity() {
			tc.report(diag.MonoArityMismatch, p.Span, "%s `%s` takes %d generic argument(s) but %d were supplied",
				it.Kind, it.Name, it.Arity(), len(args))
			return types.NoTypeID
		}
		return tc.adtType(res.Item, args)
	case symbols.ItemTypeAlias:
		return tc.aliasType(res.Item, args, p)
	case symbols.ItemTrait:
		tc.report(diag.SemaNotAType, p.Span, "expected type, found trait `%s`", p.String())
	default:
		tc.report(diag.SemaNotAType, p.Span, "expected type, found %s `%s`", it.Kind, p.String())
	}
	return types.NoTypeID
}

// assocType resolves `T::Name` through the bounds of T, or `Self::Name`
// through the associated types of the enclosing impl.
func (tc *typeChecker) assocType(base types.TypeID, isSelf bool, seg ast.PathSegment, env *typeEnv) types.TypeID {
	if isSelf && env.assoc != nil {
		if t, ok := env.assoc[seg.Name]; ok {
			return t
		}
	}
	for _, b := range env.bounds[base] {
		if m, ok := tc.symbols.Member(b.Trait, seg.Name); ok && tc.item(m).Kind == symbols.ItemAssocType {
			proj := tc.types.Projection(types.ProjectionInfo{
				Base:      base,
				Trait:     uint32(b.Trait),
				TraitName: tc.item(b.Trait).Name,
				TraitArgs: b.Args,
				Name:      seg.Name,
			})
			return tc.types.Subst(proj, types.Subst{})
		}
	}
	tc.report(diag.TraitUnknownAssocType, seg.Span, "associated type `%s` not found for `%s`", seg.Name, tc.label(base))
	return types.NoTypeID
}

func (tc *typeChecker) adtType(item symbols.ItemID, args []types.TypeID) types.TypeID {
	it := tc.item(item)
	kind := types.AdtStruct
	switch it.Kind {
	case symbols.ItemEnum:
		kind = types.AdtEnum
	case symbols.ItemUnion:
		kind = types.AdtUnion
	}
	return tc.types.Adt(kind, uint32(item), it.Name, args)
}

// genericAdt returns the instance of an ADT over its own parameters.
func (tc *typeChecker) genericAdt(item symbols.ItemID) types.TypeID {
	return tc.adtType(item, tc.paramsOf(item))
}

func (tc *typeChecker) aliasType(item symbols.ItemID, args []types.TypeID, p *ast.Path) types.TypeID {
	d, _ := tc.decl(item).Data.(*ast.TypeAliasItem)
	params := tc.paramsOf(item)
	if len(args) != len(params) {
		tc.report(diag.MonoArityMismatch, p.Span, "type alias `%s` takes %d generic argument(s) but %d were supplied",
			tc.item(item).Name, len(params), len(args))
		return types.NoTypeID
	}
	if d == nil || !d.Type.IsValid() {
		tc.report(diag.SemaNotAType, p.Span, "type alias `%s` has no definition", p.String())
		return types.NoTypeID
	}
	if tc.sigBusy[item] {
		tc.report(diag.LayoutRecursive, p.Span, "cycle detected when expanding type alias `%s`", p.String())
		return types.NoTypeID
	}
	tc.sigBusy[item] = true
	t := tc.resolveType(d.Type, tc.envFor(item))
	delete(tc.sigBusy, item)
	if t == types.NoTypeID {
		return t
	}
	return tc.types.Subst(t, substOf(params, args))
}

func substOf(params, args []types.TypeID) types.Subst {
	s := make(types.Subst, len(params))
	for i, p := range params {
		if i < len(args) {
			s[p] = args[i]
		}
	}
	return s
}
