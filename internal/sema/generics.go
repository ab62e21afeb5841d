package sema

import (
	"cmp"
	"slices"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/symbols"
	"rsfront/internal/traits"
	"rsfront/internal/types"
)

// typeEnv is the naming context of type expressions inside one item.
type typeEnv struct {
	scope  symbols.ScopeID
	params map[string]types.TypeID
	self   types.TypeID
	// assoc holds associated types of the enclosing impl for `Self::Name`.
	assoc map[string]types.TypeID
	// bounds lists trait bounds per parameter; used to resolve `T::Name`.
	bounds map[types.TypeID][]traits.Bound
	owner  symbols.ItemID
}

func (env *typeEnv) child(owner symbols.ItemID) *typeEnv {
	out := &typeEnv{
		scope:  env.scope,
		params: make(map[string]types.TypeID, len(env.params)),
		self:   env.self,
		assoc:  env.assoc,
		bounds: make(map[types.TypeID][]traits.Bound, len(env.bounds)),
		owner:  owner,
	}
	for k, v := range env.params {
		out.params[k] = v
	}
	for k, v := range env.bounds {
		out.bounds[k] = v
	}
	return out
}

// paramsOf lists the generic parameters of an item in instantiation order:
// the enclosing impl's first, then the item's own.
func (tc *typeChecker) paramsOf(id symbols.ItemID) []types.TypeID {
	if ps, ok := tc.params[id]; ok {
		return ps
	}
	it := tc.item(id)
	if it == nil {
		return nil
	}
	var out []types.TypeID
	if it.Kind == symbols.ItemMethod && it.Parent.IsValid() {
		if parent := tc.item(it.Parent); parent != nil && parent.Kind == symbols.ItemImpl {
			out = append(out, tc.paramsOf(it.Parent)...)
		}
	}
	out = append(out, tc.ownParams(id, it.Generics)...)
	tc.params[id] = out
	return out
}

func (tc *typeChecker) ownParams(owner symbols.ItemID, g *ast.Generics) []types.TypeID {
	if g == nil {
		return nil
	}
	out := make([]types.TypeID, 0, len(g.Params))
	for i, p := range g.Params {
		sized := true
		for _, b := range p.Bounds {
			if b.Maybe {
				sized = false
			}
		}
		for _, w := range g.Where {
			wt := tc.builder.Type(w.Type)
			if wt == nil || wt.Kind != ast.TypePath || wt.Path == nil || !wt.Path.Single() || wt.Path.Segments[0].Name != p.Name {
				continue
			}
			for _, b := range w.Bounds {
				if b.Maybe {
					sized = false
				}
			}
		}
		out = append(out, tc.types.Param(uint32(owner), uint32(i), p.Name, sized))
	}
	return out
}

// envFor builds the type environment of an item: module scope, generic
// parameters of the item and its parent impl, Self and the bounds of every
// parameter.
func (tc *typeChecker) envFor(id symbols.ItemID) *typeEnv {
	if env, ok := tc.envs[id]; ok {
		return env
	}
	env := tc.newEnv(id)
	tc.envs[id] = env
	return env
}

func (tc *typeChecker) newEnv(id symbols.ItemID) *typeEnv {
	it := tc.item(id)
	env := &typeEnv{
		scope:  it.Module,
		params: make(map[string]types.TypeID),
		bounds: make(map[types.TypeID][]traits.Bound),
		owner:  id,
	}
	if it.Parent.IsValid() {
		parent := tc.item(it.Parent)
		if parent.Kind == symbols.ItemImpl {
			env = tc.envFor(it.Parent).child(id)
		}
	}
	if it.Generics == nil {
		return env
	}
	own := tc.ownParams(id, it.Generics)
	for i, p := range it.Generics.Params {
		env.params[p.Name] = own[i]
	}
	for i, p := range it.Generics.Params {
		for _, b := range p.Bounds {
			tc.addBound(env, own[i], b)
		}
	}
	for _, w := range it.Generics.Where {
		t := tc.resolveType(w.Type, env)
		for _, b := range w.Bounds {
			tc.addBound(env, t, b)
		}
	}
	return env
}

func (tc *typeChecker) addBound(env *typeEnv, t types.TypeID, b ast.Bound) {
	if b.Maybe || t == types.NoTypeID {
		return
	}
	trait, args, ok := tc.resolveTraitRef(&b.Path, env)
	if !ok {
		return
	}
	if tc.item(trait).Lang == "sized" {
		return
	}
	env.bounds[t] = append(env.bounds[t], traits.Bound{Type: t, Trait: trait, Args: args})
}

// ownBounds returns the where-clauses an item adds on top of its parent.
func (tc *typeChecker) ownBounds(env *typeEnv, id symbols.ItemID) []traits.Bound {
	var out []traits.Bound
	for _, bs := range env.bounds {
		for _, b := range bs {
			if pi, ok := tc.types.ParamInfo(b.Type); ok && symbols.ItemID(pi.Owner) != id {
				continue
			}
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b traits.Bound) int {
		if a.Type != b.Type {
			return cmp.Compare(a.Type, b.Type)
		}
		return cmp.Compare(a.Trait, b.Trait)
	})
	return out
}

// resolveTraitRef resolves `Trait<Args>` in env.
func (tc *typeChecker) resolveTraitRef(p *ast.Path, env *typeEnv) (symbols.ItemID, []types.TypeID, bool) {
	res, ok := tc.symbols.ResolvePath(env.scope, pathNames(p), symbols.NSType)
	if !ok || res.Consumed != len(p.Segments) {
		tc.report(diag.SemaUnresolvedSymbol, p.Span, "cannot find trait `%s` in this scope", p.String())
		return symbols.NoItemID, nil, false
	}
	if tc.item(res.Item).Kind != symbols.ItemTrait {
		tc.report(diag.SemaNotAType, p.Span, "expected trait, found %s `%s`", tc.item(res.Item).Kind, p.String())
		return symbols.NoItemID, nil, false
	}
	last := p.Last()
	args := make([]types.TypeID, len(last.Args))
	for i, a := range last.Args {
		args[i] = tc.resolveType(a, env)
	}
	return res.Item, args, true
}

func pathNames(p *ast.Path) []string {
	out := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		out[i] = s.Name
	}
	return out
}
