package sema

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/symbols"
	"rsfront/internal/traits"
	"rsfront/internal/types"
)

// registerImpls resolves every impl header and hands it to the trait
// resolver. Associated types are resolved in the impl's environment, so
// `type Output = I::Output` becomes a projection over the impl parameters.
func (tc *typeChecker) registerImpls() {
	for _, id := range tc.symbols.Impls {
		if im := tc.buildImpl(id); im != nil {
			tc.traits.Add(im)
		}
	}
}

func (tc *typeChecker) buildImpl(id symbols.ItemID) *traits.Impl {
	d := tc.decl(id)
	data, ok := d.Data.(*ast.ImplItem)
	if !ok {
		return nil
	}
	env := tc.newEnv(id)
	env.assoc = make(map[string]types.TypeID)
	tc.envs[id] = env

	self := tc.resolveType(data.Self, env)
	if self == types.NoTypeID {
		return nil
	}
	env.self = self

	im := &traits.Impl{
		Item:    id,
		Self:    self,
		Params:  tc.paramsOf(id),
		Bounds:  tc.ownBounds(env, id),
		Assoc:   env.assoc,
		Methods: make(map[string]symbols.ItemID),
		Lang:    tc.item(id).Lang,
	}
	if data.Trait != nil {
		trait, args, ok := tc.resolveTraitRef(data.Trait, env)
		if !ok {
			return nil
		}
		if want := tc.item(trait).Arity(); want != len(args) {
			tc.report(diag.MonoArityMismatch, data.Trait.Span, "trait `%s` takes %d generic argument(s) but %d were supplied",
				tc.item(trait).Name, want, len(args))
			return nil
		}
		im.Trait = trait
		im.TraitArgs = args
	}

	for _, m := range tc.item(id).Members {
		member := tc.item(m)
		if im.Trait.IsValid() {
			if _, ok := tc.symbols.Member(im.Trait, member.Name); !ok {
				tc.report(diag.SemaUnresolvedSymbol, member.Span, "%s `%s` is not a member of trait `%s`",
					member.Kind, member.Name, tc.item(im.Trait).Name)
				continue
			}
		}
		switch member.Kind {
		case symbols.ItemMethod:
			im.Methods[member.Name] = m
		case symbols.ItemAssocType:
			alias, _ := tc.decl(m).Data.(*ast.TypeAliasItem)
			if alias == nil || !alias.Type.IsValid() {
				tc.report(diag.TraitUnknownAssocType, member.Span, "associated type `%s` needs a definition in an impl", member.Name)
				continue
			}
			if t := tc.resolveType(alias.Type, env); t != types.NoTypeID {
				env.assoc[member.Name] = t
			}
		}
	}
	if im.Trait.IsValid() {
		tc.checkImplCompleteness(im)
	}
	return im
}

// checkImplCompleteness reports trait members an impl leaves out. Default
// method bodies are not inherited.
func (tc *typeChecker) checkImplCompleteness(im *traits.Impl) {
	trait := tc.item(im.Trait)
	for _, m := range trait.Members {
		member := tc.item(m)
		switch member.Kind {
		case symbols.ItemAssocType:
			if _, ok := im.Assoc[member.Name]; !ok {
				tc.report(diag.TraitUnknownAssocType, tc.item(im.Item).Span, "missing associated type `%s` in impl of `%s`",
					member.Name, trait.Name)
			}
		case symbols.ItemMethod:
			if _, ok := im.Methods[member.Name]; ok {
				continue
			}
			tc.report(diag.TraitNoMatchingImpl, tc.item(im.Item).Span, "missing method `%s` in impl of `%s`",
				member.Name, trait.Name)
		}
	}
}
