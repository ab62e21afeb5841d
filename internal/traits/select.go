package traits

import (
	"rsfront/internal/symbols"
	"rsfront/internal/types"
)

// FindImpl selects the impl of trait for self with the given trait
// arguments. All of self and args must be concrete. Where-clause bounds of
// the candidate are checked recursively.
func (r *Resolver) FindImpl(trait symbols.ItemID, self types.TypeID, args []types.TypeID) (Match, error) {
	return r.findImpl(trait, self, args, 0)
}

// Implements reports whether FindImpl would succeed.
func (r *Resolver) Implements(trait symbols.ItemID, self types.TypeID, args []types.TypeID) bool {
	_, err := r.findImpl(trait, self, args, 0)
	return err == nil
}

func (r *Resolver) findImpl(trait symbols.ItemID, self types.TypeID, args []types.TypeID, depth int) (Match, error) {
	var found []Match
	for _, im := range r.byTrait[trait] {
		m, ok := r.matchHeader(im, self, args)
		if !ok {
			continue
		}
		if depth < maxBoundDepth {
			if err := r.checkBounds(m, depth+1); err != nil {
				continue
			}
		}
		found = append(found, m)
	}
	switch len(found) {
	case 0:
		return Match{}, r.traitError(ErrNoMatchingImpl, trait, self, args)
	case 1:
		return found[0], nil
	}
	e := r.traitError(ErrAmbiguous, trait, self, args)
	e.Count = len(found)
	return Match{}, e
}

func (r *Resolver) matchHeader(im *Impl, self types.TypeID, args []types.TypeID) (Match, bool) {
	if len(args) != len(im.TraitArgs) {
		return Match{}, false
	}
	s := make(types.Subst, len(im.Params))
	if !r.Types.Match(im.Self, self, s) {
		return Match{}, false
	}
	for i, a := range im.TraitArgs {
		if !r.Types.Match(a, args[i], s) {
			return Match{}, false
		}
	}
	return Match{Impl: im, Subst: s}, true
}

// CheckBounds verifies the where-clauses of a match whose parameters are
// all bound.
func (r *Resolver) CheckBounds(m Match) error {
	return r.checkBounds(m, 0)
}

func (r *Resolver) checkBounds(m Match, depth int) error {
	for _, b := range m.Impl.Bounds {
		self := r.Types.Subst(b.Type, m.Subst)
		args := r.Types.SubstAll(b.Args, m.Subst)
		if r.Types.HasParams(self) || anyParams(r.Types, args) {
			// параметр ещё не выведен; проверим, когда вызовут снова
			continue
		}
		if _, err := r.findImpl(b.Trait, self, args, depth); err != nil {
			e := r.traitError(ErrBoundNotSatisfied, b.Trait, self, args)
			if te, ok := err.(*Error); ok {
				e.Cause = te
			}
			return e
		}
	}
	return nil
}

// Normalize resolves a projection `<Base as Trait<Args>>::Name` whose base
// and arguments are concrete. It returns NoTypeID when no impl covers it.
func (r *Resolver) Normalize(proj types.TypeID) types.TypeID {
	t, err := r.NormalizeErr(proj)
	if err != nil {
		return types.NoTypeID
	}
	return t
}

// NormalizeErr is Normalize with the failure reason.
func (r *Resolver) NormalizeErr(proj types.TypeID) (types.TypeID, error) {
	p, ok := r.Types.ProjectionInfo(proj)
	if !ok {
		return proj, nil
	}
	m, err := r.FindImpl(symbols.ItemID(p.Trait), p.Base, p.TraitArgs)
	if err != nil {
		return types.NoTypeID, err
	}
	assoc, ok := m.Impl.Assoc[p.Name]
	if !ok {
		e := r.traitError(ErrUnknownAssoc, symbols.ItemID(p.Trait), p.Base, p.TraitArgs)
		e.Name = p.Name
		return types.NoTypeID, e
	}
	return r.Types.Subst(assoc, m.Subst), nil
}

// Hook returns the interner hook that normalises projections through r.
func (r *Resolver) Hook() func(types.TypeID) types.TypeID { return r.Normalize }

func (r *Resolver) traitError(kind ErrorKind, trait symbols.ItemID, self types.TypeID, args []types.TypeID) *Error {
	e := &Error{Kind: kind, Trait: r.name(trait), Self: r.label(self)}
	for _, a := range args {
		e.Args = append(e.Args, r.label(a))
	}
	return e
}

func anyParams(in *types.Interner, ids []types.TypeID) bool {
	for _, id := range ids {
		if in.HasParams(id) {
			return true
		}
	}
	return false
}
