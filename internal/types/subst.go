package types

// Subst maps generic parameters to types.
type Subst map[TypeID]TypeID

// Clone returns an independent copy of s.
func (s Subst) Clone() Subst {
	out := make(Subst, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Subst replaces parameters of id according to s. Projections whose base
// becomes concrete are normalized and pending array lengths are evaluated
// through the installed hooks.
func (in *Interner) Subst(id TypeID, s Subst) TypeID {
	if !in.HasParams(id) {
		return id
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindParam:
		if to, ok := s[id]; ok {
			return to
		}
		return id
	case KindSlice, KindPointer, KindReference:
		tt.Elem = in.Subst(tt.Elem, s)
		return in.Intern(tt)
	case KindArray:
		elem := in.Subst(tt.Elem, s)
		if tt.Payload == 0 {
			return in.Array(elem, tt.Count)
		}
		if in.hooks.ArrayLen != nil {
			if n, ok := in.hooks.ArrayLen(tt.Payload, s); ok {
				return in.Array(elem, n)
			}
		}
		return in.Intern(MakePendingArray(elem, tt.Payload))
	case KindAdt:
		info := in.adtInfo(id)
		args := make([]TypeID, len(info.Args))
		for i, a := range info.Args {
			args[i] = in.Subst(a, s)
		}
		return in.Adt(info.Kind, info.Item, info.Name, args)
	case KindProjection:
		p, _ := in.ProjectionInfo(id)
		p.Base = in.Subst(p.Base, s)
		args := make([]TypeID, len(p.TraitArgs))
		concrete := !in.HasParams(p.Base)
		for i, a := range p.TraitArgs {
			args[i] = in.Subst(a, s)
			if in.HasParams(args[i]) {
				concrete = false
			}
		}
		p.TraitArgs = args
		proj := in.Projection(p)
		if concrete && in.hooks.Normalize != nil {
			if n := in.hooks.Normalize(proj); n != NoTypeID {
				return n
			}
		}
		return proj
	}
	return id
}

// SubstAll applies s to every element of ids.
func (in *Interner) SubstAll(ids []TypeID, s Subst) []TypeID {
	out := make([]TypeID, len(ids))
	for i, id := range ids {
		out[i] = in.Subst(id, s)
	}
	return out
}
