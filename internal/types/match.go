package types

// Match binds parameters of pattern so that it equals t, extending s.
// On failure s may contain partial bindings; callers clone when they need
// to retry. A parameter declared Sized never binds an unsized type.
func (in *Interner) Match(pattern, t TypeID, s Subst) bool {
	if pattern == t {
		return true
	}
	if !in.HasParams(pattern) {
		return false
	}
	pt, ok := in.Lookup(pattern)
	if !ok {
		return false
	}
	switch pt.Kind {
	case KindParam:
		if bound, ok := s[pattern]; ok {
			return bound == t
		}
		info, _ := in.ParamInfo(pattern)
		if info.Sized && !in.IsSized(t) {
			return false
		}
		s[pattern] = t
		return true
	case KindProjection:
		// проекцию можно сравнить только после подстановки
		sub := in.Subst(pattern, s)
		return !in.HasParams(sub) && sub == t
	}
	tt, ok := in.Lookup(t)
	if !ok || tt.Kind != pt.Kind {
		return false
	}
	switch pt.Kind {
	case KindSlice:
		return in.Match(pt.Elem, tt.Elem, s)
	case KindPointer, KindReference:
		return pt.Mutable == tt.Mutable && in.Match(pt.Elem, tt.Elem, s)
	case KindArray:
		if pt.Payload == 0 && pt.Count != tt.Count {
			return false
		}
		return in.Match(pt.Elem, tt.Elem, s)
	case KindAdt:
		pi, ti := in.adtInfo(pattern), in.adtInfo(t)
		if pi.Item != ti.Item || len(pi.Args) != len(ti.Args) {
			return false
		}
		for i := range pi.Args {
			if !in.Match(pi.Args[i], ti.Args[i], s) {
				return false
			}
		}
		return true
	}
	return false
}
