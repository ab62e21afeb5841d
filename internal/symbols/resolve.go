package symbols

// Lookup finds name in a module scope, falling back to the prelude.
func (t *Table) Lookup(scope ScopeID, name string, ns Namespace) (ItemID, bool) {
	if s := t.Scope(scope); s != nil {
		if id, ok := s.names(ns)[name]; ok {
			return id, true
		}
	}
	if id, ok := t.scopes[t.Prelude].names(ns)[name]; ok {
		return id, true
	}
	return NoItemID, false
}

// Resolution is the result of resolving a path prefix. Consumed counts the
// segments mapped to Item; remaining segments name associated items that
// only the type checker can resolve (`Type::method`).
type Resolution struct {
	Item     ItemID
	Consumed int
}

// ResolvePath resolves the longest prefix of segs starting in scope. The
// last segment is looked up in ns, inner segments in the type namespace.
// `crate`, `self` and `super` are understood as leading segments.
func (t *Table) ResolvePath(scope ScopeID, segs []string, ns Namespace) (Resolution, bool) {
	if len(segs) == 0 {
		return Resolution{}, false
	}
	i := 0
	cur := scope
	moved := false
	for ; i < len(segs)-1 && isPathKeyword(segs[i]); i++ {
		switch segs[i] {
		case "crate":
			cur = t.Root
		case "super":
			if s := t.Scope(cur); s != nil && s.Parent.IsValid() {
				cur = s.Parent
			}
		}
		moved = true
	}
	var item ItemID
	for ; i < len(segs); i++ {
		want := NSType
		if i == len(segs)-1 {
			want = ns
		}
		if item.IsValid() {
			it := t.Item(item)
			switch {
			case it.Kind == ItemModule:
				id, ok := t.lookupLocal(it.Scope, segs[i], want)
				if !ok && want == NSValue {
					id, ok = t.lookupLocal(it.Scope, segs[i], NSType)
				}
				if !ok {
					return Resolution{Item: item, Consumed: i}, false
				}
				item = id
			case it.Kind == ItemEnum:
				v, ok := t.Member(item, segs[i])
				if !ok {
					return Resolution{Item: item, Consumed: i}, false
				}
				item = v
			default:
				// ассоциированный элемент типа: решает sema
				return Resolution{Item: item, Consumed: i}, true
			}
			continue
		}
		var (
			id ItemID
			ok bool
		)
		if moved {
			id, ok = t.lookupLocal(cur, segs[i], want)
			if !ok && i < len(segs)-1 {
				id, ok = t.lookupLocal(cur, segs[i], NSType)
			}
		} else {
			id, ok = t.Lookup(cur, segs[i], want)
			if !ok && want == NSValue {
				// `Enum::Variant` и `Type::method` начинаются с типа
				id, ok = t.Lookup(cur, segs[i], NSType)
			}
		}
		if !ok {
			return Resolution{Consumed: i}, false
		}
		item = id
	}
	return Resolution{Item: item, Consumed: len(segs)}, true
}

func (t *Table) lookupLocal(scope ScopeID, name string, ns Namespace) (ItemID, bool) {
	s := t.Scope(scope)
	if s == nil {
		return NoItemID, false
	}
	id, ok := s.names(ns)[name]
	return id, ok
}

func isPathKeyword(seg string) bool {
	return seg == "crate" || seg == "self" || seg == "super"
}
