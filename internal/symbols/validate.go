package symbols

import "fmt"

// Validate checks structural invariants of the table: parents and members
// point at valid items and every scope entry names an item of the right
// namespace.
func (t *Table) Validate() error {
	for i := 1; i < len(t.items); i++ {
		it := &t.items[i]
		if it.Parent.IsValid() && t.Item(it.Parent) == nil {
			return fmt.Errorf("item %d (%s) has dangling parent %d", i, it.Name, it.Parent)
		}
		for _, m := range it.Members {
			if mem := t.Item(m); mem == nil || mem.Parent != ItemID(i) {
				return fmt.Errorf("item %d (%s) has foreign member %d", i, it.Name, m)
			}
		}
		if it.Kind == ItemModule && t.Scope(it.Scope) == nil {
			return fmt.Errorf("module %s has no scope", it.Name)
		}
	}
	for s := 1; s < len(t.scopes); s++ {
		sc := &t.scopes[s]
		for ns, names := range map[Namespace]map[string]ItemID{NSType: sc.Types, NSValue: sc.Values} {
			for name, id := range names {
				it := t.Item(id)
				if it == nil || it.Name != name || it.Kind.Namespace() != ns {
					return fmt.Errorf("scope %s: bad entry %q -> %d", sc.Name, name, id)
				}
			}
		}
	}
	return nil
}
