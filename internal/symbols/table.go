package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/source"
)

// Table aggregates the items and module scopes of one compilation unit.
type Table struct {
	AST     *ast.Builder
	Root    ScopeID
	Prelude ScopeID
	Impls   []ItemID
	Traits  []ItemID

	items  []Item
	scopes []Scope
	lang   map[string]ItemID
	byDecl map[ast.ItemID]ItemID
}

// NewTable builds a table with an empty crate root and prelude scope.
func NewTable(b *ast.Builder) *Table {
	t := &Table{
		AST:    b,
		items:  make([]Item, 1, 64),
		scopes: make([]Scope, 1, 8),
		lang:   make(map[string]ItemID),
		byDecl: make(map[ast.ItemID]ItemID),
	}
	t.Root = t.newScope(newScope("crate", NoScopeID, NoItemID, source.Span{}))
	t.Prelude = t.newScope(newScope("prelude", NoScopeID, NoItemID, source.Span{}))
	return t
}

func (t *Table) newScope(s Scope) ScopeID {
	n, err := safecast.Conv[uint32](len(t.scopes))
	if err != nil {
		panic(fmt.Errorf("scope arena overflow: %w", err))
	}
	t.scopes = append(t.scopes, s)
	return ScopeID(n)
}

func (t *Table) newItem(it Item) ItemID {
	n, err := safecast.Conv[uint32](len(t.items))
	if err != nil {
		panic(fmt.Errorf("item arena overflow: %w", err))
	}
	t.items = append(t.items, it)
	if it.Decl.IsValid() {
		t.byDecl[it.Decl] = ItemID(n)
	}
	return ItemID(n)
}

// Item returns the item for id, or nil.
func (t *Table) Item(id ItemID) *Item {
	if id == NoItemID || int(id) >= len(t.items) {
		return nil
	}
	return &t.items[id]
}

// Scope returns the module scope for id, or nil.
func (t *Table) Scope(id ScopeID) *Scope {
	if id == NoScopeID || int(id) >= len(t.scopes) {
		return nil
	}
	return &t.scopes[id]
}

// Len returns the number of items.
func (t *Table) Len() int { return len(t.items) - 1 }

// ByDecl maps an AST item back to its symbol.
func (t *Table) ByDecl(decl ast.ItemID) (ItemID, bool) {
	id, ok := t.byDecl[decl]
	return id, ok
}

// Lang returns the item registered with `#[lang = name]`.
func (t *Table) Lang(name string) (ItemID, bool) {
	id, ok := t.lang[name]
	return id, ok
}

// Items iterates all items in declaration order.
func (t *Table) Items(fn func(ItemID, *Item)) {
	for i := 1; i < len(t.items); i++ {
		fn(ItemID(i), &t.items[i])
	}
}

// Member finds a member of an impl, trait or enum by name.
func (t *Table) Member(owner ItemID, name string) (ItemID, bool) {
	it := t.Item(owner)
	if it == nil {
		return NoItemID, false
	}
	for _, m := range it.Members {
		if t.items[m].Name == name {
			return m, true
		}
	}
	return NoItemID, false
}

// Path renders the module path of an item, for dumps and diagnostics.
func (t *Table) Path(id ItemID) string {
	it := t.Item(id)
	if it == nil {
		return "?"
	}
	name := it.Name
	if it.Kind == ItemImpl {
		name = "<impl>"
	}
	if it.Parent.IsValid() {
		return t.Path(it.Parent) + "::" + name
	}
	for s := t.Scope(it.Module); s != nil && s.Parent.IsValid(); s = t.Scope(s.Parent) {
		name = s.Name + "::" + name
	}
	return name
}

func (t *Table) declare(scope ScopeID, id ItemID, r diag.Reporter) {
	it := &t.items[id]
	if it.Name == "" {
		return
	}
	names := t.scopes[scope].names(it.Kind.Namespace())
	if prev, ok := names[it.Name]; ok && !t.items[prev].Has(FlagPrelude) {
		diag.ReportError(r, diag.SemaDuplicateSymbol, it.Span,
			fmt.Sprintf("the name `%s` is defined multiple times", it.Name)).
			WithNote(t.items[prev].Span, "previous definition here").
			Emit()
		return
	}
	names[it.Name] = id
}
