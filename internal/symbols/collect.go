package symbols

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
)

// CollectOptions control how a file is added to the table.
type CollectOptions struct {
	Reporter diag.Reporter
	Prelude  bool // declarations go into the prelude scope
}

// CollectFile populates the table with the items of file. Prelude files are
// collected first; a user `#[lang]` item replaces the prelude one.
func (t *Table) CollectFile(file ast.FileID, opts CollectOptions) {
	f := t.AST.File(file)
	if f == nil {
		return
	}
	scope := t.Root
	if opts.Prelude {
		scope = t.Prelude
	}
	c := collector{t: t, opts: opts}
	c.items(f.Items, scope)
}

type collector struct {
	t    *Table
	opts CollectOptions
}

func (c *collector) flags(it *ast.Item) ItemFlags {
	var f ItemFlags
	if it.Pub {
		f |= FlagPublic
	}
	if c.opts.Prelude {
		f |= FlagPrelude
	}
	return f
}

func (c *collector) items(ids []ast.ItemID, scope ScopeID) {
	for _, id := range ids {
		c.item(id, scope)
	}
}

func (c *collector) item(id ast.ItemID, scope ScopeID) {
	t := c.t
	it := t.AST.Item(id)
	base := Item{Name: it.Name, Span: it.NameSpan, Flags: c.flags(it), Decl: id, Module: scope}
	if lang, ok := ast.LangItem(it.Attrs); ok {
		base.Lang = lang
	}
	var sym ItemID
	switch data := it.Data.(type) {
	case *ast.FnItem:
		base.Kind = ItemFn
		base.Generics = &data.Generics
		base.Flags |= fnFlags(data)
		sym = t.newItem(base)
		t.declare(scope, sym, c.opts.Reporter)
	case *ast.StructItem:
		base.Kind = ItemStruct
		if it.Kind == ast.ItemUnion {
			base.Kind = ItemUnion
		}
		base.Generics = &data.Generics
		sym = t.newItem(base)
		t.declare(scope, sym, c.opts.Reporter)
	case *ast.EnumItem:
		base.Kind = ItemEnum
		base.Generics = &data.Generics
		sym = t.newItem(base)
		t.declare(scope, sym, c.opts.Reporter)
		var members []ItemID
		for i, v := range data.Variants {
			vf := base.Flags
			if v.Tuple {
				vf |= FlagTupleVariant
			}
			members = append(members, t.newItem(Item{
				Name: v.Name, Kind: ItemVariant, Span: v.Span, Flags: vf,
				Module: scope, Parent: sym, Index: i,
			}))
		}
		t.items[sym].Members = members
	case *ast.TraitItem:
		base.Kind = ItemTrait
		base.Generics = &data.Generics
		if data.Unsafe {
			base.Flags |= FlagUnsafe
		}
		sym = t.newItem(base)
		t.declare(scope, sym, c.opts.Reporter)
		t.items[sym].Members = c.members(data.Items, sym, scope)
		t.Traits = append(t.Traits, sym)
	case *ast.ImplItem:
		base.Kind = ItemImpl
		base.Name = ""
		base.Span = it.Span
		base.Generics = &data.Generics
		if data.Unsafe {
			base.Flags |= FlagUnsafe
		}
		sym = t.newItem(base)
		t.items[sym].Members = c.members(data.Items, sym, scope)
		t.Impls = append(t.Impls, sym)
	case *ast.ExternBlockItem:
		for _, fnID := range data.Items {
			fnAST := t.AST.Item(fnID)
			fn := fnAST.Data.(*ast.FnItem)
			ext := Item{
				Name: fnAST.Name, Kind: ItemExternFn, Span: fnAST.NameSpan,
				Flags: c.flags(fnAST) | FlagUnsafe, Decl: fnID, Module: scope,
				Generics: &fn.Generics, ABI: data.ABI,
			}
			if data.ABI == "rust-intrinsic" {
				ext.Kind = ItemIntrinsic
			}
			if fn.Variadic {
				ext.Flags |= FlagVariadic
			}
			t.declare(scope, t.newItem(ext), c.opts.Reporter)
		}
		return
	case *ast.ModItem:
		base.Kind = ItemModule
		sym = t.newItem(base)
		t.declare(scope, sym, c.opts.Reporter)
		inner := t.newScope(newScope(it.Name, scope, sym, it.Span))
		t.items[sym].Scope = inner
		c.items(data.Items, inner)
	case *ast.ConstItem:
		base.Kind = ItemConst
		if it.Kind == ast.ItemStatic {
			base.Kind = ItemStatic
		}
		sym = t.newItem(base)
		t.declare(scope, sym, c.opts.Reporter)
	case *ast.TypeAliasItem:
		base.Kind = ItemTypeAlias
		base.Generics = &data.Generics
		sym = t.newItem(base)
		t.declare(scope, sym, c.opts.Reporter)
	default:
		// macro_rules! уже раскрыты
		return
	}
	if base.Lang != "" {
		if prev, ok := t.lang[base.Lang]; ok && !t.items[prev].Has(FlagPrelude) {
			diag.ReportError(c.opts.Reporter, diag.SemaDuplicateSymbol, it.NameSpan,
				"duplicate lang item `"+base.Lang+"`").
				WithNote(t.items[prev].Span, "first defined here").
				Emit()
			return
		}
		t.lang[base.Lang] = sym
	}
}

// members collects methods and associated types of an impl or trait.
func (c *collector) members(ids []ast.ItemID, owner ItemID, scope ScopeID) []ItemID {
	t := c.t
	var out []ItemID
	for _, id := range ids {
		it := t.AST.Item(id)
		m := Item{Name: it.Name, Span: it.NameSpan, Flags: c.flags(it), Decl: id, Module: scope, Parent: owner}
		switch data := it.Data.(type) {
		case *ast.FnItem:
			m.Kind = ItemMethod
			m.Generics = &data.Generics
			m.Flags |= fnFlags(data)
		case *ast.TypeAliasItem:
			m.Kind = ItemAssocType
			m.Generics = &data.Generics
		case *ast.ConstItem:
			m.Kind = ItemConst
		default:
			continue
		}
		if prev, ok := findMember(t, out, m.Name, m.Kind.Namespace()); ok {
			diag.ReportError(c.opts.Reporter, diag.SemaDuplicateSymbol, m.Span,
				"duplicate definitions with name `"+m.Name+"`").
				WithNote(t.items[prev].Span, "previous definition here").
				Emit()
			continue
		}
		out = append(out, t.newItem(m))
	}
	return out
}

func findMember(t *Table, ids []ItemID, name string, ns Namespace) (ItemID, bool) {
	for _, id := range ids {
		if t.items[id].Name == name && t.items[id].Kind.Namespace() == ns {
			return id, true
		}
	}
	return NoItemID, false
}

func fnFlags(fn *ast.FnItem) ItemFlags {
	var f ItemFlags
	if fn.Unsafe {
		f |= FlagUnsafe
	}
	if fn.Const {
		f |= FlagConst
	}
	if fn.Variadic {
		f |= FlagVariadic
	}
	return f
}
