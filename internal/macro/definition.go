package macro

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/source"
	"rsfront/internal/token"
)

// Rule is one `(pattern) => { body }` arm with a compiled matcher.
type Rule struct {
	Pattern []matcher
	Body    []token.Token
	Span    source.Span
}

// Definition is a macro_rules! item. Builtin marks `#[rustc_builtin_macro]`
// declarations whose expansion is always provided by the compiler.
type Definition struct {
	Name    string
	Rules   []Rule
	Builtin bool
	Span    source.Span
}

// Table holds macro definitions of a compilation unit by name.
// A later definition with the same name shadows an earlier one.
type Table struct {
	byName map[string]*Definition
	defs   []*Definition
}

func NewTable() *Table {
	return &Table{byName: make(map[string]*Definition)}
}

func (t *Table) Add(def *Definition) {
	t.byName[def.Name] = def
	t.defs = append(t.defs, def)
}

func (t *Table) Lookup(name string) *Definition {
	return t.byName[name]
}

func (t *Table) Len() int { return len(t.defs) }

// Collect gathers macro_rules! items of a file, including those nested in
// inline modules, and compiles their patterns.
func Collect(b *ast.Builder, file ast.FileID, r diag.Reporter) *Table {
	t := NewTable()
	f := b.File(file)
	if f == nil {
		return t
	}
	collectItems(b, f.Items, t, r)
	return t
}

func collectItems(b *ast.Builder, items []ast.ItemID, t *Table, r diag.Reporter) {
	for _, id := range items {
		it := b.Item(id)
		switch data := it.Data.(type) {
		case *ast.ModItem:
			collectItems(b, data.Items, t, r)
		case *ast.MacroRulesItem:
			def := &Definition{Name: it.Name, Span: it.NameSpan}
			_, def.Builtin = ast.FindAttr(it.Attrs, "rustc_builtin_macro")
			for _, rule := range data.Rules {
				pat, err := compilePattern(rule.Pattern)
				if err != nil {
					diag.ReportError(r, diag.SynBadMacroRules, rule.Span, err.Error()).Emit()
					continue
				}
				def.Rules = append(def.Rules, Rule{Pattern: pat, Body: rule.Body, Span: rule.Span})
			}
			t.Add(def)
		}
	}
}
