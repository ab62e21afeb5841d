package macro

import (
	"fmt"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/parser"
	"rsfront/internal/source"
	"rsfront/internal/token"
)

// DefaultMaxDepth bounds nested expansions.
const DefaultMaxDepth = 64

// DefaultMaxTokens bounds the tokens produced by all expansions of a unit.
const DefaultMaxTokens = 1 << 20

type Options struct {
	Reporter  diag.Reporter
	Files     *source.FileSet // для file!/line!/column!
	MaxDepth  int
	MaxTokens int
}

// Expansion records one successful macro expansion.
type Expansion struct {
	Name    string
	Call    source.Span
	Rule    int // индекс сработавшего правила, -1 для builtin
	Builtin bool
	Depth   int
}

// Expander rewrites macro call expressions in place with their expansions.
type Expander struct {
	b          *ast.Builder
	table      *Table
	opts       Options
	state      *matchState
	expansions []Expansion
	produced   int
	exhausted  bool
}

func NewExpander(b *ast.Builder, table *Table, opts Options) *Expander {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if table == nil {
		table = NewTable()
	}
	return &Expander{b: b, table: table, opts: opts, state: newMatchState()}
}

// ExpandFile collects the macro definitions of file and expands every call in it.
func ExpandFile(b *ast.Builder, file ast.FileID, opts Options) (*Table, []Expansion) {
	table := Collect(b, file, opts.Reporter)
	e := NewExpander(b, table, opts)
	e.Expand(file)
	return table, e.Expansions()
}

// Expand rewrites all macro calls reachable from the items of file.
func (e *Expander) Expand(file ast.FileID) {
	f := e.b.File(file)
	if f == nil {
		return
	}
	for _, it := range f.Items {
		e.b.InspectItem(it, e.visit(0))
	}
}

func (e *Expander) Expansions() []Expansion { return e.expansions }

func (e *Expander) visit(depth int) func(ast.ExprID) bool {
	return func(id ast.ExprID) bool {
		if e.b.Expr(id).Kind != ast.ExprMacroCall {
			return true
		}
		e.expandCall(id, depth)
		return false
	}
}

func (e *Expander) expandCall(id ast.ExprID, depth int) {
	if e.exhausted {
		return
	}
	call := *e.b.Expr(id)
	data, ok := call.Data.(*ast.MacroCallData)
	if !ok {
		return
	}
	name := data.Path.Last().Name
	if depth >= e.opts.MaxDepth {
		e.exhausted = true
		diag.ReportError(e.opts.Reporter, diag.MacroRecursion, call.Span,
			fmt.Sprintf("recursion limit reached while expanding `%s!`", name)).
			WithNote(call.Span, fmt.Sprintf("the limit is %d nested expansions", e.opts.MaxDepth)).
			Emit()
		return
	}

	toks, ok := e.expandTokens(name, call.Span, data, depth)
	if !ok {
		return
	}
	// глубина не ловит макросы, которые удваивают вход на каждом шаге
	e.produced += len(toks)
	if e.produced > e.opts.MaxTokens {
		e.exhausted = true
		diag.ReportError(e.opts.Reporter, diag.MacroRecursion, call.Span,
			fmt.Sprintf("expansion of `%s!` exceeds the token limit", name)).
			WithNote(call.Span, fmt.Sprintf("macro expansions of this unit produced more than %d tokens", e.opts.MaxTokens)).
			Emit()
		return
	}
	newID, ok := e.parseExpansion(name, call.Span, toks)
	if !ok {
		return
	}
	e.b.Inspect(newID, e.visit(depth+1))
	expanded := *e.b.Expr(newID)
	*e.b.Expr(id) = ast.Expr{Kind: expanded.Kind, Span: call.Span, Data: expanded.Data}
}

// expandTokens picks the definition for a call. Names of builtin macros
// always expand as the builtin, whether or not a `macro_rules!` of the same
// name exists; other names need a user definition with a matching rule.
func (e *Expander) expandTokens(name string, span source.Span, data *ast.MacroCallData, depth int) ([]token.Token, bool) {
	if builtin, ok := builtins[name]; ok {
		toks, err := builtin(e, span, data.Tokens)
		if err != nil {
			diag.ReportError(e.opts.Reporter, diag.MacroBadExpansion, span, err.Error()).Emit()
			return nil, false
		}
		e.expansions = append(e.expansions, Expansion{Name: name, Call: span, Rule: -1, Builtin: true, Depth: depth})
		return toks, true
	}

	def := e.table.Lookup(name)
	switch {
	case def == nil:
		diag.ReportError(e.opts.Reporter, diag.MacroUnknown, span,
			fmt.Sprintf("cannot find macro `%s` in this scope", name)).Emit()
		return nil, false
	case def.Builtin:
		diag.ReportError(e.opts.Reporter, diag.MacroUnknown, def.Span,
			fmt.Sprintf("cannot find a built-in macro with name `%s`", name)).Emit()
		return nil, false
	}
	for i, rule := range def.Rules {
		env, ok := e.state.match(rule.Pattern, data.Tokens)
		if !ok {
			continue
		}
		toks, err := transcribe(rule.Body, env)
		if err != nil {
			diag.ReportError(e.opts.Reporter, diag.MacroBadExpansion, span, err.Error()).
				WithNote(rule.Span, "while transcribing this rule").
				Emit()
			return nil, false
		}
		e.expansions = append(e.expansions, Expansion{Name: name, Call: span, Rule: i, Depth: depth})
		return toks, true
	}
	diag.ReportError(e.opts.Reporter, diag.MacroNoMatchingRule, span,
		fmt.Sprintf("no rules of `%s!` match this invocation", name)).
		WithNote(def.Span, "macro defined here").
		Emit()
	return nil, false
}

// parseExpansion reads the expansion back as one expression. An empty
// expansion is the unit value.
func (e *Expander) parseExpansion(name string, span source.Span, toks []token.Token) (ast.ExprID, bool) {
	if len(toks) == 0 {
		return e.b.NewExpr(ast.ExprTuple, span, &ast.TupleData{}), true
	}
	id, n, ok := parser.ParseExpr(e.b, toks, parser.Options{})
	if !ok || n != len(toks) {
		diag.ReportError(e.opts.Reporter, diag.MacroBadExpansion, span,
			fmt.Sprintf("expansion of `%s!` is not a single expression", name)).
			WithNote(toks[0].Span, "expansion starts here").
			Emit()
		return ast.NoExprID, false
	}
	return id, true
}

func (e *Expander) position(sp source.Span) source.LineCol {
	if e.opts.Files == nil {
		return source.LineCol{Line: 1, Col: 1}
	}
	start, _ := e.opts.Files.Resolve(sp)
	return start
}
