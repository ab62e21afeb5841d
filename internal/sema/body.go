package sema

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/hir"
	"rsfront/internal/mono"
	"rsfront/internal/source"
	"rsfront/internal/symbols"
	"rsfront/internal/types"
)

// fnCtx checks and lowers the body of one instance. Every type it produces
// is concrete: declared types are resolved in env and substituted with the
// instance arguments.
type fnCtx struct {
	tc     *typeChecker
	inst   *mono.Instance // nil for static initializers
	fn     *hir.Func
	env    *typeEnv
	subst  types.Subst
	result types.TypeID
	b      types.Builtins

	scopes []map[string]hir.LocalID
	// initialized tracks locals declared without an initializer.
	initialized map[hir.LocalID]bool
	loops       []*loopCtx
	unsafeDepth int
	static      bool

	// целочисленные переменные вывода для `let i = 0;`
	localVar map[hir.LocalID]*intVar
	nodeVar  map[*hir.Expr]*intVar
	soft     int // >0: reads of open locals do not settle their type
}

type loopCtx struct {
	result   types.TypeID
	isWhile  bool
	hasBreak bool
}

func (tc *typeChecker) buildBody(inst *mono.Instance) {
	sig := tc.signature(inst.Item)
	fn := tc.module.Func(inst.Func)
	if !sig.ok || sig.decl == nil {
		return
	}
	if !sig.decl.Body.IsValid() {
		tc.report(diag.SemaError, tc.item(inst.Item).Span, "function `%s` has no body", fn.Name)
		return
	}
	span := tracePass(tc, fn.Name)
	defer span.End("")

	fc := tc.newFnCtx(inst, fn, sig.env, inst.Subst)
	fc.result = fn.Result
	if sig.unsafe {
		fc.unsafeDepth = 1
	}
	fc.pushScope()
	first := 0
	if sig.hasSelf() {
		l := fn.NewLocal(hir.Local{Name: "self", Type: fc.sub(sig.inputs[0]), Mutable: sig.selfMut, Span: sig.decl.SelfSpan})
		fn.Params = append(fn.Params, l)
		fc.declare("self", l)
		first = 1
	}
	for i, p := range sig.decl.Params {
		name, mut := "_", false
		switch d := tc.builder.Pat(p.Pat).Data.(type) {
		case *ast.BindPat:
			name, mut = d.Name, d.Mut
		case *ast.WildPat:
		default:
			tc.report(diag.SemaBadPattern, p.Span, "unsupported pattern in function parameter")
		}
		l := fn.NewLocal(hir.Local{Name: name, Type: fc.sub(sig.inputs[first+i]), Mutable: mut, Span: p.Span})
		fn.Params = append(fn.Params, l)
		if name != "_" {
			fc.declare(name, l)
		}
	}
	body := fc.expr(sig.decl.Body, fn.Result)
	fn.Body = fc.coerce(body, fn.Result)
	fc.popScope()
}

func (tc *typeChecker) newFnCtx(inst *mono.Instance, fn *hir.Func, env *typeEnv, s types.Subst) *fnCtx {
	return &fnCtx{
		tc:          tc,
		inst:        inst,
		fn:          fn,
		env:         env,
		subst:       s,
		b:           tc.types.Builtins(),
		initialized: make(map[hir.LocalID]bool),
		localVar:    make(map[hir.LocalID]*intVar),
		nodeVar:     make(map[*hir.Expr]*intVar),
	}
}

// staticContext checks initializers of statics and non-integer consts.
func (tc *typeChecker) staticContext(id symbols.ItemID) *fnCtx {
	fc := tc.newFnCtx(nil, &hir.Func{Name: tc.symbols.Path(id)}, tc.envFor(id), nil)
	fc.static = true
	fc.pushScope()
	return fc
}

func (fc *fnCtx) pushScope() { fc.scopes = append(fc.scopes, make(map[string]hir.LocalID)) }
func (fc *fnCtx) popScope()  { fc.scopes = fc.scopes[:len(fc.scopes)-1] }

func (fc *fnCtx) declare(name string, l hir.LocalID) {
	fc.scopes[len(fc.scopes)-1][name] = l
}

func (fc *fnCtx) lookupLocal(name string) (hir.LocalID, bool) {
	for i := len(fc.scopes) - 1; i >= 0; i-- {
		if l, ok := fc.scopes[i][name]; ok {
			return l, true
		}
	}
	return hir.NoLocalID, false
}

// sub applies the instance substitution.
func (fc *fnCtx) sub(t types.TypeID) types.TypeID {
	if t == types.NoTypeID || len(fc.subst) == 0 {
		return t
	}
	return fc.tc.types.Subst(t, fc.subst)
}

// typeOf resolves a written type inside the body.
func (fc *fnCtx) typeOf(id ast.TypeID) types.TypeID {
	t := fc.tc.resolveType(id, fc.env)
	if t == types.NoTypeID {
		return t
	}
	return fc.sub(t)
}

func (fc *fnCtx) bad(span source.Span) *hir.Expr {
	return &hir.Expr{Kind: hir.ExprLiteral, Type: fc.b.Invalid, Span: span, Data: hir.LiteralData{Kind: hir.LiteralUnit}}
}

// isBad reports types produced after an error was already reported.
func (fc *fnCtx) isBad(t types.TypeID) bool {
	return t == types.NoTypeID || t == fc.b.Invalid
}

func (fc *fnCtx) mk(kind hir.ExprKind, t types.TypeID, span source.Span, data hir.ExprData) *hir.Expr {
	return &hir.Expr{Kind: kind, Type: t, Span: span, Data: data}
}

func (fc *fnCtx) unit(span source.Span) *hir.Expr {
	return fc.mk(hir.ExprLiteral, fc.b.Unit, span, hir.LiteralData{Kind: hir.LiteralUnit})
}

func (fc *fnCtx) boolLit(v bool, span source.Span) *hir.Expr {
	return fc.mk(hir.ExprLiteral, fc.b.Bool, span, hir.LiteralData{Kind: hir.LiteralBool, Bool: v})
}

func (fc *fnCtx) deref(x *hir.Expr) *hir.Expr {
	elem, _ := fc.tc.types.Pointee(x.Type)
	return fc.mk(hir.ExprDeref, elem, x.Span, hir.DerefData{X: x})
}

func (fc *fnCtx) addrOf(x *hir.Expr, mutable bool) *hir.Expr {
	return fc.mk(hir.ExprAddrOf, fc.tc.types.Reference(x.Type, mutable), x.Span, hir.AddrOfData{Mutable: mutable, X: x})
}

func (fc *fnCtx) local(l hir.LocalID, span source.Span) *hir.Expr {
	loc := fc.fn.Local(l)
	return fc.mk(hir.ExprLocal, loc.Type, span, hir.LocalData{Local: l, Name: loc.Name})
}

// requireUnsafe warns about an unsafe operation outside an unsafe context.
func (fc *fnCtx) requireUnsafe(span source.Span, what string) {
	if fc.unsafeDepth > 0 {
		return
	}
	fc.tc.warn(diag.SemaUnsafeOperation, span, "%s is unsafe and requires unsafe function or block", what)
}

func (fc *fnCtx) report(code diag.Code, span source.Span, format string, args ...any) {
	fc.tc.report(code, span, format, args...)
}

func (fc *fnCtx) mismatch(span source.Span, want, got types.TypeID) {
	if fc.isBad(want) || fc.isBad(got) {
		return
	}
	fc.report(diag.SemaTypeMismatch, span, "mismatched types: expected `%s`, found `%s`", fc.tc.label(want), fc.tc.label(got))
}
