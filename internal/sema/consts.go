package sema

import (
	"errors"

	"rsfront/internal/ast"
	"rsfront/internal/consteval"
	"rsfront/internal/diag"
	"rsfront/internal/intrinsics"
	"rsfront/internal/symbols"
	"rsfront/internal/types"
)

// errPendingLength marks a constant that depends on generic parameters of
// the enclosing item; it is folded again once they are substituted.
var errPendingLength = errors.New("constant depends on generic parameters")

type pendingLen struct {
	expr ast.ExprID
	env  *typeEnv
}

func (tc *typeChecker) addPending(expr ast.ExprID, env *typeEnv) uint32 {
	tc.pending = append(tc.pending, pendingLen{expr: expr, env: env})
	return uint32(len(tc.pending))
}

// pendingArrayLen is the interner hook folding a deferred array length
// under the substitution of an instance.
func (tc *typeChecker) pendingArrayLen(handle uint32, s types.Subst) (uint64, bool) {
	if handle == 0 || int(handle) > len(tc.pending) {
		return 0, false
	}
	p := tc.pending[handle-1]
	n, err := tc.evalLength(p.expr, p.env, s)
	if err == errPendingLength {
		return 0, false
	}
	if err != nil {
		tc.reportErr(err, tc.builder.Expr(p.expr).Span)
		return 0, false
	}
	return n, true
}

func (tc *typeChecker) evaluator(env *typeEnv, s types.Subst) *consteval.Evaluator {
	ev := *tc.consts
	ev.Resolver = constResolver{tc: tc, env: env, subst: s}
	return &ev
}

func (tc *typeChecker) evalLength(expr ast.ExprID, env *typeEnv, s types.Subst) (uint64, error) {
	return tc.evaluator(env, s).Length(expr)
}

// constResolver answers the name-dependent parts of constant folding: const
// items and `size_of::<T>()`.
type constResolver struct {
	tc    *typeChecker
	env   *typeEnv
	subst types.Subst
}

func (r constResolver) Const(path *ast.Path, hint consteval.Hint) (consteval.Value, bool, error) {
	tc := r.tc
	if r.env == nil {
		return consteval.Value{}, false, nil
	}
	res, ok := tc.symbols.ResolvePath(r.env.scope, pathNames(path), symbols.NSValue)
	if !ok || res.Consumed != len(path.Segments) || tc.item(res.Item).Kind != symbols.ItemConst {
		return consteval.Value{}, false, nil
	}
	v, err := tc.constValue(res.Item, path)
	if err != nil {
		return consteval.Value{}, false, err
	}
	return v, true, nil
}

func (r constResolver) Call(callee *ast.Path, args []ast.ExprID, hint consteval.Hint) (consteval.Value, bool, error) {
	tc := r.tc
	if r.env == nil {
		return consteval.Value{}, false, nil
	}
	res, ok := tc.symbols.ResolvePath(r.env.scope, pathNames(callee), symbols.NSValue)
	if !ok || res.Consumed != len(callee.Segments) {
		return consteval.Value{}, false, nil
	}
	it := tc.item(res.Item)
	if it.Kind != symbols.ItemIntrinsic {
		return consteval.Value{}, false, nil
	}
	if kind, _ := intrinsics.Lookup(it.Name); kind != intrinsics.SizeOf || len(args) != 0 {
		return consteval.Value{}, false, nil
	}
	last := callee.Last()
	if len(last.Args) != 1 {
		return consteval.Value{}, false, &consteval.Error{
			Code: diag.MonoUnresolvedInference,
			Span: callee.Span,
			Msg:  "type annotations needed for `size_of` in a constant",
		}
	}
	t := tc.resolveType(last.Args[0], r.env)
	if t == types.NoTypeID {
		return consteval.Value{}, false, &consteval.Error{Code: diag.SemaNotAType, Span: callee.Span, Msg: "invalid type argument"}
	}
	t = tc.types.Subst(t, r.subst)
	if tc.types.HasParams(t) {
		return consteval.Value{}, false, errPendingLength
	}
	n, err := tc.lower.SizeOfValue(t)
	if err != nil {
		return consteval.Value{}, false, &consteval.Error{Code: diag.LayoutRecursive, Span: callee.Span, Msg: err.Error()}
	}
	return consteval.Usize(n), true, nil
}

// constType returns the declared type of a const or static item.
func (tc *typeChecker) constType(id symbols.ItemID) types.TypeID {
	d, _ := tc.decl(id).Data.(*ast.ConstItem)
	if d == nil || !d.Type.IsValid() {
		tc.report(diag.SemaError, tc.item(id).Span, "missing type for `%s` item", tc.item(id).Name)
		return types.NoTypeID
	}
	return tc.resolveType(d.Type, tc.envFor(id))
}

// constValue folds an integer or bool const item.
func (tc *typeChecker) constValue(id symbols.ItemID, use *ast.Path) (consteval.Value, error) {
	it := tc.item(id)
	d, _ := tc.decl(id).Data.(*ast.ConstItem)
	t := tc.constType(id)
	hint, ok := consteval.HintOf(tc.types, t)
	if !ok || d == nil {
		return consteval.Value{}, &consteval.Error{Code: diag.ConstNotConstant, Span: use.Span,
			Msg: "constant `" + it.Name + "` of type `" + tc.label(t) + "` cannot be used here"}
	}
	if tc.constBusy[id] {
		return consteval.Value{}, &consteval.Error{Code: diag.ConstNotConstant, Span: it.Span,
			Msg: "cycle detected when evaluating constant `" + it.Name + "`"}
	}
	tc.constBusy[id] = true
	defer delete(tc.constBusy, id)
	return tc.evaluator(tc.envFor(id), nil).Eval(d.Value, hint)
}
