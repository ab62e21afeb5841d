package sema

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/hir"
	"rsfront/internal/intrinsics"
	"rsfront/internal/mono"
	"rsfront/internal/source"
	"rsfront/internal/symbols"
	"rsfront/internal/traits"
	"rsfront/internal/types"
)

// callSite collects what a call of a generic item needs for inference.
type callSite struct {
	item     symbols.ItemID
	sig      *signature
	explicit []ast.TypeID
	recv     *hir.Expr   // adjusted receiver of a method call
	seed     types.Subst // impl bindings found by method lookup
	args     []ast.ExprID
	span     source.Span
	expected types.TypeID
}

func (fc *fnCtx) call(x *ast.Expr, d *ast.CallData, expected types.TypeID) *hir.Expr {
	tc := fc.tc
	callee := tc.builder.Expr(d.Callee)
	pd, ok := callee.Data.(*ast.PathData)
	if !ok {
		fc.report(diag.SemaNotAValue, callee.Span, "expected function, found expression")
		return fc.bad(x.Span)
	}
	p := &pd.Path
	if p.Single() {
		if _, ok := fc.lookupLocal(p.Segments[0].Name); ok {
			fc.report(diag.SemaNotAValue, callee.Span, "expected function, found local variable `%s`", p.String())
			return fc.bad(x.Span)
		}
	}
	res, ok := tc.symbols.ResolvePath(fc.env.scope, pathNames(p), symbols.NSValue)
	if ok && res.Consumed == len(p.Segments) {
		it := tc.item(res.Item)
		switch it.Kind {
		case symbols.ItemVariant:
			return fc.variantLit(res.Item, p, d.Args, x, expected)
		case symbols.ItemFn, symbols.ItemExternFn, symbols.ItemIntrinsic:
			return fc.finishCall(callSite{
				item:     res.Item,
				sig:      tc.signature(res.Item),
				explicit: p.Last().Args,
				args:     d.Args,
				span:     x.Span,
				expected: expected,
			})
		}
		fc.report(diag.SemaNotAValue, callee.Span, "expected function, found %s `%s`", it.Kind, p.String())
		return fc.bad(x.Span)
	}
	if len(p.Segments) > 1 {
		return fc.assocCall(x, p, d.Args, expected)
	}
	fc.report(diag.SemaUnresolvedSymbol, callee.Span, "cannot find function `%s` in this scope", p.String())
	return fc.bad(x.Span)
}

// assocCall lowers `Type::name(args)`; a method with a receiver takes it
// as the first argument.
func (fc *fnCtx) assocCall(x *ast.Expr, p *ast.Path, args []ast.ExprID, expected types.TypeID) *hir.Expr {
	tc := fc.tc
	prefix := &ast.Path{Segments: p.Segments[:len(p.Segments)-1], Span: p.Span}
	selfT := tc.resolveTypePath(prefix, fc.env)
	if selfT == types.NoTypeID {
		return fc.bad(x.Span)
	}
	selfT = fc.sub(selfT)
	last := p.Last()
	m, err := tc.traits.LookupMethod(selfT, last.Name)
	if err != nil {
		tc.reportErr(err, last.Span)
		return fc.bad(x.Span)
	}
	return fc.finishCall(callSite{
		item:     m.Item,
		sig:      tc.signature(m.Item),
		explicit: last.Args,
		seed:     m.Subst,
		args:     args,
		span:     x.Span,
		expected: expected,
	})
}

func (fc *fnCtx) methodCall(x *ast.Expr, d *ast.MethodCallData, expected types.TypeID) *hir.Expr {
	tc := fc.tc
	recv := fc.expr(d.Receiver, fc.receiverHint(d))
	if fc.isBad(recv.Type) {
		return fc.bad(x.Span)
	}
	m, err := tc.traits.LookupMethod(recv.Type, d.Name)
	if err != nil {
		tc.reportErr(err, d.NameSpan)
		return fc.bad(x.Span)
	}
	sig := tc.signature(m.Item)
	if !sig.ok {
		return fc.bad(x.Span)
	}
	if !sig.hasSelf() {
		fc.report(diag.SemaNotAValue, d.NameSpan, "`%s` is an associated function, not a method", d.Name)
		return fc.bad(x.Span)
	}
	adjusted := fc.adjustReceiver(recv, m, sig)
	if adjusted == nil {
		return fc.bad(x.Span)
	}
	return fc.finishCall(callSite{
		item:     m.Item,
		sig:      sig,
		explicit: d.Generics,
		recv:     adjusted,
		seed:     m.Subst,
		args:     d.Args,
		span:     x.Span,
		expected: expected,
	})
}

// receiverHint picks the integer type of a receiver built from untyped
// integers: i32 when it has the method, else usize when that has it.
// `(1..3).get(s)` resolves against `Range<usize>` this way.
func (fc *fnCtx) receiverHint(d *ast.MethodCallData) types.TypeID {
	tc := fc.tc
	x := tc.builder.Expr(d.Receiver)
	for x != nil {
		p, ok := x.Data.(*ast.ParenData)
		if !ok {
			break
		}
		x = tc.builder.Expr(p.X)
	}
	if x == nil {
		return types.NoTypeID
	}
	wrap := func(elem types.TypeID) types.TypeID { return elem }
	switch rd := x.Data.(type) {
	case *ast.RangeData:
		if !tc.traits.RangeStruct.IsValid() || !rd.Start.IsValid() || !rd.End.IsValid() ||
			!fc.flexible(rd.Start) || !fc.flexible(rd.End) {
			return types.NoTypeID
		}
		wrap = func(elem types.TypeID) types.TypeID {
			return tc.adtType(tc.traits.RangeStruct, []types.TypeID{elem})
		}
	default:
		if !fc.flexible(d.Receiver) {
			return types.NoTypeID
		}
	}
	for _, elem := range []types.TypeID{fc.b.I32, fc.b.Usize} {
		if _, err := tc.traits.LookupMethod(wrap(elem), d.Name); err == nil {
			return wrap(elem)
		}
	}
	return types.NoTypeID
}

// adjustReceiver applies the autoderef steps found by method lookup and
// borrows the receiver for `&self` methods.
func (fc *fnCtx) adjustReceiver(recv *hir.Expr, m traits.Method, sig *signature) *hir.Expr {
	for range m.Derefs {
		recv = fc.deref(recv)
	}
	if sig.self == ast.SelfValue {
		if m.Unsize {
			fc.report(diag.MonoUnsizedArgument, recv.Span, "cannot move a value of type `%s`: the size cannot be statically determined",
				fc.tc.label(m.Self))
			return nil
		}
		return recv
	}
	mut := sig.self == ast.SelfRefMut
	if mut && recv.Kind.IsPlace() {
		fc.checkMutablePlace(recv, "borrow as mutable")
	}
	out := fc.addrOf(recv, mut)
	if m.Unsize {
		out = fc.mk(hir.ExprUnsize, fc.tc.types.Reference(m.Self, mut), recv.Span, hir.UnsizeData{X: out})
	}
	return out
}

// finishCall infers the type arguments of a call, checks the arguments and
// emits the call of the instance, extern or intrinsic.
func (fc *fnCtx) finishCall(cs callSite) *hir.Expr {
	tc := fc.tc
	sig := cs.sig
	if !sig.ok {
		return fc.bad(cs.span)
	}
	it := tc.item(cs.item)
	params := tc.paramsOf(cs.item)
	inf := mono.NewInference(tc.types, tc.symbols.Path(cs.item), params)
	for k, v := range cs.seed {
		inf.Subst[k] = v
	}
	if len(cs.explicit) > 0 {
		own := params[len(params)-it.Arity():]
		args := make([]types.TypeID, len(cs.explicit))
		for i, a := range cs.explicit {
			if args[i] = fc.typeOf(a); args[i] == types.NoTypeID {
				return fc.bad(cs.span)
			}
		}
		if err := inf.Explicit(own, args); err != nil {
			tc.reportErr(err, cs.span)
			return fc.bad(cs.span)
		}
	}
	if cs.expected != types.NoTypeID && tc.types.HasParams(sig.result) {
		inf.Unify(sig.result, cs.expected)
	}

	inputs := sig.inputs
	var lowered []*hir.Expr
	if cs.recv != nil {
		if !inf.Unify(inputs[0], cs.recv.Type) {
			fc.mismatch(cs.recv.Span, inf.Apply(inputs[0]), cs.recv.Type)
			return fc.bad(cs.span)
		}
		lowered = append(lowered, cs.recv)
		inputs = inputs[1:]
	}
	if len(cs.args) < len(inputs) || (!sig.variadic && len(cs.args) > len(inputs)) {
		fc.report(diag.SemaArgCount, cs.span, "this function takes %d argument(s) but %d were supplied", len(inputs), len(cs.args))
		return fc.bad(cs.span)
	}
	failed := false
	for i, a := range cs.args {
		if i >= len(inputs) {
			lowered = append(lowered, fc.variadicArg(a))
			continue
		}
		want := inf.Apply(inputs[i])
		if tc.types.HasParams(want) {
			want = types.NoTypeID
		}
		v := fc.expr(a, want)
		if fc.isBad(v.Type) {
			failed = true
		} else if !inf.Unify(inputs[i], v.Type) {
			fc.mismatch(v.Span, inf.Apply(inputs[i]), v.Type)
			failed = true
		}
		lowered = append(lowered, v)
	}
	if failed {
		return fc.bad(cs.span)
	}
	targs, err := inf.Complete()
	if err != nil {
		tc.reportErr(err, cs.span)
		return fc.bad(cs.span)
	}
	s := substOf(params, targs)
	for i := range sig.inputs {
		if i < len(lowered) {
			lowered[i] = fc.coerce(lowered[i], tc.types.Subst(sig.inputs[i], s))
		}
	}
	result := tc.types.Subst(sig.result, s)
	if !fc.checkCallBounds(cs.item, sig, s, cs.span) {
		return fc.bad(cs.span)
	}

	switch it.Kind {
	case symbols.ItemIntrinsic:
		fc.requireUnsafe(cs.span, "call to unsafe intrinsic `"+it.Name+"`")
		kind, _ := intrinsics.Lookup(it.Name)
		out, err := tc.lower.Lower(kind, targs, lowered, result, cs.span)
		if err != nil {
			tc.reportErr(err, cs.span)
			return fc.bad(cs.span)
		}
		return out
	case symbols.ItemExternFn:
		fc.requireUnsafe(cs.span, "call to foreign function `"+it.Name+"`")
		ext, ok := tc.externFor(cs.item)
		if !ok {
			return fc.bad(cs.span)
		}
		return fc.mk(hir.ExprCallExtern, result, cs.span, hir.ExternCallData{Extern: ext, Args: lowered})
	}
	if sig.unsafe {
		fc.requireUnsafe(cs.span, "call to unsafe function `"+it.Name+"`")
	}
	if fc.static {
		fc.report(diag.ConstNotConstant, cs.span, "calls in statics are limited to constant functions")
		return fc.bad(cs.span)
	}
	inst, ok := tc.instantiate(cs.item, targs, cs.span, fc.inst)
	if !ok {
		return fc.bad(cs.span)
	}
	return fc.mk(hir.ExprCall, result, cs.span, hir.CallData{Func: inst.Func, Args: lowered})
}

// checkCallBounds verifies where-clauses of the callee and, for methods,
// of the enclosing impl under the inferred substitution.
func (fc *fnCtx) checkCallBounds(item symbols.ItemID, sig *signature, s types.Subst, span source.Span) bool {
	tc := fc.tc
	ok := true
	for _, b := range sig.bounds {
		self := tc.types.Subst(b.Type, s)
		if _, err := tc.traits.FindImpl(b.Trait, self, tc.types.SubstAll(b.Args, s)); err != nil {
			tc.report(diag.TraitBoundNotSatisfied, span, "the trait bound `%s: %s` is not satisfied",
				tc.label(self), fc.traitLabel(b.Trait, tc.types.SubstAll(b.Args, s)))
			ok = false
		}
	}
	if im, found := tc.traits.ImplOf(tc.item(item).Parent); found {
		if err := tc.traits.CheckBounds(traits.Match{Impl: im, Subst: s}); err != nil {
			tc.reportErr(err, span)
			ok = false
		}
	}
	return ok
}

func (fc *fnCtx) traitLabel(trait symbols.ItemID, args []types.TypeID) string {
	name := fc.tc.item(trait).Name
	if len(args) == 0 {
		return name
	}
	return name + "<" + fc.tc.labels(args) + ">"
}

// variadicArg checks an extra argument of a C-variadic call; floats are
// promoted to f64 like C does.
func (fc *fnCtx) variadicArg(id ast.ExprID) *hir.Expr {
	v := fc.expr(id, types.NoTypeID)
	if v.Type == fc.b.F32 {
		return fc.mk(hir.ExprCast, fc.b.F64, v.Span, hir.CastData{Kind: hir.CastNumeric, X: v})
	}
	return v
}
