package sema

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/hir"
	"rsfront/internal/source"
	"rsfront/internal/symbols"
	"rsfront/internal/types"
)

func (fc *fnCtx) block(x *ast.Expr, d *ast.BlockData, expected types.TypeID) *hir.Expr {
	tc := fc.tc
	fc.pushScope()
	defer fc.popScope()
	if d.Unsafe {
		fc.unsafeDepth++
		defer func() { fc.unsafeDepth-- }()
	}
	out := hir.BlockData{Unsafe: d.Unsafe}
	diverges := false
	for _, sid := range d.Stmts {
		st := tc.builder.Stmt(sid)
		if st == nil {
			continue
		}
		switch sd := st.Data.(type) {
		case *ast.LetData:
			if s, ok := fc.let(st, sd); ok {
				out.Stmts = append(out.Stmts, s)
				if l := s.Data.(hir.LetData); l.Init != nil && tc.types.KindOf(l.Init.Type) == types.KindNever {
					diverges = true
				}
			}
		case *ast.ExprStmtData:
			v := fc.expr(sd.X, types.NoTypeID)
			if fc.isBad(v.Type) {
				continue
			}
			if tc.types.KindOf(v.Type) == types.KindNever {
				diverges = true
			} else if !sd.Semi && !tc.types.IsUnit(v.Type) {
				// блок без `;` в середине обязан давать ()
				v = fc.coerce(v, fc.b.Unit)
			}
			out.Stmts = append(out.Stmts, hir.Stmt{Kind: hir.StmtExpr, Span: st.Span, Data: hir.ExprStmtData{X: v}})
		}
	}
	t := fc.b.Unit
	if d.Tail.IsValid() {
		out.Tail = fc.expr(d.Tail, expected)
		t = out.Tail.Type
	} else if diverges {
		t = fc.b.Never
	}
	return fc.mk(hir.ExprBlock, t, x.Span, out)
}

// let lowers `let p [: T] [= init];`. Without an initializer the binding
// must be assigned before its first read.
func (fc *fnCtx) let(st *ast.Stmt, d *ast.LetData) (hir.Stmt, bool) {
	tc := fc.tc
	if fc.static {
		fc.report(diag.ConstNotConstant, st.Span, "`let` bindings are not allowed in constant initializers")
		return hir.Stmt{}, false
	}
	declared := types.NoTypeID
	if d.Type.IsValid() {
		if declared = fc.typeOf(d.Type); declared == types.NoTypeID {
			return hir.Stmt{}, false
		}
	}
	var init *hir.Expr
	if d.Init.IsValid() {
		init = fc.expr(d.Init, declared)
		if fc.isBad(init.Type) {
			init = nil
		} else if declared != types.NoTypeID {
			init = fc.coerce(init, declared)
		}
	}
	t := declared
	if t == types.NoTypeID && init != nil {
		t = init.Type
	}

	p := tc.builder.Pat(d.Pat)
	switch pd := p.Data.(type) {
	case *ast.WildPat:
		if init == nil {
			return hir.Stmt{}, false
		}
		return hir.Stmt{Kind: hir.StmtLet, Span: st.Span, Data: hir.LetData{Local: hir.NoLocalID, Init: init}}, true
	case *ast.BindPat:
		if pd.Ref {
			fc.report(diag.SemaBadPattern, p.Span, "`ref` bindings are not supported")
			return hir.Stmt{}, false
		}
		if d.Init.IsValid() && init == nil {
			// инициализатор с ошибкой: имя всё равно объявляем, чтобы не было каскада
			t = fc.b.Invalid
		}
		l := fc.fn.NewLocal(hir.Local{Name: pd.Name, Type: t, Mutable: pd.Mut, Span: p.Span})
		fc.declare(pd.Name, l)
		if declared == types.NoTypeID && init != nil && isUnsuffixedIntLit(tc.builder, d.Init) {
			fc.bindIntVar(l, init, d.Init)
		}
		if !d.Init.IsValid() {
			fc.initialized[l] = false
		}
		return hir.Stmt{Kind: hir.StmtLet, Span: st.Span, Data: hir.LetData{Local: l, Init: init}}, true
	}
	fc.report(diag.SemaBadPattern, p.Span, "refutable pattern in local binding")
	return hir.Stmt{}, false
}

func (fc *fnCtx) ifExpr(x *ast.Expr, d *ast.IfData, expected types.TypeID) *hir.Expr {
	cond := fc.coerce(fc.expr(d.Cond, fc.b.Bool), fc.b.Bool)
	if !d.Else.IsValid() {
		then := fc.expr(d.Then, fc.b.Unit)
		then = fc.coerce(then, fc.b.Unit)
		return fc.mk(hir.ExprIf, fc.b.Unit, x.Span, hir.IfData{Cond: cond, Then: then})
	}
	then := fc.expr(d.Then, expected)
	hint := expected
	if hint == types.NoTypeID && fc.tc.types.KindOf(then.Type) != types.KindNever && !fc.isBad(then.Type) {
		hint = then.Type
	}
	els := fc.expr(d.Else, hint)
	t, then, els := fc.unify(then, els)
	return fc.mk(hir.ExprIf, t, x.Span, hir.IfData{Cond: cond, Then: then, Else: els})
}

// while lowers `while c { b }` to `loop { if c { b } else { break } }`.
func (fc *fnCtx) while(x *ast.Expr, d *ast.WhileData) *hir.Expr {
	cond := fc.coerce(fc.expr(d.Cond, fc.b.Bool), fc.b.Bool)
	fc.loops = append(fc.loops, &loopCtx{result: fc.b.Unit, isWhile: true})
	body := fc.coerce(fc.expr(d.Body, fc.b.Unit), fc.b.Unit)
	fc.loops = fc.loops[:len(fc.loops)-1]
	brk := fc.mk(hir.ExprBreak, fc.b.Never, x.Span, hir.BreakData{})
	step := fc.mk(hir.ExprIf, fc.b.Unit, x.Span, hir.IfData{Cond: cond, Then: body, Else: brk})
	return fc.mk(hir.ExprLoop, fc.b.Unit, x.Span, hir.LoopData{Body: step})
}

func (fc *fnCtx) loop(x *ast.Expr, d *ast.LoopData, expected types.TypeID) *hir.Expr {
	lc := &loopCtx{result: expected}
	fc.loops = append(fc.loops, lc)
	body := fc.coerce(fc.expr(d.Body, fc.b.Unit), fc.b.Unit)
	fc.loops = fc.loops[:len(fc.loops)-1]
	t := fc.b.Never
	if lc.hasBreak {
		t = lc.result
		if t == types.NoTypeID {
			t = fc.b.Unit
		}
	}
	return fc.mk(hir.ExprLoop, t, x.Span, hir.LoopData{Body: body})
}

func (fc *fnCtx) breakExpr(x *ast.Expr, d *ast.BreakData) *hir.Expr {
	if len(fc.loops) == 0 {
		fc.report(diag.SemaBreakOutsideLoop, x.Span, "`break` outside of a loop")
		return fc.bad(x.Span)
	}
	lc := fc.loops[len(fc.loops)-1]
	lc.hasBreak = true
	var v *hir.Expr
	if d.Value.IsValid() {
		if lc.isWhile {
			fc.report(diag.SemaBreakOutsideLoop, x.Span, "`break` with value from a `while` loop")
			return fc.bad(x.Span)
		}
		v = fc.expr(d.Value, lc.result)
		if fc.isBad(v.Type) {
			return fc.bad(x.Span)
		}
	} else {
		v = fc.unit(x.Span)
	}
	switch {
	case lc.result == types.NoTypeID:
		lc.result = v.Type
	default:
		v = fc.coerce(v, lc.result)
	}
	if lc.isWhile {
		v = nil
	}
	return fc.mk(hir.ExprBreak, fc.b.Never, x.Span, hir.BreakData{Value: v})
}

func (fc *fnCtx) continueExpr(x *ast.Expr) *hir.Expr {
	if len(fc.loops) == 0 {
		fc.report(diag.SemaBreakOutsideLoop, x.Span, "`continue` outside of a loop")
		return fc.bad(x.Span)
	}
	return fc.mk(hir.ExprContinue, fc.b.Never, x.Span, hir.ContinueData{})
}

func (fc *fnCtx) returnExpr(x *ast.Expr, d *ast.ReturnData) *hir.Expr {
	if fc.static {
		fc.report(diag.ConstNotConstant, x.Span, "`return` is not allowed in constant initializers")
		return fc.bad(x.Span)
	}
	var v *hir.Expr
	if d.Value.IsValid() {
		v = fc.expr(d.Value, fc.result)
	} else {
		v = fc.unit(x.Span)
	}
	if !fc.isBad(v.Type) {
		v = fc.coerce(v, fc.result)
	}
	return fc.mk(hir.ExprReturn, fc.b.Never, x.Span, hir.ReturnData{Value: v})
}

func (fc *fnCtx) match(x *ast.Expr, d *ast.MatchData, expected types.TypeID) *hir.Expr {
	in := fc.tc.types
	scrut := fc.expr(d.Scrutinee, types.NoTypeID)
	if fc.isBad(scrut.Type) {
		return fc.bad(x.Span)
	}
	arms := make([]hir.MatchArm, 0, len(d.Arms))
	t := expected
	failed := false
	for _, a := range d.Arms {
		fc.pushScope()
		pat := fc.pattern(a.Pat, scrut.Type)
		var guard *hir.Expr
		if a.Guard.IsValid() {
			guard = fc.coerce(fc.expr(a.Guard, fc.b.Bool), fc.b.Bool)
		}
		body := fc.expr(a.Body, t)
		fc.popScope()
		if pat == nil || fc.isBad(body.Type) {
			failed = true
			continue
		}
		if t == types.NoTypeID && in.KindOf(body.Type) != types.KindNever {
			t = body.Type
		}
		arms = append(arms, hir.MatchArm{Pat: pat, Guard: guard, Body: body, Span: a.Span})
	}
	if failed {
		return fc.bad(x.Span)
	}
	if t == types.NoTypeID {
		t = fc.b.Never
	}
	for i := range arms {
		arms[i].Body = fc.coerce(arms[i].Body, t)
	}
	return fc.mk(hir.ExprMatch, t, x.Span, hir.MatchData{Scrutinee: scrut, Arms: arms})
}

// pattern lowers a match pattern against a value of type t and declares
// its bindings in the current scope. Nil means an error was reported.
func (fc *fnCtx) pattern(id ast.PatID, t types.TypeID) *hir.Pat {
	tc := fc.tc
	p := tc.builder.Pat(id)
	switch d := p.Data.(type) {
	case *ast.WildPat:
		return &hir.Pat{Kind: hir.PatWild, Type: t, Span: p.Span}
	case *ast.BindPat:
		if !d.Mut && !d.Ref {
			if v, ok := fc.unitVariantNamed(d.Name, t); ok {
				return fc.variantPat(v, &ast.Path{Segments: []ast.PathSegment{{Name: d.Name, Span: p.Span}}, Span: p.Span}, nil, t, p.Span)
			}
		}
		if d.Ref {
			fc.report(diag.SemaBadPattern, p.Span, "`ref` bindings are not supported")
			return nil
		}
		l := fc.fn.NewLocal(hir.Local{Name: d.Name, Type: t, Mutable: d.Mut, Span: p.Span})
		fc.declare(d.Name, l)
		return &hir.Pat{Kind: hir.PatBind, Type: t, Span: p.Span, Local: l}
	case *ast.LitPat:
		v := fc.expr(d.Lit, t)
		if fc.isBad(v.Type) {
			return nil
		}
		if v.Type != t {
			fc.mismatch(v.Span, t, v.Type)
			return nil
		}
		lit, ok := literalValue(v)
		if !ok {
			fc.report(diag.SemaBadPattern, p.Span, "expected a literal pattern")
			return nil
		}
		return &hir.Pat{Kind: hir.PatLiteral, Type: t, Span: p.Span, Value: lit}
	case *ast.PathPat:
		v, ok := fc.variantOf(&d.Path, t, p.Span)
		if !ok {
			return nil
		}
		return fc.variantPat(v, &d.Path, nil, t, p.Span)
	case *ast.TupleStructPat:
		v, ok := fc.variantOf(&d.Path, t, p.Span)
		if !ok {
			return nil
		}
		return fc.variantPat(v, &d.Path, d.Elems, t, p.Span)
	}
	fc.report(diag.SemaBadPattern, p.Span, "unsupported pattern")
	return nil
}

// literalValue folds a literal or a negated integer literal.
func literalValue(x *hir.Expr) (hir.LiteralData, bool) {
	switch d := x.Data.(type) {
	case hir.LiteralData:
		return d, true
	case hir.UnaryData:
		inner, ok := d.X.Data.(hir.LiteralData)
		if !ok || d.Op != ast.UnNeg {
			return hir.LiteralData{}, false
		}
		switch inner.Kind {
		case hir.LiteralInt:
			inner.Bits = -inner.Bits
		case hir.LiteralFloat:
			inner.Float = -inner.Float
		default:
			return hir.LiteralData{}, false
		}
		return inner, true
	}
	return hir.LiteralData{}, false
}

// unitVariantNamed resolves a bare identifier pattern naming a unit
// variant of t's enum, as `None` in `match opt { None => .. }`.
func (fc *fnCtx) unitVariantNamed(name string, t types.TypeID) (symbols.ItemID, bool) {
	tc := fc.tc
	info, ok := tc.types.AdtHeader(t)
	if !ok || info.Kind != types.AdtEnum {
		return symbols.NoItemID, false
	}
	id, ok := tc.symbols.Lookup(fc.env.scope, name, symbols.NSValue)
	if !ok {
		return symbols.NoItemID, false
	}
	it := tc.item(id)
	if it.Kind != symbols.ItemVariant || it.Parent != symbols.ItemID(info.Item) || it.Has(symbols.FlagTupleVariant) {
		return symbols.NoItemID, false
	}
	return id, true
}

func (fc *fnCtx) variantOf(p *ast.Path, t types.TypeID, span source.Span) (symbols.ItemID, bool) {
	tc := fc.tc
	res, ok := tc.symbols.ResolvePath(fc.env.scope, pathNames(p), symbols.NSValue)
	if !ok || res.Consumed != len(p.Segments) {
		fc.report(diag.SemaUnresolvedSymbol, span, "cannot find variant `%s` in this scope", p.String())
		return symbols.NoItemID, false
	}
	it := tc.item(res.Item)
	if it.Kind != symbols.ItemVariant {
		fc.report(diag.SemaBadPattern, span, "expected enum variant, found %s `%s`", it.Kind, p.String())
		return symbols.NoItemID, false
	}
	info, ok := tc.types.AdtHeader(t)
	if !ok || symbols.ItemID(info.Item) != it.Parent {
		fc.report(diag.SemaTypeMismatch, span, "mismatched types: expected `%s`, found enum `%s`", tc.label(t), tc.item(it.Parent).Name)
		return symbols.NoItemID, false
	}
	return res.Item, true
}

func (fc *fnCtx) variantPat(item symbols.ItemID, p *ast.Path, elems []ast.PatID, t types.TypeID, span source.Span) *hir.Pat {
	tc := fc.tc
	v := tc.item(item)
	info, _ := tc.types.AdtInfo(t)
	fields := info.Variants[v.Index].Fields
	if len(elems) != len(fields) {
		fc.report(diag.SemaBadPattern, span, "this pattern has %d field(s), but the corresponding variant `%s` has %d field(s)",
			len(elems), p.String(), len(fields))
		return nil
	}
	out := &hir.Pat{Kind: hir.PatVariant, Type: t, Span: span, Variant: v.Index, Name: v.Name}
	for i, e := range elems {
		sub := fc.pattern(e, fields[i])
		if sub == nil {
			return nil
		}
		out.Fields = append(out.Fields, sub)
	}
	return out
}
