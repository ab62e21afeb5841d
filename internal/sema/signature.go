package sema

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/symbols"
	"rsfront/internal/traits"
	"rsfront/internal/types"
)

// signature is the declared interface of a callable in terms of its
// generic parameters. Inputs start with the receiver for methods.
type signature struct {
	item     symbols.ItemID
	params   []types.TypeID
	inputs   []types.TypeID
	result   types.TypeID
	self     ast.SelfKind
	selfMut  bool
	variadic bool
	unsafe   bool
	isConst  bool
	abi      string
	bounds   []traits.Bound
	env      *typeEnv
	decl     *ast.FnItem
	ok       bool
}

func (sig *signature) hasSelf() bool { return sig.self != ast.SelfNone }

func (tc *typeChecker) signature(id symbols.ItemID) *signature {
	if sig, ok := tc.sigs[id]; ok {
		return sig
	}
	it := tc.item(id)
	fn := tc.fnDecl(id)
	sig := &signature{item: id, decl: fn, ok: true}
	tc.sigs[id] = sig
	if fn == nil {
		sig.ok = false
		return sig
	}
	env := tc.envFor(id)
	sig.env = env
	sig.params = tc.paramsOf(id)
	sig.bounds = tc.ownBounds(env, id)
	sig.self = fn.Self
	sig.selfMut = fn.SelfMut
	sig.variadic = fn.Variadic
	sig.unsafe = it.Has(symbols.FlagUnsafe)
	sig.isConst = fn.Const
	sig.abi = it.ABI
	if sig.abi == "" {
		sig.abi = fn.ABI
	}

	if fn.Self != ast.SelfNone {
		if env.self == types.NoTypeID {
			tc.report(diag.SemaError, fn.SelfSpan, "`self` parameter is only allowed in associated functions")
			sig.ok = false
		} else {
			recv := env.self
			switch fn.Self {
			case ast.SelfRef:
				recv = tc.types.Reference(recv, false)
			case ast.SelfRefMut:
				recv = tc.types.Reference(recv, true)
			}
			sig.inputs = append(sig.inputs, recv)
		}
	}
	for _, p := range fn.Params {
		t := tc.resolveType(p.Type, env)
		if t == types.NoTypeID {
			sig.ok = false
		} else if !tc.types.IsSized(t) {
			tc.report(diag.MonoUnsizedArgument, p.Span, "the size of `%s` cannot be known at compilation time", tc.label(t))
			sig.ok = false
		}
		sig.inputs = append(sig.inputs, t)
	}
	sig.result = tc.types.Builtins().Unit
	if fn.Ret.IsValid() {
		if sig.result = tc.resolveType(fn.Ret, env); sig.result == types.NoTypeID {
			sig.ok = false
		}
	}
	return sig
}
