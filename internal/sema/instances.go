package sema

import (
	"strings"
	"unicode"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/hir"
	"rsfront/internal/intrinsics"
	"rsfront/internal/mono"
	"rsfront/internal/source"
	"rsfront/internal/symbols"
	"rsfront/internal/types"
)

// checkItems validates declarations that do not depend on instantiation:
// signatures, ADT bodies, intrinsic declarations and statics.
func (tc *typeChecker) checkItems() {
	tc.symbols.Items(func(id symbols.ItemID, it *symbols.Item) {
		switch it.Kind {
		case symbols.ItemIntrinsic:
			fn := tc.fnDecl(id)
			if err := intrinsics.CheckDecl(it.Name, it.Arity(), len(fn.Params), it.Span); err != nil {
				tc.reportErr(err, it.Span)
				return
			}
			tc.signature(id)
		case symbols.ItemFn:
			tc.signature(id)
		case symbols.ItemExternFn:
			if it.Arity() != 0 {
				tc.report(diag.SemaError, it.Span, "foreign items may not have type parameters")
				return
			}
			tc.signature(id)
		case symbols.ItemMethod:
			if parent := tc.item(it.Parent); parent.Kind == symbols.ItemImpl {
				tc.signature(id)
			}
		case symbols.ItemStruct, symbols.ItemEnum, symbols.ItemUnion:
			tc.adtShape(id)
		case symbols.ItemStatic:
			tc.globalFor(id)
		case symbols.ItemConst:
			if !it.Parent.IsValid() {
				tc.constType(id)
			}
		}
	})
}

// buildInstances seeds the instantiation queue with main and every
// non-generic function, then builds bodies until the queue is empty.
// Instances requested while building a body are appended to the queue.
func (tc *typeChecker) buildInstances() {
	if mainID, ok := tc.symbols.Lookup(tc.symbols.Root, "main", symbols.NSValue); !ok || tc.item(mainID).Kind != symbols.ItemFn {
		tc.report(diag.SemaNoEntrypoint, source.Span{}, "`main` function not found in crate")
	} else if tc.item(mainID).Arity() != 0 {
		tc.report(diag.SemaNoEntrypoint, tc.item(mainID).Span, "`main` function is not allowed to have generic parameters")
	} else if inst, ok := tc.instantiate(mainID, nil, source.Span{}, nil); ok {
		fn := tc.module.Func(inst.Func)
		fn.Flags |= hir.FuncEntrypoint
		tc.module.Entry = fn.ID
	}

	tc.symbols.Items(func(id symbols.ItemID, it *symbols.Item) {
		switch it.Kind {
		case symbols.ItemFn:
		case symbols.ItemMethod:
			if tc.item(it.Parent).Kind != symbols.ItemImpl {
				return
			}
		default:
			return
		}
		if len(tc.paramsOf(id)) == 0 && tc.signature(id).ok {
			tc.instantiate(id, nil, source.Span{}, nil)
		}
	})

	for {
		inst, ok := tc.mono.Next()
		if !ok {
			break
		}
		tc.buildBody(inst)
		tc.mono.Finish(inst)
	}
}

// instantiate requests the instance of item for args and allocates its
// HIR function on first request.
func (tc *typeChecker) instantiate(item symbols.ItemID, args []types.TypeID, span source.Span, parent *mono.Instance) (*mono.Instance, bool) {
	site := mono.UseSite{Span: span}
	if parent != nil {
		site.Caller = parent.Item
	}
	inst, err := tc.mono.Instantiate(item, args, site, parent)
	if err != nil {
		tc.reportErr(err, span)
		return nil, false
	}
	if inst.Func.IsValid() {
		return inst, true
	}
	sig := tc.signature(item)
	fn := &hir.Func{
		Name:   tc.instanceName(item, inst.TypeArgs),
		Item:   uint32(item),
		Args:   inst.TypeArgs,
		Result: tc.types.Subst(sig.result, inst.Subst),
		Span:   tc.item(item).Span,
	}
	if sig.unsafe {
		fn.Flags |= hir.FuncUnsafe
	}
	if sig.isConst {
		fn.Flags |= hir.FuncConst
	}
	inst.Func = tc.module.AddFunc(fn)
	return inst, true
}

// instanceName renders an instance the way diagnostics and dumps show it:
// `test::<u32>`, `<usize as SliceIndex<[i32]>>::get`, `Foo<i32>::new`.
func (tc *typeChecker) instanceName(item symbols.ItemID, args []types.TypeID) string {
	it := tc.item(item)
	own := args
	var sb strings.Builder
	im, isImplMethod := tc.traits.ImplOf(it.Parent)
	if it.Kind == symbols.ItemMethod && isImplMethod {
		n := min(len(im.Params), len(args))
		s := substOf(im.Params, args[:n])
		own = args[n:]
		self := tc.label(tc.types.Subst(im.Self, s))
		if im.Inherent() {
			if !identLike(self) {
				self = "<" + self + ">"
			}
			sb.WriteString(self)
		} else {
			sb.WriteString("<" + self + " as " + tc.item(im.Trait).Name)
			if len(im.TraitArgs) > 0 {
				sb.WriteString("<" + tc.labels(tc.types.SubstAll(im.TraitArgs, s)) + ">")
			}
			sb.WriteString(">")
		}
		sb.WriteString("::" + it.Name)
	} else {
		sb.WriteString(tc.symbols.Path(item))
	}
	if len(own) > 0 {
		sb.WriteString("::<" + tc.labels(own) + ">")
	}
	return sb.String()
}

func (tc *typeChecker) labels(ids []types.TypeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = tc.label(id)
	}
	return strings.Join(parts, ", ")
}

func identLike(s string) bool {
	for _, r := range s {
		return unicode.IsLetter(r) || r == '_'
	}
	return false
}

// externFor declares a foreign function in the module once.
func (tc *typeChecker) externFor(id symbols.ItemID) (hir.ExternID, bool) {
	if ext, ok := tc.externs[id]; ok {
		return ext, ext.IsValid()
	}
	sig := tc.signature(id)
	if !sig.ok {
		tc.externs[id] = hir.NoExternID
		return hir.NoExternID, false
	}
	ext := tc.module.AddExtern(&hir.Extern{
		Name:     tc.item(id).Name,
		ABI:      sig.abi,
		Params:   sig.inputs,
		Result:   sig.result,
		Variadic: sig.variadic,
		Span:     tc.item(id).Span,
	})
	tc.externs[id] = ext
	return ext, true
}

// globalFor lowers a static item into a module global once.
func (tc *typeChecker) globalFor(id symbols.ItemID) (hir.GlobalID, bool) {
	if g, ok := tc.globals[id]; ok {
		return g, g.IsValid()
	}
	tc.globals[id] = hir.NoGlobalID
	it := tc.item(id)
	d, _ := tc.decl(id).Data.(*ast.ConstItem)
	t := tc.constType(id)
	if d == nil || t == types.NoTypeID {
		return hir.NoGlobalID, false
	}
	if !d.Value.IsValid() {
		tc.report(diag.SemaUninitialized, it.Span, "free static item without body")
		return hir.NoGlobalID, false
	}
	fc := tc.staticContext(id)
	init := fc.coerce(fc.expr(d.Value, t), t)
	g := tc.module.AddGlobal(&hir.Global{
		Name:    tc.symbols.Path(id),
		Type:    t,
		Mutable: d.Mutable,
		Init:    init,
		Span:    it.Span,
	})
	tc.globals[id] = g
	return g, true
}
