package sema

import (
	"context"
	"fmt"

	"rsfront/internal/ast"
	"rsfront/internal/consteval"
	"rsfront/internal/diag"
	"rsfront/internal/hir"
	"rsfront/internal/intrinsics"
	"rsfront/internal/layout"
	"rsfront/internal/mono"
	"rsfront/internal/source"
	"rsfront/internal/symbols"
	"rsfront/internal/trace"
	"rsfront/internal/traits"
	"rsfront/internal/types"
)

// Options configure a semantic pass over a compilation unit.
type Options struct {
	Reporter diag.Reporter
	Target   layout.Target
	// MaxMonoDepth bounds nested instantiations; zero uses mono.DefaultMaxDepth.
	MaxMonoDepth int
	// Name of the produced module.
	Name string
}

// Result stores the semantic artefacts of a unit. Module is nil when errors
// were reported.
type Result struct {
	Module  *hir.Module
	Symbols *symbols.Table
	Types   *types.Interner
	Traits  *traits.Resolver
	Mono    *mono.Instantiator
	Layout  *layout.LayoutEngine
}

// Check type-checks every reachable function of table and lowers it to HIR.
func Check(ctx context.Context, table *symbols.Table, opts Options) *Result {
	if opts.Target.PtrSize == 0 {
		opts.Target = layout.X86_64LinuxGNU()
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "sema", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	tc := newTypeChecker(table, opts)
	tc.tracer = tracer
	tc.parentSpan = span.ID()
	tc.run()

	res := &Result{
		Symbols: table,
		Types:   tc.types,
		Traits:  tc.traits,
		Mono:    tc.mono,
		Layout:  tc.layout,
	}
	span.WithExtra("instances", fmt.Sprint(tc.mono.Len()))
	if !tc.failed {
		res.Module = tc.module
	}
	return res
}

type typeChecker struct {
	builder  *ast.Builder
	symbols  *symbols.Table
	types    *types.Interner
	traits   *traits.Resolver
	mono     *mono.Instantiator
	layout   *layout.LayoutEngine
	lower    *intrinsics.Lowerer
	consts   *consteval.Evaluator
	module   *hir.Module
	reporter diag.Reporter
	opts     Options

	tracer     trace.Tracer
	parentSpan uint64

	params    map[symbols.ItemID][]types.TypeID
	sigs      map[symbols.ItemID]*signature
	sigBusy   map[symbols.ItemID]bool
	envs      map[symbols.ItemID]*typeEnv
	externs   map[symbols.ItemID]hir.ExternID
	globals   map[symbols.ItemID]hir.GlobalID
	pending   []pendingLen
	constBusy map[symbols.ItemID]bool
	shapes    map[symbols.ItemID]*adtShape

	failed bool
}

func newTypeChecker(table *symbols.Table, opts Options) *typeChecker {
	in := types.NewInterner()
	tc := &typeChecker{
		builder:   table.AST,
		symbols:   table,
		types:     in,
		reporter:  opts.Reporter,
		opts:      opts,
		params:    make(map[symbols.ItemID][]types.TypeID),
		sigs:      make(map[symbols.ItemID]*signature),
		sigBusy:   make(map[symbols.ItemID]bool),
		envs:      make(map[symbols.ItemID]*typeEnv),
		externs:   make(map[symbols.ItemID]hir.ExternID),
		globals:   make(map[symbols.ItemID]hir.GlobalID),
		constBusy: make(map[symbols.ItemID]bool),
		shapes:    make(map[symbols.ItemID]*adtShape),
	}
	tc.traits = traits.New(in, table)
	tc.mono = mono.New(table, in, tc.paramsOf, mono.Options{MaxDepth: opts.MaxMonoDepth})
	tc.layout = layout.New(opts.Target, in)
	tc.lower = intrinsics.NewLowerer(in, tc.layout)
	tc.consts = consteval.New(table.AST, nil, opts.Target.PtrSize)
	name := opts.Name
	if name == "" {
		name = "main"
	}
	tc.module = &hir.Module{Name: name, Types: in}
	in.SetHooks(types.Hooks{
		FillAdt:   tc.fillAdt,
		Normalize: tc.traits.Hook(),
		ArrayLen:  tc.pendingArrayLen,
	})
	return tc
}

func (tc *typeChecker) run() {
	tc.pass("impls", tc.registerImpls)
	tc.pass("items", tc.checkItems)
	if tc.failed {
		return
	}
	tc.pass("instances", tc.buildInstances)
	if tc.failed {
		return
	}
	if err := hir.Validate(tc.module); err != nil {
		tc.report(diag.SemaError, source.Span{}, "internal: %v", err)
	}
}

func (tc *typeChecker) pass(name string, fn func()) {
	span := trace.Begin(tc.tracer, trace.ScopeModule, "sema:"+name, tc.parentSpan)
	fn()
	span.End("")
}

func (tc *typeChecker) report(code diag.Code, span source.Span, format string, args ...any) {
	tc.failed = true
	diag.ReportError(tc.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

func (tc *typeChecker) warn(code diag.Code, span source.Span, format string, args ...any) {
	diag.ReportWarning(tc.reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

// reportErr maps typed errors of the lower layers to diagnostics.
func (tc *typeChecker) reportErr(err error, span source.Span) {
	switch e := err.(type) {
	case *mono.Error:
		tc.report(e.Code(), span, "%s", e.Error())
	case *traits.Error:
		tc.report(e.Code(), span, "%s", e.Error())
	case *intrinsics.Error:
		if e.Span.Empty() {
			e.Span = span
		}
		tc.report(e.Code, e.Span, "%s", e.Msg)
	case *consteval.Error:
		if e.Span.Empty() {
			e.Span = span
		}
		tc.report(e.Code, e.Span, "%s", e.Msg)
	case *layout.LayoutError:
		tc.report(diag.LayoutRecursive, span, "%s", e.Error())
	default:
		tc.report(diag.SemaError, span, "%v", err)
	}
}

func (tc *typeChecker) label(t types.TypeID) string { return types.Label(tc.types, t) }

func (tc *typeChecker) item(id symbols.ItemID) *symbols.Item { return tc.symbols.Item(id) }

// decl returns the AST declaration of a symbol, or nil for variants.
func (tc *typeChecker) decl(id symbols.ItemID) *ast.Item {
	it := tc.item(id)
	if it == nil || !it.Decl.IsValid() {
		return nil
	}
	return tc.builder.Item(it.Decl)
}

func (tc *typeChecker) fnDecl(id symbols.ItemID) *ast.FnItem {
	d := tc.decl(id)
	if d == nil {
		return nil
	}
	fn, _ := d.Data.(*ast.FnItem)
	return fn
}

func tracePass(tc *typeChecker, name string) *trace.Span {
	return trace.Begin(tc.tracer, trace.ScopeNode, name, tc.parentSpan)
}
