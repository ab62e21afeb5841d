package driver

import (
	"context"
	"fmt"

	"fortio.org/safecast"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/hir"
	"rsfront/internal/layout"
	"rsfront/internal/macro"
	"rsfront/internal/observ"
	"rsfront/internal/parser"
	"rsfront/internal/project"
	"rsfront/internal/sema"
	"rsfront/internal/source"
	"rsfront/internal/symbols"
	"rsfront/internal/trace"
)

// Stage определяет, до какой фазы идёт компиляция
type Stage string

const (
	StageTokenize Stage = "tokenize"
	StageSyntax   Stage = "syntax"
	StageExpand   Stage = "expand"
	StageSema     Stage = "sema"
)

// Options configures one compilation.
type Options struct {
	Stage            Stage
	MaxDiagnostics   int
	Target           layout.Target
	MacroDepth       int
	MonoDepth        int
	IgnoreWarnings   bool
	WarningsAsErrors bool
	EnableTimings    bool
	Observer         PhaseObserver
}

// OptionsFromConfig maps rsfront.toml settings onto driver options.
func OptionsFromConfig(cfg project.Config) Options {
	return Options{
		Stage:          StageSema,
		MaxDiagnostics: cfg.Limits.MaxDiagnostics,
		Target:         cfg.LayoutTarget(),
		MacroDepth:     cfg.Limits.MacroRecursion,
		MonoDepth:      cfg.Limits.MonoDepth,
	}
}

// fingerprint identifies the settings that influence diagnostics.
func (o Options) fingerprint() string {
	return fmt.Sprintf("stage=%s;max=%d;ptr=%d;macro=%d;mono=%d;iw=%t;wae=%t",
		o.Stage, o.MaxDiagnostics, o.Target.PtrSize, o.MacroDepth, o.MonoDepth, o.IgnoreWarnings, o.WarningsAsErrors)
}

// Result holds everything one compilation produced.
type Result struct {
	FileSet    *source.FileSet
	File       *source.File
	Bag        *diag.Bag
	Builder    *ast.Builder
	ASTFile    ast.FileID
	Expansions []macro.Expansion
	Sema       *sema.Result
	Timing     *observ.Report
}

// Module returns the checked HIR, or nil when compilation stopped early or
// failed.
func (r *Result) Module() *hir.Module {
	if r == nil || r.Sema == nil {
		return nil
	}
	return r.Sema.Module
}

// Compile loads path from disk and runs the pipeline up to opts.Stage.
func Compile(ctx context.Context, path string, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return compileFile(ctx, fs, fileID, opts)
}

// CompileSource runs the pipeline over an in-memory source.
func CompileSource(ctx context.Context, name string, src []byte, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	return compileFile(ctx, fs, fs.AddVirtual(name, src), opts)
}

func compileFile(ctx context.Context, fs *source.FileSet, fileID source.FileID, opts Options) (*Result, error) {
	if opts.Stage == "" {
		opts.Stage = StageSema
	}
	if opts.Target.PtrSize == 0 {
		opts.Target = layout.X86_64LinuxGNU()
	}
	tracer := trace.FromContext(ctx)
	file := fs.Get(fileID)
	root := trace.Begin(tracer, trace.ScopeDriver, "compile", trace.CurrentSpan(ctx).SpanID).WithExtra("file", file.Path)
	defer root.End("")

	res := &Result{
		FileSet: fs,
		File:    file,
		Bag:     diag.NewBag(opts.MaxDiagnostics),
	}
	var timer *observ.Timer
	if opts.EnableTimings {
		timer = observ.NewTimer()
	}
	ph := phases{timer: timer, tracer: tracer, parent: root.ID(), observer: opts.Observer}
	rep := diag.BagReporter{Bag: res.Bag}

	if opts.Stage == StageTokenize {
		idx := ph.begin(observ.PhaseTokenize)
		tokens := tokenizeFile(file, res.Bag)
		ph.end(idx, fmt.Sprintf("tokens=%d", len(tokens)))
		return res.finish(opts, timer), nil
	}

	maxErrors, err := safecast.Conv[uint](opts.MaxDiagnostics)
	if err != nil {
		return nil, fmt.Errorf("max diagnostics: %w", err)
	}
	popts := parser.Options{Reporter: rep, MaxErrors: maxErrors}

	idx := ph.begin(observ.PhaseParse)
	res.Builder = ast.NewBuilder(ast.Hints{})
	prelude := parser.ParseFile(fs, fs.AddVirtual(sema.PreludeName, sema.PreludeSource()), res.Builder, popts)
	user := parser.ParseFile(fs, fileID, res.Builder, popts)
	res.ASTFile = user.File
	items := 0
	if f := res.Builder.File(user.File); f != nil {
		items = len(f.Items)
	}
	ph.end(idx, fmt.Sprintf("items=%d", items))
	if opts.Stage == StageSyntax || res.Bag.HasErrors() {
		return res.finish(opts, timer), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx = ph.begin(observ.PhaseExpand)
	_, res.Expansions = macro.ExpandFile(res.Builder, user.File, macro.Options{
		Reporter: rep,
		Files:    fs,
		MaxDepth: opts.MacroDepth,
	})
	ph.end(idx, fmt.Sprintf("expansions=%d", len(res.Expansions)))
	if opts.Stage == StageExpand || res.Bag.HasErrors() {
		return res.finish(opts, timer), nil
	}

	idx = ph.begin(observ.PhaseCollect)
	table := symbols.NewTable(res.Builder)
	table.CollectFile(prelude.File, symbols.CollectOptions{Reporter: rep, Prelude: true})
	table.CollectFile(user.File, symbols.CollectOptions{Reporter: rep})
	ph.end(idx, "")
	if res.Bag.HasErrors() {
		return res.finish(opts, timer), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx = ph.begin(observ.PhaseSema)
	sctx := trace.WithSpanContext(ctx, trace.SpanContext{SpanID: ph.spans[idx].ID()})
	res.Sema = sema.Check(sctx, table, sema.Options{
		Reporter:     rep,
		Target:       opts.Target,
		MaxMonoDepth: opts.MonoDepth,
	})
	note := ""
	if m := res.Sema.Module; m != nil {
		note = fmt.Sprintf("funcs=%d", len(m.Funcs))
	}
	ph.end(idx, note)
	return res.finish(opts, timer), nil
}

// finish applies warning policy, attaches timings and sorts diagnostics.
func (r *Result) finish(opts Options, timer *observ.Timer) *Result {
	if opts.IgnoreWarnings || opts.WarningsAsErrors {
		filtered := diag.NewBag(opts.MaxDiagnostics)
		for _, d := range r.Bag.Items() {
			if d.Severity == diag.SevWarning {
				if opts.IgnoreWarnings {
					continue
				}
				d.Severity = diag.SevError
			}
			filtered.Add(d)
		}
		r.Bag = filtered
		if filtered.HasErrors() && r.Sema != nil {
			r.Sema.Module = nil
		}
	}
	if timer != nil {
		report := timer.Report()
		r.Timing = &report
		appendTimingDiagnostic(r.Bag, timingPayload{Kind: "compile", Path: r.File.Path, TotalMS: report.TotalMS, Phases: report.Phases})
	}
	r.Bag.Sort()
	return r
}
