package fuzztests

import (
	"context"
	"testing"
	"time"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/driver"
	"rsfront/internal/macro"
	"rsfront/internal/parser"
	"rsfront/internal/source"
	"rsfront/internal/testkit"
)

// pipelineTimeout bounds one input; exceeding it points at a hang in
// recovery, expansion or monomorphization.
const pipelineTimeout = 5 * time.Second

func FuzzParserBuildsAST(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampSeed(input)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.rs", input)

		bag := diag.NewBag(128)
		reporter := diag.BagReporter{Bag: bag}
		builder := ast.NewBuilder(ast.Hints{})
		res := parser.ParseFile(fs, fileID, builder, parser.Options{Reporter: reporter, MaxErrors: 128})
		if !bag.HasErrors() {
			if err := testkit.CheckSpanInvariants(builder, res.File, fs.Get(fileID)); err != nil {
				t.Fatalf("span invariant: %v", err)
			}
		}
		macro.ExpandFile(builder, res.File, macro.Options{Reporter: reporter, Files: fs})
	})
}

// FuzzPipelineNoHang runs the whole frontend and fails if it does not
// finish in time.
func FuzzPipelineNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Add([]byte("fn main() { let x = 1\nlet y = 2; }"))
	f.Add([]byte("fn f<T>(x: T) { f::<(T, T)>((x, x)) }\nfn main() { f(1u8) }"))
	f.Add([]byte("macro_rules! a { ($($t:tt)*) => { a!($($t)* $($t)*) }; }\nfn main() { a!(x); }"))
	f.Add([]byte("const A: usize = B; const B: usize = A; fn main() {}"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampSeed(input)

		ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = driver.CompileSource(ctx, "fuzz.rs", input, driver.Options{
				Stage:          driver.StageSema,
				MaxDiagnostics: 128,
			})
		}()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("pipeline hung on %d bytes of input", len(input))
		}
	})
}
