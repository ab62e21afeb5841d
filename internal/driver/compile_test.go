package driver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rsfront/internal/diag"
)

const okProgram = `
fn id<T>(x: T) -> T { x }
fn main() -> i32 {
    let a = id(2);
    let b = id(3u8);
    a + b as i32 - 5
}
`

const unsafeProgram = `
extern "C" { fn puts(s: *const i8) -> i32; }
fn main() -> i32 {
    puts("hi\0" as *const str as *const i8);
    0
}
`

func TestCompileSourceStages(t *testing.T) {
	tests := []struct {
		stage      Stage
		wantModule bool
		wantAST    bool
	}{
		{StageTokenize, false, false},
		{StageSyntax, false, true},
		{StageExpand, false, true},
		{StageSema, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			res, err := CompileSource(context.Background(), "main.rs", []byte(okProgram), Options{Stage: tt.stage})
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			if res.Bag.HasErrors() {
				t.Fatalf("unexpected diagnostics: %+v", res.Bag.Items())
			}
			if got := res.Module() != nil; got != tt.wantModule {
				t.Fatalf("module present = %v, want %v", got, tt.wantModule)
			}
			if got := res.Builder != nil; got != tt.wantAST {
				t.Fatalf("AST present = %v, want %v", got, tt.wantAST)
			}
		})
	}
}

func TestCompileSourceInstances(t *testing.T) {
	res, err := CompileSource(context.Background(), "main.rs", []byte(okProgram), Options{})
	if err != nil {
		t.Fatal(err)
	}
	m := res.Module()
	if m == nil {
		t.Fatalf("no module: %+v", res.Bag.Items())
	}
	if m.FindFunc("id::<i32>") == nil || m.FindFunc("id::<u8>") == nil {
		var names []string
		for _, f := range m.Funcs {
			names = append(names, f.Name)
		}
		t.Fatalf("missing instances, have %s", strings.Join(names, ", "))
	}
}

func TestCompileStopsOnErrors(t *testing.T) {
	res, err := CompileSource(context.Background(), "main.rs", []byte(`fn main() { let x: bool = 1; }`), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Bag.HasCode(diag.SemaTypeMismatch) {
		t.Fatalf("expected mismatch, got %+v", res.Bag.Items())
	}
	if res.Module() != nil {
		t.Fatal("module must be dropped on errors")
	}

	res, err = CompileSource(context.Background(), "main.rs", []byte(`fn main( {`), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Bag.HasErrors() || res.Sema != nil {
		t.Fatalf("syntax errors must stop before sema: %+v", res.Bag.Items())
	}
}

func TestWarningPolicy(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantCode   bool
		wantErrors bool
	}{
		{"default", Options{}, true, false},
		{"ignore", Options{IgnoreWarnings: true}, false, false},
		{"as errors", Options{WarningsAsErrors: true}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := CompileSource(context.Background(), "main.rs", []byte(unsafeProgram), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if got := res.Bag.HasCode(diag.SemaUnsafeOperation); got != tt.wantCode {
				t.Fatalf("unsafe warning present = %v, want %v", got, tt.wantCode)
			}
			if got := res.Bag.HasErrors(); got != tt.wantErrors {
				t.Fatalf("errors = %v, want %v", got, tt.wantErrors)
			}
			if tt.wantErrors && res.Module() != nil {
				t.Fatal("module kept despite promoted warnings")
			}
		})
	}
}

func TestTimingsDiagnostic(t *testing.T) {
	var events []PhaseEvent
	res, err := CompileSource(context.Background(), "main.rs", []byte(okProgram), Options{
		EnableTimings: true,
		Observer:      func(ev PhaseEvent) { events = append(events, ev) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Timing == nil || len(res.Timing.Phases) != 4 {
		t.Fatalf("timing = %+v", res.Timing)
	}
	var payload timingPayload
	found := false
	for _, d := range res.Bag.Items() {
		if d.Code != diag.ObsTimings {
			continue
		}
		found = true
		if d.Severity != diag.SevInfo || len(d.Notes) == 0 {
			t.Fatalf("timings diagnostic = %+v", d)
		}
		if err := json.Unmarshal([]byte(d.Notes[0].Msg), &payload); err != nil {
			t.Fatalf("payload: %v", err)
		}
	}
	if !found || payload.Kind != "compile" || payload.Path != "main.rs" {
		t.Fatalf("payload = %+v", payload)
	}

	var names []string
	for _, ev := range events {
		if ev.Status == PhaseStart {
			names = append(names, ev.Name)
		}
	}
	if got := strings.Join(names, ","); got != "parse,expand,collect,sema" {
		t.Fatalf("phases = %s", got)
	}
}

func TestCompileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CompileSource(ctx, "main.rs", []byte(okProgram), Options{}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestCompileMissingFile(t *testing.T) {
	if _, err := Compile(context.Background(), filepath.Join(t.TempDir(), "nope.rs"), Options{}); err == nil {
		t.Fatal("expected load error")
	}
}

func TestTokenize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lex.rs")
	if err := os.WriteFile(path, []byte("fn main() { 1 ` 2 }"), 0o600); err != nil {
		t.Fatal(err)
	}
	res, err := Tokenize(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Tokens) == 0 {
		t.Fatal("no tokens")
	}
	if !res.Bag.HasCode(diag.LexUnknownChar) {
		t.Fatalf("expected unknown char, got %+v", res.Bag.Items())
	}
}
