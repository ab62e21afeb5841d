package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"rsfront/internal/diagfmt"
	"rsfront/internal/project"
)

const configName = project.ConfigName

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = execute(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

// expectations are read from leading `// expect-<key>: <value>` comments.
type expectations struct {
	exit           int
	stdout         *string
	stdoutContains string
	stderrContains string
}

func readExpectations(t *testing.T, path string) expectations {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var exp expectations
	for _, line := range strings.Split(string(data), "\n") {
		rest, ok := strings.CutPrefix(line, "// expect-")
		if !ok {
			break
		}
		key, value, _ := strings.Cut(rest, ": ")
		switch key {
		case "exit":
			exp.exit, err = strconv.Atoi(value)
			if err != nil {
				t.Fatalf("%s: bad exit %q", path, value)
			}
		case "stdout":
			s := strings.ReplaceAll(value, `\n`, "\n")
			exp.stdout = &s
		case "stdout-contains":
			exp.stdoutContains = value
		case "stderr-contains":
			exp.stderrContains = value
		default:
			t.Fatalf("%s: unknown expectation %q", path, key)
		}
	}
	return exp
}

func TestRunPrograms(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.rs"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no test programs")
	}
	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			exp := readExpectations(t, path)
			code, stdout, stderr := runCLI(t, "run", "--color=off", path)
			if code != exp.exit {
				t.Fatalf("exit = %d, want %d\nstdout:\n%s\nstderr:\n%s", code, exp.exit, stdout, stderr)
			}
			if exp.stdout != nil && stdout != *exp.stdout {
				t.Errorf("stdout = %q, want %q", stdout, *exp.stdout)
			}
			if !strings.Contains(stdout, exp.stdoutContains) {
				t.Errorf("stdout %q does not contain %q", stdout, exp.stdoutContains)
			}
			if !strings.Contains(stderr, exp.stderrContains) {
				t.Errorf("stderr %q does not contain %q", stderr, exp.stderrContains)
			}
		})
	}
}

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const badProgram = "fn main() {\n    let x: bool = 1;\n}\n"

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	bad := writeSource(t, dir, "bad.rs", badProgram)

	code, stdout, _ := runCLI(t, "check", "--color=off", bad)
	if code != 1 {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(stdout, "ERROR SEM3004") || !strings.Contains(stdout, "let x: bool = 1;") {
		t.Errorf("pretty output:\n%s", stdout)
	}

	code, stdout, _ = runCLI(t, "check", "--format=json", bad)
	if code != 1 {
		t.Fatalf("exit = %d", code)
	}
	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("json: %v\n%s", err, stdout)
	}
	if out.Count == 0 || out.Diagnostics[0].Code != "SEM3004" || out.Diagnostics[0].Location.StartLine != 2 {
		t.Errorf("json output = %+v", out)
	}

	code, stdout, _ = runCLI(t, "check", "--stage=syntax", "--format=short", bad)
	if code != 0 || stdout != "" {
		t.Errorf("syntax stage: exit=%d out=%q", code, stdout)
	}

	good := writeSource(t, dir, "good.rs", "fn main() -> i32 { 0 }\n")
	if code, stdout, stderr := runCLI(t, "check", good); code != 0 || stdout != "" {
		t.Errorf("good file: exit=%d out=%q err=%q", code, stdout, stderr)
	}
}

func TestCheckFlagsConflict(t *testing.T) {
	path := writeSource(t, t.TempDir(), "a.rs", "fn main() {}\n")
	code, _, stderr := runCLI(t, "check", "--no-warnings", "--warnings-as-errors", path)
	if code != 1 || !strings.Contains(stderr, "cannot be used together") {
		t.Errorf("exit=%d stderr=%q", code, stderr)
	}
}

func TestCheckDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.rs", "fn main() -> i32 { 0 }\n")
	writeSource(t, dir, "b.rs", badProgram)
	writeSource(t, dir, configName, "[cache]\nenabled = true\ndir = \".cache\"\n")
	config := filepath.Join(dir, configName)

	code, stdout, stderr := runCLI(t, "check", "--config", config, "--progress=off", "--format=short", dir)
	if code != 1 {
		t.Fatalf("exit = %d, stderr=%s", code, stderr)
	}
	if !strings.Contains(stdout, "b.rs:2:19: error SEM3004") {
		t.Errorf("stdout:\n%s", stdout)
	}
	if !strings.Contains(stderr, "checked 2 files: 1 failed, 0 cached") {
		t.Errorf("stderr:\n%s", stderr)
	}

	code, stdout2, stderr := runCLI(t, "check", "--config", config, "--progress=off", "--format=short", dir)
	if code != 1 || !strings.Contains(stderr, "checked 2 files: 1 failed, 2 cached") {
		t.Errorf("second run: exit=%d stderr=%s", code, stderr)
	}
	if stdout2 != stdout {
		t.Errorf("cached diagnostics differ:\n%s\nvs\n%s", stdout2, stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, ".cache", "checks")); err != nil {
		t.Errorf("cache dir not created: %v", err)
	}
}


func TestEmit(t *testing.T) {
	code, stdout, stderr := runCLI(t, "emit", filepath.Join("testdata", "generics4.rs"))
	if code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr)
	}
	for _, want := range []string{"test::<i32>", "test::<u32>", "fn main"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("emit output lacks %q:\n%s", want, stdout)
		}
	}
}

func TestTokenize(t *testing.T) {
	path := writeSource(t, t.TempDir(), "t.rs", "fn main() {}")
	code, stdout, _ := runCLI(t, "tokenize", "--format=json", path)
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	var toks []diagfmt.TokenOutput
	if err := json.Unmarshal([]byte(stdout), &toks); err != nil {
		t.Fatal(err)
	}
	if len(toks) != 7 || toks[1].Text != "main" {
		t.Errorf("tokens = %+v", toks)
	}
}

func TestPointerSizeFlag(t *testing.T) {
	path := writeSource(t, t.TempDir(), "ptr.rs", `
extern "rust-intrinsic" { fn size_of<T>() -> usize; }
fn main() -> i32 { unsafe { size_of::<usize>() as i32 } }
`)
	for _, size := range []string{"8", "4", "2"} {
		code, _, stderr := runCLI(t, "run", "--pointer-size", size, path)
		if strconv.Itoa(code) != size {
			t.Errorf("pointer size %s: exit=%d stderr=%s", size, code, stderr)
		}
	}
	if code, _, _ := runCLI(t, "run", "--pointer-size", "3", path); code != 1 {
		t.Errorf("invalid pointer size accepted: %d", code)
	}
}

func TestTrace(t *testing.T) {
	path := writeSource(t, t.TempDir(), "a.rs", "fn main() {}\n")
	code, _, stderr := runCLI(t, "check", "--trace=-", "--trace-level=phase", path)
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	for _, want := range []string{"→ rsfront check", "→ compile", "← sema", "← rsfront check"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("trace lacks %q:\n%s", want, stderr)
		}
	}
}

func TestTimings(t *testing.T) {
	path := writeSource(t, t.TempDir(), "a.rs", "fn main() {}\n")
	code, stdout, stderr := runCLI(t, "check", "--timings", path)
	if code != 0 || stdout != "" {
		t.Fatalf("exit=%d stdout=%q", code, stdout)
	}
	for _, phase := range []string{"parse", "expand", "collect", "sema", "total"} {
		if !strings.Contains(stderr, phase) {
			t.Errorf("timings lack %s:\n%s", phase, stderr)
		}
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "version", "--format=json")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != "rsfront" || payload.Version == "" {
		t.Errorf("payload = %+v", payload)
	}
	if code, stdout, _ := runCLI(t, "version", "--color=off"); code != 0 || !strings.HasPrefix(stdout, "rsfront ") {
		t.Errorf("pretty version: %d %q", code, stdout)
	}
}

func TestUnknownCommand(t *testing.T) {
	code, _, stderr := runCLI(t, "frobnicate")
	if code != 1 || !strings.Contains(stderr, "unknown command") {
		t.Errorf("exit=%d stderr=%q", code, stderr)
	}
}

func TestProfileFlags(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.rs", "fn main() {}\n")
	cpu := filepath.Join(dir, "cpu.pprof")
	mem := filepath.Join(dir, "mem.pprof")
	if code, _, stderr := runCLI(t, "check", "--cpuprofile", cpu, "--memprofile", mem, path); code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr)
	}
	for _, p := range []string{cpu, mem} {
		if _, err := os.Stat(p); err != nil {
			t.Error(err)
		}
	}
}
