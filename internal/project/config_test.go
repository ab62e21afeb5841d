package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[target]
pointer_size = 4

[limits]
max_diagnostics = 7

[cache]
enabled = true
dir = ".cache"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Path != path {
		t.Fatalf("path = %q", cfg.Path)
	}
	if cfg.Limits.MaxDiagnostics != 7 || cfg.Limits.MonoDepth != 64 {
		t.Fatalf("limits = %+v", cfg.Limits)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Dir != ".cache" {
		t.Fatalf("cache = %+v", cfg.Cache)
	}
	target := cfg.LayoutTarget()
	if target.PtrSize != 4 || target.Triple != "i686-linux-gnu" {
		t.Fatalf("target = %+v", target)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"pointer size", "[target]\npointer_size = 3\n"},
		{"negative limit", "[limits]\nmono_depth = -1\n"},
		{"unknown key", "[limits]\nmax_errors = 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadConfig(path)
			if !errors.Is(err, ErrBadConfig) {
				t.Fatalf("expected ErrBadConfig, got %v", err)
			}
		})
	}
}

func TestLoadConfigSyntaxError(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[target\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFromWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[run]\nmax_depth = 10\n")
	nested := filepath.Join(root, "src", "bin")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, ok, err := LoadFrom(nested)
	if err != nil || !ok {
		t.Fatalf("LoadFrom: ok=%v err=%v", ok, err)
	}
	if cfg.Run.MaxDepth != 10 {
		t.Fatalf("run = %+v", cfg.Run)
	}
	gotRoot, ok, err := FindProjectRoot(nested)
	if err != nil || !ok {
		t.Fatalf("FindProjectRoot: ok=%v err=%v", ok, err)
	}
	want, _ := filepath.Abs(root)
	if gotRoot != want {
		t.Fatalf("root = %q, want %q", gotRoot, want)
	}
}

func TestLoadFromWithoutConfig(t *testing.T) {
	cfg, ok, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	// выше временного каталога rsfront.toml быть не должно
	if ok {
		t.Skip("rsfront.toml found above the temp dir")
	}
	if cfg.Target.PointerSize != 8 || cfg.Limits.MaxDiagnostics != 100 {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestCombineIsOrderSensitive(t *testing.T) {
	a, b := DigestString("a"), DigestString("b")
	if Combine(a, b) == Combine(b, a) {
		t.Fatal("combine ignores order")
	}
	if Combine(a, b) != Combine(a, b) {
		t.Fatal("combine is not deterministic")
	}
}
