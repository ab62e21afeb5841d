package driver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCheckDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.rs":        okProgram,
		"b.rs":        `fn main() { let x: bool = 1; }`,
		"nested/c.rs": `fn main() {}`,
		"notes.txt":   "not rust",
	})

	var mu sync.Mutex
	statuses := map[string][]EventStatus{}
	results, err := CheckDir(context.Background(), dir, DirOptions{
		Jobs: 2,
		Events: func(ev Event) {
			mu.Lock()
			defer mu.Unlock()
			if ev.Status != StatusWorking {
				statuses[filepath.Base(ev.File)] = append(statuses[filepath.Base(ev.File)], ev.Status)
			}
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	wantPaths := []string{"a.rs", "b.rs", filepath.Join("nested", "c.rs")}
	for i, want := range wantPaths {
		if rel, _ := filepath.Rel(dir, results[i].Path); rel != want {
			t.Fatalf("result %d = %s, want %s", i, rel, want)
		}
	}
	if results[0].Failed() || !results[1].Failed() || results[2].Failed() {
		t.Fatalf("failures = %v %v %v", results[0].Failed(), results[1].Failed(), results[2].Failed())
	}
	if results[0].Funcs == 0 {
		t.Fatal("no functions recorded")
	}
	if got := statuses["b.rs"]; len(got) != 2 || got[0] != StatusQueued || got[1] != StatusError {
		t.Fatalf("b.rs events = %v", got)
	}
}

func TestCheckDirUsesCache(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.rs": unsafeProgram,
		"b.rs": `fn main() { let x: bool = 1; }`,
	})
	cache, err := OpenDiskCache("rsfront", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := DirOptions{Cache: cache}

	first, err := CheckDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CheckDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range second {
		if first[i].Cached || !second[i].Cached {
			t.Fatalf("%s: cached first=%v second=%v", second[i].Path, first[i].Cached, second[i].Cached)
		}
		if first[i].Bag.Len() != second[i].Bag.Len() || first[i].Failed() != second[i].Failed() {
			t.Fatalf("%s: cached diagnostics differ: %+v vs %+v", second[i].Path, first[i].Bag.Items(), second[i].Bag.Items())
		}
	}

	// изменённое содержимое даёт другой ключ
	writeFiles(t, dir, map[string]string{"b.rs": `fn main() {}`})
	third, err := CheckDir(context.Background(), dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !third[0].Cached || third[1].Cached || third[1].Failed() {
		t.Fatalf("after edit: a cached=%v, b cached=%v failed=%v", third[0].Cached, third[1].Cached, third[1].Failed())
	}
}

func TestCheckDirEmpty(t *testing.T) {
	results, err := CheckDir(context.Background(), t.TempDir(), DirOptions{})
	if err != nil || results != nil {
		t.Fatalf("empty dir: %v %v", results, err)
	}
}
