package diagfmt

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rsfront/internal/diag"
	"rsfront/internal/source"
)

const mismatchSrc = "fn main() {\n    let x: bool = 1;\n}\n"

func mismatchBag(fileID source.FileID) *diag.Bag {
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaTypeMismatch, source.Span{File: fileID, Start: 30, End: 31}, "mismatched types").
		WithNote(source.Span{File: fileID, Start: 23, End: 27}, "expected due to this").
		WithNote(source.Span{}, "expected `bool`, found integer"))
	return bag
}

func TestPrettyGolden(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("main.rs", []byte(mismatchSrc))
	bag := mismatchBag(fileID)

	tests := []struct {
		name string
		opts PrettyOpts
		want string
	}{
		{
			name: "plain",
			opts: PrettyOpts{},
			want: "main.rs:2:19: ERROR SEM3004: mismatched types\n" +
				" 2 |     let x: bool = 1;\n" +
				"   |                   ^\n",
		},
		{
			name: "context and notes",
			opts: PrettyOpts{Context: 1, ShowNotes: true},
			want: "main.rs:2:19: ERROR SEM3004: mismatched types\n" +
				" 1 | fn main() {\n" +
				" 2 |     let x: bool = 1;\n" +
				"   |                   ^\n" +
				"  note: main.rs:2:12: expected due to this\n" +
				" 2 |     let x: bool = 1;\n" +
				"   |            ^~~~\n" +
				"  = note: expected `bool`, found integer\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, tt.opts)
			if got := buf.String(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestPrettyWideCharacters(t *testing.T) {
	fs := source.NewFileSet()
	src := "let s = \"日本\"; oops\n"
	fileID := fs.AddVirtual("wide.rs", []byte(src))
	start := uint32(strings.Index(src, "oops"))
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.SemaUnresolvedSymbol, source.Span{File: fileID, Start: start, End: start + 4}, "cannot find value `oops`"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("output:\n%s", buf.String())
	}
	want := "   | " + strings.Repeat(" ", 16) + "^~~~"
	if lines[2] != want {
		t.Errorf("caret line = %q, want %q", lines[2], want)
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	bag := mismatchBag(fs.AddVirtual("main.rs", []byte(mismatchSrc)))

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Error("plain output contains escape codes")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Error("colored output has no escape codes")
	}
}

func TestPathModes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src", "lib.rs")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(mismatchSrc), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	bag := mismatchBag(fileID)

	tests := []struct {
		name string
		mode PathMode
		want string
	}{
		{"relative", PathModeRelative, "src/lib.rs:2:19:"},
		{"basename", PathModeBasename, "lib.rs:2:19:"},
		{"absolute", PathModeAbsolute, filepath.ToSlash(path) + ":2:19:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Short(&buf, bag, fs, tt.mode, dir)
			if got := filepath.ToSlash(buf.String()); !strings.HasPrefix(got, tt.want) {
				t.Errorf("got %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestShort(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("main.rs", []byte("fn helper() {}\n"))
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.SemaNoEntrypoint, source.Span{File: fileID}, "`main` function not found in crate"))
	bag.Add(diag.New(diag.SevWarning, diag.SemaUnsafeOperation, source.Span{File: fileID, Start: 3, End: 9}, "call is unsafe"))

	var buf bytes.Buffer
	Short(&buf, bag, fs, PathModeAuto, "")
	want := "main.rs: error SEM3016: `main` function not found in crate\n" +
		"main.rs:1:4: warning SEM3015: call is unsafe\n"
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
