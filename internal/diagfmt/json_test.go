package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"rsfront/internal/diag"
	"rsfront/internal/lexer"
	"rsfront/internal/source"
)

func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	bag := mismatchBag(fs.AddVirtual("main.rs", []byte(mismatchSrc)))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("count = %d", output.Count)
	}
	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "SEM3004" || d.Message != "mismatched types" {
		t.Errorf("diagnostic = %+v", d)
	}
	want := LocationJSON{File: "main.rs", StartByte: 30, EndByte: 31, StartLine: 2, StartCol: 19, EndLine: 2, EndCol: 20}
	if d.Location != want {
		t.Errorf("location = %+v, want %+v", d.Location, want)
	}
	if len(d.Notes) != 2 || d.Notes[0].Location.StartCol != 12 {
		t.Errorf("notes = %+v", d.Notes)
	}
}

func TestJSONOptions(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("main.rs", []byte(mismatchSrc))
	bag := mismatchBag(fileID)
	bag.Add(diag.Diagnostic{Severity: diag.SevInfo, Code: diag.ObsTimings, Message: "timings",
		Notes: []diag.Note{{Msg: `{"kind":"compile"}`}}})

	out, err := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 {
		t.Fatalf("count = %d", out.Count)
	}
	if len(out.Diagnostics[0].Notes) != 0 {
		t.Error("notes must be omitted without IncludeNotes")
	}
	// заметки с таймингами выводятся всегда
	if len(out.Diagnostics[1].Notes) != 1 {
		t.Error("timing payload dropped")
	}
	if out.Diagnostics[0].Location.StartLine != 0 {
		t.Error("positions must be omitted without IncludePositions")
	}

	out, _ = BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 {
		t.Errorf("Max ignored: %d", out.Count)
	}
}

func TestFormatTokens(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("t.rs", []byte("let x = 1;"))
	tokens := lexer.Tokenize(fs.Get(fileID), lexer.Options{})

	var pretty bytes.Buffer
	if err := FormatTokensPretty(&pretty, tokens, fs); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(pretty.String()), "\n")
	if len(lines) != len(tokens) {
		t.Fatalf("lines = %d, tokens = %d", len(lines), len(tokens))
	}
	if !strings.Contains(lines[1], `"x" at 1:5-1:6`) {
		t.Errorf("second token = %q", lines[1])
	}

	var js bytes.Buffer
	if err := FormatTokensJSON(&js, tokens, fs); err != nil {
		t.Fatal(err)
	}
	var out []TokenOutput
	if err := json.Unmarshal(js.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != len(tokens) || out[3].Text != "1" || out[3].Col != 9 {
		t.Errorf("tokens = %+v", out)
	}
}
