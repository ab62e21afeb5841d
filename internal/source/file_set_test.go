package source

import "testing"

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.rs", []byte("fn main() {\n    let a = 1;\n}\n"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{11, LineCol{Line: 1, Col: 12}},
		{12, LineCol{Line: 2, Col: 1}},
		{16, LineCol{Line: 2, Col: 5}},
		{27, LineCol{Line: 3, Col: 1}},
	}
	for _, tt := range tests {
		got, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if got != tt.want {
			t.Fatalf("offset %d: got %+v, want %+v", tt.off, got, tt.want)
		}
	}
}

func TestFileLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.rs", []byte("first\nsecond\nthird"))
	f := fs.Get(id)
	if got := f.Line(2); got != "second" {
		t.Fatalf("line 2 = %q", got)
	}
	if got := f.Line(3); got != "third" {
		t.Fatalf("line 3 = %q", got)
	}
	if got := f.Line(4); got != "" {
		t.Fatalf("line 4 = %q, want empty", got)
	}
}

func TestNormalizeCRLFAndBOM(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc"))
	if !changed || string(out) != "a\nb\rc" {
		t.Fatalf("unexpected CRLF normalisation: %q changed=%v", out, changed)
	}
	out, had := removeBOM([]byte{0xEF, 0xBB, 0xBF, 'x'})
	if !had || string(out) != "x" {
		t.Fatalf("BOM not removed: %q", out)
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got != (Span{File: 1, Start: 2, End: 8}) {
		t.Fatalf("cover = %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 100}); got != a {
		t.Fatalf("cross-file cover must keep receiver, got %v", got)
	}
}
