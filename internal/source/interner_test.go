package source

import "testing"

func TestInternerStableIDs(t *testing.T) {
	in := NewInterner()
	a := in.Intern("offset")
	b := in.Intern("size_of")
	if a == b {
		t.Fatalf("distinct strings share an id")
	}
	if again := in.Intern("offset"); again != a {
		t.Fatalf("re-interning changed id: %d vs %d", again, a)
	}
	if s := in.MustLookup(b); s != "size_of" {
		t.Fatalf("lookup = %q", s)
	}
	if s, ok := in.Lookup(NoStringID); !ok || s != "" {
		t.Fatalf("NoStringID must map to empty string")
	}
}
