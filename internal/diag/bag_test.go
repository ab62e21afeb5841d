package diag

import (
	"testing"

	"rsfront/internal/source"
)

func TestBagLimitAndErrors(t *testing.T) {
	b := NewBag(2)
	r := BagReporter{Bag: b}
	ReportWarning(r, SemaUnitComparison, source.Span{Start: 4, End: 5}, "unit").Emit()
	ReportError(r, MacroNoMatchingRule, source.Span{Start: 1, End: 2}, "no rule").Emit()
	ReportError(r, MacroUnknown, source.Span{Start: 0, End: 1}, "dropped").Emit()

	if b.Len() != 2 {
		t.Fatalf("expected limit 2, got %d", b.Len())
	}
	if !b.HasErrors() || !b.HasCode(MacroNoMatchingRule) || b.HasCode(MacroUnknown) {
		t.Fatalf("unexpected bag contents: %+v", b.Items())
	}
	b.Sort()
	if b.Items()[0].Code != MacroNoMatchingRule {
		t.Fatalf("sort by start offset failed: %+v", b.Items())
	}
}

func TestBuilderEmitsOnce(t *testing.T) {
	b := NewBag(0)
	rb := ReportError(BagReporter{Bag: b}, SemaTypeMismatch, source.Span{}, "mismatch").
		WithNote(source.Span{Start: 3, End: 4}, "declared here")
	rb.Emit()
	rb.Emit()
	if b.Len() != 1 || len(b.Items()[0].Notes) != 1 {
		t.Fatalf("expected one diagnostic with a note, got %+v", b.Items())
	}
}

func TestCodeIDs(t *testing.T) {
	tests := map[Code]string{
		LexUnknownChar:          "LEX1001",
		SynUnexpectedToken:      "SYN2001",
		SemaTypeMismatch:        "SEM3004",
		MacroNoMatchingRule:     "MAC3101",
		MonoUnresolvedInference: "MON3201",
		TraitNoMatchingImpl:     "TRT3300",
		IntrinsicSizeMismatch:   "SEM3401",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Fatalf("%d: got %s want %s", code, got, want)
		}
	}
}

func TestDedup(t *testing.T) {
	b := NewBag(0)
	d := NewError(SemaUnresolvedSymbol, source.Span{Start: 1, End: 3}, "x")
	b.Add(d)
	b.Add(d)
	b.Add(d.WithNote(source.Span{}, "n"))
	b.Dedup()
	if b.Len() != 1 {
		t.Fatalf("dedup left %d items", b.Len())
	}
}
