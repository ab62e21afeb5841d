package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"rsfront/internal/ast"
	"rsfront/internal/source"
	"rsfront/internal/token"
)

// CheckSpanInvariants validates the spans of a freshly parsed file:
//  1. the file span lies within the content and points at sf
//  2. every item span is non-empty and inside the file span
//  3. items follow each other in source order without overlap
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.File(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}
	if f.Source != sf.ID {
		return fmt.Errorf("file node points to different source: got=%d want=%d", f.Source, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent || f.Span.Start > f.Span.End {
		return fmt.Errorf("file span %v outside content of %d bytes", f.Span, lenContent)
	}

	var prev source.Span
	for i, id := range f.Items {
		item := b.Item(id)
		if item == nil {
			return fmt.Errorf("nil item for id=%d", id)
		}
		sp := item.Span
		if sp.Empty() {
			return fmt.Errorf("empty span for %s %q", item.Kind, item.Name)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("item span file mismatch: got=%d want=%d", sp.File, sf.ID)
		}
		if sp.Start < f.Span.Start || sp.End > f.Span.End {
			return fmt.Errorf("item span %v is outside file span %v", sp, f.Span)
		}
		if i > 0 && sp.Start < prev.End {
			return fmt.Errorf("item span %v overlaps previous %v", sp, prev)
		}
		prev = sp
	}
	return nil
}

// CheckTokenInvariants validates a token stream produced by the lexer.
func CheckTokenInvariants(toks []token.Token, sf *source.File) error {
	if len(toks) == 0 {
		return fmt.Errorf("empty token stream")
	}
	if last := toks[len(toks)-1]; last.Kind != token.EOF {
		return fmt.Errorf("stream ends with %v, want EOF", last.Kind)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	var prevEnd uint32
	for i, tok := range toks {
		if tok.Span.File != sf.ID {
			return fmt.Errorf("token %d: span file mismatch", i)
		}
		if tok.Span.Start > tok.Span.End || tok.Span.End > lenContent {
			return fmt.Errorf("token %d: bad span %v", i, tok.Span)
		}
		if tok.Span.Start < prevEnd {
			return fmt.Errorf("token %d: span %v goes backwards (prev end %d)", i, tok.Span, prevEnd)
		}
		prevEnd = tok.Span.End
	}
	return nil
}
