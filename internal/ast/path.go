package ast

import (
	"strings"

	"rsfront/internal/source"
)

// Path is a `::`-separated name such as `mem::size_of::<i32>` or `Self::Output`.
type Path struct {
	Segments []PathSegment
	Span     source.Span
}

type PathSegment struct {
	Name string
	Args []TypeID // generic arguments; turbofish in expressions
	Span source.Span
}

// Single reports whether the path is one segment without generic arguments.
func (p *Path) Single() bool {
	return len(p.Segments) == 1 && len(p.Segments[0].Args) == 0
}

func (p *Path) Last() *PathSegment {
	if len(p.Segments) == 0 {
		return nil
	}
	return &p.Segments[len(p.Segments)-1]
}

// String renders the path without generic arguments.
func (p *Path) String() string {
	parts := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		parts[i] = seg.Name
	}
	return strings.Join(parts, "::")
}
