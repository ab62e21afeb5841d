package ast

import "rsfront/internal/source"

type File struct {
	Source source.FileID
	Span   source.Span
	Items  []ItemID
}
