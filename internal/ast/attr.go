package ast

import (
	"rsfront/internal/source"
	"rsfront/internal/token"
)

// Attr is `#[name]`, `#[name = "value"]` or `#[name(tokens)]`.
type Attr struct {
	Name     string
	Value    string
	HasValue bool
	Args     []token.Token
	Inner    bool
	Span     source.Span
}

func FindAttr(attrs []Attr, name string) (Attr, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// LangItem returns the value of `#[lang = "..."]`, if any.
func LangItem(attrs []Attr) (string, bool) {
	a, ok := FindAttr(attrs, "lang")
	if !ok || !a.HasValue {
		return "", false
	}
	return a.Value, true
}
