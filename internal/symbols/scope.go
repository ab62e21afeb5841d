package symbols

import "rsfront/internal/source"

// Scope is a module namespace. Block scopes of function bodies live in sema.
type Scope struct {
	Name   string
	Parent ScopeID
	Module ItemID
	Span   source.Span
	Types  map[string]ItemID
	Values map[string]ItemID
}

func newScope(name string, parent ScopeID, module ItemID, span source.Span) Scope {
	return Scope{
		Name:   name,
		Parent: parent,
		Module: module,
		Span:   span,
		Types:  make(map[string]ItemID),
		Values: make(map[string]ItemID),
	}
}

func (s *Scope) names(ns Namespace) map[string]ItemID {
	if ns == NSValue {
		return s.Values
	}
	return s.Types
}
