package traits

import (
	"fmt"
	"strings"

	"rsfront/internal/diag"
)

type ErrorKind uint8

const (
	ErrNoMatchingImpl ErrorKind = iota + 1
	ErrNoMethod
	ErrAmbiguous
	ErrUnknownAssoc
	ErrBoundNotSatisfied
	ErrNotIndexable
)

// Error describes a failed trait query. Types are rendered at creation.
type Error struct {
	Kind  ErrorKind
	Trait string
	Self  string
	Args  []string
	Name  string
	Count int
	Cause *Error
}

func (e *Error) traitRef() string {
	if len(e.Args) == 0 {
		return e.Trait
	}
	return e.Trait + "<" + strings.Join(e.Args, ", ") + ">"
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case ErrNoMatchingImpl:
		msg = fmt.Sprintf("the trait `%s` is not implemented for `%s`", e.traitRef(), e.Self)
	case ErrNoMethod:
		msg = fmt.Sprintf("no method named `%s` found for `%s`", e.Name, e.Self)
	case ErrAmbiguous:
		if e.Name != "" {
			msg = fmt.Sprintf("multiple applicable items in scope: %d candidates for method `%s` on `%s`", e.Count, e.Name, e.Self)
		} else {
			msg = fmt.Sprintf("conflicting implementations of `%s` for `%s`", e.traitRef(), e.Self)
		}
	case ErrUnknownAssoc:
		msg = fmt.Sprintf("associated type `%s` not found for `<%s as %s>`", e.Name, e.Self, e.traitRef())
	case ErrBoundNotSatisfied:
		msg = fmt.Sprintf("the trait bound `%s: %s` is not satisfied", e.Self, e.traitRef())
	case ErrNotIndexable:
		msg = fmt.Sprintf("the type `%s` cannot be indexed by `%s`", e.Self, e.Name)
	default:
		msg = "trait resolution failed"
	}
	if e.Cause != nil {
		msg += " (" + e.Cause.Error() + ")"
	}
	return msg
}

func (e *Error) Code() diag.Code {
	switch e.Kind {
	case ErrAmbiguous:
		return diag.TraitAmbiguousMethod
	case ErrUnknownAssoc:
		return diag.TraitUnknownAssocType
	case ErrBoundNotSatisfied:
		return diag.TraitBoundNotSatisfied
	}
	return diag.TraitNoMatchingImpl
}
