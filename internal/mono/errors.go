package mono

import (
	"fmt"

	"rsfront/internal/diag"
)

// ErrorKind classifies instantiation failures.
type ErrorKind uint8

const (
	ErrArityMismatch ErrorKind = iota + 1
	ErrUnresolvedInference
	ErrDepthExceeded
	ErrUnsizedArgument
	ErrNotConcrete
)

// Error is returned by Instantiate and by inference.
type Error struct {
	Kind  ErrorKind
	Item  string
	Param string
	Type  string
	Want  int
	Got   int
	Depth int
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrArityMismatch:
		return fmt.Sprintf("`%s` takes %d generic argument%s but %d %s supplied",
			e.Item, e.Want, plural(e.Want), e.Got, wasWere(e.Got))
	case ErrUnresolvedInference:
		return fmt.Sprintf("cannot infer type for type parameter `%s` declared on `%s`", e.Param, e.Item)
	case ErrDepthExceeded:
		return fmt.Sprintf("reached the instantiation depth limit (%d) while instantiating `%s`", e.Depth, e.Item)
	case ErrUnsizedArgument:
		return fmt.Sprintf("the size of `%s` cannot be known at compilation time; `%s` of `%s` requires a sized type",
			e.Type, e.Param, e.Item)
	case ErrNotConcrete:
		return fmt.Sprintf("instantiation of `%s` with non-concrete argument `%s`", e.Item, e.Type)
	}
	return "instantiation error"
}

// Code maps the error to its diagnostic code.
func (e *Error) Code() diag.Code {
	switch e.Kind {
	case ErrArityMismatch:
		return diag.MonoArityMismatch
	case ErrUnresolvedInference:
		return diag.MonoUnresolvedInference
	case ErrDepthExceeded:
		return diag.MonoDepthExceeded
	case ErrUnsizedArgument:
		return diag.MonoUnsizedArgument
	}
	return diag.SemaError
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func wasWere(n int) string {
	if n == 1 {
		return "was"
	}
	return "were"
}
