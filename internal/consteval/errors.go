package consteval

import (
	"fmt"

	"rsfront/internal/diag"
	"rsfront/internal/source"
)

// Error describes why an expression could not be folded.
type Error struct {
	Code diag.Code
	Span source.Span
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Msg
}

func notConstant(sp source.Span, what string) *Error {
	return &Error{Code: diag.ConstNotConstant, Span: sp, Msg: fmt.Sprintf("%s is not allowed in a constant expression", what)}
}

func overflow(sp source.Span, op string, t Hint) *Error {
	return &Error{Code: diag.ConstOverflow, Span: sp, Msg: fmt.Sprintf("attempt to compute `%s` with overflow in `%s`", op, t)}
}

func mismatch(sp source.Span, want, got Hint) *Error {
	return &Error{Code: diag.SemaTypeMismatch, Span: sp, Msg: fmt.Sprintf("mismatched types: expected `%s`, found `%s`", want, got)}
}
