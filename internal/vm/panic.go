package vm

import (
	"fmt"
	"strings"

	"rsfront/internal/source"
)

// PanicCode identifies the type of VM panic.
type PanicCode int

// Stable panic codes - do not change values.
const (
	PanicUserAbort        PanicCode = 1001 // VM1001: abort() or explicit panic
	PanicOutOfBounds      PanicCode = 1004 // VM1004: index or slice out of bounds
	PanicUnsupportedCall  PanicCode = 1005 // VM1005: foreign function without a host implementation
	PanicDivideByZero     PanicCode = 1006 // VM1006: integer division or remainder by zero
	PanicInvalidAddress   PanicCode = 1007 // VM1007: dangling or null pointer access
	PanicStackOverflow    PanicCode = 1008 // VM1008: call depth or memory limit exceeded
	PanicNonExhaustive    PanicCode = 1009 // VM1009: no match arm accepted the value
	PanicInvalidFormat    PanicCode = 1010 // VM1010: malformed printf format
	PanicUnimplemented    PanicCode = 1999 // VM1999: construct not supported by the interpreter
	panicExitCode                   = 101
)

// String returns the code as "VM1001" format.
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// BacktraceFrame represents one frame in the panic backtrace.
type BacktraceFrame struct {
	FuncName string
	Span     source.Span
}

// VMError represents a runtime panic in the VM.
type VMError struct {
	Code      PanicCode
	Message   string
	Span      source.Span      // Location where panic occurred
	Backtrace []BacktraceFrame // Stack frames from top to bottom
}

// Error implements the error interface.
func (p *VMError) Error() string {
	return fmt.Sprintf("panic %s: %s", p.Code, p.Message)
}

// FormatWithFiles formats the panic with resolved file:line:col information.
func (p *VMError) FormatWithFiles(files *source.FileSet) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "panic %s: %s\n", p.Code, p.Message)
	sb.WriteString("at ")
	sb.WriteString(formatSpan(p.Span, files))
	sb.WriteString("\n")

	if len(p.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, frame := range p.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s at %s\n", i, frame.FuncName, formatSpan(frame.Span, files))
		}
	}

	return sb.String()
}

// formatSpan formats a span as "file:line:col" or "<no-span>" if empty.
func formatSpan(span source.Span, files *source.FileSet) string {
	if files == nil || (span.Start == 0 && span.End == 0) {
		return "<no-span>"
	}

	file := files.Get(span.File)
	if file == nil {
		return "<no-span>"
	}

	start, _ := files.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", file.Path, start.Line, start.Col)
}

// errorBuilder helps construct VMError values.
type errorBuilder struct {
	vm *VM
}

func (eb *errorBuilder) makeError(code PanicCode, msg string) *VMError {
	e := &VMError{
		Code:    code,
		Message: msg,
	}
	stack := eb.vm.stack
	if len(stack) > 0 {
		e.Span = stack[len(stack)-1].Span
	}
	e.Backtrace = make([]BacktraceFrame, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		e.Backtrace[len(stack)-1-i] = BacktraceFrame{
			FuncName: stack[i].Func.Name,
			Span:     stack[i].Span,
		}
	}
	return e
}

func (eb *errorBuilder) outOfBounds(index, length uint64) *VMError {
	return eb.makeError(PanicOutOfBounds, fmt.Sprintf("index out of bounds: the len is %d but the index is %d", length, index))
}

func (eb *errorBuilder) sliceOutOfBounds(start, end, length uint64) *VMError {
	if start > end {
		return eb.makeError(PanicOutOfBounds, fmt.Sprintf("slice index starts at %d but ends at %d", start, end))
	}
	return eb.makeError(PanicOutOfBounds, fmt.Sprintf("range end index %d out of range for slice of length %d", end, length))
}

func (eb *errorBuilder) unsupportedCall(name string) *VMError {
	return eb.makeError(PanicUnsupportedCall, fmt.Sprintf("foreign function `%s` is not available in the interpreter", name))
}

func (eb *errorBuilder) unimplemented(what string) *VMError {
	return eb.makeError(PanicUnimplemented, fmt.Sprintf("unimplemented: %s", what))
}

// panic aborts execution; Run recovers the *VMError.
func (vm *VM) panic(code PanicCode, msg string) {
	panic(vm.eb.makeError(code, msg))
}

func (vm *VM) raise(err *VMError) {
	panic(err)
}
