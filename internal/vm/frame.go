package vm

import (
	"rsfront/internal/hir"
	"rsfront/internal/source"
)

// Frame represents a function activation record on the call stack.
type Frame struct {
	Func   *hir.Func   // The function being executed
	Locals []uint64    // address of each local, indexed by LocalID-1
	Span   source.Span // Current expression span for error reporting

	mark int // memory top before the frame was entered
}

// newFrame prepares an activation of fn; locals are allocated by the caller.
func newFrame(fn *hir.Func, mark int) Frame {
	return Frame{
		Func:   fn,
		Locals: make([]uint64, len(fn.Locals)),
		Span:   fn.Span,
		mark:   mark,
	}
}

func (f *Frame) local(id hir.LocalID) uint64 {
	return f.Locals[id-1]
}
