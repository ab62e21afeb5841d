package hir

import (
	"rsfront/internal/source"
	"rsfront/internal/types"
)

// FuncFlags represents function modifiers as a bitmask.
type FuncFlags uint8

const (
	FuncUnsafe FuncFlags = 1 << iota
	FuncConst
	FuncEntrypoint
)

// HasFlag returns true if the given flag is set.
func (f FuncFlags) HasFlag(flag FuncFlags) bool {
	return f&flag != 0
}

// String returns a human-readable representation of flags.
func (f FuncFlags) String() string {
	s := ""
	if f.HasFlag(FuncEntrypoint) {
		s += "@entrypoint "
	}
	if f.HasFlag(FuncConst) {
		s += "const "
	}
	if f.HasFlag(FuncUnsafe) {
		s += "unsafe "
	}
	return s
}

// Local is a parameter or `let` binding.
type Local struct {
	Name    string
	Type    types.TypeID
	Mutable bool
	Span    source.Span
}

// Func is one monomorphized function instance.
type Func struct {
	ID     FuncID
	Name   string         // rendered with type arguments, e.g. `test::<u32>`
	Item   uint32         // symbols.ItemID of the generic declaration
	Args   []types.TypeID // concrete type arguments of the instance
	Params []LocalID
	Locals []Local // Locals[i] has LocalID i+1
	Result types.TypeID
	Flags  FuncFlags
	Body   *Expr
	Span   source.Span
}

// NewLocal appends a local and returns its ID.
func (f *Func) NewLocal(l Local) LocalID {
	f.Locals = append(f.Locals, l)
	return LocalID(len(f.Locals))
}

// Local returns the local for id, or nil.
func (f *Func) Local(id LocalID) *Local {
	if id == NoLocalID || int(id) > len(f.Locals) {
		return nil
	}
	return &f.Locals[id-1]
}
