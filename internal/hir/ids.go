// Package hir provides the output representation of the frontend.
//
// HIR is produced per instance by the type checker: every function is
// monomorphized, macros are expanded, intrinsics are lowered and every
// expression carries a concrete TypeID. It is the input contract of the
// reference evaluator and of any external code emitter.
package hir

// FuncID identifies a function instance within a module.
type FuncID uint32

// ExternID identifies a foreign function declaration.
type ExternID uint32

// GlobalID identifies a static.
type GlobalID uint32

// LocalID identifies a local variable or parameter within a function.
type LocalID uint32

// Invalid ID constants (zero is sentinel).
const (
	NoFuncID   FuncID   = 0
	NoExternID ExternID = 0
	NoGlobalID GlobalID = 0
	NoLocalID  LocalID  = 0
)

// IsValid returns true if the ID is valid (non-zero).
func (id FuncID) IsValid() bool   { return id != NoFuncID }
func (id ExternID) IsValid() bool { return id != NoExternID }
func (id GlobalID) IsValid() bool { return id != NoGlobalID }
func (id LocalID) IsValid() bool  { return id != NoLocalID }
