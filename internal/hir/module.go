package hir

import (
	"rsfront/internal/source"
	"rsfront/internal/types"
)

// Module is the lowered form of one compilation unit.
type Module struct {
	Name    string
	Types   *types.Interner
	Funcs   []*Func   // Funcs[i].ID == i+1, in instantiation order
	Externs []*Extern // Externs[i].ID == i+1
	Globals []*Global // Globals[i].ID == i+1
	Entry   FuncID
}

// Extern is a foreign function passed through unchanged.
type Extern struct {
	ID       ExternID
	Name     string
	ABI      string
	Params   []types.TypeID
	Result   types.TypeID
	Variadic bool
	Span     source.Span
}

// Global is a `static` item.
type Global struct {
	ID      GlobalID
	Name    string
	Type    types.TypeID
	Mutable bool
	Init    *Expr
	Span    source.Span
}

// Func returns the function with the given id, or nil.
func (m *Module) Func(id FuncID) *Func {
	if id == NoFuncID || int(id) > len(m.Funcs) {
		return nil
	}
	return m.Funcs[id-1]
}

func (m *Module) Extern(id ExternID) *Extern {
	if id == NoExternID || int(id) > len(m.Externs) {
		return nil
	}
	return m.Externs[id-1]
}

func (m *Module) Global(id GlobalID) *Global {
	if id == NoGlobalID || int(id) > len(m.Globals) {
		return nil
	}
	return m.Globals[id-1]
}

// FindFunc finds a function by name, returns nil if not found.
func (m *Module) FindFunc(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// AddFunc appends f and assigns its ID.
func (m *Module) AddFunc(f *Func) FuncID {
	m.Funcs = append(m.Funcs, f)
	f.ID = FuncID(len(m.Funcs))
	return f.ID
}

func (m *Module) AddExtern(e *Extern) ExternID {
	m.Externs = append(m.Externs, e)
	e.ID = ExternID(len(m.Externs))
	return e.ID
}

func (m *Module) AddGlobal(g *Global) GlobalID {
	m.Globals = append(m.Globals, g)
	g.ID = GlobalID(len(m.Globals))
	return g.ID
}
