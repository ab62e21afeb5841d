package hir

import (
	"errors"
	"fmt"

	"rsfront/internal/types"
)

// Validate checks the output contract: every type reachable from the module
// is concrete, every call target exists and every local is declared.
func Validate(m *Module) error {
	v := validator{m: m, in: m.Types}
	for _, g := range m.Globals {
		v.concrete(g.Type, "static "+g.Name)
		v.fn = nil
		v.expr(g.Init)
	}
	for _, f := range m.Funcs {
		v.fn = f
		v.concrete(f.Result, f.Name+" result")
		for i := range f.Locals {
			v.concrete(f.Locals[i].Type, fmt.Sprintf("%s local %s", f.Name, f.Locals[i].Name))
		}
		for _, p := range f.Params {
			if f.Local(p) == nil {
				v.errf("%s: parameter %d is not a local", f.Name, p)
			}
		}
		v.expr(f.Body)
	}
	if m.Entry.IsValid() && m.Func(m.Entry) == nil {
		v.errf("entry function %d does not exist", m.Entry)
	}
	return errors.Join(v.errs...)
}

type validator struct {
	m    *Module
	in   *types.Interner
	fn   *Func
	errs []error
}

func (v *validator) errf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) concrete(id types.TypeID, what string) {
	if id == types.NoTypeID {
		v.errf("%s: missing type", what)
		return
	}
	if v.in.HasParams(id) {
		v.errf("%s: type `%s` is not concrete", what, types.Label(v.in, id))
	}
}

func (v *validator) where() string {
	if v.fn == nil {
		return "static"
	}
	return v.fn.Name
}

func (v *validator) expr(root *Expr) {
	Walk(root, func(e *Expr) bool {
		v.concrete(e.Type, fmt.Sprintf("%s: %s expression", v.where(), e.Kind))
		switch d := e.Data.(type) {
		case CallData:
			if v.m.Func(d.Func) == nil {
				v.errf("%s: call of unknown function %d", v.where(), d.Func)
			}
		case ExternCallData:
			if v.m.Extern(d.Extern) == nil {
				v.errf("%s: call of unknown extern %d", v.where(), d.Extern)
			}
		case LocalData:
			if v.fn == nil || v.fn.Local(d.Local) == nil {
				v.errf("%s: unknown local %s", v.where(), d.Name)
			}
		case GlobalData:
			if v.m.Global(d.Global) == nil {
				v.errf("%s: unknown static %s", v.where(), d.Name)
			}
		case FieldData:
			v.field(e, d)
		case MatchData:
			for _, arm := range d.Arms {
				v.pat(arm.Pat)
			}
		}
		return true
	})
}

func (v *validator) field(e *Expr, d FieldData) {
	info, ok := v.in.AdtInfo(d.X.Type)
	if !ok {
		v.errf("%s: field access on `%s`", v.where(), types.Label(v.in, d.X.Type))
		return
	}
	if d.Index < 0 || d.Index >= len(info.Fields) {
		v.errf("%s: field %d out of range for `%s`", v.where(), d.Index, info.Name)
		return
	}
	if info.Fields[d.Index].Type != e.Type {
		v.errf("%s: field `%s` has type `%s`, expression says `%s`", v.where(), d.Name,
			types.Label(v.in, info.Fields[d.Index].Type), types.Label(v.in, e.Type))
	}
}

func (v *validator) pat(p *Pat) {
	if p == nil {
		return
	}
	v.concrete(p.Type, v.where()+": pattern")
	if p.Kind == PatBind && (v.fn == nil || v.fn.Local(p.Local) == nil) {
		v.errf("%s: pattern binds unknown local %d", v.where(), p.Local)
	}
	for _, f := range p.Fields {
		v.pat(f)
	}
}
