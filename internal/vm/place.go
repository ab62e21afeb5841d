package vm

import (
	"rsfront/internal/hir"
	"rsfront/internal/types"
)

// place resolves x to the address it denotes. meta is the element count
// for slice places and zero otherwise. Non-place operands are spilled into
// a frame temporary.
func (vm *VM) place(x *hir.Expr) (addr, meta uint64, f flow) {
	switch d := x.Data.(type) {
	case hir.LocalData:
		return vm.frame().local(d.Local), 0, flowNone
	case hir.GlobalData:
		return vm.global(d.Global), 0, flowNone
	case hir.DerefData:
		p, f := vm.eval(d.X)
		if f != flowNone {
			return 0, 0, f
		}
		addr = getUint(p[:vm.ptrSize])
		if len(p) > vm.ptrSize {
			meta = getUint(p[vm.ptrSize:])
		}
		return addr, meta, flowNone
	case hir.FieldData:
		base, _, f := vm.operandPlace(d.X)
		if f != flowNone {
			return 0, 0, f
		}
		l := vm.layout(d.X.Type)
		return base + uint64(l.FieldOffsets[d.Index]), 0, flowNone
	case hir.IndexData:
		base, length, f := vm.sequence(d.X)
		if f != flowNone {
			return 0, 0, f
		}
		iv, f := vm.eval(d.Index)
		if f != flowNone {
			return 0, 0, f
		}
		idx := getUint(iv)
		if idx >= length {
			vm.raise(vm.eb.outOfBounds(idx, length))
		}
		return base + idx*uint64(vm.size(x.Type)), 0, flowNone
	case hir.SliceData:
		base, length, f := vm.sequence(d.X)
		if f != flowNone {
			return 0, 0, f
		}
		start, end := uint64(0), length
		if d.Range != nil {
			v, f := vm.eval(d.Range)
			if f != flowNone {
				return 0, 0, f
			}
			l := vm.layout(d.Range.Type)
			start = getUint(v[l.FieldOffsets[d.StartField]:][:vm.ptrSize])
			end = getUint(v[l.FieldOffsets[d.EndField]:][:vm.ptrSize])
		}
		if d.Start != nil {
			v, f := vm.eval(d.Start)
			if f != flowNone {
				return 0, 0, f
			}
			start = getUint(v)
		}
		if d.End != nil {
			v, f := vm.eval(d.End)
			if f != flowNone {
				return 0, 0, f
			}
			end = getUint(v)
		}
		if start > end || end > length {
			vm.raise(vm.eb.sliceOutOfBounds(start, end, length))
		}
		stride := uint64(vm.size(vm.elemOf(x.Type)))
		return base + start*stride, end - start, flowNone
	}
	v, f := vm.eval(x)
	if f != flowNone {
		return 0, 0, f
	}
	return vm.spill(v, x.Type), 0, flowNone
}

func (vm *VM) operandPlace(x *hir.Expr) (uint64, uint64, flow) {
	if x.Kind.IsPlace() {
		return vm.place(x)
	}
	v, f := vm.eval(x)
	if f != flowNone {
		return 0, 0, f
	}
	return vm.spill(v, x.Type), 0, flowNone
}

// sequence resolves an array or slice place to its data address and
// element count.
func (vm *VM) sequence(x *hir.Expr) (uint64, uint64, flow) {
	addr, meta, f := vm.operandPlace(x)
	if f != flowNone {
		return 0, 0, f
	}
	if tt, ok := vm.Types.Lookup(x.Type); ok && tt.Kind == types.KindArray {
		return addr, tt.Count, flowNone
	}
	return addr, meta, flowNone
}
