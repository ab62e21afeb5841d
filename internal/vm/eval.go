package vm

import (
	"fmt"

	"rsfront/internal/ast"
	"rsfront/internal/hir"
	"rsfront/internal/types"
)

// flow reports how evaluation left an expression.
type flow uint8

const (
	flowNone flow = iota
	flowBreak
	flowContinue
	flowReturn
)

// eval computes the value of x as bytes in its memory layout. The returned
// slice is owned by the caller.
func (vm *VM) eval(x *hir.Expr) ([]byte, flow) {
	if len(vm.stack) > 0 {
		vm.frame().Span = x.Span
	}
	switch d := x.Data.(type) {
	case hir.LiteralData:
		return vm.literal(x, d), flowNone
	case hir.LocalData, hir.GlobalData, hir.DerefData, hir.FieldData, hir.IndexData:
		addr, _, f := vm.place(x)
		if f != flowNone {
			return nil, f
		}
		return vm.load(addr, vm.size(x.Type)), flowNone
	case hir.UnaryData:
		v, f := vm.eval(d.X)
		if f != flowNone {
			return nil, f
		}
		return vm.unary(d.Op, d.X.Type, v), flowNone
	case hir.BinaryData:
		return vm.binary(x, d)
	case hir.CastData:
		v, f := vm.eval(d.X)
		if f != flowNone {
			return nil, f
		}
		return vm.cast(d.Kind, d.X.Type, x.Type, v), flowNone
	case hir.AddrOfData:
		addr, meta, f := vm.place(d.X)
		if f != flowNone {
			return nil, f
		}
		if vm.Types.IsFatPointer(x.Type) {
			return vm.fat(addr, meta), flowNone
		}
		return vm.word(addr), flowNone
	case hir.UnsizeData:
		v, f := vm.eval(d.X)
		if f != flowNone {
			return nil, f
		}
		elem, _ := vm.Types.Pointee(d.X.Type)
		arr, _ := vm.Types.Lookup(elem)
		return vm.fat(getUint(v[:vm.ptrSize]), arr.Count), flowNone
	case hir.CallData:
		args, f := vm.evalList(d.Args)
		if f != flowNone {
			return nil, f
		}
		vm.frame().Span = x.Span
		return vm.call(vm.M.Func(d.Func), args), flowNone
	case hir.ExternCallData:
		args, f := vm.evalList(d.Args)
		if f != flowNone {
			return nil, f
		}
		vm.frame().Span = x.Span
		return vm.callExtern(vm.M.Extern(d.Extern), d.Args, args, x.Type), flowNone
	case hir.StructData:
		return vm.aggregate(x.Type, d.Fields, func(l layoutView, i int) int { return l.FieldOffsets[i] })
	case hir.VariantData:
		out, f := vm.aggregate(x.Type, d.Fields, func(l layoutView, i int) int { return l.VariantOffsets[d.Variant][i] })
		if f != flowNone {
			return nil, f
		}
		l := vm.layout(x.Type)
		putUint(out[:l.TagSize], uint64(d.Variant))
		return out, flowNone
	case hir.UnionData:
		v, f := vm.eval(d.Value)
		if f != flowNone {
			return nil, f
		}
		l := vm.layout(x.Type)
		out := make([]byte, l.Size)
		copy(out[l.FieldOffsets[d.Field]:], v)
		return out, flowNone
	case hir.ArrayData:
		elemSize := vm.size(vm.elemOf(x.Type))
		out := make([]byte, elemSize*len(d.Elems))
		for i, e := range d.Elems {
			v, f := vm.eval(e)
			if f != flowNone {
				return nil, f
			}
			copy(out[i*elemSize:], v)
		}
		return out, flowNone
	case hir.RepeatData:
		v, f := vm.eval(d.Value)
		if f != flowNone {
			return nil, f
		}
		out := make([]byte, 0, len(v)*int(d.Count))
		for range d.Count {
			out = append(out, v...)
		}
		return out, flowNone
	case hir.BlockData:
		return vm.block(d)
	case hir.IfData:
		c, f := vm.eval(d.Cond)
		if f != flowNone {
			return nil, f
		}
		if c[0] != 0 {
			return vm.eval(d.Then)
		}
		if d.Else != nil {
			return vm.eval(d.Else)
		}
		return nil, flowNone
	case hir.LoopData:
		for {
			_, f := vm.eval(d.Body)
			switch f {
			case flowBreak:
				v := vm.flowVal
				vm.flowVal = nil
				return v, flowNone
			case flowReturn:
				return nil, f
			}
		}
	case hir.BreakData:
		vm.flowVal = nil
		if d.Value != nil {
			v, f := vm.eval(d.Value)
			if f != flowNone {
				return nil, f
			}
			vm.flowVal = v
		}
		return nil, flowBreak
	case hir.ContinueData:
		return nil, flowContinue
	case hir.ReturnData:
		var v []byte
		if d.Value != nil {
			var f flow
			if v, f = vm.eval(d.Value); f != flowNone {
				return nil, f
			}
		}
		vm.flowVal = v
		return nil, flowReturn
	case hir.AssignData:
		return nil, vm.assign(d)
	case hir.MatchData:
		return vm.match(x, d)
	case hir.TransmuteData:
		return vm.eval(d.X)
	case hir.OffsetData:
		p, f := vm.eval(d.Ptr)
		if f != flowNone {
			return nil, f
		}
		c, f := vm.eval(d.Count)
		if f != flowNone {
			return nil, f
		}
		delta := signExtend(getUint(c), len(c)) * int64(d.Stride)
		return vm.word(getUint(p) + uint64(delta)), flowNone
	}
	vm.raise(vm.eb.unimplemented(fmt.Sprintf("expression %s", x.Kind)))
	return nil, flowNone
}

func (vm *VM) evalList(xs []*hir.Expr) ([][]byte, flow) {
	out := make([][]byte, len(xs))
	for i, x := range xs {
		v, f := vm.eval(x)
		if f != flowNone {
			return nil, f
		}
		out[i] = v
	}
	return out, flowNone
}

func (vm *VM) literal(x *hir.Expr, d hir.LiteralData) []byte {
	switch d.Kind {
	case hir.LiteralInt:
		out := make([]byte, vm.size(x.Type))
		putUint(out, d.Bits)
		return out
	case hir.LiteralFloat:
		out := make([]byte, vm.size(x.Type))
		putFloat(out, d.Float)
		return out
	case hir.LiteralBool:
		if d.Bool {
			return []byte{1}
		}
		return []byte{0}
	case hir.LiteralStr:
		return vm.fat(vm.strs[d.Str], uint64(len(d.Str)))
	}
	return nil
}

func (vm *VM) word(v uint64) []byte {
	out := make([]byte, vm.ptrSize)
	putUint(out, v)
	return out
}

func (vm *VM) fat(addr, meta uint64) []byte {
	out := make([]byte, 2*vm.ptrSize)
	putUint(out[:vm.ptrSize], addr)
	putUint(out[vm.ptrSize:], meta)
	return out
}

// layoutView is the part of a type layout aggregates are built from.
type layoutView struct {
	Size           int
	TagSize        int
	FieldOffsets   []int
	VariantOffsets [][]int
}

func (vm *VM) layout(t types.TypeID) layoutView {
	l, err := vm.Layout.LayoutOf(t)
	if err != nil {
		vm.raise(vm.eb.unimplemented(fmt.Sprintf("layout of `%s`: %v", types.Label(vm.Types, t), err)))
	}
	return layoutView{Size: l.Size, TagSize: l.TagSize, FieldOffsets: l.FieldOffsets, VariantOffsets: l.VariantOffsets}
}

func (vm *VM) aggregate(t types.TypeID, fields []*hir.Expr, offset func(layoutView, int) int) ([]byte, flow) {
	l := vm.layout(t)
	out := make([]byte, l.Size)
	for i, fx := range fields {
		v, f := vm.eval(fx)
		if f != flowNone {
			return nil, f
		}
		copy(out[offset(l, i):], v)
	}
	return out, flowNone
}

func (vm *VM) elemOf(t types.TypeID) types.TypeID {
	elem, _ := vm.Types.ElemOf(t)
	return elem
}

func (vm *VM) block(d hir.BlockData) ([]byte, flow) {
	for _, st := range d.Stmts {
		switch sd := st.Data.(type) {
		case hir.LetData:
			if sd.Init == nil {
				continue
			}
			v, f := vm.eval(sd.Init)
			if f != flowNone {
				return nil, f
			}
			if sd.Local.IsValid() {
				copy(vm.bytes(vm.frame().local(sd.Local), len(v)), v)
			}
		case hir.ExprStmtData:
			if _, f := vm.eval(sd.X); f != flowNone {
				return nil, f
			}
		}
	}
	if d.Tail == nil {
		return nil, flowNone
	}
	return vm.eval(d.Tail)
}

func (vm *VM) assign(d hir.AssignData) flow {
	v, f := vm.eval(d.Value)
	if f != flowNone {
		return f
	}
	addr, _, f := vm.place(d.Target)
	if f != flowNone {
		return f
	}
	size := vm.size(d.Target.Type)
	if d.Op == ast.BinNone {
		copy(vm.bytes(addr, size), v)
		return flowNone
	}
	res := vm.arith(d.Op, d.Target.Type, vm.load(addr, size), v)
	copy(vm.bytes(addr, size), res)
	return flowNone
}
