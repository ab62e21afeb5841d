package vm

import (
	"bytes"
	"fmt"

	"rsfront/internal/hir"
	"rsfront/internal/types"
)

func (vm *VM) match(x *hir.Expr, d hir.MatchData) ([]byte, flow) {
	addr, _, f := vm.operandPlace(d.Scrutinee)
	if f != flowNone {
		return nil, f
	}
	for _, arm := range d.Arms {
		if !vm.patMatches(arm.Pat, addr) {
			continue
		}
		vm.bind(arm.Pat, addr)
		if arm.Guard != nil {
			g, f := vm.eval(arm.Guard)
			if f != flowNone {
				return nil, f
			}
			if g[0] == 0 {
				continue
			}
		}
		return vm.eval(arm.Body)
	}
	vm.frame().Span = x.Span
	vm.panic(PanicNonExhaustive, fmt.Sprintf("no match arm accepted a value of type `%s`", types.Label(vm.Types, d.Scrutinee.Type)))
	return nil, flowNone
}

// patMatches tests p against the value stored at addr without binding.
func (vm *VM) patMatches(p *hir.Pat, addr uint64) bool {
	switch p.Kind {
	case hir.PatWild, hir.PatBind:
		return true
	case hir.PatLiteral:
		n := vm.size(p.Type)
		got := vm.bytes(addr, n)
		if p.Value.Kind == hir.LiteralStr {
			s := vm.load(getUint(got[:vm.ptrSize]), int(getUint(got[vm.ptrSize:])))
			return string(s) == p.Value.Str
		}
		want := vm.literal(&hir.Expr{Type: p.Type}, p.Value)
		return bytes.Equal(got, want)
	case hir.PatVariant:
		l := vm.layout(p.Type)
		if getUint(vm.bytes(addr, l.TagSize)) != uint64(p.Variant) {
			return false
		}
		for i, sub := range p.Fields {
			if !vm.patMatches(sub, addr+uint64(l.VariantOffsets[p.Variant][i])) {
				return false
			}
		}
		return true
	}
	return false
}

// bind copies the parts of a matched value into the pattern's locals.
func (vm *VM) bind(p *hir.Pat, addr uint64) {
	switch p.Kind {
	case hir.PatBind:
		n := vm.size(p.Type)
		copy(vm.bytes(vm.frame().local(p.Local), n), vm.load(addr, n))
	case hir.PatVariant:
		l := vm.layout(p.Type)
		for i, sub := range p.Fields {
			vm.bind(sub, addr+uint64(l.VariantOffsets[p.Variant][i]))
		}
	}
}
