package vm

import (
	"bytes"
	"fmt"

	"rsfront/internal/hir"
	"rsfront/internal/layout"
	"rsfront/internal/source"
	"rsfront/internal/trace"
	"rsfront/internal/types"
)

// Options configures VM execution.
type Options struct {
	Tracer      trace.Tracer // call spans; nil disables tracing
	MaxDepth    int          // call depth limit, zero uses DefaultMaxDepth
	MemoryLimit int          // bytes, zero uses DefaultMemoryLimit
}

// DefaultMaxDepth bounds recursion before the VM reports a stack overflow.
const DefaultMaxDepth = 4096

// VM is a direct HIR interpreter. Values are byte strings laid out by the
// layout engine, so transmutes, unions and raw pointers behave as they do
// in compiled code.
type VM struct {
	M        *hir.Module
	Types    *types.Interner
	Layout   *layout.LayoutEngine
	Files    *source.FileSet
	RT       Runtime
	ExitCode int

	mem        *memory
	stack      []Frame
	globals    []uint64
	globalInit []uint8 // 0 untouched, 1 initializing, 2 ready
	strs       map[string]uint64
	eb         *errorBuilder
	tracer     trace.Tracer
	ptrSize    int
	maxDepth   int
	b          types.Builtins
	ready      bool

	// flowVal carries the operand of the pending break or return.
	flowVal []byte
}

// exitSignal unwinds the interpreter when the program calls exit().
type exitSignal struct{ code int }

// New creates a VM for the given module. The layout engine must be the one
// sema used so sizes agree with the checked transmutes.
func New(m *hir.Module, le *layout.LayoutEngine, rt Runtime, files *source.FileSet, opts Options) *VM {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	vm := &VM{
		M:          m,
		Types:      m.Types,
		Layout:     le,
		Files:      files,
		RT:         rt,
		mem:        newMemory(opts.MemoryLimit),
		globals:    make([]uint64, len(m.Globals)),
		globalInit: make([]uint8, len(m.Globals)),
		strs:       make(map[string]uint64),
		tracer:     opts.Tracer,
		ptrSize:    le.Target.PtrSize,
		maxDepth:   opts.MaxDepth,
		b:          m.Types.Builtins(),
	}
	vm.eb = &errorBuilder{vm: vm}
	return vm
}

// Run executes the entry point. The exit code is main's integer result,
// the argument of exit(), or 101 after a panic.
func (vm *VM) Run() (code int, vmErr *VMError) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch sig := r.(type) {
		case *VMError:
			fmt.Fprint(vm.RT.Stderr(), sig.FormatWithFiles(vm.Files))
			code, vmErr = panicExitCode, sig
		case exitSignal:
			code = sig.code
		default:
			panic(r)
		}
		vm.stack = vm.stack[:0]
		vm.RT.Exit(code)
		vm.ExitCode = code
	}()

	entry := vm.M.Func(vm.M.Entry)
	if entry == nil {
		return 1, vm.eb.makeError(PanicUnimplemented, "module has no entry point")
	}
	vm.prepare()
	out := vm.call(entry, nil)
	if vm.Types.IsInteger(entry.Result) {
		code = int(signExtend(getUint(out), len(out)))
	}
	vm.RT.Exit(code)
	vm.ExitCode = code
	return code, nil
}

// Call runs one function instance with already encoded arguments.
func (vm *VM) Call(fn *hir.Func, args [][]byte) (out []byte, vmErr *VMError) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*VMError)
			if !ok {
				panic(r)
			}
			vm.stack = vm.stack[:0]
			vmErr = e
		}
	}()
	vm.prepare()
	return vm.call(fn, args), nil
}

// prepare lays out statics and string literals once.
func (vm *VM) prepare() {
	if vm.ready {
		return
	}
	vm.ready = true
	for i := range vm.M.Globals {
		vm.globals[i] = vm.alloc(vm.M.Globals[i].Type)
	}
	vm.internStrings()
}

func (vm *VM) call(fn *hir.Func, args [][]byte) []byte {
	if len(vm.stack) >= vm.maxDepth {
		vm.panic(PanicStackOverflow, fmt.Sprintf("stack overflow in `%s`", fn.Name))
	}
	span := trace.Begin(vm.tracer, trace.ScopeNode, fn.Name, 0)
	defer span.End("")

	fr := newFrame(fn, vm.mem.mark())
	for i, l := range fn.Locals {
		fr.Locals[i] = vm.alloc(l.Type)
	}
	vm.stack = append(vm.stack, fr)
	for i, p := range fn.Params {
		if i < len(args) {
			copy(vm.bytes(fr.Locals[p-1], len(args[i])), args[i])
		}
	}
	out, f := vm.eval(fn.Body)
	if f == flowReturn {
		out = vm.flowVal
		vm.flowVal = nil
	}
	vm.stack = vm.stack[:len(vm.stack)-1]
	vm.mem.release(fr.mark)
	return out
}

func (vm *VM) frame() *Frame { return &vm.stack[len(vm.stack)-1] }

// size returns the byte size of a sized type.
func (vm *VM) size(t types.TypeID) int {
	n, err := vm.Layout.SizeOf(t)
	if err != nil {
		vm.raise(vm.eb.unimplemented(fmt.Sprintf("layout of `%s`: %v", types.Label(vm.Types, t), err)))
	}
	return n
}

func (vm *VM) alloc(t types.TypeID) uint64 {
	if t == types.NoTypeID || !vm.Types.IsSized(t) {
		return 0
	}
	l, err := vm.Layout.LayoutOf(t)
	if err != nil {
		return 0
	}
	return vm.allocBytes(l.Size, l.Align)
}

func (vm *VM) allocBytes(size, align int) uint64 {
	addr, ok := vm.mem.alloc(size, align)
	if !ok {
		vm.panic(PanicStackOverflow, "memory limit exceeded")
	}
	return addr
}

// bytes returns live memory; writes through it are visible to the program.
func (vm *VM) bytes(addr uint64, n int) []byte {
	b, err := vm.mem.slice(addr, n)
	if err != nil {
		vm.panic(PanicInvalidAddress, err.Error())
	}
	return b
}

// load copies n bytes out of memory.
func (vm *VM) load(addr uint64, n int) []byte {
	return bytes.Clone(vm.bytes(addr, n))
}

// spill stores an rvalue in a frame temporary and returns its address.
func (vm *VM) spill(v []byte, t types.TypeID) uint64 {
	align := 1
	if a, err := vm.Layout.AlignOf(t); err == nil {
		align = a
	}
	addr := vm.allocBytes(len(v), align)
	copy(vm.bytes(addr, len(v)), v)
	return addr
}

// internStrings places every string literal of the module in static
// memory below the first frame.
func (vm *VM) internStrings() {
	visit := func(x *hir.Expr) bool {
		if d, ok := x.Data.(hir.LiteralData); ok && d.Kind == hir.LiteralStr {
			if _, seen := vm.strs[d.Str]; !seen {
				addr := vm.allocBytes(len(d.Str)+1, 1)
				copy(vm.bytes(addr, len(d.Str)), d.Str)
				vm.strs[d.Str] = addr
			}
		}
		return true
	}
	for _, g := range vm.M.Globals {
		hir.Walk(g.Init, visit)
	}
	for _, fn := range vm.M.Funcs {
		hir.Walk(fn.Body, visit)
	}
}

func (vm *VM) global(id hir.GlobalID) uint64 {
	i := int(id) - 1
	g := vm.M.Globals[i]
	switch vm.globalInit[i] {
	case 0:
		vm.globalInit[i] = 1
		v, _ := vm.eval(g.Init)
		copy(vm.bytes(vm.globals[i], len(v)), v)
		vm.globalInit[i] = 2
	case 1:
		vm.panic(PanicUnimplemented, fmt.Sprintf("static `%s` depends on itself", g.Name))
	}
	return vm.globals[i]
}
