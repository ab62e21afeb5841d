package vm_test

import (
	"context"
	"strings"
	"testing"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/hir"
	"rsfront/internal/layout"
	"rsfront/internal/macro"
	"rsfront/internal/parser"
	"rsfront/internal/sema"
	"rsfront/internal/source"
	"rsfront/internal/symbols"
	"rsfront/internal/vm"
)

type program struct {
	m     *hir.Module
	le    *layout.LayoutEngine
	files *source.FileSet
}

func compile(t *testing.T, src string) program {
	t.Helper()
	fs := source.NewFileSet()
	b := ast.NewBuilder(ast.Hints{})
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}

	prelude := parser.ParseFile(fs, fs.AddVirtual(sema.PreludeName, sema.PreludeSource()), b, parser.Options{Reporter: rep})
	user := parser.ParseFile(fs, fs.AddVirtual("main.rs", []byte(src)), b, parser.Options{Reporter: rep})
	macro.ExpandFile(b, user.File, macro.Options{Reporter: rep, Files: fs})
	table := symbols.NewTable(b)
	table.CollectFile(prelude.File, symbols.CollectOptions{Reporter: rep, Prelude: true})
	table.CollectFile(user.File, symbols.CollectOptions{Reporter: rep})
	res := sema.Check(context.Background(), table, sema.Options{Reporter: rep})
	if bag.HasErrors() || res.Module == nil {
		t.Fatalf("compile errors: %+v", bag.Items())
	}
	return program{m: res.Module, le: res.Layout, files: fs}
}

func run(t *testing.T, src string) (int, *vm.TestRuntime, *vm.VMError) {
	t.Helper()
	p := compile(t, src)
	rt := vm.NewTestRuntime()
	code, vmErr := vm.New(p.m, p.le, rt, p.files, vm.Options{}).Run()
	return code, rt, vmErr
}

const printfDecl = `extern "C" { fn printf(fmt: *const i8, ...); }
`

func TestRunExitCode(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"unit main", `fn main() {}`, 0},
		{"literal", `fn main() -> i32 { 42 }`, 42},
		{"arithmetic", `fn main() -> i32 { let a = 7; let b = 3; a * b - a / b + a % b }`, 20},
		{"wrapping", `fn main() -> i32 { let x: u8 = 255; let y = x + 1; y as i32 }`, 0},
		{"signed division", `fn main() -> i32 { let a = -7; a / 2 + 10 }`, 7},
		{"shifts", `fn main() -> i32 { let a = -16; let b: u32 = 1; (a >> 2) + (b << 4) as i32 }`, 12},
		{"generic instances", `
fn id<T>(x: T) -> T { x }
fn main() -> i32 { let a = id(40); let b: u8 = id(2); a + b as i32 }`, 42},
		{"struct fields", `
struct P { x: i32, y: i32 }
fn sum(p: P) -> i32 { p.x + p.y }
fn main() -> i32 { let mut p = P { x: 1, y: 2 }; p.y = 10; sum(p) }`, 11},
		{"loop break value", `
fn main() -> i32 {
    let mut i = 0;
    let v = loop { i += 1; if i == 10 { break i * 2; } };
    v - 20
}`, 0},
		{"while", `
fn main() -> i32 {
    let mut n = 0;
    let mut acc = 0;
    while n < 5 { n += 1; if n == 2 { continue; } acc += n; }
    acc
}`, 13},
		{"match enum", `
enum Shape { Dot, Line(i32), Rect(i32, i32) }
fn area(s: Shape) -> i32 {
    match s {
        Shape::Dot => 0,
        Shape::Line(n) if n > 100 => n,
        Shape::Line(_) => 1,
        Shape::Rect(w, h) => w * h,
    }
}
fn main() -> i32 { area(Shape::Rect(2, 3)) + area(Shape::Line(5)) + area(Shape::Dot) }`, 7},
		{"match literal", `
fn f(x: i32) -> i32 { match x { 0 => 10, -1 => 20, _ => 30 } }
fn main() -> i32 { f(0) + f(-1) + f(9) }`, 60},
		{"early return", `
fn f(x: i32) -> i32 { if x > 3 { return 1; } 2 }
fn main() -> i32 { f(5) * 10 + f(0) }`, 12},
		{"references", `
fn bump(p: &mut i32) { *p += 5; }
fn main() -> i32 { let mut x = 1; bump(&mut x); x }`, 6},
		{"array index", `fn main() -> i32 { let a = [1, 2, 3]; let i = 2; a[i] + a[0] }`, 4},
		{"statics", `
static mut COUNTER: u32 = 3;
fn main() -> i32 { unsafe { COUNTER += 4; COUNTER as i32 } }`, 7},
		{"transmute", `
extern "rust-intrinsic" { fn transmute<U, V>(_: U) -> V; }
fn main() -> i32 {
    let b: [u8; 4] = unsafe { transmute(0x01020304u32) };
    b[0] as i32 + b[3] as i32
}`, 5},
		{"union", `
union U { a: u32, b: [u8; 4] }
fn main() -> i32 { let u = U { a: 258 }; unsafe { u.b[1] as i32 } }`, 1},
		{"float casts", `fn main() -> i32 { let f = 2.75; let g = -1.0f32; f as i32 + g as u8 as i32 }`, 2},
		{"unit compared with str", `
macro_rules! m { () => {{}}; }
fn main() -> i32 {
    let eq = m!() == "abc";
    let ne = m!() != "abc";
    if eq { 1 } else if ne { 7 } else { 2 }
}`, 7},
		{"integer locals typed by use", `
fn main() -> i32 {
    let a = [10, 20, 30];
    let i = 1;
    let mut j = 0;
    while j < 2 { j += 1; }
    let b: u8 = 3;
    let k = 4;
    let c = b + k;
    let m = 5;
    a[i] + a[j] + c as i32 + m
}`, 62},
		{"computed range evaluated once", `
static mut CALLS: i32 = 0;
fn r() -> Range<usize> { unsafe { CALLS += 1; } 1..3 }
fn main() -> i32 {
    let a = [1, 2, 3, 4];
    let s = &a[r()];
    let c = unsafe { CALLS };
    c * 10 + s[0] + s[1]
}`, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, rt, vmErr := run(t, tt.src)
			if vmErr != nil {
				t.Fatalf("panic: %v\n%s", vmErr, rt.Err.String())
			}
			if code != tt.want {
				t.Fatalf("exit code: want %d, got %d", tt.want, code)
			}
		})
	}
}

func TestSliceIndexThroughTrait(t *testing.T) {
	code, rt, vmErr := run(t, printfDecl+`
extern "rust-intrinsic" {
    pub fn offset<T>(dst: *const T, offset: isize) -> *const T;
}
struct FatPtr<T> { data: *const T, len: usize }
pub union Repr<T> { rust: *const [T], rust_mut: *mut [T], raw: FatPtr<T> }
#[lang = "const_slice_ptr"]
impl<T> *const [T] {
    pub const fn as_ptr(self) -> *const T { self as *const T }
}
#[lang = "const_ptr"]
impl<T> *const T {
    pub const unsafe fn offset(self, count: isize) -> *const T { unsafe { offset(self, count) } }
    pub const unsafe fn add(self, count: usize) -> Self { unsafe { self.offset(count as isize) } }
}
const fn slice_from_raw_parts<T>(data: *const T, len: usize) -> *const [T] {
    unsafe { Repr { raw: FatPtr { data, len } }.rust }
}
#[lang = "index"]
trait Index<Idx> {
    type Output;
    fn index(&self, index: Idx) -> &Self::Output;
}
pub unsafe trait SliceIndex<T> {
    type Output;
    unsafe fn get_unchecked(self, slice: *const T) -> *const Self::Output;
    fn index(self, slice: &T) -> &Self::Output;
}
unsafe impl<T> SliceIndex<[T]> for Range<usize> {
    type Output = [T];
    unsafe fn get_unchecked(self, slice: *const [T]) -> *const [T] {
        unsafe {
            let a: *const T = slice.as_ptr();
            let b: *const T = a.add(self.start);
            slice_from_raw_parts(b, self.end - self.start)
        }
    }
    fn index(self, slice: &[T]) -> &[T] { unsafe { &*self.get_unchecked(slice) } }
}
impl<T, I> Index<I> for [T] where I: SliceIndex<[T]> {
    type Output = I::Output;
    fn index(&self, index: I) -> &I::Output { index.index(self) }
}
fn main() -> i32 {
    let a = [1, 2, 3, 4, 5];
    let b = &a[1..3];
    let c = b[1];
    printf("%d %d\n\0" as *const str as *const i8, b[0], c);
    c - 3
}
`)
	if vmErr != nil {
		t.Fatalf("panic: %v", vmErr)
	}
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if got := rt.Out.String(); got != "2 3\n" {
		t.Fatalf("stdout: %q", got)
	}
}

func TestPrintf(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unsigned", `printf("%u\n\0" as *const str as *const i8, 1u32);`, "1\n"},
		{"signed width", `printf("[%5d|%-4d|%05d]\0" as *const str as *const i8, -42, 7, 42);`, "[  -42|7   |00042]"},
		{"hex", `printf("%x %X %o\0" as *const str as *const i8, 255, 255, 8);`, "ff FF 10"},
		{"long", `printf("%ld\0" as *const str as *const i8, -5000000000i64);`, "-5000000000"},
		{"char and percent", `printf("%c%%\0" as *const str as *const i8, 65);`, "A%"},
		{"string", `printf("<%s>\0" as *const str as *const i8, "hi\0" as *const str as *const i8);`, "<hi>"},
		{"float", `printf("%.2f\0" as *const str as *const i8, 3.14159);`, "3.14"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rt, vmErr := run(t, printfDecl+"fn main() { "+tt.body+" }")
			if vmErr != nil {
				t.Fatalf("panic: %v", vmErr)
			}
			if got := rt.Out.String(); got != tt.want {
				t.Fatalf("stdout: want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPanics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code vm.PanicCode
		msg  string
	}{
		{"index out of bounds", `fn main() -> i32 { let a = [1, 2, 3]; let i = 3; a[i] }`,
			vm.PanicOutOfBounds, "index out of bounds: the len is 3 but the index is 3"},
		{"divide by zero", `fn main() -> i32 { let z = 0; 10 / z }`,
			vm.PanicDivideByZero, "attempt to divide by zero"},
		{"abort", `extern "C" { fn abort(); } fn main() { unsafe { abort(); } }`,
			vm.PanicUserAbort, "process aborted"},
		{"recursion", `fn f(x: i32) -> i32 { f(x + 1) } fn main() -> i32 { f(0) }`,
			vm.PanicStackOverflow, "stack overflow"},
		{"unknown extern", `extern "C" { fn getpid() -> i32; } fn main() -> i32 { unsafe { getpid() } }`,
			vm.PanicUnsupportedCall, "getpid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, rt, vmErr := run(t, tt.src)
			if vmErr == nil {
				t.Fatalf("expected panic, exit code %d", code)
			}
			if code != 101 {
				t.Fatalf("exit code: want 101, got %d", code)
			}
			if vmErr.Code != tt.code {
				t.Fatalf("code: want %s, got %s", tt.code, vmErr.Code)
			}
			if !strings.Contains(vmErr.Message, tt.msg) {
				t.Fatalf("message %q does not mention %q", vmErr.Message, tt.msg)
			}
			if !strings.Contains(rt.Err.String(), "main.rs:") {
				t.Fatalf("stderr lacks a location:\n%s", rt.Err.String())
			}
		})
	}
}

func TestExitCall(t *testing.T) {
	code, rt, vmErr := run(t, `
extern "C" { fn exit(code: i32) -> !; fn puts(s: *const i8) -> i32; }
fn main() -> i32 {
    unsafe {
        puts("bye\0" as *const str as *const i8);
        exit(3);
    }
}
`)
	if vmErr != nil {
		t.Fatalf("panic: %v", vmErr)
	}
	if code != 3 || rt.ExitCode() != 3 {
		t.Fatalf("exit code %d (runtime %d)", code, rt.ExitCode())
	}
	if rt.Out.String() != "bye\n" {
		t.Fatalf("stdout: %q", rt.Out.String())
	}
}

func TestCallSingleFunction(t *testing.T) {
	p := compile(t, `fn add(a: i32, b: i32) -> i32 { a + b } fn main() -> i32 { add(1, 2) }`)
	machine := vm.New(p.m, p.le, vm.NewTestRuntime(), p.files, vm.Options{})
	fn := p.m.FindFunc("add")
	if fn == nil {
		t.Fatal("add not instantiated")
	}
	out, vmErr := machine.Call(fn, [][]byte{{40, 0, 0, 0}, {2, 0, 0, 0}})
	if vmErr != nil {
		t.Fatalf("panic: %v", vmErr)
	}
	if len(out) != 4 || out[0] != 42 {
		t.Fatalf("result %v", out)
	}
}
