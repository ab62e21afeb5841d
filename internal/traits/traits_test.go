package traits_test

import (
	"errors"
	"strings"
	"testing"

	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/parser"
	"rsfront/internal/source"
	"rsfront/internal/symbols"
	"rsfront/internal/traits"
	"rsfront/internal/types"
)

const declSrc = `
#[lang = "Range"]
pub struct Range<Idx> { pub start: Idx, pub end: Idx }
#[lang = "index"]
trait Index<Idx> { type Output; fn index(&self, index: Idx) -> &Self::Output; }
pub unsafe trait SliceIndex<T> { type Output; fn index(self, slice: &T) -> &Self::Output; }
trait Show { fn show(&self); }
struct Foo;
impl Foo { fn show(&self) {} }
impl Show for Foo { fn show(&self) {} }
`

type world struct {
	in       *types.Interner
	table    *symbols.Table
	r        *traits.Resolver
	b        types.Builtins
	index    symbols.ItemID
	sliceIdx symbols.ItemID
	show     symbols.ItemID
	rangeID  symbols.ItemID
	foo      types.TypeID
}

func (w *world) lookup(t *testing.T, name string) symbols.ItemID {
	t.Helper()
	id, ok := w.table.Lookup(w.table.Root, name, symbols.NSType)
	if !ok {
		t.Fatalf("%s not declared", name)
	}
	return id
}

func (w *world) rangeOf(t types.TypeID) types.TypeID {
	return w.in.Adt(types.AdtStruct, uint32(w.rangeID), "Range", []types.TypeID{t})
}

// newWorld registers the impls of the slice indexing library by hand:
//
//	impl<T> SliceIndex<[T]> for usize { type Output = T; }
//	impl<T> SliceIndex<[T]> for Range<usize> { type Output = [T]; }
//	impl<T, I> Index<I> for [T] where I: SliceIndex<[T]> { type Output = I::Output; }
func newWorld(t *testing.T) *world {
	t.Helper()
	fs := source.NewFileSet()
	b := ast.NewBuilder(ast.Hints{})
	bag := diag.NewBag(0)
	res := parser.ParseFile(fs, fs.AddVirtual("lib.rs", []byte(declSrc)), b, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if bag.HasErrors() {
		t.Fatalf("parse errors: %+v", bag.Items())
	}
	w := &world{in: types.NewInterner(), table: symbols.NewTable(b)}
	w.table.CollectFile(res.File, symbols.CollectOptions{})
	w.b = w.in.Builtins()
	w.r = traits.New(w.in, w.table)
	w.in.SetHooks(types.Hooks{Normalize: w.r.Hook()})
	w.index, w.sliceIdx, w.show = w.lookup(t, "Index"), w.lookup(t, "SliceIndex"), w.lookup(t, "Show")
	w.rangeID = w.lookup(t, "Range")
	fooID := w.lookup(t, "Foo")
	w.foo = w.in.Adt(types.AdtStruct, uint32(fooID), "Foo", nil)
	if w.r.IndexTrait != w.index || w.r.RangeStruct != w.rangeID {
		t.Fatal("lang items not picked up")
	}

	const usizeImpl, rangeImpl, sliceImpl = 1001, 1002, 1003
	T1 := w.in.Param(usizeImpl, 0, "T", true)
	w.r.Add(&traits.Impl{
		Item: usizeImpl, Trait: w.sliceIdx, Self: w.b.Usize,
		TraitArgs: []types.TypeID{w.in.Slice(T1)}, Params: []types.TypeID{T1},
		Assoc:   map[string]types.TypeID{"Output": T1},
		Methods: map[string]symbols.ItemID{"index": 2001, "get": 2002},
	})
	T2 := w.in.Param(rangeImpl, 0, "T", true)
	w.r.Add(&traits.Impl{
		Item: rangeImpl, Trait: w.sliceIdx, Self: w.rangeOf(w.b.Usize),
		TraitArgs: []types.TypeID{w.in.Slice(T2)}, Params: []types.TypeID{T2},
		Assoc:   map[string]types.TypeID{"Output": w.in.Slice(T2)},
		Methods: map[string]symbols.ItemID{"index": 2003, "get": 2004},
	})
	T3 := w.in.Param(sliceImpl, 0, "T", true)
	I3 := w.in.Param(sliceImpl, 1, "I", true)
	out := w.in.Projection(types.ProjectionInfo{Base: I3, Trait: uint32(w.sliceIdx), TraitName: "SliceIndex", TraitArgs: []types.TypeID{w.in.Slice(T3)}, Name: "Output"})
	w.r.Add(&traits.Impl{
		Item: sliceImpl, Trait: w.index, Self: w.in.Slice(T3),
		TraitArgs: []types.TypeID{I3}, Params: []types.TypeID{T3, I3},
		Bounds:  []traits.Bound{{Type: I3, Trait: w.sliceIdx, Args: []types.TypeID{w.in.Slice(T3)}}},
		Assoc:   map[string]types.TypeID{"Output": out},
		Methods: map[string]symbols.ItemID{"index": 2005},
	})
	return w
}

func TestFindImplAndNormalize(t *testing.T) {
	w := newWorld(t)
	i32s := w.in.Slice(w.b.I32)

	m, err := w.r.FindImpl(w.sliceIdx, w.rangeOf(w.b.Usize), []types.TypeID{i32s})
	if err != nil {
		t.Fatal(err)
	}
	if m.Impl.Item != 1002 || !m.Complete() {
		t.Fatalf("selected impl %d", m.Impl.Item)
	}

	proj := w.in.Projection(types.ProjectionInfo{Base: w.b.Usize, Trait: uint32(w.sliceIdx), TraitName: "SliceIndex", TraitArgs: []types.TypeID{i32s}, Name: "Output"})
	if got := w.r.Normalize(proj); got != w.b.I32 {
		t.Fatalf("<usize as SliceIndex<[i32]>>::Output = %s", types.Label(w.in, got))
	}

	if !w.r.Implements(w.index, i32s, []types.TypeID{w.b.Usize}) {
		t.Fatal("[i32]: Index<usize> must hold through the SliceIndex bound")
	}
	if w.r.Implements(w.index, i32s, []types.TypeID{w.b.Bool}) {
		t.Fatal("[i32]: Index<bool> must not hold")
	}

	_, err = w.r.FindImpl(w.sliceIdx, w.b.Bool, []types.TypeID{i32s})
	var te *traits.Error
	if !errors.As(err, &te) || te.Code() != diag.TraitNoMatchingImpl {
		t.Fatalf("expected no matching impl, got %v", err)
	}
	if want := "the trait `SliceIndex<[i32]>` is not implemented for `bool`"; te.Error() != want {
		t.Fatalf("message = %q", te.Error())
	}

	missing := w.in.Projection(types.ProjectionInfo{Base: w.b.Usize, Trait: uint32(w.sliceIdx), TraitName: "SliceIndex", TraitArgs: []types.TypeID{i32s}, Name: "Item"})
	if _, err := w.r.NormalizeErr(missing); !errors.As(err, &te) || te.Code() != diag.TraitUnknownAssocType {
		t.Fatalf("expected unknown assoc type, got %v", err)
	}
}

func TestBoundNotSatisfied(t *testing.T) {
	w := newWorld(t)
	im, _ := w.r.ImplOf(1003)
	s := types.Subst{im.Params[0]: w.b.I32, im.Params[1]: w.b.Bool}
	err := w.r.CheckBounds(traits.Match{Impl: im, Subst: s})
	var te *traits.Error
	if !errors.As(err, &te) || te.Code() != diag.TraitBoundNotSatisfied {
		t.Fatalf("expected bound error, got %v", err)
	}
	if !strings.HasPrefix(te.Error(), "the trait bound `bool: SliceIndex<[i32]>` is not satisfied") {
		t.Fatalf("message = %q", te.Error())
	}
}

func TestResolveIndex(t *testing.T) {
	w := newWorld(t)
	arr := w.in.Array(w.b.I32, 5)
	slice := w.in.Slice(w.b.I32)
	cases := []struct {
		name   string
		recv   types.TypeID
		index  types.TypeID
		kind   traits.IndexKind
		derefs int
		unsize bool
		output types.TypeID
		method symbols.ItemID
	}{
		{"array usize", arr, w.b.Usize, traits.IndexNative, 0, false, w.b.I32, 0},
		{"slice ref usize", w.in.Reference(slice, false), w.b.Usize, traits.IndexNative, 1, false, w.b.I32, 0},
		{"array range", arr, w.rangeOf(w.b.Usize), traits.IndexImpl, 0, true, slice, 2005},
		{"ref ref slice range", w.in.Reference(w.in.Reference(slice, false), false), w.rangeOf(w.b.Usize), traits.IndexImpl, 2, false, slice, 2005},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := w.r.ResolveIndex(tc.recv, tc.index)
			if err != nil {
				t.Fatal(err)
			}
			if res.Kind != tc.kind || res.Derefs != tc.derefs || res.Unsize != tc.unsize {
				t.Fatalf("got %s derefs=%d unsize=%v", res.Kind, res.Derefs, res.Unsize)
			}
			if res.Output != tc.output {
				t.Fatalf("output = %s", types.Label(w.in, res.Output))
			}
			if res.Method != tc.method {
				t.Fatalf("method = %d", res.Method)
			}
		})
	}

	if _, err := w.r.ResolveIndex(w.b.I32, w.b.Usize); err == nil {
		t.Fatal("i32 is not indexable")
	}
}

func TestResolveIndexWithoutImpls(t *testing.T) {
	in := types.NewInterner()
	r := traits.New(in, nil)
	r.RangeStruct = 7
	b := in.Builtins()
	rng := in.Adt(types.AdtStruct, 7, "Range", []types.TypeID{b.Usize})
	res, err := r.ResolveIndex(in.Array(b.U8, 4), rng)
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != traits.IndexNativeRange || !res.Unsize || res.Output != in.Slice(b.U8) {
		t.Fatalf("got %+v", res)
	}
}

func TestLookupMethod(t *testing.T) {
	w := newWorld(t)

	m, err := w.r.LookupMethod(w.rangeOf(w.b.Usize), "get")
	if err != nil {
		t.Fatal(err)
	}
	if m.Item != 2004 || m.Complete() {
		t.Fatal("T of the Range impl is bound from arguments, not the receiver")
	}

	w.r.Add(&traits.Impl{Item: 1010, Self: w.foo, Methods: map[string]symbols.ItemID{"show": 3001}})
	w.r.Add(&traits.Impl{Item: 1011, Trait: w.show, Self: w.foo, Methods: map[string]symbols.ItemID{"show": 3002}})
	m, err = w.r.LookupMethod(w.in.Reference(w.in.Reference(w.foo, false), false), "show")
	if err != nil {
		t.Fatal(err)
	}
	if m.Item != 3001 || m.Derefs != 2 {
		t.Fatalf("inherent method must win, got %d derefs=%d", m.Item, m.Derefs)
	}

	w.r.Add(&traits.Impl{Item: 1012, Self: w.foo, Methods: map[string]symbols.ItemID{"show": 3003}})
	_, err = w.r.LookupMethod(w.foo, "show")
	var te *traits.Error
	if !errors.As(err, &te) || te.Code() != diag.TraitAmbiguousMethod {
		t.Fatalf("expected ambiguity, got %v", err)
	}

	_, err = w.r.LookupMethod(w.foo, "missing")
	if !errors.As(err, &te) || te.Error() != "no method named `missing` found for `Foo`" {
		t.Fatalf("got %v", err)
	}
}

func TestLookupMethodSizedParam(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	r := traits.New(in, nil)
	sliceT := in.Param(1, 0, "T", true)
	ptrT := in.Param(2, 0, "T", true)
	r.Add(&traits.Impl{Item: 1, Self: in.Pointer(in.Slice(sliceT), false), Params: []types.TypeID{sliceT}, Methods: map[string]symbols.ItemID{"as_ptr": 10}})
	r.Add(&traits.Impl{Item: 2, Self: in.Pointer(ptrT, false), Params: []types.TypeID{ptrT}, Methods: map[string]symbols.ItemID{"as_ptr": 20}})

	m, err := r.LookupMethod(in.Pointer(in.Slice(b.I32), false), "as_ptr")
	if err != nil {
		t.Fatal(err)
	}
	if m.Item != 10 || m.Subst[sliceT] != b.I32 {
		t.Fatal("*const [i32] must select the slice pointer impl")
	}
	m, err = r.LookupMethod(in.Pointer(b.I32, false), "as_ptr")
	if err != nil || m.Item != 20 {
		t.Fatalf("*const i32 must select the thin pointer impl: %v", err)
	}
}

func TestDump(t *testing.T) {
	w := newWorld(t)
	var sb strings.Builder
	if err := w.r.Dump(&sb); err != nil {
		t.Fatal(err)
	}
	want := "impl<T, I> Index<I> for [T] where I: SliceIndex<[T]>\n" +
		"    type Output = <I as SliceIndex<[T]>>::Output\n" +
		"    fn index\n"
	if !strings.Contains(sb.String(), want) {
		t.Fatalf("dump:\n%s", sb.String())
	}
}
