package layout

import (
	"errors"
	"slices"
	"testing"

	"rsfront/internal/types"
)

func TestPrimitiveLayouts(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	eng := New(X86_64LinuxGNU(), in)

	cases := []struct {
		name  string
		id    types.TypeID
		size  int
		align int
	}{
		{"unit", b.Unit, 0, 1},
		{"bool", b.Bool, 1, 1},
		{"u8", b.U8, 1, 1},
		{"i16", b.I16, 2, 2},
		{"i32", b.I32, 4, 4},
		{"u64", b.U64, 8, 8},
		{"usize", b.Usize, 8, 8},
		{"f32", b.F32, 4, 4},
		{"*const u8", in.Pointer(b.U8, false), 8, 8},
		{"&[u8]", in.Reference(in.Slice(b.U8), false), 16, 8},
		{"*const str", in.Pointer(b.Str, false), 16, 8},
		{"[u8; 4]", in.Array(b.U8, 4), 4, 1},
		{"[i32; 5]", in.Array(b.I32, 5), 20, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := eng.LayoutOf(tc.id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l.Size != tc.size || l.Align != tc.align {
				t.Fatalf("got size=%d align=%d, want %d/%d", l.Size, l.Align, tc.size, tc.align)
			}
		})
	}
}

func TestPointerSizeFollowsTarget(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	target, err := TargetForPointerSize(4)
	if err != nil {
		t.Fatal(err)
	}
	eng := New(target, in)
	if size, _ := eng.SizeOf(b.Usize); size != 4 {
		t.Fatalf("usize on 32-bit: %d", size)
	}
	if size, _ := eng.SizeOf(in.Reference(in.Slice(b.U8), false)); size != 8 {
		t.Fatalf("&[u8] on 32-bit: %d", size)
	}
	if _, err := TargetForPointerSize(3); err == nil {
		t.Fatal("expected error for 3-byte pointers")
	}
}

func TestStructPadding(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	foo := in.Adt(types.AdtStruct, 1, "Foo", []types.TypeID{b.U32})
	in.SetAdtBody(foo, []types.Field{{Name: "a", Type: b.U32}, {Name: "b", Type: b.Bool}}, nil)
	mixed := in.Adt(types.AdtStruct, 2, "Mixed", nil)
	in.SetAdtBody(mixed, []types.Field{{Name: "a", Type: b.U8}, {Name: "b", Type: b.U64}, {Name: "c", Type: b.U16}}, nil)

	eng := New(X86_64LinuxGNU(), in)
	l, err := eng.LayoutOf(foo)
	if err != nil {
		t.Fatal(err)
	}
	if l.Size != 8 || l.Align != 4 || !slices.Equal(l.FieldOffsets, []int{0, 4}) {
		t.Fatalf("Foo<u32>: %+v", l)
	}
	l, err = eng.LayoutOf(mixed)
	if err != nil {
		t.Fatal(err)
	}
	if l.Size != 24 || !slices.Equal(l.FieldOffsets, []int{0, 8, 16}) {
		t.Fatalf("Mixed: %+v", l)
	}
	if off, _ := eng.FieldOffset(mixed, 2); off != 16 {
		t.Fatalf("FieldOffset(c) = %d", off)
	}
}

func TestUnionOverlay(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	fat := in.Adt(types.AdtStruct, 1, "FatPtr", []types.TypeID{b.U8})
	in.SetAdtBody(fat, []types.Field{{Name: "data", Type: in.Pointer(b.U8, false)}, {Name: "len", Type: b.Usize}}, nil)
	repr := in.Adt(types.AdtUnion, 2, "Repr", []types.TypeID{b.U8})
	in.SetAdtBody(repr, []types.Field{
		{Name: "rust", Type: in.Pointer(in.Slice(b.U8), false)},
		{Name: "rust_mut", Type: in.Pointer(in.Slice(b.U8), true)},
		{Name: "raw", Type: fat},
	}, nil)

	eng := New(X86_64LinuxGNU(), in)
	l, err := eng.LayoutOf(repr)
	if err != nil {
		t.Fatal(err)
	}
	if l.Size != 16 || l.Align != 8 || !slices.Equal(l.FieldOffsets, []int{0, 0, 0}) {
		t.Fatalf("Repr<u8>: %+v", l)
	}
}

func TestEnumLayout(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	opt := in.Adt(types.AdtEnum, 1, "Option", []types.TypeID{b.U32})
	in.SetAdtBody(opt, nil, []types.Variant{{Name: "None"}, {Name: "Some", Fields: []types.TypeID{b.U32}}})
	optRef := in.Adt(types.AdtEnum, 1, "Option", []types.TypeID{in.Reference(in.Slice(b.U8), false)})
	in.SetAdtBody(optRef, nil, []types.Variant{{Name: "None"}, {Name: "Some", Fields: []types.TypeID{in.Reference(in.Slice(b.U8), false)}}})

	eng := New(X86_64LinuxGNU(), in)
	l, err := eng.LayoutOf(opt)
	if err != nil {
		t.Fatal(err)
	}
	if l.Size != 8 || l.TagSize != 1 || l.PayloadOffset != 4 {
		t.Fatalf("Option<u32>: %+v", l)
	}
	if off, _ := eng.VariantFieldOffset(opt, 1, 0); off != 4 {
		t.Fatalf("Some.0 offset = %d", off)
	}
	l, err = eng.LayoutOf(optRef)
	if err != nil {
		t.Fatal(err)
	}
	if l.Size != 24 || l.Align != 8 || l.PayloadOffset != 8 {
		t.Fatalf("Option<&[u8]>: %+v", l)
	}
	if TagSizeFor(300) != 2 {
		t.Fatal("300 variants need a 2-byte tag")
	}
}

func TestLayoutErrors(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	node := in.Adt(types.AdtStruct, 1, "Node", nil)
	in.SetAdtBody(node, []types.Field{{Name: "v", Type: b.U8}, {Name: "next", Type: node}}, nil)
	list := in.Adt(types.AdtStruct, 2, "List", nil)
	in.SetAdtBody(list, []types.Field{{Name: "next", Type: in.Pointer(list, false)}}, nil)
	param := in.Param(9, 0, "T", true)

	eng := New(X86_64LinuxGNU(), in)
	cases := []struct {
		name string
		id   types.TypeID
		kind LayoutErrorKind
	}{
		{"recursive", node, LayoutErrRecursiveUnsized},
		{"slice", in.Slice(b.U8), LayoutErrUnsized},
		{"str", b.Str, LayoutErrUnsized},
		{"param", param, LayoutErrNotConcrete},
		{"array of param", in.Array(param, 2), LayoutErrNotConcrete},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eng.LayoutOf(tc.id)
			var le *LayoutError
			if !errors.As(err, &le) {
				t.Fatalf("expected *LayoutError, got %v", err)
			}
			if le.Kind != tc.kind {
				t.Fatalf("kind = %d, want %d (%s)", le.Kind, tc.kind, le.Error())
			}
		})
	}

	if size, err := eng.SizeOf(list); err != nil || size != 8 {
		t.Fatalf("List behind a pointer: size=%d err=%v", size, err)
	}
}

func TestRecursiveCycleLabels(t *testing.T) {
	in := types.NewInterner()
	a := in.Adt(types.AdtStruct, 1, "A", nil)
	bb := in.Adt(types.AdtStruct, 2, "B", nil)
	in.SetAdtBody(a, []types.Field{{Name: "b", Type: bb}}, nil)
	in.SetAdtBody(bb, []types.Field{{Name: "a", Type: a}}, nil)

	eng := New(X86_64LinuxGNU(), in)
	_, err := eng.LayoutOf(a)
	var le *LayoutError
	if !errors.As(err, &le) {
		t.Fatalf("expected layout error, got %v", err)
	}
	if !slices.Equal(le.Cycle, []string{"A", "B", "A"}) {
		t.Fatalf("cycle = %v", le.Cycle)
	}
	if le.Error() != "recursive type `A` has infinite size (cycle: A -> B -> A)" {
		t.Fatalf("message = %q", le.Error())
	}
}
