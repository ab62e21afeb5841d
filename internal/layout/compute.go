package layout

import (
	"fortio.org/safecast"

	"rsfront/internal/types"
)

func (e *LayoutEngine) computeLayout(id types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	tt, ok := e.Types.Lookup(id)
	if !ok {
		return TypeLayout{Size: 0, Align: 1}, nil
	}

	switch tt.Kind {
	case types.KindUnit, types.KindNever:
		return TypeLayout{Size: 0, Align: 1}, nil

	case types.KindBool:
		return TypeLayout{Size: 1, Align: 1}, nil

	case types.KindInt, types.KindUint, types.KindFloat:
		if tt.Width == types.WidthSize {
			return e.ptrLayout(), nil
		}
		return scalarLayoutBytes(int(tt.Width) / 8), nil

	case types.KindPointer, types.KindReference:
		ptr := e.ptrLayout()
		if e.Types.IsFatPointer(id) {
			// (data, len)
			ptr.Size *= 2
			ptr.FieldOffsets = []int{0, e.ptrLayout().Size}
		}
		return ptr, nil

	case types.KindStr, types.KindSlice:
		return TypeLayout{Size: 0, Align: 1}, e.errorFor(LayoutErrUnsized, id)

	case types.KindParam, types.KindProjection:
		return TypeLayout{Size: 0, Align: 1}, e.errorFor(LayoutErrNotConcrete, id)

	case types.KindArray:
		if tt.Pending() {
			return TypeLayout{Size: 0, Align: 1}, e.errorFor(LayoutErrNotConcrete, id)
		}
		return e.arrayLayout(id, tt.Elem, tt.Count, state)

	case types.KindAdt:
		info, _ := e.Types.AdtInfo(id)
		switch info.Kind {
		case types.AdtUnion:
			return e.unionLayout(info, state)
		case types.AdtEnum:
			return e.enumLayout(info, state)
		default:
			return e.structLayout(info, state)
		}

	default:
		return TypeLayout{Size: 0, Align: 1}, nil
	}
}

func (e *LayoutEngine) errorFor(kind LayoutErrorKind, id types.TypeID) *LayoutError {
	return &LayoutError{Kind: kind, Type: id, Label: types.Label(e.Types, id)}
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize <= 0 {
		ptrSize = 8
	}
	if ptrAlign <= 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign}
}

func scalarLayoutBytes(size int) TypeLayout {
	if size <= 0 {
		return TypeLayout{Size: 0, Align: 1}
	}
	return TypeLayout{Size: size, Align: size}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func (e *LayoutEngine) arrayLayout(id, elem types.TypeID, length uint64, state *layoutState) (TypeLayout, *LayoutError) {
	elemLayout, err := e.layoutOf(elem, state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	elemAlign := max(elemLayout.Align, 1)
	stride := roundUp(elemLayout.Size, elemAlign)
	n, convErr := safecast.Conv[int](length)
	if convErr != nil {
		tooBig := e.errorFor(LayoutErrTooLarge, id)
		tooBig.Err = convErr
		return TypeLayout{Size: 0, Align: 1}, tooBig
	}
	if stride > 0 && n > (1<<47)/stride {
		return TypeLayout{Size: 0, Align: 1}, e.errorFor(LayoutErrTooLarge, id)
	}
	return TypeLayout{
		Size:  stride * n,
		Align: elemAlign,
	}, nil
}

// sequence lays fields out one after another starting at base.
func (e *LayoutEngine) sequence(base int, fields []types.TypeID, state *layoutState) (offsets []int, end, align int, err *LayoutError) {
	offsets = make([]int, len(fields))
	end, align = base, 1
	for i, f := range fields {
		fl, ferr := e.layoutOf(f, state)
		if ferr != nil {
			return nil, 0, 1, ferr
		}
		fAlign := max(fl.Align, 1)
		end = roundUp(end, fAlign)
		offsets[i] = end
		end += fl.Size
		align = max(align, fAlign)
	}
	return offsets, end, align, nil
}

func fieldTypes(info *types.AdtInfo) []types.TypeID {
	out := make([]types.TypeID, len(info.Fields))
	for i, f := range info.Fields {
		out[i] = f.Type
	}
	return out
}

func (e *LayoutEngine) structLayout(info *types.AdtInfo, state *layoutState) (TypeLayout, *LayoutError) {
	offsets, end, align, err := e.sequence(0, fieldTypes(info), state)
	if err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	return TypeLayout{
		Size:         roundUp(end, align),
		Align:        align,
		FieldOffsets: offsets,
	}, nil
}

// unionLayout overlays every field at offset zero.
func (e *LayoutEngine) unionLayout(info *types.AdtInfo, state *layoutState) (TypeLayout, *LayoutError) {
	size, align := 0, 1
	offsets := make([]int, len(info.Fields))
	for _, f := range info.Fields {
		fl, err := e.layoutOf(f.Type, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		size = max(size, fl.Size)
		align = max(align, fl.Align)
	}
	return TypeLayout{
		Size:         roundUp(size, align),
		Align:        align,
		FieldOffsets: offsets,
	}, nil
}

// TagSizeFor returns the discriminant width for n variants.
func TagSizeFor(n int) int {
	switch {
	case n <= 1<<8:
		return 1
	case n <= 1<<16:
		return 2
	default:
		return 4
	}
}

func (e *LayoutEngine) enumLayout(info *types.AdtInfo, state *layoutState) (TypeLayout, *LayoutError) {
	tag := TagSizeFor(len(info.Variants))
	payloadAlign := 1
	for _, v := range info.Variants {
		for _, f := range v.Fields {
			fl, err := e.layoutOf(f, state)
			if err != nil {
				return TypeLayout{Size: 0, Align: 1}, err
			}
			payloadAlign = max(payloadAlign, fl.Align)
		}
	}
	payload := roundUp(tag, payloadAlign)
	size := tag
	variants := make([][]int, len(info.Variants))
	for i, v := range info.Variants {
		offsets, end, _, err := e.sequence(payload, v.Fields, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		variants[i] = offsets
		size = max(size, end)
	}
	align := max(tag, payloadAlign)
	return TypeLayout{
		Size:           roundUp(size, align),
		Align:          align,
		TagSize:        tag,
		PayloadOffset:  payload,
		VariantOffsets: variants,
	}, nil
}
