package layout

import (
	"rsfront/internal/types"
)

// TypeLayout is the ABI layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Struct and union fields, in declaration order.
	FieldOffsets []int

	// Enums: tag first, then the payload of the active variant.
	TagSize        int
	PayloadOffset  int
	VariantOffsets [][]int
}

// LayoutEngine computes memory layout for types.
type LayoutEngine struct {
	Target Target
	Types  *types.Interner

	cache *cache
}

// New creates a new LayoutEngine for the specified target.
func New(target Target, typesIn *types.Interner) *LayoutEngine {
	return &LayoutEngine{
		Target: target,
		Types:  typesIn,
		cache:  newCache(),
	}
}

type layoutState struct {
	stack []types.TypeID
	index map[types.TypeID]int
}

func newLayoutState() *layoutState {
	return &layoutState{
		index: make(map[types.TypeID]int, 32),
	}
}

// LayoutOf computes and caches the layout of a type.
func (e *LayoutEngine) LayoutOf(t types.TypeID) (TypeLayout, error) {
	l, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return l, err
	}
	return l, nil
}

// CachedCount reports how many layouts are memoized.
func (e *LayoutEngine) CachedCount() int { return e.cache.len() }

func (e *LayoutEngine) layoutOf(t types.TypeID, state *layoutState) (TypeLayout, *LayoutError) {
	if cached, ok := e.cache.get(t); ok {
		return cached.Layout, cached.Err
	}

	if idx, ok := state.index[t]; ok {
		cycle := make([]string, 0, len(state.stack)-idx+1)
		for _, id := range state.stack[idx:] {
			cycle = append(cycle, types.Label(e.Types, id))
		}
		cycle = append(cycle, types.Label(e.Types, t))
		err := &LayoutError{
			Kind:  LayoutErrRecursiveUnsized,
			Type:  t,
			Label: types.Label(e.Types, t),
			Cycle: cycle,
		}
		e.cache.put(t, cacheEntry{Layout: TypeLayout{Size: 0, Align: 1}, Err: err})
		return TypeLayout{Size: 0, Align: 1}, err
	}

	state.index[t] = len(state.stack)
	state.stack = append(state.stack, t)
	layout, err := e.computeLayout(t, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, t)

	e.cache.put(t, cacheEntry{Layout: layout, Err: err})
	return layout, err
}

// SizeOf returns the size of a type in bytes.
func (e *LayoutEngine) SizeOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *LayoutEngine) AlignOf(t types.TypeID) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of a struct or union field.
func (e *LayoutEngine) FieldOffset(adt types.TypeID, fieldIdx int) (int, error) {
	l, err := e.LayoutOf(adt)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIdx], nil
}

// VariantFieldOffset returns the byte offset of a field of an enum variant.
func (e *LayoutEngine) VariantFieldOffset(enum types.TypeID, variant, fieldIdx int) (int, error) {
	l, err := e.LayoutOf(enum)
	if err != nil {
		return 0, err
	}
	if variant < 0 || variant >= len(l.VariantOffsets) {
		return 0, nil
	}
	offs := l.VariantOffsets[variant]
	if fieldIdx < 0 || fieldIdx >= len(offs) {
		return 0, nil
	}
	return offs[fieldIdx], nil
}
