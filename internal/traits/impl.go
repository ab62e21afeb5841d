package traits

import (
	"slices"
	"strconv"

	"rsfront/internal/symbols"
	"rsfront/internal/types"
)

// Bound is one where-clause predicate `Type: Trait<Args>` of an impl.
type Bound struct {
	Type  types.TypeID
	Trait symbols.ItemID
	Args  []types.TypeID
}

// Impl is one `impl` block after its header types were resolved. Self and
// TraitArgs are patterns over Params.
type Impl struct {
	Item      symbols.ItemID
	Trait     symbols.ItemID // NoItemID for inherent impls
	Self      types.TypeID
	TraitArgs []types.TypeID
	Params    []types.TypeID
	Bounds    []Bound
	Assoc     map[string]types.TypeID
	Methods   map[string]symbols.ItemID
	Lang      string
}

// Inherent reports impls without a trait.
func (im *Impl) Inherent() bool { return !im.Trait.IsValid() }

// Match is an impl selected for concrete types together with the bindings
// of its parameters. Parameters not reachable from the header stay unbound.
type Match struct {
	Impl  *Impl
	Subst types.Subst
}

// Apply substitutes the bindings of m into t.
func (m Match) Apply(in *types.Interner, t types.TypeID) types.TypeID {
	return in.Subst(t, m.Subst)
}

// Complete reports whether every impl parameter is bound.
func (m Match) Complete() bool {
	for _, p := range m.Impl.Params {
		if _, ok := m.Subst[p]; !ok {
			return false
		}
	}
	return true
}

const maxBoundDepth = 32

type capKey struct {
	op    string
	recv  types.TypeID
	index types.TypeID
}

// Resolver owns the impl table. Impls are registered once after headers are
// resolved; queries are memoised per (operation, receiver, argument).
type Resolver struct {
	Types   *types.Interner
	Symbols *symbols.Table

	// Lang items used by index dispatch; zero when the unit does not declare them.
	IndexTrait  symbols.ItemID
	RangeStruct symbols.ItemID

	impls   []*Impl
	byItem  map[symbols.ItemID]*Impl
	byTrait map[symbols.ItemID][]*Impl
	caps    map[capKey]IndexResolution
}

// New creates an empty resolver. Lang items are taken from table when it is set.
func New(in *types.Interner, table *symbols.Table) *Resolver {
	r := &Resolver{
		Types:   in,
		Symbols: table,
		byItem:  make(map[symbols.ItemID]*Impl),
		byTrait: make(map[symbols.ItemID][]*Impl),
		caps:    make(map[capKey]IndexResolution),
	}
	if table != nil {
		r.IndexTrait, _ = table.Lang("index")
		r.RangeStruct, _ = table.Lang("Range")
	}
	return r
}

// Add registers an impl. Registration order is kept for dumps and errors.
func (r *Resolver) Add(im *Impl) {
	if im.Assoc == nil {
		im.Assoc = make(map[string]types.TypeID)
	}
	if im.Methods == nil {
		im.Methods = make(map[string]symbols.ItemID)
	}
	r.impls = append(r.impls, im)
	r.byItem[im.Item] = im
	if im.Trait.IsValid() {
		r.byTrait[im.Trait] = append(r.byTrait[im.Trait], im)
	}
	clear(r.caps)
}

// Impls returns every registered impl in registration order.
func (r *Resolver) Impls() []*Impl { return r.impls }

// ImplOf returns the impl record of an impl item.
func (r *Resolver) ImplOf(item symbols.ItemID) (*Impl, bool) {
	im, ok := r.byItem[item]
	return im, ok
}

// ImplsOf returns the impls of trait.
func (r *Resolver) ImplsOf(trait symbols.ItemID) []*Impl {
	return slices.Clone(r.byTrait[trait])
}

func (r *Resolver) name(id symbols.ItemID) string {
	if r.Symbols != nil {
		if it := r.Symbols.Item(id); it != nil {
			return it.Name
		}
	}
	return "#" + strconv.FormatUint(uint64(id), 10)
}

func (r *Resolver) label(t types.TypeID) string { return types.Label(r.Types, t) }
