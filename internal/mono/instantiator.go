package mono

import (
	"rsfront/internal/symbols"
	"rsfront/internal/types"
)

const DefaultMaxDepth = 64

type Options struct {
	MaxDepth int
}

// ParamsFunc returns the generic parameter types of an item in instantiation
// order: parameters of the enclosing impl first, then the item's own.
type ParamsFunc func(item symbols.ItemID) []types.TypeID

// Instantiator is the instantiation cache plus the queue of instances whose
// bodies are not built yet. It is single-writer: one compilation unit owns it.
type Instantiator struct {
	Symbols *symbols.Table
	Types   *types.Interner

	params ParamsFunc
	opts   Options
	cache  map[MonoKey]*Instance
	order  []*Instance
	queue  []*Instance
}

func New(table *symbols.Table, typesIn *types.Interner, params ParamsFunc, opts Options) *Instantiator {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Instantiator{
		Symbols: table,
		Types:   typesIn,
		params:  params,
		opts:    opts,
		cache:   make(map[MonoKey]*Instance, 64),
	}
}

// Instantiate returns the instance of item for args, creating and queueing
// it on first request. parent is the instance whose body asked for it and
// bounds the instantiation depth.
func (m *Instantiator) Instantiate(item symbols.ItemID, args []types.TypeID, site UseSite, parent *Instance) (*Instance, error) {
	key := KeyOf(item, args)
	if inst, ok := m.cache[key]; ok {
		inst.addUseSite(site)
		return inst, nil
	}
	params := m.params(item)
	name := m.Symbols.Path(item)
	if len(params) != len(args) {
		return nil, &Error{Kind: ErrArityMismatch, Item: name, Want: len(params), Got: len(args)}
	}
	subst := make(types.Subst, len(params))
	for i, p := range params {
		if m.Types.HasParams(args[i]) {
			return nil, &Error{Kind: ErrNotConcrete, Item: name, Type: types.Label(m.Types, args[i])}
		}
		info, _ := m.Types.ParamInfo(p)
		if info.Sized && !m.Types.IsSized(args[i]) {
			return nil, &Error{Kind: ErrUnsizedArgument, Item: name, Param: info.Name, Type: types.Label(m.Types, args[i])}
		}
		subst[p] = args[i]
	}
	depth := 0
	if parent != nil {
		depth = parent.Depth + 1
	}
	if depth > m.opts.MaxDepth {
		return nil, &Error{Kind: ErrDepthExceeded, Item: name, Depth: m.opts.MaxDepth}
	}
	inst := &Instance{
		Key:      key,
		Item:     item,
		TypeArgs: append([]types.TypeID(nil), args...),
		Subst:    subst,
		Depth:    depth,
		Parent:   parent,
	}
	inst.addUseSite(site)
	m.cache[key] = inst
	m.order = append(m.order, inst)
	m.queue = append(m.queue, inst)
	return inst, nil
}

// Lookup returns a cached instance without creating one.
func (m *Instantiator) Lookup(item symbols.ItemID, args []types.TypeID) (*Instance, bool) {
	inst, ok := m.cache[KeyOf(item, args)]
	return inst, ok
}

// Next pops the oldest queued instance and marks it as being built.
func (m *Instantiator) Next() (*Instance, bool) {
	for len(m.queue) > 0 {
		inst := m.queue[0]
		m.queue = m.queue[1:]
		if inst.state == stateQueued {
			inst.state = stateBuilding
			return inst, true
		}
	}
	return nil, false
}

// Finish marks the body of inst as built.
func (m *Instantiator) Finish(inst *Instance) { inst.state = stateDone }

// Instances lists every instance in creation order.
func (m *Instantiator) Instances() []*Instance { return m.order }

// Len returns the number of cached instances.
func (m *Instantiator) Len() int { return len(m.order) }
