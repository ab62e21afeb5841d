package types

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// SelfIndex is the parameter index reserved for the implicit Self of a trait.
const SelfIndex = ^uint32(0)

// ParamInfo stores metadata about a generic type parameter.
type ParamInfo struct {
	Owner uint32 // symbols.ItemID of the declaring item
	Index uint32
	Name  string
	Sized bool // false for `?Sized`
}

type paramKey struct {
	owner, index uint32
}

// Param returns the parameter descriptor of owner at index.
func (in *Interner) Param(owner, index uint32, name string, sized bool) TypeID {
	key := paramKey{owner: owner, index: index}
	if id, ok := in.paramIndex[key]; ok {
		return id
	}
	in.params = append(in.params, ParamInfo{Owner: owner, Index: index, Name: name, Sized: sized})
	slot, err := safecast.Conv[uint32](len(in.params) - 1)
	if err != nil {
		panic(fmt.Errorf("type param overflow: %w", err))
	}
	id := in.internRaw(Type{Kind: KindParam, Payload: slot}, true)
	in.paramIndex[key] = id
	return id
}

// ParamInfo returns metadata for the provided generic parameter.
func (in *Interner) ParamInfo(id TypeID) (ParamInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindParam || tt.Payload == 0 || int(tt.Payload) >= len(in.params) {
		return ParamInfo{}, false
	}
	return in.params[tt.Payload], true
}

// ProjectionInfo describes `<Base as Trait<TraitArgs>>::Name`.
type ProjectionInfo struct {
	Base      TypeID
	Trait     uint32 // symbols.ItemID of the trait
	TraitName string
	TraitArgs []TypeID
	Name      string
}

// Projection returns the associated type projection descriptor.
func (in *Interner) Projection(p ProjectionInfo) TypeID {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(uint64(p.Base), 10))
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatUint(uint64(p.Trait), 10))
	for _, a := range p.TraitArgs {
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatUint(uint64(a), 10))
	}
	sb.WriteByte('|')
	sb.WriteString(p.Name)
	key := sb.String()
	if id, ok := in.projIndex[key]; ok {
		return id
	}
	p.TraitArgs = append([]TypeID(nil), p.TraitArgs...)
	in.projections = append(in.projections, p)
	slot, err := safecast.Conv[uint32](len(in.projections) - 1)
	if err != nil {
		panic(fmt.Errorf("projection overflow: %w", err))
	}
	id := in.internRaw(Type{Kind: KindProjection, Payload: slot}, true)
	in.projIndex[key] = id
	return id
}

// ProjectionInfo returns metadata for a projection type.
func (in *Interner) ProjectionInfo(id TypeID) (ProjectionInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindProjection || tt.Payload == 0 || int(tt.Payload) >= len(in.projections) {
		return ProjectionInfo{}, false
	}
	return in.projections[tt.Payload], true
}
