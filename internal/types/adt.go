package types

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// AdtKind distinguishes structs, enums and unions.
type AdtKind uint8

const (
	AdtStruct AdtKind = iota
	AdtEnum
	AdtUnion
)

func (k AdtKind) String() string {
	switch k {
	case AdtStruct:
		return "struct"
	case AdtEnum:
		return "enum"
	case AdtUnion:
		return "union"
	}
	return "adt"
}

// Field describes a single field of a struct or union instance.
type Field struct {
	Name string
	Type TypeID
}

// Variant is an enum variant with positional fields.
type Variant struct {
	Name   string
	Fields []TypeID
}

// AdtInfo stores metadata of one ADT instance. Generic declarations are
// instances whose arguments are their own parameters.
type AdtInfo struct {
	Item     uint32 // symbols.ItemID of the declaration
	Name     string
	Kind     AdtKind
	Args     []TypeID
	Fields   []Field
	Variants []Variant
	filled   bool
}

// FieldIndex returns the position of a named field.
func (a *AdtInfo) FieldIndex(name string) (int, bool) {
	for i, f := range a.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

// VariantIndex returns the position of a named variant.
func (a *AdtInfo) VariantIndex(name string) (int, bool) {
	for i, v := range a.Variants {
		if v.Name == name {
			return i, true
		}
	}
	return -1, false
}

func adtKey(item uint32, args []TypeID) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(uint64(item), 10))
	for _, a := range args {
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatUint(uint64(a), 10))
	}
	return sb.String()
}

// Adt returns the instance of declaration item with the given arguments,
// registering it on first request. Fields are filled lazily through
// Hooks.FillAdt, so self-referential instances terminate.
func (in *Interner) Adt(kind AdtKind, item uint32, name string, args []TypeID) TypeID {
	key := adtKey(item, args)
	if id, ok := in.adtIndex[key]; ok {
		return id
	}
	parametric := false
	for _, a := range args {
		if in.HasParams(a) {
			parametric = true
		}
	}
	in.adts = append(in.adts, &AdtInfo{Item: item, Name: name, Kind: kind, Args: append([]TypeID(nil), args...)})
	slot, err := safecast.Conv[uint32](len(in.adts) - 1)
	if err != nil {
		panic(fmt.Errorf("adt info overflow: %w", err))
	}
	id := in.internRaw(Type{Kind: KindAdt, Payload: slot}, parametric)
	in.adtIndex[key] = id
	return id
}

// AdtInfo returns metadata for the instance, filling its body on first access.
func (in *Interner) AdtInfo(id TypeID) (*AdtInfo, bool) {
	info := in.adtInfo(id)
	if info == nil {
		return nil, false
	}
	if !info.filled {
		info.filled = true
		if in.hooks.FillAdt != nil {
			in.hooks.FillAdt(id)
		}
	}
	return info, true
}

// AdtHeader returns metadata without triggering the body fill.
func (in *Interner) AdtHeader(id TypeID) (*AdtInfo, bool) {
	info := in.adtInfo(id)
	return info, info != nil
}

// SetAdtBody stores resolved fields and variants of an instance.
func (in *Interner) SetAdtBody(id TypeID, fields []Field, variants []Variant) {
	info := in.adtInfo(id)
	if info == nil {
		return
	}
	info.filled = true
	info.Fields = fields
	info.Variants = variants
}

// Adts lists every registered instance in registration order.
func (in *Interner) Adts() []TypeID {
	out := make([]TypeID, 0, len(in.adts))
	for _, id := range in.adtIndex {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (in *Interner) adtInfo(id TypeID) *AdtInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindAdt {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.adts) {
		return nil
	}
	return in.adts[tt.Payload]
}
