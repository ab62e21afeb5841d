package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Never   TypeID
	Bool    TypeID
	Str     TypeID
	I8      TypeID
	I16     TypeID
	I32     TypeID
	I64     TypeID
	Isize   TypeID
	U8      TypeID
	U16     TypeID
	U32     TypeID
	U64     TypeID
	Usize   TypeID
	F32     TypeID
	F64     TypeID
}

// Hooks connect the interner to the semantic layer. All of them are optional.
type Hooks struct {
	// FillAdt computes fields and variants of an ADT instance on first use.
	FillAdt func(id TypeID)
	// Normalize resolves a projection whose base is concrete; NoTypeID when it cannot.
	Normalize func(id TypeID) TypeID
	// ArrayLen evaluates a pending array length under a substitution.
	ArrayLen func(handle uint32, s Subst) (uint64, bool)
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types      []Type
	parametric []bool
	index      map[typeKey]TypeID
	builtins   Builtins
	hooks      Hooks

	adts     []*AdtInfo
	adtIndex map[string]TypeID

	params     []ParamInfo
	paramIndex map[paramKey]TypeID

	projections []ProjectionInfo
	projIndex   map[string]TypeID
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:      make(map[typeKey]TypeID, 64),
		adtIndex:   make(map[string]TypeID),
		paramIndex: make(map[paramKey]TypeID),
		projIndex:  make(map[string]TypeID),
	}
	// слот 0 каждой side-таблицы зарезервирован
	in.adts = append(in.adts, nil)
	in.params = append(in.params, ParamInfo{})
	in.projections = append(in.projections, ProjectionInfo{})

	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid}, false)
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Never = in.Intern(Type{Kind: KindNever})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Str = in.Intern(Type{Kind: KindStr})
	in.builtins.I8 = in.Intern(MakeInt(Width8))
	in.builtins.I16 = in.Intern(MakeInt(Width16))
	in.builtins.I32 = in.Intern(MakeInt(Width32))
	in.builtins.I64 = in.Intern(MakeInt(Width64))
	in.builtins.Isize = in.Intern(MakeInt(WidthSize))
	in.builtins.U8 = in.Intern(MakeUint(Width8))
	in.builtins.U16 = in.Intern(MakeUint(Width16))
	in.builtins.U32 = in.Intern(MakeUint(Width32))
	in.builtins.U64 = in.Intern(MakeUint(Width64))
	in.builtins.Usize = in.Intern(MakeUint(WidthSize))
	in.builtins.F32 = in.Intern(MakeFloat(Width32))
	in.builtins.F64 = in.Intern(MakeFloat(Width64))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// SetHooks installs the semantic callbacks.
func (in *Interner) SetHooks(h Hooks) {
	in.hooks = h
}

// Primitive maps a primitive type name to its TypeID.
func (in *Interner) Primitive(name string) (TypeID, bool) {
	b := &in.builtins
	switch name {
	case "bool":
		return b.Bool, true
	case "str":
		return b.Str, true
	case "i8":
		return b.I8, true
	case "i16":
		return b.I16, true
	case "i32":
		return b.I32, true
	case "i64":
		return b.I64, true
	case "isize":
		return b.Isize, true
	case "u8":
		return b.U8, true
	case "u16":
		return b.U16, true
	case "u32":
		return b.U32, true
	case "u64":
		return b.U64, true
	case "usize":
		return b.Usize, true
	case "f32":
		return b.F32, true
	case "f64":
		return b.F64, true
	}
	return NoTypeID, false
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t, in.derivesParametric(t))
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type, parametric bool) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.parametric = append(in.parametric, parametric)
	in.index[typeKey(t)] = id
	return id
}

func (in *Interner) derivesParametric(t Type) bool {
	switch t.Kind {
	case KindParam, KindProjection:
		return true
	case KindArray:
		return t.Payload != 0 || in.HasParams(t.Elem)
	case KindSlice, KindPointer, KindReference:
		return in.HasParams(t.Elem)
	}
	return false
}

// HasParams reports whether id mentions a generic parameter, a projection
// or an array length that is not known yet.
func (in *Interner) HasParams(id TypeID) bool {
	if id == NoTypeID || int(id) >= len(in.parametric) {
		return false
	}
	return in.parametric[id]
}

// Len returns the number of interned descriptors including the invalid slot.
func (in *Interner) Len() int { return len(in.types) }

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// KindOf returns the kind of id, KindInvalid for unknown ids.
func (in *Interner) KindOf(id TypeID) Kind {
	tt, _ := in.Lookup(id)
	return tt.Kind
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Count   uint64
	Width   Width
	Mutable bool
	Payload uint32
}

// Convenience constructors.

func (in *Interner) Array(elem TypeID, n uint64) TypeID { return in.Intern(MakeArray(elem, n)) }
func (in *Interner) Slice(elem TypeID) TypeID           { return in.Intern(MakeSlice(elem)) }

func (in *Interner) Pointer(elem TypeID, mutable bool) TypeID {
	return in.Intern(MakePointer(elem, mutable))
}

func (in *Interner) Reference(elem TypeID, mutable bool) TypeID {
	return in.Intern(MakeReference(elem, mutable))
}
