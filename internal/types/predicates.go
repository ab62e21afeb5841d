package types

// IsSized reports whether values of id have a size known at compile time.
func (in *Interner) IsSized(id TypeID) bool {
	tt, ok := in.Lookup(id)
	if !ok {
		return true
	}
	switch tt.Kind {
	case KindSlice, KindStr:
		return false
	case KindParam:
		info, _ := in.ParamInfo(id)
		return info.Sized
	}
	return true
}

// IsInteger reports whether id is a signed or unsigned integer.
func (in *Interner) IsInteger(id TypeID) bool {
	k := in.KindOf(id)
	return k == KindInt || k == KindUint
}

// IsSigned reports whether id is a signed integer or a float.
func (in *Interner) IsSigned(id TypeID) bool {
	k := in.KindOf(id)
	return k == KindInt || k == KindFloat
}

func (in *Interner) IsFloat(id TypeID) bool { return in.KindOf(id) == KindFloat }

func (in *Interner) IsNumeric(id TypeID) bool {
	return in.IsInteger(id) || in.IsFloat(id)
}

// IsPointerLike reports raw pointers and references.
func (in *Interner) IsPointerLike(id TypeID) bool {
	k := in.KindOf(id)
	return k == KindPointer || k == KindReference
}

// Pointee returns the element of a pointer or reference.
func (in *Interner) Pointee(id TypeID) (TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok || (tt.Kind != KindPointer && tt.Kind != KindReference) {
		return NoTypeID, false
	}
	return tt.Elem, true
}

// IsFatPointer reports pointers and references to slices or str, which
// carry a length next to the data address.
func (in *Interner) IsFatPointer(id TypeID) bool {
	elem, ok := in.Pointee(id)
	if !ok {
		return false
	}
	k := in.KindOf(elem)
	return k == KindSlice || k == KindStr
}

// ElemOf returns the element type of arrays and slices; str yields u8.
func (in *Interner) ElemOf(id TypeID) (TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID, false
	}
	switch tt.Kind {
	case KindArray, KindSlice:
		return tt.Elem, true
	case KindStr:
		return in.builtins.U8, true
	}
	return NoTypeID, false
}

// IsUnit reports the unit type.
func (in *Interner) IsUnit(id TypeID) bool { return id == in.builtins.Unit }
