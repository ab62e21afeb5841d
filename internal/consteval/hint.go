package consteval

import "rsfront/internal/types"

// Hint is the expected type of a constant; the zero Hint means "no
// expectation" and lets unsuffixed literals default to i32.
type Hint struct {
	Kind  types.Kind
	Width types.Width
}

var (
	NoHint    = Hint{}
	UsizeHint = Hint{Kind: types.KindUint, Width: types.WidthSize}
	i32Hint   = Hint{Kind: types.KindInt, Width: types.Width32}
	boolHint  = Hint{Kind: types.KindBool}
)

var primitiveHints = map[string]Hint{
	"i8":    {types.KindInt, types.Width8},
	"i16":   {types.KindInt, types.Width16},
	"i32":   {types.KindInt, types.Width32},
	"i64":   {types.KindInt, types.Width64},
	"isize": {types.KindInt, types.WidthSize},
	"u8":    {types.KindUint, types.Width8},
	"u16":   {types.KindUint, types.Width16},
	"u32":   {types.KindUint, types.Width32},
	"u64":   {types.KindUint, types.Width64},
	"usize": {types.KindUint, types.WidthSize},
	"bool":  boolHint,
}

// HintFor returns the hint of a primitive integer or bool type name.
func HintFor(name string) (Hint, bool) {
	h, ok := primitiveHints[name]
	return h, ok
}

// HintOf derives the hint of a primitive TypeID.
func HintOf(in *types.Interner, id types.TypeID) (Hint, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoHint, false
	}
	switch tt.Kind {
	case types.KindInt, types.KindUint:
		return Hint{Kind: tt.Kind, Width: tt.Width}, true
	case types.KindBool:
		return boolHint, true
	}
	return NoHint, false
}

func (h Hint) integer() bool { return h.Kind == types.KindInt || h.Kind == types.KindUint }

func (h Hint) String() string {
	for name, p := range primitiveHints {
		if p == h {
			return name
		}
	}
	return "{integer}"
}

func (v Value) hint() Hint { return Hint{Kind: v.Kind, Width: v.Width} }
