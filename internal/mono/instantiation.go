package mono

import (
	"slices"
	"strconv"
	"strings"

	"rsfront/internal/hir"
	"rsfront/internal/source"
	"rsfront/internal/symbols"
	"rsfront/internal/types"
)

// MonoKey is a comparable key for instantiations.
//
// Note: Go maps cannot use slices as keys, so we store a stable ArgsKey string.
// The corresponding type arguments are stored in Instance.
type MonoKey struct {
	Item    symbols.ItemID
	ArgsKey string
}

// KeyOf builds the cache key of item instantiated with args.
func KeyOf(item symbols.ItemID, args []types.TypeID) MonoKey {
	return MonoKey{Item: item, ArgsKey: typeArgsKey(args)}
}

func typeArgsKey(args []types.TypeID) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte('#')
		}
		b.WriteString(strconv.FormatUint(uint64(arg), 10))
	}
	return b.String()
}

// UseSite records a location where an instantiation is requested.
type UseSite struct {
	Span   source.Span
	Caller symbols.ItemID
}

type instState uint8

const (
	stateQueued instState = iota
	stateBuilding
	stateDone
)

// Instance is one concrete copy of a generic (or non-generic) item.
type Instance struct {
	Key      MonoKey
	Item     symbols.ItemID
	TypeArgs []types.TypeID
	Subst    types.Subst // generic parameters of the item (and its impl) to TypeArgs
	Depth    int
	Parent   *Instance
	UseSites []UseSite

	// Func is filled by the body builder; it is the HIR function of the instance.
	Func hir.FuncID

	state instState
}

// Done reports whether the body of the instance has been built.
func (i *Instance) Done() bool { return i.state == stateDone }

func (i *Instance) addUseSite(us UseSite) {
	if us == (UseSite{}) || slices.Contains(i.UseSites, us) {
		return
	}
	i.UseSites = append(i.UseSites, us)
}
