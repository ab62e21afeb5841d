package symbols

// ScopeID identifies a module scope in the table.
type ScopeID uint32

const (
	// NoScopeID marks the absence of a scope reference.
	NoScopeID ScopeID = 0
)

// IsValid reports whether the scope ID refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// ItemID identifies a declared item inside the table.
type ItemID uint32

const (
	// NoItemID marks the absence of an item reference.
	NoItemID ItemID = 0
)

// IsValid reports whether the item ID refers to an allocated item.
func (id ItemID) IsValid() bool { return id != NoItemID }
