package layout

import (
	"fmt"
	"strings"

	"rsfront/internal/types"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursiveUnsized indicates a recursive type with no fixed size.
	LayoutErrRecursiveUnsized LayoutErrorKind = iota + 1
	// LayoutErrUnsized is reported for slices and str used by value.
	LayoutErrUnsized
	// LayoutErrNotConcrete is reported for generic parameters and projections.
	LayoutErrNotConcrete
	LayoutErrTooLarge
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  types.TypeID
	Label string
	Cycle []string // for LayoutErrRecursiveUnsized
	Err   error    // for LayoutErrTooLarge
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursiveUnsized:
		if len(e.Cycle) == 0 {
			return fmt.Sprintf("recursive type `%s` has infinite size", e.Label)
		}
		return fmt.Sprintf("recursive type `%s` has infinite size (cycle: %s)", e.Label, strings.Join(e.Cycle, " -> "))
	case LayoutErrUnsized:
		return fmt.Sprintf("the size of `%s` cannot be known at compilation time", e.Label)
	case LayoutErrNotConcrete:
		return fmt.Sprintf("layout of `%s` depends on generic parameters", e.Label)
	case LayoutErrTooLarge:
		if e.Err != nil {
			return fmt.Sprintf("type `%s` is too big: %v", e.Label, e.Err)
		}
		return fmt.Sprintf("type `%s` is too big", e.Label)
	default:
		return fmt.Sprintf("layout error kind=%d type `%s`", e.Kind, e.Label)
	}
}
