package symbols

import (
	"rsfront/internal/ast"
	"rsfront/internal/source"
)

// ItemKind classifies the semantic meaning of an item.
type ItemKind uint8

const (
	ItemInvalid ItemKind = iota
	ItemModule
	ItemFn
	ItemMethod
	ItemExternFn
	ItemIntrinsic
	ItemStruct
	ItemEnum
	ItemUnion
	ItemVariant
	ItemTrait
	ItemImpl
	ItemAssocType
	ItemConst
	ItemStatic
	ItemTypeAlias
)

func (k ItemKind) String() string {
	switch k {
	case ItemModule:
		return "module"
	case ItemFn:
		return "function"
	case ItemMethod:
		return "method"
	case ItemExternFn:
		return "extern function"
	case ItemIntrinsic:
		return "intrinsic"
	case ItemStruct:
		return "struct"
	case ItemEnum:
		return "enum"
	case ItemUnion:
		return "union"
	case ItemVariant:
		return "variant"
	case ItemTrait:
		return "trait"
	case ItemImpl:
		return "impl"
	case ItemAssocType:
		return "associated type"
	case ItemConst:
		return "const"
	case ItemStatic:
		return "static"
	case ItemTypeAlias:
		return "type alias"
	default:
		return "invalid"
	}
}

// Namespace separates type-level and value-level names.
type Namespace uint8

const (
	NSType Namespace = iota
	NSValue
)

// Namespace returns where the item kind lives for name lookup.
func (k ItemKind) Namespace() Namespace {
	switch k {
	case ItemFn, ItemExternFn, ItemIntrinsic, ItemConst, ItemStatic, ItemMethod:
		return NSValue
	default:
		return NSType
	}
}

// IsAdt reports struct, enum and union declarations.
func (k ItemKind) IsAdt() bool {
	return k == ItemStruct || k == ItemEnum || k == ItemUnion
}

// IsCallable reports items that can appear in call position.
func (k ItemKind) IsCallable() bool {
	switch k {
	case ItemFn, ItemMethod, ItemExternFn, ItemIntrinsic:
		return true
	}
	return false
}

// ItemFlags encode misc attributes for quick checks.
type ItemFlags uint16

const (
	FlagPublic ItemFlags = 1 << iota
	FlagUnsafe
	FlagConst
	FlagVariadic
	FlagPrelude
	FlagTupleVariant
)

// Strings returns a slice of textual flag labels.
func (f ItemFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	if f&FlagPublic != 0 {
		labels = append(labels, "public")
	}
	if f&FlagUnsafe != 0 {
		labels = append(labels, "unsafe")
	}
	if f&FlagConst != 0 {
		labels = append(labels, "const")
	}
	if f&FlagVariadic != 0 {
		labels = append(labels, "variadic")
	}
	if f&FlagPrelude != 0 {
		labels = append(labels, "prelude")
	}
	if f&FlagTupleVariant != 0 {
		labels = append(labels, "tuple")
	}
	return labels
}

// Item describes one declaration. Items are populated once and not changed
// after collection.
type Item struct {
	Name     string
	Kind     ItemKind
	Span     source.Span
	Flags    ItemFlags
	Decl     ast.ItemID   // NoItemID for variants
	Module   ScopeID      // enclosing module
	Parent   ItemID       // impl/trait of a method or assoc type, enum of a variant
	Generics *ast.Generics
	Lang     string
	ABI      string
	Index    int      // position of a variant inside its enum
	Members  []ItemID // methods and assoc types of impls/traits, variants of enums
	Scope    ScopeID  // own scope of a module
}

// Arity returns the number of generic parameters.
func (it *Item) Arity() int {
	if it.Generics == nil {
		return 0
	}
	return it.Generics.Len()
}

func (it *Item) Has(f ItemFlags) bool { return it.Flags&f != 0 }
