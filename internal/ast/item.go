package ast

import (
	"rsfront/internal/source"
	"rsfront/internal/token"
)

type ItemKind uint8

const (
	ItemFn ItemKind = iota
	ItemStruct
	ItemEnum
	ItemUnion
	ItemTrait
	ItemImpl
	ItemExternBlock
	ItemMod
	ItemConst
	ItemStatic
	ItemTypeAlias
	ItemMacroRules
)

var itemKindNames = [...]string{
	ItemFn:          "fn",
	ItemStruct:      "struct",
	ItemEnum:        "enum",
	ItemUnion:       "union",
	ItemTrait:       "trait",
	ItemImpl:        "impl",
	ItemExternBlock: "extern block",
	ItemMod:         "mod",
	ItemConst:       "const",
	ItemStatic:      "static",
	ItemTypeAlias:   "type",
	ItemMacroRules:  "macro_rules",
}

func (k ItemKind) String() string {
	if int(k) < len(itemKindNames) {
		return itemKindNames[k]
	}
	return "item"
}

type Item struct {
	Kind     ItemKind
	Span     source.Span
	Name     string
	NameSpan source.Span
	Attrs    []Attr
	Pub      bool
	Data     ItemData
}

type ItemData interface {
	itemData()
}

// SelfKind describes the receiver of a method.
type SelfKind uint8

const (
	SelfNone SelfKind = iota
	SelfValue
	SelfRef
	SelfRefMut
)

type FnParam struct {
	Pat  PatID
	Type TypeID
	Span source.Span
}

type FnItem struct {
	Generics Generics
	Self     SelfKind
	SelfMut  bool // `mut self`
	SelfSpan source.Span
	Params   []FnParam
	Variadic bool
	Ret      TypeID // NoTypeID means ()
	Body     ExprID // NoExprID for declarations
	Unsafe   bool
	Const    bool
	ABI      string // непустой для `extern "C" fn` и функций из extern-блоков
}

func (*FnItem) itemData() {}

type FieldDecl struct {
	Name string
	Type TypeID
	Pub  bool
	Span source.Span
}

// StructItem describes both structs and unions.
type StructItem struct {
	Generics Generics
	Fields   []FieldDecl
}

func (*StructItem) itemData() {}

type VariantDecl struct {
	Name   string
	Fields []TypeID
	Tuple  bool
	Span   source.Span
}

type EnumItem struct {
	Generics Generics
	Variants []VariantDecl
}

func (*EnumItem) itemData() {}

type TraitItem struct {
	Generics Generics
	Unsafe   bool
	Items    []ItemID
}

func (*TraitItem) itemData() {}

type ImplItem struct {
	Generics Generics
	Trait    *Path // nil for inherent impls
	Self     TypeID
	Unsafe   bool
	Items    []ItemID
}

func (*ImplItem) itemData() {}

type ExternBlockItem struct {
	ABI   string
	Items []ItemID
}

func (*ExternBlockItem) itemData() {}

type ModItem struct {
	Items []ItemID
}

func (*ModItem) itemData() {}

// ConstItem covers `const` and `static`.
type ConstItem struct {
	Type    TypeID
	Value   ExprID
	Mutable bool
}

func (*ConstItem) itemData() {}

// TypeAliasItem is `type X = T;` or, inside traits, `type Output;`.
type TypeAliasItem struct {
	Generics Generics
	Bounds   []Bound
	Type     TypeID
}

func (*TypeAliasItem) itemData() {}

// MacroRule holds the tokens between the outer delimiters of a matcher and a transcriber.
type MacroRule struct {
	Pattern []token.Token
	Body    []token.Token
	Span    source.Span
}

type MacroRulesItem struct {
	Rules []MacroRule
}

func (*MacroRulesItem) itemData() {}
