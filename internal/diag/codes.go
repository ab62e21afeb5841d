package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexUnterminatedBlock  Code = 1003
	LexBadNumber          Code = 1004
	LexBadEscape          Code = 1005

	// Синтаксические
	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynUnclosedDelimiter Code = 2002
	SynExpectIdentifier  Code = 2003
	SynExpectType        Code = 2004
	SynExpectExpression  Code = 2005
	SynExpectPattern     Code = 2006
	SynUnexpectedItem    Code = 2007
	SynBadMacroRules     Code = 2008
	SynVariadicNotLast   Code = 2009

	// Семантические: имена и типы
	SemaInfo             Code = 3000
	SemaError            Code = 3001
	SemaDuplicateSymbol  Code = 3002
	SemaUnresolvedSymbol Code = 3003
	SemaTypeMismatch     Code = 3004
	SemaNotAType         Code = 3005
	SemaNotAValue        Code = 3006
	SemaUnknownField     Code = 3007
	SemaMissingField     Code = 3008
	SemaBadOperands      Code = 3009
	SemaBadCast          Code = 3010
	SemaNotAssignable    Code = 3011
	SemaArgCount         Code = 3012
	SemaUninitialized    Code = 3013
	SemaUnitComparison   Code = 3014
	SemaUnsafeOperation  Code = 3015
	SemaNoEntrypoint     Code = 3016
	SemaBadPattern       Code = 3017
	SemaBreakOutsideLoop Code = 3018
	SemaUnionLiteral     Code = 3019

	// Макросы
	MacroUnknown        Code = 3100
	MacroNoMatchingRule Code = 3101
	MacroRecursion      Code = 3102
	MacroBadExpansion   Code = 3103

	// Мономорфизация
	MonoArityMismatch       Code = 3200
	MonoUnresolvedInference Code = 3201
	MonoDepthExceeded       Code = 3202
	MonoUnsizedArgument     Code = 3203

	// Трейты
	TraitNoMatchingImpl    Code = 3300
	TraitAmbiguousMethod   Code = 3301
	TraitUnknownAssocType  Code = 3302
	TraitBoundNotSatisfied Code = 3303

	// Интринсики и константы
	IntrinsicUnknown      Code = 3400
	IntrinsicSizeMismatch Code = 3401
	ConstNotConstant      Code = 3402
	ConstOverflow         Code = 3403
	LayoutRecursive       Code = 3404

	// IO / проект
	IOLoadFileError  Code = 4001
	ProjectBadConfig Code = 5001

	// Наблюдаемость
	ObsTimings Code = 6001
)

var ( // todo расширить описания и использовать как notes
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		LexInfo:                 "Lexical information",
		LexUnknownChar:          "Unknown character",
		LexUnterminatedString:   "Unterminated string",
		LexUnterminatedBlock:    "Unterminated block comment",
		LexBadNumber:            "Bad number",
		LexBadEscape:            "Bad escape sequence",
		SynInfo:                 "Syntax information",
		SynUnexpectedToken:      "Unexpected token",
		SynUnclosedDelimiter:    "Unclosed delimiter",
		SynExpectIdentifier:     "Expect identifier",
		SynExpectType:           "Expect type",
		SynExpectExpression:     "Expect expression",
		SynExpectPattern:        "Expect pattern",
		SynUnexpectedItem:       "Unexpected item",
		SynBadMacroRules:        "Malformed macro_rules definition",
		SynVariadicNotLast:      "Variadic parameter must be last",
		SemaInfo:                "Semantic information",
		SemaError:               "Semantic error",
		SemaDuplicateSymbol:     "Duplicate symbol",
		SemaUnresolvedSymbol:    "Unresolved symbol",
		SemaTypeMismatch:        "Type mismatch",
		SemaNotAType:            "Expected a type",
		SemaNotAValue:           "Expected a value",
		SemaUnknownField:        "Unknown field",
		SemaMissingField:        "Missing field",
		SemaBadOperands:         "Invalid operands",
		SemaBadCast:             "Invalid cast",
		SemaNotAssignable:       "Expression is not assignable",
		SemaArgCount:            "Wrong number of arguments",
		SemaUninitialized:       "Use of uninitialized binding",
		SemaUnitComparison:      "Comparison against unit value",
		SemaUnsafeOperation:     "Unsafe operation outside unsafe context",
		SemaNoEntrypoint:        "Entrypoint not found",
		SemaBadPattern:          "Invalid pattern",
		SemaBreakOutsideLoop:    "break/continue outside loop",
		SemaUnionLiteral:        "Union literal must set exactly one field",
		MacroUnknown:            "Unknown macro",
		MacroNoMatchingRule:     "No macro rule matches invocation",
		MacroRecursion:          "Macro recursion limit reached",
		MacroBadExpansion:       "Macro expansion is not a valid expression",
		MonoArityMismatch:       "Generic arity mismatch",
		MonoUnresolvedInference: "Cannot infer generic argument",
		MonoDepthExceeded:       "Instantiation depth limit reached",
		MonoUnsizedArgument:     "Unsized type used as generic argument",
		TraitNoMatchingImpl:     "No matching trait implementation",
		TraitAmbiguousMethod:    "Ambiguous method resolution",
		TraitUnknownAssocType:   "Unknown associated type",
		TraitBoundNotSatisfied:  "Trait bound not satisfied",
		IntrinsicUnknown:        "Unknown intrinsic",
		IntrinsicSizeMismatch:   "transmute between types of different sizes",
		ConstNotConstant:        "Expression is not constant",
		ConstOverflow:           "Constant evaluation overflow",
		LayoutRecursive:         "Recursive type has infinite size",
		IOLoadFileError:         "Failed to load file",
		ProjectBadConfig:        "Invalid project configuration",
		ObsTimings:              "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3100 && ic < 3200:
		return fmt.Sprintf("MAC%04d", ic)
	case ic >= 3200 && ic < 3300:
		return fmt.Sprintf("MON%04d", ic)
	case ic >= 3300 && ic < 3400:
		return fmt.Sprintf("TRT%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
