// Package fuzztests holds Go fuzz harnesses for the rsfront frontend
// (source -> lexer -> parser -> macro expansion -> sema). They guard against
// panics, hangs and broken span invariants on arbitrary input.
//
// Семена берутся из cmd/rsfront/testdata и небольшого встроенного набора.
package fuzztests
