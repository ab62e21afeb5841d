// Package token defines lexical token kinds for the rsfront compiler.
// Invariants:
//   - Token.Text is the exact source text covered by Token.Span.
//   - Comments are dropped by the lexer and never appear in the token stream.
//   - Primitive type names (i32, usize, str, ...) are identifiers; the
//     semantic layer recognizes them.
//   - Contextual keywords (union, macro_rules) are identifiers as well.
package token
