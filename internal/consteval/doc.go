// Package consteval folds the constant expressions allowed in array-length
// position: integer and boolean literals, unary and binary arithmetic,
// parentheses and blocks with a tail, `const` items and calls of the
// `size_of` intrinsic. Name-dependent questions are answered by a Resolver
// supplied by the type checker.
package consteval
