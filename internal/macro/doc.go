// Package macro expands declarative macro invocations in place before any
// name resolution happens. User macro_rules! definitions are matched rule by
// rule; concat!, file!, line!, column! and stringify! are provided as builtins.
package macro
