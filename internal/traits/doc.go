// Package traits keeps the impl table of a compilation unit and answers the
// questions the type checker asks about it: which impl covers a trait for a
// concrete type, what an associated type projection normalises to, which
// method a `recv.name(..)` call selects and how `a[i]` is dispatched.
package traits
