// Package mono is the generic instantiator. It owns the instantiation cache
// keyed by (item, concrete type arguments), the work queue of instances
// waiting for their bodies, and type-argument inference for call sites.
//
// The cache is append-only: the same key always yields the same *Instance,
// so every call site of `test::<u32>` observes one function and one layout.
package mono
