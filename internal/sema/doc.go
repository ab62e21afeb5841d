// Package sema drives one compilation unit from populated symbol tables to
// a monomorphized HIR module.
//
// Impl headers and signatures are resolved against generic parameters once.
// Function bodies are checked per instance with every parameter already
// substituted, so all types seen by the body checker are concrete. Calls of
// generic functions infer their arguments, request the instance from the
// instantiator and get queued; the queue is drained until no new instance
// appears.
package sema
