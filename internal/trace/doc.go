// Package trace records compiler activity as spans and instant events.
//
// Tracing is off by default. The CLI enables it with
//
//	rsfront check --trace=- --trace-level=phase main.rs
//
// or through the [trace] section of rsfront.toml.
//
// # Levels
//
//   - LevelOff: nothing is recorded
//   - LevelError: ring buffer only, dumped when the process crashes
//   - LevelPhase: driver commands and pipeline phases (parse, expand, sema)
//   - LevelDetail: per-item work such as the checking of one function body
//   - LevelDebug: everything, including interpreter calls
//
// # Sinks
//
// StreamTracer writes events as they happen, RingTracer keeps the last N
// events for post-mortem dumps, MultiTracer fans out to several sinks.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse", 0)
//	defer span.End("")
package trace
