// Package diag defines the diagnostic model shared by all pipeline phases.
//
// Diagnostic is the central record: Severity, a numeric Code with a stable
// string form (see codes.go), a short Message, the Primary span and optional
// Notes pointing at related locations.
//
// Phases emit through a Reporter so that storage stays decoupled from
// production. BagReporter collects into a Bag, which supports deterministic
// sorting and deduplication. Package diag performs no IO; rendering lives in
// internal/diagfmt.
//
// Every error-severity diagnostic is fatal for the compilation unit: the
// driver never hands HIR to the evaluator when the bag has errors.
package diag
