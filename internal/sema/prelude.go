package sema

import _ "embed"

//go:embed prelude.rs
var preludeSource []byte

// PreludeName is the virtual file name of the prelude.
const PreludeName = "<prelude>"

// PreludeSource returns the source of the prelude file.
func PreludeSource() []byte { return preludeSource }
