package vm

import (
	"bytes"
	"io"
	"os"
)

// Runtime provides the interface between the VM and the outside world.
type Runtime interface {
	// Stdout receives everything the program prints.
	Stdout() io.Writer

	// Stderr receives panic messages.
	Stderr() io.Writer

	// Exit signals the VM to halt with the given exit code.
	Exit(code int)

	// ExitCode returns the exit code set by Exit, or -1 if not set.
	ExitCode() int

	// Exited returns true if Exit was called.
	Exited() bool
}

// DefaultRuntime implements Runtime on top of two writers.
type DefaultRuntime struct {
	out      io.Writer
	err      io.Writer
	exitCode int
	exited   bool
}

// NewDefaultRuntime creates a runtime writing to os.Stdout and os.Stderr.
func NewDefaultRuntime() *DefaultRuntime {
	return NewWriterRuntime(os.Stdout, os.Stderr)
}

// NewWriterRuntime creates a runtime writing to the given streams.
func NewWriterRuntime(stdout, stderr io.Writer) *DefaultRuntime {
	return &DefaultRuntime{out: stdout, err: stderr, exitCode: -1}
}

func (r *DefaultRuntime) Stdout() io.Writer { return r.out }
func (r *DefaultRuntime) Stderr() io.Writer { return r.err }

func (r *DefaultRuntime) Exit(code int) {
	r.exitCode = code
	r.exited = true
}

func (r *DefaultRuntime) ExitCode() int {
	return r.exitCode
}

func (r *DefaultRuntime) Exited() bool {
	return r.exited
}

// TestRuntime captures output in memory.
type TestRuntime struct {
	Out      bytes.Buffer
	Err      bytes.Buffer
	exitCode int
	exited   bool
}

// NewTestRuntime creates a runtime with in-memory streams.
func NewTestRuntime() *TestRuntime {
	return &TestRuntime{exitCode: -1}
}

func (r *TestRuntime) Stdout() io.Writer { return &r.Out }
func (r *TestRuntime) Stderr() io.Writer { return &r.Err }

func (r *TestRuntime) Exit(code int) {
	r.exitCode = code
	r.exited = true
}

func (r *TestRuntime) ExitCode() int {
	return r.exitCode
}

func (r *TestRuntime) Exited() bool {
	return r.exited
}
