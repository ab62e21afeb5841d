package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rsfront/internal/driver"
	"rsfront/internal/trace"
	"rsfront/internal/vm"
)

func newRunCmd(s *session) *cobra.Command {
	var (
		maxDepth    int
		memoryLimit int
		warnings    bool
		vmTrace     bool
	)
	cmd := &cobra.Command{
		Use:   "run [flags] <file.rs>",
		Short: "Check a program and execute it on the reference interpreter",
		Long: `Compile a source file and interpret its checked HIR. The exit status is the integer returned by main,
the argument of exit(), or 101 after a runtime panic.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("max-depth") {
				s.cfg.Run.MaxDepth = maxDepth
			}
			if cmd.Flags().Changed("memory-limit") {
				s.cfg.Run.MemoryLimit = memoryLimit
			}
			return runProgram(cmd, s, args[0], warnings, vmTrace)
		},
	}
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "call depth limit (0 = config or default)")
	cmd.Flags().IntVar(&memoryLimit, "memory-limit", 0, "interpreter memory limit in bytes (0 = config or default)")
	cmd.Flags().BoolVar(&warnings, "warnings", false, "print warnings before running")
	cmd.Flags().BoolVar(&vmTrace, "vm-trace", false, "record interpreter calls in the trace (needs --trace-level=debug)")
	return cmd
}

func runProgram(cmd *cobra.Command, s *session, path string, warnings, vmTrace bool) error {
	opts := s.compileOptions()
	opts.IgnoreWarnings = !warnings

	res, err := driver.Compile(cmd.Context(), path, opts)
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}
	stderr := cmd.ErrOrStderr()
	printer := diagPrinter{format: "pretty", color: s.color && isTerminal(stderr)}
	if err := printer.print(stderr, res.Bag, res.FileSet); err != nil {
		return err
	}
	if s.timings {
		printTimings(stderr, res.Timing)
	}
	m := res.Module()
	if res.Bag.HasErrors() || m == nil {
		return exitWith(1)
	}

	vopts := vm.Options{MaxDepth: s.cfg.Run.MaxDepth, MemoryLimit: s.cfg.Run.MemoryLimit}
	if vmTrace {
		vopts.Tracer = trace.FromContext(cmd.Context())
	}
	rt := vm.NewWriterRuntime(cmd.OutOrStdout(), stderr)
	machine := vm.New(m, res.Sema.Layout, rt, res.FileSet, vopts)
	code, _ := machine.Run()
	return exitWith(code)
}
