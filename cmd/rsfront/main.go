package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rsfront/internal/trace"
	"rsfront/internal/version"
)

// exitError carries a process exit status without an error message; the
// command has already reported what went wrong.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func exitWith(code int) error {
	if code == 0 {
		return nil
	}
	return &exitError{code: code}
}

// newRootCmd builds the command tree. The session is filled in by the
// persistent pre-run hook and must be closed by the caller.
func newRootCmd(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:           "rsfront",
		Short:         "Frontend for a subset of Rust",
		Long:          `rsfront expands macros, monomorphizes generics and type-checks a Rust subset, and can run the result on a reference interpreter`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.open(cmd)
		},
	}

	// Глобальные флаги
	pf := root.PersistentFlags()
	pf.String("config", "", "path to rsfront.toml (default: searched upwards from the working directory)")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to collect")
	pf.Int("pointer-size", 0, "target pointer size in bytes (8|4|2); overrides [target]")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	pf.String("trace-format", "", "trace format (auto|text|ndjson)")
	pf.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")
	pf.String("cpuprofile", "", "write a CPU profile to this file")
	pf.String("memprofile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")

	root.AddCommand(newCheckCmd(s))
	root.AddCommand(newRunCmd(s))
	root.AddCommand(newEmitCmd(s))
	root.AddCommand(newTokenizeCmd(s))
	root.AddCommand(newVersionCmd(s))
	return root
}

// execute runs the CLI with args and returns the process exit status.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) (code int) {
	s := &session{}
	defer s.close(stderr)
	// при панике сбрасываем кольцевой буфер трассы, чтобы было видно, где застряли
	defer func() {
		if r := recover(); r != nil {
			if ring := trace.Ring(s.tracer); ring != nil {
				fmt.Fprintln(stderr, "=== trace ring ===")
				_ = ring.Dump(stderr, trace.FormatText)
			}
			panic(r)
		}
	}()

	root := newRootCmd(s)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	var ee *exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ee):
		return ee.code
	default:
		fmt.Fprintf(stderr, "rsfront: %v\n", err)
		return 1
	}
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
