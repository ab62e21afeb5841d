package main

import (
	"github.com/spf13/cobra"

	"rsfront/internal/driver"
	"rsfront/internal/hir"
)

func newEmitCmd(s *session) *cobra.Command {
	var withNotes bool
	cmd := &cobra.Command{
		Use:   "emit [flags] <file.rs>",
		Short: "Print the checked, monomorphized HIR of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := driver.Compile(cmd.Context(), args[0], s.compileOptions())
			if err != nil {
				return err
			}
			stderr := cmd.ErrOrStderr()
			printer := diagPrinter{format: "pretty", color: s.color && isTerminal(stderr), withNotes: withNotes}
			if err := printer.print(stderr, res.Bag, res.FileSet); err != nil {
				return err
			}
			if res.Bag.HasErrors() || res.Module() == nil {
				return exitWith(1)
			}
			return hir.Dump(cmd.OutOrStdout(), res.Module())
		},
	}
	cmd.Flags().BoolVar(&withNotes, "with-notes", false, "include diagnostic notes in output")
	return cmd
}
