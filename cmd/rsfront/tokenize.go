package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rsfront/internal/diagfmt"
	"rsfront/internal/driver"
)

func newTokenizeCmd(s *session) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tokenize [flags] <file.rs>",
		Short: "Print the token stream of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := driver.Tokenize(args[0], s.cfg.Limits.MaxDiagnostics)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "pretty":
				err = diagfmt.FormatTokensPretty(out, res.Tokens, res.FileSet)
			case "json":
				err = diagfmt.FormatTokensJSON(out, res.Tokens, res.FileSet)
			default:
				return fmt.Errorf("unknown format: %s (expected pretty|json)", format)
			}
			if err != nil {
				return err
			}
			printer := diagPrinter{format: "pretty", color: s.color}
			if err := printer.print(cmd.ErrOrStderr(), res.Bag, res.FileSet); err != nil {
				return err
			}
			if res.Bag.HasErrors() {
				return exitWith(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	return cmd
}
