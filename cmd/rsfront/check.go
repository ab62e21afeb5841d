package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"rsfront/internal/driver"
	"rsfront/internal/ui"
)

type checkFlags struct {
	format           string
	stage            string
	noWarnings       bool
	warningsAsErrors bool
	withNotes        bool
	jobs             int
	noCache          bool
	progress         string
}

func newCheckCmd(s *session) *cobra.Command {
	var f checkFlags
	cmd := &cobra.Command{
		Use:   "check [flags] <file.rs|directory>",
		Short: "Type-check a source file or every *.rs file of a directory",
		Long: `Run the frontend on a file and report diagnostics. A directory is checked file by file in parallel;
each file is an independent crate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, s, f, args[0])
		},
	}
	cmd.Flags().StringVar(&f.format, "format", "pretty", "output format (pretty|short|json)")
	cmd.Flags().StringVar(&f.stage, "stage", "sema", "last stage to run (tokenize|syntax|expand|sema)")
	cmd.Flags().BoolVar(&f.noWarnings, "no-warnings", false, "ignore warnings")
	cmd.Flags().BoolVar(&f.warningsAsErrors, "warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().BoolVar(&f.withNotes, "with-notes", false, "include diagnostic notes in output")
	cmd.Flags().IntVar(&f.jobs, "jobs", 0, "max parallel workers for directory checks (0=auto)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "bypass the disk cache even if [cache] enables it")
	cmd.Flags().StringVar(&f.progress, "progress", "auto", "progress view for directory checks (auto|on|off)")
	return cmd
}

func parseStage(s string) (driver.Stage, error) {
	switch st := driver.Stage(s); st {
	case driver.StageTokenize, driver.StageSyntax, driver.StageExpand, driver.StageSema:
		return st, nil
	default:
		return "", fmt.Errorf("unknown stage: %s", s)
	}
}

func runCheck(cmd *cobra.Command, s *session, f checkFlags, path string) error {
	if f.noWarnings && f.warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	stage, err := parseStage(f.stage)
	if err != nil {
		return err
	}
	printer, err := newDiagPrinter(f.format, s.color, f.withNotes)
	if err != nil {
		return err
	}
	opts := s.compileOptions()
	opts.Stage = stage
	opts.IgnoreWarnings = f.noWarnings
	opts.WarningsAsErrors = f.warningsAsErrors

	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !st.IsDir() {
		res, err := driver.Compile(cmd.Context(), path, opts)
		if err != nil {
			return err
		}
		if err := printer.print(out, res.Bag, res.FileSet); err != nil {
			return err
		}
		if s.timings && f.format != "json" {
			printTimings(cmd.ErrOrStderr(), res.Timing)
		}
		if res.Bag.HasErrors() {
			return exitWith(1)
		}
		return nil
	}

	dopts := driver.DirOptions{Options: opts, Jobs: f.jobs}
	if s.cfg.Cache.Enabled && !f.noCache {
		cache, err := driver.OpenDiskCache("rsfront", s.cacheDir())
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		dopts.Cache = cache
	}

	showProgress := f.progress == "on" || (f.progress == "auto" && isTerminal(out) && f.format == "pretty")
	var results []driver.FileResult
	if showProgress {
		results, err = checkDirWithUI(cmd.Context(), out, path, dopts)
	} else {
		results, err = driver.CheckDir(cmd.Context(), path, dopts)
	}
	if err != nil {
		return err
	}

	failed, cached := 0, 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
		if r.Cached {
			cached++
		}
		if r.Bag.Len() == 0 {
			continue
		}
		if err := printer.print(out, r.Bag, r.FileSet); err != nil {
			return err
		}
		if s.timings && f.format != "json" && r.Result != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s:\n", r.Path)
			printTimings(cmd.ErrOrStderr(), r.Result.Timing)
		}
	}
	if f.format != "json" {
		fmt.Fprintf(cmd.ErrOrStderr(), "checked %d files: %d failed, %d cached\n", len(results), failed, cached)
	}
	if failed > 0 {
		return exitWith(1)
	}
	return nil
}

type checkOutcome struct {
	results []driver.FileResult
	err     error
}

// checkDirWithUI runs CheckDir while a Bubble Tea view renders its events.
func checkDirWithUI(ctx context.Context, out io.Writer, dir string, opts driver.DirOptions) ([]driver.FileResult, error) {
	files, err := driver.ListFiles(dir)
	if err != nil {
		return nil, err
	}
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		opts.Events = func(ev driver.Event) { events <- ev }
		res, err := driver.CheckDir(ctx, dir, opts)
		outcomeCh <- checkOutcome{results: res, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewCheckModel("checking "+dir, files, events), tea.WithOutput(out))
	_, uiErr := program.Run()
	// интерфейс мог выйти раньше (ошибка, Ctrl+C): дочитываем события, чтобы воркеры не заблокировались
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
