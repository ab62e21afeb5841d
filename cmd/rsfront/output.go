package main

import (
	"fmt"
	"io"
	"os"

	"rsfront/internal/diag"
	"rsfront/internal/diagfmt"
	"rsfront/internal/observ"
	"rsfront/internal/source"
)

// diagPrinter renders diagnostics in the format chosen on the command line.
type diagPrinter struct {
	format    string
	color     bool
	withNotes bool
	baseDir   string
}

func newDiagPrinter(format string, color, withNotes bool) (diagPrinter, error) {
	switch format {
	case "pretty", "short", "json":
	default:
		return diagPrinter{}, fmt.Errorf("unknown format: %s (expected pretty|short|json)", format)
	}
	wd, _ := os.Getwd()
	return diagPrinter{format: format, color: color, withNotes: withNotes, baseDir: wd}, nil
}

func (p diagPrinter) print(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	switch p.format {
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeRelative,
			BaseDir:          p.baseDir,
			IncludeNotes:     p.withNotes,
		})
	case "short":
		diagfmt.Short(w, withoutTimings(bag), fs, diagfmt.PathModeRelative, p.baseDir)
	default:
		diagfmt.Pretty(w, withoutTimings(bag), fs, diagfmt.PrettyOpts{
			Color:     p.color,
			Context:   1,
			PathMode:  diagfmt.PathModeRelative,
			BaseDir:   p.baseDir,
			ShowNotes: p.withNotes,
		})
	}
	return nil
}

// withoutTimings drops the timings diagnostic; text formats print the
// report separately.
func withoutTimings(bag *diag.Bag) *diag.Bag {
	if !bag.HasCode(diag.ObsTimings) {
		return bag
	}
	out := diag.NewBag(0)
	for _, d := range bag.Items() {
		if d.Code != diag.ObsTimings {
			out.Add(d)
		}
	}
	return out
}

func printTimings(w io.Writer, report *observ.Report) {
	if report == nil {
		return
	}
	_ = report.Format(w)
}
