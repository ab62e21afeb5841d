package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"rsfront/internal/diag"
	"rsfront/internal/source"
)

type palette struct {
	err, warn, info, note, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		sev := p.severity(d.Severity)
		fmt.Fprintf(w, "%s: %s: %s\n",
			location(fs, d.Primary, opts.PathMode, opts.BaseDir),
			sev.Sprintf("%s %s", d.Severity, d.Code.ID()),
			d.Message)
		if hasSnippet(d.Primary) {
			writeSnippet(w, fs, d.Primary, int(opts.Context), p)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			if !hasSnippet(n.Span) {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("= note:"), n.Msg)
				continue
			}
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"),
				location(fs, n.Span, opts.PathMode, opts.BaseDir), n.Msg)
			writeSnippet(w, fs, n.Span, 0, p)
		}
	}
}

// hasSnippet отсекает синтетические спаны вида Span{} без позиции в файле.
func hasSnippet(sp source.Span) bool {
	return !(sp.Start == 0 && sp.End == 0)
}

func location(fs *source.FileSet, sp source.Span, mode PathMode, baseDir string) string {
	path := formatPath(fs.Get(sp.File), mode, baseDir)
	if !hasSnippet(sp) {
		return path
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

func writeSnippet(w io.Writer, fs *source.FileSet, sp source.Span, context int, p palette) {
	f := fs.Get(sp.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(sp)
	first := uint32(1)
	if start.Line > uint32(max(context, 0)) {
		first = start.Line - uint32(max(context, 0))
	}
	gutterWidth := len(fmt.Sprint(start.Line))
	blank := strings.Repeat(" ", gutterWidth)

	for ln := first; ln <= start.Line; ln++ {
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, ln), f.Line(ln))
	}

	line := f.Line(start.Line)
	from := min(int(start.Col)-1, len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(max(int(end.Col)-1, from), len(line))
	}
	pad := indentFor(line[:from])
	width := max(runewidth.StringWidth(line[from:to]), 1)
	underline := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, " %s %s%s\n", p.gutter.Sprintf("%s |", blank), pad, p.caret.Sprint(underline))
}

// indentFor повторяет табуляции строки, остальное заменяет пробелами по
// ширине отображения.
func indentFor(prefix string) string {
	var sb strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}

// Short prints one line per diagnostic, suited for editors and grep.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode, baseDir string) {
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			location(fs, d.Primary, mode, baseDir),
			strings.ToLower(d.Severity.String()), d.Code.ID(), d.Message)
	}
}
