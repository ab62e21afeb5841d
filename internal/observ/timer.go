// Package observ measures the phases of one compilation for `--timings`.
package observ

import (
	"fmt"
	"io"
	"time"
)

// Phase names reported by the driver, in pipeline order.
const (
	PhaseTokenize = "tokenize"
	PhaseParse    = "parse"
	PhaseExpand   = "expand"
	PhaseCollect  = "collect"
	PhaseSema     = "sema"
)

type phase struct {
	name  string
	start time.Time
	dur   time.Duration
	note  string
	done  bool
}

// Timer records phase durations of a single compilation unit. It is not
// safe for concurrent use; the driver owns one Timer per Compile call.
type Timer struct {
	now    func() time.Time
	phases []phase
}

func NewTimer() *Timer { return newTimer(time.Now) }

func newTimer(now func() time.Time) *Timer {
	return &Timer{now: now, phases: make([]phase, 0, 5)}
}

// Begin opens a phase and returns the handle for End.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, phase{name: name, start: t.now()})
	return len(t.phases) - 1
}

// End closes a phase; later calls with the same handle are ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) || t.phases[idx].done {
		return
	}
	p := &t.phases[idx]
	p.dur = t.now().Sub(p.start)
	p.note = note
	p.done = true
}

// PhaseReport is one row of a Report.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Share      float64 `json:"share"`
	Note       string  `json:"note,omitempty"`
}

// Report is the serialized form of a Timer, attached to the ObsTimings
// diagnostic and printed by `--timings`.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the recorded phases. A phase still open (compilation
// stopped by an error or cancellation) is measured up to now.
func (t *Timer) Report() Report {
	var r Report
	if len(t.phases) == 0 {
		return r
	}
	var total time.Duration
	durs := make([]time.Duration, len(t.phases))
	for i, p := range t.phases {
		d := p.dur
		if !p.done {
			d = t.now().Sub(p.start)
		}
		durs[i] = d
		total += d
	}
	r.TotalMS = millis(total)
	r.Phases = make([]PhaseReport, len(t.phases))
	for i, p := range t.phases {
		row := PhaseReport{Name: p.name, DurationMS: millis(durs[i]), Note: p.note}
		if total > 0 {
			row.Share = float64(durs[i]) / float64(total)
		}
		if !p.done {
			row.Note = "unfinished"
		}
		r.Phases[i] = row
	}
	return r
}

// Slowest returns the phase that took longest.
func (r Report) Slowest() (PhaseReport, bool) {
	if len(r.Phases) == 0 {
		return PhaseReport{}, false
	}
	best := r.Phases[0]
	for _, p := range r.Phases[1:] {
		if p.DurationMS > best.DurationMS {
			best = p
		}
	}
	return best, true
}

// Format writes one line per phase followed by the total.
func (r Report) Format(w io.Writer) error {
	for _, p := range r.Phases {
		line := fmt.Sprintf("%-10s %8.2f ms %5.1f%%", p.Name, p.DurationMS, p.Share*100)
		if p.Note != "" {
			line += "  " + p.Note
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%-10s %8.2f ms\n", "total", r.TotalMS)
	return err
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
