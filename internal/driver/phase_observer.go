package driver

import (
	"time"

	"rsfront/internal/observ"
	"rsfront/internal/trace"
)

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a compilation phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during Compile.
type PhaseObserver func(PhaseEvent)

// phases fans one phase boundary out to the timer, the tracer and the
// observer; each of them may be absent.
type phases struct {
	timer    *observ.Timer
	tracer   trace.Tracer
	parent   uint64
	observer PhaseObserver

	spans  []*trace.Span
	names  []string
	starts []time.Time
}

func (p *phases) begin(name string) int {
	if p.observer != nil {
		p.observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	p.spans = append(p.spans, trace.Begin(p.tracer, trace.ScopePass, name, p.parent))
	p.names = append(p.names, name)
	p.starts = append(p.starts, time.Now())
	if p.timer != nil {
		p.timer.Begin(name)
	}
	return len(p.spans) - 1
}

func (p *phases) end(idx int, note string) {
	if idx < 0 || idx >= len(p.spans) {
		return
	}
	p.spans[idx].End(note)
	if p.timer != nil {
		p.timer.End(idx, note)
	}
	if p.observer != nil {
		p.observer(PhaseEvent{Name: p.names[idx], Status: PhaseEnd, Elapsed: time.Since(p.starts[idx])})
	}
}
