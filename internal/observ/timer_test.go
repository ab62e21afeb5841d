package observ

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestReportSharesAndTotal(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	tm := newTimer(clk.now)

	p := tm.Begin(PhaseParse)
	clk.advance(10 * time.Millisecond)
	tm.End(p, "items=3")
	s := tm.Begin(PhaseSema)
	clk.advance(30 * time.Millisecond)
	tm.End(s, "funcs=2")
	clk.advance(time.Second)
	tm.End(s, "ignored")

	r := tm.Report()
	if r.TotalMS != 40 {
		t.Fatalf("total = %v", r.TotalMS)
	}
	if len(r.Phases) != 2 || r.Phases[0].Share != 0.25 || r.Phases[1].Note != "funcs=2" {
		t.Fatalf("phases = %+v", r.Phases)
	}
	if slow, ok := r.Slowest(); !ok || slow.Name != PhaseSema {
		t.Fatalf("slowest = %+v", slow)
	}
}

func TestOpenPhaseIsUnfinished(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	tm := newTimer(clk.now)
	tm.Begin(PhaseExpand)
	clk.advance(5 * time.Millisecond)

	r := tm.Report()
	if r.Phases[0].DurationMS != 5 || r.Phases[0].Note != "unfinished" {
		t.Fatalf("phase = %+v", r.Phases[0])
	}
}

func TestFormat(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	tm := newTimer(clk.now)
	i := tm.Begin(PhaseTokenize)
	clk.advance(2 * time.Millisecond)
	tm.End(i, "tokens=7")

	var buf bytes.Buffer
	if err := tm.Report().Format(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "tokenize") || !strings.HasSuffix(lines[0], "tokens=7") ||
		!strings.HasPrefix(lines[1], "total") {
		t.Fatalf("output:\n%s", buf.String())
	}
}

func TestEmptyReport(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("report = %+v", r)
	}
	if _, ok := (Report{}).Slowest(); ok {
		t.Fatal("empty report has no slowest phase")
	}
}
