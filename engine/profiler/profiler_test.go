package profiler

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestProfiler(interval time.Duration) (*Profiler, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	p := NewProfiler(WithInterval(interval))
	p.now = clk.now
	p.lastTime = clk.t
	return p, clk
}

func TestTickReportsAfterInterval(t *testing.T) {
	p, clk := newTestProfiler(time.Second)

	clk.t = clk.t.Add(400 * time.Millisecond)
	if p.Tick() {
		t.Fatal("Tick reported before the interval elapsed")
	}
	p.RecordUniforms(2*time.Millisecond, 256)

	clk.t = clk.t.Add(700 * time.Millisecond)
	if !p.Tick() {
		t.Fatal("Tick did not report after the interval elapsed")
	}
	if p.frameCount != 0 || p.uniformTime != 0 || p.uniformBytes != 0 {
		t.Fatalf("counters not reset: frames=%d time=%v bytes=%d", p.frameCount, p.uniformTime, p.uniformBytes)
	}
}

func TestTickZeroInterval(t *testing.T) {
	p, _ := newTestProfiler(0)
	for i := range 3 {
		if !p.Tick() {
			t.Fatalf("tick %d: expected a report with a zero interval", i)
		}
	}
}
