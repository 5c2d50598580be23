package observ_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"brilopt/internal/observ"
)

func TestTimerAggregates(t *testing.T) {
	tm := observ.NewTimer()
	tm.Add("lvn", 2*time.Millisecond)
	tm.Add("dce", time.Millisecond)
	tm.Add("lvn", 3*time.Millisecond)

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(r.Phases))
	}
	if r.Phases[0].Name != "lvn" || r.Phases[0].Count != 2 || r.Phases[0].DurationMS != 5 {
		t.Errorf("unexpected lvn phase: %+v", r.Phases[0])
	}
	if r.TotalMS != 6 {
		t.Errorf("TotalMS = %v, want 6", r.TotalMS)
	}
	if s := tm.Summary(); !strings.Contains(s, "lvn") || !strings.Contains(s, "total") {
		t.Errorf("unexpected summary:\n%s", s)
	}
}

func TestTimerConcurrent(t *testing.T) {
	tm := observ.NewTimer()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stop := tm.Track("dce")
			stop()
		}()
	}
	wg.Wait()
	if got := tm.Report().Phases[0].Count; got != 16 {
		t.Errorf("Count = %d, want 16", got)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *observ.Timer
	tm.Add("x", time.Second)
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Errorf("nil timer reported phases: %+v", r)
	}
}
