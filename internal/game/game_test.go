package game

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func newTestGame(t *testing.T, cfg Config) (*Game, *ScoreStore, *ConfigStore, *clockwork.FakeClock) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	configs := NewConfigStore(cfg)
	scores := NewScoreStore("tester")
	g := New(configs, scores, WithClock(fc))
	t.Cleanup(g.Close)
	return g, scores, configs, fc
}

func waitForState(t *testing.T, sub <-chan State, match func(State) bool) State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-sub:
			if match(s) {
				return s
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state")
		}
	}
}

func TestStartSamplesElapsedTime(t *testing.T) {
	g, _, _, fc := newTestGame(t, Config{TargetMs: 1000, ToleranceMs: 50})
	sub := g.Subscribe()

	if !g.Start() {
		t.Fatalf("expected start to succeed")
	}
	s := waitForState(t, sub, func(s State) bool { return s.Running })
	if s.CurrentTimeMs != 0 || s.Phase != PhaseRunning {
		t.Fatalf("unexpected start state: %+v", s)
	}

	fc.Advance(10 * time.Millisecond)
	waitForState(t, sub, func(s State) bool { return s.CurrentTimeMs == 10 })

	fc.Advance(10 * time.Millisecond)
	waitForState(t, sub, func(s State) bool { return s.CurrentTimeMs == 20 })
}

func TestStopJudgesAgainstCurrentConfig(t *testing.T) {
	g, scores, configs, _ := newTestGame(t, Config{TargetMs: 1000, ToleranceMs: 0})
	g.Start()
	configs.Set(Config{TargetMs: 2000, ToleranceMs: 0})

	out, ok := g.Stop(2000)
	if !ok {
		t.Fatalf("expected stop to evaluate")
	}
	if !out.Success || out.DiffMs != 0 {
		t.Fatalf("expected success against updated target, got %+v", out)
	}
	if got := g.State().Judged; got.TargetMs != 2000 {
		t.Fatalf("expected judged target 2000, got %d", got.TargetMs)
	}
	if scores.Snapshot().TotalScore != 1 {
		t.Fatalf("expected total score 1, got %d", scores.Snapshot().TotalScore)
	}
}

func TestExactTargetScenario(t *testing.T) {
	g, scores, _, _ := newTestGame(t, Config{TargetMs: 922000, ToleranceMs: 0})
	g.Start()
	out, ok := g.Stop(922000)
	if !ok || !out.Success || out.DiffMs != 0 {
		t.Fatalf("unexpected outcome: %+v ok=%v", out, ok)
	}
	s := g.State()
	if s.CurrentPoint != 1 || scores.Snapshot().TotalScore != 1 {
		t.Fatalf("expected one point, got state %+v score %+v", s, scores.Snapshot())
	}
	if s.Feedback != "Exact! 0 ms off. Total score: 1" {
		t.Fatalf("unexpected feedback %q", s.Feedback)
	}
}

func TestMissLeavesScoreUnchanged(t *testing.T) {
	g, scores, _, _ := newTestGame(t, Config{TargetMs: 1000, ToleranceMs: 50})
	g.Start()
	out, ok := g.Stop(1100)
	if !ok || out.Success || out.DiffMs != 100 {
		t.Fatalf("unexpected outcome: %+v ok=%v", out, ok)
	}
	s := g.State()
	if s.CurrentPoint != 0 || scores.Snapshot().TotalScore != 0 {
		t.Fatalf("expected no points, got state %+v score %+v", s, scores.Snapshot())
	}
	if s.Feedback != "Missed... 100 ms off." {
		t.Fatalf("unexpected feedback %q", s.Feedback)
	}
}

func TestTwoSuccessfulRoundsAccumulate(t *testing.T) {
	g, scores, _, _ := newTestGame(t, Config{TargetMs: 1000, ToleranceMs: 50})
	for i := 0; i < 2; i++ {
		if !g.Start() {
			t.Fatalf("round %d: expected start", i)
		}
		if _, ok := g.Stop(1020); !ok {
			t.Fatalf("round %d: expected stop", i)
		}
	}
	if got := scores.Snapshot().TotalScore; got != 2 {
		t.Fatalf("expected total 2, got %d", got)
	}
	if got := g.State().CurrentPoint; got != 2 {
		t.Fatalf("expected current point 2, got %d", got)
	}
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	g, scores, _, fc := newTestGame(t, Config{TargetMs: 10, ToleranceMs: 0})
	sub := g.Subscribe()
	if !g.Start() {
		t.Fatalf("expected first start")
	}
	first := g.State().StartedAt
	fc.Advance(5 * time.Millisecond)
	if g.Start() {
		t.Fatalf("expected second start to be rejected")
	}
	if !g.State().StartedAt.Equal(first) {
		t.Fatalf("second start must not restart the round")
	}
	fc.Advance(5 * time.Millisecond)
	waitForState(t, sub, func(s State) bool { return s.CurrentTimeMs == 10 })

	if _, ok := g.Stop(10); !ok {
		t.Fatalf("expected stop")
	}
	if _, ok := g.Stop(10); ok {
		t.Fatalf("expected second stop to be a no-op")
	}
	if got := scores.Snapshot().TotalScore; got != 1 {
		t.Fatalf("expected exactly one point, got %d", got)
	}
}

func TestStopWithoutRoundIsNoop(t *testing.T) {
	g, scores, _, _ := newTestGame(t, Config{TargetMs: 1000, ToleranceMs: 1000})
	before := g.State()
	out, ok := g.Stop(1000)
	if ok || out != (Outcome{}) {
		t.Fatalf("expected no-op stop, got %+v ok=%v", out, ok)
	}
	if g.State() != before {
		t.Fatalf("state changed: %+v -> %+v", before, g.State())
	}
	if scores.Snapshot().TotalScore != 0 {
		t.Fatalf("score changed on no-op stop")
	}
}

func TestNoSampleAfterStop(t *testing.T) {
	g, _, _, fc := newTestGame(t, Config{TargetMs: 10, ToleranceMs: 0})
	sub := g.Subscribe()
	g.Start()
	fc.Advance(10 * time.Millisecond)
	waitForState(t, sub, func(s State) bool { return s.CurrentTimeMs == 10 })

	g.Stop(10)
	waitForState(t, sub, func(s State) bool { return s.Phase == PhaseStopped && s.Feedback != "" })

	fc.Advance(50 * time.Millisecond)
	select {
	case s := <-sub:
		t.Fatalf("unexpected update after stop: %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
	if got := g.State().CurrentTimeMs; got != 10 {
		t.Fatalf("expected frozen time 10, got %d", got)
	}
}

func TestConcurrentStopScoresOnce(t *testing.T) {
	g, scores, _, _ := newTestGame(t, Config{TargetMs: 0, ToleranceMs: 0})
	g.Start()

	var wg sync.WaitGroup
	var mu sync.Mutex
	evaluated := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := g.Stop(0); ok {
				mu.Lock()
				evaluated++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if evaluated != 1 {
		t.Fatalf("expected one evaluation, got %d", evaluated)
	}
	if got := scores.Snapshot().TotalScore; got != 1 {
		t.Fatalf("expected total 1, got %d", got)
	}
}

func TestCloseAbandonsRound(t *testing.T) {
	g, scores, _, _ := newTestGame(t, Config{TargetMs: 0, ToleranceMs: 0})
	g.Start()
	g.Close()
	s := g.State()
	if s.Running || s.Phase != PhaseIdle {
		t.Fatalf("expected idle after close, got %+v", s)
	}
	if scores.Snapshot().TotalScore != 0 {
		t.Fatalf("close must not score")
	}
	if !g.Start() {
		t.Fatalf("expected start after close")
	}
}

func TestStartClearsFeedbackKeepsPoints(t *testing.T) {
	g, _, _, _ := newTestGame(t, Config{TargetMs: 0, ToleranceMs: 0})
	g.Start()
	g.Stop(0)
	if g.State().Feedback == "" {
		t.Fatalf("expected feedback after stop")
	}
	g.Start()
	s := g.State()
	if s.Feedback != "" || s.CurrentTimeMs != 0 || s.CurrentPoint != 1 {
		t.Fatalf("unexpected state after restart: %+v", s)
	}
}

func TestRunningMirrorsPhase(t *testing.T) {
	g, _, _, _ := newTestGame(t, Config{TargetMs: 1000, ToleranceMs: 50})
	check := func(step string, want Phase) {
		t.Helper()
		s := g.State()
		if s.Phase != want || s.Running != (s.Phase == PhaseRunning) {
			t.Fatalf("%s: phase %v running %v", step, s.Phase, s.Running)
		}
	}
	check("new", PhaseIdle)
	g.Start()
	check("start", PhaseRunning)
	g.Stop(1000)
	check("stop", PhaseStopped)
	g.Start()
	check("restart", PhaseRunning)
	g.Close()
	check("close", PhaseIdle)
}
