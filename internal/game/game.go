// Package game implements the stopwatch round timer and its scoring.
//
// A round goes Idle -> Running -> Stopped. Stopped behaves like Idle for Start.
// While running, a single goroutine samples the elapsed time on a fixed tick.
// Stop cancels that goroutine and waits for it to exit before the round is
// judged, so no sample from a stopped round is ever published.
package game

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultTick is the sampling interval of a running round.
const DefaultTick = 10 * time.Millisecond

// Phase is the position of the current round in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseStopped:
		return "stopped"
	default:
		return "idle"
	}
}

// State is a snapshot of the round for rendering.
type State struct {
	Phase Phase
	// Running mirrors Phase == PhaseRunning.
	Running       bool
	CurrentTimeMs int64
	CurrentPoint  int64
	StartedAt     time.Time
	Feedback      string
	// Outcome and Judged are set once a round has been stopped.
	Outcome Outcome
	Judged  Config
	// Version increases with every published snapshot.
	Version uint64
}

// Option configures a Game.
type Option func(*Game)

// WithClock sets the clock used for the start instant and the tick.
func WithClock(c clockwork.Clock) Option {
	return func(g *Game) {
		g.clock = c
	}
}

// WithTick sets the sampling interval. Non-positive values keep DefaultTick.
func WithTick(d time.Duration) Option {
	return func(g *Game) {
		if d > 0 {
			g.tick = d
		}
	}
}

type loopHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (h *loopHandle) stop() {
	h.cancel()
	<-h.done
}

// Game drives rounds against a configuration store and updates a score store.
type Game struct {
	configs *ConfigStore
	scores  *ScoreStore
	clock   clockwork.Clock
	tick    time.Duration

	// opMu serializes Start, Stop and Close. mu guards state and loop and is
	// the only lock the sampling goroutine takes.
	opMu  sync.Mutex
	mu    sync.Mutex
	state State
	loop  *loopHandle
	watch latest[State]
}

// New returns an idle Game.
func New(configs *ConfigStore, scores *ScoreStore, opts ...Option) *Game {
	g := &Game{
		configs: configs,
		scores:  scores,
		clock:   clockwork.NewRealClock(),
		tick:    DefaultTick,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the current round snapshot.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Subscribe returns a channel that always yields the newest round snapshot.
func (g *Game) Subscribe() <-chan State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.watch.subscribe(g.state)
}

// Start begins a round. It returns false and does nothing while a round is
// already running.
func (g *Game) Start() bool {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	g.mu.Lock()
	if g.state.Running {
		g.mu.Unlock()
		log.Debug().Msg("start ignored: round already running")
		return false
	}
	prev := g.loop
	g.loop = nil
	g.mu.Unlock()
	if prev != nil {
		prev.stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &loopHandle{cancel: cancel, done: make(chan struct{})}
	ticker := g.clock.NewTicker(g.tick)

	g.mu.Lock()
	startedAt := g.clock.Now()
	g.loop = h
	g.state = State{
		Phase:        PhaseRunning,
		Running:      true,
		CurrentPoint: g.state.CurrentPoint,
		StartedAt:    startedAt,
		Version:      g.state.Version,
	}
	g.publishLocked()
	g.mu.Unlock()

	go g.run(ctx, h, ticker, startedAt)
	log.Debug().Time("started_at", startedAt).Dur("tick", g.tick).Msg("round started")
	return true
}

func (g *Game) run(ctx context.Context, h *loopHandle, ticker clockwork.Ticker, startedAt time.Time) {
	defer close(h.done)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			g.mu.Lock()
			if g.loop != h {
				g.mu.Unlock()
				return
			}
			g.state.CurrentTimeMs = g.clock.Since(startedAt).Milliseconds()
			g.publishLocked()
			g.mu.Unlock()
		}
	}
}

// Stop ends the running round and judges finalTimeMs against the current
// configuration. It returns false and changes nothing when no round is running.
func (g *Game) Stop(finalTimeMs int64) (Outcome, bool) {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	h, ok := g.halt(PhaseStopped)
	if !ok {
		log.Debug().Msg("stop ignored: no round running")
		return Outcome{}, false
	}
	if h != nil {
		h.stop()
	}

	cfg := g.configs.Get()
	out := Evaluate(finalTimeMs, cfg)

	g.mu.Lock()
	defer g.mu.Unlock()
	if out.Success {
		g.state.CurrentPoint++
		total := g.scores.AddPoint(1)
		g.state.Feedback = successFeedback(out.DiffMs, total)
	} else {
		g.state.Feedback = failureFeedback(out.DiffMs)
	}
	g.state.Outcome = out
	g.state.Judged = cfg
	g.publishLocked()

	log.Debug().
		Int64("final_ms", finalTimeMs).
		Int64("target_ms", cfg.TargetMs).
		Int64("tolerance_ms", cfg.ToleranceMs).
		Int64("diff_ms", out.DiffMs).
		Bool("success", out.Success).
		Msg("round stopped")
	return out, true
}

// Close abandons a running round without judging it.
func (g *Game) Close() {
	g.opMu.Lock()
	defer g.opMu.Unlock()
	h, ok := g.halt(PhaseIdle)
	if !ok {
		return
	}
	if h != nil {
		h.stop()
	}
	g.mu.Lock()
	g.publishLocked()
	g.mu.Unlock()
}

func (g *Game) publishLocked() {
	g.state.Version++
	g.watch.publish(g.state)
}

// halt marks the running round as no longer running and detaches its loop.
// The loop sees the detach under mu and never publishes again.
func (g *Game) halt(next Phase) (*loopHandle, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.state.Running {
		return nil, false
	}
	h := g.loop
	g.loop = nil
	g.state.Running = false
	g.state.Phase = next
	return h, true
}
