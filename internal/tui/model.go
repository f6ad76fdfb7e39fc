// Package tui provides the Bubble Tea stopwatch game interface.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/tuistop/internal/game"
	"github.com/verte-zerg/tuistop/internal/generator"
	"github.com/verte-zerg/tuistop/internal/model"
)

const (
	targetStep    int64 = 100
	toleranceStep int64 = 10
)

// RoundRecorder persists judged rounds.
type RoundRecorder interface {
	InsertRound(ctx context.Context, r model.RoundRecord) (int64, error)
}

type stateMsg game.State

type configMsg game.Config

type scoreMsg game.UserScore

// Model implements the Bubble Tea stopwatch UI.
type Model struct {
	game      *game.Game
	configs   *game.ConfigStore
	scores    *game.ScoreStore
	recorder  RoundRecorder
	gen       *generator.Generator
	settings  model.Settings
	sessionID string

	stateCh  <-chan game.State
	configCh <-chan game.Config
	scoreCh  <-chan game.UserScore

	state game.State
	cfg   game.Config
	score game.UserScore

	width  int
	height int
}

// NewModel constructs a stopwatch TUI model. recorder and gen may be nil.
func NewModel(g *game.Game, configs *game.ConfigStore, scores *game.ScoreStore, recorder RoundRecorder, gen *generator.Generator, settings model.Settings, sessionID string) *Model {
	m := &Model{
		game:      g,
		configs:   configs,
		scores:    scores,
		recorder:  recorder,
		gen:       gen,
		settings:  settings,
		sessionID: sessionID,
		stateCh:   g.Subscribe(),
		configCh:  configs.Subscribe(),
		scoreCh:   scores.Subscribe(),
	}
	m.sync()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitState(), m.waitConfig(), m.waitScore())
}

func (m *Model) waitState() tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-m.stateCh)
	}
}

func (m *Model) waitConfig() tea.Cmd {
	return func() tea.Msg {
		return configMsg(<-m.configCh)
	}
}

func (m *Model) waitScore() tea.Cmd {
	return func() tea.Msg {
		return scoreMsg(<-m.scoreCh)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case stateMsg:
		if msg.Version >= m.state.Version {
			m.state = game.State(msg)
		}
		return m, m.waitState()
	case configMsg:
		m.cfg = game.Config(msg)
		return m, m.waitConfig()
	case scoreMsg:
		m.score = game.UserScore(msg)
		return m, m.waitScore()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.game.Close()
		return m, tea.Quit
	case tea.KeySpace, tea.KeyEnter:
		m.toggle()
	case tea.KeyRunes:
		return m.handleRunes(string(msg.Runes))
	}
	return m, nil
}

func (m *Model) handleRunes(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		m.game.Close()
		return m, tea.Quit
	case "+", "=":
		m.adjust(targetStep, 0)
	case "-", "_":
		m.adjust(-targetStep, 0)
	case "]":
		m.adjust(0, toleranceStep)
	case "[":
		m.adjust(0, -toleranceStep)
	}
	return m, nil
}

// toggle starts an idle round or stops the running one at the last sample
// shown on screen.
func (m *Model) toggle() {
	if !m.game.State().Running {
		m.game.Start()
		m.sync()
		return
	}
	final := m.state.CurrentTimeMs
	out, ok := m.game.Stop(final)
	if !ok {
		m.sync()
		return
	}
	m.record(final, out)
	if m.settings.RandomTarget && m.gen != nil {
		cur := m.configs.Get()
		cur.TargetMs = m.gen.Next(cur.TargetMs, m.settings.RandomMinMs, m.settings.RandomMaxMs)
		m.configs.Set(cur)
	}
	m.sync()
}

func (m *Model) record(finalMs int64, out game.Outcome) {
	if m.recorder == nil {
		return
	}
	st := m.game.State()
	rec := model.RoundRecord{
		SessionID:   m.sessionID,
		Player:      m.scores.Snapshot().Player,
		StartedAt:   st.StartedAt,
		EndedAt:     time.Now(),
		TargetMs:    st.Judged.TargetMs,
		ToleranceMs: st.Judged.ToleranceMs,
		FinalMs:     finalMs,
		DiffMs:      out.DiffMs,
		Success:     out.Success,
	}
	if _, err := m.recorder.InsertRound(context.Background(), rec); err != nil {
		log.Error().Err(err).Str("session_id", m.sessionID).Msg("failed to save round")
	}
}

func (m *Model) adjust(targetDelta, toleranceDelta int64) {
	cur := m.configs.Get()
	cur.TargetMs = max(targetStep, cur.TargetMs+targetDelta)
	cur.ToleranceMs = max(0, cur.ToleranceMs+toleranceDelta)
	m.configs.Set(cur)
	m.sync()
}

func (m *Model) sync() {
	m.state = m.game.State()
	m.cfg = m.configs.Get()
	m.score = m.scores.Snapshot()
}
