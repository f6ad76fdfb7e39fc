// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuistop/internal/model"
	"github.com/verte-zerg/tuistop/internal/stats"
	"github.com/verte-zerg/tuistop/internal/store"
)

const (
	tabOverview = iota
	tabRounds
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// ReportSource loads stats reports.
type ReportSource func(ctx context.Context, cfg model.StatsConfig) (stats.Report, error)

// StoreSource builds reports from a round log store.
func StoreSource(st *store.Store) ReportSource {
	return func(ctx context.Context, cfg model.StatsConfig) (stats.Report, error) {
		return stats.BuildReport(ctx, st, cfg)
	}
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	source ReportSource
	cfg    model.StatsConfig

	report stats.Report
	errMsg string

	tabs       []string
	activeTab  int
	overview   viewport.Model
	roundTable table.Model

	filterMode  bool
	playerInput textinput.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(source ReportSource, cfg model.StatsConfig) *Model {
	m := &Model{
		source:   source,
		cfg:      cfg,
		tabs:     []string{"Overview", "Rounds"},
		overview: viewport.New(0, 0),
		roundTable: table.New(
			table.WithColumns(roundColumns()),
			table.WithStyles(roundTableStyles()),
		),
	}
	m.playerInput = textinput.New()
	m.playerInput.Prompt = "Player: "
	m.playerInput.Placeholder = "any"
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow++
			m.renderOverview()
			return m, nil
		case "-":
			m.cfg.CurveWindow = max(1, m.cfg.CurveWindow-1)
			m.renderOverview()
			return m, nil
		case "r":
			m.refreshReport()
			return m, nil
		case "/":
			m.filterMode = true
			m.playerInput.SetValue(m.cfg.Player)
			return m, m.playerInput.Focus()
		}
		var cmd tea.Cmd
		if m.activeTab == tabRounds {
			m.roundTable, cmd = m.roundTable.Update(msg)
		} else {
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.playerInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.filterMode = false
		m.playerInput.Blur()
		m.cfg.Player = strings.TrimSpace(m.playerInput.Value())
		m.refreshReport()
		return m, nil
	}
	var cmd tea.Cmd
	m.playerInput, cmd = m.playerInput.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderTabs() + "\n" + m.renderFilterSummary()
	footer := m.renderFooter()
	bodyHeight := max(1, m.height-lipgloss.Height(header)-lipgloss.Height(footer))
	var body string
	switch {
	case m.filterMode:
		body = m.playerInput.View()
	case m.activeTab == tabRounds && len(m.report.Rounds) == 0:
		body = "No rounds found."
	case m.activeTab == tabRounds:
		body = m.roundTable.View()
	default:
		body = m.overview.View()
	}
	return strings.Join([]string{header, fitLines(body, m.width, bodyHeight), footer}, "\n")
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	if m.activeTab == tabRounds {
		m.roundTable.Focus()
	} else {
		m.roundTable.Blur()
	}
}

func (m *Model) updateLayout() {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	bodyHeight := max(1, m.height-tabsHeight-2)
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.roundTable.SetWidth(m.width)
	m.roundTable.SetHeight(bodyHeight)
}

func (m *Model) refreshReport() {
	report, err := m.source(context.Background(), m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	m.errMsg = ""
	m.report = report
	m.roundTable.SetRows(roundRows(report.Rounds))
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
}

func renderOverview(report stats.Report, window, width int) string {
	if len(report.Rounds) == 0 {
		return "No rounds found."
	}
	met := report.Metrics
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", len(report.Sessions))),
		metricCard("Rounds", fmt.Sprintf("%d", met.Rounds)),
		metricCard("Hit rate", fmt.Sprintf("%.1f%%", met.HitRate*100)),
		metricCard("Mean diff", fmt.Sprintf("%.0f ms", met.MeanDiffMs)),
		metricCard("Best diff", fmt.Sprintf("%d ms", met.BestDiffMs)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}
	chart := renderDiffChart(report.Rounds, width)
	var buf bytes.Buffer
	if err := stats.RenderDiffTrend(&buf, report.Rounds, window, width); err != nil {
		return summary + "\n\n" + chart + "\n\n" + fmt.Sprintf("Failed to render trend: %v", err)
	}
	return strings.TrimRight(summary+"\n\n"+chart+"\n\n"+buf.String()+renderSessions(report.Sessions), "\n")
}

func renderSessions(sessions []model.SessionAggregate) string {
	var b strings.Builder
	b.WriteString("Sessions\n")
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		rate, mean := stats.SessionMetrics(s)
		fmt.Fprintf(&b, "%s  %-12s %3d rounds  %5.1f%% hits  %6.0f ms mean\n",
			s.StartedAt.Local().Format("2006-01-02 15:04"), s.Player, s.Rounds, rate*100, mean)
	}
	return b.String()
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func roundColumns() []table.Column {
	widths := []int{19, 8, 9, 8, 10, 6}
	cols := make([]table.Column, len(stats.RoundTableHeaders))
	for i, title := range stats.RoundTableHeaders {
		cols[i] = table.Column{Title: title, Width: widths[i]}
	}
	return cols
}

func roundRows(rounds []model.RoundAggregate) []table.Row {
	cells := stats.RoundTableRows(rounds)
	rows := make([]table.Row, len(cells))
	for i, c := range cells {
		rows[i] = table.Row(c)
	}
	return rows
}

func roundTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderFilterSummary() string {
	player := m.cfg.Player
	if player == "" {
		player = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = fmt.Sprintf("%d", m.cfg.Last)
	}
	summary := fmt.Sprintf("Filters: player=%s  since=%s  last=%s  window=%d", player, since, last, m.cfg.CurveWindow)
	if m.width > 0 {
		summary = runewidth.Truncate(summary, m.width, "…")
	}
	return headerStyle.Render(summary)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down  Window: -/=  Player: /  Reload: r  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

// fitLines pads or truncates s to exactly height lines of at most width cells.
func fitLines(s string, width, height int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = runewidth.Truncate(line, width, "")
		}
	}
	return strings.Join(lines, "\n")
}
