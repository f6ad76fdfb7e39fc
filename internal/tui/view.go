package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuistop/internal/game"
)

var (
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	configStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	clockStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(1, 4)
	activeButton    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(0, 2).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#C89A3A"))
	disabledButton  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A")).Padding(0, 2).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
	successStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	failureStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	randomModeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Italic(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{
		headerStyle.Render(m.renderHeader()),
		configStyle.Render(m.renderConfig()),
		clockStyle.Render(game.FormatTime(m.state.CurrentTimeMs)),
		m.renderButtons(),
	}
	if fb := m.renderFeedback(); fb != "" {
		sections = append(sections, fb)
	}
	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	footer := footerStyle.Render(m.renderFooter())
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderHeader() string {
	return fmt.Sprintf("Player: %s (total: %d)  ·  Round points: %d", m.score.Player, m.score.TotalScore, m.state.CurrentPoint)
}

func (m *Model) renderConfig() string {
	target := game.FormatTime(m.cfg.TargetMs)
	if m.cfg.TargetMs >= 60000 {
		target += " (" + game.FormatClock(m.cfg.TargetMs) + ")"
	}
	line := fmt.Sprintf("Target: %s  ·  Tolerance: ±%s", target, game.FormatTime(m.cfg.ToleranceMs))
	if m.settings.RandomTarget {
		line += "  " + randomModeStyle.Render("random")
	}
	return line
}

func (m *Model) renderButtons() string {
	start, stop := activeButton, disabledButton
	if m.state.Running {
		start, stop = disabledButton, activeButton
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, start.Render("Start"), "   ", stop.Render("Stop"))
}

func (m *Model) renderFeedback() string {
	if m.state.Feedback == "" {
		return ""
	}
	text := m.state.Feedback
	if m.width > 0 {
		text = runewidth.Truncate(text, m.width, "…")
	}
	if m.state.Outcome.Success {
		return successStyle.Render(text)
	}
	return failureStyle.Render(text)
}

func (m *Model) renderFooter() string {
	keys := []string{"space start/stop", "+/- target", "[/] tolerance", "q quit"}
	return strings.Join(keys, "  ")
}
