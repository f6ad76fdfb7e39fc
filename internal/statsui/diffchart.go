package statsui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuistop/internal/model"
)

const (
	diffChartHeight = 8
	legendWidth     = 16
)

var (
	hitBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Background(lipgloss.Color("#52C41A"))
	missBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Background(lipgloss.Color("#FF4D4F"))
	padBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Background(lipgloss.Color("240"))
)

// renderDiffChart draws one bar per recent round, height proportional to its
// diff. Hits are green and misses red. Older rounds drop off the left edge.
func renderDiffChart(rounds []model.RoundAggregate, width int) string {
	if len(rounds) == 0 {
		return ""
	}
	chartWidth := max(20, width-legendWidth-2)
	maxBars := chartWidth / 2
	start := max(0, len(rounds)-maxBars)
	shown := rounds[start:]

	bc := barchart.New(chartWidth, diffChartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)
	for i := len(shown); i < maxBars; i++ {
		bc.Push(barchart.BarData{
			Values: []barchart.BarValue{{Name: "pad", Value: 0, Style: padBarStyle}},
		})
	}
	hits := 0
	var worst int64
	for _, r := range shown {
		style := missBarStyle
		if r.Success {
			style = hitBarStyle
			hits++
		}
		worst = max(worst, r.DiffMs)
		bc.Push(barchart.BarData{
			Values: []barchart.BarValue{{Name: "diff", Value: float64(r.DiffMs), Style: style}},
		})
	}
	bc.Draw()

	legend := []string{
		"Last rounds",
		hitBarStyle.UnsetBackground().Render(fmt.Sprintf("hit  : %5d", hits)),
		missBarStyle.UnsetBackground().Render(fmt.Sprintf("miss : %5d", len(shown)-hits)),
		fmt.Sprintf("worst: %5d", worst),
	}
	chartLines := strings.Split(bc.View(), "\n")
	lines := make([]string, 0, diffChartHeight)
	for i := 0; i < diffChartHeight; i++ {
		var chart, side string
		if i < len(chartLines) {
			chart = chartLines[i]
		}
		if i < len(legend) {
			side = legend[i]
		}
		if pad := chartWidth - lipgloss.Width(chart); pad > 0 {
			chart += strings.Repeat(" ", pad)
		}
		lines = append(lines, chart+"  "+side)
	}
	return strings.Join(lines, "\n")
}
