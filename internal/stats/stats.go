// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/tuistop/internal/game"
	"github.com/verte-zerg/tuistop/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Metrics summarizes a set of rounds.
type Metrics struct {
	Rounds      int
	Hits        int
	HitRate     float64
	MeanDiffMs  float64
	BestDiffMs  int64
	WorstDiffMs int64
}

// RoundMetrics computes hit rate and diff statistics for rounds.
func RoundMetrics(rounds []model.RoundAggregate) Metrics {
	var m Metrics
	if len(rounds) == 0 {
		return m
	}
	var sum int64
	m.BestDiffMs = rounds[0].DiffMs
	for _, r := range rounds {
		m.Rounds++
		if r.Success {
			m.Hits++
		}
		sum += r.DiffMs
		if r.DiffMs < m.BestDiffMs {
			m.BestDiffMs = r.DiffMs
		}
		if r.DiffMs > m.WorstDiffMs {
			m.WorstDiffMs = r.DiffMs
		}
	}
	m.HitRate = float64(m.Hits) / float64(m.Rounds)
	m.MeanDiffMs = float64(sum) / float64(m.Rounds)
	return m
}

// SessionMetrics computes hit rate and mean diff for a session aggregate.
func SessionMetrics(s model.SessionAggregate) (hitRate, meanDiffMs float64) {
	if s.Rounds <= 0 {
		return 0, 0
	}
	return float64(s.Hits) / float64(s.Rounds), float64(s.DiffSumMs) / float64(s.Rounds)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - minVal) / (maxVal - minVal) * float64(last)))
		idx = max(0, min(idx, last))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints overall metrics for rounds and sessions.
func RenderSummary(w io.Writer, rounds []model.RoundAggregate, sessions []model.SessionAggregate) error {
	if len(rounds) == 0 {
		_, err := fmt.Fprintln(w, "No rounds found.")
		return err
	}
	m := RoundMetrics(rounds)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Rounds: %d", m.Rounds),
		fmt.Sprintf("Hits: %d (%.1f%%)", m.Hits, m.HitRate*100),
		fmt.Sprintf("Mean diff: %.1f ms", m.MeanDiffMs),
		fmt.Sprintf("Best diff: %d ms", m.BestDiffMs),
		fmt.Sprintf("Worst diff: %d ms", m.WorstDiffMs),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderDiffTrend prints a sparkline of the moving-average diff, limited to
// the most recent width rounds when width is positive.
func RenderDiffTrend(w io.Writer, rounds []model.RoundAggregate, window, width int) error {
	if len(rounds) == 0 {
		return nil
	}
	diffs := make([]float64, len(rounds))
	for i, r := range rounds {
		diffs[i] = float64(r.DiffMs)
	}
	diffs = MovingAverage(diffs, window)
	if width > 0 && len(diffs) > width {
		diffs = diffs[len(diffs)-width:]
	}
	if _, err := fmt.Fprintf(w, "Diff trend (window %d, lower is better)\n", window); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n\n", Sparkline(diffs)); err != nil {
		return err
	}
	return nil
}

// RoundTableRows formats rounds as table cells, newest first.
func RoundTableRows(rounds []model.RoundAggregate) [][]string {
	rows := make([][]string, 0, len(rounds))
	for i := len(rounds) - 1; i >= 0; i-- {
		r := rounds[i]
		result := "miss"
		if r.Success {
			result = "hit"
		}
		rows = append(rows, []string{
			r.EndedAt.Local().Format("2006-01-02 15:04:05"),
			game.FormatTime(r.TargetMs),
			fmt.Sprintf("±%d", r.ToleranceMs),
			game.FormatTime(r.FinalMs),
			fmt.Sprintf("%d", r.DiffMs),
			result,
		})
	}
	return rows
}

// RoundTableHeaders are the column titles for RoundTableRows.
var RoundTableHeaders = []string{"Ended", "Target", "Tol (ms)", "Final", "Diff (ms)", "Result"}

// RenderRoundTable prints logged rounds, newest first.
func RenderRoundTable(w io.Writer, rounds []model.RoundAggregate) error {
	if len(rounds) == 0 {
		_, err := fmt.Fprintln(w, "No rounds found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Rounds"); err != nil {
		return err
	}
	for _, line := range textTable(roundColumns(), RoundTableRows(rounds)) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
