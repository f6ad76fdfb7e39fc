package game

import (
	"fmt"
	"math"
)

// Outcome is the judgement of a stopped round.
type Outcome struct {
	Success bool
	DiffMs  int64
}

// Evaluate compares finalTimeMs against cfg. A diff equal to the tolerance
// counts as a success.
func Evaluate(finalTimeMs int64, cfg Config) Outcome {
	diff := absDiff(finalTimeMs, cfg.TargetMs)
	return Outcome{Success: diff <= cfg.ToleranceMs, DiffMs: diff}
}

// absDiff returns |a-b|, saturating at math.MaxInt64.
func absDiff(a, b int64) int64 {
	if a < b {
		a, b = b, a
	}
	d := a - b
	if d < 0 {
		return math.MaxInt64
	}
	return d
}

func successFeedback(diffMs, total int64) string {
	return fmt.Sprintf("Exact! %d ms off. Total score: %d", diffMs, total)
}

func failureFeedback(diffMs int64) string {
	return fmt.Sprintf("Missed... %d ms off.", diffMs)
}
