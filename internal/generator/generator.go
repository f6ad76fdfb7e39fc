// Package generator picks random round targets.
package generator

import (
	"math/rand"
	"time"
)

// Step is the granularity of generated targets.
const Step int64 = 100

// Generator produces randomized target times.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Target returns a target in [minMs, maxMs] rounded to Step. The bounds are
// swapped if given in reverse; a range narrower than Step returns minMs.
func (g *Generator) Target(minMs, maxMs int64) int64 {
	lo, n, ok := steps(minMs, maxMs)
	if !ok {
		return min(minMs, maxMs)
	}
	return (lo + g.rnd.Int63n(n)) * Step
}

// Next returns a target different from prev when the range allows it.
func (g *Generator) Next(prev, minMs, maxMs int64) int64 {
	lo, n, ok := steps(minMs, maxMs)
	if !ok {
		return min(minMs, maxMs)
	}
	idx := prev/Step - lo
	if prev%Step != 0 || idx < 0 || idx >= n || n == 1 {
		return (lo + g.rnd.Int63n(n)) * Step
	}
	k := g.rnd.Int63n(n - 1)
	if k >= idx {
		k++
	}
	return (lo + k) * Step
}

// steps returns the first step index in range and the number of steps.
func steps(minMs, maxMs int64) (lo, n int64, ok bool) {
	if maxMs < minMs {
		minMs, maxMs = maxMs, minMs
	}
	lo = (minMs + Step - 1) / Step
	hi := maxMs / Step
	if hi < lo {
		return 0, 0, false
	}
	return lo, hi - lo + 1, true
}
