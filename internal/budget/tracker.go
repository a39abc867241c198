// Package budget tracks per-execution token usage against a soft cap.
package budget

import (
	"fmt"
	"sync"
)

// Usage percentage thresholds for delegation recommendations.
// These bands are policy constants shared with every surface that
// renders budget state; do not make them configurable.
const (
	ThresholdCaution  = 70.0
	ThresholdWarning  = 80.0
	ThresholdCritical = 90.0
)

// DefaultBudget is the token budget applied when none is configured.
const DefaultBudget = 120000

// Tracker counts tokens consumed by a single execution.
// One tracker is created per execution and discarded when it ends;
// a spawned sub-agent always gets its own.
type Tracker struct {
	mu     sync.Mutex
	used   int
	budget int
}

// NewTracker creates a tracker with the given token budget.
// A non-positive budget falls back to DefaultBudget.
func NewTracker(budget int) *Tracker {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Tracker{budget: budget}
}

// Add records n consumed tokens. Negative values are ignored.
func (t *Tracker) Add(n int) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	t.used += n
	t.mu.Unlock()
}

// Used returns the tokens consumed so far.
func (t *Tracker) Used() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.used
}

// Budget returns the configured token budget.
func (t *Tracker) Budget() int {
	return t.budget
}

// Remaining returns the unconsumed part of the budget, never negative.
func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.used >= t.budget {
		return 0
	}
	return t.budget - t.used
}

// UsagePercent returns consumed budget as a percentage. May exceed 100.
func (t *Tracker) UsagePercent() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return float64(t.used) / float64(t.budget) * 100
}

// Recommendation maps a usage percentage to a qualitative delegation hint.
func Recommendation(pct float64) string {
	switch {
	case pct >= ThresholdCritical:
		return fmt.Sprintf("CRITICAL: token usage at %.0f%%. Spawn a sub-agent immediately or wrap up the current task.", pct)
	case pct >= ThresholdWarning:
		return fmt.Sprintf("WARNING: token usage at %.0f%%. Consider spawning a sub-agent for the remaining work.", pct)
	case pct >= ThresholdCaution:
		return fmt.Sprintf("CAUTION: token usage at %.0f%%. Plan to delegate remaining work soon.", pct)
	default:
		return "Token budget is sufficient. Continue with the current task."
	}
}
