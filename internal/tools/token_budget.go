package tools

import (
	"context"
	"encoding/json"

	"github.com/aura-code/aura/internal/budget"
)

// TokenBudgetTool reports the calling execution's token budget state and
// a delegation recommendation. Read-only: when the run has no tracker
// attached it reports tracking as unavailable rather than failing.
type TokenBudgetTool struct{}

func NewTokenBudgetTool() *TokenBudgetTool { return &TokenBudgetTool{} }

func (t *TokenBudgetTool) Name() string     { return "token_budget" }
func (t *TokenBudgetTool) Category() string { return "introspection" }

func (t *TokenBudgetTool) Description() string {
	return "Check the token budget of the current execution: tokens used, remaining, and whether to delegate to a sub-agent."
}

func (t *TokenBudgetTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (t *TokenBudgetTool) Execute(_ context.Context, in Input) Result {
	if in.Tracker == nil {
		body, _ := json.Marshal(map[string]any{
			"available": false,
			"message":   "token tracking is not enabled for this execution",
		})
		return Ok(string(body))
	}

	pct := in.Tracker.UsagePercent()
	body, _ := json.Marshal(map[string]any{
		"available":      true,
		"used":           in.Tracker.Used(),
		"budget":         in.Tracker.Budget(),
		"remaining":      in.Tracker.Remaining(),
		"usage_percent":  pct,
		"recommendation": budget.Recommendation(pct),
	})
	return Ok(string(body))
}
