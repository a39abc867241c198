// Package tools provides the tool framework and built-in tools for the agent core.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Tool is the interface that all agent tools must implement.
type Tool interface {
	// Name returns the tool identifier used in action directives.
	Name() string
	// Description returns a human-readable description for the LLM.
	Description() string
	// Parameters returns the JSON Schema for tool parameters.
	Parameters() map[string]any
	// Execute runs the tool with the given call envelope.
	Execute(ctx context.Context, in Input) Result
}

// ConfirmRequirer is an optional interface for tools whose invocations
// must pass the confirmation gate before executing.
type ConfirmRequirer interface {
	Tool
	RequiresConfirmation() bool
}

// Categorized is an optional interface for tools that declare a catalog category.
type Categorized interface {
	Tool
	Category() string
}

// ExecTimeouter is an optional interface for tools that override the
// registry's execution timeout. A non-positive duration disables the
// wall-clock bound entirely; the tool must limit itself some other way.
type ExecTimeouter interface {
	Tool
	ExecTimeout() time.Duration
}

// DefaultCategory is assigned to tools that do not declare one.
const DefaultCategory = "general"

// NeedsConfirmation reports whether a tool requires human approval.
// Tools that do not implement ConfirmRequirer never do.
func NeedsConfirmation(t Tool) bool {
	if c, ok := t.(ConfirmRequirer); ok {
		return c.RequiresConfirmation()
	}
	return false
}

// CategoryOf returns the tool's catalog category.
func CategoryOf(t Tool) string {
	if c, ok := t.(Categorized); ok {
		if cat := c.Category(); cat != "" {
			return cat
		}
	}
	return DefaultCategory
}

// CallContext carries execution-scoped metadata into a tool invocation.
type CallContext struct {
	WorkflowID string
	StepID     string
	WorkingDir string
	UserID     string
	// SpawnDepth is the sub-agent nesting level of the calling execution.
	// Zero for a top-level run.
	SpawnDepth int
}

// Input is the generic call envelope dispatched through the registry.
// Tracker is a back-reference to the calling execution's token tracker;
// tools may read budget state but never own the tracker's lifecycle.
type Input struct {
	Tool    string
	Params  map[string]any
	Context CallContext
	Tracker BudgetReader
}

// BudgetReader is the read-only view of a token tracker exposed to tools.
type BudgetReader interface {
	Used() int
	Budget() int
	Remaining() int
	UsagePercent() float64
}

// DecodeParams unmarshals the generic parameter map into a typed input
// struct. This is the single (de)serialization step at the dispatch
// boundary; tool bodies reason in their own domain types.
func DecodeParams[T any](params map[string]any) (T, error) {
	var v T
	raw, err := json.Marshal(params)
	if err != nil {
		return v, fmt.Errorf("encode params: %w", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode params: %w", err)
	}
	return v, nil
}

// GetString extracts a string parameter with a default value.
func GetString(params map[string]any, key string, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultVal
}

// GetInt extracts an int parameter with a default value.
func GetInt(params map[string]any, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return defaultVal
}

// GetBool extracts a bool parameter with a default value.
func GetBool(params map[string]any, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}
