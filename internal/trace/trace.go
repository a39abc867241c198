// Package trace publishes execution spans for offline inspection.
package trace

import (
	"context"
	"time"
)

// Kind labels what a span measured.
type Kind string

const (
	KindLLM  Kind = "LLM"
	KindTool Kind = "TOOL"
)

// Span is one observable unit of an execution: a model call or a tool
// invocation.
type Span struct {
	TraceID   string    `json:"trace_id"`
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	Step      int       `json:"step"`
	Tokens    int       `json:"tokens,omitempty"`
	Succeeded bool      `json:"succeeded"`
	At        time.Time `json:"at"`
}

// Publisher emits spans. Publishing is fire-and-forget; implementations
// must never block the execution loop on delivery.
type Publisher interface {
	Publish(ctx context.Context, span Span)
}

// Nop discards all spans.
type Nop struct{}

func (Nop) Publish(context.Context, Span) {}
