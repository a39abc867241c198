// Package react implements the reasoning loop: the model alternates
// thought, tool action, and observation until it produces a final
// answer or runs out of steps.
package react

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aura-code/aura/internal/budget"
	"github.com/aura-code/aura/internal/confirm"
	"github.com/aura-code/aura/internal/provider"
	"github.com/aura-code/aura/internal/tools"
	"github.com/aura-code/aura/internal/trace"
	"github.com/google/uuid"
)

// Status is the terminal state of one execution.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailure   Status = "failure"
	StatusStepLimit Status = "step_limit_exceeded"
)

// DefaultMaxSteps bounds an execution when the request does not set one.
const DefaultMaxSteps = 25

// Step records one iteration of the loop. TokensUsed is the cumulative
// count after the step, not the per-step delta.
type Step struct {
	Index       int            `json:"index"`
	Thought     string         `json:"thought,omitempty"`
	Action      string         `json:"action,omitempty"`
	ActionInput map[string]any `json:"action_input,omitempty"`
	Observation string         `json:"observation,omitempty"`
	TokensUsed  int            `json:"tokens_used"`
}

// Outcome is the result of a completed execution. A step-limit exit is
// a reportable partial result, not an error.
type Outcome struct {
	ID         string `json:"id"`
	Status     Status `json:"status"`
	Answer     string `json:"answer,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Steps      []Step `json:"steps"`
	TokensUsed int    `json:"tokens_used"`
}

// LastObservation returns the most recent non-empty observation, used
// to summarize a step-limited run.
func (o *Outcome) LastObservation() string {
	for i := len(o.Steps) - 1; i >= 0; i-- {
		if o.Steps[i].Observation != "" {
			return o.Steps[i].Observation
		}
	}
	return ""
}

// Request describes one execution of the loop. A nil Temperature
// leaves sampling to the provider default; zero is passed through.
type Request struct {
	Task              string
	SystemPrompt      string
	AdditionalContext string
	Model             string
	Temperature       *float64
	MaxSteps          int
	Tracker           *budget.Tracker
	ToolContext       tools.CallContext
}

// Executor drives the loop for a single agent against one LLM provider.
// Safe for concurrent Run calls; all per-execution state lives in the
// Run frame.
type Executor struct {
	llm    provider.Provider
	tools  *tools.Registry
	gate   confirm.Gate
	tracer trace.Publisher
	logger *slog.Logger
}

// NewExecutor creates an executor. gate and tracer may be nil; a nil
// gate approves everything, a nil tracer publishes nothing.
func NewExecutor(llm provider.Provider, reg *tools.Registry, gate confirm.Gate, tracer trace.Publisher) *Executor {
	if gate == nil {
		gate = confirm.ApproveAll()
	}
	if tracer == nil {
		tracer = trace.Nop{}
	}
	return &Executor{
		llm:    llm,
		tools:  reg,
		gate:   gate,
		tracer: tracer,
		logger: slog.Default().With("component", "react"),
	}
}

// Run executes the loop until a final answer, a fatal failure, or the
// step limit. Every LLM call consumes exactly one step, including
// calls whose response fails to parse.
func (e *Executor) Run(ctx context.Context, req Request) *Outcome {
	out := &Outcome{ID: uuid.NewString(), Status: StatusFailure}

	maxSteps := req.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	tracker := req.Tracker
	if tracker == nil {
		tracker = budget.NewTracker(0)
	}

	model := req.Model
	if model == "" {
		model = e.llm.DefaultModel()
	}

	toolCtx := req.ToolContext
	if toolCtx.WorkflowID == "" {
		toolCtx.WorkflowID = out.ID
	}

	messages := []provider.Message{
		{Role: "system", Content: BuildSystemPrompt(req.SystemPrompt, e.tools.Docs(), req.AdditionalContext)},
		{Role: "user", Content: req.Task},
	}

	for i := 1; i <= maxSteps; i++ {
		if ctx.Err() != nil {
			out.Reason = fmt.Sprintf("execution cancelled: %v", ctx.Err())
			out.TokensUsed = tracker.Used()
			return out
		}

		resp, err := e.llm.Chat(ctx, &provider.ChatRequest{
			Model:       model,
			Messages:    messages,
			Temperature: req.Temperature,
		})
		if err != nil {
			out.Reason = fmt.Sprintf("llm call failed: %v", err)
			out.TokensUsed = tracker.Used()
			return out
		}

		usage := resp.Usage.TotalTokens
		if usage == 0 {
			usage = provider.EstimateTokens(resp.Content)
		}
		tracker.Add(usage)

		e.tracer.Publish(ctx, trace.Span{
			TraceID:   out.ID,
			Kind:      trace.KindLLM,
			Name:      model,
			Step:      i,
			Tokens:    usage,
			Succeeded: true,
		})

		step := Step{Index: i, TokensUsed: tracker.Used()}

		parsed, perr := Parse(resp.Content)
		if perr != nil {
			step.Observation = correctiveObservation(perr)
			out.Steps = append(out.Steps, step)
			messages = append(messages,
				provider.Message{Role: "assistant", Content: resp.Content},
				provider.Message{Role: "user", Content: "Observation: " + step.Observation},
			)
			continue
		}
		step.Thought = parsed.Thought

		if parsed.IsFinal {
			out.Steps = append(out.Steps, step)
			out.Status = StatusSuccess
			out.Answer = parsed.FinalAnswer
			out.TokensUsed = tracker.Used()
			return out
		}

		step.Action = parsed.Action
		step.ActionInput = parsed.ActionInput
		toolCtx.StepID = fmt.Sprintf("%s-%d", out.ID, i)

		if denied, reason := e.checkConfirmation(ctx, parsed, toolCtx); denied {
			step.Observation = reason
			out.Steps = append(out.Steps, step)
			out.Reason = reason
			out.TokensUsed = tracker.Used()
			return out
		}

		result := e.tools.Execute(ctx, tools.Input{
			Tool:    parsed.Action,
			Params:  parsed.ActionInput,
			Context: toolCtx,
			Tracker: tracker,
		})
		step.TokensUsed = tracker.Used()
		step.Observation = result.Observation()

		e.tracer.Publish(ctx, trace.Span{
			TraceID:   out.ID,
			Kind:      trace.KindTool,
			Name:      parsed.Action,
			Step:      i,
			Succeeded: result.Success,
		})

		if note := budgetNote(tracker); note != "" {
			step.Observation += "\n\n" + note
		}

		out.Steps = append(out.Steps, step)
		messages = append(messages,
			provider.Message{Role: "assistant", Content: resp.Content},
			provider.Message{Role: "user", Content: "Observation: " + step.Observation},
		)
	}

	out.Status = StatusStepLimit
	out.Reason = fmt.Sprintf("step limit reached after %d steps", maxSteps)
	out.TokensUsed = tracker.Used()
	return out
}

// checkConfirmation runs the gate for confirmation-required tools. A
// denial terminates the whole execution; the model does not get to
// retry a refused action.
func (e *Executor) checkConfirmation(ctx context.Context, parsed *Parsed, cc tools.CallContext) (bool, string) {
	tool, ok := e.tools.Get(parsed.Action)
	if !ok || !tools.NeedsConfirmation(tool) {
		return false, ""
	}

	approved, err := e.gate.Confirm(ctx, confirm.Request{
		Tool:        parsed.Action,
		Description: tool.Description(),
		ArgsSummary: summarizeArgs(parsed.ActionInput),
		UserID:      cc.UserID,
		WorkflowID:  cc.WorkflowID,
	})
	if err != nil {
		return true, fmt.Sprintf("confirmation for %s failed: %v", parsed.Action, err)
	}
	if !approved {
		e.logger.Info("tool denied by user", "tool", parsed.Action)
		return true, fmt.Sprintf("user denied execution of %s", parsed.Action)
	}
	return false, ""
}

// budgetNote returns the tracker's recommendation once usage crosses
// the caution threshold, so the model hears about pressure without
// calling the budget tool.
func budgetNote(t *budget.Tracker) string {
	pct := t.UsagePercent()
	if pct < budget.ThresholdCaution {
		return ""
	}
	return budget.Recommendation(pct)
}

func correctiveObservation(err error) string {
	return fmt.Sprintf("Could not parse your response (%v). Reply with either a Final Answer, or an Action line naming a tool followed by an Action Input line with a JSON object.", err)
}

func summarizeArgs(params map[string]any) string {
	if len(params) == 0 {
		return "(no arguments)"
	}
	parts := make([]string, 0, len(params))
	for k, v := range params {
		s := fmt.Sprintf("%v", v)
		if len(s) > 120 {
			s = s[:120] + "..."
		}
		parts = append(parts, fmt.Sprintf("%s=%s", k, s))
	}
	return strings.Join(parts, ", ")
}
