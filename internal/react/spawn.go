package react

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aura-code/aura/internal/agents"
	"github.com/aura-code/aura/internal/budget"
	"github.com/aura-code/aura/internal/confirm"
	"github.com/aura-code/aura/internal/provider"
	"github.com/aura-code/aura/internal/tools"
	"github.com/aura-code/aura/internal/trace"
)

// MaxSpawnDepth is the default sub-agent nesting limit. A depth-0
// parent may spawn a depth-1 child, which may spawn a depth-2 child;
// the depth-2 child's spawn attempts are refused.
const MaxSpawnDepth = 2

// Spawner launches sub-agent executions. Sub-agents share the parent's
// tool registry but run with a fresh message history and their own
// token tracker; only the final summary returns to the parent.
type Spawner struct {
	agents    *agents.Registry
	providers *provider.Registry
	tools     *tools.Registry
	gate      confirm.Gate
	tracer    trace.Publisher
	maxDepth  int
	budgetPer int
	logger    *slog.Logger
}

// SpawnerOptions tunes a Spawner beyond its required collaborators.
type SpawnerOptions struct {
	// MaxDepth overrides MaxSpawnDepth when positive.
	MaxDepth int
	// BudgetPerAgent is the token budget given to each sub-agent
	// tracker. Zero uses the tracker default.
	BudgetPerAgent int
	Gate           confirm.Gate
	Tracer         trace.Publisher
}

// NewSpawner creates a Spawner. Its Spawn method satisfies
// tools.SpawnFunc and is meant to be injected into the spawn tool.
func NewSpawner(reg *agents.Registry, providers *provider.Registry, toolReg *tools.Registry, opts SpawnerOptions) *Spawner {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = MaxSpawnDepth
	}
	return &Spawner{
		agents:    reg,
		providers: providers,
		tools:     toolReg,
		gate:      opts.Gate,
		tracer:    opts.Tracer,
		maxDepth:  maxDepth,
		budgetPer: opts.BudgetPerAgent,
		logger:    slog.Default().With("component", "spawner"),
	}
}

// Spawn runs one sub-agent execution to completion. Failures come back
// in the output, never as panics or errors, so the parent loop can
// observe them and continue.
func (s *Spawner) Spawn(ctx context.Context, req tools.SpawnRequest, cc tools.CallContext) (out tools.SpawnOutput) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sub-agent panicked", "agent", req.AgentID, "panic", r)
			out = tools.SpawnOutput{Error: fmt.Sprintf("sub-agent %s panicked: %v", req.AgentID, r)}
		}
	}()

	if cc.SpawnDepth >= s.maxDepth {
		return tools.SpawnOutput{
			Error: fmt.Sprintf("maximum sub-agent depth %d reached, handle the task directly", s.maxDepth),
		}
	}

	def, err := s.agents.Get(req.AgentID)
	if err != nil {
		return tools.SpawnOutput{Error: fmt.Sprintf("agent not found: %s", req.AgentID)}
	}

	llm, err := s.providers.GetDefault()
	if err != nil {
		return tools.SpawnOutput{Error: "no default LLM provider configured"}
	}

	maxSteps := req.MaxSteps
	if maxSteps <= 0 {
		maxSteps = tools.DefaultSubagentMaxSteps
	}

	childCtx := cc
	childCtx.SpawnDepth = cc.SpawnDepth + 1
	childCtx.WorkflowID = ""
	childCtx.StepID = ""
	if req.WorkingDir != "" {
		childCtx.WorkingDir = req.WorkingDir
	}

	s.logger.Info("spawning sub-agent",
		"agent", def.ID, "depth", childCtx.SpawnDepth, "max_steps", maxSteps)

	temp := def.EffectiveTemperature()
	exec := NewExecutor(llm, s.tools, s.gate, s.tracer)
	result := exec.Run(ctx, Request{
		Task:              req.Task,
		SystemPrompt:      def.SystemPrompt,
		AdditionalContext: subagentContext(def, req.Context),
		Model:             def.Model,
		Temperature:       &temp,
		MaxSteps:          maxSteps,
		Tracker:           budget.NewTracker(s.budgetPer),
		ToolContext:       childCtx,
	})

	out = tools.SpawnOutput{
		StepsUsed:  len(result.Steps),
		TokensUsed: result.TokensUsed,
	}
	switch result.Status {
	case StatusSuccess:
		out.Success = true
		out.Summary = result.Answer
	case StatusStepLimit:
		out.Error = fmt.Sprintf("sub-agent %s hit its step limit; last observation: %s",
			def.ID, truncateObservation(result.LastObservation()))
	default:
		out.Error = fmt.Sprintf("sub-agent %s failed: %s", def.ID, result.Reason)
	}
	return out
}

// Summaries adapts the agent catalog for the list_agents tool.
func (s *Spawner) Summaries() []tools.AgentSummary {
	defs := s.agents.All()
	out := make([]tools.AgentSummary, 0, len(defs))
	for _, d := range defs {
		out = append(out, tools.AgentSummary{
			ID:           d.ID,
			Name:         d.Name,
			Description:  d.Description,
			Capabilities: d.Capabilities,
			Priority:     d.EffectivePriority(),
		})
	}
	return out
}

// subagentContext frames the child's role so it knows it reports back
// to a parent rather than to the user.
func subagentContext(def *agents.Definition, extra string) string {
	var sb strings.Builder
	sb.WriteString("You are running as a sub-agent. Complete the delegated task and return a concise summary as your Final Answer; the caller sees only that summary.")
	if len(def.Capabilities) > 0 {
		fmt.Fprintf(&sb, "\nYour capabilities: %s.", strings.Join(def.Capabilities, ", "))
	}
	if extra != "" {
		sb.WriteString("\n\n")
		sb.WriteString(extra)
	}
	return sb.String()
}

func truncateObservation(s string) string {
	if s == "" {
		return "(none)"
	}
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
