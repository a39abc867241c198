package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SpawnRequest is the typed input of the spawn_subagent tool.
type SpawnRequest struct {
	AgentID    string `json:"agent_id"`
	Task       string `json:"task"`
	Context    string `json:"context,omitempty"`
	MaxSteps   int    `json:"max_steps,omitempty"`
	WorkingDir string `json:"working_dir,omitempty"`
}

// SpawnOutput is the typed output of the spawn_subagent tool. Only the
// final summary crosses back to the parent; the child's full trace stays
// with the child so the parent's context stays bounded.
type SpawnOutput struct {
	Success    bool   `json:"success"`
	Summary    string `json:"summary,omitempty"`
	StepsUsed  int    `json:"steps_used"`
	TokensUsed int    `json:"tokens_used"`
	Error      string `json:"error,omitempty"`
}

// SpawnFunc launches an independent sub-agent execution. The CallContext
// carries the parent's spawn depth for recursion guarding.
type SpawnFunc func(ctx context.Context, req SpawnRequest, cc CallContext) SpawnOutput

// DefaultSubagentMaxSteps bounds a spawned execution when the caller
// does not override it.
const DefaultSubagentMaxSteps = 10

// SpawnSubagentTool delegates a self-contained task to another agent,
// run as an independent execution with its own token tracker and fresh
// message history.
type SpawnSubagentTool struct {
	spawn SpawnFunc
}

func NewSpawnSubagentTool(spawn SpawnFunc) *SpawnSubagentTool {
	return &SpawnSubagentTool{spawn: spawn}
}

func (t *SpawnSubagentTool) Name() string     { return "spawn_subagent" }
func (t *SpawnSubagentTool) Category() string { return "delegation" }

// ExecTimeout disables the registry's wall-clock bound. The child run
// is bounded by its own step limit and the parent's context.
func (t *SpawnSubagentTool) ExecTimeout() time.Duration { return 0 }

func (t *SpawnSubagentTool) Description() string {
	return "Delegate a self-contained task to another agent. The sub-agent runs independently with a fresh context and returns only a summary."
}

func (t *SpawnSubagentTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"agent_id": map[string]any{
				"type":        "string",
				"description": "ID of the registered agent to run the task",
			},
			"task": map[string]any{
				"type":        "string",
				"description": "Self-contained task description for the sub-agent",
			},
			"context": map[string]any{
				"type":        "string",
				"description": "Optional free-text context passed along with the task",
			},
			"max_steps": map[string]any{
				"type":        "integer",
				"description": fmt.Sprintf("Maximum reasoning steps for the sub-agent (default %d)", DefaultSubagentMaxSteps),
			},
			"working_dir": map[string]any{
				"type":        "string",
				"description": "Working directory for the sub-agent's tools",
			},
		},
		"required": []string{"agent_id", "task"},
	}
}

func (t *SpawnSubagentTool) Execute(ctx context.Context, in Input) Result {
	if t.spawn == nil {
		return Fail("spawn_subagent unavailable")
	}

	req, err := DecodeParams[SpawnRequest](in.Params)
	if err != nil {
		return Failf("spawn_subagent: %v", err)
	}
	req.AgentID = strings.TrimSpace(req.AgentID)
	req.Task = strings.TrimSpace(req.Task)
	if req.AgentID == "" {
		return Fail("agent_id is required")
	}
	if req.Task == "" {
		return Fail("task is required")
	}
	if req.MaxSteps <= 0 {
		req.MaxSteps = DefaultSubagentMaxSteps
	}
	if req.WorkingDir == "" {
		req.WorkingDir = in.Context.WorkingDir
	}

	out := t.spawn(ctx, req, in.Context)
	meta := map[string]any{
		"steps_used":  out.StepsUsed,
		"tokens_used": out.TokensUsed,
	}
	if !out.Success {
		return Result{Success: false, Error: out.Error, Meta: meta}
	}
	body, marshalErr := json.Marshal(out)
	if marshalErr != nil {
		return Failf("spawn_subagent: %v", marshalErr)
	}
	return OkMeta(string(body), meta)
}

// AgentSummary is one entry of the list_agents discovery output.
type AgentSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name,omitempty"`
	Description  string   `json:"description,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	Priority     int      `json:"priority"`
}

// ListAgentsTool exposes the registered agent catalog so the model can
// choose a delegation target.
type ListAgentsTool struct {
	list func() []AgentSummary
}

func NewListAgentsTool(list func() []AgentSummary) *ListAgentsTool {
	return &ListAgentsTool{list: list}
}

func (t *ListAgentsTool) Name() string     { return "list_agents" }
func (t *ListAgentsTool) Category() string { return "delegation" }

func (t *ListAgentsTool) Description() string {
	return "List the agents available as spawn_subagent targets."
}

func (t *ListAgentsTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (t *ListAgentsTool) Execute(_ context.Context, _ Input) Result {
	if t.list == nil {
		return Fail("list_agents unavailable")
	}
	body, err := json.Marshal(map[string]any{"agents": t.list()})
	if err != nil {
		return Failf("list_agents: %v", err)
	}
	return Ok(string(body))
}
