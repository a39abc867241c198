package react

import (
	"context"
	"strings"
	"testing"

	"github.com/aura-code/aura/internal/agents"
	"github.com/aura-code/aura/internal/provider"
	"github.com/aura-code/aura/internal/tools"
)

func newAgentRegistry(t *testing.T) *agents.Registry {
	t.Helper()
	reg := agents.NewRegistry("")
	err := reg.Register(&agents.Definition{
		ID:           "helper",
		Description:  "test helper agent",
		SystemPrompt: "You help.",
		Capabilities: []string{"help"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func newProviderRegistry(llm provider.Provider) *provider.Registry {
	reg := provider.NewRegistry()
	reg.Register(llm)
	reg.SetDefault(llm.ID())
	return reg
}

func TestSpawnRunsChildToCompletion(t *testing.T) {
	llm := &scriptedProvider{responses: []string{
		"Thought: easy\nFinal Answer: child summary",
	}}
	toolReg := newTestRegistry(t)
	spawner := NewSpawner(newAgentRegistry(t), newProviderRegistry(llm), toolReg, SpawnerOptions{})

	out := spawner.Spawn(context.Background(),
		tools.SpawnRequest{AgentID: "helper", Task: "do a thing", MaxSteps: 5},
		tools.CallContext{})
	if !out.Success {
		t.Fatalf("spawn failed: %s", out.Error)
	}
	if out.Summary != "child summary" {
		t.Fatalf("summary = %q", out.Summary)
	}
	if out.StepsUsed != 1 {
		t.Fatalf("steps = %d", out.StepsUsed)
	}
	if out.TokensUsed == 0 {
		t.Fatal("child tokens not reported")
	}
}

func TestSpawnUnknownAgent(t *testing.T) {
	llm := &scriptedProvider{responses: []string{"Final Answer: unused"}}
	spawner := NewSpawner(newAgentRegistry(t), newProviderRegistry(llm), newTestRegistry(t), SpawnerOptions{})

	out := spawner.Spawn(context.Background(),
		tools.SpawnRequest{AgentID: "ghost", Task: "x", MaxSteps: 5},
		tools.CallContext{})
	if out.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(out.Error, "agent not found: ghost") {
		t.Fatalf("error = %q", out.Error)
	}
}

func TestSpawnDepthGuard(t *testing.T) {
	llm := &scriptedProvider{responses: []string{"Final Answer: unused"}}
	spawner := NewSpawner(newAgentRegistry(t), newProviderRegistry(llm), newTestRegistry(t), SpawnerOptions{MaxDepth: 2})

	out := spawner.Spawn(context.Background(),
		tools.SpawnRequest{AgentID: "helper", Task: "x", MaxSteps: 5},
		tools.CallContext{SpawnDepth: 2})
	if out.Success {
		t.Fatal("expected depth refusal")
	}
	if !strings.Contains(out.Error, "depth") {
		t.Fatalf("error = %q", out.Error)
	}
	if llm.callCount() != 0 {
		t.Fatal("refused spawn must not call the LLM")
	}
}

func TestSpawnChildStepLimitSurfacesAsError(t *testing.T) {
	llm := &scriptedProvider{responses: []string{
		"Action: echo\nAction Input: {\"text\": \"looping\"}",
	}}
	spawner := NewSpawner(newAgentRegistry(t), newProviderRegistry(llm), newTestRegistry(t), SpawnerOptions{})

	out := spawner.Spawn(context.Background(),
		tools.SpawnRequest{AgentID: "helper", Task: "loop", MaxSteps: 2},
		tools.CallContext{})
	if out.Success {
		t.Fatal("step-limited child must not report success")
	}
	if !strings.Contains(out.Error, "step limit") {
		t.Fatalf("error = %q", out.Error)
	}
	if out.StepsUsed != 2 {
		t.Fatalf("steps = %d, want 2", out.StepsUsed)
	}
}

// A parent loop that delegates sees only the child's summary and a
// single extra step in its own trace. The child runs with its own
// tracker; parent token accounting covers the parent's calls only.
func TestParentChildIsolation(t *testing.T) {
	childLLM := &scriptedProvider{responses: []string{
		"Thought: quick\nFinal Answer: delegated work done",
	}}
	agentReg := newAgentRegistry(t)
	providerReg := newProviderRegistry(childLLM)

	toolReg := tools.NewRegistry()
	if err := toolReg.Register(echoTool{}); err != nil {
		t.Fatal(err)
	}
	spawner := NewSpawner(agentReg, providerReg, toolReg, SpawnerOptions{})
	if err := toolReg.Register(tools.NewSpawnSubagentTool(spawner.Spawn)); err != nil {
		t.Fatal(err)
	}

	parentLLM := &scriptedProvider{responses: []string{
		"Action: spawn_subagent\nAction Input: {\"agent_id\": \"helper\", \"task\": \"sub work\"}",
		"Final Answer: all done",
	}}
	exec := NewExecutor(parentLLM, toolReg, nil, nil)
	out := exec.Run(context.Background(), Request{Task: "delegate", MaxSteps: 5})

	if out.Status != StatusSuccess {
		t.Fatalf("status = %s (%s)", out.Status, out.Reason)
	}
	if len(out.Steps) != 2 {
		t.Fatalf("parent steps = %d, want 2 (delegation is one step)", len(out.Steps))
	}
	if !strings.Contains(out.Steps[0].Observation, "delegated work done") {
		t.Fatalf("observation = %q, want child summary only", out.Steps[0].Observation)
	}
	// Child trace never leaks into the parent.
	if strings.Contains(out.Steps[0].Observation, "Thought: quick") {
		t.Fatal("child reasoning leaked into parent observation")
	}
	// Parent tracker counts parent calls only: 2 calls x 100 tokens.
	if out.TokensUsed != 200 {
		t.Fatalf("parent tokens = %d, want 200", out.TokensUsed)
	}
}
