package react

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/aura-code/aura/internal/budget"
	"github.com/aura-code/aura/internal/confirm"
	"github.com/aura-code/aura/internal/provider"
	"github.com/aura-code/aura/internal/tools"
)

// scriptedProvider replays canned responses. When the script runs out
// it repeats the last entry.
type scriptedProvider struct {
	mu        sync.Mutex
	responses []string
	calls     int
	tokens    int
}

func (p *scriptedProvider) ID() string           { return "scripted" }
func (p *scriptedProvider) DefaultModel() string { return "test-model" }

func (p *scriptedProvider) ListModels(ctx context.Context) ([]string, error) {
	return []string{"test-model"}, nil
}

func (p *scriptedProvider) Chat(ctx context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := p.calls
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	p.calls++
	tokens := p.tokens
	if tokens == 0 {
		tokens = 100
	}
	return &provider.ChatResponse{
		Content: p.responses[idx],
		Model:   req.Model,
		Usage:   provider.Usage{TotalTokens: tokens},
	}, nil
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes its text parameter" }

func (echoTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
		},
		"required": []string{"text"},
	}
}

func (echoTool) Execute(ctx context.Context, in tools.Input) tools.Result {
	return tools.Ok(tools.GetString(in.Params, "text", ""))
}

type guardedTool struct{ ran bool }

func (g *guardedTool) Name() string               { return "guarded" }
func (g *guardedTool) Description() string        { return "needs approval" }
func (g *guardedTool) RequiresConfirmation() bool { return true }
func (g *guardedTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (g *guardedTool) Execute(ctx context.Context, in tools.Input) tools.Result {
	g.ran = true
	return tools.Ok("ran")
}

func newTestRegistry(t *testing.T, extra ...tools.Tool) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	if err := reg.Register(echoTool{}); err != nil {
		t.Fatal(err)
	}
	for _, tool := range extra {
		if err := reg.Register(tool); err != nil {
			t.Fatal(err)
		}
	}
	return reg
}

func TestRunSuccess(t *testing.T) {
	llm := &scriptedProvider{responses: []string{
		"Thought: echo it\nAction: echo\nAction Input: {\"text\": \"hello\"}",
		"Thought: done\nFinal Answer: echoed hello",
	}}
	exec := NewExecutor(llm, newTestRegistry(t), nil, nil)

	out := exec.Run(context.Background(), Request{Task: "say hello", MaxSteps: 5})
	if out.Status != StatusSuccess {
		t.Fatalf("status = %s (%s)", out.Status, out.Reason)
	}
	if out.Answer != "echoed hello" {
		t.Fatalf("answer = %q", out.Answer)
	}
	if len(out.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(out.Steps))
	}
	if out.Steps[0].Observation != "hello" {
		t.Fatalf("observation = %q", out.Steps[0].Observation)
	}
	if out.TokensUsed != 200 {
		t.Fatalf("tokens = %d, want 200", out.TokensUsed)
	}
}

func TestRunStepLimit(t *testing.T) {
	llm := &scriptedProvider{responses: []string{
		"Thought: loop\nAction: echo\nAction Input: {\"text\": \"again\"}",
	}}
	exec := NewExecutor(llm, newTestRegistry(t), nil, nil)

	out := exec.Run(context.Background(), Request{Task: "never finish", MaxSteps: 4})
	if out.Status != StatusStepLimit {
		t.Fatalf("status = %s", out.Status)
	}
	if len(out.Steps) != 4 {
		t.Fatalf("steps = %d, want exactly 4", len(out.Steps))
	}
	// One LLM call per step, no more.
	if llm.callCount() != 4 {
		t.Fatalf("llm calls = %d, want 4", llm.callCount())
	}
	if out.LastObservation() == "" {
		t.Fatal("step-limited run should carry a last observation")
	}
}

func TestRunParseFailureConsumesStep(t *testing.T) {
	llm := &scriptedProvider{responses: []string{
		"I will just ramble without any directive.",
		"Final Answer: recovered",
	}}
	exec := NewExecutor(llm, newTestRegistry(t), nil, nil)

	out := exec.Run(context.Background(), Request{Task: "x", MaxSteps: 5})
	if out.Status != StatusSuccess {
		t.Fatalf("status = %s (%s)", out.Status, out.Reason)
	}
	if len(out.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(out.Steps))
	}
	if !strings.Contains(out.Steps[0].Observation, "Could not parse") {
		t.Fatalf("observation = %q, want corrective message", out.Steps[0].Observation)
	}
}

func TestRunUnknownToolIsRecoverable(t *testing.T) {
	llm := &scriptedProvider{responses: []string{
		"Action: missing_tool\nAction Input: {}",
		"Final Answer: gave up on that tool",
	}}
	exec := NewExecutor(llm, newTestRegistry(t), nil, nil)

	out := exec.Run(context.Background(), Request{Task: "x", MaxSteps: 5})
	if out.Status != StatusSuccess {
		t.Fatalf("status = %s (%s)", out.Status, out.Reason)
	}
	if !strings.Contains(out.Steps[0].Observation, "tool not found") {
		t.Fatalf("observation = %q", out.Steps[0].Observation)
	}
}

func TestRunConfirmationDenialTerminates(t *testing.T) {
	guarded := &guardedTool{}
	llm := &scriptedProvider{responses: []string{
		"Action: guarded\nAction Input: {}",
		"Final Answer: should never get here",
	}}
	deny := confirm.GateFunc(func(ctx context.Context, req confirm.Request) (bool, error) {
		return false, nil
	})
	exec := NewExecutor(llm, newTestRegistry(t, guarded), deny, nil)

	out := exec.Run(context.Background(), Request{Task: "x", MaxSteps: 5})
	if out.Status != StatusFailure {
		t.Fatalf("status = %s, denial must fail the run", out.Status)
	}
	if guarded.ran {
		t.Fatal("denied tool must not execute")
	}
	if len(out.Steps) != 1 {
		t.Fatalf("steps = %d, want the denial recorded as one step", len(out.Steps))
	}
	if !strings.Contains(out.Reason, "denied") {
		t.Fatalf("reason = %q", out.Reason)
	}
}

func TestRunCancellation(t *testing.T) {
	llm := &scriptedProvider{responses: []string{
		"Action: echo\nAction Input: {\"text\": \"x\"}",
	}}
	exec := NewExecutor(llm, newTestRegistry(t), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := exec.Run(ctx, Request{Task: "x", MaxSteps: 5})
	if out.Status != StatusFailure {
		t.Fatalf("status = %s", out.Status)
	}
	if !strings.Contains(out.Reason, "cancelled") {
		t.Fatalf("reason = %q", out.Reason)
	}
}

func TestRunBudgetNoteInjected(t *testing.T) {
	llm := &scriptedProvider{
		responses: []string{
			"Action: echo\nAction Input: {\"text\": \"ok\"}",
			"Final Answer: done",
		},
		tokens: 90,
	}
	exec := NewExecutor(llm, newTestRegistry(t), nil, nil)

	tracker := budget.NewTracker(100)
	out := exec.Run(context.Background(), Request{Task: "x", MaxSteps: 5, Tracker: tracker})
	if out.Status != StatusSuccess {
		t.Fatalf("status = %s (%s)", out.Status, out.Reason)
	}
	// 90 of 100 tokens used after the first call.
	if !strings.Contains(out.Steps[0].Observation, "CRITICAL") {
		t.Fatalf("observation = %q, want budget warning appended", out.Steps[0].Observation)
	}
}

func TestRunStepsRecordCumulativeTokens(t *testing.T) {
	llm := &scriptedProvider{responses: []string{
		"Action: echo\nAction Input: {\"text\": \"a\"}",
		"Action: echo\nAction Input: {\"text\": \"b\"}",
		"Final Answer: done",
	}}
	exec := NewExecutor(llm, newTestRegistry(t), nil, nil)

	out := exec.Run(context.Background(), Request{Task: "x", MaxSteps: 5})
	if len(out.Steps) != 3 {
		t.Fatalf("steps = %d", len(out.Steps))
	}
	if out.Steps[0].TokensUsed != 100 || out.Steps[1].TokensUsed != 200 || out.Steps[2].TokensUsed != 300 {
		t.Fatalf("cumulative tokens = %d/%d/%d",
			out.Steps[0].TokensUsed, out.Steps[1].TokensUsed, out.Steps[2].TokensUsed)
	}
}
