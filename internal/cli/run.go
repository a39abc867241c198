package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aura-code/aura/internal/agents"
	"github.com/aura-code/aura/internal/budget"
	"github.com/aura-code/aura/internal/config"
	"github.com/aura-code/aura/internal/confirm"
	"github.com/aura-code/aura/internal/notify"
	"github.com/aura-code/aura/internal/provider"
	"github.com/aura-code/aura/internal/react"
	"github.com/aura-code/aura/internal/store"
	"github.com/aura-code/aura/internal/tools"
	"github.com/aura-code/aura/internal/trace"
)

var (
	runTask     string
	runAgentID  string
	runMaxSteps int
	runYes      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a task through an agent",
	RunE:  runTaskCmd,
}

func init() {
	runCmd.Flags().StringVarP(&runTask, "task", "t", "", "Task for the agent (required)")
	runCmd.Flags().StringVarP(&runAgentID, "agent", "a", "coder", "Agent ID to run the task")
	runCmd.Flags().IntVar(&runMaxSteps, "max-steps", 0, "Override the step limit")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "Auto-approve all confirmations")
}

func runTaskCmd(cmd *cobra.Command, args []string) error {
	if runTask == "" {
		return fmt.Errorf("--task is required")
	}

	printHeader("🤖 Aura Run")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := buildEnvironment(ctx, cfg)
	if err != nil {
		return err
	}
	defer env.close()

	def, err := env.agents.Get(runAgentID)
	if err != nil {
		return fmt.Errorf("unknown agent %q (try 'aura agents list')", runAgentID)
	}

	maxSteps := runMaxSteps
	if maxSteps <= 0 {
		maxSteps = cfg.Model.MaxSteps
	}

	tracker := budget.NewTracker(cfg.Model.TokenBudget)
	temp := def.EffectiveTemperature()
	exec := react.NewExecutor(env.llm, env.tools, env.gate, env.tracer)
	outcome := exec.Run(ctx, react.Request{
		Task:         runTask,
		SystemPrompt: def.SystemPrompt,
		Model:        def.Model,
		Temperature:  &temp,
		MaxSteps:     maxSteps,
		Tracker:      tracker,
		ToolContext:  tools.CallContext{WorkingDir: cfg.Paths.Workspace},
	})

	printOutcome(outcome)
	env.saveOutcome(def.ID, runTask, outcome)
	if outcome.Status != react.StatusSuccess {
		return fmt.Errorf("run finished with status %s", outcome.Status)
	}
	return nil
}

// environment bundles the wired collaborators of one CLI invocation.
type environment struct {
	llm    provider.Provider
	tools  *tools.Registry
	agents *agents.Registry
	gate   confirm.Gate
	tracer trace.Publisher
	db     *store.Store
	kafka  *trace.KafkaPublisher
}

func buildEnvironment(ctx context.Context, cfg *config.Config) (*environment, error) {
	env := &environment{}

	db, err := store.Open(cfg.Paths.StorePath)
	if err != nil {
		fmt.Printf("Store warning: %v (history disabled)\n", err)
	} else {
		env.db = db
	}

	providers := provider.NewRegistry()
	ollama := provider.NewOllamaProvider(cfg.Ollama.BaseURL, cfg.Ollama.Model)
	providers.Register(ollama)
	providers.SetDefault(ollama.ID())
	env.llm = ollama

	env.agents = agents.NewRegistry(cfg.Paths.AgentsDir)
	for _, def := range agents.Builtin() {
		if err := env.agents.Register(def); err != nil {
			return nil, fmt.Errorf("register builtin agent: %w", err)
		}
	}
	if _, err := env.agents.Reload(); err != nil {
		fmt.Printf("Agents warning: %v\n", err)
	}
	if cfg.Agents.HotReload {
		go env.agents.Watch(ctx)
	}

	env.gate = buildGate(cfg, env.db)

	env.tracer = trace.Nop{}
	if cfg.Trace.Enabled && cfg.Trace.Bootstrap != "" {
		kafka := trace.NewKafkaPublisherFromBootstrap(cfg.Trace.Bootstrap, cfg.Trace.Topic)
		env.tracer = kafka
		env.kafka = kafka
	}

	reg := tools.NewRegistry()
	reg.SetExecTimeout(cfg.Tools.ExecTimeout())
	spawner := react.NewSpawner(env.agents, providers, reg, react.SpawnerOptions{
		MaxDepth:       cfg.Tools.Subagents.MaxSpawnDepth,
		BudgetPerAgent: cfg.Tools.Subagents.BudgetPerAgent,
		Gate:           env.gate,
		Tracer:         env.tracer,
	})
	for _, t := range []tools.Tool{
		&tools.ReadFileTool{},
		&tools.WriteFileTool{},
		&tools.ListDirTool{},
		&tools.RunCommandTool{},
		&tools.TokenBudgetTool{},
		tools.NewListAgentsTool(spawner.Summaries),
		tools.NewSpawnSubagentTool(spawner.Spawn),
	} {
		if err := reg.Register(t); err != nil {
			return nil, fmt.Errorf("register tool: %w", err)
		}
	}
	env.tools = reg

	return env, nil
}

// buildGate assembles the confirmation chain: explicit allow/require
// lists first, then interactive terminal approval, optionally bypassed
// entirely with --yes.
func buildGate(cfg *config.Config, db *store.Store) confirm.Gate {
	if runYes {
		return confirm.ApproveAll()
	}

	prompter := &terminalPrompter{}
	var notifier confirm.Notifier = prompter
	if cfg.Slack.Enabled && cfg.Slack.BotToken != "" {
		// Slack announces requests; the decision still happens at
		// the terminal.
		slack := notify.NewSlackNotifier(cfg.Slack.BotToken, cfg.Slack.Channel)
		notifier = fanoutNotifier{prompter, slack}
	}

	var recorder confirm.Recorder
	if db != nil {
		recorder = db
	}
	mgr := confirm.NewManager(recorder, notifier, cfg.Confirm.WaitTimeout())
	prompter.mgr = mgr

	gate := confirm.NewAutoGate(cfg.Confirm.Allow, cfg.Confirm.Require, cfg.Confirm.DefaultAllow)
	gate.Manager = mgr
	return gate
}

// fanoutNotifier forwards approval events to every target.
type fanoutNotifier []confirm.Notifier

func (f fanoutNotifier) ApprovalRequested(id string, req confirm.Request) {
	for _, n := range f {
		n.ApprovalRequested(id, req)
	}
}

func (f fanoutNotifier) ApprovalResolved(id string, approved bool) {
	for _, n := range f {
		n.ApprovalResolved(id, approved)
	}
}

func (e *environment) saveOutcome(agentID, task string, outcome *react.Outcome) {
	if e.db == nil {
		return
	}
	steps := make([]store.StepRecord, 0, len(outcome.Steps))
	for _, s := range outcome.Steps {
		steps = append(steps, store.StepRecord{
			ExecutionID: outcome.ID,
			Index:       s.Index,
			Thought:     s.Thought,
			Action:      s.Action,
			ActionInput: s.ActionInput,
			Observation: s.Observation,
			TokensUsed:  s.TokensUsed,
		})
	}
	err := e.db.SaveExecution(store.ExecutionRecord{
		ID:         outcome.ID,
		AgentID:    agentID,
		Task:       task,
		Status:     string(outcome.Status),
		Answer:     outcome.Answer,
		Reason:     outcome.Reason,
		StepsUsed:  len(outcome.Steps),
		TokensUsed: outcome.TokensUsed,
	}, steps)
	if err != nil {
		fmt.Printf("History warning: %v\n", err)
	}
}

func (e *environment) close() {
	if e.kafka != nil {
		e.kafka.Close()
	}
	if e.db != nil {
		e.db.Close()
	}
}

func printOutcome(outcome *react.Outcome) {
	fmt.Println()
	for _, s := range outcome.Steps {
		if s.Thought != "" {
			color.HiBlack("Thought %d: %s", s.Index, s.Thought)
		}
		if s.Action != "" {
			color.Blue("Action %d:  %s", s.Index, s.Action)
		}
		if s.Observation != "" {
			obs := s.Observation
			if len(obs) > 400 {
				obs = obs[:400] + "..."
			}
			fmt.Printf("Observation %d: %s\n", s.Index, obs)
		}
	}

	fmt.Println()
	switch outcome.Status {
	case react.StatusSuccess:
		color.Green("✓ %s", outcome.Answer)
	case react.StatusStepLimit:
		color.Yellow("⚠ Step limit reached. Last observation: %s", outcome.LastObservation())
	default:
		color.Red("✗ %s", outcome.Reason)
	}
	fmt.Printf("\nSteps: %d  Tokens: %d\n", len(outcome.Steps), outcome.TokensUsed)
}
