// Package config provides configuration types and loading for aura.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration struct.
type Config struct {
	Paths    PathsConfig    `json:"paths"`
	Model    ModelConfig    `json:"model"`
	Ollama   OllamaConfig   `json:"ollama"`
	Tools    ToolsConfig    `json:"tools"`
	Agents   AgentsConfig   `json:"agents"`
	Guardian GuardianConfig `json:"guardian"`
	Confirm  ConfirmConfig  `json:"confirm"`
	Trace    TraceConfig    `json:"trace"`
	Slack    SlackConfig    `json:"slack"`
}

// PathsConfig groups filesystem locations.
type PathsConfig struct {
	Workspace    string `json:"workspace" envconfig:"WORKSPACE"`
	AgentsDir    string `json:"agentsDir" envconfig:"AGENTS_DIR"`
	GuardiansDir string `json:"guardiansDir" envconfig:"GUARDIANS_DIR"`
	StorePath    string `json:"storePath" envconfig:"STORE_PATH"`
}

// ModelConfig groups loop and budget settings.
type ModelConfig struct {
	Name        string  `json:"name" envconfig:"MODEL"`
	Temperature float64 `json:"temperature" envconfig:"TEMPERATURE"`
	MaxSteps    int     `json:"maxSteps" envconfig:"MAX_STEPS"`
	TokenBudget int     `json:"tokenBudget" envconfig:"TOKEN_BUDGET"`
}

// OllamaConfig configures the local Ollama endpoint.
type OllamaConfig struct {
	BaseURL string `json:"baseUrl" envconfig:"BASE_URL"`
	Model   string `json:"model" envconfig:"MODEL"`
}

// ToolsConfig configures tool execution and delegation.
type ToolsConfig struct {
	ExecTimeoutSeconds int `json:"execTimeoutSeconds" envconfig:"EXEC_TIMEOUT_SECONDS"`
	Subagents          SubagentsConfig
}

// SubagentsConfig bounds sub-agent spawning.
type SubagentsConfig struct {
	MaxSpawnDepth  int `json:"maxSpawnDepth" envconfig:"MAX_SPAWN_DEPTH"`
	MaxSteps       int `json:"maxSteps" envconfig:"MAX_STEPS"`
	BudgetPerAgent int `json:"budgetPerAgent" envconfig:"BUDGET_PER_AGENT"`
}

// AgentsConfig configures the agent catalog.
type AgentsConfig struct {
	HotReload bool `json:"hotReload" envconfig:"HOT_RELOAD"`
}

// GuardianConfig configures the guardian runner.
type GuardianConfig struct {
	Enabled   bool `json:"enabled" envconfig:"ENABLED"`
	HotReload bool `json:"hotReload" envconfig:"HOT_RELOAD"`
}

// ConfirmConfig configures the confirmation gate.
type ConfirmConfig struct {
	// Allow lists tools that never require confirmation.
	Allow []string `json:"allow"`
	// Require lists tools that always require confirmation.
	Require []string `json:"require"`
	// DefaultAllow approves unlisted confirmation-requiring tools
	// when no interactive manager is attached.
	DefaultAllow       bool `json:"defaultAllow" envconfig:"DEFAULT_ALLOW"`
	WaitTimeoutSeconds int  `json:"waitTimeoutSeconds" envconfig:"WAIT_TIMEOUT_SECONDS"`
}

// TraceConfig configures the Kafka span publisher.
type TraceConfig struct {
	Enabled   bool   `json:"enabled" envconfig:"ENABLED"`
	Bootstrap string `json:"bootstrap" envconfig:"BOOTSTRAP"`
	Topic     string `json:"topic" envconfig:"TOPIC"`
}

// SlackConfig configures Slack notifications.
type SlackConfig struct {
	Enabled  bool   `json:"enabled" envconfig:"ENABLED"`
	BotToken string `json:"botToken" envconfig:"BOT_TOKEN"`
	Channel  string `json:"channel" envconfig:"CHANNEL"`
}

// ExecTimeout returns the tool execution timeout as a duration.
func (t ToolsConfig) ExecTimeout() time.Duration {
	return time.Duration(t.ExecTimeoutSeconds) * time.Second
}

// WaitTimeout returns the confirmation wait timeout as a duration.
func (c ConfirmConfig) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutSeconds) * time.Second
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".aura")
	return &Config{
		Paths: PathsConfig{
			Workspace:    home,
			AgentsDir:    filepath.Join(base, "agents"),
			GuardiansDir: filepath.Join(base, "guardians"),
			StorePath:    filepath.Join(base, "aura.db"),
		},
		Model: ModelConfig{
			Temperature: 0.7,
			MaxSteps:    25,
			TokenBudget: 120000,
		},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			Model:   "qwen2.5-coder:7b",
		},
		Tools: ToolsConfig{
			ExecTimeoutSeconds: 120,
			Subagents: SubagentsConfig{
				MaxSpawnDepth:  2,
				MaxSteps:       10,
				BudgetPerAgent: 40000,
			},
		},
		Agents:   AgentsConfig{HotReload: true},
		Guardian: GuardianConfig{HotReload: true},
		Confirm: ConfirmConfig{
			DefaultAllow:       false,
			WaitTimeoutSeconds: 60,
		},
		Trace: TraceConfig{Topic: "aura.traces"},
	}
}
