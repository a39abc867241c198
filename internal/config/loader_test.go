package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Model.MaxSteps != 25 {
		t.Fatalf("maxSteps = %d", cfg.Model.MaxSteps)
	}
	if cfg.Model.TokenBudget != 120000 {
		t.Fatalf("tokenBudget = %d", cfg.Model.TokenBudget)
	}
	if cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Fatalf("baseURL = %s", cfg.Ollama.BaseURL)
	}
	if cfg.Tools.ExecTimeout() != 120*time.Second {
		t.Fatalf("exec timeout = %s", cfg.Tools.ExecTimeout())
	}
	if cfg.Tools.Subagents.MaxSpawnDepth != 2 {
		t.Fatalf("spawn depth = %d", cfg.Tools.Subagents.MaxSpawnDepth)
	}
	if cfg.Confirm.WaitTimeout() != 60*time.Second {
		t.Fatalf("wait timeout = %s", cfg.Confirm.WaitTimeout())
	}
	if !cfg.Agents.HotReload || !cfg.Guardian.HotReload {
		t.Fatal("hot reload should default on")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("AURA_CONFIG", filepath.Join(t.TempDir(), "config.json"))

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model.MaxSteps != 25 {
		t.Fatalf("maxSteps = %d", cfg.Model.MaxSteps)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("AURA_CONFIG", path)

	body := `{"model": {"maxSteps": 8, "tokenBudget": 5000}, "ollama": {"model": "llama3:8b"}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model.MaxSteps != 8 {
		t.Fatalf("maxSteps = %d", cfg.Model.MaxSteps)
	}
	if cfg.Ollama.Model != "llama3:8b" {
		t.Fatalf("model = %s", cfg.Ollama.Model)
	}
	// untouched keys keep defaults
	if cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Fatalf("baseURL = %s", cfg.Ollama.BaseURL)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("AURA_CONFIG", path)
	if err := os.WriteFile(path, []byte(`{"model": {"maxSteps": 8}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AURA_MODEL_MAX_STEPS", "3")
	t.Setenv("AURA_OLLAMA_BASE_URL", "http://ollama.internal:11434")
	t.Setenv("AURA_TOOLS_SUBAGENTS_MAX_SPAWN_DEPTH", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model.MaxSteps != 3 {
		t.Fatalf("maxSteps = %d", cfg.Model.MaxSteps)
	}
	if cfg.Ollama.BaseURL != "http://ollama.internal:11434" {
		t.Fatalf("baseURL = %s", cfg.Ollama.BaseURL)
	}
	if cfg.Tools.Subagents.MaxSpawnDepth != 4 {
		t.Fatalf("spawn depth = %d", cfg.Tools.Subagents.MaxSpawnDepth)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("AURA_CONFIG", path)
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	t.Setenv("AURA_CONFIG", path)

	cfg := DefaultConfig()
	cfg.Model.MaxSteps = 12
	cfg.Slack.Channel = "#aura-approvals"
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Model.MaxSteps != 12 {
		t.Fatalf("maxSteps = %d", loaded.Model.MaxSteps)
	}
	if loaded.Slack.Channel != "#aura-approvals" {
		t.Fatalf("channel = %s", loaded.Slack.Channel)
	}
}

func TestLoadEnvFileDoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "env")
	body := "AURA_TEST_FROM_FILE=file-value\nAURA_TEST_EXISTING=file-value\n# comment\nexport AURA_TEST_QUOTED=\"quoted value\"\n"
	if err := os.WriteFile(envPath, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AURA_ENV_FILE", envPath)
	t.Setenv("AURA_TEST_EXISTING", "process-value")
	os.Unsetenv("AURA_TEST_FROM_FILE")
	os.Unsetenv("AURA_TEST_QUOTED")
	t.Cleanup(func() {
		os.Unsetenv("AURA_TEST_FROM_FILE")
		os.Unsetenv("AURA_TEST_QUOTED")
	})

	LoadEnvFileCandidates()

	if got := os.Getenv("AURA_TEST_FROM_FILE"); got != "file-value" {
		t.Fatalf("from file = %q", got)
	}
	if got := os.Getenv("AURA_TEST_EXISTING"); got != "process-value" {
		t.Fatalf("existing = %q", got)
	}
	if got := os.Getenv("AURA_TEST_QUOTED"); got != "quoted value" {
		t.Fatalf("quoted = %q", got)
	}
}
