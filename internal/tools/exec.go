package tools

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

type runCommandInput struct {
	Command    string `json:"command"`
	WorkingDir string `json:"working_dir,omitempty"`
}

// RunCommandTool executes a shell command in the working directory.
// Always behind the confirmation gate.
type RunCommandTool struct{}

func (t *RunCommandTool) Name() string               { return "run_command" }
func (t *RunCommandTool) Category() string           { return "system" }
func (t *RunCommandTool) RequiresConfirmation() bool { return true }

func (t *RunCommandTool) Description() string {
	return "Run a shell command and return its combined output. Use for builds, tests, and git operations."
}

func (t *RunCommandTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "Shell command to execute",
			},
			"working_dir": map[string]any{
				"type":        "string",
				"description": "Directory to run in (defaults to the execution working directory)",
			},
		},
		"required": []string{"command"},
	}
}

func (t *RunCommandTool) Execute(ctx context.Context, in Input) Result {
	params, err := DecodeParams[runCommandInput](in.Params)
	if err != nil {
		return Failf("run_command: %v", err)
	}
	if strings.TrimSpace(params.Command) == "" {
		return Fail("command is empty")
	}

	dir := params.WorkingDir
	if dir == "" {
		dir = in.Context.WorkingDir
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", params.Command)
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	runErr := cmd.Run()
	output := strings.TrimSpace(buf.String())
	if runErr != nil {
		if output == "" {
			return Failf("command failed: %v", runErr)
		}
		return Failf("command failed: %v\n%s", runErr, output)
	}
	if output == "" {
		output = "(no output)"
	}
	return OkMeta(output, map[string]any{"exit_code": 0})
}
