package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ReadFileTool reads the contents of a file.
type ReadFileTool struct{}

func NewReadFileTool() *ReadFileTool { return &ReadFileTool{} }

func (t *ReadFileTool) Name() string     { return "read_file" }
func (t *ReadFileTool) Category() string { return "filesystem" }

func (t *ReadFileTool) Description() string {
	return "Read the contents of a file at the specified path."
}

func (t *ReadFileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "The path to the file to read",
			},
		},
		"required": []string{"path"},
	}
}

type readFileInput struct {
	Path string `json:"path"`
}

func (t *ReadFileTool) Execute(_ context.Context, in Input) Result {
	args, err := DecodeParams[readFileInput](in.Params)
	if err != nil {
		return Failf("read_file: %v", err)
	}

	path := resolvePath(args.Path, in.Context.WorkingDir)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Failf("file not found: %s", path)
		}
		if os.IsPermission(err) {
			return Failf("permission denied: %s", path)
		}
		return Failf("reading file: %v", err)
	}
	return Ok(string(content))
}

// WriteFileTool writes content to a file. Writes mutate external state,
// so invocations pass through the confirmation gate.
type WriteFileTool struct{}

func NewWriteFileTool() *WriteFileTool { return &WriteFileTool{} }

func (t *WriteFileTool) Name() string               { return "write_file" }
func (t *WriteFileTool) Category() string           { return "filesystem" }
func (t *WriteFileTool) RequiresConfirmation() bool { return true }

func (t *WriteFileTool) Description() string {
	return "Write content to a file at the specified path. Creates parent directories if needed."
}

func (t *WriteFileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "The path to the file to write",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "The content to write to the file",
			},
		},
		"required": []string{"path", "content"},
	}
}

type writeFileInput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (t *WriteFileTool) Execute(_ context.Context, in Input) Result {
	args, err := DecodeParams[writeFileInput](in.Params)
	if err != nil {
		return Failf("write_file: %v", err)
	}

	path := resolvePath(args.Path, in.Context.WorkingDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Failf("creating directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(args.Content), 0o644); err != nil {
		if os.IsPermission(err) {
			return Failf("permission denied: %s", path)
		}
		return Failf("writing file: %v", err)
	}
	return Okf("wrote %d bytes to %s", len(args.Content), path)
}

// ListDirTool lists the entries of a directory.
type ListDirTool struct{}

func NewListDirTool() *ListDirTool { return &ListDirTool{} }

func (t *ListDirTool) Name() string     { return "list_dir" }
func (t *ListDirTool) Category() string { return "filesystem" }

func (t *ListDirTool) Description() string {
	return "List the entries of a directory. Directories are suffixed with a trailing slash."
}

func (t *ListDirTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "The directory to list (defaults to the working directory)",
			},
		},
	}
}

func (t *ListDirTool) Execute(_ context.Context, in Input) Result {
	path := GetString(in.Params, "path", "")
	if path == "" {
		path = in.Context.WorkingDir
	}
	if path == "" {
		path = "."
	}
	path = resolvePath(path, in.Context.WorkingDir)

	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Failf("directory not found: %s", path)
		}
		return Failf("listing directory: %v", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return Okf("%s is empty", path)
	}
	return Ok(fmt.Sprintf("%s:\n%s", path, strings.Join(names, "\n")))
}

// resolvePath expands ~ and resolves relative paths against the
// execution's working directory.
func resolvePath(path, workingDir string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[1:])
	}
	if !filepath.IsAbs(path) && workingDir != "" {
		path = filepath.Join(workingDir, path)
	}
	return path
}
