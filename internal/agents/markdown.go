package agents

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseDefinition parses a single agent markdown document: a YAML
// front matter block delimited by --- lines, followed by the system
// prompt body.
func ParseDefinition(content []byte) (*Definition, error) {
	text := string(content)
	if !strings.HasPrefix(text, "---") {
		return nil, fmt.Errorf("missing front matter")
	}
	rest := text[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, fmt.Errorf("unterminated front matter")
	}

	var def Definition
	if err := yaml.Unmarshal([]byte(rest[:end]), &def); err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}
	if def.ID == "" {
		return nil, fmt.Errorf("front matter has no id")
	}

	body := rest[end+4:]
	if idx := strings.Index(body, "\n"); idx >= 0 && strings.TrimSpace(body[:idx]) == "" {
		body = body[idx+1:]
	}
	def.SystemPrompt = strings.TrimSpace(body)
	def.normalize()
	return &def, nil
}

// LoadDir reads every .md file in dir and returns the definitions that
// parse cleanly, sorted by file name. Malformed files are logged and
// skipped so one bad file never blocks a reload. A missing directory
// yields no definitions.
func LoadDir(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read agents dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var defs []*Definition
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("agent file unreadable", "path", path, "error", err)
			continue
		}
		def, err := ParseDefinition(data)
		if err != nil {
			slog.Warn("agent file skipped", "path", path, "error", err)
			continue
		}
		def.Source = path
		defs = append(defs, def)
	}
	return defs, nil
}
