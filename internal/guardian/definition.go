// Package guardian runs watch-and-react checks against a repository:
// definitions describe when to look and what to look for, and each
// violation becomes a work item for follow-up.
package guardian

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TriggerKind says what fires a guardian check.
type TriggerKind string

const (
	TriggerSchedule TriggerKind = "schedule"
	TriggerManual   TriggerKind = "manual"
	TriggerWebhook  TriggerKind = "webhook"
)

// Trigger is one firing condition. Cron is set for schedule triggers.
type Trigger struct {
	Kind TriggerKind `yaml:"kind"`
	Cron string      `yaml:"cron,omitempty"`
}

// Rule is one detection rule. Either Command runs and a non-zero exit
// or non-empty stdout is a violation, or Pattern globs files relative
// to the working directory and more than MaxMatches hits is a
// violation.
type Rule struct {
	Name       string `yaml:"name"`
	Command    string `yaml:"command,omitempty"`
	Pattern    string `yaml:"pattern,omitempty"`
	MaxMatches int    `yaml:"max_matches,omitempty"`
}

// Definition is one guardian, loaded from a markdown file whose front
// matter holds the metadata and whose body describes the follow-up
// workflow for violations.
type Definition struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Version     string    `yaml:"version"`
	Enabled     *bool     `yaml:"enabled"`
	Triggers    []Trigger `yaml:"triggers"`
	Rules       []Rule    `yaml:"rules"`

	// Workflow is the markdown body: instructions attached to work
	// items created for this guardian's violations.
	Workflow string `yaml:"-"`
	Source   string `yaml:"-"`
}

// IsEnabled defaults to true when the front matter omits enabled.
func (d *Definition) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// ParseDefinition parses one guardian markdown document.
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
	if def.Name == "" {
		def.Name = def.ID
	}
	def.Workflow = strings.TrimSpace(rest[end+4:])
	return &def, nil
}

// LoadDir reads guardian definitions from dir, skipping malformed
// files with a warning. A missing directory yields no definitions.
func LoadDir(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read guardians dir: %w", err)
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
			slog.Warn("guardian file unreadable", "path", path, "error", err)
			continue
		}
		def, err := ParseDefinition(data)
		if err != nil {
			slog.Warn("guardian file skipped", "path", path, "error", err)
			continue
		}
		def.Source = path
		defs = append(defs, def)
	}
	return defs, nil
}
