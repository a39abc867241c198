package guardian

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type memItems struct {
	entries []string
}

func (m *memItems) InsertGuardianItem(guardianID, outcome, detail string) (int64, error) {
	m.entries = append(m.entries, guardianID+"|"+outcome+"|"+detail)
	return int64(len(m.entries)), nil
}

func boolPtr(b bool) *bool { return &b }

func TestCheckDisabledIsSkipped(t *testing.T) {
	exec := NewExecutor(t.TempDir(), nil, nil)
	res := exec.Check(context.Background(), &Definition{
		ID:      "off",
		Enabled: boolPtr(false),
		Rules:   []Rule{{Name: "r", Command: "true"}},
	})
	if res.Outcome != OutcomeSkipped {
		t.Fatalf("outcome = %s", res.Outcome)
	}
}

func TestCheckNoRulesIsSkipped(t *testing.T) {
	exec := NewExecutor(t.TempDir(), nil, nil)
	res := exec.Check(context.Background(), &Definition{ID: "empty"})
	if res.Outcome != OutcomeSkipped {
		t.Fatalf("outcome = %s", res.Outcome)
	}
}

func TestCheckCommandClean(t *testing.T) {
	exec := NewExecutor(t.TempDir(), nil, nil)
	res := exec.Check(context.Background(), &Definition{
		ID:    "quiet",
		Rules: []Rule{{Name: "silence", Command: "true"}},
	})
	if res.Outcome != OutcomeClean {
		t.Fatalf("outcome = %s, err = %v", res.Outcome, res.Err)
	}
}

func TestCheckCommandOutputIsViolation(t *testing.T) {
	items := &memItems{}
	exec := NewExecutor(t.TempDir(), items, nil)
	res := exec.Check(context.Background(), &Definition{
		ID:    "noisy",
		Rules: []Rule{{Name: "finds-stuff", Command: "echo leftover debug print"}},
	})
	if res.Outcome != OutcomeViolations {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if len(res.Violations) != 1 || !strings.Contains(res.Violations[0].Detail, "leftover debug print") {
		t.Fatalf("violations = %+v", res.Violations)
	}
	if len(items.entries) != 1 {
		t.Fatalf("work items = %d, want 1", len(items.entries))
	}
}

func TestCheckCommandExitCodeIsViolation(t *testing.T) {
	exec := NewExecutor(t.TempDir(), nil, nil)
	res := exec.Check(context.Background(), &Definition{
		ID:    "failing",
		Rules: []Rule{{Name: "exit-two", Command: "exit 2"}},
	})
	if res.Outcome != OutcomeViolations {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if !strings.Contains(res.Violations[0].Detail, "exit 2") {
		t.Fatalf("detail = %q", res.Violations[0].Detail)
	}
}

func TestCheckPatternRule(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.tmp", "b.tmp", "keep.go"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	exec := NewExecutor(dir, nil, nil)

	res := exec.Check(context.Background(), &Definition{
		ID:    "tmp-files",
		Rules: []Rule{{Name: "no-tmp", Pattern: "*.tmp"}},
	})
	if res.Outcome != OutcomeViolations {
		t.Fatalf("outcome = %s", res.Outcome)
	}

	// Under the limit is clean.
	res = exec.Check(context.Background(), &Definition{
		ID:    "tmp-files",
		Rules: []Rule{{Name: "some-tmp", Pattern: "*.tmp", MaxMatches: 5}},
	})
	if res.Outcome != OutcomeClean {
		t.Fatalf("outcome = %s", res.Outcome)
	}
}

func TestCheckBadRuleFails(t *testing.T) {
	items := &memItems{}
	exec := NewExecutor(t.TempDir(), items, nil)
	res := exec.Check(context.Background(), &Definition{
		ID:    "broken",
		Rules: []Rule{{Name: "neither"}},
	})
	if res.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if res.Err == nil {
		t.Fatal("failed check should carry an error")
	}
	if len(items.entries) != 1 {
		t.Fatalf("work items = %d, want the failure recorded", len(items.entries))
	}
}

func TestCheckWorkflowAttachedToItems(t *testing.T) {
	items := &memItems{}
	exec := NewExecutor(t.TempDir(), items, nil)
	exec.Check(context.Background(), &Definition{
		ID:       "wf",
		Workflow: "Open a ticket and assign to the build team.",
		Rules:    []Rule{{Name: "always", Command: "echo violation"}},
	})
	if len(items.entries) != 1 || !strings.Contains(items.entries[0], "build team") {
		t.Fatalf("items = %v, want workflow attached", items.entries)
	}
}

func TestParseGuardianDefinition(t *testing.T) {
	doc := `---
id: stale-branches
name: Stale Branches
triggers:
  - kind: schedule
    cron: "0 6 * * *"
  - kind: manual
rules:
  - name: old-tmp
    pattern: "*.tmp"
    max_matches: 3
---

Delete branches older than 30 days.
`
	def, err := ParseDefinition([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if def.ID != "stale-branches" {
		t.Fatalf("id = %q", def.ID)
	}
	if len(def.Triggers) != 2 || def.Triggers[0].Cron != "0 6 * * *" {
		t.Fatalf("triggers = %+v", def.Triggers)
	}
	if def.Rules[0].MaxMatches != 3 {
		t.Fatalf("rules = %+v", def.Rules)
	}
	if !strings.Contains(def.Workflow, "30 days") {
		t.Fatalf("workflow = %q", def.Workflow)
	}
	if !def.IsEnabled() {
		t.Fatal("enabled should default to true")
	}
}

func TestLoadDirSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	good := "---\nid: ok\n---\nbody\n"
	if err := os.WriteFile(filepath.Join(dir, "good.md"), []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.md"), []byte("not a guardian"), 0o644); err != nil {
		t.Fatal(err)
	}

	defs, err := LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 1 || defs[0].ID != "ok" {
		t.Fatalf("defs = %+v", defs)
	}
}

func TestRegistryReloadAndGet(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "g.md"), []byte("---\nid: g1\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	reg := NewRegistry(dir)
	if err := reg.Reload(); err != nil {
		t.Fatal(err)
	}
	if _, ok := reg.Get("g1"); !ok {
		t.Fatal("g1 not loaded")
	}
	if len(reg.Enabled()) != 1 {
		t.Fatalf("enabled = %d", len(reg.Enabled()))
	}
}
