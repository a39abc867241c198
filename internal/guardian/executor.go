package guardian

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Outcome is the four-state result of one guardian check.
type Outcome string

const (
	OutcomeClean      Outcome = "clean"
	OutcomeViolations Outcome = "violations_found"
	OutcomeFailed     Outcome = "failed"
	OutcomeSkipped    Outcome = "skipped"
)

// Violation is one rule hit.
type Violation struct {
	Rule   string
	Detail string
}

// CheckResult is one complete guardian run.
type CheckResult struct {
	GuardianID string
	Outcome    Outcome
	Violations []Violation
	Err        error
	Duration   time.Duration
}

// ItemCreator turns violations into persisted work items.
type ItemCreator interface {
	InsertGuardianItem(guardianID, outcome, detail string) (int64, error)
}

// Notifier announces findings. May be nil.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

const ruleCommandTimeout = 60 * time.Second

// Executor runs guardian checks and records the fallout.
type Executor struct {
	workDir string
	items   ItemCreator
	notify  Notifier
	logger  *slog.Logger
}

// NewExecutor creates an executor rooted at workDir. items and notify
// may be nil; findings are then only logged.
func NewExecutor(workDir string, items ItemCreator, notify Notifier) *Executor {
	return &Executor{
		workDir: workDir,
		items:   items,
		notify:  notify,
		logger:  slog.Default().With("component", "guardian"),
	}
}

// Check runs all of a guardian's rules. A disabled guardian is
// Skipped; a rule that cannot run at all makes the whole check Failed;
// otherwise the outcome reflects whether any rule found violations.
func (e *Executor) Check(ctx context.Context, def *Definition) CheckResult {
	start := time.Now()
	res := CheckResult{GuardianID: def.ID, Outcome: OutcomeClean}

	if !def.IsEnabled() {
		res.Outcome = OutcomeSkipped
		res.Duration = time.Since(start)
		return res
	}
	if len(def.Rules) == 0 {
		res.Outcome = OutcomeSkipped
		res.Duration = time.Since(start)
		return res
	}

	for _, rule := range def.Rules {
		violations, err := e.runRule(ctx, rule)
		if err != nil {
			res.Outcome = OutcomeFailed
			res.Err = fmt.Errorf("rule %s: %w", rule.Name, err)
			res.Duration = time.Since(start)
			e.record(ctx, def, res)
			return res
		}
		res.Violations = append(res.Violations, violations...)
	}

	if len(res.Violations) > 0 {
		res.Outcome = OutcomeViolations
	}
	res.Duration = time.Since(start)
	e.record(ctx, def, res)
	return res
}

func (e *Executor) runRule(ctx context.Context, rule Rule) ([]Violation, error) {
	switch {
	case rule.Command != "":
		return e.runCommandRule(ctx, rule)
	case rule.Pattern != "":
		return e.runPatternRule(rule)
	default:
		return nil, fmt.Errorf("rule declares neither command nor pattern")
	}
}

// runCommandRule executes the rule's shell command. Non-zero exit or
// non-empty stdout both count as a violation; the command is the
// detector, its output the evidence.
func (e *Executor) runCommandRule(ctx context.Context, rule Rule) ([]Violation, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, ruleCommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "sh", "-c", rule.Command)
	cmd.Dir = e.workDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if cmdCtx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("command timed out after %s", ruleCommandTimeout)
	}

	out := strings.TrimSpace(stdout.String())
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("command failed to start: %w", err)
		}
		detail := out
		if detail == "" {
			detail = strings.TrimSpace(stderr.String())
		}
		return []Violation{{Rule: rule.Name, Detail: fmt.Sprintf("exit %d: %s", exitErr.ExitCode(), detail)}}, nil
	}
	if out != "" {
		return []Violation{{Rule: rule.Name, Detail: out}}, nil
	}
	return nil, nil
}

// runPatternRule globs for files; more than MaxMatches hits is a
// violation. MaxMatches zero means any match violates.
func (e *Executor) runPatternRule(rule Rule) ([]Violation, error) {
	matches, err := filepath.Glob(filepath.Join(e.workDir, rule.Pattern))
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", rule.Pattern, err)
	}
	if len(matches) <= rule.MaxMatches {
		return nil, nil
	}
	sample := matches
	if len(sample) > 5 {
		sample = sample[:5]
	}
	return []Violation{{
		Rule:   rule.Name,
		Detail: fmt.Sprintf("%d matches for %s (limit %d), e.g. %s", len(matches), rule.Pattern, rule.MaxMatches, strings.Join(sample, ", ")),
	}}, nil
}

// record persists violations as work items and announces the finding.
func (e *Executor) record(ctx context.Context, def *Definition, res CheckResult) {
	e.logger.Info("guardian check finished",
		"guardian", def.ID, "outcome", res.Outcome, "violations", len(res.Violations))

	if res.Outcome == OutcomeClean || res.Outcome == OutcomeSkipped {
		return
	}

	if e.items != nil {
		for _, v := range res.Violations {
			detail := fmt.Sprintf("[%s] %s", v.Rule, v.Detail)
			if def.Workflow != "" {
				detail += "\n\n" + def.Workflow
			}
			if _, err := e.items.InsertGuardianItem(def.ID, string(res.Outcome), detail); err != nil {
				e.logger.Warn("work item insert failed", "guardian", def.ID, "error", err)
			}
		}
		if res.Outcome == OutcomeFailed {
			if _, err := e.items.InsertGuardianItem(def.ID, string(res.Outcome), res.Err.Error()); err != nil {
				e.logger.Warn("work item insert failed", "guardian", def.ID, "error", err)
			}
		}
	}

	if e.notify != nil {
		text := fmt.Sprintf("Guardian %s: %s (%d violations)", def.Name, res.Outcome, len(res.Violations))
		if err := e.notify.Send(ctx, text); err != nil {
			e.logger.Warn("guardian notification failed", "guardian", def.ID, "error", err)
		}
	}
}
