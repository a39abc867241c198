package guardian

import (
	"context"
	"log/slog"
	"time"
)

// Runner fires scheduled guardian checks. It ticks once per minute and
// runs every enabled guardian whose cron trigger matches the tick.
type Runner struct {
	registry *Registry
	executor *Executor
	logger   *slog.Logger
}

// NewRunner creates a runner over the given registry and executor.
func NewRunner(registry *Registry, executor *Executor) *Runner {
	return &Runner{
		registry: registry,
		executor: executor,
		logger:   slog.Default().With("component", "guardian-runner"),
	}
}

// Run blocks until ctx is cancelled. Checks for one tick run
// sequentially; a slow check delays its siblings, not the next tick's
// evaluation time.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			r.runDue(ctx, now)
		}
	}
}

// RunAll fires every enabled guardian immediately, for manual triggers.
func (r *Runner) RunAll(ctx context.Context) []CheckResult {
	var out []CheckResult
	for _, def := range r.registry.Enabled() {
		out = append(out, r.executor.Check(ctx, def))
	}
	return out
}

// RunOne fires a single guardian by id, for manual triggers.
func (r *Runner) RunOne(ctx context.Context, id string) (CheckResult, bool) {
	def, ok := r.registry.Get(id)
	if !ok {
		return CheckResult{}, false
	}
	return r.executor.Check(ctx, def), true
}

func (r *Runner) runDue(ctx context.Context, now time.Time) {
	for _, def := range r.registry.Enabled() {
		for _, trig := range def.Triggers {
			if trig.Kind != TriggerSchedule || trig.Cron == "" {
				continue
			}
			sched, err := ParseSchedule(trig.Cron)
			if err != nil {
				r.logger.Warn("bad cron expression", "guardian", def.ID, "cron", trig.Cron, "error", err)
				continue
			}
			if sched.Matches(now) {
				r.executor.Check(ctx, def)
				break
			}
		}
	}
}
