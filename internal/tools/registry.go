package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrDuplicateTool is returned when registering a tool whose name is taken.
var ErrDuplicateTool = errors.New("duplicate tool")

// DefaultExecTimeout bounds a single tool execution unless overridden.
const DefaultExecTimeout = 120 * time.Second

// Registry manages tool registration and execution.
//
// Registration normally happens once at startup; the execution path only
// reads the table, so concurrent Execute calls from parallel executions
// are safe. Late registration/unregistration takes the write lock.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	order   []string
	timeout time.Duration
	docs    string
}

// NewRegistry creates an empty tool registry with the default execution timeout.
func NewRegistry() *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		timeout: DefaultExecTimeout,
	}
}

// SetExecTimeout overrides the per-tool execution timeout.
// Non-positive values restore the default.
func (r *Registry) SetExecTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultExecTimeout
	}
	r.mu.Lock()
	r.timeout = d
	r.mu.Unlock()
}

// Register adds a tool to the registry. Registering a second tool under
// an already-taken name fails with ErrDuplicateTool; the first
// registration stays active.
func (r *Registry) Register(tool Tool) error {
	name := tool.Name()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	r.docs = ""
	return nil
}

// Unregister removes a tool by name. Returns false if absent.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return false
	}
	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.docs = ""
	return true
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all registered tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// ByCategory returns tools in the given category, in registration order.
func (r *Registry) ByCategory(category string) []Tool {
	var out []Tool
	for _, t := range r.List() {
		if CategoryOf(t) == category {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns the sorted set of categories present in the registry.
func (r *Registry) Categories() []string {
	seen := map[string]bool{}
	for _, t := range r.List() {
		seen[CategoryOf(t)] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Execute resolves a tool by the envelope's name and runs it.
//
// Domain failures never surface as Go errors: an unknown tool, a
// validation failure, a handler failure, and a timeout all come back as
// a failure Result so the calling loop can recover by choosing a
// different action. Validation short-circuits before the handler runs.
func (r *Registry) Execute(ctx context.Context, in Input) Result {
	r.mu.RLock()
	tool, ok := r.tools[in.Tool]
	timeout := r.timeout
	r.mu.RUnlock()
	if !ok {
		return Failf("tool not found: %s", in.Tool)
	}

	if err := ValidateParams(tool.Parameters(), in.Params); err != nil {
		return Failf("invalid arguments for %s: %v", in.Tool, err)
	}

	bounded := true
	if ot, ok := tool.(ExecTimeouter); ok {
		timeout = ot.ExecTimeout()
		bounded = timeout > 0
	}

	execCtx := ctx
	if bounded {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan Result, 1)
	go func() {
		done <- tool.Execute(execCtx, in)
	}()

	select {
	case res := <-done:
		return res
	case <-execCtx.Done():
		if ctx.Err() != nil {
			return Failf("tool %s cancelled: %v", in.Tool, ctx.Err())
		}
		return Failf("tool %s timed out after %s", in.Tool, timeout)
	}
}

// Docs returns a markdown catalog of the registered tools. The rendered
// text is cached process-scoped and invalidated by registration changes
// or an explicit InvalidateDocs call.
func (r *Registry) Docs() string {
	r.mu.RLock()
	if r.docs != "" {
		cached := r.docs
		r.mu.RUnlock()
		return cached
	}
	r.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("# Available Tools\n")
	for _, t := range r.List() {
		fmt.Fprintf(&sb, "\n## %s\n%s\n", t.Name(), t.Description())
		if NeedsConfirmation(t) {
			sb.WriteString("Requires confirmation before execution.\n")
		}
	}
	rendered := sb.String()

	r.mu.Lock()
	r.docs = rendered
	r.mu.Unlock()
	return rendered
}

// InvalidateDocs drops the cached tool catalog; it is rebuilt lazily.
func (r *Registry) InvalidateDocs() {
	r.mu.Lock()
	r.docs = ""
	r.mu.Unlock()
}
