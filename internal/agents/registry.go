package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrDuplicateAgent is returned when a static registration reuses an ID.
var ErrDuplicateAgent = errors.New("agent already registered")

// ErrAgentNotFound is returned when a lookup misses.
var ErrAgentNotFound = errors.New("agent not found")

// ChangeKind classifies one entry in a reload diff.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeUpdated ChangeKind = "updated"
	ChangeRemoved ChangeKind = "removed"
)

// Change describes one agent definition that differed across a reload.
type Change struct {
	Kind ChangeKind
	ID   string
}

// watchDebounce coalesces bursts of filesystem events into one reload.
const watchDebounce = 250 * time.Millisecond

// Registry holds the live set of agent definitions. Static agents are
// registered once at startup and always win ID conflicts with
// file-loaded agents. Reload builds a complete new snapshot and swaps
// it atomically, so readers never observe a partial catalog.
type Registry struct {
	mu     sync.RWMutex
	static map[string]*Definition
	snap   map[string]*Definition

	dir string

	subMu sync.Mutex
	subs  []chan []Change
}

// NewRegistry creates a registry loading markdown agents from dir.
// dir may be empty when only static agents are used.
func NewRegistry(dir string) *Registry {
	return &Registry{
		static: make(map[string]*Definition),
		snap:   make(map[string]*Definition),
		dir:    dir,
	}
}

// Register adds a static agent definition. Duplicate IDs are rejected;
// the caller owns fixing the conflict, not the registry.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.ID == "" {
		return fmt.Errorf("agent definition requires an id")
	}
	def.normalize()
	if def.Source == "" {
		def.Source = "static"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.static[def.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAgent, def.ID)
	}
	r.static[def.ID] = def
	r.snap = r.buildLocked(r.fileDefsLocked())
	return nil
}

// Get returns the definition for id.
func (r *Registry) Get(id string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.snap[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	return def, nil
}

// All returns every definition sorted by ID.
func (r *Registry) All() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, 0, len(r.snap))
	for _, def := range r.snap {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByCapability returns agents advertising cap, ordered by priority
// ascending with ID as the tie-break. Deterministic so repeated
// delegation picks the same agent.
func (r *Registry) ByCapability(cap string) []*Definition {
	var out []*Definition
	for _, def := range r.All() {
		if def.HasCapability(cap) {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].EffectivePriority(), out[j].EffectivePriority()
		if pi != pj {
			return pi < pj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Reload re-reads the agents directory, swaps in a fresh snapshot, and
// notifies subscribers of the diff. File definitions whose ID collides
// with a static agent are dropped with a warning.
func (r *Registry) Reload() ([]Change, error) {
	var fileDefs []*Definition
	if r.dir != "" {
		loaded, err := LoadDir(r.dir)
		if err != nil {
			return nil, err
		}
		fileDefs = loaded
	}

	r.mu.Lock()
	old := r.snap
	next := r.buildLocked(fileDefs)
	r.snap = next
	r.mu.Unlock()

	changes := diff(old, next)
	if len(changes) > 0 {
		r.notify(changes)
	}
	return changes, nil
}

// Subscribe returns a channel delivering reload diffs. The channel is
// buffered; a slow consumer drops diffs instead of blocking reloads.
func (r *Registry) Subscribe() <-chan []Change {
	ch := make(chan []Change, 8)
	r.subMu.Lock()
	r.subs = append(r.subs, ch)
	r.subMu.Unlock()
	return ch
}

// Watch reloads the registry whenever the agents directory changes,
// until ctx is cancelled. Events are debounced so editors that write
// in multiple syscalls trigger a single reload.
func (r *Registry) Watch(ctx context.Context) error {
	if r.dir == "" {
		return fmt.Errorf("no agents directory configured")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(r.dir); err != nil {
		return fmt.Errorf("watch %s: %w", r.dir, err)
	}

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("agents watcher error", "error", err)
		case <-timerC:
			timer = nil
			timerC = nil
			if _, err := r.Reload(); err != nil {
				slog.Warn("agents reload failed", "error", err)
			}
		}
	}
}

// buildLocked merges static and file definitions into one catalog.
// Caller holds r.mu.
func (r *Registry) buildLocked(fileDefs []*Definition) map[string]*Definition {
	next := make(map[string]*Definition, len(r.static)+len(fileDefs))
	for id, def := range r.static {
		next[id] = def
	}
	for _, def := range fileDefs {
		if _, taken := next[def.ID]; taken {
			if _, isStatic := r.static[def.ID]; isStatic {
				slog.Warn("agent file shadows static agent, skipped",
					"id", def.ID, "path", def.Source)
			} else {
				slog.Warn("duplicate agent id across files, first wins",
					"id", def.ID, "path", def.Source)
			}
			continue
		}
		next[def.ID] = def
	}
	return next
}

// fileDefsLocked extracts current file-sourced definitions. Caller
// holds r.mu.
func (r *Registry) fileDefsLocked() []*Definition {
	var out []*Definition
	for _, def := range r.snap {
		if def.Source != "static" {
			out = append(out, def)
		}
	}
	return out
}

func (r *Registry) notify(changes []Change) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- changes:
		default:
		}
	}
}

func diff(old, next map[string]*Definition) []Change {
	var changes []Change
	for id, def := range next {
		prev, existed := old[id]
		switch {
		case !existed:
			changes = append(changes, Change{Kind: ChangeAdded, ID: id})
		case !equalDefs(prev, def):
			changes = append(changes, Change{Kind: ChangeUpdated, ID: id})
		}
	}
	for id := range old {
		if _, still := next[id]; !still {
			changes = append(changes, Change{Kind: ChangeRemoved, ID: id})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].ID < changes[j].ID })
	return changes
}

func equalDefs(a, b *Definition) bool {
	if a.Name != b.Name || a.Description != b.Description ||
		a.Model != b.Model || a.SystemPrompt != b.SystemPrompt ||
		a.EffectiveTemperature() != b.EffectiveTemperature() ||
		a.EffectivePriority() != b.EffectivePriority() {
		return false
	}
	if len(a.Capabilities) != len(b.Capabilities) {
		return false
	}
	for i := range a.Capabilities {
		if a.Capabilities[i] != b.Capabilities[i] {
			return false
		}
	}
	return true
}
