package guardian

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// Registry holds the loaded guardian definitions behind an atomically
// swapped snapshot, the same shape the agent catalog uses.
type Registry struct {
	mu   sync.RWMutex
	snap map[string]*Definition
	dir  string
}

// NewRegistry creates a registry loading definitions from dir.
func NewRegistry(dir string) *Registry {
	return &Registry{snap: make(map[string]*Definition), dir: dir}
}

// Get returns the definition for id.
func (r *Registry) Get(id string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.snap[id]
	return def, ok
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

// Enabled returns the active definitions.
func (r *Registry) Enabled() []*Definition {
	var out []*Definition
	for _, def := range r.All() {
		if def.IsEnabled() {
			out = append(out, def)
		}
	}
	return out
}

// Reload re-reads the directory and swaps in a complete new snapshot.
func (r *Registry) Reload() error {
	defs, err := LoadDir(r.dir)
	if err != nil {
		return err
	}
	next := make(map[string]*Definition, len(defs))
	for _, def := range defs {
		if _, taken := next[def.ID]; taken {
			slog.Warn("duplicate guardian id, first wins", "id", def.ID, "path", def.Source)
			continue
		}
		next[def.ID] = def
	}
	r.mu.Lock()
	r.snap = next
	r.mu.Unlock()
	return nil
}

// Watch reloads on directory changes until ctx is cancelled.
func (r *Registry) Watch(ctx context.Context) error {
	if r.dir == "" {
		return fmt.Errorf("no guardians directory configured")
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
			slog.Warn("guardians watcher error", "error", err)
		case <-timerC:
			timer = nil
			timerC = nil
			if err := r.Reload(); err != nil {
				slog.Warn("guardians reload failed", "error", err)
			}
		}
	}
}
