package confirm

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Recorder persists approval lifecycle events. May be nil; persistence
// is best-effort and never blocks a decision.
type Recorder interface {
	InsertApproval(id, tool, argsSummary, userID string) error
	UpdateApprovalStatus(id, status string) error
}

// Notifier pushes approval prompts and resolutions to a human channel.
type Notifier interface {
	ApprovalRequested(id string, req Request)
	ApprovalResolved(id string, approved bool)
}

// DefaultWaitTimeout bounds how long a confirmation blocks the loop.
const DefaultWaitTimeout = 60 * time.Second

// Manager handles the interactive approval lifecycle: create, wait,
// respond. A decision arrives out-of-band (CLI or API) via Respond.
type Manager struct {
	mu       sync.Mutex
	pending  map[string]chan bool
	recorder Recorder
	notifier Notifier
	timeout  time.Duration
}

// NewManager creates an approval manager. Recorder and notifier may be nil.
func NewManager(recorder Recorder, notifier Notifier, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	return &Manager{
		pending:  make(map[string]chan bool),
		recorder: recorder,
		notifier: notifier,
		timeout:  timeout,
	}
}

// Confirm implements Gate: it registers the request, notifies, and
// blocks until a decision or the wait timeout. Timeout denies; a
// cancelled caller context is surfaced as an error, not a denial.
func (m *Manager) Confirm(ctx context.Context, req Request) (bool, error) {
	id := m.Create(req)
	waitCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	approved, err := m.Wait(waitCtx, id)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, nil
	}
	return approved, nil
}

// Create registers a new approval request and returns its ID.
func (m *Manager) Create(req Request) string {
	id := newApprovalID()
	ch := make(chan bool, 1)
	m.mu.Lock()
	m.pending[id] = ch
	m.mu.Unlock()

	if m.recorder != nil {
		_ = m.recorder.InsertApproval(id, req.Tool, req.ArgsSummary, req.UserID)
	}
	if m.notifier != nil {
		m.notifier.ApprovalRequested(id, req)
	}
	return id
}

// Wait blocks until the approval is responded to or the context expires.
func (m *Manager) Wait(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	ch, ok := m.pending[id]
	m.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("no pending approval: %s", id)
	}

	select {
	case approved := <-ch:
		m.cleanup(id)
		status := "denied"
		if approved {
			status = "approved"
		}
		if m.recorder != nil {
			_ = m.recorder.UpdateApprovalStatus(id, status)
		}
		if m.notifier != nil {
			m.notifier.ApprovalResolved(id, approved)
		}
		return approved, nil
	case <-ctx.Done():
		m.cleanup(id)
		status := "timeout"
		if errors.Is(ctx.Err(), context.Canceled) {
			status = "cancelled"
		}
		if m.recorder != nil {
			_ = m.recorder.UpdateApprovalStatus(id, status)
		}
		return false, ctx.Err()
	}
}

// Respond delivers an approval decision for a pending request.
func (m *Manager) Respond(id string, approved bool) error {
	m.mu.Lock()
	ch, ok := m.pending[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("no pending approval: %s", id)
	}

	// Non-blocking send (channel is buffered with size 1)
	select {
	case ch <- approved:
	default:
	}
	return nil
}

// Pending returns the IDs of unresolved approvals.
func (m *Manager) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.pending))
	for id := range m.pending {
		ids = append(ids, id)
	}
	return ids
}

func (m *Manager) cleanup(id string) {
	m.mu.Lock()
	delete(m.pending, id)
	m.mu.Unlock()
}

func newApprovalID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		return hex.EncodeToString(b[:])
	}
	return fmt.Sprintf("appr-%d", time.Now().UnixNano())
}
