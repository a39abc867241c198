package confirm

import (
	"context"
	"log/slog"
)

// AutoGate is the non-interactive policy gate. It resolves confirmations
// from two configured tool-name lists: Allow always approves, Require
// escalates to the interactive manager (and denies when none is
// attached). Tools on neither list follow DefaultAllow.
type AutoGate struct {
	Allow        []string
	Require      []string
	DefaultAllow bool
	// Manager handles interactive escalation; may be nil.
	Manager *Manager
}

// NewAutoGate builds an auto-approve gate from allow/require tool lists.
func NewAutoGate(allow, require []string, defaultAllow bool) *AutoGate {
	return &AutoGate{Allow: allow, Require: require, DefaultAllow: defaultAllow}
}

// Confirm implements Gate.
func (g *AutoGate) Confirm(ctx context.Context, req Request) (bool, error) {
	if contains(g.Allow, req.Tool) {
		return true, nil
	}
	if contains(g.Require, req.Tool) || !g.DefaultAllow {
		if g.Manager != nil {
			return g.Manager.Confirm(ctx, req)
		}
		slog.Warn("Tool denied: confirmation required but no interactive gate attached", "tool", req.Tool)
		return false, nil
	}
	return true, nil
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}
