// Package confirm provides the approval gate for tool invocations that
// require human sign-off before execution.
package confirm

import "context"

// Request describes a pending tool invocation awaiting approval.
type Request struct {
	Tool        string
	Description string
	ArgsSummary string
	UserID      string
	WorkflowID  string
}

// Gate decides whether a confirmation-required tool invocation may
// proceed. Returning false aborts the calling execution.
type Gate interface {
	Confirm(ctx context.Context, req Request) (bool, error)
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func(ctx context.Context, req Request) (bool, error)

func (f GateFunc) Confirm(ctx context.Context, req Request) (bool, error) {
	return f(ctx, req)
}

// ApproveAll is a gate that approves every request. Meant for tests and
// fully trusted non-interactive contexts.
func ApproveAll() Gate {
	return GateFunc(func(context.Context, Request) (bool, error) { return true, nil })
}
