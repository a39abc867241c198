// Package notify pushes human-facing notifications to a chat channel.
package notify

import "context"

// Notifier delivers short text notifications. Delivery is best-effort;
// callers never block a run on a notification.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) Send(context.Context, string) error { return nil }
