package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"

	"github.com/aura-code/aura/internal/confirm"
)

// SlackNotifier posts notifications to a Slack channel.
type SlackNotifier struct {
	client  *slack.Client
	channel string
	logger  *slog.Logger
}

// NewSlackNotifier creates a notifier for the given bot token and channel.
func NewSlackNotifier(token, channel string) *SlackNotifier {
	return &SlackNotifier{
		client:  slack.New(token),
		channel: channel,
		logger:  slog.Default().With("component", "notify"),
	}
}

// Send posts a plain text message.
func (n *SlackNotifier) Send(ctx context.Context, text string) error {
	_, _, err := n.client.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	return nil
}

// ApprovalRequested notifies that a tool call awaits a decision.
func (n *SlackNotifier) ApprovalRequested(id string, req confirm.Request) {
	text := fmt.Sprintf(":lock: Approval needed [%s]\nTool: `%s`\nArgs: %s\nRespond with `aura approve %s` or `aura deny %s`",
		id, req.Tool, req.ArgsSummary, id, id)
	if err := n.Send(context.Background(), text); err != nil {
		n.logger.Warn("approval notification failed", "id", id, "error", err)
	}
}

// ApprovalResolved notifies that a pending approval was decided.
func (n *SlackNotifier) ApprovalResolved(id string, approved bool) {
	verdict := "denied"
	if approved {
		verdict = "approved"
	}
	if err := n.Send(context.Background(), fmt.Sprintf("Approval %s %s", id, verdict)); err != nil {
		n.logger.Warn("approval resolution notification failed", "id", id, "error", err)
	}
}
