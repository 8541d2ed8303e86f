package command

import (
	"context"
	"sort"
	"strings"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-messaging/core"
)

// SenderResolver finds the text sender registered for a provider.
type SenderResolver interface {
	Sender(providerID string) (core.TextSender, bool)
}

// Senders is a SenderResolver keyed by provider id.
type Senders map[string]core.TextSender

func (s Senders) Sender(providerID string) (core.TextSender, bool) {
	sender, ok := s[strings.ToLower(strings.TrimSpace(providerID))]
	return sender, ok && sender != nil
}

// ProviderIDs lists the registered providers in sorted order.
func (s Senders) ProviderIDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// NewSenders indexes senders by their ProviderID.
func NewSenders(senders ...core.TextSender) Senders {
	out := make(Senders, len(senders))
	for _, sender := range senders {
		if sender == nil {
			continue
		}
		out[strings.ToLower(sender.ProviderID())] = sender
	}
	return out
}

type SendTextCommand struct {
	senders SenderResolver
}

func NewSendTextCommand(senders SenderResolver) *SendTextCommand {
	return &SendTextCommand{senders: senders}
}

func (c *SendTextCommand) Execute(ctx context.Context, msg SendTextMessage) error {
	if c == nil || c.senders == nil {
		return commandDependencyError("command: sender registry is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	sender, ok := c.senders.Sender(msg.ProviderID)
	if !ok {
		return commandNotFoundError("command: no sender registered for provider", map[string]any{
			"provider_id": msg.ProviderID,
		})
	}
	receipt, err := sender.SendPlainText(ctx, strings.TrimSpace(msg.To), msg.Text)
	if err != nil {
		return core.MapError(err)
	}
	storeResult(ctx, receipt)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
