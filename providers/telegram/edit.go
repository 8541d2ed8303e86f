package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messaging/core"
)

// MessageTarget addresses the message to edit: either ChatID plus
// MessageID, or InlineMessageID.
type MessageTarget struct {
	ChatID          string
	MessageID       int64
	InlineMessageID string
}

func (t MessageTarget) params() (map[string]any, error) {
	if id := strings.TrimSpace(t.InlineMessageID); id != "" {
		return map[string]any{"inlineMessageId": id}, nil
	}
	if strings.TrimSpace(t.ChatID) == "" || t.MessageID == 0 {
		return nil, core.BadInput("providers/telegram: chat id and message id or an inline message id are required", nil)
	}
	return map[string]any{"chatId": t.ChatID, "messageId": t.MessageID}, nil
}

// EditMessageText returns the edited message, or nil for inline messages.
func (c *Client) EditMessageText(ctx context.Context, target MessageTarget, text string, opts Options) (*Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, core.BadInput("providers/telegram: text is required", nil)
	}
	return c.edit(ctx, "editMessageText", target, opts, map[string]any{"text": text})
}

func (c *Client) EditMessageCaption(ctx context.Context, target MessageTarget, caption string, opts Options) (*Message, error) {
	return c.edit(ctx, "editMessageCaption", target, opts, map[string]any{"caption": caption})
}

func (c *Client) EditMessageReplyMarkup(ctx context.Context, target MessageTarget, markup any, opts Options) (*Message, error) {
	return c.edit(ctx, "editMessageReplyMarkup", target, opts, map[string]any{"replyMarkup": markup})
}

func (c *Client) edit(ctx context.Context, method string, target MessageTarget, opts Options, fields map[string]any) (*Message, error) {
	required, err := target.params()
	if err != nil {
		return nil, err
	}
	for key, value := range fields {
		required[key] = value
	}
	var raw json.RawMessage
	if err := c.call(ctx, method, params(opts, required), &raw); err != nil {
		return nil, err
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("true")) {
		return nil, nil
	}
	var out Message
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, core.WrapError(err, goerrors.CategoryExternal, "providers/telegram: decode result", map[string]any{"method": method})
	}
	return &out, nil
}

func (c *Client) StopPoll(ctx context.Context, chatID string, messageID int64, opts Options) (Poll, error) {
	if err := requireChat(chatID); err != nil {
		return Poll{}, err
	}
	var out Poll
	err := c.call(ctx, "stopPoll", params(opts, map[string]any{"chatId": chatID, "messageId": messageID}), &out)
	return out, err
}

func (c *Client) DeleteMessage(ctx context.Context, chatID string, messageID int64) (bool, error) {
	if err := requireChat(chatID); err != nil {
		return false, err
	}
	var out bool
	err := c.call(ctx, "deleteMessage", map[string]any{"chatId": chatID, "messageId": messageID}, &out)
	return out, err
}
