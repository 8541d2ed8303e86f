package telegram

import (
	"context"
	"strings"

	"github.com/goliatone/go-messaging/core"
)

func (c *Client) GetMe(ctx context.Context) (User, error) {
	var out User
	err := c.call(ctx, "getMe", nil, &out)
	return out, err
}

// GetUpdates long-polls for updates. It fails while a webhook is set.
func (c *Client) GetUpdates(ctx context.Context, opts Options) ([]Update, error) {
	var out []Update
	err := c.call(ctx, "getUpdates", params(opts, nil), &out)
	return out, err
}

// SetWebhook registers url. The configured secret token is sent unless
// opts sets its own secretToken.
func (c *Client) SetWebhook(ctx context.Context, url string, opts Options) (bool, error) {
	if strings.TrimSpace(url) == "" {
		return false, core.BadInput("providers/telegram: webhook url is required", nil)
	}
	payload := params(opts, map[string]any{"url": url})
	if _, ok := payload["secretToken"]; !ok && c.secretToken != "" {
		payload["secretToken"] = c.secretToken
	}
	var out bool
	err := c.call(ctx, "setWebhook", payload, &out)
	return out, err
}

func (c *Client) DeleteWebhook(ctx context.Context, opts Options) (bool, error) {
	var out bool
	err := c.call(ctx, "deleteWebhook", params(opts, nil), &out)
	return out, err
}

func (c *Client) GetWebhookInfo(ctx context.Context) (WebhookInfo, error) {
	var out WebhookInfo
	err := c.call(ctx, "getWebhookInfo", nil, &out)
	return out, err
}

func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand, opts Options) (bool, error) {
	if len(commands) == 0 {
		return false, core.BadInput("providers/telegram: at least one command is required", nil)
	}
	var out bool
	err := c.call(ctx, "setMyCommands", params(opts, map[string]any{"commands": commands}), &out)
	return out, err
}

func (c *Client) GetMyCommands(ctx context.Context, opts Options) ([]BotCommand, error) {
	var out []BotCommand
	err := c.call(ctx, "getMyCommands", params(opts, nil), &out)
	return out, err
}

func (c *Client) DeleteMyCommands(ctx context.Context, opts Options) (bool, error) {
	var out bool
	err := c.call(ctx, "deleteMyCommands", params(opts, nil), &out)
	return out, err
}
