package line

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-messaging/core"
)

type BotInfo struct {
	UserID         string `json:"userId"`
	BasicID        string `json:"basicId"`
	PremiumID      string `json:"premiumId,omitempty"`
	DisplayName    string `json:"displayName"`
	PictureURL     string `json:"pictureUrl,omitempty"`
	ChatMode       string `json:"chatMode"`
	MarkAsReadMode string `json:"markAsReadMode"`
}

// MessageQuota is the monthly limit; Type is "none" when unlimited.
type MessageQuota struct {
	Type  string `json:"type"`
	Value int64  `json:"value,omitempty"`
}

type WebhookEndpoint struct {
	Endpoint string `json:"endpoint"`
	Active   bool   `json:"active"`
}

type WebhookTestResult struct {
	Success    bool   `json:"success"`
	Timestamp  string `json:"timestamp"`
	StatusCode int    `json:"statusCode"`
	Reason     string `json:"reason"`
	Detail     string `json:"detail"`
}

func (c *Client) GetBotInfo(ctx context.Context) (BotInfo, error) {
	var out BotInfo
	_, err := c.do(ctx, core.Request{Operation: "get_bot_info", Method: http.MethodGet, Path: "/v2/bot/info"}, &out)
	return out, err
}

func (c *Client) IssueLinkToken(ctx context.Context, userID string) (string, error) {
	id, err := requireID("user id", userID)
	if err != nil {
		return "", err
	}
	var out struct {
		LinkToken string `json:"linkToken"`
	}
	_, err = c.do(ctx, core.Request{Operation: "issue_link_token", Method: http.MethodPost, Path: "/v2/bot/user/" + id + "/linkToken"}, &out)
	return out.LinkToken, err
}

func (c *Client) GetTargetLimitForAdditionalMessages(ctx context.Context) (MessageQuota, error) {
	var out MessageQuota
	_, err := c.do(ctx, core.Request{Operation: "get_message_quota", Method: http.MethodGet, Path: "/v2/bot/message/quota"}, &out)
	return out, err
}

func (c *Client) GetNumberOfMessagesSentThisMonth(ctx context.Context) (int64, error) {
	var out struct {
		TotalUsage int64 `json:"totalUsage"`
	}
	_, err := c.do(ctx, core.Request{Operation: "get_message_quota_consumption", Method: http.MethodGet, Path: "/v2/bot/message/quota/consumption"}, &out)
	return out.TotalUsage, err
}

func (c *Client) GetWebhookEndpoint(ctx context.Context) (WebhookEndpoint, error) {
	var out WebhookEndpoint
	_, err := c.do(ctx, core.Request{Operation: "get_webhook_endpoint", Method: http.MethodGet, Path: "/v2/bot/channel/webhook/endpoint"}, &out)
	return out, err
}

func (c *Client) SetWebhookEndpoint(ctx context.Context, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if !strings.HasPrefix(endpoint, "https://") {
		return core.BadInput("providers/line: webhook endpoint must be an https url", map[string]any{"endpoint": endpoint})
	}
	_, err := c.do(ctx, core.Request{
		Operation: "set_webhook_endpoint",
		Method:    http.MethodPut,
		Path:      "/v2/bot/channel/webhook/endpoint",
		Body:      map[string]string{"endpoint": endpoint},
	}, nil)
	return err
}

// TestWebhookEndpoint asks LINE to call endpoint, or the configured
// endpoint when it is empty.
func (c *Client) TestWebhookEndpoint(ctx context.Context, endpoint string) (WebhookTestResult, error) {
	body := map[string]string{}
	if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
		body["endpoint"] = endpoint
	}
	var out WebhookTestResult
	_, err := c.do(ctx, core.Request{
		Operation: "test_webhook_endpoint",
		Method:    http.MethodPost,
		Path:      "/v2/bot/channel/webhook/test",
		Body:      body,
	}, &out)
	return out, err
}
