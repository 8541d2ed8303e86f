package messenger

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-messaging/core"
)

type threadControlRequest struct {
	Recipient   Recipient `json:"recipient"`
	TargetAppID string    `json:"targetAppId,omitempty"`
	Metadata    string    `json:"metadata,omitempty"`
}

type ThreadOwner struct {
	AppID string `json:"appId"`
}

// PassThreadControl hands the conversation with psid to another app.
func (c *Client) PassThreadControl(ctx context.Context, psid string, targetAppID string, metadata string) error {
	if strings.TrimSpace(targetAppID) == "" {
		return core.BadInput("providers/messenger: target app id is required", nil)
	}
	return c.threadControl(ctx, "pass_thread_control", psid, targetAppID, metadata)
}

func (c *Client) PassThreadControlToPageInbox(ctx context.Context, psid string, metadata string) error {
	return c.PassThreadControl(ctx, psid, PageInboxAppID, metadata)
}

func (c *Client) TakeThreadControl(ctx context.Context, psid string, metadata string) error {
	return c.threadControl(ctx, "take_thread_control", psid, "", metadata)
}

func (c *Client) RequestThreadControl(ctx context.Context, psid string, metadata string) error {
	return c.threadControl(ctx, "request_thread_control", psid, "", metadata)
}

func (c *Client) GetThreadOwner(ctx context.Context, psid string) (ThreadOwner, error) {
	if strings.TrimSpace(psid) == "" {
		return ThreadOwner{}, core.BadInput("providers/messenger: recipient is required", nil)
	}
	var out struct {
		Data []struct {
			ThreadOwner ThreadOwner `json:"threadOwner"`
		} `json:"data"`
	}
	if err := c.do(ctx, core.Request{
		Operation: "get_thread_owner",
		Method:    http.MethodGet,
		Path:      "/me/thread_owner",
		Query:     map[string]string{"recipient": strings.TrimSpace(psid)},
	}, &out); err != nil {
		return ThreadOwner{}, err
	}
	if len(out.Data) == 0 {
		return ThreadOwner{}, nil
	}
	return out.Data[0].ThreadOwner, nil
}

func (c *Client) threadControl(ctx context.Context, operation string, psid string, targetAppID string, metadata string) error {
	if strings.TrimSpace(psid) == "" {
		return core.BadInput("providers/messenger: recipient is required", nil)
	}
	return c.do(ctx, core.Request{
		Operation: operation,
		Method:    http.MethodPost,
		Path:      "/me/" + operation,
		Body: threadControlRequest{
			Recipient:   PSID(strings.TrimSpace(psid)),
			TargetAppID: strings.TrimSpace(targetAppID),
			Metadata:    metadata,
		},
	}, nil)
}
