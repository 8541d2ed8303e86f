package line

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messaging/core"
	"github.com/goliatone/go-messaging/providers/devkit"
	"github.com/google/uuid"
)

type Config = core.LINEConfig

const (
	maxMulticastRecipients = 500
	maxMessagesPerRequest  = 5
)

// Client calls the LINE Messaging API. The wire format is camelCase, so no
// key transform is configured.
type Client struct {
	api           *core.Client
	dataOrigin    string
	channelSecret string
	now           func() time.Time
}

func New(cfg Config, opts ...core.ClientOption) (*Client, error) {
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, core.BadInput("providers/line: access token is required", nil)
	}
	api, err := devkit.NewClient(core.ClientConfig{
		ProviderID:   core.ProviderLINE,
		Origin:       firstNonEmpty(cfg.Origin, core.DefaultLINEOrigin),
		TokenSource:  core.StaticToken(token),
		ErrorDecoder: decodeError,
	}, opts...)
	if err != nil {
		return nil, err
	}
	settings := core.ResolveClientSettings(core.ProviderLINE, opts...)
	return &Client{
		api:           api,
		dataOrigin:    strings.TrimRight(firstNonEmpty(cfg.DataOrigin, core.DefaultLINEDataOrigin), "/"),
		channelSecret: strings.TrimSpace(cfg.ChannelSecret),
		now:           settings.Now,
	}, nil
}

func (c *Client) ProviderID() string {
	return core.ProviderLINE
}

// API exposes the underlying client for endpoints without a typed method.
func (c *Client) API() *core.Client {
	return c.api
}

type errorDetail struct {
	Message  string `json:"message"`
	Property string `json:"property"`
}

type errorBody struct {
	Message string        `json:"message"`
	Details []errorDetail `json:"details"`
}

func decodeError(status int, headers map[string]string, body []byte) (core.ProviderFailure, bool) {
	if status < http.StatusBadRequest {
		return core.ProviderFailure{}, false
	}
	failure := core.ProviderFailure{}
	var payload errorBody
	if err := json.Unmarshal(body, &payload); err == nil {
		failure.Message = payload.Message
		if len(payload.Details) > 0 {
			details := make([]map[string]any, 0, len(payload.Details))
			parts := make([]string, 0, len(payload.Details))
			for _, detail := range payload.Details {
				details = append(details, map[string]any{"message": detail.Message, "property": detail.Property})
				parts = append(parts, strings.TrimSpace(detail.Property+": "+detail.Message))
			}
			failure.Details = map[string]any{"details": details}
			if failure.Message != "" {
				failure.Message += " (" + strings.Join(parts, "; ") + ")"
			}
		}
	}
	if requestID := headerValue(headers, "X-Line-Request-Id"); requestID != "" {
		if failure.Details == nil {
			failure.Details = map[string]any{}
		}
		failure.Details["request_id"] = requestID
	}
	if status == http.StatusTooManyRequests {
		failure.Category = goerrors.CategoryRateLimit
	}
	return failure, true
}

func requireID(name string, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", core.BadInput(fmt.Sprintf("providers/line: %s is required", name), map[string]any{"field": name})
	}
	return url.PathEscape(value), nil
}

func validateMessages(messages []Message) error {
	if len(messages) == 0 {
		return core.BadInput("providers/line: at least one message is required", nil)
	}
	if len(messages) > maxMessagesPerRequest {
		return core.BadInput(
			fmt.Sprintf("providers/line: %d messages exceeds the limit of %d per request", len(messages), maxMessagesPerRequest),
			map[string]any{"count": len(messages)},
		)
	}
	return nil
}

// NewRetryKey returns a value for the X-Line-Retry-Key header.
func NewRetryKey() string {
	return uuid.NewString()
}

func (c *Client) do(ctx context.Context, req core.Request, out any) (*core.Response, error) {
	res, err := c.api.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if out != nil {
		if err := res.Decode(out); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func headerValue(headers map[string]string, key string) string {
	for existing, value := range headers {
		if strings.EqualFold(existing, key) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

var (
	_ core.TextSender    = (*Client)(nil)
	_ core.ProfileReader = (*Client)(nil)
)
