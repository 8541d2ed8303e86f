package messenger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messaging/auth"
	"github.com/goliatone/go-messaging/casing"
	"github.com/goliatone/go-messaging/core"
	"github.com/goliatone/go-messaging/providers/devkit"
)

type Config = core.MessengerConfig

// Client calls the Messenger Platform on the Graph API. Request keys are
// rewritten to snake_case and responses back to camelCase.
type Client struct {
	api         *core.Client
	appSecret   string
	verifyToken string
	now         func() time.Time
}

func New(cfg Config, opts ...core.ClientOption) (*Client, error) {
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, core.BadInput("providers/messenger: access token is required", nil)
	}
	version := firstNonEmpty(cfg.Version, core.DefaultMessengerVersion)
	origin := strings.TrimRight(firstNonEmpty(cfg.Origin, core.DefaultMessengerOrigin), "/") + "/" + version
	secret := strings.TrimSpace(cfg.AppSecret)

	clientCfg := core.ClientConfig{
		ProviderID:   core.ProviderMessenger,
		Origin:       origin,
		RequestCase:  casing.Snake,
		ResponseCase: casing.Camel,
		TokenSource:  core.StaticToken(token),
		TokenQuery:   "access_token",
		ErrorDecoder: decodeError,
	}
	if secret != "" && !cfg.SkipAppSecretProof {
		clientCfg.Decorate = func(_ context.Context, req *core.TransportRequest) error {
			if accessToken := req.Query["access_token"]; accessToken != "" {
				req.Query["appsecret_proof"] = auth.AppSecretProof(accessToken, secret)
			}
			return nil
		}
	}
	api, err := devkit.NewClient(clientCfg, opts...)
	if err != nil {
		return nil, err
	}
	settings := core.ResolveClientSettings(core.ProviderMessenger, opts...)
	return &Client{
		api:         api,
		appSecret:   secret,
		verifyToken: strings.TrimSpace(cfg.VerifyToken),
		now:         settings.Now,
	}, nil
}

func (c *Client) ProviderID() string {
	return core.ProviderMessenger
}

func (c *Client) API() *core.Client {
	return c.api
}

type graphError struct {
	Error *struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FBTraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

// Graph API throttling codes: application, user, page and call-rate limits.
var rateLimitCodes = map[int]struct{}{4: {}, 17: {}, 32: {}, 613: {}}

func decodeError(status int, _ map[string]string, body []byte) (core.ProviderFailure, bool) {
	var payload graphError
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == nil {
		if status >= http.StatusBadRequest {
			return core.ProviderFailure{}, true
		}
		return core.ProviderFailure{}, false
	}
	failure := core.ProviderFailure{
		Message: payload.Error.Message,
		Code:    strconv.Itoa(payload.Error.Code),
		Details: map[string]any{
			"type":       payload.Error.Type,
			"fbtrace_id": payload.Error.FBTraceID,
		},
	}
	if payload.Error.ErrorSubcode != 0 {
		failure.Subcode = strconv.Itoa(payload.Error.ErrorSubcode)
	}
	if _, ok := rateLimitCodes[payload.Error.Code]; ok {
		failure.Category = goerrors.CategoryRateLimit
	}
	return failure, true
}

func (c *Client) do(ctx context.Context, req core.Request, out any) error {
	return c.api.DoJSON(ctx, req, out)
}

func requireID(name string, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", core.BadInput(fmt.Sprintf("providers/messenger: %s is required", name), map[string]any{"field": name})
	}
	return url.PathEscape(value), nil
}

// normalizeFields accepts camelCase or snake_case field names and returns
// the comma joined snake_case list the Graph API expects.
func normalizeFields(fields []string) string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		out = append(out, casing.Key(field, casing.Snake))
	}
	return strings.Join(out, ",")
}

// mergeStruct copies the JSON fields of value into dst.
func mergeStruct(dst map[string]any, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return core.BadInput("providers/messenger: encode payload: "+err.Error(), nil)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return core.BadInput("providers/messenger: encode payload: "+err.Error(), nil)
	}
	for key, item := range fields {
		dst[key] = item
	}
	return nil
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
