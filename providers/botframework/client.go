package botframework

import (
	"context"
	"encoding/json"
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

type Config = core.BotFrameworkConfig

// DefaultServiceURL is used when a call carries no serviceUrl.
const DefaultServiceURL = "https://smba.trafficmanager.net/teams"

type Client struct {
	api    *core.Client
	tokens *auth.TokenCache
	appID  string
	now    func() time.Time
}

func New(cfg Config, opts ...core.ClientOption) (*Client, error) {
	appID := strings.TrimSpace(cfg.AppID)
	password := strings.TrimSpace(cfg.AppPassword)
	if appID == "" || password == "" {
		return nil, core.BadInput("providers/botframework: app id and app password are required", nil)
	}
	tokenURL := firstNonEmpty(cfg.TokenURL, core.DefaultBotFrameworkToken)
	tokenAPI, err := devkit.NewClient(core.ClientConfig{
		ProviderID: core.ProviderBotFramework,
		Origin:     tokenURL,
	}, opts...)
	if err != nil {
		return nil, err
	}
	settings := core.ResolveClientSettings(core.ProviderBotFramework, opts...)
	fetch, err := auth.ClientCredentialsFetcher(tokenAPI, auth.ClientCredentialsConfig{
		TokenURL:     tokenURL,
		ClientID:     appID,
		ClientSecret: password,
		Scopes:       []string{firstNonEmpty(cfg.Scope, core.DefaultBotFrameworkScope)},
		Now:          settings.Now,
	})
	if err != nil {
		return nil, core.WrapError(err, goerrors.CategoryBadInput, "providers/botframework: token fetcher", nil)
	}
	tokens, err := auth.NewTokenCache(auth.TokenCacheConfig{
		ProviderID: core.ProviderBotFramework,
		ClientID:   appID,
		Fetch:      fetch,
		Now:        settings.Now,
	})
	if err != nil {
		return nil, core.WrapError(err, goerrors.CategoryInternal, "providers/botframework: token cache", nil)
	}
	api, err := devkit.NewClient(core.ClientConfig{
		ProviderID:   core.ProviderBotFramework,
		Origin:       DefaultServiceURL,
		RequestCase:  casing.None,
		ResponseCase: casing.None,
		TokenSource:  tokens,
		ErrorDecoder: decodeError,
	}, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{api: api, tokens: tokens, appID: appID, now: settings.Now}, nil
}

func (c *Client) ProviderID() string {
	return core.ProviderBotFramework
}

func (c *Client) API() *core.Client {
	return c.api
}

func (c *Client) AppID() string {
	return c.appID
}

func decodeError(status int, headers map[string]string, body []byte) (core.ProviderFailure, bool) {
	if status < http.StatusBadRequest {
		return core.ProviderFailure{}, false
	}
	failure := core.ProviderFailure{}
	var payload struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != nil {
		failure.Code = payload.Error.Code
		failure.Message = payload.Error.Message
	}
	if status == http.StatusUnauthorized {
		failure.TokenExpired = true
	}
	if status == http.StatusTooManyRequests {
		failure.Category = goerrors.CategoryRateLimit
		for key, value := range headers {
			if strings.EqualFold(key, "Retry-After") {
				if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && seconds > 0 {
					failure.RetryAfter = time.Duration(seconds) * time.Second
				}
			}
		}
	}
	return failure, true
}

func (c *Client) do(ctx context.Context, req core.Request, out any) error {
	return c.api.DoJSON(ctx, req, out)
}

// conversationPath returns /v3/conversations/<id> with id escaped.
func conversationPath(conversationID string, rest ...string) (string, error) {
	if strings.TrimSpace(conversationID) == "" {
		return "", core.BadInput("providers/botframework: conversation id is required", map[string]any{"field": "conversation_id"})
	}
	parts := []string{"/v3/conversations", escapeSegment(conversationID)}
	for _, part := range rest {
		parts = append(parts, escapeSegment(part))
	}
	return strings.Join(parts, "/"), nil
}

// escapeSegment escapes like encodeURIComponent. Channel conversation ids
// such as "a:conv;1" must keep the colon escaped.
func escapeSegment(segment string) string {
	return strings.ReplaceAll(url.PathEscape(segment), ":", "%3A")
}

func requireServiceURL(serviceURL string) (string, error) {
	serviceURL = strings.TrimRight(strings.TrimSpace(serviceURL), "/")
	if serviceURL == "" {
		return "", core.BadInput("providers/botframework: service url is required", map[string]any{"field": "service_url"})
	}
	parsed, err := url.Parse(serviceURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", core.BadInput("providers/botframework: service url is invalid", map[string]any{"field": "service_url"})
	}
	return serviceURL, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

var _ core.TextSender = (*Client)(nil)
