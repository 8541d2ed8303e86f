package wechat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messaging/auth"
	"github.com/goliatone/go-messaging/casing"
	"github.com/goliatone/go-messaging/core"
	"github.com/goliatone/go-messaging/providers/devkit"
)

type Config = core.WeChatConfig

type Client struct {
	api    *core.Client
	tokens *auth.TokenCache
	appID  string
	token  string
	now    func() time.Time
}

func New(cfg Config, opts ...core.ClientOption) (*Client, error) {
	appID := strings.TrimSpace(cfg.AppID)
	secret := strings.TrimSpace(cfg.AppSecret)
	if appID == "" || secret == "" {
		return nil, core.BadInput("providers/wechat: app id and app secret are required", nil)
	}
	settings := core.ResolveClientSettings(core.ProviderWeChat, opts...)
	client := &Client{
		appID: appID,
		token: strings.TrimSpace(cfg.Token),
		now:   settings.Now,
	}
	tokens, err := auth.NewTokenCache(auth.TokenCacheConfig{
		ProviderID: core.ProviderWeChat,
		ClientID:   appID,
		Fetch:      client.issueToken(secret),
		Now:        settings.Now,
	})
	if err != nil {
		return nil, core.WrapError(err, goerrors.CategoryInternal, "providers/wechat: token cache", nil)
	}
	api, err := devkit.NewClient(core.ClientConfig{
		ProviderID:   core.ProviderWeChat,
		Origin:       strings.TrimRight(firstNonEmpty(cfg.Origin, core.DefaultWeChatOrigin), "/"),
		RequestCase:  casing.Snake,
		ResponseCase: casing.Camel,
		TokenSource:  tokens,
		TokenQuery:   "access_token",
		ErrorDecoder: decodeError,
	}, opts...)
	if err != nil {
		return nil, err
	}
	client.api = api
	client.tokens = tokens
	return client, nil
}

func (c *Client) ProviderID() string {
	return core.ProviderWeChat
}

func (c *Client) API() *core.Client {
	return c.api
}

// issueToken runs the client_credential grant against /token.
func (c *Client) issueToken(secret string) auth.Fetcher {
	return func(ctx context.Context) (auth.Token, error) {
		res, err := c.api.Do(ctx, core.Request{
			Operation: "get_access_token",
			Method:    http.MethodGet,
			Path:      "/token",
			Query: map[string]string{
				"grant_type": "client_credential",
				"appid":      c.appID,
				"secret":     secret,
			},
			SkipAuth: true,
		})
		if err != nil {
			return auth.Token{}, err
		}
		var out struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int64  `json:"expires_in"`
		}
		if err := json.Unmarshal(res.Body, &out); err != nil {
			return auth.Token{}, core.WrapError(err, goerrors.CategoryExternal, "providers/wechat: decode token response", nil)
		}
		if out.AccessToken == "" {
			return auth.Token{}, core.WrapError(nil, goerrors.CategoryAuth, "providers/wechat: token endpoint returned no access_token", nil)
		}
		token := auth.Token{AccessToken: out.AccessToken}
		if out.ExpiresIn > 0 {
			token.ExpiresAt = c.now().Add(time.Duration(out.ExpiresIn) * time.Second)
		}
		return token, nil
	}
}

// GetAccessToken returns the cached access token, issuing one if needed.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	return c.tokens.Token(ctx)
}

// ClearAccessToken drops the cached token so the next call issues a new one.
func (c *Client) ClearAccessToken(ctx context.Context) error {
	return c.tokens.Invalidate(ctx)
}

// Error codes for an invalid, malformed or expired access token.
var tokenExpiredCodes = map[int]struct{}{40001: {}, 40014: {}, 42001: {}}

const rateLimitCode = 45009

func decodeError(status int, _ map[string]string, body []byte) (core.ProviderFailure, bool) {
	var payload struct {
		ErrCode *int   `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.ErrCode == nil {
		return core.ProviderFailure{}, status >= http.StatusBadRequest
	}
	if *payload.ErrCode == 0 && status < http.StatusBadRequest {
		return core.ProviderFailure{}, false
	}
	failure := core.ProviderFailure{
		Message: fmt.Sprintf("%d %s", *payload.ErrCode, payload.ErrMsg),
		Code:    strconv.Itoa(*payload.ErrCode),
	}
	if _, ok := tokenExpiredCodes[*payload.ErrCode]; ok {
		failure.TokenExpired = true
		failure.Category = goerrors.CategoryAuth
	}
	if *payload.ErrCode == rateLimitCode {
		failure.Category = goerrors.CategoryRateLimit
	}
	if failure.Category == "" {
		failure.Category = goerrors.CategoryOperation
	}
	return failure, true
}

func (c *Client) do(ctx context.Context, req core.Request, out any) error {
	return c.api.DoJSON(ctx, req, out)
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
