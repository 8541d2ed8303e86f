package auth

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
)

type ClientCredentialsConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Now          func() time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ClientCredentialsFetcher returns a Fetcher that runs the OAuth2 client
// credentials grant through client, posting a form to cfg.TokenURL.
func ClientCredentialsFetcher(client *core.Client, cfg ClientCredentialsConfig) (Fetcher, error) {
	if client == nil {
		return nil, fmt.Errorf("auth: client credentials require an http client")
	}
	tokenURL := strings.TrimSpace(cfg.TokenURL)
	clientID := strings.TrimSpace(cfg.ClientID)
	clientSecret := strings.TrimSpace(cfg.ClientSecret)
	switch {
	case tokenURL == "":
		return nil, fmt.Errorf("auth: client credentials token_url is required")
	case clientID == "":
		return nil, fmt.Errorf("auth: client credentials client_id is required")
	case clientSecret == "":
		return nil, fmt.Errorf("auth: client credentials client_secret is required")
	}
	scopes := normalizeValues(cfg.Scopes)
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return func(ctx context.Context) (Token, error) {
		values := url.Values{}
		values.Set("grant_type", "client_credentials")
		values.Set("client_id", clientID)
		values.Set("client_secret", clientSecret)
		if len(scopes) > 0 {
			values.Set("scope", strings.Join(scopes, " "))
		}
		res, err := client.Do(ctx, core.Request{
			Operation: "issue_token",
			Method:    http.MethodPost,
			Path:      tokenURL,
			Values:    values,
			SkipAuth:  true,
		})
		if err != nil {
			return Token{}, err
		}
		// Token endpoints answer in snake_case whatever the client's case.
		var out tokenResponse
		if err := json.Unmarshal(res.Body, &out); err != nil {
			return Token{}, core.WrapError(err, goerrors.CategoryExternal, "auth: decode token response", nil)
		}
		return tokenFromResponse(out, now())
	}, nil
}

func tokenFromResponse(out tokenResponse, issuedAt time.Time) (Token, error) {
	if strings.TrimSpace(out.AccessToken) == "" {
		return Token{}, core.WrapError(nil, goerrors.CategoryAuth, "auth: token endpoint returned no access_token", nil)
	}
	token := Token{
		AccessToken: out.AccessToken,
		TokenType:   firstNonEmpty(out.TokenType, "Bearer"),
	}
	if out.ExpiresIn > 0 {
		token.ExpiresAt = issuedAt.Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return token, nil
}
