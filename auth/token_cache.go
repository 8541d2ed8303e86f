package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-messaging/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const tokenCacheKeyPrefix = "go-messaging::token::v1"

// Token is an issued access token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

func (t Token) expiresBefore(deadline time.Time) bool {
	return !t.ExpiresAt.IsZero() && !t.ExpiresAt.After(deadline)
}

// Fetcher issues a fresh token from the provider.
type Fetcher func(ctx context.Context) (Token, error)

type TokenCacheConfig struct {
	ProviderID  string
	ClientID    string
	Fetch       Fetcher
	Cache       repositorycache.CacheService
	RenewBefore time.Duration
	Now         func() time.Time
}

// TokenCache is a core.TokenSource that reuses an issued token until it is
// about to expire or the provider rejects it.
type TokenCache struct {
	key         string
	fetch       Fetcher
	cache       repositorycache.CacheService
	renewBefore time.Duration
	now         func() time.Time
}

func NewTokenCache(cfg TokenCacheConfig) (*TokenCache, error) {
	if cfg.Fetch == nil {
		return nil, fmt.Errorf("auth: token fetcher is required")
	}
	key, err := TokenCacheKey(cfg.ProviderID, cfg.ClientID)
	if err != nil {
		return nil, err
	}
	cacheService := cfg.Cache
	if cacheService == nil {
		cacheService, err = NewCacheService(time.Hour)
		if err != nil {
			return nil, err
		}
	}
	renewBefore := cfg.RenewBefore
	if renewBefore <= 0 {
		renewBefore = 2 * time.Minute
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &TokenCache{
		key:         key,
		fetch:       cfg.Fetch,
		cache:       cacheService,
		renewBefore: renewBefore,
		now:         now,
	}, nil
}

// NewCacheService builds an in-process cache with the given TTL.
func NewCacheService(ttl time.Duration) (repositorycache.CacheService, error) {
	config := repositorycache.DefaultConfig()
	if ttl > 0 {
		config.TTL = ttl
	}
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		return nil, fmt.Errorf("auth: new cache service: %w", err)
	}
	return service, nil
}

// TokenCacheKey returns go-messaging::token::v1::<provider>::<client_id> with
// each segment path escaped.
func TokenCacheKey(providerID string, clientID string) (string, error) {
	providerID = strings.TrimSpace(strings.ToLower(providerID))
	clientID = strings.TrimSpace(clientID)
	if providerID == "" {
		return "", fmt.Errorf("auth: token cache provider id is required")
	}
	if clientID == "" {
		return "", fmt.Errorf("auth: token cache client id is required")
	}
	return strings.Join([]string{
		tokenCacheKeyPrefix,
		url.PathEscape(providerID),
		url.PathEscape(clientID),
	}, "::"), nil
}

func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if c == nil {
		return "", fmt.Errorf("auth: token cache is nil")
	}
	token, err := c.load(ctx)
	if err != nil {
		return "", err
	}
	if token.expiresBefore(c.now().Add(c.renewBefore)) {
		if err := c.Invalidate(ctx); err != nil {
			return "", err
		}
		token, err = c.load(ctx)
		if err != nil {
			return "", err
		}
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return "", fmt.Errorf("auth: provider returned an empty access token")
	}
	return token.AccessToken, nil
}

func (c *TokenCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.cache.Delete(ctx, c.key)
}

func (c *TokenCache) load(ctx context.Context) (Token, error) {
	return repositorycache.GetOrFetch(ctx, c.cache, c.key, func(ctx context.Context) (Token, error) {
		return c.fetch(ctx)
	})
}

var _ core.TokenSource = (*TokenCache)(nil)
