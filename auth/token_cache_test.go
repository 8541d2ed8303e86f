package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestTokenCacheKey(t *testing.T) {
	key, err := TokenCacheKey(" BotFramework ", "app/1")
	if err != nil {
		t.Fatalf("token cache key: %v", err)
	}
	if key != "go-messaging::token::v1::botframework::app%2F1" {
		t.Fatalf("unexpected cache key %q", key)
	}
	if _, err := TokenCacheKey("wechat", " "); err == nil {
		t.Fatalf("expected client id error")
	}
}

func TestTokenCache_ReusesUntilRenewWindow(t *testing.T) {
	now := time.Date(2026, 2, 13, 15, 0, 0, 0, time.UTC)
	calls := 0
	cache, err := NewTokenCache(TokenCacheConfig{
		ProviderID:  "wechat",
		ClientID:    "wx_app",
		RenewBefore: 2 * time.Minute,
		Now:         func() time.Time { return now },
		Fetch: func(context.Context) (Token, error) {
			calls++
			return Token{AccessToken: fmt.Sprintf("token_%d", calls), ExpiresAt: now.Add(time.Hour)}, nil
		},
	})
	if err != nil {
		t.Fatalf("new token cache: %v", err)
	}

	first, err := cache.Token(context.Background())
	if err != nil {
		t.Fatalf("first token: %v", err)
	}
	second, err := cache.Token(context.Background())
	if err != nil {
		t.Fatalf("second token: %v", err)
	}
	if first != second || calls != 1 {
		t.Fatalf("expected cached token reuse, got %q/%q after %d fetches", first, second, calls)
	}

	now = now.Add(59 * time.Minute)
	third, err := cache.Token(context.Background())
	if err != nil {
		t.Fatalf("third token: %v", err)
	}
	if third == second {
		t.Fatalf("expected token renewal near expiry")
	}
}

func TestTokenCache_InvalidateForcesFetch(t *testing.T) {
	calls := 0
	cache, err := NewTokenCache(TokenCacheConfig{
		ProviderID: "botframework",
		ClientID:   "app",
		Fetch: func(context.Context) (Token, error) {
			calls++
			return Token{AccessToken: fmt.Sprintf("token_%d", calls)}, nil
		},
	})
	if err != nil {
		t.Fatalf("new token cache: %v", err)
	}
	first, _ := cache.Token(context.Background())
	if err := cache.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	second, _ := cache.Token(context.Background())
	if first == second {
		t.Fatalf("expected a fresh token after invalidation")
	}
}

func TestTokenCache_PropagatesFetchErrors(t *testing.T) {
	sentinel := errors.New("token endpoint down")
	cache, err := NewTokenCache(TokenCacheConfig{
		ProviderID: "wechat",
		ClientID:   "wx_app",
		Fetch: func(context.Context) (Token, error) {
			return Token{}, sentinel
		},
	})
	if err != nil {
		t.Fatalf("new token cache: %v", err)
	}
	if _, err := cache.Token(context.Background()); !errors.Is(err, sentinel) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if _, err := NewTokenCache(TokenCacheConfig{ProviderID: "wechat", ClientID: "x"}); err == nil || !strings.Contains(err.Error(), "fetcher") {
		t.Fatalf("expected missing fetcher error, got %v", err)
	}
}

func TestAppSecretProof(t *testing.T) {
	// Reference value: HMAC-SHA256("access-token") keyed by "app-secret".
	proof := AppSecretProof("access-token", "app-secret")
	if len(proof) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(proof))
	}
	if proof != AppSecretProof("access-token", "app-secret") {
		t.Fatalf("expected deterministic proof")
	}
	if proof == AppSecretProof("access-token", "other-secret") {
		t.Fatalf("expected proof to depend on the secret")
	}
}
