package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-messaging/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const stateCacheKeyPrefix = "go-messaging::ratelimit_state::v1"

// CachedStateStore puts a read-through cache in front of another StateStore.
// Writes go to the base store and evict the cached entry.
type CachedStateStore struct {
	base  StateStore
	cache repositorycache.CacheService
}

func NewCachedStateStore(base StateStore, cacheService repositorycache.CacheService) (*CachedStateStore, error) {
	if base == nil {
		return nil, fmt.Errorf("ratelimit: base state store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("ratelimit: cache service is required")
	}
	return &CachedStateStore{base: base, cache: cacheService}, nil
}

// StateCacheKey returns go-messaging::ratelimit_state::v1::<provider>::<bucket_key>
// with each segment path escaped after normalization.
func StateCacheKey(key core.RateLimitKey) (string, error) {
	normalized := normalizeKey(key)
	if normalized.ProviderID == "" {
		return "", fmt.Errorf("ratelimit: provider id is required")
	}
	if normalized.BucketKey == "" {
		return "", fmt.Errorf("ratelimit: bucket key is required")
	}
	return strings.Join([]string{
		stateCacheKeyPrefix,
		url.PathEscape(normalized.ProviderID),
		url.PathEscape(normalized.BucketKey),
	}, "::"), nil
}

func (s *CachedStateStore) Get(ctx context.Context, key core.RateLimitKey) (State, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return State{}, fmt.Errorf("ratelimit: cached state store is not configured")
	}
	normalized := normalizeKey(key)
	cacheKey, err := StateCacheKey(normalized)
	if err != nil {
		return State{}, err
	}
	state, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (State, error) {
		fetched, fetchErr := s.base.Get(ctx, normalized)
		if fetchErr != nil {
			return State{}, fetchErr
		}
		return cloneState(fetched), nil
	})
	if err != nil {
		return State{}, err
	}
	return cloneState(state), nil
}

func (s *CachedStateStore) Upsert(ctx context.Context, state State) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("ratelimit: cached state store is not configured")
	}
	state.Key = normalizeKey(state.Key)
	cacheKey, err := StateCacheKey(state.Key)
	if err != nil {
		return err
	}
	state.Metadata = cloneMap(state.Metadata)
	if err := s.base.Upsert(ctx, state); err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

func cloneState(state State) State {
	cloned := state
	cloned.Key = normalizeKey(state.Key)
	cloned.Metadata = cloneMap(state.Metadata)
	cloned.ResetAt = cloneTimePointer(state.ResetAt)
	cloned.ThrottledUntil = cloneTimePointer(state.ThrottledUntil)
	cloned.RetryAfter = cloneDurationPointer(state.RetryAfter)
	return cloned
}

func cloneTimePointer(input *time.Time) *time.Time {
	if input == nil {
		return nil
	}
	value := input.UTC()
	return &value
}

func cloneDurationPointer(input *time.Duration) *time.Duration {
	if input == nil {
		return nil
	}
	value := *input
	return &value
}

var _ StateStore = (*CachedStateStore)(nil)
