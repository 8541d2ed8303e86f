package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-messaging/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

type stubStateStore struct {
	mu          sync.Mutex
	state       State
	getCalls    int
	upsertCalls int
	getErr      error
}

func (s *stubStateStore) Get(_ context.Context, _ core.RateLimitKey) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.getErr != nil {
		return State{}, s.getErr
	}
	return cloneState(s.state), nil
}

func (s *stubStateStore) Upsert(_ context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCalls++
	s.state = cloneState(state)
	return nil
}

func newTestCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}

func TestCachedStateStore_MissFetchThenHit(t *testing.T) {
	key := core.RateLimitKey{ProviderID: "line", BucketKey: "message/push"}
	base := &stubStateStore{state: State{Key: key, Limit: 2000, Remaining: 1999, Metadata: map[string]any{"source": "base"}}}
	store, err := NewCachedStateStore(base, newTestCacheService(t))
	if err != nil {
		t.Fatalf("new cached store: %v", err)
	}

	if _, err := store.Get(context.Background(), key); err != nil {
		t.Fatalf("first get: %v", err)
	}
	state, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if base.getCalls != 1 {
		t.Fatalf("expected second get to be a cache hit, base calls=%d", base.getCalls)
	}
	if state.Remaining != 1999 || state.Metadata["source"] != "base" {
		t.Fatalf("unexpected cached state %+v", state)
	}
}

func TestCachedStateStore_UpsertEvicts(t *testing.T) {
	key := core.RateLimitKey{ProviderID: "line", BucketKey: "message/push"}
	base := &stubStateStore{state: State{Key: key, Remaining: 10}}
	store, err := NewCachedStateStore(base, newTestCacheService(t))
	if err != nil {
		t.Fatalf("new cached store: %v", err)
	}
	if _, err := store.Get(context.Background(), key); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	if err := store.Upsert(context.Background(), State{Key: key, Remaining: 3}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	state, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get after upsert: %v", err)
	}
	if base.getCalls != 2 || state.Remaining != 3 {
		t.Fatalf("expected refetch after eviction, calls=%d remaining=%d", base.getCalls, state.Remaining)
	}
}

func TestCachedStateStore_PropagatesNotFound(t *testing.T) {
	base := &stubStateStore{getErr: ErrStateNotFound}
	store, err := NewCachedStateStore(base, newTestCacheService(t))
	if err != nil {
		t.Fatalf("new cached store: %v", err)
	}
	_, err = store.Get(context.Background(), core.RateLimitKey{ProviderID: "viber", BucketKey: "send_message"})
	if !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("expected not found propagation, got %v", err)
	}
	if _, err := StateCacheKey(core.RateLimitKey{ProviderID: "viber"}); err == nil {
		t.Fatalf("expected bucket key validation error")
	}
	if _, err := NewCachedStateStore(nil, nil); err == nil {
		t.Fatalf("expected constructor validation error")
	}
}
