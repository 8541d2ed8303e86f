package webhooks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-messaging/core"
)

type BurstDecision struct {
	Allow    bool
	Metadata map[string]any
}

// BurstController drops repeated deliveries of the same event. LINE, Telegram
// and Messenger all resend an event with the same id when the first
// acknowledgement is slow or fails.
type BurstController interface {
	Allow(ctx context.Context, req core.InboundRequest) (BurstDecision, error)
}

type BurstKeyExtractor func(req core.InboundRequest) (string, bool)

type BurstOptions struct {
	// Window is how long a delivery id is remembered. Defaults to 2 minutes.
	Window time.Duration
	// MaxEntries caps the remembered ids; the oldest are evicted first.
	MaxEntries int
	// Providers limits suppression to these provider ids. Empty means all.
	Providers  []string
	ExtractKey BurstKeyExtractor
	Now        func() time.Time
}

type seenDelivery struct {
	firstSeen  time.Time
	lastSeen   time.Time
	duplicates int
}

type DefaultBurstController struct {
	window     time.Duration
	maxEntries int
	providers  map[string]struct{}
	extractKey BurstKeyExtractor
	now        func() time.Time

	mu    sync.Mutex
	seen  map[string]*seenDelivery
	order []string
}

func NewBurstController(opts BurstOptions) *DefaultBurstController {
	window := opts.Window
	if window <= 0 {
		window = 2 * time.Minute
	}
	maxEntries := opts.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	extractKey := opts.ExtractKey
	if extractKey == nil {
		extractKey = DefaultBurstKeyExtractor
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	var providers map[string]struct{}
	for _, providerID := range opts.Providers {
		if providerID = normalizeProviderID(providerID); providerID != "" {
			if providers == nil {
				providers = map[string]struct{}{}
			}
			providers[providerID] = struct{}{}
		}
	}
	return &DefaultBurstController{
		window:     window,
		maxEntries: maxEntries,
		providers:  providers,
		extractKey: extractKey,
		now:        now,
		seen:       map[string]*seenDelivery{},
	}
}

func (c *DefaultBurstController) Allow(_ context.Context, req core.InboundRequest) (BurstDecision, error) {
	if c == nil {
		return BurstDecision{Allow: true}, nil
	}
	if c.providers != nil {
		if _, ok := c.providers[normalizeProviderID(req.ProviderID)]; !ok {
			return BurstDecision{Allow: true}, nil
		}
	}
	key, ok := c.extractKey(req)
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return BurstDecision{Allow: true}, nil
	}

	now := c.now().UTC()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expire(now)

	entry, exists := c.seen[key]
	if !exists {
		c.seen[key] = &seenDelivery{firstSeen: now, lastSeen: now}
		c.order = append(c.order, key)
		c.evict()
		return BurstDecision{Allow: true}, nil
	}
	entry.lastSeen = now
	entry.duplicates++
	return BurstDecision{Allow: false, Metadata: map[string]any{
		"burst_key":       key,
		"burst_window_ms": c.window.Milliseconds(),
		"first_seen_at":   entry.firstSeen,
		"duplicates":      entry.duplicates,
	}}, nil
}

// expire drops ids first seen more than one window ago. order is sorted by
// first sighting, so the scan stops at the first live entry.
func (c *DefaultBurstController) expire(now time.Time) {
	drop := 0
	for _, key := range c.order {
		entry, ok := c.seen[key]
		if ok && now.Sub(entry.firstSeen) < c.window {
			break
		}
		delete(c.seen, key)
		drop++
	}
	c.order = c.order[drop:]
}

func (c *DefaultBurstController) evict() {
	for len(c.order) > c.maxEntries {
		delete(c.seen, c.order[0])
		c.order = c.order[1:]
	}
}

// DefaultBurstKeyExtractor keys on provider plus burst_key or the delivery
// id resolved by the dispatcher.
func DefaultBurstKeyExtractor(req core.InboundRequest) (string, bool) {
	providerID := normalizeProviderID(req.ProviderID)
	if providerID == "" || req.Metadata == nil {
		return "", false
	}
	for _, key := range []string{"burst_key", "delivery_id"} {
		value, ok := req.Metadata[key]
		if !ok || value == nil {
			continue
		}
		if text := strings.TrimSpace(fmt.Sprint(value)); text != "" {
			return providerID + ":" + text, true
		}
	}
	return "", false
}

var _ BurstController = (*DefaultBurstController)(nil)
