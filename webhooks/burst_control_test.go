package webhooks

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-messaging/core"
)

func delivery(providerID string, id string) core.InboundRequest {
	return core.InboundRequest{ProviderID: providerID, Metadata: map[string]any{"delivery_id": id}}
}

func TestBurstController_OnlyWatchedProviders(t *testing.T) {
	controller := NewBurstController(BurstOptions{Providers: []string{"LINE"}})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		decision, err := controller.Allow(ctx, delivery(core.ProviderTelegram, "1"))
		if err != nil || !decision.Allow {
			t.Fatalf("expected unwatched provider to pass, got %+v %v", decision, err)
		}
	}
	if decision, _ := controller.Allow(ctx, delivery(core.ProviderLINE, "evt")); !decision.Allow {
		t.Fatalf("expected first LINE delivery to pass")
	}
	decision, _ := controller.Allow(ctx, delivery(core.ProviderLINE, "evt"))
	if decision.Allow || decision.Metadata["burst_key"] != "line:evt" {
		t.Fatalf("expected LINE redelivery to be dropped, got %+v", decision)
	}
}

func TestBurstController_EvictsOldestOverCapacity(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	controller := NewBurstController(BurstOptions{MaxEntries: 2, Now: func() time.Time { return now }})
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if decision, _ := controller.Allow(ctx, delivery(core.ProviderViber, id)); !decision.Allow {
			t.Fatalf("expected %s to pass", id)
		}
	}
	if decision, _ := controller.Allow(ctx, delivery(core.ProviderViber, "a")); !decision.Allow {
		t.Fatalf("expected evicted id to pass again")
	}
	if decision, _ := controller.Allow(ctx, delivery(core.ProviderViber, "c")); decision.Allow {
		t.Fatalf("expected remembered id to be dropped")
	}
}

func TestBurstController_IgnoresRequestsWithoutKey(t *testing.T) {
	controller := NewBurstController(BurstOptions{})
	req := core.InboundRequest{ProviderID: core.ProviderWeChat}
	for i := 0; i < 2; i++ {
		if decision, _ := controller.Allow(context.Background(), req); !decision.Allow {
			t.Fatalf("expected request without delivery id to pass")
		}
	}
}
