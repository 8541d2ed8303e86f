package devkit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-messaging/core"
	"github.com/goliatone/go-messaging/webhooks"
)

func TestFakeTransportAdapter_ScriptsAndCapturesRequests(t *testing.T) {
	adapter := NewFakeTransportAdapter("json",
		TransportScript{Response: core.TransportResponse{StatusCode: 429}},
		TransportScript{Response: core.TransportResponse{StatusCode: 200}},
	)

	first, err := adapter.Do(context.Background(), core.TransportRequest{
		Method: "GET",
		URL:    "https://api.example.test/items",
	})
	if err != nil {
		t.Fatalf("first fake call: %v", err)
	}
	if first.StatusCode != 429 {
		t.Fatalf("expected first scripted status 429, got %d", first.StatusCode)
	}

	second, err := adapter.Do(context.Background(), core.TransportRequest{
		Method: "GET",
		URL:    "https://api.example.test/items",
	})
	if err != nil {
		t.Fatalf("second fake call: %v", err)
	}
	if second.StatusCode != 200 {
		t.Fatalf("expected second scripted status 200, got %d", second.StatusCode)
	}

	requests := adapter.Requests()
	if len(requests) != 2 {
		t.Fatalf("expected two captured requests, got %d", len(requests))
	}
}

func TestNewClient_UsesFakeTransportAsResolver(t *testing.T) {
	adapter := NewFakeTransportAdapter("json", TransportScript{
		Response: core.TransportResponse{StatusCode: 200, Body: []byte(`{"ok":true}`)},
	})
	client, err := NewClient(core.ClientConfig{
		ProviderID:  "line",
		Origin:      "https://api.example.test",
		TokenSource: core.StaticToken("token"),
	}, core.WithTransportResolver(adapter))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	var out map[string]any
	if err := client.Post(context.Background(), "/v2/bot/message/push", map[string]any{"to": "U1"}, &out); err != nil {
		t.Fatalf("post: %v", err)
	}
	requests := adapter.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected one request, got %d", len(requests))
	}
	if requests[0].Headers["Authorization"] != "Bearer token" {
		t.Fatalf("expected bearer token header, got %#v", requests[0].Headers)
	}
	if out["ok"] != true {
		t.Fatalf("expected decoded body, got %#v", out)
	}
}

func TestNewClient_DefaultRegistryAndPolicy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(core.ClientConfig{ProviderID: "viber", Origin: server.URL}, core.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	req := core.Request{Operation: "send_message", Path: "/send_message", Body: map[string]any{}}
	_, err = client.Do(context.Background(), req)
	apiErr, ok := core.AsAPIError(err)
	if !ok || apiErr.Status != http.StatusTooManyRequests {
		t.Fatalf("expected 429 api error, got %v", err)
	}
	_, err = client.Do(context.Background(), req)
	if err == nil {
		t.Fatalf("expected throttled bucket to reject the next call")
	}
	if _, ok := core.AsAPIError(err); ok {
		t.Fatalf("expected policy rejection before the transport, got api error %v", err)
	}
}

func TestValidateTransportAdapterConformance(t *testing.T) {
	adapter := NewFakeTransportAdapter("rest", TransportScript{
		Response: core.TransportResponse{StatusCode: 200},
	})
	if err := ValidateTransportAdapterConformance(context.Background(), adapter, core.TransportRequest{
		Method: "GET",
		URL:    "https://api.example.test/items",
	}); err != nil {
		t.Fatalf("validate transport adapter conformance: %v", err)
	}

	failing := NewFakeTransportAdapter("rest", TransportScript{Err: errors.New("dial failed")})
	if err := ValidateTransportAdapterConformance(context.Background(), failing, core.TransportRequest{}); err == nil {
		t.Fatalf("expected transport error to surface")
	}
}

func TestValidateWebhookTemplateConformance(t *testing.T) {
	template := webhooks.NewTelegramWebhookTemplate("secret")
	signed := core.InboundRequest{
		Headers: map[string]string{"X-Telegram-Bot-Api-Secret-Token": "secret"},
		Body:    []byte(`{"update_id":7}`),
	}
	tampered := core.InboundRequest{
		Headers: map[string]string{"X-Telegram-Bot-Api-Secret-Token": "other"},
		Body:    []byte(`{"update_id":7}`),
	}
	if err := ValidateWebhookTemplateConformance(context.Background(), template, signed, tampered); err != nil {
		t.Fatalf("validate webhook template: %v", err)
	}
	if err := ValidateWebhookTemplateConformance(context.Background(), template, tampered, signed); err == nil {
		t.Fatalf("expected swapped fixtures to fail conformance")
	}
}
