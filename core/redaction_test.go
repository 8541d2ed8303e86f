package core

import (
	"strings"
	"testing"
)

func TestRedactSensitiveMapPreservesTraceabilityMetadata(t *testing.T) {
	redacted := RedactSensitiveMap(map[string]any{
		"trace_id":      "trace_1",
		"reply_token":   "rt_1",
		"access_token":  "secret-token",
		"authorization": "Bearer secret-token",
		"nested":        map[string]any{"app_secret": "shh", "trace_id": "trace_nested"},
		"events":        []any{map[string]any{"api_key": "key_1"}, map[string]any{"external_id": "ext_1"}},
	})

	if redacted["trace_id"] != "trace_1" {
		t.Fatalf("expected trace_id to remain visible, got %#v", redacted["trace_id"])
	}
	if redacted["reply_token"] != "rt_1" {
		t.Fatalf("expected reply_token to remain visible, got %#v", redacted["reply_token"])
	}
	if redacted["access_token"] != RedactedValue {
		t.Fatalf("expected access_token to be redacted, got %#v", redacted["access_token"])
	}
	nested, ok := redacted["nested"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested redacted map")
	}
	if nested["app_secret"] != RedactedValue {
		t.Fatalf("expected nested app_secret to be redacted, got %#v", nested["app_secret"])
	}
	events := redacted["events"].([]any)
	if events[0].(map[string]any)["api_key"] != RedactedValue {
		t.Fatalf("expected api_key inside slices to be redacted")
	}
}

func TestRedactHeaders(t *testing.T) {
	out := RedactHeaders(map[string]string{
		"Authorization":      "Bearer abc",
		"X-Viber-Auth-Token": "viber",
		"Content-Type":       "application/json",
	})
	if out["Authorization"] != RedactedValue || out["X-Viber-Auth-Token"] != RedactedValue {
		t.Fatalf("expected credential headers to be redacted, got %#v", out)
	}
	if out["Content-Type"] != "application/json" {
		t.Fatalf("expected content type to stay visible")
	}
}

func TestRedactURL(t *testing.T) {
	cases := map[string]string{
		"https://api.telegram.org/bot123:ABC-def/sendMessage":        "https://api.telegram.org/bot[REDACTED]/sendMessage",
		"https://api.telegram.org/file/bot123:ABC/photos/file_1.jpg": "https://api.telegram.org/file/bot[REDACTED]/photos/file_1.jpg",
		"https://graph.facebook.com/v23.0/me/messages":               "https://graph.facebook.com/v23.0/me/messages",
		"": "",
	}
	for input, want := range cases {
		if got := RedactURL(input); got != want {
			t.Fatalf("RedactURL(%q) = %q, want %q", input, got, want)
		}
	}

	got := RedactURL("https://graph.facebook.com/v23.0/me/messages?access_token=tok&appsecret_proof=abc&fields=name")
	if strings.Contains(got, "tok&") || strings.Contains(got, "abc") {
		t.Fatalf("expected credentials to be redacted, got %q", got)
	}
	if !strings.Contains(got, "access_token=[REDACTED]") || !strings.Contains(got, "fields=name") {
		t.Fatalf("unexpected redacted url %q", got)
	}
}

func TestRedactBody(t *testing.T) {
	form := RedactBody([]byte("client_id=app&client_secret=pw&grant_type=client_credentials"), "application/x-www-form-urlencoded")
	if string(form) != "client_id=app&client_secret="+RedactedValue+"&grant_type=client_credentials" {
		t.Fatalf("unexpected form body %s", form)
	}

	body := RedactBody([]byte(`{"url":"https://hook","auth_token":"tok","nested":{"secret":"s"}}`), "application/json")
	if strings.Contains(string(body), `"tok"`) || strings.Contains(string(body), `"s"`) {
		t.Fatalf("expected json credentials to be redacted, got %s", body)
	}
	if !strings.Contains(string(body), `"url":"https://hook"`) {
		t.Fatalf("expected other fields to stay visible, got %s", body)
	}

	plain := []byte(`{"to": "U1", "messages": []}`)
	if got := RedactBody(plain, "application/json"); string(got) != string(plain) {
		t.Fatalf("expected body without credentials untouched, got %s", got)
	}
	if got := RedactBody([]byte("not json"), ""); string(got) != "not json" {
		t.Fatalf("expected opaque body untouched, got %s", got)
	}
}
