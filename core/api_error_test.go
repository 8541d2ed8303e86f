package core

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

func TestAPIError_ErrorMessages(t *testing.T) {
	withMessage := &APIError{ProviderID: "line", Message: "Invalid reply token", Status: 400}
	if got := withMessage.Error(); got != "line: Invalid reply token" {
		t.Fatalf("unexpected message %q", got)
	}
	statusOnly := &APIError{ProviderID: "viber", Status: 500}
	if got := statusOnly.Error(); got != "viber: request failed with status code 500" {
		t.Fatalf("unexpected message %q", got)
	}
	cause := stderrors.New("timeout")
	transport := &APIError{ProviderID: "telegram", Cause: cause}
	if got := transport.Error(); got != "telegram: request failed: timeout" {
		t.Fatalf("unexpected message %q", got)
	}
	if !stderrors.Is(fmt.Errorf("wrapped: %w", transport), cause) {
		t.Fatalf("expected cause in unwrap chain")
	}
	var nilErr *APIError
	if nilErr.Error() == "" || nilErr.Unwrap() != nil || nilErr.Details() != "" {
		t.Fatalf("unexpected nil receiver behaviour")
	}
}

func TestAPIError_DetailsLayout(t *testing.T) {
	err := &APIError{
		ProviderID:   "telegram",
		Message:      "Bad Request: chat not found",
		Status:       400,
		Method:       "post",
		URL:          "https://api.telegram.org/bot1:abc/sendMessage",
		RequestBody:  []byte(`{"chat_id":1,"text":"hi"}`),
		ResponseBody: []byte(`{"ok":false,"error_code":400}`),
	}
	details := err.Details()
	for _, want := range []string{
		"Error: telegram: Bad Request: chat not found",
		"Error Message -\n  Bad Request: chat not found",
		"Request -\n  POST https://api.telegram.org/bot[REDACTED]/sendMessage",
		"Request Data -\n  {\n    \"chat_id\": 1,",
		"Response -\n  400 Bad Request",
		"Response Data -\n  {\n    \"ok\": false,",
	} {
		if !strings.Contains(details, want) {
			t.Fatalf("expected details to contain %q, got:\n%s", want, details)
		}
	}
	if strings.Contains(details, "abc") {
		t.Fatalf("expected bot token to be redacted")
	}
}

func TestAPIError_DetailsWithoutResponse(t *testing.T) {
	err := &APIError{ProviderID: "viber", Method: "GET", URL: "https://chatapi.viber.com/pa/get_account_info", Cause: stderrors.New("eof")}
	details := err.Details()
	if strings.Contains(details, "Response -") {
		t.Fatalf("expected no response section, got:\n%s", details)
	}
	if !strings.Contains(details, "Request -\n  GET https://chatapi.viber.com/pa/get_account_info") {
		t.Fatalf("expected request section, got:\n%s", details)
	}
}

func TestAPIError_ToServiceError(t *testing.T) {
	err := &APIError{
		ProviderID:      "messenger",
		Operation:       "send_message",
		Message:         "(#100) Invalid parameter",
		ProviderCode:    "100",
		ProviderSubcode: "2018001",
		Status:          http.StatusBadRequest,
		Method:          "POST",
		URL:             "https://graph.facebook.com/v23.0/me/messages?access_token=tok",
		RetryAfter:      2 * time.Second,
		Metadata:        map[string]any{"fbtrace_id": "trace"},
	}
	mapped := err.ToServiceError()
	if mapped.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input category, got %q", mapped.Category)
	}
	if mapped.Code != http.StatusBadRequest || mapped.TextCode != ErrorBadInput {
		t.Fatalf("unexpected code=%d text=%q", mapped.Code, mapped.TextCode)
	}
	if mapped.Metadata["provider_code"] != "100" || mapped.Metadata["provider_subcode"] != "2018001" {
		t.Fatalf("expected provider codes in metadata, got %#v", mapped.Metadata)
	}
	if mapped.Metadata["retry_after_ms"] != int64(2000) {
		t.Fatalf("expected retry_after_ms, got %#v", mapped.Metadata["retry_after_ms"])
	}
	if mapped.Metadata["fbtrace_id"] != "trace" {
		t.Fatalf("expected provider metadata to be merged")
	}
	if got := mapped.Metadata["url"]; got != "https://graph.facebook.com/v23.0/me/messages?access_token="+RedactedValue {
		t.Fatalf("expected redacted url in metadata, got %#v", got)
	}

	wrapped := fmt.Errorf("send: %w", err)
	if got, ok := AsAPIError(wrapped); !ok || got != err {
		t.Fatalf("expected AsAPIError to unwrap")
	}
	if MapError(wrapped).TextCode != ErrorBadInput {
		t.Fatalf("expected MapError to use the api error envelope")
	}
}
