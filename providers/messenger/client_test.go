package messenger

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messaging/auth"
	"github.com/goliatone/go-messaging/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Config{
		AccessToken: "page_token",
		AppSecret:   "app_secret",
		VerifyToken: "verify_me",
		Origin:      server.URL,
	},
		core.WithHTTPClient(server.Client()),
		core.WithRateLimitConfig(core.RateLimitConfig{Disabled: true}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode body %q: %v", raw, err)
		}
	}
	return out
}

func TestSendText_UsesQueryTokenProofAndSnakeCase(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v23.0/me/messages" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("access_token") != "page_token" {
			t.Fatalf("expected access token query, got %q", r.URL.RawQuery)
		}
		if query.Get("appsecret_proof") != auth.AppSecretProof("page_token", "app_secret") {
			t.Fatalf("unexpected appsecret_proof %q", query.Get("appsecret_proof"))
		}
		body = decodeBody(t, r)
		_, _ = w.Write([]byte(`{"recipient_id":"1008372609250235","message_id":"m_1"}`))
	})

	res, err := client.SendText(context.Background(), "1008372609250235", "hello", SendOptions{
		QuickReplies: []QuickReply{{ContentType: "text", Title: "Yes", Payload: "YES"}},
	})
	if err != nil {
		t.Fatalf("send text: %v", err)
	}
	if res.RecipientID != "1008372609250235" || res.MessageID != "m_1" {
		t.Fatalf("unexpected response %#v", res)
	}
	if body["messaging_type"] != MessagingTypeResponse {
		t.Fatalf("expected RESPONSE messaging type, got %#v", body)
	}
	message := body["message"].(map[string]any)
	replies, ok := message["quick_replies"].([]any)
	if !ok || len(replies) != 1 {
		t.Fatalf("expected snake_case quick_replies, got %#v", message)
	}
	if replies[0].(map[string]any)["content_type"] != "text" {
		t.Fatalf("unexpected quick reply %#v", replies[0])
	}
}

func TestSendMessage_TagImpliesMessageTag(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body = decodeBody(t, r)
		_, _ = w.Write([]byte(`{"recipient_id":"1","message_id":"m"}`))
	})
	if _, err := client.SendText(context.Background(), "1", "update", SendOptions{Tag: "ACCOUNT_UPDATE", PersonaID: "p1"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if body["messaging_type"] != MessagingTypeMessageTag || body["tag"] != "ACCOUNT_UPDATE" || body["persona_id"] != "p1" {
		t.Fatalf("unexpected body %#v", body)
	}
}

func TestSendButtonTemplate_Validates(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Fatalf("request should not be sent")
	})
	_, err := client.SendButtonTemplate(context.Background(), "1", "pick", nil, SendOptions{})
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input, got %v", err)
	}
	if _, err := client.SendText(context.Background(), "", "hi", SendOptions{}); err == nil {
		t.Fatalf("expected missing recipient to fail")
	}
}

func TestGraphError_RateLimitCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"(#613) Calls to this api have exceeded the rate limit.","type":"OAuthException","code":613,"error_subcode":2018022,"fbtrace_id":"Aq3"}}`))
	})
	_, err := client.SendText(context.Background(), "1", "hi", SendOptions{})
	apiErr, ok := core.AsAPIError(err)
	if !ok {
		t.Fatalf("expected api error, got %T %v", err, err)
	}
	if apiErr.Category != goerrors.CategoryRateLimit {
		t.Fatalf("expected rate limit category, got %s", apiErr.Category)
	}
	if apiErr.ProviderCode != "613" || apiErr.ProviderSubcode != "2018022" {
		t.Fatalf("unexpected provider codes %q %q", apiErr.ProviderCode, apiErr.ProviderSubcode)
	}
}

func TestGetUserProfile_DefaultFieldsAndCamelResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v23.0/1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("fields"); got != "first_name,last_name,profile_pic" {
			t.Fatalf("unexpected fields %q", got)
		}
		_, _ = w.Write([]byte(`{"id":"1","first_name":"Kevin","last_name":"Durant","profile_pic":"https://example.com/pic.jpg"}`))
	})
	profile, err := client.GetProfile(context.Background(), "1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.DisplayName != "Kevin Durant" || profile.PictureURL != "https://example.com/pic.jpg" {
		t.Fatalf("unexpected profile %#v", profile)
	}
}

func TestMessengerProfile_GreetingRoundTrip(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v23.0/me/messenger_profile" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("fields") != "persistent_menu" {
				t.Fatalf("unexpected fields %q", r.URL.Query().Get("fields"))
			}
			_, _ = w.Write([]byte(`{"data":[{"persistent_menu":[{"locale":"default","composer_input_disabled":true,"call_to_actions":[{"type":"postback","title":"Help","payload":"HELP"}]}]}]}`))
		case http.MethodDelete:
			body := decodeBody(t, r)
			fields := body["fields"].([]any)
			if len(fields) != 1 || fields[0] != "greeting" {
				t.Fatalf("unexpected delete body %#v", body)
			}
			_, _ = w.Write([]byte(`{"result":"success"}`))
		}
	})
	menus, err := client.GetPersistentMenu(context.Background())
	if err != nil {
		t.Fatalf("get persistent menu: %v", err)
	}
	if len(menus) != 1 || !menus[0].ComposerInputDisabled || menus[0].CallToActions[0].Payload != "HELP" {
		t.Fatalf("unexpected menus %#v", menus)
	}
	if err := client.DeleteGreeting(context.Background()); err != nil {
		t.Fatalf("delete greeting: %v", err)
	}
}

func TestPassThreadControlToPageInbox(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v23.0/me/pass_thread_control" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		body := decodeBody(t, r)
		if body["target_app_id"] != PageInboxAppID {
			t.Fatalf("unexpected body %#v", body)
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	if err := client.PassThreadControlToPageInbox(context.Background(), "1", "handoff"); err != nil {
		t.Fatalf("pass thread control: %v", err)
	}
}

func TestSendBatch_EncodesFormAndDecodesItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v23.0" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		form, err := url.ParseQuery(string(raw))
		if err != nil {
			t.Fatalf("parse form: %v", err)
		}
		var items []map[string]any
		if err := json.Unmarshal([]byte(form.Get("batch")), &items); err != nil {
			t.Fatalf("decode batch: %v", err)
		}
		if len(items) != 1 || items[0]["relative_url"] != "me/messages" || items[0]["method"] != "POST" {
			t.Fatalf("unexpected batch items %#v", items)
		}
		itemBody, _ := url.ParseQuery(items[0]["body"].(string))
		if itemBody.Get("messaging_type") != MessagingTypeResponse {
			t.Fatalf("unexpected item body %#v", itemBody)
		}
		_, _ = w.Write([]byte(`[{"code":200,"headers":[{"name":"Content-Type","value":"application/json"}],"body":"{\"recipient_id\":\"1\",\"message_id\":\"m_1\"}"}]`))
	})
	results, err := client.SendBatch(context.Background(), []BatchRequest{
		SendMessageBatchRequest(PSID("1"), Message{Text: "hi"}, SendOptions{}),
	})
	if err != nil {
		t.Fatalf("send batch: %v", err)
	}
	if len(results) != 1 || !results[0].Succeeded() {
		t.Fatalf("unexpected results %#v", results)
	}
	var res SendResponse
	if err := results[0].Decode(&res); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	if res.MessageID != "m_1" {
		t.Fatalf("unexpected item response %#v", res)
	}
	if _, err := client.SendBatch(context.Background(), make([]BatchRequest, 51)); err == nil {
		t.Fatalf("expected batch size limit error")
	}
}

func TestWebhook_VerifyAndParse(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
	body := []byte(`{"object":"page","entry":[{"id":"PAGE","time":1458692752478,"messaging":[{"sender":{"id":"USER"},"recipient":{"id":"PAGE"},"timestamp":1458692752478,"message":{"mid":"mid.1","text":"hello","quick_reply":{"payload":"YES"}}}],"standby":[{"sender":{"id":"USER"},"recipient":{"id":"PAGE"},"timestamp":1458692752479,"postback":{"title":"Start","payload":"START"}}]}]}`)

	mac := hmac.New(sha256.New, []byte("app_secret"))
	_, _ = mac.Write(body)
	if !client.VerifySignature(body, "sha256="+hex.EncodeToString(mac.Sum(nil))) {
		t.Fatalf("expected sha256 signature to verify")
	}
	legacy := hmac.New(sha1.New, []byte("app_secret"))
	_, _ = legacy.Write(body)
	if !client.VerifySignature(body, "sha1="+hex.EncodeToString(legacy.Sum(nil))) {
		t.Fatalf("expected sha1 signature to verify")
	}
	if client.VerifySignature(body, hex.EncodeToString(mac.Sum(nil))) {
		t.Fatalf("expected unprefixed signature to fail")
	}

	events, err := ParseEvents(body)
	if err != nil {
		t.Fatalf("parse events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
	if events[0].Message == nil || events[0].Message.QuickReply == nil || events[0].Message.QuickReply.Payload != "YES" {
		t.Fatalf("unexpected message event %#v", events[0])
	}
	if !events[1].Standby || events[1].Postback == nil || events[1].PageID != "PAGE" {
		t.Fatalf("unexpected standby event %#v", events[1])
	}
}

func TestSendReceiptTemplate_AddressStreetKeys(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body = decodeBody(t, r)
		_, _ = w.Write([]byte(`{"recipient_id":"1","message_id":"m_2"}`))
	})
	_, err := client.SendReceiptTemplate(context.Background(), "1", ReceiptTemplate{
		RecipientName: "Stephane Crozatier",
		OrderNumber:   "12345678902",
		Currency:      "USD",
		PaymentMethod: "Visa 2345",
		Address: &ReceiptAddress{
			Street1:    "1 Hacker Way",
			Street2:    "Suite 2",
			City:       "Menlo Park",
			PostalCode: "94025",
			State:      "CA",
			Country:    "US",
		},
		Summary: ReceiptSummary{TotalCost: 56.14},
	}, SendOptions{})
	if err != nil {
		t.Fatalf("send receipt: %v", err)
	}
	payload := body["message"].(map[string]any)["attachment"].(map[string]any)["payload"].(map[string]any)
	address := payload["address"].(map[string]any)
	if address["street_1"] != "1 Hacker Way" || address["street_2"] != "Suite 2" || address["postal_code"] != "94025" {
		t.Fatalf("unexpected wire address %#v", address)
	}
	if payload["template_type"] != "receipt" || payload["payment_method"] != "Visa 2345" {
		t.Fatalf("unexpected receipt payload %#v", payload)
	}
}
