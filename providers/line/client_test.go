package line

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messaging/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Config{
		AccessToken:   "channel_token",
		ChannelSecret: "channel_secret",
		Origin:        server.URL,
		DataOrigin:    server.URL + "/data",
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

func TestNew_RequiresAccessToken(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected missing access token to fail")
	}
}

func TestPushText_SendsBearerAndCamelCaseBody(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/bot/message/push" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer channel_token" {
			t.Fatalf("unexpected authorization %q", got)
		}
		body = decodeBody(t, r)
		w.Header().Set("X-Line-Request-Id", "req_1")
		_, _ = w.Write([]byte(`{"sentMessages":[{"id":"461230966842064897","quoteToken":"q"}]}`))
	})

	res, err := client.Push(context.Background(), "U123", []Message{
		WithQuickReply(NewTextMessage("hi"), QuickReplyItem{Action: NewMessageAction("Yes", "yes")}),
	}, SendOptions{RetryKey: "123e4567-e89b-12d3-a456-426614174000"})
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if body["to"] != "U123" {
		t.Fatalf("unexpected body %#v", body)
	}
	messages := body["messages"].([]any)
	first := messages[0].(map[string]any)
	if _, ok := first["quickReply"]; !ok {
		t.Fatalf("expected camelCase quickReply key, got %#v", first)
	}
	if res.RequestID != "req_1" || res.RetryKey != "123e4567-e89b-12d3-a456-426614174000" {
		t.Fatalf("unexpected response metadata %#v", res)
	}
	if len(res.SentMessages) != 1 || res.SentMessages[0].ID != "461230966842064897" {
		t.Fatalf("unexpected sent messages %#v", res.SentMessages)
	}
}

func TestSendPlainText_GeneratesRetryKey(t *testing.T) {
	var retryKey string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		retryKey = r.Header.Get("X-Line-Retry-Key")
		_, _ = w.Write([]byte(`{"sentMessages":[{"id":"m1"}]}`))
	})
	receipt, err := client.SendPlainText(context.Background(), "U1", "hello")
	if err != nil {
		t.Fatalf("send plain text: %v", err)
	}
	if retryKey == "" || receipt.Metadata["retry_key"] != retryKey {
		t.Fatalf("expected generated retry key, header=%q receipt=%#v", retryKey, receipt.Metadata)
	}
	if receipt.MessageID != "m1" || receipt.ProviderID != core.ProviderLINE {
		t.Fatalf("unexpected receipt %#v", receipt)
	}
}

func TestReply_ValidatesMessages(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Fatalf("request should not be sent")
	})
	if _, err := client.Reply(context.Background(), "token", nil, SendOptions{}); err == nil {
		t.Fatalf("expected empty messages to fail")
	}
	six := make([]Message, 6)
	for i := range six {
		six[i] = NewTextMessage("x")
	}
	_, err := client.Reply(context.Background(), "token", six, SendOptions{})
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input for six messages, got %v", err)
	}
	if _, err := client.Multicast(context.Background(), make([]string, 501), []Message{NewTextMessage("x")}, SendOptions{}); err == nil {
		t.Fatalf("expected multicast limit error")
	}
}

func TestErrorResponse_BecomesAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Line-Request-Id", "req_err")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"The request body has 1 error(s)","details":[{"message":"May not be empty","property":"messages[0].text"}]}`))
	})
	_, err := client.ReplyText(context.Background(), "reply_token", "")
	apiErr, ok := core.AsAPIError(err)
	if !ok {
		t.Fatalf("expected api error, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", apiErr.Status)
	}
	if !strings.Contains(apiErr.Error(), "messages[0].text: May not be empty") {
		t.Fatalf("expected detail in message, got %q", apiErr.Error())
	}
	if apiErr.Metadata["request_id"] != "req_err" {
		t.Fatalf("expected request id metadata, got %#v", apiErr.Metadata)
	}
	if !strings.Contains(apiErr.Details(), "Response Data -") {
		t.Fatalf("expected inspection layout, got %q", apiErr.Details())
	}
	if got := apiErr.ToServiceError().Category; got != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input category, got %s", got)
	}
}

func TestGetAllGroupMemberIDs_FollowsCursor(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/v2/bot/group/C1/members/ids" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		switch r.URL.Query().Get("start") {
		case "":
			_, _ = w.Write([]byte(`{"memberIds":["U1","U2"],"next":"cursor_2"}`))
		case "cursor_2":
			_, _ = w.Write([]byte(`{"memberIds":["U3"]}`))
		default:
			t.Fatalf("unexpected cursor %q", r.URL.Query().Get("start"))
		}
	})
	ids, err := client.GetAllGroupMemberIDs(context.Background(), "C1")
	if err != nil {
		t.Fatalf("get all member ids: %v", err)
	}
	if strings.Join(ids, ",") != "U1,U2,U3" || calls != 2 {
		t.Fatalf("unexpected ids %v after %d calls", ids, calls)
	}
}

func TestRichMenuImage_UsesDataOriginAndBinaryBody(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/v2/bot/richmenu/rm-1/content" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		switch r.Method {
		case http.MethodPost:
			if got := r.Header.Get("Content-Type"); got != "image/png" {
				t.Fatalf("unexpected content type %q", got)
			}
			raw, _ := io.ReadAll(r.Body)
			if string(raw) != string(png) {
				t.Fatalf("unexpected upload body %q", raw)
			}
			_, _ = w.Write([]byte(`{}`))
		case http.MethodGet:
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(png)
		}
	})
	if err := client.UploadRichMenuImage(context.Background(), "rm-1", png, ""); err != nil {
		t.Fatalf("upload: %v", err)
	}
	image, err := client.DownloadRichMenuImage(context.Background(), "rm-1")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(image) != string(png) {
		t.Fatalf("unexpected image bytes %q", image)
	}
	if err := client.UploadRichMenuImage(context.Background(), "rm-1", []byte("GIF89a"), "image/gif"); err == nil {
		t.Fatalf("expected gif upload to be rejected")
	}
}

func TestGetProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/bot/profile/U1" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"displayName":"LINE taro","userId":"U1","pictureUrl":"https://obs.line-apps.com/x","language":"en"}`))
	})
	profile, err := client.GetProfile(context.Background(), "U1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.DisplayName != "LINE taro" || profile.PictureURL == "" || profile.Language != "en" {
		t.Fatalf("unexpected profile %#v", profile)
	}
}

func TestWebhook_VerifyAndParse(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
	body := []byte(`{"destination":"Uxxx","events":[{"type":"message","mode":"active","timestamp":1462629479859,"webhookEventId":"01FZ74A0TDDPYRVKNK77XKC3ZR","deliveryContext":{"isRedelivery":false},"replyToken":"nHuyWiB7yP5Zw52FIkcQobQuGDXCTA","source":{"type":"user","userId":"U4af4980629"},"message":{"id":"444573844083572737","type":"text","text":"Hello","emojis":[]}}]}`)

	mac := hmac.New(sha256.New, []byte("channel_secret"))
	_, _ = mac.Write(body)
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if !client.VerifySignature(body, signature) {
		t.Fatalf("expected signature to verify")
	}
	if client.VerifySignature(append(body, ' '), signature) {
		t.Fatalf("expected modified body to fail verification")
	}

	parsed, err := ParseEvents(body)
	if err != nil {
		t.Fatalf("parse events: %v", err)
	}
	if parsed.Destination != "Uxxx" || len(parsed.Events) != 1 {
		t.Fatalf("unexpected parsed payload %#v", parsed)
	}
	event := parsed.Events[0]
	if event.ReplyToken == "" || event.Source.UserID != "U4af4980629" || event.Message == nil || event.Message.Text != "Hello" {
		t.Fatalf("unexpected event %#v", event)
	}
	if !strings.Contains(string(event.Message.Raw), `"emojis"`) {
		t.Fatalf("expected raw message to be kept, got %s", event.Message.Raw)
	}
	if _, err := ParseEvents([]byte(`{`)); err == nil {
		t.Fatalf("expected malformed payload to fail")
	}
}
