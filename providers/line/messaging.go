package line

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-messaging/core"
)

type SendOptions struct {
	NotificationDisabled bool
	// RetryKey is sent as X-Line-Retry-Key. Retry generates one when empty.
	RetryKey string
	Retry    bool
}

func (o SendOptions) retryKey() string {
	if key := strings.TrimSpace(o.RetryKey); key != "" {
		return key
	}
	if o.Retry {
		return NewRetryKey()
	}
	return ""
}

type SentMessage struct {
	ID         string `json:"id"`
	QuoteToken string `json:"quoteToken,omitempty"`
}

type SendResponse struct {
	SentMessages []SentMessage `json:"sentMessages,omitempty"`
	RequestID    string        `json:"-"`
	RetryKey     string        `json:"-"`
}

type replyRequest struct {
	ReplyToken           string    `json:"replyToken"`
	Messages             []Message `json:"messages"`
	NotificationDisabled bool      `json:"notificationDisabled,omitempty"`
}

type pushRequest struct {
	To                   string    `json:"to"`
	Messages             []Message `json:"messages"`
	NotificationDisabled bool      `json:"notificationDisabled,omitempty"`
}

type multicastRequest struct {
	To                   []string  `json:"to"`
	Messages             []Message `json:"messages"`
	NotificationDisabled bool      `json:"notificationDisabled,omitempty"`
}

type broadcastRequest struct {
	Messages             []Message `json:"messages"`
	NotificationDisabled bool      `json:"notificationDisabled,omitempty"`
}

func (c *Client) Reply(ctx context.Context, replyToken string, messages []Message, opts SendOptions) (SendResponse, error) {
	if strings.TrimSpace(replyToken) == "" {
		return SendResponse{}, core.BadInput("providers/line: reply token is required", nil)
	}
	if err := validateMessages(messages); err != nil {
		return SendResponse{}, err
	}
	return c.send(ctx, "reply_message", "/v2/bot/message/reply", replyRequest{
		ReplyToken:           replyToken,
		Messages:             messages,
		NotificationDisabled: opts.NotificationDisabled,
	}, "")
}

func (c *Client) ReplyText(ctx context.Context, replyToken string, text string) (SendResponse, error) {
	return c.Reply(ctx, replyToken, []Message{NewTextMessage(text)}, SendOptions{})
}

func (c *Client) Push(ctx context.Context, to string, messages []Message, opts SendOptions) (SendResponse, error) {
	if strings.TrimSpace(to) == "" {
		return SendResponse{}, core.BadInput("providers/line: push recipient is required", nil)
	}
	if err := validateMessages(messages); err != nil {
		return SendResponse{}, err
	}
	return c.send(ctx, "push_message", "/v2/bot/message/push", pushRequest{
		To:                   to,
		Messages:             messages,
		NotificationDisabled: opts.NotificationDisabled,
	}, opts.retryKey())
}

func (c *Client) PushText(ctx context.Context, to string, text string) (SendResponse, error) {
	return c.Push(ctx, to, []Message{NewTextMessage(text)}, SendOptions{})
}

func (c *Client) Multicast(ctx context.Context, to []string, messages []Message, opts SendOptions) (SendResponse, error) {
	if len(to) == 0 {
		return SendResponse{}, core.BadInput("providers/line: multicast recipients are required", nil)
	}
	if len(to) > maxMulticastRecipients {
		return SendResponse{}, core.BadInput(
			fmt.Sprintf("providers/line: %d recipients exceeds the multicast limit of %d", len(to), maxMulticastRecipients),
			map[string]any{"count": len(to)},
		)
	}
	if err := validateMessages(messages); err != nil {
		return SendResponse{}, err
	}
	return c.send(ctx, "multicast_message", "/v2/bot/message/multicast", multicastRequest{
		To:                   to,
		Messages:             messages,
		NotificationDisabled: opts.NotificationDisabled,
	}, opts.retryKey())
}

func (c *Client) MulticastText(ctx context.Context, to []string, text string) (SendResponse, error) {
	return c.Multicast(ctx, to, []Message{NewTextMessage(text)}, SendOptions{})
}

func (c *Client) Broadcast(ctx context.Context, messages []Message, opts SendOptions) (SendResponse, error) {
	if err := validateMessages(messages); err != nil {
		return SendResponse{}, err
	}
	return c.send(ctx, "broadcast_message", "/v2/bot/message/broadcast", broadcastRequest{
		Messages:             messages,
		NotificationDisabled: opts.NotificationDisabled,
	}, opts.retryKey())
}

type NarrowcastOptions struct {
	Recipient            map[string]any `json:"recipient,omitempty"`
	Filter               map[string]any `json:"filter,omitempty"`
	Limit                map[string]any `json:"limit,omitempty"`
	NotificationDisabled bool           `json:"notificationDisabled,omitempty"`
}

type narrowcastRequest struct {
	Messages []Message `json:"messages"`
	NarrowcastOptions
}

// Narrowcast queues a narrowcast. The returned RequestID feeds
// GetNarrowcastProgress.
func (c *Client) Narrowcast(ctx context.Context, messages []Message, opts NarrowcastOptions, send SendOptions) (SendResponse, error) {
	if err := validateMessages(messages); err != nil {
		return SendResponse{}, err
	}
	return c.send(ctx, "narrowcast_message", "/v2/bot/message/narrowcast", narrowcastRequest{
		Messages:          messages,
		NarrowcastOptions: opts,
	}, send.retryKey())
}

type NarrowcastProgress struct {
	Phase             string `json:"phase"`
	SuccessCount      int64  `json:"successCount,omitempty"`
	FailureCount      int64  `json:"failureCount,omitempty"`
	TargetCount       int64  `json:"targetCount,omitempty"`
	FailedDescription string `json:"failedDescription,omitempty"`
	ErrorCode         int    `json:"errorCode,omitempty"`
	AcceptedTime      string `json:"acceptedTime,omitempty"`
	CompletedTime     string `json:"completedTime,omitempty"`
}

func (c *Client) GetNarrowcastProgress(ctx context.Context, requestID string) (NarrowcastProgress, error) {
	if strings.TrimSpace(requestID) == "" {
		return NarrowcastProgress{}, core.BadInput("providers/line: narrowcast request id is required", nil)
	}
	var out NarrowcastProgress
	_, err := c.do(ctx, core.Request{
		Operation: "get_narrowcast_progress",
		Method:    http.MethodGet,
		Path:      "/v2/bot/message/progress/narrowcast",
		Query:     map[string]string{"requestId": requestID},
	}, &out)
	return out, err
}

// GetMessageContent downloads the binary content of an image, video, audio
// or file message from the data origin.
func (c *Client) GetMessageContent(ctx context.Context, messageID string) ([]byte, string, error) {
	id, err := requireID("message id", messageID)
	if err != nil {
		return nil, "", err
	}
	res, err := c.do(ctx, core.Request{
		Operation: "get_message_content",
		Method:    http.MethodGet,
		Origin:    c.dataOrigin,
		Path:      "/v2/bot/message/" + id + "/content",
	}, nil)
	if err != nil {
		return nil, "", err
	}
	return res.Body, res.Header("Content-Type"), nil
}

// SendPlainText pushes a single text message to a user, group or room id.
func (c *Client) SendPlainText(ctx context.Context, to string, text string) (core.DeliveryReceipt, error) {
	res, err := c.Push(ctx, to, []Message{NewTextMessage(text)}, SendOptions{Retry: true})
	if err != nil {
		return core.DeliveryReceipt{}, err
	}
	receipt := core.DeliveryReceipt{
		ProviderID: core.ProviderLINE,
		Recipient:  to,
		SentAt:     c.now(),
		Metadata:   map[string]any{"retry_key": res.RetryKey},
	}
	if len(res.SentMessages) > 0 {
		receipt.MessageID = res.SentMessages[0].ID
	}
	if res.RequestID != "" {
		receipt.Metadata["request_id"] = res.RequestID
	}
	return receipt, nil
}

func (c *Client) send(ctx context.Context, operation string, path string, body any, retryKey string) (SendResponse, error) {
	req := core.Request{
		Operation: operation,
		Method:    http.MethodPost,
		Path:      path,
		Body:      body,
	}
	if retryKey != "" {
		req.Headers = map[string]string{"X-Line-Retry-Key": retryKey}
	}
	var out SendResponse
	res, err := c.do(ctx, req, &out)
	if err != nil {
		return SendResponse{}, err
	}
	out.RequestID = res.Header("X-Line-Request-Id")
	out.RetryKey = retryKey
	return out, nil
}
