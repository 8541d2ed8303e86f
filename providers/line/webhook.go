package line

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-messaging/webhooks"
)

type Source struct {
	Type    string `json:"type"`
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

// EventMessage is the message carried by a message event. Fields not
// modeled here are kept in Raw.
type EventMessage struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	QuoteToken string          `json:"quoteToken,omitempty"`
	PackageID  string          `json:"packageId,omitempty"`
	StickerID  string          `json:"stickerId,omitempty"`
	FileName   string          `json:"fileName,omitempty"`
	Title      string          `json:"title,omitempty"`
	Address    string          `json:"address,omitempty"`
	Latitude   float64         `json:"latitude,omitempty"`
	Longitude  float64         `json:"longitude,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

type Postback struct {
	Data   string            `json:"data"`
	Params map[string]string `json:"params,omitempty"`
}

type DeliveryContext struct {
	IsRedelivery bool `json:"isRedelivery"`
}

type Event struct {
	Type            string          `json:"type"`
	Mode            string          `json:"mode"`
	Timestamp       int64           `json:"timestamp"`
	WebhookEventID  string          `json:"webhookEventId"`
	DeliveryContext DeliveryContext `json:"deliveryContext"`
	ReplyToken      string          `json:"replyToken,omitempty"`
	Source          Source          `json:"source"`
	Message         *EventMessage   `json:"message,omitempty"`
	Postback        *Postback       `json:"postback,omitempty"`
	Raw             json.RawMessage `json:"-"`
}

type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// VerifySignature checks the X-Line-Signature value against the channel
// secret.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	if c == nil {
		return false
	}
	return webhooks.VerifyBase64HMACSHA256(body, c.channelSecret, signature)
}

// WebhookTemplate returns the verifier template for this channel.
func (c *Client) WebhookTemplate() webhooks.ProviderWebhookTemplate {
	return webhooks.NewLINEWebhookTemplate(c.channelSecret)
}

func ParseEvents(body []byte) (WebhookRequest, error) {
	var envelope struct {
		Destination string            `json:"destination"`
		Events      []json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return WebhookRequest{}, fmt.Errorf("providers/line: parse webhook payload: %w", err)
	}
	out := WebhookRequest{Destination: envelope.Destination, Events: make([]Event, 0, len(envelope.Events))}
	for i, raw := range envelope.Events {
		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			return WebhookRequest{}, fmt.Errorf("providers/line: parse webhook event %d: %w", i, err)
		}
		event.Raw = append(json.RawMessage(nil), raw...)
		if event.Message != nil {
			var message struct {
				Message json.RawMessage `json:"message"`
			}
			if err := json.Unmarshal(raw, &message); err == nil {
				event.Message.Raw = message.Message
			}
		}
		out.Events = append(out.Events, event)
	}
	return out, nil
}
