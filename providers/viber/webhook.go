package viber

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-messaging/casing"
	"github.com/goliatone/go-messaging/webhooks"
)

const SignatureHeader = "X-Viber-Content-Signature"

type EventUser struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
	Country    string `json:"country,omitempty"`
	Language   string `json:"language,omitempty"`
	APIVersion int    `json:"apiVersion,omitempty"`
}

// Event is an inbound callback. Which fields are set depends on Event.Event,
// e.g. "message", "subscribed", "conversation_started" or "delivered".
type Event struct {
	Event        string          `json:"event"`
	Timestamp    int64           `json:"timestamp"`
	MessageToken int64           `json:"messageToken,omitempty"`
	ChatHostname string          `json:"chatHostname,omitempty"`
	UserID       string          `json:"userId,omitempty"`
	Sender       *EventUser      `json:"sender,omitempty"`
	User         *EventUser      `json:"user,omitempty"`
	Message      *Message        `json:"message,omitempty"`
	Type         string          `json:"type,omitempty"`
	Context      string          `json:"context,omitempty"`
	Subscribed   bool            `json:"subscribed,omitempty"`
	Desc         string          `json:"desc,omitempty"`
	Raw          json.RawMessage `json:"-"`
}

// VerifySignature checks the hex HMAC-SHA256 of body keyed by the auth
// token.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	if c == nil {
		return false
	}
	return webhooks.VerifyHexHMAC(body, c.authToken, signature, webhooks.AlgorithmSHA256)
}

func (c *Client) WebhookTemplate() webhooks.ProviderWebhookTemplate {
	return webhooks.NewViberWebhookTemplate(c.authToken)
}

func ParseEvent(body []byte) (Event, error) {
	converted, err := casing.TransformJSON(body, casing.Camel, casing.WithStopPaths("message.keyboard", "message.rich_media"))
	if err != nil {
		return Event{}, fmt.Errorf("providers/viber: parse event: %w", err)
	}
	var event Event
	if err := json.Unmarshal(converted, &event); err != nil {
		return Event{}, fmt.Errorf("providers/viber: parse event: %w", err)
	}
	if event.Event == "" {
		return Event{}, fmt.Errorf("providers/viber: parse event: missing event type")
	}
	event.Raw = append(json.RawMessage(nil), body...)
	return event, nil
}
