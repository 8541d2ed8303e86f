package messenger

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-messaging/casing"
	"github.com/goliatone/go-messaging/webhooks"
)

type EventMessage struct {
	MID         string         `json:"mid"`
	Text        string         `json:"text,omitempty"`
	IsEcho      bool           `json:"isEcho,omitempty"`
	AppID       int64          `json:"appId,omitempty"`
	QuickReply  *QuickReply    `json:"quickReply,omitempty"`
	ReplyTo     map[string]any `json:"replyTo,omitempty"`
	Attachments []Attachment   `json:"attachments,omitempty"`
}

type EventPostback struct {
	MID     string `json:"mid,omitempty"`
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

type EventParty struct {
	ID      string `json:"id"`
	UserRef string `json:"userRef,omitempty"`
}

// Event is one messaging item of a page entry. Keys are camelCase
// regardless of the wire format; the full item is kept in Raw.
type Event struct {
	Sender    EventParty     `json:"sender"`
	Recipient EventParty     `json:"recipient"`
	Timestamp int64          `json:"timestamp"`
	Message   *EventMessage  `json:"message,omitempty"`
	Postback  *EventPostback `json:"postback,omitempty"`
	Read      map[string]any `json:"read,omitempty"`
	Delivery  map[string]any `json:"delivery,omitempty"`
	Reaction  map[string]any `json:"reaction,omitempty"`
	Referral  map[string]any `json:"referral,omitempty"`
	// Standby is set for events received on the standby channel.
	Standby bool            `json:"-"`
	PageID  string          `json:"-"`
	Raw     json.RawMessage `json:"-"`
}

// VerifySignature checks an X-Hub-Signature-256 ("sha256=...") or
// X-Hub-Signature ("sha1=...") header value against the app secret.
func (c *Client) VerifySignature(body []byte, header string) bool {
	if c == nil {
		return false
	}
	header = strings.TrimSpace(header)
	switch {
	case strings.HasPrefix(header, "sha256="):
		return webhooks.VerifyHexHMAC(body, c.appSecret, strings.TrimPrefix(header, "sha256="), webhooks.AlgorithmSHA256)
	case strings.HasPrefix(header, "sha1="):
		return webhooks.VerifyHexHMAC(body, c.appSecret, strings.TrimPrefix(header, "sha1="), webhooks.AlgorithmSHA1)
	default:
		return false
	}
}

// VerifyToken reports whether token matches the configured webhook verify
// token.
func (c *Client) VerifyToken(token string) bool {
	return c != nil && c.verifyToken != "" && token == c.verifyToken
}

func (c *Client) WebhookTemplate() webhooks.ProviderWebhookTemplate {
	return webhooks.NewMessengerWebhookTemplate(c.appSecret, c.verifyToken)
}

// ParseEvents returns the messaging and standby events of every page entry.
func ParseEvents(body []byte) ([]Event, error) {
	var envelope struct {
		Object string `json:"object"`
		Entry  []struct {
			ID        string            `json:"id"`
			Messaging []json.RawMessage `json:"messaging"`
			Standby   []json.RawMessage `json:"standby"`
		} `json:"entry"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("providers/messenger: parse webhook payload: %w", err)
	}
	if envelope.Object != "" && envelope.Object != "page" {
		return nil, fmt.Errorf("providers/messenger: unexpected webhook object %q", envelope.Object)
	}
	var events []Event
	for _, entry := range envelope.Entry {
		for _, group := range []struct {
			items   []json.RawMessage
			standby bool
		}{{entry.Messaging, false}, {entry.Standby, true}} {
			for i, raw := range group.items {
				event, err := parseEvent(raw)
				if err != nil {
					return nil, fmt.Errorf("providers/messenger: parse webhook event %d: %w", i, err)
				}
				event.Standby = group.standby
				event.PageID = entry.ID
				events = append(events, event)
			}
		}
	}
	return events, nil
}

func parseEvent(raw json.RawMessage) (Event, error) {
	converted, err := casing.TransformJSON(raw, casing.Camel)
	if err != nil {
		return Event{}, err
	}
	var event Event
	if err := json.Unmarshal(converted, &event); err != nil {
		return Event{}, err
	}
	event.Raw = append(json.RawMessage(nil), raw...)
	return event, nil
}
