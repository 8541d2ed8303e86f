package wechat

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-messaging/casing"
	"github.com/goliatone/go-messaging/webhooks"
)

// Message is a passive message or event pushed to the webhook. Fields
// beyond these are available in the map returned by ParseMessage.
type Message struct {
	ToUserName   string `json:"toUserName"`
	FromUserName string `json:"fromUserName"`
	CreateTime   int64  `json:"createTime,string"`
	MsgType      string `json:"msgType"`
	MsgID        string `json:"msgId,omitempty"`
	Content      string `json:"content,omitempty"`
	PicURL       string `json:"picUrl,omitempty"`
	MediaID      string `json:"mediaId,omitempty"`
	Format       string `json:"format,omitempty"`
	Recognition  string `json:"recognition,omitempty"`
	ThumbMediaID string `json:"thumbMediaId,omitempty"`
	LocationX    string `json:"locationX,omitempty"`
	LocationY    string `json:"locationY,omitempty"`
	Scale        string `json:"scale,omitempty"`
	Label        string `json:"label,omitempty"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	URL          string `json:"url,omitempty"`
	Event        string `json:"event,omitempty"`
	EventKey     string `json:"eventKey,omitempty"`
	Ticket       string `json:"ticket,omitempty"`
	Latitude     string `json:"latitude,omitempty"`
	Longitude    string `json:"longitude,omitempty"`
	Precision    string `json:"precision,omitempty"`
}

// VerifySignature checks the signature query parameter: the hex sha1 of
// the sorted token, timestamp and nonce.
func VerifySignature(token string, signature string, timestamp string, nonce string) bool {
	if token == "" || signature == "" {
		return false
	}
	expected := webhooks.SortedSHA1Signature(token, timestamp, nonce)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(strings.TrimSpace(signature))), []byte(expected)) == 1
}

// VerifySignature checks a request against the configured webhook token.
func (c *Client) VerifySignature(signature string, timestamp string, nonce string) bool {
	return c != nil && VerifySignature(c.token, signature, timestamp, nonce)
}

func (c *Client) WebhookTemplate() webhooks.ProviderWebhookTemplate {
	return webhooks.NewWeChatWebhookTemplate(c.token)
}

// ParseMessage decodes a <xml> push body. It returns the typed message and
// every element as a camelCase keyed map; nested elements become nested
// maps and repeated ones slices.
func ParseMessage(body []byte) (Message, map[string]any, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	var root map[string]any
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Message{}, nil, fmt.Errorf("providers/wechat: parse message: %w", err)
		}
		if start, ok := token.(xml.StartElement); ok {
			value, err := decodeElement(decoder)
			if err != nil {
				return Message{}, nil, fmt.Errorf("providers/wechat: parse message: %w", err)
			}
			if fields, ok := value.(map[string]any); ok && start.Name.Local == "xml" {
				root = fields
			}
			break
		}
	}
	if root == nil {
		return Message{}, nil, fmt.Errorf("providers/wechat: parse message: missing <xml> root")
	}
	fields, _ := casing.Transform(root, casing.Camel).(map[string]any)
	raw, err := json.Marshal(fields)
	if err != nil {
		return Message{}, nil, fmt.Errorf("providers/wechat: parse message: %w", err)
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, nil, fmt.Errorf("providers/wechat: parse message: %w", err)
	}
	return msg, fields, nil
}

// decodeElement reads until the end of the current element. Leaf elements
// yield their text, others a map of their children.
func decodeElement(decoder *xml.Decoder) (any, error) {
	var text strings.Builder
	var children map[string]any
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		switch typed := token.(type) {
		case xml.CharData:
			text.Write(typed)
		case xml.StartElement:
			value, err := decodeElement(decoder)
			if err != nil {
				return nil, err
			}
			if children == nil {
				children = map[string]any{}
			}
			name := typed.Name.Local
			switch existing := children[name].(type) {
			case nil:
				children[name] = value
			case []any:
				children[name] = append(existing, value)
			default:
				children[name] = []any{existing, value}
			}
		case xml.EndElement:
			if children != nil {
				return children, nil
			}
			return strings.TrimSpace(text.String()), nil
		}
	}
}

// Reply keys whose PascalCase form is not a plain case conversion.
var replyKeys = map[string]string{
	"musicUrl":   "MusicURL",
	"musicURL":   "MusicURL",
	"hqMusicUrl": "HQMusicUrl",
}

// BuildTextReply renders a passive text reply from the account to a user.
func BuildTextReply(toUser string, fromUser string, content string, now time.Time) ([]byte, error) {
	return BuildReply(map[string]any{
		"toUserName":   toUser,
		"fromUserName": fromUser,
		"createTime":   now.Unix(),
		"msgType":      "text",
		"content":      content,
	})
}

// BuildReply renders fields, keyed in camelCase, as a passive reply <xml>
// document. Strings are wrapped in CDATA; slices repeat as <item> elements.
func BuildReply(fields map[string]any) ([]byte, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("providers/wechat: reply is empty")
	}
	var buf bytes.Buffer
	buf.WriteString("<xml>")
	if err := writeFields(&buf, fields); err != nil {
		return nil, err
	}
	buf.WriteString("</xml>")
	return buf.Bytes(), nil
}

func writeFields(buf *bytes.Buffer, fields map[string]any) error {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		name, ok := replyKeys[key]
		if !ok {
			name = casing.Key(key, casing.Pascal)
		}
		buf.WriteString("<" + name + ">")
		if err := writeValue(buf, fields[key]); err != nil {
			return fmt.Errorf("providers/wechat: reply field %s: %w", key, err)
		}
		buf.WriteString("</" + name + ">")
	}
	return nil
}

func writeValue(buf *bytes.Buffer, value any) error {
	switch typed := value.(type) {
	case nil:
	case string:
		writeCDATA(buf, typed)
	case int:
		buf.WriteString(strconv.Itoa(typed))
	case int64:
		buf.WriteString(strconv.FormatInt(typed, 10))
	case float64:
		buf.WriteString(strconv.FormatFloat(typed, 'f', -1, 64))
	case bool:
		buf.WriteString(strconv.FormatBool(typed))
	case map[string]any:
		return writeFields(buf, typed)
	case []map[string]any:
		for _, item := range typed {
			buf.WriteString("<item>")
			if err := writeFields(buf, item); err != nil {
				return err
			}
			buf.WriteString("</item>")
		}
	case []any:
		for _, item := range typed {
			buf.WriteString("<item>")
			if err := writeValue(buf, item); err != nil {
				return err
			}
			buf.WriteString("</item>")
		}
	default:
		return fmt.Errorf("unsupported value type %T", value)
	}
	return nil
}

func writeCDATA(buf *bytes.Buffer, value string) {
	buf.WriteString("<![CDATA[")
	buf.WriteString(strings.ReplaceAll(value, "]]>", "]]]]><![CDATA[>"))
	buf.WriteString("]]>")
}
