package messenger

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-messaging/core"
)

type sendRequest struct {
	Recipient        Recipient `json:"recipient"`
	Message          *Message  `json:"message,omitempty"`
	SenderAction     string    `json:"senderAction,omitempty"`
	MessagingType    string    `json:"messagingType,omitempty"`
	Tag              string    `json:"tag,omitempty"`
	PersonaID        string    `json:"personaId,omitempty"`
	NotificationType string    `json:"notificationType,omitempty"`
}

// SendRawBody posts body to /me/messages as is, after the snake_case key
// rewrite.
func (c *Client) SendRawBody(ctx context.Context, body map[string]any) (SendResponse, error) {
	var out SendResponse
	err := c.do(ctx, core.Request{
		Operation: "send_message",
		Method:    http.MethodPost,
		Path:      "/me/messages",
		Body:      body,
	}, &out)
	return out, err
}

func (c *Client) SendMessage(ctx context.Context, recipient Recipient, msg Message, opts SendOptions) (SendResponse, error) {
	if recipient == (Recipient{}) {
		return SendResponse{}, core.BadInput("providers/messenger: recipient is required", nil)
	}
	if strings.TrimSpace(msg.Text) == "" && msg.Attachment == nil {
		return SendResponse{}, core.BadInput("providers/messenger: message text or attachment is required", nil)
	}
	if len(opts.QuickReplies) > 0 {
		msg.QuickReplies = append(append([]QuickReply(nil), msg.QuickReplies...), opts.QuickReplies...)
	}
	req := sendRequest{
		Recipient:        recipient,
		Message:          &msg,
		MessagingType:    resolveMessagingType(opts),
		Tag:              strings.TrimSpace(opts.Tag),
		PersonaID:        strings.TrimSpace(opts.PersonaID),
		NotificationType: strings.TrimSpace(opts.NotificationType),
	}
	var out SendResponse
	err := c.do(ctx, core.Request{
		Operation: "send_message",
		Method:    http.MethodPost,
		Path:      "/me/messages",
		Body:      req,
	}, &out)
	return out, err
}

func resolveMessagingType(opts SendOptions) string {
	if messagingType := strings.ToUpper(strings.TrimSpace(opts.MessagingType)); messagingType != "" {
		return messagingType
	}
	if strings.TrimSpace(opts.Tag) != "" {
		return MessagingTypeMessageTag
	}
	return MessagingTypeResponse
}

func (c *Client) SendText(ctx context.Context, psid string, text string, opts SendOptions) (SendResponse, error) {
	return c.SendMessage(ctx, PSID(psid), Message{Text: text}, opts)
}

func (c *Client) SendAttachment(ctx context.Context, psid string, attachment Attachment, opts SendOptions) (SendResponse, error) {
	return c.SendMessage(ctx, PSID(psid), Message{Attachment: &attachment}, opts)
}

func (c *Client) SendImage(ctx context.Context, psid string, url string, opts SendOptions) (SendResponse, error) {
	return c.SendAttachment(ctx, psid, mediaAttachment(AttachmentImage, url), opts)
}

func (c *Client) SendAudio(ctx context.Context, psid string, url string, opts SendOptions) (SendResponse, error) {
	return c.SendAttachment(ctx, psid, mediaAttachment(AttachmentAudio, url), opts)
}

func (c *Client) SendVideo(ctx context.Context, psid string, url string, opts SendOptions) (SendResponse, error) {
	return c.SendAttachment(ctx, psid, mediaAttachment(AttachmentVideo, url), opts)
}

func (c *Client) SendFile(ctx context.Context, psid string, url string, opts SendOptions) (SendResponse, error) {
	return c.SendAttachment(ctx, psid, mediaAttachment(AttachmentFile, url), opts)
}

func (c *Client) SendTemplate(ctx context.Context, psid string, payload map[string]any, opts SendOptions) (SendResponse, error) {
	return c.SendAttachment(ctx, psid, Attachment{Type: AttachmentTemplate, Payload: payload}, opts)
}

func (c *Client) SendGenericTemplate(ctx context.Context, psid string, elements []TemplateElement, opts SendOptions) (SendResponse, error) {
	if len(elements) == 0 {
		return SendResponse{}, core.BadInput("providers/messenger: generic template needs at least one element", nil)
	}
	return c.SendTemplate(ctx, psid, map[string]any{
		"templateType": "generic",
		"elements":     elements,
	}, opts)
}

func (c *Client) SendButtonTemplate(ctx context.Context, psid string, text string, buttons []Button, opts SendOptions) (SendResponse, error) {
	if len(buttons) == 0 || len(buttons) > 3 {
		return SendResponse{}, core.BadInput("providers/messenger: button template takes one to three buttons", map[string]any{"count": len(buttons)})
	}
	return c.SendTemplate(ctx, psid, map[string]any{
		"templateType": "button",
		"text":         text,
		"buttons":      buttons,
	}, opts)
}

func (c *Client) SendMediaTemplate(ctx context.Context, psid string, elements []MediaElement, opts SendOptions) (SendResponse, error) {
	if len(elements) != 1 {
		return SendResponse{}, core.BadInput("providers/messenger: media template takes exactly one element", map[string]any{"count": len(elements)})
	}
	return c.SendTemplate(ctx, psid, map[string]any{
		"templateType": "media",
		"elements":     elements,
	}, opts)
}

func (c *Client) SendReceiptTemplate(ctx context.Context, psid string, receipt ReceiptTemplate, opts SendOptions) (SendResponse, error) {
	payload := map[string]any{"templateType": "receipt"}
	if err := mergeStruct(payload, receipt); err != nil {
		return SendResponse{}, err
	}
	return c.SendTemplate(ctx, psid, payload, opts)
}

func (c *Client) SendSenderAction(ctx context.Context, psid string, action string) (SendResponse, error) {
	if strings.TrimSpace(psid) == "" {
		return SendResponse{}, core.BadInput("providers/messenger: recipient is required", nil)
	}
	var out SendResponse
	err := c.do(ctx, core.Request{
		Operation: "send_sender_action",
		Method:    http.MethodPost,
		Path:      "/me/messages",
		Body:      sendRequest{Recipient: PSID(psid), SenderAction: action},
	}, &out)
	return out, err
}

func (c *Client) MarkSeen(ctx context.Context, psid string) (SendResponse, error) {
	return c.SendSenderAction(ctx, psid, SenderActionMarkSeen)
}

func (c *Client) TypingOn(ctx context.Context, psid string) (SendResponse, error) {
	return c.SendSenderAction(ctx, psid, SenderActionTypingOn)
}

func (c *Client) TypingOff(ctx context.Context, psid string) (SendResponse, error) {
	return c.SendSenderAction(ctx, psid, SenderActionTypingOff)
}

// UploadAttachment stores an attachment from url and returns its id for
// later sends.
func (c *Client) UploadAttachment(ctx context.Context, attachmentType string, url string, reusable bool) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", core.BadInput("providers/messenger: attachment url is required", nil)
	}
	body := map[string]any{
		"message": map[string]any{
			"attachment": map[string]any{
				"type": attachmentType,
				"payload": map[string]any{
					"url":        url,
					"isReusable": reusable,
				},
			},
		},
	}
	var out SendResponse
	err := c.do(ctx, core.Request{
		Operation: "upload_attachment",
		Method:    http.MethodPost,
		Path:      "/me/message_attachments",
		Body:      body,
	}, &out)
	return out.AttachmentID, err
}

// SendPlainText sends a RESPONSE text message to a PSID.
func (c *Client) SendPlainText(ctx context.Context, to string, text string) (core.DeliveryReceipt, error) {
	res, err := c.SendText(ctx, to, text, SendOptions{})
	if err != nil {
		return core.DeliveryReceipt{}, err
	}
	return core.DeliveryReceipt{
		ProviderID: core.ProviderMessenger,
		Recipient:  firstNonEmpty(res.RecipientID, to),
		MessageID:  res.MessageID,
		SentAt:     c.now(),
	}, nil
}

func mediaAttachment(attachmentType string, url string) Attachment {
	return Attachment{Type: attachmentType, Payload: map[string]any{"url": url}}
}
