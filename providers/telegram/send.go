package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-messaging/core"
)

func (c *Client) SendMessage(ctx context.Context, chatID string, text string, opts Options) (Message, error) {
	if err := requireChat(chatID); err != nil {
		return Message{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Message{}, core.BadInput("providers/telegram: text is required", nil)
	}
	var out Message
	err := c.call(ctx, "sendMessage", params(opts, map[string]any{"chatId": chatID, "text": text}), &out)
	return out, err
}

func (c *Client) ForwardMessage(ctx context.Context, chatID string, fromChatID string, messageID int64, opts Options) (Message, error) {
	if err := requireChat(chatID); err != nil {
		return Message{}, err
	}
	var out Message
	err := c.call(ctx, "forwardMessage", params(opts, map[string]any{
		"chatId":     chatID,
		"fromChatId": fromChatID,
		"messageId":  messageID,
	}), &out)
	return out, err
}

// CopyMessage resends a message without the forward header and returns the
// new message id.
func (c *Client) CopyMessage(ctx context.Context, chatID string, fromChatID string, messageID int64, opts Options) (MessageID, error) {
	if err := requireChat(chatID); err != nil {
		return MessageID{}, err
	}
	var out MessageID
	err := c.call(ctx, "copyMessage", params(opts, map[string]any{
		"chatId":     chatID,
		"fromChatId": fromChatID,
		"messageId":  messageID,
	}), &out)
	return out, err
}

func (c *Client) SendPhoto(ctx context.Context, chatID string, photo InputFile, opts Options) (Message, error) {
	return c.sendFile(ctx, "sendPhoto", "photo", chatID, photo, opts)
}

func (c *Client) SendAudio(ctx context.Context, chatID string, audio InputFile, opts Options) (Message, error) {
	return c.sendFile(ctx, "sendAudio", "audio", chatID, audio, opts)
}

func (c *Client) SendDocument(ctx context.Context, chatID string, document InputFile, opts Options) (Message, error) {
	return c.sendFile(ctx, "sendDocument", "document", chatID, document, opts)
}

func (c *Client) SendVideo(ctx context.Context, chatID string, video InputFile, opts Options) (Message, error) {
	return c.sendFile(ctx, "sendVideo", "video", chatID, video, opts)
}

func (c *Client) SendAnimation(ctx context.Context, chatID string, animation InputFile, opts Options) (Message, error) {
	return c.sendFile(ctx, "sendAnimation", "animation", chatID, animation, opts)
}

func (c *Client) SendVoice(ctx context.Context, chatID string, voice InputFile, opts Options) (Message, error) {
	return c.sendFile(ctx, "sendVoice", "voice", chatID, voice, opts)
}

func (c *Client) SendVideoNote(ctx context.Context, chatID string, videoNote InputFile, opts Options) (Message, error) {
	return c.sendFile(ctx, "sendVideoNote", "videoNote", chatID, videoNote, opts)
}

func (c *Client) SendSticker(ctx context.Context, chatID string, sticker InputFile, opts Options) (Message, error) {
	return c.sendFile(ctx, "sendSticker", "sticker", chatID, sticker, opts)
}

func (c *Client) sendFile(ctx context.Context, method string, field string, chatID string, file InputFile, opts Options) (Message, error) {
	if err := requireChat(chatID); err != nil {
		return Message{}, err
	}
	if !file.isUpload() && file.reference() == "" {
		return Message{}, core.BadInput(fmt.Sprintf("providers/telegram: %s file is required", field), nil)
	}
	var out Message
	err := c.call(ctx, method, params(opts, map[string]any{"chatId": chatID, field: file}), &out)
	return out, err
}

// SendMediaGroup sends two to ten photos or videos as an album. Uploaded
// items are attached as extra multipart parts.
func (c *Client) SendMediaGroup(ctx context.Context, chatID string, media []InputMedia, opts Options) ([]Message, error) {
	if err := requireChat(chatID); err != nil {
		return nil, err
	}
	if len(media) < 2 || len(media) > 10 {
		return nil, core.BadInput("providers/telegram: media group takes two to ten items", map[string]any{"count": len(media)})
	}
	items := make([]InputMedia, len(media))
	var uploads []uploadPart
	for i, item := range media {
		if item.Media.isUpload() {
			field := "file" + strconv.Itoa(i)
			item.Media.attach = field
			uploads = append(uploads, uploadPart{field: field, file: item.Media})
		}
		items[i] = item
	}
	payload := params(opts, map[string]any{"chatId": chatID, "media": items})
	if len(uploads) > 0 {
		payload["_uploads"] = uploads
	}
	var out []Message
	err := c.call(ctx, "sendMediaGroup", payload, &out)
	return out, err
}

func (c *Client) SendLocation(ctx context.Context, chatID string, latitude float64, longitude float64, opts Options) (Message, error) {
	if err := requireChat(chatID); err != nil {
		return Message{}, err
	}
	var out Message
	err := c.call(ctx, "sendLocation", params(opts, map[string]any{
		"chatId":    chatID,
		"latitude":  latitude,
		"longitude": longitude,
	}), &out)
	return out, err
}

func (c *Client) SendVenue(ctx context.Context, chatID string, latitude float64, longitude float64, title string, address string, opts Options) (Message, error) {
	if err := requireChat(chatID); err != nil {
		return Message{}, err
	}
	var out Message
	err := c.call(ctx, "sendVenue", params(opts, map[string]any{
		"chatId":    chatID,
		"latitude":  latitude,
		"longitude": longitude,
		"title":     title,
		"address":   address,
	}), &out)
	return out, err
}

func (c *Client) SendContact(ctx context.Context, chatID string, phoneNumber string, firstName string, opts Options) (Message, error) {
	if err := requireChat(chatID); err != nil {
		return Message{}, err
	}
	var out Message
	err := c.call(ctx, "sendContact", params(opts, map[string]any{
		"chatId":      chatID,
		"phoneNumber": phoneNumber,
		"firstName":   firstName,
	}), &out)
	return out, err
}

func (c *Client) SendPoll(ctx context.Context, chatID string, question string, options []string, opts Options) (Message, error) {
	if err := requireChat(chatID); err != nil {
		return Message{}, err
	}
	if len(options) < 2 || len(options) > 10 {
		return Message{}, core.BadInput("providers/telegram: poll takes two to ten options", map[string]any{"count": len(options)})
	}
	var out Message
	err := c.call(ctx, "sendPoll", params(opts, map[string]any{
		"chatId":   chatID,
		"question": question,
		"options":  options,
	}), &out)
	return out, err
}

func (c *Client) SendDice(ctx context.Context, chatID string, opts Options) (Message, error) {
	if err := requireChat(chatID); err != nil {
		return Message{}, err
	}
	var out Message
	err := c.call(ctx, "sendDice", params(opts, map[string]any{"chatId": chatID}), &out)
	return out, err
}

func (c *Client) SendChatAction(ctx context.Context, chatID string, action string) (bool, error) {
	if err := requireChat(chatID); err != nil {
		return false, err
	}
	var out bool
	err := c.call(ctx, "sendChatAction", map[string]any{"chatId": chatID, "action": action}, &out)
	return out, err
}

func (c *Client) SendPlainText(ctx context.Context, to string, text string) (core.DeliveryReceipt, error) {
	msg, err := c.SendMessage(ctx, to, text, nil)
	if err != nil {
		return core.DeliveryReceipt{}, err
	}
	return core.DeliveryReceipt{
		ProviderID: core.ProviderTelegram,
		Recipient:  to,
		MessageID:  strconv.FormatInt(msg.MessageID, 10),
		SentAt:     c.now(),
		Metadata:   map[string]any{"chat_id": msg.Chat.ID},
	}, nil
}
