package viber

import (
	"context"
	"strconv"
	"strings"

	"github.com/goliatone/go-messaging/core"
)

type webhookRequest struct {
	URL        string   `json:"url"`
	EventTypes []string `json:"eventTypes,omitempty"`
	SendName   bool     `json:"sendName,omitempty"`
	SendPhoto  bool     `json:"sendPhoto,omitempty"`
}

type WebhookResponse struct {
	Status        int      `json:"status"`
	StatusMessage string   `json:"statusMessage"`
	EventTypes    []string `json:"eventTypes,omitempty"`
}

// SetWebhook registers url. Viber calls it once with a "webhook" event
// before accepting it.
func (c *Client) SetWebhook(ctx context.Context, url string, eventTypes []string, sendName bool, sendPhoto bool) (WebhookResponse, error) {
	if err := requireID("webhook url", url); err != nil {
		return WebhookResponse{}, err
	}
	var out WebhookResponse
	err := c.post(ctx, "set_webhook", "/set_webhook", webhookRequest{
		URL:        url,
		EventTypes: eventTypes,
		SendName:   sendName,
		SendPhoto:  sendPhoto,
	}, &out)
	return out, err
}

func (c *Client) RemoveWebhook(ctx context.Context) (WebhookResponse, error) {
	var out WebhookResponse
	err := c.post(ctx, "remove_webhook", "/set_webhook", webhookRequest{}, &out)
	return out, err
}

type sendRequest struct {
	Receiver      string   `json:"receiver,omitempty"`
	BroadcastList []string `json:"broadcastList,omitempty"`
	Message
}

// SendMessage delivers msg to receiver. The configured sender is used when
// msg has none.
func (c *Client) SendMessage(ctx context.Context, receiver string, msg Message) (SendResponse, error) {
	if err := requireID("receiver", receiver); err != nil {
		return SendResponse{}, err
	}
	msg, err := c.prepare(msg)
	if err != nil {
		return SendResponse{}, err
	}
	var out SendResponse
	err = c.post(ctx, "send_message", "/send_message", sendRequest{Receiver: receiver, Message: msg}, &out)
	return out, err
}

// BroadcastMessage sends msg to at most 300 subscribers in one call.
func (c *Client) BroadcastMessage(ctx context.Context, receivers []string, msg Message) (BroadcastResponse, error) {
	if len(receivers) == 0 || len(receivers) > maxBroadcastReceivers {
		return BroadcastResponse{}, core.BadInput("providers/viber: broadcast takes one to 300 receivers", map[string]any{"count": len(receivers)})
	}
	msg, err := c.prepare(msg)
	if err != nil {
		return BroadcastResponse{}, err
	}
	var out BroadcastResponse
	err = c.post(ctx, "broadcast_message", "/broadcast_message", sendRequest{BroadcastList: receivers, Message: msg}, &out)
	return out, err
}

func (c *Client) prepare(msg Message) (Message, error) {
	if strings.TrimSpace(msg.Type) == "" {
		return Message{}, core.BadInput("providers/viber: message type is required", nil)
	}
	if msg.Sender == nil {
		sender := c.sender
		msg.Sender = &sender
	}
	if strings.TrimSpace(msg.Sender.Name) == "" {
		return Message{}, core.BadInput("providers/viber: sender name is required", nil)
	}
	return msg, nil
}

func (c *Client) SendText(ctx context.Context, receiver string, text string) (SendResponse, error) {
	return c.SendMessage(ctx, receiver, Message{Type: MessageText, Text: text})
}

func (c *Client) SendPicture(ctx context.Context, receiver string, media string, text string, thumbnail string) (SendResponse, error) {
	return c.SendMessage(ctx, receiver, Message{Type: MessagePicture, Media: media, Text: text, Thumbnail: thumbnail})
}

func (c *Client) SendVideo(ctx context.Context, receiver string, media string, size int64, duration int, thumbnail string) (SendResponse, error) {
	return c.SendMessage(ctx, receiver, Message{Type: MessageVideo, Media: media, Size: size, Duration: duration, Thumbnail: thumbnail})
}

func (c *Client) SendFile(ctx context.Context, receiver string, media string, size int64, fileName string) (SendResponse, error) {
	return c.SendMessage(ctx, receiver, Message{Type: MessageFile, Media: media, Size: size, FileName: fileName})
}

func (c *Client) SendContact(ctx context.Context, receiver string, contact Contact) (SendResponse, error) {
	return c.SendMessage(ctx, receiver, Message{Type: MessageContact, Contact: &contact})
}

func (c *Client) SendLocation(ctx context.Context, receiver string, location Location) (SendResponse, error) {
	return c.SendMessage(ctx, receiver, Message{Type: MessageLocation, Location: &location})
}

func (c *Client) SendURL(ctx context.Context, receiver string, url string) (SendResponse, error) {
	return c.SendMessage(ctx, receiver, Message{Type: MessageURL, Media: url})
}

func (c *Client) SendSticker(ctx context.Context, receiver string, stickerID int64) (SendResponse, error) {
	return c.SendMessage(ctx, receiver, Message{Type: MessageSticker, StickerID: stickerID})
}

// SendCarouselContent sends a rich media carousel. richMedia uses Viber's
// PascalCase keys and is sent as given.
func (c *Client) SendCarouselContent(ctx context.Context, receiver string, richMedia map[string]any, altText string) (SendResponse, error) {
	return c.SendMessage(ctx, receiver, Message{Type: MessageRich, MinAPIVersion: 2, RichMedia: richMedia, AltText: altText})
}

func (c *Client) GetAccountInfo(ctx context.Context) (AccountInfo, error) {
	var out AccountInfo
	err := c.post(ctx, "get_account_info", "/get_account_info", map[string]any{}, &out)
	return out, err
}

func (c *Client) GetUserDetails(ctx context.Context, id string) (UserDetails, error) {
	if err := requireID("user id", id); err != nil {
		return UserDetails{}, err
	}
	var out struct {
		User UserDetails `json:"user"`
	}
	err := c.post(ctx, "get_user_details", "/get_user_details", map[string]any{"id": id}, &out)
	return out.User, err
}

// GetOnlineStatus queries at most 100 users.
func (c *Client) GetOnlineStatus(ctx context.Context, ids []string) ([]OnlineStatus, error) {
	if len(ids) == 0 || len(ids) > maxOnlineStatusIDs {
		return nil, core.BadInput("providers/viber: online status takes one to 100 ids", map[string]any{"count": len(ids)})
	}
	var out struct {
		Users []OnlineStatus `json:"users"`
	}
	err := c.post(ctx, "get_online", "/get_online", map[string]any{"ids": ids}, &out)
	return out.Users, err
}

func (c *Client) SendPlainText(ctx context.Context, to string, text string) (core.DeliveryReceipt, error) {
	res, err := c.SendText(ctx, to, text)
	if err != nil {
		return core.DeliveryReceipt{}, err
	}
	return core.DeliveryReceipt{
		ProviderID: core.ProviderViber,
		Recipient:  to,
		MessageID:  strconv.FormatInt(res.MessageToken, 10),
		SentAt:     c.now(),
	}, nil
}

func (c *Client) GetProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	user, err := c.GetUserDetails(ctx, userID)
	if err != nil {
		return core.UserProfile{}, err
	}
	return core.UserProfile{
		ProviderID:  core.ProviderViber,
		UserID:      firstNonEmpty(user.ID, userID),
		DisplayName: user.Name,
		PictureURL:  user.Avatar,
		Language:    user.Language,
		Metadata:    map[string]any{"country": user.Country},
	}, nil
}
