package telegram

import (
	"context"
	"strconv"
	"strings"

	"github.com/goliatone/go-messaging/core"
)

func (c *Client) BanChatMember(ctx context.Context, chatID string, userID int64, opts Options) (bool, error) {
	return c.memberCall(ctx, "banChatMember", chatID, userID, opts)
}

func (c *Client) UnbanChatMember(ctx context.Context, chatID string, userID int64, opts Options) (bool, error) {
	return c.memberCall(ctx, "unbanChatMember", chatID, userID, opts)
}

func (c *Client) RestrictChatMember(ctx context.Context, chatID string, userID int64, permissions ChatPermissions, opts Options) (bool, error) {
	opts = params(opts, map[string]any{"permissions": permissions})
	return c.memberCall(ctx, "restrictChatMember", chatID, userID, opts)
}

// PromoteChatMember grants admin rights given in opts, e.g.
// Options{"canPinMessages": true}.
func (c *Client) PromoteChatMember(ctx context.Context, chatID string, userID int64, opts Options) (bool, error) {
	return c.memberCall(ctx, "promoteChatMember", chatID, userID, opts)
}

func (c *Client) memberCall(ctx context.Context, method string, chatID string, userID int64, opts Options) (bool, error) {
	if err := requireChat(chatID); err != nil {
		return false, err
	}
	if userID == 0 {
		return false, core.BadInput("providers/telegram: user id is required", map[string]any{"field": "user_id"})
	}
	var out bool
	err := c.call(ctx, method, params(opts, map[string]any{"chatId": chatID, "userId": userID}), &out)
	return out, err
}

func (c *Client) ExportChatInviteLink(ctx context.Context, chatID string) (string, error) {
	var out string
	err := c.chatCall(ctx, "exportChatInviteLink", chatID, nil, &out)
	return out, err
}

func (c *Client) SetChatTitle(ctx context.Context, chatID string, title string) (bool, error) {
	if strings.TrimSpace(title) == "" {
		return false, core.BadInput("providers/telegram: title is required", nil)
	}
	var out bool
	err := c.chatCall(ctx, "setChatTitle", chatID, Options{"title": title}, &out)
	return out, err
}

func (c *Client) SetChatDescription(ctx context.Context, chatID string, description string) (bool, error) {
	var out bool
	err := c.chatCall(ctx, "setChatDescription", chatID, Options{"description": description}, &out)
	return out, err
}

func (c *Client) PinChatMessage(ctx context.Context, chatID string, messageID int64, opts Options) (bool, error) {
	var out bool
	err := c.chatCall(ctx, "pinChatMessage", chatID, params(opts, map[string]any{"messageId": messageID}), &out)
	return out, err
}

// UnpinChatMessage unpins opts' messageId, or the most recent pin when
// none is given.
func (c *Client) UnpinChatMessage(ctx context.Context, chatID string, opts Options) (bool, error) {
	var out bool
	err := c.chatCall(ctx, "unpinChatMessage", chatID, opts, &out)
	return out, err
}

func (c *Client) UnpinAllChatMessages(ctx context.Context, chatID string) (bool, error) {
	var out bool
	err := c.chatCall(ctx, "unpinAllChatMessages", chatID, nil, &out)
	return out, err
}

func (c *Client) LeaveChat(ctx context.Context, chatID string) (bool, error) {
	var out bool
	err := c.chatCall(ctx, "leaveChat", chatID, nil, &out)
	return out, err
}

func (c *Client) GetChat(ctx context.Context, chatID string) (Chat, error) {
	var out Chat
	err := c.chatCall(ctx, "getChat", chatID, nil, &out)
	return out, err
}

func (c *Client) GetChatAdministrators(ctx context.Context, chatID string) ([]ChatMember, error) {
	var out []ChatMember
	err := c.chatCall(ctx, "getChatAdministrators", chatID, nil, &out)
	return out, err
}

func (c *Client) GetChatMemberCount(ctx context.Context, chatID string) (int, error) {
	var out int
	err := c.chatCall(ctx, "getChatMemberCount", chatID, nil, &out)
	return out, err
}

func (c *Client) GetChatMember(ctx context.Context, chatID string, userID int64) (ChatMember, error) {
	var out ChatMember
	err := c.chatCall(ctx, "getChatMember", chatID, Options{"userId": userID}, &out)
	return out, err
}

func (c *Client) chatCall(ctx context.Context, method string, chatID string, opts Options, out any) error {
	if err := requireChat(chatID); err != nil {
		return err
	}
	return c.call(ctx, method, params(opts, map[string]any{"chatId": chatID}), out)
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID string, opts Options) (bool, error) {
	if strings.TrimSpace(callbackQueryID) == "" {
		return false, core.BadInput("providers/telegram: callback query id is required", nil)
	}
	var out bool
	err := c.call(ctx, "answerCallbackQuery", params(opts, map[string]any{"callbackQueryId": callbackQueryID}), &out)
	return out, err
}

// AnswerInlineQuery answers with at most 50 results.
func (c *Client) AnswerInlineQuery(ctx context.Context, inlineQueryID string, results []any, opts Options) (bool, error) {
	if strings.TrimSpace(inlineQueryID) == "" {
		return false, core.BadInput("providers/telegram: inline query id is required", nil)
	}
	if len(results) > 50 {
		return false, core.BadInput("providers/telegram: at most 50 inline results are allowed", map[string]any{"count": len(results)})
	}
	if results == nil {
		results = []any{}
	}
	var out bool
	err := c.call(ctx, "answerInlineQuery", params(opts, map[string]any{
		"inlineQueryId": inlineQueryID,
		"results":       results,
	}), &out)
	return out, err
}

// GetProfile resolves a private chat into a profile.
func (c *Client) GetProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	chat, err := c.GetChat(ctx, userID)
	if err != nil {
		return core.UserProfile{}, err
	}
	name := strings.TrimSpace(chat.FirstName + " " + chat.LastName)
	profile := core.UserProfile{
		ProviderID:  core.ProviderTelegram,
		UserID:      strconv.FormatInt(chat.ID, 10),
		DisplayName: firstNonEmpty(name, chat.Title, chat.Username),
		Metadata:    map[string]any{"chat_type": chat.Type},
	}
	if chat.Username != "" {
		profile.Metadata["username"] = chat.Username
	}
	return profile, nil
}
