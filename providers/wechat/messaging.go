package wechat

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-messaging/core"
)

// Wire keys such as touser and msgtype have no separators, so they are
// tagged as is; multi-word keys are camelCase and rewritten to snake_case.

type Article struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	PicURL      string `json:"picurl,omitempty"`
}

type Music struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	MusicURL     string `json:"musicurl"`
	HQMusicURL   string `json:"hqmusicurl"`
	ThumbMediaID string `json:"thumbMediaId"`
}

type Video struct {
	MediaID      string `json:"mediaId"`
	ThumbMediaID string `json:"thumbMediaId,omitempty"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
}

type MenuOption struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type MsgMenu struct {
	HeadContent string       `json:"headContent,omitempty"`
	List        []MenuOption `json:"list"`
	TailContent string       `json:"tailContent,omitempty"`
}

type MiniProgramPage struct {
	Title        string `json:"title"`
	AppID        string `json:"appid"`
	PagePath     string `json:"pagepath"`
	ThumbMediaID string `json:"thumbMediaId"`
}

// SendOptions carries the optional customer service account.
type SendOptions struct {
	KfAccount string
}

// SendRawBody posts body to /message/custom/send after the snake_case key
// rewrite.
func (c *Client) SendRawBody(ctx context.Context, body map[string]any) error {
	return c.do(ctx, core.Request{
		Operation: "send_custom_message",
		Method:    http.MethodPost,
		Path:      "/message/custom/send",
		Body:      body,
	}, nil)
}

func (c *Client) send(ctx context.Context, openID string, msgType string, payload any, opts SendOptions) error {
	if strings.TrimSpace(openID) == "" {
		return core.BadInput("providers/wechat: open id is required", map[string]any{"field": "touser"})
	}
	body := map[string]any{
		"touser":  openID,
		"msgtype": msgType,
		msgType:   payload,
	}
	if account := strings.TrimSpace(opts.KfAccount); account != "" {
		body["customservice"] = map[string]any{"kfAccount": account}
	}
	return c.SendRawBody(ctx, body)
}

func (c *Client) SendText(ctx context.Context, openID string, text string, opts SendOptions) error {
	if strings.TrimSpace(text) == "" {
		return core.BadInput("providers/wechat: text is required", nil)
	}
	return c.send(ctx, openID, "text", map[string]any{"content": text}, opts)
}

func (c *Client) SendImage(ctx context.Context, openID string, mediaID string, opts SendOptions) error {
	return c.send(ctx, openID, "image", map[string]any{"mediaId": mediaID}, opts)
}

func (c *Client) SendVoice(ctx context.Context, openID string, mediaID string, opts SendOptions) error {
	return c.send(ctx, openID, "voice", map[string]any{"mediaId": mediaID}, opts)
}

func (c *Client) SendVideo(ctx context.Context, openID string, video Video, opts SendOptions) error {
	return c.send(ctx, openID, "video", video, opts)
}

func (c *Client) SendMusic(ctx context.Context, openID string, music Music, opts SendOptions) error {
	return c.send(ctx, openID, "music", music, opts)
}

// SendNews sends a single external article card.
func (c *Client) SendNews(ctx context.Context, openID string, articles []Article, opts SendOptions) error {
	if len(articles) != 1 {
		return core.BadInput("providers/wechat: news takes exactly one article", map[string]any{"count": len(articles)})
	}
	return c.send(ctx, openID, "news", map[string]any{"articles": articles}, opts)
}

func (c *Client) SendMPNews(ctx context.Context, openID string, mediaID string, opts SendOptions) error {
	return c.send(ctx, openID, "mpnews", map[string]any{"mediaId": mediaID}, opts)
}

func (c *Client) SendMsgMenu(ctx context.Context, openID string, menu MsgMenu, opts SendOptions) error {
	if len(menu.List) == 0 {
		return core.BadInput("providers/wechat: menu needs at least one option", nil)
	}
	return c.send(ctx, openID, "msgmenu", menu, opts)
}

func (c *Client) SendWXCard(ctx context.Context, openID string, cardID string, opts SendOptions) error {
	return c.send(ctx, openID, "wxcard", map[string]any{"cardId": cardID}, opts)
}

func (c *Client) SendMiniProgramPage(ctx context.Context, openID string, page MiniProgramPage, opts SendOptions) error {
	return c.send(ctx, openID, "miniprogrampage", page, opts)
}

func (c *Client) TypingOn(ctx context.Context, openID string) error {
	return c.typing(ctx, openID, "Typing")
}

func (c *Client) TypingOff(ctx context.Context, openID string) error {
	return c.typing(ctx, openID, "CancelTyping")
}

func (c *Client) typing(ctx context.Context, openID string, command string) error {
	if strings.TrimSpace(openID) == "" {
		return core.BadInput("providers/wechat: open id is required", map[string]any{"field": "touser"})
	}
	return c.do(ctx, core.Request{
		Operation: "custom_typing",
		Method:    http.MethodPost,
		Path:      "/message/custom/typing",
		Body:      map[string]any{"touser": openID, "command": command},
	}, nil)
}

// SendPlainText sends a customer service text message. WeChat returns no
// message id for these.
func (c *Client) SendPlainText(ctx context.Context, to string, text string) (core.DeliveryReceipt, error) {
	if err := c.SendText(ctx, to, text, SendOptions{}); err != nil {
		return core.DeliveryReceipt{}, err
	}
	return core.DeliveryReceipt{
		ProviderID: core.ProviderWeChat,
		Recipient:  to,
		SentAt:     c.now(),
	}, nil
}
