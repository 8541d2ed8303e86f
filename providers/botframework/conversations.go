package botframework

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-messaging/core"
)

type ResourceResponse struct {
	ID string `json:"id"`
}

type ConversationParameters struct {
	IsGroup     bool             `json:"isGroup,omitempty"`
	Bot         *ChannelAccount  `json:"bot,omitempty"`
	Members     []ChannelAccount `json:"members,omitempty"`
	TopicName   string           `json:"topicName,omitempty"`
	TenantID    string           `json:"tenantId,omitempty"`
	Activity    *Activity        `json:"activity,omitempty"`
	ChannelData any              `json:"channelData,omitempty"`
}

type ConversationResourceResponse struct {
	ActivityID string `json:"activityId,omitempty"`
	ServiceURL string `json:"serviceUrl,omitempty"`
	ID         string `json:"id"`
}

// SendToConversation appends activity to the end of a conversation.
func (c *Client) SendToConversation(ctx context.Context, serviceURL string, conversationID string, activity Activity) (ResourceResponse, error) {
	return c.postActivity(ctx, "send_to_conversation", serviceURL, conversationID, "", activity)
}

// ReplyToActivity posts activity as a reply to activityID.
func (c *Client) ReplyToActivity(ctx context.Context, serviceURL string, conversationID string, activityID string, activity Activity) (ResourceResponse, error) {
	if strings.TrimSpace(activityID) == "" {
		return ResourceResponse{}, core.BadInput("providers/botframework: activity id is required", map[string]any{"field": "activity_id"})
	}
	activity.ReplyToID = firstNonEmpty(activity.ReplyToID, activityID)
	return c.postActivity(ctx, "reply_to_activity", serviceURL, conversationID, activityID, activity)
}

func (c *Client) postActivity(ctx context.Context, operation string, serviceURL string, conversationID string, activityID string, activity Activity) (ResourceResponse, error) {
	origin, err := requireServiceURL(serviceURL)
	if err != nil {
		return ResourceResponse{}, err
	}
	rest := []string{"activities"}
	if activityID != "" {
		rest = append(rest, activityID)
	}
	path, err := conversationPath(conversationID, rest...)
	if err != nil {
		return ResourceResponse{}, err
	}
	var out ResourceResponse
	err = c.do(ctx, core.Request{
		Operation: operation,
		Method:    http.MethodPost,
		Origin:    origin,
		Path:      path,
		Body:      prepareActivity(activity),
	}, &out)
	return out, err
}

func (c *Client) UpdateActivity(ctx context.Context, serviceURL string, conversationID string, activityID string, activity Activity) (ResourceResponse, error) {
	origin, err := requireServiceURL(serviceURL)
	if err != nil {
		return ResourceResponse{}, err
	}
	if strings.TrimSpace(activityID) == "" {
		return ResourceResponse{}, core.BadInput("providers/botframework: activity id is required", map[string]any{"field": "activity_id"})
	}
	path, err := conversationPath(conversationID, "activities", activityID)
	if err != nil {
		return ResourceResponse{}, err
	}
	activity.ID = activityID
	var out ResourceResponse
	err = c.do(ctx, core.Request{
		Operation: "update_activity",
		Method:    http.MethodPut,
		Origin:    origin,
		Path:      path,
		Body:      prepareActivity(activity),
	}, &out)
	return out, err
}

func (c *Client) DeleteActivity(ctx context.Context, serviceURL string, conversationID string, activityID string) error {
	origin, err := requireServiceURL(serviceURL)
	if err != nil {
		return err
	}
	if strings.TrimSpace(activityID) == "" {
		return core.BadInput("providers/botframework: activity id is required", map[string]any{"field": "activity_id"})
	}
	path, err := conversationPath(conversationID, "activities", activityID)
	if err != nil {
		return err
	}
	return c.do(ctx, core.Request{
		Operation: "delete_activity",
		Method:    http.MethodDelete,
		Origin:    origin,
		Path:      path,
	}, nil)
}

func (c *Client) CreateConversation(ctx context.Context, serviceURL string, params ConversationParameters) (ConversationResourceResponse, error) {
	origin, err := requireServiceURL(serviceURL)
	if err != nil {
		return ConversationResourceResponse{}, err
	}
	if len(params.Members) == 0 {
		return ConversationResourceResponse{}, core.BadInput("providers/botframework: at least one member is required", nil)
	}
	if params.Bot == nil {
		params.Bot = &ChannelAccount{ID: c.appID}
	}
	if params.Activity != nil {
		prepared := prepareActivity(*params.Activity)
		params.Activity = &prepared
	}
	var out ConversationResourceResponse
	err = c.do(ctx, core.Request{
		Operation: "create_conversation",
		Method:    http.MethodPost,
		Origin:    origin,
		Path:      "/v3/conversations",
		Body:      params,
	}, &out)
	return out, err
}

func (c *Client) GetConversationMembers(ctx context.Context, serviceURL string, conversationID string) ([]ChannelAccount, error) {
	return c.members(ctx, "get_conversation_members", serviceURL, conversationID, "members")
}

func (c *Client) GetActivityMembers(ctx context.Context, serviceURL string, conversationID string, activityID string) ([]ChannelAccount, error) {
	if strings.TrimSpace(activityID) == "" {
		return nil, core.BadInput("providers/botframework: activity id is required", map[string]any{"field": "activity_id"})
	}
	return c.members(ctx, "get_activity_members", serviceURL, conversationID, "activities", activityID, "members")
}

func (c *Client) members(ctx context.Context, operation string, serviceURL string, conversationID string, rest ...string) ([]ChannelAccount, error) {
	origin, err := requireServiceURL(serviceURL)
	if err != nil {
		return nil, err
	}
	path, err := conversationPath(conversationID, rest...)
	if err != nil {
		return nil, err
	}
	var out []ChannelAccount
	err = c.do(ctx, core.Request{
		Operation: operation,
		Method:    http.MethodGet,
		Origin:    origin,
		Path:      path,
	}, &out)
	return out, err
}

// SendText sends a plain message activity to a conversation.
func (c *Client) SendText(ctx context.Context, serviceURL string, conversationID string, text string) (ResourceResponse, error) {
	if strings.TrimSpace(text) == "" {
		return ResourceResponse{}, core.BadInput("providers/botframework: text is required", nil)
	}
	return c.SendToConversation(ctx, serviceURL, conversationID, Activity{
		Type:       ActivityMessage,
		Text:       text,
		TextFormat: TextFormatPlain,
	})
}

// Reply answers incoming with a text message. From and recipient are
// swapped and the reply is threaded under incoming.ID when it has one.
func (c *Client) Reply(ctx context.Context, incoming Activity, text string) (ResourceResponse, error) {
	reply := NewReply(incoming, text)
	conversationID := ""
	if incoming.Conversation != nil {
		conversationID = incoming.Conversation.ID
	}
	if incoming.ID == "" {
		return c.SendToConversation(ctx, incoming.ServiceURL, conversationID, reply)
	}
	return c.ReplyToActivity(ctx, incoming.ServiceURL, conversationID, incoming.ID, reply)
}

// NewReply builds a message activity answering incoming.
func NewReply(incoming Activity, text string) Activity {
	return Activity{
		Type:         ActivityMessage,
		ChannelID:    incoming.ChannelID,
		ServiceURL:   incoming.ServiceURL,
		From:         incoming.Recipient,
		Recipient:    incoming.From,
		Conversation: incoming.Conversation,
		ReplyToID:    incoming.ID,
		Locale:       incoming.Locale,
		Text:         text,
		TextFormat:   TextFormatPlain,
	}
}

// SendPlainText expects to as "<serviceURL>|<conversationID>".
func (c *Client) SendPlainText(ctx context.Context, to string, text string) (core.DeliveryReceipt, error) {
	serviceURL, conversationID, ok := strings.Cut(to, "|")
	if !ok {
		return core.DeliveryReceipt{}, core.BadInput("providers/botframework: recipient must be serviceURL|conversationID", map[string]any{"to": to})
	}
	res, err := c.SendText(ctx, serviceURL, conversationID, text)
	if err != nil {
		return core.DeliveryReceipt{}, err
	}
	return core.DeliveryReceipt{
		ProviderID: core.ProviderBotFramework,
		Recipient:  conversationID,
		MessageID:  res.ID,
		SentAt:     c.now(),
		Metadata:   map[string]any{"service_url": serviceURL},
	}, nil
}

// prepareActivity defaults the type to message and assigns an id.
func prepareActivity(activity Activity) Activity {
	if strings.TrimSpace(activity.Type) == "" {
		activity.Type = ActivityMessage
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	return activity
}
