package botframework

import (
	"encoding/json"
	"fmt"
)

const (
	ActivityMessage             = "message"
	ActivityConversationUpdate  = "conversationUpdate"
	ActivityTyping              = "typing"
	ActivityEndOfConversation   = "endOfConversation"
	ActivityEvent               = "event"
	ActivityInvoke              = "invoke"
	ActivityMessageReaction     = "messageReaction"
	ActivityInstallationUpdate  = "installationUpdate"
	ActivityContactRelationship = "contactRelationUpdate"
	TextFormatPlain             = "plain"
	TextFormatMarkdown          = "markdown"
	TextFormatXML               = "xml"
	AttachmentLayoutList        = "list"
	AttachmentLayoutCarousel    = "carousel"
	ContentTypeAdaptiveCard     = "application/vnd.microsoft.card.adaptive"
	ContentTypeHeroCard         = "application/vnd.microsoft.card.hero"
	ContentTypeThumbnailCard    = "application/vnd.microsoft.card.thumbnail"
	InputHintAcceptingInput     = "acceptingInput"
	InputHintExpectingInput     = "expectingInput"
	InputHintIgnoringInput      = "ignoringInput"
)

type ChannelAccount struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	AadObjectID string `json:"aadObjectId,omitempty"`
	Role        string `json:"role,omitempty"`
}

type ConversationAccount struct {
	ID               string `json:"id"`
	Name             string `json:"name,omitempty"`
	IsGroup          bool   `json:"isGroup,omitempty"`
	ConversationType string `json:"conversationType,omitempty"`
	TenantID         string `json:"tenantId,omitempty"`
	Role             string `json:"role,omitempty"`
}

type Attachment struct {
	ContentType  string `json:"contentType"`
	ContentURL   string `json:"contentUrl,omitempty"`
	Content      any    `json:"content,omitempty"`
	Name         string `json:"name,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type CardAction struct {
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
	Image string `json:"image,omitempty"`
	Text  string `json:"text,omitempty"`
	Value any    `json:"value,omitempty"`
}

type SuggestedActions struct {
	To      []string     `json:"to,omitempty"`
	Actions []CardAction `json:"actions"`
}

type ConversationReference struct {
	ActivityID   string              `json:"activityId,omitempty"`
	User         *ChannelAccount     `json:"user,omitempty"`
	Bot          *ChannelAccount     `json:"bot,omitempty"`
	Conversation ConversationAccount `json:"conversation"`
	ChannelID    string              `json:"channelId"`
	ServiceURL   string              `json:"serviceUrl"`
}

// Activity is the Bot Framework message envelope. The wire format is
// camelCase, so tags match it directly.
type Activity struct {
	Type             string                 `json:"type"`
	ID               string                 `json:"id,omitempty"`
	Timestamp        string                 `json:"timestamp,omitempty"`
	LocalTimestamp   string                 `json:"localTimestamp,omitempty"`
	ServiceURL       string                 `json:"serviceUrl,omitempty"`
	ChannelID        string                 `json:"channelId,omitempty"`
	From             *ChannelAccount        `json:"from,omitempty"`
	Conversation     *ConversationAccount   `json:"conversation,omitempty"`
	Recipient        *ChannelAccount        `json:"recipient,omitempty"`
	TextFormat       string                 `json:"textFormat,omitempty"`
	AttachmentLayout string                 `json:"attachmentLayout,omitempty"`
	MembersAdded     []ChannelAccount       `json:"membersAdded,omitempty"`
	MembersRemoved   []ChannelAccount       `json:"membersRemoved,omitempty"`
	Locale           string                 `json:"locale,omitempty"`
	Text             string                 `json:"text,omitempty"`
	Speak            string                 `json:"speak,omitempty"`
	InputHint        string                 `json:"inputHint,omitempty"`
	Summary          string                 `json:"summary,omitempty"`
	SuggestedActions *SuggestedActions      `json:"suggestedActions,omitempty"`
	Attachments      []Attachment           `json:"attachments,omitempty"`
	Entities         []map[string]any       `json:"entities,omitempty"`
	ChannelData      json.RawMessage        `json:"channelData,omitempty"`
	Action           string                 `json:"action,omitempty"`
	ReplyToID        string                 `json:"replyToId,omitempty"`
	Value            json.RawMessage        `json:"value,omitempty"`
	Name             string                 `json:"name,omitempty"`
	RelatesTo        *ConversationReference `json:"relatesTo,omitempty"`
	Code             string                 `json:"code,omitempty"`
}

// Reference captures where a reply to a should go.
func (a Activity) Reference() ConversationReference {
	ref := ConversationReference{
		ActivityID: a.ID,
		User:       a.From,
		Bot:        a.Recipient,
		ChannelID:  a.ChannelID,
		ServiceURL: a.ServiceURL,
	}
	if a.Conversation != nil {
		ref.Conversation = *a.Conversation
	}
	return ref
}

// ParseActivity decodes an inbound activity. The caller is responsible for
// authenticating the request.
func ParseActivity(body []byte) (Activity, error) {
	var activity Activity
	if err := json.Unmarshal(body, &activity); err != nil {
		return Activity{}, fmt.Errorf("providers/botframework: parse activity: %w", err)
	}
	if activity.Type == "" {
		return Activity{}, fmt.Errorf("providers/botframework: parse activity: missing type")
	}
	return activity, nil
}
