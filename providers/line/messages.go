package line

// Message is a LINE message object. The builders below cover the common
// types; any other shape can be sent as a literal map.
type Message map[string]any

// Action is a LINE action object used by templates and quick replies.
type Action map[string]any

type QuickReplyItem struct {
	Type     string `json:"type"`
	ImageURL string `json:"imageUrl,omitempty"`
	Action   Action `json:"action"`
}

type Emoji struct {
	Index     int    `json:"index"`
	ProductID string `json:"productId"`
	EmojiID   string `json:"emojiId"`
}

func NewTextMessage(text string, emojis ...Emoji) Message {
	msg := Message{"type": "text", "text": text}
	if len(emojis) > 0 {
		msg["emojis"] = emojis
	}
	return msg
}

func NewImageMessage(originalContentURL string, previewImageURL string) Message {
	if previewImageURL == "" {
		previewImageURL = originalContentURL
	}
	return Message{
		"type":               "image",
		"originalContentUrl": originalContentURL,
		"previewImageUrl":    previewImageURL,
	}
}

func NewVideoMessage(originalContentURL string, previewImageURL string) Message {
	return Message{
		"type":               "video",
		"originalContentUrl": originalContentURL,
		"previewImageUrl":    previewImageURL,
	}
}

// NewAudioMessage builds an audio message; duration is in milliseconds.
func NewAudioMessage(originalContentURL string, duration int) Message {
	return Message{
		"type":               "audio",
		"originalContentUrl": originalContentURL,
		"duration":           duration,
	}
}

func NewLocationMessage(title string, address string, latitude float64, longitude float64) Message {
	return Message{
		"type":      "location",
		"title":     title,
		"address":   address,
		"latitude":  latitude,
		"longitude": longitude,
	}
}

func NewStickerMessage(packageID string, stickerID string) Message {
	return Message{
		"type":      "sticker",
		"packageId": packageID,
		"stickerId": stickerID,
	}
}

// NewFlexMessage wraps a flex container (bubble or carousel).
func NewFlexMessage(altText string, contents map[string]any) Message {
	return Message{
		"type":     "flex",
		"altText":  altText,
		"contents": contents,
	}
}

func NewTemplateMessage(altText string, template map[string]any) Message {
	return Message{
		"type":     "template",
		"altText":  altText,
		"template": template,
	}
}

type ButtonsTemplate struct {
	ThumbnailImageURL string
	Title             string
	Text              string
	DefaultAction     Action
	Actions           []Action
}

func NewButtonsTemplate(altText string, tpl ButtonsTemplate) Message {
	template := map[string]any{
		"type":    "buttons",
		"text":    tpl.Text,
		"actions": tpl.Actions,
	}
	if tpl.ThumbnailImageURL != "" {
		template["thumbnailImageUrl"] = tpl.ThumbnailImageURL
	}
	if tpl.Title != "" {
		template["title"] = tpl.Title
	}
	if tpl.DefaultAction != nil {
		template["defaultAction"] = tpl.DefaultAction
	}
	return NewTemplateMessage(altText, template)
}

func NewConfirmTemplate(altText string, text string, actions ...Action) Message {
	return NewTemplateMessage(altText, map[string]any{
		"type":    "confirm",
		"text":    text,
		"actions": actions,
	})
}

type CarouselColumn struct {
	ThumbnailImageURL string   `json:"thumbnailImageUrl,omitempty"`
	Title             string   `json:"title,omitempty"`
	Text              string   `json:"text"`
	DefaultAction     Action   `json:"defaultAction,omitempty"`
	Actions           []Action `json:"actions"`
}

func NewCarouselTemplate(altText string, columns ...CarouselColumn) Message {
	return NewTemplateMessage(altText, map[string]any{
		"type":    "carousel",
		"columns": columns,
	})
}

// WithQuickReply returns a copy of msg carrying the quick reply items.
func WithQuickReply(msg Message, items ...QuickReplyItem) Message {
	out := make(Message, len(msg)+1)
	for key, value := range msg {
		out[key] = value
	}
	list := append([]QuickReplyItem(nil), items...)
	for i := range list {
		if list[i].Type == "" {
			list[i].Type = "action"
		}
	}
	out["quickReply"] = map[string]any{"items": list}
	return out
}

func NewMessageAction(label string, text string) Action {
	return Action{"type": "message", "label": label, "text": text}
}

func NewPostbackAction(label string, data string) Action {
	return Action{"type": "postback", "label": label, "data": data}
}

func NewURIAction(label string, uri string) Action {
	return Action{"type": "uri", "label": label, "uri": uri}
}
