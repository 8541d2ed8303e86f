package messenger

const (
	MessagingTypeResponse   = "RESPONSE"
	MessagingTypeUpdate     = "UPDATE"
	MessagingTypeMessageTag = "MESSAGE_TAG"

	SenderActionMarkSeen  = "mark_seen"
	SenderActionTypingOn  = "typing_on"
	SenderActionTypingOff = "typing_off"

	AttachmentImage    = "image"
	AttachmentAudio    = "audio"
	AttachmentVideo    = "video"
	AttachmentFile     = "file"
	AttachmentTemplate = "template"

	// PageInboxAppID is the app id of the Page Inbox secondary receiver.
	PageInboxAppID = "263902037430900"
)

type Recipient struct {
	ID          string `json:"id,omitempty"`
	UserRef     string `json:"userRef,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	CommentID   string `json:"commentId,omitempty"`
	PostID      string `json:"postId,omitempty"`
}

// PSID addresses a user by page-scoped id.
func PSID(id string) Recipient {
	return Recipient{ID: id}
}

type QuickReply struct {
	ContentType string `json:"contentType"`
	Title       string `json:"title,omitempty"`
	Payload     string `json:"payload,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type Attachment struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Message struct {
	Text         string       `json:"text,omitempty"`
	Attachment   *Attachment  `json:"attachment,omitempty"`
	QuickReplies []QuickReply `json:"quickReplies,omitempty"`
	Metadata     string       `json:"metadata,omitempty"`
}

type SendOptions struct {
	MessagingType    string
	Tag              string
	PersonaID        string
	NotificationType string
	QuickReplies     []QuickReply
}

type SendResponse struct {
	RecipientID  string `json:"recipientId"`
	MessageID    string `json:"messageId"`
	AttachmentID string `json:"attachmentId,omitempty"`
}

type Button struct {
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Payload string `json:"payload,omitempty"`
}

func NewPostbackButton(title string, payload string) Button {
	return Button{Type: "postback", Title: title, Payload: payload}
}

func NewURLButton(title string, url string) Button {
	return Button{Type: "web_url", Title: title, URL: url}
}

type TemplateElement struct {
	Title         string         `json:"title"`
	Subtitle      string         `json:"subtitle,omitempty"`
	ImageURL      string         `json:"imageUrl,omitempty"`
	DefaultAction map[string]any `json:"defaultAction,omitempty"`
	Buttons       []Button       `json:"buttons,omitempty"`
}

type MediaElement struct {
	MediaType    string   `json:"mediaType"`
	URL          string   `json:"url,omitempty"`
	AttachmentID string   `json:"attachmentId,omitempty"`
	Buttons      []Button `json:"buttons,omitempty"`
}

type ReceiptElement struct {
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle,omitempty"`
	Quantity int     `json:"quantity,omitempty"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

type ReceiptSummary struct {
	Subtotal     float64 `json:"subtotal,omitempty"`
	ShippingCost float64 `json:"shippingCost,omitempty"`
	TotalTax     float64 `json:"totalTax,omitempty"`
	TotalCost    float64 `json:"totalCost"`
}

// ReceiptAddress goes out as street_1/street_2 on the wire.
type ReceiptAddress struct {
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	State      string `json:"state"`
	Country    string `json:"country"`
}

type ReceiptTemplate struct {
	RecipientName string           `json:"recipientName"`
	OrderNumber   string           `json:"orderNumber"`
	Currency      string           `json:"currency"`
	PaymentMethod string           `json:"paymentMethod"`
	OrderURL      string           `json:"orderUrl,omitempty"`
	Timestamp     string           `json:"timestamp,omitempty"`
	Address       *ReceiptAddress  `json:"address,omitempty"`
	Summary       ReceiptSummary   `json:"summary"`
	Adjustments   []map[string]any `json:"adjustments,omitempty"`
	Elements      []ReceiptElement `json:"elements,omitempty"`
}

type User struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	ProfilePic string `json:"profilePic,omitempty"`
	Locale     string `json:"locale,omitempty"`
	Timezone   int    `json:"timezone,omitempty"`
	Gender     string `json:"gender,omitempty"`
}

type Page struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Persona struct {
	ID                string `json:"id,omitempty"`
	Name              string `json:"name"`
	ProfilePictureURL string `json:"profilePictureUrl"`
}

type Paging struct {
	Cursors struct {
		Before string `json:"before,omitempty"`
		After  string `json:"after,omitempty"`
	} `json:"cursors"`
	Next string `json:"next,omitempty"`
}
