package viber

const (
	MessageText     = "text"
	MessagePicture  = "picture"
	MessageVideo    = "video"
	MessageFile     = "file"
	MessageContact  = "contact"
	MessageLocation = "location"
	MessageURL      = "url"
	MessageSticker  = "sticker"
	MessageRich     = "rich_media"
)

type Sender struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type Contact struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Message is a Viber message of any type. Keyboard and RichMedia follow
// Viber's own PascalCase schema, e.g. {"Type": "keyboard", "Buttons": [...]}.
type Message struct {
	Type          string         `json:"type"`
	Sender        *Sender        `json:"sender,omitempty"`
	Text          string         `json:"text,omitempty"`
	Media         string         `json:"media,omitempty"`
	Thumbnail     string         `json:"thumbnail,omitempty"`
	Size          int64          `json:"size,omitempty"`
	Duration      int            `json:"duration,omitempty"`
	FileName      string         `json:"fileName,omitempty"`
	Contact       *Contact       `json:"contact,omitempty"`
	Location      *Location      `json:"location,omitempty"`
	StickerID     int64          `json:"stickerId,omitempty"`
	RichMedia     map[string]any `json:"richMedia,omitempty"`
	AltText       string         `json:"altText,omitempty"`
	Keyboard      map[string]any `json:"keyboard,omitempty"`
	TrackingData  string         `json:"trackingData,omitempty"`
	MinAPIVersion int            `json:"minApiVersion,omitempty"`
}

type SendResponse struct {
	Status        int    `json:"status"`
	StatusMessage string `json:"statusMessage"`
	MessageToken  int64  `json:"messageToken"`
	ChatHostname  string `json:"chatHostname,omitempty"`
	BillingStatus int    `json:"billingStatus,omitempty"`
}

type FailedReceiver struct {
	Receiver      string `json:"receiver"`
	Status        int    `json:"status"`
	StatusMessage string `json:"statusMessage"`
}

type BroadcastResponse struct {
	Status        int              `json:"status"`
	StatusMessage string           `json:"statusMessage"`
	MessageToken  int64            `json:"messageToken"`
	FailedList    []FailedReceiver `json:"failedList,omitempty"`
}

type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role"`
}

type AccountInfo struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	URI              string    `json:"uri"`
	Icon             string    `json:"icon,omitempty"`
	Background       string    `json:"background,omitempty"`
	Category         string    `json:"category,omitempty"`
	Subcategory      string    `json:"subcategory,omitempty"`
	Location         *Location `json:"location,omitempty"`
	Country          string    `json:"country,omitempty"`
	Webhook          string    `json:"webhook,omitempty"`
	EventTypes       []string  `json:"eventTypes,omitempty"`
	SubscribersCount int       `json:"subscribersCount"`
	Members          []Member  `json:"members,omitempty"`
}

type UserDetails struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Avatar          string `json:"avatar,omitempty"`
	Country         string `json:"country,omitempty"`
	Language        string `json:"language,omitempty"`
	PrimaryDeviceOS string `json:"primaryDeviceOs,omitempty"`
	APIVersion      int    `json:"apiVersion,omitempty"`
	ViberVersion    string `json:"viberVersion,omitempty"`
	DeviceType      string `json:"deviceType,omitempty"`
}

type OnlineStatus struct {
	ID                  string `json:"id"`
	OnlineStatus        int    `json:"onlineStatus"`
	OnlineStatusMessage string `json:"onlineStatusMessage"`
	LastOnline          int64  `json:"lastOnline,omitempty"`
}
