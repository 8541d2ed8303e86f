package telegram

import "encoding/json"

const (
	ParseModeHTML       = "HTML"
	ParseModeMarkdown   = "Markdown"
	ParseModeMarkdownV2 = "MarkdownV2"

	ChatActionTyping          = "typing"
	ChatActionUploadPhoto     = "upload_photo"
	ChatActionRecordVideo     = "record_video"
	ChatActionUploadVideo     = "upload_video"
	ChatActionRecordVoice     = "record_voice"
	ChatActionUploadVoice     = "upload_voice"
	ChatActionUploadDocument  = "upload_document"
	ChatActionChooseSticker   = "choose_sticker"
	ChatActionFindLocation    = "find_location"
	ChatActionRecordVideoNote = "record_video_note"
	ChatActionUploadVideoNote = "upload_video_note"
)

type User struct {
	ID           int64  `json:"id"`
	IsBot        bool   `json:"isBot"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"languageCode,omitempty"`
}

type Chat struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title,omitempty"`
	Username    string `json:"username,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Description string `json:"description,omitempty"`
	InviteLink  string `json:"inviteLink,omitempty"`
	Photo       *struct {
		SmallFileID string `json:"smallFileId"`
		BigFileID   string `json:"bigFileId"`
	} `json:"photo,omitempty"`
}

type PhotoSize struct {
	FileID       string `json:"fileId"`
	FileUniqueID string `json:"fileUniqueId"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileSize     int64  `json:"fileSize,omitempty"`
}

type Document struct {
	FileID       string `json:"fileId"`
	FileUniqueID string `json:"fileUniqueId"`
	FileName     string `json:"fileName,omitempty"`
	MimeType     string `json:"mimeType,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Contact struct {
	PhoneNumber string `json:"phoneNumber"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName,omitempty"`
	UserID      int64  `json:"userId,omitempty"`
}

type PollOption struct {
	Text       string `json:"text"`
	VoterCount int    `json:"voterCount"`
}

type Poll struct {
	ID          string       `json:"id"`
	Question    string       `json:"question"`
	Options     []PollOption `json:"options"`
	IsClosed    bool         `json:"isClosed"`
	IsAnonymous bool         `json:"isAnonymous"`
	Type        string       `json:"type"`
}

type Dice struct {
	Emoji string `json:"emoji"`
	Value int    `json:"value"`
}

type Message struct {
	MessageID      int64          `json:"messageId"`
	From           *User          `json:"from,omitempty"`
	Chat           Chat           `json:"chat"`
	Date           int64          `json:"date"`
	Text           string         `json:"text,omitempty"`
	Caption        string         `json:"caption,omitempty"`
	Entities       []any          `json:"entities,omitempty"`
	Photo          []PhotoSize    `json:"photo,omitempty"`
	Document       *Document      `json:"document,omitempty"`
	Audio          *Document      `json:"audio,omitempty"`
	Video          *Document      `json:"video,omitempty"`
	Voice          *Document      `json:"voice,omitempty"`
	Sticker        map[string]any `json:"sticker,omitempty"`
	Location       *Location      `json:"location,omitempty"`
	Contact        *Contact       `json:"contact,omitempty"`
	Poll           *Poll          `json:"poll,omitempty"`
	Dice           *Dice          `json:"dice,omitempty"`
	ReplyToMessage *Message       `json:"replyToMessage,omitempty"`
	ReplyMarkup    map[string]any `json:"replyMarkup,omitempty"`
}

type MessageID struct {
	MessageID int64 `json:"messageId"`
}

type CallbackQuery struct {
	ID              string   `json:"id"`
	From            User     `json:"from"`
	Message         *Message `json:"message,omitempty"`
	InlineMessageID string   `json:"inlineMessageId,omitempty"`
	ChatInstance    string   `json:"chatInstance"`
	Data            string   `json:"data,omitempty"`
}

type InlineQuery struct {
	ID     string `json:"id"`
	From   User   `json:"from"`
	Query  string `json:"query"`
	Offset string `json:"offset"`
}

// Update is one incoming update. Unmodeled update kinds are still
// available through Raw.
type Update struct {
	UpdateID          int64           `json:"updateId"`
	Message           *Message        `json:"message,omitempty"`
	EditedMessage     *Message        `json:"editedMessage,omitempty"`
	ChannelPost       *Message        `json:"channelPost,omitempty"`
	EditedChannelPost *Message        `json:"editedChannelPost,omitempty"`
	CallbackQuery     *CallbackQuery  `json:"callbackQuery,omitempty"`
	InlineQuery       *InlineQuery    `json:"inlineQuery,omitempty"`
	Poll              *Poll           `json:"poll,omitempty"`
	Raw               json.RawMessage `json:"-"`
}

type WebhookInfo struct {
	URL                  string   `json:"url"`
	HasCustomCertificate bool     `json:"hasCustomCertificate"`
	PendingUpdateCount   int      `json:"pendingUpdateCount"`
	IPAddress            string   `json:"ipAddress,omitempty"`
	LastErrorDate        int64    `json:"lastErrorDate,omitempty"`
	LastErrorMessage     string   `json:"lastErrorMessage,omitempty"`
	MaxConnections       int      `json:"maxConnections,omitempty"`
	AllowedUpdates       []string `json:"allowedUpdates,omitempty"`
}

type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

type File struct {
	FileID       string `json:"fileId"`
	FileUniqueID string `json:"fileUniqueId"`
	FileSize     int64  `json:"fileSize,omitempty"`
	FilePath     string `json:"filePath,omitempty"`
}

type UserProfilePhotos struct {
	TotalCount int           `json:"totalCount"`
	Photos     [][]PhotoSize `json:"photos"`
}

type ChatMember struct {
	Status      string `json:"status"`
	User        User   `json:"user"`
	IsAnonymous bool   `json:"isAnonymous,omitempty"`
	CustomTitle string `json:"customTitle,omitempty"`
	UntilDate   int64  `json:"untilDate,omitempty"`
}

type ChatPermissions struct {
	CanSendMessages       *bool `json:"canSendMessages,omitempty"`
	CanSendPolls          *bool `json:"canSendPolls,omitempty"`
	CanSendOtherMessages  *bool `json:"canSendOtherMessages,omitempty"`
	CanAddWebPagePreviews *bool `json:"canAddWebPagePreviews,omitempty"`
	CanChangeInfo         *bool `json:"canChangeInfo,omitempty"`
	CanInviteUsers        *bool `json:"canInviteUsers,omitempty"`
	CanPinMessages        *bool `json:"canPinMessages,omitempty"`
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callbackData,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inlineKeyboard"`
}

// InputMedia is one item of SendMediaGroup.
type InputMedia struct {
	Type      string    `json:"type"`
	Media     InputFile `json:"media"`
	Caption   string    `json:"caption,omitempty"`
	ParseMode string    `json:"parseMode,omitempty"`
}
