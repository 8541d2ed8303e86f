package core

import (
	"context"
	"io"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

const (
	ProviderLINE         = "line"
	ProviderMessenger    = "messenger"
	ProviderTelegram     = "telegram"
	ProviderViber        = "viber"
	ProviderWeChat       = "wechat"
	ProviderBotFramework = "botframework"
)

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Form                 *MultipartForm
	Metadata             map[string]any
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// MultipartForm is encoded as multipart/form-data by the multipart adapter.
type MultipartForm struct {
	Fields map[string]string
	Files  []MultipartFile
}

type MultipartFile struct {
	Field       string
	Name        string
	ContentType string
	Reader      io.Reader
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type TransportResolver interface {
	Build(kind string, config map[string]any) (TransportAdapter, error)
}

type InboundRequest struct {
	ProviderID string
	Method     string
	Headers    map[string]string
	Query      map[string]string
	Body       []byte
	Metadata   map[string]any
}

type InboundResult struct {
	Accepted   bool
	StatusCode int
	Body       []byte
	Metadata   map[string]any
}

type InboundHandler interface {
	Handle(ctx context.Context, req InboundRequest) (InboundResult, error)
}

type InboundHandlerFunc func(ctx context.Context, req InboundRequest) (InboundResult, error)

func (f InboundHandlerFunc) Handle(ctx context.Context, req InboundRequest) (InboundResult, error) {
	return f(ctx, req)
}

type RateLimitKey struct {
	ProviderID string
	BucketKey  string
}

type ProviderResponseMeta struct {
	StatusCode int
	Headers    map[string]string
	RetryAfter *time.Duration
	Metadata   map[string]any
}

type RateLimitPolicy interface {
	BeforeCall(ctx context.Context, key RateLimitKey) error
	AfterCall(ctx context.Context, key RateLimitKey, res ProviderResponseMeta) error
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// TokenSource supplies short-lived access tokens for providers that issue them.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate(ctx context.Context) error
}

// RequestInfo is handed to OnRequest hooks before a request leaves the client.
type RequestInfo struct {
	ProviderID string
	Operation  string
	Method     string
	URL        string
	Headers    map[string]string
	Body       []byte
}

type DeliveryReceipt struct {
	ProviderID string         `json:"providerId"`
	Recipient  string         `json:"recipient"`
	MessageID  string         `json:"messageId,omitempty"`
	SentAt     time.Time      `json:"sentAt"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type UserProfile struct {
	ProviderID  string         `json:"providerId"`
	UserID      string         `json:"userId"`
	DisplayName string         `json:"displayName,omitempty"`
	PictureURL  string         `json:"pictureUrl,omitempty"`
	Language    string         `json:"language,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// TextSender is the provider-neutral outbound surface used by commands.
type TextSender interface {
	ProviderID() string
	SendPlainText(ctx context.Context, to string, text string) (DeliveryReceipt, error)
}

type ProfileReader interface {
	ProviderID() string
	GetProfile(ctx context.Context, userID string) (UserProfile, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
