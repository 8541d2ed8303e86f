package messaging

import (
	"github.com/goliatone/go-messaging/core"
	"github.com/goliatone/go-messaging/webhooks"
)

type Config = core.Config

type ClientOption = core.ClientOption

type APIError = core.APIError

type DeliveryReceipt = core.DeliveryReceipt

type UserProfile = core.UserProfile

type WebhookTemplate = webhooks.ProviderWebhookTemplate

var (
	WithHTTPClient      = core.WithHTTPClient
	WithClock           = core.WithClock
	WithMetricsRecorder = core.WithMetricsRecorder
	WithOnRequest       = core.WithOnRequest
	AsAPIError          = core.AsAPIError
	MapError            = core.MapError
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}
