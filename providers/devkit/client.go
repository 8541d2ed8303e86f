package devkit

import (
	"github.com/goliatone/go-messaging/core"
	"github.com/goliatone/go-messaging/ratelimit"
	"github.com/goliatone/go-messaging/transport"
)

// NewClient resolves settings for cfg.ProviderID and fills in the default
// transport registry and adaptive rate-limit policy when the options leave
// them unset.
func NewClient(cfg core.ClientConfig, opts ...core.ClientOption) (*core.Client, error) {
	settings := core.ResolveClientSettings(cfg.ProviderID, opts...)
	if settings.Transports == nil {
		settings.Transports = transport.NewDefaultRegistry(settings.HTTPClient)
	}
	if settings.RateLimitPolicy == nil {
		if policy := ratelimit.NewPolicyFromConfig(settings.RateLimit, nil); policy != nil {
			settings.RateLimitPolicy = policy
		}
	}
	return core.NewClient(cfg, settings)
}
