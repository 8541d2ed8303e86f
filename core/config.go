package core

import (
	"fmt"
	"strings"
)

const (
	DefaultLINEOrigin          = "https://api.line.me"
	DefaultLINEDataOrigin      = "https://api-data.line.me"
	DefaultMessengerOrigin     = "https://graph.facebook.com"
	DefaultMessengerVersion    = "v23.0"
	DefaultTelegramOrigin      = "https://api.telegram.org"
	DefaultViberOrigin         = "https://chatapi.viber.com/pa"
	DefaultWeChatOrigin        = "https://api.weixin.qq.com/cgi-bin"
	DefaultBotFrameworkToken   = "https://login.microsoftonline.com/botframework.com/oauth2/v2.0/token"
	DefaultBotFrameworkScope   = "https://api.botframework.com/.default"
	defaultHTTPTimeoutSeconds  = 30
	defaultResponseBodyLimit   = 10 << 20
	defaultInitialBackoffMilli = 1000
	defaultMaxBackoffMilli     = 60000
)

type HTTPConfig struct {
	TimeoutSeconds       int   `koanf:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxResponseBodyBytes int64 `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
}

type RateLimitConfig struct {
	Disabled            bool `koanf:"disabled" mapstructure:"disabled"`
	InitialBackoffMilli int  `koanf:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMilli     int  `koanf:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

type LINEConfig struct {
	AccessToken   string `koanf:"access_token" mapstructure:"access_token"`
	ChannelSecret string `koanf:"channel_secret" mapstructure:"channel_secret"`
	Origin        string `koanf:"origin" mapstructure:"origin"`
	DataOrigin    string `koanf:"data_origin" mapstructure:"data_origin"`
}

func (c LINEConfig) Enabled() bool {
	return strings.TrimSpace(c.AccessToken) != ""
}

type MessengerConfig struct {
	AccessToken        string `koanf:"access_token" mapstructure:"access_token"`
	AppID              string `koanf:"app_id" mapstructure:"app_id"`
	AppSecret          string `koanf:"app_secret" mapstructure:"app_secret"`
	VerifyToken        string `koanf:"verify_token" mapstructure:"verify_token"`
	Version            string `koanf:"version" mapstructure:"version"`
	Origin             string `koanf:"origin" mapstructure:"origin"`
	SkipAppSecretProof bool   `koanf:"skip_app_secret_proof" mapstructure:"skip_app_secret_proof"`
}

func (c MessengerConfig) Enabled() bool {
	return strings.TrimSpace(c.AccessToken) != ""
}

type TelegramConfig struct {
	AccessToken string `koanf:"access_token" mapstructure:"access_token"`
	SecretToken string `koanf:"secret_token" mapstructure:"secret_token"`
	Origin      string `koanf:"origin" mapstructure:"origin"`
}

func (c TelegramConfig) Enabled() bool {
	return strings.TrimSpace(c.AccessToken) != ""
}

type ViberConfig struct {
	AccessToken  string `koanf:"access_token" mapstructure:"access_token"`
	SenderName   string `koanf:"sender_name" mapstructure:"sender_name"`
	SenderAvatar string `koanf:"sender_avatar" mapstructure:"sender_avatar"`
	Origin       string `koanf:"origin" mapstructure:"origin"`
}

func (c ViberConfig) Enabled() bool {
	return strings.TrimSpace(c.AccessToken) != ""
}

type WeChatConfig struct {
	AppID     string `koanf:"app_id" mapstructure:"app_id"`
	AppSecret string `koanf:"app_secret" mapstructure:"app_secret"`
	Token     string `koanf:"token" mapstructure:"token"`
	Origin    string `koanf:"origin" mapstructure:"origin"`
}

func (c WeChatConfig) Enabled() bool {
	return strings.TrimSpace(c.AppID) != ""
}

type BotFrameworkConfig struct {
	AppID       string `koanf:"app_id" mapstructure:"app_id"`
	AppPassword string `koanf:"app_password" mapstructure:"app_password"`
	TokenURL    string `koanf:"token_url" mapstructure:"token_url"`
	Scope       string `koanf:"scope" mapstructure:"scope"`
}

func (c BotFrameworkConfig) Enabled() bool {
	return strings.TrimSpace(c.AppID) != ""
}

type Config struct {
	ServiceName  string             `koanf:"service_name" mapstructure:"service_name"`
	HTTP         HTTPConfig         `koanf:"http" mapstructure:"http"`
	RateLimit    RateLimitConfig    `koanf:"ratelimit" mapstructure:"ratelimit"`
	LINE         LINEConfig         `koanf:"line" mapstructure:"line"`
	Messenger    MessengerConfig    `koanf:"messenger" mapstructure:"messenger"`
	Telegram     TelegramConfig     `koanf:"telegram" mapstructure:"telegram"`
	Viber        ViberConfig        `koanf:"viber" mapstructure:"viber"`
	WeChat       WeChatConfig       `koanf:"wechat" mapstructure:"wechat"`
	BotFramework BotFrameworkConfig `koanf:"botframework" mapstructure:"botframework"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "messaging",
		HTTP: HTTPConfig{
			TimeoutSeconds:       defaultHTTPTimeoutSeconds,
			MaxResponseBodyBytes: defaultResponseBodyLimit,
		},
		RateLimit: RateLimitConfig{
			InitialBackoffMilli: defaultInitialBackoffMilli,
			MaxBackoffMilli:     defaultMaxBackoffMilli,
		},
		LINE: LINEConfig{
			Origin:     DefaultLINEOrigin,
			DataOrigin: DefaultLINEDataOrigin,
		},
		Messenger: MessengerConfig{
			Origin:  DefaultMessengerOrigin,
			Version: DefaultMessengerVersion,
		},
		Telegram: TelegramConfig{Origin: DefaultTelegramOrigin},
		Viber:    ViberConfig{Origin: DefaultViberOrigin},
		WeChat:   WeChatConfig{Origin: DefaultWeChatOrigin},
		BotFramework: BotFrameworkConfig{
			TokenURL: DefaultBotFrameworkToken,
			Scope:    DefaultBotFrameworkScope,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.HTTP.TimeoutSeconds < 0 {
		return fmt.Errorf("core: http.timeout_seconds must not be negative")
	}
	if c.HTTP.MaxResponseBodyBytes < 0 {
		return fmt.Errorf("core: http.max_response_body_bytes must not be negative")
	}
	if c.RateLimit.InitialBackoffMilli < 0 || c.RateLimit.MaxBackoffMilli < 0 {
		return fmt.Errorf("core: ratelimit backoff must not be negative")
	}
	if version := strings.TrimSpace(c.Messenger.Version); version != "" && !strings.HasPrefix(version, "v") {
		return fmt.Errorf("core: messenger.version %q is invalid, expected a value like %q", version, DefaultMessengerVersion)
	}
	if c.Viber.Enabled() && strings.TrimSpace(c.Viber.SenderName) == "" {
		return fmt.Errorf("core: viber.sender_name is required when viber is enabled")
	}
	if c.WeChat.Enabled() && strings.TrimSpace(c.WeChat.AppSecret) == "" {
		return fmt.Errorf("core: wechat.app_secret is required when wechat is enabled")
	}
	if c.BotFramework.Enabled() && strings.TrimSpace(c.BotFramework.AppPassword) == "" {
		return fmt.Errorf("core: botframework.app_password is required when botframework is enabled")
	}
	return nil
}

// WithDefaults fills empty origins and limits from DefaultConfig.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.ServiceName) == "" {
		c.ServiceName = defaults.ServiceName
	}
	if c.HTTP.TimeoutSeconds == 0 {
		c.HTTP.TimeoutSeconds = defaults.HTTP.TimeoutSeconds
	}
	if c.HTTP.MaxResponseBodyBytes == 0 {
		c.HTTP.MaxResponseBodyBytes = defaults.HTTP.MaxResponseBodyBytes
	}
	if c.RateLimit.InitialBackoffMilli == 0 {
		c.RateLimit.InitialBackoffMilli = defaults.RateLimit.InitialBackoffMilli
	}
	if c.RateLimit.MaxBackoffMilli == 0 {
		c.RateLimit.MaxBackoffMilli = defaults.RateLimit.MaxBackoffMilli
	}
	c.LINE.Origin = firstNonEmpty(c.LINE.Origin, defaults.LINE.Origin)
	c.LINE.DataOrigin = firstNonEmpty(c.LINE.DataOrigin, defaults.LINE.DataOrigin)
	c.Messenger.Origin = firstNonEmpty(c.Messenger.Origin, defaults.Messenger.Origin)
	c.Messenger.Version = firstNonEmpty(c.Messenger.Version, defaults.Messenger.Version)
	c.Telegram.Origin = firstNonEmpty(c.Telegram.Origin, defaults.Telegram.Origin)
	c.Viber.Origin = firstNonEmpty(c.Viber.Origin, defaults.Viber.Origin)
	c.WeChat.Origin = firstNonEmpty(c.WeChat.Origin, defaults.WeChat.Origin)
	c.BotFramework.TokenURL = firstNonEmpty(c.BotFramework.TokenURL, defaults.BotFramework.TokenURL)
	c.BotFramework.Scope = firstNonEmpty(c.BotFramework.Scope, defaults.BotFramework.Scope)
	return c
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
