package messaging

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-messaging/adapters/gocommand"
	"github.com/goliatone/go-messaging/adapters/gologger"
	"github.com/goliatone/go-messaging/auth"
	msgcommand "github.com/goliatone/go-messaging/command"
	"github.com/goliatone/go-messaging/core"
	"github.com/goliatone/go-messaging/providers/botframework"
	"github.com/goliatone/go-messaging/providers/line"
	"github.com/goliatone/go-messaging/providers/messenger"
	"github.com/goliatone/go-messaging/providers/telegram"
	"github.com/goliatone/go-messaging/providers/viber"
	"github.com/goliatone/go-messaging/providers/wechat"
	msgquery "github.com/goliatone/go-messaging/query"
	"github.com/goliatone/go-messaging/ratelimit"
	"github.com/goliatone/go-messaging/webhooks"
)

const defaultRateLimitCacheTTL = 30 * time.Second

type Commands struct {
	SendText *msgcommand.SendTextCommand
}

type Queries struct {
	GetProfile *msgquery.GetProfileQuery
}

// Messaging holds one client per configured provider plus the command,
// query and webhook surfaces built over them.
type Messaging struct {
	config Config

	line         *line.Client
	messenger    *messenger.Client
	telegram     *telegram.Client
	viber        *viber.Client
	wechat       *wechat.Client
	botFramework *botframework.Client

	senders   msgcommand.Senders
	readers   msgquery.ProfileReaders
	templates map[string]webhooks.ProviderWebhookTemplate
	webhooks  *webhooks.Dispatcher
	commands  Commands
	queries   Queries
}

type Option func(*options)

type options struct {
	configProvider  core.ConfigProvider
	optionsResolver core.OptionsResolver
	loggerProvider  glog.LoggerProvider
	logger          glog.Logger
	rateLimitStore  ratelimit.StateStore
	clientOptions   []core.ClientOption
	burst           webhooks.BurstController
}

// WithConfigLoader loads file or environment values beneath the runtime
// config passed to New.
func WithConfigLoader(loader core.RawConfigLoader) Option {
	return func(o *options) {
		o.configProvider = core.NewCfgxConfigProvider(loader)
	}
}

func WithConfigProvider(provider core.ConfigProvider) Option {
	return func(o *options) {
		o.configProvider = provider
	}
}

func WithOptionsResolver(resolver core.OptionsResolver) Option {
	return func(o *options) {
		o.optionsResolver = resolver
	}
}

func WithLogger(logger glog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithLoggerProvider(provider glog.LoggerProvider) Option {
	return func(o *options) {
		o.loggerProvider = provider
	}
}

// WithRateLimitStore shares throttle state through store instead of process
// memory.
func WithRateLimitStore(store ratelimit.StateStore) Option {
	return func(o *options) {
		o.rateLimitStore = store
	}
}

// WithClientOptions appends options applied to every provider client. They
// run last and override the ones New derives from config.
func WithClientOptions(opts ...core.ClientOption) Option {
	return func(o *options) {
		o.clientOptions = append(o.clientOptions, opts...)
	}
}

// WithWebhookBurst drops provider redeliveries of an already dispatched
// event before they reach the handlers registered with HandleWebhooks.
func WithWebhookBurst(opts webhooks.BurstOptions) Option {
	return func(o *options) {
		o.burst = webhooks.NewBurstController(opts)
	}
}

// New resolves cfg (defaults < loaded config < cfg) and builds a client for
// every provider whose credentials are set.
func New(cfg Config, opts ...Option) (*Messaging, error) {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	resolved, err := core.ResolveConfig(context.Background(), cfg, o.configProvider, o.optionsResolver)
	if err != nil {
		return nil, core.WrapError(err, goerrors.CategoryBadInput, "messaging: resolve config", nil)
	}

	clientOpts, err := sharedClientOptions(resolved, o)
	if err != nil {
		return nil, err
	}

	m := &Messaging{
		config:    resolved,
		senders:   msgcommand.Senders{},
		readers:   msgquery.ProfileReaders{},
		templates: map[string]webhooks.ProviderWebhookTemplate{},
		webhooks:  webhooks.NewDispatcher(),
	}
	_, m.webhooks.Logger = gologger.Resolve(resolved.ServiceName, o.loggerProvider, o.logger)
	m.webhooks.Burst = o.burst

	if resolved.LINE.Enabled() {
		if m.line, err = line.New(resolved.LINE, clientOpts...); err != nil {
			return nil, err
		}
		m.add(m.line, m.line, m.line.WebhookTemplate())
	}
	if resolved.Messenger.Enabled() {
		if m.messenger, err = messenger.New(resolved.Messenger, clientOpts...); err != nil {
			return nil, err
		}
		m.add(m.messenger, m.messenger, m.messenger.WebhookTemplate())
	}
	if resolved.Telegram.Enabled() {
		if m.telegram, err = telegram.New(resolved.Telegram, clientOpts...); err != nil {
			return nil, err
		}
		m.add(m.telegram, m.telegram, m.telegram.WebhookTemplate())
	}
	if resolved.Viber.Enabled() {
		if m.viber, err = viber.New(resolved.Viber, clientOpts...); err != nil {
			return nil, err
		}
		m.add(m.viber, m.viber, m.viber.WebhookTemplate())
	}
	if resolved.WeChat.Enabled() {
		if m.wechat, err = wechat.New(resolved.WeChat, clientOpts...); err != nil {
			return nil, err
		}
		m.add(m.wechat, m.wechat, m.wechat.WebhookTemplate())
	}
	if resolved.BotFramework.Enabled() {
		if m.botFramework, err = botframework.New(resolved.BotFramework, clientOpts...); err != nil {
			return nil, err
		}
		// Inbound Bot Framework calls carry a JWT, not a signature, so no
		// webhook template is registered.
		m.add(m.botFramework, nil, webhooks.ProviderWebhookTemplate{})
	}

	m.commands = Commands{SendText: msgcommand.NewSendTextCommand(m.senders)}
	m.queries = Queries{GetProfile: msgquery.NewGetProfileQuery(m.readers)}
	return m, nil
}

func sharedClientOptions(cfg Config, o options) ([]core.ClientOption, error) {
	out := []core.ClientOption{
		core.WithHTTPConfig(cfg.HTTP),
		core.WithRateLimitConfig(cfg.RateLimit),
	}
	out = append(out, gologger.ClientOptions(cfg.ServiceName, o.loggerProvider, o.logger)...)
	if !cfg.RateLimit.Disabled {
		store := o.rateLimitStore
		if store == nil {
			store = ratelimit.NewMemoryStateStore()
		}
		cacheService, err := auth.NewCacheService(defaultRateLimitCacheTTL)
		if err != nil {
			return nil, core.WrapError(err, goerrors.CategoryInternal, "messaging: rate limit cache", nil)
		}
		cached, err := ratelimit.NewCachedStateStore(store, cacheService)
		if err != nil {
			return nil, core.WrapError(err, goerrors.CategoryInternal, "messaging: rate limit store", nil)
		}
		if policy := ratelimit.NewPolicyFromConfig(cfg.RateLimit, cached); policy != nil {
			out = append(out, core.WithRateLimitPolicy(policy))
		}
	}
	return append(out, o.clientOptions...), nil
}

func (m *Messaging) add(sender core.TextSender, reader core.ProfileReader, template webhooks.ProviderWebhookTemplate) {
	m.senders[sender.ProviderID()] = sender
	if reader != nil {
		m.readers[reader.ProviderID()] = reader
	}
	if template.Verifier != nil {
		m.templates[template.ProviderID] = template
	}
}

func (m *Messaging) Config() Config {
	return m.config
}

func (m *Messaging) LINE() *line.Client {
	return m.line
}

func (m *Messaging) Messenger() *messenger.Client {
	return m.messenger
}

func (m *Messaging) Telegram() *telegram.Client {
	return m.telegram
}

func (m *Messaging) Viber() *viber.Client {
	return m.viber
}

func (m *Messaging) WeChat() *wechat.Client {
	return m.wechat
}

func (m *Messaging) BotFramework() *botframework.Client {
	return m.botFramework
}

// Senders returns the text senders keyed by provider id.
func (m *Messaging) Senders() msgcommand.Senders {
	out := make(msgcommand.Senders, len(m.senders))
	for id, sender := range m.senders {
		out[id] = sender
	}
	return out
}

func (m *Messaging) Sender(providerID string) (core.TextSender, bool) {
	return m.senders.Sender(providerID)
}

// Webhooks returns the inbound dispatcher. Handlers are attached with
// HandleWebhooks.
func (m *Messaging) Webhooks() *webhooks.Dispatcher {
	return m.webhooks
}

// WebhookTemplate returns the verifier template of a configured provider.
func (m *Messaging) WebhookTemplate(providerID string) (webhooks.ProviderWebhookTemplate, bool) {
	template, ok := m.templates[strings.ToLower(strings.TrimSpace(providerID))]
	return template, ok
}

// HandleWebhooks registers handler for providerID on the dispatcher using
// the provider's own verifier template.
func (m *Messaging) HandleWebhooks(providerID string, handler core.InboundHandler) error {
	template, ok := m.WebhookTemplate(providerID)
	if !ok {
		return core.WrapError(nil, goerrors.CategoryNotFound, "messaging: provider is not configured for webhooks", map[string]any{
			"provider_id": providerID,
		})
	}
	return m.webhooks.Register(template.ProviderID, template, handler)
}

func (m *Messaging) Commands() Commands {
	return m.commands
}

func (m *Messaging) Queries() Queries {
	return m.queries
}

// Register subscribes the command and query handlers to the go-command
// dispatcher through adapter.
func (m *Messaging) Register(adapter *gocommand.RegistryAdapter) (gocommand.Subscriptions, error) {
	return gocommand.RegisterMessaging(adapter, m.commands.SendText, m.queries.GetProfile)
}
