package core

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

// ClientSettings carries the collaborators shared by every provider client.
type ClientSettings struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	HTTPClient      HTTPDoer
	Transports      TransportResolver
	RateLimitPolicy RateLimitPolicy
	OnRequest       func(RequestInfo)
	HTTP            HTTPConfig
	RateLimit       RateLimitConfig
	Now             func() time.Time
}

type ClientOption func(*ClientSettings)

func WithLogger(logger Logger) ClientOption {
	return func(s *ClientSettings) {
		s.Logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) ClientOption {
	return func(s *ClientSettings) {
		s.LoggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) ClientOption {
	return func(s *ClientSettings) {
		s.MetricsRecorder = recorder
	}
}

func WithHTTPClient(client HTTPDoer) ClientOption {
	return func(s *ClientSettings) {
		s.HTTPClient = client
	}
}

func WithTransportResolver(resolver TransportResolver) ClientOption {
	return func(s *ClientSettings) {
		s.Transports = resolver
	}
}

func WithRateLimitPolicy(policy RateLimitPolicy) ClientOption {
	return func(s *ClientSettings) {
		s.RateLimitPolicy = policy
	}
}

// WithOnRequest registers a hook that sees every outgoing request.
func WithOnRequest(hook func(RequestInfo)) ClientOption {
	return func(s *ClientSettings) {
		s.OnRequest = hook
	}
}

func WithHTTPConfig(cfg HTTPConfig) ClientOption {
	return func(s *ClientSettings) {
		s.HTTP = cfg
	}
}

func WithRateLimitConfig(cfg RateLimitConfig) ClientOption {
	return func(s *ClientSettings) {
		s.RateLimit = cfg
	}
}

func WithClock(now func() time.Time) ClientOption {
	return func(s *ClientSettings) {
		s.Now = now
	}
}

// ResolveClientSettings applies options over defaults. Transports and the
// rate-limit policy stay nil when not supplied; callers decide their defaults.
func ResolveClientSettings(name string, options ...ClientOption) ClientSettings {
	defaults := DefaultConfig()
	settings := ClientSettings{
		HTTP:      defaults.HTTP,
		RateLimit: defaults.RateLimit,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&settings)
	}

	provider, logger := glog.Resolve(name, settings.LoggerProvider, settings.Logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger(name); named != nil {
			logger = glog.Ensure(named)
		}
	}
	settings.LoggerProvider = provider
	settings.Logger = logger

	if settings.MetricsRecorder == nil {
		settings.MetricsRecorder = NopMetricsRecorder{}
	}
	if settings.HTTP.TimeoutSeconds <= 0 {
		settings.HTTP.TimeoutSeconds = defaults.HTTP.TimeoutSeconds
	}
	if settings.HTTP.MaxResponseBodyBytes <= 0 {
		settings.HTTP.MaxResponseBodyBytes = defaults.HTTP.MaxResponseBodyBytes
	}
	if settings.Now == nil {
		settings.Now = func() time.Time { return time.Now().UTC() }
	}
	return settings
}

func (s ClientSettings) Timeout() time.Duration {
	return time.Duration(s.HTTP.TimeoutSeconds) * time.Second
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// StaticConfigLoader serves a fixed raw map, typically parsed from a file.
func StaticConfigLoader(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

// ResolveConfig loads configuration through provider and merges it with the
// runtime values: defaults < loaded < runtime.
func ResolveConfig(
	ctx context.Context,
	runtime Config,
	provider ConfigProvider,
	resolver OptionsResolver,
) (Config, error) {
	defaults := DefaultConfig()
	if provider == nil {
		provider = NewCfgxConfigProvider(nil)
	}
	if resolver == nil {
		resolver = GoOptionsResolver{}
	}
	loaded, err := provider.Load(ctx, defaults)
	if err != nil {
		return Config{}, err
	}
	resolved, err := resolver.Resolve(defaults, loaded, runtime)
	if err != nil {
		return Config{}, err
	}
	return resolved.WithDefaults(), nil
}

// configToLayerMap walks the koanf tags of cfg. Zero values are dropped
// unless includeZero is set so that higher layers only override what they set.
func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	return structToLayerMap(reflect.ValueOf(cfg), includeZero)
}

func structToLayerMap(value reflect.Value, includeZero bool) map[string]any {
	layer := map[string]any{}
	valueType := value.Type()
	for i := 0; i < value.NumField(); i++ {
		field := valueType.Field(i)
		if !field.IsExported() {
			continue
		}
		key := strings.TrimSpace(strings.Split(field.Tag.Get("koanf"), ",")[0])
		if key == "" || key == "-" {
			continue
		}
		fieldValue := value.Field(i)
		if fieldValue.Kind() == reflect.Struct {
			nested := structToLayerMap(fieldValue, includeZero)
			if includeZero || len(nested) > 0 {
				layer[key] = nested
			}
			continue
		}
		if !includeZero && fieldValue.IsZero() {
			continue
		}
		layer[key] = fieldValue.Interface()
	}
	return layer
}
