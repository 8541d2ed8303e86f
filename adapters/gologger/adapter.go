package gologger

import (
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-messaging/core"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// ClientOptions resolves a logger pair and returns the client options that
// install it.
func ClientOptions(name string, provider glog.LoggerProvider, logger glog.Logger) []core.ClientOption {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	opts := make([]core.ClientOption, 0, 2)
	if resolvedProvider != nil {
		opts = append(opts, core.WithLoggerProvider(resolvedProvider))
	}
	if resolvedLogger != nil {
		opts = append(opts, core.WithLogger(resolvedLogger))
	}
	return opts
}

// RequestLogger returns an outbound request hook that logs one line per
// provider call. Only the redacted URL is logged, never headers or bodies.
func RequestLogger(logger glog.Logger) func(core.RequestInfo) {
	logger = glog.Ensure(logger)
	return func(info core.RequestInfo) {
		logger.Debug("provider request",
			"provider_id", info.ProviderID,
			"operation", info.Operation,
			"method", info.Method,
			"url", core.RedactURL(info.URL),
		)
	}
}
