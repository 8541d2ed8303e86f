package gologger

import (
	"context"
	"strings"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-messaging/core"
)

func TestResolveDeterministicFallback(t *testing.T) {
	loggerOnly := &capturingLogger{id: "logger"}
	providerLogger := &capturingLogger{id: "provider"}
	provider := &capturingProvider{logger: providerLogger}

	var resolvedProvider glog.LoggerProvider
	_, resolved := Resolve("messaging", provider, loggerOnly)
	got := resolved.(*capturingLogger)
	if got.id != "provider" {
		t.Fatalf("expected provider logger precedence, got %q", got.id)
	}

	resolvedProvider, resolved = Resolve("messaging", nil, loggerOnly)
	got = resolved.(*capturingLogger)
	if got.id != "logger" {
		t.Fatalf("expected direct logger when provider is nil, got %q", got.id)
	}
	if resolvedProvider == nil {
		t.Fatalf("expected provider wrapper from logger")
	}

	_, resolved = Resolve("messaging", nil, nil)
	if resolved == nil {
		t.Fatalf("expected nop logger fallback")
	}
}

func TestClientOptionsInstallResolvedLogger(t *testing.T) {
	providerLogger := &capturingLogger{id: "provider"}
	opts := ClientOptions("line", &capturingProvider{logger: providerLogger}, nil)
	if len(opts) == 0 {
		t.Fatalf("expected logger options")
	}
	settings := core.ResolveClientSettings("line", opts...)
	got, ok := settings.Logger.(*capturingLogger)
	if !ok || got.id != "provider" {
		t.Fatalf("expected provider logger in settings, got %#v", settings.Logger)
	}
}

func TestRequestLoggerRedactsTokens(t *testing.T) {
	logger := &capturingLogger{id: "hook"}
	hook := RequestLogger(logger)
	hook(core.RequestInfo{
		ProviderID: core.ProviderTelegram,
		Operation:  "sendMessage",
		Method:     "POST",
		URL:        "https://api.telegram.org/bot123:SECRET/sendMessage",
	})
	if logger.lastDebug.msg != "provider request" {
		t.Fatalf("expected debug line, got %q", logger.lastDebug.msg)
	}
	for i := 0; i+1 < len(logger.lastDebug.args); i += 2 {
		if logger.lastDebug.args[i] == "url" {
			if url, _ := logger.lastDebug.args[i+1].(string); url == "" || strings.Contains(url, "SECRET") {
				t.Fatalf("expected redacted url, got %q", url)
			}
			return
		}
	}
	t.Fatalf("expected url field in %#v", logger.lastDebug.args)
}

var (
	_ glog.Logger         = (*capturingLogger)(nil)
	_ glog.LoggerProvider = (*capturingProvider)(nil)
)

type capturingProvider struct {
	logger *capturingLogger
}

func (p *capturingProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

type logCall struct {
	msg  string
	args []any
}

type capturingLogger struct {
	id        string
	lastDebug logCall
}

func (l *capturingLogger) Trace(string, ...any) {}
func (l *capturingLogger) Info(string, ...any)  {}
func (l *capturingLogger) Warn(string, ...any)  {}
func (l *capturingLogger) Error(string, ...any) {}
func (l *capturingLogger) Fatal(string, ...any) {}

func (l *capturingLogger) Debug(msg string, args ...any) {
	l.lastDebug = logCall{
		msg:  msg,
		args: append([]any(nil), args...),
	}
}

func (l *capturingLogger) WithContext(context.Context) glog.Logger {
	return l
}
