package messaging

import (
	"github.com/goliatone/go-messaging/core"
	"github.com/goliatone/go-messaging/providers/botframework"
	"github.com/goliatone/go-messaging/providers/line"
	"github.com/goliatone/go-messaging/providers/messenger"
	"github.com/goliatone/go-messaging/providers/telegram"
	"github.com/goliatone/go-messaging/providers/viber"
	"github.com/goliatone/go-messaging/providers/wechat"
)

func NewLINEClient(cfg core.LINEConfig, opts ...core.ClientOption) (*line.Client, error) {
	return line.New(cfg, opts...)
}

func NewMessengerClient(cfg core.MessengerConfig, opts ...core.ClientOption) (*messenger.Client, error) {
	return messenger.New(cfg, opts...)
}

func NewTelegramClient(cfg core.TelegramConfig, opts ...core.ClientOption) (*telegram.Client, error) {
	return telegram.New(cfg, opts...)
}

func NewViberClient(cfg core.ViberConfig, opts ...core.ClientOption) (*viber.Client, error) {
	return viber.New(cfg, opts...)
}

func NewWeChatClient(cfg core.WeChatConfig, opts ...core.ClientOption) (*wechat.Client, error) {
	return wechat.New(cfg, opts...)
}

func NewBotFrameworkClient(cfg core.BotFrameworkConfig, opts ...core.ClientOption) (*botframework.Client, error) {
	return botframework.New(cfg, opts...)
}
