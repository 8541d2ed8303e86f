package gocommand

import (
	"github.com/goliatone/go-command/runner"
	msgcommand "github.com/goliatone/go-messaging/command"
	"github.com/goliatone/go-messaging/core"
	msgquery "github.com/goliatone/go-messaging/query"
)

// RegisterMessaging registers the send-text command and the profile query
// with adapter and subscribes both to the go-command dispatcher. Callers
// release the returned subscriptions when done.
func RegisterMessaging(
	adapter *RegistryAdapter,
	sendText *msgcommand.SendTextCommand,
	getProfile *msgquery.GetProfileQuery,
	runnerOpts ...runner.Option,
) (Subscriptions, error) {
	subs := Subscriptions{}
	if sendText != nil {
		sub, err := RegisterAndSubscribe[msgcommand.SendTextMessage](adapter, sendText, runnerOpts...)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if getProfile != nil {
		sub, err := RegisterAndSubscribeQuery[msgquery.GetProfileMessage, core.UserProfile](adapter, getProfile, runnerOpts...)
		if err != nil {
			subs.Unsubscribe()
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
