package gocommand

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command"
	msgcommand "github.com/goliatone/go-messaging/command"
	"github.com/goliatone/go-messaging/core"
	msgquery "github.com/goliatone/go-messaging/query"
)

type okMessage struct{}

func (okMessage) Type() string { return "messaging.test.ok" }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "" }

type failingMessage struct{}

func (failingMessage) Type() string { return "messaging.test.fail" }

func (failingMessage) Validate() error { return errors.New("invalid payload") }

type dispatchMessage struct {
	ID string
}

func (dispatchMessage) Type() string { return "messaging.test.dispatch" }

func TestValidateMessageContract(t *testing.T) {
	if err := ValidateMessageContract(okMessage{}); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := ValidateMessageContract(invalidMessage{}); err == nil {
		t.Fatalf("expected empty type to fail contract validation")
	}
	if err := ValidateMessageContract(failingMessage{}); err == nil {
		t.Fatalf("expected Validate() failure to bubble")
	}
	if err := ValidateMessageContract(msgcommand.SendTextMessage{ProviderID: "line", To: "U1", Text: "hi"}); err != nil {
		t.Fatalf("expected send text message to satisfy contract, got %v", err)
	}
}

func TestRegistryAndDispatchWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	executed := 0
	customResolverCalled := 0

	cmd := command.CommandFunc[dispatchMessage](func(context.Context, dispatchMessage) error {
		executed++
		return nil
	})

	sub, err := RegisterAndSubscribe(adapter, cmd)
	if err != nil {
		t.Fatalf("register and subscribe: %v", err)
	}
	t.Cleanup(sub.Unsubscribe)
	if err := adapter.AddResolver("custom", func(any, command.CommandMeta, *command.Registry) error {
		customResolverCalled++
		return nil
	}); err != nil {
		t.Fatalf("add resolver: %v", err)
	}
	if !adapter.HasResolver("custom") {
		t.Fatalf("expected custom resolver to be registered")
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}
	if customResolverCalled == 0 {
		t.Fatalf("expected resolver hook to run during initialization")
	}

	if err := Dispatch(context.Background(), dispatchMessage{ID: "m1"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if executed != 1 {
		t.Fatalf("expected command execution count=1, got %d", executed)
	}
}

type stubSender struct{}

func (stubSender) ProviderID() string { return core.ProviderViber }

func (stubSender) SendPlainText(_ context.Context, to string, _ string) (core.DeliveryReceipt, error) {
	return core.DeliveryReceipt{ProviderID: core.ProviderViber, Recipient: to, MessageID: "5741311803571721087"}, nil
}

type stubReader struct{}

func (stubReader) ProviderID() string { return core.ProviderViber }

func (stubReader) GetProfile(_ context.Context, userID string) (core.UserProfile, error) {
	return core.UserProfile{ProviderID: core.ProviderViber, UserID: userID, DisplayName: "John McClane"}, nil
}

func TestRegisterMessaging_DispatchesSendTextAndProfile(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	subs, err := RegisterMessaging(adapter,
		msgcommand.NewSendTextCommand(msgcommand.NewSenders(stubSender{})),
		msgquery.NewGetProfileQuery(msgquery.ProfileReaders{core.ProviderViber: stubReader{}}),
	)
	if err != nil {
		t.Fatalf("register messaging: %v", err)
	}
	t.Cleanup(subs.Unsubscribe)
	if len(subs) != 2 {
		t.Fatalf("expected two subscriptions, got %d", len(subs))
	}

	receipt, err := DispatchForResult[msgcommand.SendTextMessage, core.DeliveryReceipt](context.Background(), msgcommand.SendTextMessage{
		ProviderID: core.ProviderViber,
		To:         "01234567890A=",
		Text:       "Hello world!",
	})
	if err != nil {
		t.Fatalf("dispatch send text: %v", err)
	}
	if receipt.MessageID != "5741311803571721087" || receipt.Recipient != "01234567890A=" {
		t.Fatalf("unexpected receipt %#v", receipt)
	}

	profile, err := Query[msgquery.GetProfileMessage, core.UserProfile](context.Background(), msgquery.GetProfileMessage{
		ProviderID: core.ProviderViber,
		UserID:     "01234567890A=",
	})
	if err != nil {
		t.Fatalf("query profile: %v", err)
	}
	if profile.DisplayName != "John McClane" {
		t.Fatalf("unexpected profile %#v", profile)
	}
}
