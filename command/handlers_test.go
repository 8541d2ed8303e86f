package command

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messaging/core"
)

type stubSender struct {
	providerID string
	sendFn     func(ctx context.Context, to string, text string) (core.DeliveryReceipt, error)
}

func (s stubSender) ProviderID() string { return s.providerID }

func (s stubSender) SendPlainText(ctx context.Context, to string, text string) (core.DeliveryReceipt, error) {
	return s.sendFn(ctx, to, text)
}

func TestSendTextCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	sentAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	called := false
	senders := NewSenders(stubSender{
		providerID: core.ProviderLINE,
		sendFn: func(_ context.Context, to string, text string) (core.DeliveryReceipt, error) {
			called = true
			if to != "U123" || text != "hello" {
				t.Fatalf("unexpected payload %q %q", to, text)
			}
			return core.DeliveryReceipt{ProviderID: core.ProviderLINE, Recipient: to, SentAt: sentAt}, nil
		},
	})

	cmd := NewSendTextCommand(senders)
	collector := gocmd.NewResult[core.DeliveryReceipt]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, SendTextMessage{ProviderID: "LINE", To: " U123 ", Text: "hello"})
	if err != nil {
		t.Fatalf("execute send text: %v", err)
	}
	if !called {
		t.Fatalf("expected sender invocation")
	}
	receipt, ok := collector.Load()
	if !ok {
		t.Fatalf("expected receipt to be stored")
	}
	if receipt.Recipient != "U123" || !receipt.SentAt.Equal(sentAt) {
		t.Fatalf("unexpected receipt %#v", receipt)
	}
}

func TestSendTextCommand_UnknownProvider(t *testing.T) {
	cmd := NewSendTextCommand(Senders{})
	err := cmd.Execute(context.Background(), SendTextMessage{ProviderID: "viber", To: "u", Text: "hi"})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestSendTextCommand_MapsProviderErrors(t *testing.T) {
	senders := NewSenders(stubSender{
		providerID: core.ProviderTelegram,
		sendFn: func(context.Context, string, string) (core.DeliveryReceipt, error) {
			return core.DeliveryReceipt{}, &core.APIError{
				ProviderID: core.ProviderTelegram,
				Status:     http.StatusTooManyRequests,
				Message:    "Too Many Requests: retry after 7",
			}
		},
	})
	err := NewSendTextCommand(senders).Execute(context.Background(), SendTextMessage{
		ProviderID: core.ProviderTelegram,
		To:         "42",
		Text:       "hi",
	})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryRateLimit || rich.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected mapped error %#v", rich)
	}
}

func TestSendTextMessage_Validate(t *testing.T) {
	valid := SendTextMessage{ProviderID: "line", To: "U1", Text: "hi"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	tooLong := valid
	tooLong.Text = strings.Repeat("a", MaxTextLength+1)
	if err := tooLong.Validate(); err == nil {
		t.Fatalf("expected length error")
	}
	noRecipient := valid
	noRecipient.To = " "
	if err := noRecipient.Validate(); err == nil {
		t.Fatalf("expected recipient error")
	}
}

func TestSenders_ProviderIDsSorted(t *testing.T) {
	senders := NewSenders(
		stubSender{providerID: core.ProviderViber},
		stubSender{providerID: core.ProviderLINE},
		nil,
	)
	ids := senders.ProviderIDs()
	if len(ids) != 2 || ids[0] != core.ProviderLINE || ids[1] != core.ProviderViber {
		t.Fatalf("unexpected ids %v", ids)
	}
}
