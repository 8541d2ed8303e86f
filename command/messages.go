package command

import (
	"strings"
	"unicode/utf8"
)

const (
	TypeSendText = "messaging.command.send_text"

	// MaxTextLength bounds SendTextMessage.Text. Providers enforce their
	// own, usually lower, limits.
	MaxTextLength = 5000
)

type SendTextMessage struct {
	ProviderID string
	To         string
	Text       string
}

func (SendTextMessage) Type() string { return TypeSendText }

func (m SendTextMessage) Validate() error {
	if strings.TrimSpace(m.ProviderID) == "" {
		return commandValidationError("provider_id", "provider id is required")
	}
	if strings.TrimSpace(m.To) == "" {
		return commandValidationError("to", "recipient is required")
	}
	if strings.TrimSpace(m.Text) == "" {
		return commandValidationError("text", "text is required")
	}
	if utf8.RuneCountInString(m.Text) > MaxTextLength {
		return commandValidationError("text", "text is too long")
	}
	return nil
}
