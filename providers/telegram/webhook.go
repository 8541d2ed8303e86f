package telegram

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-messaging/casing"
	"github.com/goliatone/go-messaging/webhooks"
)

// SecretTokenHeader carries the secret_token given to setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// VerifySecretToken compares the header value with the configured secret.
// Without a configured secret every request passes.
func (c *Client) VerifySecretToken(header string) bool {
	if c == nil {
		return false
	}
	if c.secretToken == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(c.secretToken)) == 1
}

func (c *Client) WebhookTemplate() webhooks.ProviderWebhookTemplate {
	return webhooks.NewTelegramWebhookTemplate(c.secretToken)
}

// ParseUpdate decodes a webhook body into an Update with camelCase fields.
func ParseUpdate(body []byte) (Update, error) {
	converted, err := casing.TransformJSON(body, casing.Camel)
	if err != nil {
		return Update{}, fmt.Errorf("providers/telegram: parse update: %w", err)
	}
	var update Update
	if err := json.Unmarshal(converted, &update); err != nil {
		return Update{}, fmt.Errorf("providers/telegram: parse update: %w", err)
	}
	if update.UpdateID == 0 {
		return Update{}, fmt.Errorf("providers/telegram: parse update: missing update_id")
	}
	update.Raw = append(json.RawMessage(nil), body...)
	return update, nil
}
