package main

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/goliatone/go-messaging/core"
	"github.com/goliatone/go-messaging/webhooks"
	"github.com/spf13/cobra"
)

func newVerifySignatureCommand() *cobra.Command {
	var (
		provider  string
		secret    string
		signature string
		file      string
	)
	cmd := &cobra.Command{
		Use:   "verify-signature",
		Short: "Check a webhook signature against a request body",
		Long: `Reads the raw request body from --file or stdin and checks the signature
header value the provider sent.

  line       X-Line-Signature, base64 HMAC-SHA256 keyed by the channel secret
  messenger  X-Hub-Signature-256 (sha256=...) or X-Hub-Signature (sha1=...), keyed by the app secret
  viber      X-Viber-Content-Signature, hex HMAC-SHA256 keyed by the auth token
  telegram   X-Telegram-Bot-Api-Secret-Token, compared with the secret token`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			ok, err := verifySignature(provider, body, secret, signature)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("signature is invalid")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signature is valid")
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", core.ProviderLINE, "Provider id (line, messenger, viber, telegram)")
	cmd.Flags().StringVar(&secret, "secret", "", "Channel secret, app secret, auth token or secret token")
	cmd.Flags().StringVar(&signature, "signature", "", "Signature header value")
	cmd.Flags().StringVar(&file, "file", "", "Body file (defaults to stdin)")
	_ = cmd.MarkFlagRequired("secret")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}

func verifySignature(provider string, body []byte, secret string, signature string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case core.ProviderLINE:
		return webhooks.VerifyBase64HMACSHA256(body, secret, signature), nil
	case core.ProviderViber:
		return webhooks.VerifyHexHMAC(body, secret, signature, webhooks.AlgorithmSHA256), nil
	case core.ProviderMessenger:
		signature = strings.TrimSpace(signature)
		if rest, ok := strings.CutPrefix(signature, "sha1="); ok {
			return webhooks.VerifyHexHMAC(body, secret, rest, webhooks.AlgorithmSHA1), nil
		}
		return webhooks.VerifyHexHMAC(body, secret, strings.TrimPrefix(signature, "sha256="), webhooks.AlgorithmSHA256), nil
	case core.ProviderTelegram:
		secret = strings.TrimSpace(secret)
		return secret != "" && subtle.ConstantTimeCompare([]byte(strings.TrimSpace(signature)), []byte(secret)) == 1, nil
	default:
		return false, fmt.Errorf("verify-signature: unsupported provider %q", provider)
	}
}
