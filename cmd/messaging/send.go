package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	gocmd "github.com/goliatone/go-command"
	messaging "github.com/goliatone/go-messaging"
	msgcommand "github.com/goliatone/go-messaging/command"
	"github.com/goliatone/go-messaging/core"
	"github.com/spf13/cobra"
)

func newSendTextCommand() *cobra.Command {
	var (
		configPath string
		provider   string
		to         string
		text       string
	)
	cmd := &cobra.Command{
		Use:   "send-text",
		Short: "Send a plain text message through a configured provider",
		Long: `Loads provider credentials from a YAML file and MESSAGING_* environment
variables (MESSAGING_LINE_ACCESS_TOKEN, MESSAGING_TELEGRAM_ACCESS_TOKEN, ...)
and sends --text to --to. Bot Framework recipients are written as
"<serviceUrl>|<conversationId>".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := loadRawConfig(configPath, os.Environ())
			if err != nil {
				return err
			}
			m, err := messaging.New(messaging.Config{}, messaging.WithConfigLoader(core.StaticConfigLoader(raw)))
			if err != nil {
				return err
			}
			collector := gocmd.NewResult[core.DeliveryReceipt]()
			ctx := gocmd.ContextWithResult(cmd.Context(), collector)
			if err := m.Commands().SendText.Execute(ctx, msgcommand.SendTextMessage{
				ProviderID: strings.ToLower(strings.TrimSpace(provider)),
				To:         to,
				Text:       text,
			}); err != nil {
				return err
			}
			receipt, _ := collector.Load()
			out, err := json.MarshalIndent(receipt, "", "  ")
			if err != nil {
				return fmt.Errorf("send-text: encode receipt: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	cmd.Flags().StringVar(&provider, "provider", "", "Provider id (line, messenger, telegram, viber, wechat, botframework)")
	cmd.Flags().StringVar(&to, "to", "", "Recipient id")
	cmd.Flags().StringVar(&text, "text", "", "Message text")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
