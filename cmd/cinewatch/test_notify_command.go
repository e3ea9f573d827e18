package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cinewatch/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification through every configured channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			senders := notifications.Senders(cfg)
			if len(senders) == 0 {
				fmt.Fprintln(out, "No notification channel configured; set notifications.ntfy_topic, Telegram, or email settings")
				return nil
			}
			svc := notifications.NewService(cfg, ctx.commandLogger(cmd, cfg))
			if err := svc.TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			for _, s := range senders {
				fmt.Fprintf(out, "Test notification sent via %s\n", s.Name())
			}
			return nil
		},
	}
}
