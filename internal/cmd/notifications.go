package cmd

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arabah/arabah-cli/internal/api"
)

func newNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Read notifications and toggle push delivery",
	}

	cmd.AddCommand(newNotificationsListCmd())
	cmd.AddCommand(newNotificationsToggleCmd("enable", true))
	cmd.AddCommand(newNotificationsToggleCmd("disable", false))
	return cmd
}

func newNotificationsListCmd() *cobra.Command {
	var unreadOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notifications",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := runOperation(cmd, "notifications.list", struct{}{}, nil,
				func(ctx context.Context, _ struct{}) ([]api.Notification, error) {
					return a.client.Notifications().List(ctx)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}
			if unreadOnly {
				unread := items[:0]
				for _, n := range items {
					if n.IsRead == 0 {
						unread = append(unread, n)
					}
				}
				items = unread
			}

			f := newFormatter(cmd)
			if f.JSON() {
				return f.Output(items)
			}
			if len(items) == 0 {
				f.Empty("No notifications")
				return nil
			}
			f.StartTable("ID", "DATE", "", "TITLE", "MESSAGE")
			for _, n := range items {
				marker := ""
				if n.IsRead == 0 {
					marker = "*"
				}
				f.Row(strconv.Itoa(n.ID), n.CreatedAt, marker, n.Title, truncate(n.Message, 50))
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "Only unread notifications")
	return cmd
}

func newNotificationsToggleCmd(use string, enabled bool) *cobra.Command {
	short := "Turn push notifications off"
	done := "Push notifications disabled"
	if enabled {
		short = "Turn push notifications on"
		done = "Push notifications enabled"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireSession(); err != nil {
				return err
			}
			_, err = runOperation(cmd, "notifications."+use, enabled, nil,
				func(ctx context.Context, enabled bool) (struct{}, error) {
					return struct{}{}, a.client.Notifications().SetEnabled(ctx, enabled)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}

			// Keep the cached profile in step with the server.
			ctx := cmd.Context()
			if profile, ok := a.session.Profile(ctx); ok {
				profile.NotificationEnabled = 0
				if enabled {
					profile.NotificationEnabled = 1
				}
				if err := a.session.SaveProfile(ctx, profile); err != nil {
					a.client.Logger.Debug("could not cache profile", "error", err)
				}
			}
			return printDone(cmd, done, map[string]any{"enabled": enabled})
		}),
	}
}
