package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arabah/arabah-cli/internal/api"
	"github.com/arabah/arabah-cli/internal/validation"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"me"},
		Short:   "View and edit your profile",
	}

	cmd.AddCommand(newProfileGetCmd())
	cmd.AddCommand(newProfileUpdateCmd())
	return cmd
}

func newProfileGetCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:     "get",
		Aliases: []string{"show"},
		Short:   "Show your profile",
		Long:    "Shows the cached profile when one is available. --refresh always asks the server.",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireSession(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if !refresh {
				if cached, ok := a.session.Profile(ctx); ok {
					return renderProfile(cmd, cached)
				}
			}

			profile, err := runOperation(cmd, "profile.get", struct{}{}, nil,
				func(ctx context.Context, _ struct{}) (*api.Profile, error) {
					return a.client.Profile().Get(ctx)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}
			if err := a.session.SaveProfile(ctx, profile); err != nil {
				a.client.Logger.Debug("could not cache profile", "error", err)
			}
			return renderProfile(cmd, profile)
		}),
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the cached profile")
	return cmd
}

func validateProfileInput(in api.ProfileUpdate) error {
	if in.Name == "" && in.Email == "" && in.Avatar == nil {
		return api.ValidationError("nothing to update: pass --name, --email or --avatar")
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return err
	}
	return validation.ValidateEmail(in.Email)
}

func newProfileUpdateCmd() *cobra.Command {
	var name, email, avatarPath string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Edit your name, email or avatar",
		Example: `  arabah profile update --name "Sara Ali"
  arabah profile update --avatar ./me.jpg`,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireSession(); err != nil {
				return err
			}

			update := api.ProfileUpdate{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
			if avatarPath != "" {
				avatar, err := readAttachment(avatarPath)
				if err != nil {
					return err
				}
				update.Avatar = &avatar
			}
			profile, err := runOperation(cmd, "profile.update", update, validateProfileInput,
				func(ctx context.Context, in api.ProfileUpdate) (*api.Profile, error) {
					return a.client.Profile().Update(ctx, in)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}
			if err := a.session.SaveProfile(cmd.Context(), profile); err != nil {
				a.client.Logger.Debug("could not cache profile", "error", err)
			}
			return renderProfile(cmd, profile)
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&avatarPath, "avatar", "", "Path to a profile image")
	return cmd
}

func renderProfile(cmd *cobra.Command, p *api.Profile) error {
	if isJSON(cmd) {
		return printJSON(cmd, p)
	}
	notifications := "off"
	if p.NotificationEnabled == 1 {
		notifications = "on"
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "ID:            %d\n", p.ID)
	_, _ = fmt.Fprintf(out, "Name:          %s\n", p.Name)
	_, _ = fmt.Fprintf(out, "Email:         %s\n", p.Email)
	_, _ = fmt.Fprintf(out, "Phone:         %s %s\n", p.CountryCode, p.Phone)
	_, _ = fmt.Fprintf(out, "Notifications: %s\n", notifications)
	return nil
}
