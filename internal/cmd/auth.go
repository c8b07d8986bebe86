package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arabah/arabah-cli/internal/api"
	"github.com/arabah/arabah-cli/internal/validation"
)

const defaultCountryCode = "+966"

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in and manage the session",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthVerifyCmd())
	cmd.AddCommand(newAuthResendCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthDeleteAccountCmd())

	return cmd
}

// phoneInput identifies an account for the OTP flow.
type phoneInput struct {
	Phone       string
	CountryCode string
	OTP         string
}

func (p phoneInput) normalized() phoneInput {
	p.Phone = validation.NormalizePhone(p.Phone)
	p.CountryCode = strings.TrimSpace(p.CountryCode)
	if p.CountryCode != "" && !strings.HasPrefix(p.CountryCode, "+") {
		p.CountryCode = "+" + p.CountryCode
	}
	p.OTP = strings.TrimSpace(p.OTP)
	return p
}

func validatePhoneInput(p phoneInput) error {
	if err := validation.ValidatePhone(p.Phone); err != nil {
		return err
	}
	return validation.ValidateCountryCode(p.CountryCode)
}

func validateOTPInput(p phoneInput) error {
	if err := validatePhoneInput(p); err != nil {
		return err
	}
	return validation.ValidateOTP(p.OTP)
}

func addPhoneFlags(cmd *cobra.Command, in *phoneInput) {
	cmd.Flags().StringVar(&in.Phone, "phone", "", "Phone number without country code")
	cmd.Flags().StringVar(&in.CountryCode, "country-code", defaultCountryCode, "Country calling code")
	flagAlias(cmd.Flags(), "country-code", "cc")
}

func newAuthLoginCmd() *cobra.Command {
	var in phoneInput

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with your phone number",
		Long:  "Sends a one-time code to your phone, then verifies it. Pass --otp to verify in one step,\nor answer the prompt.",
		Example: `  arabah auth login --phone 501234567
  arabah auth login --phone 501234567 --country-code +971 --otp 1234`,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			in = in.normalized()
			login, err := runOperation(cmd, "auth.login", in, validatePhoneInput,
				func(ctx context.Context, p phoneInput) (*api.LoginResult, error) {
					return a.client.Auth().Login(ctx, p.Phone, p.CountryCode)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}

			if in.OTP == "" {
				if !canPrompt(cmd) {
					return printDone(cmd,
						fmt.Sprintf("Verification code sent to %s %s. Run 'arabah auth verify --phone %s --otp CODE'.", in.CountryCode, in.Phone, in.Phone),
						map[string]any{"otp_sent": true, "user_id": login.ID})
				}
				otp, err := promptLine(cmd, "Verification code: ")
				if err != nil {
					return fmt.Errorf("reading verification code: %w", err)
				}
				in.OTP = otp
			}
			return verify(cmd, a, in)
		}),
	}

	addPhoneFlags(cmd, &in)
	cmd.Flags().StringVar(&in.OTP, "otp", "", "Verification code, skips the prompt")
	return cmd
}

func newAuthVerifyCmd() *cobra.Command {
	var in phoneInput

	cmd := &cobra.Command{
		Use:     "verify",
		Short:   "Verify a one-time code and store the session",
		Example: "  arabah auth verify --phone 501234567 --otp 1234",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return verify(cmd, a, in.normalized())
		}),
	}

	addPhoneFlags(cmd, &in)
	cmd.Flags().StringVar(&in.OTP, "otp", "", "Verification code")
	return cmd
}

// verify completes sign-in. The client stores the token in the session.
func verify(cmd *cobra.Command, a *app, in phoneInput) error {
	result, err := runOperation(cmd, "auth.verify", in, validateOTPInput,
		func(ctx context.Context, p phoneInput) (*api.AuthResult, error) {
			return a.client.Auth().VerifyOTP(ctx, p.Phone, p.CountryCode, p.OTP)
		})
	if err != nil || skipOutput(cmd) {
		return err
	}
	if result.Token == "" {
		return api.NewError(api.KindInvalidResponse, "verification succeeded but no token was returned")
	}

	profile := &api.Profile{
		ID:          result.ID,
		Name:        result.Name,
		Email:       result.Email,
		Phone:       result.Phone,
		CountryCode: result.CountryCode,
		Image:       result.Image,
	}
	if err := a.session.SaveProfile(cmd.Context(), profile); err != nil {
		a.client.Logger.Debug("could not cache profile", "error", err)
	}

	if isJSON(cmd) {
		return printJSON(cmd, map[string]any{"signed_in": true, "profile": profile})
	}
	name := result.Name
	if name == "" {
		name = result.CountryCode + " " + result.Phone
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", strings.TrimSpace(name))
	return nil
}

func newAuthResendCmd() *cobra.Command {
	var in phoneInput

	cmd := &cobra.Command{
		Use:   "resend",
		Short: "Send a new verification code",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			in = in.normalized()
			_, err = runOperation(cmd, "auth.resend", in, validatePhoneInput,
				func(ctx context.Context, p phoneInput) (struct{}, error) {
					return struct{}{}, a.client.Auth().ResendOTP(ctx, p.Phone, p.CountryCode)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}
			return printDone(cmd, "Verification code sent", map[string]any{"otp_sent": true})
		}),
	}

	addPhoneFlags(cmd, &in)
	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			signedIn := a.session.SignedIn()
			profile, _ := a.session.Profile(cmd.Context())

			if isJSON(cmd) {
				payload := map[string]any{
					"signed_in": signedIn,
					"base_url":  a.cfg.BaseURL,
					"language":  a.cfg.Language,
				}
				if profile != nil {
					payload["profile"] = profile
				}
				return printJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			if !signedIn {
				_, _ = fmt.Fprintln(out, "Not signed in. Run 'arabah auth login'.")
				return nil
			}
			if profile != nil && profile.Name != "" {
				_, _ = fmt.Fprintf(out, "Signed in as %s\n", profile.Name)
			} else {
				_, _ = fmt.Fprintln(out, "Signed in")
			}
			_, _ = fmt.Fprintf(out, "API: %s (%s)\n", a.cfg.BaseURL, a.cfg.Language)
			return nil
		}),
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.session.SignedIn() {
				return printDone(cmd, "Not signed in", map[string]any{"signed_in": false})
			}

			_, err = runOperation(cmd, "auth.logout", struct{}{}, nil,
				func(ctx context.Context, _ struct{}) (struct{}, error) {
					return struct{}{}, a.client.Auth().Logout(ctx)
				})
			// The local session goes either way; a rejected token is already gone.
			if err != nil && !errors.Is(err, api.ErrUnauthorized) {
				a.client.Logger.Warn("server logout failed", "error", err)
			}
			if skipOutput(cmd) {
				return nil
			}
			a.session.Logout()
			return printDone(cmd, "Signed out", map[string]any{"signed_in": false})
		}),
	}
}

func newAuthDeleteAccountCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete-account",
		Short: "Permanently delete your account",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireSession(); err != nil {
				return err
			}
			ok, err := confirmAction(cmd, confirmOptions{
				Prompt:        "This permanently deletes your account. Type 'delete' to confirm: ",
				Expected:      "delete",
				CancelMessage: "Cancelled.",
				Force:         force,
			})
			if err != nil || !ok {
				return err
			}

			_, err = runOperation(cmd, "auth.delete_account", struct{}{}, nil,
				func(ctx context.Context, _ struct{}) (struct{}, error) {
					return struct{}{}, a.client.Auth().DeleteAccount(ctx)
				})
			if err != nil || skipOutput(cmd) {
				return err
			}
			a.session.Logout()
			return printDone(cmd, "Account deleted", map[string]any{"deleted": true})
		}),
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}
