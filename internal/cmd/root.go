package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/arabah/arabah-cli/internal/config"
	"github.com/arabah/arabah-cli/internal/debug"
	"github.com/arabah/arabah-cli/internal/dryrun"
	"github.com/arabah/arabah-cli/internal/iocontext"
	"github.com/arabah/arabah-cli/internal/outfmt"
	"github.com/arabah/arabah-cli/internal/validation"
)

// Environment variables read by the command layer. Settings shared with the
// config file live in package config.
const (
	envOutput       = "ARABAH_OUTPUT"
	envToken        = "ARABAH_TOKEN"
	envNoKeychain   = "ARABAH_NO_KEYCHAIN"
	envAllowPrivate = "ARABAH_ALLOW_PRIVATE"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output       string
	JSON         bool
	JQ           string
	Compact      bool
	Debug        bool
	DryRun       bool
	Quiet        bool
	NoInput      bool
	Yes          bool
	AllowPrivate bool
	NoKeychain   bool
	BaseURL      string
	Language     string
	ConfigPath   string
	EnvFile      string
}

// flags holds the global command flags. It is reset at the start of every
// Execute call; reading it outside a command's RunE sees stale values.
var flags rootFlags

// stdin is shared by every prompt of one invocation so buffered input is not
// lost between questions.
var stdin *bufio.Reader

func defaultOutput() string {
	if value := strings.TrimSpace(os.Getenv(envOutput)); value != "" {
		return strings.ToLower(value)
	}
	return "text"
}

func parseBoolEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:                "arabah",
		Short:              "Compare grocery prices and manage your Arabah account",
		Long:               "arabah talks to the Arabah shopping API: search products, compare shop prices,\nkeep a shopping list and notes, and manage your account.",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true, // enhanceUnknownError handles did-you-mean
		PersistentPreRunE:  setupContext,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json (env ARABAH_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVar(&flags.JQ, "jq", "", "JQ expression to filter JSON output (implies --output json)")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Print requests instead of sending them")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	pf.BoolVar(&flags.NoInput, "no-input", false, "Disable interactive prompts")
	pf.BoolVarP(&flags.Yes, "yes", "y", false, "Skip confirmation prompts")
	pf.BoolVar(&flags.AllowPrivate, "allow-private", false, "Allow private/localhost base URLs (env ARABAH_ALLOW_PRIVATE)")
	pf.BoolVar(&flags.NoKeychain, "no-keychain", false, "Keep the session token in memory only (env ARABAH_NO_KEYCHAIN)")
	pf.StringVar(&flags.BaseURL, "base-url", "", "API base URL (env ARABAH_BASE_URL)")
	pf.StringVar(&flags.Language, "language", "", "Response language: ar|en (env ARABAH_LANGUAGE)")
	pf.StringVar(&flags.ConfigPath, "config", "", "Config file path (env ARABAH_CONFIG)")
	pf.StringVar(&flags.EnvFile, "env-file", "", "Load environment variables from this file (default .env)")

	flagAlias(pf, "dry-run", "dr")
	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "no-input", "ni")
	flagAlias(pf, "language", "lang")

	root.AddCommand(newAuthCmd())
	root.AddCommand(newProfileCmd())
	root.AddCommand(newNotesCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newCategoriesCmd())
	root.AddCommand(newProductCmd())
	root.AddCommand(newRatingsCmd())
	root.AddCommand(newShoppingListCmd())
	root.AddCommand(newNotificationsCmd())
	root.AddCommand(newTicketsCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// setupContext turns the global flags into context values every command reads.
func setupContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if flags.Yes {
		flags.NoInput = true
	}

	if flags.JSON {
		if flagOrAliasChanged(cmd, "output") && flags.Output != "json" {
			return fmt.Errorf("--json conflicts with --output %s", flags.Output)
		}
		flags.Output = "json"
	}
	if flags.JQ != "" {
		if _, err := outfmt.CompileQuery(flags.JQ); err != nil {
			return err
		}
		if flags.Output != "json" {
			if flagOrAliasChanged(cmd, "output") {
				return fmt.Errorf("--jq requires --output json")
			}
			flags.Output = "json"
		}
		ctx = outfmt.WithQuery(ctx, flags.JQ)
	}

	mode, err := outfmt.Parse(flags.Output)
	if err != nil {
		return err
	}
	ctx = outfmt.WithMode(ctx, mode)
	ctx = outfmt.WithCompact(ctx, flags.Compact)

	// Copy so --quiet does not leak into the caller's streams.
	streams := *iocontext.GetIO(ctx)
	if flags.Quiet && mode == outfmt.Text {
		streams.Out = io.Discard
	}
	ctx = iocontext.WithIO(ctx, &streams)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.ErrOut)
	stdin = bufio.NewReader(streams.In)

	// .env may carry ARABAH_ALLOW_PRIVATE, so load it before checking.
	if err := config.LoadDotEnv(flags.EnvFile); err != nil {
		return err
	}
	allowPrivate := flags.AllowPrivate || parseBoolEnv(envAllowPrivate)
	validation.SetAllowPrivate(allowPrivate)
	if allowPrivate && !flags.Quiet {
		_, _ = fmt.Fprintln(streams.ErrOut, "Warning: allowing private/localhost URLs (use only with trusted targets).")
	}

	slog.SetDefault(debug.NewLogger(streams.ErrOut, flags.Debug))
	ctx = debug.WithDebug(ctx, flags.Debug)
	ctx = dryrun.WithDryRun(ctx, flags.DryRun)

	cmd.SetContext(ctx)
	return nil
}

// Execute runs the CLI with args. Streams come from iocontext.GetIO(ctx).
func Execute(ctx context.Context, args []string) error {
	flags = rootFlags{Output: defaultOutput()}
	stdin = nil

	root := newRootCmd()
	streams := iocontext.GetIO(ctx)
	root.SetContext(ctx)
	root.SetArgs(args)
	root.SetOut(streams.Out)
	root.SetErr(streams.ErrOut)
	root.SetIn(streams.In)

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(streams.ErrOut, enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command and
// flag errors. targetCmd is the command cobra resolved, possibly root.
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			parent := root
			if targetCmd != nil {
				parent = targetCmd
			}
			var names []string
			for _, c := range parent.Commands() {
				if c.IsAvailableCommand() {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggestCommand(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
		return msg
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		unknown := extractFlag(msg)
		if unknown == "" {
			return msg
		}
		target := root
		if targetCmd != nil {
			target = targetCmd
		}
		seen := make(map[string]bool)
		var names []string
		collect := func(fs *pflag.FlagSet) {
			fs.VisitAll(func(f *pflag.Flag) {
				if f.Hidden {
					return
				}
				if name := "--" + f.Name; !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
				if f.Shorthand != "" {
					if short := "-" + f.Shorthand; !seen[short] {
						seen[short] = true
						names = append(names, short)
					}
				}
			})
		}
		collect(target.Flags())
		collect(target.InheritedFlags())

		helpCmd := strings.TrimSpace(target.CommandPath()) + " --help"
		if suggestion := suggestFlag(unknown, names); suggestion != "" {
			return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
		}
		return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name such as "--foo" or "-x" from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		// "unknown shorthand flag: 'a' in -a"
		idx = strings.LastIndex(s, " -")
		if idx < 0 {
			return ""
		}
		rest := strings.TrimSpace(s[idx+1:])
		if end := strings.IndexByte(rest, ' '); end >= 0 {
			rest = rest[:end]
		}
		rest = strings.TrimRight(rest, ".,;:!?\"'")
		if strings.HasPrefix(rest, "-") && len(rest) > 1 {
			return rest
		}
		return ""
	}
	rest := s[idx:]
	end := strings.IndexByte(rest, ' ')
	if end < 0 {
		end = len(rest)
	}
	return strings.TrimRight(rest[:end], ".,;:!?\"'")
}
