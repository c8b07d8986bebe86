package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arabah/arabah-cli/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigPathCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show",
		Aliases: []string{"get"},
		Short:   "Show the resolved configuration (secrets redacted)",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			redacted := cfg.Redacted()

			if isJSON(cmd) {
				return printJSON(cmd, redacted)
			}
			f := newFormatter(cmd)
			f.StartTable("KEY", "VALUE")
			for _, row := range [][2]string{
				{"base_url", redacted.BaseURL},
				{"language", redacted.Language},
				{"secret_key", redacted.SecretKey},
				{"publish_key", redacted.PublishKey},
				{"cache_backend", redacted.CacheBackend},
				{"redis_url", redacted.RedisURL},
				{"cache_dir", redacted.CacheDir},
				{"keyring_backend", redacted.KeyringBackend},
			} {
				value := row[1]
				if value == "" {
					value = "-"
				}
				f.Row(row[0], value)
			}
			return f.EndTable()
		}),
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a value in the config file",
		Long:  "Keys: " + strings.Join(config.Keys, ", "),
		Example: `  arabah config set language ar
  arabah config set cache_backend redis
  arabah config set redis_url redis://localhost:6379/0`,
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			path := configOverrides(cmd).Path()
			cfg, err := config.LoadOrDefault(path)
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			return printDone(cmd, fmt.Sprintf("Set %s in %s", args[0], path), map[string]any{"key": args[0], "path": path})
		}),
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			path := configOverrides(cmd).Path()
			if isJSON(cmd) {
				return printJSON(cmd, map[string]string{"path": path})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}),
	}
}
