package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arabah/arabah-cli/internal/cache"
	"github.com/arabah/arabah-cli/internal/config"
	"github.com/arabah/arabah-cli/internal/session"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local cache",
	}

	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCachePathCmd())
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop the cached profile and saved search filters",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			switch cfg.CacheBackend {
			case config.CacheNone:
				return printDone(cmd, "Cache is disabled", map[string]any{"backend": cfg.CacheBackend})
			case config.CacheRedis:
				store, closeStore, err := openStore(cfg)
				if err != nil {
					return err
				}
				defer func() { _ = closeStore() }()
				if err := clearStore(cmd.Context(), store); err != nil {
					return err
				}
				return printDone(cmd, "Cache cleared: "+cfg.RedisURL, map[string]any{"backend": cfg.CacheBackend})
			default:
				dir, err := cacheDir(cfg)
				if err != nil {
					return fmt.Errorf("could not determine cache directory: %w", err)
				}
				cache.ClearAll(dir)
				return printDone(cmd, "Cache cleared: "+dir, map[string]any{"backend": cfg.CacheBackend, "path": dir})
			}
		}),
	}
}

func clearStore(ctx context.Context, store cache.Store) error {
	if err := store.Delete(ctx, session.ProfileKey, session.FiltersKey); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the cache directory",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			dir, err := cacheDir(cfg)
			if err != nil {
				return fmt.Errorf("could not determine cache directory: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]string{"path": dir, "backend": cfg.CacheBackend})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		}),
	}
}
