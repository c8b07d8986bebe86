package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arabah/arabah-cli/internal/api"
	"github.com/arabah/arabah-cli/internal/cache"
	"github.com/arabah/arabah-cli/internal/config"
	"github.com/arabah/arabah-cli/internal/session"
)

// sessionExpiredMessage is printed when the server rejects the token.
const sessionExpiredMessage = "session expired, run 'arabah auth login'"

// app is everything a command needs to talk to the API.
type app struct {
	cfg     *config.Config
	session *session.Context
	client  *api.Client
	closers []func() error
}

// newApp resolves the configuration and wires the session, the cache store and
// the API client for one command.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}

	logger := slog.Default()
	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	a.session = session.New(creds, store, logger)
	if err := a.session.Restore(); err != nil {
		logger.Warn("could not load stored session", "error", err)
	}

	errOut := cmd.ErrOrStderr()
	a.session.OnExpired(session.ListenerFunc(func() {
		_, _ = fmt.Fprintln(errOut, sessionExpiredMessage)
	}))

	a.client = api.New(api.Options{
		BaseURL:      cfg.BaseURL,
		Language:     cfg.Language,
		SecretKey:    cfg.SecretKey,
		PublishKey:   cfg.PublishKey,
		Tokens:       a.session,
		Invalidator:  a.session,
		Reachability: api.NewDialReachability(cfg.BaseURL),
		Logger:       logger,
	})
	a.client.PreviewOut = errOut
	return a, nil
}

// Close releases the cache connection.
func (a *app) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			slog.Debug("close failed", "error", err)
		}
	}
}

// requireSession fails fast when no token is stored.
func (a *app) requireSession() error {
	if a.session.SignedIn() {
		return nil
	}
	return api.NewError(api.KindUnauthorized, "no stored session")
}

func configOverrides(cmd *cobra.Command) config.Overrides {
	o := config.Overrides{ConfigPath: flags.ConfigPath, EnvFile: flags.EnvFile}
	if flagOrAliasChanged(cmd, "base-url") {
		v := flags.BaseURL
		o.BaseURL = &v
	}
	if flagOrAliasChanged(cmd, "language") {
		v := flags.Language
		o.Language = &v
	}
	return o
}

func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Resolve(configOverrides(cmd))
}

// openStore returns the configured cache store and, for Redis, its closer.
func openStore(cfg *config.Config) (cache.Store, func() error, error) {
	switch cfg.CacheBackend {
	case config.CacheNone:
		return nil, nil, nil
	case config.CacheRedis:
		store, err := cache.NewRedisStore(cache.RedisConfig{URL: cfg.RedisURL})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		dir, err := cacheDir(cfg)
		if err != nil {
			slog.Debug("file cache disabled", "error", err)
			return nil, nil, nil
		}
		return cache.NewFileStore(dir, cfg.BaseURL), nil, nil
	}
}

func cacheDir(cfg *config.Config) (string, error) {
	if cfg.CacheDir != "" {
		return cfg.CacheDir, nil
	}
	return cache.DefaultDir()
}

// credentials picks where the token lives. ARABAH_TOKEN seeds an in-memory
// session that is never written to the keychain.
func credentials(cfg *config.Config) (session.Credentials, error) {
	if token := strings.TrimSpace(os.Getenv(envToken)); token != "" {
		creds := &session.MemoryCredentials{}
		if err := creds.SaveToken(token); err != nil {
			return nil, err
		}
		return creds, nil
	}
	if flags.NoKeychain || parseBoolEnv(envNoKeychain) {
		return &session.MemoryCredentials{}, nil
	}
	return session.KeyringCredentials{Backend: session.NormalizeBackend(cfg.KeyringBackend)}, nil
}
