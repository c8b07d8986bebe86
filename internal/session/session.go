// Package session owns the signed-in state shared by every request: the
// bearer token, the cached profile and the saved search filters.
//
// A *Context is created once per process and injected into the API client
// as both its token provider and its session invalidator.
package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arabah/arabah-cli/internal/api"
	"github.com/arabah/arabah-cli/internal/cache"
)

// Cache keys.
const (
	ProfileKey = "profile"
	FiltersKey = "search_filters"
)

// ProfileTTL bounds how long a cached profile is trusted.
const ProfileTTL = 24 * time.Hour

const storeTimeout = 5 * time.Second

// Listener is told when the server rejected the session and the user has to
// sign in again.
type Listener interface {
	SessionExpired()
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func()

func (f ListenerFunc) SessionExpired() { f() }

// Context is the injected session. Token reads and writes are atomic and
// last write wins.
type Context struct {
	token  atomic.Pointer[string]
	creds  Credentials
	store  cache.Store
	logger *slog.Logger

	mu        sync.Mutex
	listeners []Listener
}

// New creates a session backed by creds and store. Either may be nil, in
// which case that state lives only in memory.
func New(creds Credentials, store cache.Store, logger *slog.Logger) *Context {
	if creds == nil {
		creds = &MemoryCredentials{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{creds: creds, store: store, logger: logger}
}

// Restore loads the persisted token into memory.
func (c *Context) Restore() error {
	token, err := c.creds.LoadToken()
	if err != nil {
		return err
	}
	c.token.Store(&token)
	return nil
}

// Token returns the current bearer token, or "" when signed out.
func (c *Context) Token() string {
	if p := c.token.Load(); p != nil {
		return *p
	}
	return ""
}

// SetToken replaces the token and persists it. Persistence failures are
// logged; the in-memory token is still updated.
func (c *Context) SetToken(token string) {
	c.token.Store(&token)
	if err := c.creds.SaveToken(token); err != nil {
		c.logger.Warn("failed to persist session token", "error", err)
	}
}

// SignedIn reports whether a token is present.
func (c *Context) SignedIn() bool {
	return c.Token() != ""
}

// OnExpired registers l to be told about session invalidation.
func (c *Context) OnExpired(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// ClearSession drops the token, the cached profile and saved filters, then
// notifies listeners. Calling it on an already cleared session is harmless.
func (c *Context) ClearSession() {
	c.clear()
	c.logger.Info("session cleared")

	c.mu.Lock()
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()
	for _, l := range listeners {
		l.SessionExpired()
	}
}

// Logout clears the session without notifying listeners; the user asked for it.
func (c *Context) Logout() {
	c.clear()
}

func (c *Context) clear() {
	empty := ""
	c.token.Store(&empty)
	if err := c.creds.DeleteToken(); err != nil {
		c.logger.Warn("failed to remove stored token", "error", err)
	}
	if c.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := c.store.Delete(ctx, ProfileKey, FiltersKey); err != nil {
		c.logger.Warn("failed to clear session cache", "error", err)
	}
}

// Profile returns the cached profile, if any.
func (c *Context) Profile(ctx context.Context) (*api.Profile, bool) {
	if c.store == nil {
		return nil, false
	}
	var p api.Profile
	ok, err := c.store.Get(ctx, ProfileKey, &p)
	if err != nil {
		c.logger.Debug("profile cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &p, true
}

// SaveProfile caches p for ProfileTTL.
func (c *Context) SaveProfile(ctx context.Context, p *api.Profile) error {
	if c.store == nil || p == nil {
		return nil
	}
	return c.store.Put(ctx, ProfileKey, p, ProfileTTL)
}

// Filters returns the saved search filters.
func (c *Context) Filters(ctx context.Context) (api.SearchFilters, bool) {
	if c.store == nil {
		return api.SearchFilters{}, false
	}
	var f api.SearchFilters
	ok, err := c.store.Get(ctx, FiltersKey, &f)
	if err != nil {
		c.logger.Debug("filter cache read failed", "error", err)
		return api.SearchFilters{}, false
	}
	return f, ok
}

// SaveFilters persists f until the session ends.
func (c *Context) SaveFilters(ctx context.Context, f api.SearchFilters) error {
	if c.store == nil {
		return nil
	}
	if f.IsZero() {
		return c.store.Delete(ctx, FiltersKey)
	}
	return c.store.Put(ctx, FiltersKey, f, 0)
}

var (
	_ api.TokenProvider      = (*Context)(nil)
	_ api.SessionInvalidator = (*Context)(nil)
)
