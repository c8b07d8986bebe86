package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

const (
	serviceName = "arabah"
	tokenKey    = "bearer_token"

	envKeyringPassword = "ARABAH_KEYRING_PASSWORD"
	envCredentialsDir  = "ARABAH_CREDENTIALS_DIR"

	BackendAuto   = "auto"
	BackendFile   = "file"
	BackendSystem = "system"
)

// openKeyring can be replaced in tests to use an in-memory keyring.
var openKeyring = func(cfg keyring.Config) (keyring.Keyring, error) {
	return keyring.Open(cfg)
}

var userConfigDir = os.UserConfigDir

var stdinHasTTY = func() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// SetOpenKeyring allows replacing the keyring opener for testing.
// Returns a cleanup function that restores the original.
func SetOpenKeyring(fn func(keyring.Config) (keyring.Keyring, error)) func() {
	original := openKeyring
	openKeyring = fn
	return func() { openKeyring = original }
}

// Credentials persists the bearer token between invocations.
type Credentials interface {
	LoadToken() (string, error)
	SaveToken(token string) error
	DeleteToken() error
}

// KeyringCredentials stores the token in the OS keychain, falling back to an
// encrypted file on headless systems.
type KeyringCredentials struct {
	// Backend is auto, file or system.
	Backend string
	// Dir overrides the file backend directory.
	Dir string
}

// NormalizeBackend maps user input to a known backend mode.
func NormalizeBackend(backend string) string {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendFile:
		return BackendFile
	case BackendSystem, "os", "native":
		return BackendSystem
	default:
		return BackendAuto
	}
}

func (k KeyringCredentials) config() keyring.Config {
	cfg := keyring.Config{ServiceName: serviceName}

	backend := NormalizeBackend(k.Backend)
	if backend == BackendSystem {
		return cfg
	}

	// Auto mode still configures the file backend so keyring.Open can fall
	// through to it when no native backend exists.
	cfg.FileDir = k.fileDir()
	cfg.FilePasswordFunc = filePassword

	if shouldForceFileBackend(runtime.GOOS, backend, os.Getenv("DBUS_SESSION_BUS_ADDRESS")) {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}
	return cfg
}

func shouldForceFileBackend(goos, backend, dbusAddr string) bool {
	if backend == BackendFile {
		return true
	}
	if backend != BackendAuto {
		return false
	}
	return goos == "linux" && strings.TrimSpace(dbusAddr) == ""
}

func (k KeyringCredentials) fileDir() string {
	base := strings.TrimSpace(k.Dir)
	if base == "" {
		base = strings.TrimSpace(os.Getenv(envCredentialsDir))
	}
	if base == "" {
		if dir, err := userConfigDir(); err == nil && strings.TrimSpace(dir) != "" {
			base = filepath.Join(dir, serviceName)
		}
	}
	if base == "" {
		base = filepath.Join(os.TempDir(), serviceName)
	}
	return filepath.Join(base, "keyring")
}

func filePassword(prompt string) (string, error) {
	if password, ok := os.LookupEnv(envKeyringPassword); ok && strings.TrimSpace(password) != "" {
		return password, nil
	}
	if !stdinHasTTY() {
		return "", fmt.Errorf("set %s when using file keyring in non-interactive environments", envKeyringPassword)
	}
	return keyring.TerminalPrompt(prompt)
}

// LoadToken returns the stored token, or "" when none is stored.
func (k KeyringCredentials) LoadToken() (string, error) {
	ring, err := openKeyring(k.config())
	if err != nil {
		return "", fmt.Errorf("failed to open keyring: %w", err)
	}
	item, err := ring.Get(tokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return string(item.Data), nil
}

func (k KeyringCredentials) SaveToken(token string) error {
	if token == "" {
		return k.DeleteToken()
	}
	ring, err := openKeyring(k.config())
	if err != nil {
		return fmt.Errorf("failed to open keyring: %w", err)
	}
	if err := ring.Set(keyring.Item{
		Key:   tokenKey,
		Data:  []byte(token),
		Label: "Arabah session token",
	}); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (k KeyringCredentials) DeleteToken() error {
	ring, err := openKeyring(k.config())
	if err != nil {
		return fmt.Errorf("failed to open keyring: %w", err)
	}
	if err := ring.Remove(tokenKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// MemoryCredentials keeps the token for the life of the process. Used with
// --no-keychain and in tests.
type MemoryCredentials struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryCredentials) LoadToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryCredentials) SaveToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryCredentials) DeleteToken() error {
	return m.SaveToken("")
}
