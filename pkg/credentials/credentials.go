// Package credentials manages API keys stored in credentials.toml in the
// .paddy/ directory. The "gateway" key is the bearer token clients must
// present; provider keys are held for agent runtimes that call upstream
// model APIs.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/paddyhq/paddy/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0

	// KeyGateway names the bearer token the gateway requires from clients.
	KeyGateway = "gateway"
)

// keyEnvVars maps key names to the environment variables that override them.
var keyEnvVars = map[string]string{
	KeyGateway:  "PADDY_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// Manager manages reading and writing credentials.toml in the .paddy/ directory.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty it is
// used as the .paddy/ directory; otherwise the standard dotdir resolution applies.
// When no .paddy/ directory is found, one is created at ~/.paddy/.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{}
	mgr.ddm = dotdir.NewManager()

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	if target == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home dir: %w", err)
		}
		target = filepath.Join(home, ".paddy")
		if err := os.MkdirAll(target, 0o755); err != nil {
			return nil, fmt.Errorf("creating paddy dir: %w", err)
		}
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)

	return mgr, nil
}

// Load reads credentials.toml from the target directory.
// Returns empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{
				Version: currentVersion,
				Keys:    make(map[string]Credential),
			}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	if creds.Keys == nil {
		creds.Keys = make(map[string]Credential)
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// SetKey stores an API key under the given name.
func (m *Manager) SetKey(name, key string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Keys[name] = Credential{APIKey: key}

	return m.Save(creds)
}

// GetKey returns the stored API key for the given name.
// Returns an empty string if no key is stored.
func (m *Manager) GetKey(name string) (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}

	c, ok := creds.Keys[name]
	if !ok {
		return "", nil
	}

	return c.APIKey, nil
}

// ResolveKey returns the key for the given name, preferring its environment
// variable over the stored file value. An empty result means no key is
// configured anywhere.
func (m *Manager) ResolveKey(name string) (string, error) {
	if env := keyEnvVars[name]; env != "" {
		if v := os.Getenv(env); v != "" {
			return v, nil
		}
	}

	return m.GetKey(name)
}

// RemoveKey deletes the stored credential for a name.
func (m *Manager) RemoveKey(name string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	delete(creds.Keys, name)

	return m.Save(creds)
}

// ListKeys returns the names that have stored credentials.
func (m *Manager) ListKeys() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(creds.Keys))
	for name := range creds.Keys {
		names = append(names, name)
	}

	sort.Strings(names)

	return names, nil
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

// EnvVarForKey returns the environment variable name for a given key name.
// Returns an empty string for unknown names.
func EnvVarForKey(name string) string {
	return keyEnvVars[name]
}

// SupportedKeys returns the key names paddy knows how to store.
func SupportedKeys() []string {
	return []string{KeyGateway, "openai", "anthropic"}
}

// IsSupportedKey returns true if the given name is supported.
func IsSupportedKey(name string) bool {
	return slices.Contains(SupportedKeys(), name)
}
