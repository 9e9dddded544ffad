package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	keyringService  = "estatly-cli"
	configDirName   = "estatly"
	sessionFileName = "session.json"
)

// MemoryStore keeps state for the lifetime of the process
type MemoryStore struct {
	mu    sync.Mutex
	state *State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return State{}, ErrNotFound
	}
	return *m.state, nil
}

func (m *MemoryStore) Save(state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = &state
	return nil
}

func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
	return nil
}

// KeyringStore keeps the token in the OS keychain/credential manager and the
// user descriptor in a JSON file under the user config directory. Entries are
// keyed by API origin so several backends can be used side by side.
type KeyringStore struct {
	origin string
	path   string
}

// sessionFile is the on-disk layout of session.json
type sessionFile struct {
	Sessions map[string]State `json:"sessions"`
}

// NewKeyringStore creates a store for origin. An empty dir selects
// ~/.config/estatly.
func NewKeyringStore(origin, dir string) (*KeyringStore, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".config", configDirName)
	}

	return &KeyringStore{
		origin: origin,
		path:   filepath.Join(dir, sessionFileName),
	}, nil
}

// getKeyringKey returns a unique key for storing tokens per API origin
func (k *KeyringStore) getKeyringKey() string {
	return fmt.Sprintf("token-%s", k.origin)
}

func (k *KeyringStore) Load() (State, error) {
	token, err := keyring.Get(keyringService, k.getKeyringKey())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return State{}, ErrNotFound
		}
		return State{}, fmt.Errorf("failed to load token: %w", err)
	}

	file, err := k.readFile()
	if err != nil {
		return State{}, err
	}

	state := file.Sessions[k.origin]
	state.Token = token
	return state, nil
}

func (k *KeyringStore) Save(state State) error {
	if err := keyring.Set(keyringService, k.getKeyringKey(), state.Token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	file, err := k.readFile()
	if err != nil {
		return err
	}
	file.Sessions[k.origin] = state
	return k.writeFile(file)
}

func (k *KeyringStore) Delete() error {
	if err := keyring.Delete(keyringService, k.getKeyringKey()); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	file, err := k.readFile()
	if err != nil {
		return err
	}
	if _, ok := file.Sessions[k.origin]; !ok {
		return nil
	}
	delete(file.Sessions, k.origin)
	return k.writeFile(file)
}

func (k *KeyringStore) readFile() (*sessionFile, error) {
	file := &sessionFile{Sessions: map[string]State{}}

	data, err := os.ReadFile(k.path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if err := json.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if file.Sessions == nil {
		file.Sessions = map[string]State{}
	}
	return file, nil
}

func (k *KeyringStore) writeFile(file *sessionFile) error {
	if err := os.MkdirAll(filepath.Dir(k.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session file: %w", err)
	}

	if err := os.WriteFile(k.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
