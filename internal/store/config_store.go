package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

const configFile = "config.json"

// Settings are the persisted defaults for the CLI.
type Settings struct {
	Code string `json:"code,omitempty"` // announced peer code name
	Port int    `json:"port,omitempty"` // listen port, 0 picks a free one
}

// ConfigStore reads and writes Settings under a home directory.
type ConfigStore struct {
	dir string
	mu  sync.Mutex
}

// NewConfigStore returns a store rooted at dir.
func NewConfigStore(dir string) *ConfigStore { return &ConfigStore{dir: dir} }

// Load returns the saved settings; a missing file yields zero settings.
func (s *ConfigStore) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Settings
	if err := readJSON(filepath.Join(s.dir, configFile), &out); err != nil {
		return Settings{}, err
	}
	return out, nil
}

// Save persists settings.
func (s *ConfigStore) Save(cfg Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(filepath.Join(s.dir, configFile), cfg, 0o600)
}

// readJSON best-effort reads path into out; a missing file is not an error.
func readJSON(path string, out any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// writeJSON writes JSON via a temp file, then atomically replaces the target.
func writeJSON(path string, v any, mode os.FileMode) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
