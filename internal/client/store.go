package client

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Store is the persistent tier of the client cache: a flat key-value store
// that survives process restarts. Implementations must tolerate concurrent
// writers with last-write-wins semantics (writes are whole-entry overwrites).
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, data []byte) error
	Delete(key string) error

	// Keys returns every stored key that starts with prefix.
	Keys(prefix string) []string
}

// FileStore keeps one file per key under a directory. Key strings are
// URL-escaped to form safe file names, so any endpoint signature round-trips.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+".json")
}

func (s *FileStore) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *FileStore) Set(key string, data []byte) error {
	return os.WriteFile(s.path(key), data, 0o644)
}

func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *FileStore) Keys(prefix string) []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		key, err := url.QueryUnescape(name)
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}

var _ Store = (*FileStore)(nil)
