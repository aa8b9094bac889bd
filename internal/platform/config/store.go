package config

import (
	"os"
	"slices"
	"strings"

	apperrors "github.com/bruhmagedon/advanced-jwt-server/internal/platform/errors"
)

// Store is an immutable snapshot of configuration entries.
type Store struct {
	entries map[string]string
}

// NewStore copies entries into a new Store.
func NewStore(entries map[string]string) *Store {
	copied := make(map[string]string, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return &Store{entries: copied}
}

// StoreFromEnviron snapshots the current process environment.
func StoreFromEnviron() *Store {
	environ := os.Environ()
	entries := make(map[string]string, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		entries[key] = value
	}
	return &Store{entries: entries}
}

// Lookup returns the raw value for key. It has the shape of os.LookupEnv.
func (s *Store) Lookup(key string) (string, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Require returns the value for key, or a missing-configuration error when
// the key is unset or empty. There is no default.
func (s *Store) Require(key string) (string, error) {
	v, ok := s.entries[key]
	if !ok || v == "" {
		return "", apperrors.MissingConfigurationError(key)
	}
	return v, nil
}

// Keys returns the sorted entry keys.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
