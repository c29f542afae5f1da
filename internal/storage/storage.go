// Package storage provides the key-value persistence boundary used by the
// planner stores. Each key holds one JSON-encoded payload; backends differ
// only in where the bytes live.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

// KV is the persistence boundary: get/set/remove of text payloads by key.
// Get reports absence via the second return value, not an error.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Backend names accepted in Config.Backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config selects and parameterizes a backend.
type Config struct {
	Backend string
	Path    string
}

// Open creates the configured backend. An empty backend defaults to "file".
func Open(cfg Config) (KV, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile, "":
		return OpenFile(cfg.Path)
	case BackendSQLite:
		return OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

var errEmptyKey = errors.New("storage: empty key")
