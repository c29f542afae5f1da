package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	tmpSuffix       = ".tmp.json"
	backupSuffix    = ".backup"
	filePermissions = 0644
)

// File persists the whole KV as one pretty-printed JSON object, written
// atomically: marshal, write to a temp file, rename over the real one. The
// previous file is kept with a .backup suffix.
type File struct {
	mu   sync.Mutex
	path string
}

// OpenFile creates a file-backed store at path. The file itself is created
// lazily on first write; a missing file reads as empty.
func OpenFile(path string) (*File, error) {
	if path == "" {
		path = "dayoff_data.json"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}
	return &File{path: path}, nil
}

func (f *File) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, errEmptyKey
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *File) Set(key, value string) error {
	if key == "" {
		return errEmptyKey
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		// A corrupt file fails the write rather than silently discarding
		// every other key. The operator recovers from the file itself.
		return err
	}
	data[key] = value
	return f.write(data)
}

func (f *File) Delete(key string) error {
	if key == "" {
		return errEmptyKey
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return err
	}
	delete(data, key)
	return f.write(data)
}

func (f *File) Close() error { return nil }

func (f *File) read() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	data := make(map[string]string)
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return data, nil
}

func (f *File) write(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	// Keep the previous version around.
	if _, err := os.Stat(f.path); err == nil {
		if err := os.Rename(f.path, f.path+backupSuffix); err != nil {
			return fmt.Errorf("create backup: %w", err)
		}
	}

	tmpFile := f.path + tmpSuffix
	if err := os.WriteFile(tmpFile, raw, filePermissions); err != nil {
		return err
	}
	return os.Rename(tmpFile, f.path)
}
