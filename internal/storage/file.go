package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// corruptSuffix is appended to an unreadable document when it is set aside.
const corruptSuffix = ".corrupt"

// FileStore keeps all entries in a single JSON document on disk.
// Every mutation rewrites the document.
type FileStore struct {
	path    string
	log     *zap.Logger
	mu      sync.Mutex
	entries map[string]string
	loaded  bool
}

// NewFileStore returns a store backed by the file at path. The file is
// created on first write.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	fs := &FileStore{path: path, log: zap.NewNop()}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithFileLogger sets the logger used when an unreadable document is reset.
func WithFileLogger(l *zap.Logger) FileOption {
	return func(fs *FileStore) {
		fs.log = l
	}
}

// Path returns the backing file path.
func (fs *FileStore) Path() string {
	return fs.path
}

// load reads the document once. A document that does not decode is renamed
// to <path>.corrupt and the store starts empty. Callers hold fs.mu.
func (fs *FileStore) load() error {
	if fs.loaded {
		return nil
	}
	f, err := os.Open(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			fs.entries = make(map[string]string)
			fs.loaded = true
			return nil
		}
		return err
	}
	defer f.Close()

	entries := make(map[string]string)
	if err := json.NewDecoder(f).Decode(&entries); err != nil {
		f.Close()
		backup := fs.path + corruptSuffix
		if rerr := os.Rename(fs.path, backup); rerr != nil {
			return fmt.Errorf("decode %s: %w", fs.path, err)
		}
		fs.log.Warn("reset unreadable store", zap.String("path", fs.path),
			zap.String("backup", backup), zap.Error(err))
		entries = nil
	}
	if entries == nil {
		entries = make(map[string]string)
	}
	fs.entries = entries
	fs.loaded = true
	return nil
}

// save writes the document to a temp file and renames it over the original.
func (fs *FileStore) save() error {
	dir := filepath.Dir(fs.path)
	tmp, err := os.CreateTemp(dir, ".storage-*.json")
	if err != nil {
		return err
	}
	if err := json.NewEncoder(tmp).Encode(fs.entries); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), fs.path)
}

// Get implements Store.
func (fs *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.load(); err != nil {
		return "", false, err
	}
	v, ok := fs.entries[key]
	return v, ok, nil
}

// Set implements Store.
func (fs *FileStore) Set(_ context.Context, key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.load(); err != nil {
		return err
	}
	fs.entries[key] = value
	return fs.save()
}

// Delete implements Store.
func (fs *FileStore) Delete(_ context.Context, key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.load(); err != nil {
		return err
	}
	if _, ok := fs.entries[key]; !ok {
		return nil
	}
	delete(fs.entries, key)
	return fs.save()
}
