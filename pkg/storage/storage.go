package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotFound is returned when a requested path does not exist in storage.
var ErrNotFound = errors.New("not found")

// Storage is a flat key-value file store. Paths are slash separated and
// relative to the store root; List returns the direct entries under a prefix.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// Watcher reports paths under prefix that another process changed. Watch
// blocks until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, prefix string, onChange func(path string)) error
}

var _ Watcher = (*LocalStorage)(nil)

// AsWatcher returns s as a Watcher when the store can observe outside
// changes. S3Storage cannot.
func AsWatcher(s Storage) (Watcher, bool) {
	w, ok := s.(Watcher)
	return w, ok
}

const documentExt = ".yaml"

// DocumentPath is where the YAML document with the given id lives under
// prefix.
func DocumentPath(prefix, id string) string {
	return path.Join(prefix, id+documentExt)
}

// DocumentID is the inverse of DocumentPath. It reports false for paths
// outside prefix, nested paths and non-document files.
func DocumentID(prefix, p string) (string, bool) {
	dir, file := path.Split(p)
	if strings.TrimSuffix(dir, "/") != strings.Trim(prefix, "/") || !strings.HasSuffix(file, documentExt) {
		return "", false
	}
	id := strings.TrimSuffix(file, documentExt)
	return id, id != ""
}
