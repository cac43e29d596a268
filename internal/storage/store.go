package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when the requested transcript object does not exist
	ErrNotFound = errors.New("object not found")
	// ErrWriteFailed is returned when an object could not be persisted
	ErrWriteFailed = errors.New("write failed")
)

// Fetcher reads a named object
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Storer persists a named object, replacing any previous content
type Storer interface {
	Store(ctx context.Context, name string, data []byte) error
}

// Lister enumerates the transcript objects available to a Fetcher
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// FSStore is a Fetcher, Storer and Lister rooted at a directory of an afero filesystem
type FSStore struct {
	fs     afero.Fs
	root   string
	logger *zap.Logger
}

// NewFSStore creates an FSStore over fs rooted at root
func NewFSStore(fs afero.Fs, root string) *FSStore {
	return NewFSStoreWithLogger(fs, root, nil)
}

// NewFSStoreWithLogger creates an FSStore with a custom logger
func NewFSStoreWithLogger(fs afero.Fs, root string, logger *zap.Logger) *FSStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FSStore{
		fs:     fs,
		root:   root,
		logger: logger,
	}
}

// Root returns the directory the store is rooted at
func (s *FSStore) Root() string {
	return s.root
}

func (s *FSStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Fetch reads the named object
func (s *FSStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.path(name)
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("fetch %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}

	s.logger.Debug("fetched object",
		zap.String("path", path),
		zap.Int("bytes", len(data)))

	return data, nil
}

// Exists reports whether the named object is present
func (s *FSStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	exists, err := afero.Exists(s.fs, s.path(name))
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", s.path(name), err)
	}
	return exists, nil
}

// Store writes data to the named object, creating parent directories as needed
func (s *FSStore) Store(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.path(name)
	if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: create directory for %s: %v", ErrWriteFailed, path, err)
	}

	if err := afero.WriteFile(s.fs, path, data, 0644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrWriteFailed, path, err)
	}

	s.logger.Debug("stored object",
		zap.String("path", path),
		zap.Int("bytes", len(data)))

	return nil
}

// List returns the names of the .txt objects directly under the root, sorted
func (s *FSStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("list %s: %w", s.root, ErrNotFound)
		}
		return nil, fmt.Errorf("list %s: %w", s.root, err)
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".txt") {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)

	return names, nil
}
