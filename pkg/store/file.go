package store

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
)

// FileStore keeps each layout as <dir>/<name>.json.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, storageErr(err, "create layout dir")
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := errs.ValidateLayoutName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, storageErr(err, "read layout %q", name)
	}
	return data, nil
}

// Put writes through a temporary file so a crash never leaves a truncated
// document behind.
func (s *FileStore) Put(ctx context.Context, name string, data []byte) error {
	if err := errs.ValidateLayoutName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return storageErr(err, "write layout %q", name)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		_ = os.Remove(tmp)
		return storageErr(err, "write layout %q", name)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errs.ValidateLayoutName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return notFound(name)
	}
	if err != nil {
		return storageErr(err, "remove layout %q", name)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, storageErr(err, "read layout dir")
	}
	var out []Entry
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".json" {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{
			Name:      strings.TrimSuffix(de.Name(), ".json"),
			Size:      int(info.Size()),
			UpdatedAt: info.ModTime(),
		})
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *FileStore) Backend() string { return "file" }

// Dir returns the layout directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
