// Package store persists named layout documents.
//
// A [Store] holds serialized documents (the JSON produced by the io package)
// under a layout name. Three backends are provided:
//
//   - [FileStore]: one <name>.json per layout in a directory (CLI default)
//   - [SQLiteStore]: a single SQLite database file
//   - [MongoStore]: a MongoDB collection, for a shared server deployment
//
// [LoadLayout] and [SaveLayout] convert between documents and
// [dungeon.Layout] values and report timings through the observability
// store hooks.
package store

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
	"github.com/matzehuels/dungeonbuilder/pkg/io"
	"github.com/matzehuels/dungeonbuilder/pkg/observability"
)

// Entry describes a stored layout.
type Entry struct {
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the interface for layout storage backends. Names must pass
// errors.ValidateLayoutName.
type Store interface {
	// Get returns the document stored under name, or a LAYOUT_NOT_FOUND error.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put creates or replaces the document stored under name.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes name, returning LAYOUT_NOT_FOUND if it does not exist.
	Delete(ctx context.Context, name string) error

	// List returns every stored layout sorted by name.
	List(ctx context.Context) ([]Entry, error)

	// Backend names the implementation ("file", "sqlite", "mongo").
	Backend() string

	Close() error
}

// LoadLayout reads and parses the layout stored under name.
func LoadLayout(ctx context.Context, s Store, name string) (*dungeon.Layout, error) {
	start := time.Now()
	l, err := loadLayout(ctx, s, name)
	observability.Store().OnLoad(ctx, s.Backend(), name, time.Since(start), err)
	return l, err
}

func loadLayout(ctx context.Context, s Store, name string) (*dungeon.Layout, error) {
	data, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	l, err := io.ReadJSON(bytes.NewReader(data))
	if err != nil {
		code := errs.GetCode(err)
		if code == "" {
			code = errs.ErrCodeInvalidDocument
		}
		return nil, errs.Wrap(code, err, "layout %q", name)
	}
	return l, nil
}

// SaveLayout serializes l and stores it under name.
func SaveLayout(ctx context.Context, s Store, name string, l *dungeon.Layout) error {
	start := time.Now()
	data, err := io.Marshal(l)
	if err == nil {
		err = s.Put(ctx, name, data)
	}
	observability.Store().OnSave(ctx, s.Backend(), name, len(data), time.Since(start), err)
	return err
}

func notFound(name string) error {
	return errs.New(errs.ErrCodeLayoutNotFound, "layout %q not found", name)
}

func storageErr(err error, format string, args ...any) error {
	return errs.Wrap(errs.ErrCodeStorage, err, format, args...)
}
