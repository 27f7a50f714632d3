package store

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/dungeonbuilder/pkg/config"
	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
)

// Open returns the backend selected by cfg. Empty directory and database
// paths fall back to locations under config.DataDir.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.StoreFile, "":
		dir := cfg.Dir
		if dir == "" {
			base, err := config.DataDir()
			if err != nil {
				return nil, storageErr(err, "resolve data dir")
			}
			dir = filepath.Join(base, "layouts")
		}
		return NewFileStore(dir)
	case config.StoreSQLite:
		path := cfg.SQLitePath
		if path == "" {
			base, err := config.DataDir()
			if err != nil {
				return nil, storageErr(err, "resolve data dir")
			}
			path = filepath.Join(base, "layouts.db")
		}
		return OpenSQLite(ctx, path)
	case config.StoreMongo:
		return OpenMongo(ctx, MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
	}
}
