// Package cache stores derived artifacts such as validation reports and
// rendered area trees, keyed by a hash of the layout document they came from.
//
// Backends:
//   - [FileCache]: one JSON file per entry under a cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance for the HTTP server
//   - [NullCache]: never stores anything (--no-cache)
//
// Keys are built by a [Keyer] so that every option that affects an artifact
// is part of its key. Changing a validator threshold therefore never serves a
// stale report.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// ValidationKey keys a validation report for a layout document.
	ValidationKey(layoutHash string, opts ValidationKeyOpts) string

	// TreeKey keys a rendered area tree for a layout document.
	TreeKey(layoutHash string, opts TreeKeyOpts) string
}

// ValidationKeyOpts are the validator settings that change a report.
type ValidationKeyOpts struct {
	NeighborThreshold float32 `json:"neighbor_threshold"`
	WorldBound        float32 `json:"world_bound"`
}

// TreeKeyOpts are the render settings that change a tree artifact.
type TreeKeyOpts struct {
	Format    string `json:"format"`
	ShowCells bool   `json:"show_cells"`
}

// DefaultKeyer hashes the options together with the layout hash.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ValidationKey(layoutHash string, opts ValidationKeyOpts) string {
	return hashKey("validate", layoutHash, opts)
}

func (DefaultKeyer) TreeKey(layoutHash string, opts TreeKeyOpts) string {
	return hashKey("tree", layoutHash, opts)
}
