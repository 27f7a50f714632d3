package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dungeonbuilder/pkg/cache"
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon/command"
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon/validate"
	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
	"github.com/matzehuels/dungeonbuilder/pkg/io"
	"github.com/matzehuels/dungeonbuilder/pkg/observability"
	"github.com/matzehuels/dungeonbuilder/pkg/render/nodelink"
	"github.com/matzehuels/dungeonbuilder/pkg/script"
	"github.com/matzehuels/dungeonbuilder/pkg/store"
)

// Runner executes pipeline stages with caching. Both the CLI and the HTTP
// server use it so cache keys and logging stay consistent.
//
// The Runner holds no per-run state; one Runner may serve concurrent runs on
// different layouts.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL applies to every cache write. Zero means no expiry.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means cache.DefaultKeyer and a nil logger means log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs load, apply, validate and save.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.logger(opts)
	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	l, err := store.LoadLayout(ctx, opts.Store, opts.Name)
	if errs.Is(err, errs.ErrCodeLayoutNotFound) && opts.Create {
		l, err = dungeon.New(), nil
		result.Created = true
	}
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	logger.Info("loaded layout",
		"name", opts.Name,
		"cells", l.CellCount(),
		"created", result.Created,
		"duration", result.Stats.LoadTime)

	// Stage 2: Apply
	changed := result.Created
	if opts.Script != nil {
		applyStart := time.Now()
		res, err := script.Run(l, command.NewHistory(opts.HistoryLimit), opts.Script)
		result.Script = res
		if err != nil {
			return nil, fmt.Errorf("apply: %w", err)
		}
		result.Stats.ApplyTime = time.Since(applyStart)
		changed = changed || res.Steps > 0
		logger.Info("applied script",
			"name", opts.Script.Name,
			"steps", res.Steps,
			"duration", result.Stats.ApplyTime)
	}

	data, err := io.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	result.Layout = l
	result.LayoutHash = cache.Hash(data)
	result.Stats.CellCount = l.CellCount()
	result.Stats.AreaCount = len(l.Hierarchy().Areas())

	// Stage 3: Validate
	if !opts.SkipValidation {
		validateStart := time.Now()
		diags, hit, err := r.validate(ctx, opts.Name, l, result.LayoutHash, opts.Validation, opts.Refresh)
		if err != nil {
			return nil, fmt.Errorf("validate: %w", err)
		}
		result.Diagnostics = diags
		result.CacheInfo.ValidateHit = hit
		result.Stats.ValidateTime = time.Since(validateStart)
		logger.Info("validated layout",
			"diagnostics", len(diags),
			"cached", hit,
			"duration", result.Stats.ValidateTime)
	}

	// Stage 4: Save
	if opts.Save && changed {
		saveStart := time.Now()
		if err := opts.Store.Put(ctx, opts.Name, data); err != nil {
			return nil, fmt.Errorf("save: %w", err)
		}
		result.Saved = true
		result.Stats.SaveTime = time.Since(saveStart)
		logger.Info("saved layout",
			"name", opts.Name,
			"bytes", len(data),
			"duration", result.Stats.SaveTime)
	}

	return result, nil
}

// ValidateWithCacheInfo validates l and reports whether the report came from
// the cache. name only labels log lines and hooks.
func (r *Runner) ValidateWithCacheInfo(ctx context.Context, name string, l *dungeon.Layout, opts validate.Options) ([]validate.Diagnostic, bool, error) {
	data, err := io.Marshal(l)
	if err != nil {
		// No document means no cache key; the report still names the drift.
		r.Logger.Debug("validating without cache", "name", name, "err", err)
		return r.check(ctx, name, l, opts), false, nil
	}
	return r.validate(ctx, name, l, cache.Hash(data), opts, false)
}

// Validate is ValidateWithCacheInfo without the cache hit flag.
func (r *Runner) Validate(ctx context.Context, name string, l *dungeon.Layout, opts validate.Options) ([]validate.Diagnostic, error) {
	diags, _, err := r.ValidateWithCacheInfo(ctx, name, l, opts)
	return diags, err
}

func (r *Runner) validate(ctx context.Context, name string, l *dungeon.Layout, hash string, opts validate.Options, refresh bool) ([]validate.Diagnostic, bool, error) {
	key := r.Keyer.ValidationKey(hash, validationKeyOpts(opts))

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var diags []validate.Diagnostic
			if err := json.Unmarshal(data, &diags); err == nil {
				observability.Cache().OnCacheHit(ctx, "validate")
				return diags, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		}
	}
	observability.Cache().OnCacheMiss(ctx, "validate")

	diags := r.check(ctx, name, l, opts)
	if data, err := json.Marshal(diags); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "validate", len(data))
		}
	}
	return diags, false, nil
}

func (r *Runner) check(ctx context.Context, name string, l *dungeon.Layout, opts validate.Options) []validate.Diagnostic {
	hooks := observability.Validation()
	start := time.Now()
	hooks.OnValidateStart(ctx, name, l.CellCount())
	diags := validate.ValidateWith(l, opts)
	hooks.OnValidateComplete(ctx, name, len(diags), time.Since(start))

	if diags == nil {
		diags = []validate.Diagnostic{}
	}
	return diags
}

// RenderTreeWithCacheInfo renders the Area tree of l. Graphviz output is
// cached; text output depends on terminal styles and is always rendered.
func (r *Runner) RenderTreeWithCacheInfo(ctx context.Context, l *dungeon.Layout, opts TreeOptions) ([]byte, bool, error) {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, false, err
	}
	nlOpts := nodelink.Options{ShowCells: opts.ShowCells}
	if opts.Format == FormatText {
		return []byte(nodelink.Text(l, nlOpts, opts.Styles)), false, nil
	}

	data, err := io.Marshal(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	key := r.Keyer.TreeKey(cache.Hash(data), opts.keyOpts())
	if out, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "tree")
		return out, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "tree")

	dot := nodelink.ToDOT(l, nlOpts)
	out := []byte(dot)
	switch opts.Format {
	case FormatSVG:
		if out, err = nodelink.RenderSVG(ctx, dot); err != nil {
			return nil, false, fmt.Errorf("render svg: %w", err)
		}
	case FormatPNG:
		if out, err = nodelink.RenderPNG(ctx, dot); err != nil {
			return nil, false, fmt.Errorf("render png: %w", err)
		}
	}
	if err := r.Cache.Set(ctx, key, out, r.TTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "tree", len(out))
	}
	return out, false, nil
}

// RenderTree is RenderTreeWithCacheInfo without the cache hit flag.
func (r *Runner) RenderTree(ctx context.Context, l *dungeon.Layout, opts TreeOptions) ([]byte, error) {
	out, _, err := r.RenderTreeWithCacheInfo(ctx, l, opts)
	return out, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
