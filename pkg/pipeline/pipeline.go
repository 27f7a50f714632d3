// Package pipeline runs the batch workflow shared by the CLI and the HTTP
// server: load a stored layout, apply an edit script, validate, save.
//
// # Stages
//
//  1. Load: read the named layout from a store (or start empty)
//  2. Apply: run an edit script through an undo history
//  3. Validate: run the structural checks, cached by document hash
//  4. Save: write the result back when anything changed
//
// Each stage can also be run on its own through the [Runner] methods.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Store:  st,
//	    Name:   "crypt",
//	    Script: s,
//	    Save:   true,
//	})
//	for _, d := range result.Diagnostics {
//	    fmt.Println(d.Message)
//	}
//
// # Caching
//
// Validation reports and rendered area trees are keyed by the SHA-256 of the
// serialized layout plus every option that affects the output, so an edit
// or a threshold change always misses.
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dungeonbuilder/pkg/cache"
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon/validate"
	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
	"github.com/matzehuels/dungeonbuilder/pkg/render/nodelink"
	"github.com/matzehuels/dungeonbuilder/pkg/script"
	"github.com/matzehuels/dungeonbuilder/pkg/store"
)

// Tree output formats.
const (
	FormatText = "text"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported tree formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// ValidateFormat checks that a tree format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid format: %q (must be one of: text, dot, svg, png)", format)
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options configures a full pipeline run.
type Options struct {
	// Store holds the layout. Required.
	Store store.Store
	// Name is the stored layout name. Required.
	Name string
	// Create starts from an empty layout when Name is not stored yet.
	Create bool

	// Script is applied after loading. Optional.
	Script *script.Script
	// HistoryLimit bounds the history the script runs on.
	HistoryLimit int

	// SkipValidation disables the validation stage.
	SkipValidation bool
	// Validation tunes the validator. Zero fields take defaults.
	Validation validate.Options
	// Refresh ignores cached reports (but still stores the fresh one).
	Refresh bool

	// Save writes the layout back after a script changed it.
	Save bool

	// Logger overrides the runner logger for this run.
	Logger *log.Logger
}

// ValidateAndSetDefaults checks required fields and fills defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Store == nil {
		return errs.New(errs.ErrCodeInvalidInput, "a store is required")
	}
	if err := errs.ValidateLayoutName(o.Name); err != nil {
		return err
	}
	if o.HistoryLimit < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "history limit must not be negative")
	}
	o.Validation = withDefaults(o.Validation)
	return nil
}

func withDefaults(v validate.Options) validate.Options {
	if v.NeighborThreshold <= 0 {
		v.NeighborThreshold = validate.DefaultNeighborThreshold
	}
	if v.WorldBound <= 0 {
		v.WorldBound = validate.DefaultWorldBound
	}
	return v
}

func validationKeyOpts(v validate.Options) cache.ValidationKeyOpts {
	v = withDefaults(v)
	return cache.ValidationKeyOpts{
		NeighborThreshold: v.NeighborThreshold,
		WorldBound:        v.WorldBound,
	}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the layout after all stages.
	Layout *dungeon.Layout

	// LayoutHash is the content hash of the final layout document.
	LayoutHash string

	// Created is true when the layout was not stored before this run.
	Created bool

	// Script describes the applied script, if any.
	Script script.Result

	// Diagnostics are the validation findings. Empty means valid.
	Diagnostics []validate.Diagnostic

	// Saved is true when the layout was written back.
	Saved bool

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CellCount    int
	AreaCount    int
	LoadTime     time.Duration
	ApplyTime    time.Duration
	ValidateTime time.Duration
	SaveTime     time.Duration
}

// CacheInfo tracks cache hits per stage.
type CacheInfo struct {
	ValidateHit bool
}

// TreeOptions configures [Runner.RenderTree].
type TreeOptions struct {
	Format    string
	ShowCells bool
	// Styles applies to the text format only.
	Styles nodelink.TextStyles
}

func (o TreeOptions) keyOpts() cache.TreeKeyOpts {
	return cache.TreeKeyOpts{Format: o.Format, ShowCells: o.ShowCells}
}

func (r *Result) String() string {
	return fmt.Sprintf("%d cells, %d areas, %d diagnostics", r.Stats.CellCount, r.Stats.AreaCount, len(r.Diagnostics))
}
