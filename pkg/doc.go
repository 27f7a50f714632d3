// Package pkg provides the core libraries of dungeonbuilder, an editor for
// dungeon level layouts built from placed Cells grouped into a tree of Areas.
//
// # Overview
//
// The pkg directory is organized into three groups:
//
//  1. Domain: [dungeon], [dungeon/command], [dungeon/validate], [geom]
//  2. Persistence: [io], [store], [cache]
//  3. Orchestration: [script], [pipeline], [session], [server]
//
// # Architecture
//
// A typical edit flows through the packages like this:
//
//	store.Store / io.ImportJSON
//	         ↓
//	    [dungeon] Layout (cell registry + Area hierarchy)
//	         ↓
//	    [dungeon/command] History (undoable edits)
//	         ↓
//	    [dungeon/validate] diagnostics
//	         ↓
//	    store.Store / io.ExportJSON / [render/nodelink] tree
//
// # Quick Start
//
// Build a layout, edit it through a history and check the result:
//
//	import (
//	    "github.com/matzehuels/dungeonbuilder/pkg/dungeon"
//	    "github.com/matzehuels/dungeonbuilder/pkg/dungeon/command"
//	    "github.com/matzehuels/dungeonbuilder/pkg/dungeon/validate"
//	    "github.com/matzehuels/dungeonbuilder/pkg/geom"
//	)
//
//	l := dungeon.New()
//	h := command.NewHistory(50)
//
//	cell := dungeon.NewCell(0x100)
//	h.Execute(command.NewAddCell(l, cell, "Root/Wing1/Hall"))
//	h.Execute(command.NewMoveCell(l, cell, geom.V(1, 0, 0)))
//	h.Undo()
//
//	for _, d := range validate.Validate(l) {
//	    fmt.Println(d)
//	}
//
// # Main Packages
//
// [dungeon] holds the data model. A Layout owns a Hierarchy of Areas and an
// id-indexed registry of Cells. Cell ids are assigned by the Layout and never
// reused.
//
// [dungeon/command] implements every edit as a Command with Execute and Undo,
// and a bounded History with undo and redo stacks.
//
// [dungeon/validate] reports overlapping and disconnected cells, bad scales,
// out-of-bounds positions and drift between the registry and the hierarchy.
//
// [geom] wraps mathgl vectors and quaternions with the bounding box and
// transform helpers the rest of the module needs.
//
// [io] reads and writes the versioned JSON layout document.
//
// [store] keeps named layouts in a directory, a SQLite database or MongoDB.
// [cache] caches validation reports and rendered trees on disk or in Redis.
//
// [script] parses TOML edit scripts. [pipeline] runs them against a store
// with validation and caching. [session] pairs a named layout with its
// History for interactive editing. [server] exposes stored layouts over HTTP.
//
// [render/nodelink] draws the Area tree as text, DOT, SVG or PNG.
//
// # Errors
//
// User-facing failures carry a code from [errors]; use errors.Is with a code
// or errors.GetCode to branch on them.
//
// [dungeon]: https://pkg.go.dev/github.com/matzehuels/dungeonbuilder/pkg/dungeon
// [dungeon/command]: https://pkg.go.dev/github.com/matzehuels/dungeonbuilder/pkg/dungeon/command
// [dungeon/validate]: https://pkg.go.dev/github.com/matzehuels/dungeonbuilder/pkg/dungeon/validate
// [geom]: https://pkg.go.dev/github.com/matzehuels/dungeonbuilder/pkg/geom
// [io]: https://pkg.go.dev/github.com/matzehuels/dungeonbuilder/pkg/io
// [store]: https://pkg.go.dev/github.com/matzehuels/dungeonbuilder/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/dungeonbuilder/pkg/cache
// [script]: https://pkg.go.dev/github.com/matzehuels/dungeonbuilder/pkg/script
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/dungeonbuilder/pkg/pipeline
// [session]: https://pkg.go.dev/github.com/matzehuels/dungeonbuilder/pkg/session
// [server]: https://pkg.go.dev/github.com/matzehuels/dungeonbuilder/pkg/server
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/dungeonbuilder/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/dungeonbuilder/pkg/errors
package pkg
