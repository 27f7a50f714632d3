// Package dungeon provides the dungeon scene model: a tree of named Areas
// holding freely placed Cells, plus an id-indexed registry of those Cells.
//
// # Overview
//
// A [Layout] owns a [Hierarchy] (the Area tree, rooted at an Area named
// "Root") and a flat map from cell id to [Cell]. The tree records where a
// Cell is placed; the map records that it exists and gives O(1) lookup:
//
//	l := dungeon.New()
//	id := l.AddCell(dungeon.NewCell(0x0100), "Root/Wing1/RoomA")
//	c, ok := l.CellByID(id)
//
// # Paths
//
// Areas are addressed by slash-delimited paths. Empty segments are ignored
// and a leading segment equal to the root's name refers to the root, so
// "Root/Wing1" and "Wing1" are the same Area. [Hierarchy.GetOrCreateArea]
// creates missing Areas; [Hierarchy.Area] only looks them up. Sibling names
// are not required to be unique; lookups take the first match.
//
// # Ids
//
// Cell ids are issued by [Layout.AddCell] from a counter starting at 1 and
// are never reused, even after removal. [Layout.RestoreCell] puts a removed
// Cell back under its original id, which is what undo needs.
//
// # Errors
//
// Nothing here returns errors. Unknown ids and paths produce no-ops or a
// false "ok" result. Structural drift between the tree and the registry is
// reported by the validate package, not corrected here.
//
// # Concurrency
//
// Layouts are not safe for concurrent use. Callers sharing one across
// goroutines should validate or serialize a [Layout.Clone].
package dungeon
