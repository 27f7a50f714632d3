package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
	"github.com/matzehuels/dungeonbuilder/pkg/geom"
)

// ReadJSON decodes a JSON document from r into a new Layout.
//
// ReadJSON fails with an INVALID_DOCUMENT error if:
//   - The JSON is malformed or has no root Area
//   - A cell has id 0, or two cells share an id
//   - An Area has an empty name
//   - An Area refers to a cell id missing from the cell table
//   - A cell is referenced by more than one Area, or by none
//
// and with UNSUPPORTED_VERSION if the version field is not [Version].
//
// The reloaded id counter is the larger of the stored next_cell_id and one
// past the highest cell id, so ids are never reused after a reload.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*dungeon.Layout, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidDocument, err, "decode")
	}
	if doc.Version != Version {
		return nil, errs.New(errs.ErrCodeUnsupportedVersion, "document version %d (want %d)", doc.Version, Version)
	}
	if doc.Root == nil {
		return nil, errs.New(errs.ErrCodeInvalidDocument, "missing root area")
	}

	cells := make(map[uint32]*dungeon.Cell, len(doc.Cells))
	var maxID uint32
	for _, cd := range doc.Cells {
		if cd.ID == 0 {
			return nil, errs.New(errs.ErrCodeInvalidDocument, "cell with id 0")
		}
		if _, dup := cells[cd.ID]; dup {
			return nil, errs.New(errs.ErrCodeInvalidDocument, "duplicate cell id %d", cd.ID)
		}
		cells[cd.ID] = &dungeon.Cell{
			ID:        cd.ID,
			ContentID: cd.ContentID,
			Position:  cd.Position,
			Rotation:  quat(cd.Rotation),
			Scale:     cd.Scale,
		}
		maxID = max(maxID, cd.ID)
	}

	l := dungeon.New()
	placed := make(map[uint32]string, len(cells))
	if err := decodeArea(l, l.Root(), doc.Root, cells, placed); err != nil {
		return nil, err
	}
	for _, cd := range doc.Cells {
		if _, ok := placed[cd.ID]; !ok {
			return nil, errs.New(errs.ErrCodeInvalidDocument, "cell %d is not placed in any area", cd.ID)
		}
	}

	l.ReserveCellIDs(max(doc.NextCellID, maxID+1))
	return l, nil
}

func decodeArea(l *dungeon.Layout, a *dungeon.Area, d *areaDoc, cells map[uint32]*dungeon.Cell, placed map[uint32]string) error {
	if d.Name == "" {
		return errs.New(errs.ErrCodeInvalidDocument, "area with empty name under %q", parentPath(a))
	}
	a.Name = d.Name
	a.Position = d.Position
	a.Rotation = quat(d.Rotation)
	a.Scale = d.Scale

	path := a.Path()
	for _, id := range d.CellIDs {
		c, ok := cells[id]
		if !ok {
			return errs.New(errs.ErrCodeInvalidDocument, "area %q refers to unknown cell %d", path, id)
		}
		if prev, dup := placed[id]; dup {
			return errs.New(errs.ErrCodeInvalidDocument, "cell %d placed in both %q and %q", id, prev, path)
		}
		placed[id] = path
		l.RestoreCellInto(c, a)
	}
	for _, cd := range d.Children {
		if cd == nil {
			return errs.New(errs.ErrCodeInvalidDocument, "null child area under %q", path)
		}
		child := dungeon.NewArea(cd.Name)
		a.AddChild(child)
		if err := decodeArea(l, child, cd, cells, placed); err != nil {
			return err
		}
	}
	return nil
}

// quat converts an [x, y, z, w] array. An all-zero (absent) rotation reads
// as identity.
func quat(r [4]float32) geom.Quat {
	if r == [4]float32{} {
		return geom.Identity()
	}
	return geom.Q(r[0], r[1], r[2], r[3])
}

func parentPath(a *dungeon.Area) string {
	if a.Parent() == nil {
		return ""
	}
	return a.Parent().Path()
}

// Unmarshal decodes a document held in memory.
func Unmarshal(data []byte) (*dungeon.Layout, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads a JSON file at path and returns the decoded Layout.
//
// The error wraps the underlying cause with the file path for context, and
// carries the same codes as [ReadJSON].
func ImportJSON(path string) (*dungeon.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
