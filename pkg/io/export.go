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

// WriteJSON encodes a Layout as JSON and writes it to w.
// Cells are written once, sorted by id; the Area tree follows depth-first
// from the root and refers to cells by id. The output can be re-imported
// with [ReadJSON].
//
// WriteJSON refuses with INVALID_DOCUMENT any layout [ReadJSON] would
// reject: a registered cell no Area holds, an Area holding a cell the
// registry does not know, a cell placed twice, or an Area with an empty name.
// Nothing is written in that case.
func WriteJSON(l *dungeon.Layout, w io.Writer) error {
	if err := checkPlacement(l); err != nil {
		return err
	}
	out := document{
		Version:    Version,
		NextCellID: l.NextCellID(),
		Cells:      make([]cellDoc, 0, l.CellCount()),
		Root:       encodeArea(l.Root()),
	}
	for _, c := range l.Cells() {
		out.Cells = append(out.Cells, cellDoc{
			ID:        c.ID,
			ContentID: c.ContentID,
			Position:  c.Position,
			Rotation:  geom.QuatXYZW(c.Rotation),
			Scale:     c.Scale,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func checkPlacement(l *dungeon.Layout) error {
	placed := make(map[uint32]string, l.CellCount())
	var err error
	l.Root().Walk(func(a *dungeon.Area) {
		if err != nil {
			return
		}
		path := a.Path()
		if a.Name == "" {
			err = errs.New(errs.ErrCodeInvalidDocument, "area with empty name under %q", parentPath(a))
			return
		}
		for _, c := range a.Cells() {
			if reg, ok := l.CellByID(c.ID); !ok || reg != c {
				err = errs.New(errs.ErrCodeInvalidDocument, "area %q holds unregistered cell %d", path, c.ID)
				return
			}
			if prev, dup := placed[c.ID]; dup {
				err = errs.New(errs.ErrCodeInvalidDocument, "cell %d placed in both %q and %q", c.ID, prev, path)
				return
			}
			placed[c.ID] = path
		}
	})
	if err != nil {
		return err
	}
	for _, c := range l.Cells() {
		if _, ok := placed[c.ID]; !ok {
			return errs.New(errs.ErrCodeInvalidDocument, "cell %d is not placed in any area", c.ID)
		}
	}
	return nil
}

func encodeArea(a *dungeon.Area) *areaDoc {
	d := &areaDoc{
		Name:     a.Name,
		Position: a.Position,
		Rotation: geom.QuatXYZW(a.Rotation),
		Scale:    a.Scale,
		CellIDs:  make([]uint32, 0, len(a.Cells())),
		Children: make([]*areaDoc, 0, len(a.Children())),
	}
	for _, c := range a.Cells() {
		d.CellIDs = append(d.CellIDs, c.ID)
	}
	for _, ch := range a.Children() {
		d.Children = append(d.Children, encodeArea(ch))
	}
	return d
}

// Marshal returns the JSON encoding of l.
func Marshal(l *dungeon.Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(l, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes a Layout to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(l *dungeon.Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(l, f)
}
