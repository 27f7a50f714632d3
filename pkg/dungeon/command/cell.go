package command

import (
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	"github.com/matzehuels/dungeonbuilder/pkg/geom"
)

// AddCell inserts a cell into a Layout. The first Execute assigns a fresh id;
// a redo after undo restores the cell under that same id. Areas created to
// hold the cell are removed again on undo.
type AddCell struct {
	layout *dungeon.Layout
	cell   *dungeon.Cell
	path   string
	area   *dungeon.Area
	added  bool

	created       *dungeon.Area
	createdParent *dungeon.Area
}

// NewAddCell creates a command placing cell in the Area at path.
func NewAddCell(l *dungeon.Layout, cell *dungeon.Cell, path string) *AddCell {
	return &AddCell{layout: l, cell: cell, path: path}
}

// NewAddCellTo creates a command placing cell directly in area.
func NewAddCellTo(l *dungeon.Layout, cell *dungeon.Cell, area *dungeon.Area) *AddCell {
	return &AddCell{layout: l, cell: cell, path: area.Path(), area: area}
}

func (c *AddCell) Execute() {
	if c.area != nil {
		if c.added {
			c.layout.RestoreCellInto(c.cell, c.area)
			return
		}
		c.layout.AddCellInto(c.cell, c.area)
		c.added = true
		return
	}
	if !c.added {
		_, c.created = c.layout.Hierarchy().EnsureArea(c.path)
		if c.created != nil {
			c.createdParent = c.created.Parent()
		}
		c.layout.AddCell(c.cell, c.path)
		c.added = true
		return
	}
	if c.created != nil {
		c.createdParent.AddChild(c.created)
	}
	c.layout.RestoreCell(c.cell, c.path)
}

func (c *AddCell) Undo() {
	c.layout.RemoveCell(c.cell.ID)
	if c.created != nil {
		c.createdParent.RemoveChild(c.created)
	}
}

func (c *AddCell) Name() string { return "add cell" }

// Cell returns the inserted cell. Its ID is set after the first Execute.
func (c *AddCell) Cell() *dungeon.Cell { return c.cell }

// RemoveCell removes a registered cell; undo puts the same object back under
// the same id at the captured path.
type RemoveCell struct {
	layout  *dungeon.Layout
	cell    *dungeon.Cell
	path    string
	area    *dungeon.Area
	removed bool
}

// NewRemoveCell creates a removal command. An empty path captures the path of
// the Area currently holding the cell.
func NewRemoveCell(l *dungeon.Layout, cell *dungeon.Cell, path string) *RemoveCell {
	if path == "" {
		if a, ok := l.AreaOf(cell.ID); ok {
			path = a.Path()
		}
	}
	return &RemoveCell{layout: l, cell: cell, path: path}
}

// NewRemoveCellFrom creates a removal command whose undo puts the cell back
// into area itself rather than into whatever its path resolves to.
func NewRemoveCellFrom(l *dungeon.Layout, cell *dungeon.Cell, area *dungeon.Area) *RemoveCell {
	return &RemoveCell{layout: l, cell: cell, path: area.Path(), area: area}
}

func (c *RemoveCell) Execute() {
	_, c.removed = c.layout.CellByID(c.cell.ID)
	c.layout.RemoveCell(c.cell.ID)
}

func (c *RemoveCell) Undo() {
	switch {
	case !c.removed:
	case c.area != nil:
		c.layout.RestoreCellInto(c.cell, c.area)
	default:
		c.layout.RestoreCell(c.cell, c.path)
	}
}

func (c *RemoveCell) Name() string { return "remove cell" }

// cellField swaps one transform field of a cell between a captured old value
// and a new one, keeping the registry entry in step.
type cellField[T any] struct {
	layout   *dungeon.Layout
	cell     *dungeon.Cell
	field    *T
	from, to T
}

func newCellField[T any](l *dungeon.Layout, cell *dungeon.Cell, field *T, v T) cellField[T] {
	return cellField[T]{layout: l, cell: cell, field: field, from: *field, to: v}
}

func (c *cellField[T]) set(v T) {
	*c.field = v
	c.layout.UpdateCell(c.cell)
}

func (c *cellField[T]) Execute() { c.set(c.to) }
func (c *cellField[T]) Undo()    { c.set(c.from) }

// MoveCell sets a cell's position.
type MoveCell struct{ cellField[geom.Vec3] }

// NewMoveCell captures the cell's current position and targets position.
func NewMoveCell(l *dungeon.Layout, cell *dungeon.Cell, position geom.Vec3) *MoveCell {
	return &MoveCell{newCellField(l, cell, &cell.Position, position)}
}

func (c *MoveCell) Name() string { return "move cell" }

// ScaleCell sets a cell's scale.
type ScaleCell struct{ cellField[geom.Vec3] }

// NewScaleCell captures the cell's current scale and targets scale.
func NewScaleCell(l *dungeon.Layout, cell *dungeon.Cell, scale geom.Vec3) *ScaleCell {
	return &ScaleCell{newCellField(l, cell, &cell.Scale, scale)}
}

func (c *ScaleCell) Name() string { return "scale cell" }

// RotateCell sets a cell's rotation. The new rotation is normalized.
type RotateCell struct{ cellField[geom.Quat] }

// NewRotateCell captures the cell's current rotation and targets rotation.
func NewRotateCell(l *dungeon.Layout, cell *dungeon.Cell, rotation geom.Quat) *RotateCell {
	return &RotateCell{newCellField(l, cell, &cell.Rotation, rotation.Normalize())}
}

func (c *RotateCell) Name() string { return "rotate cell" }
