package command

import (
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	"github.com/matzehuels/dungeonbuilder/pkg/geom"
)

// CorridorWidth is the minimum extent of a corridor cell on every axis.
const CorridorWidth = 1

// AddCorridor adds one cell spanning the axis-aligned bounds of a polyline.
// The cell sits at the centre of the bounds and is scaled to their extent,
// never thinner than CorridorWidth.
type AddCorridor struct {
	*AddCell
	points []geom.Vec3
}

// NewAddCorridor builds the corridor cell for points and places it at path.
func NewAddCorridor(l *dungeon.Layout, points []geom.Vec3, path string, contentID uint32) *AddCorridor {
	box := geom.Bounds(points)
	cell := dungeon.NewCell(contentID)
	cell.Position = box.Center()
	size := box.Size()
	for i := range size {
		size[i] = max(size[i], CorridorWidth)
	}
	cell.Scale = size
	return &AddCorridor{AddCell: NewAddCell(l, cell, path), points: points}
}

func (c *AddCorridor) Name() string { return "add corridor" }

// Points returns the polyline the corridor was built from.
func (c *AddCorridor) Points() []geom.Vec3 { return c.points }
