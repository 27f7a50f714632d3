package dungeon

import (
	"github.com/matzehuels/dungeonbuilder/pkg/geom"
)

// Cell is a single placed environment cell: a transform plus an opaque
// reference to the content asset it displays.
//
// ID is assigned by [Layout.AddCell]; a Cell that has not been added to a
// Layout has ID 0. ContentID is never interpreted by this package.
type Cell struct {
	ID        uint32
	ContentID uint32
	Position  geom.Vec3
	Rotation  geom.Quat
	Scale     geom.Vec3
}

// NewCell creates an unregistered cell for contentID with the default
// transform: origin, identity rotation, unit scale.
func NewCell(contentID uint32) *Cell {
	return &Cell{
		ContentID: contentID,
		Position:  geom.Zero(),
		Rotation:  geom.Identity(),
		Scale:     geom.One(),
	}
}

// Bounds returns the cell's axis-aligned box: centered on Position with
// half-extents Scale/2. Rotation is ignored.
func (c *Cell) Bounds() geom.Box {
	return geom.BoxFromCenter(c.Position, c.Scale)
}

// Clone returns a copy of c with the same ID.
func (c *Cell) Clone() *Cell {
	cp := *c
	return &cp
}
