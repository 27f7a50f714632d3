package command

import (
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	"github.com/matzehuels/dungeonbuilder/pkg/geom"
)

// AddArea appends an Area under a parent. Any cells already inside the new
// Area's subtree are registered with the Layout on Execute and unregistered
// on Undo.
type AddArea struct {
	layout *dungeon.Layout
	parent *dungeon.Area
	area   *dungeon.Area
}

// NewAddArea creates a command attaching area under parent.
func NewAddArea(l *dungeon.Layout, parent, area *dungeon.Area) *AddArea {
	return &AddArea{layout: l, parent: parent, area: area}
}

func (c *AddArea) Execute() { c.layout.AttachArea(c.parent, c.area) }

func (c *AddArea) Undo() { c.layout.DetachArea(c.area) }

func (c *AddArea) Name() string { return "add area" }

// RemoveArea detaches an Area and unregisters the cells in its subtree.
// Undo re-inserts it at its former index.
type RemoveArea struct {
	layout  *dungeon.Layout
	area    *dungeon.Area
	parent  *dungeon.Area
	index   int
	removed bool
}

// NewRemoveArea creates a removal command. Removing the root is a no-op.
func NewRemoveArea(l *dungeon.Layout, area *dungeon.Area) *RemoveArea {
	return &RemoveArea{layout: l, area: area}
}

func (c *RemoveArea) Execute() {
	c.parent, c.index, c.removed = c.layout.DetachArea(c.area)
}

func (c *RemoveArea) Undo() {
	if c.removed {
		c.layout.InsertArea(c.parent, c.index, c.area)
	}
}

func (c *RemoveArea) Name() string { return "remove area" }

// MoveArea sets an Area's position and carries its contents along: the
// offset is applied to every descendant Area and every contained Cell.
// Undo restores each moved position exactly.
type MoveArea struct {
	area     *dungeon.Area
	position geom.Vec3

	areas map[*dungeon.Area]geom.Vec3
	cells map[*dungeon.Cell]geom.Vec3
}

// NewMoveArea creates a command moving area to position.
func NewMoveArea(area *dungeon.Area, position geom.Vec3) *MoveArea {
	return &MoveArea{area: area, position: position}
}

func (c *MoveArea) Execute() {
	c.areas = make(map[*dungeon.Area]geom.Vec3)
	c.cells = make(map[*dungeon.Cell]geom.Vec3)
	c.area.Walk(func(a *dungeon.Area) {
		c.areas[a] = a.Position
		for _, cell := range a.Cells() {
			c.cells[cell] = cell.Position
		}
	})
	c.area.Translate(c.position.Sub(c.area.Position))
	c.area.Position = c.position
}

func (c *MoveArea) Undo() {
	for a, p := range c.areas {
		a.Position = p
	}
	for cell, p := range c.cells {
		cell.Position = p
	}
}

func (c *MoveArea) Name() string { return "move area" }

// RenameArea sets an Area's name. Renaming the root is a no-op.
type RenameArea struct {
	area     *dungeon.Area
	from, to string
}

// NewRenameArea captures the current name and targets name.
func NewRenameArea(area *dungeon.Area, name string) *RenameArea {
	return &RenameArea{area: area, from: area.Name, to: name}
}

func (c *RenameArea) Execute() {
	if c.area.Parent() != nil {
		c.area.Name = c.to
	}
}

func (c *RenameArea) Undo()    { c.area.Name = c.from }

func (c *RenameArea) Name() string { return "rename area" }

// ReparentArea moves an Area under a new parent. Moves that would detach the
// root or create a cycle are no-ops. Undo returns the Area to its former
// parent and index.
type ReparentArea struct {
	layout    *dungeon.Layout
	area      *dungeon.Area
	newParent *dungeon.Area
	oldParent *dungeon.Area
	oldIndex  int
	moved     bool
}

// NewReparentArea creates a command moving area under newParent.
func NewReparentArea(l *dungeon.Layout, area, newParent *dungeon.Area) *ReparentArea {
	return &ReparentArea{layout: l, area: area, newParent: newParent}
}

func (c *ReparentArea) Execute() {
	c.oldParent = c.area.Parent()
	if c.oldParent != nil {
		c.oldIndex = c.oldParent.IndexOf(c.area)
	}
	c.moved = c.oldParent != nil && c.layout.Hierarchy().Reparent(c.area, c.newParent)
}

func (c *ReparentArea) Undo() {
	if c.moved {
		c.oldParent.InsertChild(c.oldIndex, c.area)
	}
}

func (c *ReparentArea) Name() string { return "reparent area" }
