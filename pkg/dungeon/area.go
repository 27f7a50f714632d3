package dungeon

import (
	"slices"
	"strings"

	"github.com/matzehuels/dungeonbuilder/pkg/geom"
)

// Area is a named node in the placement tree. It owns its child Areas and
// the Cells placed directly inside it, and carries its own local transform.
//
// The parent link is a lookup edge only: it is used to rebuild paths and to
// detach the Area from its parent, never to own or enumerate it.
type Area struct {
	Name     string
	Position geom.Vec3
	Rotation geom.Quat
	Scale    geom.Vec3

	children []*Area
	cells    []*Cell
	parent   *Area
}

// NewArea creates a detached Area with the default transform.
func NewArea(name string) *Area {
	return &Area{
		Name:     name,
		Position: geom.Zero(),
		Rotation: geom.Identity(),
		Scale:    geom.One(),
	}
}

// Parent returns the Area holding a, or nil for a root or detached Area.
func (a *Area) Parent() *Area { return a.parent }

// Children returns the child Areas in order. The slice must not be modified.
func (a *Area) Children() []*Area { return a.children }

// Cells returns the Cells placed directly in a. The slice must not be modified.
func (a *Area) Cells() []*Cell { return a.cells }

// Child returns the first child named name, or nil.
func (a *Area) Child(name string) *Area {
	for _, c := range a.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// IndexOf returns the position of child in a's child list, or -1.
func (a *Area) IndexOf(child *Area) int {
	return slices.Index(a.children, child)
}

// AddChild appends child, detaching it from its previous parent first.
func (a *Area) AddChild(child *Area) {
	a.InsertChild(len(a.children), child)
}

// InsertChild inserts child at index i, detaching it from its previous parent
// first. Out-of-range indices are clamped.
func (a *Area) InsertChild(i int, child *Area) {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	i = max(0, min(i, len(a.children)))
	a.children = slices.Insert(a.children, i, child)
	child.parent = a
}

// RemoveChild detaches child from a. It reports whether child was present.
func (a *Area) RemoveChild(child *Area) bool {
	i := a.IndexOf(child)
	if i < 0 {
		return false
	}
	a.children = slices.Delete(a.children, i, i+1)
	child.parent = nil
	return true
}

// AddCell places c directly in a. It does not register c with any Layout.
func (a *Area) AddCell(c *Cell) {
	a.cells = append(a.cells, c)
}

// RemoveCell removes every direct cell with the given id and reports whether
// any was removed.
func (a *Area) RemoveCell(id uint32) bool {
	n := len(a.cells)
	a.cells = slices.DeleteFunc(a.cells, func(c *Cell) bool { return c.ID == id })
	return len(a.cells) != n
}

// RemoveCellDeep removes the cell with the given id from a and all of its
// descendants. It returns the number of removals.
func (a *Area) RemoveCellDeep(id uint32) int {
	n := 0
	a.Walk(func(x *Area) {
		if x.RemoveCell(id) {
			n++
		}
	})
	return n
}

// HasCell reports whether c is placed directly in a.
func (a *Area) HasCell(c *Cell) bool {
	return slices.Contains(a.cells, c)
}

// Walk calls fn for a and every descendant, depth-first, parents before
// children.
func (a *Area) Walk(fn func(*Area)) {
	fn(a)
	for _, c := range a.children {
		c.Walk(fn)
	}
}

// Path returns the slash-joined names from the root down to a.
func (a *Area) Path() string {
	var names []string
	for x := a; x != nil; x = x.parent {
		names = append(names, x.Name)
	}
	slices.Reverse(names)
	return strings.Join(names, PathSeparator)
}

// IsAncestorOf reports whether a is other or one of other's ancestors.
func (a *Area) IsAncestorOf(other *Area) bool {
	for x := other; x != nil; x = x.parent {
		if x == a {
			return true
		}
	}
	return false
}

// Translate offsets a, every descendant Area and every contained Cell by delta.
func (a *Area) Translate(delta geom.Vec3) {
	a.Walk(func(x *Area) {
		x.Position = x.Position.Add(delta)
		for _, c := range x.cells {
			c.Position = c.Position.Add(delta)
		}
	})
}
