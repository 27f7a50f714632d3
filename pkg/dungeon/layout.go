package dungeon

import (
	"cmp"
	"slices"
)

// Layout is the top-level dungeon aggregate: the Area hierarchy plus an
// id-indexed registry of every Cell.
//
// The registry is authoritative for existence; the hierarchy is
// authoritative for placement. Every registered Cell is expected to sit in
// exactly one Area and vice versa. Layout does not enforce that beyond its
// own operations; the validate package reports drift.
//
// Cell ids start at 1 and are never reused: nextCellID always exceeds every
// id the Layout has issued or accepted. Layout is not safe for concurrent use.
type Layout struct {
	hierarchy  *Hierarchy
	cells      map[uint32]*Cell
	nextCellID uint32
}

// New creates an empty Layout containing only the root Area.
func New() *Layout {
	return &Layout{
		hierarchy:  NewHierarchy(),
		cells:      make(map[uint32]*Cell),
		nextCellID: 1,
	}
}

// Hierarchy returns the Area hierarchy.
func (l *Layout) Hierarchy() *Hierarchy { return l.hierarchy }

// Root returns the root Area.
func (l *Layout) Root() *Area { return l.hierarchy.root }

// NextCellID returns the id the next call to AddCell will assign.
func (l *Layout) NextCellID() uint32 { return l.nextCellID }

// ReserveCellIDs raises the id counter to at least next. It never lowers it.
func (l *Layout) ReserveCellIDs(next uint32) {
	if next > l.nextCellID {
		l.nextCellID = next
	}
}

// AddCell assigns c a fresh id, registers it and places it in the Area at
// path, creating that Area if needed. An empty path means the root.
func (l *Layout) AddCell(c *Cell, path string) uint32 {
	return l.AddCellInto(c, l.hierarchy.GetOrCreateArea(path))
}

// AddCellInto is AddCell with the target Area given directly. Use it when
// sibling names collide and a path would pick the wrong Area.
func (l *Layout) AddCellInto(c *Cell, a *Area) uint32 {
	c.ID = l.nextCellID
	l.nextCellID++
	l.insert(c, a)
	return c.ID
}

// RestoreCell registers c under its existing id and places it at path. It is
// the inverse of RemoveCell and never rolls the id counter back.
func (l *Layout) RestoreCell(c *Cell, path string) {
	l.RestoreCellInto(c, l.hierarchy.GetOrCreateArea(path))
}

// RestoreCellInto is RestoreCell with the target Area given directly.
func (l *Layout) RestoreCellInto(c *Cell, a *Area) {
	l.ReserveCellIDs(c.ID + 1)
	l.insert(c, a)
}

func (l *Layout) insert(c *Cell, a *Area) {
	l.cells[c.ID] = c
	a.AddCell(c)
}

// RemoveCell unregisters the cell with the given id and removes it from
// every Area. Unknown ids are ignored.
func (l *Layout) RemoveCell(id uint32) {
	if _, ok := l.cells[id]; !ok {
		return
	}
	delete(l.cells, id)
	l.hierarchy.root.RemoveCellDeep(id)
}

// CellByID returns the registered cell with the given id.
func (l *Layout) CellByID(id uint32) (*Cell, bool) {
	c, ok := l.cells[id]
	return c, ok
}

// UpdateCell replaces the registry entry for c.ID with c when that id is
// already registered. Placement is left untouched.
func (l *Layout) UpdateCell(c *Cell) {
	if _, ok := l.cells[c.ID]; ok {
		l.cells[c.ID] = c
	}
}

// Cells returns every registered cell sorted by id.
func (l *Layout) Cells() []*Cell {
	out := make([]*Cell, 0, len(l.cells))
	for _, c := range l.cells {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Cell) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// CellCount returns the number of registered cells.
func (l *Layout) CellCount() int { return len(l.cells) }

// AreaOf returns the Area currently holding the registered cell id.
func (l *Layout) AreaOf(id uint32) (*Area, bool) {
	c, ok := l.cells[id]
	if !ok {
		return nil, false
	}
	return l.hierarchy.AreaOf(c)
}

// AttachArea appends area under parent and registers every cell in the
// subtree. Cells without an id, or whose id is already registered to a
// different cell, get a fresh one; the rest keep theirs.
func (l *Layout) AttachArea(parent, area *Area) {
	l.InsertArea(parent, len(parent.children), area)
}

// InsertArea is AttachArea at a given child index.
func (l *Layout) InsertArea(parent *Area, index int, area *Area) {
	parent.InsertChild(index, area)
	area.Walk(func(a *Area) {
		for _, c := range a.cells {
			if prev, taken := l.cells[c.ID]; c.ID == 0 || (taken && prev != c) {
				c.ID = l.nextCellID
				l.nextCellID++
			} else {
				l.ReserveCellIDs(c.ID + 1)
			}
			l.cells[c.ID] = c
		}
	})
}

// DetachArea removes area from its parent and unregisters every cell in the
// subtree. The root cannot be detached. It returns the former parent and
// child index.
func (l *Layout) DetachArea(area *Area) (parent *Area, index int, ok bool) {
	parent = area.parent
	if parent == nil || area == l.hierarchy.root {
		return nil, -1, false
	}
	index = parent.IndexOf(area)
	parent.RemoveChild(area)
	area.Walk(func(a *Area) {
		for _, c := range a.cells {
			if l.cells[c.ID] == c {
				delete(l.cells, c.ID)
			}
		}
	})
	return parent, index, true
}

// Clone returns a deep copy of l. Cells and Areas are copied; ids and the
// id counter are preserved.
func (l *Layout) Clone() *Layout {
	out := &Layout{
		cells:      make(map[uint32]*Cell, len(l.cells)),
		nextCellID: l.nextCellID,
	}
	copies := make(map[*Cell]*Cell, len(l.cells))
	clone := func(c *Cell) *Cell {
		if cp, ok := copies[c]; ok {
			return cp
		}
		cp := c.Clone()
		copies[c] = cp
		return cp
	}
	out.hierarchy = &Hierarchy{root: cloneArea(l.hierarchy.root, nil, clone)}
	for id, c := range l.cells {
		out.cells[id] = clone(c)
	}
	return out
}

func cloneArea(a, parent *Area, clone func(*Cell) *Cell) *Area {
	cp := &Area{
		Name:     a.Name,
		Position: a.Position,
		Rotation: a.Rotation,
		Scale:    a.Scale,
		parent:   parent,
	}
	for _, c := range a.cells {
		cp.cells = append(cp.cells, clone(c))
	}
	for _, ch := range a.children {
		cp.children = append(cp.children, cloneArea(ch, cp, clone))
	}
	return cp
}
