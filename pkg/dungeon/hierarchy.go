package dungeon

import "strings"

const (
	// RootName is the name given to the root Area of every Layout.
	RootName = "Root"

	// PathSeparator separates Area names in a path.
	PathSeparator = "/"
)

// Hierarchy owns the root Area and resolves slash-delimited paths to Areas.
//
// Paths are split on "/" and empty segments are skipped. When the first
// remaining segment equals the root's name it names the root itself, so
// "Root/Wing1", "/Wing1" and "Wing1" all address the same Area. A child that
// is itself called "Root" is reachable only as "Root/Root".
type Hierarchy struct {
	root *Area
}

// NewHierarchy creates a hierarchy holding a single root Area.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{root: NewArea(RootName)}
}

// Root returns the root Area. It is never nil.
func (h *Hierarchy) Root() *Area { return h.root }

func (h *Hierarchy) segments(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, PathSeparator) {
		if s != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) > 0 && segs[0] == h.root.Name {
		segs = segs[1:]
	}
	return segs
}

// GetOrCreateArea resolves path, creating any missing Areas along the way.
func (h *Hierarchy) GetOrCreateArea(path string) *Area {
	a, _ := h.EnsureArea(path)
	return a
}

// EnsureArea is GetOrCreateArea that also returns the top-most Area it had
// to create, or nil when the whole path already existed. Detaching created
// removes everything the call added.
func (h *Hierarchy) EnsureArea(path string) (area, created *Area) {
	cur := h.root
	for _, name := range h.segments(path) {
		next := cur.Child(name)
		if next == nil {
			next = NewArea(name)
			cur.AddChild(next)
			if created == nil {
				created = next
			}
		}
		cur = next
	}
	return cur, created
}

// Area resolves path without creating anything. Sibling name collisions
// resolve to the first match.
func (h *Hierarchy) Area(path string) (*Area, bool) {
	cur := h.root
	for _, name := range h.segments(path) {
		if cur = cur.Child(name); cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// RenameArea sets the name of the Area at path. Names colliding with a
// sibling are accepted. It is a no-op returning false when path does not
// resolve, names the root, or newName is not a usable path segment. The root
// keeps its name so paths starting with it keep resolving.
func (h *Hierarchy) RenameArea(path, newName string) bool {
	a, ok := h.Area(path)
	if !ok || a == h.root || !ValidName(newName) {
		return false
	}
	a.Name = newName
	return true
}

// MoveArea detaches the Area at src from its parent and appends it to the
// Area at dst. It is a no-op returning false when either path fails to
// resolve, when src is the root, or when dst lies inside src.
func (h *Hierarchy) MoveArea(src, dst string) bool {
	from, ok := h.Area(src)
	if !ok {
		return false
	}
	to, ok := h.Area(dst)
	if !ok {
		return false
	}
	return h.Reparent(from, to)
}

// Reparent moves area under newParent using the same rules as [MoveArea].
func (h *Hierarchy) Reparent(area, newParent *Area) bool {
	if area == h.root || area.IsAncestorOf(newParent) {
		return false
	}
	newParent.AddChild(area)
	return true
}

// AddCell places c in the Area at path, creating it if needed.
func (h *Hierarchy) AddCell(c *Cell, path string) {
	h.GetOrCreateArea(path).AddCell(c)
}

// RemoveCell removes the cell with the given id from the Area at path only.
func (h *Hierarchy) RemoveCell(id uint32, path string) bool {
	a, ok := h.Area(path)
	if !ok {
		return false
	}
	return a.RemoveCell(id)
}

// Areas returns every Area in depth-first pre-order, starting at the root.
func (h *Hierarchy) Areas() []*Area {
	var out []*Area
	h.root.Walk(func(a *Area) { out = append(out, a) })
	return out
}

// AreaOf returns the first Area that directly holds c.
func (h *Hierarchy) AreaOf(c *Cell) (*Area, bool) {
	var found *Area
	h.root.Walk(func(a *Area) {
		if found == nil && a.HasCell(c) {
			found = a
		}
	})
	return found, found != nil
}

// ValidName reports whether name can be used as an Area name: it must be
// non-empty and must not contain the path separator.
func ValidName(name string) bool {
	return name != "" && !strings.Contains(name, PathSeparator)
}
