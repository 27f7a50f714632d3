package dungeon

import (
	"testing"

	"github.com/matzehuels/dungeonbuilder/pkg/geom"
)

func TestPathResolution(t *testing.T) {
	h := NewHierarchy()
	wing := h.GetOrCreateArea("Root/Wing1")

	tests := []struct {
		path string
		want *Area
	}{
		{"", h.Root()},
		{"/", h.Root()},
		{"Root", h.Root()},
		{"Root/Wing1", wing},
		{"Wing1", wing},
		{"//Root//Wing1/", wing},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := h.Area(tt.path)
			if !ok || got != tt.want {
				t.Errorf("Area(%q) = %v, %v", tt.path, got, ok)
			}
		})
	}

	if _, ok := h.Area("Root/Missing"); ok {
		t.Error("Area should not resolve a missing path")
	}
	if len(h.Root().Children()) != 1 {
		t.Error("lookups must not create Areas")
	}
}

func TestGetOrCreateAreaNeverCreatesRootChild(t *testing.T) {
	h := NewHierarchy()
	h.GetOrCreateArea("Root/A/B")
	if h.Root().Child(RootName) != nil {
		t.Error("a child named Root was created")
	}
	if got := h.GetOrCreateArea("Root/Root"); got.Parent() != h.Root() || got.Name != RootName {
		t.Error("Root/Root should address a child literally named Root")
	}
}

func TestRenameArea(t *testing.T) {
	h := NewHierarchy()
	h.GetOrCreateArea("Root/A")
	h.GetOrCreateArea("Root/B")

	if !h.RenameArea("Root/A", "Hall") {
		t.Fatal("RenameArea failed")
	}
	if _, ok := h.Area("Root/Hall"); !ok {
		t.Error("renamed area not found by its new name")
	}

	// Collisions with siblings are allowed; lookups take the first match.
	if !h.RenameArea("Root/B", "Hall") {
		t.Fatal("RenameArea rejected a colliding name")
	}
	first, _ := h.Area("Root/Hall")
	if first != h.Root().Children()[0] {
		t.Error("ambiguous path should resolve to the first sibling")
	}

	if h.RenameArea("Root/Missing", "X") {
		t.Error("RenameArea on a missing path should report false")
	}
	if h.RenameArea("Root/Hall", "a/b") || h.RenameArea("Root/Hall", "") {
		t.Error("RenameArea accepted an unusable name")
	}
}

func TestRenameRootRefused(t *testing.T) {
	h := NewHierarchy()
	if h.RenameArea("Root", "Dungeon") || h.RenameArea("", "Dungeon") {
		t.Fatal("RenameArea renamed the root")
	}
	if h.Root().Name != RootName {
		t.Fatalf("root name = %q", h.Root().Name)
	}
	h.AddCell(NewCell(1), "Root")
	if n := len(h.Root().Children()); n != 0 {
		t.Errorf("adding to \"Root\" created %d child areas", n)
	}
	if n := len(h.Root().Cells()); n != 1 {
		t.Errorf("root holds %d cells, want 1", n)
	}
}

func TestMoveArea(t *testing.T) {
	h := NewHierarchy()
	a := h.GetOrCreateArea("Root/A")
	b := h.GetOrCreateArea("Root/B")

	if !h.MoveArea("Root/A", "Root/B") {
		t.Fatal("MoveArea failed")
	}
	if a.Parent() != b || b.Child("A") != a {
		t.Error("A is not a child of B")
	}
	if h.Root().Child("A") != nil {
		t.Error("A is still a child of Root")
	}
	if _, ok := h.Area("Root/B/A"); !ok {
		t.Error("Root/B/A does not resolve")
	}
}

func TestMoveAreaNoops(t *testing.T) {
	h := NewHierarchy()
	h.GetOrCreateArea("Root/A/B")

	tests := []struct {
		name     string
		src, dst string
	}{
		{"missing source", "Root/X", "Root/A"},
		{"missing destination", "Root/A", "Root/X"},
		{"root source", "Root", "Root/A"},
		{"into itself", "Root/A", "Root/A"},
		{"into descendant", "Root/A", "Root/A/B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if h.MoveArea(tt.src, tt.dst) {
				t.Error("MoveArea should be a no-op")
			}
			if _, ok := h.Area("Root/A/B"); !ok {
				t.Error("tree changed")
			}
		})
	}
}

func TestAreaPathAndWalk(t *testing.T) {
	h := NewHierarchy()
	h.GetOrCreateArea("Root/A/C")
	h.GetOrCreateArea("Root/B")

	var paths []string
	for _, a := range h.Areas() {
		paths = append(paths, a.Path())
	}
	want := []string{"Root", "Root/A", "Root/A/C", "Root/B"}
	if len(paths) != len(want) {
		t.Fatalf("Areas() = %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("Areas()[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestAreaTranslateCascades(t *testing.T) {
	h := NewHierarchy()
	a := h.GetOrCreateArea("Root/A")
	child := h.GetOrCreateArea("Root/A/Inner")
	c := NewCell(1)
	c.Position = geom.V(1, 1, 1)
	child.AddCell(c)

	a.Translate(geom.V(2, 0, -1))

	if a.Position != geom.V(2, 0, -1) || child.Position != geom.V(2, 0, -1) {
		t.Errorf("areas not translated: %v, %v", a.Position, child.Position)
	}
	if c.Position != geom.V(3, 1, 0) {
		t.Errorf("cell position = %v, want (3,1,0)", c.Position)
	}
}

func TestAddChildReparents(t *testing.T) {
	p1 := NewArea("P1")
	p2 := NewArea("P2")
	c := NewArea("C")
	p1.AddChild(c)
	p2.AddChild(c)
	if len(p1.Children()) != 0 || c.Parent() != p2 {
		t.Error("AddChild must detach from the previous parent")
	}
	if !p2.RemoveChild(c) || c.Parent() != nil {
		t.Error("RemoveChild did not clear the parent")
	}
	if p2.RemoveChild(c) {
		t.Error("RemoveChild of a non-child should report false")
	}
}
