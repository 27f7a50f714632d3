package dungeon

import (
	"testing"

	"github.com/matzehuels/dungeonbuilder/pkg/geom"
)

func TestAddCellAssignsIncreasingIDs(t *testing.T) {
	l := New()
	a := NewCell(10)
	b := NewCell(20)
	a.Position = geom.V(1, 2, 3)

	idA := l.AddCell(a, "Root")
	idB := l.AddCell(b, "Root/Wing1")

	if idA != 1 || idB != 2 {
		t.Fatalf("ids = %d, %d; want 1, 2", idA, idB)
	}
	got, ok := l.CellByID(idA)
	if !ok || got != a {
		t.Fatalf("CellByID(%d) = %v, %v", idA, got, ok)
	}
	if got.ContentID != 10 || got.Position != geom.V(1, 2, 3) || got.Scale != geom.One() || got.Rotation != geom.Identity() {
		t.Errorf("fields changed on insert: %+v", got)
	}
	if l.NextCellID() != 3 {
		t.Errorf("NextCellID() = %d, want 3", l.NextCellID())
	}
	wing, ok := l.Hierarchy().Area("Root/Wing1")
	if !ok || len(wing.Cells()) != 1 || wing.Cells()[0] != b {
		t.Errorf("cell not placed in Root/Wing1")
	}
}

func TestAddCellEmptyPathIsRoot(t *testing.T) {
	l := New()
	c := NewCell(1)
	l.AddCell(c, "")
	if !l.Root().HasCell(c) {
		t.Error("empty path should place the cell in the root")
	}
}

func TestRemoveCellUnknownIsNoop(t *testing.T) {
	l := New()
	c := NewCell(1)
	l.AddCell(c, "Root/A")

	l.RemoveCell(99)

	if l.CellCount() != 1 {
		t.Errorf("CellCount() = %d, want 1", l.CellCount())
	}
	if got, ok := l.CellByID(c.ID); !ok || got != c {
		t.Error("registry changed after removing an unknown id")
	}
}

func TestRemoveCellDetachesFromTree(t *testing.T) {
	l := New()
	c := NewCell(1)
	id := l.AddCell(c, "Root/A/B")

	l.RemoveCell(id)

	if _, ok := l.CellByID(id); ok {
		t.Error("cell still registered")
	}
	b, _ := l.Hierarchy().Area("A/B")
	if len(b.Cells()) != 0 {
		t.Error("cell still placed in Root/A/B")
	}
}

func TestIDsNeverReused(t *testing.T) {
	l := New()
	c := NewCell(1)
	id := l.AddCell(c, "")
	l.RemoveCell(id)

	next := l.AddCell(NewCell(2), "")
	if next == id {
		t.Fatalf("id %d was reused", id)
	}

	l.RestoreCell(c, "")
	if got, _ := l.CellByID(id); got != c {
		t.Error("RestoreCell did not register under the original id")
	}
	if l.NextCellID() != next+1 {
		t.Errorf("RestoreCell changed the counter: %d", l.NextCellID())
	}
}

func TestRestoreCellRaisesCounter(t *testing.T) {
	l := New()
	c := NewCell(1)
	c.ID = 40
	l.RestoreCell(c, "Root/X")
	if l.NextCellID() != 41 {
		t.Errorf("NextCellID() = %d, want 41", l.NextCellID())
	}
	l.ReserveCellIDs(10)
	if l.NextCellID() != 41 {
		t.Error("ReserveCellIDs lowered the counter")
	}
}

func TestUpdateCell(t *testing.T) {
	l := New()
	c := NewCell(1)
	id := l.AddCell(c, "")

	replacement := c.Clone()
	replacement.Position = geom.V(5, 5, 5)
	l.UpdateCell(replacement)
	if got, _ := l.CellByID(id); got != replacement {
		t.Error("UpdateCell did not replace a known id")
	}

	l.UpdateCell(c)
	l.UpdateCell(c)
	if got, _ := l.CellByID(id); got != c {
		t.Error("UpdateCell with the same pointer should be safe")
	}

	stranger := NewCell(9)
	stranger.ID = 77
	l.UpdateCell(stranger)
	if _, ok := l.CellByID(77); ok {
		t.Error("UpdateCell registered an unknown id")
	}
}

func TestCellsSortedByID(t *testing.T) {
	l := New()
	for i := 0; i < 5; i++ {
		l.AddCell(NewCell(uint32(i)), "")
	}
	cells := l.Cells()
	for i := 1; i < len(cells); i++ {
		if cells[i-1].ID >= cells[i].ID {
			t.Fatalf("Cells() not sorted: %d before %d", cells[i-1].ID, cells[i].ID)
		}
	}
}

func TestAreaOf(t *testing.T) {
	l := New()
	id := l.AddCell(NewCell(1), "Root/Wing/Room")
	a, ok := l.AreaOf(id)
	if !ok || a.Path() != "Root/Wing/Room" {
		t.Errorf("AreaOf = %v, %v", a, ok)
	}
	if _, ok := l.AreaOf(42); ok {
		t.Error("AreaOf(unknown) should report false")
	}
}

func TestAttachDetachArea(t *testing.T) {
	l := New()
	room := NewArea("Room")
	fresh := NewCell(1)
	room.AddCell(fresh)

	l.AttachArea(l.Root(), room)
	if fresh.ID == 0 {
		t.Fatal("AttachArea did not assign an id")
	}
	if got, ok := l.CellByID(fresh.ID); !ok || got != fresh {
		t.Fatal("AttachArea did not register the subtree cells")
	}

	parent, index, ok := l.DetachArea(room)
	if !ok || parent != l.Root() || index != 0 {
		t.Fatalf("DetachArea = %v, %d, %v", parent, index, ok)
	}
	if l.CellCount() != 0 {
		t.Error("DetachArea left cells registered")
	}
	if _, _, ok := l.DetachArea(l.Root()); ok {
		t.Error("the root must not be detachable")
	}

	l.InsertArea(parent, index, room)
	if got, _ := l.CellByID(fresh.ID); got != fresh {
		t.Error("re-inserted cell lost its id")
	}
}

func TestAttachAreaReassignsTakenIDs(t *testing.T) {
	l := New()
	orig := NewCell(1)
	l.AddCell(orig, "Root/A")

	b := NewArea("B")
	other := NewCell(2)
	other.ID = orig.ID
	b.AddCell(other)
	l.AttachArea(l.Root(), b)

	if got, _ := l.CellByID(orig.ID); got != orig {
		t.Fatal("registry entry of the existing cell was overwritten")
	}
	if other.ID == orig.ID || other.ID < 2 {
		t.Fatalf("attached cell id = %d, want a fresh id", other.ID)
	}
	if got, ok := l.CellByID(other.ID); !ok || got != other {
		t.Error("attached cell not registered")
	}
	if l.CellCount() != 2 || l.NextCellID() != other.ID+1 {
		t.Errorf("CellCount = %d, NextCellID = %d", l.CellCount(), l.NextCellID())
	}
}

func TestClone(t *testing.T) {
	l := New()
	c := NewCell(3)
	l.AddCell(c, "Root/A")

	cp := l.Clone()
	c.Position = geom.V(9, 9, 9)

	got, ok := cp.CellByID(c.ID)
	if !ok || got == c || got.Position != geom.Zero() {
		t.Fatal("Clone shares cells with the original")
	}
	a, ok := cp.Hierarchy().Area("Root/A")
	if !ok || len(a.Cells()) != 1 || a.Cells()[0] != got {
		t.Error("cloned tree does not reference the cloned registry cell")
	}
	if a.Parent() != cp.Root() {
		t.Error("cloned parent links are wrong")
	}
	if cp.NextCellID() != l.NextCellID() {
		t.Error("Clone lost the id counter")
	}
}

func TestContentSet(t *testing.T) {
	var r ContentResolver = NewContentSet(1, 2)
	if !r.Exists(1) || r.Exists(3) {
		t.Error("ContentSet.Exists returned the wrong answer")
	}
}
