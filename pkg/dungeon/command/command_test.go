package command

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	"github.com/matzehuels/dungeonbuilder/pkg/geom"
	"github.com/matzehuels/dungeonbuilder/pkg/observability"
)

// state is a comparable summary of a Layout: every registered cell by value
// and every Area with its transform and direct cell ids.
type state struct {
	Cells map[uint32]dungeon.Cell
	Areas []string
	Next  uint32
}

func snapshot(l *dungeon.Layout) state {
	s := state{Cells: make(map[uint32]dungeon.Cell), Next: l.NextCellID()}
	for _, c := range l.Cells() {
		s.Cells[c.ID] = *c
	}
	for _, a := range l.Hierarchy().Areas() {
		var ids []uint32
		for _, c := range a.Cells() {
			ids = append(ids, c.ID)
		}
		s.Areas = append(s.Areas, fmt.Sprintf("%s pos=%v cells=%v", a.Path(), a.Position, ids))
	}
	return s
}

func fixture() (*dungeon.Layout, *dungeon.Cell, *dungeon.Area) {
	l := dungeon.New()
	c := dungeon.NewCell(7)
	c.Position = geom.V(1, 2, 3)
	l.AddCell(c, "Root/Wing1")
	l.AddCell(dungeon.NewCell(8), "Root/Wing1/Room")
	wing, _ := l.Hierarchy().Area("Root/Wing1")
	l.Hierarchy().GetOrCreateArea("Root/Wing2")
	return l, c, wing
}

func TestUndoRestoresAndRedoReapplies(t *testing.T) {
	tests := []struct {
		name  string
		build func(l *dungeon.Layout, c *dungeon.Cell, wing *dungeon.Area) Command
	}{
		{"add cell", func(l *dungeon.Layout, _ *dungeon.Cell, _ *dungeon.Area) Command {
			return NewAddCell(l, dungeon.NewCell(9), "Root/Wing2")
		}},
		{"remove cell", func(l *dungeon.Layout, c *dungeon.Cell, _ *dungeon.Area) Command {
			return NewRemoveCell(l, c, "")
		}},
		{"add cell to area", func(l *dungeon.Layout, _ *dungeon.Cell, wing *dungeon.Area) Command {
			return NewAddCellTo(l, dungeon.NewCell(9), wing)
		}},
		{"remove cell from area", func(l *dungeon.Layout, c *dungeon.Cell, wing *dungeon.Area) Command {
			return NewRemoveCellFrom(l, c, wing)
		}},
		{"move cell", func(l *dungeon.Layout, c *dungeon.Cell, _ *dungeon.Area) Command {
			return NewMoveCell(l, c, geom.V(10, 0, 0))
		}},
		{"scale cell", func(l *dungeon.Layout, c *dungeon.Cell, _ *dungeon.Area) Command {
			return NewScaleCell(l, c, geom.V(2, 2, 2))
		}},
		{"rotate cell", func(l *dungeon.Layout, c *dungeon.Cell, _ *dungeon.Area) Command {
			return NewRotateCell(l, c, geom.Q(0, 1, 0, 0))
		}},
		{"add area", func(l *dungeon.Layout, _ *dungeon.Cell, wing *dungeon.Area) Command {
			a := dungeon.NewArea("Vault")
			a.AddCell(dungeon.NewCell(3))
			return NewAddArea(l, wing, a)
		}},
		{"add area with taken id", func(l *dungeon.Layout, c *dungeon.Cell, wing *dungeon.Area) Command {
			a := dungeon.NewArea("Vault")
			dup := dungeon.NewCell(3)
			dup.ID = c.ID
			a.AddCell(dup)
			return NewAddArea(l, wing, a)
		}},
		{"remove area", func(l *dungeon.Layout, _ *dungeon.Cell, wing *dungeon.Area) Command {
			return NewRemoveArea(l, wing)
		}},
		{"move area", func(_ *dungeon.Layout, _ *dungeon.Cell, wing *dungeon.Area) Command {
			return NewMoveArea(wing, geom.V(4, 0, -2))
		}},
		{"rename area", func(_ *dungeon.Layout, _ *dungeon.Cell, wing *dungeon.Area) Command {
			return NewRenameArea(wing, "East")
		}},
		{"reparent area", func(l *dungeon.Layout, _ *dungeon.Cell, wing *dungeon.Area) Command {
			w2, _ := l.Hierarchy().Area("Root/Wing2")
			return NewReparentArea(l, wing, w2)
		}},
		{"add corridor", func(l *dungeon.Layout, _ *dungeon.Cell, _ *dungeon.Area) Command {
			return NewAddCorridor(l, []geom.Vec3{geom.V(0, 0, 0), geom.V(6, 0, 0)}, "Root", 0)
		}},
		{"batch", func(l *dungeon.Layout, c *dungeon.Cell, wing *dungeon.Area) Command {
			return NewBatch("batch",
				NewMoveCell(l, c, geom.V(0, 0, 9)),
				NewRenameArea(wing, "West"),
				NewAddCell(l, dungeon.NewCell(1), "Root/New"),
			)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, c, wing := fixture()
			h := NewHistory(0)
			cmd := tt.build(l, c, wing)

			before := snapshot(l)
			h.Execute(cmd)
			after := snapshot(l)
			if reflect.DeepEqual(before.Cells, after.Cells) && reflect.DeepEqual(before.Areas, after.Areas) {
				t.Fatal("Execute did not change the layout")
			}

			if !h.Undo() {
				t.Fatal("Undo reported nothing to undo")
			}
			undone := snapshot(l)
			if !reflect.DeepEqual(before.Cells, undone.Cells) || !reflect.DeepEqual(before.Areas, undone.Areas) {
				t.Errorf("Undo did not restore the layout\nbefore: %+v\nundone: %+v", before, undone)
			}

			if !h.Redo() {
				t.Fatal("Redo reported nothing to redo")
			}
			if redone := snapshot(l); !reflect.DeepEqual(after, redone) {
				t.Errorf("Redo did not reproduce the post-execute state\nafter:  %+v\nredone: %+v", after, redone)
			}
		})
	}
}

func TestHistoryEmptyStacksAreNoops(t *testing.T) {
	h := NewHistory(0)
	if h.Undo() || h.Redo() {
		t.Error("Undo/Redo on empty history should report false")
	}
	if h.CanUndo() || h.CanRedo() {
		t.Error("empty history reports available actions")
	}
}

func TestHistoryExecuteClearsRedo(t *testing.T) {
	l, c, _ := fixture()
	h := NewHistory(0)
	h.Execute(NewMoveCell(l, c, geom.V(5, 5, 5)))
	h.Undo()
	if !h.CanRedo() {
		t.Fatal("expected a redo entry")
	}
	h.Execute(NewScaleCell(l, c, geom.V(3, 3, 3)))
	if h.CanRedo() {
		t.Error("new command should discard the redo branch")
	}
	if got := h.UndoNames(); !reflect.DeepEqual(got, []string{"scale cell"}) {
		t.Errorf("UndoNames() = %v", got)
	}
}

func TestHistoryRecordDoesNotReexecute(t *testing.T) {
	l, c, _ := fixture()
	h := NewHistory(0)
	move := NewMoveCell(l, c, geom.V(9, 9, 9))
	move.Execute()
	h.Record(move)
	if c.Position != geom.V(9, 9, 9) || h.UndoLen() != 1 {
		t.Fatalf("after Record: position %v, undo depth %d", c.Position, h.UndoLen())
	}
	h.Undo()
	if c.Position != geom.V(1, 2, 3) {
		t.Errorf("Undo of recorded command = %v, want (1,2,3)", c.Position)
	}
}

func TestHistoryLimit(t *testing.T) {
	l, c, _ := fixture()
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Execute(NewMoveCell(l, c, geom.V(float32(i), 0, 0)))
	}
	if h.UndoLen() != 3 {
		t.Fatalf("UndoLen() = %d, want 3", h.UndoLen())
	}
	for h.Undo() {
	}
	// The two oldest moves were dropped, so the cell stops at the position
	// set by the second command.
	if c.Position != geom.V(1, 0, 0) {
		t.Errorf("position after undoing everything = %v, want (1,0,0)", c.Position)
	}
	if h.RedoLen() != 3 {
		t.Errorf("RedoLen() = %d, want 3", h.RedoLen())
	}
	h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Error("Clear left entries behind")
	}
}

func TestAddCellRedoKeepsID(t *testing.T) {
	l := dungeon.New()
	h := NewHistory(0)
	cmd := NewAddCell(l, dungeon.NewCell(1), "Root/A")
	h.Execute(cmd)
	id := cmd.Cell().ID

	h.Undo()
	if _, ok := l.CellByID(id); ok {
		t.Fatal("undo left the cell registered")
	}
	h.Redo()
	if got, ok := l.CellByID(id); !ok || got != cmd.Cell() {
		t.Error("redo did not restore the original id")
	}
	if l.NextCellID() != id+1 {
		t.Errorf("NextCellID() = %d, want %d", l.NextCellID(), id+1)
	}
}

func TestAddAreaKeepsExistingCellRegistered(t *testing.T) {
	l, c, wing := fixture()
	h := NewHistory(0)

	vault := dungeon.NewArea("Vault")
	dup := dungeon.NewCell(3)
	dup.ID = c.ID
	vault.AddCell(dup)

	h.Execute(NewAddArea(l, wing, vault))
	if got, _ := l.CellByID(c.ID); got != c {
		t.Fatalf("cell %d was taken over by the attached subtree", c.ID)
	}
	if dup.ID == c.ID {
		t.Fatal("attached cell kept a colliding id")
	}
	if got, ok := l.CellByID(dup.ID); !ok || got != dup {
		t.Fatal("attached cell not registered under its new id")
	}
	newID := dup.ID

	h.Undo()
	if got, _ := l.CellByID(c.ID); got != c {
		t.Error("undo unregistered the pre-existing cell")
	}
	if _, ok := l.CellByID(newID); ok {
		t.Error("undo left the attached cell registered")
	}

	h.Redo()
	if dup.ID != newID {
		t.Errorf("redo changed the attached cell id to %d, want %d", dup.ID, newID)
	}
	if l.CellCount() != 3 {
		t.Errorf("CellCount = %d, want 3", l.CellCount())
	}
}

func TestCellCommandsTargetAreaNotPath(t *testing.T) {
	l := dungeon.New()
	first := l.Hierarchy().GetOrCreateArea("Root/Hall")
	second := l.Hierarchy().GetOrCreateArea("Root/Annex")
	second.Name = "Hall"
	h := NewHistory(0)

	c := dungeon.NewCell(1)
	h.Execute(NewAddCellTo(l, c, second))
	if !second.HasCell(c) || first.HasCell(c) {
		t.Fatal("cell not placed in the given area")
	}
	h.Undo()
	h.Redo()
	if !second.HasCell(c) || first.HasCell(c) {
		t.Fatal("redo placed the cell by path")
	}

	h.Execute(NewRemoveCellFrom(l, c, second))
	h.Undo()
	if !second.HasCell(c) || first.HasCell(c) {
		t.Error("undo restored the cell into the first sibling named Hall")
	}
}

func TestRenameRootIsNoop(t *testing.T) {
	l, _, _ := fixture()
	h := NewHistory(0)
	h.Execute(NewRenameArea(l.Root(), "Dungeon"))
	if l.Root().Name != dungeon.RootName {
		t.Fatalf("root renamed to %q", l.Root().Name)
	}
	if _, ok := l.Hierarchy().Area("Root/Wing1"); !ok {
		t.Error("root-prefixed paths stopped resolving")
	}
	h.Undo()
	if l.Root().Name != dungeon.RootName {
		t.Errorf("undo changed the root name to %q", l.Root().Name)
	}
}

func TestRemoveCellUndoPreservesIDAndCounter(t *testing.T) {
	l, c, _ := fixture()
	h := NewHistory(0)
	id := c.ID
	next := l.NextCellID()

	h.Execute(NewRemoveCell(l, c, ""))
	h.Undo()

	if got, ok := l.CellByID(id); !ok || got != c {
		t.Fatal("undo did not restore the same cell under the same id")
	}
	if a, _ := l.AreaOf(id); a.Path() != "Root/Wing1" {
		t.Errorf("cell restored in %s, want Root/Wing1", a.Path())
	}
	if l.NextCellID() != next {
		t.Errorf("counter changed: %d -> %d", next, l.NextCellID())
	}
}

func TestRemoveStaleCellUndoIsNoop(t *testing.T) {
	l := dungeon.New()
	ghost := dungeon.NewCell(1)
	ghost.ID = 42
	h := NewHistory(0)
	h.Execute(NewRemoveCell(l, ghost, "Root"))
	h.Undo()
	if l.CellCount() != 0 {
		t.Error("undoing a no-op removal registered a cell")
	}
}

func TestMoveAreaCascades(t *testing.T) {
	l, c, wing := fixture()
	room, _ := l.Hierarchy().Area("Root/Wing1/Room")
	inner := room.Cells()[0]

	cmd := NewMoveArea(wing, geom.V(10, 0, 0))
	cmd.Execute()

	if wing.Position != geom.V(10, 0, 0) || room.Position != geom.V(10, 0, 0) {
		t.Errorf("areas = %v, %v", wing.Position, room.Position)
	}
	if c.Position != geom.V(11, 2, 3) || inner.Position != geom.V(10, 0, 0) {
		t.Errorf("cells = %v, %v", c.Position, inner.Position)
	}
}

func TestReparentAreaRejectsCycle(t *testing.T) {
	l, _, wing := fixture()
	room, _ := l.Hierarchy().Area("Root/Wing1/Room")
	before := snapshot(l)

	h := NewHistory(0)
	h.Execute(NewReparentArea(l, wing, room))
	h.Execute(NewReparentArea(l, l.Root(), wing))
	if got := snapshot(l); !reflect.DeepEqual(before, got) {
		t.Error("cyclic reparent changed the tree")
	}
	h.Undo()
	h.Undo()
	if got := snapshot(l); !reflect.DeepEqual(before, got) {
		t.Error("undoing no-op reparents changed the tree")
	}
}

func TestReparentAreaUndoRestoresIndex(t *testing.T) {
	l, _, wing := fixture()
	w2, _ := l.Hierarchy().Area("Root/Wing2")
	cmd := NewReparentArea(l, wing, w2)
	cmd.Execute()
	cmd.Undo()
	if l.Root().IndexOf(wing) != 0 {
		t.Errorf("Wing1 index = %d, want 0", l.Root().IndexOf(wing))
	}
}

func TestAddCorridorBounds(t *testing.T) {
	l := dungeon.New()
	cmd := NewAddCorridor(l, []geom.Vec3{geom.V(0, 0, 0), geom.V(4, 0, 0), geom.V(4, 0, 2)}, "Root/Halls", 5)
	cmd.Execute()

	c := cmd.Cell()
	if c.Position != geom.V(2, 0, 1) {
		t.Errorf("Position = %v, want (2,0,1)", c.Position)
	}
	if c.Scale != geom.V(4, 1, 2) {
		t.Errorf("Scale = %v, want (4,1,2)", c.Scale)
	}
	if c.ContentID != 5 || c.ID == 0 {
		t.Errorf("cell = %+v", c)
	}
	if len(cmd.Points()) != 3 {
		t.Error("Points() lost the polyline")
	}
}

type recordingHooks struct {
	observability.NoopHistoryHooks
	events []string
}

func (r *recordingHooks) OnExecute(name string, depth int) {
	r.events = append(r.events, fmt.Sprintf("exec %s %d", name, depth))
}
func (r *recordingHooks) OnUndo(name string) { r.events = append(r.events, "undo "+name) }
func (r *recordingHooks) OnRedo(name string) { r.events = append(r.events, "redo "+name) }

func TestHistoryEmitsHooks(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetHistoryHooks(rec)
	defer observability.Reset()

	l, c, _ := fixture()
	h := NewHistory(0)
	h.Execute(NewMoveCell(l, c, geom.Zero()))
	h.Undo()
	h.Redo()

	want := []string{"exec move cell 1", "undo move cell", "redo move cell"}
	if !reflect.DeepEqual(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}
