package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon/command"
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon/validate"
	"github.com/matzehuels/dungeonbuilder/pkg/session"
	"github.com/matzehuels/dungeonbuilder/pkg/store"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m EditorModel, keys ...string) (EditorModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(EditorModel)
	}
	return m, cmd
}

// newTestEditor opens an editor on a saved layout with one cell in Root/Hall.
// Rows: Root, Hall, #1.
func newTestEditor(t *testing.T) (EditorModel, *store.FileStore) {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sess, err := session.New("crypt", 10)
	if err != nil {
		t.Fatal(err)
	}
	sess.Execute(command.NewAddCell(sess.Layout(), dungeon.NewCell(5), "Root/Hall"))
	if err := sess.Save(context.Background(), st); err != nil {
		t.Fatal(err)
	}
	return NewEditorModel(context.Background(), st, sess, validate.Options{}), st
}

func TestEditorRows(t *testing.T) {
	m, _ := newTestEditor(t)
	if len(m.rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(m.rows))
	}
	if m.rows[2].cell == nil || m.rows[2].cell.ID != 1 || m.rows[2].depth != 2 {
		t.Errorf("cell row = %+v", m.rows[2])
	}

	m, _ = press(t, m, "up", "down", "down", "down", "down")
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want clamped to 2", m.Cursor)
	}
}

func TestEditorRemoveUndoRedo(t *testing.T) {
	m, _ := newTestEditor(t)
	l := m.Session.Layout()

	m, _ = press(t, m, "down", "down", "d")
	if l.CellCount() != 0 || len(m.rows) != 2 {
		t.Fatalf("after delete: %d cells, %d rows", l.CellCount(), len(m.rows))
	}
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want clamped to 1", m.Cursor)
	}

	m, _ = press(t, m, "u")
	if _, ok := l.CellByID(1); !ok {
		t.Fatal("undo should restore cell 1")
	}
	if !strings.Contains(m.status, "remove cell") {
		t.Errorf("status = %q", m.status)
	}

	m, _ = press(t, m, "r")
	if l.CellCount() != 0 {
		t.Error("redo should remove the cell again")
	}
}

func TestEditorEditsSelectedSibling(t *testing.T) {
	m, _ := newTestEditor(t)
	l := m.Session.Layout()
	second := l.Hierarchy().GetOrCreateArea("Root/Annex")
	second.Name = "Hall"
	m.refresh()
	// Rows: Root, Hall, #1, Hall.

	m, _ = press(t, m, "down", "down", "down", "a")
	if n := len(second.Cells()); n != 1 {
		t.Fatalf("selected sibling holds %d cells, want 1", n)
	}
	first := l.Root().Children()[0]
	if n := len(first.Cells()); n != 1 {
		t.Fatalf("first sibling holds %d cells, want 1", n)
	}
	added := second.Cells()[0]

	m, _ = press(t, m, "down", "d")
	if len(second.Cells()) != 0 || l.CellCount() != 1 {
		t.Fatalf("after delete: sibling holds %d cells, %d registered", len(second.Cells()), l.CellCount())
	}
	press(t, m, "u")
	if !second.HasCell(added) || first.HasCell(added) {
		t.Error("undo put the cell back into the wrong sibling")
	}
}

func TestEditorRootIsProtected(t *testing.T) {
	m, _ := newTestEditor(t)
	m, _ = press(t, m, "d")
	if len(m.Session.Layout().Hierarchy().Areas()) != 2 || m.Session.History().UndoLen() != 1 {
		t.Error("deleting the root must be refused")
	}
}

func TestEditorAddAndNudge(t *testing.T) {
	m, _ := newTestEditor(t)
	l := m.Session.Layout()

	m, _ = press(t, m, "down", "down", "a")
	c, ok := l.CellByID(2)
	if !ok {
		t.Fatal("a should add cell 2")
	}
	if c.ContentID != 5 || c.Position[0] != 1 {
		t.Errorf("added cell = %+v, want content 5 next to cell 1", c)
	}

	// Hall is row 1; nudging it carries both cells.
	m, _ = press(t, m, "up", "right")
	if hall, _ := l.Hierarchy().Area("Root/Hall"); hall.Position[0] != 1 {
		t.Errorf("Hall x = %v", hall.Position[0])
	}
	if c.Position[0] != 2 {
		t.Errorf("cell 2 x = %v, want 2", c.Position[0])
	}
}

func TestEditorQuitAndSave(t *testing.T) {
	m, st := newTestEditor(t)

	if _, cmd := press(t, m, "q"); cmd == nil {
		t.Error("q on a clean session should quit")
	}

	m, _ = press(t, m, "down", "down", "d")
	m, cmd := press(t, m, "q")
	if cmd != nil || !m.confirmQuit {
		t.Fatal("q on a dirty session should ask for confirmation")
	}
	if _, cmd = press(t, m, "q"); cmd == nil {
		t.Error("second q should quit")
	}

	m, _ = press(t, m, "s")
	if m.Session.Dirty() {
		t.Error("s should save")
	}
	l, err := store.LoadLayout(context.Background(), st, "crypt")
	if err != nil || l.CellCount() != 0 {
		t.Errorf("saved layout = %v, %v", l, err)
	}
}

func TestEditorValidate(t *testing.T) {
	m, _ := newTestEditor(t)
	m, _ = press(t, m, "v")
	if len(m.diagnostics) != 0 || !strings.Contains(m.status, "valid") {
		t.Errorf("status = %q, diagnostics = %v", m.status, m.diagnostics)
	}
	if !strings.Contains(m.View(), "Editing crypt") {
		t.Error("view should show the layout name")
	}
}
