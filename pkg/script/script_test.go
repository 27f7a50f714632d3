package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon/command"
	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
	"github.com/matzehuels/dungeonbuilder/pkg/geom"
)

const entrance = `
name = "carve entrance"

[[step]]
op = "add_cell"
ref = "door"
path = "Root/Gate"
content_id = 12
position = [0, 0, 4]

[[step]]
op = "rotate_cell"
cell_ref = "door"
rotation = [0, 0, 0, 2]

[[step]]
op = "add_area"
parent = "Root"
name = "Yard"

[[step]]
op = "add_corridor"
ref = "path"
path = "Root/Yard"
content_id = 3
points = [[0, 0, 0], [6, 0, 0]]

[[step]]
op = "move_area"
path = "Root/Gate"
position = [2, 0, 0]
`

func mustParse(t *testing.T, src string) *Script {
	t.Helper()
	s, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return s
}

func TestRun(t *testing.T) {
	l := dungeon.New()
	h := command.NewHistory(0)
	res, err := Run(l, h, mustParse(t, entrance))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Steps != 5 || h.UndoLen() != 5 {
		t.Fatalf("steps = %d, undo depth = %d", res.Steps, h.UndoLen())
	}

	door, ok := l.CellByID(res.Refs["door"])
	if !ok {
		t.Fatal("door cell missing")
	}
	if door.Rotation != geom.Identity() {
		t.Errorf("rotation should be normalized, got %v", door.Rotation)
	}
	if door.Position != geom.V(2, 0, 4) {
		t.Errorf("door position = %v, want moved with its area", door.Position)
	}

	corridor, _ := l.CellByID(res.Refs["path"])
	if corridor.Position != geom.V(3, 0, 0) || corridor.Scale != geom.V(6, 1, 1) {
		t.Errorf("corridor = %+v", corridor)
	}
	if a, _ := l.AreaOf(corridor.ID); a.Path() != "Root/Yard" {
		t.Errorf("corridor area = %s", a.Path())
	}

	for h.Undo() {
	}
	if l.CellCount() != 0 || len(l.Root().Children()) != 0 {
		t.Errorf("undoing every step should leave an empty layout, have %d cells and %d areas",
			l.CellCount(), len(l.Root().Children()))
	}
}

func TestRunAtomic(t *testing.T) {
	l := dungeon.New()
	h := command.NewHistory(0)
	s := mustParse(t, "atomic = true\n"+entrance)

	if _, err := Run(l, h, s); err != nil {
		t.Fatal(err)
	}
	if h.UndoLen() != 1 || h.UndoNames()[0] != "carve entrance" {
		t.Fatalf("atomic run should be one entry, got %v", h.UndoNames())
	}
	h.Undo()
	if l.CellCount() != 0 {
		t.Error("undoing the batch should remove every cell")
	}
	h.Redo()
	if l.CellCount() != 2 {
		t.Errorf("redo restored %d cells, want 2", l.CellCount())
	}
}

func TestRunAtomicRollsBack(t *testing.T) {
	l := dungeon.New()
	h := command.NewHistory(0)
	s := mustParse(t, `
atomic = true

[[step]]
op = "add_cell"
path = "Root/Hall"
content_id = 1

[[step]]
op = "move_cell"
cell = 99
position = [1, 1, 1]
`)
	res, err := Run(l, h, s)
	if !errs.Is(err, errs.ErrCodeCellNotFound) {
		t.Fatalf("err = %v, want CELL_NOT_FOUND", err)
	}
	if res.Steps != 0 || h.CanUndo() {
		t.Errorf("atomic failure left steps=%d undo=%v", res.Steps, h.CanUndo())
	}
	if l.CellCount() != 0 {
		t.Error("rolled back cell still registered")
	}
	if _, ok := l.Hierarchy().Area("Root/Hall"); ok {
		t.Error("rolled back add_cell left its auto-created area")
	}
}

func TestRunNonAtomicKeepsEarlierSteps(t *testing.T) {
	l := dungeon.New()
	h := command.NewHistory(0)
	s := mustParse(t, `
[[step]]
op = "add_cell"
content_id = 1

[[step]]
op = "remove_area"
path = "Root/Nowhere"
`)
	res, err := Run(l, h, s)
	if !errs.Is(err, errs.ErrCodeAreaNotFound) {
		t.Fatalf("err = %v, want AREA_NOT_FOUND", err)
	}
	if res.Steps != 1 || l.CellCount() != 1 || h.UndoLen() != 1 {
		t.Errorf("steps=%d cells=%d undo=%d", res.Steps, l.CellCount(), h.UndoLen())
	}
}

func TestRunUndoRedoSteps(t *testing.T) {
	l := dungeon.New()
	h := command.NewHistory(0)
	s := mustParse(t, `
[[step]]
op = "add_cell"
ref = "a"
content_id = 1

[[step]]
op = "undo"

[[step]]
op = "move_cell"
cell_ref = "a"
position = [1, 0, 0]
`)
	_, err := Run(l, h, s)
	if !errs.Is(err, errs.ErrCodeCellNotFound) {
		t.Errorf("moving an undone cell = %v, want CELL_NOT_FOUND", err)
	}
	if !h.CanRedo() {
		t.Error("undo step should leave a redo entry")
	}
}

func TestRunRejectsRootAndCycles(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errs.Code
	}{
		{"remove root", "[[step]]\nop = \"remove_area\"\npath = \"Root\"", errs.ErrCodeInvalidInput},
		{"rename root", "[[step]]\nop = \"rename_area\"\npath = \"Root\"\nname = \"Top\"", errs.ErrCodeInvalidInput},
		{"cycle", "[[step]]\nop = \"reparent_area\"\npath = \"Root/A\"\nparent = \"Root/A/B\"", errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := dungeon.New()
			l.Hierarchy().GetOrCreateArea("Root/A/B")
			_, err := Run(l, command.NewHistory(0), mustParse(t, tt.src))
			if !errs.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad toml", "[[step]\nop="},
		{"unknown key", "[[step]]\nop = \"undo\"\ncolour = 3"},
		{"missing op", "[[step]]\npath = \"Root\""},
		{"unknown op", "[[step]]\nop = \"explode\""},
		{"short position", "[[step]]\nop = \"move_cell\"\ncell = 1\nposition = [1, 2]"},
		{"missing cell", "[[step]]\nop = \"scale_cell\"\nscale = [1, 1, 1]"},
		{"undefined ref", "[[step]]\nop = \"remove_cell\"\ncell_ref = \"ghost\""},
		{"duplicate ref", "[[step]]\nop = \"add_cell\"\nref = \"a\"\n[[step]]\nop = \"add_cell\"\nref = \"a\""},
		{"bad area name", "[[step]]\nop = \"add_area\"\nname = \"a/b\""},
		{"one point corridor", "[[step]]\nop = \"add_corridor\"\npoints = [[0, 0, 0]]"},
		{"undo in atomic", "atomic = true\n[[step]]\nop = \"undo\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if !errs.Is(err, errs.ErrCodeInvalidScript) {
				t.Errorf("Parse = %v, want INVALID_SCRIPT", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edit.toml")
	if err := os.WriteFile(path, []byte(entrance), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "carve entrance" || len(s.Steps) != 5 {
		t.Errorf("Load = %+v", s)
	}
}
