// Package script applies edit scripts to a layout.
//
// A script is a TOML file with an ordered list of steps. Each step becomes
// one command on the session's undo history, so a script run can be undone
// step by step, or as a single entry when atomic is set:
//
//	name = "carve entrance"
//	atomic = true
//
//	[[step]]
//	op = "add_cell"
//	ref = "door"
//	path = "Root/Gate"
//	content_id = 12
//	position = [0, 0, 4]
//
//	[[step]]
//	op = "rotate_cell"
//	cell_ref = "door"
//	rotation = [0, 0.7071068, 0, 0.7071068]
//
// Cells created earlier in the same script can be addressed by their ref
// label; existing cells are addressed by id with cell = <id>. Rotations are
// quaternions in x, y, z, w order.
//
// Scripts are checked for shape when parsed. Problems that depend on the
// layout (an unknown cell or Area) surface while running: an atomic script
// is then rolled back entirely, a non-atomic one keeps the steps that
// already ran on the history.
package script

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
)

// Step operations.
const (
	OpAddCell      = "add_cell"
	OpRemoveCell   = "remove_cell"
	OpMoveCell     = "move_cell"
	OpScaleCell    = "scale_cell"
	OpRotateCell   = "rotate_cell"
	OpAddArea      = "add_area"
	OpRemoveArea   = "remove_area"
	OpMoveArea     = "move_area"
	OpRenameArea   = "rename_area"
	OpReparentArea = "reparent_area"
	OpAddCorridor  = "add_corridor"
	OpUndo         = "undo"
	OpRedo         = "redo"
)

// Script is a parsed edit script.
type Script struct {
	Name   string `toml:"name"`
	Atomic bool   `toml:"atomic"`
	Steps  []Step `toml:"step"`
}

// Step is one edit. Which fields apply depends on Op.
type Step struct {
	Op string `toml:"op"`

	// Path is the target Area, or the Area a new cell goes into.
	Path string `toml:"path"`
	// Parent is the parent Area for add_area and reparent_area.
	Parent string `toml:"parent"`
	// Name is the new Area name for add_area and rename_area.
	Name string `toml:"name"`

	Cell    uint32 `toml:"cell"`
	CellRef string `toml:"cell_ref"`
	Ref     string `toml:"ref"`

	ContentID uint32      `toml:"content_id"`
	Position  []float32   `toml:"position"`
	Rotation  []float32   `toml:"rotation"`
	Scale     []float32   `toml:"scale"`
	Points    [][]float32 `toml:"points"`
}

// Parse decodes and checks a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidScript, err, "parse script")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errs.New(errs.ErrCodeInvalidScript, "unknown key %s", undecoded[0])
	}
	if err := s.Check(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Check validates the shape of every step without touching a layout.
func (s *Script) Check() error {
	refs := make(map[string]bool)
	for i, st := range s.Steps {
		if err := st.check(refs); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidScript, err, "step %d (%s)", i+1, st.Op)
		}
		if s.Atomic && (st.Op == OpUndo || st.Op == OpRedo) {
			return errs.New(errs.ErrCodeInvalidScript, "step %d: %s is not allowed in an atomic script", i+1, st.Op)
		}
	}
	return nil
}

func (st Step) check(refs map[string]bool) error {
	needVec := func(field string, v []float32, n int) error {
		if len(v) != n {
			return fmt.Errorf("%s needs %d components, got %d", field, n, len(v))
		}
		return nil
	}
	optVec := func(field string, v []float32, n int) error {
		if v == nil {
			return nil
		}
		return needVec(field, v, n)
	}
	needCell := func() error {
		if st.Cell == 0 && st.CellRef == "" {
			return fmt.Errorf("cell or cell_ref is required")
		}
		if st.CellRef != "" && !refs[st.CellRef] {
			return fmt.Errorf("cell_ref %q is not defined by an earlier step", st.CellRef)
		}
		return nil
	}
	needArea := func() error {
		if st.Path == "" {
			return fmt.Errorf("path is required")
		}
		return errs.ValidateAreaPath(st.Path)
	}
	defineRef := func() error {
		if st.Ref == "" {
			return nil
		}
		if refs[st.Ref] {
			return fmt.Errorf("ref %q is already defined", st.Ref)
		}
		refs[st.Ref] = true
		return nil
	}

	switch st.Op {
	case OpAddCell:
		if err := errs.ValidateAreaPath(st.Path); err != nil {
			return err
		}
		for _, err := range []error{
			optVec("position", st.Position, 3),
			optVec("rotation", st.Rotation, 4),
			optVec("scale", st.Scale, 3),
		} {
			if err != nil {
				return err
			}
		}
		return defineRef()
	case OpRemoveCell:
		return needCell()
	case OpMoveCell:
		if err := needCell(); err != nil {
			return err
		}
		return needVec("position", st.Position, 3)
	case OpScaleCell:
		if err := needCell(); err != nil {
			return err
		}
		return needVec("scale", st.Scale, 3)
	case OpRotateCell:
		if err := needCell(); err != nil {
			return err
		}
		return needVec("rotation", st.Rotation, 4)
	case OpAddArea:
		if err := errs.ValidateAreaPath(st.Parent); err != nil {
			return err
		}
		return errs.ValidateAreaName(st.Name)
	case OpRemoveArea:
		return needArea()
	case OpMoveArea:
		if err := needArea(); err != nil {
			return err
		}
		return needVec("position", st.Position, 3)
	case OpRenameArea:
		if err := needArea(); err != nil {
			return err
		}
		return errs.ValidateAreaName(st.Name)
	case OpReparentArea:
		if err := needArea(); err != nil {
			return err
		}
		return errs.ValidateAreaPath(st.Parent)
	case OpAddCorridor:
		if len(st.Points) < 2 {
			return fmt.Errorf("a corridor needs at least 2 points")
		}
		for j, p := range st.Points {
			if err := needVec(fmt.Sprintf("points[%d]", j), p, 3); err != nil {
				return err
			}
		}
		if err := errs.ValidateAreaPath(st.Path); err != nil {
			return err
		}
		return defineRef()
	case OpUndo, OpRedo:
		return nil
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
}
