package script

import (
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon/command"
	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
	"github.com/matzehuels/dungeonbuilder/pkg/geom"
)

// Result summarizes a script run.
type Result struct {
	// Steps is the number of steps that ran.
	Steps int
	// Refs maps each ref label to the id of the cell it created.
	Refs map[string]uint32
}

// Run applies s to l, recording the commands on h. On error the returned
// Result still describes the steps that ran before the failing one.
func Run(l *dungeon.Layout, h *command.History, s *Script) (Result, error) {
	r := &runner{layout: l, history: h, refs: make(map[string]*dungeon.Cell)}
	if s.Atomic {
		r.history = nil
	}

	var steps int
	for i, st := range s.Steps {
		if err := r.step(st); err != nil {
			if s.Atomic {
				r.rollback()
				steps = 0
				r.refs = nil
			}
			return r.result(steps), errs.Wrap(errs.GetCode(err), err, "step %d (%s)", i+1, st.Op)
		}
		steps++
	}

	if s.Atomic && len(r.done) > 0 {
		name := s.Name
		if name == "" {
			name = "script"
		}
		h.Record(command.NewBatch(name, r.done...))
	}
	return r.result(steps), nil
}

type runner struct {
	layout  *dungeon.Layout
	history *command.History // nil while collecting an atomic batch
	done    []command.Command
	refs    map[string]*dungeon.Cell
}

func (r *runner) result(steps int) Result {
	out := Result{Steps: steps, Refs: make(map[string]uint32, len(r.refs))}
	for k, c := range r.refs {
		out.Refs[k] = c.ID
	}
	return out
}

func (r *runner) exec(cmd command.Command) {
	if r.history != nil {
		r.history.Execute(cmd)
		return
	}
	cmd.Execute()
	r.done = append(r.done, cmd)
}

func (r *runner) rollback() {
	for i := len(r.done) - 1; i >= 0; i-- {
		r.done[i].Undo()
	}
	r.done = nil
}

func (r *runner) step(st Step) error {
	switch st.Op {
	case OpAddCell:
		c := dungeon.NewCell(st.ContentID)
		if st.Position != nil {
			c.Position = vec(st.Position)
		}
		if st.Rotation != nil {
			c.Rotation = quat(st.Rotation)
		}
		if st.Scale != nil {
			c.Scale = vec(st.Scale)
		}
		cmd := command.NewAddCell(r.layout, c, st.Path)
		r.exec(cmd)
		r.define(st.Ref, cmd.Cell())
	case OpAddCorridor:
		points := make([]geom.Vec3, len(st.Points))
		for i, p := range st.Points {
			points[i] = vec(p)
		}
		cmd := command.NewAddCorridor(r.layout, points, st.Path, st.ContentID)
		r.exec(cmd)
		r.define(st.Ref, cmd.Cell())
	case OpRemoveCell:
		c, err := r.cell(st)
		if err != nil {
			return err
		}
		r.exec(command.NewRemoveCell(r.layout, c, ""))
	case OpMoveCell:
		c, err := r.cell(st)
		if err != nil {
			return err
		}
		r.exec(command.NewMoveCell(r.layout, c, vec(st.Position)))
	case OpScaleCell:
		c, err := r.cell(st)
		if err != nil {
			return err
		}
		r.exec(command.NewScaleCell(r.layout, c, vec(st.Scale)))
	case OpRotateCell:
		c, err := r.cell(st)
		if err != nil {
			return err
		}
		r.exec(command.NewRotateCell(r.layout, c, quat(st.Rotation)))
	case OpAddArea:
		parent, err := r.area(st.Parent)
		if err != nil {
			return err
		}
		r.exec(command.NewAddArea(r.layout, parent, dungeon.NewArea(st.Name)))
	case OpRemoveArea:
		a, err := r.nonRoot(st.Op, st.Path)
		if err != nil {
			return err
		}
		r.exec(command.NewRemoveArea(r.layout, a))
	case OpMoveArea:
		a, err := r.area(st.Path)
		if err != nil {
			return err
		}
		r.exec(command.NewMoveArea(a, vec(st.Position)))
	case OpRenameArea:
		a, err := r.nonRoot(st.Op, st.Path)
		if err != nil {
			return err
		}
		r.exec(command.NewRenameArea(a, st.Name))
	case OpReparentArea:
		a, err := r.nonRoot(st.Op, st.Path)
		if err != nil {
			return err
		}
		parent, err := r.area(st.Parent)
		if err != nil {
			return err
		}
		if a.IsAncestorOf(parent) {
			return errs.New(errs.ErrCodeInvalidInput, "cannot move %s under its own subtree %s", a.Path(), parent.Path())
		}
		r.exec(command.NewReparentArea(r.layout, a, parent))
	case OpUndo:
		r.history.Undo()
	case OpRedo:
		r.history.Redo()
	default:
		return errs.New(errs.ErrCodeInvalidScript, "unknown op %q", st.Op)
	}
	return nil
}

func (r *runner) define(ref string, c *dungeon.Cell) {
	if ref != "" {
		r.refs[ref] = c
	}
}

func (r *runner) cell(st Step) (*dungeon.Cell, error) {
	if st.CellRef != "" {
		if c, ok := r.refs[st.CellRef]; ok {
			if _, live := r.layout.CellByID(c.ID); live {
				return c, nil
			}
		}
		return nil, errs.New(errs.ErrCodeCellNotFound, "cell_ref %q does not name a live cell", st.CellRef)
	}
	c, ok := r.layout.CellByID(st.Cell)
	if !ok {
		return nil, errs.New(errs.ErrCodeCellNotFound, "cell %d not found", st.Cell)
	}
	return c, nil
}

func (r *runner) area(path string) (*dungeon.Area, error) {
	a, ok := r.layout.Hierarchy().Area(path)
	if !ok {
		return nil, errs.New(errs.ErrCodeAreaNotFound, "area %q not found", path)
	}
	return a, nil
}

func (r *runner) nonRoot(op, path string) (*dungeon.Area, error) {
	a, err := r.area(path)
	if err != nil {
		return nil, err
	}
	if a == r.layout.Root() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "the root area cannot be the target of %s", op)
	}
	return a, nil
}

func vec(v []float32) geom.Vec3 { return geom.V(v[0], v[1], v[2]) }

func quat(v []float32) geom.Quat { return geom.Q(v[0], v[1], v[2], v[3]) }
