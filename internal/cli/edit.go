package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
	"github.com/matzehuels/dungeonbuilder/pkg/pipeline"
	"github.com/matzehuels/dungeonbuilder/pkg/script"
)

// editOpts are the flags shared by every command that changes a layout.
type editOpts struct {
	create         bool   // start from an empty layout if name is not stored
	dryRun         bool   // apply and validate without saving
	skipValidation bool   // skip the validation stage
	checkContent   []uint // known content ids; empty disables the check
}

func (o *editOpts) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.create, "create", false, "create the layout if it does not exist")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "apply and validate without saving")
	cmd.Flags().BoolVar(&o.skipValidation, "skip-validation", false, "do not validate after editing")
	cmd.Flags().UintSliceVar(&o.checkContent, "check-content", nil, "reject content ids not in this list")
}

func (o *editOpts) resolver() dungeon.ContentResolver {
	if len(o.checkContent) == 0 {
		return nil
	}
	ids := make([]uint32, len(o.checkContent))
	for i, id := range o.checkContent {
		ids[i] = uint32(id)
	}
	return dungeon.NewContentSet(ids...)
}

// =============================================================================
// Script execution
// =============================================================================

// runScript applies sc to the stored layout name and reports the outcome.
func (c *CLI) runScript(ctx context.Context, name string, sc *script.Script, opts *editOpts) error {
	if err := checkContent(sc, opts.resolver()); err != nil {
		return err
	}

	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	res, err := runner.Execute(ctx, pipeline.Options{
		Store:          st,
		Name:           name,
		Create:         opts.create,
		Script:         sc,
		HistoryLimit:   c.Config.HistoryLimit,
		SkipValidation: opts.skipValidation,
		Validation:     c.validationOptions(),
		Save:           !opts.dryRun,
		Logger:         loggerFromContext(ctx),
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Applied %d steps to %s", res.Script.Steps, name))

	switch {
	case res.Saved:
		printSuccess("Saved %s", StyleHighlight.Render(name))
	case opts.dryRun:
		printInfo("Dry run, %s not saved", name)
	default:
		printInfo("No changes to %s", name)
	}
	for _, ref := range sortedKeys(res.Script.Refs) {
		printDetail("%s = cell %d", ref, res.Script.Refs[ref])
	}
	fmt.Println(formatStats(res.Stats.CellCount, res.Stats.AreaCount, len(res.Diagnostics), res.CacheInfo.ValidateHit))
	if len(res.Diagnostics) > 0 {
		printWarning("%d validation findings", len(res.Diagnostics))
		fmt.Println(diagnosticsTable(res.Diagnostics))
	}
	return nil
}

// checkContent rejects add_cell and add_corridor steps whose content id is
// unknown to r. A nil resolver accepts everything.
func checkContent(sc *script.Script, r dungeon.ContentResolver) error {
	if r == nil {
		return nil
	}
	for i, st := range sc.Steps {
		if st.Op != script.OpAddCell && st.Op != script.OpAddCorridor {
			continue
		}
		if !r.Exists(st.ContentID) {
			return errs.New(errs.ErrCodeInvalidInput, "step %d (%s): unknown content id %d", i+1, st.Op, st.ContentID)
		}
	}
	return nil
}

// singleStep wraps one step in a script and checks its shape.
func singleStep(st script.Step) (*script.Script, error) {
	sc := &script.Script{Name: strings.ReplaceAll(st.Op, "_", " "), Steps: []script.Step{st}}
	if err := sc.Check(); err != nil {
		return nil, err
	}
	return sc, nil
}

func sortedKeys(m map[string]uint32) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// parseCellID parses a cell id argument.
func parseCellID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, errs.New(errs.ErrCodeInvalidInput, "invalid cell id %q", s)
	}
	return uint32(id), nil
}

// parseVec parses "x,y,z".
func parseVec(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "invalid point %q (want x,y,z)", s)
	}
	out := make([]float32, 3)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, errs.New(errs.ErrCodeInvalidInput, "invalid point %q (want x,y,z)", s)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// =============================================================================
// cell
// =============================================================================

func (c *CLI) cellCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cell",
		Short: "Add, remove and transform cells",
	}
	cmd.AddCommand(c.cellAddCommand())
	cmd.AddCommand(c.cellRemoveCommand())
	cmd.AddCommand(c.cellTransformCommand(script.OpMoveCell, "move", "Move a cell to a new position"))
	cmd.AddCommand(c.cellTransformCommand(script.OpScaleCell, "scale", "Set a cell's scale"))
	cmd.AddCommand(c.cellTransformCommand(script.OpRotateCell, "rotate", "Set a cell's rotation quaternion (x,y,z,w)"))
	return cmd
}

func (c *CLI) cellAddCommand() *cobra.Command {
	var (
		opts editOpts
		step = script.Step{Op: script.OpAddCell, Ref: "new"}
	)
	cmd := &cobra.Command{
		Use:   "add <layout>",
		Short: "Add a cell to an area, creating the area if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := singleStep(step)
			if err != nil {
				return err
			}
			return c.runScript(cmd.Context(), args[0], sc, &opts)
		},
	}
	cmd.Flags().StringVar(&step.Path, "path", "", "area path, e.g. Root/Wing1/RoomA (default root)")
	cmd.Flags().Uint32Var(&step.ContentID, "content", 0, "content (asset) id")
	cmd.Flags().Float32SliceVar(&step.Position, "pos", nil, "position x,y,z")
	cmd.Flags().Float32SliceVar(&step.Rotation, "rot", nil, "rotation quaternion x,y,z,w")
	cmd.Flags().Float32SliceVar(&step.Scale, "scale", nil, "scale x,y,z")
	opts.register(cmd)
	return cmd
}

func (c *CLI) cellRemoveCommand() *cobra.Command {
	var opts editOpts
	cmd := &cobra.Command{
		Use:   "remove <layout> <cell-id>",
		Short: "Remove a cell",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCellID(args[1])
			if err != nil {
				return err
			}
			sc, err := singleStep(script.Step{Op: script.OpRemoveCell, Cell: id})
			if err != nil {
				return err
			}
			return c.runScript(cmd.Context(), args[0], sc, &opts)
		},
	}
	opts.register(cmd)
	return cmd
}

// cellTransformCommand builds move, scale and rotate, which differ only in
// which vector they set.
func (c *CLI) cellTransformCommand(op, use, short string) *cobra.Command {
	var opts editOpts
	cmd := &cobra.Command{
		Use:   use + " <layout> <cell-id> <values>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCellID(args[1])
			if err != nil {
				return err
			}
			value, err := parseFloats(args[2])
			if err != nil {
				return err
			}
			st := script.Step{Op: op, Cell: id}
			switch op {
			case script.OpMoveCell:
				st.Position = value
			case script.OpScaleCell:
				st.Scale = value
			case script.OpRotateCell:
				st.Rotation = value
			}
			sc, err := singleStep(st)
			if err != nil {
				return err
			}
			return c.runScript(cmd.Context(), args[0], sc, &opts)
		},
	}
	opts.register(cmd)
	return cmd
}

// parseFloats parses a comma-separated list of numbers.
func parseFloats(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, errs.New(errs.ErrCodeInvalidInput, "invalid number %q in %q", p, s)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// =============================================================================
// area
// =============================================================================

func (c *CLI) areaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "area",
		Short: "Add, remove, move, rename and reparent areas",
	}
	cmd.AddCommand(c.areaStepCommand("add <layout> <parent> <name>", "Add an empty child area", 3,
		func(args []string) (script.Step, error) {
			return script.Step{Op: script.OpAddArea, Parent: args[0], Name: args[1]}, nil
		}))
	cmd.AddCommand(c.areaStepCommand("remove <layout> <path>", "Remove an area with its cells and descendants", 2,
		func(args []string) (script.Step, error) {
			return script.Step{Op: script.OpRemoveArea, Path: args[0]}, nil
		}))
	cmd.AddCommand(c.areaStepCommand("move <layout> <path> <x,y,z>", "Move an area, carrying its cells and descendants", 3,
		func(args []string) (script.Step, error) {
			pos, err := parseVec(args[1])
			return script.Step{Op: script.OpMoveArea, Path: args[0], Position: pos}, err
		}))
	cmd.AddCommand(c.areaStepCommand("rename <layout> <path> <name>", "Rename an area", 3,
		func(args []string) (script.Step, error) {
			return script.Step{Op: script.OpRenameArea, Path: args[0], Name: args[1]}, nil
		}))
	cmd.AddCommand(c.areaStepCommand("reparent <layout> <path> <new-parent>", "Move an area under another parent", 3,
		func(args []string) (script.Step, error) {
			return script.Step{Op: script.OpReparentArea, Path: args[0], Parent: args[1]}, nil
		}))
	return cmd
}

// areaStepCommand builds an area subcommand. build receives the arguments
// after the layout name.
func (c *CLI) areaStepCommand(use, short string, nargs int, build func([]string) (script.Step, error)) *cobra.Command {
	var opts editOpts
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := build(args[1:])
			if err != nil {
				return err
			}
			sc, err := singleStep(st)
			if err != nil {
				return err
			}
			return c.runScript(cmd.Context(), args[0], sc, &opts)
		},
	}
	opts.register(cmd)
	return cmd
}

// =============================================================================
// corridor
// =============================================================================

func (c *CLI) corridorCommand() *cobra.Command {
	var (
		opts   editOpts
		path   string
		points []string
		step   = script.Step{Op: script.OpAddCorridor, Ref: "corridor"}
	)
	cmd := &cobra.Command{
		Use:   "corridor <layout>",
		Short: "Add a corridor cell spanning a polyline",
		Long: `Corridor adds one cell whose bounds cover every point of the polyline,
placed at the center of those bounds.`,
		Example: "  dungeonbuilder corridor crypt --path Root/Halls --content 9 --point 0,0,0 --point 8,0,0 --point 8,0,6",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			step.Path = path
			step.Points = step.Points[:0]
			for _, p := range points {
				v, err := parseVec(p)
				if err != nil {
					return err
				}
				step.Points = append(step.Points, v)
			}
			sc, err := singleStep(step)
			if err != nil {
				return err
			}
			return c.runScript(cmd.Context(), args[0], sc, &opts)
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "area path (default root)")
	cmd.Flags().Uint32Var(&step.ContentID, "content", 0, "content (asset) id")
	cmd.Flags().StringArrayVar(&points, "point", nil, "polyline point x,y,z (repeat, at least 2)")
	opts.register(cmd)
	return cmd
}

// =============================================================================
// apply
// =============================================================================

func (c *CLI) applyCommand() *cobra.Command {
	var opts editOpts
	cmd := &cobra.Command{
		Use:   "apply <layout> <script.toml>",
		Short: "Run a TOML edit script against a layout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := script.Load(args[1])
			if err != nil {
				return err
			}
			return c.runScript(cmd.Context(), args[0], sc, &opts)
		},
	}
	opts.register(cmd)
	return cmd
}
