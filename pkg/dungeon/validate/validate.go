// Package validate runs read-only consistency and geometry checks over a
// dungeon Layout.
//
// Validation never mutates the Layout and never fails: every problem is
// returned as a [Diagnostic]. All checks run on every call, in a fixed order,
// over cells sorted by id, so the same Layout always yields the same report.
// Diagnostics are advisory; callers decide whether to surface or ignore them.
package validate

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	"github.com/matzehuels/dungeonbuilder/pkg/geom"
)

// Check identifies which check produced a diagnostic.
type Check string

const (
	CheckOverlap      Check = "overlap"
	CheckConnectivity Check = "connectivity"
	CheckScale        Check = "scale"
	CheckBounds       Check = "bounds"
	CheckDuplicateID  Check = "duplicate_id"
	CheckHierarchy    Check = "hierarchy"
)

// Diagnostic is one reported problem.
type Diagnostic struct {
	Check   Check    `json:"check"`
	CellIDs []uint32 `json:"cell_ids,omitempty"`
	Message string   `json:"message"`
}

// String returns the diagnostic message.
func (d Diagnostic) String() string { return d.Message }

// Options tunes the geometric checks.
type Options struct {
	// NeighborThreshold is the maximum distance between two cell positions
	// for them to count as connected.
	NeighborThreshold float32

	// WorldBound is the half-width of the cubic region cell positions must
	// stay inside.
	WorldBound float32
}

// Defaults for [Options].
const (
	DefaultNeighborThreshold = 1.0
	DefaultWorldBound        = 1000.0
)

// DefaultOptions returns the default thresholds.
func DefaultOptions() Options {
	return Options{
		NeighborThreshold: DefaultNeighborThreshold,
		WorldBound:        DefaultWorldBound,
	}
}

func (o Options) withDefaults() Options {
	if o.NeighborThreshold <= 0 {
		o.NeighborThreshold = DefaultNeighborThreshold
	}
	if o.WorldBound <= 0 {
		o.WorldBound = DefaultWorldBound
	}
	return o
}

// Validate checks l with the default options.
func Validate(l *dungeon.Layout) []Diagnostic {
	return ValidateWith(l, DefaultOptions())
}

// ValidateWith checks l with opts. Zero option fields take their defaults.
func ValidateWith(l *dungeon.Layout, opts Options) []Diagnostic {
	opts = opts.withDefaults()
	cells := l.Cells()

	var out []Diagnostic
	out = append(out, checkOverlap(cells)...)
	out = append(out, checkConnectivity(cells, opts.NeighborThreshold)...)
	out = append(out, checkScale(cells)...)
	out = append(out, checkBounds(cells, opts.WorldBound)...)
	out = append(out, checkDuplicateIDs(cells)...)
	out = append(out, checkHierarchy(l, cells)...)
	return out
}

// Messages returns the message of each diagnostic.
func Messages(diags []Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Message
	}
	return out
}

// Count returns the number of diagnostics per check.
func Count(diags []Diagnostic) map[Check]int {
	out := make(map[Check]int)
	for _, d := range diags {
		out[d.Check]++
	}
	return out
}

func checkOverlap(cells []*dungeon.Cell) []Diagnostic {
	var out []Diagnostic
	boxes := make([]geom.Box, len(cells))
	for i, c := range cells {
		boxes[i] = c.Bounds()
	}
	for i := range cells {
		for j := i + 1; j < len(cells); j++ {
			if boxes[i].Intersects(boxes[j]) {
				out = append(out, Diagnostic{
					Check:   CheckOverlap,
					CellIDs: []uint32{cells[i].ID, cells[j].ID},
					Message: fmt.Sprintf("cell %d overlaps cell %d", cells[i].ID, cells[j].ID),
				})
			}
		}
	}
	return out
}

// checkConnectivity walks proximity neighbours from the first cell with an
// explicit stack and reports once if any cell was not reached.
func checkConnectivity(cells []*dungeon.Cell, threshold float32) []Diagnostic {
	if len(cells) == 0 {
		return nil
	}
	visited := make([]bool, len(cells))
	stack := []int{0}
	visited[0] = true
	reached := 0
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reached++
		for j, other := range cells {
			if !visited[j] && geom.Distance(cells[i].Position, other.Position) <= threshold {
				visited[j] = true
				stack = append(stack, j)
			}
		}
	}
	if reached == len(cells) {
		return nil
	}
	var unreached []uint32
	for i, c := range cells {
		if !visited[i] {
			unreached = append(unreached, c.ID)
		}
	}
	return []Diagnostic{{
		Check:   CheckConnectivity,
		CellIDs: unreached,
		Message: fmt.Sprintf("%d of %d cells are disconnected from the main structure", len(unreached), len(cells)),
	}}
}

func checkScale(cells []*dungeon.Cell) []Diagnostic {
	var out []Diagnostic
	for _, c := range cells {
		if c.Scale[0] <= 0 || c.Scale[1] <= 0 || c.Scale[2] <= 0 {
			out = append(out, Diagnostic{
				Check:   CheckScale,
				CellIDs: []uint32{c.ID},
				Message: fmt.Sprintf("cell %d has an invalid scale %s", c.ID, fmtVec(c.Scale)),
			})
		}
	}
	return out
}

func checkBounds(cells []*dungeon.Cell, bound float32) []Diagnostic {
	var out []Diagnostic
	for _, c := range cells {
		for _, v := range c.Position {
			if v < -bound || v > bound {
				out = append(out, Diagnostic{
					Check:   CheckBounds,
					CellIDs: []uint32{c.ID},
					Message: fmt.Sprintf("cell %d is outside the world bounds at %s", c.ID, fmtVec(c.Position)),
				})
				break
			}
		}
	}
	return out
}

// checkDuplicateIDs groups registry values by their own ID field. The
// registry is keyed by id, so a duplicate means a cell's ID was changed
// after registration.
func checkDuplicateIDs(cells []*dungeon.Cell) []Diagnostic {
	counts := make(map[uint32]int)
	var order []uint32
	for _, c := range cells {
		if counts[c.ID] == 0 {
			order = append(order, c.ID)
		}
		counts[c.ID]++
	}
	var out []Diagnostic
	for _, id := range order {
		if n := counts[id]; n > 1 {
			out = append(out, Diagnostic{
				Check:   CheckDuplicateID,
				CellIDs: []uint32{id},
				Message: fmt.Sprintf("duplicate cell id %d (count %d)", id, n),
			})
		}
	}
	return out
}

// checkHierarchy compares the cells placed in the Area tree with the
// registry, by identity, in both directions.
func checkHierarchy(l *dungeon.Layout, cells []*dungeon.Cell) []Diagnostic {
	registered := mapset.New[*dungeon.Cell]()
	for _, c := range cells {
		registered.Put(c)
	}

	placed := mapset.New[*dungeon.Cell]()
	var out []Diagnostic
	for _, a := range l.Hierarchy().Areas() {
		for _, c := range a.Cells() {
			if placed.Has(c) {
				out = append(out, Diagnostic{
					Check:   CheckHierarchy,
					CellIDs: []uint32{c.ID},
					Message: fmt.Sprintf("cell %d is placed more than once (again in %s)", c.ID, a.Path()),
				})
				continue
			}
			placed.Put(c)
			if !registered.Has(c) {
				out = append(out, Diagnostic{
					Check:   CheckHierarchy,
					CellIDs: []uint32{c.ID},
					Message: fmt.Sprintf("cell %d is in the area tree at %s but not in the registry", c.ID, a.Path()),
				})
			}
		}
	}
	for _, c := range cells {
		if !placed.Has(c) {
			out = append(out, Diagnostic{
				Check:   CheckHierarchy,
				CellIDs: []uint32{c.ID},
				Message: fmt.Sprintf("cell %d is in the registry but missing from the area tree", c.ID),
			})
		}
	}
	return out
}

func fmtVec(v geom.Vec3) string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}
