package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon/command"
	"github.com/matzehuels/dungeonbuilder/pkg/dungeon/validate"
	"github.com/matzehuels/dungeonbuilder/pkg/geom"
	"github.com/matzehuels/dungeonbuilder/pkg/session"
	"github.com/matzehuels/dungeonbuilder/pkg/store"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listAreaStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// editCommand creates the interactive editor command.
func (c *CLI) editCommand() *cobra.Command {
	var create bool
	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Edit a layout interactively with undo and redo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args[0], create)
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "start a new layout if name is not stored")
	return cmd
}

func (c *CLI) runEdit(ctx context.Context, name string, create bool) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	open := session.Open
	if create {
		open = session.OpenOrNew
	}
	sess, err := open(ctx, st, name, c.Config.HistoryLimit)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(NewEditorModel(ctx, st, sess, c.validationOptions()), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(EditorModel); ok && m.Session.Dirty() {
		printWarning("Quit with unsaved changes to %s", name)
	}
	return nil
}

// =============================================================================
// EditorModel - Interactive layout editor
// =============================================================================

// editorRow is one line of the editor: an Area or a cell inside it.
type editorRow struct {
	area  *dungeon.Area
	cell  *dungeon.Cell
	depth int
}

// nudge is the distance one keypress moves a cell or Area.
const nudge = 1

// EditorModel is the bubbletea model for the interactive editor. Every edit
// goes through the session, so it can be undone and marks the layout dirty.
type EditorModel struct {
	Session *session.Session
	Cursor  int
	Offset  int
	Height  int

	ctx         context.Context
	store       store.Store
	validation  validate.Options
	rows        []editorRow
	status      string
	statusStyle lipgloss.Style
	diagnostics []validate.Diagnostic
	confirmQuit bool
}

// NewEditorModel creates an editor for sess, saving to st.
func NewEditorModel(ctx context.Context, st store.Store, sess *session.Session, opts validate.Options) EditorModel {
	m := EditorModel{
		Session:    sess,
		Height:     15,
		ctx:        ctx,
		store:      st,
		validation: opts,
	}
	m.refresh()
	return m
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if key != "q" && key != "esc" {
			m.confirmQuit = false
		}
		switch key {
		case "ctrl+c":
			return m, tea.Quit
		case "q", "esc":
			if m.Session.Dirty() && !m.confirmQuit {
				m.confirmQuit = true
				m.setStatus(StyleWarning, "Unsaved changes. Press q again to quit, s to save.")
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			m.moveCursor(-1)
		case "down", "j":
			m.moveCursor(1)
		case "a":
			m.addCell()
		case "d", "delete":
			m.remove()
		case "left", "h":
			m.translate(geom.V(-nudge, 0, 0))
		case "right", "l":
			m.translate(geom.V(nudge, 0, 0))
		case "u":
			if m.Session.Undo() {
				m.setStatus(StyleDim, "Undid "+topName(m.Session.History().RedoNames()))
			} else {
				m.setStatus(StyleDim, "Nothing to undo")
			}
		case "r", "ctrl+r":
			if m.Session.Redo() {
				m.setStatus(StyleDim, "Redid "+topName(m.Session.History().UndoNames()))
			} else {
				m.setStatus(StyleDim, "Nothing to redo")
			}
		case "v":
			m.diagnostics = validate.ValidateWith(m.Session.Layout(), m.validation)
			if len(m.diagnostics) == 0 {
				m.setStatus(StyleSuccess, "Layout is valid")
			} else {
				m.setStatus(StyleWarning, fmt.Sprintf("%d validation findings", len(m.diagnostics)))
			}
			return m, nil
		case "s":
			if err := m.Session.Save(m.ctx, m.store); err != nil {
				m.setStatus(StyleWarning, "Save failed: "+err.Error())
			} else {
				m.setStatus(StyleSuccess, "Saved "+m.Session.Name)
			}
			return m, nil
		}
		m.refresh()
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
		m.clampCursor()
	}
	return m, nil
}

func (m *EditorModel) setStatus(style lipgloss.Style, msg string) {
	m.status = msg
	m.statusStyle = style
}

func (m *EditorModel) moveCursor(delta int) {
	m.Cursor += delta
	m.clampCursor()
}

func (m *EditorModel) clampCursor() {
	m.Cursor = min(max(m.Cursor, 0), len(m.rows)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// selected returns the row under the cursor.
func (m *EditorModel) selected() editorRow {
	return m.rows[m.Cursor]
}

// addCell adds a cell at the position of the selected Area, or next to the
// selected cell.
func (m *EditorModel) addCell() {
	row := m.selected()
	c := dungeon.NewCell(0)
	if row.cell != nil {
		c.ContentID = row.cell.ContentID
		c.Position = row.cell.Position.Add(geom.V(nudge, 0, 0))
	} else {
		c.Position = row.area.Position
	}
	cmd := command.NewAddCellTo(m.Session.Layout(), c, row.area)
	m.Session.Execute(cmd)
	m.setStatus(StyleDim, fmt.Sprintf("Added cell %d to %s", cmd.Cell().ID, row.area.Path()))
}

// remove deletes the selected cell or Area. The root Area stays.
func (m *EditorModel) remove() {
	row := m.selected()
	l := m.Session.Layout()
	switch {
	case row.cell != nil:
		m.Session.Execute(command.NewRemoveCellFrom(l, row.cell, row.area))
		m.setStatus(StyleDim, fmt.Sprintf("Removed cell %d", row.cell.ID))
	case row.area == l.Root():
		m.setStatus(StyleWarning, "The root area cannot be removed")
	default:
		m.Session.Execute(command.NewRemoveArea(l, row.area))
		m.setStatus(StyleDim, "Removed "+row.area.Path())
	}
}

// translate nudges the selected cell, or the selected Area with everything
// under it.
func (m *EditorModel) translate(delta geom.Vec3) {
	row := m.selected()
	if row.cell != nil {
		m.Session.Execute(command.NewMoveCell(m.Session.Layout(), row.cell, row.cell.Position.Add(delta)))
		return
	}
	m.Session.Execute(command.NewMoveArea(row.area, row.area.Position.Add(delta)))
}

// refresh rebuilds the rows from the layout after an edit.
func (m *EditorModel) refresh() {
	m.rows = m.rows[:0]
	var walk func(a *dungeon.Area, depth int)
	walk = func(a *dungeon.Area, depth int) {
		m.rows = append(m.rows, editorRow{area: a, depth: depth})
		for _, c := range a.Cells() {
			m.rows = append(m.rows, editorRow{area: a, cell: c, depth: depth + 1})
		}
		for _, ch := range a.Children() {
			walk(ch, depth+1)
		}
	}
	walk(m.Session.Layout().Root(), 0)
	m.clampCursor()
}

func (m EditorModel) View() string {
	var b strings.Builder

	title := "Editing " + m.Session.Name
	if m.Session.Dirty() {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ←/→ nudge  a add  d delete  u undo  r redo  v validate  s save  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		rows = append(rows, m.rowCells(i))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Item", "Content", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.rows[idx].cell == nil:
				return listAreaStyle
			default:
				return listDimStyle
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d cells  undo %d  redo %d",
		m.Cursor+1, len(m.rows), m.Session.Layout().CellCount(),
		m.Session.History().UndoLen(), m.Session.History().RedoLen())))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

func (m EditorModel) rowCells(i int) []string {
	r := m.rows[i]
	cursor := "  "
	if i == m.Cursor {
		cursor = "▸ "
	}
	indent := strings.Repeat("  ", r.depth)
	if r.cell == nil {
		return []string{cursor, indent + r.area.Name + "/", "", formatVec(r.area.Position)}
	}
	return []string{cursor, fmt.Sprintf("%s#%d", indent, r.cell.ID), fmt.Sprint(r.cell.ContentID), formatVec(r.cell.Position)}
}

func formatVec(v geom.Vec3) string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}

// topName returns the most recent entry of a history stack listing.
func topName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
