package nodelink

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
)

// TextStyles styles the terminal tree. The zero value renders plain text.
type TextStyles struct {
	Area      lipgloss.Style
	Cell      lipgloss.Style
	Enumerate lipgloss.Style
}

// Text renders the Area tree of l as an indented terminal tree.
func Text(l *dungeon.Layout, opts Options, styles TextStyles) string {
	t := textNode(l.Root(), opts, styles).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(styles.Enumerate)
	return t.String()
}

func textNode(a *dungeon.Area, opts Options, styles TextStyles) *tree.Tree {
	label := a.Name
	if n := len(a.Cells()); n > 0 && !opts.ShowCells {
		label = fmt.Sprintf("%s (%d cells)", a.Name, n)
	}
	t := tree.Root(styles.Area.Render(label))
	if opts.ShowCells {
		for _, c := range a.Cells() {
			t.Child(styles.Cell.Render(fmt.Sprintf("#%d content=%d pos=(%g, %g, %g)",
				c.ID, c.ContentID, c.Position[0], c.Position[1], c.Position[2])))
		}
	}
	for _, ch := range a.Children() {
		t.Child(textNode(ch, opts, styles).
			Enumerator(tree.RoundedEnumerator).
			EnumeratorStyle(styles.Enumerate))
	}
	return t
}
