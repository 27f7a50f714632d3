package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/dungeonbuilder/pkg/config"
	"github.com/matzehuels/dungeonbuilder/pkg/store"
)

// storeCommand creates the layout store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored layouts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStoreList(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStoreDelete(cmd.Context(), args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print where layouts are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			fmt.Println(storeLocation(st, c.Config.Store))
			return nil
		},
	})

	return cmd
}

func (c *CLI) runStoreList(ctx context.Context) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		printInfo("No layouts in %s", storeLocation(st, c.Config.Store))
		printNextStep("Create one", appName+" new crypt")
		return nil
	}
	fmt.Println(entriesTable(entries, time.Now()))
	return nil
}

func (c *CLI) runStoreDelete(ctx context.Context, name string) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(ctx, name); err != nil {
		return err
	}
	printSuccess("Deleted %s", name)
	return nil
}

// storeLocation describes where st keeps its data.
func storeLocation(st store.Store, cfg config.StoreConfig) string {
	switch s := st.(type) {
	case *store.FileStore:
		return s.Dir()
	case *store.SQLiteStore:
		return s.Path()
	default:
		return fmt.Sprintf("%s %s/%s.%s", st.Backend(), cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	}
}

func entriesTable(entries []store.Entry, now time.Time) string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Name, strconv.Itoa(e.Size), formatRelativeTime(e.UpdatedAt, now)}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Layout", "Bytes", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0:
				return StyleHighlight
			default:
				return StyleDim
			}
		}).
		Render()
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
