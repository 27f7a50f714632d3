package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
	errs "github.com/matzehuels/dungeonbuilder/pkg/errors"
	dio "github.com/matzehuels/dungeonbuilder/pkg/io"
	"github.com/matzehuels/dungeonbuilder/pkg/pipeline"
	"github.com/matzehuels/dungeonbuilder/pkg/store"
)

// newCommand creates the "new" command.
func (c *CLI) newCommand() *cobra.Command {
	var (
		from  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty layout, or import one from a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNew(cmd.Context(), args[0], from, force)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "import the layout from a JSON document")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing layout")
	return cmd
}

func (c *CLI) runNew(ctx context.Context, name, from string, force bool) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := errs.ValidateLayoutName(name); err != nil {
		return err
	}
	if _, err := st.Get(ctx, name); err == nil && !force {
		return errs.New(errs.ErrCodeInvalidInput, "layout %q already exists (use --force to overwrite)", name)
	}

	l := dungeon.New()
	if from != "" {
		if l, err = dio.ImportJSON(from); err != nil {
			return err
		}
	}
	if err := store.SaveLayout(ctx, st, name, l); err != nil {
		return err
	}

	printSuccess("Created %s", StyleHighlight.Render(name))
	fmt.Println(formatStats(l.CellCount(), len(l.Hierarchy().Areas()), 0, false))
	printNextStep("Add a cell", fmt.Sprintf("%s cell add %s --path Root/Hall --content 1", appName, name))
	return nil
}

// showCommand creates the "show" command.
func (c *CLI) showCommand() *cobra.Command {
	var (
		asJSON bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a summary of a layout, or its JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runShow(cmd.Context(), args[0], asJSON, output)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the JSON document")
	cmd.Flags().StringVarP(&output, "output", "o", "", "export the JSON document to a file")
	return cmd
}

func (c *CLI) runShow(ctx context.Context, name string, asJSON bool, output string) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	l, err := store.LoadLayout(ctx, st, name)
	if err != nil {
		return err
	}

	switch {
	case output != "":
		if err := dio.ExportJSON(l, output); err != nil {
			return err
		}
		printSuccess("Exported %s", name)
		printFile(output)
		return nil
	case asJSON:
		return dio.WriteJSON(l, os.Stdout)
	}

	fmt.Println(StyleTitle.Render(name))
	printKeyValue("Backend", st.Backend())
	printKeyValue("Cells", strconv.Itoa(l.CellCount()))
	printKeyValue("Areas", strconv.Itoa(len(l.Hierarchy().Areas())))
	printKeyValue("Next id", strconv.FormatUint(uint64(l.NextCellID()), 10))
	printNewline()
	for _, a := range l.Hierarchy().Areas() {
		printInfo("%s %s", StyleHighlight.Render(a.Path()), StyleDim.Render(areaSummary(a)))
	}
	return nil
}

func areaSummary(a *dungeon.Area) string {
	return fmt.Sprintf("%d cells, %d children, at (%g, %g, %g)",
		len(a.Cells()), len(a.Children()), a.Position[0], a.Position[1], a.Position[2])
}

// treeCommand creates the "tree" command.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		format    string
		output    string
		showCells bool
		noCache   bool
	)
	cmd := &cobra.Command{
		Use:   "tree <name>",
		Short: "Render the Area tree as text, Graphviz DOT, SVG or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			if format == pipeline.FormatPNG && output == "" {
				return errs.New(errs.ErrCodeInvalidInput, "png output needs --output")
			}
			return c.runTree(cmd.Context(), args[0], pipeline.TreeOptions{
				Format:    format,
				ShowCells: showCells,
				Styles:    treeStyles(),
			}, output, noCache)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatText, "output format: text, dot, svg, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().BoolVar(&showCells, "cells", false, "list the cells of each area")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runTree(ctx context.Context, name string, opts pipeline.TreeOptions, output string, noCache bool) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	l, err := store.LoadLayout(ctx, st, name)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	data, hit, err := runner.RenderTreeWithCacheInfo(ctx, l, opts)
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("rendered tree", "format", opts.Format, "cached", hit)

	if output == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Rendered %s", name)
	printFile(output)
	return nil
}

// validateCommand creates the "validate" command.
func (c *CLI) validateCommand() *cobra.Command {
	var noCache, refresh bool
	cmd := &cobra.Command{
		Use:   "validate <name>",
		Short: "Check a layout for structural and geometric problems",
		Long: `Validate runs every check on a stored layout: overlapping cells, cells
disconnected from the main structure, non-positive scales, positions outside
the world bounds, duplicate ids and registry/hierarchy drift.

Findings are advisory. The command exits non-zero when there are any, so it
can gate CI pipelines.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0], noCache, refresh)
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached reports")
	return cmd
}

func (c *CLI) runValidate(ctx context.Context, name string, noCache, refresh bool) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Validating %s...", name))
	spinner.Start()
	res, err := runner.Execute(ctx, pipeline.Options{
		Store:      st,
		Name:       name,
		Validation: c.validationOptions(),
		Refresh:    refresh,
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	return reportDiagnostics(name, res)
}

// reportDiagnostics prints a pipeline result and returns an error when the
// layout has findings.
func reportDiagnostics(name string, res *pipeline.Result) error {
	fmt.Println(formatStats(res.Stats.CellCount, res.Stats.AreaCount, len(res.Diagnostics), res.CacheInfo.ValidateHit))
	if len(res.Diagnostics) == 0 {
		printSuccess("%s is valid", name)
		return nil
	}
	fmt.Println(diagnosticsTable(res.Diagnostics))
	return fmt.Errorf("%s has %d validation findings", name, len(res.Diagnostics))
}
