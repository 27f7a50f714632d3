package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/dungeonbuilder/pkg/dungeon"
)

// Options configures area tree rendering.
type Options struct {
	// ShowCells adds one leaf node per cell under its Area.
	ShowCells bool
}

// ToDOT converts the Area tree of l to Graphviz DOT. Areas are boxes labelled
// with their name and direct cell count; edges point from parent to child.
// Node identifiers are Area paths, which are unique within a tree.
func ToDOT(l *dungeon.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []string
	l.Root().Walk(func(a *dungeon.Area) {
		id := a.Path()
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(areaAttrs(a, l.Root()), ", "))
		if p := a.Parent(); p != nil {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", p.Path(), id))
		}
		if !opts.ShowCells {
			return
		}
		for _, c := range a.Cells() {
			cid := fmt.Sprintf("cell:%d", c.ID)
			fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse, fontsize=18, fillcolor=lightgrey];\n", cid, cellLabel(c))
			edges = append(edges, fmt.Sprintf("  %q -> %q [style=dashed, arrowhead=none];\n", id, cid))
		}
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func areaAttrs(a, root *dungeon.Area) []string {
	label := a.Name
	if n := len(a.Cells()); n > 0 {
		label = fmt.Sprintf("%s\n%d cells", a.Name, n)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if a == root {
		attrs = append(attrs, "fillcolor=\"#f0e6d2\"", "penwidth=2")
	}
	return attrs
}

func cellLabel(c *dungeon.Cell) string {
	return fmt.Sprintf("#%d (content %d)", c.ID, c.ContentID)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to a PNG image.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the drawing starts at the
// origin and scales with its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
