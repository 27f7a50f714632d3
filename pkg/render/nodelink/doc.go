// Package nodelink renders the Area hierarchy of a layout as a node-link
// diagram.
//
// # Usage
//
// Convert a layout to DOT, then render to SVG or PNG:
//
//	dot := nodelink.ToDOT(l, nodelink.Options{ShowCells: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// For terminals, [Text] draws the same tree with box-drawing characters.
//
// # DOT Format
//
// Nodes are keyed by Area path and drawn top to bottom (rankdir=TB). The
// root is highlighted. With ShowCells, each cell hangs off its Area as a
// grey ellipse joined by a dashed edge.
//
// # Dependencies
//
// SVG and PNG rendering run Graphviz in-process through
// [github.com/goccy/go-graphviz]; no external binaries are needed. The text
// tree uses [github.com/charmbracelet/lipgloss/tree].
package nodelink
