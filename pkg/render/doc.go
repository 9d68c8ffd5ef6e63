// Package render turns flow graphs into visual outputs.
//
// # Overview
//
// This package contains the rendering sinks that transform conversation flow
// graphs into display formats:
//
//   - DOT: Graphviz source with pinned node positions
//   - SVG: vector output rendered through Graphviz
//   - PNG: raster output rendered through Graphviz
//
// The graph's own coordinates drive the picture: every node carries the
// position assigned by the layout, and rendering pins nodes to those
// positions instead of letting Graphviz lay the graph out again. The same
// graph therefore always produces the same image.
//
//	dot := render.ToDOT(g, render.Options{})
//	svg, err := render.SVG(g, render.Options{})
//	png, err := render.PNG(g, render.Options{})
package render
