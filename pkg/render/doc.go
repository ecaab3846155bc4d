// Package render draws the final graph of a small update stream.
//
// # Overview
//
// A stream is replayed into an adjacency matrix (see [transform.Replay]) and
// the surviving edges are emitted as an undirected Graphviz DOT graph:
//
//	dot, err := render.StreamToDOT(ctx, r, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Limits
//
// Graphviz layout is superlinear, so [StreamToDOT] refuses streams with more
// than [Options.MaxVertices] vertices.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG output using the external rsvg-convert
// tool (from librsvg).
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package render
