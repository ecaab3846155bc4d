package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/streamgen/pkg/adjacency"
	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
	"github.com/matzehuels/streamgen/pkg/transform"
)

// DefaultMaxVertices is the vertex limit used when Options.MaxVertices is 0.
const DefaultMaxVertices = 1024

// Options configures DOT generation.
type Options struct {
	// Isolated includes vertices without edges.
	Isolated bool

	// MaxVertices bounds the vertex count accepted by [StreamToDOT].
	MaxVertices stream.VertexID
}

// ToDOT converts a graph to undirected Graphviz DOT source.
func ToDOT(adj *adjacency.Matrix, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12, width=0.3, fixedsize=true];\n")
	buf.WriteString("  edge [penwidth=1.2];\n")
	buf.WriteString("\n")

	if opts.Isolated {
		for v := range adj.Vertices() {
			fmt.Fprintf(&buf, "  %d;\n", v)
		}
		buf.WriteString("\n")
	}
	for e := range adj.Edges() {
		fmt.Fprintf(&buf, "  %d -- %d;\n", e.Src, e.Dst)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// StreamToDOT replays r and converts its final graph to DOT.
func StreamToDOT(ctx context.Context, r stream.Reader, opts Options) (string, error) {
	limit := opts.MaxVertices
	if limit == 0 {
		limit = DefaultMaxVertices
	}
	if r.Vertices() > limit {
		return "", errors.New(errors.ErrCodeUnsupported,
			"stream has %d vertices, rendering is limited to %d", r.Vertices(), limit)
	}
	adj, err := transform.Replay(ctx, r)
	if err != nil {
		return "", err
	}
	return ToDOT(adj, opts), nil
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg tag with one sized by
// its viewBox so the image scales in browsers.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
