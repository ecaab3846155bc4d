package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/streamgen/pkg/render"
	"github.com/matzehuels/streamgen/pkg/stream"
)

// Output formats for the render command.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
)

// renderOptions holds flags for the render command.
type renderOptions struct {
	in          streamFlags
	output      string
	format      string
	isolated    bool
	maxVertices uint32
	scale       float64
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render <stream>",
		Short: "Draw the final graph of a small stream",
		Long: `Replay a stream and draw its final graph with Graphviz.

Formats: dot, svg, pdf, png. PDF and PNG require rsvg-convert (librsvg).
Streams with more than --max-vertices vertices are refused.`,
		Example: `  streamgen render cut_16.bin
  streamgen render erdos_32.bin -f png -o erdos.png --isolated`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}
	opts.in.register(cmd, "", "input")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format's extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatSVG, "output format: dot, svg, pdf, png")
	cmd.Flags().BoolVar(&opts.isolated, "isolated", false, "draw vertices without edges")
	cmd.Flags().Uint32Var(&opts.maxVertices, "max-vertices", render.DefaultMaxVertices, "largest vertex count to render")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2, "png scale factor")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts renderOptions) (err error) {
	ctx := cmd.Context()

	format := strings.ToLower(opts.format)
	switch format {
	case formatDOT, formatSVG, formatPDF, formatPNG:
	default:
		return fmt.Errorf("unknown format %q: must be dot, svg, pdf or png", opts.format)
	}

	s, err := openStream(path, opts.in)
	if err != nil {
		return err
	}
	defer closeWith(s, &err)

	printInfo("Replaying %d updates over %d vertices", s.Updates(), s.Vertices())
	var data []byte
	err = runTool(ctx, "render", path, s.Updates(), func() (uint64, error) {
		dot, err := render.StreamToDOT(ctx, s, render.Options{
			Isolated:    opts.isolated,
			MaxVertices: stream.VertexID(opts.maxVertices),
		})
		if err != nil {
			return 0, err
		}
		data, err = encodeGraph(cmd, dot, format, opts.scale)
		return s.Updates(), err
	})
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "." + format
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	printSuccess("Rendered %s", path)
	printFile(out)
	return nil
}

func encodeGraph(cmd *cobra.Command, dot, format string, scale float64) ([]byte, error) {
	if format == formatDOT {
		return []byte(dot), nil
	}
	svg, err := render.RenderSVG(cmd.Context(), dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case formatPDF:
		return render.ToPDF(svg)
	case formatPNG:
		return render.ToPNG(svg, scale)
	default:
		return svg, nil
	}
}
