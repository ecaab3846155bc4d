package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/streamgen/pkg/transform"
)

// convertOptions holds flags for the convert command.
type convertOptions struct {
	in, out streamFlags
	remap   bool
	static  bool
}

func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOptions
	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a stream between formats and normalize it",
		Long: `Copy a stream into another format. On the way, self loops are dropped,
update types are recomputed by replaying the stream, and the output header
is patched with the number of updates written.

--remap assigns vertex ids in order of first appearance, for inputs whose
ids are not dense. --static writes only the final graph, as insertions.`,
		Example: `  streamgen convert dynamic_1024.bin dynamic_1024.txt
  streamgen convert raw.txt clean.bin --kind ascii --untyped --remap
  streamgen convert dynamic_1024.bin final.db --static`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, args[0], args[1], opts)
		},
	}
	opts.in.register(cmd, "", "input")
	opts.out.register(cmd, "out-", "output")
	cmd.Flags().BoolVar(&opts.remap, "remap", false, "remap vertex ids to [0, vertices)")
	cmd.Flags().BoolVar(&opts.static, "static", false, "write only the final graph as insertions")
	return cmd
}

func (c *CLI) runConvert(cmd *cobra.Command, inPath, outPath string, opts convertOptions) (err error) {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	src, err := openStream(inPath, opts.in)
	if err != nil {
		return err
	}
	defer closeWith(src, &err)

	dst, err := createStream(outPath, opts.out)
	if err != nil {
		return err
	}
	defer closeWith(dst, &err)

	prog := newProgress(logger)
	var stats transform.ConvertStats
	err = runTool(ctx, "convert", inPath, src.Updates(), func() (uint64, error) {
		var err error
		stats, err = transform.Convert(ctx, src, dst, transform.ConvertOptions{
			Remap:  opts.remap,
			Static: opts.static,
			Logger: logger,
		})
		return stats.Read, err
	})
	if err != nil {
		return err
	}
	prog.done("Converted stream")

	printSuccess("Wrote %s", outPath)
	printStats(dst.Vertices(), stats.Written)
	if stats.SelfLoops > 0 {
		printWarning("dropped %d self loops", stats.SelfLoops)
	}
	if stats.Retyped > 0 {
		printWarning("corrected %d update types", stats.Retyped)
	}
	if stats.Queries > 0 {
		printDetail("%d queries", stats.Queries)
	}
	return nil
}
