package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/streamgen/pkg/transform"
)

// streamifyOptions holds flags for the streamify command.
type streamifyOptions struct {
	in, out      streamFlags
	checkpoints  []float64
	extra        float64
	preprocessed bool
	shuffle      bool
	seed         uint64
}

func (c *CLI) streamifyCommand() *cobra.Command {
	var opts streamifyOptions
	cmd := &cobra.Command{
		Use:   "streamify <input> <output>",
		Short: "Walk a graph through a series of density checkpoints",
		Long: `Treat the updates of a stream as the edges of a graph and write a stream
that moves that graph from one density checkpoint to the next, inserting or
deleting its edges as needed. --extra adds random insert/delete pairs per
edge moved; the pairs cancel out within each checkpoint.`,
		Example: `  # insert, delete back out, reinsert
  streamgen streamify graph.bin churn.bin --checkpoints 1,0,1

  # five steps of 20% with 2 extra pairs per edge
  streamgen streamify graph.bin churn.bin --checkpoints 0.2,0.4,0.6,0.8,1 --extra 2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStreamify(cmd, args[0], args[1], opts)
		},
	}
	opts.in.register(cmd, "", "input")
	opts.out.register(cmd, "out-", "output")
	cmd.Flags().Float64SliceVar(&opts.checkpoints, "checkpoints", []float64{1}, "density checkpoints in [0, 1]")
	cmd.Flags().Float64Var(&opts.extra, "extra", 0, "random insert/delete pairs per edge moved")
	cmd.Flags().BoolVar(&opts.preprocessed, "preprocessed", false, "start from the full input graph instead of the empty graph")
	cmd.Flags().BoolVar(&opts.shuffle, "shuffle", false, "shuffle the input edges first (holds them in memory)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed")
	return cmd
}

func (c *CLI) runStreamify(cmd *cobra.Command, inPath, outPath string, opts streamifyOptions) (err error) {
	ctx := cmd.Context()

	sopts := transform.StreamifyOptions{
		Checkpoints:  opts.checkpoints,
		Extra:        opts.extra,
		Preprocessed: opts.preprocessed,
		Shuffle:      opts.shuffle,
		Seed:         opts.seed,
		Logger:       loggerFromContext(ctx),
	}
	if err := sopts.Validate(); err != nil {
		return err
	}

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

	var stats transform.StreamifyStats
	err = runTool(ctx, "streamify", inPath, src.Updates(), func() (uint64, error) {
		var err error
		stats, err = transform.Streamify(ctx, src, dst, sopts)
		return stats.Updates, err
	})
	if err != nil {
		return err
	}

	printSuccess("Wrote %s", outPath)
	printStats(dst.Vertices(), stats.Updates)
	printDetail("%d checkpoints, %d edges moved, %d extra pairs", stats.Checkpoints, stats.Moved, stats.ExtraPairs)
	return nil
}
