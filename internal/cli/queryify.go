package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/streamgen/pkg/transform"
)

// queryifyOptions holds flags for the queryify command.
type queryifyOptions struct {
	in, out   streamFlags
	density   float64
	periodMin uint64
	periodMax uint64
	seed      uint64
}

func (c *CLI) queryifyCommand() *cobra.Command {
	var opts queryifyOptions
	cmd := &cobra.Command{
		Use:   "queryify <input> <output>",
		Short: "Inject bursts of random queries into a stream",
		Long: `Copy a stream and insert bursts of QUERY updates between its updates so
that a --density fraction of the output are queries. The number of updates
between bursts is drawn uniformly from [--period-min, --period-max).`,
		Example: `  streamgen queryify dynamic_1024.bin dynamic_1024_q.bin --density 0.1`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQueryify(cmd, args[0], args[1], opts)
		},
	}
	opts.in.register(cmd, "", "input")
	opts.out.register(cmd, "out-", "output")
	cmd.Flags().Float64VarP(&opts.density, "density", "d", 0.1, "fraction of output updates that are queries")
	cmd.Flags().Uint64Var(&opts.periodMin, "period-min", 100, "minimum updates between bursts")
	cmd.Flags().Uint64Var(&opts.periodMax, "period-max", 1000, "maximum updates between bursts (exclusive)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed")
	return cmd
}

func (c *CLI) runQueryify(cmd *cobra.Command, inPath, outPath string, opts queryifyOptions) (err error) {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	qopts := transform.QueryifyOptions{
		Density:   opts.density,
		PeriodMin: opts.periodMin,
		PeriodMax: opts.periodMax,
		Seed:      opts.seed,
		Logger:    logger,
	}
	if err := qopts.Validate(); err != nil {
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

	var stats transform.QueryifyStats
	err = runTool(ctx, "queryify", inPath, src.Updates(), func() (uint64, error) {
		var err error
		stats, err = transform.Queryify(ctx, src, dst, qopts)
		return stats.Updates, err
	})
	if err != nil {
		return err
	}

	printSuccess("Wrote %s", outPath)
	printStats(dst.Vertices(), stats.Updates+stats.Queries)
	printDetail("%d queries in %d bursts", stats.Queries, stats.Bursts)
	return nil
}
