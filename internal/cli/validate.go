package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/streamgen/pkg/validate"
)

// validateOptions holds flags for the validate command.
type validateOptions struct {
	in          streamFlags
	cumulative  string
	cumFlags    streamFlags
	maxProblems int
}

func (c *CLI) validateCommand() *cobra.Command {
	var opts validateOptions
	cmd := &cobra.Command{
		Use:   "validate <stream>",
		Short: "Replay a stream and report malformed updates",
		Long: `Replay a stream against an adjacency matrix and report self loops, vertex ids
outside [0, vertices) and updates whose type disagrees with the replay.
QUERY updates are not applied.

The argument is a stream file or a YAML metadata file written by --metadata.
With --cumulative the final graph is compared with an edge list.`,
		Example: `  streamgen validate dynamic_1024.bin
  streamgen validate dynamic_1024.bin --cumulative target.txt --cumulative-untyped`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd, args[0], opts)
		},
	}
	opts.in.register(cmd, "", "input")
	cmd.Flags().StringVar(&opts.cumulative, "cumulative", "", "edge list the final graph must match")
	opts.cumFlags.register(cmd, "cumulative-", "cumulative")
	cmd.Flags().IntVar(&opts.maxProblems, "max-problems", validate.DefaultMaxProblems, "problems to list")
	return cmd
}

func (c *CLI) runValidate(cmd *cobra.Command, path string, opts validateOptions) (err error) {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	s, err := openStream(path, opts.in)
	if err != nil {
		return err
	}
	defer closeWith(s, &err)

	var report *validate.Report
	err = runTool(ctx, "validate", path, s.Updates(), func() (uint64, error) {
		r, err := validate.Stream(ctx, s, validate.Options{MaxProblems: opts.maxProblems, Logger: logger})
		if err != nil {
			return 0, err
		}
		report = r
		if opts.cumulative == "" {
			return r.Read, nil
		}
		cum, err := openStream(opts.cumulative, opts.cumFlags)
		if err != nil {
			return r.Read, err
		}
		defer cum.Close()
		return r.Read, r.CompareCumulative(ctx, cum)
	})
	if err != nil {
		return err
	}

	printKeyValue("vertices", formatCount(uint64(report.Vertices)))
	printKeyValue("updates", formatCount(report.Read)+" of "+formatCount(report.Declared))
	printKeyValue("queries", formatCount(report.Queries))
	printKeyValue("edges", formatCount(report.Edges))

	if report.OK() {
		if report.CumulativeChecked {
			printSuccess("Stream valid, final graph matches %s", opts.cumulative)
		} else {
			printSuccess("Stream valid")
		}
		return nil
	}
	for _, p := range report.Problems {
		printError("%s", p)
	}
	if hidden := report.ProblemCount - uint64(len(report.Problems)); hidden > 0 {
		printDetail("%d more problems not shown", hidden)
	}
	return fmt.Errorf("%s: %d problems", path, report.ProblemCount)
}
