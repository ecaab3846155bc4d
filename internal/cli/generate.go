package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/streamgen/pkg/pipeline"
	"github.com/matzehuels/streamgen/pkg/stream"
)

// generateFlags holds the flags shared by the generator commands.
type generateFlags struct {
	config string

	vertices          uint32
	density           float64
	seed              uint64
	portionDelete     float64
	portionAdditional float64
	rounds            int

	format     string
	output     string
	untyped    bool
	cumulative string
	metadata   string
	batchSize  int
}

// generatorFlag binds a flag name to the option field it sets.
type generatorFlag struct {
	name  string
	apply func(*pipeline.Options)
}

func (c *CLI) erdosCommand() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "erdos",
		Short: "Generate a static Erdos-Renyi graph as a stream of insertions",
		Long: `Generate a static Erdos-Renyi graph. Every edge appears exactly once as an
INSERT, in a pseudorandom order derived from the seed.`,
		Example: `  streamgen erdos -n 1024 -d 0.05 --seed 7
  streamgen erdos -n 64 --format ascii -o graph.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, pipeline.GeneratorErdos, &f, f.common(f.density0()))
		},
	}
	f.registerCommon(cmd)
	cmd.Flags().Float64VarP(&f.density, "density", "d", 0.5, "fraction of all vertex pairs in the graph")
	return cmd
}

func (c *CLI) dynamicCommand() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "dynamic",
		Short: "Generate an Erdos-Renyi graph hidden in insert/delete churn",
		Long: `Generate a dynamic stream whose final graph is an Erdos-Renyi graph. Each
round deletes and re-inserts a portion of the target edges and toggles a
portion of the remaining pairs twice, so extra edges cancel out.`,
		Example: `  streamgen dynamic -n 1024 -d 0.002 --rounds 10 --portion-delete 0.5 --portion-adtl 0.001
  streamgen dynamic -n 256 -d 0.1 --cumulative target.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			extra := append(f.density0(),
				generatorFlag{"portion-delete", func(o *pipeline.Options) { o.PortionDelete = f.portionDelete }},
				generatorFlag{"portion-adtl", func(o *pipeline.Options) { o.PortionAdditional = f.portionAdditional }},
				generatorFlag{"rounds", func(o *pipeline.Options) { o.Rounds = f.rounds }},
				generatorFlag{"cumulative", func(o *pipeline.Options) { o.Cumulative = f.cumulative }},
			)
			return c.runGenerate(cmd, pipeline.GeneratorDynamic, &f, f.common(extra))
		},
	}
	f.registerCommon(cmd)
	cmd.Flags().Float64VarP(&f.density, "density", "d", 0.5, "fraction of all vertex pairs in the final graph")
	cmd.Flags().Float64Var(&f.portionDelete, "portion-delete", 0, "portion of target edges deleted and re-inserted each round")
	cmd.Flags().Float64Var(&f.portionAdditional, "portion-adtl", 0, "portion of non-target pairs inserted and deleted each round")
	cmd.Flags().IntVar(&f.rounds, "rounds", 0, "number of churn rounds")
	cmd.Flags().StringVar(&f.cumulative, "cumulative", "", "also write the final edge list to this path")
	return cmd
}

func (c *CLI) cutCommand() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "cut",
		Short: "Generate two paths repeatedly joined and split across one cut",
		Long: `Generate the cut stream: two paths over the lower and upper half of the
vertices, then rounds that connect the halves with a matching, remove it,
and toggle single cross edges.`,
		Example: `  streamgen cut -n 8192
  streamgen cut -n 1024 --rounds 4 --format sqlite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			extra := []generatorFlag{
				{"rounds", func(o *pipeline.Options) { o.Rounds = f.rounds }},
			}
			return c.runGenerate(cmd, pipeline.GeneratorCut, &f, f.common(extra))
		},
	}
	f.registerCommon(cmd)
	cmd.Flags().IntVar(&f.rounds, "rounds", 0, "number of rounds (default: vertices/8)")
	return cmd
}

func (f *generateFlags) registerCommon(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.config, "config", "c", "", "TOML file with generation options; flags override it")
	flags.Uint32VarP(&f.vertices, "vertices", "n", 0, "number of vertices (power of 2)")
	flags.Uint64Var(&f.seed, "seed", 0, "random seed")
	flags.StringVarP(&f.format, "format", "f", string(pipeline.DefaultFormat), "stream format: binary, ascii, sqlite, badger")
	flags.StringVarP(&f.output, "output", "o", "", "output file (default: <generator>_<vertices>.<ext>)")
	flags.BoolVar(&f.untyped, "untyped", false, "omit the update type column (ascii only)")
	flags.StringVar(&f.metadata, "metadata", "", "write YAML stream metadata to this path")
	flags.IntVar(&f.batchSize, "batch-size", stream.BatchSize, "updates per write")
}

func (f *generateFlags) density0() []generatorFlag {
	return []generatorFlag{
		{"density", func(o *pipeline.Options) { o.Density = f.density }},
	}
}

func (f *generateFlags) common(extra []generatorFlag) []generatorFlag {
	return append([]generatorFlag{
		{"vertices", func(o *pipeline.Options) { o.Vertices = f.vertices }},
		{"seed", func(o *pipeline.Options) { o.Seed = f.seed }},
		{"format", func(o *pipeline.Options) { o.Format = stream.Kind(f.format) }},
		{"output", func(o *pipeline.Options) { o.Output = f.output }},
		{"untyped", func(o *pipeline.Options) { o.Untyped = f.untyped }},
		{"metadata", func(o *pipeline.Options) { o.Metadata = f.metadata }},
		{"batch-size", func(o *pipeline.Options) { o.BatchSize = f.batchSize }},
	}, extra...)
}

// buildOptions loads --config, if given, and overlays the flags. Without a
// config file every flag applies, including its default.
func buildOptions(flags *pflag.FlagSet, name string, f *generateFlags, bindings []generatorFlag) (pipeline.Options, error) {
	var opts pipeline.Options
	if f.config != "" {
		loaded, err := pipeline.LoadOptions(f.config)
		if err != nil {
			return opts, err
		}
		opts = loaded
		if opts.Generator != "" && opts.Generator != name {
			return opts, fmt.Errorf("config %s is for generator %q, not %q", f.config, opts.Generator, name)
		}
	}
	for _, b := range bindings {
		if f.config == "" || flags.Changed(b.name) {
			b.apply(&opts)
		}
	}
	opts.Generator = name
	return opts, nil
}

func (c *CLI) runGenerate(cmd *cobra.Command, name string, f *generateFlags, bindings []generatorFlag) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	opts, err := buildOptions(cmd.Flags(), name, f, bindings)
	if err != nil {
		return err
	}
	opts.Logger = logger

	prog := newProgress(logger)
	result, err := c.newRunner().Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Generated %s stream", result.Stats.Generator))

	printSuccess("Wrote %s", result.Metadata.Path)
	printStats(result.Stats.Vertices, result.Stats.Updates)
	if result.Cumulative != nil {
		printFile(result.Cumulative.Path)
	}
	if opts.Metadata != "" {
		printFile(opts.Metadata)
	}
	printNextStep("Check it", "streamgen validate "+result.Metadata.Path)
	return nil
}
