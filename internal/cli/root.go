package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/streamgen/pkg/buildinfo"
	"github.com/matzehuels/streamgen/pkg/observability/metrics"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		metricsFile string
		rec         *metrics.Recorder
	)
	root := &cobra.Command{
		Use:   appName,
		Short: "streamgen synthesizes graph update streams",
		Long: `streamgen generates edge insertion/deletion streams for benchmarking graph
streaming algorithms, and provides tools to validate, convert and inspect them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if metricsFile != "" {
				rec = metrics.NewRecorder()
			}
			c.installHooks(rec)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if rec == nil {
				return nil
			}
			if err := rec.WriteTextfile(metricsFile); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("wrote metrics", "path", metricsFile)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&metricsFile, "metrics-file", "",
		"write Prometheus metrics in textfile format to this path")

	root.SetVersionTemplate(buildinfo.Template())

	// Generators
	root.AddCommand(c.erdosCommand())
	root.AddCommand(c.dynamicCommand())
	root.AddCommand(c.cutCommand())

	// Stream tools
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.queryifyCommand())
	root.AddCommand(c.streamifyCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.metaCommand())
	root.AddCommand(c.permuteCommand())

	root.AddCommand(c.completionCommand())

	return root
}
