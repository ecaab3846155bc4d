package cli

import (
	"github.com/spf13/cobra"
)

func (c *CLI) metaCommand() *cobra.Command {
	var in streamFlags
	cmd := &cobra.Command{
		Use:   "meta <stream>",
		Short: "Print a stream's YAML metadata",
		Long: `Open a stream and print the YAML metadata that reopens it. The output can be
passed to any command that takes a stream argument.`,
		Example: `  streamgen meta dynamic_1024.bin > dynamic_1024.yaml
  streamgen validate dynamic_1024.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := openStream(args[0], in)
			if err != nil {
				return err
			}
			defer closeWith(s, &err)
			return s.Metadata().Encode(cmd.OutOrStdout())
		},
	}
	in.register(cmd, "", "input")
	return cmd
}
