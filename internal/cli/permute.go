package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/streamgen/pkg/permute"
)

// maxVerifyBits bounds the domain scanned by permute; the scan keeps one bit
// per element.
const maxVerifyBits = 32

func (c *CLI) permuteCommand() *cobra.Command {
	var (
		bits uint
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   "permute",
		Short: "Verify and time the permutation engine",
		Long: `Build a permutation of [0, 2^bits), check that every value is produced
exactly once and report how long the scan took.`,
		Example: `  streamgen permute --bits 24 --seed 3`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bits > maxVerifyBits {
				return fmt.Errorf("bits must be <= %d, got %d", maxVerifyBits, bits)
			}
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			set := permute.New(uint64(1)<<bits, seed)
			spin := newSpinnerWithContext(ctx, fmt.Sprintf("Scanning %d values...", set.Size()))
			spin.Start()
			start := time.Now()
			err := runTool(ctx, "permute", "", set.Size(), func() (uint64, error) {
				if !set.Verify() {
					return set.Size(), fmt.Errorf("permutation with %d bits and seed %d is not a bijection", set.Bits(), seed)
				}
				return set.Size(), nil
			})
			elapsed := time.Since(start)
			spin.Stop()
			logger.Debug("verified permutation", "bits", set.Bits(), "size", set.Size(), "duration", elapsed)

			printKeyValue("bits", fmt.Sprint(set.Bits()))
			printKeyValue("size", formatCount(set.Size()))
			printKeyValue("time", elapsed.Round(time.Millisecond).String())
			if elapsed > 0 {
				printKeyValue("rate", fmt.Sprintf("%.1f M/s", float64(set.Size())/elapsed.Seconds()/1e6))
			}
			if err != nil {
				return err
			}
			printSuccess("Permutation is a bijection")
			return nil
		},
	}
	cmd.Flags().UintVarP(&bits, "bits", "b", 20, "log2 of the domain size")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "permutation seed")
	return cmd
}
