// Package cmd implements the lander command line interface
package cmd

import "github.com/spf13/cobra"

var (
	seed   uint64
	cutoff int
	outDir string
)

// GetRootCommand returns the root command of the lander CLI
func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "lander",
		Short: "Train and inspect deep Q-learning agents on lunar lander",
	}
	rootCommand.PersistentFlags().Uint64Var(&seed, "seed", 192382,
		"Seed for the environment and agent")
	rootCommand.PersistentFlags().IntVar(&cutoff, "cutoff", 1000,
		"Maximum number of steps per episode")
	rootCommand.PersistentFlags().StringVarP(&outDir, "out", "o", "results",
		"Directory to write results to")

	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(PlotCommand())
	rootCommand.AddCommand(RenderCommand())
	return rootCommand
}
