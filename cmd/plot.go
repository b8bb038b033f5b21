package cmd

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/gravitylab/lander/experiment/tracker"
	"github.com/gravitylab/lander/report"
)

// Plot renders the reward curve of a finished training run from its
// saved episodic returns. When epsilonData names a saved exploration
// history, the exploration curve is rendered alongside it.
func Plot(data, epsilonData string, window int, outDir string) error {
	returns, err := tracker.LoadData(data)
	if err != nil {
		return fmt.Errorf("plot: %v", err)
	}
	if err := report.RewardCurve(returns, window,
		path.Join(outDir, "returns.png")); err != nil {
		return fmt.Errorf("plot: %v", err)
	}

	if epsilonData == "" {
		return nil
	}
	history, err := tracker.LoadData(epsilonData)
	if err != nil {
		return fmt.Errorf("plot: %v", err)
	}
	if err := report.EpsilonCurve(history,
		path.Join(outDir, "epsilon.png")); err != nil {
		return fmt.Errorf("plot: %v", err)
	}
	return nil
}

// PlotCommand returns the plot subcommand
func PlotCommand() *cobra.Command {
	var data string
	var epsilonData string
	var window int

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render the reward and exploration curves of a training run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Plot(data, epsilonData, window, outDir)
		},
	}
	cmd.Flags().StringVar(&data, "data", "results/returns.bin",
		"File holding the episodic returns of a training run")
	cmd.Flags().StringVar(&epsilonData, "epsilon-data",
		"results/epsilon.bin",
		"File holding the exploration history, \"\" to skip")
	cmd.Flags().IntVar(&window, "window", 20,
		"Window of the moving mean")
	return cmd
}
