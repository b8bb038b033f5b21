package cmd

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/gravitylab/lander/agent/deepq"
	"github.com/gravitylab/lander/environment"
	"github.com/gravitylab/lander/environment/box2d/lunarlander"
	"github.com/gravitylab/lander/experiment"
	"github.com/gravitylab/lander/experiment/checkpointer"
	"github.com/gravitylab/lander/experiment/tracker"
	"github.com/gravitylab/lander/report"
	"github.com/gravitylab/lander/timestep"
)

// newLunarLander constructs the lunar lander environment with the
// landing task
func newLunarLander(seed uint64, cutoff int) (environment.Environment,
	timestep.TimeStep, error) {
	starter := environment.NewUniformStarter([]r1.Interval{
		{Min: lunarlander.InitialX, Max: lunarlander.InitialX},
		{Min: lunarlander.InitialY, Max: lunarlander.InitialY},
		{Min: -lunarlander.InitialRandom, Max: lunarlander.InitialRandom},
	}, seed)
	task := lunarlander.NewLand(starter, cutoff)
	return lunarlander.New(task, 1.0, seed)
}

// Train trains a DeepQ agent on lunar lander, writing episodic
// returns, the exploration history, policy checkpoints, and a reward
// curve to outDir.
func Train(steps uint, saveStride int, double, progress bool, seed uint64,
	cutoff int, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("train: could not create output directory: %v",
			err)
	}

	env, _, err := newLunarLander(seed, cutoff)
	if err != nil {
		return fmt.Errorf("train: could not create environment: %v", err)
	}

	config, err := deepq.NewDefaultConfig()
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}
	config.DoubleDQN = double

	agent, err := config.CreateAgent(env, seed)
	if err != nil {
		return fmt.Errorf("train: could not create agent: %v", err)
	}
	defer agent.Close()

	returns := tracker.NewReturn(path.Join(outDir, "returns.bin"))
	epsilons := tracker.NewEpsilon(path.Join(outDir, "epsilon.bin"),
		agent.Epsilon)
	trackers := []tracker.Tracker{returns, epsilons}

	policyCheckpoints := checkpointer.NewNEpisode(
		saveStride,
		agent.BehaviourPolicy().(checkpointer.Serializable),
		checkpointer.FilenameEnumerator(0, path.Join(outDir, "policy"),
			".bin"),
	)

	exp := experiment.NewOnline(env, agent, steps, trackers,
		[]checkpointer.Checkpointer{policyCheckpoints})
	exp.SetSolveCriterion(experiment.SolveCriterion{
		Window:     20,
		MinReturn:  200.0,
		MeanReturn: 230.0,
	})
	if progress {
		exp.ShowProgress()
	}

	if err := exp.Run(); err != nil {
		return fmt.Errorf("train: %v", err)
	}
	if err := exp.Save(); err != nil {
		return fmt.Errorf("train: %v", err)
	}

	if exp.Solved() {
		fmt.Printf("solved after %v episodes\n", len(exp.Returns()))
	}

	if len(exp.Returns()) > 0 {
		err = report.RewardCurve(exp.Returns(), 20,
			path.Join(outDir, "returns.png"))
		if err != nil {
			return fmt.Errorf("train: %v", err)
		}
	}

	return nil
}

// TrainCommand returns the train subcommand
func TrainCommand() *cobra.Command {
	var steps uint
	var saveStride int
	var double bool
	var progress bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a DeepQ agent on lunar lander",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Train(steps, saveStride, double, progress, seed, cutoff,
				outDir)
		},
	}
	cmd.Flags().UintVar(&steps, "steps", 1000000,
		"Maximum number of environment steps to train for")
	cmd.Flags().IntVar(&saveStride, "save-stride", 100,
		"Number of episodes between policy checkpoints")
	cmd.Flags().BoolVar(&double, "double", false,
		"Use double Q-learning for the update target")
	cmd.Flags().BoolVar(&progress, "progress", true,
		"Show a live progress line while training")
	return cmd
}
