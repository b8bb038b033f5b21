package cmd

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"
	G "gorgonia.org/gorgonia"

	"github.com/gravitylab/lander/agent/policy"
	"github.com/gravitylab/lander/environment"
	"github.com/gravitylab/lander/experiment/checkpointer"
)

// Render replays one greedy episode of a checkpointed policy,
// rendering each frame of the episode to a PNG file in outDir.
func Render(policyFile string, seed uint64, cutoff int,
	outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("render: could not create output directory: %v",
			err)
	}

	greedy := &policy.MultiHeadEGreedyMLP{}
	if err := checkpointer.Load(policyFile, greedy); err != nil {
		return fmt.Errorf("render: %v", err)
	}
	greedy.SetEpsilon(0.0)

	env, step, err := newLunarLander(seed, cutoff)
	if err != nil {
		return fmt.Errorf("render: could not create environment: %v", err)
	}
	renderer, ok := env.(environment.Renderer)
	if !ok {
		return fmt.Errorf("render: environment cannot render frames")
	}

	vm := G.NewTapeMachine(greedy.Network().Graph())
	defer vm.Close()

	for frame := 0; !step.Last(); frame++ {
		filename := path.Join(outDir, fmt.Sprintf("frame%04d.png", frame))
		if err := renderer.Render(filename); err != nil {
			return fmt.Errorf("render: could not render frame %v: %v",
				frame, err)
		}

		obs := make([]float64, step.Observation.Len())
		for i := range obs {
			obs[i] = step.Observation.AtVec(i)
		}
		if err := greedy.Network().SetInput(obs); err != nil {
			return fmt.Errorf("render: %v", err)
		}
		if err := vm.RunAll(); err != nil {
			return fmt.Errorf("render: could not run policy vm: %v", err)
		}
		action, _ := greedy.SelectAction()
		vm.Reset()

		step, _, err = env.Step(action)
		if err != nil {
			return fmt.Errorf("render: could not step environment: %v", err)
		}
	}

	return nil
}

// RenderCommand returns the render subcommand
func RenderCommand() *cobra.Command {
	var policyFile string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Replay one greedy episode of a checkpointed policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Render(policyFile, seed, cutoff, outDir)
		},
	}
	cmd.Flags().StringVar(&policyFile, "policy", "results/policy1.bin",
		"File holding a checkpointed policy")
	return cmd
}
