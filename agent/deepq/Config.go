package deepq

import (
	"fmt"

	env "github.com/gravitylab/lander/environment"
	"github.com/gravitylab/lander/initwfn"
	"github.com/gravitylab/lander/network"
	"github.com/gravitylab/lander/solver"
)

// Config implements a configuration for a DeepQ agent
type Config struct {
	PolicyLayers []int                 // Layer sizes in neural net
	Biases       []bool                // Whether each layer should have a bias
	Activations  []*network.Activation // Activation of each layer
	Solver       *solver.Solver        // Solver for learning weights

	// Initialization algorithm for weights
	InitWFn *initwfn.InitWFn

	// Behaviour policy exploration schedule
	Epsilon DecaySchedule

	// Discount factor applied to future action values in the update
	// target
	Gamma float64

	// Experience replay parameters
	MinimumCapacity int
	MaximumCapacity int
	BatchSize       int

	// TrainStride is the number of environment steps between
	// optimization steps
	TrainStride int

	// Target net updates
	Tau                  float64 // Polyak averaging constant
	TargetUpdateInterval int     // Optimization steps between target updates

	// DoubleDQN selects the bootstrap action with the learned network
	// and evaluates it with the target network, instead of maximizing
	// over the target network's action values directly
	DoubleDQN bool
}

// NewDefaultConfig returns the configuration that DeepQ agents are
// given by default. Fields can be overridden before the agent is
// created.
func NewDefaultConfig() (Config, error) {
	rmsprop, err := solver.NewDefaultRMSProp(0.001, 32)
	if err != nil {
		return Config{}, fmt.Errorf("defaultconfig: %v", err)
	}

	glorot, err := initwfn.NewGlorotU(1.0)
	if err != nil {
		return Config{}, fmt.Errorf("defaultconfig: %v", err)
	}

	return Config{
		PolicyLayers: []int{128, 32},
		Biases:       []bool{true, true},
		Activations: []*network.Activation{
			network.ReLU(),
			network.ReLU(),
		},
		Solver:  rmsprop,
		InitWFn: glorot,

		Epsilon: NewLinearDecay(1.0, 0.1, 0.00005),
		Gamma:   0.99,

		MinimumCapacity: 32,
		MaximumCapacity: 20000,
		BatchSize:       32,

		TrainStride: 5,

		Tau:                  0.01,
		TargetUpdateInterval: 1,

		DoubleDQN: false,
	}, nil
}

// Validate checks a Config to ensure it is a valid configuration of a
// DeepQ agent.
func (c Config) Validate() error {
	if len(c.PolicyLayers) != len(c.Biases) {
		return fmt.Errorf("config: invalid number of biases\n\twant(%v)"+
			"\n\thave(%v)", len(c.PolicyLayers), len(c.Biases))
	}
	if len(c.PolicyLayers) != len(c.Activations) {
		return fmt.Errorf("config: invalid number of activations"+
			"\n\twant(%v)\n\thave(%v)", len(c.PolicyLayers),
			len(c.Activations))
	}

	if c.Solver == nil {
		return fmt.Errorf("config: no solver specified")
	}
	if c.InitWFn == nil {
		return fmt.Errorf("config: no weight initializer specified")
	}

	if err := c.Epsilon.Validate(); err != nil {
		return fmt.Errorf("config: %v", err)
	}

	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("config: discount must be in [0, 1], got %v",
			c.Gamma)
	}

	if c.BatchSize < 1 {
		return fmt.Errorf("config: batch size must be positive, got %v",
			c.BatchSize)
	}
	if c.MaximumCapacity < c.BatchSize {
		return fmt.Errorf("config: replay buffer capacity (%v) cannot be "+
			"smaller than the batch size (%v)", c.MaximumCapacity,
			c.BatchSize)
	}

	if c.TrainStride < 1 {
		return fmt.Errorf("config: optimization must occur at positive "+
			"environment step intervals \n\twant(>0) \n\thave(%v)",
			c.TrainStride)
	}
	if c.TargetUpdateInterval < 1 {
		return fmt.Errorf("config: target networks must be updated at "+
			"positive optimization step intervals \n\twant(>0) "+
			"\n\thave(%v)", c.TargetUpdateInterval)
	}
	if c.Tau <= 0 || c.Tau > 1 {
		return fmt.Errorf("config: tau must be in (0, 1], got %v", c.Tau)
	}

	return nil
}

// CreateAgent creates a new DeepQ agent based on the configuration
func (c Config) CreateAgent(e env.Environment, seed uint64) (*DeepQ, error) {
	return New(e, c, int64(seed))
}
