// Package deepq implements the deep Q-learning algorithm with
// experience replay and target networks.
package deepq

import (
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/gravitylab/lander/agent"
	"github.com/gravitylab/lander/agent/policy"
	env "github.com/gravitylab/lander/environment"
	"github.com/gravitylab/lander/expreplay"
	"github.com/gravitylab/lander/network"
	ts "github.com/gravitylab/lander/timestep"
)

// DeepQ implements the deep Q-learning algorithm with an MSE TD loss.
//
// Action values are learned by a training network whose weights are
// adapted on minibatches sampled from an experience replay buffer.
// The update target bootstraps from a separate target network that
// tracks the training network, either by periodic hard copies or by
// Polyak averaging. With DoubleDQN enabled, the bootstrap action is
// chosen by the training network and evaluated by the target network.
type DeepQ struct {
	// Behaviour policy for selecting actions during training and the
	// greedy policy used in evaluation mode. Both share weights with
	// trainNet, resynchronized after every optimization step.
	behaviourPolicy   agent.EGreedyNNPolicy
	behaviourPolicyVM G.VM
	greedyPolicy      agent.EGreedyNNPolicy
	greedyPolicyVM    G.VM

	// Network whose weights are learned, taking batches of inputs
	trainNet   network.NeuralNet
	trainNetVM G.VM
	solver     G.Solver

	// Network that provides the bootstrap values for a batch of
	// inputs
	targetNet   network.NeuralNet
	targetNetVM G.VM

	// Second view of the training network's weights over the next
	// state batch, used to select the bootstrap action for double
	// Q-learning. Nil unless doubleDQN is set.
	onlineNet   network.NeuralNet
	onlineNetVM G.VM
	doubleDQN   bool

	// Target network update schedule
	tau                  float64
	targetUpdateInterval int
	gradientSteps        int

	// Exploration annealing, applied once per optimization step
	decay DecaySchedule

	// selectedActions is the input node of the trainNet graph that is
	// given the one-hot actions taken at the batch of previous states,
	// selecting which action value each update target applies to
	selectedActions *G.Node

	// updateTarget is the input node of the trainNet graph that is
	// given the precomputed update targets r + γ * max[Q(s', a')]
	updateTarget *G.Node

	// costVal holds the TD loss of the last optimization step
	costVal G.Value

	replay expreplay.ExperienceReplayer
	gamma  float64

	// Number of environment steps between optimization steps
	trainStride int
	envSteps    int

	// Last timestep observed, needed to construct transitions for the
	// replay buffer
	lastStep ts.TimeStep

	numActions int
	batchSize  int
	eval       bool
}

// New creates and returns a new DeepQ agent
func New(e env.Environment, config Config, seed int64) (*DeepQ, error) {
	if e.ActionSpec().Cardinality != env.Discrete {
		return nil, fmt.Errorf("deepq: cannot use non-discrete actions")
	}
	if e.ActionSpec().LowerBound.Len() > 1 {
		return nil, fmt.Errorf("deepq: actions must be 1-dimensional")
	}
	if e.ActionSpec().LowerBound.AtVec(0) != 0.0 {
		return nil, fmt.Errorf("deepq: actions must be enumerated " +
			"starting from 0")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	batchSize := config.BatchSize
	numActions := int(e.ActionSpec().UpperBound.AtVec(0)) + 1
	numFeatures := e.ObservationSpec().Shape.Len()

	// Behaviour policy for selecting single actions during training
	g := G.NewGraph()
	behaviourPolicy, err := policy.NewMultiHeadEGreedyMLP(
		config.Epsilon.Initial,
		e,
		1,
		g,
		config.PolicyLayers,
		config.Biases,
		config.InitWFn.InitWFn(),
		config.Activations,
		seed,
	)
	if err != nil {
		return nil, err
	}
	behaviourPolicyVM := G.NewTapeMachine(g)

	// Greedy policy for evaluation mode
	greedyPolicyClone, err := behaviourPolicy.Clone()
	if err != nil {
		return nil, fmt.Errorf("deepq: could not create greedy policy: %v",
			err)
	}
	greedyPolicy := greedyPolicyClone.(agent.EGreedyNNPolicy)
	greedyPolicy.SetEpsilon(0.0)
	greedyPolicyVM := G.NewTapeMachine(greedyPolicy.Network().Graph())

	// Target network which provides the bootstrap values
	targetNet, err := behaviourPolicy.Network().CloneWithBatch(batchSize)
	if err != nil {
		return nil, fmt.Errorf("deepq: could not create target network: %v",
			err)
	}
	targetNetVM := G.NewTapeMachine(targetNet.Graph())

	// Network which learns the weights
	trainNet, err := behaviourPolicy.Network().CloneWithBatch(batchSize)
	if err != nil {
		return nil, fmt.Errorf("deepq: could not create learning "+
			"network: %v", err)
	}
	gTrain := trainNet.Graph()

	// For double Q-learning the bootstrap action is selected by the
	// learned weights over the next state batch
	var onlineNet network.NeuralNet
	var onlineNetVM G.VM
	if config.DoubleDQN {
		onlineNet, err = behaviourPolicy.Network().CloneWithBatch(batchSize)
		if err != nil {
			return nil, fmt.Errorf("deepq: could not create online "+
				"network: %v", err)
		}
		onlineNetVM = G.NewTapeMachine(onlineNet.Graph())
	}

	// The update target r + γ * max[Q(s', a')] is computed outside the
	// graph from the target network's output, then fed in here
	updateTarget := G.NewVector(gTrain, tensor.Float64,
		G.WithShape(batchSize), G.WithName("updateTarget"))

	// One-hot actions taken at the previous states. The network
	// outputs N action values, so the loss must select the value of
	// the action that was actually taken.
	selectedActions := G.NewMatrix(gTrain, tensor.Float64,
		G.WithShape(batchSize, numActions), G.WithName("actionSelected"))

	selectedActionValues := G.Must(G.HadamardProd(trainNet.Prediction(),
		selectedActions))
	selectedActionValues = G.Must(G.Sum(selectedActionValues, 1))

	// Mean squared TD error
	losses := G.Must(G.Sub(updateTarget, selectedActionValues))
	losses = G.Must(G.Square(losses))
	cost := G.Must(G.Mean(losses))

	var costVal G.Value
	G.Read(cost, &costVal)

	if _, err := G.Grad(cost, trainNet.Learnables()...); err != nil {
		return nil, fmt.Errorf("deepq: could not compute gradient: %v", err)
	}

	trainNetVM := G.NewTapeMachine(gTrain,
		G.BindDualValues(trainNet.Learnables()...))

	replay, err := expreplay.New(config.MinimumCapacity,
		config.MaximumCapacity, numFeatures, numActions, batchSize,
		uint64(seed))
	if err != nil {
		return nil, fmt.Errorf("deepq: could not create experience replay "+
			"buffer: %v", err)
	}

	d := &DeepQ{
		behaviourPolicy:   behaviourPolicy,
		behaviourPolicyVM: behaviourPolicyVM,
		greedyPolicy:      greedyPolicy,
		greedyPolicyVM:    greedyPolicyVM,

		trainNet:   trainNet,
		trainNetVM: trainNetVM,
		solver:     config.Solver,

		targetNet:   targetNet,
		targetNetVM: targetNetVM,

		onlineNet:   onlineNet,
		onlineNetVM: onlineNetVM,
		doubleDQN:   config.DoubleDQN,

		tau:                  config.Tau,
		targetUpdateInterval: config.TargetUpdateInterval,

		decay: config.Epsilon,

		selectedActions: selectedActions,
		updateTarget:    updateTarget,
		costVal:         costVal,

		replay: replay,
		gamma:  config.Gamma,

		trainStride: config.TrainStride,

		numActions: numActions,
		batchSize:  batchSize,
	}

	// All networks start from the same weights
	if err := d.targetNet.Set(d.trainNet); err != nil {
		return nil, fmt.Errorf("deepq: could not initialize target "+
			"network: %v", err)
	}
	if err := d.syncPolicies(); err != nil {
		return nil, fmt.Errorf("deepq: could not initialize policies: %v",
			err)
	}

	return d, nil
}

// ObserveFirst observes and records the first episodic timestep
func (d *DeepQ) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		fmt.Fprintf(os.Stderr, "Warning: ObserveFirst() should only be "+
			"called on the first timestep (current timestep = %d)\n",
			t.Number)
	}
	d.lastStep = t
	return nil
}

// Observe observes and records any timestep other than the first,
// adding the resulting transition to the replay buffer
func (d *DeepQ) Observe(action mat.Vector, nextStep ts.TimeStep) error {
	if action.Len() != 1 {
		return fmt.Errorf("observe: value-based methods do not support "+
			"multi-dimensional actions (action dim = %d)", action.Len())
	}

	transition := ts.NewTransition(d.lastStep, int(action.AtVec(0)),
		nextStep)
	if err := d.replay.Add(transition); err != nil {
		return fmt.Errorf("observe: could not add to replay buffer: %v",
			err)
	}

	d.lastStep = nextStep
	d.envSteps++
	return nil
}

// Step updates the weights of the agent's policies. Optimization only
// occurs once every TrainStride environment steps and once the replay
// buffer can fill a batch; otherwise Step is a no-op.
func (d *DeepQ) Step() error {
	if d.eval || d.envSteps%d.trainStride != 0 {
		return nil
	}

	S, A, R, NextS, Done, err := d.replay.Sample()
	if expreplay.IsUnderfull(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("step: could not sample from replay buffer: %v",
			err)
	}

	nextQ, err := d.bootstrapValues(NextS)
	if err != nil {
		return fmt.Errorf("step: %v", err)
	}

	targets := updateTargets(R, Done, nextQ, d.gamma)
	targetTensor := tensor.New(tensor.WithBacking(targets),
		tensor.WithShape(d.batchSize))
	if err := G.Let(d.updateTarget, targetTensor); err != nil {
		return fmt.Errorf("step: could not set update target: %v", err)
	}

	prevActions := tensor.New(tensor.WithBacking(A),
		tensor.WithShape(d.batchSize, d.numActions))
	if err := G.Let(d.selectedActions, prevActions); err != nil {
		return fmt.Errorf("step: could not set selected actions: %v", err)
	}

	if err := d.trainNet.SetInput(S); err != nil {
		return fmt.Errorf("step: could not set trainNet input: %v", err)
	}

	// Run the learning step
	if err := d.trainNetVM.RunAll(); err != nil {
		return fmt.Errorf("step: could not run trainNet vm: %v", err)
	}

	cost := d.costVal.Data().(float64)
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return fmt.Errorf("step: training diverged: loss is %v", cost)
	}

	if err := d.solver.Step(d.trainNet.Model()); err != nil {
		return fmt.Errorf("step: could not step solver: %v", err)
	}
	d.trainNetVM.Reset()
	d.gradientSteps++

	// Track the training network with the target network
	if d.gradientSteps%d.targetUpdateInterval == 0 {
		if d.tau == 1.0 {
			err = d.targetNet.Set(d.trainNet)
		} else {
			err = d.targetNet.Polyak(d.trainNet, d.tau)
		}
		if err != nil {
			return fmt.Errorf("step: could not update target network: %v",
				err)
		}
	}

	if err := d.syncPolicies(); err != nil {
		return fmt.Errorf("step: %v", err)
	}

	d.behaviourPolicy.SetEpsilon(
		d.decay.Next(d.behaviourPolicy.Epsilon()))

	return nil
}

// bootstrapValues computes max[Q(s', a')] for a batch of next states
// using the target network. For double Q-learning, the maximizing
// action is selected by the training network's weights instead.
func (d *DeepQ) bootstrapValues(nextStates []float64) ([]float64, error) {
	if err := d.targetNet.SetInput(nextStates); err != nil {
		return nil, fmt.Errorf("could not set target net input: %v", err)
	}
	if err := d.targetNetVM.RunAll(); err != nil {
		return nil, fmt.Errorf("could not run target net vm: %v", err)
	}
	targetValues := append([]float64{},
		d.targetNet.Output().Data().([]float64)...)
	d.targetNetVM.Reset()

	if !d.doubleDQN {
		return maxEach(targetValues, d.batchSize, d.numActions), nil
	}

	if err := d.onlineNet.SetInput(nextStates); err != nil {
		return nil, fmt.Errorf("could not set online net input: %v", err)
	}
	if err := d.onlineNetVM.RunAll(); err != nil {
		return nil, fmt.Errorf("could not run online net vm: %v", err)
	}
	onlineValues := d.onlineNet.Output().Data().([]float64)
	selected := argmaxEach(onlineValues, d.batchSize, d.numActions)
	d.onlineNetVM.Reset()

	return valuesAt(targetValues, d.numActions, selected), nil
}

// syncPolicies copies the training network's weights into the action
// selection policies
func (d *DeepQ) syncPolicies() error {
	if err := d.behaviourPolicy.Network().Set(d.trainNet); err != nil {
		return fmt.Errorf("could not sync behaviour policy: %v", err)
	}
	if err := d.greedyPolicy.Network().Set(d.trainNet); err != nil {
		return fmt.Errorf("could not sync greedy policy: %v", err)
	}
	if d.doubleDQN {
		if err := d.onlineNet.Set(d.trainNet); err != nil {
			return fmt.Errorf("could not sync online network: %v", err)
		}
	}
	return nil
}

// SelectAction runs the necessary VMs and then returns an action
// selected by the behaviour policy, or by the greedy policy when in
// evaluation mode.
func (d *DeepQ) SelectAction(t ts.TimeStep) *mat.VecDense {
	var p agent.NNPolicy
	var vm G.VM
	if d.eval {
		p = d.greedyPolicy
		vm = d.greedyPolicyVM
	} else {
		p = d.behaviourPolicy
		vm = d.behaviourPolicyVM
	}

	obs := make([]float64, t.Observation.Len())
	for i := range obs {
		obs[i] = t.Observation.AtVec(i)
	}
	if err := p.Network().SetInput(obs); err != nil {
		panic(fmt.Sprintf("selectaction: %v", err))
	}

	if err := vm.RunAll(); err != nil {
		panic(fmt.Sprintf("selectaction: could not run policy vm: %v", err))
	}
	action, _ := p.SelectAction()
	vm.Reset()

	return action
}

// Epsilon returns the current exploration rate of the behaviour
// policy
func (d *DeepQ) Epsilon() float64 {
	return d.behaviourPolicy.Epsilon()
}

// BehaviourPolicy returns the policy that the agent selects actions
// with during training
func (d *DeepQ) BehaviourPolicy() agent.EGreedyNNPolicy {
	return d.behaviourPolicy
}

// GradientSteps returns the number of optimization steps taken so far
func (d *DeepQ) GradientSteps() int {
	return d.gradientSteps
}

// Eval sets the agent into evaluation mode
func (d *DeepQ) Eval() {
	d.eval = true
}

// Train sets the agent into training mode
func (d *DeepQ) Train() {
	d.eval = false
}

// IsEval returns whether the agent is in evaluation mode
func (d *DeepQ) IsEval() bool {
	return d.eval
}

// EndEpisode performs cleanup at the end of an episode
func (d *DeepQ) EndEpisode() {}

// Close closes the VMs that run the agent's computational graphs
func (d *DeepQ) Close() error {
	vms := []G.VM{d.behaviourPolicyVM, d.greedyPolicyVM, d.trainNetVM,
		d.targetNetVM}
	if d.onlineNetVM != nil {
		vms = append(vms, d.onlineNetVM)
	}

	for _, vm := range vms {
		if err := vm.Close(); err != nil {
			return fmt.Errorf("close: %v", err)
		}
	}
	return nil
}
