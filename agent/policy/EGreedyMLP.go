// Package policy implements policies using function approximation
// with Gorgonia.
package policy

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"

	"github.com/gravitylab/lander/agent"
	env "github.com/gravitylab/lander/environment"
	"github.com/gravitylab/lander/network"
)

// Greedy returns the index of the maximum action value. Ties are
// broken in favour of the lowest index, so greedy selection is fully
// deterministic for a fixed set of action values.
func Greedy(actionValues []float64) int {
	maxIndex := 0
	for i := 1; i < len(actionValues); i++ {
		if actionValues[i] > actionValues[maxIndex] {
			maxIndex = i
		}
	}
	return maxIndex
}

// MultiHeadEGreedyMLP implements an epsilon greedy policy using a
// feedforward neural network/MLP. Given an environment with N actions,
// the neural network will produce N outputs, each predicting the
// value of a distinct action.
//
// MultiHeadEGreedyMLP simply populates a gorgonia.ExprGraph with
// the neural network function approximator and selects actions
// based on the output of this neural network. The struct does not
// have a VM of its own. An external VM should be used to run the
// computational graph of the policy, and the VM should always be run
// before selecting an action with the policy:
//
//	Set up VM with policy's graph:	vm = NewTapeMachine(policy.Network().Graph())
//	Get state observation vector:	obs
//	Set input to policy's network:	policy.Network().SetInput(obs)
//	Predict the action values:	vm.RunAll()
//	Select an action:		action, _ = policy.SelectAction()
type MultiHeadEGreedyMLP struct {
	network.NeuralNet
	epsilon float64

	rng  *rand.Rand
	seed int64
}

// NewMultiHeadEGreedyMLP creates and returns a new MultiHeadEGreedyMLP
// for the argument environment. The hiddenSizes parameter defines the
// number of nodes in each hidden layer. The biases parameter outlines
// which layers should include bias units. The activations parameter
// determines the activation function for each layer. The batch
// parameter determines the number of inputs in a batch.
//
// Note that this constructor will always add an additional final
// linear layer (with a bias unit and no activation) such that the
// number of network outputs equals the number of actions in the
// environment. Because of this, it is easy to create a linear EGreedy
// policy by setting hiddenSizes to []int{}, biases to []bool{}, and
// activations to []*network.Activation{}.
func NewMultiHeadEGreedyMLP(epsilon float64, e env.Environment, batch int,
	g *G.ExprGraph, hiddenSizes []int, biases []bool, init G.InitWFn,
	activations []*network.Activation,
	seed int64) (agent.EGreedyNNPolicy, error) {
	numActions := int(e.ActionSpec().UpperBound.AtVec(0)) + 1
	features := e.ObservationSpec().Shape.Len()

	net, err := network.NewMultiHeadMLP(features, batch, numActions, g,
		hiddenSizes, biases, init, activations)
	if err != nil {
		return nil, fmt.Errorf("new: could not create policy: %v", err)
	}

	source := rand.NewSource(seed)
	rng := rand.New(source)

	nn := MultiHeadEGreedyMLP{
		epsilon:   epsilon,
		rng:       rng,
		seed:      seed,
		NeuralNet: net,
	}

	return &nn, nil
}

// Network returns the neural network function approximator that the
// policy uses.
func (e *MultiHeadEGreedyMLP) Network() network.NeuralNet {
	return e.NeuralNet
}

// Clone clones a MultiHeadEGreedyMLP
func (e *MultiHeadEGreedyMLP) Clone() (agent.NNPolicy, error) {
	return e.CloneWithBatch(e.BatchSize())
}

// CloneWithBatch clones a MultiHeadEGreedyMLP with a new input batch
// size.
func (e *MultiHeadEGreedyMLP) CloneWithBatch(
	batchSize int) (agent.NNPolicy, error) {
	net, err := e.NeuralNet.CloneWithBatch(batchSize)
	if err != nil {
		return nil, fmt.Errorf("clonewithbatch: could not clone "+
			"policy: %v", err)
	}

	source := rand.NewSource(e.seed)
	rng := rand.New(source)

	nn := MultiHeadEGreedyMLP{
		epsilon:   e.epsilon,
		rng:       rng,
		seed:      e.seed,
		NeuralNet: net,
	}

	return &nn, nil
}

// SetEpsilon sets the value for epsilon in the epsilon greedy policy.
func (e *MultiHeadEGreedyMLP) SetEpsilon(ε float64) {
	e.epsilon = ε
}

// Epsilon gets the value of epsilon for the policy.
func (e *MultiHeadEGreedyMLP) Epsilon() float64 {
	return e.epsilon
}

// SelectAction selects an action according to the action values
// generated from the last run of the computational graph. This
// function returns the action selected as well as the approximated
// value of that action.
//
// With probability epsilon a uniformly random action is returned.
// Otherwise, the greedy action is returned, with ties broken in
// favour of the lowest action index.
func (e *MultiHeadEGreedyMLP) SelectAction() (*mat.VecDense, float64) {
	if e.Output() == nil {
		panic("selectaction: vm must be run before selecting an action")
	}

	actionValues := e.Output().Data().([]float64)

	if probability := e.rng.Float64(); probability < e.epsilon {
		action := e.rng.Intn(e.numActions())
		return mat.NewVecDense(1, []float64{float64(action)}),
			actionValues[action]
	}

	action := Greedy(actionValues)
	return mat.NewVecDense(1, []float64{float64(action)}),
		actionValues[action]
}

// numActions returns the number of actions that the policy chooses
// between.
func (e *MultiHeadEGreedyMLP) numActions() int {
	return e.Outputs()
}

// GobEncode implements the gob.GobEncoder interface
func (e *MultiHeadEGreedyMLP) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(&e.NeuralNet); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode network: %v",
			err)
	}
	if err := enc.Encode(e.epsilon); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode epsilon: %v",
			err)
	}
	if err := enc.Encode(e.seed); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode seed: %v", err)
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (e *MultiHeadEGreedyMLP) GobDecode(in []byte) error {
	buf := bytes.NewReader(in)
	dec := gob.NewDecoder(buf)

	if err := dec.Decode(&e.NeuralNet); err != nil {
		return fmt.Errorf("gobdecode: could not decode network: %v", err)
	}
	if err := dec.Decode(&e.epsilon); err != nil {
		return fmt.Errorf("gobdecode: could not decode epsilon: %v", err)
	}
	if err := dec.Decode(&e.seed); err != nil {
		return fmt.Errorf("gobdecode: could not decode seed: %v", err)
	}
	e.rng = rand.New(rand.NewSource(e.seed))

	return nil
}
