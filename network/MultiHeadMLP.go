package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func init() {
	// NeuralNet values are serialized through interface fields
	gob.Register(&multiHeadMLP{})
}

// multiHeadMLP implements a multi-layered perceptron with one output
// head per value that should be predicted. For value-based control,
// each head predicts the value of a distinct action.
type multiHeadMLP struct {
	g      *G.ExprGraph
	layers []*fcLayer
	input  *G.Node

	numOutputs int
	numInputs  int
	batchSize  int

	// Architecture metadata, needed to reconstruct the network when
	// deserializing
	hiddenSizes []int
	biases      []bool
	activations []*Activation

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node
	predVal    G.Value
}

// NewMultiHeadMLP creates a new multi-layered perceptron with outputs
// output heads, populating the graph g. The MLP has len(hiddenSizes)
// hidden layers; a final linear layer with a bias unit and no
// activation is always added so that the network predicts outputs
// values. For index i, hiddenSizes[i] is the number of units in hidden
// layer i, biases[i] is whether that layer has a bias unit, and
// activations[i] is its activation function. Passing empty slices
// yields a linear function approximator.
func NewMultiHeadMLP(features, batch, outputs int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, init G.InitWFn,
	activations []*Activation) (NeuralNet, error) {
	if len(hiddenSizes) != len(activations) {
		return nil, fmt.Errorf("newmultiheadmlp: invalid number of "+
			"activations\n\twant(%d)\n\thave(%d)", len(hiddenSizes),
			len(activations))
	}
	if len(hiddenSizes) != len(biases) {
		return nil, fmt.Errorf("newmultiheadmlp: invalid number of biases"+
			"\n\twant(%d)\n\thave(%d)", len(hiddenSizes), len(biases))
	}
	if features <= 0 || batch <= 0 || outputs <= 0 {
		return nil, fmt.Errorf("newmultiheadmlp: features, batch, and "+
			"outputs must be positive, got (%v, %v, %v)", features, batch,
			outputs)
	}

	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	// Final linear layer so that the network has one head per output
	layerSizes := append(append([]int{}, hiddenSizes...), outputs)
	layerBiases := append(append([]bool{}, biases...), true)
	layerActivations := append(append([]*Activation{}, activations...),
		Identity())

	layers := addFCLayers(g, layerSizes, layerBiases, layerActivations, init,
		features, "")

	net := &multiHeadMLP{
		g:           g,
		layers:      layers,
		input:       input,
		numOutputs:  outputs,
		numInputs:   features,
		batchSize:   batch,
		hiddenSizes: hiddenSizes,
		biases:      biases,
		activations: activations,
	}
	if _, err := net.fwd(input); err != nil {
		return nil, fmt.Errorf("newmultiheadmlp: could not compute forward "+
			"pass: %v", err)
	}

	return net, nil
}

// fwd adds the forward pass of the network on the input node to the
// computational graph
func (e *multiHeadMLP) fwd(input *G.Node) (*G.Node, error) {
	pred := input
	var err error
	for i, l := range e.layers {
		if pred, err = l.fwd(pred); err != nil {
			return nil, fmt.Errorf("fwd: could not compute forward pass of "+
				"layer %v: %v", i, err)
		}
	}

	e.prediction = pred
	G.Read(e.prediction, &e.predVal)

	return pred, nil
}

// Graph returns the computational graph of the network
func (e *multiHeadMLP) Graph() *G.ExprGraph {
	return e.g
}

// Clone clones the network to a new computational graph
func (e *multiHeadMLP) Clone() (NeuralNet, error) {
	return e.CloneWithBatch(e.batchSize)
}

// CloneWithBatch clones the network to a new computational graph with
// a new input batch size
func (e *multiHeadMLP) CloneWithBatch(batchSize int) (NeuralNet, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("clonewithbatch: batch size must be "+
			"positive, got %v", batchSize)
	}

	graph := G.NewGraph()
	input := G.NewMatrix(
		graph,
		tensor.Float64,
		G.WithShape(batchSize, e.numInputs),
		G.WithName("input"),
		G.WithInit(G.Zeroes()),
	)

	layers := make([]*fcLayer, len(e.layers))
	for i := range e.layers {
		layers[i] = e.layers[i].cloneTo(graph)
	}

	net := &multiHeadMLP{
		g:           graph,
		layers:      layers,
		input:       input,
		numOutputs:  e.numOutputs,
		numInputs:   e.numInputs,
		batchSize:   batchSize,
		hiddenSizes: e.hiddenSizes,
		biases:      e.biases,
		activations: e.activations,
	}
	if _, err := net.fwd(input); err != nil {
		return nil, fmt.Errorf("clonewithbatch: could not compute forward "+
			"pass: %v", err)
	}

	return net, nil
}

// BatchSize returns the number of rows in an input batch
func (e *multiHeadMLP) BatchSize() int {
	return e.batchSize
}

// Features returns the number of features in a single input row
func (e *multiHeadMLP) Features() int {
	return e.numInputs
}

// Outputs returns the number of output heads of the network
func (e *multiHeadMLP) Outputs() int {
	return e.numOutputs
}

// SetInput sets the value of the input node before the VM is run
func (e *multiHeadMLP) SetInput(input []float64) error {
	if len(input) != e.numInputs*e.batchSize {
		return fmt.Errorf("setinput: invalid number of inputs\n\twant(%v)"+
			"\n\thave(%v)", e.numInputs*e.batchSize, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(e.input.Shape()...),
	)
	return G.Let(e.input, inputTensor)
}

// Set hard-copies the weights of source into the receiver
func (dest *multiHeadMLP) Set(source NeuralNet) error {
	sourceNodes := source.Learnables()
	nodes := dest.Learnables()
	if len(sourceNodes) != len(nodes) {
		return fmt.Errorf("set: networks do not share an architecture"+
			"\n\twant(%v learnables)\n\thave(%v learnables)", len(nodes),
			len(sourceNodes))
	}

	for i, destLearnable := range nodes {
		sourceLearnable := sourceNodes[i].Clone()
		err := G.Let(destLearnable, sourceLearnable.(*G.Node).Value())
		if err != nil {
			return err
		}
	}
	return nil
}

// Polyak sets the receiver's weights w to τ*source + (1-τ)*w
func (dest *multiHeadMLP) Polyak(source NeuralNet, tau float64) error {
	sourceNodes := source.Learnables()
	nodes := dest.Learnables()
	if len(sourceNodes) != len(nodes) {
		return fmt.Errorf("polyak: networks do not share an architecture"+
			"\n\twant(%v learnables)\n\thave(%v learnables)", len(nodes),
			len(sourceNodes))
	}

	for i := range nodes {
		weights := nodes[i].Value().(*tensor.Dense)
		sourceWeights := sourceNodes[i].Value().(*tensor.Dense)

		weights, err := weights.MulScalar(1-tau, true)
		if err != nil {
			return err
		}

		sourceWeights, err = sourceWeights.MulScalar(tau, true)
		if err != nil {
			return err
		}

		newWeights, err := weights.Add(sourceWeights)
		if err != nil {
			return err
		}

		if err := G.Let(nodes[i], newWeights); err != nil {
			return err
		}
	}
	return nil
}

// Learnables returns the learnable nodes of the network
func (e *multiHeadMLP) Learnables() G.Nodes {
	if e.learnables == nil {
		e.learnables = make(G.Nodes, 0, 2*len(e.layers))
		for i := range e.layers {
			e.learnables = append(e.learnables, e.layers[i].weights)
			if bias := e.layers[i].bias; bias != nil {
				e.learnables = append(e.learnables, bias)
			}
		}
	}
	return e.learnables
}

// Model returns the learnable nodes with their gradients
func (e *multiHeadMLP) Model() []G.ValueGrad {
	if e.model == nil {
		e.model = make([]G.ValueGrad, 0, 2*len(e.layers))
		for _, node := range e.Learnables() {
			e.model = append(e.model, node)
		}
	}
	return e.model
}

// Output returns the network prediction from the last VM run
func (e *multiHeadMLP) Output() G.Value {
	return e.predVal
}

// Prediction returns the node holding the network prediction
func (e *multiHeadMLP) Prediction() *G.Node {
	return e.prediction
}

// GobEncode implements the gob.GobEncoder interface. The architecture
// metadata is encoded first, then the weight tensors of each learnable
// node in order.
func (e *multiHeadMLP) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	for _, field := range []interface{}{
		e.numInputs, e.batchSize, e.numOutputs, e.hiddenSizes, e.biases,
		e.activations,
	} {
		if err := enc.Encode(field); err != nil {
			return nil, fmt.Errorf("gobencode: could not encode "+
				"architecture: %v", err)
		}
	}

	for _, learnable := range e.Learnables() {
		weights := learnable.Value().(*tensor.Dense)
		if err := enc.Encode([]int(weights.Shape())); err != nil {
			return nil, fmt.Errorf("gobencode: could not encode shape of "+
				"%v: %v", learnable.Name(), err)
		}
		if err := enc.Encode(weights.Data().([]float64)); err != nil {
			return nil, fmt.Errorf("gobencode: could not encode weights of "+
				"%v: %v", learnable.Name(), err)
		}
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (e *multiHeadMLP) GobDecode(in []byte) error {
	buf := bytes.NewReader(in)
	dec := gob.NewDecoder(buf)

	var numInputs, batchSize, numOutputs int
	var hiddenSizes []int
	var biases []bool
	var activations []*Activation
	for _, field := range []interface{}{
		&numInputs, &batchSize, &numOutputs, &hiddenSizes, &biases,
		&activations,
	} {
		if err := dec.Decode(field); err != nil {
			return fmt.Errorf("gobdecode: could not decode architecture: %v",
				err)
		}
	}

	g := G.NewGraph()
	newNet, err := NewMultiHeadMLP(numInputs, batchSize, numOutputs, g,
		hiddenSizes, biases, G.Zeroes(), activations)
	if err != nil {
		return fmt.Errorf("gobdecode: could not construct new MLP: %v", err)
	}
	newMLP := newNet.(*multiHeadMLP)

	for _, learnable := range newMLP.Learnables() {
		var shape []int
		if err := dec.Decode(&shape); err != nil {
			return fmt.Errorf("gobdecode: could not decode shape of %v: %v",
				learnable.Name(), err)
		}
		var data []float64
		if err := dec.Decode(&data); err != nil {
			return fmt.Errorf("gobdecode: could not decode weights of "+
				"%v: %v", learnable.Name(), err)
		}

		weights := tensor.New(tensor.WithShape(shape...),
			tensor.WithBacking(data))
		if err := G.Let(learnable, weights); err != nil {
			return fmt.Errorf("gobdecode: could not set weights of %v: %v",
				learnable.Name(), err)
		}
	}

	*e = *newMLP
	return nil
}
