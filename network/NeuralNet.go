// Package network implements neural network function approximators
// using Gorgonia
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet outlines a neural network function approximator. A
// NeuralNet only populates a Gorgonia ExprGraph; an external VM runs
// the graph. SetInput() should be called to set the network input,
// then the VM run, after which Output() holds the prediction.
type NeuralNet interface {
	// Graph returns the computational graph that the network populates
	Graph() *G.ExprGraph

	// Clone clones the network to a new computational graph
	Clone() (NeuralNet, error)

	// CloneWithBatch clones the network to a new computational graph
	// with a new input batch size
	CloneWithBatch(int) (NeuralNet, error)

	// BatchSize returns the number of rows in an input batch
	BatchSize() int

	// Features returns the number of features in a single input row
	Features() int

	// Outputs returns the number of outputs predicted per input row
	Outputs() int

	// SetInput sets the value of the input node before the VM is run.
	// The input is given in row major order.
	SetInput([]float64) error

	// Set hard-copies the weights of another network of the same
	// architecture into the receiver
	Set(NeuralNet) error

	// Polyak sets the receiver's weights to a Polyak average between
	// its existing weights and those of another network
	Polyak(NeuralNet, float64) error

	// Learnables returns the learnable nodes of the network
	Learnables() G.Nodes

	// Model returns the learnable nodes with their gradients
	Model() []G.ValueGrad

	// Output returns the network prediction from the last VM run
	Output() G.Value

	// Prediction returns the node holding the network prediction
	Prediction() *G.Node
}
