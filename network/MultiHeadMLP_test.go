package network

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func newTestNet(t *testing.T, batch int, init G.InitWFn) NeuralNet {
	g := G.NewGraph()
	net, err := NewMultiHeadMLP(8, batch, 4, g, []int{16, 8},
		[]bool{true, true}, init, []*Activation{ReLU(), ReLU()})
	if err != nil {
		t.Fatal(err)
	}
	return net
}

func weightData(net NeuralNet) [][]float64 {
	data := make([][]float64, 0, len(net.Learnables()))
	for _, learnable := range net.Learnables() {
		data = append(data, learnable.Value().Data().([]float64))
	}
	return data
}

// TestMultiHeadMLPSet ensures that after a hard synchronization, the
// target network's parameters exactly equal the source network's.
func TestMultiHeadMLPSet(t *testing.T) {
	source := newTestNet(t, 1, G.GlorotU(1.0))
	target := newTestNet(t, 1, G.GlorotU(1.0))

	if err := target.Set(source); err != nil {
		t.Fatal(err)
	}

	sourceWeights := weightData(source)
	targetWeights := weightData(target)
	for i := range sourceWeights {
		for j := range sourceWeights[i] {
			if sourceWeights[i][j] != targetWeights[i][j] {
				t.Errorf("learnable %v element %v not synchronized"+
					"\n\twant(%v)\n\thave(%v)", i, j, sourceWeights[i][j],
					targetWeights[i][j])
			}
		}
	}
}

// TestMultiHeadMLPPolyak checks the weighted average update of the
// target network's parameters.
func TestMultiHeadMLPPolyak(t *testing.T) {
	source := newTestNet(t, 1, G.Ones())
	target := newTestNet(t, 1, G.Zeroes())

	tau := 0.1
	if err := target.Polyak(source, tau); err != nil {
		t.Fatal(err)
	}

	for i, weights := range weightData(target) {
		for j, weight := range weights {
			if math.Abs(weight-tau) > 1e-12 {
				t.Errorf("learnable %v element %v incorrect after polyak "+
					"update\n\twant(%v)\n\thave(%v)", i, j, tau, weight)
			}
		}
	}
}

// TestMultiHeadMLPForward checks the shape of the network output and
// that predictions are deterministic for a fixed input.
func TestMultiHeadMLPForward(t *testing.T) {
	batch := 3
	net := newTestNet(t, batch, G.GlorotU(1.0))

	vm := G.NewTapeMachine(net.Graph())
	defer vm.Close()

	input := make([]float64, batch*net.Features())
	for i := range input {
		input[i] = float64(i%net.Features()) / float64(net.Features())
	}

	run := func() []float64 {
		if err := net.SetInput(input); err != nil {
			t.Fatal(err)
		}
		if err := vm.RunAll(); err != nil {
			t.Fatal(err)
		}
		vm.Reset()
		out := net.Output().Data().([]float64)
		return append([]float64{}, out...)
	}

	first := run()
	if len(first) != batch*net.Outputs() {
		t.Fatalf("invalid output size\n\twant(%v)\n\thave(%v)",
			batch*net.Outputs(), len(first))
	}

	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("output %v not deterministic\n\twant(%v)\n\thave(%v)",
				i, first[i], second[i])
		}
	}
}

// TestMultiHeadMLPGob checks that serializing then deserializing a
// network preserves its weights.
func TestMultiHeadMLPGob(t *testing.T) {
	net := newTestNet(t, 1, G.GlorotU(1.0)).(*multiHeadMLP)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(net); err != nil {
		t.Fatal(err)
	}

	decoded := &multiHeadMLP{}
	if err := gob.NewDecoder(&buf).Decode(decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.Features() != net.Features() ||
		decoded.Outputs() != net.Outputs() ||
		decoded.BatchSize() != net.BatchSize() {
		t.Fatalf("decoded architecture does not match original")
	}

	original := weightData(net)
	restored := weightData(decoded)
	for i := range original {
		shape := net.Learnables()[i].Shape()
		decodedShape := decoded.Learnables()[i].Shape()
		if !shape.Eq(tensor.Shape(decodedShape)) {
			t.Fatalf("learnable %v shape not preserved\n\twant(%v)"+
				"\n\thave(%v)", i, shape, decodedShape)
		}
		for j := range original[i] {
			if original[i][j] != restored[i][j] {
				t.Errorf("learnable %v element %v not preserved"+
					"\n\twant(%v)\n\thave(%v)", i, j, original[i][j],
					restored[i][j])
			}
		}
	}
}
