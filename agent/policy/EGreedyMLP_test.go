package policy

import (
	"math/rand"
	"testing"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/gravitylab/lander/network"
)

// stubNet fakes the network output of a policy so that action
// selection can be tested without running a VM
type stubNet struct {
	network.NeuralNet
	actionValues []float64
}

func (s *stubNet) Output() G.Value {
	return tensor.New(tensor.WithShape(1, len(s.actionValues)),
		tensor.WithBacking(s.actionValues))
}

func (s *stubNet) Outputs() int {
	return len(s.actionValues)
}

func egreedyOver(actionValues []float64, epsilon float64,
	seed int64) *MultiHeadEGreedyMLP {
	return &MultiHeadEGreedyMLP{
		NeuralNet: &stubNet{actionValues: actionValues},
		epsilon:   epsilon,
		rng:       rand.New(rand.NewSource(seed)),
		seed:      seed,
	}
}

// TestGreedyLowestIndexTieBreak checks that the greedy action among
// equal maximal action values is the one with the lowest index.
func TestGreedyLowestIndexTieBreak(t *testing.T) {
	tests := []struct {
		actionValues []float64
		expected     int
	}{
		{[]float64{1.0, 3.0, 2.0, 0.5}, 1},
		{[]float64{2.0, 2.0, 2.0, 2.0}, 0},
		{[]float64{0.0, 5.0, 5.0, 1.0}, 1},
		{[]float64{-1.0, -3.0, -1.0}, 0},
		{[]float64{-5.0}, 0},
	}

	for _, test := range tests {
		if action := Greedy(test.actionValues); action != test.expected {
			t.Errorf("invalid greedy action for %v\n\twant(%v)\n\thave(%v)",
				test.actionValues, test.expected, action)
		}
	}
}

// TestSelectActionDeterministicWhenGreedy checks that with ε = 0 the
// same action values always produce the same action.
func TestSelectActionDeterministicWhenGreedy(t *testing.T) {
	actionValues := []float64{0.25, -0.5, 0.75, 0.1}
	policy := egreedyOver(actionValues, 0.0, 1)

	for i := 0; i < 100; i++ {
		action, value := policy.SelectAction()
		if int(action.AtVec(0)) != 2 {
			t.Fatalf("invalid greedy action\n\twant(%v)\n\thave(%v)", 2,
				int(action.AtVec(0)))
		}
		if value != 0.75 {
			t.Fatalf("invalid greedy action value\n\twant(%v)\n\thave(%v)",
				0.75, value)
		}
	}
}

// TestSelectActionExploresUniformly checks that with ε = 1 every
// action is selected roughly uniformly at random.
func TestSelectActionExploresUniformly(t *testing.T) {
	actionValues := []float64{0.0, 10.0, -3.0, 2.5}
	policy := egreedyOver(actionValues, 1.0, 1)

	samples := 40000
	counts := make([]int, len(actionValues))
	for i := 0; i < samples; i++ {
		action, _ := policy.SelectAction()
		counts[int(action.AtVec(0))]++
	}

	expected := float64(samples) / float64(len(actionValues))
	for action, count := range counts {
		// Loose 5% tolerance, enough to catch a broken distribution
		// without making the test flaky
		if float64(count) < 0.95*expected || float64(count) > 1.05*expected {
			t.Errorf("action %v selected %v times, expected about %v",
				action, count, expected)
		}
	}
}
