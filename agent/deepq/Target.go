package deepq

import "github.com/gravitylab/lander/agent/policy"

// maxEach returns the maximum of each length-cols row of values
func maxEach(values []float64, rows, cols int) []float64 {
	maxima := make([]float64, rows)
	for i := 0; i < rows; i++ {
		row := values[i*cols : (i+1)*cols]
		maxima[i] = row[policy.Greedy(row)]
	}
	return maxima
}

// argmaxEach returns the index of the maximum of each length-cols row
// of values, breaking ties in favour of the lowest index
func argmaxEach(values []float64, rows, cols int) []int {
	indices := make([]int, rows)
	for i := 0; i < rows; i++ {
		indices[i] = policy.Greedy(values[i*cols : (i+1)*cols])
	}
	return indices
}

// valuesAt returns, for each length-cols row of values, the element
// selected by the corresponding index
func valuesAt(values []float64, cols int, indices []int) []float64 {
	selected := make([]float64, len(indices))
	for i, index := range indices {
		selected[i] = values[i*cols+index]
	}
	return selected
}

// updateTargets computes the Q-learning update target for a batch of
// transitions:
//
//	y = r + γ * max[Q(s', a')]
//
// Transitions that ended their episode do not bootstrap: their target
// is the reward alone.
func updateTargets(rewards, dones, nextQ []float64,
	gamma float64) []float64 {
	targets := make([]float64, len(rewards))
	for i := range targets {
		targets[i] = rewards[i] + gamma*(1.0-dones[i])*nextQ[i]
	}
	return targets
}
