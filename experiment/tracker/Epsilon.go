package tracker

import ts "github.com/gravitylab/lander/timestep"

// Epsilon records the exploration rate of an epsilon greedy agent at
// the end of every episode, so that the annealing schedule actually
// followed during training can be inspected afterwards.
type Epsilon struct {
	epsilon  func() float64
	history  []float64
	filename string
}

// NewEpsilon creates and returns a new *Epsilon Tracker. The epsilon
// parameter reports the agent's current exploration rate; usually it
// is the agent's Epsilon method.
func NewEpsilon(filename string, epsilon func() float64) *Epsilon {
	return &Epsilon{
		epsilon:  epsilon,
		filename: filename,
	}
}

// Track records the current exploration rate on episode-ending
// timesteps
func (e *Epsilon) Track(step ts.TimeStep) {
	if step.Last() {
		e.history = append(e.history, e.epsilon())
	}
}

// History returns the exploration rates recorded so far
func (e *Epsilon) History() []float64 {
	return e.history
}

// Save saves the data tracked by the Epsilon Tracker to disk
func (e *Epsilon) Save() error {
	return saveData(e.filename, e.history)
}
