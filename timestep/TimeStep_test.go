package timestep

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func step(t StepType, obs []float64, number int) TimeStep {
	return New(t, 1.0, 0.99, mat.NewVecDense(len(obs), obs), number)
}

// TestNewTransitionDoneOnEpisodeEnd checks that the done flag is set
// whenever the next step ends its episode, for terminal states and
// step-limit cutoffs alike.
func TestNewTransitionDoneOnEpisodeEnd(t *testing.T) {
	prev := step(Mid, []float64{0.0, 1.0}, 3)

	terminal := step(Mid, []float64{0.5, 0.0}, 4)
	terminal.SetEnd(TerminalStateReached)
	if transition := NewTransition(prev, 1, terminal); !transition.Done {
		t.Error("transition to a terminal state should be done")
	}

	cutoff := step(Mid, []float64{0.5, 0.0}, 4)
	cutoff.SetEnd(Timeout)
	if transition := NewTransition(prev, 1, cutoff); !transition.Done {
		t.Error("transition cut off at the step limit should be done")
	}

	mid := step(Mid, []float64{0.5, 0.0}, 4)
	if transition := NewTransition(prev, 1, mid); transition.Done {
		t.Error("mid-episode transition should not be done")
	}
}

// TestNewTransitionCopiesObservations checks that transitions do not
// alias the observation vectors of their timesteps
func TestNewTransitionCopiesObservations(t *testing.T) {
	obs := mat.NewVecDense(2, []float64{1.0, 2.0})
	prev := New(Mid, 0.0, 0.99, obs, 0)
	next := New(Mid, 1.0, 0.99, obs, 1)

	transition := NewTransition(prev, 0, next)
	obs.SetVec(0, -1.0)

	if transition.State.AtVec(0) != 1.0 {
		t.Errorf("transition state aliases the timestep observation"+
			"\n\twant(%v)\n\thave(%v)", 1.0, transition.State.AtVec(0))
	}
	if transition.NextState.AtVec(0) != 1.0 {
		t.Errorf("transition next state aliases the timestep observation"+
			"\n\twant(%v)\n\thave(%v)", 1.0, transition.NextState.AtVec(0))
	}
}
