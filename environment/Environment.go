// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"
	"github.com/gravitylab/lander/timestep"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() mat.Vector
}

// Ender determines when and how episodes end
type Ender interface {
	// End returns whether the current episode should end. If so, End
	// modifies the timestep so that its StepType is timestep.Last and
	// sets the appropriate EndType.
	End(*timestep.TimeStep) bool
}

// Task implements the reward scheme for taking actions in some
// environment
type Task interface {
	Starter

	// GetReward returns the reward for taking an action in a state,
	// resulting in the next state
	GetReward(state, action, nextState mat.Vector) float64

	// AtGoal returns whether the argument state is a goal state
	AtGoal(state mat.Matrix) bool

	// End ends episodes that the task considers finished
	End(*timestep.TimeStep) bool
}

// Renderer is an Environment that can draw its current state to an
// image file
type Renderer interface {
	Render(filename string) error
}

// Environment implements a simulated environment, which includes a
// Task to complete
type Environment interface {
	Task

	// Reset resets the environment between episodes and returns the
	// starting timestep
	Reset() timestep.TimeStep

	// Step takes one environmental step given the action and returns
	// the next timestep and whether it is the last in the episode.
	// Errors are environment failures: the step did not happen, and
	// no transition should be recorded for it.
	Step(action mat.Vector) (timestep.TimeStep, bool, error)

	// CurrentTimeStep returns the last timestep of the environment
	CurrentTimeStep() timestep.TimeStep

	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
