// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be: the first
// step in an episode, a middle step, or the last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType describes why an episode ended
type EndType int

const (
	// TerminalStateReached indicates that an episode ended because the
	// agent reached a terminal state (landed, crashed, ...)
	TerminalStateReached EndType = iota

	// Timeout indicates that an episode was cut off at the step limit
	// rather than by reaching a terminal state
	Timeout

	// Nil indicates that an episode has not yet ended
	Nil
)

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	StepType    StepType
	Reward      float64
	Discount    float64
	Observation mat.Vector
	Number      int
	EndType     EndType
}

// New returns a new TimeStep with the argument fields. Episodes that
// have not ended have EndType Nil.
func New(t StepType, reward, discount float64, obs mat.Vector,
	number int) TimeStep {
	return TimeStep{t, reward, discount, obs, number, Nil}
}

// SetEnd records why the episode ended and marks the step as Last
func (t *TimeStep) SetEnd(e EndType) {
	t.StepType = Last
	t.EndType = e
}

// First returns whether a TimeStep is the first in an episode
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an episode
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an episode
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number)
}

// Transition packages together a single environment transition: the
// agent took Action in State, receiving Reward and arriving in
// NextState. Done records whether the episode ended at NextState. A
// Transition is immutable once created; vectors are copied in, not
// aliased.
type Transition struct {
	State     mat.Vector
	Action    int
	Reward    float64
	NextState mat.Vector
	Done      bool
}

// NewTransition packages the TimeSteps at both ends of a transition
// with the action that caused it. The done flag is set whenever the
// next step ends its episode, whether by reaching a terminal state or
// by a step-limit cutoff.
func NewTransition(step TimeStep, action int, nextStep TimeStep) Transition {
	state := mat.NewVecDense(step.Observation.Len(), nil)
	state.CopyVec(step.Observation)

	nextState := mat.NewVecDense(nextStep.Observation.Len(), nil)
	nextState.CopyVec(nextStep.Observation)

	return Transition{
		State:     state,
		Action:    action,
		Reward:    nextStep.Reward,
		NextState: nextState,
		Done:      nextStep.Last(),
	}
}
