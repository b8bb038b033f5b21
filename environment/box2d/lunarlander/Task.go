package lunarlander

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gravitylab/lander/environment"
	"github.com/gravitylab/lander/timestep"
)

// lunarLanderTask is a Task that needs access to the underlying Box2D
// world to compute rewards and detect episode termination
type lunarLanderTask interface {
	environment.Task
	registerEnv(*lunarLander)
	reset()
}

// Land implements the landing task. The agent is rewarded for moving
// toward the landing pad with low velocity and a level attitude, and
// penalized for spending fuel. Crashing the hull or leaving the
// viewport horizontally ends the episode with a reward of -100;
// coming to rest on the surface ends it with +100.
type Land struct {
	environment.Starter
	stepLimit environment.Ender

	prevShaping *float64

	env *lunarLander
}

// NewLand returns a new landing task with episodes cut off after
// cutoff timesteps
func NewLand(s environment.Starter, cutoff int) environment.Task {
	return &Land{
		Starter:   s,
		stepLimit: environment.NewStepLimit(cutoff),
	}
}

func (t *Land) registerEnv(env *lunarLander) {
	t.env = env
}

// reset clears the reward shaping between episodes
func (t *Land) reset() {
	t.prevShaping = nil
}

// AtGoal returns whether the ship stands on both legs
func (t *Land) AtGoal(state mat.Matrix) bool {
	leg1Contact, leg2Contact := t.env.GroundContact()
	return leg1Contact && leg2Contact
}

// GetReward returns the reward for a transition. The shaping term
// rewards progress toward a gentle, level touchdown; only its change
// between consecutive steps is paid out, so the total shaping reward
// over an episode telescopes.
func (t *Land) GetReward(state, action, nextState mat.Vector) float64 {
	s := nextState.(*mat.VecDense).RawVector().Data

	shaping := (-100 * math.Sqrt(s[0]*s[0]+s[1]*s[1])) +
		(-100 * math.Sqrt(s[2]*s[2]+s[3]*s[3])) +
		(-100 * math.Abs(s[4])) +
		(10 * s[6]) +
		(10 * s[7])

	reward := 0.0
	if t.prevShaping != nil {
		reward = shaping - *t.prevShaping
	}
	t.prevShaping = &shaping

	// Less fuel spent is better
	reward -= t.env.MPower() * 0.30
	reward -= t.env.SPower() * 0.03

	if t.failed(nextState) {
		reward = -100
	} else if t.landed() {
		reward = 100
	}
	return reward
}

// End ends episodes on crash, successful landing, or step-limit cutoff
func (t *Land) End(step *timestep.TimeStep) bool {
	if t.failed(step.Observation) || t.landed() {
		step.SetEnd(timestep.TerminalStateReached)
		return true
	}
	return t.stepLimit.End(step)
}

// failed returns whether the ship crashed or left the viewport
// horizontally
func (t *Land) failed(state mat.Vector) bool {
	return t.env.IsGameOver() || math.Abs(state.AtVec(0)) >= 1.0
}

// landed returns whether the ship has come to rest on the surface
func (t *Land) landed() bool {
	return !t.env.IsAwake()
}
