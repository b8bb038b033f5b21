package lunarlander

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/gravitylab/lander/environment"
	"github.com/gravitylab/lander/timestep"
)

func newTestEnv(t *testing.T, cutoff int) environment.Environment {
	seed := uint64(42)
	s := environment.NewUniformStarter([]r1.Interval{
		{Min: InitialX, Max: InitialX},
		{Min: InitialY, Max: InitialY},
		{Min: -InitialRandom, Max: InitialRandom},
	}, seed)
	task := NewLand(s, cutoff)

	env, step, err := New(task, 1.0, seed)
	if err != nil {
		t.Fatal(err)
	}

	if !step.First() {
		t.Fatal("reset should return the first timestep of an episode")
	}
	if step.Observation.Len() != StateObservations {
		t.Fatalf("invalid observation length\n\twant(%v)\n\thave(%v)",
			StateObservations, step.Observation.Len())
	}

	return env
}

// TestEpisodeTerminates runs a full episode with a fixed action and
// checks that it ends with a valid end type, that every observation
// stays finite, and that the step limit is honoured.
func TestEpisodeTerminates(t *testing.T) {
	cutoff := 200
	env := newTestEnv(t, cutoff)

	action := mat.NewVecDense(1, []float64{float64(ActionNoOp)})
	step := env.CurrentTimeStep()
	steps := 0
	for !step.Last() {
		var err error
		step, _, err = env.Step(action)
		if err != nil {
			t.Fatal(err)
		}
		steps++
		if steps > cutoff {
			t.Fatal("episode did not end at the step limit")
		}

		for i := 0; i < step.Observation.Len(); i++ {
			if math.IsNaN(step.Observation.AtVec(i)) ||
				math.IsInf(step.Observation.AtVec(i), 0) {
				t.Fatalf("observation %v is not finite at step %v", i,
					steps)
			}
		}
		if math.IsNaN(step.Reward) || math.IsInf(step.Reward, 0) {
			t.Fatalf("reward is not finite at step %v", steps)
		}
	}

	if step.EndType != timestep.TerminalStateReached &&
		step.EndType != timestep.Timeout {
		t.Errorf("episode ended without a valid end type: %v", step.EndType)
	}
}

// TestStepRejectsInvalidActions checks the error behaviour of Step
func TestStepRejectsInvalidActions(t *testing.T) {
	env := newTestEnv(t, 100)

	_, _, err := env.Step(mat.NewVecDense(1, []float64{99}))
	if err == nil {
		t.Error("out of range actions should be rejected")
	}

	_, _, err = env.Step(mat.NewVecDense(2, nil))
	if err == nil {
		t.Error("multi-dimensional actions should be rejected")
	}
}

// TestResetStartsNewEpisode checks that Reset returns a first
// timestep with fresh leg contact state.
func TestResetStartsNewEpisode(t *testing.T) {
	env := newTestEnv(t, 100)

	action := mat.NewVecDense(1, []float64{float64(ActionMainFire)})
	for i := 0; i < 10; i++ {
		if _, _, err := env.Step(action); err != nil {
			t.Fatal(err)
		}
	}

	step := env.Reset()
	if !step.First() {
		t.Error("reset should return a First timestep")
	}
	if step.Number != 0 {
		t.Errorf("reset should restart step numbering\n\twant(%v)"+
			"\n\thave(%v)", 0, step.Number)
	}
	if left := step.Observation.AtVec(6); left != 0.0 {
		t.Errorf("left leg should not touch the ground at reset, got %v",
			left)
	}
	if right := step.Observation.AtVec(7); right != 0.0 {
		t.Errorf("right leg should not touch the ground at reset, got %v",
			right)
	}
}
